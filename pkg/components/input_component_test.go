package components

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/decker502/anchorclimb/pkg/utils"
)

func TestInputComponentSample(t *testing.T) {
	c := &InputComponent{Script: []InputStep{
		{Duration: 0.5, State: utils.InputState{StickVertical: 1}},
		{Duration: 0.25, State: utils.InputState{StickVertical: 1, BButton: true}},
	}}
	assert.True(t, c.Scripted())

	tests := []struct {
		name     string
		elapsed  float64
		want     utils.InputState
		finished bool
	}{
		{"第一段开始", 0, utils.InputState{StickVertical: 1}, false},
		{"第一段末尾", 0.49, utils.InputState{StickVertical: 1}, false},
		{"第二段", 0.5, utils.InputState{StickVertical: 1, BButton: true}, false},
		{"脚本结束后为空输入", 0.75, utils.InputState{}, true},
		{"远超脚本时长", 10, utils.InputState{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c.Elapsed = tt.elapsed
			assert.Equal(t, tt.want, c.Sample())
			assert.Equal(t, tt.finished, c.Finished())
		})
	}
}

func TestInputComponentWithoutScript(t *testing.T) {
	c := &InputComponent{}
	assert.False(t, c.Scripted())
	assert.False(t, c.Finished())
	assert.Equal(t, utils.InputState{}, c.Sample())
}

func TestCameraComponentEye(t *testing.T) {
	c := &CameraComponent{Follow: utils.NewVec3(1, 2, 3), Distance: 4}
	assert.True(t, c.Eye().ApproxEqual(utils.NewVec3(1, 2, -1), 1e-12))
}
