package systems

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/decker502/anchorclimb/pkg/components"
	"github.com/decker502/anchorclimb/pkg/ecs"
	"github.com/decker502/anchorclimb/pkg/utils"
)

func TestInputSystemScriptedAndPlayer(t *testing.T) {
	em := ecs.NewEntityManager()
	lib := loadDemoLibrary(t)

	scripted := spawn(t, em, lib, "scripted", 0, []components.InputStep{
		{Duration: 2 * dt, State: utils.InputState{StickVertical: 1}},
		{Duration: dt, State: utils.InputState{BButton: true}},
	})
	player := spawn(t, em, lib, "player", 5, nil)
	other := spawn(t, em, lib, "other", 10, nil)

	calls := 0
	s := NewInputSystem(em, func() utils.InputState {
		calls++
		return utils.InputState{StickHorizontal: -1}
	})

	want := []utils.InputState{
		{StickVertical: 1},
		{StickVertical: 1},
		{BButton: true},
		{},
	}
	for frame, w := range want {
		s.Update(dt)
		assert.Equal(t, w, characterOf(t, em, scripted).Character.Input, "frame %d", frame)
		assert.Equal(t, utils.InputState{StickHorizontal: -1}, characterOf(t, em, player).Character.Input)
		assert.Equal(t, utils.InputState{StickHorizontal: -1}, characterOf(t, em, other).Character.Input)
	}

	// 玩家输入每帧只采样一次
	assert.Equal(t, len(want), calls)

	input, _ := ecs.GetComponent[*components.InputComponent](em, scripted)
	assert.True(t, input.Finished())
}

func TestInputSystemWithoutPlayers(t *testing.T) {
	em := ecs.NewEntityManager()
	lib := loadDemoLibrary(t)
	spawn(t, em, lib, "scripted", 0, walkScript(1))

	s := NewInputSystem(em, func() utils.InputState {
		t.Fatal("玩家输入不应被读取")
		return utils.InputState{}
	})
	s.Update(dt)
}

func TestInputSystemNilSourceIsIdle(t *testing.T) {
	em := ecs.NewEntityManager()
	lib := loadDemoLibrary(t)
	player := spawn(t, em, lib, "player", 0, nil)
	characterOf(t, em, player).Character.Input = utils.InputState{AButton: true, StickVertical: 1}

	s := NewInputSystem(em, nil)
	s.Update(dt)
	assert.Equal(t, utils.InputState{}, characterOf(t, em, player).Character.Input)
}
