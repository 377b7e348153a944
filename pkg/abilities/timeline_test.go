package abilities

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimelineMergesContiguousRecords(t *testing.T) {
	tl := NewTimeline(0)
	assert.Nil(t, tl.Current())

	for i := 0; i < 3; i++ {
		tl.Record("Locomotion", float64(i)*dt, dt)
	}
	tl.Record("Climbing", 3*dt, dt)
	tl.Record("Climbing", 4*dt, dt)
	tl.Record("Locomotion", 5*dt, dt)

	records := tl.Records()
	require.Len(t, records, 3)

	tests := []struct {
		ability  string
		start    float64
		duration float64
	}{
		{"Locomotion", 0, 3 * dt},
		{"Climbing", 3 * dt, 2 * dt},
		{"Locomotion", 5 * dt, dt},
	}
	for i, tt := range tests {
		assert.Equal(t, tt.ability, records[i].Ability)
		assert.InDelta(t, tt.start, records[i].Start, 1e-12)
		assert.InDelta(t, tt.duration, records[i].Duration(), 1e-12)
		assert.NotEqual(t, uuid.Nil, records[i].ID)
	}
	assert.Equal(t, "Locomotion", tl.Current().Ability)
}

func TestTimelineGapStartsNewRecord(t *testing.T) {
	tl := NewTimeline(0)
	tl.Record("Parkour", 0, dt)
	tl.Record("Parkour", 1, dt)

	assert.Len(t, tl.Records(), 2)
}

func TestTimelinePrunesOldRecords(t *testing.T) {
	tl := NewTimeline(1)
	tl.Record("Locomotion", 0, 0.5)
	tl.Record("Climbing", 0.5, 0.5)
	tl.Record("Locomotion", 1.0, 0.5)

	// 现在为 1.5：第一条记录在 0.5 结束，仍在窗口内
	require.Len(t, tl.Records(), 3)

	// 现在为 1.75：只丢弃第一条
	tl.Record("Parkour", 1.5, 0.25)
	records := tl.Records()
	require.Len(t, records, 3)
	assert.Equal(t, "Climbing", records[0].Ability)
	assert.Equal(t, "Parkour", records[2].Ability)
}

func TestTimelineAttachTask(t *testing.T) {
	tl := NewTimeline(0)
	id := uuid.New()

	// 没有记录时忽略
	tl.AttachTask(id)
	assert.Empty(t, tl.Records())

	tl.Record("Climbing", 0, dt)
	tl.AttachTask(id)
	assert.Equal(t, []uuid.UUID{id}, tl.Current().TaskIDs)
}
