package transition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

const dt = 1.0 / testRate

func newMountTask(t *testing.T, params SearchParams, contact utils.AffineTransform) (*Task, *fakeSynthesizer) {
	t.Helper()
	lib := testLibrary(t, mountSegment("mount", []float64{0, 0}, true))
	synth := newFakeSynthesizer()
	sequences := lib.Query(motion.NewTrait("Ledge", "Mount")).Sequences()
	task := NewTask(synth, lib, sequences, contact, params)
	return task, synth
}

func TestTaskLifecycle(t *testing.T) {
	task, synth := newMountTask(t, defaultParams(), contactAhead(0))
	assert.Equal(t, StateInitializing, task.State())
	assert.Nil(t, task.Plan())
	assert.Equal(t, 0.0, task.Theta())

	// 第一次 Tick 搜索并进入 Waiting，根变换保持不变
	require.Equal(t, StateWaiting, task.Tick(dt))
	plan := task.Plan()
	require.NotNil(t, plan)
	assert.Equal(t, 0.0, task.Theta())
	assert.InDelta(t, 0.5, plan.TotalDuration, 1e-12)
	assert.True(t, plan.RootTransform().ApproxEqual(utils.AffineIdentity, 1e-12))
	assert.Equal(t, 0, synth.sets)

	// 混合权重单调递增
	previousTheta := 0.0
	ticks := 0
	for task.State() == StateWaiting {
		task.Tick(dt)
		ticks++
		require.Less(t, ticks, 100)
		if task.State() == StateWaiting {
			assert.Greater(t, task.Theta(), previousTheta)
			previousTheta = task.Theta()
		}
	}
	assert.Equal(t, 15, ticks)
	assert.Equal(t, StateActive, task.State())
	assert.Equal(t, 1.0, task.Theta())

	// 提交：目标时间被推入合成器，根变换落在目标候选上
	require.Len(t, synth.pushed, 1)
	assert.Equal(t, motion.NewTimeIndex(1, 0), synth.pushed[0])
	assert.True(t, synth.root.ApproxEqual(plan.TargetRootTransform, 1e-9))
	assert.InDelta(t, 0.5, synth.root.T.Z, 1e-9)

	// Escape 帧之前保持 Active
	assert.Equal(t, escapeFrame, task.EscapeFrame())
	synth.time = motion.NewSamplingTime(motion.NewTimeIndex(1, escapeFrame-1))
	assert.Equal(t, StateActive, task.Tick(dt))

	synth.time = motion.NewSamplingTime(motion.NewTimeIndex(1, escapeFrame))
	assert.Equal(t, StateComplete, task.Tick(dt))
	assert.True(t, task.IsComplete())
	assert.True(t, task.IsDone())

	// 终态保持不变
	assert.Equal(t, StateComplete, task.Tick(dt))
}

func TestTaskWaitingFollowsSourceTrajectory(t *testing.T) {
	task, synth := newMountTask(t, defaultParams(), contactAhead(0))
	task.Tick(dt)

	for i := 0; i < 5; i++ {
		task.Tick(dt)
	}
	plan := task.Plan()
	assert.InDelta(t, 5.0/testRate, plan.SourceTrajectory().T.Z, 1e-9)
	assert.InDelta(t, 5.0/15, plan.Theta(), 1e-9)
	assert.True(t, synth.root.ApproxEqual(plan.RootTransform(), 1e-12))

	// 源与目标轨迹在此场景中重合，混合结果沿 +Z 前进
	assert.InDelta(t, 5.0/testRate, synth.root.T.Z, 1e-9)
	assert.InDelta(t, plan.TimeRemaining(), 10.0/testRate+anchorFrame/testRate, 1e-9)
}

func TestTaskFailsWithoutFeasibleMatch(t *testing.T) {
	task, synth := newMountTask(t, SearchParams{MaximumLinearError: 0, MaximumAngularError: 0}, contactAhead(0.0123))

	assert.Equal(t, StateFailed, task.Tick(dt))
	assert.True(t, task.IsFailed())
	assert.True(t, task.IsDone())
	assert.Nil(t, task.Plan())

	// 失败不改变角色的轨迹
	assert.Equal(t, 0, synth.sets)
	assert.Empty(t, synth.pushed)
	assert.Equal(t, StateFailed, task.Tick(dt))
}

func TestTaskPanicsAfterDispose(t *testing.T) {
	task, _ := newMountTask(t, defaultParams(), contactAhead(0))
	task.Tick(dt)
	task.Dispose()

	assert.True(t, task.IsDisposed())
	assert.Nil(t, task.Plan())
	assert.Panics(t, func() { task.Tick(dt) })

	// 重复释放是安全的
	assert.NotPanics(t, task.Dispose)
}

func TestTaskIDsAreUnique(t *testing.T) {
	a, _ := newMountTask(t, defaultParams(), contactAhead(0))
	b, _ := newMountTask(t, defaultParams(), contactAhead(0))
	assert.NotEqual(t, a.ID(), b.ID())
}

func TestPlanImmediateCommit(t *testing.T) {
	lib := testLibrary(t, mountSegment("mount", []float64{0, 0}, true))

	match := Match{
		SourceIndex:  0,
		Source:       Candidate{WorldRootTransform: utils.AffineIdentity, TimeIndex: motion.NewTimeIndex(0, 0)},
		Target:       Candidate{WorldRootTransform: utils.NewAffineTransform(utils.NewVec3(0, 0, 0.2), utils.QuatIdentity), TimeIndex: motion.NewTimeIndex(1, 3)},
		ContactFrame: anchorFrame,
	}
	plan := NewPlan(lib, match, walkStart(), utils.AffineIdentity)

	// 总时长为 0 时权重直接为 1
	assert.Equal(t, 0.0, plan.TotalDuration)
	assert.Equal(t, 1.0, plan.Theta())
	assert.True(t, plan.Committed())

	root := plan.Advance(lib, dt)
	assert.True(t, root.ApproxEqual(match.Target.WorldRootTransform, 1e-12))
	assert.InDelta(t, float64(anchorFrame-3)/testRate, plan.TimeRemaining(), 1e-12)
}

func TestStateString(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{StateInitializing, "Initializing"},
		{StateWaiting, "Waiting"},
		{StateActive, "Active"},
		{StateComplete, "Complete"},
		{StateFailed, "Failed"},
		{State(99), "State(99)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.state.String())
	}
}
