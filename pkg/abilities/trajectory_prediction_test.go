package abilities

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/anchorclimb/pkg/synthesis"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// predict 不经过控制器修正地跑完整个预测
func predict(p *TrajectoryPrediction) synthesis.Trajectory {
	transform := utils.AffineIdentity
	for p.Push(transform) {
		transform = p.Advance()
	}
	return p.Trajectory()
}

func TestTrajectoryPredictionStraightLine(t *testing.T) {
	p := NewTrajectoryPrediction(utils.AffineIdentity, utils.Vec3Zero, utils.Forward, 2, testRate, 1, 1, 1)
	assert.InDelta(t, dt, p.Step(), 1e-12)

	traj := predict(p)
	require.Len(t, traj, 31)

	assert.Equal(t, 0.0, traj[0].Time)
	assert.True(t, traj[0].Transform.ApproxEqual(utils.AffineIdentity, 1e-12))

	last := traj[len(traj)-1]
	assert.InDelta(t, 1.0, last.Time, 1e-9)
	assert.True(t, last.Transform.T.ApproxEqual(utils.NewVec3(0, 0, 2), 1e-9))
	assert.True(t, last.Transform.Q.ApproxEqual(utils.QuatIdentity, 1e-9))
}

func TestTrajectoryPredictionIsInRootSpace(t *testing.T) {
	// 根节点面朝世界 +X：世界 +X 方向在根空间中就是前方
	root := utils.NewAffineTransform(utils.NewVec3(3, 0, 3), utils.QuatYaw(math.Pi/2))
	require.True(t, root.Forward().ApproxEqual(utils.Right, 1e-9))

	traj := predict(NewTrajectoryPrediction(root, utils.Vec3Zero, utils.Right, 2, testRate, 1, 1, 1))
	last := traj[len(traj)-1].Transform
	assert.True(t, last.T.ApproxEqual(utils.NewVec3(0, 0, 2), 1e-9))
}

func TestTrajectoryPredictionTurnsTowardDirection(t *testing.T) {
	traj := predict(NewTrajectoryPrediction(utils.AffineIdentity, utils.Vec3Zero, utils.Right, 1, testRate, 1, 1, 0.5))

	// 朝向每步靠近一半，最终对准 +X
	first := traj[1].Transform.Q.ZAxis()
	assert.InDelta(t, math.Pi/4, utils.AngularError(first, utils.Forward), 1e-6)

	last := traj[len(traj)-1].Transform.Q.ZAxis()
	assert.True(t, last.ApproxEqual(utils.Right, 1e-6))
}

func TestTrajectoryPredictionVelocityBlend(t *testing.T) {
	p := NewTrajectoryPrediction(utils.AffineIdentity, utils.Vec3Zero, utils.Forward, 2, testRate, 1, 0.5, 1)
	p.Push(utils.AffineIdentity)

	next := p.Advance()
	assert.InDelta(t, 1*dt, next.T.Z, 1e-12)

	p.Push(next)
	next = p.Advance()
	assert.InDelta(t, 1*dt+1.5*dt, next.T.Z, 1e-12)
}

func TestTrajectoryPredictionIdleBrakes(t *testing.T) {
	// 没有输入时从当前速度减速到 0，朝向保持
	traj := predict(NewTrajectoryPrediction(utils.AffineIdentity, utils.NewVec3(0, 0, 3), utils.Vec3Zero, 0, testRate, 1, 0.5, 1))

	last := traj[len(traj)-1].Transform
	assert.InDelta(t, 3*dt, last.T.Z, 1e-6)
	assert.True(t, last.Q.ApproxEqual(utils.QuatIdentity, 1e-12))
}

func TestTrajectoryPredictionMinimumOneStep(t *testing.T) {
	traj := predict(NewTrajectoryPrediction(utils.AffineIdentity, utils.Vec3Zero, utils.Forward, 1, testRate, 0, 1, 1))
	assert.Len(t, traj, 2)
}
