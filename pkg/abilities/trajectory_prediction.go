package abilities

import (
	"github.com/decker502/anchorclimb/pkg/synthesis"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// TrajectoryPrediction 从摇杆方向预测未来根轨迹（根空间）
//
// 用法：
//
//	for prediction.Push(transform) {
//	    transform = prediction.Advance()
//	    // 用移动控制器修正 transform.T
//	}
//
// 每一步把速度向期望速度靠近 velocityPercentage，把朝向向期望朝向靠近 forwardPercentage。
type TrajectoryPrediction struct {
	samples  synthesis.Trajectory
	numSteps int
	step     float64

	transform       utils.AffineTransform
	velocity        utils.Vec3
	desiredVelocity utils.Vec3
	desiredRotation utils.Quat

	velocityPercentage float64
	forwardPercentage  float64
}

// NewTrajectoryPrediction 创建预测
//
// 参数:
//   - worldRoot: 当前世界根变换
//   - velocity: 当前世界速度
//   - direction: 期望移动方向（世界空间，水平）；零向量表示原地
//   - desiredSpeed: 期望速度（米/秒）
//   - sampleRate: 采样率，决定步长
//   - horizon: 预测时长（秒）
//   - velocityPercentage, forwardPercentage: 每步的趋近比例 [0, 1]
func NewTrajectoryPrediction(worldRoot utils.AffineTransform, velocity, direction utils.Vec3, desiredSpeed, sampleRate, horizon, velocityPercentage, forwardPercentage float64) *TrajectoryPrediction {
	numSteps := utils.TruncToInt(horizon * sampleRate)
	if numSteps < 1 {
		numSteps = 1
	}

	localDirection := worldRoot.InverseTransformDirection(direction.Horizontal()).Horizontal().Normalize()
	desiredRotation := utils.QuatIdentity
	if localDirection.LengthSq() > 1e-12 {
		desiredRotation = utils.LookRotation(localDirection, utils.Up)
	}

	return &TrajectoryPrediction{
		samples:            make(synthesis.Trajectory, 0, numSteps+1),
		numSteps:           numSteps,
		step:               1 / sampleRate,
		transform:          utils.AffineIdentity,
		velocity:           worldRoot.InverseTransformDirection(velocity).Horizontal(),
		desiredVelocity:    localDirection.Scale(desiredSpeed),
		desiredRotation:    desiredRotation,
		velocityPercentage: utils.Saturate(velocityPercentage),
		forwardPercentage:  utils.Saturate(forwardPercentage),
	}
}

// Step 两个采样之间的时间（秒）
func (p *TrajectoryPrediction) Step() float64 { return p.step }

// Push 记录一个采样；还需要更多采样时返回 true
func (p *TrajectoryPrediction) Push(t utils.AffineTransform) bool {
	p.transform = t
	p.samples = append(p.samples, synthesis.TrajectorySample{
		Time:      float64(len(p.samples)) * p.step,
		Transform: t,
	})
	return len(p.samples) <= p.numSteps
}

// Advance 从最近一个采样外推一步
func (p *TrajectoryPrediction) Advance() utils.AffineTransform {
	p.velocity = utils.LerpVec3(p.velocity, p.desiredVelocity, p.velocityPercentage)

	next := p.transform
	next.T = next.T.Add(p.velocity.Scale(p.step))
	if p.desiredVelocity.LengthSq() > 1e-12 {
		next.Q = utils.Slerp(next.Q, p.desiredRotation, p.forwardPercentage).Normalize()
	}
	return next
}

// Trajectory 已记录的轨迹
func (p *TrajectoryPrediction) Trajectory() synthesis.Trajectory {
	return p.samples
}
