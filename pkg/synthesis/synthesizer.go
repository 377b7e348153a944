// Package synthesis 定义动作合成器接口，并提供一个基于动作库逐帧回放的参考实现
//
// 真正的动画采样与混合不在本模块范围内；Playback 只维护播放位置、
// 世界根变换与根运动，足以驱动能力状态机、工具和演示程序。
package synthesis

import (
	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// Synthesizer 动作合成器
type Synthesizer interface {
	// Time 当前播放位置
	Time() motion.SamplingTime
	// WorldRootTransform 当前世界根变换
	WorldRootTransform() utils.AffineTransform
	// SetWorldTransform 覆盖世界根变换
	SetWorldTransform(t utils.AffineTransform)
	// Push 从指定时间开始播放
	Push(t motion.TimeIndex)
	// PlayFirstSequence 播放候选序列中的第一个
	PlayFirstSequence(sequences []motion.PoseSequence) bool
	// MatchPose 只按姿态匹配（待机）
	MatchPose(sequences []motion.PoseSequence, threshold float64) bool
	// MatchPoseAndTrajectory 按姿态与期望轨迹匹配（移动）
	MatchPoseAndTrajectory(sequences []motion.PoseSequence, trajectory Trajectory, responsiveness, minTrajectoryDeviation float64) bool
	// CurrentVelocity 根节点当前世界速度
	CurrentVelocity() utils.Vec3
	// RootMotion 上一次 Update 产生的根运动（根空间）
	RootMotion() utils.AffineTransform
	// Update 推进播放
	Update(deltaTime float64)
}

// Library 合成器所需的动作库接口（*motion.Library 实现了它）
type Library interface {
	SampleRate() float64
	GetSegment(i motion.SegmentIndex) *motion.Segment
	GetTag(i motion.TagIndex) *motion.Tag
	GetInterval(seq motion.PoseSequence) motion.TimeIndex
	Contains(seq motion.PoseSequence, t motion.TimeIndex) bool
	GlobalFrame(t motion.TimeIndex) int
	GetTrajectoryTransformBetween(frame, delta int) utils.AffineTransform
	TrajectoryDelta(from, to motion.SamplingTime) utils.AffineTransform
	Advance(t motion.SamplingTime, deltaTime float64) motion.SamplingTime
	ReconstructPoseFragment(t motion.SamplingTime) motion.PoseFragment
	FeatureDeviation(a, b motion.PoseFragment) float64
}

var _ Library = (*motion.Library)(nil)

// TrajectorySample 期望轨迹上的一个采样：相对当前根节点的变换
type TrajectorySample struct {
	// Time 距离现在的时间（秒，正值为未来）
	Time      float64
	Transform utils.AffineTransform
}

// Trajectory 期望的未来轨迹（根空间）
type Trajectory []TrajectorySample
