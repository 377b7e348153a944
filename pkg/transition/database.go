// Package transition 实现锚定过渡：在动作库中搜索与当前轨迹最吻合、
// 且被锚定到接触几何上的姿态序列，并逐帧把角色根节点引导到该序列上。
//
// 组成（从底层到上层）：
//   - candidates.go: 源候选（当前运动的前向外推）与目标候选（锚点反推）
//   - search.go: 两级策略的过渡搜索
//   - plan.go: 时间重映射混合计划
//   - task.go: AnchoredTransitionTask 状态机
package transition

import (
	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// Database 过渡搜索所需的动作库接口（*motion.Library 实现了它）
type Database interface {
	motion.TraitSource

	SampleRate() float64
	TimeHorizon() float64

	GetSegment(i motion.SegmentIndex) *motion.Segment
	GetMarker(i motion.MarkerIndex) *motion.Marker
	GetTag(i motion.TagIndex) *motion.Tag
	FindMarker(segment motion.SegmentIndex, kind motion.MarkerKind) (motion.MarkerIndex, bool)

	GlobalFrame(t motion.TimeIndex) int
	GetTrajectoryTransform(frame int) utils.AffineTransform
	GetTrajectoryTransformBetween(frame, delta int) utils.AffineTransform
	TrajectoryTransformAt(t motion.SamplingTime) utils.AffineTransform
	TrajectoryDelta(from, to motion.SamplingTime) utils.AffineTransform
	Advance(t motion.SamplingTime, deltaTime float64) motion.SamplingTime

	ReconstructPoseFragment(t motion.SamplingTime) motion.PoseFragment
	CreatePoseFragment(metric motion.MetricIndex, t motion.SamplingTime) motion.PoseFragment
	FeatureDeviation(a, b motion.PoseFragment) float64
}

// Synthesizer 过渡任务驱动的动作合成器接口
//
// 完整的合成器见 pkg/synthesis；这里只声明任务需要的部分。
type Synthesizer interface {
	// Time 当前播放位置
	Time() motion.SamplingTime
	// WorldRootTransform 当前世界根变换
	WorldRootTransform() utils.AffineTransform
	// SetWorldTransform 覆盖世界根变换
	SetWorldTransform(t utils.AffineTransform)
	// Push 从指定时间开始播放（拼接目标动画）
	Push(t motion.TimeIndex)
}

var _ Database = (*motion.Library)(nil)
