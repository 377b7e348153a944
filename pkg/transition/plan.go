package transition

import (
	"math"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// commitEpsilon 浮点累加的容差
const commitEpsilon = 1e-9

// Plan 过渡计划
//
// 源轨迹从搜索时的播放位置与世界根变换出发，由计划自己按动作库的
// 轨迹增量推进；目标轨迹是源轨迹右乘固定偏移 delta，
// 使得在提交时刻（源候选 k 处）恰好与目标候选 j 重合。
type Plan struct {
	SourceTimeIndex     motion.TimeIndex
	TargetTimeIndex     motion.TimeIndex
	SourceRootTransform utils.AffineTransform
	TargetRootTransform utils.AffineTransform

	// Elapsed 已经过的时间（秒）
	Elapsed float64
	// TotalDuration 混合总时长：k / SampleRate
	TotalDuration float64
	// ContactDuration 提交后目标动画到达接触帧所需时间
	ContactDuration float64

	delta       utils.AffineTransform
	sourceTime  motion.SamplingTime
	sourceWorld utils.AffineTransform
}

// NewPlan 根据搜索结果创建过渡计划
func NewPlan(db Database, match Match, samplingTime motion.SamplingTime, worldRoot utils.AffineTransform) *Plan {
	rate := db.SampleRate()
	contactFrames := match.ContactFrame - match.Target.TimeIndex.Frame
	if contactFrames < 0 {
		contactFrames = 0
	}

	return &Plan{
		SourceTimeIndex:     match.Source.TimeIndex,
		TargetTimeIndex:     match.Target.TimeIndex,
		SourceRootTransform: match.Source.WorldRootTransform,
		TargetRootTransform: match.Target.WorldRootTransform,
		TotalDuration:       float64(match.SourceIndex) / rate,
		ContactDuration:     float64(contactFrames) / rate,
		delta:               match.Source.WorldRootTransform.InverseTimes(match.Target.WorldRootTransform),
		sourceTime:          samplingTime,
		sourceWorld:         worldRoot,
	}
}

// Theta 混合权重 clamp(elapsed / total, 0, 1)；总时长为 0 时为 1
func (p *Plan) Theta() float64 {
	if p.TotalDuration <= 0 {
		return 1
	}
	return utils.Saturate(p.Elapsed / p.TotalDuration)
}

// Committed 是否已到达源提交帧
func (p *Plan) Committed() bool {
	return p.Elapsed >= p.TotalDuration-commitEpsilon
}

// TimeRemaining 距离目标动画到达接触帧的剩余时间
func (p *Plan) TimeRemaining() float64 {
	return math.Max(0, p.TotalDuration-p.Elapsed) + p.ContactDuration
}

// SourceTrajectory 源轨迹在当前经过时间处的世界根变换
func (p *Plan) SourceTrajectory() utils.AffineTransform {
	return p.sourceWorld
}

// TargetTrajectory 目标轨迹在当前经过时间处的世界根变换
func (p *Plan) TargetTrajectory() utils.AffineTransform {
	return p.sourceWorld.Mul(p.delta)
}

// RootTransform 当前的混合根变换
func (p *Plan) RootTransform() utils.AffineTransform {
	return utils.BlendAffine(p.SourceTrajectory(), p.TargetTrajectory(), p.Theta())
}

// Advance 推进计划并返回新的混合根变换
//
// 经过时间不会超过总时长，提交时刻源轨迹精确停在源候选处。
func (p *Plan) Advance(db Database, deltaTime float64) utils.AffineTransform {
	remaining := p.TotalDuration - p.Elapsed
	if deltaTime > remaining {
		deltaTime = remaining
	}
	if deltaTime > 0 {
		next := db.Advance(p.sourceTime, deltaTime)
		p.sourceWorld = p.sourceWorld.Mul(db.TrajectoryDelta(p.sourceTime, next))
		p.sourceTime = next
		p.Elapsed += deltaTime
	}
	if p.Committed() {
		p.Elapsed = p.TotalDuration
		p.sourceWorld = p.SourceRootTransform
	}
	return p.RootTransform()
}
