package synthesis

import (
	"log"
	"math"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

var _ Synthesizer = (*Playback)(nil)

// Playback 参考合成器：沿动作库时间线回放并累加根运动
//
// 同一时间只播放一个位置，不做姿态混合；跳转立即生效。
type Playback struct {
	lib Library

	time      motion.SamplingTime
	world     utils.AffineTransform
	velocity  utils.Vec3
	rootDelta utils.AffineTransform
	deltaTime float64

	// Debug 打开跳转日志
	Debug bool
}

// NewPlayback 创建合成器
//
// 参数:
//   - lib: 动作库
//   - start: 初始播放位置
//   - world: 初始世界根变换
func NewPlayback(lib Library, start motion.TimeIndex, world utils.AffineTransform) *Playback {
	return &Playback{
		lib:       lib,
		time:      motion.NewSamplingTime(start),
		world:     world,
		rootDelta: utils.AffineIdentity,
	}
}

// Time 当前播放位置
func (p *Playback) Time() motion.SamplingTime { return p.time }

// WorldRootTransform 当前世界根变换
func (p *Playback) WorldRootTransform() utils.AffineTransform { return p.world }

// SetWorldTransform 覆盖世界根变换
func (p *Playback) SetWorldTransform(t utils.AffineTransform) { p.world = t }

// CurrentVelocity 根节点当前世界速度
func (p *Playback) CurrentVelocity() utils.Vec3 { return p.velocity }

// RootMotion 上一次 Update 的根运动
func (p *Playback) RootMotion() utils.AffineTransform { return p.rootDelta }

// DeltaTime 上一次 Update 的时间步长
func (p *Playback) DeltaTime() float64 { return p.deltaTime }

// Library 所使用的动作库
func (p *Playback) Library() Library { return p.lib }

// Push 立即跳到指定时间
func (p *Playback) Push(t motion.TimeIndex) {
	if p.Debug {
		log.Printf("[Synthesizer] Push segment %d frame %d", t.Segment, t.Frame)
	}
	p.time = motion.NewSamplingTime(t)
}

// PlayFirstSequence 播放候选中的第一个序列
func (p *Playback) PlayFirstSequence(sequences []motion.PoseSequence) bool {
	if len(sequences) == 0 {
		return false
	}
	p.Push(p.lib.GetInterval(sequences[0]))
	return true
}

// IsPlaying 当前位置是否落在某个候选序列内
func (p *Playback) IsPlaying(sequences []motion.PoseSequence) bool {
	for _, seq := range sequences {
		if p.lib.Contains(seq, p.time.TimeIndex) {
			return true
		}
	}
	return false
}

// MatchPose 在候选序列中寻找与当前姿态最接近的帧
//
// 正在播放候选序列时不跳转；最佳代价不低于 threshold 时也不跳转。
func (p *Playback) MatchPose(sequences []motion.PoseSequence, threshold float64) bool {
	if len(sequences) == 0 {
		return false
	}
	if p.IsPlaying(sequences) {
		return true
	}

	current := p.lib.ReconstructPoseFragment(p.time)
	best, bestCost := motion.InvalidTimeIndex, math.Inf(1)
	p.eachFrame(sequences, func(t motion.TimeIndex) {
		cost := p.lib.FeatureDeviation(current, p.lib.ReconstructPoseFragment(motion.NewSamplingTime(t)))
		if cost < bestCost {
			best, bestCost = t, cost
		}
	})

	if !best.IsValid() || bestCost >= threshold {
		return false
	}
	p.Push(best)
	return true
}

// MatchPoseAndTrajectory 按姿态与期望轨迹的加权代价选择下一帧
//
// 代价 = (1 - responsiveness) * 姿态距离 + responsiveness * 轨迹距离。
// 正在播放候选序列时，只有最佳候选的轨迹距离比当前位置至少好
// minTrajectoryDeviation 才会跳转。
func (p *Playback) MatchPoseAndTrajectory(sequences []motion.PoseSequence, trajectory Trajectory, responsiveness, minTrajectoryDeviation float64) bool {
	if len(sequences) == 0 {
		return false
	}
	responsiveness = utils.Saturate(responsiveness)

	current := p.lib.ReconstructPoseFragment(p.time)
	best, bestCost, bestTrajectory := motion.InvalidTimeIndex, math.Inf(1), math.Inf(1)

	p.eachFrame(sequences, func(t motion.TimeIndex) {
		poseCost := p.lib.FeatureDeviation(current, p.lib.ReconstructPoseFragment(motion.NewSamplingTime(t)))
		trajectoryCost := p.TrajectoryDeviation(t, trajectory)
		cost := (1-responsiveness)*poseCost + responsiveness*trajectoryCost
		if cost < bestCost {
			best, bestCost, bestTrajectory = t, cost, trajectoryCost
		}
	})

	if !best.IsValid() {
		return false
	}

	if p.IsPlaying(sequences) {
		currentTrajectory := p.TrajectoryDeviation(p.time.TimeIndex, trajectory)
		if currentTrajectory-bestTrajectory <= minTrajectoryDeviation {
			return true
		}
	}

	if best != p.time.TimeIndex {
		p.Push(best)
	}
	return true
}

// TrajectoryDeviation 从 t 开始播放时的未来根轨迹与期望轨迹的均方根位置误差
func (p *Playback) TrajectoryDeviation(t motion.TimeIndex, trajectory Trajectory) float64 {
	if len(trajectory) == 0 {
		return 0
	}
	rate := p.lib.SampleRate()
	frame := p.lib.GlobalFrame(t)
	remaining := p.lib.GetSegment(t.Segment).LastFrame() - t.Frame

	sum := 0.0
	for _, sample := range trajectory {
		offset := int(math.Round(sample.Time * rate))
		if offset > remaining {
			offset = remaining
		}
		clip := p.lib.GetTrajectoryTransformBetween(frame, offset)
		sum += clip.T.Sub(sample.Transform.T).LengthSq()
	}
	return math.Sqrt(sum / float64(len(trajectory)))
}

func (p *Playback) eachFrame(sequences []motion.PoseSequence, fn func(t motion.TimeIndex)) {
	for _, seq := range sequences {
		tag := p.lib.GetTag(seq.Tag)
		for f := 0; f < tag.NumFrames; f++ {
			fn(motion.NewTimeIndex(tag.Segment, tag.FirstFrame+f))
		}
	}
}

// Update 推进播放位置并累加根运动
func (p *Playback) Update(deltaTime float64) {
	p.deltaTime = deltaTime
	if deltaTime <= 0 {
		p.rootDelta = utils.AffineIdentity
		return
	}

	next := p.lib.Advance(p.time, deltaTime)
	delta, ok := utils.GuardRootMotion(p.lib.TrajectoryDelta(p.time, next))
	if !ok {
		log.Printf("[Playback] ⚠️ Root motion jump at %v ignored", p.time.TimeIndex)
	}
	p.rootDelta = delta
	p.time = next

	previous := p.world.T
	p.world = utils.AccumulateRootMotion(p.world, p.rootDelta)
	p.velocity = p.world.T.Sub(previous).Scale(1 / deltaTime)
}
