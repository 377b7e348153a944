package transition

import (
	"errors"
	"fmt"
	"sync"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// ErrMissingAnchor 片段没有 Anchor 标记（制作错误，该片段不参与搜索）
var ErrMissingAnchor = errors.New("segment has no anchor marker")

// Candidate 候选：世界根变换 + 动作库时间
type Candidate struct {
	WorldRootTransform utils.AffineTransform
	TimeIndex          motion.TimeIndex
}

// candidateArena 单次搜索的候选缓冲区
//
// 从 arenaPool 获取，搜索结束时归还；候选不会在搜索之外存活。
type candidateArena struct {
	sources []Candidate
	targets []Candidate
}

var arenaPool = sync.Pool{
	New: func() any {
		return &candidateArena{
			sources: make([]Candidate, 0, 64),
			targets: make([]Candidate, 0, 64),
		}
	},
}

func acquireArena() *candidateArena {
	return arenaPool.Get().(*candidateArena)
}

func (a *candidateArena) release() {
	a.sources = a.sources[:0]
	a.targets = a.targets[:0]
	arenaPool.Put(a)
}

// NumSourceCandidates 源候选数量：trunc(TimeHorizon * SampleRate)，至少 1
func NumSourceCandidates(db Database) int {
	n := utils.TruncToInt(db.TimeHorizon() * db.SampleRate())
	if n < 1 {
		n = 1
	}
	return n
}

// SourceCandidates 生成源候选
//
// 从当前采样时间与世界根变换出发，以 1/SampleRate 为步长向前推进，
// 把每一步的轨迹增量累加到世界变换上。第 0 个候选就是当前状态。
//
// 参数:
//   - db: 动作库
//   - dst: 复用的缓冲区（会被截断后追加）
//   - samplingTime: 当前播放位置
//   - worldRoot: 当前世界根变换
//
// 返回:
//   - []Candidate: 按时间排序的源候选
func SourceCandidates(db Database, dst []Candidate, samplingTime motion.SamplingTime, worldRoot utils.AffineTransform) []Candidate {
	n := NumSourceCandidates(db)
	step := 1 / db.SampleRate()

	dst = append(dst[:0], Candidate{WorldRootTransform: worldRoot, TimeIndex: samplingTime.TimeIndex})

	for i := 1; i < n; i++ {
		next := db.Advance(samplingTime, step)
		worldRoot = worldRoot.Mul(db.TrajectoryDelta(samplingTime, next))
		samplingTime = next
		dst = append(dst, Candidate{WorldRootTransform: worldRoot, TimeIndex: samplingTime.TimeIndex})
	}
	return dst
}

// ContactFrame 片段的接触帧：Contact 标记所在帧，没有时退化为 Anchor 帧
func ContactFrame(db Database, segment motion.SegmentIndex) (int, error) {
	anchorIndex, ok := db.FindMarker(segment, motion.MarkerAnchor)
	if !ok {
		return 0, fmt.Errorf("segment %q: %w", db.GetSegment(segment).Name, ErrMissingAnchor)
	}
	if contactIndex, ok := db.FindMarker(segment, motion.MarkerContact); ok {
		return db.GetMarker(contactIndex).Frame, nil
	}
	return db.GetMarker(anchorIndex).Frame, nil
}

// TargetCandidates 生成目标候选
//
// 把 Anchor 标记的局部变换乘上接触变换得到锚点的世界变换，
// 反推到片段第一帧，再逐帧向前累加，覆盖 [0, 接触帧) 区间（至少一个候选）。
//
// 返回:
//   - []Candidate: 按帧排序的目标候选
//   - error: 片段缺少 Anchor 标记时返回 ErrMissingAnchor
func TargetCandidates(db Database, dst []Candidate, segment motion.SegmentIndex, contact utils.AffineTransform) ([]Candidate, error) {
	dst = dst[:0]

	anchorIndex, ok := db.FindMarker(segment, motion.MarkerAnchor)
	if !ok {
		return dst, fmt.Errorf("segment %q: %w", db.GetSegment(segment).Name, ErrMissingAnchor)
	}
	anchorMarker := db.GetMarker(anchorIndex)
	payload, ok := motion.GetPayload[motion.AnchorPayload](db, anchorMarker.Trait)
	if !ok {
		return dst, fmt.Errorf("segment %q: anchor marker without transform: %w",
			db.GetSegment(segment).Name, ErrMissingAnchor)
	}

	seg := db.GetSegment(segment)
	numCandidates, err := ContactFrame(db, segment)
	if err != nil {
		return dst, err
	}
	if numCandidates > seg.NumFrames {
		numCandidates = seg.NumFrames
	}
	if numCandidates < 1 {
		numCandidates = 1
	}

	anchorFrame := seg.FirstFrame + anchorMarker.Frame
	anchorWorld := contact.Mul(payload.Transform)
	worldRoot := anchorWorld.Mul(db.GetTrajectoryTransformBetween(anchorFrame, -anchorMarker.Frame))

	dst = append(dst, Candidate{WorldRootTransform: worldRoot, TimeIndex: motion.NewTimeIndex(segment, 0)})

	previous := db.GetTrajectoryTransform(seg.FirstFrame)
	for i := 1; i < numCandidates; i++ {
		current := db.GetTrajectoryTransform(seg.FirstFrame + i)
		worldRoot = worldRoot.Mul(previous.InverseTimes(current))
		previous = current
		dst = append(dst, Candidate{WorldRootTransform: worldRoot, TimeIndex: motion.NewTimeIndex(segment, i)})
	}
	return dst, nil
}
