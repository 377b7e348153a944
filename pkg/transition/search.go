package transition

import (
	"errors"
	"log"
	"math"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// SearchParams 几何容差（角度为弧度）
type SearchParams struct {
	MaximumLinearError  float64
	MaximumAngularError float64
}

// Match 搜索结果
type Match struct {
	// Sequence 命中序列在输入列表中的下标
	Sequence int
	// SourceIndex / TargetIndex 命中候选在各自列表中的下标
	SourceIndex int
	TargetIndex int

	Source Candidate
	Target Candidate

	// ContactFrame 目标片段的接触帧
	ContactFrame int
	// Cost 姿态代价
	Cost float64
}

// LinearError 两个候选根位置之间的三维欧氏距离
func LinearError(source, target utils.AffineTransform) float64 {
	return source.T.Distance(target.T)
}

// AngularError 两个候选前方向之间的夹角（弧度）
func AngularError(source, target utils.AffineTransform) float64 {
	return utils.AngularError(source.Forward(), target.Forward())
}

// Feasible 判断一对候选是否在几何容差内
func (p SearchParams) Feasible(source, target utils.AffineTransform) bool {
	if LinearError(source, target) > p.MaximumLinearError {
		return false
	}
	return AngularError(source, target) <= p.MaximumAngularError
}

// FindTransition 在候选序列中搜索锚定过渡
//
// 策略（两级）：
//   - 按输入顺序遍历序列，对每个目标候选 j（从 0 开始）扫描源候选 k（从 0 开始），
//     只取第一个几何可行的 k；
//   - 这些"每个目标的首个可行对"之间比较姿态代价，严格更小者胜出，相等时保留先找到的。
//
// 缺少 Anchor 标记的序列记录警告后跳过。没有任何可行对时返回 false。
//
// 参数:
//   - db: 动作库
//   - samplingTime: 当前播放位置
//   - worldRoot: 当前世界根变换
//   - sequences: 按标签筛选出的候选序列
//   - contact: 世界接触变换
//   - params: 几何容差
//
// 返回:
//   - Match: 最优匹配
//   - bool: 是否找到
func FindTransition(db Database, samplingTime motion.SamplingTime, worldRoot utils.AffineTransform,
	sequences []motion.PoseSequence, contact utils.AffineTransform, params SearchParams) (Match, bool) {

	arena := acquireArena()
	defer arena.release()

	arena.sources = SourceCandidates(db, arena.sources, samplingTime, worldRoot)
	sources := arena.sources

	best := Match{Cost: math.Inf(1)}
	found := false

	for i, seq := range sequences {
		segment := db.GetTag(seq.Tag).Segment

		targets, err := TargetCandidates(db, arena.targets, segment, contact)
		arena.targets = targets
		if err != nil {
			if errors.Is(err, ErrMissingAnchor) {
				log.Printf("[AnchoredTransition] ⚠️ Skipping sequence %d: %v", i, err)
				continue
			}
			log.Printf("[AnchoredTransition] ⚠️ Failed to build targets for sequence %d: %v", i, err)
			continue
		}
		contactFrame, _ := ContactFrame(db, segment)

		for j := range targets {
			target := &targets[j]

			for k := range sources {
				source := &sources[k]
				if !params.Feasible(source.WorldRootTransform, target.WorldRootTransform) {
					continue
				}

				cost := db.FeatureDeviation(
					db.ReconstructPoseFragment(motion.NewSamplingTime(source.TimeIndex)),
					db.ReconstructPoseFragment(motion.NewSamplingTime(target.TimeIndex)))

				if !found || cost < best.Cost {
					best = Match{
						Sequence:     i,
						SourceIndex:  k,
						TargetIndex:  j,
						Source:       *source,
						Target:       *target,
						ContactFrame: contactFrame,
						Cost:         cost,
					}
					found = true
				}
				// 每个目标只考虑第一个可行的源候选
				break
			}
		}
	}

	return best, found
}
