package abilities

import (
	"math"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// Overlapper 场景重叠查询
type Overlapper interface {
	OverlapBox(box utils.OBB) bool
}

// ContactBounds 把标签的净空盒变换到世界空间，并向内收缩 contactThreshold
//
// 收缩后的边长不小于 0。
func ContactBounds(bounds []utils.OBB, contact utils.AffineTransform, contactThreshold float64) []utils.OBB {
	out := make([]utils.OBB, 0, len(bounds))
	for _, b := range bounds {
		world := b.Transformed(contact)
		shrink := 2 * contactThreshold
		world.Size = utils.Vec3{
			X: math.Max(world.Size.X-shrink, 0),
			Y: math.Max(world.Size.Y-shrink, 0),
			Z: math.Max(world.Size.Z-shrink, 0),
		}
		out = append(out, world)
	}
	return out
}

// QueryPoseSequences 按 trait 查询候选序列，并剔除净空盒与场景相交的序列
//
// 参数:
//   - lib: 动作库
//   - world: 场景重叠查询（通常是移动控制器）
//   - contact: 世界接触变换
//   - trait: 标签，如 Ledge+Mount
//   - contactThreshold: 净空盒收缩距离（米）
//
// 返回:
//   - []motion.PoseSequence: 可以在该接触处播放的序列（库顺序）
func QueryPoseSequences(lib *motion.Library, world Overlapper, contact utils.AffineTransform, trait motion.Trait, contactThreshold float64) []motion.PoseSequence {
	candidates := lib.Query(trait).Sequences()
	out := candidates[:0]

	for _, seq := range candidates {
		tag := lib.GetTag(seq.Tag)
		if blocked(world, ContactBounds(tag.Bounds, contact, contactThreshold)) {
			continue
		}
		out = append(out, seq)
	}
	return out
}

func blocked(world Overlapper, bounds []utils.OBB) bool {
	for _, b := range bounds {
		if world.OverlapBox(b) {
			return true
		}
	}
	return false
}

// ClosestEdgeTransform 返回盒子顶面上离 p 最近的边上的接触变换
//
// 位置为边上离 p 最近的点，前方为该边的水平外法线。
func ClosestEdgeTransform(collider *geometry.BoxCollider, p utils.Vec3) utils.AffineTransform {
	vertices := collider.TopVertices()

	best := edgeTransform(vertices[0], vertices[1], p)
	minimum := best.T.Distance(p)
	for i := 1; i < len(vertices); i++ {
		candidate := edgeTransform(vertices[i], vertices[(i+1)%len(vertices)], p)
		if d := candidate.T.Distance(p); d < minimum {
			best, minimum = candidate, d
		}
	}
	return best
}

// edgeTransform 线段 ab 上离 p 最近的点；顶点按 TopVertices 的环绕顺序给出时 (b-a)×up 指向盒外
func edgeTransform(a, b, p utils.Vec3) utils.AffineTransform {
	ab := b.Sub(a)
	t := 0.0
	if l := ab.LengthSq(); l > 1e-12 {
		t = utils.Saturate(p.Sub(a).Dot(ab) / l)
	}
	point := a.Add(ab.Scale(t))
	outward := ab.Cross(utils.Up).Horizontal().Normalize()
	return utils.NewAffineTransform(point, utils.LookRotation(outward, utils.Up))
}
