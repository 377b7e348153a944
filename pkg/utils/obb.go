package utils

import "math"

// OBB 有向包围盒
//
// Transform 给出盒子的坐标系，Center 为盒心在该坐标系中的偏移，
// Size 为完整边长（不是半边长）。
type OBB struct {
	Transform AffineTransform
	Center    Vec3
	Size      Vec3
}

// WorldCenter 盒心世界坐标
func (b OBB) WorldCenter() Vec3 {
	return b.Transform.TransformPoint(b.Center)
}

// Axes 盒子三个轴在世界中的方向
func (b OBB) Axes() [3]Vec3 {
	q := b.Transform.Q
	return [3]Vec3{q.XAxis(), q.YAxis(), q.ZAxis()}
}

// HalfExtents 半边长
func (b OBB) HalfExtents() Vec3 {
	return b.Size.Abs().Scale(0.5)
}

// Transformed 返回在 t 坐标系下表示的盒子（t 左乘）
func (b OBB) Transformed(t AffineTransform) OBB {
	b.Transform = t.Mul(b.Transform)
	return b
}

// ContainsPoint 判断世界点是否在盒内（含边界）
func (b OBB) ContainsPoint(p Vec3) bool {
	local := b.Transform.InverseTransformPoint(p).Sub(b.Center)
	h := b.HalfExtents()
	return math.Abs(local.X) <= h.X &&
		math.Abs(local.Y) <= h.Y &&
		math.Abs(local.Z) <= h.Z
}

// Corners 八个角点的世界坐标
func (b OBB) Corners() [8]Vec3 {
	h := b.HalfExtents()
	var out [8]Vec3
	i := 0
	for _, sx := range [2]float64{-1, 1} {
		for _, sy := range [2]float64{-1, 1} {
			for _, sz := range [2]float64{-1, 1} {
				local := b.Center.Add(Vec3{sx * h.X, sy * h.Y, sz * h.Z})
				out[i] = b.Transform.TransformPoint(local)
				i++
			}
		}
	}
	return out
}

// Overlaps 分离轴测试，判断两个有向包围盒是否相交（接触视为相交）
//
// 测试 15 条候选分离轴：两盒各自的 3 个面法线，以及两两叉积的 9 条轴。
func (b OBB) Overlaps(o OBB) bool {
	axesA := b.Axes()
	axesB := o.Axes()
	ha := b.HalfExtents()
	hb := o.HalfExtents()
	extA := [3]float64{ha.X, ha.Y, ha.Z}
	extB := [3]float64{hb.X, hb.Y, hb.Z}

	d := o.WorldCenter().Sub(b.WorldCenter())

	separated := func(axis Vec3) bool {
		if axis.LengthSq() < 1e-12 {
			// 平行边产生的退化轴，跳过
			return false
		}
		axis = axis.Normalize()
		ra := 0.0
		rb := 0.0
		for i := 0; i < 3; i++ {
			ra += extA[i] * math.Abs(axesA[i].Dot(axis))
			rb += extB[i] * math.Abs(axesB[i].Dot(axis))
		}
		return math.Abs(d.Dot(axis)) > ra+rb
	}

	for i := 0; i < 3; i++ {
		if separated(axesA[i]) || separated(axesB[i]) {
			return false
		}
	}
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			if separated(axesA[i].Cross(axesB[j])) {
				return false
			}
		}
	}
	return true
}
