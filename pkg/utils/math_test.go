package utils

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const epsilon = 1e-9

// TestAffineInverse 测试变换与逆变换组合为单位变换
func TestAffineInverse(t *testing.T) {
	a := NewAffineTransform(NewVec3(1, 2, 3), QuatYaw(0.7).Mul(QuatAxisAngle(Right, 0.3)))

	id := a.Mul(a.Inverse())
	assert.True(t, id.ApproxEqual(AffineIdentity, 1e-9), "a*a⁻¹ = %+v", id)

	p := NewVec3(-4, 0.5, 9)
	back := a.InverseTransformPoint(a.TransformPoint(p))
	assert.True(t, back.ApproxEqual(p, epsilon), "round trip = %+v", back)
}

// TestAffineInverseTimes 测试轨迹增量 prev⁻¹·curr 组合后回到 curr
func TestAffineInverseTimes(t *testing.T) {
	prev := NewAffineTransform(NewVec3(0, 0, 1), QuatYaw(0.2))
	curr := NewAffineTransform(NewVec3(0.3, 0, 1.5), QuatYaw(0.5))

	delta := prev.InverseTimes(curr)
	got := prev.Mul(delta)
	assert.True(t, got.ApproxEqual(curr, 1e-9), "prev*delta = %+v", got)
}

// TestQuatRotate 测试绕 Y 轴旋转 90° 把前方转到右方
func TestQuatRotate(t *testing.T) {
	q := QuatYaw(math.Pi / 2)
	got := q.Rotate(Forward)
	assert.True(t, got.ApproxEqual(Right, 1e-9), "rotated = %+v", got)
}

// TestSlerpEndpoints 测试球面插值端点
func TestSlerpEndpoints(t *testing.T) {
	a := QuatYaw(0.1)
	b := QuatYaw(1.3)

	assert.True(t, Slerp(a, b, 0).ApproxEqual(a, 1e-12))
	assert.True(t, Slerp(a, b, 1).ApproxEqual(b, 1e-12))

	mid := Slerp(a, b, 0.5)
	assert.True(t, mid.ApproxEqual(QuatYaw(0.7), 1e-9), "mid = %+v", mid)
}

// TestBlendAffineExactAtZero 测试 theta=0 时混合结果与源变换完全相同
func TestBlendAffineExactAtZero(t *testing.T) {
	a := NewAffineTransform(NewVec3(1, 0, 0), QuatYaw(0.4))
	b := NewAffineTransform(NewVec3(3, 1, 0), QuatYaw(-0.4))

	assert.Equal(t, a, BlendAffine(a, b, 0))
	assert.Equal(t, b, BlendAffine(a, b, 1))

	half := BlendAffine(a, b, 0.5)
	assert.InDelta(t, 2.0, half.T.X, epsilon)
	assert.InDelta(t, 0.5, half.T.Y, epsilon)
}

// TestLookRotation 测试 LookRotation 的 Z 轴与 forward 一致
func TestLookRotation(t *testing.T) {
	tests := []struct {
		name    string
		forward Vec3
	}{
		{"前方", Forward},
		{"后方", Forward.Neg()},
		{"右方", Right},
		{"斜向", NewVec3(1, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := LookRotation(tt.forward, Up)
			got := q.ZAxis()
			assert.True(t, got.ApproxEqual(tt.forward.Normalize(), 1e-9), "z axis = %+v", got)
			assert.InDelta(t, 1.0, q.YAxis().Dot(Up), 1e-9)
		})
	}
}

// TestFromToRotation 测试最短旋转，包括反向情况
func TestFromToRotation(t *testing.T) {
	tests := []struct {
		name     string
		from, to Vec3
	}{
		{"相同", Forward, Forward},
		{"垂直", Forward, Right},
		{"反向", Forward, Forward.Neg()},
		{"斜向", NewVec3(1, 2, 3), NewVec3(-3, 0, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := FromToRotation(tt.from, tt.to)
			got := q.Rotate(tt.from.Normalize())
			assert.True(t, got.ApproxEqual(tt.to.Normalize(), 1e-9), "rotated = %+v", got)
		})
	}
}

// TestAngularError 测试夹角计算：平行为 0，反向为 π，不产生 NaN
func TestAngularError(t *testing.T) {
	assert.Equal(t, 0.0, AngularError(Forward, Forward))

	antiparallel := AngularError(Forward, Forward.Neg())
	require.False(t, math.IsNaN(antiparallel))
	assert.InDelta(t, math.Pi, antiparallel, 1e-12)

	// 点积因浮点误差略超出 [-1, 1]
	slightlyLong := Vec3{0, 0, 1 + 1e-12}
	assert.False(t, math.IsNaN(AngularError(slightlyLong, Forward)))
	assert.False(t, math.IsNaN(AngularError(slightlyLong, Forward.Neg())))

	assert.InDelta(t, math.Pi/2, AngularError(Forward, Right), 1e-12)
}

// TestOBBOverlaps 测试有向包围盒相交判断
func TestOBBOverlaps(t *testing.T) {
	unit := OBB{Transform: AffineIdentity, Size: Vec3One}

	tests := []struct {
		name  string
		other OBB
		want  bool
	}{
		{"完全重叠", unit, true},
		{"部分重叠", OBB{Transform: NewAffineTransform(NewVec3(0.5, 0, 0), QuatIdentity), Size: Vec3One}, true},
		{"边界接触", OBB{Transform: NewAffineTransform(NewVec3(1, 0, 0), QuatIdentity), Size: Vec3One}, true},
		{"水平分离", OBB{Transform: NewAffineTransform(NewVec3(1.5, 0, 0), QuatIdentity), Size: Vec3One}, false},
		{"旋转 45° 角点刺入", OBB{Transform: NewAffineTransform(NewVec3(1.2, 0, 0), QuatYaw(math.Pi/4)), Size: Vec3One}, true},
		{"旋转 45° 分离", OBB{Transform: NewAffineTransform(NewVec3(1.3, 0, 0), QuatYaw(math.Pi/4)), Size: Vec3One}, false},
		{"中心偏移", OBB{Transform: AffineIdentity, Center: NewVec3(0, 3, 0), Size: Vec3One}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, unit.Overlaps(tt.other))
			assert.Equal(t, tt.want, tt.other.Overlaps(unit))
		})
	}
}

// TestOBBContainsPoint 测试点包含
func TestOBBContainsPoint(t *testing.T) {
	box := OBB{Transform: NewAffineTransform(NewVec3(0, 1, 0), QuatYaw(math.Pi/2)), Size: NewVec3(2, 2, 4)}

	assert.True(t, box.ContainsPoint(NewVec3(0, 1, 0)))
	// 旋转 90° 后长边沿 X 轴
	assert.True(t, box.ContainsPoint(NewVec3(1.9, 1, 0)))
	assert.False(t, box.ContainsPoint(NewVec3(0, 1, 1.9)))
}

// TestSaturate 测试截断函数
func TestSaturate(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected float64
	}{
		{"负数", -3, 0},
		{"区间内", 0.25, 0.25},
		{"超出", 7, 1},
		{"NaN", math.NaN(), 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, Saturate(tt.input))
		})
	}
}

// TestCriticallyDampedSpring 测试弹簧收敛到目标
func TestCriticallyDampedSpring(t *testing.T) {
	var s SmoothValue
	for i := 0; i < 240; i++ {
		s.CriticallyDampedSpring(10, 1.0/60.0, 0.5)
		require.False(t, math.IsNaN(s.Current), "frame %d", i)
	}
	assert.InDelta(t, 10.0, s.Current, 1e-3)

	s.CriticallyDampedSpring(-2, 1.0/60.0, 0)
	assert.Equal(t, -2.0, s.Current)
}

// TestAccumulateRootMotion 测试根运动累加与瞬移检测
func TestAccumulateRootMotion(t *testing.T) {
	world := NewAffineTransform(NewVec3(5, 0, 5), QuatYaw(math.Pi/2))
	prev := NewAffineTransform(NewVec3(0, 0, 0), QuatIdentity)
	curr := NewAffineTransform(NewVec3(0, 0, 0.1), QuatIdentity)

	got := AccumulateRootMotion(world, prev.InverseTimes(curr))
	// 世界中朝 +X，前进 0.1 米
	assert.True(t, got.T.ApproxEqual(NewVec3(5.1, 0, 5), 1e-9), "got %+v", got.T)

	teleport := NewAffineTransform(NewVec3(0, 0, 40), QuatIdentity)
	assert.Equal(t, world, AccumulateRootMotion(world, prev.InverseTimes(teleport)))

	delta, ok := GuardRootMotion(prev.InverseTimes(teleport))
	assert.False(t, ok)
	assert.Equal(t, AffineIdentity, delta)
}
