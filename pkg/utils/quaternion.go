package utils

import "math"

// Quat 单位四元数，表示三维旋转
type Quat struct {
	X, Y, Z, W float64
}

// QuatIdentity 单位旋转
var QuatIdentity = Quat{0, 0, 0, 1}

// QuatAxisAngle 绕轴旋转 angle 弧度
func QuatAxisAngle(axis Vec3, angle float64) Quat {
	axis = axis.Normalize()
	s, c := math.Sincos(angle * 0.5)
	return Quat{axis.X * s, axis.Y * s, axis.Z * s, c}
}

// QuatYaw 绕世界 Y 轴旋转（偏航角，弧度）
func QuatYaw(yaw float64) Quat {
	return QuatAxisAngle(Up, yaw)
}

// Mul 四元数乘法，结果先应用 o 再应用 q
func (q Quat) Mul(o Quat) Quat {
	return Quat{
		q.W*o.X + q.X*o.W + q.Y*o.Z - q.Z*o.Y,
		q.W*o.Y - q.X*o.Z + q.Y*o.W + q.Z*o.X,
		q.W*o.Z + q.X*o.Y - q.Y*o.X + q.Z*o.W,
		q.W*o.W - q.X*o.X - q.Y*o.Y - q.Z*o.Z,
	}
}

// Conjugate 共轭；对单位四元数即为逆
func (q Quat) Conjugate() Quat {
	return Quat{-q.X, -q.Y, -q.Z, q.W}
}

// Dot 四元数点积
func (q Quat) Dot(o Quat) float64 {
	return q.X*o.X + q.Y*o.Y + q.Z*o.Z + q.W*o.W
}

// Normalize 单位化
func (q Quat) Normalize() Quat {
	l := math.Sqrt(q.Dot(q))
	if l < 1e-12 {
		return QuatIdentity
	}
	inv := 1 / l
	return Quat{q.X * inv, q.Y * inv, q.Z * inv, q.W * inv}
}

// Rotate 旋转向量
func (q Quat) Rotate(v Vec3) Vec3 {
	u := Vec3{q.X, q.Y, q.Z}
	t := u.Cross(v).Scale(2)
	return v.Add(t.Scale(q.W)).Add(u.Cross(t))
}

// XAxis 旋转后的局部 X 轴（右）
func (q Quat) XAxis() Vec3 {
	return q.Rotate(Right)
}

// YAxis 旋转后的局部 Y 轴（上）
func (q Quat) YAxis() Vec3 {
	return q.Rotate(Up)
}

// ZAxis 旋转后的局部 Z 轴（前）
func (q Quat) ZAxis() Vec3 {
	return q.Rotate(Forward)
}

// ApproxEqual 判断两个旋转是否等价（q 与 -q 表示同一旋转）
func (q Quat) ApproxEqual(o Quat, epsilon float64) bool {
	return 1-math.Abs(q.Dot(o)) <= epsilon
}

// Slerp 球面线性插值，t=0 返回 a，t=1 返回 b
//
// 两个四元数点积为负时取反 b，保证走最短路径；
// 夹角极小时退化为归一化线性插值，避免除零。
func Slerp(a, b Quat, t float64) Quat {
	d := a.Dot(b)
	if d < 0 {
		b = Quat{-b.X, -b.Y, -b.Z, -b.W}
		d = -d
	}

	if d > 0.9995 {
		return Quat{
			Lerp(a.X, b.X, t),
			Lerp(a.Y, b.Y, t),
			Lerp(a.Z, b.Z, t),
			Lerp(a.W, b.W, t),
		}.Normalize()
	}

	theta := math.Acos(Clamp(d, -1, 1))
	sinTheta := math.Sin(theta)
	wa := math.Sin((1-t)*theta) / sinTheta
	wb := math.Sin(t*theta) / sinTheta

	return Quat{
		a.X*wa + b.X*wb,
		a.Y*wa + b.Y*wb,
		a.Z*wa + b.Z*wb,
		a.W*wa + b.W*wb,
	}
}

// FromToRotation 返回把单位向量 from 旋转到 to 的最短旋转
func FromToRotation(from, to Vec3) Quat {
	from = from.Normalize()
	to = to.Normalize()

	d := from.Dot(to)
	if d >= 1-1e-9 {
		return QuatIdentity
	}

	if d <= -1+1e-9 {
		// 反向：绕任意正交轴旋转 180°
		axis := Right.Cross(from)
		if axis.LengthSq() < 1e-9 {
			axis = Up.Cross(from)
		}
		return QuatAxisAngle(axis, math.Pi)
	}

	axis := from.Cross(to)
	return Quat{axis.X, axis.Y, axis.Z, 1 + d}.Normalize()
}

// LookRotation 构造前方为 forward、上方尽量接近 up 的旋转
func LookRotation(forward, up Vec3) Quat {
	z := forward.Normalize()
	x := up.Cross(z)
	if x.LengthSq() < 1e-12 {
		// forward 与 up 共线，换一个参考轴
		x = Right.Cross(z)
		if x.LengthSq() < 1e-12 {
			x = Forward.Cross(z)
		}
	}
	x = x.Normalize()
	y := z.Cross(x)

	// 旋转矩阵列向量为 x, y, z
	m00, m01, m02 := x.X, y.X, z.X
	m10, m11, m12 := x.Y, y.Y, z.Y
	m20, m21, m22 := x.Z, y.Z, z.Z

	trace := m00 + m11 + m22
	var q Quat
	switch {
	case trace > 0:
		s := math.Sqrt(trace+1) * 2
		q = Quat{(m21 - m12) / s, (m02 - m20) / s, (m10 - m01) / s, 0.25 * s}
	case m00 > m11 && m00 > m22:
		s := math.Sqrt(1+m00-m11-m22) * 2
		q = Quat{0.25 * s, (m01 + m10) / s, (m02 + m20) / s, (m21 - m12) / s}
	case m11 > m22:
		s := math.Sqrt(1+m11-m00-m22) * 2
		q = Quat{(m01 + m10) / s, 0.25 * s, (m12 + m21) / s, (m02 - m20) / s}
	default:
		s := math.Sqrt(1+m22-m00-m11) * 2
		q = Quat{(m02 + m20) / s, (m12 + m21) / s, 0.25 * s, (m10 - m01) / s}
	}
	return q.Normalize()
}

// AngularError 两个方向之间的夹角（弧度）
//
// 必须使用 acos(clamp(dot)) 精确计算：接触角可能接近 90°，
// 小角度近似在那里误差过大；clamp 防止 dot 因浮点误差略超 ±1 时产生 NaN。
func AngularError(a, b Vec3) float64 {
	return math.Acos(Clamp(a.Dot(b), -1, 1))
}
