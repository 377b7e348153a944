package utils

// AffineTransform 刚体变换（平移 + 旋转，无缩放）
//
// 用于描述角色根节点的世界变换、轨迹增量以及接触点坐标系。
// 组合规则：a.Mul(b) 先应用 b 再应用 a，即 b 在 a 的局部空间中表示。
type AffineTransform struct {
	T Vec3 // 平移
	Q Quat // 旋转
}

// AffineIdentity 单位变换
var AffineIdentity = AffineTransform{Q: QuatIdentity}

// NewAffineTransform 创建刚体变换
func NewAffineTransform(t Vec3, q Quat) AffineTransform {
	return AffineTransform{T: t, Q: q}
}

// Mul 变换组合
func (a AffineTransform) Mul(b AffineTransform) AffineTransform {
	return AffineTransform{
		T: a.T.Add(a.Q.Rotate(b.T)),
		Q: a.Q.Mul(b.Q).Normalize(),
	}
}

// Inverse 逆变换
func (a AffineTransform) Inverse() AffineTransform {
	inv := a.Q.Conjugate()
	return AffineTransform{
		T: inv.Rotate(a.T.Neg()),
		Q: inv,
	}
}

// InverseTimes 计算 a⁻¹·b，即从 a 到 b 的相对变换（轨迹增量）
func (a AffineTransform) InverseTimes(b AffineTransform) AffineTransform {
	return a.Inverse().Mul(b)
}

// TransformPoint 把局部点变换到世界空间
func (a AffineTransform) TransformPoint(p Vec3) Vec3 {
	return a.T.Add(a.Q.Rotate(p))
}

// InverseTransformPoint 把世界点变换到局部空间
func (a AffineTransform) InverseTransformPoint(p Vec3) Vec3 {
	return a.Q.Conjugate().Rotate(p.Sub(a.T))
}

// TransformDirection 只旋转方向
func (a AffineTransform) TransformDirection(d Vec3) Vec3 {
	return a.Q.Rotate(d)
}

// InverseTransformDirection 把世界方向旋转到局部空间
func (a AffineTransform) InverseTransformDirection(d Vec3) Vec3 {
	return a.Q.Conjugate().Rotate(d)
}

// Forward 局部 Z 轴在世界中的方向
func (a AffineTransform) Forward() Vec3 {
	return a.Q.ZAxis()
}

// ApproxEqual 在容差内比较两个变换
func (a AffineTransform) ApproxEqual(b AffineTransform, epsilon float64) bool {
	return a.T.ApproxEqual(b.T, epsilon) && a.Q.ApproxEqual(b.Q, epsilon)
}

// BlendAffine 刚体变换插值：位置线性插值，旋转球面插值
//
// theta=0 精确返回 a，theta=1 精确返回 b。
func BlendAffine(a, b AffineTransform, theta float64) AffineTransform {
	if theta <= 0 {
		return a
	}
	if theta >= 1 {
		return b
	}
	return AffineTransform{
		T: LerpVec3(a.T, b.T, theta),
		Q: Slerp(a.Q, b.Q, theta).Normalize(),
	}
}
