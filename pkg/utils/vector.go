// Package utils 提供通用工具函数
package utils

import "math"

// Vec3 三维向量（右手坐标系，Y 轴朝上，Z 轴为角色前方）
type Vec3 struct {
	X, Y, Z float64
}

// 常用方向常量
var (
	Vec3Zero = Vec3{}
	Vec3One  = Vec3{1, 1, 1}
	Up       = Vec3{0, 1, 0}
	Right    = Vec3{1, 0, 0}
	Forward  = Vec3{0, 0, 1}
)

// NewVec3 创建向量
func NewVec3(x, y, z float64) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

// Add 向量加法
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// Sub 向量减法
func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

// Scale 数乘
func (v Vec3) Scale(s float64) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

// Mul 分量乘法
func (v Vec3) Mul(o Vec3) Vec3 {
	return Vec3{v.X * o.X, v.Y * o.Y, v.Z * o.Z}
}

// Div 分量除法
func (v Vec3) Div(o Vec3) Vec3 {
	return Vec3{v.X / o.X, v.Y / o.Y, v.Z / o.Z}
}

// Recip 分量倒数
func (v Vec3) Recip() Vec3 {
	return Vec3{1 / v.X, 1 / v.Y, 1 / v.Z}
}

// Neg 取反
func (v Vec3) Neg() Vec3 {
	return Vec3{-v.X, -v.Y, -v.Z}
}

// Dot 点积
func (v Vec3) Dot(o Vec3) float64 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

// Cross 叉积
func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

// LengthSq 长度平方
func (v Vec3) LengthSq() float64 {
	return v.Dot(v)
}

// Length 长度
func (v Vec3) Length() float64 {
	return math.Sqrt(v.LengthSq())
}

// Distance 两点之间的欧氏距离
func (v Vec3) Distance(o Vec3) float64 {
	return v.Sub(o).Length()
}

// Normalize 单位化；零向量原样返回
func (v Vec3) Normalize() Vec3 {
	l := v.Length()
	if l < 1e-12 {
		return v
	}
	return v.Scale(1 / l)
}

// Abs 分量绝对值
func (v Vec3) Abs() Vec3 {
	return Vec3{math.Abs(v.X), math.Abs(v.Y), math.Abs(v.Z)}
}

// Horizontal 投影到地面（Y=0）
func (v Vec3) Horizontal() Vec3 {
	return Vec3{v.X, 0, v.Z}
}

// ApproxEqual 在容差内比较两个向量
func (v Vec3) ApproxEqual(o Vec3, epsilon float64) bool {
	return math.Abs(v.X-o.X) <= epsilon &&
		math.Abs(v.Y-o.Y) <= epsilon &&
		math.Abs(v.Z-o.Z) <= epsilon
}

// LerpVec3 线性插值，t=0 返回 a，t=1 返回 b
func LerpVec3(a, b Vec3, t float64) Vec3 {
	return Vec3{
		Lerp(a.X, b.X, t),
		Lerp(a.Y, b.Y, t),
		Lerp(a.Z, b.Z, t),
	}
}

// Vec2 二维向量（摇杆输入、锚点位移）
type Vec2 struct {
	X, Y float64
}

// Add 向量加法
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v.X + o.X, v.Y + o.Y}
}

// Scale 数乘
func (v Vec2) Scale(s float64) Vec2 {
	return Vec2{v.X * s, v.Y * s}
}

// Length 长度
func (v Vec2) Length() float64 {
	return math.Hypot(v.X, v.Y)
}
