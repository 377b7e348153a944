package geometry

import (
	"github.com/decker502/anchorclimb/pkg/utils"
)

// WallAnchor 墙面锚点
//
// U 沿墙面宽度方向，V 沿高度方向（从顶边量起），均在 [0, 1] 区间。
type WallAnchor struct {
	U float64
	V float64
}

// WallGeometry 墙面几何探针
//
// 在接触时由 Initialize 建立，之后不可变，直到下一次接触重新初始化。
type WallGeometry struct {
	collider    BoxCollider
	normal      utils.Vec3 // 规范空间中的面法线
	initialized bool
}

// Initialize 根据碰撞体与接触变换建立墙面几何
//
// 在规范空间中比较接触点到四个侧面的平面距离，选择距离绝对值最小的侧面。
func (g *WallGeometry) Initialize(collider BoxCollider, contact utils.AffineTransform) {
	g.collider = collider
	g.initialized = true
	g.Reinitialize(contact)
}

// Reinitialize 保持碰撞体不变，根据新的接触点重新选择侧面
func (g *WallGeometry) Reinitialize(contact utils.AffineTransform) {
	g.normal = closestSideNormal(g.collider.worldToCanonical(contact.T))
}

// Reset 清空几何（能力被禁用时调用）
func (g *WallGeometry) Reset() {
	*g = WallGeometry{}
}

// IsInitialized 是否已建立几何
func (g *WallGeometry) IsInitialized() bool {
	return g.initialized
}

// Collider 返回所依附的碰撞体
func (g *WallGeometry) Collider() BoxCollider {
	return g.collider
}

// orthogonal 规范空间中沿宽度方向的单位向量
func (g *WallGeometry) orthogonal() utils.Vec3 {
	return g.normal.Cross(utils.Up)
}

// baseVertex 规范空间中 u=0, v=0 处的顶点
func (g *WallGeometry) baseVertex() utils.Vec3 {
	return g.normal.Add(utils.Up).Add(g.orthogonal())
}

// GetAnchor 把世界坐标投影到墙面并返回锚点
func (g *WallGeometry) GetAnchor(position utils.Vec3) WallAnchor {
	local := g.collider.worldToCanonical(position)
	local = local.Sub(g.normal.Scale(planeDistance(g.normal, local)))

	return WallAnchor{
		U: 1 - utils.Saturate((g.orthogonal().Dot(local)+1)*0.5),
		V: 1 - utils.Saturate((local.Y+1)*0.5),
	}
}

// GetPosition 锚点对应的墙面世界坐标（GetAnchor 的逆）
func (g *WallGeometry) GetPosition(anchor WallAnchor) utils.Vec3 {
	v0 := g.collider.canonicalToWorld(g.baseVertex())
	o := g.collider.TransformDirection(g.orthogonal())
	up := g.collider.TransformDirection(utils.Up)

	return v0.
		Sub(o.Scale(g.GetWidth() * anchor.U)).
		Sub(up.Scale(g.GetHeight() * anchor.V))
}

// GetNormal 墙面外法线（世界空间）
func (g *WallGeometry) GetNormal(WallAnchor) utils.Vec3 {
	return g.collider.TransformDirection(g.normal)
}

// GetOrthogonal 沿 U 减小方向的世界单位向量（面向墙时角色的右方）
func (g *WallGeometry) GetOrthogonal() utils.Vec3 {
	return g.collider.TransformDirection(g.orthogonal())
}

// GetTransform 锚点处的接触变换：位于墙面，前方为外法线
func (g *WallGeometry) GetTransform(anchor WallAnchor) utils.AffineTransform {
	return utils.NewAffineTransform(
		g.GetPosition(anchor),
		utils.LookRotation(g.GetNormal(anchor), g.collider.TransformDirection(utils.Up)))
}

// UpdateAnchor 按世界位移移动锚点
//
// displacement.X 沿 GetOrthogonal 方向，displacement.Y 向上；
// 位移按墙面宽高归一化后截断到 [0, 1]。
func (g *WallGeometry) UpdateAnchor(anchor WallAnchor, displacement utils.Vec2) WallAnchor {
	return WallAnchor{
		U: utils.Saturate(anchor.U - displacement.X/g.GetWidth()),
		V: utils.Saturate(anchor.V - displacement.Y/g.GetHeight()),
	}
}

// GetWidth 墙面世界宽度
func (g *WallGeometry) GetWidth() float64 {
	return g.collider.extent(g.orthogonal())
}

// GetHeight 墙面世界高度
func (g *WallGeometry) GetHeight() float64 {
	return g.collider.extent(utils.Up)
}

// GetHeightAt 锚点距墙底的高度
func (g *WallGeometry) GetHeightAt(anchor WallAnchor) float64 {
	return g.GetHeight() * (1 - anchor.V)
}
