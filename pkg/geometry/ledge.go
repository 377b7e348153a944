package geometry

import (
	"github.com/decker502/anchorclimb/pkg/utils"
)

// LedgeAnchor 边缘锚点
//
// U 沿边缘（唇边）方向，V 沿顶面深度方向（从唇边量起），均在 [0, 1] 区间。
type LedgeAnchor struct {
	U float64
	V float64
}

// LedgeGeometry 边缘几何探针
//
// 顶面法线固定为上方；唇边是接触时离接触点最近的那条顶边。
type LedgeGeometry struct {
	collider    BoxCollider
	normal      utils.Vec3 // 唇边所在侧面的规范空间法线
	initialized bool
}

// Initialize 根据碰撞体与接触变换建立边缘几何
func (g *LedgeGeometry) Initialize(collider BoxCollider, contact utils.AffineTransform) {
	g.collider = collider
	g.normal = closestSideNormal(collider.worldToCanonical(contact.T))
	g.initialized = true
}

// Reset 清空几何
func (g *LedgeGeometry) Reset() {
	*g = LedgeGeometry{}
}

// IsInitialized 是否已建立几何
func (g *LedgeGeometry) IsInitialized() bool {
	return g.initialized
}

// Collider 返回所依附的碰撞体
func (g *LedgeGeometry) Collider() BoxCollider {
	return g.collider
}

func (g *LedgeGeometry) orthogonal() utils.Vec3 {
	return g.normal.Cross(utils.Up)
}

// GetAnchor 把世界坐标投影到顶面并返回锚点
func (g *LedgeGeometry) GetAnchor(position utils.Vec3) LedgeAnchor {
	local := g.collider.worldToCanonical(position)

	return LedgeAnchor{
		U: 1 - utils.Saturate((g.orthogonal().Dot(local)+1)*0.5),
		V: utils.Saturate((1 - g.normal.Dot(local)) * 0.5),
	}
}

// GetPosition 锚点对应的顶面世界坐标（GetAnchor 的逆）
func (g *LedgeGeometry) GetPosition(anchor LedgeAnchor) utils.Vec3 {
	v0 := g.collider.canonicalToWorld(g.normal.Add(utils.Up).Add(g.orthogonal()))
	o := g.collider.TransformDirection(g.orthogonal())
	n := g.collider.TransformDirection(g.normal)

	return v0.
		Sub(o.Scale(g.GetWidth() * anchor.U)).
		Sub(n.Scale(g.GetDepth() * anchor.V))
}

// GetNormal 唇边的外法线（世界空间，水平）
func (g *LedgeGeometry) GetNormal(LedgeAnchor) utils.Vec3 {
	return g.collider.TransformDirection(g.normal)
}

// GetOrthogonal 沿 U 减小方向的世界单位向量
func (g *LedgeGeometry) GetOrthogonal() utils.Vec3 {
	return g.collider.TransformDirection(g.orthogonal())
}

// GetTransform 唇边上 anchor.U 处的接触变换，前方为外法线
func (g *LedgeGeometry) GetTransform(anchor LedgeAnchor) utils.AffineTransform {
	lip := LedgeAnchor{U: anchor.U}
	return utils.NewAffineTransform(
		g.GetPosition(lip),
		utils.LookRotation(g.GetNormal(lip), g.collider.TransformDirection(utils.Up)))
}

// UpdateAnchor 沿唇边移动锚点；位移按边缘宽度归一化后截断
func (g *LedgeGeometry) UpdateAnchor(anchor LedgeAnchor, displacement float64) LedgeAnchor {
	return LedgeAnchor{
		U: utils.Saturate(anchor.U - displacement/g.GetWidth()),
		V: utils.Saturate(anchor.V),
	}
}

// GetWidth 唇边世界长度
func (g *LedgeGeometry) GetWidth() float64 {
	return g.collider.extent(g.orthogonal())
}

// GetDepth 顶面从唇边到对边的世界深度
func (g *LedgeGeometry) GetDepth() float64 {
	return g.collider.extent(g.normal)
}

// GetHeight 盒子世界高度
func (g *LedgeGeometry) GetHeight() float64 {
	return g.collider.extent(utils.Up)
}

// GetHeightAt 锚点处顶面的世界高度
func (g *LedgeGeometry) GetHeightAt(anchor LedgeAnchor) float64 {
	return g.GetPosition(anchor).Y
}
