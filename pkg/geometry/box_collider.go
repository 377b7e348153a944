// Package geometry 提供可攀爬几何体的探针
//
// 探针把世界坐标点映射为几何面上的归一化锚点 (u, v)，以及反向映射。
// 所有计算都在盒子的"规范局部空间"中进行：盒子被缩放为 [-1, 1]³ 的立方体，
// 面法线只可能是 ±X、±Z（侧面）或 +Y（顶面）。
package geometry

import (
	"math"

	"github.com/decker502/anchorclimb/pkg/utils"
)

// Layer 碰撞体所在的物理层
type Layer int

// 场景中使用的物理层
const (
	LayerDefault  Layer = 0
	LayerWall     Layer = 8
	LayerTable    Layer = 9
	LayerPlatform Layer = 10
	LayerLedge    Layer = 11
	LayerDropDown Layer = 12
)

// String 返回层名称（用于日志）
func (l Layer) String() string {
	switch l {
	case LayerDefault:
		return "Default"
	case LayerWall:
		return "Wall"
	case LayerTable:
		return "Table"
	case LayerPlatform:
		return "Platform"
	case LayerLedge:
		return "Ledge"
	case LayerDropDown:
		return "DropDown"
	default:
		return "Unknown"
	}
}

// BoxCollider 盒状碰撞体
//
// Transform 为刚体变换，Scale 为分量缩放，Center/Size 为盒子在缩放前局部空间中的
// 中心与完整边长。
type BoxCollider struct {
	Name      string
	Transform utils.AffineTransform
	Scale     utils.Vec3
	Center    utils.Vec3
	Size      utils.Vec3
	Layer     Layer
}

// NewBoxCollider 创建一个只绕 Y 轴旋转、无缩放的盒子
//
// 参数:
//   - name: 名称（用于日志）
//   - position: 盒心世界坐标
//   - yaw: 偏航角（弧度）
//   - size: 完整边长
//   - layer: 物理层
func NewBoxCollider(name string, position utils.Vec3, yaw float64, size utils.Vec3, layer Layer) BoxCollider {
	return BoxCollider{
		Name:      name,
		Transform: utils.NewAffineTransform(position, utils.QuatYaw(yaw)),
		Scale:     utils.Vec3One,
		Size:      size,
		Layer:     layer,
	}
}

func (c *BoxCollider) scale() utils.Vec3 {
	if c.Scale == utils.Vec3Zero {
		return utils.Vec3One
	}
	return c.Scale
}

// TransformPoint 把缩放前的局部点变换到世界空间
func (c *BoxCollider) TransformPoint(p utils.Vec3) utils.Vec3 {
	return c.Transform.TransformPoint(p.Mul(c.scale()))
}

// InverseTransformPoint 把世界点变换到缩放前的局部空间
func (c *BoxCollider) InverseTransformPoint(p utils.Vec3) utils.Vec3 {
	return c.Transform.InverseTransformPoint(p).Div(c.scale())
}

// TransformDirection 把局部方向旋转到世界空间
func (c *BoxCollider) TransformDirection(d utils.Vec3) utils.Vec3 {
	return c.Transform.TransformDirection(d)
}

// OBB 返回世界空间中的有向包围盒
func (c *BoxCollider) OBB() utils.OBB {
	s := c.scale()
	return utils.OBB{
		Transform: c.Transform,
		Center:    c.Center.Mul(s),
		Size:      c.Size.Mul(s).Abs(),
	}
}

// ClosestPoint 返回盒子表面或内部距离 p 最近的点
func (c *BoxCollider) ClosestPoint(p utils.Vec3) utils.Vec3 {
	obb := c.OBB()
	local := obb.Transform.InverseTransformPoint(p).Sub(obb.Center)
	h := obb.HalfExtents()
	local = utils.Vec3{
		X: utils.Clamp(local.X, -h.X, h.X),
		Y: utils.Clamp(local.Y, -h.Y, h.Y),
		Z: utils.Clamp(local.Z, -h.Z, h.Z),
	}
	return obb.Transform.TransformPoint(local.Add(obb.Center))
}

// TopVertices 顶面四个角点（世界空间，依次相邻）
func (c *BoxCollider) TopVertices() [4]utils.Vec3 {
	return [4]utils.Vec3{
		c.canonicalToWorld(utils.NewVec3(1, 1, 1)),
		c.canonicalToWorld(utils.NewVec3(1, 1, -1)),
		c.canonicalToWorld(utils.NewVec3(-1, 1, -1)),
		c.canonicalToWorld(utils.NewVec3(-1, 1, 1)),
	}
}

// TopHeight 顶面在世界空间中的高度
func (c *BoxCollider) TopHeight() float64 {
	return c.canonicalToWorld(utils.Up).Y
}

// worldToCanonical 世界坐标 → 规范局部空间 [-1, 1]³
func (c *BoxCollider) worldToCanonical(p utils.Vec3) utils.Vec3 {
	return c.InverseTransformPoint(p).Sub(c.Center).Mul(c.Size.Recip()).Scale(2)
}

// canonicalToWorld 规范局部空间 → 世界坐标
func (c *BoxCollider) canonicalToWorld(p utils.Vec3) utils.Vec3 {
	return c.TransformPoint(c.Center.Add(c.Size.Mul(p).Scale(0.5)))
}

// extent 盒子沿规范轴方向的世界长度
func (c *BoxCollider) extent(axis utils.Vec3) float64 {
	return math.Abs(axis.Dot(c.Size)) * math.Abs(axis.Dot(c.scale()))
}

// sideNormals 四个侧面在规范空间中的法线
var sideNormals = [4]utils.Vec3{
	utils.Right,
	utils.Right.Neg(),
	utils.Forward,
	utils.Forward.Neg(),
}

// planeDistance 规范空间中点到法线为 normal 的侧面的有符号距离
//
// 侧面经过顶点 normal + up + cross(normal, up)；在面外为正。
func planeDistance(normal, position utils.Vec3) float64 {
	orthogonal := normal.Cross(utils.Up)
	vertex := normal.Add(utils.Up).Add(orthogonal)
	return normal.Dot(position) - normal.Dot(vertex)
}

// closestSideNormal 选择平面距离绝对值最小的侧面
func closestSideNormal(position utils.Vec3) utils.Vec3 {
	normal := sideNormals[0]
	minimum := math.Abs(planeDistance(normal, position))
	for i := 1; i < len(sideNormals); i++ {
		d := math.Abs(planeDistance(sideNormals[i], position))
		if d < minimum {
			normal = sideNormals[i]
			minimum = d
		}
	}
	return normal
}
