// Package render 侧视图渲染系统：场景、角色与调试叠加层
//
// 只依赖 ebiten 的绘制接口；不开窗口的工具直接使用 pkg/systems。
package render

import (
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/transition"
	"github.com/decker502/anchorclimb/pkg/utils"
)

var (
	ColorBackground = color.RGBA{R: 32, G: 36, B: 48, A: 255}
	ColorFloor      = color.RGBA{R: 90, G: 90, B: 100, A: 255}
	ColorWall       = color.RGBA{R: 150, G: 110, B: 80, A: 255}
	ColorTable      = color.RGBA{R: 110, G: 150, B: 90, A: 255}
	ColorCharacter  = color.RGBA{R: 230, G: 200, B: 80, A: 255}
	ColorRoot       = color.RGBA{R: 240, G: 80, B: 80, A: 255}
	ColorContact    = color.RGBA{R: 80, G: 200, B: 240, A: 255}
)

// SideView 侧视投影：世界 Z 向右，Y 向上，X 被丢弃
type SideView struct {
	// PixelsPerMeter 缩放
	PixelsPerMeter float64
	// Focus 投影到 (ScreenX, ScreenY) 的世界点
	Focus utils.Vec3
	// ScreenX, ScreenY Focus 的屏幕坐标
	ScreenX float64
	ScreenY float64
}

// CenteredView 以屏幕中心对准 focus 的侧视图
func CenteredView(screenWidth, screenHeight int, pixelsPerMeter float64, focus utils.Vec3) SideView {
	return SideView{
		PixelsPerMeter: pixelsPerMeter,
		Focus:          focus,
		ScreenX:        float64(screenWidth) / 2,
		ScreenY:        float64(screenHeight) / 2,
	}
}

// ToScreen 世界坐标转换为屏幕坐标
func (v SideView) ToScreen(p utils.Vec3) (float32, float32) {
	x := v.ScreenX + (p.Z-v.Focus.Z)*v.PixelsPerMeter
	y := v.ScreenY - (p.Y-v.Focus.Y)*v.PixelsPerMeter
	return float32(x), float32(y)
}

// Pixels 世界长度转换为像素
func (v SideView) Pixels(meters float64) float32 {
	return float32(meters * v.PixelsPerMeter)
}

// LayerColor 碰撞层对应的填充色
func LayerColor(layer geometry.Layer) color.RGBA {
	switch layer {
	case geometry.LayerWall:
		return ColorWall
	case geometry.LayerTable:
		return ColorTable
	}
	return ColorFloor
}

// DrawCollider 绘制盒子在侧视图中的轮廓（忽略绕 Y 的旋转）
func DrawCollider(screen *ebiten.Image, view SideView, c *geometry.BoxCollider, clr color.Color) {
	center := c.Transform.T
	x, y := view.ToScreen(utils.NewVec3(0, center.Y+c.Size.Y/2, center.Z-c.Size.Z/2))
	vector.DrawFilledRect(screen, x, y, view.Pixels(c.Size.Z), view.Pixels(c.Size.Y), clr, false)
}

// DrawRoot 根节点位置与前方
func DrawRoot(screen *ebiten.Image, view SideView, root utils.AffineTransform, length float64, radius float32, clr color.Color) {
	x, y := view.ToScreen(root.T)
	vector.DrawFilledCircle(screen, x, y, radius, clr, true)
	fx, fy := view.ToScreen(root.T.Add(root.Forward().Scale(length)))
	vector.StrokeLine(screen, x, y, fx, fy, 1, clr, true)
}

// DrawCandidates 一组过渡候选的根变换
func DrawCandidates(screen *ebiten.Image, view SideView, candidates []transition.Candidate, clr color.Color) {
	for _, c := range candidates {
		DrawRoot(screen, view, c.WorldRootTransform, 0.08, 3, clr)
	}
}

// DrawContact 接触点
func DrawContact(screen *ebiten.Image, view SideView, contact utils.AffineTransform, clr color.Color) (float32, float32) {
	x, y := view.ToScreen(contact.T)
	vector.DrawFilledCircle(screen, x, y, 5, clr, true)
	return x, y
}

// DrawLink 两点之间的连线
func DrawLink(screen *ebiten.Image, view SideView, a, b utils.Vec3, clr color.Color) {
	ax, ay := view.ToScreen(a)
	bx, by := view.ToScreen(b)
	vector.StrokeLine(screen, ax, ay, bx, by, 2, clr, true)
}
