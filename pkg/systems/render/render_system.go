package render

import (
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/anchorclimb/pkg/components"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/ecs"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// RenderSystem 侧视图场景渲染系统
//
// 绘制碰撞盒与全部角色（控制器胶囊、动画根节点与朝向）。
type RenderSystem struct {
	entityManager *ecs.EntityManager
	world         *controller.World

	screenWidth    int
	screenHeight   int
	pixelsPerMeter float64
}

// NewRenderSystem 创建场景渲染系统
func NewRenderSystem(em *ecs.EntityManager, world *controller.World, screenWidth, screenHeight int, pixelsPerMeter float64) *RenderSystem {
	return &RenderSystem{
		entityManager:  em,
		world:          world,
		screenWidth:    screenWidth,
		screenHeight:   screenHeight,
		pixelsPerMeter: pixelsPerMeter,
	}
}

// View 以 camera 实体的跟随点为中心的侧视图；实体没有镜头时以原点为中心
func (s *RenderSystem) View(camera ecs.EntityID) SideView {
	focus := utils.Vec3Zero
	if c, ok := ecs.GetComponent[*components.CameraComponent](s.entityManager, camera); ok {
		focus = c.Follow
	}
	return CenteredView(s.screenWidth, s.screenHeight, s.pixelsPerMeter, focus)
}

// Draw 用 view 绘制场景与全部角色
func (s *RenderSystem) Draw(screen *ebiten.Image, view SideView) {
	if s.world != nil {
		for i := range s.world.Colliders {
			c := &s.world.Colliders[i]
			DrawCollider(screen, view, c, LayerColor(c.Layer))
		}
	}

	for _, id := range ecs.GetEntitiesWith1[*components.CharacterComponent](s.entityManager) {
		character, ok := ecs.GetComponent[*components.CharacterComponent](s.entityManager, id)
		if !ok {
			continue
		}
		drawCharacter(screen, view, character)
	}
}

// drawCharacter 胶囊的侧视外框与根节点
func drawCharacter(screen *ebiten.Image, view SideView, character *components.CharacterComponent) {
	ctrl := character.Controller
	pos := ctrl.Position()
	radius := ctrl.Radius()
	height := ctrl.Height()

	x, y := view.ToScreen(utils.NewVec3(0, pos.Y+height, pos.Z-radius))
	vector.StrokeRect(screen, x, y, view.Pixels(2*radius), view.Pixels(height), 2, ColorCharacter, false)

	DrawRoot(screen, view, character.Playback.WorldRootTransform(), 0.5, 4, ColorRoot)
}
