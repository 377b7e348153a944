package main

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/quasilyte/gdata/v2"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/ecs"
	"github.com/decker502/anchorclimb/pkg/embedded"
	"github.com/decker502/anchorclimb/pkg/entities"
	"github.com/decker502/anchorclimb/pkg/game"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/input"
	"github.com/decker502/anchorclimb/pkg/systems"
	"github.com/decker502/anchorclimb/pkg/systems/render"
	"github.com/decker502/anchorclimb/pkg/utils"
)

const (
	screenWidth  = 960
	screenHeight = 540

	// pixelsPerMeter 侧视图缩放
	pixelsPerMeter = 80
)

var (
	verboseFlag = flag.Bool("verbose", false, "Enable verbose ability logging")
	noSaveFlag  = flag.Bool("no-save", false, "Do not persist ability settings")
)

const helpText = "Arrows/WASD move  B mount/dismount  Space pull-up/vault  R reset  F1 overlay"

// Game 演示：侧视图中的角色可以行走、上墙、攀爬、翻上墙顶
type Game struct {
	entityManager *ecs.EntityManager
	inputSystem   *systems.InputSystem
	abilitySystem *systems.AbilitySystem

	renderSystem      *render.RenderSystem
	debugRenderSystem *render.DebugRenderSystem

	library  *motion.Library
	world    *controller.World
	config   *config.AbilitiesConfig
	settings *game.AbilitySettingsManager

	player ecs.EntityID
}

// newDemoWorld 地面、一面高墙和一张桌子
func newDemoWorld() *controller.World {
	return controller.NewWorld(
		geometry.NewBoxCollider("floor", utils.NewVec3(0, -0.5, 10), 0, utils.NewVec3(40, 1, 60), geometry.LayerDefault),
		geometry.NewBoxCollider("table", utils.NewVec3(0, 0.5, 6), 0, utils.NewVec3(4, 1, 1.5), geometry.LayerTable),
		geometry.NewBoxCollider("wall", utils.NewVec3(0, 1.5, 12), 0, utils.NewVec3(8, 3, 2), geometry.LayerWall),
	)
}

// NewGame 加载嵌入数据并创建玩家角色
func NewGame() (*Game, error) {
	data, err := embedded.FS()
	if err != nil {
		return nil, err
	}

	base, err := config.LoadAbilitiesConfigFS(data, "data/abilities.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load abilities config: %w", err)
	}
	lib, err := motion.LoadLibraryFS(data, "data/motion/library.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to load motion library: %w", err)
	}

	var storage *gdata.Manager
	if !*noSaveFlag {
		storage = game.OpenStorage("anchorclimb")
	}
	settings := game.NewAbilitySettingsManager(storage)
	cfg, err := settings.Apply(base)
	if err != nil {
		log.Printf("[Demo] ⚠️ %v (using defaults from data/abilities.yaml)", err)
		cfg = base
	}

	em := ecs.NewEntityManager()
	world := newDemoWorld()
	g := &Game{
		entityManager:     em,
		inputSystem:       systems.NewInputSystem(em, input.Poll),
		abilitySystem:     systems.NewAbilitySystem(em),
		renderSystem:      render.NewRenderSystem(em, world, screenWidth, screenHeight, pixelsPerMeter),
		debugRenderSystem: render.NewDebugRenderSystem(em, lib),
		library:           lib,
		world:             world,
		config:            cfg,
		settings:          settings,
	}
	g.abilitySystem.Debug = *verboseFlag
	g.debugRenderSystem.Help = helpText

	if err := g.spawnPlayer(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *Game) spawnPlayer() error {
	if g.player != 0 {
		g.entityManager.DestroyEntity(g.player)
		g.entityManager.RemoveMarkedEntities()
	}

	id, err := entities.NewCharacterEntity(g.entityManager, g.library, g.world, g.config, entities.CharacterSpec{
		Name:     "player",
		Position: utils.Vec3Zero,
	})
	if err != nil {
		return err
	}
	g.player = id
	return nil
}

// Update 每帧推进输入与能力系统
func (g *Game) Update() error {
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		if err := g.spawnPlayer(); err != nil {
			return err
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF1) {
		g.settings.SetDebugOverlay(!g.settings.GetSettings().DebugOverlay)
		if err := g.settings.Save(); err != nil {
			log.Printf("[Demo] ⚠️ %v", err)
		}
	}

	deltaTime := 1.0 / float64(ebiten.TPS())
	g.inputSystem.Update(deltaTime)
	return g.abilitySystem.Update(context.Background(), deltaTime)
}

// Draw 绘制场景、角色与调试信息
func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(render.ColorBackground)

	view := g.renderSystem.View(g.player)
	g.renderSystem.Draw(screen, view)

	g.debugRenderSystem.Overlay = g.settings.GetSettings().DebugOverlay
	g.debugRenderSystem.Draw(screen, view, g.player)
}

// Layout returns the game's logical screen size.
func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()
	embedded.Init(dataFS)

	g, err := NewGame()
	if err != nil {
		log.Fatalf("Failed to start demo: %v", err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Anchored Climbing Demo")

	if err := ebiten.RunGame(g); err != nil {
		log.Fatal(err)
	}
}
