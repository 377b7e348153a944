// Package main provides a visual tool for inspecting the anchored transition search.
//
// A character plays the chosen segment at the origin, facing +Z. A wall face sits
// in front of it; the tool draws the source candidates (extrapolated current
// motion), the target candidates of every sequence carrying the trait (anchored
// to the contact) and the chosen match, in a side view.
//
// Usage:
//
//	go run ./cmd/verify_climbing [flags]
//
// Flags:
//
//	--library <path>   Clip library YAML (default: data/motion/library.yaml)
//	--config <path>    Ability tuning YAML (default: data/abilities.yaml)
//	--trait <trait>    Tag to search (default: Ledge+Mount)
//	--segment <name>   Segment the character is playing (default: walk)
//	--distance <m>     Initial wall distance (default: 1.47)
//
// Controls:
//
//	Left/Right  - Move the wall face
//	Up/Down     - Move the contact height
//	Q           - Quit
package main

import (
	"errors"
	"flag"
	"fmt"
	"image/color"
	"log"
	"math"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/abilities"
	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/systems/render"
	"github.com/decker502/anchorclimb/pkg/transition"
	"github.com/decker502/anchorclimb/pkg/utils"
)

const (
	screenWidth    = 960
	screenHeight   = 540
	pixelsPerMeter = 160
	wallDepth      = 1.0
	step           = 0.01
)

var (
	libraryFlag  = flag.String("library", "data/motion/library.yaml", "Clip library YAML")
	configFlag   = flag.String("config", "data/abilities.yaml", "Ability tuning YAML")
	traitFlag    = flag.String("trait", "Ledge+Mount", "Tag to search")
	segmentFlag  = flag.String("segment", "walk", "Segment the character is playing")
	distanceFlag = flag.Float64("distance", 1.47, "Initial wall distance (m)")
)

var errQuit = errors.New("quit")

var (
	colorBackground = color.RGBA{R: 24, G: 28, B: 36, A: 255}
	colorSource     = color.RGBA{R: 80, G: 200, B: 240, A: 255}
	colorTarget     = color.RGBA{R: 240, G: 160, B: 60, A: 255}
	colorMatch      = color.RGBA{R: 90, G: 230, B: 110, A: 255}
	colorContact    = color.RGBA{R: 240, G: 80, B: 80, A: 255}
)

// sequenceView 一个候选序列的目标候选
type sequenceView struct {
	name    string
	targets []transition.Candidate
	err     error
}

// ClimbingVerifyGame implements ebiten.Game for the transition search inspector
type ClimbingVerifyGame struct {
	lib    *motion.Library
	params transition.SearchParams
	trait  motion.Trait

	contactThreshold float64
	start            motion.SamplingTime

	distance float64
	height   float64

	sources   []transition.Candidate
	sequences []sequenceView
	match     transition.Match
	found     bool
}

// NewClimbingVerifyGame 加载动作库与配置
func NewClimbingVerifyGame() (*ClimbingVerifyGame, error) {
	lib, err := motion.LoadLibrary(*libraryFlag)
	if err != nil {
		return nil, err
	}
	cfg, err := config.LoadAbilitiesConfig(*configFlag)
	if err != nil {
		return nil, err
	}

	segment, ok := findSegment(lib, *segmentFlag)
	if !ok {
		return nil, fmt.Errorf("segment %q not found in library %q", *segmentFlag, lib.Name())
	}

	g := &ClimbingVerifyGame{
		lib: lib,
		params: transition.SearchParams{
			MaximumLinearError:  cfg.Climbing.MaximumLinearError,
			MaximumAngularError: cfg.Climbing.MaximumAngularErrorRadians(),
		},
		trait:            motion.ParseTrait(*traitFlag),
		contactThreshold: cfg.Climbing.ContactThreshold,
		start:            motion.NewSamplingTime(motion.NewTimeIndex(segment, 0)),
		distance:         *distanceFlag,
	}
	g.search()
	return g, nil
}

func findSegment(lib *motion.Library, name string) (motion.SegmentIndex, bool) {
	for i := 0; i < lib.NumSegments(); i++ {
		if lib.GetSegment(motion.SegmentIndex(i)).Name == name {
			return motion.SegmentIndex(i), true
		}
	}
	return 0, false
}

// contact 墙面上的接触变换，前方为外法线
func (g *ClimbingVerifyGame) contact() utils.AffineTransform {
	return utils.NewAffineTransform(utils.NewVec3(0, g.height, g.distance), utils.LookRotation(utils.Forward.Neg(), utils.Up))
}

// search 按当前接触重新生成候选并搜索
func (g *ClimbingVerifyGame) search() {
	contact := g.contact()
	world := controller.NewWorld(g.wall())

	g.sources = transition.SourceCandidates(g.lib, g.sources, g.start, utils.AffineIdentity)

	sequences := abilities.QueryPoseSequences(g.lib, world, contact, g.trait, g.contactThreshold)
	g.sequences = g.sequences[:0]
	for _, seq := range sequences {
		segment := g.lib.GetTag(seq.Tag).Segment
		targets, err := transition.TargetCandidates(g.lib, nil, segment, contact)
		g.sequences = append(g.sequences, sequenceView{
			name:    g.lib.GetSegment(segment).Name,
			targets: targets,
			err:     err,
		})
	}

	g.match, g.found = transition.FindTransition(g.lib, g.start, utils.AffineIdentity, sequences, contact, g.params)
}

// Update 处理按键
func (g *ClimbingVerifyGame) Update() error {
	changed := false
	for key, delta := range map[ebiten.Key][2]float64{
		ebiten.KeyArrowLeft:  {-step, 0},
		ebiten.KeyArrowRight: {step, 0},
		ebiten.KeyArrowUp:    {0, step},
		ebiten.KeyArrowDown:  {0, -step},
	} {
		if ebiten.IsKeyPressed(key) {
			g.distance += delta[0]
			g.height += delta[1]
			changed = true
		}
	}
	if changed {
		g.search()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyQ) {
		return errQuit
	}
	return nil
}

// view 原点在屏幕左下方的固定侧视图
var view = render.SideView{PixelsPerMeter: pixelsPerMeter, ScreenX: 120, ScreenY: screenHeight - 120}

// wall 接触点所在的墙
func (g *ClimbingVerifyGame) wall() geometry.BoxCollider {
	return geometry.NewBoxCollider("wall", utils.NewVec3(0, 1.5, g.distance+wallDepth/2), 0, utils.NewVec3(4, 3, wallDepth), geometry.LayerWall)
}

// Draw 绘制墙、候选与匹配
func (g *ClimbingVerifyGame) Draw(screen *ebiten.Image) {
	screen.Fill(colorBackground)

	wall := g.wall()
	render.DrawCollider(screen, view, &wall, render.ColorWall)
	render.DrawContact(screen, view, g.contact(), colorContact)

	render.DrawCandidates(screen, view, g.sources, colorSource)
	for _, seq := range g.sequences {
		render.DrawCandidates(screen, view, seq.targets, colorTarget)
	}

	var info strings.Builder
	fmt.Fprintf(&info, "trait %s  wall %.2fm  contact height %.2fm\n", g.trait, g.distance, g.height)
	fmt.Fprintf(&info, "sources: %d\n", len(g.sources))
	for _, seq := range g.sequences {
		if seq.err != nil {
			fmt.Fprintf(&info, "  %-12s ⚠️ %v\n", seq.name, seq.err)
			continue
		}
		fmt.Fprintf(&info, "  %-12s targets: %d\n", seq.name, len(seq.targets))
	}

	if g.found {
		render.DrawLink(screen, view, g.match.Source.WorldRootTransform.T, g.match.Target.WorldRootTransform.T, colorMatch)
		fmt.Fprintf(&info, "match: %s source #%d -> target #%d  linear %.3f  angular %.1f°  cost %.4f\n",
			g.sequences[g.match.Sequence].name, g.match.SourceIndex, g.match.TargetIndex,
			transition.LinearError(g.match.Source.WorldRootTransform, g.match.Target.WorldRootTransform),
			transition.AngularError(g.match.Source.WorldRootTransform, g.match.Target.WorldRootTransform)*180/math.Pi,
			g.match.Cost)
	} else {
		info.WriteString("match: none\n")
	}
	info.WriteString("Arrows move contact  Q quit")

	ebitenutil.DebugPrint(screen, info.String())
}

// Layout returns the logical screen size.
func (g *ClimbingVerifyGame) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	flag.Parse()

	g, err := NewClimbingVerifyGame()
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}

	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("Anchored Transition Inspector")

	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, errQuit) {
		log.Fatal(err)
	}
}
