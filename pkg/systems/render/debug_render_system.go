package render

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/abilities"
	"github.com/decker502/anchorclimb/pkg/components"
	"github.com/decker502/anchorclimb/pkg/ecs"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/transition"
)

const (
	// defaultTimelineWindow 时间线不裁剪时显示的时长（秒）
	defaultTimelineWindow = 5.0

	timelineMargin    = 10
	timelineBarHeight = 12
	// timelineLabelMinWidth 条宽不足时不写能力名
	timelineLabelMinWidth = 70
)

var abilityColors = map[string]color.RGBA{
	"Climbing":   ColorWall,
	"Parkour":    ColorTable,
	"Locomotion": ColorContact,
}

// DebugRenderSystem 调试叠加层：过渡任务、预测轨迹、边沿锚点与能力时间线
type DebugRenderSystem struct {
	entityManager *ecs.EntityManager
	library       *motion.Library

	// Overlay 是否绘制世界空间中的调试图形；状态文字与时间线始终绘制
	Overlay bool
	// Help 状态文字下方的按键说明
	Help string
}

// NewDebugRenderSystem 创建调试渲染系统
func NewDebugRenderSystem(em *ecs.EntityManager, lib *motion.Library) *DebugRenderSystem {
	return &DebugRenderSystem{
		entityManager: em,
		library:       lib,
	}
}

// Draw 绘制 focus 角色的状态与时间线；Overlay 打开时为全部角色绘制调试图形
func (s *DebugRenderSystem) Draw(screen *ebiten.Image, view SideView, focus ecs.EntityID) {
	if s.Overlay {
		for _, id := range ecs.GetEntitiesWith1[*components.CharacterComponent](s.entityManager) {
			character, ok := ecs.GetComponent[*components.CharacterComponent](s.entityManager, id)
			if !ok {
				continue
			}
			s.drawOverlay(screen, view, character)
		}
	}

	character, ok := ecs.GetComponent[*components.CharacterComponent](s.entityManager, focus)
	if !ok {
		return
	}
	ebitenutil.DebugPrint(screen, s.status(character))
	DrawTimeline(screen, character.Runner.Timeline(), character.Runner.Time())
}

// status 当前能力、攀爬状态与播放片段
func (s *DebugRenderSystem) status(character *components.CharacterComponent) string {
	current := "none"
	if a := character.Runner.Current(); a != nil {
		current = a.Name()
	}
	segment := "?"
	if s.library != nil {
		segment = s.library.GetSegment(character.Playback.Time().Segment).Name
	}

	text := fmt.Sprintf("TPS: %.0f  ability: %s  climbing: %s (%s)  parkour: %s\nsegment: %s",
		ebiten.ActualTPS(), current,
		character.Climbing.State(), character.Climbing.Direction(), character.Parkour.TransitionType(),
		segment)
	if s.Help != "" {
		text += "\n" + s.Help
	}
	return text
}

func (s *DebugRenderSystem) drawOverlay(screen *ebiten.Image, view SideView, character *components.CharacterComponent) {
	drawTask(screen, view, character.Climbing.Task())
	drawTask(screen, view, character.Parkour.Task())

	climbing := character.Climbing
	switch climbing.State() {
	case abilities.StateClimbing:
		lip := climbing.Ledge().GetPosition(geometry.LedgeAnchor{U: climbing.LedgeAnchor().U})
		x, y := view.ToScreen(lip)
		vector.DrawFilledCircle(screen, x, y, 4, ColorWall, true)
	case abilities.StateFreeClimbing:
		x, y := view.ToScreen(climbing.Wall().GetPosition(climbing.WallAnchor()))
		vector.DrawFilledCircle(screen, x, y, 4, ColorWall, true)
	}

	root := character.Playback.WorldRootTransform()
	for _, sample := range character.Locomotion.Trajectory() {
		px, py := view.ToScreen(root.TransformPoint(sample.Transform.T))
		vector.DrawFilledCircle(screen, px, py, 2, ColorCharacter, false)
	}
}

// drawTask 接触点与任务状态；有混合计划时连接源与目标根节点
func drawTask(screen *ebiten.Image, view SideView, task *transition.Task) {
	if task == nil {
		return
	}
	x, y := DrawContact(screen, view, task.Contact(), ColorContact)
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s θ=%.2f", task.State(), task.Theta()), int(x)+8, int(y)-8)

	if task.State() == transition.StateWaiting {
		match := task.Match()
		DrawLink(screen, view, match.Source.WorldRootTransform.T, match.Target.WorldRootTransform.T, ColorContact)
	}
}

// timelineBar 一条时间线记录在屏幕上的横向范围
type timelineBar struct {
	X0, X1  float32
	Ability string
	Tasks   int
}

// timelineBars 把 [now-window, now] 内的记录映射到 [x, x+width]
//
// 完全落在窗口左侧的记录被丢弃，部分可见的记录被截断。
func timelineBars(records []abilities.TimelineRecord, now, window float64, x, width float32) []timelineBar {
	if window <= 0 {
		window = defaultTimelineWindow
	}
	start := now - window

	bars := make([]timelineBar, 0, len(records))
	for _, r := range records {
		if r.End <= start {
			continue
		}
		x0 := x + width*float32((max(r.Start, start)-start)/window)
		x1 := x + width*float32((min(r.End, now)-start)/window)
		if x1 <= x0 {
			continue
		}
		bars = append(bars, timelineBar{X0: x0, X1: x1, Ability: r.Ability, Tasks: len(r.TaskIDs)})
	}
	return bars
}

// DrawTimeline 在屏幕底部绘制最近一段时间内掌握控制权的能力
func DrawTimeline(screen *ebiten.Image, timeline *abilities.Timeline, now float64) {
	if timeline == nil {
		return
	}
	bounds := screen.Bounds()
	x := float32(timelineMargin)
	y := float32(bounds.Dy() - timelineMargin - timelineBarHeight)
	width := float32(bounds.Dx() - 2*timelineMargin)

	vector.StrokeRect(screen, x, y, width, timelineBarHeight, 1, ColorFloor, false)
	for _, bar := range timelineBars(timeline.Records(), now, timeline.Window, x, width) {
		clr, ok := abilityColors[bar.Ability]
		if !ok {
			clr = ColorFloor
		}
		vector.DrawFilledRect(screen, bar.X0, y, bar.X1-bar.X0, timelineBarHeight, clr, false)

		if bar.X1-bar.X0 >= timelineLabelMinWidth {
			label := bar.Ability
			if bar.Tasks > 0 {
				label = fmt.Sprintf("%s ×%d", bar.Ability, bar.Tasks)
			}
			ebitenutil.DebugPrintAt(screen, label, int(bar.X0)+2, int(y)-16)
		}
	}
}
