package abilities

import (
	"log"
	"math"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/transition"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// parkourLayerMask 跑酷可以响应的物理层
const parkourLayerMask = 0x1F01

// ParkourType 跑酷动作类型，与 Parkour 标签的变体名一致
type ParkourType string

const (
	ParkourWall     ParkourType = "Wall"
	ParkourTable    ParkourType = "Table"
	ParkourPlatform ParkourType = "Platform"
	ParkourLedge    ParkourType = "Ledge"
	ParkourDropDown ParkourType = "DropDown"
)

// Trait 对应的标签
func (t ParkourType) Trait() motion.Trait {
	return motion.NewTrait("Parkour", string(t))
}

// parkourTypeForLayer 物理层到跑酷类型；其他层返回空串
func parkourTypeForLayer(layer geometry.Layer) ParkourType {
	switch layer {
	case geometry.LayerWall:
		return ParkourWall
	case geometry.LayerTable:
		return ParkourTable
	case geometry.LayerPlatform:
		return ParkourPlatform
	case geometry.LayerLedge:
		return ParkourLedge
	case geometry.LayerDropDown:
		return ParkourDropDown
	}
	return ""
}

// ParkourAbility 跑酷能力：翻越墙、桌子、平台与边沿，以及从盒子边缘跳下
//
// 过渡任务进行期间保持控制权，任务结束（完成或失败）后放弃控制权。
type ParkourAbility struct {
	character *Character
	config    config.ParkourConfig

	task           *transition.Task
	transitionType ParkourType

	// Debug 打开过渡请求日志
	Debug bool
}

var _ Ability = (*ParkourAbility)(nil)

// NewParkourAbility 创建跑酷能力
func NewParkourAbility(character *Character, cfg config.ParkourConfig) *ParkourAbility {
	return &ParkourAbility{character: character, config: cfg}
}

// Name 能力名称
func (p *ParkourAbility) Name() string { return "Parkour" }

// Task 正在进行的过渡任务；没有时返回 nil
func (p *ParkourAbility) Task() *transition.Task { return p.task }

// TransitionType 最近一次请求的动作类型
func (p *ParkourAbility) TransitionType() ParkourType { return p.transitionType }

// UseRootAsCameraFollow 跑酷时相机跟随动画根节点
func (p *ParkourAbility) UseRootAsCameraFollow() bool { return false }

// Dispose 释放过渡任务
func (p *ParkourAbility) Dispose() {
	if p.task != nil {
		p.task.Dispose()
		p.task = nil
	}
}

// OnUpdate 推进过渡任务
func (p *ParkourAbility) OnUpdate(deltaTime float64) Ability {
	active := p.task != nil
	configureController(p.character.Controller, active)

	if !active {
		return nil
	}

	if !p.task.IsDone() {
		p.task.Tick(deltaTime)
		return p
	}

	if p.task.IsFailed() {
		log.Printf("[ParkourAbility] ⚠️ %s transition failed", p.transitionType)
	}
	p.Dispose()
	return nil
}

// OnContact A 键按下且碰撞体的层与接触方向匹配时触发
func (p *ParkourAbility) OnContact(contact utils.AffineTransform, deltaTime float64) bool {
	if !p.character.Input.AButton {
		return false
	}

	closure := p.character.Controller.Current()
	if !closure.IsColliding || closure.Collider == nil {
		return false
	}
	collider := closure.Collider

	if (1<<uint(collider.Layer))&parkourLayerMask == 0 {
		return false
	}

	typ := parkourTypeForLayer(collider.Layer)
	switch typ {
	case ParkourWall, ParkourTable:
		if p.isAxis(collider, contact, utils.Forward) {
			return p.requestTransition(typ, contact)
		}
	case ParkourPlatform:
		if p.isAxis(collider, contact, utils.Forward) || p.isAxis(collider, contact, utils.Right) {
			return p.requestTransition(typ, contact)
		}
	case ParkourLedge:
		if p.isAxis(collider, contact, utils.Right) {
			return p.requestTransition(typ, contact)
		}
	}

	return false
}

// OnDrop 从上一帧脚下盒子的最近顶边跳下
func (p *ParkourAbility) OnDrop(deltaTime float64) bool {
	previous := p.character.Controller.Previous()
	if !previous.IsGrounded || previous.Ground == nil {
		return false
	}

	contact := ClosestEdgeTransform(previous.Ground, previous.Position)
	return p.requestTransition(ParkourDropDown, contact)
}

// isAxis 接触朝向是否与碰撞体的局部轴 axis（正或反）对齐
func (p *ParkourAbility) isAxis(collider *geometry.BoxCollider, contact utils.AffineTransform, axis utils.Vec3) bool {
	worldAxis := collider.TransformDirection(axis)
	return math.Abs(worldAxis.Dot(contact.Forward())) >= p.config.AxisThreshold
}

func (p *ParkourAbility) requestTransition(typ ParkourType, contact utils.AffineTransform) bool {
	lib := p.character.Library
	trait := typ.Trait()
	sequences := QueryPoseSequences(lib, p.character.Controller, contact, trait, p.config.ContactThreshold)

	p.Dispose()
	p.task = transition.NewTask(p.character.Synthesizer, lib, sequences, contact,
		searchParams(p.config.MaximumLinearError, p.config.MaximumAngularErrorRadians()))
	p.task.Debug = p.Debug
	p.transitionType = typ

	if p.Debug {
		log.Printf("[ParkourAbility] Request %s (task %s, %d sequences)", trait, p.task.ID(), len(sequences))
	}
	return true
}
