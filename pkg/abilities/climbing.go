package abilities

import (
	"fmt"
	"log"
	"math"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/transition"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// stickDeadZone 方向子状态判定的摇杆死区
const stickDeadZone = 0.2

// ClimbingState 攀爬能力状态
type ClimbingState int

const (
	StateSuspended ClimbingState = iota
	StateMounting
	StateClimbing
	StateFreeClimbing
	StateDismount
	StatePullUp
	StateDropDown
)

var climbingStateNames = [...]string{
	StateSuspended:    "Suspended",
	StateMounting:     "Mounting",
	StateClimbing:     "Climbing",
	StateFreeClimbing: "FreeClimbing",
	StateDismount:     "Dismount",
	StatePullUp:       "PullUp",
	StateDropDown:     "DropDown",
}

// String 状态名称
func (s ClimbingState) String() string {
	if s >= 0 && int(s) < len(climbingStateNames) {
		return climbingStateNames[s]
	}
	return fmt.Sprintf("ClimbingState(%d)", int(s))
}

// ClimbingDirection 攀爬时的方向子状态
type ClimbingDirection int

const (
	DirectionIdle ClimbingDirection = iota
	DirectionUp
	DirectionDown
	DirectionLeft
	DirectionRight
	DirectionUpLeft
	DirectionUpRight
	DirectionDownLeft
	DirectionDownRight
	DirectionCornerLeft
	DirectionCornerRight
)

var climbingDirectionNames = [...]string{
	DirectionIdle:        "Idle",
	DirectionUp:          "Up",
	DirectionDown:        "Down",
	DirectionLeft:        "Left",
	DirectionRight:       "Right",
	DirectionUpLeft:      "UpLeft",
	DirectionUpRight:     "UpRight",
	DirectionDownLeft:    "DownLeft",
	DirectionDownRight:   "DownRight",
	DirectionCornerLeft:  "CornerLeft",
	DirectionCornerRight: "CornerRight",
}

// String 方向名称，同时也是 Climb 标签的变体名
func (d ClimbingDirection) String() string {
	if d >= 0 && int(d) < len(climbingDirectionNames) {
		return climbingDirectionNames[d]
	}
	return fmt.Sprintf("ClimbingDirection(%d)", int(d))
}

// climbingDirection 把摇杆映射到八个方向之一
func climbingDirection(stick utils.Vec2) ClimbingDirection {
	h := axisSign(stick.X)
	v := axisSign(stick.Y)

	switch {
	case h == 0 && v == 0:
		return DirectionIdle
	case h == 0:
		if v > 0 {
			return DirectionUp
		}
		return DirectionDown
	case v == 0:
		if h > 0 {
			return DirectionRight
		}
		return DirectionLeft
	case v > 0:
		if h > 0 {
			return DirectionUpRight
		}
		return DirectionUpLeft
	default:
		if h > 0 {
			return DirectionDownRight
		}
		return DirectionDownLeft
	}
}

func axisSign(v float64) int {
	switch {
	case v > stickDeadZone:
		return 1
	case v < -stickDeadZone:
		return -1
	}
	return 0
}

type transitionStatus int

const (
	transitionPending transitionStatus = iota
	transitionComplete
	transitionFailed
)

// 攀爬能力请求的过渡标签
var (
	TraitLedgeMount    = motion.NewTrait("Ledge", "Mount")
	TraitLedgeDismount = motion.NewTrait("Ledge", "Dismount")
	TraitLedgePullUp   = motion.NewTrait("Ledge", "PullUp")
	TraitLedgeDropDown = motion.NewTrait("Ledge", "DropDown")
)

// ClimbingAbility 攀爬能力
//
// 状态机：
//
//	Suspended    → Mounting（B 键 + 碰到 Wall 层盒子）| DropDown（B 键 + 从 Wall 层盒子边缘落下）
//	Mounting     → Climbing（离边沿足够近）| FreeClimbing
//	DropDown     → Climbing
//	FreeClimbing → Climbing（接近边沿 + 摇杆向上）| Dismount（接近下墙高度 + 摇杆向下）
//	Climbing     → PullUp（A 键，上方无遮挡）| Dismount（B 键 + 接近下墙高度）| FreeClimbing（B 键）
//	Dismount / PullUp → Suspended
//
// 任何过渡任务失败都回到 Suspended，不改变根轨迹。
// 摇杆约定：向前（朝墙顶）为正。
type ClimbingAbility struct {
	character *Character
	config    config.ClimbingConfig

	state         ClimbingState
	previousState ClimbingState

	direction    ClimbingDirection
	directionSet bool

	task           *transition.Task
	transitionType motion.Trait

	ledge       geometry.LedgeGeometry
	wall        geometry.WallGeometry
	ledgeAnchor geometry.LedgeAnchor
	wallAnchor  geometry.WallAnchor

	// Debug 打开状态切换日志
	Debug bool
}

var _ Ability = (*ClimbingAbility)(nil)

// NewClimbingAbility 创建处于 Suspended 状态的攀爬能力
func NewClimbingAbility(character *Character, cfg config.ClimbingConfig) *ClimbingAbility {
	return &ClimbingAbility{
		character: character,
		config:    cfg,
		state:     StateSuspended,
	}
}

// Name 能力名称
func (c *ClimbingAbility) Name() string { return "Climbing" }

// State 当前状态
func (c *ClimbingAbility) State() ClimbingState { return c.state }

// PreviousState 上一个状态
func (c *ClimbingAbility) PreviousState() ClimbingState { return c.previousState }

// Direction 当前方向子状态
func (c *ClimbingAbility) Direction() ClimbingDirection { return c.direction }

// Task 正在进行的过渡任务；没有时返回 nil
func (c *ClimbingAbility) Task() *transition.Task { return c.task }

// TransitionType 最近一次请求的过渡标签
func (c *ClimbingAbility) TransitionType() motion.Trait { return c.transitionType }

// Ledge 边沿几何
func (c *ClimbingAbility) Ledge() *geometry.LedgeGeometry { return &c.ledge }

// Wall 墙面几何
func (c *ClimbingAbility) Wall() *geometry.WallGeometry { return &c.wall }

// LedgeAnchor 边沿锚点
func (c *ClimbingAbility) LedgeAnchor() geometry.LedgeAnchor { return c.ledgeAnchor }

// WallAnchor 墙面锚点
func (c *ClimbingAbility) WallAnchor() geometry.WallAnchor { return c.wallAnchor }

// IsSuspended 是否处于 Suspended 状态
func (c *ClimbingAbility) IsSuspended() bool { return c.state == StateSuspended }

// UseRootAsCameraFollow 攀爬时相机跟随动画根节点
func (c *ClimbingAbility) UseRootAsCameraFollow() bool { return false }

// Dispose 释放过渡任务并清空几何
func (c *ClimbingAbility) Dispose() {
	c.disposeTask()
	c.ledge.Reset()
	c.wall.Reset()
	c.state = StateSuspended
	c.previousState = StateSuspended
}

// OnUpdate 推进状态机
func (c *ClimbingAbility) OnUpdate(deltaTime float64) Ability {
	configureController(c.character.Controller, !c.IsSuspended())

	if c.IsSuspended() {
		return nil
	}

	switch c.state {
	case StateMounting:
		if c.advanceTransition(deltaTime) == transitionComplete {
			c.finishMount()
		}
	case StateDropDown:
		if c.advanceTransition(deltaTime) == transitionComplete {
			c.ledgeAnchor = c.ledge.GetAnchor(c.rootPosition())
			c.setState(StateClimbing)
		}
	}

	if c.state == StateFreeClimbing {
		c.updateFreeClimbing(deltaTime)
	}

	if c.state == StateClimbing {
		c.updateClimbing(deltaTime)
	}

	if c.state == StateDismount || c.state == StatePullUp {
		if c.advanceTransition(deltaTime) == transitionComplete {
			c.setState(StateSuspended)
		}
	}

	return c
}

// OnContact B 键按下且碰到 Wall 层盒子时上墙
func (c *ClimbingAbility) OnContact(contact utils.AffineTransform, deltaTime float64) bool {
	if !c.character.Input.BButton || !c.IsSuspended() {
		return false
	}

	closure := c.character.Controller.Current()
	if !closure.IsColliding || closure.Collider == nil || closure.Collider.Layer != geometry.LayerWall {
		return false
	}

	collider := *closure.Collider
	c.ledge.Initialize(collider, contact)
	c.wall.Initialize(collider, contact)

	c.requestTransition(TraitLedgeMount, contact)
	c.setState(StateMounting)
	return true
}

// OnDrop B 键按下且从 Wall 层盒子顶面走出时，转身抓住最近的边沿
func (c *ClimbingAbility) OnDrop(deltaTime float64) bool {
	if !c.character.Input.BButton || !c.IsSuspended() {
		return false
	}

	previous := c.character.Controller.Previous()
	if !previous.IsGrounded || previous.Ground == nil || previous.Ground.Layer != geometry.LayerWall {
		return false
	}

	contact := ClosestEdgeTransform(previous.Ground, previous.Position)
	collider := *previous.Ground
	c.ledge.Initialize(collider, contact)
	c.wall.Initialize(collider, contact)

	c.requestTransition(TraitLedgeDropDown, contact)
	c.setState(StateDropDown)
	return true
}

func (c *ClimbingAbility) finishMount() {
	root := c.rootPosition()
	c.ledgeAnchor = c.ledge.GetAnchor(root)
	ledgeDistance := root.Distance(c.ledge.GetPosition(c.ledgeAnchor))

	if ledgeDistance >= c.config.LedgeSnapDistance {
		c.wallAnchor = c.wall.GetAnchor(root)
		c.setState(StateFreeClimbing)
		return
	}
	c.setState(StateClimbing)
}

func (c *ClimbingAbility) updateFreeClimbing(deltaTime float64) {
	stick := c.character.Input.Stick()

	next := c.wall.UpdateAnchor(c.wallAnchor, stick.Scale(c.config.DesiredSpeedClimbing*deltaTime))
	c.moveRoot(c.wall.GetPosition(next).Sub(c.wall.GetPosition(c.wallAnchor)))
	c.wallAnchor = next
	c.updateDirection(climbingDirection(stick))

	height := c.wall.GetHeightAt(c.wallAnchor)
	totalHeight := c.wall.GetHeight()
	closeToLedge := math.Abs(totalHeight-height) <= c.config.LedgeTolerance
	closeToDrop := math.Abs(height-c.config.DropHeight) <= c.config.DropToleranceFreeClimbing

	switch {
	case closeToLedge && stick.Y >= c.config.StickThreshold:
		c.ledgeAnchor = c.ledge.GetAnchor(c.rootPosition())
		c.setState(StateClimbing)
	case closeToDrop && stick.Y <= -c.config.StickThreshold:
		c.requestTransition(TraitLedgeDismount, c.character.Synthesizer.WorldRootTransform())
		c.setState(StateDismount)
	}
}

func (c *ClimbingAbility) updateClimbing(deltaTime float64) {
	root := c.character.Synthesizer.WorldRootTransform()
	c.wall.Reinitialize(root)
	c.wallAnchor = c.wall.GetAnchor(root.T)
	height := c.wall.GetHeightAt(c.wallAnchor)
	closeToDrop := math.Abs(height-c.config.DropHeight) <= c.config.DropToleranceClimbing

	stick := c.character.Input.Stick()
	next := c.ledge.UpdateAnchor(c.ledgeAnchor, stick.X*c.config.DesiredSpeedLedge*deltaTime)
	c.moveRoot(c.ledge.GetPosition(next).Sub(c.ledge.GetPosition(c.ledgeAnchor)))
	c.ledgeAnchor = next

	direction := climbingDirection(utils.Vec2{X: stick.X})
	switch {
	case direction == DirectionLeft && next.U >= 1:
		direction = DirectionCornerLeft
	case direction == DirectionRight && next.U <= 0:
		direction = DirectionCornerRight
	}
	c.updateDirection(direction)

	input := c.character.Input
	switch {
	case input.AButton:
		if !c.pullUpClear() {
			if c.Debug {
				log.Printf("[ClimbingAbility] Pull-up blocked above ledge at U=%.3f", c.ledgeAnchor.U)
			}
			return
		}
		c.requestTransition(TraitLedgePullUp, c.ledge.GetTransform(c.ledgeAnchor))
		c.setState(StatePullUp)
	case input.BButton && !closeToDrop:
		c.setState(StateFreeClimbing)
	case input.BButton && closeToDrop:
		c.requestTransition(TraitLedgeDismount, c.character.Synthesizer.WorldRootTransform())
		c.setState(StateDismount)
	}
}

// pullUpClear 边沿上方能否容纳站立的胶囊体
func (c *ClimbingAbility) pullUpClear() bool {
	ctrl := c.character.Controller
	radius := ctrl.Radius()
	clearance := radius + c.config.ContactThreshold

	lip := c.ledge.GetPosition(geometry.LedgeAnchor{U: c.ledgeAnchor.U})
	inward := c.ledge.GetNormal(c.ledgeAnchor).Neg()

	p0 := lip.Add(inward.Scale(clearance)).Add(utils.Up.Scale(clearance))
	p1 := p0.Add(utils.Up.Scale(math.Max(ctrl.Height()-2*radius, 0)))
	return !ctrl.OverlapCapsule(p0, p1, radius)
}

// advanceTransition 推进当前过渡任务；失败时回到 Suspended
func (c *ClimbingAbility) advanceTransition(deltaTime float64) transitionStatus {
	if c.task == nil {
		return transitionComplete
	}

	if !c.task.IsDone() {
		c.task.Tick(deltaTime)
	}

	switch {
	case c.task.IsFailed():
		log.Printf("[ClimbingAbility] ⚠️ %s transition failed in state %s, back to Suspended", c.transitionType, c.state)
		c.disposeTask()
		c.setState(StateSuspended)
		return transitionFailed
	case c.task.IsComplete():
		c.disposeTask()
		return transitionComplete
	}
	return transitionPending
}

// requestTransition 用过滤后的候选序列创建新的过渡任务，旧任务立即释放
func (c *ClimbingAbility) requestTransition(trait motion.Trait, contact utils.AffineTransform) {
	lib := c.character.Library
	sequences := QueryPoseSequences(lib, c.character.Controller, contact, trait, c.config.ContactThreshold)

	c.disposeTask()
	c.task = transition.NewTask(c.character.Synthesizer, lib, sequences, contact,
		searchParams(c.config.MaximumLinearError, c.config.MaximumAngularErrorRadians()))
	c.task.Debug = c.Debug
	c.transitionType = trait

	if c.Debug {
		log.Printf("[ClimbingAbility] Request %s (task %s, %d sequences)", trait, c.task.ID(), len(sequences))
	}
}

func (c *ClimbingAbility) disposeTask() {
	if c.task != nil {
		c.task.Dispose()
		c.task = nil
	}
}

// updateDirection 方向子状态变化时直接播放对应的 Climb 序列（不经过过渡搜索）
func (c *ClimbingAbility) updateDirection(direction ClimbingDirection) {
	if c.directionSet && direction == c.direction {
		return
	}
	c.direction = direction
	c.directionSet = true

	lib := c.character.Library
	sequences := lib.Query(motion.NewTrait("Climb", direction.String())).Sequences()
	if c.character.Synthesizer.PlayFirstSequence(sequences) && c.Debug {
		log.Printf("[ClimbingAbility] Direction %s", direction)
	}
}

func (c *ClimbingAbility) setState(s ClimbingState) {
	if c.Debug {
		log.Printf("[ClimbingAbility] %s -> %s", c.state, s)
	}
	c.previousState = c.state
	c.state = s

	if s == StateClimbing || s == StateFreeClimbing {
		c.directionSet = false
	}
}

func (c *ClimbingAbility) rootPosition() utils.Vec3 {
	return c.character.Synthesizer.WorldRootTransform().T
}

func (c *ClimbingAbility) moveRoot(displacement utils.Vec3) {
	synth := c.character.Synthesizer
	root := synth.WorldRootTransform()
	root.T = root.T.Add(displacement)
	synth.SetWorldTransform(root)
}
