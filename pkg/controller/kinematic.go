package controller

import (
	"math"

	"github.com/decker502/anchorclimb/pkg/utils"
)

// Settings 运动学控制器参数
type Settings struct {
	Radius float64
	Height float64
	// StepHeight 可以直接迈上去的高度；更高的盒子视为障碍
	StepHeight float64
	// GroundSnapDistance 贴地距离
	GroundSnapDistance float64
	// Gravity 重力加速度（正值，向下）
	Gravity float64
}

// DefaultSettings 人形角色的默认参数
func DefaultSettings() Settings {
	return Settings{
		Radius:             0.3,
		Height:             1.8,
		StepHeight:         0.3,
		GroundSnapDistance: 0.1,
		Gravity:            9.81,
	}
}

type kinematicState struct {
	position  utils.Vec3
	target    utils.Vec3
	velocityY float64
	current   Closure
	previous  Closure
	flags     Flags
}

// Kinematic 运动学胶囊体控制器
//
// 障碍处理只做水平推出，地面由脚下最高的可站立盒子决定。
type Kinematic struct {
	world    *World
	settings Settings

	state    kinematicState
	snapshot *kinematicState
}

var _ Controller = (*Kinematic)(nil)

// NewKinematic 在 position 处创建控制器
func NewKinematic(world *World, settings Settings, position utils.Vec3) *Kinematic {
	k := &Kinematic{world: world, settings: settings}
	k.state = kinematicState{
		position: position,
		target:   position,
		flags:    DefaultFlags(),
	}
	k.state.current.Position = position
	k.state.previous.Position = position
	k.updateGround()
	k.state.previous = k.state.current
	return k
}

// World 所在场景
func (k *Kinematic) World() *World { return k.world }

// Current 最近一次 Tick 的闭包
func (k *Kinematic) Current() *Closure { return &k.state.current }

// Previous 上一次 Tick 的闭包
func (k *Kinematic) Previous() *Closure { return &k.state.previous }

// Position 脚底位置
func (k *Kinematic) Position() utils.Vec3 { return k.state.position }

// MoveTo 设置目标位置
func (k *Kinematic) MoveTo(position utils.Vec3) { k.state.target = position }

// Move 追加位移
func (k *Kinematic) Move(displacement utils.Vec3) {
	k.state.target = k.state.target.Add(displacement)
}

// Flags 当前开关
func (k *Kinematic) Flags() Flags { return k.state.flags }

// SetFlags 设置开关
func (k *Kinematic) SetFlags(flags Flags) { k.state.flags = flags }

// Radius 胶囊半径
func (k *Kinematic) Radius() float64 { return k.settings.Radius }

// Height 胶囊高度
func (k *Kinematic) Height() float64 { return k.settings.Height }

// Snapshot 保存状态
func (k *Kinematic) Snapshot() {
	s := k.state
	k.snapshot = &s
}

// Rewind 恢复到最近一次 Snapshot；没有快照时不做任何事
func (k *Kinematic) Rewind() {
	if k.snapshot == nil {
		return
	}
	k.state = *k.snapshot
	k.snapshot = nil
}

// OverlapCapsule 胶囊重叠查询
func (k *Kinematic) OverlapCapsule(p0, p1 utils.Vec3, radius float64) bool {
	return k.world.OverlapCapsule(p0, p1, radius)
}

// OverlapBox 盒子重叠查询
func (k *Kinematic) OverlapBox(box utils.OBB) bool {
	return k.world.OverlapBox(box)
}

// Tick 解析一次移动
func (k *Kinematic) Tick(deltaTime float64) {
	s := &k.state
	s.previous = s.current

	target := s.target
	if s.flags.GravityEnabled && !s.previous.IsGrounded && deltaTime > 0 {
		s.velocityY -= k.settings.Gravity * deltaTime
		target.Y += s.velocityY * deltaTime
	}

	s.current = Closure{}
	if s.flags.CollisionEnabled {
		target = k.resolveObstacles(s.position, target)
	}
	s.position = target
	k.updateGround()

	if s.current.IsGrounded {
		s.velocityY = 0
	}
	s.target = s.position
	s.current.Position = s.position
}

// resolveObstacles 把胶囊从高于台阶高度的盒子中水平推出
func (k *Kinematic) resolveObstacles(from, to utils.Vec3) utils.Vec3 {
	s := &k.state
	r := k.settings.Radius
	heights := []float64{r + k.settings.StepHeight, k.settings.Height * 0.5, k.settings.Height - r}

	for i := range k.world.Colliders {
		c := &k.world.Colliders[i]
		if c.TopHeight() <= to.Y+k.settings.StepHeight {
			continue
		}

		for _, h := range heights {
			p := to.Add(utils.NewVec3(0, h, 0))
			closest := c.ClosestPoint(p)
			offset := p.Sub(closest).Horizontal()
			distance := offset.Length()
			if distance >= r || math.Abs(closest.Y-p.Y) > 1e-9 {
				continue
			}

			normal := offset.Normalize()
			if distance < 1e-9 {
				// 轴线已进入盒子：沿来时方向推出
				normal = from.Sub(to).Horizontal().Normalize()
				if normal.LengthSq() < 1e-12 {
					normal = c.TransformDirection(utils.Forward)
				}
			}

			to = to.Add(normal.Scale(r - distance))
			s.current.IsColliding = true
			s.current.Collider = c
			s.current.ContactPoint = closest
			s.current.ContactNormal = normal
			break
		}
	}
	return to
}

// updateGround 检测脚下地面并按开关贴地
func (k *Kinematic) updateGround() {
	s := &k.state
	ground, top, ok := k.world.groundBelow(s.position, s.position.Y+k.settings.StepHeight)
	if !ok {
		return
	}

	gap := s.position.Y - top
	switch {
	case gap < 0 && s.flags.ResolveGroundPenetration:
		s.position.Y = top
	case gap >= 0 && gap <= k.settings.GroundSnapDistance && s.flags.GroundSnap:
		s.position.Y = top
	case math.Abs(gap) > 1e-6:
		return
	}

	s.current.IsGrounded = true
	s.current.Ground = ground
}
