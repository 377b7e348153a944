// Package controller 定义移动控制器接口，并提供一个运动学胶囊体参考实现
//
// 控制器负责碰撞、重力与贴地；能力状态机只通过闭包状态（是否着地、是否碰撞、
// 接触点与法线）和重叠查询与它交互。轨迹预测时先 Snapshot，逐步 MoveTo/Tick，
// 最后 Rewind 恢复。
package controller

import (
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// Closure 一次 Tick 结束时的控制器状态
type Closure struct {
	Position utils.Vec3

	IsGrounded bool
	// Ground 脚下的碰撞体（IsGrounded 时有效）
	Ground *geometry.BoxCollider

	IsColliding bool
	// Collider 本次 Tick 碰到的障碍（IsColliding 时有效）
	Collider *geometry.BoxCollider
	// ContactPoint / ContactNormal 障碍表面上的接触点与外法线（水平）
	ContactPoint  utils.Vec3
	ContactNormal utils.Vec3
}

// Flags 控制器开关
//
// 攀爬等锚定动作期间由能力关闭，角色完全跟随动画根节点。
type Flags struct {
	CollisionEnabled         bool
	GroundSnap               bool
	ResolveGroundPenetration bool
	GravityEnabled           bool
}

// DefaultFlags 全部开启
func DefaultFlags() Flags {
	return Flags{
		CollisionEnabled:         true,
		GroundSnap:               true,
		ResolveGroundPenetration: true,
		GravityEnabled:           true,
	}
}

// Controller 移动控制器
type Controller interface {
	// Current / Previous 最近两次 Tick 的闭包状态
	Current() *Closure
	Previous() *Closure

	// Position 胶囊体底部（脚底）位置
	Position() utils.Vec3
	// MoveTo 设置下一次 Tick 的目标位置
	MoveTo(position utils.Vec3)
	// Move 在目标位置上追加位移
	Move(displacement utils.Vec3)
	// Tick 解析移动、碰撞与贴地
	Tick(deltaTime float64)

	// Snapshot / Rewind 保存并恢复全部状态（轨迹预测用）
	Snapshot()
	Rewind()

	// OverlapCapsule 以 p0、p1 为端点、radius 为半径的胶囊是否与场景相交
	OverlapCapsule(p0, p1 utils.Vec3, radius float64) bool
	// OverlapBox 有向包围盒是否与场景相交
	OverlapBox(box utils.OBB) bool

	Flags() Flags
	SetFlags(flags Flags)

	// Radius / Height 胶囊尺寸
	Radius() float64
	Height() float64
}
