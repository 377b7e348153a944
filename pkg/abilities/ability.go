// Package abilities 实现角色的能力状态机（攀爬、跑酷、移动）以及调度它们的 Runner
//
// 每帧由当前掌握控制权的能力先更新；它放弃控制（返回 nil）后，
// Runner 按优先级依次询问所有能力，第一个返回非 nil 的能力获得控制权。
// 移动能力在预测轨迹时把接触与坠落事件转发给其他能力，
// 其他能力据此创建锚定过渡任务（transition.Task）。
package abilities

import (
	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/synthesis"
	"github.com/decker502/anchorclimb/pkg/transition"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// Ability 能力
type Ability interface {
	// Name 能力名称（日志与时间线）
	Name() string

	// OnUpdate 每帧调用；返回获得控制权的能力，nil 表示不需要控制权
	OnUpdate(deltaTime float64) Ability

	// OnContact 轨迹预测中碰到障碍时调用；返回 true 表示接管
	OnContact(contact utils.AffineTransform, deltaTime float64) bool

	// OnDrop 轨迹预测中离开地面时调用；返回 true 表示接管
	OnDrop(deltaTime float64) bool

	// UseRootAsCameraFollow 相机是否跟随控制器位置
	UseRootAsCameraFollow() bool
}

// Character 能力共享的角色上下文
type Character struct {
	Library     *motion.Library
	Synthesizer synthesis.Synthesizer
	Controller  controller.Controller

	// Input 当前帧的输入，由调用方在 Runner.Update 之前写入
	Input utils.InputState
}

// configureController 锚定动作期间关闭碰撞、贴地与重力，角色完全跟随动画根节点
func configureController(ctrl controller.Controller, anchored bool) {
	ctrl.SetFlags(controller.Flags{
		CollisionEnabled:         !anchored,
		GroundSnap:               !anchored,
		ResolveGroundPenetration: !anchored,
		GravityEnabled:           !anchored,
	})
}

// searchParams 把配置中的容差转换为搜索参数
func searchParams(linear, angularRadians float64) transition.SearchParams {
	return transition.SearchParams{
		MaximumLinearError:  linear,
		MaximumAngularError: angularRadians,
	}
}
