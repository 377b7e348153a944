package components

import (
	"github.com/decker502/anchorclimb/pkg/abilities"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/synthesis"
)

// CharacterComponent 一个可攀爬角色的全部运行时状态
//
// Runner 持有能力列表；Climbing / Parkour / Locomotion 指向 Runner 中的同一批能力，
// 供调试绘制和验证工具直接读取状态。
type CharacterComponent struct {
	// Name 角色名称（日志）
	Name string

	Character  *abilities.Character
	Runner     *abilities.Runner
	Controller *controller.Kinematic
	Playback   *synthesis.Playback

	Climbing   *abilities.ClimbingAbility
	Parkour    *abilities.ParkourAbility
	Locomotion *abilities.LocomotionAbility
}
