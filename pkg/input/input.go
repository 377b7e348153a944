// Package input 从 ebiten 读取玩家输入
//
// 与 utils.InputState 分开放置，使不开窗口的工具和测试不依赖 ebiten。
package input

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/decker502/anchorclimb/pkg/utils"
)

// gamepadDeadZone 摇杆死区
const gamepadDeadZone = 0.2

// Poll 读取当前帧的键盘与手柄输入
// 同时支持键盘与第一个标准手柄，手柄摇杆超出死区时优先
func Poll() utils.InputState {
	state := utils.InputState{}

	// 键盘：方向键 / WASD
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) || ebiten.IsKeyPressed(ebiten.KeyA) {
		state.StickHorizontal -= 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) || ebiten.IsKeyPressed(ebiten.KeyD) {
		state.StickHorizontal += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyW) {
		state.StickVertical += 1
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyS) {
		state.StickVertical -= 1
	}
	state.AButton = ebiten.IsKeyPressed(ebiten.KeySpace)
	state.BButton = ebiten.IsKeyPressed(ebiten.KeyB)

	// 手柄
	gamepadIDs := ebiten.AppendGamepadIDs(nil)
	if len(gamepadIDs) > 0 {
		id := gamepadIDs[0]
		if ebiten.IsStandardGamepadLayoutAvailable(id) {
			h := ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickHorizontal)
			// 标准布局中向上推为负值
			v := -ebiten.StandardGamepadAxisValue(id, ebiten.StandardGamepadAxisLeftStickVertical)
			if (utils.Vec2{X: h, Y: v}).Length() > gamepadDeadZone {
				state.StickHorizontal = h
				state.StickVertical = v
			}
			state.AButton = state.AButton || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightBottom)
			state.BButton = state.BButton || ebiten.IsStandardGamepadButtonPressed(id, ebiten.StandardGamepadButtonRightRight)
		}
	}

	state.StickHorizontal = utils.Clamp(state.StickHorizontal, -1, 1)
	state.StickVertical = utils.Clamp(state.StickVertical, -1, 1)
	return state
}
