package components

import "github.com/decker502/anchorclimb/pkg/utils"

// InputStep 脚本输入中的一段：在 Duration 秒内保持 State
type InputStep struct {
	Duration float64
	State    utils.InputState
}

// InputComponent 角色的输入来源
//
// Script 为空时由 InputSystem 读取玩家输入；否则按顺序回放脚本，
// 脚本播完后保持空输入。
type InputComponent struct {
	Script []InputStep

	// Elapsed 脚本已回放的时长（秒）
	Elapsed float64

	// State 本帧写入角色的输入
	State utils.InputState
}

// Scripted 是否使用脚本输入
func (c *InputComponent) Scripted() bool {
	return len(c.Script) > 0
}

// Sample 返回 Elapsed 时刻的脚本输入
func (c *InputComponent) Sample() utils.InputState {
	end := 0.0
	for _, step := range c.Script {
		end += step.Duration
		if c.Elapsed < end {
			return step.State
		}
	}
	return utils.InputState{}
}

// Finished 脚本是否已经回放完毕
func (c *InputComponent) Finished() bool {
	total := 0.0
	for _, step := range c.Script {
		total += step.Duration
	}
	return c.Scripted() && c.Elapsed >= total
}
