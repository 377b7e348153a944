package systems

import (
	"github.com/decker502/anchorclimb/pkg/components"
	"github.com/decker502/anchorclimb/pkg/ecs"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// InputSource 读取一帧玩家输入
type InputSource func() utils.InputState

// InputSystem 每帧把输入写入角色
//
// 带脚本的角色回放脚本，其余角色读取玩家输入。
type InputSystem struct {
	entityManager *ecs.EntityManager
	source        InputSource
}

// NewInputSystem 创建输入系统
//
// 参数:
//   - em: 实体管理器
//   - source: 玩家输入来源（窗口程序传入 input.Poll）；nil 时玩家角色始终收到空输入
func NewInputSystem(em *ecs.EntityManager, source InputSource) *InputSystem {
	if source == nil {
		source = noInput
	}
	return &InputSystem{
		entityManager: em,
		source:        source,
	}
}

func noInput() utils.InputState { return utils.InputState{} }

// Update 采样输入；玩家输入每帧只读取一次，所有非脚本角色共享
func (s *InputSystem) Update(deltaTime float64) {
	var player *utils.InputState

	for _, id := range ecs.GetEntitiesWith2[*components.CharacterComponent, *components.InputComponent](s.entityManager) {
		character, _ := ecs.GetComponent[*components.CharacterComponent](s.entityManager, id)
		input, _ := ecs.GetComponent[*components.InputComponent](s.entityManager, id)

		if input.Scripted() {
			input.State = input.Sample()
			input.Elapsed += deltaTime
		} else {
			if player == nil {
				state := s.source()
				player = &state
			}
			input.State = *player
		}
		character.Character.Input = input.State
	}
}
