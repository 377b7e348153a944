package systems

import (
	"context"
	"fmt"
	"log"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/decker502/anchorclimb/pkg/components"
	"github.com/decker502/anchorclimb/pkg/ecs"
)

// AbilitySystem 推进所有角色的能力调度器
//
// 角色之间只共享只读的动作库，因此每个角色在自己的 goroutine 中完成
// 能力更新、合成器推进、根运动落实和相机跟随。
type AbilitySystem struct {
	entityManager *ecs.EntityManager
	limit         int

	// Debug 打开每帧的控制权日志
	Debug bool
}

// NewAbilitySystem 创建能力系统，并发度默认为 GOMAXPROCS
func NewAbilitySystem(em *ecs.EntityManager) *AbilitySystem {
	return &AbilitySystem{
		entityManager: em,
		limit:         runtime.GOMAXPROCS(0),
	}
}

// SetConcurrency 设置同时更新的角色数量上限；n <= 0 表示不限制
func (s *AbilitySystem) SetConcurrency(n int) {
	s.limit = n
}

// Update 推进一帧
//
// 返回:
//   - error: 角色组件不完整或 ctx 被取消时返回错误
func (s *AbilitySystem) Update(ctx context.Context, deltaTime float64) error {
	ids := ecs.GetEntitiesWith1[*components.CharacterComponent](s.entityManager)

	g, ctx := errgroup.WithContext(ctx)
	if s.limit > 0 {
		g.SetLimit(s.limit)
	}

	for _, id := range ids {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.updateCharacter(id, deltaTime)
		})
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to update abilities: %w", err)
	}
	return nil
}

func (s *AbilitySystem) updateCharacter(id ecs.EntityID, deltaTime float64) error {
	character, _ := ecs.GetComponent[*components.CharacterComponent](s.entityManager, id)
	if character.Runner == nil {
		return fmt.Errorf("character %q (ID: %d) has no runner", character.Name, id)
	}

	previous := character.Runner.Current()
	character.Runner.Tick(deltaTime)

	if s.Debug && character.Runner.Current() != previous {
		name := "none"
		if current := character.Runner.Current(); current != nil {
			name = current.Name()
		}
		log.Printf("[AbilitySystem] %s (ID: %d) 控制权 -> %s", character.Name, id, name)
	}

	if camera, ok := ecs.GetComponent[*components.CameraComponent](s.entityManager, id); ok {
		camera.Follow = character.Runner.CameraFollow(deltaTime)
	}
	return nil
}
