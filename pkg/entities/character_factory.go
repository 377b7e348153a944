// Package entities 提供角色实体的工厂函数
package entities

import (
	"fmt"
	"log"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/abilities"
	"github.com/decker502/anchorclimb/pkg/components"
	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/ecs"
	"github.com/decker502/anchorclimb/pkg/synthesis"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// defaultCameraDistance 镜头默认距离（米）
const defaultCameraDistance = 6.0

// CharacterSpec 创建角色的参数
type CharacterSpec struct {
	Name     string
	Position utils.Vec3
	// Yaw 初始朝向（弧度），0 表示面朝 +Z
	Yaw float64

	// Script 非空时使用脚本输入，否则读取玩家输入
	Script []components.InputStep

	// Controller 为零值时使用 controller.DefaultSettings()
	Controller controller.Settings

	// CameraDistance 为 0 时使用默认距离
	CameraDistance float64
}

// NewCharacterEntity 创建一个可攀爬角色
//
// 角色从库中第一个待机序列开始播放（没有待机序列时从第 0 段第 0 帧开始），
// 能力优先级为 攀爬 > 跑酷 > 移动。
//
// 参数:
//   - em: 实体管理器
//   - lib: 动作库（所有角色共享，只读）
//   - world: 碰撞世界
//   - cfg: 能力调参
//   - spec: 角色参数
//
// 返回:
//   - ecs.EntityID: 创建的角色实体ID
//   - error: 参数不完整或配置无效时返回错误
func NewCharacterEntity(em *ecs.EntityManager, lib *motion.Library, world *controller.World, cfg *config.AbilitiesConfig, spec CharacterSpec) (ecs.EntityID, error) {
	if lib == nil || lib.NumSegments() == 0 {
		return 0, fmt.Errorf("failed to create character %q: motion library is empty", spec.Name)
	}
	if world == nil {
		return 0, fmt.Errorf("failed to create character %q: collision world is nil", spec.Name)
	}
	if cfg == nil {
		cfg = config.DefaultAbilitiesConfig()
	}
	if err := cfg.Validate(); err != nil {
		return 0, fmt.Errorf("failed to create character %q: %w", spec.Name, err)
	}

	settings := spec.Controller
	if settings == (controller.Settings{}) {
		settings = controller.DefaultSettings()
	}

	start := motion.NewTimeIndex(0, 0)
	if idle := lib.Query(abilities.TraitLocomotion).And(abilities.TraitIdle).Sequences(); len(idle) > 0 {
		start = lib.GetInterval(idle[0])
	} else {
		log.Printf("[CharacterFactory] ⚠️ 动作库 %s 没有待机序列，从第 0 段开始播放", lib.Name())
	}

	ctrl := controller.NewKinematic(world, settings, spec.Position)
	playback := synthesis.NewPlayback(lib, start, utils.NewAffineTransform(spec.Position, utils.QuatYaw(spec.Yaw)))

	character := &abilities.Character{
		Library:     lib,
		Synthesizer: playback,
		Controller:  ctrl,
	}
	climbing := abilities.NewClimbingAbility(character, cfg.Climbing)
	parkour := abilities.NewParkourAbility(character, cfg.Parkour)
	locomotion := abilities.NewLocomotionAbility(character, cfg.Locomotion)
	runner := abilities.NewRunner(character, cfg.Camera, climbing, parkour, locomotion)

	distance := spec.CameraDistance
	if distance <= 0 {
		distance = defaultCameraDistance
	}

	entityID := em.CreateEntity()
	ecs.AddComponent(em, entityID, &components.CharacterComponent{
		Name:       spec.Name,
		Character:  character,
		Runner:     runner,
		Controller: ctrl,
		Playback:   playback,
		Climbing:   climbing,
		Parkour:    parkour,
		Locomotion: locomotion,
	})
	ecs.AddComponent(em, entityID, &components.InputComponent{Script: spec.Script})
	ecs.AddComponent(em, entityID, &components.CameraComponent{
		Follow:   spec.Position,
		Distance: distance,
		Yaw:      spec.Yaw,
	})

	log.Printf("[CharacterFactory] 创建角色 %q (ID: %d) 位置 %v", spec.Name, entityID, spec.Position)
	return entityID, nil
}
