// Package game 持久化玩家对能力调参的个人覆盖
package game

import (
	"fmt"
	"log"

	"github.com/quasilyte/gdata/v2"
	"gopkg.in/yaml.v3"

	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// AbilitySettings 玩家对能力调参的覆盖
//
// 0 表示不覆盖，沿用 data/abilities.yaml 中的值。
type AbilitySettings struct {
	// 移动
	WalkSpeed      float64 `yaml:"walkSpeed"`      // 行走速度（米/秒）
	RunSpeed       float64 `yaml:"runSpeed"`       // 奔跑速度（米/秒）
	Responsiveness float64 `yaml:"responsiveness"` // 轨迹匹配权重 0.0 ~ 1.0

	// 攀爬
	ClimbingSpeed float64 `yaml:"climbingSpeed"` // 自由攀爬速度（米/秒）
	LedgeSpeed    float64 `yaml:"ledgeSpeed"`    // 边沿横移速度（米/秒）

	// 相机
	CameraHeightOffset float64 `yaml:"cameraHeightOffset"` // 跟随点高度偏移（米）

	// 调试绘制（候选、锚点、轨迹）
	DebugOverlay bool `yaml:"debugOverlay"`
}

// DefaultAbilitySettings 返回默认设置（全部不覆盖）
func DefaultAbilitySettings() *AbilitySettings {
	return &AbilitySettings{}
}

// AbilitySettingsManager 能力设置管理器
// 负责设置的加载、保存以及套用到调参配置上
type AbilitySettingsManager struct {
	gdataManager *gdata.Manager  // gdata 跨平台存储管理器，可为 nil（降级模式）
	settings     *AbilitySettings // 当前设置
}

// 存储路径常量
const (
	settingsObject   = "settings"
	settingsProperty = "abilities"
)

// maxSpeed 速度覆盖的上限（米/秒）
const maxSpeed = 20.0

// OpenStorage 打开 gdata 存储
//
// 打开失败时返回 nil 并记录警告，调用方以降级模式继续运行。
func OpenStorage(appName string) *gdata.Manager {
	manager, err := gdata.Open(gdata.Config{AppName: appName})
	if err != nil {
		log.Printf("[AbilitySettings] ⚠️ gdata 不可用: %v（设置不会被保存）", err)
		return nil
	}
	return manager
}

// NewAbilitySettingsManager 创建新的设置管理器实例
//
// 参数：
//   - gdataManager: gdata 跨平台存储管理器，可为 nil（降级模式，仅内存设置）
//
// 返回：
//   - *AbilitySettingsManager: 设置管理器实例（加载失败时使用默认设置）
func NewAbilitySettingsManager(gdataManager *gdata.Manager) *AbilitySettingsManager {
	sm := &AbilitySettingsManager{
		gdataManager: gdataManager,
		settings:     DefaultAbilitySettings(),
	}

	// 加载失败不是致命错误，使用默认设置
	if err := sm.Load(); err != nil {
		log.Printf("[AbilitySettings] ⚠️ Failed to load settings: %v (using defaults)", err)
	}

	return sm
}

// Persistent 设置是否可以持久化
func (sm *AbilitySettingsManager) Persistent() bool {
	return sm.gdataManager != nil
}

// Load 从 gdata 加载设置
//
// 如果 gdataManager 为 nil 或数据不存在，使用默认设置
//
// 返回：
//   - error: 如果读取或反序列化失败返回错误
func (sm *AbilitySettingsManager) Load() error {
	if sm.gdataManager == nil || !sm.gdataManager.ObjectPropExists(settingsObject, settingsProperty) {
		sm.settings = DefaultAbilitySettings()
		return nil
	}

	data, err := sm.gdataManager.LoadObjectProp(settingsObject, settingsProperty)
	if err != nil {
		sm.settings = DefaultAbilitySettings()
		return fmt.Errorf("failed to load ability settings: %w", err)
	}

	var loaded AbilitySettings
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		sm.settings = DefaultAbilitySettings()
		return fmt.Errorf("failed to unmarshal ability settings: %w", err)
	}

	sm.settings = &loaded
	log.Printf("[AbilitySettings] Settings loaded successfully")
	return nil
}

// Save 保存设置到 gdata
//
// 如果 gdataManager 为 nil，返回 nil（降级模式，不报错）
//
// 返回：
//   - error: 如果序列化或保存失败返回错误
func (sm *AbilitySettingsManager) Save() error {
	if sm.gdataManager == nil {
		return nil
	}

	data, err := yaml.Marshal(sm.settings)
	if err != nil {
		return fmt.Errorf("failed to marshal ability settings: %w", err)
	}

	if err := sm.gdataManager.SaveObjectProp(settingsObject, settingsProperty, data); err != nil {
		return fmt.Errorf("failed to save ability settings: %w", err)
	}

	log.Printf("[AbilitySettings] Settings saved successfully")
	return nil
}

// Reset 清除所有覆盖并保存
func (sm *AbilitySettingsManager) Reset() error {
	sm.settings = DefaultAbilitySettings()
	return sm.Save()
}

// GetSettings 获取当前设置
func (sm *AbilitySettingsManager) GetSettings() *AbilitySettings {
	return sm.settings
}

// SetWalkSpeed 设置行走速度（0 表示不覆盖）
// 注意：仅修改内存中的设置，需调用 Save() 方法持久化
func (sm *AbilitySettingsManager) SetWalkSpeed(speed float64) {
	sm.settings.WalkSpeed = utils.Clamp(speed, 0, maxSpeed)
}

// SetRunSpeed 设置奔跑速度（0 表示不覆盖）
func (sm *AbilitySettingsManager) SetRunSpeed(speed float64) {
	sm.settings.RunSpeed = utils.Clamp(speed, 0, maxSpeed)
}

// SetResponsiveness 设置轨迹匹配权重，限制在 0.0 ~ 1.0
func (sm *AbilitySettingsManager) SetResponsiveness(r float64) {
	sm.settings.Responsiveness = utils.Saturate(r)
}

// SetClimbingSpeed 设置自由攀爬速度（0 表示不覆盖）
func (sm *AbilitySettingsManager) SetClimbingSpeed(speed float64) {
	sm.settings.ClimbingSpeed = utils.Clamp(speed, 0, maxSpeed)
}

// SetLedgeSpeed 设置边沿横移速度（0 表示不覆盖）
func (sm *AbilitySettingsManager) SetLedgeSpeed(speed float64) {
	sm.settings.LedgeSpeed = utils.Clamp(speed, 0, maxSpeed)
}

// SetCameraHeightOffset 设置相机跟随点高度偏移（0 表示不覆盖）
func (sm *AbilitySettingsManager) SetCameraHeightOffset(offset float64) {
	sm.settings.CameraHeightOffset = offset
}

// SetDebugOverlay 打开或关闭调试绘制
func (sm *AbilitySettingsManager) SetDebugOverlay(enabled bool) {
	sm.settings.DebugOverlay = enabled
}

// Apply 把覆盖套用到 base 的副本上
//
// 参数：
//   - base: 从 data/abilities.yaml 加载的调参（不会被修改）
//
// 返回：
//   - *config.AbilitiesConfig: 套用后的配置
//   - error: 套用后配置无效时返回错误（例如奔跑速度低于行走速度）
func (sm *AbilitySettingsManager) Apply(base *config.AbilitiesConfig) (*config.AbilitiesConfig, error) {
	out := *base
	s := sm.settings

	override := func(dst *float64, v float64) {
		if v != 0 {
			*dst = v
		}
	}
	override(&out.Locomotion.DesiredSpeedSlow, s.WalkSpeed)
	override(&out.Locomotion.DesiredSpeedFast, s.RunSpeed)
	override(&out.Locomotion.Responsiveness, s.Responsiveness)
	override(&out.Climbing.DesiredSpeedClimbing, s.ClimbingSpeed)
	override(&out.Climbing.DesiredSpeedLedge, s.LedgeSpeed)
	override(&out.Camera.HeightOffset, s.CameraHeightOffset)

	if err := out.Validate(); err != nil {
		return nil, fmt.Errorf("failed to apply ability settings: %w", err)
	}
	return &out, nil
}
