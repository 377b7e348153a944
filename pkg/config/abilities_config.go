package config

import (
	"fmt"
	"io/fs"
	"math"
	"os"

	"gopkg.in/yaml.v3"
)

// AbilitiesConfig 能力调参配置
//
// 角度在文件中以度为单位书写，使用时通过 *Radians 方法转换为弧度。
//
// 配置文件位置: data/abilities.yaml
type AbilitiesConfig struct {
	Climbing   ClimbingConfig   `yaml:"climbing"`
	Parkour    ParkourConfig    `yaml:"parkour"`
	Locomotion LocomotionConfig `yaml:"locomotion"`
	Camera     CameraConfig     `yaml:"camera"`
}

// TransitionConfig 锚定过渡搜索参数
type TransitionConfig struct {
	// ContactThreshold 检查候选序列包围盒时的收缩距离（米）
	ContactThreshold float64 `yaml:"contactThreshold"`

	// MaximumLinearError 源/目标候选之间允许的最大位置误差（米）
	MaximumLinearError float64 `yaml:"maximumLinearError"`

	// MaximumAngularError 源/目标候选之间允许的最大朝向误差（度）
	MaximumAngularError float64 `yaml:"maximumAngularError"`
}

// MaximumAngularErrorRadians 最大朝向误差（弧度）
func (c TransitionConfig) MaximumAngularErrorRadians() float64 {
	return c.MaximumAngularError * math.Pi / 180
}

// ClimbingConfig 攀爬能力配置
type ClimbingConfig struct {
	TransitionConfig `yaml:",inline"`

	// LedgeSnapDistance 上墙结束时距离边沿小于该值则直接进入边沿攀爬
	LedgeSnapDistance float64 `yaml:"ledgeSnapDistance"`

	// DropHeight 可以下墙的高度（米，从墙底算起）
	DropHeight float64 `yaml:"dropHeight"`

	// LedgeTolerance 自由攀爬时判定"接近边沿"的高度容差
	LedgeTolerance float64 `yaml:"ledgeTolerance"`

	// DropToleranceClimbing / DropToleranceFreeClimbing 判定"接近下墙高度"的容差
	DropToleranceClimbing     float64 `yaml:"dropToleranceClimbing"`
	DropToleranceFreeClimbing float64 `yaml:"dropToleranceFreeClimbing"`

	// StickThreshold 摇杆推到底的判定阈值
	StickThreshold float64 `yaml:"stickThreshold"`

	// DesiredSpeedLedge 边沿横移速度（米/秒）
	DesiredSpeedLedge float64 `yaml:"desiredSpeedLedge"`

	// DesiredSpeedClimbing 自由攀爬速度（米/秒）
	DesiredSpeedClimbing float64 `yaml:"desiredSpeedClimbing"`
}

// ParkourConfig 跑酷能力配置
type ParkourConfig struct {
	TransitionConfig `yaml:",inline"`

	// AxisThreshold 接触方向与碰撞体轴对齐的最小点积
	AxisThreshold float64 `yaml:"axisThreshold"`
}

// LocomotionConfig 移动能力配置
type LocomotionConfig struct {
	// DesiredSpeedSlow / DesiredSpeedFast 行走与奔跑速度（米/秒）
	DesiredSpeedSlow float64 `yaml:"desiredSpeedSlow"`
	DesiredSpeedFast float64 `yaml:"desiredSpeedFast"`

	// VelocityPercentage 速度趋近目标的快慢 [0, 1]
	VelocityPercentage float64 `yaml:"velocityPercentage"`

	// ForwardPercentage 朝向趋近目标的快慢 [0, 1]
	ForwardPercentage float64 `yaml:"forwardPercentage"`

	// Responsiveness 轨迹匹配相对姿态匹配的权重 [0, 1]
	Responsiveness float64 `yaml:"responsiveness"`

	// BrakingSpeed 松开摇杆后速度低于该值视为刹车
	BrakingSpeed float64 `yaml:"brakingSpeed"`

	// MinTrajectoryDeviation 默认的轨迹偏差阈值
	MinTrajectoryDeviation float64 `yaml:"minTrajectoryDeviation"`

	// BrakingTrajectoryDeviation 刹车时的轨迹偏差阈值（让停步动画播完）
	BrakingTrajectoryDeviation float64 `yaml:"brakingTrajectoryDeviation"`

	// IdleThreshold 待机姿态匹配阈值
	IdleThreshold float64 `yaml:"idleThreshold"`
}

// CameraConfig 相机跟随配置
type CameraConfig struct {
	// HorizontalDamping 水平方向阻尼时长（秒）
	HorizontalDamping float64 `yaml:"horizontalDamping"`

	// VerticalDamping 垂直方向阻尼时长（秒）
	VerticalDamping float64 `yaml:"verticalDamping"`

	// HeightOffset 跟随点相对角色的高度偏移（米）
	HeightOffset float64 `yaml:"heightOffset"`
}

// DefaultAbilitiesConfig 返回内置默认值
func DefaultAbilitiesConfig() *AbilitiesConfig {
	return &AbilitiesConfig{
		Climbing: ClimbingConfig{
			TransitionConfig: TransitionConfig{
				ContactThreshold:    0.05,
				MaximumLinearError:  0.4,
				MaximumAngularError: 45,
			},
			LedgeSnapDistance:         0.1,
			DropHeight:                2.8,
			LedgeTolerance:            0.095,
			DropToleranceClimbing:     0.05,
			DropToleranceFreeClimbing: 0.095,
			StickThreshold:            0.9,
			DesiredSpeedLedge:         0.6,
			DesiredSpeedClimbing:      0.8,
		},
		Parkour: ParkourConfig{
			TransitionConfig: TransitionConfig{
				ContactThreshold:    0.05,
				MaximumLinearError:  0.4,
				MaximumAngularError: 45,
			},
			AxisThreshold: 0.95,
		},
		Locomotion: LocomotionConfig{
			DesiredSpeedSlow:           3.9,
			DesiredSpeedFast:           5.5,
			VelocityPercentage:         1,
			ForwardPercentage:          1,
			Responsiveness:             0.45,
			BrakingSpeed:               0.4,
			MinTrajectoryDeviation:     0.03,
			BrakingTrajectoryDeviation: 0.25,
			IdleThreshold:              0.01,
		},
		Camera: CameraConfig{
			HorizontalDamping: 0.1,
			VerticalDamping:   0.5,
			HeightOffset:      1,
		},
	}
}

// LoadAbilitiesConfig 从磁盘加载能力配置
//
// 参数:
//   - path: 配置文件路径（如 "data/abilities.yaml"）
//
// 返回:
//   - *AbilitiesConfig: 加载成功后的配置
//   - error: 读取、解析或验证失败时返回错误
func LoadAbilitiesConfig(path string) (*AbilitiesConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read abilities config: %w", err)
	}
	return ParseAbilitiesConfig(data)
}

// LoadAbilitiesConfigFS 从文件系统（通常是嵌入资源）加载能力配置
func LoadAbilitiesConfigFS(fsys fs.FS, path string) (*AbilitiesConfig, error) {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read abilities config: %w", err)
	}
	return ParseAbilitiesConfig(data)
}

// ParseAbilitiesConfig 解析 YAML 内容
//
// 文件中缺省的字段保留默认值。
func ParseAbilitiesConfig(data []byte) (*AbilitiesConfig, error) {
	config := DefaultAbilitiesConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse abilities config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid abilities config: %w", err)
	}

	return config, nil
}

// Validate 验证配置有效性
//
// 返回:
//   - error: 验证失败时返回错误，成功返回 nil
func (c *AbilitiesConfig) Validate() error {
	if err := c.Climbing.TransitionConfig.validate("climbing"); err != nil {
		return err
	}
	if err := c.Parkour.TransitionConfig.validate("parkour"); err != nil {
		return err
	}

	cl := c.Climbing
	if cl.LedgeSnapDistance <= 0 {
		return fmt.Errorf("climbing.ledgeSnapDistance must be > 0, got %.3f", cl.LedgeSnapDistance)
	}
	if cl.DropHeight < 0 {
		return fmt.Errorf("climbing.dropHeight must be >= 0, got %.3f", cl.DropHeight)
	}
	if cl.LedgeTolerance < 0 || cl.DropToleranceClimbing < 0 || cl.DropToleranceFreeClimbing < 0 {
		return fmt.Errorf("climbing tolerances must be >= 0")
	}
	if cl.StickThreshold <= 0 || cl.StickThreshold > 1 {
		return fmt.Errorf("climbing.stickThreshold must be in (0, 1], got %.3f", cl.StickThreshold)
	}

	if c.Parkour.AxisThreshold <= 0 || c.Parkour.AxisThreshold > 1 {
		return fmt.Errorf("parkour.axisThreshold must be in (0, 1], got %.3f", c.Parkour.AxisThreshold)
	}

	lo := c.Locomotion
	if lo.DesiredSpeedSlow < 0 || lo.DesiredSpeedFast < lo.DesiredSpeedSlow {
		return fmt.Errorf("locomotion speeds invalid: slow(%.2f) fast(%.2f)", lo.DesiredSpeedSlow, lo.DesiredSpeedFast)
	}
	for name, v := range map[string]float64{
		"velocityPercentage": lo.VelocityPercentage,
		"forwardPercentage":  lo.ForwardPercentage,
		"responsiveness":     lo.Responsiveness,
	} {
		if v < 0 || v > 1 {
			return fmt.Errorf("locomotion.%s must be in [0, 1], got %.3f", name, v)
		}
	}
	if lo.BrakingSpeed < 0 || lo.MinTrajectoryDeviation < 0 || lo.BrakingTrajectoryDeviation < 0 || lo.IdleThreshold < 0 {
		return fmt.Errorf("locomotion thresholds must be >= 0")
	}

	if c.Camera.HorizontalDamping < 0 || c.Camera.VerticalDamping < 0 {
		return fmt.Errorf("camera damping must be >= 0")
	}

	return nil
}

func (c TransitionConfig) validate(section string) error {
	if c.ContactThreshold < 0 {
		return fmt.Errorf("%s.contactThreshold must be >= 0, got %.3f", section, c.ContactThreshold)
	}
	if c.MaximumLinearError < 0 {
		return fmt.Errorf("%s.maximumLinearError must be >= 0, got %.3f", section, c.MaximumLinearError)
	}
	if c.MaximumAngularError < 0 || c.MaximumAngularError > 180 {
		return fmt.Errorf("%s.maximumAngularError must be in [0, 180] degrees, got %.1f", section, c.MaximumAngularError)
	}
	return nil
}
