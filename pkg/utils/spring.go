package utils

import "math"

// SmoothValue 临界阻尼弹簧平滑的标量
//
// 用于相机跟随点等需要无过冲追踪目标的场景。
type SmoothValue struct {
	Current  float64
	Velocity float64
}

// CriticallyDampedSpring 以临界阻尼方式把 Current 推向 target
//
// 参数:
//   - target: 目标值
//   - deltaTime: 帧间隔（秒）
//   - duration: 大致到达目标所需时间（秒），<= 0 时直接跳到目标
func (s *SmoothValue) CriticallyDampedSpring(target, deltaTime, duration float64) {
	if duration <= 0 {
		s.Current = target
		s.Velocity = 0
		return
	}

	omega := 2 / duration
	x := omega * deltaTime
	decay := 1 / (1 + x + 0.48*x*x + 0.235*x*x*x)

	change := s.Current - target
	temp := (s.Velocity + omega*change) * deltaTime
	s.Velocity = (s.Velocity - omega*temp) * decay
	s.Current = target + (change+temp)*decay

	if math.IsNaN(s.Current) {
		s.Current = target
		s.Velocity = 0
	}
}

// SmoothValue2 二维临界阻尼弹簧（水平面上的相机跟随）
type SmoothValue2 struct {
	X, Y SmoothValue
}

// CriticallyDampedSpring 分量独立平滑
func (s *SmoothValue2) CriticallyDampedSpring(target Vec2, deltaTime, duration float64) {
	s.X.CriticallyDampedSpring(target.X, deltaTime, duration)
	s.Y.CriticallyDampedSpring(target.Y, deltaTime, duration)
}

// Value 当前值
func (s *SmoothValue2) Value() Vec2 {
	return Vec2{s.X.Current, s.Y.Current}
}
