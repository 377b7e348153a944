package utils

// InputState 存储当前帧的输入状态
// 摇杆约定：向前（远离镜头 / 朝墙顶）为正
type InputState struct {
	// 左摇杆
	StickHorizontal float64
	StickVertical   float64

	// A 键：跳跃 / 攀上 / 奔跑
	AButton bool
	// B 键：上墙 / 下墙
	BButton bool
}

// Stick 返回摇杆向量
func (s InputState) Stick() Vec2 {
	return Vec2{s.StickHorizontal, s.StickVertical}
}
