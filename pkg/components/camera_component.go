package components

import "github.com/decker502/anchorclimb/pkg/utils"

// CameraComponent 跟随角色的镜头
// 由 AbilitySystem 每帧写入平滑后的跟随点，渲染端只读。
type CameraComponent struct {
	// Follow 平滑后的跟随点（世界坐标）
	Follow utils.Vec3

	// Distance 镜头到跟随点的距离（米）
	Distance float64

	// Yaw 镜头绕 Y 轴的角度（弧度），0 表示从 -Z 看向 +Z
	Yaw float64
}

// Eye 镜头位置
func (c *CameraComponent) Eye() utils.Vec3 {
	back := utils.QuatYaw(c.Yaw).Rotate(utils.Forward).Scale(-c.Distance)
	return c.Follow.Add(back)
}
