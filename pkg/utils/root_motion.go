package utils

// RootMotionMaxDelta 是瞬移检测阈值（米）
//
// 同一片段内相邻采样帧的根运动位移远小于此值；
// 超过此值说明采样时间跨越了片段边界或循环重置，此时轨迹增量无意义。
const RootMotionMaxDelta = 2.0

// GuardRootMotion 检查一帧的根运动增量
//
// 参数:
//   - delta: 在上一帧根空间中表示的增量 prev⁻¹·curr
//
// 返回:
//   - AffineTransform: 原增量；超过 RootMotionMaxDelta 时为单位变换
//   - bool: 增量是否有效
func GuardRootMotion(delta AffineTransform) (AffineTransform, bool) {
	if delta.T.Length() > RootMotionMaxDelta {
		return AffineIdentity, false
	}
	return delta, true
}

// AccumulateRootMotion 把一帧的根运动增量累加到世界根变换上
//
// 注意:
//   - 检测到瞬移时世界变换保持不变，避免角色被拉回片段起点
func AccumulateRootMotion(world, delta AffineTransform) AffineTransform {
	delta, ok := GuardRootMotion(delta)
	if !ok {
		return world
	}
	return world.Mul(delta)
}
