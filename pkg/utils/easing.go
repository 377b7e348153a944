package utils

import "math"

// 标量工具函数
//
// 混合权重、锚点坐标等都约定在 [0, 1] 区间内，
// 这里集中提供插值与截断，避免各处重复实现。

// Lerp 线性插值
// 在 a 和 b 之间根据 t 插值
// t=0 返回 a，t=1 返回 b
func Lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

// Clamp 把 v 限制在 [lo, hi] 区间
func Clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Saturate 把 v 限制在 [0, 1] 区间；NaN 视为 0
func Saturate(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return Clamp(v, 0, 1)
}

// TruncToInt 向零取整
func TruncToInt(v float64) int {
	return int(math.Trunc(v))
}
