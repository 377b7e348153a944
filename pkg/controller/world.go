package controller

import (
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// capsuleSamples 胶囊轴线上的采样数
const capsuleSamples = 9

// World 静态盒子场景
type World struct {
	Colliders []geometry.BoxCollider
}

// NewWorld 创建场景
func NewWorld(colliders ...geometry.BoxCollider) *World {
	return &World{Colliders: colliders}
}

// Add 添加碰撞体并返回其下标
func (w *World) Add(c geometry.BoxCollider) int {
	w.Colliders = append(w.Colliders, c)
	return len(w.Colliders) - 1
}

// OverlapSphere 球体是否与任一盒子相交（接触不算相交）
func (w *World) OverlapSphere(center utils.Vec3, radius float64) bool {
	for i := range w.Colliders {
		c := &w.Colliders[i]
		if c.ClosestPoint(center).Distance(center) < radius {
			return true
		}
	}
	return false
}

// OverlapCapsule 沿轴线采样球体判断胶囊是否与场景相交
func (w *World) OverlapCapsule(p0, p1 utils.Vec3, radius float64) bool {
	for i := 0; i < capsuleSamples; i++ {
		t := float64(i) / float64(capsuleSamples-1)
		if w.OverlapSphere(utils.LerpVec3(p0, p1, t), radius) {
			return true
		}
	}
	return false
}

// OverlapBox 有向包围盒是否与任一盒子相交
func (w *World) OverlapBox(box utils.OBB) bool {
	for i := range w.Colliders {
		if w.Colliders[i].OBB().Overlaps(box) {
			return true
		}
	}
	return false
}

// groundBelow 返回脚下顶面不高于 maxTop 的最高盒子
func (w *World) groundBelow(position utils.Vec3, maxTop float64) (*geometry.BoxCollider, float64, bool) {
	var best *geometry.BoxCollider
	bestTop := 0.0

	for i := range w.Colliders {
		c := &w.Colliders[i]
		top := c.TopHeight()
		if top > maxTop {
			continue
		}
		foot := utils.NewVec3(position.X, top, position.Z)
		if c.ClosestPoint(foot).Horizontal().Distance(foot.Horizontal()) > 1e-9 {
			continue
		}
		if best == nil || top > bestTop {
			best, bestTop = c, top
		}
	}
	return best, bestTop, best != nil
}
