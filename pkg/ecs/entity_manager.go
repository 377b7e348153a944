// Package ecs 提供角色模拟使用的实体-组件存储
//
// 组件按具体类型（通常是指针类型）存放；查询结果按实体 ID 升序返回，
// 并行系统据此得到稳定的处理顺序。
package ecs

import (
	"reflect"
	"slices"
	"sync"
)

// EntityID 是实体的唯一标识符，0 保留为无效 ID
type EntityID uint64

// EntityManager 管理所有实体和组件
//
// 结构性修改（创建、删除实体，增删组件）只能在单个 goroutine 中进行；
// 组件数据本身由各系统负责同步。
type EntityManager struct {
	mu     sync.RWMutex
	nextID uint64
	// 实体-组件映射: EntityID -> ComponentType -> Component实例
	components map[EntityID]map[reflect.Type]any
	// 待删除的实体ID列表
	entitiesToDestroy []EntityID
}

// NewEntityManager 创建一个新的 EntityManager 实例
func NewEntityManager() *EntityManager {
	return &EntityManager{
		nextID:     1,
		components: make(map[EntityID]map[reflect.Type]any),
	}
}

// CreateEntity 创建新实体并返回唯一ID
func (em *EntityManager) CreateEntity() EntityID {
	em.mu.Lock()
	defer em.mu.Unlock()

	id := EntityID(em.nextID)
	em.nextID++
	em.components[id] = make(map[reflect.Type]any)
	return id
}

// DestroyEntity 标记实体待删除（在 RemoveMarkedEntities 时真正删除）
func (em *EntityManager) DestroyEntity(id EntityID) {
	em.mu.Lock()
	defer em.mu.Unlock()
	em.entitiesToDestroy = append(em.entitiesToDestroy, id)
}

// Exists 实体是否存在（标记删除但尚未清理的实体仍然存在）
func (em *EntityManager) Exists(id EntityID) bool {
	em.mu.RLock()
	defer em.mu.RUnlock()
	_, ok := em.components[id]
	return ok
}

// Count 当前实体数量
func (em *EntityManager) Count() int {
	em.mu.RLock()
	defer em.mu.RUnlock()
	return len(em.components)
}

// AddComponent 为实体添加组件，组件类型取其动态类型；同类型组件会被替换
func (em *EntityManager) AddComponent(id EntityID, component any) {
	em.addComponent(id, reflect.TypeOf(component), component)
}

func (em *EntityManager) addComponent(id EntityID, componentType reflect.Type, component any) {
	em.mu.Lock()
	defer em.mu.Unlock()
	if compMap, exists := em.components[id]; exists {
		compMap[componentType] = component
	}
}

// RemoveComponent 从实体移除指定类型的组件
func (em *EntityManager) RemoveComponent(id EntityID, componentType reflect.Type) {
	em.mu.Lock()
	defer em.mu.Unlock()
	if compMap, exists := em.components[id]; exists {
		delete(compMap, componentType)
	}
}

// GetComponent 获取实体的特定类型组件
func (em *EntityManager) GetComponent(id EntityID, componentType reflect.Type) (any, bool) {
	em.mu.RLock()
	defer em.mu.RUnlock()
	if compMap, exists := em.components[id]; exists {
		comp, found := compMap[componentType]
		return comp, found
	}
	return nil, false
}

// HasComponent 检查实体是否拥有特定类型组件
func (em *EntityManager) HasComponent(id EntityID, componentType reflect.Type) bool {
	_, found := em.GetComponent(id, componentType)
	return found
}

// RemoveMarkedEntities 清理所有标记删除的实体
//
// 返回:
//   - int: 实际删除的实体数量
func (em *EntityManager) RemoveMarkedEntities() int {
	em.mu.Lock()
	defer em.mu.Unlock()

	removed := 0
	for _, id := range em.entitiesToDestroy {
		if _, ok := em.components[id]; ok {
			delete(em.components, id)
			removed++
		}
	}
	em.entitiesToDestroy = em.entitiesToDestroy[:0]
	return removed
}

// GetEntitiesWith 查询拥有指定组件类型组合的所有实体
//
// 参数:
//   - componentTypes: 需要的组件类型列表
//
// 返回:
//   - []EntityID: 满足条件的实体ID列表（升序）
func (em *EntityManager) GetEntitiesWith(componentTypes ...reflect.Type) []EntityID {
	em.mu.RLock()
	result := make([]EntityID, 0)
	for id, compMap := range em.components {
		hasAll := true
		for _, ct := range componentTypes {
			if _, found := compMap[ct]; !found {
				hasAll = false
				break
			}
		}
		if hasAll {
			result = append(result, id)
		}
	}
	em.mu.RUnlock()

	slices.Sort(result)
	return result
}
