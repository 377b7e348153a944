package ecs

import (
	"reflect"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 测试组件类型定义
type testTransformComponent struct {
	X, Y, Z float64
}

type testInputComponent struct {
	Stick float64
}

type testRunnerComponent struct {
	Name string
}

func TestCreateEntity(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()

	// ID 从 1 开始且唯一
	assert.Equal(t, EntityID(1), id1)
	assert.Equal(t, EntityID(2), id2)
	assert.Equal(t, 2, em.Count())
	assert.True(t, em.Exists(id1))
	assert.False(t, em.Exists(EntityID(99)))
}

func TestAddAndGetComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	pos := &testTransformComponent{X: 1, Y: 2, Z: 3}
	em.AddComponent(id, pos)

	comp, found := em.GetComponent(id, reflect.TypeOf(&testTransformComponent{}))
	require.True(t, found)
	assert.Same(t, pos, comp)

	// 泛型版本返回同一个指针
	typed, ok := GetComponent[*testTransformComponent](em, id)
	require.True(t, ok)
	assert.Same(t, pos, typed)

	// 未添加的类型
	_, ok = GetComponent[*testInputComponent](em, id)
	assert.False(t, ok)
}

func TestAddComponentReplacesSameType(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()

	AddComponent(em, id, &testInputComponent{Stick: 0.5})
	AddComponent(em, id, &testInputComponent{Stick: 1})

	input, ok := GetComponent[*testInputComponent](em, id)
	require.True(t, ok)
	assert.Equal(t, 1.0, input.Stick)
}

func TestAddComponentToMissingEntity(t *testing.T) {
	em := NewEntityManager()

	// 不存在的实体：静默忽略
	AddComponent(em, EntityID(7), &testInputComponent{})
	assert.False(t, HasComponent[*testInputComponent](em, EntityID(7)))
	assert.Equal(t, 0, em.Count())
}

func TestRemoveComponent(t *testing.T) {
	em := NewEntityManager()
	id := em.CreateEntity()
	AddComponent(em, id, &testTransformComponent{})
	AddComponent(em, id, &testInputComponent{})

	RemoveComponent[*testTransformComponent](em, id)
	assert.False(t, HasComponent[*testTransformComponent](em, id))
	assert.True(t, HasComponent[*testInputComponent](em, id))

	em.RemoveComponent(id, reflect.TypeOf(&testInputComponent{}))
	assert.False(t, em.HasComponent(id, reflect.TypeOf(&testInputComponent{})))
}

func TestDestroyEntityIsDeferred(t *testing.T) {
	em := NewEntityManager()
	id1 := em.CreateEntity()
	id2 := em.CreateEntity()
	AddComponent(em, id1, &testTransformComponent{})

	em.DestroyEntity(id1)
	em.DestroyEntity(EntityID(42))

	// 清理前仍然存在
	assert.True(t, em.Exists(id1))
	assert.Equal(t, []EntityID{id1}, GetEntitiesWith1[*testTransformComponent](em))

	assert.Equal(t, 1, em.RemoveMarkedEntities())
	assert.False(t, em.Exists(id1))
	assert.True(t, em.Exists(id2))
	assert.Empty(t, GetEntitiesWith1[*testTransformComponent](em))

	// 待删除列表已清空
	assert.Equal(t, 0, em.RemoveMarkedEntities())
}

func TestGetEntitiesWith(t *testing.T) {
	em := NewEntityManager()

	// 实体 1、3、5 完整，2、4 只有变换
	for i := 1; i <= 5; i++ {
		id := em.CreateEntity()
		AddComponent(em, id, &testTransformComponent{X: float64(i)})
		if i%2 == 1 {
			AddComponent(em, id, &testInputComponent{})
			AddComponent(em, id, &testRunnerComponent{Name: "runner"})
		}
	}

	tests := []struct {
		name string
		got  []EntityID
		want []EntityID
	}{
		{"单个组件", GetEntitiesWith1[*testTransformComponent](em), []EntityID{1, 2, 3, 4, 5}},
		{"两个组件", GetEntitiesWith2[*testTransformComponent, *testInputComponent](em), []EntityID{1, 3, 5}},
		{"三个组件", GetEntitiesWith3[*testTransformComponent, *testInputComponent, *testRunnerComponent](em), []EntityID{1, 3, 5}},
		{"反射查询", em.GetEntitiesWith(reflect.TypeOf(&testRunnerComponent{})), []EntityID{1, 3, 5}},
		{"没有条件时返回全部", em.GetEntitiesWith(), []EntityID{1, 2, 3, 4, 5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// 结果按 ID 升序
			assert.Equal(t, tt.want, tt.got)
		})
	}
}

func TestGetEntitiesWithNoMatch(t *testing.T) {
	em := NewEntityManager()
	em.CreateEntity()

	got := GetEntitiesWith1[*testRunnerComponent](em)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
