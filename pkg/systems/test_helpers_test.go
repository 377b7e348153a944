package systems

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/components"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/ecs"
	"github.com/decker502/anchorclimb/pkg/entities"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/utils"
)

const dt = 1.0 / 60

func loadDemoLibrary(t testing.TB) *motion.Library {
	t.Helper()
	lib, err := motion.LoadLibrary("../../data/motion/library.yaml")
	require.NoError(t, err)
	return lib
}

func flatWorld() *controller.World {
	return controller.NewWorld(geometry.NewBoxCollider("floor", utils.NewVec3(0, -0.5, 0), 0, utils.NewVec3(100, 1, 100), geometry.LayerDefault))
}

// spawn 在 x 处创建一个角色
func spawn(t testing.TB, em *ecs.EntityManager, lib *motion.Library, name string, x float64, script []components.InputStep) ecs.EntityID {
	t.Helper()
	id, err := entities.NewCharacterEntity(em, lib, flatWorld(), nil, entities.CharacterSpec{
		Name:     name,
		Position: utils.NewVec3(x, 0, 0),
		Script:   script,
	})
	require.NoError(t, err)
	return id
}

func walkScript(seconds float64) []components.InputStep {
	return []components.InputStep{{Duration: seconds, State: utils.InputState{StickVertical: 1}}}
}

func characterOf(t testing.TB, em *ecs.EntityManager, id ecs.EntityID) *components.CharacterComponent {
	t.Helper()
	c, ok := ecs.GetComponent[*components.CharacterComponent](em, id)
	require.True(t, ok)
	return c
}
