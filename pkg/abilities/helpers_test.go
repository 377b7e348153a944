package abilities

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/config"
	"github.com/decker502/anchorclimb/pkg/controller"
	"github.com/decker502/anchorclimb/pkg/geometry"
	"github.com/decker502/anchorclimb/pkg/synthesis"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// 测试场景：角色站在原点，面朝 +Z；行走片段以 1 m/s 前进。
// 上墙片段在第 20 帧锚定，锚点位于接触点前方 0.3 m、面朝墙。

const (
	testRate    = 30.0
	dt          = 1.0 / testRate
	anchorFrame = 20
	escapeFrame = 25

	// wallFace 墙面所在的 z 坐标，与搜索在原点起步时的零误差接触点一致
	wallFace = 0.3 + anchorFrame/testRate + 0.5

	// 下墙与翻上片段：前 10 帧原地不动，第 10 帧锚定，第 15 帧可以退出
	exitAnchorFrame = 10
	exitEscapeFrame = 15

	// ledgeHang 挂在边沿时根节点低于唇边的距离
	ledgeHang = 1.0
)

const (
	segIdle motion.SegmentIndex = iota
	segWalk
	segMount
	segClimbIdle
	segClimbUp
	segVault
	segDismount
	segPullUp
)

func testLibrary(t *testing.T) *motion.Library {
	t.Helper()

	lib, err := motion.Build(&motion.LibraryDesc{
		Name:        "abilities-test",
		SampleRate:  testRate,
		TimeHorizon: 1,
		Segments: []motion.SegmentDesc{
			{
				Name:     "idle",
				Frames:   31,
				Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
				Markers:  []motion.MarkerDesc{{Type: motion.MarkerLoop, Frame: 0}},
				Tags:     []motion.TagDesc{{Trait: "Locomotion"}, {Trait: "Idle"}},
			},
			{
				Name:   "walk",
				Frames: 61,
				RootMotion: []motion.RootKeyDesc{
					{Frame: 0, Position: [3]float64{0, 0, 0}},
					{Frame: 60, Position: [3]float64{0, 0, 2}},
				},
				Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
				Tags:     []motion.TagDesc{{Trait: "Locomotion"}},
			},
			{
				Name:   "mount",
				Frames: 30,
				RootMotion: []motion.RootKeyDesc{
					{Frame: 0, Position: [3]float64{0, 0, 0}},
					{Frame: anchorFrame, Position: [3]float64{0, 0, anchorFrame / testRate}},
					{Frame: 29, Position: [3]float64{0, 0.5, anchorFrame / testRate}},
				},
				Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
				Markers: []motion.MarkerDesc{
					{Type: motion.MarkerAnchor, Frame: anchorFrame, Position: [3]float64{0, 0, 0.3}, Yaw: 180},
					{Type: motion.MarkerEscape, Frame: escapeFrame},
				},
				Tags: []motion.TagDesc{{Trait: "Ledge+Mount"}},
			},
			{
				Name:     "climb-idle",
				Frames:   10,
				Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
				Markers:  []motion.MarkerDesc{{Type: motion.MarkerLoop, Frame: 0}},
				Tags:     []motion.TagDesc{{Trait: "Climb+Idle"}},
			},
			{
				Name:     "climb-up",
				Frames:   10,
				Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
				Markers:  []motion.MarkerDesc{{Type: motion.MarkerLoop, Frame: 0}},
				Tags:     []motion.TagDesc{{Trait: "Climb+Up"}},
			},
			{
				Name:     "vault",
				Frames:   20,
				Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
				Tags: []motion.TagDesc{{
					Trait:  "Parkour+Wall",
					Bounds: []motion.BoxDesc{{Position: [3]float64{0, 1, 1}, Size: [3]float64{1, 1, 1}}},
				}},
			},
			{
				// 锚点就是当前根节点：从原地后退并落下
				Name:   "dismount",
				Frames: 20,
				RootMotion: []motion.RootKeyDesc{
					{Frame: 0, Position: [3]float64{0, 0, 0}},
					{Frame: exitAnchorFrame, Position: [3]float64{0, 0, 0}},
					{Frame: 19, Position: [3]float64{0, -1, -0.5}},
				},
				Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
				Markers: []motion.MarkerDesc{
					{Type: motion.MarkerAnchor, Frame: exitAnchorFrame},
					{Type: motion.MarkerEscape, Frame: exitEscapeFrame},
				},
				Tags: []motion.TagDesc{{Trait: "Ledge+Dismount"}},
			},
			{
				// 锚点在唇边：根节点位于唇边下方 ledgeHang、墙前 0.3 m
				Name:   "pull-up",
				Frames: 20,
				RootMotion: []motion.RootKeyDesc{
					{Frame: 0, Position: [3]float64{0, 0, 0}},
					{Frame: exitAnchorFrame, Position: [3]float64{0, 0, 0}},
					{Frame: 19, Position: [3]float64{0, ledgeHang, 0.6}},
				},
				Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
				Markers: []motion.MarkerDesc{
					{Type: motion.MarkerAnchor, Frame: exitAnchorFrame, Position: [3]float64{0, -ledgeHang, 0.3}, Yaw: 180},
					{Type: motion.MarkerEscape, Frame: exitEscapeFrame},
				},
				Tags: []motion.TagDesc{{
					Trait:  "Ledge+PullUp",
					Bounds: []motion.BoxDesc{{Position: [3]float64{0, 1, -0.5}, Size: [3]float64{0.6, 1.6, 0.6}}},
				}},
			},
		},
	})
	require.NoError(t, err)
	return lib
}

func floor() geometry.BoxCollider {
	return geometry.NewBoxCollider("floor", utils.NewVec3(0, -0.5, 0), 0, utils.NewVec3(40, 1, 40), geometry.LayerDefault)
}

// wallAhead 高 3 m 的墙，朝向角色的面位于 z = wallFace
func wallAhead(layer geometry.Layer) geometry.BoxCollider {
	return geometry.NewBoxCollider("wall", utils.NewVec3(0, 1.5, wallFace+0.5), 0, utils.NewVec3(4, 3, 1), layer)
}

type fixture struct {
	lib       *motion.Library
	world     *controller.World
	ctrl      *controller.Kinematic
	synth     *synthesis.Playback
	character *Character
	config    *config.AbilitiesConfig
}

// newFixture 角色在 start 处开始播放行走片段
func newFixture(t *testing.T, start utils.Vec3, colliders ...geometry.BoxCollider) *fixture {
	t.Helper()

	lib := testLibrary(t)
	world := controller.NewWorld(append([]geometry.BoxCollider{floor()}, colliders...)...)
	ctrl := controller.NewKinematic(world, controller.DefaultSettings(), start)
	synth := synthesis.NewPlayback(lib, motion.NewTimeIndex(segWalk, 0), utils.NewAffineTransform(start, utils.QuatIdentity))

	return &fixture{
		lib:   lib,
		world: world,
		ctrl:  ctrl,
		synth: synth,
		character: &Character{
			Library:     lib,
			Synthesizer: synth,
			Controller:  ctrl,
		},
		config: config.DefaultAbilitiesConfig(),
	}
}

// bump 让控制器向前撞上障碍，之后 Current() 带有碰撞信息
func (f *fixture) bump(t *testing.T, z float64) {
	t.Helper()
	p := f.ctrl.Position()
	f.ctrl.MoveTo(utils.NewVec3(p.X, p.Y, z))
	f.ctrl.Tick(dt)
	require.True(t, f.ctrl.Current().IsColliding)
}

// lipContact 墙顶唇边上的接触变换，前方为外法线
func lipContact() utils.AffineTransform {
	return utils.NewAffineTransform(utils.NewVec3(0, 3, wallFace), utils.LookRotation(utils.Forward.Neg(), utils.Up))
}

// contactAt 墙面上的接触变换，前方为外法线（朝向角色）
func contactAt(z float64) utils.AffineTransform {
	return utils.NewAffineTransform(utils.NewVec3(0, 0, z), utils.LookRotation(utils.Forward.Neg(), utils.Up))
}
