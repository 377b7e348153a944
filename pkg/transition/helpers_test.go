package transition

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/decker502/anchorclimb/internal/motion"
	"github.com/decker502/anchorclimb/pkg/utils"
)

// 测试场景：角色沿 +Z 以 1 m/s 行走；上墙片段在第 20 帧处锚定，
// 锚点位于接触点前方 0.3 m、面朝墙。

const (
	testRate        = 30.0
	anchorFrame     = 20
	anchorOffset    = 0.3
	escapeFrame     = 25
	targetStartDist = 0.5
)

func mountSegment(name string, features []float64, withAnchor bool) motion.SegmentDesc {
	seg := motion.SegmentDesc{
		Name:   name,
		Frames: 30,
		RootMotion: []motion.RootKeyDesc{
			{Frame: 0, Position: [3]float64{0, 0, 0}},
			{Frame: anchorFrame, Position: [3]float64{0, 0, anchorFrame / testRate}},
			{Frame: 29, Position: [3]float64{0, 0.5, anchorFrame / testRate}},
		},
		Features: []motion.FeatureKey{{Frame: 0, Values: features}},
		Markers:  []motion.MarkerDesc{{Type: motion.MarkerEscape, Frame: escapeFrame}},
		Tags:     []motion.TagDesc{{Trait: "Ledge+Mount"}},
	}
	if withAnchor {
		seg.Markers = append(seg.Markers, motion.MarkerDesc{
			Type:     motion.MarkerAnchor,
			Frame:    anchorFrame,
			Position: [3]float64{0, 0, anchorOffset},
			Yaw:      180,
		})
	}
	return seg
}

func testLibrary(t *testing.T, mounts ...motion.SegmentDesc) *motion.Library {
	t.Helper()

	desc := &motion.LibraryDesc{
		Name:        "transition-test",
		SampleRate:  testRate,
		TimeHorizon: 1,
		Segments: []motion.SegmentDesc{{
			Name:   "walk",
			Frames: 61,
			RootMotion: []motion.RootKeyDesc{
				{Frame: 0, Position: [3]float64{0, 0, 0}},
				{Frame: 60, Position: [3]float64{0, 0, 2}},
			},
			Features: []motion.FeatureKey{{Frame: 0, Values: []float64{0, 0}}},
			Tags:     []motion.TagDesc{{Trait: "Locomotion"}},
		}},
	}
	desc.Segments = append(desc.Segments, mounts...)

	lib, err := motion.Build(desc)
	require.NoError(t, err)
	return lib
}

// contactAhead 接触变换：位于行走方向前方，前方（外法线）朝向角色
//
// 目标候选 j 的根位置为 z = targetStartDist + shift + j/30。
func contactAhead(shift float64) utils.AffineTransform {
	z := anchorOffset + anchorFrame/testRate + targetStartDist + shift
	return utils.NewAffineTransform(utils.NewVec3(0, 0, z), utils.LookRotation(utils.Forward.Neg(), utils.Up))
}

func walkStart() motion.SamplingTime {
	return motion.NewSamplingTime(motion.NewTimeIndex(0, 0))
}

func defaultParams() SearchParams {
	return SearchParams{MaximumLinearError: 0.01, MaximumAngularError: 0.1}
}

// costDatabase 用固定的姿态代价替换特征距离：代价由目标片段决定
type costDatabase struct {
	*motion.Library
	costs map[motion.SegmentIndex]float64
}

func (d *costDatabase) ReconstructPoseFragment(t motion.SamplingTime) motion.PoseFragment {
	return motion.PoseFragment{Features: []float64{float64(t.Segment)}}
}

func (d *costDatabase) FeatureDeviation(a, b motion.PoseFragment) float64 {
	return d.costs[motion.SegmentIndex(b.Features[0])]
}

// fakeSynthesizer 只记录任务对合成器的调用
type fakeSynthesizer struct {
	time   motion.SamplingTime
	root   utils.AffineTransform
	pushed []motion.TimeIndex
	sets   int
}

func newFakeSynthesizer() *fakeSynthesizer {
	return &fakeSynthesizer{time: walkStart(), root: utils.AffineIdentity}
}

func (s *fakeSynthesizer) Time() motion.SamplingTime                 { return s.time }
func (s *fakeSynthesizer) WorldRootTransform() utils.AffineTransform { return s.root }
func (s *fakeSynthesizer) SetWorldTransform(t utils.AffineTransform) {
	s.root = t
	s.sets++
}
func (s *fakeSynthesizer) Push(t motion.TimeIndex) {
	s.pushed = append(s.pushed, t)
	s.time = motion.NewSamplingTime(t)
}
