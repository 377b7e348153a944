package motion

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/decker502/anchorclimb/pkg/utils"
)

// testLibraryDesc 构造测试用片段库：一段循环行走、一段攀爬上墙、一段下墙
func testLibraryDesc() *LibraryDesc {
	return &LibraryDesc{
		Name:        "test",
		SampleRate:  30,
		TimeHorizon: 1,
		Metrics:     []MetricDesc{{Name: "body"}},
		Segments: []SegmentDesc{
			{
				Name:   "walk",
				Frames: 31,
				Metric: "body",
				RootMotion: []RootKeyDesc{
					{Frame: 0, Position: [3]float64{0, 0, 0}},
					{Frame: 30, Position: [3]float64{0, 0, 1}},
				},
				Features: []FeatureKey{
					{Frame: 0, Values: []float64{0, 0}},
					{Frame: 30, Values: []float64{1, 2}},
				},
				Markers: []MarkerDesc{{Type: MarkerLoop, Frame: 0}},
				Tags:    []TagDesc{{Trait: "Locomotion+Walk"}},
			},
			{
				Name:   "mount",
				Frames: 20,
				Metric: "body",
				RootMotion: []RootKeyDesc{
					{Frame: 0, Position: [3]float64{0, 0, 0}},
					{Frame: 10, Position: [3]float64{0, 1, 0.5}},
					{Frame: 19, Position: [3]float64{0, 1.2, 0.5}},
				},
				Features: []FeatureKey{
					{Frame: 0, Values: []float64{0.5, 1}},
					{Frame: 19, Values: []float64{0.5, 1}},
				},
				Markers: []MarkerDesc{
					{Type: MarkerAnchor, Frame: 10, Position: [3]float64{0, -1, -0.3}, Yaw: 180},
					{Type: MarkerContact, Frame: 8},
					{Type: MarkerEscape, Frame: 15},
				},
				Tags: []TagDesc{
					{Trait: "Ledge+Mount"},
					{Trait: "Wall", FirstFrame: 10, NumFrames: 5},
				},
			},
			{
				Name:     "dismount",
				Frames:   12,
				Metric:   "body",
				Features: []FeatureKey{{Frame: 0, Values: []float64{0, 1}}},
				Tags:     []TagDesc{{Trait: "Ledge+Dismount"}},
			},
		},
	}
}

func buildTestLibrary(t *testing.T) *Library {
	t.Helper()
	lib, err := Build(testLibraryDesc())
	require.NoError(t, err)
	return lib
}

func TestBuildRejectsInvalidDescriptions(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *LibraryDesc)
	}{
		{"zero sample rate", func(d *LibraryDesc) { d.SampleRate = 0 }},
		{"negative horizon", func(d *LibraryDesc) { d.TimeHorizon = -1 }},
		{"empty segment", func(d *LibraryDesc) { d.Segments[0].Frames = 0 }},
		{"marker outside segment", func(d *LibraryDesc) { d.Segments[1].Markers[0].Frame = 20 }},
		{"tag outside segment", func(d *LibraryDesc) { d.Segments[1].Tags[1].NumFrames = 50 }},
		{"feature dimension mismatch", func(d *LibraryDesc) { d.Segments[0].Features[1].Values = []float64{1} }},
		{"metric dimension mismatch", func(d *LibraryDesc) { d.Segments[2].Features[0].Values = []float64{1, 2, 3} }},
		{"unknown metric", func(d *LibraryDesc) { d.Segments[0].Metric = "face" }},
		{"empty trait", func(d *LibraryDesc) { d.Segments[0].Tags[0].Trait = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			desc := testLibraryDesc()
			tt.mutate(desc)
			_, err := Build(desc)
			assert.Error(t, err)
		})
	}

	_, err := Build(nil)
	assert.Error(t, err)
}

func TestLibraryLayout(t *testing.T) {
	lib := buildTestLibrary(t)

	assert.Equal(t, 3, lib.NumSegments())
	assert.Equal(t, 4, lib.NumTags())
	assert.Equal(t, 30.0, lib.SampleRate())
	assert.Equal(t, 1.0, lib.TimeHorizon())

	mount := lib.GetSegment(1)
	assert.Equal(t, "mount", mount.Name)
	assert.Equal(t, 31, mount.FirstFrame)
	assert.Equal(t, 19, mount.LastFrame())
	assert.Equal(t, 3, mount.NumMarkers)

	// 无根运动关键帧时轨迹保持单位变换
	dismount := lib.GetSegment(2)
	assert.True(t, lib.GetTrajectoryTransform(dismount.FirstFrame+5).ApproxEqual(utils.AffineIdentity, 1e-9))
}

func TestRootMotionResampling(t *testing.T) {
	lib := buildTestLibrary(t)

	mid := lib.GetTrajectoryTransform(15)
	assert.InDelta(t, 0.5, mid.T.Z, 1e-9)

	// 超出范围的帧被钳制
	assert.True(t, lib.GetTrajectoryTransform(-5).ApproxEqual(lib.GetTrajectoryTransform(0), 1e-12))
	last := lib.GetSegment(2).FirstFrame + lib.GetSegment(2).LastFrame()
	assert.True(t, lib.GetTrajectoryTransform(1000).ApproxEqual(lib.GetTrajectoryTransform(last), 1e-12))

	delta := lib.GetTrajectoryTransformBetween(0, 30)
	assert.InDelta(t, 1.0, delta.T.Z, 1e-9)

	// 反向增量是正向增量的逆
	back := lib.GetTrajectoryTransformBetween(30, -30)
	assert.True(t, back.ApproxEqual(delta.Inverse(), 1e-9))
}

func TestTrajectoryTransformAtInterpolates(t *testing.T) {
	lib := buildTestLibrary(t)

	st := SamplingTime{TimeIndex: NewTimeIndex(0, 3), Theta: 0.5}
	got := lib.TrajectoryTransformAt(st)
	assert.InDelta(t, 3.5/30, got.T.Z, 1e-9)

	// 最后一帧不会越过片段
	end := SamplingTime{TimeIndex: NewTimeIndex(0, 30), Theta: 0.5}
	assert.InDelta(t, 1.0, lib.TrajectoryTransformAt(end).T.Z, 1e-9)
}

func TestAdvance(t *testing.T) {
	lib := buildTestLibrary(t)

	tests := []struct {
		name      string
		start     SamplingTime
		dt        float64
		wantFrame int
		wantTheta float64
	}{
		{"within frame", NewSamplingTime(NewTimeIndex(0, 0)), 0.5 / 30, 0, 0.5},
		{"whole frames", NewSamplingTime(NewTimeIndex(0, 2)), 3.0 / 30, 5, 0},
		{"loop wraps", NewSamplingTime(NewTimeIndex(0, 29)), 2.0 / 30, 1, 0},
		{"clamps without loop", NewSamplingTime(NewTimeIndex(1, 18)), 1, 19, 0},
		{"zero step", NewSamplingTime(NewTimeIndex(1, 4)), 0, 4, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := lib.Advance(tt.start, tt.dt)
			assert.Equal(t, tt.start.Segment, got.Segment)
			assert.Equal(t, tt.wantFrame, got.Frame)
			assert.InDelta(t, tt.wantTheta, got.Theta, 1e-9)
		})
	}
}

func TestMarkersAndPayload(t *testing.T) {
	lib := buildTestLibrary(t)

	anchor, ok := lib.FindMarker(1, MarkerAnchor)
	require.True(t, ok)
	marker := lib.GetMarker(anchor)
	assert.Equal(t, 10, marker.Frame)
	assert.Equal(t, MarkerAnchor, marker.Kind)

	payload, ok := GetPayload[AnchorPayload](lib, marker.Trait)
	require.True(t, ok)
	assert.InDelta(t, -0.3, payload.Transform.T.Z, 1e-12)
	assert.InDelta(t, -1.0, payload.Transform.Forward().Z, 1e-9)

	contact, ok := lib.FindMarker(1, MarkerContact)
	require.True(t, ok)
	assert.Equal(t, 8, lib.GetMarker(contact).Frame)

	_, ok = lib.FindMarker(2, MarkerAnchor)
	assert.False(t, ok)

	assert.True(t, lib.HasLoop(0))
	assert.False(t, lib.HasLoop(1))

	// 非锚点 trait 没有载荷
	escape, _ := lib.FindMarker(1, MarkerEscape)
	_, ok = GetPayload[AnchorPayload](lib, lib.GetMarker(escape).Trait)
	assert.False(t, ok)
}

func TestPoseFragmentsAndDeviation(t *testing.T) {
	lib := buildTestLibrary(t)

	a := lib.ReconstructPoseFragment(NewSamplingTime(NewTimeIndex(0, 0)))
	b := lib.ReconstructPoseFragment(NewSamplingTime(NewTimeIndex(0, 30)))
	require.Len(t, a.Features, 2)
	assert.Equal(t, []float64{1, 2}, b.Features)

	half := lib.CreatePoseFragment(0, SamplingTime{TimeIndex: NewTimeIndex(0, 15)})
	assert.InDelta(t, 0.5, half.Features[0], 1e-9)

	assert.Equal(t, 0.0, lib.FeatureDeviation(a, a))
	assert.Greater(t, lib.FeatureDeviation(a, b), 0.0)
	assert.InDelta(t, lib.FeatureDeviation(a, b), lib.FeatureDeviation(b, a), 1e-12)

	mismatch := PoseFragment{Features: []float64{1}}
	assert.True(t, math.IsInf(lib.FeatureDeviation(a, mismatch), 1))
}

func TestTraitParsing(t *testing.T) {
	tests := []struct {
		in          string
		wantType    string
		wantVariant string
	}{
		{"Ledge+PullUp", "Ledge", "PullUp"},
		{" Parkour + Wall ", "Parkour", "Wall"},
		{"Locomotion", "Locomotion", ""},
	}
	for _, tt := range tests {
		tr := ParseTrait(tt.in)
		assert.Equal(t, tt.wantType, tr.Type)
		assert.Equal(t, tt.wantVariant, tr.Variant)
	}

	assert.Equal(t, "Ledge+Mount", NewTrait("Ledge", "Mount").String())
	assert.True(t, NewTrait("Ledge", "").Matches(NewTrait("Ledge", "Mount")))
	assert.False(t, NewTrait("Ledge", "Mount").Matches(NewTrait("Ledge", "PullUp")))
	assert.False(t, NewTrait("Wall", "").Matches(NewTrait("Ledge", "")))
}

func TestTagQuery(t *testing.T) {
	lib := buildTestLibrary(t)

	mount := lib.Query(NewTrait("Ledge", "Mount")).Sequences()
	require.Len(t, mount, 1)
	assert.Equal(t, NewTimeIndex(1, 0), lib.GetInterval(mount[0]))

	ledge := lib.Query(NewTrait("Ledge", "")).Sequences()
	assert.Len(t, ledge, 2)

	// And 要求同一片段上存在重叠的标签
	withWall := lib.Query(NewTrait("Ledge", "")).And(NewTrait("Wall", "")).Sequences()
	require.Len(t, withWall, 1)
	assert.Equal(t, SegmentIndex(1), lib.GetTag(withWall[0].Tag).Segment)

	noWall := lib.Query(NewTrait("Ledge", "")).Except(NewTrait("Wall", "")).Sequences()
	require.Len(t, noWall, 1)
	assert.Equal(t, SegmentIndex(2), lib.GetTag(noWall[0].Tag).Segment)

	either := lib.Query(NewTrait("Ledge", "Dismount")).Or(NewTrait("Locomotion", "")).Sequences()
	assert.Len(t, either, 2)

	assert.Empty(t, lib.Query(NewTrait("Parkour", "")).Sequences())
}

func TestTrajectoryDeltaAcrossLoop(t *testing.T) {
	lib := buildTestLibrary(t)

	from := NewSamplingTime(NewTimeIndex(0, 29))
	to := lib.Advance(from, 2.0/30)
	require.Equal(t, 1, to.Frame)

	// 循环回绕时仍然向前移动两帧的距离
	delta := lib.TrajectoryDelta(from, to)
	assert.InDelta(t, 2.0/30, delta.T.Z, 1e-9)

	forward := lib.TrajectoryDelta(NewSamplingTime(NewTimeIndex(0, 3)), NewSamplingTime(NewTimeIndex(0, 9)))
	assert.InDelta(t, 6.0/30, forward.T.Z, 1e-9)

	// 不同片段之间没有有意义的增量
	cross := lib.TrajectoryDelta(NewSamplingTime(NewTimeIndex(0, 3)), NewSamplingTime(NewTimeIndex(1, 3)))
	assert.True(t, cross.ApproxEqual(utils.AffineIdentity, 1e-12))
}

func TestSegmentTraitsAndContains(t *testing.T) {
	lib := buildTestLibrary(t)

	assert.True(t, lib.SegmentHasTrait(0, NewTrait("Locomotion", "")))
	assert.False(t, lib.SegmentHasTrait(1, NewTrait("Locomotion", "")))
	assert.True(t, lib.SegmentHasTrait(1, NewTrait("Wall", "")))

	wall := lib.Query(NewTrait("Wall", "")).Sequences()
	require.Len(t, wall, 1)
	assert.True(t, lib.Contains(wall[0], NewTimeIndex(1, 10)))
	assert.True(t, lib.Contains(wall[0], NewTimeIndex(1, 14)))
	assert.False(t, lib.Contains(wall[0], NewTimeIndex(1, 15)))
	assert.False(t, lib.Contains(wall[0], NewTimeIndex(0, 12)))
}
