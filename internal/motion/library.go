package motion

import (
	"fmt"
	"math"
	"sort"

	"github.com/decker502/anchorclimb/pkg/utils"
)

// Library is an immutable in-memory motion database. It is safe for
// concurrent readers once built.
type Library struct {
	name        string
	sampleRate  float64
	timeHorizon float64

	segments []Segment
	markers  []Marker
	traits   []Trait
	tags     []Tag
	metrics  []Metric

	// Indexed by global frame.
	trajectory []utils.AffineTransform
	features   [][]float64
}

// Build resamples a LibraryDesc into a Library.
//
// Returns an error for structurally invalid descriptions (non-positive sample
// rate, empty segments, markers or tags outside their segment, inconsistent
// feature dimensions). A segment without an Anchor marker is NOT an error
// here: the transition search skips such segments at query time.
func Build(desc *LibraryDesc) (*Library, error) {
	if desc == nil {
		return nil, fmt.Errorf("library description is nil")
	}
	if desc.SampleRate <= 0 {
		return nil, fmt.Errorf("library %q: sampleRate must be positive, got %v", desc.Name, desc.SampleRate)
	}
	if desc.TimeHorizon <= 0 {
		return nil, fmt.Errorf("library %q: timeHorizon must be positive, got %v", desc.Name, desc.TimeHorizon)
	}

	lib := &Library{
		name:        desc.Name,
		sampleRate:  desc.SampleRate,
		timeHorizon: desc.TimeHorizon,
	}

	metricIndex := make(map[string]MetricIndex)
	for _, m := range desc.Metrics {
		if _, dup := metricIndex[m.Name]; dup {
			return nil, fmt.Errorf("library %q: duplicate metric %q", desc.Name, m.Name)
		}
		metricIndex[m.Name] = MetricIndex(len(lib.metrics))
		lib.metrics = append(lib.metrics, Metric{Name: m.Name})
	}
	if len(lib.metrics) == 0 {
		metricIndex[""] = 0
		lib.metrics = append(lib.metrics, Metric{Name: "default"})
	}

	traitIndex := make(map[string]TraitIndex)

	for i := range desc.Segments {
		sd := &desc.Segments[i]
		if err := lib.addSegment(sd, metricIndex, traitIndex); err != nil {
			return nil, fmt.Errorf("library %q: segment %q: %w", desc.Name, sd.Name, err)
		}
	}

	if err := lib.computeMetricStatistics(); err != nil {
		return nil, fmt.Errorf("library %q: %w", desc.Name, err)
	}

	return lib, nil
}

func (l *Library) addSegment(sd *SegmentDesc, metricIndex map[string]MetricIndex, traitIndex map[string]TraitIndex) error {
	if sd.Frames <= 0 {
		return fmt.Errorf("frames must be positive, got %d", sd.Frames)
	}

	metric, ok := metricIndex[sd.Metric]
	if !ok {
		if sd.Metric != "" || len(l.metrics) != 1 {
			return fmt.Errorf("unknown metric %q", sd.Metric)
		}
		metric = 0
	}

	segIndex := SegmentIndex(len(l.segments))
	firstFrame := len(l.trajectory)

	roots, err := resampleRootMotion(sd.RootMotion, sd.Frames)
	if err != nil {
		return err
	}
	features, err := resampleFeatures(sd.Features, sd.Frames)
	if err != nil {
		return err
	}
	l.trajectory = append(l.trajectory, roots...)
	l.features = append(l.features, features...)

	seg := Segment{
		Name:        sd.Name,
		FirstFrame:  firstFrame,
		NumFrames:   sd.Frames,
		MarkerIndex: MarkerIndex(len(l.markers)),
		Metric:      metric,
	}

	for _, md := range sd.Markers {
		if md.Frame < 0 || md.Frame >= sd.Frames {
			return fmt.Errorf("%s marker frame %d outside [0,%d)", md.Type, md.Frame, sd.Frames)
		}
		trait := Trait{Type: string(md.Type)}
		if md.Type == MarkerAnchor {
			trait.Payload = AnchorPayload{Transform: transformFromDesc(md.Position, md.Yaw)}
		}
		l.traits = append(l.traits, trait)
		l.markers = append(l.markers, Marker{
			Kind:    md.Type,
			Segment: segIndex,
			Frame:   md.Frame,
			Trait:   TraitIndex(len(l.traits) - 1),
		})
		seg.NumMarkers++
	}

	for _, td := range sd.Tags {
		trait := ParseTrait(td.Trait)
		if trait.Type == "" {
			return fmt.Errorf("tag with empty trait")
		}
		key := trait.String()
		ti, ok := traitIndex[key]
		if !ok {
			l.traits = append(l.traits, trait)
			ti = TraitIndex(len(l.traits) - 1)
			traitIndex[key] = ti
		}

		numFrames := td.NumFrames
		if numFrames <= 0 {
			numFrames = sd.Frames - td.FirstFrame
		}
		if td.FirstFrame < 0 || td.FirstFrame+numFrames > sd.Frames || numFrames <= 0 {
			return fmt.Errorf("tag %s range [%d,%d) outside [0,%d)", key, td.FirstFrame, td.FirstFrame+numFrames, sd.Frames)
		}

		bounds := make([]utils.OBB, 0, len(td.Bounds))
		for _, bd := range td.Bounds {
			bounds = append(bounds, utils.OBB{
				Transform: transformFromDesc(bd.Position, bd.Yaw),
				Size:      utils.NewVec3(bd.Size[0], bd.Size[1], bd.Size[2]),
			})
		}

		l.tags = append(l.tags, Tag{
			Trait:      ti,
			Segment:    segIndex,
			FirstFrame: td.FirstFrame,
			NumFrames:  numFrames,
			Bounds:     bounds,
		})
	}

	l.segments = append(l.segments, seg)
	return nil
}

func transformFromDesc(p [3]float64, yawDegrees float64) utils.AffineTransform {
	return utils.NewAffineTransform(
		utils.NewVec3(p[0], p[1], p[2]),
		utils.QuatYaw(yawDegrees*math.Pi/180))
}

// resampleRootMotion linearly interpolates root keyframes at every frame.
// Frames before the first key hold the first key, frames after the last key
// hold the last key.
func resampleRootMotion(keys []RootKeyDesc, numFrames int) ([]utils.AffineTransform, error) {
	out := make([]utils.AffineTransform, numFrames)
	if len(keys) == 0 {
		for i := range out {
			out[i] = utils.AffineIdentity
		}
		return out, nil
	}

	sorted := append([]RootKeyDesc(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	for i := range out {
		a, b, t := bracket(len(sorted), func(k int) int { return sorted[k].Frame }, i)
		ka, kb := sorted[a], sorted[b]
		pos := utils.LerpVec3(
			utils.NewVec3(ka.Position[0], ka.Position[1], ka.Position[2]),
			utils.NewVec3(kb.Position[0], kb.Position[1], kb.Position[2]), t)
		yaw := utils.Lerp(ka.Yaw, kb.Yaw, t) * math.Pi / 180
		out[i] = utils.NewAffineTransform(pos, utils.QuatYaw(yaw))
	}
	return out, nil
}

// resampleFeatures linearly interpolates feature keyframes at every frame.
func resampleFeatures(keys []FeatureKey, numFrames int) ([][]float64, error) {
	out := make([][]float64, numFrames)
	if len(keys) == 0 {
		for i := range out {
			out[i] = []float64{}
		}
		return out, nil
	}

	sorted := append([]FeatureKey(nil), keys...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Frame < sorted[j].Frame })

	dims := len(sorted[0].Values)
	for _, k := range sorted {
		if len(k.Values) != dims {
			return nil, fmt.Errorf("feature key at frame %d has %d values, want %d", k.Frame, len(k.Values), dims)
		}
	}

	for i := range out {
		a, b, t := bracket(len(sorted), func(k int) int { return sorted[k].Frame }, i)
		v := make([]float64, dims)
		for d := 0; d < dims; d++ {
			v[d] = utils.Lerp(sorted[a].Values[d], sorted[b].Values[d], t)
		}
		out[i] = v
	}
	return out, nil
}

// bracket finds the two keys around frame and the interpolation weight.
func bracket(n int, frameOf func(int) int, frame int) (int, int, float64) {
	if frame <= frameOf(0) {
		return 0, 0, 0
	}
	if frame >= frameOf(n-1) {
		return n - 1, n - 1, 0
	}
	for k := 0; k < n-1; k++ {
		f0, f1 := frameOf(k), frameOf(k+1)
		if frame >= f0 && frame <= f1 {
			if f1 == f0 {
				return k, k + 1, 1
			}
			return k, k + 1, float64(frame-f0) / float64(f1-f0)
		}
	}
	return n - 1, n - 1, 0
}

// computeMetricStatistics computes per-dimension mean and standard deviation
// of every metric over all frames of the segments using it.
func (l *Library) computeMetricStatistics() error {
	for mi := range l.metrics {
		dims := -1
		count := 0
		var sum, sumSq []float64

		for si := range l.segments {
			seg := &l.segments[si]
			if seg.Metric != MetricIndex(mi) {
				continue
			}
			for f := 0; f < seg.NumFrames; f++ {
				v := l.features[seg.FirstFrame+f]
				if dims < 0 {
					dims = len(v)
					sum = make([]float64, dims)
					sumSq = make([]float64, dims)
				}
				if len(v) != dims {
					return fmt.Errorf("metric %q: segment %q has %d features, want %d",
						l.metrics[mi].Name, seg.Name, len(v), dims)
				}
				for d, x := range v {
					sum[d] += x
					sumSq[d] += x * x
				}
				count++
			}
		}

		if dims <= 0 || count == 0 {
			continue
		}

		mean := make([]float64, dims)
		dev := make([]float64, dims)
		for d := 0; d < dims; d++ {
			mean[d] = sum[d] / float64(count)
			variance := sumSq[d]/float64(count) - mean[d]*mean[d]
			if variance < 1e-12 {
				// Constant dimension: leave unscaled.
				dev[d] = 1
			} else {
				dev[d] = math.Sqrt(variance)
			}
		}
		l.metrics[mi].Mean = mean
		l.metrics[mi].Deviation = dev
	}
	return nil
}

// Name returns the library name.
func (l *Library) Name() string { return l.name }

// SampleRate returns the number of frames per second.
func (l *Library) SampleRate() float64 { return l.sampleRate }

// TimeHorizon returns the prediction horizon in seconds.
func (l *Library) TimeHorizon() float64 { return l.timeHorizon }

// NumSegments returns the number of segments.
func (l *Library) NumSegments() int { return len(l.segments) }

// NumTags returns the number of tags.
func (l *Library) NumTags() int { return len(l.tags) }

// GetSegment returns the segment. Panics on an invalid index.
func (l *Library) GetSegment(i SegmentIndex) *Segment { return &l.segments[i] }

// GetMarker returns the marker. Panics on an invalid index.
func (l *Library) GetMarker(i MarkerIndex) *Marker { return &l.markers[i] }

// GetTrait returns the trait. Panics on an invalid index.
func (l *Library) GetTrait(i TraitIndex) *Trait { return &l.traits[i] }

// GetTag returns the tag. Panics on an invalid index.
func (l *Library) GetTag(i TagIndex) *Tag { return &l.tags[i] }

// GetMetric returns the metric. Panics on an invalid index.
func (l *Library) GetMetric(i MetricIndex) *Metric { return &l.metrics[i] }

// TraitSource resolves trait indices.
type TraitSource interface {
	GetTrait(i TraitIndex) *Trait
}

// GetPayload returns the payload of a trait if it has type T.
func GetPayload[T any](src TraitSource, i TraitIndex) (T, bool) {
	v, ok := src.GetTrait(i).Payload.(T)
	return v, ok
}

// FindMarker returns the first marker of the given kind on a segment.
func (l *Library) FindMarker(segment SegmentIndex, kind MarkerKind) (MarkerIndex, bool) {
	seg := &l.segments[segment]
	for i := 0; i < seg.NumMarkers; i++ {
		mi := seg.MarkerIndex + MarkerIndex(i)
		if l.markers[mi].Kind == kind {
			return mi, true
		}
	}
	return Invalid, false
}

// GlobalFrame converts a segment-relative time index into a global frame,
// clamped to the segment.
func (l *Library) GlobalFrame(t TimeIndex) int {
	seg := &l.segments[t.Segment]
	frame := t.Frame
	if frame < 0 {
		frame = 0
	}
	if frame > seg.LastFrame() {
		frame = seg.LastFrame()
	}
	return seg.FirstFrame + frame
}

// GetTrajectoryTransform returns the root transform of a global frame in
// animation space. Out of range frames are clamped.
func (l *Library) GetTrajectoryTransform(frame int) utils.AffineTransform {
	if frame < 0 {
		frame = 0
	}
	if frame >= len(l.trajectory) {
		frame = len(l.trajectory) - 1
	}
	return l.trajectory[frame]
}

// GetTrajectoryTransformBetween returns the root motion from global frame
// `frame` to global frame `frame+delta`, expressed in the root space of
// `frame`.
func (l *Library) GetTrajectoryTransformBetween(frame, delta int) utils.AffineTransform {
	from := l.GetTrajectoryTransform(frame)
	to := l.GetTrajectoryTransform(frame + delta)
	return from.InverseTimes(to)
}

// TrajectoryTransformAt returns the root transform at a sampling time,
// interpolating between frames.
func (l *Library) TrajectoryTransformAt(t SamplingTime) utils.AffineTransform {
	seg := &l.segments[t.Segment]
	a := l.GlobalFrame(t.TimeIndex)
	if t.Theta <= 0 || t.Frame >= seg.LastFrame() {
		return l.trajectory[a]
	}
	return utils.BlendAffine(l.trajectory[a], l.trajectory[a+1], t.Theta)
}

// TrajectoryDelta returns the root motion between two sampling times of the
// same segment, in the root space of `from`. When `to` lies before `from` in a
// looping segment playback is assumed to have wrapped through the last frame,
// which coincides with the first one.
func (l *Library) TrajectoryDelta(from, to SamplingTime) utils.AffineTransform {
	a := l.TrajectoryTransformAt(from)
	b := l.TrajectoryTransformAt(to)
	if from.Segment != to.Segment {
		return utils.AffineIdentity
	}

	if float64(to.Frame)+to.Theta < float64(from.Frame)+from.Theta && l.HasLoop(from.Segment) {
		seg := &l.segments[from.Segment]
		last := l.trajectory[seg.FirstFrame+seg.LastFrame()]
		first := l.trajectory[seg.FirstFrame]
		return a.InverseTimes(last).Mul(first.InverseTimes(b))
	}
	return a.InverseTimes(b)
}

// HasLoop reports whether the segment carries a Loop marker.
func (l *Library) HasLoop(segment SegmentIndex) bool {
	_, ok := l.FindMarker(segment, MarkerLoop)
	return ok
}

// Advance moves a sampling time forward by deltaTime seconds. Playback stops
// at the last frame unless the segment carries a Loop marker, in which case
// it wraps to the first frame.
func (l *Library) Advance(t SamplingTime, deltaTime float64) SamplingTime {
	seg := &l.segments[t.Segment]
	pos := float64(t.Frame) + t.Theta + deltaTime*l.sampleRate
	last := float64(seg.LastFrame())

	if pos >= last {
		if l.HasLoop(t.Segment) && seg.NumFrames > 1 {
			pos = math.Mod(pos, last)
		} else {
			return SamplingTime{TimeIndex: NewTimeIndex(t.Segment, seg.LastFrame())}
		}
	}
	if pos < 0 {
		pos = 0
	}

	frame := math.Floor(pos)
	theta := pos - frame
	// Snap floating point noise so fixed-step advancing lands on frames.
	if theta > 1-1e-9 {
		frame++
		theta = 0
	} else if theta < 1e-9 {
		theta = 0
	}
	return SamplingTime{TimeIndex: NewTimeIndex(t.Segment, int(frame)), Theta: theta}
}

// ReconstructPoseFragment returns the pose features at a sampling time using
// the segment's own metric.
func (l *Library) ReconstructPoseFragment(t SamplingTime) PoseFragment {
	return l.CreatePoseFragment(l.segments[t.Segment].Metric, t)
}

// CreatePoseFragment returns the pose features at a sampling time,
// interpolating between frames.
func (l *Library) CreatePoseFragment(metric MetricIndex, t SamplingTime) PoseFragment {
	seg := &l.segments[t.Segment]
	a := l.GlobalFrame(t.TimeIndex)
	fa := l.features[a]

	out := make([]float64, len(fa))
	copy(out, fa)
	if t.Theta > 0 && t.Frame < seg.LastFrame() {
		fb := l.features[a+1]
		for d := range out {
			out[d] = utils.Lerp(fa[d], fb[d], t.Theta)
		}
	}
	return PoseFragment{Metric: metric, Features: out}
}

// FeatureDeviation returns the whitened, dimension-normalised Euclidean
// distance between two pose fragments: sqrt(mean(((a-b)/σ)²)). Fragments
// with mismatching dimensions are infinitely far apart.
func (l *Library) FeatureDeviation(a, b PoseFragment) float64 {
	if len(a.Features) != len(b.Features) {
		return math.Inf(1)
	}
	if len(a.Features) == 0 {
		return 0
	}

	var dev []float64
	if int(a.Metric) >= 0 && int(a.Metric) < len(l.metrics) {
		dev = l.metrics[a.Metric].Deviation
	}

	sum := 0.0
	for d := range a.Features {
		diff := a.Features[d] - b.Features[d]
		if d < len(dev) {
			diff /= dev[d]
		}
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(len(a.Features)))
}
