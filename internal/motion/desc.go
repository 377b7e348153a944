package motion

// LibraryDesc is the authored (YAML) form of a clip library. Root motion and
// pose features are given as keyframes and resampled at SampleRate when the
// library is built.
type LibraryDesc struct {
	Name        string        `yaml:"name"`
	SampleRate  float64       `yaml:"sampleRate"`
	TimeHorizon float64       `yaml:"timeHorizon"`
	Metrics     []MetricDesc  `yaml:"metrics"`
	Segments    []SegmentDesc `yaml:"segments"`
}

// MetricDesc names a feature metric. Statistics are computed at build time.
type MetricDesc struct {
	Name string `yaml:"name"`
}

// SegmentDesc describes one clip.
type SegmentDesc struct {
	Name       string        `yaml:"name"`
	Frames     int           `yaml:"frames"`
	Metric     string        `yaml:"metric,omitempty"`
	RootMotion []RootKeyDesc `yaml:"rootMotion"`
	Features   []FeatureKey  `yaml:"features"`
	Markers    []MarkerDesc  `yaml:"markers,omitempty"`
	Tags       []TagDesc     `yaml:"tags,omitempty"`
}

// RootKeyDesc is a root trajectory keyframe in animation space. Yaw is in
// degrees around +Y.
type RootKeyDesc struct {
	Frame    int        `yaml:"frame"`
	Position [3]float64 `yaml:"position"`
	Yaw      float64    `yaml:"yaw"`
}

// FeatureKey is a pose feature keyframe.
type FeatureKey struct {
	Frame  int       `yaml:"frame"`
	Values []float64 `yaml:"values"`
}

// MarkerDesc describes a marker. Position and Yaw are only meaningful for
// Anchor markers and give the anchor transform in contact space.
type MarkerDesc struct {
	Type     MarkerKind `yaml:"type"`
	Frame    int        `yaml:"frame"`
	Position [3]float64 `yaml:"position,omitempty"`
	Yaw      float64    `yaml:"yaw,omitempty"`
}

// TagDesc tags a frame range. NumFrames <= 0 means "to the end of the segment".
type TagDesc struct {
	Trait      string    `yaml:"trait"`
	FirstFrame int       `yaml:"firstFrame,omitempty"`
	NumFrames  int       `yaml:"numFrames,omitempty"`
	Bounds     []BoxDesc `yaml:"bounds,omitempty"`
}

// BoxDesc is an authored box in contact space.
type BoxDesc struct {
	Position [3]float64 `yaml:"position"`
	Yaw      float64    `yaml:"yaw,omitempty"`
	Size     [3]float64 `yaml:"size"`
}
