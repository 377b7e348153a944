// Package motion provides the data model of a motion database (clip library):
// segments of sampled root trajectory and pose features, authored markers,
// traits and tags, plus a YAML parser and an in-memory Library that answers the
// lookups the anchored transition search needs.
package motion

import (
	"strings"

	"github.com/decker502/anchorclimb/pkg/utils"
)

// SegmentIndex identifies a segment (one authored clip range) in a Library.
type SegmentIndex int

// MarkerIndex identifies a marker in a Library.
type MarkerIndex int

// TraitIndex identifies a trait (a tag value or a marker payload).
type TraitIndex int

// TagIndex identifies a tag, i.e. a tagged frame range of a segment.
type TagIndex int

// MetricIndex identifies the feature metric a segment's poses are encoded with.
type MetricIndex int

// Invalid is the sentinel value shared by all index types.
const Invalid = -1

// IsValid reports whether the index refers to a segment.
func (i SegmentIndex) IsValid() bool { return i >= 0 }

// IsValid reports whether the index refers to a marker.
func (i MarkerIndex) IsValid() bool { return i >= 0 }

// TimeIndex references a frame of a segment. Frame is relative to the
// segment's first frame.
type TimeIndex struct {
	Segment SegmentIndex
	Frame   int
}

// InvalidTimeIndex is a TimeIndex that refers to nothing.
var InvalidTimeIndex = TimeIndex{Segment: Invalid}

// NewTimeIndex creates a TimeIndex.
func NewTimeIndex(segment SegmentIndex, frame int) TimeIndex {
	return TimeIndex{Segment: segment, Frame: frame}
}

// IsValid reports whether the time index refers to a segment.
func (t TimeIndex) IsValid() bool {
	return t.Segment.IsValid()
}

// SamplingTime is a TimeIndex plus the fractional position (Theta in [0,1))
// between Frame and Frame+1.
type SamplingTime struct {
	TimeIndex
	Theta float64
}

// NewSamplingTime creates a SamplingTime positioned exactly on a frame.
func NewSamplingTime(t TimeIndex) SamplingTime {
	return SamplingTime{TimeIndex: t}
}

// MarkerKind names the authored metadata types the transition code understands.
type MarkerKind string

const (
	// MarkerAnchor declares the frame and local transform at which a segment's
	// motion must coincide with an external contact point.
	MarkerAnchor MarkerKind = "Anchor"
	// MarkerContact marks the exact frame of geometric contact.
	MarkerContact MarkerKind = "Contact"
	// MarkerEscape marks the earliest frame at which control may return to the
	// ability that requested the transition.
	MarkerEscape MarkerKind = "Escape"
	// MarkerLoop makes playback wrap to the first frame of the segment.
	MarkerLoop MarkerKind = "Loop"
)

// Marker is authored metadata attached to a single frame of a segment.
type Marker struct {
	Kind    MarkerKind
	Segment SegmentIndex
	Frame   int
	Trait   TraitIndex
}

// Trait is a typed tag value, e.g. Ledge+PullUp. Marker traits carry a payload.
type Trait struct {
	Type    string
	Variant string
	Payload any
}

// NewTrait creates a payload-free trait.
func NewTrait(typ, variant string) Trait {
	return Trait{Type: typ, Variant: variant}
}

// ParseTrait parses the "Type+Variant" notation used in clip libraries.
func ParseTrait(s string) Trait {
	typ, variant, _ := strings.Cut(strings.TrimSpace(s), "+")
	return Trait{Type: strings.TrimSpace(typ), Variant: strings.TrimSpace(variant)}
}

// String formats the trait as "Type+Variant" (or just "Type").
func (t Trait) String() string {
	if t.Variant == "" {
		return t.Type
	}
	return t.Type + "+" + t.Variant
}

// Matches compares type and variant, ignoring payloads. An empty variant on
// the receiver matches every variant of the type.
func (t Trait) Matches(o Trait) bool {
	if t.Type != o.Type {
		return false
	}
	return t.Variant == "" || t.Variant == o.Variant
}

// AnchorPayload is the payload of an Anchor marker: the root transform at the
// anchor frame expressed in contact space.
type AnchorPayload struct {
	Transform utils.AffineTransform
}

// Segment is a contiguous range of frames in the library's global frame
// arrays.
type Segment struct {
	Name        string
	FirstFrame  int
	NumFrames   int
	MarkerIndex MarkerIndex
	NumMarkers  int
	Metric      MetricIndex
}

// LastFrame returns the last valid segment-relative frame.
func (s *Segment) LastFrame() int {
	return s.NumFrames - 1
}

// Tag associates a trait with a frame range of a segment. Bounds are authored
// clearance boxes in contact space: the space that must be free of geometry
// for the tagged motion to be playable at a contact.
type Tag struct {
	Trait      TraitIndex
	Segment    SegmentIndex
	FirstFrame int
	NumFrames  int
	Bounds     []utils.OBB
}

// PoseSequence references a tagged range that can be handed to a transition.
type PoseSequence struct {
	Tag TagIndex
}

// PoseFragment is the feature vector of one reconstructed pose.
type PoseFragment struct {
	Metric   MetricIndex
	Features []float64
}

// Metric holds per-dimension statistics used to whiten pose features.
type Metric struct {
	Name      string
	Mean      []float64
	Deviation []float64
}
