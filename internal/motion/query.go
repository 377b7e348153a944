package motion

// TagQuery selects tagged pose sequences by trait. Build one with
// Library.Query.
type TagQuery struct {
	lib     *Library
	include [][]Trait
	exclude []Trait
}

// Query starts a tag query for sequences carrying trait.
func (l *Library) Query(trait Trait) *TagQuery {
	return &TagQuery{lib: l, include: [][]Trait{{trait}}}
}

// And narrows the query: the sequence's segment must also carry trait on a
// tag that overlaps the matched range.
func (q *TagQuery) And(trait Trait) *TagQuery {
	q.include[len(q.include)-1] = append(q.include[len(q.include)-1], trait)
	return q
}

// Or adds an alternative trait.
func (q *TagQuery) Or(trait Trait) *TagQuery {
	q.include = append(q.include, []Trait{trait})
	return q
}

// Except drops sequences whose segment carries trait on an overlapping tag.
func (q *TagQuery) Except(trait Trait) *TagQuery {
	q.exclude = append(q.exclude, trait)
	return q
}

// Sequences returns the matching pose sequences in library order.
func (q *TagQuery) Sequences() []PoseSequence {
	var out []PoseSequence
	for ti := range q.lib.tags {
		tag := &q.lib.tags[ti]
		if q.matches(tag) {
			out = append(out, PoseSequence{Tag: TagIndex(ti)})
		}
	}
	return out
}

func (q *TagQuery) matches(tag *Tag) bool {
	primary := q.lib.traits[tag.Trait]

	accepted := false
	for _, group := range q.include {
		if !group[0].Matches(primary) {
			continue
		}
		ok := true
		for _, extra := range group[1:] {
			if !q.lib.overlapsTrait(tag, extra) {
				ok = false
				break
			}
		}
		if ok {
			accepted = true
			break
		}
	}
	if !accepted {
		return false
	}

	for _, ex := range q.exclude {
		if ex.Matches(primary) || q.lib.overlapsTrait(tag, ex) {
			return false
		}
	}
	return true
}

// overlapsTrait reports whether another tag of the same segment carrying
// trait overlaps the frame range of tag.
func (l *Library) overlapsTrait(tag *Tag, trait Trait) bool {
	for i := range l.tags {
		other := &l.tags[i]
		if other == tag || other.Segment != tag.Segment {
			continue
		}
		if !trait.Matches(l.traits[other.Trait]) {
			continue
		}
		if other.FirstFrame < tag.FirstFrame+tag.NumFrames &&
			tag.FirstFrame < other.FirstFrame+other.NumFrames {
			return true
		}
	}
	return false
}

// GetInterval returns the segment-relative time index of the first frame of a
// pose sequence.
func (l *Library) GetInterval(seq PoseSequence) TimeIndex {
	tag := &l.tags[seq.Tag]
	return NewTimeIndex(tag.Segment, tag.FirstFrame)
}

// SegmentHasTrait reports whether any tag of the segment matches trait.
func (l *Library) SegmentHasTrait(segment SegmentIndex, trait Trait) bool {
	for i := range l.tags {
		tag := &l.tags[i]
		if tag.Segment == segment && trait.Matches(l.traits[tag.Trait]) {
			return true
		}
	}
	return false
}

// Contains reports whether a time index lies inside the tagged range of seq.
func (l *Library) Contains(seq PoseSequence, t TimeIndex) bool {
	tag := &l.tags[seq.Tag]
	return tag.Segment == t.Segment && t.Frame >= tag.FirstFrame && t.Frame < tag.FirstFrame+tag.NumFrames
}
