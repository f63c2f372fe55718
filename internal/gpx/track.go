package gpx

import (
	"fmt"
	"strings"
	"time"
)

// Track is a GPS-logged path made of one or more segments. Its metrics are
// folded from each segment's own metrics, never recomputed from raw points.
type Track struct {
	Name        string
	Comment     string
	Description string
	Extensions  RawXML

	segments []*Segment
	points   []*Point

	lowest, highest *Point
	bounds          Bounds
	distance        float64 // km
	movingDuration  time.Duration
}

// NewTrack returns an empty track holding the given segments.
func NewTrack(name string, segments ...*Segment) *Track {
	t := &Track{Name: name}
	t.reset()
	for _, seg := range segments {
		t.AppendSegment(seg)
	}
	return t
}

func (t *Track) reset() {
	t.points = nil
	t.lowest, t.highest = nil, nil
	t.bounds = NewBounds()
	t.distance = 0
	t.movingDuration = 0
}

// AppendSegment adds seg and folds its metrics into the track. Empty segments
// are ignored.
func (t *Track) AppendSegment(seg *Segment) {
	if seg == nil || seg.Empty() {
		return
	}
	t.fold(seg)
	t.segments = append(t.segments, seg)
}

func (t *Track) fold(seg *Segment) {
	if lo := seg.LowestPoint(); lo != nil && (t.lowest == nil || *lo.Elevation < *t.lowest.Elevation) {
		t.lowest = lo
	}
	if hi := seg.HighestPoint(); hi != nil && (t.highest == nil || *hi.Elevation > *t.highest.Elevation) {
		t.highest = hi
	}
	t.bounds.Merge(seg.Bounds())
	t.distance += seg.Distance()
	t.movingDuration += seg.Duration()
	t.points = append(t.points, seg.Points()...)
}

func (t *Track) Segments() []*Segment { return t.segments }

// Points returns every point of every segment, in order.
func (t *Track) Points() []*Point { return t.points }

// Empty is true when the track holds no points, even if it has empty segments.
func (t *Track) Empty() bool { return len(t.points) == 0 }

func (t *Track) LowestPoint() *Point           { return t.lowest }
func (t *Track) HighestPoint() *Point          { return t.highest }
func (t *Track) Bounds() Bounds                { return t.bounds }
func (t *Track) Distance() float64             { return t.distance }
func (t *Track) MovingDuration() time.Duration { return t.movingDuration }

// Crop removes all points outside area and drops segments left empty.
func (t *Track) Crop(area Bounds) {
	t.filter(func(seg *Segment) { seg.Crop(area) })
}

// DeleteArea removes all points inside area and drops segments left empty.
func (t *Track) DeleteArea(area Bounds) {
	t.filter(func(seg *Segment) { seg.DeleteArea(area) })
}

func (t *Track) filter(apply func(*Segment)) {
	t.reset()
	kept := t.segments[:0]
	for _, seg := range t.segments {
		apply(seg)
		if seg.Empty() {
			continue
		}
		t.fold(seg)
		kept = append(kept, seg)
	}
	for i := len(kept); i < len(t.segments); i++ {
		t.segments[i] = nil
	}
	t.segments = kept
}

// ContainsTime reports whether any segment spans t.
func (t *Track) ContainsTime(tm time.Time) bool {
	return t.SegmentAt(tm) != nil
}

// SegmentAt returns the first segment spanning tm. Segments are assumed to be
// in time order and not to overlap.
func (t *Track) SegmentAt(tm time.Time) *Segment {
	for _, seg := range t.segments {
		if seg.ContainsTime(tm) {
			return seg
		}
	}
	return nil
}

// ClosestPoint returns the point nearest in time to tm within the segment
// spanning tm, or nil when no segment does.
func (t *Track) ClosestPoint(tm time.Time) *Point {
	seg := t.SegmentAt(tm)
	if seg == nil {
		return nil
	}
	return seg.ClosestPoint(tm)
}

// RecalculateDistance rebuilds the track distance from its segments, for use
// after segments were modified directly.
func (t *Track) RecalculateDistance() {
	t.distance = 0
	for _, seg := range t.segments {
		t.distance += seg.Distance()
	}
}

func (t *Track) String() string {
	var b strings.Builder
	b.WriteString("Track\n")
	fmt.Fprintf(&b, "\tName: %s\n", t.Name)
	fmt.Fprintf(&b, "\tComment: %s\n", t.Comment)
	fmt.Fprintf(&b, "\tDescription: %s\n", t.Description)
	fmt.Fprintf(&b, "\tSize: %d points\n", len(t.points))
	fmt.Fprintf(&b, "\tSegments: %d\n", len(t.segments))
	fmt.Fprintf(&b, "\tDistance: %v km\n", t.distance)
	fmt.Fprintf(&b, "\tMoving duration: %v\n", t.movingDuration)
	if t.lowest != nil && t.highest != nil {
		fmt.Fprintf(&b, "\tLowest Point: %v\n", *t.lowest.Elevation)
		fmt.Fprintf(&b, "\tHighest Point: %v\n", *t.highest.Elevation)
	}
	fmt.Fprintf(&b, "\tBounds: %v", t.bounds)
	return b.String()
}
