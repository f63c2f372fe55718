package gpx

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"
)

var (
	// ErrInvalidTimeIndicator is returned when a start/end indicator is neither
	// a time nor an offset.
	ErrInvalidTimeIndicator = errors.New("time indicator must be a time.Time, an integer number of seconds or a time.Duration")

	// ErrNoTimestamps is returned when an offset is resolved against a segment
	// without timestamped points.
	ErrNoTimestamps = errors.New("segment has no timestamped points")
)

// DefaultSmoothingWindow is the number of seconds averaged on either side of a
// point by SmoothLocationByAverage.
const DefaultSmoothingWindow = 20

// Segment is a contiguous run of logged points. It keeps its metrics up to
// date as points are appended or removed.
type Segment struct {
	Extensions RawXML

	points []*Point

	earliest, latest *Point
	lowest, highest  *Point
	bounds           Bounds
	distance         float64 // km
	duration         time.Duration
}

// NewSegment returns an empty segment, optionally seeded with points.
func NewSegment(points ...*Point) *Segment {
	s := &Segment{}
	s.reset()
	for _, p := range points {
		s.AppendPoint(p)
	}
	return s
}

func (s *Segment) reset() {
	s.points = nil
	s.earliest, s.latest = nil, nil
	s.lowest, s.highest = nil, nil
	s.bounds = NewBounds()
	s.distance = 0
	s.duration = 0
}

// AppendPoint adds p to the end of the segment and updates every cached
// metric in constant time.
func (s *Segment) AppendPoint(p *Point) {
	var last *Point
	if n := len(s.points); n > 0 {
		last = s.points[n-1]
	}

	if p.HasTime() {
		if s.earliest == nil || !s.earliest.HasTime() || p.Time.Before(s.earliest.Time) {
			s.earliest = p
		}
		if s.latest == nil || !s.latest.HasTime() || p.Time.After(s.latest.Time) {
			s.latest = p
		}
	} else {
		// without a timestamp, insertion order is taken as chronological
		if len(s.points) > 0 {
			s.earliest = s.points[0]
		} else {
			s.earliest = p
		}
		s.latest = p
	}

	if p.Elevation != nil {
		if s.lowest == nil || *p.Elevation < *s.lowest.Elevation {
			s.lowest = p
		}
		if s.highest == nil || *p.Elevation > *s.highest.Elevation {
			s.highest = p
		}
	}

	s.bounds.ExpandToInclude(p)

	if last != nil {
		s.distance += last.DistanceTo(p)
		if p.HasTime() && last.HasTime() {
			s.duration += p.Time.Sub(last.Time)
		}
	}

	s.points = append(s.points, p)
}

func (s *Segment) Points() []*Point        { return s.points }
func (s *Segment) Len() int                { return len(s.points) }
func (s *Segment) Empty() bool             { return len(s.points) == 0 }
func (s *Segment) EarliestPoint() *Point   { return s.earliest }
func (s *Segment) LatestPoint() *Point     { return s.latest }
func (s *Segment) LowestPoint() *Point     { return s.lowest }
func (s *Segment) HighestPoint() *Point    { return s.highest }
func (s *Segment) Bounds() Bounds          { return s.bounds }
func (s *Segment) Distance() float64       { return s.distance }
func (s *Segment) Duration() time.Duration { return s.duration }

// DeleteIf removes every point for which del returns true, then rebuilds the
// metrics by replaying the kept points in their original order.
func (s *Segment) DeleteIf(del func(*Point) bool) {
	old := s.points
	s.reset()
	for _, p := range old {
		if del(p) {
			continue
		}
		s.AppendPoint(p)
	}
}

// SetPoints replaces every point of the segment and rebuilds the metrics.
func (s *Segment) SetPoints(points ...*Point) {
	s.reset()
	for _, p := range points {
		s.AppendPoint(p)
	}
}

// Crop keeps only the points inside area.
func (s *Segment) Crop(area Bounds) {
	s.DeleteIf(func(p *Point) bool { return !area.Contains(p) })
}

// DeleteArea removes the points inside area.
func (s *Segment) DeleteArea(area Bounds) {
	s.DeleteIf(area.Contains)
}

// ContainsTime reports whether t lies between the earliest and latest
// timestamps. A segment without timestamps contains no time.
func (s *Segment) ContainsTime(t time.Time) bool {
	if s.earliest == nil || s.latest == nil || !s.earliest.HasTime() || !s.latest.HasTime() {
		return false
	}
	return !t.Before(s.earliest.Time) && !t.After(s.latest.Time)
}

// ClosestPoint returns the point whose timestamp is nearest to t, or nil for
// an empty segment. Points must be sorted by time ascending, which holds when
// they were appended chronologically; the result is unspecified otherwise.
func (s *Segment) ClosestPoint(t time.Time) *Point {
	if len(s.points) == 0 {
		return nil
	}
	return findClosest(s.points, t)
}

func findClosest(pts []*Point, t time.Time) *Point {
	switch len(pts) {
	case 1:
		return pts[0]
	case 2:
		return nearer(pts[0], pts[1], t)
	}

	mid := len(pts) / 2
	switch {
	case !t.Before(pts[mid].Time) && !t.After(pts[mid+1].Time):
		return nearer(pts[mid], pts[mid+1], t)
	case !t.After(pts[mid].Time):
		return findClosest(pts[:mid+1], t)
	default:
		return findClosest(pts[mid+1:], t)
	}
}

// nearer prefers a on ties.
func nearer(a, b *Point, t time.Time) *Point {
	if absDuration(b.Time.Sub(t)) < absDuration(a.Time.Sub(t)) {
		return b
	}
	return a
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// FindPointByTimeOrOffset resolves indicator to a point of the segment.
// nil resolves to nil; a time.Time resolves to the closest point; an integer
// (seconds) or time.Duration is an offset from the earliest point.
func (s *Segment) FindPointByTimeOrOffset(indicator any) (*Point, error) {
	var offset time.Duration
	switch v := indicator.(type) {
	case nil:
		return nil, nil
	case time.Time:
		return s.ClosestPoint(v), nil
	case int, int8, int16, int32, int64:
		offset = time.Duration(reflect.ValueOf(v).Int()) * time.Second
	case uint, uint8, uint16, uint32, uint64:
		offset = time.Duration(reflect.ValueOf(v).Uint()) * time.Second
	case time.Duration:
		offset = v
	default:
		return nil, fmt.Errorf("%w, got %T", ErrInvalidTimeIndicator, indicator)
	}

	if s.earliest == nil || !s.earliest.HasTime() {
		return nil, ErrNoTimestamps
	}
	return s.ClosestPoint(s.earliest.Time.Add(offset)), nil
}

// SmoothOptions controls SmoothLocationByAverage.
type SmoothOptions struct {
	// Window is the number of seconds averaged on either side of each point.
	// Zero means DefaultSmoothingWindow.
	Window int

	// Start and End limit smoothing to a time range. Each accepts the same
	// values as FindPointByTimeOrOffset; nil means the segment's full extent.
	Start, End any
}

// SmoothLocationByAverage replaces the position and elevation of every point
// in the selected range with the average of the nearest points sampled once
// per second across the window. Nearest points hit several times are counted
// each time. Metrics are rebuilt afterwards.
func (s *Segment) SmoothLocationByAverage(opts SmoothOptions) error {
	if len(s.points) == 0 {
		return nil
	}

	window := opts.Window
	if window <= 0 {
		window = DefaultSmoothingWindow
	}

	first, err := s.FindPointByTimeOrOffset(opts.Start)
	if err != nil {
		return fmt.Errorf("failed to resolve smoothing start: %w", err)
	}
	if first == nil {
		first = s.earliest
	}
	last, err := s.FindPointByTimeOrOffset(opts.End)
	if err != nil {
		return fmt.Errorf("failed to resolve smoothing end: %w", err)
	}
	if last == nil {
		last = s.latest
	}
	if first == nil || last == nil || !first.HasTime() || !last.HasTime() {
		// nothing is timestamped, so there is no window to average over
		return nil
	}
	earliest, latest := first.Time, last.Time

	smoothed := make([]*Point, 0, len(s.points))
	for _, p := range s.points {
		if !p.HasTime() || p.Time.Before(earliest) || p.Time.After(latest) {
			smoothed = append(smoothed, p)
			continue
		}

		var latSum, lonSum, eleSum float64
		var n, nEle int
		for k := -window; k <= window; k++ {
			c := s.ClosestPoint(p.Time.Add(time.Duration(k) * time.Second))
			latSum += c.lat
			lonSum += c.lon
			n++
			if c.Elevation != nil {
				eleSum += *c.Elevation
				nEle++
			}
		}

		np := p.Clone()
		np.SetLat(roundTo(latSum/float64(n), 7))
		np.SetLon(roundTo(lonSum/float64(n), 7))
		if nEle > 0 {
			np.Elevation = Float64(roundTo(eleSum/float64(nEle), 2))
		}
		smoothed = append(smoothed, np)
	}

	s.reset()
	for _, p := range smoothed {
		s.AppendPoint(p)
	}
	return nil
}

func roundTo(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}

func (s *Segment) String() string {
	var b strings.Builder
	b.WriteString("Track Segment\n")
	fmt.Fprintf(&b, "\tSize: %d points\n", len(s.points))
	fmt.Fprintf(&b, "\tDistance: %v km\n", s.distance)
	fmt.Fprintf(&b, "\tDuration: %v\n", s.duration)
	if s.earliest != nil && s.latest != nil {
		fmt.Fprintf(&b, "\tEarliest Point: %v\n", s.earliest)
		fmt.Fprintf(&b, "\tLatest Point: %v\n", s.latest)
	}
	if s.lowest != nil && s.highest != nil {
		fmt.Fprintf(&b, "\tLowest Point: %v\n", *s.lowest.Elevation)
		fmt.Fprintf(&b, "\tHighest Point: %v\n", *s.highest.Elevation)
	}
	fmt.Fprintf(&b, "\tBounds: %v", s.bounds)
	return b.String()
}
