package gpx

import (
	"encoding/xml"
	"fmt"
	"math"
	"strings"
	"time"
)

// Unit selects the distance unit for File.Distance and File.AverageSpeed.
type Unit int

const (
	Kilometers Unit = iota
	Meters
	Miles
)

const kmToMiles = 0.621371

// ParseUnit accepts "km", "kilometers", "m", "meters", "mi" and "miles".
func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km", "kilometers", "kilometres", "":
		return Kilometers, nil
	case "m", "meters", "metres":
		return Meters, nil
	case "mi", "miles":
		return Miles, nil
	}
	return Kilometers, fmt.Errorf("unknown unit %q", s)
}

func (u Unit) factor() float64 {
	switch u {
	case Meters:
		return 1000
	case Miles:
		return kmToMiles
	default:
		return 1
	}
}

// FromKm converts a distance in kilometers to u.
func (u Unit) FromKm(km float64) float64 { return km * u.factor() }

func (u Unit) String() string {
	switch u {
	case Meters:
		return "m"
	case Miles:
		return "mi"
	default:
		return "km"
	}
}

// File is a whole GPX document: tracks, routes and free-standing waypoints,
// plus metrics folded from the tracks. Routes and waypoints never contribute
// to the metrics.
type File struct {
	Name        string
	Description string
	Creator     string
	Version     string
	Time        time.Time

	// Attrs holds the root element attributes and namespace declarations
	// found when parsing, written back unchanged.
	Attrs []xml.Attr

	Tracks    []*Track
	Routes    []*Route
	Waypoints []*Waypoint

	Extensions RawXML

	bounds          Bounds
	lowest, highest *Point
	distance        float64 // km
	movingDuration  time.Duration
}

// NewFile builds a document from caller-supplied parts and computes its
// metrics immediately. Tracks without points are dropped.
func NewFile(tracks []*Track, routes []*Route, waypoints []*Waypoint) *File {
	f := &File{Routes: routes, Waypoints: waypoints}
	f.ResetMetaData()
	for _, t := range tracks {
		if t == nil || t.Empty() {
			continue
		}
		f.UpdateMetaData(t, true)
		f.Tracks = append(f.Tracks, t)
	}
	return f
}

// ResetMetaData clears the bounds, elevation extremes, distance and moving
// duration.
func (f *File) ResetMetaData() {
	f.bounds = NewBounds()
	f.lowest, f.highest = nil, nil
	f.distance = 0
	f.movingDuration = 0
}

// UpdateMetaData folds one track into the file metrics. Bounds are only
// folded when includeBounds is set, so bounds read from the document survive.
func (f *File) UpdateMetaData(t *Track, includeBounds bool) {
	if lo := t.LowestPoint(); lo != nil && (f.lowest == nil || *lo.Elevation < *f.lowest.Elevation) {
		f.lowest = lo
	}
	if hi := t.HighestPoint(); hi != nil && (f.highest == nil || *hi.Elevation > *f.highest.Elevation) {
		f.highest = hi
	}
	if includeBounds {
		f.bounds.Merge(t.Bounds())
	}
	f.distance += t.Distance()
	f.movingDuration += t.MovingDuration()
}

// SetBounds overrides the document bounds.
func (f *File) SetBounds(b Bounds) { f.bounds = b }

func (f *File) Bounds() Bounds                { return f.bounds }
func (f *File) LowestPoint() *Point           { return f.lowest }
func (f *File) HighestPoint() *Point          { return f.highest }
func (f *File) MovingDuration() time.Duration { return f.movingDuration }

// Distance returns the total track distance in the given unit.
func (f *File) Distance(u Unit) float64 {
	return f.distance * u.factor()
}

// AverageSpeed returns distance per hour of moving time in the given unit.
// It is NaN when there is no moving time; callers must check.
func (f *File) AverageSpeed(u Unit) float64 {
	if f.movingDuration == 0 {
		return math.NaN()
	}
	return f.Distance(u) / f.movingDuration.Hours()
}

// Duration is the wall-clock span from the first point of the first track to
// the last point of the last track. It is zero when any of those is missing
// or lacks a timestamp.
func (f *File) Duration() time.Duration {
	if len(f.Tracks) == 0 {
		return 0
	}
	firstSegs := f.Tracks[0].Segments()
	lastSegs := f.Tracks[len(f.Tracks)-1].Segments()
	if len(firstSegs) == 0 || len(lastSegs) == 0 {
		return 0
	}
	firstPts := firstSegs[0].Points()
	lastPts := lastSegs[len(lastSegs)-1].Points()
	if len(firstPts) == 0 || len(lastPts) == 0 {
		return 0
	}
	first, last := firstPts[0], lastPts[len(lastPts)-1]
	if !first.HasTime() || !last.HasTime() {
		return 0
	}
	return last.Time.Sub(first.Time)
}

// Crop removes everything outside area: track points (dropping tracks left
// empty), route points and waypoints. Metrics are rebuilt.
func (f *File) Crop(area Bounds) {
	f.filter(
		func(t *Track) { t.Crop(area) },
		func(r *Route) { r.Crop(area) },
		func(w *Waypoint) bool { return area.Contains(&w.Point) },
	)
}

// DeleteArea removes everything inside area. Metrics are rebuilt.
func (f *File) DeleteArea(area Bounds) {
	f.filter(
		func(t *Track) { t.DeleteArea(area) },
		func(r *Route) { r.DeleteArea(area) },
		func(w *Waypoint) bool { return !area.Contains(&w.Point) },
	)
}

func (f *File) filter(track func(*Track), route func(*Route), keepWaypoint func(*Waypoint) bool) {
	f.ResetMetaData()
	var tracks []*Track
	for _, t := range f.Tracks {
		track(t)
		if t.Empty() {
			continue
		}
		f.UpdateMetaData(t, true)
		tracks = append(tracks, t)
	}
	f.Tracks = tracks

	for _, r := range f.Routes {
		route(r)
	}

	var waypoints []*Waypoint
	for _, w := range f.Waypoints {
		if keepWaypoint(w) {
			waypoints = append(waypoints, w)
		}
	}
	f.Waypoints = waypoints
}

// Smooth runs SmoothLocationByAverage over every segment, then rebuilds the
// track and file metrics. It stops at the first segment that fails.
func (f *File) Smooth(opts SmoothOptions) error {
	for ti, t := range f.Tracks {
		for si, seg := range t.Segments() {
			if err := seg.SmoothLocationByAverage(opts); err != nil {
				return fmt.Errorf("track %d segment %d: %w", ti, si, err)
			}
		}
	}

	f.Rebuild()
	return nil
}

// Rebuild refolds every track and the file metrics from the segments, for use
// after segment points were modified directly. Bounds are folded from the
// tracks, replacing any read from the document.
func (f *File) Rebuild() {
	f.ResetMetaData()
	for _, t := range f.Tracks {
		t.reset()
		for _, seg := range t.segments {
			t.fold(seg)
		}
		f.UpdateMetaData(t, true)
	}
}

// RecalculateDistance rebuilds every track distance and the file total.
func (f *File) RecalculateDistance() {
	f.distance = 0
	for _, t := range f.Tracks {
		t.RecalculateDistance()
		f.distance += t.Distance()
	}
}

// PointCount returns the number of track points in the document.
func (f *File) PointCount() int {
	n := 0
	for _, t := range f.Tracks {
		n += len(t.Points())
	}
	return n
}
