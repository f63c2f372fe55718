// Package merge fills recording gaps in one track with the points another
// device logged during the same gap.
package merge

import (
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/planbiir/gpxkit/internal/gpx"
)

var (
	// ErrNoPrimaryPoints is returned when the primary file holds no track points.
	ErrNoPrimaryPoints = errors.New("primary track has no points")
	// ErrPrimaryUntimed is returned when no primary point carries a timestamp.
	ErrPrimaryUntimed = errors.New("primary track lacks timestamped points")
)

// Config controls how the merge operation behaves.
type Config struct {
	// GapThreshold defines the minimum pause duration (in wall-clock time)
	// that will be considered a gap worth filling with the secondary track.
	// If zero, DefaultConfig().GapThreshold is used.
	GapThreshold time.Duration

	// MaxDeviationMeters limits how far the secondary points are allowed to
	// deviate from the surrounding primary points. Set to a negative value to
	// disable the guard. A zero value means "use the default".
	MaxDeviationMeters float64
}

// Stats reports what happened during the merge so callers can surface it to users.
type Stats struct {
	GapsDetected   int `json:"gaps_detected"`
	GapsFilled     int `json:"gaps_filled"`
	InsertedPoints int `json:"inserted_points"`
}

// DefaultConfig returns the recommended configuration for production use.
func DefaultConfig() Config {
	return Config{
		GapThreshold:       2 * time.Minute,
		MaxDeviationMeters: 60,
	}
}

// Tracks fills gaps in every segment of primary with copies of the secondary
// points recorded inside each gap. Only time ranges between two primary
// points are considered, which prevents adding leading/trailing stretches
// the athlete did not record. primary is modified in place and its metrics
// rebuilt; secondary is left untouched. A secondary file without timestamps
// merges nothing.
func Tracks(primary, secondary *gpx.File, cfg Config) (Stats, error) {
	if primary == nil || primary.PointCount() == 0 {
		return Stats{}, ErrNoPrimaryPoints
	}

	defaults := DefaultConfig()
	if cfg.GapThreshold <= 0 {
		cfg.GapThreshold = defaults.GapThreshold
	}
	if cfg.MaxDeviationMeters == 0 {
		cfg.MaxDeviationMeters = defaults.MaxDeviationMeters
	}

	if !hasTimestamps(primary) {
		return Stats{}, ErrPrimaryUntimed
	}

	donors := timedPoints(secondary)
	if len(donors) == 0 {
		slog.Debug("secondary track has no timestamped points, nothing to merge")
		return Stats{}, nil
	}

	var stats Stats
	for _, t := range primary.Tracks {
		for _, seg := range t.Segments() {
			if merged, changed := fillSegment(seg.Points(), donors, cfg, &stats); changed {
				seg.SetPoints(merged...)
			}
		}
	}
	primary.Rebuild()

	slog.Debug("merge completed",
		"gaps_detected", stats.GapsDetected, "gaps_filled", stats.GapsFilled, "inserted", stats.InsertedPoints)
	return stats, nil
}

// fillSegment returns the segment points with donors inserted into every gap
// longer than the threshold. donors must be sorted by time.
func fillSegment(points, donors []*gpx.Point, cfg Config, stats *Stats) ([]*gpx.Point, bool) {
	merged := make([]*gpx.Point, 0, len(points))
	changed := false

	for i, current := range points {
		merged = append(merged, current)
		if i == len(points)-1 {
			continue
		}

		next := points[i+1]
		if !current.HasTime() || !next.HasTime() {
			continue
		}
		if next.Time.Sub(current.Time) <= cfg.GapThreshold {
			continue
		}

		stats.GapsDetected++

		idx := sort.Search(len(donors), func(k int) bool { return donors[k].Time.After(current.Time) })
		inserted := 0
		for ; idx < len(donors) && donors[idx].Time.Before(next.Time); idx++ {
			candidate := donors[idx]

			if samePoint(merged[len(merged)-1], candidate) {
				continue
			}
			if cfg.MaxDeviationMeters > 0 &&
				distanceMeters(current, candidate) > cfg.MaxDeviationMeters &&
				distanceMeters(candidate, next) > cfg.MaxDeviationMeters {
				continue
			}

			merged = append(merged, candidate.Clone())
			inserted++
		}

		if inserted > 0 {
			stats.GapsFilled++
			stats.InsertedPoints += inserted
			changed = true
		}
	}

	return merged, changed
}

func hasTimestamps(f *gpx.File) bool {
	for _, t := range f.Tracks {
		for _, p := range t.Points() {
			if p.HasTime() {
				return true
			}
		}
	}
	return false
}

// timedPoints flattens every timestamped track point of f, sorted by time.
func timedPoints(f *gpx.File) []*gpx.Point {
	if f == nil {
		return nil
	}
	var points []*gpx.Point
	for _, t := range f.Tracks {
		for _, p := range t.Points() {
			if p.HasTime() {
				points = append(points, p)
			}
		}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].Time.Before(points[j].Time) })
	return points
}

func distanceMeters(a, b *gpx.Point) float64 {
	return a.DistanceTo(b) * 1000
}

func samePoint(a, b *gpx.Point) bool {
	return a.Time.Equal(b.Time) && a.Lat() == b.Lat() && a.Lon() == b.Lon()
}
