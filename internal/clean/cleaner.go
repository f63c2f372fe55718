// Package clean removes GPS spikes from recorded tracks: points reached at
// impossible speeds, sharp out-and-back boomerangs and teleports between
// untimed fixes. It also median-filters barometric elevation noise.
package clean

import (
	"log/slog"

	"github.com/planbiir/gpxkit/internal/gpx"
)

// File cleans every segment of f in place, then rebuilds the file metrics.
func File(f *gpx.File, config Config) Stats {
	var total Stats
	for _, t := range f.Tracks {
		for _, seg := range t.Segments() {
			total.add(Segment(seg, config))
		}
	}
	f.Rebuild()

	slog.Debug("cleaning completed",
		"before", total.OriginalPoints, "after", total.FinalPoints,
		"removed_percent", total.PointsPercent, "activity", total.ActivityType)
	return total
}

// Segment cleans one segment in place. Segments shorter than three points
// are left alone. When the filter would remove more than
// MaxRemovedPercent of the points, only the elevation smoothing is applied.
func Segment(seg *gpx.Segment, config Config) Stats {
	points := seg.Points()
	stats := Stats{
		OriginalPoints:   len(points),
		OriginalDistance: seg.Distance(),
		FinalPoints:      len(points),
		FinalDistance:    seg.Distance(),
	}
	if len(points) < 3 {
		return stats
	}

	activity, maxSpeed, p95 := detectActivityType(points)
	if config.MaxSpeed > 0 {
		maxSpeed = config.MaxSpeed
	}
	stats.ActivityType = activity
	stats.DetectedMaxSpeed = maxSpeed
	stats.P95Speed = p95

	smoothElevation(points, config.ElevationWindow)

	drop := velocityOutlierFilter(points, maxSpeed, config)
	if removed := float64(len(drop)) / float64(len(points)) * 100; removed > config.MaxRemovedPercent {
		slog.Debug("safety override, keeping all points",
			"would_remove_percent", removed, "limit", config.MaxRemovedPercent)
		stats.SafetyOverrides = 1
		drop = nil
	}

	// rebuilds the metrics even when nothing is dropped, since elevations
	// may have changed
	seg.DeleteIf(func(p *gpx.Point) bool { return drop[p] })

	stats.FinalPoints = seg.Len()
	stats.PointsRemoved = stats.OriginalPoints - stats.FinalPoints
	stats.PointsPercent = float64(stats.PointsRemoved) / float64(stats.OriginalPoints) * 100
	stats.FinalDistance = seg.Distance()
	stats.DistanceReduced = stats.OriginalDistance - stats.FinalDistance
	return stats
}
