package clean

import (
	"math"
	"sort"

	"github.com/planbiir/gpxkit/internal/gpx"
)

const activityUnknown = "unknown"

// smoothElevation applies median filter to reduce barometric noise. Points
// without elevation are skipped and stay without.
func smoothElevation(points []*gpx.Point, windowSize int) {
	if len(points) < 3 || windowSize < 3 {
		return
	}

	// Ensure window size is odd
	if windowSize%2 == 0 {
		windowSize++
	}
	half := windowSize / 2

	smoothed := make([]*float64, len(points))
	elevations := make([]float64, 0, windowSize)
	for i := range points {
		if points[i].Elevation == nil {
			continue
		}
		elevations = elevations[:0]
		start := max(0, i-half)
		end := min(len(points), i+half+1)
		for j := start; j < end; j++ {
			if e := points[j].Elevation; e != nil {
				elevations = append(elevations, *e)
			}
		}
		smoothed[i] = gpx.Float64(medianFloat(elevations))
	}

	for i := range points {
		if smoothed[i] != nil {
			points[i].Elevation = smoothed[i]
		}
	}
}

// velocityOutlierFilter returns the points to drop: impossible speeds and
// geometric spikes. The first and last points are always kept.
func velocityOutlierFilter(points []*gpx.Point, maxSpeed float64, config Config) map[*gpx.Point]bool {
	drop := make(map[*gpx.Point]bool)

	for i := 1; i < len(points)-1; i++ {
		prev, curr, next := points[i-1], points[i], points[i+1]

		distToPrev := distance3D(prev, curr)
		distToNext := distance3D(curr, next)

		var timeToPrev, timeToNext float64
		if prev.HasTime() && curr.HasTime() {
			timeToPrev = curr.Time.Sub(prev.Time).Seconds()
		}
		if curr.HasTime() && next.HasTime() {
			timeToNext = next.Time.Sub(curr.Time).Seconds()
		}
		validPrev := timeToPrev > 0
		validNext := timeToNext > 0

		angle := turnAngle(prev, curr, next)
		directionOK := angle <= config.MaxHairpinDegrees

		speedOK := true
		switch {
		case validPrev && validNext:
			speedFromPrev := distToPrev / timeToPrev
			speedToNext := distToNext / timeToNext
			speedOK = speedFromPrev >= config.MinSpeed && speedFromPrev <= maxSpeed &&
				speedToNext >= config.MinSpeed && speedToNext <= maxSpeed

			if speedOK {
				base := prev.DistanceTo(next) * 1000
				// classic boomerang: both legs long, base short, big turn
				if distToPrev > 120 && distToNext > 120 && base < 40 && angle > 100 {
					speedOK = false
				} else if (distToPrev+distToNext)/math.Max(base, 1) > 6 && angle > 90 {
					speedOK = false
				}
			}
		case validPrev:
			speed := distToPrev / timeToPrev
			speedOK = speed >= config.MinSpeed && speed <= maxSpeed
		case validNext:
			speed := distToNext / timeToNext
			speedOK = speed >= config.MinSpeed && speed <= maxSpeed
		default:
			speedOK = distToPrev <= config.TeleportMeters && distToNext <= config.TeleportMeters
		}

		if speedOK && directionOK {
			continue
		}
		// Only rescue if it's clearly a pause, not just geometry
		if validPrev && validNext &&
			distToPrev/timeToPrev <= config.PauseSpeed && distToNext/timeToNext <= config.PauseSpeed {
			continue
		}
		drop[curr] = true
	}

	return drop
}

// detectActivityType classifies the movement by its P95 speed and returns a
// matching speed limit.
func detectActivityType(points []*gpx.Point) (activity string, maxSpeed, p95 float64) {
	speeds := calculateAllSpeeds(points)
	if len(speeds) == 0 {
		return activityUnknown, 12.0, 0.0
	}

	p95 = percentile(speeds, 95)
	switch {
	case p95 <= 8.0: // 28.8 km/h
		return "running/hiking", 12.0, p95
	case p95 <= 20.0: // 72 km/h
		return "cycling", 30.0, p95
	default: // skiing, motorsports
		return "high-speed", 50.0, p95
	}
}

// calculateAllSpeeds computes speeds in m/s between consecutive timed points
func calculateAllSpeeds(points []*gpx.Point) []float64 {
	var speeds []float64
	for i := 1; i < len(points); i++ {
		if !points[i].HasTime() || !points[i-1].HasTime() {
			continue
		}
		dt := points[i].Time.Sub(points[i-1].Time).Seconds()
		if dt <= 0 {
			continue
		}
		speed := distance3D(points[i-1], points[i]) / dt
		if speed > 0 && speed < 100 { // reasonable bounds
			speeds = append(speeds, speed)
		}
	}
	return speeds
}

// distance3D is the straight-line distance in meters, including the climb
// when both points carry an elevation.
func distance3D(a, b *gpx.Point) float64 {
	horizontal := a.DistanceTo(b) * 1000
	if a.Elevation == nil || b.Elevation == nil {
		return horizontal
	}
	vertical := *b.Elevation - *a.Elevation
	return math.Sqrt(horizontal*horizontal + vertical*vertical)
}

// turnAngle computes the change of heading at p2, 0 to 180 degrees
func turnAngle(p1, p2, p3 *gpx.Point) float64 {
	angle := math.Abs(bearing(p2, p3) - bearing(p1, p2))
	if angle > 180.0 {
		angle = 360.0 - angle
	}
	return angle
}

// bearing computes the initial bearing from a to b in degrees
func bearing(a, b *gpx.Point) float64 {
	deltaLon := b.LonRad() - a.LonRad()
	y := math.Sin(deltaLon) * math.Cos(b.LatRad())
	x := math.Cos(a.LatRad())*math.Sin(b.LatRad()) - math.Sin(a.LatRad())*math.Cos(b.LatRad())*math.Cos(deltaLon)
	deg := math.Atan2(y, x) * 180 / math.Pi
	return math.Mod(deg+360, 360)
}

// Utility functions
func medianFloat(values []float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	if len(sorted)%2 == 0 {
		return (sorted[len(sorted)/2-1] + sorted[len(sorted)/2]) / 2
	}
	return sorted[len(sorted)/2]
}

func percentile(values []float64, p float64) float64 {
	if len(values) == 0 {
		return 0.0
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	index := (p / 100.0) * float64(len(sorted)-1)
	lower := int(math.Floor(index))
	upper := int(math.Ceil(index))
	if lower == upper {
		return sorted[lower]
	}

	weight := index - float64(lower)
	return sorted[lower]*(1-weight) + sorted[upper]*weight
}
