package clean

// Config holds spike filter parameters.
type Config struct {
	// Speed thresholds
	MinSpeed float64 // m/s - minimum valid speed
	MaxSpeed float64 // m/s - maximum valid speed (auto-detected if 0)

	// Pause detection
	PauseSpeed float64 // m/s - slow points below this are kept as pauses

	// Geometric filters
	MaxHairpinDegrees float64 // degrees - allow sharp trail switchbacks
	TeleportMeters    float64 // meters - jump guard for missing timestamps

	// Safety limit
	MaxRemovedPercent float64 // never remove >X% of a segment's points

	// Elevation smoothing
	ElevationWindow int // median filter window size, 0 disables
}

// DefaultConfig returns production-tested configuration
func DefaultConfig() Config {
	return Config{
		MinSpeed:          0.1,   // 0.36 km/h - allows extended stops
		MaxSpeed:          0,     // auto-detect based on activity type
		PauseSpeed:        0.7,   // slightly higher for robustness
		MaxHairpinDegrees: 160.0, // allow sharp trail switchbacks
		TeleportMeters:    120.0,
		MaxRemovedPercent: 20.0, // safety: never remove >20% of points
		ElevationWindow:   7,    // median filter window
	}
}

// Stats represents cleaning results and metrics
type Stats struct {
	// Input
	OriginalPoints   int     `json:"original_points"`
	OriginalDistance float64 `json:"original_distance_km"`

	// Results
	FinalPoints     int     `json:"final_points"`
	PointsRemoved   int     `json:"points_removed"`
	PointsPercent   float64 `json:"points_removed_percent"`
	FinalDistance   float64 `json:"final_distance_km"`
	DistanceReduced float64 `json:"distance_reduced_km"`

	// Segments whose removals were vetoed by MaxRemovedPercent
	SafetyOverrides int `json:"safety_overrides"`

	// Activity detection, from the last segment with timed movement
	ActivityType     string  `json:"activity_type,omitempty"`
	DetectedMaxSpeed float64 `json:"detected_max_speed_ms,omitempty"`
	P95Speed         float64 `json:"p95_speed_ms,omitempty"`
}

func (s *Stats) add(o Stats) {
	s.OriginalPoints += o.OriginalPoints
	s.OriginalDistance += o.OriginalDistance
	s.FinalPoints += o.FinalPoints
	s.PointsRemoved += o.PointsRemoved
	s.FinalDistance += o.FinalDistance
	s.DistanceReduced += o.DistanceReduced
	s.SafetyOverrides += o.SafetyOverrides
	if o.ActivityType != "" && o.ActivityType != activityUnknown {
		s.ActivityType = o.ActivityType
		s.DetectedMaxSpeed = o.DetectedMaxSpeed
		s.P95Speed = o.P95Speed
	}
	if s.OriginalPoints > 0 {
		s.PointsPercent = float64(s.PointsRemoved) / float64(s.OriginalPoints) * 100
	}
}
