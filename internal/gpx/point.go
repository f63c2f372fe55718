package gpx

import (
	"fmt"
	"math"
	"time"
)

const (
	// EarthRadiusKm is the mean Earth radius used for all distance math.
	EarthRadiusKm = 6371.0

	degToRad = math.Pi / 180.0
)

// Point is a single GPS fix. Latitude and longitude are kept behind setters so
// the cached radian values can never go stale.
type Point struct {
	lat, lon       float64
	latRad, lonRad float64

	Elevation *float64  // meters, nil when the fix has no elevation
	Time      time.Time // zero when the fix has no timestamp
	Speed     *float64  // m/s, GPX 1.0 only

	// Extensions (Garmin, Strava, etc.) - preserved as raw XML
	Extensions RawXML
}

// NewPoint creates a point at the given position in degrees.
func NewPoint(lat, lon float64) *Point {
	p := &Point{}
	p.SetLat(lat)
	p.SetLon(lon)
	return p
}

// Float64 returns a pointer to v, for optional fields.
func Float64(v float64) *float64 {
	return &v
}

func (p *Point) Lat() float64    { return p.lat }
func (p *Point) Lon() float64    { return p.lon }
func (p *Point) LatRad() float64 { return p.latRad }
func (p *Point) LonRad() float64 { return p.lonRad }

// SetLat sets the latitude in degrees.
func (p *Point) SetLat(lat float64) {
	p.lat = lat
	p.latRad = lat * degToRad
}

// SetLon sets the longitude in degrees.
func (p *Point) SetLon(lon float64) {
	p.lon = lon
	p.lonRad = lon * degToRad
}

func (p *Point) HasTime() bool      { return !p.Time.IsZero() }
func (p *Point) HasElevation() bool { return p.Elevation != nil }

// Clone returns a deep copy of the point.
func (p *Point) Clone() *Point {
	c := *p
	if p.Elevation != nil {
		c.Elevation = Float64(*p.Elevation)
	}
	if p.Speed != nil {
		c.Speed = Float64(*p.Speed)
	}
	if p.Extensions != nil {
		c.Extensions = append(RawXML(nil), p.Extensions...)
	}
	return &c
}

// DistanceTo returns the great-circle distance to other in kilometers using
// the Haversine formula. This is the only distance used for track metrics.
func (p *Point) DistanceTo(other *Point) float64 {
	dLat := other.latRad - p.latRad
	dLon := other.lonRad - p.lonRad

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(p.latRad)*math.Cos(other.latRad)*
			math.Sin(dLon/2)*math.Sin(dLon/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// LawOfCosinesDistanceTo returns the spherical law of cosines distance in km.
// Not used for any aggregate.
func (p *Point) LawOfCosinesDistanceTo(other *Point) float64 {
	cos := math.Sin(p.latRad)*math.Sin(other.latRad) +
		math.Cos(p.latRad)*math.Cos(other.latRad)*math.Cos(other.lonRad-p.lonRad)
	// rounding can push identical points just past 1
	cos = math.Min(1, math.Max(-1, cos))
	return math.Acos(cos) * EarthRadiusKm
}

// LatLon formats "lat<delim>lon", handy for map APIs.
func (p *Point) LatLon(delim string) string {
	return fmt.Sprintf("%v%s%v", p.lat, delim, p.lon)
}

// LonLat formats "lon<delim>lat".
func (p *Point) LonLat(delim string) string {
	return fmt.Sprintf("%v%s%v", p.lon, delim, p.lat)
}

func (p *Point) String() string {
	s := fmt.Sprintf("Point(%s", p.LatLon(", "))
	if p.Elevation != nil {
		s += fmt.Sprintf(" ele=%v", *p.Elevation)
	}
	if p.HasTime() {
		s += " time=" + p.Time.UTC().Format(time.RFC3339)
	}
	return s + ")"
}
