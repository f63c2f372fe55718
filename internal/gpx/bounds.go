package gpx

import (
	"fmt"

	"github.com/paulmach/orb"
)

// Bounds is an axis-aligned lat/lon rectangle.
type Bounds struct {
	MinLat, MaxLat float64
	MinLon, MaxLon float64
}

// NewBounds returns an inverted box that any real point or box will expand.
func NewBounds() Bounds {
	return Bounds{MinLat: 90, MaxLat: -90, MinLon: 180, MaxLon: -180}
}

// BoundsFromOrb converts an orb.Bound (X = lon, Y = lat).
func BoundsFromOrb(b orb.Bound) Bounds {
	return Bounds{MinLat: b.Min.Lat(), MaxLat: b.Max.Lat(), MinLon: b.Min.Lon(), MaxLon: b.Max.Lon()}
}

// Bound converts to an orb.Bound.
func (b Bounds) Bound() orb.Bound {
	return orb.Bound{Min: orb.Point{b.MinLon, b.MinLat}, Max: orb.Point{b.MaxLon, b.MaxLat}}
}

// Empty reports whether nothing has been added to the box yet.
func (b Bounds) Empty() bool {
	return b.MinLat > b.MaxLat || b.MinLon > b.MaxLon
}

// ExpandToInclude widens the box to contain p.
func (b *Bounds) ExpandToInclude(p *Point) {
	if p.lat < b.MinLat {
		b.MinLat = p.lat
	}
	if p.lon < b.MinLon {
		b.MinLon = p.lon
	}
	if p.lat > b.MaxLat {
		b.MaxLat = p.lat
	}
	if p.lon > b.MaxLon {
		b.MaxLon = p.lon
	}
}

// Merge widens the box to contain other.
func (b *Bounds) Merge(other Bounds) {
	if other.MinLat < b.MinLat {
		b.MinLat = other.MinLat
	}
	if other.MinLon < b.MinLon {
		b.MinLon = other.MinLon
	}
	if other.MaxLat > b.MaxLat {
		b.MaxLat = other.MaxLat
	}
	if other.MaxLon > b.MaxLon {
		b.MaxLon = other.MaxLon
	}
}

// Contains is inclusive on all four edges.
func (b Bounds) Contains(p *Point) bool {
	return p.lat >= b.MinLat && p.lat <= b.MaxLat && p.lon >= b.MinLon && p.lon <= b.MaxLon
}

// CenterLat is the midpoint of the latitude range, not a spherical centroid.
func (b Bounds) CenterLat() float64 {
	return b.MinLat + (b.MaxLat-b.MinLat)/2
}

// CenterLon is the midpoint of the longitude range.
func (b Bounds) CenterLon() float64 {
	return b.MinLon + (b.MaxLon-b.MinLon)/2
}

func (b Bounds) String() string {
	return fmt.Sprintf("min_lat: %v min_lon: %v max_lat: %v max_lon: %v", b.MinLat, b.MinLon, b.MaxLat, b.MaxLon)
}
