package gpx

import (
	"math"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// oneDegreeKm is the arc length of one degree on the model sphere.
const oneDegreeKm = EarthRadiusKm * math.Pi / 180

func TestPointSettersUpdateRadians(t *testing.T) {
	p := NewPoint(0, 0)
	p.SetLat(90)
	p.SetLon(-180)

	assert.Equal(t, 90.0, p.Lat())
	assert.InDelta(t, math.Pi/2, p.LatRad(), 1e-15)
	assert.InDelta(t, -math.Pi, p.LonRad(), 1e-15)
}

func TestPointDistance(t *testing.T) {
	a := NewPoint(0, 0)
	b := NewPoint(0, 1)

	assert.InDelta(t, oneDegreeKm, a.DistanceTo(b), 1e-9)
	assert.InDelta(t, oneDegreeKm, a.LawOfCosinesDistanceTo(b), 1e-6)
	assert.Equal(t, 0.0, a.DistanceTo(a))
	assert.Equal(t, 0.0, a.LawOfCosinesDistanceTo(NewPoint(0, 0)))

	// symmetric
	c := NewPoint(46.01, 7.74)
	d := NewPoint(46.02, 7.75)
	assert.InDelta(t, c.DistanceTo(d), d.DistanceTo(c), 1e-12)

	// orb uses the WGS84 equatorial radius, otherwise the same formula
	orbKm := geo.DistanceHaversine(orb.Point{c.Lon(), c.Lat()}, orb.Point{d.Lon(), d.Lat()}) / 1000
	assert.InDelta(t, orbKm*EarthRadiusKm*1000/orb.EarthRadius, c.DistanceTo(d), 1e-9)
}

func TestPointClone(t *testing.T) {
	p := NewPoint(1, 2)
	p.Elevation = Float64(10)
	p.Extensions = RawXML("<hr>1</hr>")

	c := p.Clone()
	*c.Elevation = 20
	c.Extensions[1] = 'X'
	c.SetLat(5)

	require.NotNil(t, p.Elevation)
	assert.Equal(t, 10.0, *p.Elevation)
	assert.Equal(t, "<hr>1</hr>", string(p.Extensions))
	assert.Equal(t, 1.0, p.Lat())
}

func TestPointFormatting(t *testing.T) {
	p := NewPoint(46.5, 7.25)

	assert.Equal(t, "46.5,7.25", p.LatLon(","))
	assert.Equal(t, "7.25 46.5", p.LonLat(" "))
	assert.Equal(t, "Point(46.5, 7.25)", p.String())

	p.Elevation = Float64(1200)
	assert.Contains(t, p.String(), "ele=1200")
	assert.False(t, p.HasTime())
	assert.True(t, p.HasElevation())
}
