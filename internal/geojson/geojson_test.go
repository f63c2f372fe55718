package geojson

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	orbjson "github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gpxkit/internal/gpx"
)

const collection = `{
  "type": "FeatureCollection",
  "features": [
    {
      "type": "Feature",
      "properties": {"name": "Point feature"},
      "geometry": {"type": "Point", "coordinates": [-118.0, 34.0, 120.5]}
    },
    {
      "type": "Feature",
      "properties": {
        "name": "Morning ride",
        "coordTimes": ["2024-05-01T07:00:00Z", "2024-05-01T07:00:30Z", "2024-05-01T07:01:00Z"]
      },
      "geometry": {"type": "LineString", "coordinates": [[7.0, 46.0, 1000], [7.0, 46.001, 1010], [7.0, 46.002]]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "MultiLineString", "coordinates": [
        [[8.0, 47.0], [8.0, 47.001]],
        [[8.0, 47.01], [8.0, 47.011], [8.0, 47.012]]
      ]}
    },
    {
      "type": "Feature",
      "properties": {"name": "second"},
      "geometry": {"type": "LineString", "coordinates": [[7.1, 46.1], [7.1, 46.101]]}
    },
    {
      "type": "Feature",
      "properties": {"name": "summits"},
      "geometry": {"type": "MultiPoint", "coordinates": [[9.0, 45.0, 3000], [9.1, 45.1]]}
    },
    {
      "type": "Feature",
      "properties": {},
      "geometry": {"type": "Polygon", "coordinates": [[[0, 0], [1, 0], [1, 1], [0, 0]]]}
    }
  ]
}`

func TestConvertLineStrings(t *testing.T) {
	f, err := Convert([]byte(collection), Options{})
	require.NoError(t, err)

	require.Len(t, f.Tracks, 2)
	lines := f.Tracks[0]
	assert.Equal(t, "Morning ride", lines.Name)
	require.Len(t, lines.Segments(), 2)
	assert.Len(t, lines.Segments()[0].Points(), 3)
	assert.Len(t, lines.Segments()[1].Points(), 2)

	pts := lines.Segments()[0].Points()
	assert.Equal(t, 46.0, pts[0].Lat())
	assert.Equal(t, 7.0, pts[0].Lon())
	require.NotNil(t, pts[1].Elevation)
	assert.Equal(t, 1010.0, *pts[1].Elevation)
	assert.Nil(t, pts[2].Elevation)
	assert.Equal(t, time.Date(2024, 5, 1, 7, 0, 30, 0, time.UTC), pts[1].Time)
	assert.Equal(t, time.Minute, lines.Segments()[0].Duration())

	assert.False(t, lines.Segments()[1].Points()[0].HasTime())
}

func TestConvertMultiLineString(t *testing.T) {
	f, err := Convert([]byte(collection), Options{})
	require.NoError(t, err)

	multi := f.Tracks[1]
	assert.Empty(t, multi.Name)
	require.Len(t, multi.Segments(), 2)
	assert.Len(t, multi.Points(), 5)
	assert.Equal(t, 47.012, multi.Bounds().MaxLat)

	assert.InDelta(t, f.Tracks[0].Distance()+multi.Distance(), f.Distance(gpx.Kilometers), 1e-12)
}

func TestConvertPoints(t *testing.T) {
	f, err := Convert([]byte(collection), Options{})
	require.NoError(t, err)

	require.Len(t, f.Waypoints, 3)

	w := f.Waypoints[0]
	assert.Equal(t, "Point feature", w.Name)
	assert.Equal(t, 34.0, w.Lat())
	assert.Equal(t, -118.0, w.Lon())
	require.NotNil(t, w.Elevation)
	assert.Equal(t, 120.5, *w.Elevation)

	assert.Equal(t, "summits", f.Waypoints[1].Name)
	assert.Equal(t, 3000.0, *f.Waypoints[1].Elevation)
	assert.Nil(t, f.Waypoints[2].Elevation)
	assert.Equal(t, 45.1, f.Waypoints[2].Lat())

	// waypoints never widen the document bounds
	assert.Less(t, f.Bounds().MaxLon, 9.0)
}

func TestConvertHooks(t *testing.T) {
	var lineCalls, multiCalls, pointCalls, multiPointCalls int
	opts := Options{
		LineString: func(feature *orbjson.Feature, seg *gpx.Segment) {
			lineCalls++
			first := seg.Points()[0]
			seg.AppendPoint(gpx.NewPoint(first.Lat(), first.Lon()))
		},
		MultiLineString: func(feature *orbjson.Feature, tr *gpx.Track) {
			multiCalls++
			tr.Name = "from hook"
		},
		Point: func(feature *orbjson.Feature, w *gpx.Waypoint) {
			pointCalls++
			w.Symbol = feature.Properties.MustString("name")
		},
		MultiPoint: func(feature *orbjson.Feature, ws []*gpx.Waypoint) {
			multiPointCalls++
			assert.Len(t, ws, 2)
		},
	}

	f, err := Convert([]byte(collection), opts)
	require.NoError(t, err)

	assert.Equal(t, 2, lineCalls)
	assert.Equal(t, 1, multiCalls)
	assert.Equal(t, 1, pointCalls)
	assert.Equal(t, 1, multiPointCalls)

	assert.Len(t, f.Tracks[0].Points(), 7, "one closing point added per LineString")
	assert.Equal(t, "from hook", f.Tracks[1].Name)
	assert.Equal(t, "Point feature", f.Waypoints[0].Symbol)
}

func TestConvertErrors(t *testing.T) {
	_, err := Convert([]byte(`{"type": "FeatureCollection"}`), Options{})
	assert.ErrorIs(t, err, ErrNoFeatures)

	_, err = Convert([]byte(`{"type": "FeatureCollection", "features": [`), Options{})
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoFeatures)

	f, err := Convert([]byte(`{"type": "FeatureCollection", "features": []}`), Options{})
	require.NoError(t, err)
	assert.Empty(t, f.Tracks)
	assert.Empty(t, f.Waypoints)
}

func TestConvertReaderAndFile(t *testing.T) {
	f, err := ConvertReader(strings.NewReader(collection), Options{})
	require.NoError(t, err)
	assert.Len(t, f.Tracks, 2)

	dir := t.TempDir()
	in := filepath.Join(dir, "rides.json")
	out := filepath.Join(dir, "rides.gpx")
	require.NoError(t, os.WriteFile(in, []byte(collection), 0o644))

	_, err = ConvertFile(in, out, Options{})
	require.NoError(t, err)

	parsed, err := gpx.Parse(out)
	require.NoError(t, err)
	assert.Len(t, parsed.Tracks, 2)
	assert.Len(t, parsed.Waypoints, 3)
	assert.Equal(t, 10, parsed.PointCount())

	_, err = ConvertFile(filepath.Join(dir, "missing.json"), out, Options{})
	assert.Error(t, err)
}
