// Package geojson converts GeoJSON feature collections into GPX documents.
//
// LineString features become the segments of a single track, each
// MultiLineString becomes a track of its own, and Point and MultiPoint
// coordinates become waypoints. GeoJSON coordinates are [lon, lat, ele].
package geojson

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/paulmach/orb"
	orbjson "github.com/paulmach/orb/geojson"
	"github.com/tidwall/gjson"

	"github.com/planbiir/gpxkit/internal/gpx"
)

// ErrNoFeatures is returned when the document has no features array.
var ErrNoFeatures = errors.New("geojson: document has no features array")

// Options holds optional per-feature hooks. Each runs after the default
// conversion of its feature and before the result is added to the document.
type Options struct {
	LineString      func(f *orbjson.Feature, seg *gpx.Segment)
	MultiLineString func(f *orbjson.Feature, t *gpx.Track)
	Point           func(f *orbjson.Feature, w *gpx.Waypoint)
	MultiPoint      func(f *orbjson.Feature, ws []*gpx.Waypoint)
}

// ConvertFile reads GeoJSON from in and writes the converted GPX to out.
func ConvertFile(in, out string, opts Options) (*gpx.File, error) {
	data, err := os.ReadFile(in)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	f, err := Convert(data, opts)
	if err != nil {
		return nil, err
	}

	if err := f.Write(out); err != nil {
		return nil, err
	}
	return f, nil
}

// ConvertReader reads the whole of r and converts it.
func ConvertReader(r io.Reader, opts Options) (*gpx.File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read GeoJSON: %w", err)
	}
	return Convert(data, opts)
}

// Convert turns a GeoJSON FeatureCollection into a GPX document.
func Convert(data []byte, opts Options) (*gpx.File, error) {
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("failed to parse GeoJSON: malformed JSON")
	}
	if !gjson.GetBytes(data, "features").IsArray() {
		return nil, ErrNoFeatures
	}

	fc, err := orbjson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse GeoJSON: %w", err)
	}

	lines := gpx.NewTrack("")
	var (
		multiTracks []*gpx.Track
		points      []*gpx.Waypoint
		multiPoints []*gpx.Waypoint
	)

	for i, feature := range fc.Features {
		// orb keeps only two dimensions, so elevation and coordTimes are read
		// from the raw document
		raw := gjson.GetBytes(data, fmt.Sprintf("features.%d", i))
		coords := raw.Get("geometry.coordinates")
		times := raw.Get("properties.coordTimes")
		name := feature.Properties.MustString("name", "")

		switch g := feature.Geometry.(type) {
		case orb.LineString:
			seg := toSegment(g, coords, times)
			if opts.LineString != nil {
				opts.LineString(feature, seg)
			}
			if lines.Name == "" {
				lines.Name = name
			}
			lines.AppendSegment(seg)

		case orb.MultiLineString:
			t := gpx.NewTrack(name)
			rawLines, rawTimes := coords.Array(), times.Array()
			for j, ls := range g {
				t.AppendSegment(toSegment(ls, at(rawLines, j), at(rawTimes, j)))
			}
			if opts.MultiLineString != nil {
				opts.MultiLineString(feature, t)
			}
			multiTracks = append(multiTracks, t)

		case orb.Point:
			w := toWaypoint(g, coords)
			w.Name = name
			if opts.Point != nil {
				opts.Point(feature, w)
			}
			points = append(points, w)

		case orb.MultiPoint:
			rawPoints := coords.Array()
			ws := make([]*gpx.Waypoint, 0, len(g))
			for j, p := range g {
				w := toWaypoint(p, at(rawPoints, j))
				w.Name = name
				ws = append(ws, w)
			}
			if opts.MultiPoint != nil {
				opts.MultiPoint(feature, ws)
			}
			multiPoints = append(multiPoints, ws...)
		}
	}

	tracks := append([]*gpx.Track{lines}, multiTracks...)
	return gpx.NewFile(tracks, nil, append(points, multiPoints...)), nil
}

func toSegment(ls orb.LineString, coords, times gjson.Result) *gpx.Segment {
	rawCoords, rawTimes := coords.Array(), times.Array()

	seg := gpx.NewSegment()
	for i, c := range ls {
		p := gpx.NewPoint(c.Lat(), c.Lon())
		p.Elevation = elevation(at(rawCoords, i))
		if ts := at(rawTimes, i); ts.Type == gjson.String {
			if t, err := time.Parse(time.RFC3339, ts.String()); err == nil {
				p.Time = t
			}
		}
		seg.AppendPoint(p)
	}
	return seg
}

func toWaypoint(p orb.Point, raw gjson.Result) *gpx.Waypoint {
	w := gpx.NewWaypoint(p.Lat(), p.Lon())
	w.Elevation = elevation(raw)
	return w
}

// elevation is the optional third coordinate.
func elevation(coord gjson.Result) *float64 {
	parts := coord.Array()
	if len(parts) < 3 || parts[2].Type != gjson.Number {
		return nil
	}
	return gpx.Float64(parts[2].Float())
}

func at(rs []gjson.Result, i int) gjson.Result {
	if i < len(rs) {
		return rs[i]
	}
	return gjson.Result{}
}
