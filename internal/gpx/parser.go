package gpx

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/net/html/charset"
)

const (
	nsGPX10 = "http://www.topografix.com/GPX/1/0"
	nsGPX11 = "http://www.topografix.com/GPX/1/1"
	nsXSI   = "http://www.w3.org/2001/XMLSchema-instance"
)

// Parse reads and parses a GPX file, preserving extensions and namespaces.
func Parse(filename string) (*File, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	return ParseReader(file)
}

// ParseBytes parses an in-memory GPX document.
func ParseBytes(data []byte) (*File, error) {
	return ParseReader(bytes.NewReader(data))
}

// ParseReader parses GPX from an io.Reader. On failure no partial File is
// returned.
func ParseReader(r io.Reader) (*File, error) {
	decoder := xml.NewDecoder(r)
	decoder.CharsetReader = charset.NewReaderLabel

	var doc xmlGPX
	if err := decoder.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse GPX: %w", err)
	}

	return doc.toFile(), nil
}

func (doc *xmlGPX) toFile() *File {
	f := &File{
		Name:        doc.Name,
		Description: doc.Desc,
		Time:        parseTimeSafe(doc.Time),
		Extensions:  doc.Extensions,
	}
	f.Version, f.Creator, f.Attrs = splitRootAttrs(doc.Attrs)

	bounds := doc.Bounds
	if m := doc.Metadata; m != nil {
		if m.Name != "" {
			f.Name = m.Name
		}
		if m.Desc != "" {
			f.Description = m.Desc
		}
		if t := parseTimeSafe(m.Time); !t.IsZero() {
			f.Time = t
		}
		if m.Bounds != nil {
			bounds = m.Bounds
		}
	}

	declared, hasBounds := bounds.toBounds()

	f.ResetMetaData()
	for i := range doc.Tracks {
		t := doc.Tracks[i].toTrack()
		if t.Empty() {
			slog.Debug("dropping empty track", "index", i, "name", t.Name)
			continue
		}
		f.UpdateMetaData(t, !hasBounds)
		f.Tracks = append(f.Tracks, t)
	}
	if hasBounds {
		f.SetBounds(declared)
	}

	for i := range doc.Routes {
		f.Routes = append(f.Routes, doc.Routes[i].toRoute())
	}
	for i := range doc.Waypoints {
		f.Waypoints = append(f.Waypoints, doc.Waypoints[i].toWaypoint())
	}

	return f
}

// splitRootAttrs pulls version and creator out of the root attributes and
// flattens the rest to prefixed names. The decoder resolves prefixes to
// namespace URIs, which the encoder would not turn back into the original
// declarations.
func splitRootAttrs(attrs []xml.Attr) (version, creator string, rest []xml.Attr) {
	prefixes := map[string]string{nsXSI: "xsi"}
	for _, a := range attrs {
		if a.Name.Space == "xmlns" {
			prefixes[a.Value] = a.Name.Local
		}
	}

	for _, a := range attrs {
		switch {
		case a.Name.Space == "" && a.Name.Local == "version":
			version = a.Value
			continue
		case a.Name.Space == "" && a.Name.Local == "creator":
			creator = a.Value
			continue
		case a.Name.Space == "":
		case a.Name.Space == "xmlns":
			a.Name = xml.Name{Local: "xmlns:" + a.Name.Local}
		default:
			prefix, ok := prefixes[a.Name.Space]
			if !ok {
				prefix = a.Name.Space
			}
			a.Name = xml.Name{Local: prefix + ":" + a.Name.Local}
		}
		rest = append(rest, a)
	}
	return version, creator, rest
}

func (b *xmlBounds) toBounds() (Bounds, bool) {
	if b == nil {
		return Bounds{}, false
	}

	var out Bounds
	for _, f := range []struct {
		dst   *float64
		names []string
	}{
		{&out.MinLat, []string{"minlat", "min_lat", "minLat"}},
		{&out.MinLon, []string{"minlon", "min_lon", "minLon"}},
		{&out.MaxLat, []string{"maxlat", "max_lat", "maxLat"}},
		{&out.MaxLon, []string{"maxlon", "max_lon", "maxLon"}},
	} {
		v, ok := attrFloat(b.Attrs, f.names...)
		if !ok {
			return Bounds{}, false
		}
		*f.dst = v
	}
	return out, true
}

func attrFloat(attrs []xml.Attr, names ...string) (float64, bool) {
	for _, name := range names {
		for _, a := range attrs {
			if a.Name.Local != name {
				continue
			}
			v, err := strconv.ParseFloat(strings.TrimSpace(a.Value), 64)
			if err != nil {
				return 0, false
			}
			return v, true
		}
	}
	return 0, false
}

func (x *xmlTrack) toTrack() *Track {
	t := NewTrack(x.Name)
	t.Comment = x.Cmt
	t.Description = x.Desc
	t.Extensions = x.Extensions
	for i := range x.Segments {
		seg := NewSegment()
		seg.Extensions = x.Segments[i].Extensions
		for j := range x.Segments[i].Points {
			seg.AppendPoint(x.Segments[i].Points[j].toPoint())
		}
		t.AppendSegment(seg)
	}
	return t
}

func (x *xmlPoint) toPoint() *Point {
	p := NewPoint(x.Lat, x.Lon)
	p.Elevation = x.Elevation
	p.Time = parseTimeSafe(x.Time)
	p.Speed = x.Speed
	p.Extensions = x.Extensions
	return p
}

func (x *xmlRoute) toRoute() *Route {
	r := NewRoute(x.Name)
	for i := range x.Points {
		r.Points = append(r.Points, x.Points[i].toPoint())
	}
	return r
}

func (x *xmlWaypoint) toWaypoint() *Waypoint {
	w := NewWaypoint(x.Lat, x.Lon)
	w.Elevation = x.Elevation
	w.Time = parseTimeSafe(x.Time)
	w.Extensions = x.Extensions

	w.Name = x.Name
	w.Comment = x.Cmt
	w.Description = x.Desc
	w.Source = x.Src
	w.Symbol = x.Sym
	w.Type = x.Type
	w.Fix = x.Fix
	switch {
	case x.Link != nil && x.Link.Href != "":
		w.Link = x.Link.Href
	case x.Link != nil:
		w.Link = x.Link.Text
	default:
		w.Link = x.URL
	}

	w.MagVar = x.MagVar
	w.GeoidHeight = x.GeoidHeight
	w.Satellites = x.Sat
	w.HDOP = x.HDOP
	w.VDOP = x.VDOP
	w.PDOP = x.PDOP
	w.AgeOfDGPSData = x.AgeOfDGPSData
	w.DGPSID = x.DGPSID
	return w
}

// parseTimeSafe tries multiple timestamp formats for robust GPX parsing.
// Anything it cannot read is treated as no timestamp.
func parseTimeSafe(s string) time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}
	}
	layouts := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05.000Z07:00",
		"2006-01-02T15:04:05Z07:00",
		"2006-01-02T15:04:05.000Z",
		"2006-01-02T15:04:05Z",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05Z07:00",
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
