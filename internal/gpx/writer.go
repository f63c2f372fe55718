package gpx

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// DefaultCreator is written when a File has no creator of its own.
var DefaultCreator = "gpxkit"

// Write saves the document to filename. An unnamed document takes the file's
// base name and an undated one is stamped with the current time.
func (f *File) Write(filename string) error {
	if f.Name == "" {
		f.Name = filepath.Base(filename)
	}
	if f.Time.IsZero() {
		f.Time = time.Now()
	}

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if err := f.WriteToWriter(file); err != nil {
		_ = file.Close()
		return err
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// WriteToWriter encodes the document as indented GPX. Version "1.0" puts the
// document fields on the root element, anything else produces GPX 1.1 with a
// metadata block.
func (f *File) WriteToWriter(w io.Writer) error {
	if _, err := io.WriteString(w, xml.Header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	encoder := xml.NewEncoder(w)
	encoder.Indent("", "  ")

	if err := encoder.Encode(f.toXML()); err != nil {
		return fmt.Errorf("failed to encode GPX: %w", err)
	}
	if err := encoder.Flush(); err != nil {
		return fmt.Errorf("failed to encode GPX: %w", err)
	}
	_, err := io.WriteString(w, "\n")
	return err
}

func (f *File) toXML() *xmlGPX {
	version := f.Version
	if version != "1.0" {
		version = "1.1"
	}

	doc := &xmlGPX{
		XMLName:    xml.Name{Local: "gpx"},
		Attrs:      rootAttrs(f, version),
		Extensions: f.Extensions,
	}

	var bounds *xmlBounds
	if !f.bounds.Empty() {
		bounds = fromBounds(f.bounds)
	}

	if version == "1.0" {
		doc.Name = f.Name
		doc.Desc = f.Description
		doc.Time = formatTime(f.Time)
		doc.Bounds = bounds
	} else {
		doc.Metadata = &xmlMetadata{
			Name:   f.Name,
			Desc:   f.Description,
			Time:   formatTime(f.Time),
			Bounds: bounds,
		}
	}

	for _, w := range f.Waypoints {
		doc.Waypoints = append(doc.Waypoints, fromWaypoint(w, version))
	}
	for _, r := range f.Routes {
		xr := xmlRoute{Name: r.Name}
		for _, p := range r.Points {
			xr.Points = append(xr.Points, fromPoint(p, version))
		}
		doc.Routes = append(doc.Routes, xr)
	}
	for _, t := range f.Tracks {
		xt := xmlTrack{Name: t.Name, Cmt: t.Comment, Desc: t.Description, Extensions: t.Extensions}
		for _, seg := range t.Segments() {
			xs := xmlSegment{Extensions: seg.Extensions}
			for _, p := range seg.Points() {
				xs.Points = append(xs.Points, fromPoint(p, version))
			}
			xt.Segments = append(xt.Segments, xs)
		}
		doc.Tracks = append(doc.Tracks, xt)
	}

	return doc
}

// rootAttrs puts version and creator first, then the preserved attributes,
// then whichever of the standard namespace declarations are still missing.
// A preserved default namespace that does not match version is dropped along
// with its schema location.
func rootAttrs(f *File, version string) []xml.Attr {
	creator := f.Creator
	if creator == "" {
		creator = DefaultCreator
	}
	attrs := []xml.Attr{
		{Name: xml.Name{Local: "version"}, Value: version},
		{Name: xml.Name{Local: "creator"}, Value: creator},
	}

	ns, schema := nsGPX11, nsGPX11+" http://www.topografix.com/GPX/1/1/gpx.xsd"
	if version == "1.0" {
		ns, schema = nsGPX10, nsGPX10+" http://www.topografix.com/GPX/1/0/gpx.xsd"
	}

	stale := false
	for _, a := range f.Attrs {
		if a.Name.Space == "" && a.Name.Local == "xmlns" && a.Value != ns {
			stale = true
		}
	}

	seen := make(map[string]bool)
	for _, a := range f.Attrs {
		if a.Name.Space != "" || a.Name.Local == "version" || a.Name.Local == "creator" {
			continue
		}
		if stale && (a.Name.Local == "xmlns" || a.Name.Local == "xsi:schemaLocation") {
			continue
		}
		seen[a.Name.Local] = true
		attrs = append(attrs, a)
	}

	for _, d := range []xml.Attr{
		{Name: xml.Name{Local: "xmlns"}, Value: ns},
		{Name: xml.Name{Local: "xmlns:xsi"}, Value: nsXSI},
		{Name: xml.Name{Local: "xsi:schemaLocation"}, Value: schema},
	} {
		if !seen[d.Name.Local] {
			attrs = append(attrs, d)
		}
	}
	return attrs
}

func fromBounds(b Bounds) *xmlBounds {
	return &xmlBounds{Attrs: []xml.Attr{
		{Name: xml.Name{Local: "minlat"}, Value: formatFloat(b.MinLat)},
		{Name: xml.Name{Local: "minlon"}, Value: formatFloat(b.MinLon)},
		{Name: xml.Name{Local: "maxlat"}, Value: formatFloat(b.MaxLat)},
		{Name: xml.Name{Local: "maxlon"}, Value: formatFloat(b.MaxLon)},
	}}
}

// fromPoint drops speed outside GPX 1.0, whose schema is the only one with
// a speed element on points.
func fromPoint(p *Point, version string) xmlPoint {
	x := xmlPoint{
		Lat:        p.lat,
		Lon:        p.lon,
		Elevation:  p.Elevation,
		Time:       formatTime(p.Time),
		Extensions: p.Extensions,
	}
	if version == "1.0" {
		x.Speed = p.Speed
	}
	return x
}

func fromWaypoint(w *Waypoint, version string) xmlWaypoint {
	x := xmlWaypoint{
		Lat:           w.lat,
		Lon:           w.lon,
		Elevation:     w.Elevation,
		Time:          formatTime(w.Time),
		MagVar:        w.MagVar,
		GeoidHeight:   w.GeoidHeight,
		Name:          w.Name,
		Cmt:           w.Comment,
		Desc:          w.Description,
		Src:           w.Source,
		Sym:           w.Symbol,
		Type:          w.Type,
		Fix:           w.Fix,
		Sat:           w.Satellites,
		HDOP:          w.HDOP,
		VDOP:          w.VDOP,
		PDOP:          w.PDOP,
		AgeOfDGPSData: w.AgeOfDGPSData,
		DGPSID:        w.DGPSID,
		Extensions:    w.Extensions,
	}
	if w.Link != "" {
		if version == "1.0" {
			x.URL = w.Link
		} else {
			x.Link = &xmlLink{Href: w.Link}
		}
	}
	return x
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
