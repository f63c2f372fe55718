package gpx

import (
	"fmt"
	"strings"
)

// Waypoint is a named point of interest owned directly by a File.
type Waypoint struct {
	Point

	Name        string
	Comment     string
	Description string
	Source      string
	Link        string
	Symbol      string
	Type        string
	Fix         string // none, 2d, 3d, dgps or pps

	MagVar        *float64
	GeoidHeight   *float64
	Satellites    *int
	HDOP          *float64
	VDOP          *float64
	PDOP          *float64
	AgeOfDGPSData *float64
	DGPSID        *int
}

// NewWaypoint creates a waypoint at the given position.
func NewWaypoint(lat, lon float64) *Waypoint {
	w := &Waypoint{}
	w.SetLat(lat)
	w.SetLon(lon)
	return w
}

func (w *Waypoint) String() string {
	var b strings.Builder
	b.WriteString("Waypoint\n")
	fmt.Fprintf(&b, "\tName: %s\n", w.Name)
	fmt.Fprintf(&b, "\tLatitude: %v\n", w.Lat())
	fmt.Fprintf(&b, "\tLongitude: %v\n", w.Lon())
	if w.Elevation != nil {
		fmt.Fprintf(&b, "\tElevation: %v\n", *w.Elevation)
	}
	if w.HasTime() {
		fmt.Fprintf(&b, "\tTime: %v\n", w.Time)
	}
	for _, f := range []struct{ name, val string }{
		{"cmt", w.Comment}, {"desc", w.Description}, {"src", w.Source},
		{"link", w.Link}, {"sym", w.Symbol}, {"type", w.Type}, {"fix", w.Fix},
	} {
		if f.val != "" {
			fmt.Fprintf(&b, "\t%s: %s\n", f.name, f.val)
		}
	}
	return b.String()
}
