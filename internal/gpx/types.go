package gpx

import (
	"encoding/xml"
)

// RawXML preserves nested extension blocks without re-parsing them.
// The inner XML bytes are stored verbatim so extensions emitted by other
// tools (Garmin, Strava, etc.) survive a round trip.
type RawXML []byte

func (r RawXML) MarshalXML(e *xml.Encoder, start xml.StartElement) error {
	if len(r) == 0 {
		return nil
	}

	type inner struct {
		Content string `xml:",innerxml"`
	}

	return e.EncodeElement(inner{Content: string(r)}, start)
}

func (r *RawXML) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	type inner struct {
		Content string `xml:",innerxml"`
	}

	var data inner
	if err := d.DecodeElement(&data, &start); err != nil {
		return err
	}

	if len(data.Content) == 0 {
		*r = nil
		return nil
	}

	*r = append((*r)[:0], data.Content...)
	return nil
}

// The xml* types mirror the GPX document on the wire. They are converted to
// and from the model types by the parser and the writer.

// xmlGPX is the root element. GPX 1.0 keeps name, desc, time and bounds on
// the root, GPX 1.1 moves them into metadata; both are read.
type xmlGPX struct {
	XMLName xml.Name   `xml:"gpx"`
	Attrs   []xml.Attr `xml:",any,attr"`

	Metadata *xmlMetadata `xml:"metadata"`

	Name   string     `xml:"name,omitempty"`
	Desc   string     `xml:"desc,omitempty"`
	Time   string     `xml:"time,omitempty"`
	Bounds *xmlBounds `xml:"bounds"`

	Waypoints  []xmlWaypoint `xml:"wpt"`
	Routes     []xmlRoute    `xml:"rte"`
	Tracks     []xmlTrack    `xml:"trk"`
	Extensions RawXML        `xml:"extensions,omitempty"`
}

type xmlMetadata struct {
	Name       string     `xml:"name,omitempty"`
	Desc       string     `xml:"desc,omitempty"`
	Time       string     `xml:"time,omitempty"`
	Bounds     *xmlBounds `xml:"bounds"`
	Extensions RawXML     `xml:"extensions,omitempty"`
}

// xmlBounds keeps every attribute so the min_lat and minLat spellings some
// tools emit can be read alongside minlat.
type xmlBounds struct {
	Attrs []xml.Attr `xml:",any,attr"`
}

type xmlTrack struct {
	Name       string       `xml:"name,omitempty"`
	Cmt        string       `xml:"cmt,omitempty"`
	Desc       string       `xml:"desc,omitempty"`
	Segments   []xmlSegment `xml:"trkseg"`
	Extensions RawXML       `xml:"extensions,omitempty"`
}

type xmlSegment struct {
	Points     []xmlPoint `xml:"trkpt"`
	Extensions RawXML     `xml:"extensions,omitempty"`
}

// xmlPoint is used for both trkpt and rtept.
type xmlPoint struct {
	Lat        float64  `xml:"lat,attr"`
	Lon        float64  `xml:"lon,attr"`
	Elevation  *float64 `xml:"ele,omitempty"`
	Time       string   `xml:"time,omitempty"`
	Speed      *float64 `xml:"speed,omitempty"`
	Extensions RawXML   `xml:"extensions,omitempty"`
}

type xmlRoute struct {
	Name   string     `xml:"name,omitempty"`
	Points []xmlPoint `xml:"rtept"`
}

type xmlLink struct {
	Href string `xml:"href,attr,omitempty"`
	Text string `xml:"text,omitempty"`
}

type xmlWaypoint struct {
	Lat           float64  `xml:"lat,attr"`
	Lon           float64  `xml:"lon,attr"`
	Elevation     *float64 `xml:"ele,omitempty"`
	Time          string   `xml:"time,omitempty"`
	MagVar        *float64 `xml:"magvar,omitempty"`
	GeoidHeight   *float64 `xml:"geoidheight,omitempty"`
	Name          string   `xml:"name,omitempty"`
	Cmt           string   `xml:"cmt,omitempty"`
	Desc          string   `xml:"desc,omitempty"`
	Src           string   `xml:"src,omitempty"`
	Link          *xmlLink `xml:"link"`
	URL           string   `xml:"url,omitempty"` // GPX 1.0
	Sym           string   `xml:"sym,omitempty"`
	Type          string   `xml:"type,omitempty"`
	Fix           string   `xml:"fix,omitempty"`
	Sat           *int     `xml:"sat,omitempty"`
	HDOP          *float64 `xml:"hdop,omitempty"`
	VDOP          *float64 `xml:"vdop,omitempty"`
	PDOP          *float64 `xml:"pdop,omitempty"`
	AgeOfDGPSData *float64 `xml:"ageofdgpsdata,omitempty"`
	DGPSID        *int     `xml:"dgpsid,omitempty"`
	Extensions    RawXML   `xml:"extensions,omitempty"`
}
