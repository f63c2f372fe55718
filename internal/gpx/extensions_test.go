package gpx

import (
	"strings"
	"testing"
)

func TestParsePreservesExtensions(t *testing.T) {
	const gpxContent = `<?xml version="1.0" encoding="UTF-8"?>
<gpx version="1.1" creator="test" xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1">
	<trk>
		<trkseg>
			<trkpt lat="46.0" lon="7.0">
				<extensions>
					<gpxtpx:TrackPointExtension>
						<gpxtpx:hr>145</gpxtpx:hr>
					</gpxtpx:TrackPointExtension>
				</extensions>
			</trkpt>
		</trkseg>
	</trk>
</gpx>`

	gpxData, err := ParseReader(strings.NewReader(gpxContent))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	point := gpxData.Tracks[0].Points()[0]
	if len(point.Extensions) == 0 {
		t.Fatalf("expected extensions to be preserved")
	}

	// Ensure we can roundtrip without dropping the extensions block
	var buf strings.Builder
	if err := gpxData.WriteToWriter(&buf); err != nil {
		t.Fatalf("WriteToWriter failed: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "<gpxtpx:hr>145</gpxtpx:hr>") {
		t.Fatalf("expected TrackPointExtension to appear in marshalled GPX:\n%s", out)
	}

	if !strings.Contains(out, `xmlns:gpxtpx="http://www.garmin.com/xmlschemas/TrackPointExtension/v1"`) {
		t.Fatalf("expected gpxtpx namespace declaration to survive:\n%s", out)
	}

	reparsed, err := ParseReader(strings.NewReader(out))
	if err != nil {
		t.Fatalf("ParseReader on output failed: %v", err)
	}
	if string(reparsed.Tracks[0].Points()[0].Extensions) != string(point.Extensions) {
		t.Fatalf("extensions changed across round trip")
	}
}

func TestRootAttributesNormalized(t *testing.T) {
	const gpxContent = `<gpx version="1.1" creator="x"
		xmlns="http://www.topografix.com/GPX/1/1"
		xmlns:xsi="http://www.w3.org/2001/XMLSchema-instance"
		xsi:schemaLocation="http://www.topografix.com/GPX/1/1 http://www.topografix.com/GPX/1/1/gpx.xsd"/>`

	gpxData, err := ParseReader(strings.NewReader(gpxContent))
	if err != nil {
		t.Fatalf("ParseReader failed: %v", err)
	}

	names := make(map[string]bool)
	for _, a := range gpxData.Attrs {
		if a.Name.Space != "" {
			t.Errorf("expected flattened attribute name, got %+v", a.Name)
		}
		names[a.Name.Local] = true
	}
	for _, want := range []string{"xmlns", "xmlns:xsi", "xsi:schemaLocation"} {
		if !names[want] {
			t.Errorf("expected root attribute %s, got %v", want, gpxData.Attrs)
		}
	}

	var buf strings.Builder
	if err := gpxData.WriteToWriter(&buf); err != nil {
		t.Fatalf("WriteToWriter failed: %v", err)
	}
	if n := strings.Count(buf.String(), "xmlns:xsi="); n != 1 {
		t.Fatalf("expected one xmlns:xsi declaration, got %d:\n%s", n, buf.String())
	}
}
