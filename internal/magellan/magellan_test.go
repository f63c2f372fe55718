package magellan

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gpxkit/internal/gpx"
)

func TestConvert(t *testing.T) {
	in, err := os.Open("testdata/track.log")
	require.NoError(t, err)
	defer func() {
		_ = in.Close()
	}()

	f, err := Convert(in)
	require.NoError(t, err)

	require.Len(t, f.Tracks, 1)
	require.Len(t, f.Tracks[0].Segments(), 1)

	// the V row, the short row and the command rows are skipped
	pts := f.Tracks[0].Points()
	require.Len(t, pts, 3)

	first := pts[0]
	assert.InDelta(t, 47.5927233, first.Lat(), 1e-7)
	assert.InDelta(t, -122.2745, first.Lon(), 1e-9)
	require.NotNil(t, first.Elevation)
	assert.InDelta(t, 15.8496, *first.Elevation, 1e-9)
	assert.Equal(t, time.Date(2006, 4, 2, 21, 12, 54, 0, time.UTC), first.Time)

	// metres are taken as is
	assert.Equal(t, 17.0, *pts[2].Elevation)

	assert.Equal(t, 30*time.Second, f.MovingDuration())
	assert.Greater(t, f.Distance(gpx.Meters), 0.0)
}

func TestConvertHemispheres(t *testing.T) {
	log := "$PMGNTRK,3352.0000,S,15112.0000,E,00010,M,000000,A,,311299\n"

	f, err := Convert(strings.NewReader(log))
	require.NoError(t, err)

	p := f.Tracks[0].Points()[0]
	assert.InDelta(t, -33.8666667, p.Lat(), 1e-7)
	assert.InDelta(t, 151.2, p.Lon(), 1e-9)
	assert.Equal(t, time.Date(2099, 12, 31, 0, 0, 0, 0, time.UTC), p.Time)
}

func TestConvertNothingValid(t *testing.T) {
	f, err := Convert(strings.NewReader("$PMGNTRK,4735.5634,N,12216.4700,W,00052,F,211254.49,V,,020406*6A\n"))
	require.NoError(t, err)
	assert.Empty(t, f.Tracks)
}

func TestConvertFile(t *testing.T) {
	out := filepath.Join(t.TempDir(), "track.gpx")

	_, err := ConvertFile("testdata/track.log", out)
	require.NoError(t, err)

	parsed, err := gpx.Parse(out)
	require.NoError(t, err)
	assert.Equal(t, 3, parsed.PointCount())
	assert.Equal(t, "track.gpx", parsed.Name)

	_, err = ConvertFile("testdata/missing.log", out)
	assert.Error(t, err)
}

func TestIsMagellanFile(t *testing.T) {
	in, err := os.Open("testdata/track.log")
	require.NoError(t, err)
	defer func() {
		_ = in.Close()
	}()

	ok, err := IsMagellanFile(in)
	require.NoError(t, err)
	assert.True(t, ok)

	for name, content := range map[string]string{
		"gpx":   `<?xml version="1.0"?>` + "\n<gpx>\n$PMGNTRK,\n",
		"empty": "",
		"late":  strings.Repeat("noise\n", 10) + "$PMGNTRK,4735.5634\n",
	} {
		ok, err := IsMagellanFile(strings.NewReader(content))
		require.NoError(t, err, name)
		assert.False(t, ok, name)
	}
}
