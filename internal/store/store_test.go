package store

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/planbiir/gpxkit/internal/gpx"
)

var t0 = time.Date(2025, 7, 12, 7, 0, 0, 0, time.UTC)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "nested", "gpxkit.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = s.Close()
	})
	return s
}

// sampleFile has two tracks; the first has two segments and one point
// without elevation or time.
func sampleFile() *gpx.File {
	mk := func(lat float64, offset time.Duration, ele float64) *gpx.Point {
		p := gpx.NewPoint(lat, 7)
		p.Time = t0.Add(offset)
		p.Elevation = gpx.Float64(ele)
		return p
	}

	bare := gpx.NewPoint(46.004, 7)

	a := gpx.NewTrack("morning",
		gpx.NewSegment(mk(46.000, 0, 1000), mk(46.001, time.Minute, 1010)),
		gpx.NewSegment(mk(46.002, 10*time.Minute, 1020), mk(46.003, 11*time.Minute, 1030), bare),
	)
	a.Description = "first"
	b := gpx.NewTrack("evening", gpx.NewSegment(mk(47.000, 10*time.Hour, 500), mk(47.001, 10*time.Hour+time.Minute, 505)))
	return gpx.NewFile([]*gpx.Track{a, b}, nil, nil)
}

func TestOpenTwice(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gpxkit.db")

	s, err := Open(context.Background(), path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())

	// migrations already applied
	s, err = Open(context.Background(), path, nil)
	require.NoError(t, err)
	require.NoError(t, s.Close())
}

func TestSaveAndLoadFile(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	orig := sampleFile()

	n, err := s.SaveFile(ctx, "day.gpx", orig)
	require.NoError(t, err)
	assert.Equal(t, 7, n)

	loaded, err := s.LoadFile(ctx, "day.gpx")
	require.NoError(t, err)

	assert.Equal(t, "day.gpx", loaded.Name)
	require.Len(t, loaded.Tracks, 2)
	assert.Equal(t, "morning", loaded.Tracks[0].Name)
	assert.Equal(t, "first", loaded.Tracks[0].Description)
	assert.Equal(t, "evening", loaded.Tracks[1].Name)
	assert.Len(t, loaded.Tracks[0].Segments(), 2)
	assert.Equal(t, orig.PointCount(), loaded.PointCount())
	assert.InDelta(t, orig.Distance(gpx.Kilometers), loaded.Distance(gpx.Kilometers), 1e-12)
	assert.Equal(t, orig.MovingDuration(), loaded.MovingDuration())

	bare := loaded.Tracks[0].Segments()[1].Points()[2]
	assert.Nil(t, bare.Elevation)
	assert.False(t, bare.HasTime())

	first := loaded.Tracks[0].Points()[0]
	assert.True(t, first.Time.Equal(t0))
	assert.Equal(t, 1000.0, *first.Elevation)
}

func TestSaveFileReplaces(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.SaveFile(ctx, "day.gpx", sampleFile())
	require.NoError(t, err)

	smaller := gpx.NewFile([]*gpx.Track{gpx.NewTrack("only", gpx.NewSegment(gpx.NewPoint(1, 1)))}, nil, nil)
	n, err := s.SaveFile(ctx, "day.gpx", smaller)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	loaded, err := s.LoadFile(ctx, "day.gpx")
	require.NoError(t, err)
	require.Len(t, loaded.Tracks, 1)
	assert.Equal(t, "only", loaded.Tracks[0].Name)
}

func TestLoadFileNotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.LoadFile(context.Background(), "nope.gpx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFilesAndDelete(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	f := sampleFile()

	_, err := s.SaveFile(ctx, "b.gpx", f)
	require.NoError(t, err)
	_, err = s.SaveFile(ctx, "a.gpx", gpx.NewFile([]*gpx.Track{gpx.NewTrack("x", gpx.NewSegment(gpx.NewPoint(1, 1)))}, nil, nil))
	require.NoError(t, err)

	files, err := s.Files(ctx)
	require.NoError(t, err)
	require.Len(t, files, 2)

	assert.Equal(t, "a.gpx", files[0].FileName)
	assert.Equal(t, 1, files[0].Points)
	assert.Equal(t, "b.gpx", files[1].FileName)
	assert.Equal(t, 2, files[1].Tracks)
	assert.Equal(t, 7, files[1].Points)
	assert.InDelta(t, f.Distance(gpx.Kilometers), files[1].DistanceKm, 1e-9)
	assert.Equal(t, f.MovingDuration(), files[1].MovingDuration)
	assert.False(t, files[1].SavedAt.IsZero())

	require.NoError(t, s.DeleteFile(ctx, "b.gpx"))
	files, err = s.Files(ctx)
	require.NoError(t, err)
	assert.Len(t, files, 1)

	_, err = s.LoadFile(ctx, "b.gpx")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueryPoints(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.SaveFile(ctx, "day.gpx", sampleFile())
	require.NoError(t, err)

	all := gpx.Bounds{MinLat: 45, MaxLat: 48, MinLon: 6, MaxLon: 8}
	pts, err := s.QueryPoints(ctx, all, nil, nil)
	require.NoError(t, err)
	assert.Len(t, pts, 7)

	// the morning track only
	morning := gpx.Bounds{MinLat: 45.9, MaxLat: 46.0025, MinLon: 6, MaxLon: 8}
	pts, err = s.QueryPoints(ctx, morning, nil, nil)
	require.NoError(t, err)
	require.Len(t, pts, 3)
	assert.Equal(t, "day.gpx", pts[0].FileName)
	assert.Equal(t, 46.0, pts[0].Point.Lat())
	assert.Equal(t, pts[0].TrackID, pts[2].TrackID)

	start := t0.Add(30 * time.Second)
	end := t0.Add(11 * time.Minute)
	pts, err = s.QueryPoints(ctx, all, &start, &end)
	require.NoError(t, err)
	require.Len(t, pts, 3, "untimed point never matches a range")
	assert.True(t, pts[0].Point.Time.Equal(t0.Add(time.Minute)))
	assert.True(t, pts[2].Point.Time.Equal(end))

	pts, err = s.QueryPoints(ctx, all, nil, &start)
	require.NoError(t, err)
	assert.Len(t, pts, 1)
}
