package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/planbiir/gpxkit/internal/gpx"
)

// FileSummary describes one stored document.
type FileSummary struct {
	FileName       string
	Tracks         int
	Points         int
	DistanceKm     float64
	MovingDuration time.Duration
	SavedAt        time.Time
}

// StoredPoint is a track point returned by QueryPoints.
type StoredPoint struct {
	FileName string
	TrackID  int64
	Point    *gpx.Point
}

// SaveFile stores every track of f under fileName, replacing whatever was
// stored under that name before. It returns the number of points written.
func (s *Store) SaveFile(ctx context.Context, fileName string, f *gpx.File) (saved int, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = deleteFile(ctx, tx, fileName); err != nil {
		return 0, err
	}

	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO track_points (track_id, segment_idx, point_idx, lat, lon, ele, time_ns) VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	now := time.Now().UnixNano()
	for trackIdx, t := range f.Tracks {
		res, err := tx.ExecContext(ctx,
			`INSERT INTO tracks (file_name, track_idx, name, description, distance_km, moving_ns, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			fileName, trackIdx, t.Name, t.Description, t.Distance(), int64(t.MovingDuration()), now)
		if err != nil {
			return 0, fmt.Errorf("failed to insert track: %w", err)
		}
		trackID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to insert track: %w", err)
		}

		for segIdx, seg := range t.Segments() {
			for ptIdx, p := range seg.Points() {
				var ele, ts any
				if p.Elevation != nil {
					ele = *p.Elevation
				}
				if p.HasTime() {
					ts = p.Time.UnixNano()
				}
				if _, err := stmt.ExecContext(ctx, trackID, segIdx, ptIdx, p.Lat(), p.Lon(), ele, ts); err != nil {
					return 0, fmt.Errorf("failed to insert point: %w", err)
				}
				saved++
			}
		}
	}

	if err = tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	s.logger.Info("file saved", "file", fileName, "tracks", len(f.Tracks), "points", saved)
	return saved, nil
}

// DeleteFile removes every track stored under fileName.
func (s *Store) DeleteFile(ctx context.Context, fileName string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	if err := deleteFile(ctx, tx, fileName); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

func deleteFile(ctx context.Context, tx *sql.Tx, fileName string) error {
	if _, err := tx.ExecContext(ctx,
		`DELETE FROM track_points WHERE track_id IN (SELECT id FROM tracks WHERE file_name = ?)`, fileName); err != nil {
		return fmt.Errorf("failed to delete points: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM tracks WHERE file_name = ?`, fileName); err != nil {
		return fmt.Errorf("failed to delete tracks: %w", err)
	}
	return nil
}

// LoadFile rebuilds the document stored under fileName. Metrics are
// recomputed from the points.
func (s *Store) LoadFile(ctx context.Context, fileName string) (*gpx.File, error) {
	type trackRow struct {
		id         int64
		name, desc string
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, name, description FROM tracks WHERE file_name = ? ORDER BY track_idx`, fileName)
	if err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	var trackRows []trackRow
	for rows.Next() {
		var r trackRow
		if err := rows.Scan(&r.id, &r.name, &r.desc); err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("failed to scan track: %w", err)
		}
		trackRows = append(trackRows, r)
	}
	_ = rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query tracks: %w", err)
	}
	if len(trackRows) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, fileName)
	}

	tracks := make([]*gpx.Track, 0, len(trackRows))
	for _, r := range trackRows {
		t, err := s.loadTrack(ctx, r.id)
		if err != nil {
			return nil, err
		}
		t.Name = r.name
		t.Description = r.desc
		tracks = append(tracks, t)
	}

	f := gpx.NewFile(tracks, nil, nil)
	f.Name = fileName
	return f, nil
}

func (s *Store) loadTrack(ctx context.Context, trackID int64) (*gpx.Track, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT segment_idx, lat, lon, ele, time_ns FROM track_points WHERE track_id = ? ORDER BY segment_idx, point_idx`, trackID)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	t := gpx.NewTrack("")
	var seg *gpx.Segment
	lastIdx := -1
	for rows.Next() {
		var segIdx int
		p, err := scanPoint(rows, &segIdx)
		if err != nil {
			return nil, err
		}
		if segIdx != lastIdx {
			t.AppendSegment(seg)
			seg = gpx.NewSegment()
			lastIdx = segIdx
		}
		seg.AppendPoint(p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	t.AppendSegment(seg)
	return t, nil
}

// Files lists every stored document by name.
func (s *Store) Files(ctx context.Context) ([]FileSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT t.file_name,
		       COUNT(*),
		       (SELECT COUNT(*) FROM track_points p JOIN tracks t2 ON p.track_id = t2.id WHERE t2.file_name = t.file_name),
		       SUM(t.distance_km),
		       SUM(t.moving_ns),
		       MAX(t.created_at)
		FROM tracks t
		GROUP BY t.file_name
		ORDER BY t.file_name`)
	if err != nil {
		return nil, fmt.Errorf("failed to list files: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var files []FileSummary
	for rows.Next() {
		var (
			fs              FileSummary
			moving, savedAt int64
		)
		if err := rows.Scan(&fs.FileName, &fs.Tracks, &fs.Points, &fs.DistanceKm, &moving, &savedAt); err != nil {
			return nil, fmt.Errorf("failed to scan file: %w", err)
		}
		fs.MovingDuration = time.Duration(moving)
		fs.SavedAt = time.Unix(0, savedAt).UTC()
		files = append(files, fs)
	}
	return files, rows.Err()
}

// QueryPoints returns the stored points inside area, optionally limited to a
// time range. Points without a timestamp never match a time range.
func (s *Store) QueryPoints(ctx context.Context, area gpx.Bounds, start, end *time.Time) ([]StoredPoint, error) {
	query := `SELECT t.file_name, p.track_id, p.lat, p.lon, p.ele, p.time_ns
		FROM track_points p JOIN tracks t ON p.track_id = t.id
		WHERE p.lat >= ? AND p.lat <= ? AND p.lon >= ? AND p.lon <= ?`
	args := []any{area.MinLat, area.MaxLat, area.MinLon, area.MaxLon}

	if start != nil {
		query += " AND p.time_ns >= ?"
		args = append(args, start.UnixNano())
	}
	if end != nil {
		query += " AND p.time_ns <= ?"
		args = append(args, end.UnixNano())
	}

	query += " ORDER BY p.time_ns, p.track_id, p.segment_idx, p.point_idx"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query points: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var points []StoredPoint
	for rows.Next() {
		var sp StoredPoint
		p, err := scanPoint(rows, &sp.FileName, &sp.TrackID)
		if err != nil {
			return nil, err
		}
		sp.Point = p
		points = append(points, sp)
	}
	return points, rows.Err()
}

// scanPoint reads the trailing lat, lon, ele, time_ns columns after any
// leading destinations.
func scanPoint(rows *sql.Rows, lead ...any) (*gpx.Point, error) {
	var (
		lat, lon float64
		ele      sql.NullFloat64
		ts       sql.NullInt64
	)
	dest := append(lead, &lat, &lon, &ele, &ts)
	if err := rows.Scan(dest...); err != nil {
		return nil, fmt.Errorf("failed to scan point: %w", err)
	}

	p := gpx.NewPoint(lat, lon)
	if ele.Valid {
		p.Elevation = gpx.Float64(ele.Float64)
	}
	if ts.Valid {
		p.Time = time.Unix(0, ts.Int64).UTC()
	}
	return p, nil
}
