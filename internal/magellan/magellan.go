// Package magellan imports Magellan track logs, which are NMEA style CSV
// files of $PMGNTRK sentences:
//
//	$PMGNTRK,llll.ll,a,yyyyy.yy,a,xxxxx,a,hhmmss.ss,A,c----c,ddmmyy*hh
package magellan

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/planbiir/gpxkit/internal/gpx"
)

const sentence = "$PMGNTRK"

// field positions within a $PMGNTRK row
const (
	fieldLat = iota + 1
	fieldLatHemi
	fieldLon
	fieldLonHemi
	fieldEle
	fieldEleUnits
	fieldTime
	fieldStatus
	fieldName
	fieldDate
	minFields
)

const feetToMeters = 0.3048

// sniffLines is how many lines IsMagellanFile looks at before giving up.
const sniffLines = 10

// ConvertFile reads the log at in and writes it as GPX to out.
func ConvertFile(in, out string) (*gpx.File, error) {
	file, err := os.Open(in)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	f, err := Convert(file)
	if err != nil {
		return nil, err
	}
	if err := f.Write(out); err != nil {
		return nil, err
	}
	return f, nil
}

// Convert reads every valid fix in r into a document with one track of one
// segment. Rows that are too short, flagged V (invalid) or carry unreadable
// numbers are skipped.
func Convert(r io.Reader) (*gpx.File, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	seg := gpx.NewSegment()
	skipped := 0
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read track log: %w", err)
		}

		p, ok := parseRow(row)
		if !ok {
			skipped++
			continue
		}
		seg.AppendPoint(p)
	}
	if skipped > 0 {
		slog.Debug("skipped track log rows", "skipped", skipped, "kept", seg.Len())
	}

	return gpx.NewFile([]*gpx.Track{gpx.NewTrack("", seg)}, nil, nil), nil
}

func parseRow(row []string) (*gpx.Point, bool) {
	if len(row) < minFields || row[0] != sentence || row[fieldStatus] == "V" {
		return nil, false
	}

	lat, ok := parseCoord(row[fieldLat], 2)
	if !ok {
		return nil, false
	}
	if row[fieldLatHemi] == "S" {
		lat = -lat
	}

	lon, ok := parseCoord(row[fieldLon], 3)
	if !ok {
		return nil, false
	}
	if row[fieldLonHemi] == "W" {
		lon = -lon
	}

	ele, err := strconv.ParseFloat(row[fieldEle], 64)
	if err != nil {
		return nil, false
	}
	if row[fieldEleUnits] == "F" {
		ele *= feetToMeters
	}

	ts, ok := parseTimestamp(row[fieldTime], row[fieldDate])
	if !ok {
		return nil, false
	}

	p := gpx.NewPoint(lat, lon)
	p.Elevation = gpx.Float64(ele)
	p.Time = ts
	return p, true
}

// parseCoord reads degrees and decimal minutes packed as d..dmm.mmmm, with
// the given number of degree digits.
func parseCoord(s string, degDigits int) (float64, bool) {
	if len(s) <= degDigits {
		return 0, false
	}
	deg, err := strconv.ParseFloat(s[:degDigits], 64)
	if err != nil {
		return 0, false
	}
	minutes, err := strconv.ParseFloat(s[degDigits:], 64)
	if err != nil {
		return 0, false
	}
	return deg + minutes/60, true
}

// parseTimestamp combines hhmmss[.ss] with ddmmyy, ignoring any trailing
// checksum on the date. Two digit years are 20yy.
func parseTimestamp(hms, dmy string) (time.Time, bool) {
	if len(hms) < 6 || len(dmy) < 6 {
		return time.Time{}, false
	}
	var n [6]int
	for i, part := range []string{hms[0:2], hms[2:4], hms[4:6], dmy[0:2], dmy[2:4], dmy[4:6]} {
		v, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, false
		}
		n[i] = v
	}
	return time.Date(2000+n[5], time.Month(n[4]), n[3], n[0], n[1], n[2], 0, time.UTC), true
}

// IsMagellanFile reports whether r looks like a Magellan track log: a
// $PMGNTRK line within the first lines, before any XML declaration.
func IsMagellanFile(r io.Reader) (bool, error) {
	scanner := bufio.NewScanner(r)
	for i := 0; i < sniffLines && scanner.Scan(); i++ {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, sentence):
			return true, nil
		case strings.Contains(line, "<?xml"):
			return false, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return false, fmt.Errorf("failed to read file: %w", err)
	}
	return false, nil
}
