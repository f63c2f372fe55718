package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/planbiir/gpxkit/internal/clean"
	"github.com/planbiir/gpxkit/internal/config"
	"github.com/planbiir/gpxkit/internal/geojson"
	"github.com/planbiir/gpxkit/internal/gpx"
	"github.com/planbiir/gpxkit/internal/logging"
	"github.com/planbiir/gpxkit/internal/magellan"
	"github.com/planbiir/gpxkit/internal/merge"
	"github.com/planbiir/gpxkit/internal/store"
)

const version = "gpxkit v0.3.0 - GPX track toolkit"

// errUsage means the command line was wrong; the usage text has already been
// printed.
var errUsage = errors.New("usage")

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type command struct {
	name    string
	summary string
	run     func(env *env, args []string) error
}

var commands = []command{
	{"stats", "Show distance, duration and elevation statistics", cmdStats},
	{"crop", "Keep only what lies inside a bounding box", cmdCrop},
	{"delete", "Remove everything inside a bounding box", cmdDelete},
	{"smooth", "Smooth track positions with a moving average", cmdSmooth},
	{"clean", "Remove GPS spikes and elevation noise", cmdClean},
	{"merge", "Fill recording gaps from a second device's track", cmdMerge},
	{"convert", "Convert GeoJSON or a Magellan track log to GPX", cmdConvert},
	{"import", "Save a GPX file in the track store", cmdImport},
	{"export", "Write a stored file back out as GPX", cmdExport},
	{"list", "List files in the track store", cmdList},
	{"query", "Find stored points by area and time", cmdQuery},
}

// env carries what every command needs once flags are parsed.
type env struct {
	ctx    context.Context
	cfg    *config.Config
	logger *slog.Logger
	stdout io.Writer
	stderr io.Writer
}

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) == 0 {
		usage(stderr)
		return 2
	}

	switch args[0] {
	case "version", "-version", "--version":
		fmt.Fprintln(stdout, version)
		fmt.Fprintln(stdout, "https://github.com/planbiir/gpxkit")
		return 0
	case "help", "-h", "-help", "--help":
		usage(stdout)
		return 0
	}

	var cmd *command
	for i := range commands {
		if commands[i].name == args[0] {
			cmd = &commands[i]
		}
	}
	if cmd == nil {
		fmt.Fprintf(stderr, "unknown command %q\n\n", args[0])
		usage(stderr)
		return 2
	}

	e := &env{ctx: context.Background(), stdout: stdout, stderr: stderr}
	if err := cmd.run(e, args[1:]); err != nil {
		if errors.Is(err, errUsage) || errors.Is(err, flag.ErrHelp) {
			return 2
		}
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func usage(w io.Writer) {
	fmt.Fprintf(w, "gpxkit - Read, analyse and rewrite GPX tracks\n\n")
	fmt.Fprintf(w, "usage: gpxkit <command> [options]\n\n")
	fmt.Fprintf(w, "commands:\n")
	for _, c := range commands {
		fmt.Fprintf(w, "  %-8s %s\n", c.name, c.summary)
	}
	fmt.Fprintf(w, "\nexamples:\n")
	fmt.Fprintf(w, "  gpxkit stats -i track.gpx\n")
	fmt.Fprintf(w, "  gpxkit clean -i track.gpx -stats\n")
	fmt.Fprintf(w, "  gpxkit crop -i \"My Activity.gpx\" -bounds 45.9,7.6,46.1,7.9\n")
	fmt.Fprintf(w, "  gpxkit convert -i ride.json -o ride.gpx\n\n")
	fmt.Fprintf(w, "run gpxkit <command> -h for command options\n")
}

// newFlags returns a flag set with the options every command shares.
func newFlags(e *env, name string) (*flag.FlagSet, *string) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(e.stderr)
	configPath := fs.String("config", "", "Config file (default: gpxkit.yaml in . or ~/.config/gpxkit)")
	return fs, configPath
}

// setup parses args, then loads config and installs the logger.
func (e *env) setup(fs *flag.FlagSet, configPath *string, args []string) error {
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	e.cfg = cfg
	e.logger = logging.SetupWriter(e.stderr, cfg.Log.Level, cfg.Log.Format)
	gpx.DefaultCreator = cfg.GPX.Creator
	return nil
}

func requireFlag(fs *flag.FlagSet, name, value string) error {
	if value == "" {
		fmt.Fprintf(fs.Output(), "missing required option -%s\n\n", name)
		fs.Usage()
		return errUsage
	}
	return nil
}

// outputName derives <input>_<suffix>.gpx when no output was given.
func outputName(input, output, suffix string) string {
	if output != "" {
		return output
	}
	ext := filepath.Ext(input)
	base := strings.TrimSuffix(input, ext)
	return base + "_" + suffix + ".gpx"
}

// parseBounds reads "minlat,minlon,maxlat,maxlon".
func parseBounds(s string) (gpx.Bounds, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return gpx.Bounds{}, fmt.Errorf("bounds must be minlat,minlon,maxlat,maxlon, got %q", s)
	}
	var v [4]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return gpx.Bounds{}, fmt.Errorf("invalid bounds value %q: %w", p, err)
		}
		v[i] = f
	}
	b := gpx.Bounds{MinLat: v[0], MinLon: v[1], MaxLat: v[2], MaxLon: v[3]}
	if b.Empty() {
		return gpx.Bounds{}, fmt.Errorf("bounds %q have min above max", s)
	}
	return b, nil
}

// Stats is the summary printed by the stats command.
type Stats struct {
	Name             string      `json:"name,omitempty"`
	Tracks           int         `json:"tracks"`
	Segments         int         `json:"segments"`
	Points           int         `json:"points"`
	Routes           int         `json:"routes"`
	Waypoints        int         `json:"waypoints"`
	Units            string      `json:"units"`
	Distance         float64     `json:"distance"`
	MovingDuration   string      `json:"moving_duration"`
	Duration         string      `json:"duration"`
	AverageSpeed     *float64    `json:"average_speed,omitempty"` // per hour
	LowestElevation  *float64    `json:"lowest_elevation,omitempty"`
	HighestElevation *float64    `json:"highest_elevation,omitempty"`
	Bounds           *gpx.Bounds `json:"bounds,omitempty"`
}

func computeStats(f *gpx.File, u gpx.Unit) Stats {
	st := Stats{
		Name:           f.Name,
		Tracks:         len(f.Tracks),
		Points:         f.PointCount(),
		Routes:         len(f.Routes),
		Waypoints:      len(f.Waypoints),
		Units:          u.String(),
		Distance:       f.Distance(u),
		MovingDuration: f.MovingDuration().String(),
		Duration:       f.Duration().String(),
	}
	for _, t := range f.Tracks {
		st.Segments += len(t.Segments())
	}
	if speed := f.AverageSpeed(u); !math.IsNaN(speed) {
		st.AverageSpeed = &speed
	}
	if lo := f.LowestPoint(); lo != nil {
		st.LowestElevation = lo.Elevation
	}
	if hi := f.HighestPoint(); hi != nil {
		st.HighestElevation = hi.Elevation
	}
	if b := f.Bounds(); !b.Empty() {
		st.Bounds = &b
	}
	return st
}

func printStats(w io.Writer, st Stats) {
	fmt.Fprintf(w, "\n📊 Track Statistics:\n")
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	if st.Name != "" {
		fmt.Fprintf(w, "🏷️  Name: %s\n", st.Name)
	}
	fmt.Fprintf(w, "📍 Points: %d in %d segments across %d tracks\n", st.Points, st.Segments, st.Tracks)
	fmt.Fprintf(w, "🧭 Routes: %d, Waypoints: %d\n", st.Routes, st.Waypoints)
	fmt.Fprintf(w, "📏 Distance: %.2f %s\n", st.Distance, st.Units)
	fmt.Fprintf(w, "⏱️  Moving time: %s (elapsed %s)\n", st.MovingDuration, st.Duration)
	if st.AverageSpeed != nil {
		fmt.Fprintf(w, "⚡ Average speed: %.2f %s/h\n", *st.AverageSpeed, st.Units)
	}
	if st.LowestElevation != nil && st.HighestElevation != nil {
		fmt.Fprintf(w, "⛰️  Elevation: %.1f → %.1f m\n", *st.LowestElevation, *st.HighestElevation)
	}
	if st.Bounds != nil {
		fmt.Fprintf(w, "🗺️  Bounds: %v\n", *st.Bounds)
	}
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}

func writeStats(w io.Writer, st Stats, asJSON bool) error {
	if !asJSON {
		printStats(w, st)
		return nil
	}
	jsonData, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal stats: %w", err)
	}
	fmt.Fprintln(w, string(jsonData))
	return nil
}

func cmdStats(e *env, args []string) error {
	fs, configPath := newFlags(e, "stats")
	input := fs.String("i", "", "Input GPX file")
	statsJSON := fs.Bool("json", false, "Output statistics as JSON")
	units := fs.String("units", "", "Distance units: km, m or mi (default from config)")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "i", *input); err != nil {
		return err
	}

	u := e.cfg.Unit()
	if *units != "" {
		var err error
		if u, err = gpx.ParseUnit(*units); err != nil {
			return err
		}
	}

	f, err := gpx.Parse(*input)
	if err != nil {
		return err
	}
	return writeStats(e.stdout, computeStats(f, u), *statsJSON)
}

func cmdCrop(e *env, args []string) error {
	return areaCommand(e, "crop", "cropped", args, (*gpx.File).Crop)
}

func cmdDelete(e *env, args []string) error {
	return areaCommand(e, "delete", "deleted", args, (*gpx.File).DeleteArea)
}

func areaCommand(e *env, name, suffix string, args []string, apply func(*gpx.File, gpx.Bounds)) error {
	fs, configPath := newFlags(e, name)
	input := fs.String("i", "", "Input GPX file")
	output := fs.String("o", "", "Output GPX file (default: <input>_"+suffix+".gpx)")
	area := fs.String("bounds", "", "Area as minlat,minlon,maxlat,maxlon")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "i", *input); err != nil {
		return err
	}
	if err := requireFlag(fs, "bounds", *area); err != nil {
		return err
	}

	b, err := parseBounds(*area)
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "📖 Reading GPX file: %s\n", *input)
	f, err := gpx.Parse(*input)
	if err != nil {
		return err
	}
	before := f.PointCount()

	apply(f, b)
	e.logger.Debug("area applied", "command", name, "bounds", b.String(), "before", before, "after", f.PointCount())

	out := outputName(*input, *output, suffix)
	fmt.Fprintf(e.stdout, "💾 Writing track: %s\n", out)
	if err := f.Write(out); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "✅ %d → %d points\n", before, f.PointCount())
	return nil
}

func cmdSmooth(e *env, args []string) error {
	fs, configPath := newFlags(e, "smooth")
	input := fs.String("i", "", "Input GPX file")
	output := fs.String("o", "", "Output GPX file (default: <input>_smoothed.gpx)")
	window := fs.Int("window", 0, "Seconds averaged either side of each point (default from config)")
	start := fs.Int("start", -1, "Start smoothing this many seconds into each segment")
	end := fs.Int("end", -1, "Stop smoothing this many seconds into each segment")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "i", *input); err != nil {
		return err
	}

	opts := gpx.SmoothOptions{Window: e.cfg.Smoothing.Window}
	if *window > 0 {
		opts.Window = *window
	}
	if *start >= 0 {
		opts.Start = *start
	}
	if *end >= 0 {
		opts.End = *end
	}

	fmt.Fprintf(e.stdout, "📖 Reading GPX file: %s\n", *input)
	f, err := gpx.Parse(*input)
	if err != nil {
		return err
	}
	before := f.Distance(e.cfg.Unit())

	if err := f.Smooth(opts); err != nil {
		return err
	}

	out := outputName(*input, *output, "smoothed")
	fmt.Fprintf(e.stdout, "💾 Writing smoothed track: %s\n", out)
	if err := f.Write(out); err != nil {
		return err
	}
	u := e.cfg.Unit()
	fmt.Fprintf(e.stdout, "✅ %.2f → %.2f %s\n", before, f.Distance(u), u)
	return nil
}

func cmdClean(e *env, args []string) error {
	fs, configPath := newFlags(e, "clean")
	input := fs.String("i", "", "Input GPX file")
	output := fs.String("o", "", "Output GPX file (default: <input>_cleaned.gpx)")
	maxSpeed := fs.Float64("max-speed", 0, "Maximum speed in m/s (auto-detect if 0)")
	dryRun := fs.Bool("dry-run", false, "Show statistics without writing output file")
	showStats := fs.Bool("stats", false, "Show detailed statistics")
	statsJSON := fs.Bool("stats-json", false, "Output statistics as JSON")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "i", *input); err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "📖 Reading GPX file: %s\n", *input)
	f, err := gpx.Parse(*input)
	if err != nil {
		return err
	}
	if f.PointCount() == 0 {
		return errors.New("no GPS points found in file")
	}
	fmt.Fprintf(e.stdout, "📊 Original track: %d points across %d tracks\n", f.PointCount(), len(f.Tracks))

	cfg := clean.DefaultConfig()
	if *maxSpeed > 0 {
		cfg.MaxSpeed = *maxSpeed
	}
	stats := clean.File(f, cfg)

	if *showStats || *statsJSON || *dryRun {
		if *statsJSON {
			jsonData, err := json.MarshalIndent(stats, "", "  ")
			if err != nil {
				return fmt.Errorf("failed to marshal stats: %w", err)
			}
			fmt.Fprintln(e.stdout, string(jsonData))
		} else {
			printCleanStats(e.stdout, stats)
		}
	}

	if *dryRun {
		fmt.Fprintf(e.stdout, "🔍 Dry run completed - no files written\n")
		return nil
	}

	out := outputName(*input, *output, "cleaned")
	fmt.Fprintf(e.stdout, "💾 Writing cleaned track: %s\n", out)
	if err := f.Write(out); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "✅ Track cleaned successfully!\n")
	fmt.Fprintf(e.stdout, "   %d → %d points (%.1f%% removed)\n", stats.OriginalPoints, stats.FinalPoints, stats.PointsPercent)
	fmt.Fprintf(e.stdout, "   %.1f → %.1f km\n", stats.OriginalDistance, stats.FinalDistance)
	return nil
}

func printCleanStats(w io.Writer, stats clean.Stats) {
	fmt.Fprintf(w, "\n📊 Cleaning Statistics:\n")
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
	if stats.ActivityType != "" {
		fmt.Fprintf(w, "🎯 Activity Type: %s\n", stats.ActivityType)
	}
	fmt.Fprintf(w, "📍 Points: %d → %d (%d removed, %.1f%%)\n",
		stats.OriginalPoints, stats.FinalPoints, stats.PointsRemoved, stats.PointsPercent)
	fmt.Fprintf(w, "📏 Distance: %.2f → %.2f km (%.2f km reduced)\n",
		stats.OriginalDistance, stats.FinalDistance, stats.DistanceReduced)
	fmt.Fprintf(w, "⚡ Speed Detection: P95=%.1f m/s, Max=%.1f m/s\n", stats.P95Speed, stats.DetectedMaxSpeed)
	if stats.SafetyOverrides > 0 {
		fmt.Fprintf(w, "⚠️  Safety override kept %d segments unfiltered\n", stats.SafetyOverrides)
	}
	fmt.Fprintf(w, "━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━━\n")
}

func cmdMerge(e *env, args []string) error {
	fs, configPath := newFlags(e, "merge")
	input := fs.String("i", "", "Primary GPX file, the one with gaps")
	with := fs.String("with", "", "Secondary GPX file recorded at the same time")
	output := fs.String("o", "", "Output GPX file (default: <input>_merged.gpx)")
	defaults := merge.DefaultConfig()
	gap := fs.Duration("gap", defaults.GapThreshold, "Shortest pause treated as a gap")
	maxDeviation := fs.Float64("max-deviation", defaults.MaxDeviationMeters, "Meters a filler point may stray from both gap ends, negative disables")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "i", *input); err != nil {
		return err
	}
	if err := requireFlag(fs, "with", *with); err != nil {
		return err
	}

	primary, err := gpx.Parse(*input)
	if err != nil {
		return err
	}
	secondary, err := gpx.Parse(*with)
	if err != nil {
		return err
	}

	stats, err := merge.Tracks(primary, secondary, merge.Config{GapThreshold: *gap, MaxDeviationMeters: *maxDeviation})
	if err != nil {
		return err
	}

	out := outputName(*input, *output, "merged")
	fmt.Fprintf(e.stdout, "🔗 %d gaps found, %d filled with %d points\n", stats.GapsDetected, stats.GapsFilled, stats.InsertedPoints)
	fmt.Fprintf(e.stdout, "💾 Writing merged track: %s\n", out)
	return primary.Write(out)
}

func cmdConvert(e *env, args []string) error {
	fs, configPath := newFlags(e, "convert")
	input := fs.String("i", "", "Input GeoJSON file or Magellan track log")
	output := fs.String("o", "", "Output GPX file (default: <input>.gpx)")
	from := fs.String("from", "", "Input format: geojson or magellan (default: detect)")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "i", *input); err != nil {
		return err
	}

	format := strings.ToLower(*from)
	if format == "" {
		detected, err := detectFormat(*input)
		if err != nil {
			return err
		}
		format = detected
		e.logger.Debug("detected input format", "format", format)
	}

	out := *output
	if out == "" {
		out = strings.TrimSuffix(*input, filepath.Ext(*input)) + ".gpx"
	}

	var (
		f   *gpx.File
		err error
	)
	switch format {
	case "geojson", "json":
		f, err = geojson.ConvertFile(*input, out, geojson.Options{})
	case "magellan":
		f, err = magellan.ConvertFile(*input, out)
	default:
		return fmt.Errorf("unknown input format %q", *from)
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(e.stdout, "✅ Converted %s → %s (%d tracks, %d points, %d waypoints)\n",
		*input, out, len(f.Tracks), f.PointCount(), len(f.Waypoints))
	return nil
}

func detectFormat(path string) (string, error) {
	file, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open file: %w", err)
	}
	defer func() {
		_ = file.Close()
	}()

	ok, err := magellan.IsMagellanFile(file)
	if err != nil {
		return "", err
	}
	if ok {
		return "magellan", nil
	}
	return "geojson", nil
}

func openStore(e *env) (*store.Store, error) {
	return store.Open(e.ctx, e.cfg.Store.Path, e.logger)
}

func cmdImport(e *env, args []string) error {
	fs, configPath := newFlags(e, "import")
	input := fs.String("i", "", "Input GPX file")
	name := fs.String("name", "", "Name to store the file under (default: base name of input)")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "i", *input); err != nil {
		return err
	}

	f, err := gpx.Parse(*input)
	if err != nil {
		return err
	}

	key := *name
	if key == "" {
		key = filepath.Base(*input)
	}

	s, err := openStore(e)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close()
	}()

	n, err := s.SaveFile(e.ctx, key, f)
	if err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "✅ Stored %s: %d tracks, %d points\n", key, len(f.Tracks), n)
	return nil
}

func cmdExport(e *env, args []string) error {
	fs, configPath := newFlags(e, "export")
	name := fs.String("name", "", "Stored file name")
	output := fs.String("o", "", "Output GPX file (default: the stored name)")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}
	if err := requireFlag(fs, "name", *name); err != nil {
		return err
	}

	s, err := openStore(e)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close()
	}()

	f, err := s.LoadFile(e.ctx, *name)
	if err != nil {
		return err
	}

	out := *output
	if out == "" {
		out = *name
	}
	if err := f.Write(out); err != nil {
		return err
	}
	fmt.Fprintf(e.stdout, "💾 Wrote %s (%d points)\n", out, f.PointCount())
	return nil
}

func cmdList(e *env, args []string) error {
	fs, configPath := newFlags(e, "list")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}

	s, err := openStore(e)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close()
	}()

	files, err := s.Files(e.ctx)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		fmt.Fprintln(e.stdout, "No stored files")
		return nil
	}

	u := e.cfg.Unit()
	for _, f := range files {
		fmt.Fprintf(e.stdout, "%-30s %3d tracks %7d points %9.2f %s  moving %v\n",
			f.FileName, f.Tracks, f.Points, u.FromKm(f.DistanceKm), u, f.MovingDuration)
	}
	return nil
}

func cmdQuery(e *env, args []string) error {
	fs, configPath := newFlags(e, "query")
	area := fs.String("bounds", "-90,-180,90,180", "Area as minlat,minlon,maxlat,maxlon")
	startFlag := fs.String("start", "", "Earliest time, RFC 3339")
	endFlag := fs.String("end", "", "Latest time, RFC 3339")
	asJSON := fs.Bool("json", false, "Output points as JSON")
	if err := e.setup(fs, configPath, args); err != nil {
		return err
	}

	b, err := parseBounds(*area)
	if err != nil {
		return err
	}
	start, err := parseOptionalTime(*startFlag)
	if err != nil {
		return err
	}
	end, err := parseOptionalTime(*endFlag)
	if err != nil {
		return err
	}

	s, err := openStore(e)
	if err != nil {
		return err
	}
	defer func() {
		_ = s.Close()
	}()

	pts, err := s.QueryPoints(e.ctx, b, start, end)
	if err != nil {
		return err
	}

	if *asJSON {
		type row struct {
			File      string     `json:"file"`
			Lat       float64    `json:"lat"`
			Lon       float64    `json:"lon"`
			Elevation *float64   `json:"ele,omitempty"`
			Time      *time.Time `json:"time,omitempty"`
		}
		rows := make([]row, 0, len(pts))
		for _, sp := range pts {
			r := row{File: sp.FileName, Lat: sp.Point.Lat(), Lon: sp.Point.Lon(), Elevation: sp.Point.Elevation}
			if sp.Point.HasTime() {
				tm := sp.Point.Time
				r.Time = &tm
			}
			rows = append(rows, r)
		}
		return json.NewEncoder(e.stdout).Encode(rows)
	}

	for _, sp := range pts {
		fmt.Fprintf(e.stdout, "%s\t%s\n", sp.FileName, sp.Point)
	}
	fmt.Fprintf(e.stdout, "%d points\n", len(pts))
	return nil
}

func parseOptionalTime(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return nil, fmt.Errorf("invalid time %q: %w", s, err)
	}
	return &t, nil
}
