package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/couchcryptid/quake-map/internal/adapter/feed"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/observability"
)

type renderOptions struct {
	earthquakes string
	plates      string
	asYAML      bool
	at          string
	timeout     time.Duration
}

// snapshot is the rendered output: the map document plus one styled row per
// earthquake.
type snapshot struct {
	Map         mapview.Document `json:"map" yaml:"map"`
	Earthquakes []quakeRow       `json:"earthquakes" yaml:"earthquakes"`
}

type quakeRow struct {
	ID        string    `json:"id" yaml:"id"`
	Place     string    `json:"place" yaml:"place"`
	Time      time.Time `json:"time" yaml:"time"`
	Magnitude *float64  `json:"mag" yaml:"mag"`
	DepthKm   *float64  `json:"depth_km" yaml:"depth_km"`
	Radius    *float64  `json:"radius" yaml:"radius"`
	FillColor string    `json:"fill_color" yaml:"fill_color"`
	Popup     string    `json:"popup" yaml:"popup"`
}

func newRenderCmd() *cobra.Command {
	opts := renderOptions{}
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render the map document from feed files or URLs",
		Long: `Render decodes the earthquake feed (and optionally the plate boundary feed),
styles every event, and prints the resulting map document to stdout.

Sources may be local paths or http(s) URLs.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRender(cmd.Context(), opts, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&opts.earthquakes, "earthquakes", "e", "", "earthquake GeoJSON file or URL")
	cmd.Flags().StringVarP(&opts.plates, "plates", "p", "", "plate boundary GeoJSON file or URL")
	cmd.Flags().BoolVar(&opts.asYAML, "yaml", false, "print YAML instead of JSON")
	cmd.Flags().StringVar(&opts.at, "at", "", "fixed RFC3339 time for fetched_at stamps")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 10*time.Second, "timeout for URL sources")
	_ = cmd.MarkFlagRequired("earthquakes")

	return cmd
}

func runRender(ctx context.Context, opts renderOptions, out io.Writer) error {
	clock := clockwork.NewRealClock()
	if opts.at != "" {
		at, err := time.Parse(time.RFC3339, opts.at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		clock = clockwork.NewFakeClockAt(at)
	}

	src := newSources(opts)

	quakes, err := src.earthquakes(ctx)
	if err != nil {
		return err
	}

	state := mapview.NewState(clock)
	if err := state.SetEarthquakes(quakes); err != nil {
		return err
	}

	if opts.plates != "" {
		plates, err := src.plates(ctx)
		if err != nil {
			return err
		}
		if err := state.SetPlates(plates); err != nil {
			return err
		}
	}

	snap := snapshot{
		Map:         state.Document(),
		Earthquakes: make([]quakeRow, 0, len(quakes)),
	}
	for _, q := range quakes {
		snap.Earthquakes = append(snap.Earthquakes, newQuakeRow(q))
	}

	return encode(out, snap, opts.asYAML)
}

func newQuakeRow(f domain.EarthquakeFeature) quakeRow {
	style := domain.StyleFor(f)
	var magnitude *float64
	if f.Magnitude != nil {
		magnitude = finite(*f.Magnitude)
	}
	return quakeRow{
		ID:        f.ID,
		Place:     f.Place,
		Time:      f.Time(),
		Magnitude: magnitude,
		DepthKm:   finite(f.DepthKm),
		Radius:    finite(style.Radius),
		FillColor: style.FillColor,
		Popup:     domain.PopupContent(f),
	}
}

func finite(v float64) *float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return &v
}

func encode(out io.Writer, v any, asYAML bool) error {
	if asYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode json: %w", err)
	}
	return nil
}

// sources reads each feed from a local file, or through the feed client when
// the source is a URL.
type sources struct {
	opts   renderOptions
	client *feed.Client
}

func newSources(opts renderOptions) *sources {
	s := &sources{opts: opts}
	if isURL(opts.earthquakes) || isURL(opts.plates) {
		// One-shot runs have nowhere to scrape metrics from.
		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn}))
		s.client = feed.NewClient(opts.earthquakes, opts.plates, opts.timeout, observability.NewMetricsForTesting(), logger)
	}
	return s
}

func (s *sources) earthquakes(ctx context.Context) ([]domain.EarthquakeFeature, error) {
	if isURL(s.opts.earthquakes) {
		return s.client.FetchEarthquakes(ctx)
	}
	f, err := os.Open(s.opts.earthquakes)
	if err != nil {
		return nil, fmt.Errorf("open earthquakes: %w", err)
	}
	defer f.Close()
	return feed.DecodeEarthquakes(f)
}

func (s *sources) plates(ctx context.Context) (*geojson.FeatureCollection, error) {
	if isURL(s.opts.plates) {
		return s.client.FetchPlateBoundaries(ctx)
	}
	f, err := os.Open(s.opts.plates)
	if err != nil {
		return nil, fmt.Errorf("open plates: %w", err)
	}
	defer f.Close()
	return feed.DecodePlateBoundaries(f)
}

func isURL(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}
