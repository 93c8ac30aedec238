package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/jonboulle/clockwork"
	"github.com/paulmach/orb/geojson"
	"golang.org/x/sync/errgroup"
)

// Source fetches the two upstream feeds.
type Source interface {
	FetchEarthquakes(ctx context.Context) ([]domain.EarthquakeFeature, error)
	FetchPlateBoundaries(ctx context.Context) (*geojson.FeatureCollection, error)
}

// LayerStore receives rendered layers and fetch failures.
type LayerStore interface {
	SetEarthquakes(features []domain.EarthquakeFeature) error
	SetPlates(fc *geojson.FeatureCollection) error
	SetError(layer string, err error)
	Loaded() bool
}

// Publisher forwards styled earthquakes downstream.
type Publisher interface {
	PublishBatch(ctx context.Context, events []domain.StyledEarthquake) error
}

// Refresher fetches both feeds and renders them into the store, once per
// interval. A failed fetch is recorded on its layer and retried only at the
// next scheduled refresh.
type Refresher struct {
	source    Source
	store     LayerStore
	publisher Publisher
	logger    *slog.Logger
	metrics   *observability.Metrics
	clock     clockwork.Clock
	interval  time.Duration
}

// New creates a Refresher. Pass a nil publisher to disable publishing.
func New(src Source, store LayerStore, pub Publisher, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock, interval time.Duration) *Refresher {
	return &Refresher{
		source:    src,
		store:     store,
		publisher: pub,
		logger:    logger,
		metrics:   metrics,
		clock:     clock,
		interval:  interval,
	}
}

// CheckReadiness returns nil once at least one layer has been loaded,
// or an error describing why the service is not yet ready.
func (r *Refresher) CheckReadiness(_ context.Context) error {
	if !r.store.Loaded() {
		return errors.New("no map layer has been loaded yet")
	}
	return nil
}

// Run refreshes immediately and then on every interval until the context is cancelled.
func (r *Refresher) Run(ctx context.Context) error {
	r.logger.Info("refresher started", "interval", r.interval)
	r.metrics.RefreshRunning.Set(1)
	defer r.metrics.RefreshRunning.Set(0)

	ticker := r.clock.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		if err := r.Refresh(ctx); err != nil && ctx.Err() == nil {
			r.logger.Warn("refresh incomplete", "error", err)
		}

		select {
		case <-ctx.Done():
			r.logger.Info("refresher stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// Refresh fetches both feeds concurrently. Each feed writes only its own
// layer, so one failing never holds back or discards the other. The returned
// error joins the per-feed failures.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := r.clock.Now()

	var (
		g    errgroup.Group
		errs [2]error
	)
	g.Go(func() error {
		errs[0] = r.refreshEarthquakes(ctx)
		return errs[0]
	})
	g.Go(func() error {
		errs[1] = r.refreshPlates(ctx)
		return errs[1]
	})
	_ = g.Wait() // Wait reports only the first error; errs holds both.

	r.metrics.RefreshDuration.Observe(r.clock.Since(start).Seconds())
	return errors.Join(errs[:]...)
}

func (r *Refresher) refreshEarthquakes(ctx context.Context) error {
	features, err := r.source.FetchEarthquakes(ctx)
	if err != nil {
		r.store.SetError(mapview.LayerEarthquakes, err)
		r.logger.Error("earthquake fetch failed", "error", err)
		return fmt.Errorf("earthquakes: %w", err)
	}
	if err := r.store.SetEarthquakes(features); err != nil {
		r.store.SetError(mapview.LayerEarthquakes, err)
		return fmt.Errorf("earthquakes: %w", err)
	}

	r.metrics.LayerFeatures.WithLabelValues(mapview.LayerEarthquakes).Set(float64(len(features)))
	r.logger.Info("earthquake layer updated", "features", len(features))
	r.publish(ctx, features)
	return nil
}

func (r *Refresher) refreshPlates(ctx context.Context) error {
	fc, err := r.source.FetchPlateBoundaries(ctx)
	if err != nil {
		r.store.SetError(mapview.LayerTectonicPlates, err)
		r.logger.Error("plate boundary fetch failed", "error", err)
		return fmt.Errorf("plates: %w", err)
	}
	if err := r.store.SetPlates(fc); err != nil {
		r.store.SetError(mapview.LayerTectonicPlates, err)
		return fmt.Errorf("plates: %w", err)
	}

	count := 0
	if fc != nil {
		count = len(fc.Features)
	}
	r.metrics.LayerFeatures.WithLabelValues(mapview.LayerTectonicPlates).Set(float64(count))
	r.logger.Info("plate boundary layer updated", "features", count)
	return nil
}

// publish forwards styled events when a publisher is configured. Failures are
// logged and counted; they never affect the rendered layer.
func (r *Refresher) publish(ctx context.Context, features []domain.EarthquakeFeature) {
	if r.publisher == nil || len(features) == 0 {
		return
	}

	fetchedAt := r.clock.Now().UTC()
	events := make([]domain.StyledEarthquake, len(features))
	for i, f := range features {
		events[i] = domain.StyledEarthquake{
			EarthquakeFeature: f,
			Style:             domain.StyleFor(f),
			FetchedAt:         fetchedAt,
		}
	}

	if err := r.publisher.PublishBatch(ctx, events); err != nil {
		r.metrics.PublishErrors.Inc()
		r.logger.Warn("publish styled earthquakes failed", "error", err, "batch_size", len(events))
		return
	}
	r.metrics.EventsPublished.Add(float64(len(events)))
}
