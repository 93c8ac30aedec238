package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/paulmach/orb/geojson"
)

// Feed labels used in logs and metrics.
const (
	FeedEarthquakes = "earthquakes"
	FeedPlates      = "plates"
)

// Client fetches the earthquake and plate boundary GeoJSON feeds.
type Client struct {
	httpClient     *http.Client
	earthquakesURL string
	platesURL      string
	metrics        *observability.Metrics
	logger         *slog.Logger
}

// NewClient creates a feed client. Every request is bounded by timeout.
func NewClient(earthquakesURL, platesURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		earthquakesURL: earthquakesURL,
		platesURL:      platesURL,
		metrics:        metrics,
		logger:         logger,
	}
}

// FetchEarthquakes downloads and decodes the earthquake feed.
func (c *Client) FetchEarthquakes(ctx context.Context) ([]domain.EarthquakeFeature, error) {
	var features []domain.EarthquakeFeature
	err := c.fetch(ctx, FeedEarthquakes, c.earthquakesURL, func(r io.Reader) error {
		var err error
		features, err = DecodeEarthquakes(r)
		return err
	})
	return features, err
}

// FetchPlateBoundaries downloads and decodes the plate boundary feed.
func (c *Client) FetchPlateBoundaries(ctx context.Context) (*geojson.FeatureCollection, error) {
	var fc *geojson.FeatureCollection
	err := c.fetch(ctx, FeedPlates, c.platesURL, func(r io.Reader) error {
		var err error
		fc, err = DecodePlateBoundaries(r)
		return err
	})
	return fc, err
}

func (c *Client) fetch(ctx context.Context, feed, url string, decode func(io.Reader) error) error {
	start := time.Now()
	err := c.doRequest(ctx, feed, url, decode)
	c.metrics.FetchDuration.WithLabelValues(feed).Observe(time.Since(start).Seconds())

	if err != nil {
		c.metrics.FetchRequests.WithLabelValues(feed, "error").Inc()
		return err
	}
	c.metrics.FetchRequests.WithLabelValues(feed, "success").Inc()
	c.logger.Debug("feed fetched", "feed", feed, "duration", time.Since(start))
	return nil
}

func (c *Client) doRequest(ctx context.Context, feed, url string, decode func(io.Reader) error) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/geo+json, application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s feed request: %w", feed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s feed error: status %d: %s", feed, resp.StatusCode, body)
	}

	if err := decode(resp.Body); err != nil {
		return fmt.Errorf("decode %s feed: %w", feed, err)
	}
	return nil
}
