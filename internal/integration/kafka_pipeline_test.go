//go:build integration

package integration_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/couchcryptid/quake-map/internal/adapter/feed"
	"github.com/couchcryptid/quake-map/internal/adapter/kafka"
	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	"github.com/couchcryptid/quake-map/internal/mapview"
	"github.com/couchcryptid/quake-map/internal/observability"
	"github.com/couchcryptid/quake-map/internal/pipeline"
	"github.com/jonboulle/clockwork"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tckafka "github.com/testcontainers/testcontainers-go/modules/kafka"
)

const testTopic = "test-styled-earthquakes"

const earthquakesFeed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "id": "us7000m9g4",
     "properties": {"mag": 6.1, "place": "23 km S of Hualien City, Taiwan", "time": 1714144200000},
     "geometry": {"type": "Point", "coordinates": [121.6, 23.8, 12]}},
    {"type": "Feature", "id": "ak024abc",
     "properties": {"mag": null, "place": "Southern Alaska", "time": 1714144260000},
     "geometry": {"type": "Point", "coordinates": [-150.1, 61.2, 100]}},
    {"type": "Feature", "id": "nc75012345",
     "properties": {"mag": 1.2, "place": "Northern California", "time": 1714144320000},
     "geometry": {"type": "Point", "coordinates": [-122.8, 38.8]}}
  ]
}`

const platesFeed = `{
  "type": "FeatureCollection",
  "features": [
    {"type": "Feature", "properties": {"Name": "AF-AN"},
     "geometry": {"type": "LineString", "coordinates": [[0, 0], [1, 1]]}}
  ]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func startKafka(ctx context.Context, t *testing.T) string {
	t.Helper()
	container, err := tckafka.Run(ctx, "confluentinc/confluent-local:7.5.0", tckafka.WithClusterID("quake-map-test"))
	require.NoError(t, err, "start kafka container")
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	brokers, err := container.Brokers(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, brokers)
	return brokers[0]
}

func createTopic(t *testing.T, broker, topic string) {
	t.Helper()
	conn, err := kafkago.Dial("tcp", broker)
	require.NoError(t, err)
	defer conn.Close()

	controller, err := conn.Controller()
	require.NoError(t, err)
	ctrl, err := kafkago.Dial("tcp", net.JoinHostPort(controller.Host, strconv.Itoa(controller.Port)))
	require.NoError(t, err)
	defer ctrl.Close()

	require.NoError(t, ctrl.CreateTopics(kafkago.TopicConfig{
		Topic:             topic,
		NumPartitions:     1,
		ReplicationFactor: 1,
	}))
}

func feedServer(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/geo+json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

// TestRefreshPublishesStyledEarthquakes runs one refresh against stub feeds
// and reads the styled events back from Kafka.
func TestRefreshPublishesStyledEarthquakes(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 120*time.Second)
	defer cancel()

	broker := startKafka(ctx, t)
	createTopic(t, broker, testTopic)

	cfg := &config.Config{
		KafkaEnabled: true,
		KafkaBrokers: []string{broker},
		KafkaTopic:   testTopic,
	}
	writer := kafka.NewWriter(cfg, discardLogger())
	t.Cleanup(func() { _ = writer.Close() })

	metrics := observability.NewMetricsForTesting()
	client := feed.NewClient(
		feedServer(t, earthquakesFeed).URL,
		feedServer(t, platesFeed).URL,
		10*time.Second, metrics, discardLogger(),
	)
	fetchedAt := time.Date(2024, time.April, 26, 15, 30, 0, 0, time.UTC)
	clock := clockwork.NewFakeClockAt(fetchedAt)
	state := mapview.NewState(clock)

	refresher := pipeline.New(client, state, writer, discardLogger(), metrics, clock, time.Minute)
	require.NoError(t, refresher.Refresh(ctx))

	doc := state.Document()
	require.Len(t, doc.Overlays, 2)
	assert.Equal(t, 3, doc.Overlays[0].FeatureCount)
	assert.Equal(t, 1, doc.Overlays[1].FeatureCount)
	assert.Equal(t, fetchedAt, doc.Overlays[0].FetchedAt)

	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers:   []string{broker},
		Topic:     testTopic,
		Partition: 0,
		MinBytes:  1,
		MaxBytes:  10e6,
	})
	t.Cleanup(func() { _ = reader.Close() })

	got := make(map[string]kafkago.Message, 3)
	for len(got) < 3 {
		readCtx, readCancel := context.WithTimeout(ctx, 30*time.Second)
		msg, err := reader.ReadMessage(readCtx)
		readCancel()
		require.NoError(t, err, "read styled earthquake")
		got[string(msg.Key)] = msg
	}

	taiwan := got["us7000m9g4"]
	var event domain.StyledEarthquake
	require.NoError(t, json.Unmarshal(taiwan.Value, &event))
	assert.Equal(t, "23 km S of Hualien City, Taiwan", event.Place)
	assert.InDelta(t, 24.4, event.Style.Radius, 1e-9)
	assert.Equal(t, "#ADFF2F", event.Style.FillColor)
	assert.Equal(t, fetchedAt, event.FetchedAt)
	assert.Equal(t, map[string]string{"magnitude": "6.1", "fetched_at": "2024-04-26T15:30:00Z"}, headerMap(taiwan))

	alaska := got["ak024abc"]
	require.NoError(t, json.Unmarshal(alaska.Value, &event))
	assert.Nil(t, event.Magnitude)
	assert.InDelta(t, 1.0, event.Style.Radius, 1e-9)
	assert.Equal(t, "#FF0000", event.Style.FillColor)
	assert.Empty(t, headerMap(alaska)["magnitude"])

	var shallow map[string]any
	require.NoError(t, json.Unmarshal(got["nc75012345"].Value, &shallow))
	assert.Nil(t, shallow["depth_km"])
	assert.Equal(t, 1.2, shallow["mag"])
	assert.Equal(t, "#00FF00", shallow["style"].(map[string]any)["fillColor"])
}

func headerMap(msg kafkago.Message) map[string]string {
	headers := make(map[string]string, len(msg.Headers))
	for _, h := range msg.Headers {
		headers[h.Key] = string(h.Value)
	}
	return headers
}
