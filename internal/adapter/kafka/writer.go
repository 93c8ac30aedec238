package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"time"

	"github.com/couchcryptid/quake-map/internal/config"
	"github.com/couchcryptid/quake-map/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces styled earthquakes to a Kafka topic.
// It implements pipeline.Publisher.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, logger: logger}
}

// PublishBatch serializes and publishes a refresh's worth of styled
// earthquakes in a single WriteMessages call. Events are keyed by ID so
// updates to the same event land on the same partition. Non-finite magnitude
// or depth values are published as null. Events that still fail to serialize
// are logged and skipped.
func (w *Writer) PublishBatch(ctx context.Context, events []domain.StyledEarthquake) error {
	if len(events) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, 0, len(events))
	for i := range events {
		msg, err := serializeToMessage(events[i])
		if err != nil {
			w.logger.Warn("skipping unserializable earthquake", "event_id", events[i].ID, "error", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	if len(msgs) == 0 {
		return nil
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write styled earthquakes: %w", err)
	}
	w.logger.Debug("styled earthquakes published", "count", len(msgs), "topic", w.writer.Topic)
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals a StyledEarthquake into a Kafka message.
func serializeToMessage(event domain.StyledEarthquake) (kafkago.Message, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize styled earthquake: %w", err)
	}

	magnitude := ""
	if event.Magnitude != nil && !math.IsNaN(*event.Magnitude) && !math.IsInf(*event.Magnitude, 0) {
		magnitude = strconv.FormatFloat(*event.Magnitude, 'f', -1, 64)
	}
	return kafkago.Message{
		Key:   []byte(event.ID),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "magnitude", Value: []byte(magnitude)},
			{Key: "fetched_at", Value: []byte(event.FetchedAt.Format(time.RFC3339))},
		},
	}, nil
}
