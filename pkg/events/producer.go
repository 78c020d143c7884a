// Package events emits reconciliation lifecycle events to Kafka so downstream
// dashboards can follow asset status changes without polling the database.
package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/segmentio/kafka-go"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

// Emitter publishes reconciliation events. The engine accepts a nil Emitter
// and skips publishing.
type Emitter interface {
	PublishStatusEvents(ctx context.Context, events []*AssetStatusEvent) error
	PublishStageCompleted(ctx context.Context, event *StageCompletedEvent) error
}

// Producer handles Kafka event emission
type Producer struct {
	writer *kafka.Writer
	logger ectologger.Logger
	topic  string
}

// ProducerConfig holds Kafka producer configuration
type ProducerConfig struct {
	Brokers      []string
	Topic        string
	BatchSize    int
	BatchTimeout time.Duration
	RequiredAcks int
	Compression  string
}

// NewProducer creates a new Kafka producer
func NewProducer(cfg ProducerConfig, logger ectologger.Logger) *Producer {
	compression := kafka.Snappy
	switch cfg.Compression {
	case "gzip":
		compression = kafka.Gzip
	case "lz4":
		compression = kafka.Lz4
	case "zstd":
		compression = kafka.Zstd
	case "none":
		compression = 0
	}

	writer := &kafka.Writer{
		Addr:                   kafka.TCP(cfg.Brokers...),
		Balancer:               &kafka.LeastBytes{},
		BatchSize:              cfg.BatchSize,
		BatchTimeout:           cfg.BatchTimeout,
		RequiredAcks:           kafka.RequiredAcks(cfg.RequiredAcks),
		Compression:            compression,
		AllowAutoTopicCreation: true,
	}

	return &Producer{
		writer: writer,
		logger: logger,
		topic:  cfg.Topic,
	}
}

// Close closes the producer
func (p *Producer) Close() error {
	return p.writer.Close()
}

// AssetStatusEvent records one asset status transition.
type AssetStatusEvent struct {
	EventType string             `json:"event_type"` // asset.validated, asset.activated, asset.deactivated
	SchemeID  string             `json:"scheme_id"`
	Village   string             `json:"village"`
	Reservoir string             `json:"reservoir"`
	Status    models.AssetStatus `json:"status"`
	Timestamp time.Time          `json:"timestamp"`
}

// StageCompletedEvent summarizes a finished pipeline stage.
type StageCompletedEvent struct {
	Stage     string    `json:"stage"` // ingest, validate, finalize
	SessionID string    `json:"session_id"`
	Processed int       `json:"processed"`
	Matched   int       `json:"matched"`
	Skipped   int       `json:"skipped"`
	ElapsedMS int64     `json:"elapsed_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// PublishStatusEvents publishes a batch of asset status events.
func (p *Producer) PublishStatusEvents(ctx context.Context, events []*AssetStatusEvent) error {
	ctx, span := tracing.StartSpan(ctx, "events.Producer.PublishStatusEvents")
	defer span.End()

	if len(events) == 0 {
		return nil
	}

	messages := make([]kafka.Message, len(events))
	for i, event := range events {
		if event.Timestamp.IsZero() {
			event.Timestamp = time.Now().UTC()
		}

		data, err := json.Marshal(event)
		if err != nil {
			return err
		}

		messages[i] = kafka.Message{
			Topic: p.topic,
			Key:   []byte(event.SchemeID),
			Value: data,
			Headers: []kafka.Header{
				{Key: "event_type", Value: []byte(event.EventType)},
				{Key: "schema_version", Value: []byte("1.0")},
			},
		}
	}

	if err := p.writer.WriteMessages(ctx, messages...); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"batch_size": len(events),
		}).Error("Failed to publish asset status events")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"batch_size": len(events),
	}).Debug("Published asset status events")

	return nil
}

// PublishStageCompleted publishes a stage summary event.
func (p *Producer) PublishStageCompleted(ctx context.Context, event *StageCompletedEvent) error {
	ctx, span := tracing.StartSpan(ctx, "events.Producer.PublishStageCompleted")
	defer span.End()

	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now().UTC()
	}

	data, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := kafka.Message{
		Topic: p.topic,
		Key:   []byte(event.SessionID),
		Value: data,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte("stage." + event.Stage + ".completed")},
			{Key: "schema_version", Value: []byte("1.0")},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		p.logger.WithContext(ctx).WithError(err).WithField("stage", event.Stage).
			Error("Failed to publish stage completed event")
		return err
	}

	p.logger.WithContext(ctx).WithFields(map[string]any{
		"stage":      event.Stage,
		"session_id": event.SessionID,
	}).Debug("Published stage completed event")

	return nil
}
