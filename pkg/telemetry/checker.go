package telemetry

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
	"github.com/cerebulb/jjm-asset-reconciler/pkg/tracing"
)

const (
	// DefaultTimeout is the shared listen window for one batched check.
	DefaultTimeout = 60 * time.Second

	pollInterval = 100 * time.Millisecond
)

// Subscriber receives retained/live messages for a set of topics. Implemented
// by the MQTT client; tests swap in a fake.
type Subscriber interface {
	// Subscribe begins listening on the given topics. Received messages are
	// delivered to the handler. Returns an unsubscribe func.
	Subscribe(ctx context.Context, topics []string, handler func(topic string, body []byte)) (func(), error)
}

// reception is one topic's first message and how long it took to arrive.
type reception struct {
	payload models.Payload
	elapsed time.Duration
}

// Checker performs batched topic communication checks against the broker.
type Checker struct {
	subscriber Subscriber
	timeout    time.Duration
	logger     ectologger.Logger
}

// NewChecker creates a Checker. A non-positive timeout falls back to
// DefaultTimeout.
func NewChecker(subscriber Subscriber, timeout time.Duration, logger ectologger.Logger) *Checker {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Checker{
		subscriber: subscriber,
		timeout:    timeout,
		logger:     logger,
	}
}

// Check subscribes to every topic in the batch at once and waits a single
// shared timeout window. The first message per topic wins; topics that stay
// silent classify as not communicated. The result map is keyed by topic ID.
func (c *Checker) Check(ctx context.Context, batch map[models.SensorType][]string) (map[string]models.TopicCheckResult, error) {
	ctx, span := tracing.StartSpan(ctx, "telemetry.Checker.Check")
	defer span.End()

	results := make(map[string]models.TopicCheckResult)
	typeOf := make(map[string]models.SensorType)
	topics := make([]string, 0)
	for sensorType, ids := range batch {
		for _, id := range ids {
			if _, seen := typeOf[id]; seen {
				continue
			}
			typeOf[id] = sensorType
			topics = append(topics, id)
		}
	}
	if len(topics) == 0 {
		return results, nil
	}

	started := time.Now()

	var mu sync.Mutex
	received := make(map[string]reception, len(topics))

	unsubscribe, err := c.subscriber.Subscribe(ctx, topics, func(topic string, body []byte) {
		mu.Lock()
		defer mu.Unlock()
		if _, done := received[topic]; done {
			return
		}
		received[topic] = reception{
			payload: decodePayload(body),
			elapsed: time.Since(started),
		}
	})
	if err != nil {
		return nil, err
	}
	defer unsubscribe()

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"topics":  len(topics),
		"timeout": c.timeout.String(),
	}).Info("listening for topic data")

	deadline := time.NewTimer(c.timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

wait:
	for {
		select {
		case <-ctx.Done():
			break wait
		case <-deadline.C:
			break wait
		case <-ticker.C:
			mu.Lock()
			done := len(received) == len(topics)
			mu.Unlock()
			if done {
				break wait
			}
		}
	}

	mu.Lock()
	defer mu.Unlock()
	for _, topic := range topics {
		sensorType := typeOf[topic]
		rec, found := received[topic]
		if !found {
			// a silent topic consumed the whole listen window
			rec = reception{payload: models.AbsentPayload(), elapsed: c.timeout}
		}
		results[topic] = models.TopicCheckResult{
			TopicID:    topic,
			SensorType: sensorType,
			DataFound:  found,
			Payload:    rec.payload,
			Status:     Classify(sensorType, found, rec.payload),
			Elapsed:    rec.elapsed,
		}
	}

	c.logger.WithContext(ctx).WithFields(map[string]any{
		"topics":   len(topics),
		"received": len(received),
	}).Info("topic check complete")

	return results, nil
}

// decodePayload parses a message body as a JSON object when possible,
// otherwise keeps it as a raw string.
func decodePayload(body []byte) models.Payload {
	var m map[string]any
	if err := json.Unmarshal(body, &m); err == nil {
		return models.MappingPayload(m)
	}
	return models.RawPayload(string(body))
}
