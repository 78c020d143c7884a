package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/Gobusters/ectologger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
)

type fakeSubscriber struct {
	messages map[string][]byte
}

func (f *fakeSubscriber) Subscribe(_ context.Context, topics []string, handler func(topic string, body []byte)) (func(), error) {
	go func() {
		for _, topic := range topics {
			if body, ok := f.messages[topic]; ok {
				handler(topic, body)
			}
		}
	}()
	return func() {}, nil
}

func TestCheckerCheck(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	subscriber := &fakeSubscriber{
		messages: map[string][]byte{
			"101":  []byte(`{"Flow_Error": 0, "Flow": 14.2}`),
			"102":  []byte(`{"Cl_Error": 1, "AI1": 0.3}`),
			"0103": []byte(`2.75`),
		},
	}
	checker := NewChecker(subscriber, 2*time.Second, logger)

	results, err := checker.Check(context.Background(), map[models.SensorType][]string{
		models.SensorFlowMeter: {"101"},
		models.SensorChlorine:  {"102"},
		models.SensorPressure:  {"0103"},
	})
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.Equal(t, models.TopicCommunicated, results["101"].Status)
	assert.True(t, results["101"].DataFound)
	assert.Equal(t, models.TopicCommunicated, results["102"].Status)
	assert.Equal(t, models.TopicCommunicated, results["0103"].Status)

	// topics that answered report how long the first message took
	for _, topic := range []string{"101", "102", "0103"} {
		assert.Greater(t, results[topic].Elapsed, time.Duration(0))
		assert.Less(t, results[topic].Elapsed, 2*time.Second)
	}
}

func TestCheckerCheckSilentTopic(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	subscriber := &fakeSubscriber{messages: map[string][]byte{}}
	checker := NewChecker(subscriber, 300*time.Millisecond, logger)

	results, err := checker.Check(context.Background(), map[models.SensorType][]string{
		models.SensorFlowMeter: {"555"},
	})
	require.NoError(t, err)
	require.Len(t, results, 1)

	result := results["555"]
	assert.False(t, result.DataFound)
	assert.Equal(t, models.TopicNotCommunicated, result.Status)
	assert.Equal(t, models.PayloadAbsent, result.Payload.Kind)
	assert.Equal(t, 300*time.Millisecond, result.Elapsed)
}

func TestCheckerCheckEmptyBatch(t *testing.T) {
	logger := ectologger.NewEctoLogger(func(_ ectologger.EctoLogMessage) {})
	checker := NewChecker(&fakeSubscriber{}, time.Second, logger)

	results, err := checker.Check(context.Background(), map[models.SensorType][]string{})
	require.NoError(t, err)
	assert.Empty(t, results)
}
