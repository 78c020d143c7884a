package telemetry

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
)

func TestClassifyFlowMeter(t *testing.T) {
	tests := []struct {
		name      string
		dataFound bool
		payload   models.Payload
		expected  models.TopicStatus
	}{
		{
			name:      "no data is not communicated",
			dataFound: false,
			payload:   models.AbsentPayload(),
			expected:  models.TopicNotCommunicated,
		},
		{
			name:      "flow error zero is communicated",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Flow_Error": float64(0)}),
			expected:  models.TopicCommunicated,
		},
		{
			name:      "flow error one is error",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Flow_Error": float64(1)}),
			expected:  models.TopicError,
		},
		{
			name:      "alternate spelling matches",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"flow-error": "0"}),
			expected:  models.TopicCommunicated,
		},
		{
			name:      "missing flow error field is unknown",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Flow": float64(12.5)}),
			expected:  models.TopicUnknown,
		},
		{
			name:      "unexpected flag value is unknown",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Flow_Error": "maybe"}),
			expected:  models.TopicUnknown,
		},
		{
			name:      "non mapping payload is error",
			dataFound: true,
			payload:   models.RawPayload("garbled"),
			expected:  models.TopicError,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Classify(models.SensorFlowMeter, test.dataFound, test.payload)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestClassifyPressure(t *testing.T) {
	tests := []struct {
		name      string
		dataFound bool
		payload   models.Payload
		expected  models.TopicStatus
	}{
		{
			name:      "any mapping payload is communicated",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"anything": 1}),
			expected:  models.TopicCommunicated,
		},
		{
			name:      "raw string payload is communicated",
			dataFound: true,
			payload:   models.RawPayload("4.2"),
			expected:  models.TopicCommunicated,
		},
		{
			name:      "silence is not communicated",
			dataFound: false,
			payload:   models.AbsentPayload(),
			expected:  models.TopicNotCommunicated,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Classify(models.SensorPressure, test.dataFound, test.payload)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestClassifyChlorine(t *testing.T) {
	tests := []struct {
		name      string
		dataFound bool
		payload   models.Payload
		expected  models.TopicStatus
	}{
		{
			name:      "cl error zero is communicated",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Cl_Error": float64(0)}),
			expected:  models.TopicCommunicated,
		},
		{
			name:      "cl error one with healthy analog value is communicated",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Cl_Error": float64(1), "AI1": float64(0.35)}),
			expected:  models.TopicCommunicated,
		},
		{
			name:      "cl error one with negative analog value is error",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Cl_Error": float64(1), "AI1": float64(-1)}),
			expected:  models.TopicError,
		},
		{
			name:      "cl error one with unparseable analog string is error",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Cl_Error": float64(1), "AI1": "n/a"}),
			expected:  models.TopicError,
		},
		{
			name:      "cl error one with numeric analog string is communicated",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Cl_Error": float64(1), "AI1": "0.42"}),
			expected:  models.TopicCommunicated,
		},
		{
			name:      "cl error one without analog field is error",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Cl_Error": float64(1)}),
			expected:  models.TopicError,
		},
		{
			name:      "missing cl error field is unknown",
			dataFound: true,
			payload:   models.MappingPayload(map[string]any{"Chlorine": float64(0.2)}),
			expected:  models.TopicUnknown,
		},
		{
			name:      "no data is not communicated",
			dataFound: false,
			payload:   models.AbsentPayload(),
			expected:  models.TopicNotCommunicated,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			result := Classify(models.SensorChlorine, test.dataFound, test.payload)
			assert.Equal(t, test.expected, result)
		})
	}
}

func TestCanonicalKey(t *testing.T) {
	assert.Equal(t, "flowerror", canonicalKey("Flow_Error"))
	assert.Equal(t, "flowerror", canonicalKey("flow-error"))
	assert.Equal(t, "flowerror", canonicalKey("Flow.Error"))
	assert.Equal(t, "clerror", canonicalKey("Cl Error"))
	assert.Equal(t, "ai1", canonicalKey("AI1"))
}
