package telemetry

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/cerebulb/jjm-asset-reconciler/pkg/models"
)

var (
	decimalRe   = regexp.MustCompile(`^-?\d+(\.\d+)?$`)
	keyReplacer = strings.NewReplacer("_", "", "-", "", ".", "", " ", "")
)

// Classify derives the communication status for one topic check from its
// sensor type, whether data arrived, and the payload shape.
func Classify(sensorType models.SensorType, dataFound bool, payload models.Payload) models.TopicStatus {
	switch sensorType {
	case models.SensorFlowMeter:
		return classifyFlowMeter(dataFound, payload)
	case models.SensorPressure:
		return classifyPressure(dataFound, payload)
	case models.SensorChlorine:
		return classifyChlorine(dataFound, payload)
	default:
		return models.TopicUnknown
	}
}

// classifyFlowMeter: Flow_Error 1 means the sensor reported a fault,
// 0 means a healthy reading, anything else is indeterminate.
func classifyFlowMeter(dataFound bool, payload models.Payload) models.TopicStatus {
	if !dataFound || payload.Kind == models.PayloadAbsent {
		return models.TopicNotCommunicated
	}
	if payload.Kind != models.PayloadMapping {
		return models.TopicError
	}

	flowError, ok := lookupField(payload.Map, "flowerror")
	if !ok {
		return models.TopicUnknown
	}
	switch intValue(flowError) {
	case 1:
		return models.TopicError
	case 0:
		return models.TopicCommunicated
	default:
		return models.TopicUnknown
	}
}

// classifyPressure: any payload at all counts as communicated.
func classifyPressure(dataFound bool, payload models.Payload) models.TopicStatus {
	if dataFound && payload.Kind != models.PayloadAbsent {
		return models.TopicCommunicated
	}
	return models.TopicNotCommunicated
}

// classifyChlorine: Cl_Error 0 is healthy; Cl_Error 1 falls back to the AI1
// analog value, which redeems the reading when it parses non-negative.
func classifyChlorine(dataFound bool, payload models.Payload) models.TopicStatus {
	if !dataFound || payload.Kind == models.PayloadAbsent {
		return models.TopicNotCommunicated
	}
	if payload.Kind != models.PayloadMapping {
		return models.TopicError
	}

	clError, ok := lookupField(payload.Map, "clerror")
	if !ok {
		return models.TopicUnknown
	}
	switch intValue(clError) {
	case 0:
		return models.TopicCommunicated
	case 1:
		ai1, ok := lookupField(payload.Map, "ai1")
		if f, parsed := floatValue(ai1); ok && parsed && f >= 0 {
			return models.TopicCommunicated
		}
		return models.TopicError
	default:
		return models.TopicUnknown
	}
}

// canonicalKey collapses the many observed spellings of payload field names
// (Flow_Error, flow-error, FlowError, flow.error, ...) to one form: lowercase
// with separators removed.
func canonicalKey(key string) string {
	return keyReplacer.Replace(strings.ToLower(key))
}

// lookupField finds a payload field by canonical name.
func lookupField(m map[string]any, canonical string) (any, bool) {
	for k, v := range m {
		if canonicalKey(k) == canonical {
			return v, true
		}
	}
	return nil, false
}

// intValue coerces a payload value to an int for the 0/1 error flags.
// Returns -1 for anything that is not a clean integer.
func intValue(v any) int {
	switch t := v.(type) {
	case float64:
		if t == float64(int(t)) {
			return int(t)
		}
	case int:
		return t
	case string:
		s := strings.TrimSpace(t)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	return -1
}

// floatValue coerces a payload value to float64; string values must match a
// strict decimal-number pattern.
func floatValue(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case string:
		s := strings.TrimSpace(t)
		if !decimalRe.MatchString(s) {
			return 0, false
		}
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}
