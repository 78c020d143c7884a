package models

import "time"

// SensorType tags a telemetry topic with the sensor class it belongs to.
type SensorType string

const (
	SensorFlowMeter SensorType = "fm"
	SensorChlorine  SensorType = "cl"
	SensorPressure  SensorType = "pressure"
)

// TopicStatus is the classified communication outcome for one topic.
type TopicStatus string

const (
	TopicCommunicated    TopicStatus = "communicated"
	TopicNotCommunicated TopicStatus = "not_communicated"
	TopicError           TopicStatus = "error"
	TopicUnknown         TopicStatus = "unknown"
)

// PayloadKind discriminates the shape of a received telemetry payload.
type PayloadKind int

const (
	// PayloadAbsent means no message arrived within the wait window.
	PayloadAbsent PayloadKind = iota
	// PayloadMapping is a JSON object payload.
	PayloadMapping
	// PayloadRawString is a payload that failed JSON decoding and is kept
	// as the raw text.
	PayloadRawString
)

// Payload is a tagged variant over the three shapes a topic payload can take.
type Payload struct {
	Kind PayloadKind
	Map  map[string]any
	Raw  string
}

// AbsentPayload returns the zero payload for topics that never reported.
func AbsentPayload() Payload {
	return Payload{Kind: PayloadAbsent}
}

// MappingPayload wraps a decoded JSON object.
func MappingPayload(m map[string]any) Payload {
	return Payload{Kind: PayloadMapping, Map: m}
}

// RawPayload wraps an undecodable payload as its raw text.
func RawPayload(s string) Payload {
	return Payload{Kind: PayloadRawString, Raw: s}
}

// TopicCheckResult is the outcome of one telemetry subscription attempt.
// Only Status is retained downstream; the rest feeds logs and reports.
type TopicCheckResult struct {
	TopicID    string
	SensorType SensorType
	Status     TopicStatus
	DataFound  bool
	Payload    Payload
	// Elapsed is the wait until the first message, or the full listen
	// window for topics that stayed silent.
	Elapsed time.Duration
}
