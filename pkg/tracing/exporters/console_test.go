package exporters

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

func TestConsoleExporterWritesSpans(t *testing.T) {
	var buf bytes.Buffer
	exporter := NewConsoleExporter(&buf)
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSpanProcessor(sdktrace.NewSimpleSpanProcessor(exporter)),
	)

	_, span := tp.Tracer("reconciler").Start(context.Background(), "reconcile.Engine.Validate")
	span.End()
	require.NoError(t, tp.Shutdown(context.Background()))

	var line map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "reconcile.Engine.Validate", line["name"])
	assert.NotEmpty(t, line["trace_id"])
	assert.NotEmpty(t, line["duration"])
}

func TestConsoleExporterNilWriterDefaultsToStdout(t *testing.T) {
	exporter := NewConsoleExporter(nil)
	assert.NotNil(t, exporter.writer)
}
