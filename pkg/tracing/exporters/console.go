package exporters

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel/sdk/trace"
)

// ConsoleExporter writes finished spans as JSON lines. Used for local runs
// where no collector is available.
type ConsoleExporter struct {
	writer io.Writer
}

// NewConsoleExporter creates a ConsoleExporter. A nil writer defaults to
// stdout.
func NewConsoleExporter(w io.Writer) *ConsoleExporter {
	if w == nil {
		w = os.Stdout
	}
	return &ConsoleExporter{writer: w}
}

func (c *ConsoleExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	for _, span := range spans {
		line := map[string]any{
			"name":     span.Name(),
			"trace_id": span.SpanContext().TraceID().String(),
			"span_id":  span.SpanContext().SpanID().String(),
			"duration": span.EndTime().Sub(span.StartTime()).String(),
		}
		body, err := json.Marshal(line)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(c.writer, string(body)); err != nil {
			return err
		}
	}
	return nil
}

func (c *ConsoleExporter) Shutdown(ctx context.Context) error {
	return nil
}
