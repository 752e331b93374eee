package consumer

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/docforge/progress"
)

// SpanConsumer records progress updates as events on an OpenTelemetry span.
//
// Attach one when an operation already runs inside a span and its progress
// milestones should show up on the trace timeline:
//
//	ctx, span := tracing.StartNewSpan(ctx, "ocr")
//	defer span.End()
//	emitter.AddConsumer(consumer.NewSpanConsumer(span))
type SpanConsumer struct {
	span trace.Span
}

// NewSpanConsumer creates a consumer recording onto span.
func NewSpanConsumer(span trace.Span) *SpanConsumer {
	return &SpanConsumer{span: span}
}

// OnProgress records the update as a span event named after its kind.
func (s *SpanConsumer) OnProgress(update progress.Update) {
	state := update.State
	attrs := []attribute.KeyValue{
		attribute.String("progress.label", state.Label),
		attribute.Int("progress.current", state.Current),
		attribute.Int("progress.delta", update.Delta),
	}
	if state.Total != nil {
		attrs = append(attrs, attribute.Int("progress.total", *state.Total))
	}
	if pct, ok := state.Percent(); ok {
		attrs = append(attrs, attribute.Float64("progress.percent", pct))
	}
	s.span.AddEvent("progress."+string(update.Kind), trace.WithAttributes(attrs...))
}

// OnComplete records the terminal state as a span event.
func (s *SpanConsumer) OnComplete(state progress.State) {
	s.span.AddEvent("progress.complete", trace.WithAttributes(
		attribute.String("progress.label", state.Label),
		attribute.Int("progress.current", state.Current),
	))
}
