// Package tracing wires an OpenTelemetry tracer provider for binaries that
// want progress milestones on a trace timeline, optionally exported to a
// Jaeger collector.
package tracing

import (
	"context"
	"time"

	"github.com/go-logr/logr"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	tracesdk "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Options controls exporter configuration for InitTracerProvider.
type Options struct {
	// ServiceName identifies the binary on exported traces. Defaults to
	// "docforge-progress" when empty.
	ServiceName string

	// EnableJaeger turns on span export to a Jaeger collector endpoint.
	EnableJaeger bool

	// JaegerEndpoint is the collector URL used when EnableJaeger is set.
	JaegerEndpoint string
}

func newJaegerExporter(endpoint string) (tracesdk.SpanExporter, error) {
	return jaeger.New(
		jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(endpoint)),
	)
}

// InitTracerProvider builds a tracer provider, registers it globally, and
// returns it for shutdown. Spans are always sampled; export only happens
// when Jaeger is enabled.
func InitTracerProvider(log logr.Logger, o Options) (*tracesdk.TracerProvider, error) {
	serviceName := o.ServiceName
	if serviceName == "" {
		serviceName = "docforge-progress"
	}

	tracerOptions := []tracesdk.TracerProviderOption{
		tracesdk.WithSampler(tracesdk.AlwaysSample()),
		tracesdk.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String(serviceName),
		)),
	}
	if o.EnableJaeger {
		exp, err := newJaegerExporter(o.JaegerEndpoint)
		if err != nil {
			log.Error(err, "failed to create jaeger exporter")
			return nil, err
		}
		tracerOptions = append(tracerOptions, tracesdk.WithBatcher(exp))
	}

	tp := tracesdk.NewTracerProvider(tracerOptions...)
	otel.SetTracerProvider(tp)

	return tp, nil
}

// Shutdown flushes and stops the tracer provider, bounded to five seconds.
func Shutdown(ctx context.Context, log logr.Logger, tp *tracesdk.TracerProvider) {
	ctx, cancel := context.WithTimeout(ctx, time.Second*5)
	defer cancel()
	if err := tp.Shutdown(ctx); err != nil {
		log.Error(err, "error shutting down tracer provider")
	}
}

// StartNewSpan starts a span on the global tracer with the given attributes.
func StartNewSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	ctx, span := otel.Tracer("").Start(ctx, name)
	span.SetAttributes(attrs...)
	return ctx, span
}
