// Package tracing wires up OpenTelemetry the same way this project's
// teacher does: an OTLP HTTP exporter, a batching tracer provider, and a
// composite traceparent/tracestate propagator — plus helpers to carry that
// context through a NATS header instead of an HTTP one, since events, not
// HTTP requests, are the unit of work here.
package tracing

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.4.0"
	"go.opentelemetry.io/otel/trace"
)

// Config holds OpenTelemetry configuration.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string
	Enabled        bool
}

// DefaultConfig returns sensible defaults for OpenTelemetry.
func DefaultConfig(serviceName string) *Config {
	return &Config{
		ServiceName:    serviceName,
		ServiceVersion: "1.0.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4318",
		Enabled:        true,
	}
}

// InitTracer initializes the OpenTelemetry tracer with an OTLP exporter and
// returns a cleanup func to call on shutdown.
func InitTracer(config *Config) (func(context.Context) error, error) {
	if !config.Enabled {
		log.Printf("tracing disabled for service: %s", config.ServiceName)
		return func(ctx context.Context) error { return nil }, nil
	}

	exporter, err := otlptracehttp.New(
		context.Background(),
		otlptracehttp.WithEndpoint(config.OTLPEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceNameKey.String(config.ServiceName),
			semconv.ServiceVersionKey.String(config.ServiceVersion),
			attribute.String("environment", config.Environment),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	log.Printf("OpenTelemetry tracing initialized for service: %s (endpoint: %s)", config.ServiceName, config.OTLPEndpoint)

	return func(ctx context.Context) error {
		ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
		return tp.Shutdown(ctx)
	}, nil
}

// GetTracer returns a tracer for the given name.
func GetTracer(name string) trace.Tracer {
	return otel.Tracer(name)
}

// SpanFromContext extracts the current span from context.
func SpanFromContext(ctx context.Context) trace.Span {
	return trace.SpanFromContext(ctx)
}

// AddSpanAttributes adds attributes to the current span in context.
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.SetAttributes(attrs...)
	}
}

// AddSpanEvent adds an event to the current span in context.
func AddSpanEvent(ctx context.Context, name string, attrs ...attribute.KeyValue) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() {
		span.AddEvent(name, trace.WithAttributes(attrs...))
	}
}

// RecordError records an error on the current span in context.
func RecordError(ctx context.Context, err error) {
	span := trace.SpanFromContext(ctx)
	if span.IsRecording() && err != nil {
		span.RecordError(err)
	}
}

// HeaderSetter is the minimal interface for the header bag trace context is
// injected into or extracted from — satisfied by nats.Header, which is
// exactly map[string][]string the same way http.Header is.
type HeaderSetter interface {
	Set(key, value string)
	Get(key string) string
}

// headerCarrier adapts HeaderSetter to propagation.TextMapCarrier.
type headerCarrier struct{ h HeaderSetter }

func (c headerCarrier) Get(key string) string       { return c.h.Get(key) }
func (c headerCarrier) Set(key, value string)        { c.h.Set(key, value) }
func (c headerCarrier) Keys() []string               { return nil }

// InjectIntoHeader serializes the trace context from ctx into h's
// traceparent/tracestate entries. Use this before publishing an event so
// downstream actors can continue the trace.
func InjectIntoHeader(ctx context.Context, h HeaderSetter) {
	otel.GetTextMapPropagator().Inject(ctx, headerCarrier{h})
}

// ExtractFromHeader reconstructs a context carrying the trace state found
// in h's traceparent/tracestate entries. Use this as the parent context
// when starting a span to handle a message in an actor.
func ExtractFromHeader(ctx context.Context, h HeaderSetter) context.Context {
	return otel.GetTextMapPropagator().Extract(ctx, headerCarrier{h})
}
