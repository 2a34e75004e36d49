package middleware

import (
	"context"
	"fmt"
	"sync"

	"github.com/nats-io/walnats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Tracing opens one OpenTelemetry span per message handled, from OnStart
// through whichever of OnSuccess/OnFailure fires, tagged with the actor and
// event names and the Walnats-Trace header value (if any) as a span link
// hint. It uses otel.Tracer the same way this project's own internal
// tracing setup does, so spans land on whatever exporter the process
// already configured.
type Tracing struct {
	walnats.BaseMiddleware

	tracer trace.Tracer

	mu    sync.Mutex
	spans map[spanKey]trace.Span
}

type spanKey struct {
	actor string
	seq   uint64
}

// NewTracing returns a Tracing middleware using the named tracer.
func NewTracing(tracerName string) *Tracing {
	return &Tracing{
		tracer: otel.Tracer(tracerName),
		spans:  map[spanKey]trace.Span{},
	}
}

func (m *Tracing) OnStart(ctx walnats.Context) func() {
	_, span := m.tracer.Start(context.Background(), fmt.Sprintf("walnats.actor/%s", ctx.ActorName),
		trace.WithAttributes(
			attribute.String("walnats.actor", ctx.ActorName),
			attribute.String("walnats.event", ctx.EventName),
			attribute.Int64("walnats.seq", int64(ctx.Seq)),
			attribute.Int64("walnats.attempt", int64(ctx.Attempts())),
			attribute.String("walnats.trace_id", ctx.TraceID),
		),
	)
	m.mu.Lock()
	m.spans[spanKey{ctx.ActorName, ctx.Seq}] = span
	m.mu.Unlock()
	return nil
}

func (m *Tracing) take(actor string, seq uint64) (trace.Span, bool) {
	key := spanKey{actor, seq}
	m.mu.Lock()
	defer m.mu.Unlock()
	span, ok := m.spans[key]
	if ok {
		delete(m.spans, key)
	}
	return span, ok
}

func (m *Tracing) OnSuccess(ctx walnats.OkContext) func() {
	if span, ok := m.take(ctx.ActorName, ctx.Seq); ok {
		span.SetStatus(codes.Ok, "")
		span.End()
	}
	return nil
}

func (m *Tracing) OnFailure(ctx walnats.ErrorContext) func() {
	if span, ok := m.take(ctx.ActorName, ctx.Seq); ok {
		span.RecordError(ctx.Err)
		span.SetStatus(codes.Error, ctx.Err.Error())
		span.End()
	}
	return nil
}
