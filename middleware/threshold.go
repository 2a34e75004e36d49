// Package middleware provides Middleware implementations that wrap or
// compose with walnats.Middleware: suppressing noisy failure hooks,
// deduplicating bursts of identical hooks, and reporting to logs,
// Prometheus, and OpenTelemetry.
package middleware

import (
	"sync"

	"github.com/nats-io/walnats"
)

// ErrorThreshold wraps an inner Middleware and suppresses its OnFailure
// calls until failures cross configurable thresholds, so a single actor
// crash-looping doesn't flood logs or alerting. Every counter resets to
// zero the moment any success is observed for that scope.
type ErrorThreshold struct {
	walnats.BaseMiddleware
	inner walnats.Middleware

	// Overall is how many total failures (across every actor and message)
	// must be exceeded before OnFailure is allowed through: with Overall=20,
	// the 22nd consecutive failure is the first forwarded. 0 disables this
	// check; when all three checks are disabled, every OnFailure is
	// forwarded. Default 20.
	Overall int
	// PerActor is the same threshold, scoped to one actor name. Default 20.
	PerActor int
	// PerMessage is the same threshold, scoped to one message's own
	// redelivery count (walnats.ErrorContext.Attempts) — a single message
	// that keeps failing on redelivery, regardless of actor.
	// Default 20.
	PerMessage int

	mu      sync.Mutex
	overall int
	byActor map[string]int
}

// NewErrorThreshold wraps inner with the default thresholds (20/20/20).
func NewErrorThreshold(inner walnats.Middleware) *ErrorThreshold {
	return &ErrorThreshold{
		inner:      inner,
		Overall:    20,
		PerActor:   20,
		PerMessage: 20,
		byActor:    map[string]int{},
	}
}

func (m *ErrorThreshold) OnStart(ctx walnats.Context) func() {
	return m.inner.OnStart(ctx)
}

func (m *ErrorThreshold) OnSuccess(ctx walnats.OkContext) func() {
	m.mu.Lock()
	m.overall = 0
	m.byActor[ctx.ActorName] = 0
	m.mu.Unlock()
	return m.inner.OnSuccess(ctx)
}

func (m *ErrorThreshold) OnFailure(ctx walnats.ErrorContext) func() {
	m.mu.Lock()
	overall, byActor := m.overall, m.byActor[ctx.ActorName]
	enabled := m.Overall > 0 || m.PerActor > 0 || m.PerMessage > 0
	forward := !enabled ||
		(m.Overall > 0 && overall > m.Overall) ||
		(m.PerActor > 0 && byActor > m.PerActor) ||
		(m.PerMessage > 0 && ctx.Attempts() > uint64(m.PerMessage))
	if !forward {
		m.overall++
		m.byActor[ctx.ActorName]++
	}
	m.mu.Unlock()

	if !forward {
		return nil
	}
	return m.inner.OnFailure(ctx)
}
