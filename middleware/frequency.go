package middleware

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/walnats"
)

// Frequency wraps an inner Middleware and deduplicates its hooks within a
// sliding time window: at most one OnStart and one OnSuccess call per actor
// per Window. OnFailure is gated the same way per actor, but additionally
// forwarded at most once per (actor, error type) pair per Window, so a new
// kind of failure on an already-noisy actor still gets through. Use it to
// tame a middleware that's cheap per-call but whose total volume (e.g. one
// log line or span per message) would be too noisy at full throughput.
type Frequency struct {
	walnats.BaseMiddleware
	inner walnats.Middleware

	// Window is the dedup interval. Default 10 minutes.
	Window time.Duration
	// Now returns the current time; overridable for tests.
	Now func() time.Time

	mu       sync.Mutex
	lastSeen map[string]time.Time
}

// NewFrequency wraps inner with the default 10-minute window.
func NewFrequency(inner walnats.Middleware) *Frequency {
	return &Frequency{inner: inner, Window: 10 * time.Minute, lastSeen: map[string]time.Time{}}
}

func (m *Frequency) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now()
}

func (m *Frequency) window() time.Duration {
	if m.Window <= 0 {
		return 10 * time.Minute
	}
	return m.Window
}

// seen reports whether key was already seen within the window, and records
// this observation either way.
func (m *Frequency) seen(key string) bool {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	if last, ok := m.lastSeen[key]; ok && now.Sub(last) < m.window() {
		return true
	}
	m.lastSeen[key] = now
	return false
}

func (m *Frequency) OnStart(ctx walnats.Context) func() {
	if m.seen("start\x00" + ctx.ActorName) {
		return nil
	}
	return m.inner.OnStart(ctx)
}

func (m *Frequency) OnSuccess(ctx walnats.OkContext) func() {
	if m.seen("success\x00" + ctx.ActorName) {
		return nil
	}
	return m.inner.OnSuccess(ctx)
}

func (m *Frequency) OnFailure(ctx walnats.ErrorContext) func() {
	// Both calls must run regardless of short-circuiting, since seen also
	// records the observation.
	actorSeen := m.seen("failure\x00" + ctx.ActorName)
	typeSeen := m.seen(fmt.Sprintf("failure-type\x00%s\x00%T", ctx.ActorName, ctx.Err))
	if actorSeen && typeSeen {
		return nil
	}
	return m.inner.OnFailure(ctx)
}
