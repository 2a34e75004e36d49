// Package decorators wraps walnats.Handler functions with small, composable
// behaviors — rate limiting, waiting for a precondition, swallowing
// expected errors, and filtering clock ticks — the same way a Python
// decorator wraps a callable.
package decorators

import (
	"context"
	"time"

	"github.com/nats-io/walnats"
)

// RateLimit returns a decorator bounding handler to at most maxJobs
// concurrent invocations within any rolling period: a permit taken by an
// invocation is only returned to the pool after period has elapsed since
// that invocation started, rather than immediately on return.
func RateLimit[T, R any](maxJobs int, period time.Duration) func(walnats.Handler[T, R]) walnats.Handler[T, R] {
	if maxJobs < 1 {
		maxJobs = 1
	}
	tokens := make(chan struct{}, maxJobs)
	for i := 0; i < maxJobs; i++ {
		tokens <- struct{}{}
	}
	return func(handler walnats.Handler[T, R]) walnats.Handler[T, R] {
		return func(ctx context.Context, message T) (R, error) {
			var zero R
			select {
			case <-tokens:
			case <-ctx.Done():
				return zero, ctx.Err()
			}
			go func() {
				if period > 0 {
					time.Sleep(period)
				}
				tokens <- struct{}{}
			}()
			return handler(ctx, message)
		}
	}
}

// Require returns a decorator that blocks until predicate returns true,
// polling every pause, before invoking handler. Use it to gate a handler on
// some external readiness condition (a cache being warm, a downstream
// dependency being healthy) without failing and retrying the message.
func Require[T, R any](predicate func() bool, pause time.Duration) func(walnats.Handler[T, R]) walnats.Handler[T, R] {
	if pause <= 0 {
		pause = time.Second
	}
	return func(handler walnats.Handler[T, R]) walnats.Handler[T, R] {
		return func(ctx context.Context, message T) (R, error) {
			var zero R
			for !predicate() {
				t := time.NewTimer(pause)
				select {
				case <-t.C:
				case <-ctx.Done():
					t.Stop()
					return zero, ctx.Err()
				}
			}
			return handler(ctx, message)
		}
	}
}

// Suppress returns a decorator that catches errors matching match and
// reports them to log (if non-nil) instead of letting them propagate —
// the handler is treated as having succeeded, returning the zero value of
// R. Use it for errors that are expected and already fully handled inside
// the handler's own logic, where a nak-and-retry would be pure noise.
func Suppress[T, R any](match func(error) bool, log func(error)) func(walnats.Handler[T, R]) walnats.Handler[T, R] {
	return func(handler walnats.Handler[T, R]) walnats.Handler[T, R] {
		return func(ctx context.Context, message T) (R, error) {
			resp, err := handler(ctx, message)
			if err != nil && match(err) {
				if log != nil {
					log(err)
				}
				var zero R
				return zero, nil
			}
			return resp, err
		}
	}
}

// Single returns a component matching exactly one value.
func Single[T comparable](v T) []T { return []T{v} }

// Set returns a component matching any of the given values.
func Set[T comparable](vs ...T) []T { return vs }

func matchesComponent[T comparable](allowed []T, v T) bool {
	if allowed == nil {
		return true
	}
	for _, a := range allowed {
		if a == v {
			return true
		}
	}
	return false
}

// TimeFilter is a cron-like predicate over a tick's wall-clock components.
// A nil field matches any value; a non-nil field is a set of allowed
// values (build one with Single for an exact match, or Set for several)
// that must contain the tick's corresponding component. All fields use the
// tick's own location (the caller should normalize to UTC first if that's
// what's wanted).
type TimeFilter struct {
	Year    []int
	Month   []time.Month
	Day     []int
	Weekday []time.Weekday
	Hour    []int
	Minute  []int
}

func (f TimeFilter) matches(t time.Time) bool {
	if !matchesComponent(f.Year, t.Year()) {
		return false
	}
	if !matchesComponent(f.Month, t.Month()) {
		return false
	}
	if !matchesComponent(f.Day, t.Day()) {
		return false
	}
	if !matchesComponent(f.Weekday, t.Weekday()) {
		return false
	}
	if !matchesComponent(f.Hour, t.Hour()) {
		return false
	}
	if !matchesComponent(f.Minute, t.Minute()) {
		return false
	}
	return true
}

// FilterTime returns a decorator for Clock-driven handlers (Handler[time.Time, R])
// that only invokes handler when the tick matches filter, otherwise
// returning the zero value of R without error — the tick is silently
// skipped rather than treated as a failure.
func FilterTime[R any](filter TimeFilter) func(walnats.Handler[time.Time, R]) walnats.Handler[time.Time, R] {
	return func(handler walnats.Handler[time.Time, R]) walnats.Handler[time.Time, R] {
		return func(ctx context.Context, tick time.Time) (R, error) {
			if !filter.matches(tick) {
				var zero R
				return zero, nil
			}
			return handler(ctx, tick)
		}
	}
}
