package walnats

import (
	"context"
	"fmt"
	"time"
)

// Clock periodically emits the current time as an event, once per Period,
// aligned to period boundaries rather than to when Run started. Every
// replica running the same Clock emits with the same deduplication id for
// a given period, so the broker's own dedup window collapses concurrent
// replicas down to exactly one delivery per period.
type Clock struct {
	// Event is the event emitted on each tick. Its payload type must be
	// time.Time.
	Event *Event[time.Time]
	// Meta is attached to every emitted tick via WithMeta.
	Meta map[string]string
	// Period is how often the clock ticks. Default 60s.
	Period time.Duration
	// Now returns the current time; overridable for tests. Defaults to
	// time.Now.
	Now func() time.Time
}

func (c *Clock) period() time.Duration {
	if c.Period <= 0 {
		return time.Minute
	}
	return c.Period
}

func (c *Clock) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Run blocks, emitting one tick at the start of every period boundary,
// until ctx is done. If burst is true, Run emits exactly one tick for the
// current period and returns, instead of looping forever.
func (c *Clock) Run(ctx context.Context, conn *ConnectedEvents, burst bool) error {
	for {
		tick := c.nextBoundary()
		if err := c.sleepUntil(ctx, tick); err != nil {
			return err
		}
		if err := c.emit(ctx, conn, tick); err != nil {
			return err
		}
		if burst {
			return nil
		}
	}
}

// nextBoundary returns the first period-aligned instant strictly after now
// (now itself, if exactly on a boundary, is skipped), plus one second so
// the wake-up lands just after the boundary rather than just before it.
func (c *Clock) nextBoundary() time.Time {
	period := c.period()
	now := c.now()
	n := now.Unix()/int64(period.Seconds()) + 1
	return time.Unix(n*int64(period.Seconds()), 0).Add(time.Second)
}

func (c *Clock) sleepUntil(ctx context.Context, t time.Time) error {
	d := time.Until(t)
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (c *Clock) emit(ctx context.Context, conn *ConnectedEvents, tick time.Time) error {
	period := int64(c.period().Seconds())
	if period <= 0 {
		period = 1
	}
	uid := fmt.Sprintf("clock-%s-%d", c.Event.Name(), (tick.Unix()/period)%period)
	opts := []EmitOption{WithUID(uid)}
	if c.Meta != nil {
		opts = append(opts, WithMeta(c.Meta))
	}
	return EmitT(ctx, conn, c.Event, tick, opts...)
}
