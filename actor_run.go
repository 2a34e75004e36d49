package walnats

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/nats-io/nats.go/jetstream"

	"github.com/nats-io/walnats/internal/broker"
)

// run is the actor's pull loop: it fetches batches of messages from its
// durable consumer and dispatches each to its own tracked goroutine, until
// ctx is done (or, in burst mode, until the consumer reports nothing
// pending). It implements actorBinding.run; see that interface for why this
// lives on Actor[T, R] itself rather than on a type-erased wrapper.
func (a *Actor[T, R]) run(ctx context.Context, rt runtimeParams) error {
	cons, err := rt.js.Consumer(ctx, a.event.StreamName(), a.name)
	if err != nil {
		return fmt.Errorf("walnats: actor %q: load consumer: %w", a.name, err)
	}

	actorSem := newSemaphore(a.maxJobs)

	rt.tasks.Go(ctx, func(taskCtx context.Context) {
		broker.WatchConsumerLag(taskCtx, a.name, cons, 15*time.Second)
	})

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		// Backpressure wait: don't bother polling for more work if this
		// actor, or the process as a whole, has no spare job capacity.
		if err := waitForPermit(ctx, actorSem); err != nil {
			return err
		}
		if err := waitForPermit(ctx, rt.globalSem); err != nil {
			return err
		}

		if err := rt.pollSem.Acquire(ctx); err != nil {
			return err
		}
		batch, err := cons.Fetch(rt.pollBatch, jetstream.FetchMaxWait(rt.pollDelay))
		rt.pollSem.Release()
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			// Transient fetch error (e.g. a timed-out long-poll with no
			// messages available); back off to the next loop iteration.
			continue
		}

		n := 0
		for msg := range batch.Messages() {
			n++
			msg := msg
			rt.tasks.Go(ctx, func(taskCtx context.Context) {
				a.handleMessage(taskCtx, rt, actorSem, msg)
			})
		}
		if rt.burst && n == 0 {
			info, err := cons.Info(ctx)
			if err == nil && info.NumPending == 0 && info.NumAckPending == 0 {
				return nil
			}
		}
	}
}

// handleMessage implements the full per-message lifecycle: the delay-nak
// check, per-actor-then-global concurrency acquisition (in that order,
// matching the order jobs release in), the optional in-progress heartbeat,
// decode, middleware dispatch, handler execution, and the final ack/nak.
func (a *Actor[T, R]) handleMessage(ctx context.Context, rt runtimeParams, actorSem *semaphore, msg jetstream.Msg) {
	meta, err := msg.Metadata()
	if err != nil {
		_ = msg.Nak()
		return
	}

	headers := msg.Headers()
	if delayHeader := headers.Get(HeaderDelay); delayHeader != "" {
		if deadline, err := parseDelayHeader(delayHeader); err == nil {
			if remaining := time.Until(deadline); remaining > time.Millisecond {
				_ = msg.NakWithDelay(remaining)
				return
			}
		}
	}

	if err := actorSem.Acquire(ctx); err != nil {
		_ = msg.Nak()
		return
	}
	defer actorSem.Release()

	release, err := a.priority.acquire(ctx, rt.globalSem)
	if err != nil {
		_ = msg.Nak()
		return
	}
	defer release()

	msgCtx := Context{
		ActorName:    a.name,
		EventName:    a.event.Name(),
		Seq:          meta.Sequence.Stream,
		NumDelivered: meta.NumDelivered,
		Timestamp:    meta.Timestamp,
		TraceID:      headers.Get(HeaderTrace),
		delayed:      headers.Get(HeaderDelay) != "",
	}

	var stopPulse chan struct{}
	if a.pulse {
		stopPulse = make(chan struct{})
		interval := a.ackWait / 2
		if interval <= 0 {
			interval = 5 * time.Second
		}
		rt.tasks.Go(ctx, func(context.Context) { a.runPulse(msg, interval, stopPulse) })
	}
	stop := func() {
		if stopPulse != nil {
			close(stopPulse)
		}
	}

	payload, decErr := a.event.Decode(msg.Data())
	if decErr != nil {
		stop()
		a.fail(ctx, rt, msgCtx, fmt.Errorf("walnats: decode message: %w", decErr), msg)
		return
	}
	msgCtx.Message = payload

	a.dispatchOnStart(ctx, rt, msgCtx)

	start := time.Now()
	resp, runErr := a.invoke(ctx, payload, rt)
	stop()

	if runErr != nil {
		a.fail(ctx, rt, msgCtx, runErr, msg)
		return
	}

	if err := msg.Ack(); err != nil {
		return
	}
	if a.withRsp != nil {
		if reply := headers.Get(HeaderReply); reply != "" {
			if data, encErr := a.withRsp.EncodeResponse(resp); encErr == nil {
				// Best effort: a caller who isn't waiting (timed out, or
				// never called Request) simply never receives this.
				_ = rt.nc.Publish(reply, data)
			}
		}
	}
	a.dispatchOnSuccess(ctx, rt, msgCtx, time.Since(start))
}

func (a *Actor[T, R]) fail(ctx context.Context, rt runtimeParams, msgCtx Context, err error, msg jetstream.Msg) {
	numDelivered := msgCtx.NumDelivered
	_ = msg.NakWithDelay(a.nakDelay(&numDelivered))
	a.dispatchOnFailure(ctx, rt, ErrorContext{Context: msgCtx, Err: err})
}

func (a *Actor[T, R]) runPulse(msg jetstream.Msg, interval time.Duration, stop <-chan struct{}) {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-stop:
			return
		case <-t.C:
			if err := msg.InProgress(); err != nil {
				return
			}
		}
	}
}

// invoke runs the handler per the actor's ExecuteIn mode, bounded by
// JobTimeout.
func (a *Actor[T, R]) invoke(ctx context.Context, payload T, rt runtimeParams) (R, error) {
	jobCtx, cancel := context.WithTimeout(ctx, a.jobTimeout)
	defer cancel()

	switch a.executeIn {
	case ExecuteInThreadPool:
		return a.invokeOnPool(jobCtx, payload, rt.threadSem)
	case ExecuteInProcessPool:
		// Go has no process-level handler isolation without a bespoke RPC
		// boundary; this mode shares the handler's own process but still
		// bounds its concurrency separately, for API parity with
		// deployments that expect a distinct process budget.
		return a.invokeOnPool(jobCtx, payload, rt.procSem)
	default:
		return a.handler(jobCtx, payload)
	}
}

func (a *Actor[T, R]) invokeOnPool(ctx context.Context, payload T, pool *semaphore) (R, error) {
	var zero R
	if err := pool.Acquire(ctx); err != nil {
		return zero, err
	}
	defer pool.Release()

	type result struct {
		resp R
		err  error
	}
	done := make(chan result, 1)
	go func() {
		resp, err := a.handler(ctx, payload)
		done <- result{resp, err}
	}()
	select {
	case r := <-done:
		return r.resp, r.err
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (a *Actor[T, R]) dispatchOnStart(ctx context.Context, rt runtimeParams, c Context) {
	for _, mw := range a.middlewares {
		if deferred := mw.OnStart(c); deferred != nil {
			rt.tasks.Go(ctx, func(context.Context) { deferred() })
		}
	}
}

func (a *Actor[T, R]) dispatchOnSuccess(ctx context.Context, rt runtimeParams, c Context, d time.Duration) {
	for _, mw := range a.middlewares {
		if deferred := mw.OnSuccess(OkContext{Context: c, Duration: d}); deferred != nil {
			rt.tasks.Go(ctx, func(context.Context) { deferred() })
		}
	}
}

func (a *Actor[T, R]) dispatchOnFailure(ctx context.Context, rt runtimeParams, ec ErrorContext) {
	for _, mw := range a.middlewares {
		if deferred := mw.OnFailure(ec); deferred != nil {
			rt.tasks.Go(ctx, func(context.Context) { deferred() })
		}
	}
}

// parseDelayHeader parses the decimal UTC-epoch-seconds deadline carried by
// HeaderDelay.
func parseDelayHeader(v string) (time.Time, error) {
	secs, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return time.Time{}, err
	}
	whole := int64(secs)
	frac := secs - float64(whole)
	return time.Unix(whole, int64(frac*1e9)), nil
}
