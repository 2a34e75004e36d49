package walnats

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/walnats/internal/tasks"
)

// ConnectedActors is an Actors registry bound to a live NATS connection.
// Build one with Actors.Connect. Use it to register consumers and to run
// the subscriber runtime with Listen.
type ConnectedActors struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	actors []actorBinding
	owns   bool
}

// Close releases the underlying NATS connection, unless it was obtained via
// Actors.ConnectExisting (an externally owned connection).
func (c *ConnectedActors) Close() {
	if c.owns && c.nc != nil {
		c.nc.Close()
	}
}

// Register creates or updates the JetStream durable consumer for every
// actor in the registry, concurrently. The actor's event stream must
// already exist (see ConnectedEvents.Register) before its consumer can be
// created.
func (c *ConnectedActors) Register(ctx context.Context, create, update bool) error {
	var wg sync.WaitGroup
	errs := make([]error, len(c.actors))
	for i, a := range c.actors {
		wg.Add(1)
		go func(i int, a actorBinding) {
			defer wg.Done()
			errs[i] = a.addConsumer(ctx, c.js, create, update)
		}(i, a)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// listenOptions configures ConnectedActors.Listen.
type listenOptions struct {
	maxPolls    int
	maxJobs     int
	maxProcs    int
	maxThreads  int
	pollBatch   int
	pollDelay   time.Duration
	burst       bool
}

// ListenOption configures a single Listen call.
type ListenOption func(*listenOptions)

// WithMaxPolls bounds how many actors may have a Fetch call in flight
// against the broker at once, across the whole process. Defaults to the
// number of registered actors.
func WithMaxPolls(n int) ListenOption { return func(o *listenOptions) { o.maxPolls = n } }

// WithMaxJobsGlobal bounds how many handler invocations may be in flight at
// once across every actor in this process, on top of each actor's own
// MaxJobs limit. Default 64.
func WithMaxJobsGlobal(n int) ListenOption { return func(o *listenOptions) { o.maxJobs = n } }

// WithMaxProcesses bounds how many ExecuteInProcessPool handlers may run
// concurrently across every actor. Default 4.
func WithMaxProcesses(n int) ListenOption { return func(o *listenOptions) { o.maxProcs = n } }

// WithMaxThreads bounds how many ExecuteInThreadPool handlers may run
// concurrently across every actor, independent of and on top of the global
// handler concurrency gate. Default min(NumCPU+4, 32).
func WithMaxThreads(n int) ListenOption { return func(o *listenOptions) { o.maxThreads = n } }

// WithPollBatch sets how many messages each Fetch call requests. Default 10.
func WithPollBatch(n int) ListenOption { return func(o *listenOptions) { o.pollBatch = n } }

// WithPollDelay sets how long a Fetch call waits for at least one message
// before returning empty. Default 5s.
func WithPollDelay(d time.Duration) ListenOption { return func(o *listenOptions) { o.pollDelay = d } }

// WithBurst makes Listen drain whatever is currently pending on each
// actor's consumer and then return, instead of polling forever. Intended
// for tests and one-shot batch processing.
func WithBurst(enabled bool) ListenOption { return func(o *listenOptions) { o.burst = enabled } }

// runtimeParams holds the shared concurrency gates and connection handles
// every running actor needs, built once per Listen call.
type runtimeParams struct {
	nc        *nats.Conn
	js        jetstream.JetStream
	pollSem   *semaphore
	globalSem *semaphore
	procSem   *semaphore
	threadSem *semaphore
	tasks     *tasks.Supervisor
	pollBatch int
	pollDelay time.Duration
	burst     bool
}

// Listen runs every actor's pull loop until ctx is done (or, with
// WithBurst, until each actor's consumer is drained). If ctx is done, it
// first cancels the contexts of in-flight handler invocations, heartbeats
// and deferred middleware hooks; in either case it then waits for them to
// return. It blocks; run it on its own goroutine or as the last call in
// main.
func (c *ConnectedActors) Listen(ctx context.Context, opts ...ListenOption) error {
	maxThreads := runtime.NumCPU() + 4
	if maxThreads > 32 {
		maxThreads = 32
	}
	o := listenOptions{
		maxPolls:   len(c.actors),
		maxJobs:    64,
		maxProcs:   4,
		maxThreads: maxThreads,
		pollBatch:  10,
		pollDelay:  5 * time.Second,
	}
	for _, opt := range opts {
		opt(&o)
	}

	rt := runtimeParams{
		nc:        c.nc,
		js:        c.js,
		pollSem:   newSemaphore(o.maxPolls),
		globalSem: newSemaphore(o.maxJobs),
		procSem:   newSemaphore(o.maxProcs),
		threadSem: newSemaphore(o.maxThreads),
		tasks:     tasks.New(),
		pollBatch: o.pollBatch,
		pollDelay: o.pollDelay,
		burst:     o.burst,
	}

	var wg sync.WaitGroup
	errs := make([]error, len(c.actors))
	for i, a := range c.actors {
		wg.Add(1)
		go func(i int, a actorBinding) {
			defer wg.Done()
			errs[i] = a.run(ctx, rt)
		}(i, a)
	}
	wg.Wait()
	if ctx.Err() != nil {
		// Shutdown was requested: don't wait indefinitely for in-flight
		// handler/pulse/middleware goroutines to notice on their own.
		rt.tasks.Cancel()
	}
	rt.tasks.Wait()

	var joined []error
	for _, err := range errs {
		if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
			joined = append(joined, err)
		}
	}
	if len(joined) == 0 {
		return nil
	}
	return fmt.Errorf("walnats: actor runtime: %w", errors.Join(joined...))
}
