package walnats

import (
	"context"
	"time"

	"github.com/nats-io/nats.go/jetstream"
)

// actorBinding type-erases Actor[T, R] so a heterogeneous set of actors can
// share one Actors registry and one subscriber runtime.
type actorBinding interface {
	Name() string
	EventName() string
	EventStreamName() string
	consumerConfig() jetstream.ConsumerConfig
	addConsumer(ctx context.Context, js jetstream.JetStream, create, update bool) error
	run(ctx context.Context, rt runtimeParams) error
}

// Handler processes one decoded message and optionally returns a response.
// For events without a response schema, R should be instantiated as
// struct{} and the returned value is ignored.
type Handler[T, R any] func(ctx context.Context, message T) (R, error)

// Actor is an immutable description of a durable consumer group bound to
// one Event: its name, handler, consumer settings, retry schedule, and
// local concurrency controls. Exactly one running instance of an Actor with
// a given name receives any particular message, so the same Actor can run
// on multiple machines for horizontal scaling without losing or
// double-processing a message (barring redelivery after failure).
//
// The following fields are submitted to NATS JetStream and can never be
// changed once the actor is first registered: Description, AckWait,
// MaxAttempts, MaxAckPending.
type Actor[T, R any] struct {
	name    string
	event   *Event[T]
	withRsp *EventWithResponse[T, R]
	handler Handler[T, R]

	description   string
	ackWait       time.Duration
	maxAttempts   int // 0 means unbounded
	maxAckPending int

	middlewares []Middleware
	maxJobs     int
	jobTimeout  time.Duration
	executeIn   ExecuteIn
	retryDelay  []time.Duration
	pulse       bool
	priority    Priority
}

// ActorOption configures an Actor at construction time.
type ActorOption[T, R any] func(*Actor[T, R])

func WithActorDescription[T, R any](d string) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.description = d }
}

// WithAckWait sets how long NATS waits after the last heartbeat before
// attempting redelivery. Default 16s.
func WithAckWait[T, R any](d time.Duration) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.ackWait = d }
}

// WithMaxAttempts bounds how many times NATS will attempt delivery. Default
// unbounded.
func WithMaxAttempts[T, R any](n int) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.maxAttempts = n }
}

// WithMaxAckPending bounds how many messages can be in flight (delivered,
// unacked) across the whole system for this actor. Default 1000.
func WithMaxAckPending[T, R any](n int) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.maxAckPending = n }
}

// WithMiddlewares attaches lifecycle hooks. Middlewares cannot be used for
// flow control.
func WithMiddlewares[T, R any](mw ...Middleware) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.middlewares = mw }
}

// WithMaxJobs bounds how many handler invocations this actor can have in
// flight simultaneously on this process. Default 16.
func WithMaxJobs[T, R any](n int) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.maxJobs = n }
}

// WithJobTimeout bounds a single handler invocation. Default 32s.
func WithJobTimeout[T, R any](d time.Duration) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.jobTimeout = d }
}

// WithExecuteIn selects where the handler runs. Default ExecuteInline.
func WithExecuteIn[T, R any](mode ExecuteIn) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.executeIn = mode }
}

// WithRetryDelay sets the nak-delay schedule for successive delivery
// attempts; the last entry repeats for attempts beyond the sequence's
// length. Must be non-empty. Default [0.5s, 1s, 2s, 4s].
func WithRetryDelay[T, R any](delays ...time.Duration) ActorOption[T, R] {
	return func(a *Actor[T, R]) {
		if len(delays) == 0 {
			panic("walnats: retry delay must not be empty")
		}
		a.retryDelay = delays
	}
}

// WithPulse toggles the in-progress heartbeat. Default true. Disabling it
// avoids a message getting stuck if a handler hangs, but then the handler
// must finish faster than AckWait.
func WithPulse[T, R any](enabled bool) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.pulse = enabled }
}

// WithPriority sets the actor's scheduling priority. Default PriorityNormal.
func WithPriority[T, R any](p Priority) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.priority = p }
}

// WithResponseActor marks this actor as the responder for event's request/
// reply exchanges: its handler's return value is published to the caller's
// reply inbox on success. event must be the same EventWithResponse instance
// used by RequestT callers.
func WithResponseActor[T, R any](event *EventWithResponse[T, R]) ActorOption[T, R] {
	return func(a *Actor[T, R]) { a.withRsp = event }
}

// NewActor declares a new actor named name, listening to event, invoking
// handler for each message. Panics if name is invalid.
func NewActor[T, R any](
	name string,
	event *Event[T],
	handler Handler[T, R],
	opts ...ActorOption[T, R],
) *Actor[T, R] {
	validateName("actor", name)
	a := &Actor[T, R]{
		name:          name,
		event:         event,
		handler:       handler,
		ackWait:       16 * time.Second,
		maxAckPending: 1000,
		maxJobs:       16,
		jobTimeout:    32 * time.Second,
		executeIn:     ExecuteInline,
		retryDelay:    []time.Duration{500 * time.Millisecond, time.Second, 2 * time.Second, 4 * time.Second},
		pulse:         true,
		priority:      PriorityNormal,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Name is the actor's unique name, used as the JetStream durable consumer
// name. It must never change once deployed: a renamed actor leaves its old
// consumer behind, accumulating undelivered messages.
func (a *Actor[T, R]) Name() string { return a.name }

// EventName is the name of the event this actor listens to.
func (a *Actor[T, R]) EventName() string { return a.event.Name() }

// EventStreamName is the JetStream stream backing the actor's event.
func (a *Actor[T, R]) EventStreamName() string { return a.event.StreamName() }

func (a *Actor[T, R]) consumerConfig() jetstream.ConsumerConfig {
	cfg := jetstream.ConsumerConfig{
		Durable:       a.name,
		Description:   a.description,
		AckWait:       a.ackWait,
		AckPolicy:     jetstream.AckExplicitPolicy,
		MaxAckPending: a.maxAckPending,
		FilterSubject: a.event.SubjectName(),
	}
	if a.maxAttempts > 0 {
		cfg.MaxDeliver = a.maxAttempts
	}
	return cfg
}

// addConsumer idempotently creates or updates this actor's durable
// consumer.
func (a *Actor[T, R]) addConsumer(ctx context.Context, js jetstream.JetStream, create, update bool) error {
	cfg := a.consumerConfig()
	stream := a.event.StreamName()
	if update {
		_, err := js.UpdateConsumer(ctx, stream, cfg)
		if err == nil {
			return nil
		}
		if create {
			_, cErr := js.CreateConsumer(ctx, stream, cfg)
			return convertConsumerError(stream, a.name, true, cErr)
		}
		return convertConsumerError(stream, a.name, false, err)
	}
	if create {
		_, err := js.CreateConsumer(ctx, stream, cfg)
		return convertConsumerError(stream, a.name, false, err)
	}
	return nil
}

// nakDelay returns the retry delay for a delivery attempt, indexed by the
// broker's own NumDelivered count (nil meaning "no delivery yet, no prior
// nak"): retry_delay[min(NumDelivered, len-1)], matching get_nak_delay in
// spec.md §4.4.
func (a *Actor[T, R]) nakDelay(attempt *uint64) time.Duration {
	delays := a.retryDelay
	if len(delays) == 0 {
		return 0
	}
	if attempt == nil {
		return delays[0]
	}
	i := *attempt
	if i >= uint64(len(delays)) {
		return delays[len(delays)-1]
	}
	return delays[i]
}
