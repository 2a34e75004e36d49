package walnats

import (
	"context"
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"github.com/nats-io/walnats/serializers"
)

// eventDescriptor type-erases Event[T] so a heterogeneous set of events can
// share one Events registry, the same way actorBinding erases Actor[T, R].
type eventDescriptor interface {
	Name() string
	SubjectName() string
	StreamName() string
	description() string
	limits() Limits
	streamConfig() jetstream.StreamConfig
	addStream(ctx context.Context, js jetstream.JetStream, create, update bool) error
	monitor(ctx context.Context, nc *nats.Conn, out chan<- any) (func(), error)
}

// Event is an immutable description of a typed NATS JetStream stream: its
// name, payload schema (the Go type parameter T), serializer, description,
// and size/age limits. Construct with NewEvent; never mutate afterward.
type Event[T any] struct {
	name        string
	serializer  serializers.Serializer[T]
	descr       string
	lim         Limits
}

// EventOption configures an Event at construction time.
type EventOption[T any] func(*Event[T])

// WithEventSerializer overrides the automatically chosen serializer.
func WithEventSerializer[T any](s serializers.Serializer[T]) EventOption[T] {
	return func(e *Event[T]) { e.serializer = s }
}

// WithEventDescription attaches a human-readable description (≤4096 chars),
// surfaced in the JetStream stream's own description field.
func WithEventDescription[T any](description string) EventOption[T] {
	return func(e *Event[T]) { e.descr = description }
}

// WithEventLimits bounds the backing stream's age/size/count.
func WithEventLimits[T any](limits Limits) EventOption[T] {
	return func(e *Event[T]) { e.lim = limits }
}

// NewEvent declares a new event named name, carrying payloads of type T.
// The name is used as both the NATS subject and (with '.' replaced by '-')
// the JetStream stream name, and must never change once deployed: changing
// it orphans the old stream's consumers. Panics if name is invalid.
func NewEvent[T any](name string, opts ...EventOption[T]) *Event[T] {
	validateName("event", name)
	e := &Event[T]{name: name}
	for _, opt := range opts {
		opt(e)
	}
	if e.serializer == nil {
		e.serializer = serializers.GetSerializer[T]()
	}
	return e
}

// Name is the event's unique name.
func (e *Event[T]) Name() string { return e.name }

// SubjectName is the NATS subject messages are published to.
func (e *Event[T]) SubjectName() string { return e.name }

// StreamName is the JetStream stream name backing this event. Walnats makes
// exactly one stream per event.
func (e *Event[T]) StreamName() string { return streamNameFor(e.name) }

func (e *Event[T]) description() string { return e.descr }
func (e *Event[T]) limits() Limits       { return e.lim }

// Encode converts a payload into bytes for publishing.
func (e *Event[T]) Encode(message T) ([]byte, error) {
	return e.serializer.Encode(message)
}

// Decode converts a message payload's bytes back into T.
func (e *Event[T]) Decode(data []byte) (T, error) {
	return e.serializer.Decode(data)
}

func (e *Event[T]) streamConfig() jetstream.StreamConfig {
	cfg := jetstream.StreamConfig{
		Name:        e.StreamName(),
		Subjects:    []string{e.SubjectName()},
		Description: e.descr,
		Retention:   jetstream.InterestPolicy,
	}
	if e.lim.Age != nil {
		cfg.MaxAge = *e.lim.Age
	}
	if e.lim.Consumers != nil {
		cfg.MaxConsumers = int(*e.lim.Consumers)
	}
	if e.lim.Messages != nil {
		cfg.MaxMsgs = *e.lim.Messages
	}
	if e.lim.Bytes != nil {
		cfg.MaxBytes = *e.lim.Bytes
	}
	if e.lim.MessageSize != nil {
		cfg.MaxMsgSize = int32(*e.lim.MessageSize)
	}
	return cfg
}

// addStream idempotently creates or updates the JetStream stream backing
// this event. When create is true and the stream already exists, that's
// only tolerated (not an error) if update is also true; when update is
// true, the stream config is pushed via an update call.
func (e *Event[T]) addStream(ctx context.Context, js jetstream.JetStream, create, update bool) error {
	cfg := e.streamConfig()
	if update {
		_, err := js.UpdateStream(ctx, cfg)
		if err == nil {
			return nil
		}
		if create {
			_, cErr := js.CreateStream(ctx, cfg)
			return convertStreamError(e.StreamName(), true, cErr)
		}
		return convertStreamError(e.StreamName(), false, err)
	}
	if create {
		_, err := js.CreateStream(ctx, cfg)
		return convertStreamError(e.StreamName(), false, err)
	}
	return nil
}

// monitor subscribes to the event's subject in live (non-durable) mode and
// pushes each decoded payload into out until the returned cancel func is
// called or ctx is done. Messages emitted while nobody is monitoring are
// not remembered: this is a live feed, not a replay.
func (e *Event[T]) monitor(ctx context.Context, nc *nats.Conn, out chan<- any) (func(), error) {
	sub, err := nc.Subscribe(e.SubjectName(), func(msg *nats.Msg) {
		payload, err := e.Decode(msg.Data)
		if err != nil {
			return
		}
		select {
		case out <- payload:
		case <-ctx.Done():
		}
	})
	if err != nil {
		return nil, fmt.Errorf("walnats: monitor subscribe to %q: %w", e.SubjectName(), err)
	}
	return func() { _ = sub.Unsubscribe() }, nil
}

// EventWithResponse extends Event with a response schema R, for use with
// RequestT. Build one with WithResponse or NewEventWithResponse.
type EventWithResponse[T, R any] struct {
	*Event[T]
	responseSerializer serializers.Serializer[R]
}

// NewEventWithResponse declares a request/reply event directly.
func NewEventWithResponse[T, R any](name string, opts ...EventOption[T]) *EventWithResponse[T, R] {
	e := NewEvent[T](name, opts...)
	return &EventWithResponse[T, R]{Event: e}
}

// WithResponse returns an EventWithResponse sharing e's name, serializer,
// description, and limits, additionally carrying a response schema R for
// use with RequestT. Go methods cannot introduce a new type
// parameter, so this is a package-level function rather than a method on
// Event, unlike the rest of the fluent event API. The same
// EventWithResponse instance (not a second copy of Event) must be used by
// the Actor that replies, otherwise the response is never published.
func WithResponse[T, R any](e *Event[T], opts ...func(*EventWithResponse[T, R])) *EventWithResponse[T, R] {
	ewr := &EventWithResponse[T, R]{Event: e}
	for _, opt := range opts {
		opt(ewr)
	}
	return ewr
}

// WithResponseSerializer overrides the automatically chosen response serializer.
func WithResponseSerializer[T, R any](s serializers.Serializer[R]) func(*EventWithResponse[T, R]) {
	return func(e *EventWithResponse[T, R]) { e.responseSerializer = s }
}

func (e *EventWithResponse[T, R]) responseCodec() serializers.Serializer[R] {
	if e.responseSerializer == nil {
		e.responseSerializer = serializers.GetSerializer[R]()
	}
	return e.responseSerializer
}

// EncodeResponse converts a handler's return value into bytes.
func (e *EventWithResponse[T, R]) EncodeResponse(message R) ([]byte, error) {
	return e.responseCodec().Encode(message)
}

// DecodeResponse converts a reply payload's bytes back into R.
func (e *EventWithResponse[T, R]) DecodeResponse(data []byte) (R, error) {
	return e.responseCodec().Decode(data)
}
