package walnats

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ConnectedEvents is an Events registry bound to a live NATS connection.
// Build one with Events.Connect. Use it to register streams and publish
// events.
type ConnectedEvents struct {
	nc     *nats.Conn
	js     jetstream.JetStream
	events []eventDescriptor
	owns   bool
}

// Close releases the underlying NATS connection, unless it was obtained via
// Events.ConnectExisting (an externally owned connection).
func (c *ConnectedEvents) Close() {
	if c.owns && c.nc != nil {
		c.nc.Close()
	}
}

// Conn returns the underlying NATS connection, for sharing with
// Actors.ConnectExisting or other NATS-aware code in the same process.
func (c *ConnectedEvents) Conn() *nats.Conn { return c.nc }

// Register creates or updates the JetStream stream for every event in the
// registry, concurrently. When create is true and update is false, a
// stream that already exists with different configuration surfaces as a
// StreamExistsError.
func (c *ConnectedEvents) Register(ctx context.Context, create, update bool) error {
	var wg sync.WaitGroup
	errs := make([]error, len(c.events))
	for i, ev := range c.events {
		wg.Add(1)
		go func(i int, ev eventDescriptor) {
			defer wg.Done()
			errs[i] = ev.addStream(ctx, c.js, create, update)
		}(i, ev)
	}
	wg.Wait()
	return errors.Join(errs...)
}

// emitOptions configures EmitT and RequestT.
type emitOptions struct {
	uid      string
	traceID  string
	delay    time.Duration
	hasDelay bool
	meta     map[string]string
	sync     bool
}

// EmitOption configures a single Emit or Request call.
type EmitOption func(*emitOptions)

// WithUID sets the message's deduplication id (the Nats-Msg-Id header).
// Two sync emits with the same uid within the broker's dedup window
// (2 minutes by default) result in exactly one handler invocation.
func WithUID(uid string) EmitOption {
	return func(o *emitOptions) { o.uid = uid }
}

// WithTraceID attaches a distributed tracing id, exposed to middlewares via
// the Walnats-Trace header but never passed to handlers directly.
func WithTraceID(traceID string) EmitOption {
	return func(o *emitOptions) { o.traceID = traceID }
}

// WithDelay delays the earliest moment an actor may run the handler for
// this message by d. Internally, the message is delivered to the actor
// immediately and nak'ed with the remaining delay, without invoking the
// handler or any middleware, until the delay has elapsed.
func WithDelay(d time.Duration) EmitOption {
	return func(o *emitOptions) { o.delay = d; o.hasDelay = true }
}

// WithMeta attaches arbitrary headers. They never reach the handler but are
// available to middlewares and third-party tooling.
func WithMeta(meta map[string]string) EmitOption {
	return func(o *emitOptions) { o.meta = meta }
}

// WithSync makes EmitT perform a JetStream-acknowledged publish instead of
// the default fire-and-forget raw publish into the connection's outbound
// buffer. A sync publish blocks for the broker's ack and, if the broker
// reports the message as a duplicate of one already inside the
// deduplication window, logs it at debug level rather than treating it as
// an error.
func WithSync() EmitOption {
	return func(o *emitOptions) { o.sync = true }
}

// WithCloudEventMeta attaches CloudEvents v1.0 metadata as `ce-*` headers.
// If no uid is given via WithUID, the CloudEvent's ID becomes the
// deduplication id.
func WithCloudEventMeta(ce CloudEvent) EmitOption {
	return func(o *emitOptions) {
		o.meta = ce.AsHeaders()
		if o.uid == "" {
			o.uid = ce.ID
		}
	}
}

func (c *ConnectedEvents) makeHeaders(reply string, opts []EmitOption) nats.Header {
	var o emitOptions
	for _, opt := range opts {
		opt(&o)
	}
	h := nats.Header{}
	for k, v := range o.meta {
		h.Set(k, v)
	}
	if o.uid != "" {
		h.Set(HeaderID, o.uid)
	}
	if o.traceID != "" {
		h.Set(HeaderTrace, o.traceID)
	}
	if o.hasDelay {
		h.Set(HeaderDelay, fmt.Sprintf("%.6f", float64(time.Now().Add(o.delay).UnixNano())/1e9))
	}
	// JetStream already uses the native reply subject for ack coordination,
	// so a custom reply inbox travels in its own header.
	if reply != "" {
		h.Set(HeaderReply, reply)
	}
	return h
}

// EmitT encodes message with event's serializer and publishes it to the
// event's subject. It is a package-level function, not a method, because Go
// methods cannot introduce a new type parameter beyond the receiver's — a
// ConnectedEvents is untyped (it holds heterogeneous events), so the
// payload type T can only be pinned at the call site.
func EmitT[T any](ctx context.Context, c *ConnectedEvents, event *Event[T], message T, opts ...EmitOption) error {
	var o emitOptions
	for _, opt := range opts {
		opt(&o)
	}
	payload, err := event.Encode(message)
	if err != nil {
		return fmt.Errorf("walnats: encode event %q: %w", event.Name(), err)
	}
	headers := c.makeHeaders("", opts)
	msg := &nats.Msg{Subject: event.SubjectName(), Data: payload, Header: headers}

	if !o.sync {
		// Fire-and-forget: a plain publish into the connection's outbound
		// buffer, not acknowledged by JetStream.
		return c.nc.PublishMsg(msg)
	}

	ack, err := c.js.PublishMsg(ctx, msg)
	if err != nil {
		return fmt.Errorf("walnats: publish event %q: %w", event.Name(), err)
	}
	if ack.Duplicate {
		slog.Debug("walnats: duplicate message id within dedup window", "event", event.Name(), "uid", o.uid)
	}
	return nil
}

// RequestT publishes message to event's subject and waits up to timeout for
// exactly one actor to reply, returning the decoded response. Exactly one
// response is returned even if multiple actors reply: the first wins. No
// persistent stream backs the reply subject.
func RequestT[T, R any](
	ctx context.Context,
	c *ConnectedEvents,
	event *EventWithResponse[T, R],
	message T,
	timeout time.Duration,
	opts ...EmitOption,
) (R, error) {
	var zero R
	if timeout <= 0 {
		timeout = 4 * time.Second
	}
	payload, err := event.Encode(message)
	if err != nil {
		return zero, fmt.Errorf("walnats: encode event %q: %w", event.Name(), err)
	}
	inbox := c.nc.NewInbox()
	headers := c.makeHeaders(inbox, opts)

	sub, err := c.nc.SubscribeSync(inbox)
	if err != nil {
		return zero, fmt.Errorf("walnats: subscribe to reply inbox: %w", err)
	}
	defer sub.Unsubscribe()

	msg := &nats.Msg{Subject: event.SubjectName(), Data: payload, Header: headers}
	if _, err := c.js.PublishMsg(ctx, msg); err != nil {
		return zero, fmt.Errorf("walnats: publish request: %w", err)
	}

	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	reply, err := sub.NextMsgWithContext(reqCtx)
	if err != nil {
		return zero, fmt.Errorf("walnats: request to %q timed out: %w", event.SubjectName(), err)
	}
	return event.DecodeResponse(reply.Data)
}

// Monitor subscribes to every event in the registry in live (non-durable)
// mode and pushes each decoded payload into the returned channel until ctx
// is done or the returned cancel func is called. Events emitted while
// nobody is monitoring are not remembered — it's a live feed, useful for
// debugging.
func (c *ConnectedEvents) Monitor(ctx context.Context) (<-chan any, func(), error) {
	out := make(chan any)
	cancels := make([]func(), 0, len(c.events))
	for _, ev := range c.events {
		cancel, err := ev.monitor(ctx, c.nc, out)
		if err != nil {
			for _, c := range cancels {
				c()
			}
			return nil, nil, err
		}
		cancels = append(cancels, cancel)
	}
	stop := func() {
		for _, c := range cancels {
			c()
		}
	}
	go func() {
		<-ctx.Done()
		stop()
	}()
	return out, stop, nil
}
