package walnats

// Reserved NATS message headers used by the framework. Handlers never see
// these directly; they are consumed by ConnectedEvents and ConnectedActors.
const (
	// HeaderID is the header NATS JetStream uses for message deduplication.
	HeaderID = "Nats-Msg-Id"

	// HeaderReply carries the inbox subject for a request/reply exchange.
	// The framework cannot reuse NATS's native reply subject because
	// JetStream already uses it for ack coordination.
	HeaderReply = "Walnats-Reply"

	// HeaderTrace carries an opaque distributed tracing id.
	HeaderTrace = "Walnats-Trace"

	// HeaderDelay carries a UTC epoch-seconds deadline (decimal string)
	// before which an actor must nak-with-delay instead of running the handler.
	HeaderDelay = "Walnats-Delay"
)

// DefaultServer is the NATS server address used when none is given to
// Events.Connect or Actors.Connect.
const DefaultServer = "nats://localhost:4222"
