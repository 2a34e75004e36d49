package walnats

import (
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"

	"github.com/nats-io/walnats/internal/broker"
)

// Events is a registry of event descriptors. Construct once at startup with
// NewEvents, then call Connect to obtain a ConnectedEvents for publishing.
type Events struct {
	events []eventDescriptor
}

// NewEvents builds a registry from one or more events, e.g.
// walnats.NewEvents(userCreated, userDeleted). Panics if empty.
func NewEvents(events ...eventDescriptor) *Events {
	if len(events) == 0 {
		panic("walnats: NewEvents requires at least one event")
	}
	return &Events{events: events}
}

// Get looks up a registered event by name.
func (e *Events) Get(name string) (eventDescriptor, bool) {
	for _, ev := range e.events {
		if ev.Name() == name {
			return ev, true
		}
	}
	return nil, false
}

// dial connects to a NATS server at url ("" meaning DefaultServer) and
// wraps it in a JetStream context. Shared by Events.Connect and
// Actors.Connect. The standard reconnect/disconnect handling from
// internal/broker is applied first, so an explicit opts entry can still
// override any individual setting (nats.Option values are applied in
// order).
func dial(url string, opts ...nats.Option) (*nats.Conn, jetstream.JetStream, error) {
	if url == "" {
		url = DefaultServer
	}
	all := append(broker.ConnectOptions(2*time.Second, -1), opts...)
	nc, err := nats.Connect(url, all...)
	if err != nil {
		return nil, nil, fmt.Errorf("walnats: connect to %q: %w", url, err)
	}
	js, err := jetstream.New(nc)
	if err != nil {
		nc.Close()
		return nil, nil, fmt.Errorf("walnats: create jetstream context: %w", err)
	}
	return nc, js, nil
}

// Connect dials the NATS server and returns a ConnectedEvents for
// publishing the events in this registry. server is a URL, or "" for
// DefaultServer. The connection is owned by the returned ConnectedEvents;
// call Close to release it.
func (e *Events) Connect(server string, opts ...nats.Option) (*ConnectedEvents, error) {
	nc, js, err := dial(server, opts...)
	if err != nil {
		return nil, err
	}
	return &ConnectedEvents{nc: nc, js: js, events: e.events, owns: true}, nil
}

// ConnectExisting binds this registry to an already-connected NATS
// connection. The returned ConnectedEvents does not own nc: Close is a
// no-op, leaving nc open for other users.
func (e *Events) ConnectExisting(nc *nats.Conn) (*ConnectedEvents, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("walnats: create jetstream context: %w", err)
	}
	return &ConnectedEvents{nc: nc, js: js, events: e.events, owns: false}, nil
}
