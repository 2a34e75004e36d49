package walnats

import (
	"fmt"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// Actors is a registry of actor descriptions. Construct once at startup
// with NewActors, then call Connect to obtain a ConnectedActors for
// registering consumers and listening.
type Actors struct {
	actors []actorBinding
}

// NewActors builds a registry from one or more actors, e.g.
// walnats.NewActors(sendWelcomeEmail, indexUser). Panics if empty or if two
// actors share a name.
func NewActors(actors ...actorBinding) *Actors {
	if len(actors) == 0 {
		panic("walnats: NewActors requires at least one actor")
	}
	seen := make(map[string]bool, len(actors))
	for _, a := range actors {
		if seen[a.Name()] {
			panic("walnats: duplicate actor name " + a.Name())
		}
		seen[a.Name()] = true
	}
	return &Actors{actors: actors}
}

// Get looks up a registered actor by name.
func (a *Actors) Get(name string) (actorBinding, bool) {
	for _, ab := range a.actors {
		if ab.Name() == name {
			return ab, true
		}
	}
	return nil, false
}

// Connect dials the NATS server and returns a ConnectedActors for
// registering consumers and listening for the actors in this registry.
// server is a URL, or "" for DefaultServer. The connection is owned by the
// returned ConnectedActors; call Close to release it.
func (a *Actors) Connect(server string, opts ...nats.Option) (*ConnectedActors, error) {
	nc, js, err := dial(server, opts...)
	if err != nil {
		return nil, err
	}
	return &ConnectedActors{nc: nc, js: js, actors: a.actors, owns: true}, nil
}

// ConnectExisting binds this registry to an already-connected NATS
// connection. The returned ConnectedActors does not own nc: Close is a
// no-op, leaving nc open for other users.
func (a *Actors) ConnectExisting(nc *nats.Conn) (*ConnectedActors, error) {
	js, err := jetstream.New(nc)
	if err != nil {
		return nil, fmt.Errorf("walnats: create jetstream context: %w", err)
	}
	return &ConnectedActors{nc: nc, js: js, actors: a.actors, owns: false}, nil
}
