// Package walnats is a typed, NATS JetStream-backed actor framework for
// event-driven background jobs and microservices.
//
// A process declares Events it emits and Actors that consume them. Events
// and Actors are registered into Events and Actors collections, which are
// then connected to a NATS server to obtain ConnectedEvents (for publishing)
// and ConnectedActors (for running the subscription runtime):
//
//	events := walnats.NewEvents(userCreated)
//	conn, err := events.Connect("nats://localhost:4222")
//	defer conn.Close()
//	err = conn.Register(ctx, true, true)
//	err = walnats.EmitT(ctx, conn, userCreated, user)
//
//	actors := walnats.NewActors(sendWelcomeEmail)
//	aconn, err := actors.Connect("nats://localhost:4222")
//	defer aconn.Close()
//	err = aconn.Register(ctx, true, true)
//	err = aconn.Listen(ctx)
//
// See the serializers, middleware, and decorators subpackages for the
// supporting pieces: payload codecs, actor lifecycle hooks, and handler
// flow-control wrappers.
package walnats
