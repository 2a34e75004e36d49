// Command walnats-demo declares one event and one actor, connects both to
// a local NATS server, registers their stream and consumer, emits a single
// message, and processes it once in burst mode — a minimal end-to-end
// smoke test of the framework wiring.
package main

import (
	"context"
	"log"
	"time"

	"github.com/nats-io/walnats"
	"github.com/nats-io/walnats/config"
	"github.com/nats-io/walnats/middleware"
)

// OrderPlaced is the payload of the demo event.
type OrderPlaced struct {
	OrderID string `json:"order_id"`
	Total   int64  `json:"total_cents"`
}

func main() {
	cfg := config.Load()

	orderPlaced := walnats.NewEvent[OrderPlaced]("orders-placed",
		walnats.WithEventDescription[OrderPlaced]("Emitted once an order has been accepted."),
	)

	logging := middleware.NewLogging()
	sendReceipt := walnats.NewActor(
		"send-receipt",
		orderPlaced,
		func(ctx context.Context, order OrderPlaced) (struct{}, error) {
			log.Printf("sending receipt for order %s ($%.2f)", order.OrderID, float64(order.Total)/100)
			return struct{}{}, nil
		},
		walnats.WithMiddlewares[OrderPlaced, struct{}](logging),
	)

	events, err := walnats.NewEvents(orderPlaced).Connect(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("connect events: %v", err)
	}
	defer events.Close()

	actors, err := walnats.NewActors(sendReceipt).ConnectExisting(events.Conn())
	if err != nil {
		log.Fatalf("connect actors: %v", err)
	}

	ctx := context.Background()
	if err := events.Register(ctx, true, true); err != nil {
		log.Fatalf("register events: %v", err)
	}
	if err := actors.Register(ctx, true, true); err != nil {
		log.Fatalf("register actors: %v", err)
	}

	if err := walnats.EmitT(ctx, events, orderPlaced, OrderPlaced{OrderID: "demo-1", Total: 4999}); err != nil {
		log.Fatalf("emit: %v", err)
	}

	listenCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := actors.Listen(listenCtx, walnats.WithBurst(true)); err != nil {
		log.Fatalf("listen: %v", err)
	}
}
