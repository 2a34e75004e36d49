// Package broker holds the ambient NATS connection concerns shared by the
// root package's Events and Actors: reconnect/disconnect logging and the
// Prometheus gauges that track consumer lag, generalized from the
// teacher's single hard-coded event stream to any number of actor
// consumers.
package broker

import (
	"context"
	"log"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
)

// ConnectOptions returns the standard reconnect/disconnect/closed handlers
// this project always attaches to a NATS connection, reporting through the
// package's own Prometheus counters. Combine with application-specific
// nats.Option values.
func ConnectOptions(reconnectWait time.Duration, maxReconnects int) []nats.Option {
	return []nats.Option{
		nats.ReconnectWait(reconnectWait),
		nats.MaxReconnects(maxReconnects),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				log.Printf("walnats: nats disconnected: %v", err)
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Printf("walnats: nats reconnected to %s", nc.ConnectedUrl())
			reconnectsTotal.Inc()
		}),
		nats.ClosedHandler(func(nc *nats.Conn) {
			log.Println("walnats: nats connection closed")
		}),
	}
}

// WatchConsumerLag polls cons.Info every interval and updates the package's
// lag/ack-pending gauges for actorName, until ctx is done.
func WatchConsumerLag(ctx context.Context, actorName string, cons jetstream.Consumer, interval time.Duration) {
	if interval <= 0 {
		interval = 15 * time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			info, err := cons.Info(ctx)
			if err != nil {
				continue
			}
			lagMessages.WithLabelValues(actorName).Set(float64(info.NumPending))
			ackPendingMessages.WithLabelValues(actorName).Set(float64(info.NumAckPending))
		case <-ctx.Done():
			return
		}
	}
}
