package broker

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	lagMessages = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "walnats",
			Subsystem: "consumer",
			Name:      "lag_messages",
			Help:      "Messages pending delivery to an actor's consumer.",
		},
		[]string{"actor"},
	)

	ackPendingMessages = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "walnats",
			Subsystem: "consumer",
			Name:      "ack_pending_messages",
			Help:      "Messages delivered to an actor's consumer but not yet acknowledged.",
		},
		[]string{"actor"},
	)

	reconnectsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "walnats",
			Subsystem: "nats",
			Name:      "reconnects_total",
			Help:      "Total number of NATS reconnection events.",
		},
	)

	metricsOnce sync.Once
)

func init() {
	metricsOnce.Do(func() {
		prometheus.DefaultRegisterer.MustRegister(lagMessages, ackPendingMessages, reconnectsTotal)
	})
}
