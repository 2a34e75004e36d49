package middleware

import (
	"github.com/nats-io/walnats"
	"github.com/prometheus/client_golang/prometheus"
)

// Prometheus reports per-actor counts and durations via the standard
// client_golang collectors, registered once on construction.
type Prometheus struct {
	walnats.BaseMiddleware

	started  *prometheus.CounterVec
	ok       *prometheus.CounterVec
	failed   *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewPrometheus creates and registers the actor metrics on reg. Pass
// prometheus.DefaultRegisterer for the global registry.
func NewPrometheus(reg prometheus.Registerer) *Prometheus {
	m := &Prometheus{
		started: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walnats",
			Subsystem: "actor",
			Name:      "started_total",
			Help:      "Number of actor handler invocations started.",
		}, []string{"actor", "event"}),
		ok: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walnats",
			Subsystem: "actor",
			Name:      "succeeded_total",
			Help:      "Number of actor handler invocations that succeeded.",
		}, []string{"actor", "event"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "walnats",
			Subsystem: "actor",
			Name:      "failed_total",
			Help:      "Number of actor handler invocations that failed.",
		}, []string{"actor", "event"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "walnats",
			Subsystem: "actor",
			Name:      "duration_seconds",
			Help:      "Actor handler duration in seconds, successful invocations only.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"actor", "event"}),
	}
	reg.MustRegister(m.started, m.ok, m.failed, m.duration)
	return m
}

func (m *Prometheus) OnStart(ctx walnats.Context) func() {
	m.started.WithLabelValues(ctx.ActorName, ctx.EventName).Inc()
	return nil
}

func (m *Prometheus) OnSuccess(ctx walnats.OkContext) func() {
	m.ok.WithLabelValues(ctx.ActorName, ctx.EventName).Inc()
	m.duration.WithLabelValues(ctx.ActorName, ctx.EventName).Observe(ctx.Duration.Seconds())
	return nil
}

func (m *Prometheus) OnFailure(ctx walnats.ErrorContext) func() {
	m.failed.WithLabelValues(ctx.ActorName, ctx.EventName).Inc()
	return nil
}
