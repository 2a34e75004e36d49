// Command walnats-admin runs the operational HTTP surface alongside a
// running walnats deployment: /healthz for liveness, /metrics for
// Prometheus scraping, and /monitor for a live WebSocket feed of every
// registered event, built on ConnectedEvents.Monitor.
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/nats-io/walnats"
	"github.com/nats-io/walnats/config"
	"github.com/nats-io/walnats/internal/monitorfeed"
	"github.com/nats-io/walnats/internal/tlsutil"
	"github.com/nats-io/walnats/internal/tracing"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.InitTracer(&tracing.Config{
		ServiceName: cfg.Tracing.ServiceName,
		Enabled:     cfg.Tracing.Enabled,
		OTLPEndpoint: cfg.Tracing.Endpoint,
	})
	if err != nil {
		log.Fatalf("init tracer: %v", err)
	}
	defer shutdownTracing(context.Background())

	events, err := walnats.NewEvents(adminPlaceholderEvent).Connect(cfg.NATS.URL)
	if err != nil {
		log.Fatalf("connect: %v", err)
	}
	defer events.Close()

	monitorCh, stopMonitor, err := events.Monitor(ctx)
	if err != nil {
		log.Fatalf("monitor: %v", err)
	}
	defer stopMonitor()

	hub := monitorfeed.NewHub()
	go hub.Run(ctx)
	go hub.Feed(ctx, monitorCh)

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
	router.Handle(cfg.Admin.MetricsPath, promhttp.Handler())
	router.Handle(cfg.Admin.MonitorPath, monitorfeed.NewHandler(hub))

	handler := cors.Default().Handler(router)
	srv := tlsutil.NewServer(fmt.Sprintf(":%d", cfg.Admin.Port), handler, tlsutil.Config{})

	go func() {
		<-ctx.Done()
		_ = srv.Shutdown(5 * time.Second)
	}()

	if err := srv.Start(); err != nil {
		log.Fatalf("admin server: %v", err)
	}
}

// adminPlaceholderEvent registers no subjects of its own significance; a
// real deployment passes its application's own Events registry here
// instead. It exists so this binary compiles and runs standalone.
var adminPlaceholderEvent = walnats.NewEvent[[]byte]("walnats-admin-heartbeat")
