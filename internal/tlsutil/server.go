// Package tlsutil wraps http.Server with the TLS configuration convention
// used by this project's admin HTTP surface (/healthz, /metrics,
// /monitor).
package tlsutil

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/http"
	"time"
)

// Config holds TLS/HTTPS settings for the admin server.
type Config struct {
	Enabled    bool
	CertFile   string
	KeyFile    string
	MinVersion string // "1.2" or "1.3"; defaults to "1.2"
}

// Server wraps http.Server, serving plain HTTP unless Config.Enabled.
type Server struct {
	httpServer *http.Server
	config     Config
}

// NewServer builds a Server listening on addr and routing to handler.
func NewServer(addr string, handler http.Handler, config Config) *Server {
	srv := &http.Server{
		Addr:           addr,
		Handler:        handler,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}
	if config.Enabled {
		srv.TLSConfig = &tls.Config{
			MinVersion: tlsVersion(config.MinVersion),
			CurvePreferences: []tls.CurveID{
				tls.CurveP256,
				tls.X25519,
			},
			CipherSuites: []uint16{
				tls.TLS_ECDHE_ECDSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_RSA_WITH_AES_256_GCM_SHA384,
				tls.TLS_ECDHE_ECDSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_RSA_WITH_AES_128_GCM_SHA256,
				tls.TLS_ECDHE_ECDSA_WITH_CHACHA20_POLY1305,
				tls.TLS_ECDHE_RSA_WITH_CHACHA20_POLY1305,
			},
		}
	}
	return &Server{httpServer: srv, config: config}
}

// Start blocks, serving HTTP or HTTPS depending on Config.Enabled, until
// Shutdown is called.
func (s *Server) Start() error {
	if s.config.Enabled {
		log.Printf("monitor admin server listening on %s (tls)", s.httpServer.Addr)
		if err := s.httpServer.ListenAndServeTLS(s.config.CertFile, s.config.KeyFile); err != nil && err != http.ErrServerClosed {
			return fmt.Errorf("https server error: %w", err)
		}
		return nil
	}
	log.Printf("monitor admin server listening on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("http server error: %w", err)
	}
	return nil
}

// Shutdown gracefully stops the server, waiting up to timeout.
func (s *Server) Shutdown(timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

func tlsVersion(v string) uint16 {
	switch v {
	case "1.3", "TLS1.3":
		return tls.VersionTLS13
	case "1.1", "TLS1.1":
		return tls.VersionTLS11
	default:
		return tls.VersionTLS12
	}
}
