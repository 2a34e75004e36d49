// Package config loads this project's runtime configuration from
// environment variables, the same convention the teacher uses: typed
// sub-structs, one Load entry point, sensible defaults so a bare `go run`
// works against a local NATS server.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds the application configuration.
type Config struct {
	NATS    NATSConfig
	Admin   AdminConfig
	Tracing TracingConfig
}

// NATSConfig holds NATS connection settings.
type NATSConfig struct {
	URL           string
	ReconnectWait time.Duration
	MaxReconnects int
}

// AdminConfig holds the admin HTTP server settings: /healthz, /metrics, and
// the /monitor WebSocket feed.
type AdminConfig struct {
	Port         int
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	MetricsPath  string
	MonitorPath  string
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool
	ServiceName string
	Endpoint    string
}

// Load loads configuration from environment variables with defaults.
func Load() *Config {
	return &Config{
		NATS: NATSConfig{
			URL:           getEnv("WALNATS_NATS_URL", "nats://localhost:4222"),
			ReconnectWait: getEnvDuration("WALNATS_NATS_RECONNECT_WAIT", 2*time.Second),
			MaxReconnects: getEnvInt("WALNATS_NATS_MAX_RECONNECTS", -1),
		},
		Admin: AdminConfig{
			Port:         getEnvInt("WALNATS_ADMIN_PORT", 8080),
			ReadTimeout:  getEnvDuration("WALNATS_ADMIN_READ_TIMEOUT", 15*time.Second),
			WriteTimeout: getEnvDuration("WALNATS_ADMIN_WRITE_TIMEOUT", 15*time.Second),
			MetricsPath:  getEnv("WALNATS_METRICS_PATH", "/metrics"),
			MonitorPath:  getEnv("WALNATS_MONITOR_PATH", "/monitor"),
		},
		Tracing: TracingConfig{
			Enabled:     getEnvBool("WALNATS_TRACING_ENABLED", false),
			ServiceName: getEnv("WALNATS_SERVICE_NAME", "walnats"),
			Endpoint:    getEnv("WALNATS_OTLP_ENDPOINT", "localhost:4318"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
