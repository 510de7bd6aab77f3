package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
)

// Config carries everything the engine needs at process start. Values come
// from the environment; a local .env file is honored when present.
type Config struct {
	Environment string
	LogLevel    slog.Level

	// RedisURL enables result caching when set. Empty runs the engine
	// without a cache.
	RedisURL string

	Events EventsConfig

	// ReportDir is where exported XLSX reports are written.
	ReportDir string
}

// EventsConfig selects the event transport. The in-process gochannel backend
// is the default; kafka is for deployments with a broker.
type EventsConfig struct {
	Backend string
	Brokers []string
	Topic   string
}

const (
	BackendGoChannel = "gochannel"
	BackendKafka     = "kafka"
)

// LoadConfig reads the environment, falling back to development defaults.
func LoadConfig() (*Config, error) {
	// Best effort; deployments set the environment directly.
	_ = godotenv.Load()

	cfg := &Config{
		Environment: getEnv("APP_ENV", "development"),
		LogLevel:    parseLogLevel(getEnv("LOG_LEVEL", "info")),
		RedisURL:    getEnv("REDIS_URL", ""),
		ReportDir:   getEnv("REPORT_DIR", "reports"),
		Events: EventsConfig{
			Backend: getEnv("EVENTS_BACKEND", BackendGoChannel),
			Brokers: splitList(getEnv("KAFKA_BROKERS", "")),
			Topic:   getEnv("EVENTS_TOPIC", "attempt-events"),
		},
	}

	switch cfg.Events.Backend {
	case BackendGoChannel:
	case BackendKafka:
		if len(cfg.Events.Brokers) == 0 {
			return nil, fmt.Errorf("EVENTS_BACKEND=%s requires KAFKA_BROKERS", BackendKafka)
		}
	default:
		return nil, fmt.Errorf("unknown EVENTS_BACKEND %q", cfg.Events.Backend)
	}

	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

func getEnv(key, fallback string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return fallback
}

func parseLogLevel(raw string) slog.Level {
	switch strings.ToLower(raw) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func splitList(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
