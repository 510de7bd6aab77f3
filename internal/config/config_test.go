package config

import (
	"log/slog"
	"testing"
)

func TestLoadConfig_Defaults(t *testing.T) {
	for _, key := range []string{"APP_ENV", "LOG_LEVEL", "REDIS_URL", "EVENTS_BACKEND", "KAFKA_BROKERS", "EVENTS_TOPIC", "REPORT_DIR"} {
		t.Setenv(key, "")
	}

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if cfg.Environment != "development" {
		t.Errorf("Environment = %q, want development", cfg.Environment)
	}
	if cfg.IsProduction() {
		t.Error("IsProduction() = true for development")
	}
	if cfg.LogLevel != slog.LevelInfo {
		t.Errorf("LogLevel = %v, want info", cfg.LogLevel)
	}
	if cfg.Events.Backend != BackendGoChannel {
		t.Errorf("Events.Backend = %q, want %q", cfg.Events.Backend, BackendGoChannel)
	}
	if cfg.Events.Topic != "attempt-events" {
		t.Errorf("Events.Topic = %q, want attempt-events", cfg.Events.Topic)
	}
}

func TestLoadConfig_Kafka(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "broker-1:9092, broker-2:9092")
	t.Setenv("EVENTS_TOPIC", "exam-events")

	cfg, err := LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}
	if !cfg.IsProduction() {
		t.Error("IsProduction() = false for production")
	}
	if cfg.LogLevel != slog.LevelDebug {
		t.Errorf("LogLevel = %v, want debug", cfg.LogLevel)
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[1] != "broker-2:9092" {
		t.Errorf("Events.Brokers = %v, want two trimmed entries", cfg.Events.Brokers)
	}
	if cfg.Events.Topic != "exam-events" {
		t.Errorf("Events.Topic = %q, want exam-events", cfg.Events.Topic)
	}
}

func TestLoadConfig_KafkaWithoutBrokers(t *testing.T) {
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for kafka backend without brokers")
	}
}

func TestLoadConfig_UnknownBackend(t *testing.T) {
	t.Setenv("EVENTS_BACKEND", "rabbitmq")

	if _, err := LoadConfig(); err == nil {
		t.Fatal("expected error for unknown events backend")
	}
}

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		raw  string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"info", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"ERROR", slog.LevelError},
		{"verbose", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := parseLogLevel(tt.raw); got != tt.want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", tt.raw, got, tt.want)
		}
	}
}
