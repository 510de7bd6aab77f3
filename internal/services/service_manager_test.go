package services

import (
	"context"
	"log/slog"
	"os"
	"testing"
	"time"

	"github.com/SAP-F-2025/attempt-engine/internal/cache"
	"github.com/SAP-F-2025/attempt-engine/internal/events"
	"github.com/SAP-F-2025/attempt-engine/internal/store"
	"github.com/SAP-F-2025/attempt-engine/internal/validator"
)

func TestServiceManager_Lifecycle(t *testing.T) {
	// Setup
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	manager := NewDefaultServiceManager(store.NewMemoryStore(), logger, validator.New(), cache.NewCacheManager(nil), events.NopPublisher{})
	ctx := context.Background()

	t.Run("GetterPanicsBeforeInitialize", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Error("Attempt() before Initialize should panic")
			}
		}()
		manager.Attempt()
	})

	if err := manager.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize service manager: %v", err)
	}

	// Initialize is idempotent
	if err := manager.Initialize(ctx); err != nil {
		t.Errorf("Second Initialize() = %v, want nil", err)
	}

	if manager.Attempt() == nil {
		t.Error("Attempt service should be available after Initialize")
	}
	if manager.Scoring() == nil {
		t.Error("Scoring service should be available after Initialize")
	}
	if manager.Analytics() == nil {
		t.Error("Analytics service should be available after Initialize")
	}
	if manager.Report() == nil {
		t.Error("Report service should be available after Initialize")
	}

	// An unavailable cache is tolerated; the memory store answers the ping.
	if err := manager.HealthCheck(ctx); err != nil {
		t.Errorf("HealthCheck() = %v, want nil", err)
	}

	t.Run("RunAttemptThroughManager", func(t *testing.T) {
		snapshot, err := manager.Attempt().Start(ctx, &StartAttemptRequest{Paper: testPaper(), CandidateID: "cand-007"})
		if err != nil {
			t.Fatalf("Failed to start attempt: %v", err)
		}
		if err := manager.Attempt().Abandon(ctx, snapshot.AttemptID); err != nil {
			t.Fatalf("Failed to abandon attempt: %v", err)
		}
	})

	t.Run("Metrics", func(t *testing.T) {
		sm, ok := manager.(*serviceManager)
		if !ok {
			t.Fatalf("manager is %T, want *serviceManager", manager)
		}
		metrics, err := sm.GetServiceMetrics(ctx)
		if err != nil {
			t.Fatalf("GetServiceMetrics() error = %v", err)
		}
		attemptMetrics, ok := metrics["attempt_service"].(map[string]interface{})
		if !ok {
			t.Fatalf("metrics missing attempt_service entry: %v", metrics)
		}
		if got := attemptMetrics["total_attempts"]; got != 1 {
			t.Errorf("total_attempts = %v, want 1", got)
		}
	})

	if err := manager.Shutdown(ctx); err != nil {
		t.Fatalf("Failed to shutdown service manager: %v", err)
	}

	// Shutdown is idempotent
	if err := manager.Shutdown(ctx); err != nil {
		t.Errorf("Second Shutdown() = %v, want nil", err)
	}

	if err := manager.HealthCheck(ctx); err == nil {
		t.Error("HealthCheck() after shutdown expected error")
	}
}

func TestServiceManagerFactories(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	ctx := context.Background()

	tests := []struct {
		name    string
		manager ServiceManager
	}{
		{
			name:    "production",
			manager: CreateProductionServiceManager(store.NewMemoryStore(), logger, validator.New(), cache.NewCacheManager(nil), events.NopPublisher{}),
		},
		{
			name:    "development",
			manager: CreateDevelopmentServiceManager(store.NewMemoryStore(), logger, validator.New(), events.NopPublisher{}),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.manager.Initialize(ctx); err != nil {
				t.Fatalf("Initialize() error = %v", err)
			}
			if err := tt.manager.HealthCheck(ctx); err != nil {
				t.Errorf("HealthCheck() error = %v", err)
			}
			if tt.manager.Attempt() == nil || tt.manager.Scoring() == nil ||
				tt.manager.Analytics() == nil || tt.manager.Report() == nil {
				t.Error("factory manager is missing a service")
			}
			if err := tt.manager.Shutdown(ctx); err != nil {
				t.Errorf("Shutdown() error = %v", err)
			}
		})
	}
}

func TestServiceManagerConfig_Validate(t *testing.T) {
	valid := func() ServiceManagerConfig {
		return ServiceManagerConfig{
			Attempt:        ServiceConfig{Enabled: true, ValidationLevel: ValidationStrict},
			Scoring:        ServiceConfig{Enabled: true, ValidationLevel: ValidationStrict},
			Analytics:      ServiceConfig{Enabled: true},
			Report:         ServiceConfig{Enabled: true},
			DefaultTimeout: 30 * time.Second,
			MaxRetries:     3,
		}
	}

	tests := []struct {
		name    string
		mutate  func(*ServiceManagerConfig)
		wantErr bool
	}{
		{name: "default is valid"},
		{
			name:    "non-positive timeout",
			mutate:  func(c *ServiceManagerConfig) { c.DefaultTimeout = 0 },
			wantErr: true,
		},
		{
			name:    "negative retries",
			mutate:  func(c *ServiceManagerConfig) { c.MaxRetries = -1 },
			wantErr: true,
		},
		{
			name:    "negative cache ttl",
			mutate:  func(c *ServiceManagerConfig) { c.Scoring.CacheTTL = -time.Second },
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := valid()
			if tt.mutate != nil {
				tt.mutate(&config)
			}
			err := config.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
