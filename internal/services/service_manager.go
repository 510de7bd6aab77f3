package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/SAP-F-2025/attempt-engine/internal/cache"
	"github.com/SAP-F-2025/attempt-engine/internal/events"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
	"github.com/SAP-F-2025/attempt-engine/internal/store"
	"github.com/SAP-F-2025/attempt-engine/internal/validator"
)

// ServiceManagerConfig holds configuration for the service manager
type ServiceManagerConfig struct {
	// Logging configuration
	EnableDebugLogging bool
	EnableMetrics      bool
	LogLevel           slog.Level

	// Service-specific configurations
	Attempt   ServiceConfig
	Scoring   ServiceConfig
	Analytics ServiceConfig
	Report    ServiceConfig

	// Global settings
	DefaultTimeout time.Duration
	MaxRetries     int
}

type ServiceConfig struct {
	Enabled         bool
	CacheEnabled    bool
	CacheTTL        time.Duration
	ValidationLevel ValidationLevel
	MetricsEnabled  bool
}

type ValidationLevel int

const (
	ValidationBasic ValidationLevel = iota
	ValidationStrict
	ValidationFull
)

// serviceManager implements ServiceManager interface
type serviceManager struct {
	// Dependencies
	store     store.AttemptStore
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
	publisher events.Publisher
	config    ServiceManagerConfig

	// Service instances
	attemptService   AttemptService
	scoringService   ScoringService
	analyticsService AnalyticsService
	reportService    ReportService

	// Lifecycle management
	initialized bool
	shutdown    bool
	mu          sync.RWMutex
}

// NewServiceManager creates a new service manager with all dependencies
func NewServiceManager(st store.AttemptStore, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager, publisher events.Publisher, config ServiceManagerConfig) ServiceManager {
	return &serviceManager{
		store:     st,
		logger:    logger,
		validator: validator,
		cache:     cacheManager,
		publisher: publisher,
		config:    config,
	}
}

// NewDefaultServiceManager creates a service manager with default configuration
func NewDefaultServiceManager(st store.AttemptStore, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager, publisher events.Publisher) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		EnableMetrics:      true,
		LogLevel:           slog.LevelInfo,

		Attempt: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        cache.SubmissionCacheConfig.TTL,
			ValidationLevel: ValidationStrict,
			MetricsEnabled:  true,
		},
		Scoring: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        cache.ScoreCacheConfig.TTL,
			ValidationLevel: ValidationStrict,
			MetricsEnabled:  true,
		},
		Analytics: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        cache.AnalysisCacheConfig.TTL,
			ValidationLevel: ValidationBasic,
			MetricsEnabled:  true,
		},
		Report: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        0,
			ValidationLevel: ValidationBasic,
			MetricsEnabled:  false,
		},

		DefaultTimeout: 30 * time.Second,
		MaxRetries:     3,
	}

	return NewServiceManager(st, logger, validator, cacheManager, publisher, config)
}

// Initialize sets up all services and their dependencies
func (sm *serviceManager) Initialize(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.initialized {
		return nil
	}

	sm.logger.Info("Initializing service manager")

	// Initialize individual services
	sm.initializeServices()

	// Validate all services are healthy
	if err := sm.validateServicesHealth(ctx); err != nil {
		return fmt.Errorf("service health check failed: %w", err)
	}

	sm.initialized = true
	sm.logger.Info("Service manager initialized successfully")

	return nil
}

func (sm *serviceManager) initializeServices() {
	// Initialize ScoringService
	if sm.config.Scoring.Enabled {
		sm.scoringService = NewScoringService(sm.logger, sm.resultCache(sm.config.Scoring))
		sm.logger.Info("Scoring service initialized")
	}

	// Initialize AnalyticsService
	if sm.config.Analytics.Enabled {
		sm.analyticsService = NewAnalyticsService(sm.logger, sm.resultCache(sm.config.Analytics))
		sm.logger.Info("Analytics service initialized")
	}

	// Initialize AttemptService
	if sm.config.Attempt.Enabled {
		sm.attemptService = NewAttemptService(sm.store, sm.logger, sm.validator, sm.resultCache(sm.config.Attempt), sm.publisher)
		sm.logger.Info("Attempt service initialized")
	}

	// Initialize ReportService
	if sm.config.Report.Enabled {
		sm.reportService = NewReportService(sm.logger)
		sm.logger.Info("Report service initialized")
	}
}

// resultCache returns the shared cache manager, or a no-op manager when
// caching is disabled for the service.
func (sm *serviceManager) resultCache(cfg ServiceConfig) *cache.CacheManager {
	if cfg.CacheEnabled {
		return sm.cache
	}
	return cache.NewCacheManager(nil)
}

func (sm *serviceManager) validateServicesHealth(ctx context.Context) error {
	if err := sm.store.Ping(ctx); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}

	return nil
}

// Service getters
func (sm *serviceManager) Attempt() AttemptService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Attempt.Enabled && sm.attemptService != nil {
		return sm.attemptService
	}

	panic("attempt service not enabled or not initialized")
}

func (sm *serviceManager) Scoring() ScoringService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Scoring.Enabled && sm.scoringService != nil {
		return sm.scoringService
	}

	panic("scoring service not enabled or not initialized")
}

func (sm *serviceManager) Analytics() AnalyticsService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Analytics.Enabled && sm.analyticsService != nil {
		return sm.analyticsService
	}

	panic("analytics service not enabled or not initialized")
}

func (sm *serviceManager) Report() ReportService {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		panic("service manager not initialized")
	}

	if sm.config.Report.Enabled && sm.reportService != nil {
		return sm.reportService
	}

	panic("report service not enabled or not initialized")
}

// Health and lifecycle
func (sm *serviceManager) HealthCheck(ctx context.Context) error {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return fmt.Errorf("service manager not initialized")
	}

	if sm.shutdown {
		return fmt.Errorf("service manager is shut down")
	}

	// Check store health
	if err := sm.store.Ping(ctx); err != nil {
		return fmt.Errorf("store health check failed: %w", err)
	}

	// The engine runs without Redis, so an unavailable cache is not a failure.
	if err := sm.cache.HealthCheck(ctx); err != nil && !errors.Is(err, cache.ErrCacheNotAvailable) {
		return fmt.Errorf("cache health check failed: %w", err)
	}

	return nil
}

func (sm *serviceManager) Shutdown(ctx context.Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if sm.shutdown {
		return nil
	}

	sm.logger.Info("Shutting down service manager")

	// Close the event publisher first so no event outlives the manager
	if err := sm.publisher.Close(); err != nil {
		sm.logger.Error("Failed to close event publisher", "error", err)
	}

	sm.shutdown = true
	sm.logger.Info("Service manager shut down completed")

	return nil
}

// ===== UTILITY METHODS =====

// GetConfig returns the service manager configuration
func (sm *serviceManager) GetConfig() ServiceManagerConfig {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.config
}

// IsInitialized returns whether the service manager has been initialized
func (sm *serviceManager) IsInitialized() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.initialized
}

// IsShutdown returns whether the service manager has been shut down
func (sm *serviceManager) IsShutdown() bool {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	return sm.shutdown
}

// ===== METRICS AND MONITORING =====

// GetServiceMetrics returns metrics for all services
func (sm *serviceManager) GetServiceMetrics(ctx context.Context) (map[string]interface{}, error) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	if !sm.initialized {
		return nil, fmt.Errorf("service manager not initialized")
	}

	metrics := map[string]interface{}{
		"service_manager": map[string]interface{}{
			"initialized": sm.initialized,
			"shutdown":    sm.shutdown,
		},
	}

	if sm.config.Attempt.MetricsEnabled {
		records, err := sm.store.List(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list attempts: %w", err)
		}

		var active, submitted int
		for _, record := range records {
			switch record.Status {
			case models.AttemptInProgress:
				active++
			case models.AttemptSubmitted:
				submitted++
			}
		}

		metrics["attempt_service"] = map[string]interface{}{
			"enabled":            sm.config.Attempt.Enabled,
			"total_attempts":     len(records),
			"active_attempts":    active,
			"submitted_attempts": submitted,
		}
	}

	if sm.config.Scoring.MetricsEnabled {
		metrics["scoring_service"] = map[string]interface{}{
			"enabled":       sm.config.Scoring.Enabled,
			"cache_enabled": sm.config.Scoring.CacheEnabled,
		}
	}

	if sm.config.Analytics.MetricsEnabled {
		metrics["analytics_service"] = map[string]interface{}{
			"enabled":       sm.config.Analytics.Enabled,
			"cache_enabled": sm.config.Analytics.CacheEnabled,
		}
	}

	return metrics, nil
}

// ===== HELPER FUNCTIONS =====

// WithTimeout creates a context with the default timeout
func (sm *serviceManager) WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, sm.config.DefaultTimeout)
}

// ===== CONFIGURATION VALIDATION =====

// ValidateConfig validates the service manager configuration
func (config *ServiceManagerConfig) Validate() error {
	var problems []string

	// Validate timeouts
	if config.DefaultTimeout <= 0 {
		problems = append(problems, "default timeout must be positive")
	}

	if config.MaxRetries < 0 {
		problems = append(problems, "max retries cannot be negative")
	}

	// Validate service configurations
	if err := config.Attempt.validate("attempt"); err != nil {
		problems = append(problems, err.Error())
	}

	if err := config.Scoring.validate("scoring"); err != nil {
		problems = append(problems, err.Error())
	}

	if err := config.Analytics.validate("analytics"); err != nil {
		problems = append(problems, err.Error())
	}

	if err := config.Report.validate("report"); err != nil {
		problems = append(problems, err.Error())
	}

	if len(problems) > 0 {
		return fmt.Errorf("configuration validation failed: %v", problems)
	}

	return nil
}

func (sc *ServiceConfig) validate(serviceName string) error {
	var problems []string

	if sc.CacheTTL < 0 {
		problems = append(problems, fmt.Sprintf("%s: cache TTL cannot be negative", serviceName))
	}

	if sc.ValidationLevel < ValidationBasic || sc.ValidationLevel > ValidationFull {
		problems = append(problems, fmt.Sprintf("%s: invalid validation level", serviceName))
	}

	if len(problems) > 0 {
		return fmt.Errorf("%s", problems[0])
	}

	return nil
}

// ===== FACTORY FUNCTIONS =====

// CreateProductionServiceManager creates a service manager configured for production
func CreateProductionServiceManager(st store.AttemptStore, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager, publisher events.Publisher) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: false,
		EnableMetrics:      true,
		LogLevel:           slog.LevelInfo,

		Attempt: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        cache.SubmissionCacheConfig.TTL,
			ValidationLevel: ValidationFull,
			MetricsEnabled:  true,
		},
		Scoring: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        cache.ScoreCacheConfig.TTL,
			ValidationLevel: ValidationStrict,
			MetricsEnabled:  true,
		},
		Analytics: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    true,
			CacheTTL:        cache.AnalysisCacheConfig.TTL,
			ValidationLevel: ValidationStrict,
			MetricsEnabled:  true,
		},
		Report: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false, // Workbooks are built on demand
			CacheTTL:        0,
			ValidationLevel: ValidationBasic,
			MetricsEnabled:  false,
		},

		DefaultTimeout: 60 * time.Second,
		MaxRetries:     3,
	}

	return NewServiceManager(st, logger, validator, cacheManager, publisher, config)
}

// CreateDevelopmentServiceManager creates a service manager configured for development
func CreateDevelopmentServiceManager(st store.AttemptStore, logger *slog.Logger, validator *validator.Validator, publisher events.Publisher) ServiceManager {
	config := ServiceManagerConfig{
		EnableDebugLogging: true,
		EnableMetrics:      false,
		LogLevel:           slog.LevelDebug,

		Attempt: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        0,
			ValidationLevel: ValidationBasic,
			MetricsEnabled:  false,
		},
		Scoring: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        0,
			ValidationLevel: ValidationBasic,
			MetricsEnabled:  false,
		},
		Analytics: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        0,
			ValidationLevel: ValidationBasic,
			MetricsEnabled:  false,
		},
		Report: ServiceConfig{
			Enabled:         true,
			CacheEnabled:    false,
			CacheTTL:        0,
			ValidationLevel: ValidationBasic,
			MetricsEnabled:  false,
		},

		DefaultTimeout: 10 * time.Second,
		MaxRetries:     1,
	}

	// Development runs without Redis; the no-op cache manager recomputes
	// every result.
	return NewServiceManager(st, logger, validator, cache.NewCacheManager(nil), publisher, config)
}
