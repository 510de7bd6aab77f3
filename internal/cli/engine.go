package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/SAP-F-2025/attempt-engine/internal/cache"
	"github.com/SAP-F-2025/attempt-engine/internal/config"
	"github.com/SAP-F-2025/attempt-engine/internal/events"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
	"github.com/SAP-F-2025/attempt-engine/internal/services"
	"github.com/SAP-F-2025/attempt-engine/internal/store"
	"github.com/SAP-F-2025/attempt-engine/internal/utils"
	"github.com/SAP-F-2025/attempt-engine/internal/validator"
	"github.com/SAP-F-2025/attempt-engine/pkg"
)

// engine bundles the wired service manager with the pieces every subcommand
// reuses.
type engine struct {
	cfg       *config.Config
	logger    *slog.Logger
	validator *validator.Validator
	manager   services.ServiceManager

	closers []func()
}

// newEngine wires the full stack from the environment: logger, optional Redis
// cache, event publisher, then the service manager on a memory store.
func newEngine(ctx context.Context) (*engine, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	logger := utils.NewSlogLogger(cfg.Environment, cfg.LogLevel)
	v := validator.New()

	var closers []func()

	// An unreachable cache is a warning, not a failure: the engine recomputes
	// everything Redis would have served.
	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = pkg.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Failed to initialize Redis, running without cache", "error", err)
			redisClient = nil
		} else {
			closers = append(closers, func() { redisClient.Close() })
		}
	}
	cacheManager := cache.NewCacheManager(redisClient)

	publisher, err := newPublisher(cfg, logger)
	if err != nil {
		for _, closer := range closers {
			closer()
		}
		return nil, fmt.Errorf("failed to create event publisher: %w", err)
	}

	st := store.NewMemoryStore()
	var manager services.ServiceManager
	if cfg.IsProduction() {
		manager = services.CreateProductionServiceManager(st, logger, v, cacheManager, publisher)
	} else {
		manager = services.NewDefaultServiceManager(st, logger, v, cacheManager, publisher)
	}
	if err := manager.Initialize(ctx); err != nil {
		for _, closer := range closers {
			closer()
		}
		return nil, fmt.Errorf("failed to initialize service manager: %w", err)
	}

	return &engine{
		cfg:       cfg,
		logger:    logger,
		validator: v,
		manager:   manager,
		closers:   closers,
	}, nil
}

// newPublisher selects the event transport from configuration. The in-process
// gochannel backend is a sink unless something subscribes; kafka hands replay
// results to downstream consumers.
func newPublisher(cfg *config.Config, logger *slog.Logger) (events.Publisher, error) {
	switch cfg.Events.Backend {
	case config.BackendKafka:
		return events.NewKafkaPublisher(cfg.Events.Brokers, cfg.Events.Topic, logger)
	default:
		pub, _ := events.NewGoChannelPubSub(logger)
		return pub, nil
	}
}

// Close shuts the manager down and releases backend connections.
func (e *engine) Close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := e.manager.Shutdown(ctx); err != nil {
		e.logger.Error("Failed to shut down service manager", "error", err)
	}
	for _, closer := range e.closers {
		closer()
	}
}

// loadPaper reads and validates a question set, returning the resolved paper.
func (e *engine) loadPaper(doc *models.QuestionSetDocument) (*models.TestPaper, error) {
	if verrs := e.validator.ValidateQuestionSet(doc); len(verrs) > 0 {
		return nil, fmt.Errorf("question set validation failed: %w", verrs)
	}
	return doc.ToPaper(), nil
}

// exportWorkbook writes the XLSX report for a scored submission to path,
// creating parent directories as needed.
func (e *engine) exportWorkbook(ctx context.Context, paper *models.TestPaper, result *services.SubmitResult, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create report directory: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create report file: %w", err)
	}
	if err := e.manager.Report().Export(ctx, paper, result, f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// printSummary writes the human-readable result of a scored attempt.
func printSummary(result *services.SubmitResult) {
	sub, score := result.Submission, result.Score

	fmt.Printf("Test %s, attempt %s\n", sub.TestID, sub.AttemptID)
	fmt.Printf("Score: %.2f / %.2f (%.2f%%)\n", score.Score, score.TotalPossibleMarks, score.Percentage)
	fmt.Printf("Correct: %d  Incorrect: %d  Unattempted: %d\n",
		score.CorrectCount, score.IncorrectCount, score.UnattemptedCount)
	if result.Analysis != nil {
		fmt.Printf("Attempted under 30s: %d, 30-60s: %d, 60-120s: %d, over 120s: %d\n",
			result.Analysis.TimeDistribution.Under30s,
			result.Analysis.TimeDistribution.Sec30To60,
			result.Analysis.TimeDistribution.Sec60To120,
			result.Analysis.TimeDistribution.Over120s)
	}
	if sub.TimeCheck != nil {
		fmt.Printf("Time check: accrued %s exceeds elapsed %s beyond the %s tolerance\n",
			sub.TimeCheck.AccruedTime, sub.TimeCheck.ElapsedTime, sub.TimeCheck.Tolerance)
	}
}
