package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/SAP-F-2025/attempt-engine/internal/attempt"
	"github.com/SAP-F-2025/attempt-engine/internal/cache"
	"github.com/SAP-F-2025/attempt-engine/internal/events"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
	"github.com/SAP-F-2025/attempt-engine/internal/store"
	"github.com/SAP-F-2025/attempt-engine/internal/validator"
)

// attemptService drives the attempt lifecycle. Operations on a single
// attempt must be serialized by the caller; different attempts are
// independent.
type attemptService struct {
	store     store.AttemptStore
	logger    *slog.Logger
	validator *validator.Validator
	cache     *cache.CacheManager
	publisher events.Publisher
	scoring   ScoringService
	analytics AnalyticsService
	now       func() time.Time
}

func NewAttemptService(st store.AttemptStore, logger *slog.Logger, validator *validator.Validator, cacheManager *cache.CacheManager, publisher events.Publisher) AttemptService {
	return &attemptService{
		store:     st,
		logger:    logger,
		validator: validator,
		cache:     cacheManager,
		publisher: publisher,
		scoring:   NewScoringService(logger, cacheManager),
		analytics: NewAnalyticsService(logger, cacheManager),
		now:       time.Now,
	}
}

// ===== LIFECYCLE =====

func (s *attemptService) Start(ctx context.Context, req *StartAttemptRequest) (*AttemptSnapshot, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", verrs)
	}

	s.logger.Info("Starting attempt",
		"test_id", req.Paper.ID,
		"candidate_id", req.CandidateID,
		"questions", len(req.Paper.Questions))

	if verrs := s.validator.ValidatePaper(req.Paper); len(verrs) > 0 {
		return nil, fmt.Errorf("paper validation failed: %w", verrs)
	}

	att, err := attempt.New(uuid.NewString(), req.Paper.ID, req.Paper.Questions,
		attempt.WithCandidate(req.CandidateID),
		attempt.WithClock(s.now))
	if err != nil {
		return nil, fmt.Errorf("failed to create attempt: %w", err)
	}

	record := &store.Record{
		ID:          att.ID(),
		CandidateID: req.CandidateID,
		Status:      models.AttemptInProgress,
		Attempt:     att,
		Paper:       req.Paper,
		CreatedAt:   s.now(),
		UpdatedAt:   s.now(),
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	s.logger.Info("Attempt started",
		"attempt_id", att.ID(),
		"test_id", req.Paper.ID,
		"candidate_id", req.CandidateID)

	return s.snapshotOf(record), nil
}

func (s *attemptService) Get(ctx context.Context, attemptID string) (*AttemptSnapshot, error) {
	record, err := s.getRecord(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return s.snapshotOf(record), nil
}

func (s *attemptService) Submit(ctx context.Context, req *SubmitAttemptRequest) (*SubmitResult, error) {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return nil, fmt.Errorf("validation failed: %w", verrs)
	}

	s.logger.Info("Submitting attempt", "attempt_id", req.AttemptID)

	record, err := s.getRecord(ctx, req.AttemptID)
	if err != nil {
		return nil, err
	}

	switch record.Status {
	case models.AttemptSubmitted:
		return nil, ErrAttemptAlreadySubmitted
	case models.AttemptAbandoned:
		return nil, ErrAttemptNotActive
	}

	submission, err := record.Attempt.BuildSubmission(req.Environment)
	if err != nil {
		return nil, fmt.Errorf("failed to build submission: %w", err)
	}

	// Drift beyond tolerance is reported, not fatal: the submission stands
	// and the backend decides what to make of the flag.
	if submission.TimeCheck != nil {
		s.logger.Warn("Time consistency check failed",
			"attempt_id", record.ID,
			"error", attempt.NewTimeConsistencyError(submission.TimeCheck))
	}

	score, err := s.scoring.Score(ctx, record.Paper, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to score submission: %w", err)
	}

	analysis, err := s.analytics.Analyze(ctx, record.Paper, submission)
	if err != nil {
		return nil, fmt.Errorf("failed to analyze submission: %w", err)
	}

	record.Status = models.AttemptSubmitted
	record.SubmittedAt = timePtr(s.now())
	record.UpdatedAt = *record.SubmittedAt
	if err := s.store.Save(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save attempt: %w", err)
	}

	s.cacheSubmission(ctx, submission)
	s.publishSubmissionEvents(ctx, submission, score)

	s.logger.Info("Attempt submitted successfully",
		"attempt_id", record.ID,
		"submission_id", submission.ID,
		"score", score.Score,
		"percentage", score.Percentage)

	return &SubmitResult{Submission: submission, Score: score, Analysis: analysis}, nil
}

func (s *attemptService) Abandon(ctx context.Context, attemptID string) error {
	s.logger.Info("Abandoning attempt", "attempt_id", attemptID)

	record, err := s.getRecord(ctx, attemptID)
	if err != nil {
		return err
	}

	switch record.Status {
	case models.AttemptSubmitted:
		return ErrAttemptAlreadySubmitted
	case models.AttemptAbandoned:
		return nil
	}

	record.Status = models.AttemptAbandoned
	record.UpdatedAt = s.now()
	if err := s.store.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}

	cache.InvalidateAttemptCache(ctx, s.cache, attemptID)
	s.publishAbandonEvent(ctx, record)

	s.logger.Info("Attempt abandoned", "attempt_id", attemptID)

	return nil
}

// ===== NAVIGATION AND ANSWERING =====

func (s *attemptService) Visit(ctx context.Context, attemptID, questionID string) error {
	record, err := s.activeRecord(ctx, attemptID)
	if err != nil {
		return err
	}
	if err := record.Attempt.Visit(models.QuestionID(questionID)); err != nil {
		return err
	}
	return s.touch(ctx, record)
}

func (s *attemptService) Answer(ctx context.Context, attemptID string, req *AnswerRequest) error {
	if verrs := s.validator.Validate(req); len(verrs) > 0 {
		return fmt.Errorf("validation failed: %w", verrs)
	}

	record, err := s.activeRecord(ctx, attemptID)
	if err != nil {
		return err
	}

	value, err := req.Answer.ToValue()
	if err != nil {
		return fmt.Errorf("invalid answer payload: %w", err)
	}

	qid := models.QuestionID(req.QuestionID)
	if err := record.Attempt.SetAnswer(qid, value); err != nil {
		return err
	}
	if req.TimeSpentSeconds > 0 {
		d := time.Duration(req.TimeSpentSeconds * float64(time.Second))
		if err := record.Attempt.AccrueTime(qid, d); err != nil {
			return err
		}
	}

	return s.touch(ctx, record)
}

func (s *attemptService) ClearAnswer(ctx context.Context, attemptID, questionID string) error {
	record, err := s.activeRecord(ctx, attemptID)
	if err != nil {
		return err
	}
	if err := record.Attempt.ClearAnswer(models.QuestionID(questionID)); err != nil {
		return err
	}
	return s.touch(ctx, record)
}

func (s *attemptService) ToggleMark(ctx context.Context, attemptID, questionID string) error {
	record, err := s.activeRecord(ctx, attemptID)
	if err != nil {
		return err
	}
	if err := record.Attempt.ToggleMark(models.QuestionID(questionID)); err != nil {
		return err
	}
	return s.touch(ctx, record)
}

func (s *attemptService) AccrueTime(ctx context.Context, attemptID, questionID string, d time.Duration) error {
	record, err := s.activeRecord(ctx, attemptID)
	if err != nil {
		return err
	}
	if err := record.Attempt.AccrueTime(models.QuestionID(questionID), d); err != nil {
		return err
	}
	return s.touch(ctx, record)
}

// ===== PROGRESS INSPECTION =====

func (s *attemptService) StateCounts(ctx context.Context, attemptID string) (models.StateCounts, error) {
	record, err := s.getRecord(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return record.Attempt.StateCounts(), nil
}

func (s *attemptService) Partition(ctx context.Context, attemptID string) (models.StatePartition, error) {
	record, err := s.getRecord(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return record.Attempt.Partition(), nil
}

func (s *attemptService) NavigationHistory(ctx context.Context, attemptID string) ([]models.NavigationEvent, error) {
	record, err := s.getRecord(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	return record.Attempt.NavigationEvents(), nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
