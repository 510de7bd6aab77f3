package services

import (
	"context"
	"fmt"

	"github.com/SAP-F-2025/attempt-engine/internal/cache"
	"github.com/SAP-F-2025/attempt-engine/internal/events"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
	"github.com/SAP-F-2025/attempt-engine/internal/store"
)

// ===== RECORD ACCESS =====

func (s *attemptService) getRecord(ctx context.Context, attemptID string) (*store.Record, error) {
	record, err := s.store.Get(ctx, attemptID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ErrAttemptNotFound
		}
		return nil, fmt.Errorf("failed to get attempt: %w", err)
	}
	return record, nil
}

// activeRecord loads an attempt and rejects mutation once it left
// in_progress.
func (s *attemptService) activeRecord(ctx context.Context, attemptID string) (*store.Record, error) {
	record, err := s.getRecord(ctx, attemptID)
	if err != nil {
		return nil, err
	}
	if record.Status != models.AttemptInProgress {
		return nil, ErrAttemptNotActive
	}
	return record, nil
}

func (s *attemptService) touch(ctx context.Context, record *store.Record) error {
	record.UpdatedAt = s.now()
	if err := s.store.Save(ctx, record); err != nil {
		return fmt.Errorf("failed to save attempt: %w", err)
	}
	return nil
}

func (s *attemptService) snapshotOf(record *store.Record) *AttemptSnapshot {
	return &AttemptSnapshot{
		AttemptID:   record.ID,
		TestID:      record.Attempt.TestID(),
		CandidateID: record.CandidateID,
		Status:      record.Status,
		StartedAt:   record.Attempt.StartedAt(),
		States:      record.Attempt.StateCounts(),
		CanSubmit:   record.Status == models.AttemptInProgress,
	}
}

// ===== CACHING =====

// cacheSubmission keeps the snapshot around for re-export and replay
// cross-checks, keyed by attempt since an attempt submits at most once.
// Cache trouble never fails a submission.
func (s *attemptService) cacheSubmission(ctx context.Context, submission *models.Submission) {
	err := s.cache.Submission.Set(ctx, submission.AttemptID, submission, cache.SubmissionCacheConfig.TTL)
	if err != nil {
		s.logger.Warn("Failed to cache submission",
			"submission_id", submission.ID,
			"error", err)
	}
}

// ===== EVENTS =====

// publishSubmissionEvents emits submission.completed and attempt.scored.
// Publishing failures are logged, never surfaced: the submission is already
// durable by the time events go out.
func (s *attemptService) publishSubmissionEvents(ctx context.Context, submission *models.Submission, score *models.ScoreResult) {
	s.publish(ctx, events.EventSubmissionCompleted, submission.AttemptID, submission.TestID, submission)
	s.publish(ctx, events.EventAttemptScored, submission.AttemptID, submission.TestID, score)
}

func (s *attemptService) publishAbandonEvent(ctx context.Context, record *store.Record) {
	payload := map[string]interface{}{
		"candidate_id": record.CandidateID,
		"started_at":   record.Attempt.StartedAt(),
		"abandoned_at": record.UpdatedAt,
	}
	s.publish(ctx, events.EventAttemptAbandoned, record.ID, record.Attempt.TestID(), payload)
}

func (s *attemptService) publish(ctx context.Context, eventType events.EventType, attemptID, testID string, payload interface{}) {
	env, err := events.NewEnvelope(eventType, attemptID, testID, payload)
	if err == nil {
		err = s.publisher.Publish(ctx, env)
	}
	if err != nil {
		s.logger.Error("Failed to publish event",
			"event_type", eventType,
			"attempt_id", attemptID,
			"error", err)
	}
}
