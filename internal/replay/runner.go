package replay

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"gorm.io/datatypes"

	"github.com/SAP-F-2025/attempt-engine/internal/attempt"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
	"github.com/SAP-F-2025/attempt-engine/internal/services"
	"github.com/SAP-F-2025/attempt-engine/internal/validator"
)

// DefaultCandidateID names attempts replayed from scripts that do not carry a
// candidate of their own.
const DefaultCandidateID = "replay"

// Runner replays recorded scripts through the attempt service, producing the
// submission the live session would have produced.
type Runner struct {
	attempts  services.AttemptService
	validator *validator.Validator
	logger    *slog.Logger
}

// NewRunner creates a replay runner on top of an attempt service.
func NewRunner(attempts services.AttemptService, v *validator.Validator, logger *slog.Logger) *Runner {
	return &Runner{
		attempts:  attempts,
		validator: v,
		logger:    logger,
	}
}

// Run replays a script against a question set and submits the resulting
// attempt. Actions against unknown questions are dropped and the replay
// continues; any other failure aborts the run.
func (r *Runner) Run(ctx context.Context, doc *models.QuestionSetDocument, script *Script) (*services.SubmitResult, error) {
	if verrs := r.validator.ValidateQuestionSet(doc); len(verrs) > 0 {
		return nil, fmt.Errorf("question set validation failed: %w", verrs)
	}
	if verrs := r.validator.Validate(script); len(verrs) > 0 {
		return nil, fmt.Errorf("script validation failed: %w", verrs)
	}

	candidate := script.CandidateID
	if candidate == "" {
		candidate = DefaultCandidateID
	}

	paper := doc.ToPaper()

	r.logger.Info("Replaying script",
		"test_id", paper.ID,
		"candidate_id", candidate,
		"actions", len(script.Actions))

	snap, err := r.attempts.Start(ctx, &services.StartAttemptRequest{
		Paper:       paper,
		CandidateID: candidate,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start attempt: %w", err)
	}

	dropped := 0
	for i, action := range script.Actions {
		if err := r.apply(ctx, snap.AttemptID, action); err != nil {
			// A stray action invalidates itself, not the attempt.
			if attempt.IsUnknownQuestion(err) {
				r.logger.Warn("Dropping action against unknown question",
					"action", i,
					"op", action.Op,
					"question_id", action.QuestionID)
				dropped++
				continue
			}
			return nil, fmt.Errorf("action %d (%s %s): %w", i, action.Op, action.QuestionID, err)
		}
	}

	result, err := r.attempts.Submit(ctx, &services.SubmitAttemptRequest{
		AttemptID:   snap.AttemptID,
		Environment: datatypes.JSON(`{"source":"replay"}`),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to submit attempt: %w", err)
	}

	r.logger.Info("Replay complete",
		"attempt_id", snap.AttemptID,
		"score", result.Score.Score,
		"dropped_actions", dropped)

	return result, nil
}

func (r *Runner) apply(ctx context.Context, attemptID string, action Action) error {
	switch action.Op {
	case OpVisit:
		return r.attempts.Visit(ctx, attemptID, action.QuestionID)
	case OpAnswer:
		return r.attempts.Answer(ctx, attemptID, &services.AnswerRequest{
			QuestionID:       action.QuestionID,
			Answer:           action.Answer,
			TimeSpentSeconds: action.Seconds,
		})
	case OpClear:
		return r.attempts.ClearAnswer(ctx, attemptID, action.QuestionID)
	case OpToggleMark:
		return r.attempts.ToggleMark(ctx, attemptID, action.QuestionID)
	case OpAccrueTime:
		d := time.Duration(action.Seconds * float64(time.Second))
		return r.attempts.AccrueTime(ctx, attemptID, action.QuestionID, d)
	default:
		return fmt.Errorf("unknown op %q", action.Op)
	}
}
