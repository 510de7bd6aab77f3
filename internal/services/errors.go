package services

import (
	"errors"
	"fmt"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

// Sentinel errors for the attempt lifecycle.
var (
	ErrAttemptNotFound         = errors.New("attempt not found")
	ErrAttemptNotActive        = errors.New("attempt is not active")
	ErrAttemptAlreadySubmitted = errors.New("attempt already submitted")
	ErrPaperMismatch           = errors.New("submission does not belong to this paper")
)

// Sentinel errors for scoring. Scoring is all-or-nothing: the first
// malformed entry aborts the run.
var (
	ErrUnknownSubmissionQuestion = errors.New("submission references unknown question")
	ErrAnswerKindMismatch        = errors.New("answer kind does not match question kind")
	ErrMalformedAnswerKey        = errors.New("malformed answer key")
	ErrMalformedAnswer           = errors.New("malformed answer value")
)

// ScoringError pins a scoring failure to the question that caused it.
type ScoringError struct {
	QuestionID models.QuestionID
	Err        error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("question %s: %v", e.QuestionID, e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

func newScoringError(id models.QuestionID, err error) *ScoringError {
	return &ScoringError{QuestionID: id, Err: err}
}

// IsScoringError reports whether err originated in the scoring engine and,
// if so, which question it names.
func IsScoringError(err error) (*ScoringError, bool) {
	var se *ScoringError
	if errors.As(err, &se) {
		return se, true
	}
	return nil, false
}
