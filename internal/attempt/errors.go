package attempt

import (
	"errors"
	"fmt"
	"time"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

var (
	ErrNoQuestions       = errors.New("attempt requires at least one question")
	ErrDuplicateQuestion = errors.New("duplicate question id in question set")
	ErrNilAnswer         = errors.New("answer value is required, use ClearAnswer to withdraw")
)

// UnknownQuestionError reports a mutation against a question id that is not
// part of the attempt. Fatal to the operation, not to the attempt: the caller
// drops the stray event and continues.
type UnknownQuestionError struct {
	QuestionID models.QuestionID
}

func (e *UnknownQuestionError) Error() string {
	return fmt.Sprintf("unknown question %q", e.QuestionID)
}

// InvalidDurationError reports a negative time delta. The tracker is left
// unchanged.
type InvalidDurationError struct {
	Delta time.Duration
}

func (e *InvalidDurationError) Error() string {
	return fmt.Sprintf("invalid duration %s: time deltas must be non-negative", e.Delta)
}

// TimeConsistencyError reports accrued per-question time exceeding the
// wall-clock attempt duration beyond tolerance. It never blocks submission;
// it is surfaced for logging and backend review.
type TimeConsistencyError struct {
	Accrued   time.Duration
	Elapsed   time.Duration
	Tolerance time.Duration
}

func (e *TimeConsistencyError) Error() string {
	return fmt.Sprintf("accrued question time %s exceeds elapsed attempt time %s beyond tolerance %s",
		e.Accrued, e.Elapsed, e.Tolerance)
}

// IsUnknownQuestion reports whether err is an UnknownQuestionError.
func IsUnknownQuestion(err error) bool {
	var target *UnknownQuestionError
	return errors.As(err, &target)
}
