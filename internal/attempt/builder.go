package attempt

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

// TimeDriftTolerance is the slack allowed between summed per-question time
// and wall-clock attempt duration before the submission is flagged.
const TimeDriftTolerance = 5 * time.Second

// BuildSubmission snapshots the attempt into an immutable submission. It is
// atomic: it returns a fully-formed submission or an error, never a partial
// object. The answer list covers every tracked question, attempted or not,
// in test question order; the state partition is frozen at build time.
//
// A failed time consistency check does not fail the build. The submission
// carries a TimeCheck report instead, since client clocks are untrusted and
// the backend decides how to treat the flag.
func (a *Attempt) BuildSubmission(environment datatypes.JSON) (*models.Submission, error) {
	if len(environment) > 0 && !json.Valid(environment) {
		return nil, fmt.Errorf("build submission: environment is not valid JSON")
	}

	endTime := a.now()
	elapsed := endTime.Sub(a.startedAt)
	if elapsed < 0 {
		elapsed = 0
	}

	answers := make([]models.AnswerEntry, 0, len(a.order))
	var accrued time.Duration
	for _, id := range a.order {
		t := a.trackers[id]
		answers = append(answers, models.AnswerEntry{
			QuestionID: id,
			Answer:     copyAnswerValue(t.UserAnswer),
			TimeSpent:  t.TimeTaken,
		})
		accrued += t.TimeTaken
	}

	sub := &models.Submission{
		ID:                uuid.NewString(),
		TestID:            a.testID,
		AttemptID:         a.id,
		CandidateID:       a.candidateID,
		StartTime:         a.startedAt,
		EndTime:           endTime,
		TotalTimeTaken:    elapsed,
		Answers:           answers,
		QuestionStates:    PartitionStates(a.order, a.trackers),
		NavigationHistory: a.log.snapshot(),
		Environment:       environment,
	}
	if accrued > elapsed+TimeDriftTolerance {
		sub.TimeCheck = &models.TimeConsistencyReport{
			AccruedTime: accrued,
			ElapsedTime: elapsed,
			Tolerance:   TimeDriftTolerance,
		}
	}
	return sub, nil
}

// NewTimeConsistencyError lifts a submission's TimeCheck report into the
// error kind logged by the service layer.
func NewTimeConsistencyError(r *models.TimeConsistencyReport) *TimeConsistencyError {
	if r == nil {
		return nil
	}
	return &TimeConsistencyError{
		Accrued:   r.AccruedTime,
		Elapsed:   r.ElapsedTime,
		Tolerance: r.Tolerance,
	}
}
