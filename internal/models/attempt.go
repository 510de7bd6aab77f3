package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
)

type AttemptStatus string

const (
	AttemptInProgress AttemptStatus = "in_progress"
	AttemptSubmitted  AttemptStatus = "submitted"
	AttemptAbandoned  AttemptStatus = "abandoned"
)

// QuestionState is the classifier bucket shown on the status panel. The five
// states are mutually exclusive and cover every tracked question.
type QuestionState string

const (
	StateNotVisited        QuestionState = "not_visited"
	StateNotAnswered       QuestionState = "not_answered"
	StateAnswered          QuestionState = "answered"
	StateMarkedForReview   QuestionState = "marked_for_review"
	StateAnsweredAndMarked QuestionState = "answered_and_marked"
)

// AllQuestionStates lists the classifier buckets in display order.
func AllQuestionStates() []QuestionState {
	return []QuestionState{
		StateNotVisited,
		StateNotAnswered,
		StateAnswered,
		StateMarkedForReview,
		StateAnsweredAndMarked,
	}
}

// QuestionTracker is the per-question mutable state of one attempt. It is
// owned exclusively by the attempt aggregate; callers only ever see copies.
type QuestionTracker struct {
	QuestionID QuestionID
	UserAnswer AnswerValue // nil = unattempted
	IsVisited  bool        // set on first open, never reset
	IsMarked   bool
	TimeTaken  time.Duration
}

type NavigationAction string

const (
	NavVisit  NavigationAction = "visit"
	NavAnswer NavigationAction = "answer"
	NavClear  NavigationAction = "clear"
	NavMark   NavigationAction = "mark"
	NavUnmark NavigationAction = "unmark"
)

// NavigationEvent records one candidate action. Seq is the authoritative
// total order; wall-clock timestamps are not guaranteed strictly increasing
// across rapid events.
type NavigationEvent struct {
	Seq        int              `json:"seq"`
	Timestamp  time.Time        `json:"timestamp"`
	QuestionID QuestionID       `json:"question_id"`
	Action     NavigationAction `json:"action"`

	// Elapsed time since the previous event on the same question; zero for
	// the first event a question sees.
	TimeSinceLast time.Duration `json:"time_since_last"`
}

type StateCounts map[QuestionState]int

func (c StateCounts) Total() int {
	var total int
	for _, n := range c {
		total += n
	}
	return total
}

// StatePartition maps each classifier bucket to the question ids in it,
// preserving test question order within a bucket.
type StatePartition map[QuestionState][]QuestionID

func (p StatePartition) Counts() StateCounts {
	counts := make(StateCounts, len(p))
	for state, ids := range p {
		counts[state] = len(ids)
	}
	return counts
}

// AnswerEntry is one row of Submission.Answers. Every tracked question gets
// an entry; Answer is nil for unattempted questions.
type AnswerEntry struct {
	QuestionID QuestionID
	Answer     AnswerValue
	TimeSpent  time.Duration
}

func (e AnswerEntry) Attempted() bool { return e.Answer != nil }

type answerEntryWire struct {
	QuestionID QuestionID     `json:"question_id"`
	Answer     *AnswerPayload `json:"answer,omitempty"`
	TimeSpent  time.Duration  `json:"time_spent"`
}

func (e AnswerEntry) MarshalJSON() ([]byte, error) {
	return json.Marshal(answerEntryWire{
		QuestionID: e.QuestionID,
		Answer:     PayloadFromValue(e.Answer),
		TimeSpent:  e.TimeSpent,
	})
}

func (e *AnswerEntry) UnmarshalJSON(data []byte) error {
	var wire answerEntryWire
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	value, err := wire.Answer.ToValue()
	if err != nil {
		return err
	}
	e.QuestionID = wire.QuestionID
	e.Answer = value
	e.TimeSpent = wire.TimeSpent
	return nil
}

// TimeConsistencyReport flags accrued per-question time exceeding wall-clock
// elapsed time beyond tolerance. Advisory only; client clocks are untrusted
// and the backend treats the flag as a manual-review signal.
type TimeConsistencyReport struct {
	AccruedTime time.Duration `json:"accrued_time"`
	ElapsedTime time.Duration `json:"elapsed_time"`
	Tolerance   time.Duration `json:"tolerance"`
}

// Submission is the immutable snapshot built once at submit time. Durations
// marshal as nanoseconds.
type Submission struct {
	ID                string                 `json:"id"`
	TestID            string                 `json:"test_id"`
	AttemptID         string                 `json:"attempt_id"`
	CandidateID       string                 `json:"candidate_id,omitempty"`
	StartTime         time.Time              `json:"start_time"`
	EndTime           time.Time              `json:"end_time"`
	TotalTimeTaken    time.Duration          `json:"total_time_taken"`
	Answers           []AnswerEntry          `json:"answers"`
	QuestionStates    StatePartition         `json:"question_states"`
	NavigationHistory []NavigationEvent      `json:"navigation_history"`
	Environment       datatypes.JSON         `json:"environment,omitempty"`
	TimeCheck         *TimeConsistencyReport `json:"time_check,omitempty"`
}
