package attempt

import (
	"time"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

// Attempt is one candidate's run through one test, from start to submit. It
// owns the per-question trackers and the navigation log. The aggregate is
// deliberately unsynchronized: one logical owner mutates it at a time, which
// the surrounding application enforces.
type Attempt struct {
	id          string
	testID      string
	candidateID string

	trackers map[models.QuestionID]*models.QuestionTracker
	order    []models.QuestionID
	log      *navigationLog

	startedAt time.Time
	now       func() time.Time
}

type Option func(*Attempt)

// WithClock overrides the wall-clock source, mainly for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(a *Attempt) {
		if now != nil {
			a.now = now
		}
	}
}

func WithCandidate(candidateID string) Option {
	return func(a *Attempt) {
		a.candidateID = candidateID
	}
}

// New starts an attempt over the given question set. Every question gets a
// tracker immediately, so the submission later covers the full universe.
func New(id, testID string, questions []models.Question, opts ...Option) (*Attempt, error) {
	if len(questions) == 0 {
		return nil, ErrNoQuestions
	}

	a := &Attempt{
		id:       id,
		testID:   testID,
		trackers: make(map[models.QuestionID]*models.QuestionTracker, len(questions)),
		order:    make([]models.QuestionID, 0, len(questions)),
		log:      newNavigationLog(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.startedAt = a.now()

	for _, q := range questions {
		if _, exists := a.trackers[q.ID]; exists {
			return nil, ErrDuplicateQuestion
		}
		a.trackers[q.ID] = &models.QuestionTracker{QuestionID: q.ID}
		a.order = append(a.order, q.ID)
	}
	return a, nil
}

func (a *Attempt) ID() string           { return a.id }
func (a *Attempt) TestID() string       { return a.testID }
func (a *Attempt) CandidateID() string  { return a.candidateID }
func (a *Attempt) StartedAt() time.Time { return a.startedAt }
func (a *Attempt) QuestionCount() int   { return len(a.order) }

// Visit records the first opening of a question. Idempotent: re-visits
// change nothing and append no event.
func (a *Attempt) Visit(id models.QuestionID) error {
	t, err := a.tracker(id)
	if err != nil {
		return err
	}
	if t.IsVisited {
		return nil
	}
	t.IsVisited = true
	a.log.append(a.now(), id, models.NavVisit)
	return nil
}

// SetAnswer stores the candidate's answer and implies a visit.
func (a *Attempt) SetAnswer(id models.QuestionID, value models.AnswerValue) error {
	t, err := a.tracker(id)
	if err != nil {
		return err
	}
	if value == nil {
		return ErrNilAnswer
	}
	t.UserAnswer = copyAnswerValue(value)
	t.IsVisited = true
	a.log.append(a.now(), id, models.NavAnswer)
	return nil
}

// ClearAnswer withdraws the answer. The mark flag is untouched.
func (a *Attempt) ClearAnswer(id models.QuestionID) error {
	t, err := a.tracker(id)
	if err != nil {
		return err
	}
	t.UserAnswer = nil
	a.log.append(a.now(), id, models.NavClear)
	return nil
}

// ToggleMark flips the review flag and implies a visit.
func (a *Attempt) ToggleMark(id models.QuestionID) error {
	t, err := a.tracker(id)
	if err != nil {
		return err
	}
	t.IsMarked = !t.IsMarked
	t.IsVisited = true
	action := models.NavMark
	if !t.IsMarked {
		action = models.NavUnmark
	}
	a.log.append(a.now(), id, action)
	return nil
}

// AccrueTime adds timer-driven elapsed time to a question. Accrual is not a
// navigation action and appends no event.
func (a *Attempt) AccrueTime(id models.QuestionID, delta time.Duration) error {
	t, err := a.tracker(id)
	if err != nil {
		return err
	}
	if delta < 0 {
		return &InvalidDurationError{Delta: delta}
	}
	t.TimeTaken += delta
	return nil
}

// Tracker returns a copy of one question's state.
func (a *Attempt) Tracker(id models.QuestionID) (models.QuestionTracker, bool) {
	t, ok := a.trackers[id]
	if !ok {
		return models.QuestionTracker{}, false
	}
	return snapshotTracker(t), true
}

// Trackers returns copies of all trackers in test question order.
func (a *Attempt) Trackers() []models.QuestionTracker {
	out := make([]models.QuestionTracker, 0, len(a.order))
	for _, id := range a.order {
		out = append(out, snapshotTracker(a.trackers[id]))
	}
	return out
}

// StateCounts classifies every tracker for the live status panel.
func (a *Attempt) StateCounts() models.StateCounts {
	return CountStates(a.Trackers())
}

// Partition buckets every question id by classifier state.
func (a *Attempt) Partition() models.StatePartition {
	return PartitionStates(a.order, a.trackers)
}

// NavigationEvents returns a copy of the log so far.
func (a *Attempt) NavigationEvents() []models.NavigationEvent {
	return a.log.snapshot()
}

func (a *Attempt) tracker(id models.QuestionID) (*models.QuestionTracker, error) {
	t, ok := a.trackers[id]
	if !ok {
		return nil, &UnknownQuestionError{QuestionID: id}
	}
	return t, nil
}

func snapshotTracker(t *models.QuestionTracker) models.QuestionTracker {
	copied := *t
	copied.UserAnswer = copyAnswerValue(t.UserAnswer)
	return copied
}

// copyAnswerValue guards against callers mutating a shared choice slice.
func copyAnswerValue(v models.AnswerValue) models.AnswerValue {
	if mc, ok := v.(models.MultiChoice); ok {
		choices := make(models.MultiChoice, len(mc))
		copy(choices, mc)
		return choices
	}
	return v
}
