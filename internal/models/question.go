package models

import (
	"time"

	"gorm.io/datatypes"
)

// AnswerKind discriminates the shape of a candidate answer and of the
// matching answer key.
type AnswerKind string

const (
	AnswerSingleChoice AnswerKind = "single_choice"
	AnswerMultiChoice  AnswerKind = "multi_choice"
	AnswerNumeric      AnswerKind = "numeric"
)

type DifficultyLevel string

const (
	DifficultyEasy    DifficultyLevel = "easy"
	DifficultyMedium  DifficultyLevel = "medium"
	DifficultyHard    DifficultyLevel = "hard"
	DifficultyUnknown DifficultyLevel = "unknown"
)

// QuestionID is opaque to the engine; the backend owns the numbering scheme.
type QuestionID string

// NumericRange is an inclusive tolerance window for numeric answers.
type NumericRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// AnswerKey holds the correct answer for a question. Exactly the fields
// matching the question kind are set: Choice for single_choice, Choices for
// multi_choice, Exact and/or Range for numeric. Range wins over Exact when
// both are present.
type AnswerKey struct {
	Choice  *int          `json:"choice,omitempty"`
	Choices []int         `json:"choices,omitempty"`
	Exact   *float64      `json:"exact,omitempty"`
	Range   *NumericRange `json:"range,omitempty"`
}

type Question struct {
	ID         QuestionID      `json:"id" validate:"required"`
	Kind       AnswerKind      `json:"kind" validate:"required,oneof=single_choice multi_choice numeric"`
	Subject    string          `json:"subject"`
	Difficulty DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard unknown"`

	// Marking values resolved against the paper's scheme; see QuestionDef.
	Marks         float64 `json:"marks" validate:"gte=0"`
	NegativeMarks float64 `json:"negative_marks" validate:"lte=0"`

	CorrectAnswer AnswerKey `json:"correct_answer"`

	// Presentation payload (prompt, options, attachments). Opaque to scoring,
	// carried through for display and report export.
	Content datatypes.JSON `json:"content,omitempty"`
}

// MarkingScheme is the per-outcome point values for a test. Correct and
// Incorrect double as defaults for questions that omit their own values.
type MarkingScheme struct {
	Correct     float64 `json:"correct" validate:"gte=0"`
	Incorrect   float64 `json:"incorrect" validate:"lte=0"`
	Unattempted float64 `json:"unattempted"`
}

// TestPaper is the read-only test definition supplied once per attempt.
type TestPaper struct {
	ID        string        `json:"id" validate:"required"`
	Title     string        `json:"title"`
	Duration  time.Duration `json:"duration,omitempty"`
	Scheme    MarkingScheme `json:"scheme"`
	Questions []Question    `json:"questions" validate:"required,min=1,dive"`
}

func (p *TestPaper) QuestionsByID() map[QuestionID]Question {
	byID := make(map[QuestionID]Question, len(p.Questions))
	for _, q := range p.Questions {
		byID[q.ID] = q
	}
	return byID
}

// TotalMarks sums Marks over all questions, attempted or not.
func (p *TestPaper) TotalMarks() float64 {
	var total float64
	for _, q := range p.Questions {
		total += q.Marks
	}
	return total
}
