package models

import (
	"time"

	"gorm.io/datatypes"
)

// QuestionSetDocument is the wire format for a test paper, as exported by the
// backend or authored for replay. Marking values may be omitted per question
// and default from the scheme on Resolve.
type QuestionSetDocument struct {
	TestID          string        `json:"test_id" validate:"required"`
	Title           string        `json:"title"`
	DurationSeconds float64       `json:"duration_seconds,omitempty" validate:"gte=0"`
	Scheme          MarkingScheme `json:"scheme"`
	Questions       []QuestionDef `json:"questions" validate:"required,min=1,dive"`
}

type QuestionDef struct {
	ID            string          `json:"id" validate:"required"`
	Kind          AnswerKind      `json:"kind" validate:"required,oneof=single_choice multi_choice numeric"`
	Subject       string          `json:"subject"`
	Difficulty    DifficultyLevel `json:"difficulty" validate:"omitempty,oneof=easy medium hard unknown"`
	Marks         *float64        `json:"marks,omitempty" validate:"omitempty,gte=0"`
	NegativeMarks *float64        `json:"negative_marks,omitempty" validate:"omitempty,lte=0"`
	CorrectAnswer AnswerKey       `json:"correct_answer"`
	Content       datatypes.JSON  `json:"content,omitempty"`
}

// Resolve materializes a Question, filling marking values from the scheme
// where the definition omits them. An explicit zero stays zero.
func (d QuestionDef) Resolve(scheme MarkingScheme) Question {
	q := Question{
		ID:            QuestionID(d.ID),
		Kind:          d.Kind,
		Subject:       d.Subject,
		Difficulty:    d.Difficulty,
		Marks:         scheme.Correct,
		NegativeMarks: scheme.Incorrect,
		CorrectAnswer: d.CorrectAnswer,
		Content:       d.Content,
	}
	if d.Marks != nil {
		q.Marks = *d.Marks
	}
	if d.NegativeMarks != nil {
		q.NegativeMarks = *d.NegativeMarks
	}
	return q
}

// ToPaper resolves every definition against the document's scheme.
func (doc *QuestionSetDocument) ToPaper() *TestPaper {
	paper := &TestPaper{
		ID:        doc.TestID,
		Title:     doc.Title,
		Duration:  time.Duration(doc.DurationSeconds * float64(time.Second)),
		Scheme:    doc.Scheme,
		Questions: make([]Question, 0, len(doc.Questions)),
	}
	for _, def := range doc.Questions {
		paper.Questions = append(paper.Questions, def.Resolve(doc.Scheme))
	}
	return paper
}
