package validator

import (
	"fmt"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
	"github.com/go-playground/validator/v10"
)

// BusinessValidator handles business rule validation for question sets and
// resolved papers before an attempt may start on them.
type BusinessValidator struct {
	validate *validator.Validate
}

// Validator is the project-wide validator handle.
type Validator = BusinessValidator

// New creates the default validator.
func New() *Validator {
	return NewBusinessValidator()
}

// NewBusinessValidator creates a new business validator
func NewBusinessValidator() *BusinessValidator {
	validate := validator.New()

	bv := &BusinessValidator{validate: validate}
	bv.registerBusinessRules()

	return bv
}

// Validate validates business rules for any struct
func (bv *BusinessValidator) Validate(s interface{}) ValidationErrors {
	if err := bv.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ValidateQuestionSet validates a question-set document before it is resolved
// into a paper. Struct tags cover field-level shape; document-level rules are
// checked here.
func (bv *BusinessValidator) ValidateQuestionSet(doc *models.QuestionSetDocument) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(doc)...)

	seen := make(map[string]int, len(doc.Questions))
	for i, q := range doc.Questions {
		if first, dup := seen[q.ID]; dup {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].id", i),
				Message: fmt.Sprintf("duplicates questions[%d]", first),
				Value:   q.ID,
				Rule:    "unique_id",
			})
			continue
		}
		seen[q.ID] = i
	}

	return errors
}

// ValidatePaper validates a resolved test paper.
func (bv *BusinessValidator) ValidatePaper(paper *models.TestPaper) ValidationErrors {
	var errors ValidationErrors

	errors = append(errors, bv.Validate(paper)...)

	seen := make(map[models.QuestionID]int, len(paper.Questions))
	for i, q := range paper.Questions {
		if first, dup := seen[q.ID]; dup {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].id", i),
				Message: fmt.Sprintf("duplicates questions[%d]", first),
				Value:   string(q.ID),
				Rule:    "unique_id",
			})
			continue
		}
		seen[q.ID] = i
	}

	return errors
}

// registerBusinessRules registers struct-level answer key checks. These fire
// for every question reached through a dive tag, so whole documents fail fast
// on a single malformed key.
func (bv *BusinessValidator) registerBusinessRules() {
	bv.validate.RegisterStructValidation(func(sl validator.StructLevel) {
		def := sl.Current().Interface().(models.QuestionDef)
		checkAnswerKey(sl, def.Kind, def.CorrectAnswer)
	}, models.QuestionDef{})

	bv.validate.RegisterStructValidation(func(sl validator.StructLevel) {
		q := sl.Current().Interface().(models.Question)
		checkAnswerKey(sl, q.Kind, q.CorrectAnswer)
	}, models.Question{})
}

// checkAnswerKey enforces that the answer key carries the fields the question
// kind needs. Extra fields are tolerated; Range wins over Exact for numeric.
func checkAnswerKey(sl validator.StructLevel, kind models.AnswerKind, key models.AnswerKey) {
	switch kind {
	case models.AnswerSingleChoice:
		if key.Choice == nil {
			sl.ReportError(key.Choice, "CorrectAnswer", "CorrectAnswer", "answer_key", string(kind))
			return
		}
		if *key.Choice < 0 {
			sl.ReportError(*key.Choice, "CorrectAnswer", "CorrectAnswer", "choice_index", "")
		}
	case models.AnswerMultiChoice:
		if len(key.Choices) == 0 {
			sl.ReportError(key.Choices, "CorrectAnswer", "CorrectAnswer", "answer_key", string(kind))
			return
		}
		for _, c := range key.Choices {
			if c < 0 {
				sl.ReportError(key.Choices, "CorrectAnswer", "CorrectAnswer", "choice_index", "")
				break
			}
		}
	case models.AnswerNumeric:
		if key.Exact == nil && key.Range == nil {
			sl.ReportError(key.Exact, "CorrectAnswer", "CorrectAnswer", "answer_key", string(kind))
			return
		}
		if key.Range != nil && key.Range.Min > key.Range.Max {
			sl.ReportError(key.Range, "CorrectAnswer", "CorrectAnswer", "range_order", "")
		}
	}
}
