package services

import (
	"math"
	"reflect"
	"sort"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

// ===== SCORING CORE =====

// scoreSubmission evaluates every answer entry against the paper. The first
// malformed entry aborts the run with no partial result.
func scoreSubmission(paper *models.TestPaper, submission *models.Submission) (*models.ScoreResult, error) {
	byID := paper.QuestionsByID()

	result := &models.ScoreResult{
		TotalPossibleMarks: paper.TotalMarks(),
	}

	for _, entry := range submission.Answers {
		question, ok := byID[entry.QuestionID]
		if !ok {
			return nil, newScoringError(entry.QuestionID, ErrUnknownSubmissionQuestion)
		}

		if !entry.Attempted() {
			result.UnattemptedCount++
			result.Score += paper.Scheme.Unattempted
			continue
		}

		correct, err := evaluateAnswer(question, entry.Answer)
		if err != nil {
			return nil, err
		}
		if correct {
			result.CorrectCount++
			result.Score += question.Marks
		} else {
			result.IncorrectCount++
			result.Score += question.NegativeMarks
		}
	}

	result.Percentage = percentage(result.Score, result.TotalPossibleMarks)

	return result, nil
}

// evaluateAnswer decides correctness for a single attempted answer. There is
// no partial credit: multi-choice answers must match the key exactly as a
// set, numeric answers must land in the inclusive window.
func evaluateAnswer(question models.Question, answer models.AnswerValue) (bool, error) {
	if answer == nil {
		return false, nil
	}
	if answer.Kind() != question.Kind {
		return false, newScoringError(question.ID, ErrAnswerKindMismatch)
	}

	key := question.CorrectAnswer

	switch v := answer.(type) {
	case models.SingleChoice:
		if key.Choice == nil {
			return false, newScoringError(question.ID, ErrMalformedAnswerKey)
		}
		return int(v) == *key.Choice, nil

	case models.MultiChoice:
		if len(key.Choices) == 0 {
			return false, newScoringError(question.ID, ErrMalformedAnswerKey)
		}
		return equalChoiceSets(v, key.Choices), nil

	case models.Numeric:
		if key.Range != nil {
			return float64(v) >= key.Range.Min && float64(v) <= key.Range.Max, nil
		}
		if key.Exact != nil {
			return float64(v) == *key.Exact, nil
		}
		return false, newScoringError(question.ID, ErrMalformedAnswerKey)

	default:
		return false, newScoringError(question.ID, ErrMalformedAnswer)
	}
}

// ===== HELPER FUNCTIONS =====

// equalChoiceSets compares two choice lists as sets: duplicates collapse and
// order is ignored.
func equalChoiceSets(a, b []int) bool {
	return reflect.DeepEqual(normalizeChoices(a), normalizeChoices(b))
}

func normalizeChoices(choices []int) []int {
	sorted := make([]int, len(choices))
	copy(sorted, choices)
	sort.Ints(sorted)

	out := sorted[:0]
	for i, c := range sorted {
		if i > 0 && c == sorted[i-1] {
			continue
		}
		out = append(out, c)
	}
	return out
}

// percentage guards the empty-paper case: zero total marks scores 0%.
func percentage(score, total float64) float64 {
	if total == 0 {
		return 0
	}
	return roundFloat(score/total*100, 2)
}

func roundFloat(val float64, precision int) float64 {
	ratio := 1.0
	for i := 0; i < precision; i++ {
		ratio *= 10
	}
	return math.Round(val*ratio) / ratio
}
