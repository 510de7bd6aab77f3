package services

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/SAP-F-2025/attempt-engine/internal/cache"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

func intPtr(v int) *int           { return &v }
func floatPtr(v float64) *float64 { return &v }

// testPaper is a five question paper worth 20 marks: two single choice, one
// multi choice, two numeric. q5 carries no subject or difficulty tag.
func testPaper() *models.TestPaper {
	return &models.TestPaper{
		ID:     "TEST-2024-001",
		Title:  "Midterm Physics",
		Scheme: models.MarkingScheme{Correct: 4, Incorrect: -1, Unattempted: 0},
		Questions: []models.Question{
			{
				ID: "q1", Kind: models.AnswerSingleChoice,
				Subject: "mechanics", Difficulty: models.DifficultyEasy,
				Marks: 4, NegativeMarks: -1,
				CorrectAnswer: models.AnswerKey{Choice: intPtr(2)},
			},
			{
				ID: "q2", Kind: models.AnswerSingleChoice,
				Subject: "mechanics", Difficulty: models.DifficultyMedium,
				Marks: 4, NegativeMarks: -1,
				CorrectAnswer: models.AnswerKey{Choice: intPtr(0)},
			},
			{
				ID: "q3", Kind: models.AnswerMultiChoice,
				Subject: "optics", Difficulty: models.DifficultyMedium,
				Marks: 4, NegativeMarks: -1,
				CorrectAnswer: models.AnswerKey{Choices: []int{0, 2}},
			},
			{
				ID: "q4", Kind: models.AnswerNumeric,
				Subject: "optics", Difficulty: models.DifficultyHard,
				Marks: 4, NegativeMarks: -1,
				CorrectAnswer: models.AnswerKey{Range: &models.NumericRange{Min: 9.7, Max: 9.9}},
			},
			{
				ID: "q5", Kind: models.AnswerNumeric,
				Marks: 4, NegativeMarks: -1,
				CorrectAnswer: models.AnswerKey{Exact: floatPtr(42)},
			},
		},
	}
}

// testAnswers covers the paper with three correct answers, one incorrect and
// one unattempted question: 3*4 - 1 = 11 of 20 marks.
func testAnswers() []models.AnswerEntry {
	return []models.AnswerEntry{
		{QuestionID: "q1", Answer: models.SingleChoice(2), TimeSpent: 25 * time.Second},
		{QuestionID: "q2", Answer: models.SingleChoice(1), TimeSpent: 30 * time.Second},
		{QuestionID: "q3", Answer: models.MultiChoice{2, 0}, TimeSpent: 60 * time.Second},
		{QuestionID: "q4", Answer: models.Numeric(9.8), TimeSpent: 120 * time.Second},
		{QuestionID: "q5", TimeSpent: 10 * time.Second},
	}
}

func testSubmission(answers []models.AnswerEntry) *models.Submission {
	return &models.Submission{
		ID:        "sub-001",
		TestID:    "TEST-2024-001",
		AttemptID: "att-001",
		Answers:   answers,
	}
}

func TestNewScoringService(t *testing.T) {
	type args struct {
		logger       *slog.Logger
		cacheManager *cache.CacheManager
	}
	tests := []struct {
		name string
		args args
		want ScoringService
	}{
		{name: "ok"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			NewScoringService(tt.args.logger, tt.args.cacheManager)
		})
	}
}

func TestScoringService_Score(t *testing.T) {
	// Setup
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := NewScoringService(logger, cache.NewCacheManager(nil))
	ctx := context.Background()

	t.Run("FullPaper", func(t *testing.T) {
		result, err := svc.Score(ctx, testPaper(), testSubmission(testAnswers()))
		if err != nil {
			t.Fatalf("Failed to score submission: %v", err)
		}

		want := &models.ScoreResult{
			Score:              11,
			Percentage:         55,
			TotalPossibleMarks: 20,
			CorrectCount:       3,
			IncorrectCount:     1,
			UnattemptedCount:   1,
		}
		if !reflect.DeepEqual(result, want) {
			t.Errorf("Score() = %+v, want %+v", result, want)
		}
	})

	t.Run("Deterministic", func(t *testing.T) {
		first, err := svc.Score(ctx, testPaper(), testSubmission(testAnswers()))
		if err != nil {
			t.Fatalf("First score failed: %v", err)
		}
		second, err := svc.Score(ctx, testPaper(), testSubmission(testAnswers()))
		if err != nil {
			t.Fatalf("Second score failed: %v", err)
		}
		if !reflect.DeepEqual(first, second) {
			t.Errorf("Re-scoring diverged: %+v vs %+v", first, second)
		}
	})

	t.Run("NegativeScore", func(t *testing.T) {
		answers := []models.AnswerEntry{
			{QuestionID: "q2", Answer: models.SingleChoice(3)},
		}
		result, err := svc.Score(ctx, testPaper(), testSubmission(answers))
		if err != nil {
			t.Fatalf("Failed to score submission: %v", err)
		}
		if result.Score != -1 {
			t.Errorf("Score = %v, want -1", result.Score)
		}
		if result.Percentage != -5 {
			t.Errorf("Percentage = %v, want -5", result.Percentage)
		}
	})

	t.Run("ZeroMarksPaper", func(t *testing.T) {
		paper := testPaper()
		for i := range paper.Questions {
			paper.Questions[i].Marks = 0
		}
		result, err := svc.Score(ctx, paper, testSubmission(testAnswers()))
		if err != nil {
			t.Fatalf("Failed to score submission: %v", err)
		}
		if result.TotalPossibleMarks != 0 {
			t.Errorf("TotalPossibleMarks = %v, want 0", result.TotalPossibleMarks)
		}
		if result.Percentage != 0 {
			t.Errorf("Percentage = %v, want 0 for a zero mark paper", result.Percentage)
		}
	})
}

func TestScoringService_Score_AnswerVariants(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := NewScoringService(logger, cache.NewCacheManager(nil))
	ctx := context.Background()

	tests := []struct {
		name    string
		entry   models.AnswerEntry
		correct bool
	}{
		{
			name:    "single choice correct",
			entry:   models.AnswerEntry{QuestionID: "q1", Answer: models.SingleChoice(2)},
			correct: true,
		},
		{
			name:    "single choice wrong option",
			entry:   models.AnswerEntry{QuestionID: "q1", Answer: models.SingleChoice(1)},
			correct: false,
		},
		{
			name:    "multi choice order and duplicates ignored",
			entry:   models.AnswerEntry{QuestionID: "q3", Answer: models.MultiChoice{2, 0, 2}},
			correct: true,
		},
		{
			name:    "multi choice subset earns nothing",
			entry:   models.AnswerEntry{QuestionID: "q3", Answer: models.MultiChoice{0}},
			correct: false,
		},
		{
			name:    "multi choice superset earns nothing",
			entry:   models.AnswerEntry{QuestionID: "q3", Answer: models.MultiChoice{0, 1, 2}},
			correct: false,
		},
		{
			name:    "numeric range lower bound inclusive",
			entry:   models.AnswerEntry{QuestionID: "q4", Answer: models.Numeric(9.7)},
			correct: true,
		},
		{
			name:    "numeric range upper bound inclusive",
			entry:   models.AnswerEntry{QuestionID: "q4", Answer: models.Numeric(9.9)},
			correct: true,
		},
		{
			name:    "numeric just outside window",
			entry:   models.AnswerEntry{QuestionID: "q4", Answer: models.Numeric(9.95)},
			correct: false,
		},
		{
			name:    "numeric exact match",
			entry:   models.AnswerEntry{QuestionID: "q5", Answer: models.Numeric(42)},
			correct: true,
		},
		{
			name:    "numeric exact miss",
			entry:   models.AnswerEntry{QuestionID: "q5", Answer: models.Numeric(41.999)},
			correct: false,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := svc.Score(ctx, testPaper(), testSubmission([]models.AnswerEntry{tt.entry}))
			if err != nil {
				t.Fatalf("Score() error = %v", err)
			}
			if got := result.CorrectCount == 1; got != tt.correct {
				t.Errorf("correct = %v, want %v (result %+v)", got, tt.correct, result)
			}
		})
	}
}

func TestScoringService_Score_Errors(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := NewScoringService(logger, cache.NewCacheManager(nil))
	ctx := context.Background()

	t.Run("NilInputs", func(t *testing.T) {
		if _, err := svc.Score(ctx, nil, nil); err == nil {
			t.Error("Score() with nil inputs expected error")
		}
	})

	t.Run("PaperMismatch", func(t *testing.T) {
		sub := testSubmission(testAnswers())
		sub.TestID = "TEST-OTHER"
		if _, err := svc.Score(ctx, testPaper(), sub); !errors.Is(err, ErrPaperMismatch) {
			t.Errorf("Score() error = %v, want ErrPaperMismatch", err)
		}
	})

	t.Run("UnknownQuestion", func(t *testing.T) {
		sub := testSubmission([]models.AnswerEntry{
			{QuestionID: "ghost", Answer: models.SingleChoice(0)},
		})
		_, err := svc.Score(ctx, testPaper(), sub)
		if !errors.Is(err, ErrUnknownSubmissionQuestion) {
			t.Errorf("Score() error = %v, want ErrUnknownSubmissionQuestion", err)
		}
		se, ok := IsScoringError(err)
		if !ok {
			t.Fatalf("Score() error = %v, want a ScoringError", err)
		}
		if se.QuestionID != "ghost" {
			t.Errorf("ScoringError.QuestionID = %s, want ghost", se.QuestionID)
		}
	})

	t.Run("KindMismatch", func(t *testing.T) {
		sub := testSubmission([]models.AnswerEntry{
			{QuestionID: "q1", Answer: models.Numeric(2)},
		})
		if _, err := svc.Score(ctx, testPaper(), sub); !errors.Is(err, ErrAnswerKindMismatch) {
			t.Errorf("Score() error = %v, want ErrAnswerKindMismatch", err)
		}
	})

	t.Run("MalformedAnswerKey", func(t *testing.T) {
		paper := testPaper()
		paper.Questions[0].CorrectAnswer = models.AnswerKey{}
		sub := testSubmission([]models.AnswerEntry{
			{QuestionID: "q1", Answer: models.SingleChoice(2)},
		})
		if _, err := svc.Score(ctx, paper, sub); !errors.Is(err, ErrMalformedAnswerKey) {
			t.Errorf("Score() error = %v, want ErrMalformedAnswerKey", err)
		}
	})
}

// Benchmark test
func BenchmarkScoringService_Score(b *testing.B) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	svc := NewScoringService(logger, cache.NewCacheManager(nil))

	ctx := context.Background()
	paper := testPaper()
	submission := testSubmission(testAnswers())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, err := svc.Score(ctx, paper, submission)
		if err != nil {
			b.Fatalf("Failed to score submission: %v", err)
		}
	}
}
