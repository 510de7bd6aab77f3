package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/SAP-F-2025/attempt-engine/internal/cache"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

type scoringService struct {
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewScoringService(logger *slog.Logger, cacheManager *cache.CacheManager) ScoringService {
	return &scoringService{
		logger: logger,
		cache:  cacheManager,
	}
}

func (s *scoringService) Score(ctx context.Context, paper *models.TestPaper, submission *models.Submission) (*models.ScoreResult, error) {
	if paper == nil || submission == nil {
		return nil, fmt.Errorf("paper and submission are required")
	}
	if paper.ID != submission.TestID {
		return nil, ErrPaperMismatch
	}

	s.logger.Info("Scoring submission",
		"submission_id", submission.ID,
		"attempt_id", submission.AttemptID,
		"test_id", submission.TestID,
		"answers_count", len(submission.Answers))

	// Scoring is deterministic and an attempt has at most one submission, so
	// results are cached per attempt.
	var result models.ScoreResult
	err := s.cache.Score.CacheOrExecute(ctx, submission.AttemptID, &result, cache.ScoreCacheConfig.TTL, func() (interface{}, error) {
		return scoreSubmission(paper, submission)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Submission scored",
		"submission_id", submission.ID,
		"score", result.Score,
		"percentage", result.Percentage,
		"correct", result.CorrectCount,
		"incorrect", result.IncorrectCount,
		"unattempted", result.UnattemptedCount)

	return &result, nil
}
