package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/SAP-F-2025/attempt-engine/internal/cache"
	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

type analyticsService struct {
	logger *slog.Logger
	cache  *cache.CacheManager
}

func NewAnalyticsService(logger *slog.Logger, cacheManager *cache.CacheManager) AnalyticsService {
	return &analyticsService{
		logger: logger,
		cache:  cacheManager,
	}
}

func (s *analyticsService) Analyze(ctx context.Context, paper *models.TestPaper, submission *models.Submission) (*models.AnalysisReport, error) {
	if paper == nil || submission == nil {
		return nil, fmt.Errorf("paper and submission are required")
	}
	if paper.ID != submission.TestID {
		return nil, ErrPaperMismatch
	}

	s.logger.Info("Building analysis report",
		"submission_id", submission.ID,
		"attempt_id", submission.AttemptID)

	var report models.AnalysisReport
	err := s.cache.Analysis.CacheOrExecute(ctx, submission.AttemptID, &report, cache.AnalysisCacheConfig.TTL, func() (interface{}, error) {
		return buildAnalysisReport(paper, submission)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Analysis report built",
		"submission_id", submission.ID,
		"subjects", len(report.SubjectWise),
		"attempted", report.TimeDistribution.Total())

	return &report, nil
}

// ===== AGGREGATION =====

// buildAnalysisReport walks the submission once, filling the time histogram
// and the subject and difficulty rollups. Correctness reuses the scoring
// rules, so a malformed entry fails the report the same way it fails a score.
func buildAnalysisReport(paper *models.TestPaper, submission *models.Submission) (*models.AnalysisReport, error) {
	byID := paper.QuestionsByID()

	report := &models.AnalysisReport{
		SubjectWise:    make(map[string]models.GroupStats),
		DifficultyWise: make(map[models.DifficultyLevel]models.GroupStats),
		QuestionStates: submission.QuestionStates,
	}

	for _, entry := range submission.Answers {
		question, ok := byID[entry.QuestionID]
		if !ok {
			return nil, newScoringError(entry.QuestionID, ErrUnknownSubmissionQuestion)
		}

		attempted := entry.Attempted()
		if attempted {
			bucketTime(&report.TimeDistribution, entry.TimeSpent)
		}

		var correct bool
		if attempted {
			var err error
			correct, err = evaluateAnswer(question, entry.Answer)
			if err != nil {
				return nil, err
			}
		}

		subject := question.Subject
		if subject == "" {
			subject = models.UnknownSubject
		}
		report.SubjectWise[subject] = accumulateGroup(report.SubjectWise[subject], attempted, correct, entry.TimeSpent)

		difficulty := question.Difficulty
		if difficulty == "" {
			difficulty = models.DifficultyUnknown
		}
		report.DifficultyWise[difficulty] = accumulateGroup(report.DifficultyWise[difficulty], attempted, correct, entry.TimeSpent)
	}

	return report, nil
}

// bucketTime places one attempted question in the histogram. 120s belongs to
// the third bucket; the last is strictly above it.
func bucketTime(dist *models.TimeDistribution, spent time.Duration) {
	switch {
	case spent < 30*time.Second:
		dist.Under30s++
	case spent < 60*time.Second:
		dist.Sec30To60++
	case spent <= 120*time.Second:
		dist.Sec60To120++
	default:
		dist.Over120s++
	}
}

// accumulateGroup counts every question toward Total and TimeSpent; only
// attempted ones can be Correct.
func accumulateGroup(stats models.GroupStats, attempted, correct bool, spent time.Duration) models.GroupStats {
	stats.Total++
	if attempted {
		stats.Attempted++
	}
	if correct {
		stats.Correct++
	}
	stats.TimeSpent += spent
	return stats
}
