package services

import (
	"context"
	"io"
	"time"

	"github.com/xuri/excelize/v2"
	"gorm.io/datatypes"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
)

// ===== REQUEST/RESPONSE DTOs =====

type StartAttemptRequest struct {
	Paper       *models.TestPaper `json:"paper" validate:"required"`
	CandidateID string            `json:"candidate_id" validate:"required"`
}

type AnswerRequest struct {
	QuestionID string                `json:"question_id" validate:"required"`
	Answer     *models.AnswerPayload `json:"answer" validate:"required"`

	// TimeSpentSeconds optionally accrues active time in the same call, the
	// way proctoring clients batch answer and timing updates.
	TimeSpentSeconds float64 `json:"time_spent_seconds" validate:"gte=0"`
}

type SubmitAttemptRequest struct {
	AttemptID string `json:"attempt_id" validate:"required"`

	// Environment is an opaque client snapshot (user agent, screen, proctor
	// flags) carried through to the submission.
	Environment datatypes.JSON `json:"environment,omitempty"`
}

// AttemptSnapshot is the read view of a live attempt.
type AttemptSnapshot struct {
	AttemptID   string               `json:"attempt_id"`
	TestID      string               `json:"test_id"`
	CandidateID string               `json:"candidate_id"`
	Status      models.AttemptStatus `json:"status"`
	StartedAt   time.Time            `json:"started_at"`
	States      models.StateCounts   `json:"states"`
	CanSubmit   bool                 `json:"can_submit"`
}

// SubmitResult bundles everything produced by a submission in one pass.
type SubmitResult struct {
	Submission *models.Submission     `json:"submission"`
	Score      *models.ScoreResult    `json:"score"`
	Analysis   *models.AnalysisReport `json:"analysis"`
}

// ===== SERVICE INTERFACES =====

type AttemptService interface {
	// Lifecycle
	Start(ctx context.Context, req *StartAttemptRequest) (*AttemptSnapshot, error)
	Get(ctx context.Context, attemptID string) (*AttemptSnapshot, error)
	Submit(ctx context.Context, req *SubmitAttemptRequest) (*SubmitResult, error)
	Abandon(ctx context.Context, attemptID string) error

	// Navigation and answering
	Visit(ctx context.Context, attemptID, questionID string) error
	Answer(ctx context.Context, attemptID string, req *AnswerRequest) error
	ClearAnswer(ctx context.Context, attemptID, questionID string) error
	ToggleMark(ctx context.Context, attemptID, questionID string) error
	AccrueTime(ctx context.Context, attemptID, questionID string, d time.Duration) error

	// Progress inspection
	StateCounts(ctx context.Context, attemptID string) (models.StateCounts, error)
	Partition(ctx context.Context, attemptID string) (models.StatePartition, error)
	NavigationHistory(ctx context.Context, attemptID string) ([]models.NavigationEvent, error)
}

type ScoringService interface {
	// Score evaluates a submission against its paper. Deterministic: the
	// same inputs always produce the same result.
	Score(ctx context.Context, paper *models.TestPaper, submission *models.Submission) (*models.ScoreResult, error)
}

type AnalyticsService interface {
	// Analyze builds the post-submission report: time distribution,
	// subject and difficulty breakdowns, final state counts.
	Analyze(ctx context.Context, paper *models.TestPaper, submission *models.Submission) (*models.AnalysisReport, error)
}

type ReportService interface {
	BuildWorkbook(ctx context.Context, paper *models.TestPaper, result *SubmitResult) (*excelize.File, error)
	Export(ctx context.Context, paper *models.TestPaper, result *SubmitResult, w io.Writer) error
}

// ===== SERVICE MANAGER =====

type ServiceManager interface {
	// Core service getters
	Attempt() AttemptService
	Scoring() ScoringService
	Analytics() AnalyticsService
	Report() ReportService

	// Health and lifecycle
	Initialize(ctx context.Context) error
	HealthCheck(ctx context.Context) error
	Shutdown(ctx context.Context) error
}
