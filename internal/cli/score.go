package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/attempt-engine/internal/models"
	"github.com/SAP-F-2025/attempt-engine/internal/replay"
	"github.com/SAP-F-2025/attempt-engine/internal/services"
)

// NewScoreCmd builds the subcommand that re-scores a saved submission against
// its question set.
func NewScoreCmd(questions, submission *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Re-score a saved submission against its question set",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScore(cmd.Context(), *questions, *submission)
		},
	}
	cmd.Flags().StringVar(submission, "submission", "", "path to the submission JSON")
	return cmd
}

func runScore(ctx context.Context, questionsPath, submissionPath string) error {
	if questionsPath == "" || submissionPath == "" {
		return fmt.Errorf("score requires --questions and --submission")
	}

	eng, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	result, _, err := rescore(ctx, eng, questionsPath, submissionPath)
	if err != nil {
		return err
	}

	printSummary(result)
	return nil
}

// rescore loads the artifacts and runs scoring and analytics over them,
// returning the assembled result alongside the resolved paper.
func rescore(ctx context.Context, eng *engine, questionsPath, submissionPath string) (*services.SubmitResult, *models.TestPaper, error) {
	doc, err := replay.LoadQuestionSet(questionsPath)
	if err != nil {
		return nil, nil, err
	}
	paper, err := eng.loadPaper(doc)
	if err != nil {
		return nil, nil, err
	}
	sub, err := replay.LoadSubmission(submissionPath)
	if err != nil {
		return nil, nil, err
	}

	score, err := eng.manager.Scoring().Score(ctx, paper, sub)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to score submission: %w", err)
	}
	analysis, err := eng.manager.Analytics().Analyze(ctx, paper, sub)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to analyze submission: %w", err)
	}

	result := &services.SubmitResult{
		Submission: sub,
		Score:      score,
		Analysis:   analysis,
	}
	return result, paper, nil
}
