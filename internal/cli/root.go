package cli

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
)

var (
	questionsPath  string
	scriptPath     string
	submissionPath string
	outPath        string
	dumpPath       string
)

// Execute runs the CLI. Commands see a context that cancels on SIGINT and
// SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return newRootCmd().ExecuteContext(ctx)
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "attempt-engine",
		Short: "Replay, score and export recorded test attempts",
	}

	cmd.PersistentFlags().StringVarP(&questionsPath, "questions", "q", "", "path to the question set JSON")
	cmd.AddCommand(NewReplayCmd(&questionsPath, &scriptPath, &outPath, &dumpPath))
	cmd.AddCommand(NewScoreCmd(&questionsPath, &submissionPath))
	cmd.AddCommand(NewExportCmd(&questionsPath, &submissionPath, &outPath))
	return cmd
}
