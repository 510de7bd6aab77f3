package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/SAP-F-2025/attempt-engine/internal/replay"
)

// NewReplayCmd builds the subcommand that replays a recorded action script
// against a question set and scores the resulting attempt.
func NewReplayCmd(questions, script, out, dump *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Replay a recorded action script and score the attempt",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), *questions, *script, *out, *dump)
		},
	}
	cmd.Flags().StringVarP(script, "script", "s", "", "path to the recorded action script JSON")
	cmd.Flags().StringVar(out, "export", "", "write an XLSX report to this path")
	cmd.Flags().StringVar(dump, "dump", "", "write the submission JSON to this path")
	return cmd
}

func runReplay(ctx context.Context, questionsPath, scriptPath, outPath, dumpPath string) error {
	if questionsPath == "" || scriptPath == "" {
		return fmt.Errorf("replay requires --questions and --script")
	}

	eng, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	doc, err := replay.LoadQuestionSet(questionsPath)
	if err != nil {
		return err
	}
	script, err := replay.LoadScript(scriptPath)
	if err != nil {
		return err
	}

	runner := replay.NewRunner(eng.manager.Attempt(), eng.validator, eng.logger)
	result, err := runner.Run(ctx, doc, script)
	if err != nil {
		return err
	}

	printSummary(result)

	if dumpPath != "" {
		if err := replay.SaveSubmission(dumpPath, result.Submission); err != nil {
			return err
		}
		fmt.Printf("Submission written to %s\n", dumpPath)
	}
	if outPath != "" {
		if err := eng.exportWorkbook(ctx, doc.ToPaper(), result, outPath); err != nil {
			return err
		}
		fmt.Printf("Report written to %s\n", outPath)
	}
	return nil
}
