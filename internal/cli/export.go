package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
)

// NewExportCmd builds the subcommand that renders the XLSX report for a saved
// submission.
func NewExportCmd(questions, submission, out *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export an XLSX report for a saved submission",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd.Context(), *questions, *submission, *out)
		},
	}
	cmd.Flags().StringVar(submission, "submission", "", "path to the submission JSON")
	cmd.Flags().StringVarP(out, "out", "o", "", "path of the XLSX report (default <report dir>/<submission id>.xlsx)")
	return cmd
}

func runExport(ctx context.Context, questionsPath, submissionPath, outPath string) error {
	if questionsPath == "" || submissionPath == "" {
		return fmt.Errorf("export requires --questions and --submission")
	}

	eng, err := newEngine(ctx)
	if err != nil {
		return err
	}
	defer eng.Close()

	result, paper, err := rescore(ctx, eng, questionsPath, submissionPath)
	if err != nil {
		return err
	}

	if outPath == "" {
		outPath = filepath.Join(eng.cfg.ReportDir, result.Submission.ID+".xlsx")
	}
	if err := eng.exportWorkbook(ctx, paper, result, outPath); err != nil {
		return err
	}

	fmt.Printf("Report written to %s\n", outPath)
	return nil
}
