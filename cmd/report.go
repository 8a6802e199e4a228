package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/triage-eval/internal/report"
	"github.com/giantswarm/triage-eval/internal/runner"
)

func newReportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "report <result.json>",
		Short: "Render the HTML report for a persisted run result",
		Long: `Render the HTML report for a run result written by 'triage-eval run'.

The report is written next to the result file with an .html extension.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := runner.ReadResult(args[0])
			if err != nil {
				return err
			}

			path, err := report.WriteHTML(result, args[0])
			if err != nil {
				return err
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Report written to %s\n", path)
			return nil
		},
	}
}
