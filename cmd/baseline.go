package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/pipeline"
	"github.com/giantswarm/triage-eval/internal/runner"
)

func newBaselineCmd() *cobra.Command {
	var baselineDir string

	cmd := &cobra.Command{
		Use:   "baseline",
		Short: "Inspect and manage the stored baseline",
	}
	cmd.PersistentFlags().StringVar(&baselineDir, "baseline-dir", "", "Directory holding baseline.json (default: from config)")

	// store resolves the baseline directory from the flag or the config.
	store := func(cmd *cobra.Command) (*baseline.FileStore, error) {
		if baselineDir != "" {
			return baseline.NewFileStore(baselineDir), nil
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return nil, err
		}
		return baseline.NewFileStore(cfg.BaselineDir), nil
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the stored baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store(cmd)
			if err != nil {
				return err
			}
			rec, err := s.Load(cmd.Context())
			if err != nil {
				if errors.Is(err, baseline.ErrNotFound) {
					_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No baseline found. Run with --save-baseline to create one.")
					return nil
				}
				return err
			}
			printBaseline(cmd.OutOrStdout(), s.Path(), rec)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "save <result.json>",
		Short: "Replace the baseline with a persisted run result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store(cmd)
			if err != nil {
				return err
			}
			result, err := runner.ReadResult(args[0])
			if err != nil {
				return err
			}
			rec, err := baseline.SaveResult(cmd.Context(), s, result)
			if err != nil {
				return fmt.Errorf("failed to save baseline: %w", err)
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Baseline saved to %s (run %s)\n", s.Path(), rec.RunID)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "compare <result.json>",
		Short: "Compare a persisted run result against the baseline",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := store(cmd)
			if err != nil {
				return err
			}
			result, err := runner.ReadResult(args[0])
			if err != nil {
				return err
			}
			comparison, err := pipeline.CompareResult(cmd.Context(), s, result)
			if err != nil {
				return err
			}
			printComparison(cmd.OutOrStdout(), comparison)
			return nil
		},
	})

	return cmd
}
