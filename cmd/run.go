package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/config"
	"github.com/giantswarm/triage-eval/internal/fixtures"
	"github.com/giantswarm/triage-eval/internal/pipeline"
	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/triage"
)

// runOptions holds the flags shared by the root and run commands.
type runOptions struct {
	saveBaseline bool
	noReport     bool
	metricsFile  string

	casesFile   string
	fixtureSet  string
	fixturesDir string
	model       string
	minPassRate float64
	outputDir   string
	baselineDir string
	endpoint    string
	apiKey      string
	timeout     time.Duration
}

func addRunFlags(cmd *cobra.Command, o *runOptions) {
	cmd.Flags().BoolVar(&o.saveBaseline, "save-baseline", false, "Overwrite the stored baseline with this run instead of comparing against it")
	cmd.Flags().BoolVar(&o.noReport, "no-report", false, "Skip writing the HTML report")
	cmd.Flags().StringVar(&o.metricsFile, "metrics-file", "", "Write run metrics in Prometheus textfile format to this path")

	cmd.Flags().StringVar(&o.casesFile, "cases", "", "JSONL cases file (overrides --fixture-set)")
	cmd.Flags().StringVar(&o.fixtureSet, "fixture-set", "", "Fixture set to run (default: ap-triage)")
	cmd.Flags().StringVar(&o.fixturesDir, "fixtures-dir", "", "External fixture sets directory")
	cmd.Flags().StringVar(&o.model, "model", "", "Model to evaluate (default: EVAL_MODEL or gpt-4.1-mini)")
	cmd.Flags().Float64Var(&o.minPassRate, "min-pass-rate", runner.DefaultMinPassRate, "Minimum acceptable pass rate (default: EVAL_MIN_PASSRATE or 0.75)")
	cmd.Flags().StringVar(&o.outputDir, "output-dir", "", "Directory for run results and reports")
	cmd.Flags().StringVar(&o.baselineDir, "baseline-dir", "", "Directory holding baseline.json")
	cmd.Flags().StringVar(&o.endpoint, "endpoint", "", "OpenAI-compatible API base URL")
	cmd.Flags().StringVar(&o.apiKey, "api-key", "", "API key (default: OPENAI_API_KEY)")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "Abort the run after this duration (0 = no limit)")
}

// apply overlays explicitly set flags onto cfg.
func (o *runOptions) apply(cmd *cobra.Command, cfg *config.Config) error {
	flags := cmd.Flags()
	if flags.Changed("cases") {
		cfg.CasesFile = o.casesFile
	}
	if flags.Changed("fixture-set") {
		cfg.FixtureSet = o.fixtureSet
		if !flags.Changed("cases") {
			cfg.CasesFile = ""
		}
	}
	if flags.Changed("fixtures-dir") {
		cfg.FixturesDir = o.fixturesDir
	}
	if flags.Changed("model") {
		cfg.Model = o.model
	}
	if flags.Changed("min-pass-rate") {
		cfg.MinPassRate = o.minPassRate
	}
	if flags.Changed("output-dir") {
		cfg.OutputDir = o.outputDir
	}
	if flags.Changed("baseline-dir") {
		cfg.BaselineDir = o.baselineDir
	}
	if flags.Changed("endpoint") {
		cfg.BaseURL = o.endpoint
	}
	if flags.Changed("api-key") {
		cfg.APIKey = o.apiKey
	}
	if flags.Changed("timeout") {
		cfg.Timeout = o.timeout
	}
	return cfg.Validate()
}

func newRunCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the evaluation and compare against the baseline",
		Long: `Send every test case to the triage agent, score the responses, write the run
result and HTML report, then compare against the stored baseline.

With --save-baseline the run replaces the baseline instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, opts)
		},
	}
	addRunFlags(cmd, opts)

	return cmd
}

func runEval(cmd *cobra.Command, o *runOptions) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := o.apply(cmd, cfg); err != nil {
		return fmt.Errorf("invalid flags: %w", err)
	}

	ctx := cmd.Context()
	if cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.Timeout)
		defer cancel()
	}

	set, err := fixtures.Resolve(cfg.CasesFile, cfg.FixtureSet, cfg.FixturesDir)
	if err != nil {
		return fmt.Errorf("failed to load test cases: %w", err)
	}

	out := cmd.OutOrStdout()
	_, _ = fmt.Fprintf(out, "Evaluating %s (%d cases) with model %s\n\n", set.Name, len(set.Cases), cfg.Model)

	var index, total int
	popts := pipeline.NewOptions(cfg, set)
	popts.SaveBaseline = o.saveBaseline
	popts.SkipReport = o.noReport
	popts.MetricsFile = o.metricsFile
	popts.OnProgress = func(_ string, i, n int) {
		index, total = i, n
	}
	popts.OnCase = func(tc triage.TestCase, row runner.Row) {
		printCase(out, index, total, tc, row)
	}

	store := baseline.NewFileStore(cfg.BaselineDir)
	outcome, err := pipeline.Run(ctx, clientFactory(cfg), store, popts)
	if err != nil {
		return err
	}

	printSummary(out, outcome.Result.Summary)
	_, _ = fmt.Fprintf(out, "\nResult: %s\n", outcome.ResultPath)
	if outcome.ReportPath != "" {
		_, _ = fmt.Fprintf(out, "Report: %s\n", outcome.ReportPath)
	}

	if outcome.SavedBaseline != nil {
		_, _ = fmt.Fprintf(out, "\nBaseline saved to %s (run %s)\n", store.Path(), outcome.SavedBaseline.RunID)
	} else {
		printComparison(out, outcome.Comparison)
	}

	return verdictError(out, outcome.Result.Summary, cfg.MinPassRate, outcome.Verdict)
}

// verdictError prints the verdict and returns an ExitError for failing runs.
func verdictError(w io.Writer, s runner.Summary, minPassRate float64, v runner.Verdict) error {
	switch v {
	case runner.VerdictSafetyFailure:
		return &ExitError{
			Code:    v.ExitCode(),
			Message: fmt.Sprintf("FAILED: %d case(s) violated mustNot constraints", s.HardFails),
		}
	case runner.VerdictBelowThreshold:
		return &ExitError{
			Code:    v.ExitCode(),
			Message: fmt.Sprintf("FAILED: pass rate %.1f%% is below minimum %.1f%%", s.PassRate*100, minPassRate*100),
		}
	default:
		_, _ = fmt.Fprintln(w, "\nPASSED")
		return nil
	}
}
