// Package pipeline wires one evaluation run end to end: agent calls,
// scoring, the persisted result, the HTML report, the baseline and the
// regression comparison.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/giantswarm/triage-eval/internal/agent"
	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/config"
	"github.com/giantswarm/triage-eval/internal/fixtures"
	"github.com/giantswarm/triage-eval/internal/llm"
	"github.com/giantswarm/triage-eval/internal/metrics"
	"github.com/giantswarm/triage-eval/internal/pricing"
	"github.com/giantswarm/triage-eval/internal/regression"
	"github.com/giantswarm/triage-eval/internal/report"
	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/triage"
)

// Options configures one evaluation run.
type Options struct {
	Cases        []triage.TestCase
	SystemPrompt string
	Model        string
	Temperature  *float64
	Prices       pricing.Table
	MinPassRate  float64
	OutputDir    string

	// SaveBaseline overwrites the stored baseline instead of comparing against it.
	SaveBaseline bool
	SkipReport   bool
	MetricsFile  string

	OnProgress runner.ProgressFunc
	OnCase     runner.CaseFunc

	// Recorder, when set, receives the run and comparison.
	Recorder *metrics.Recorder
}

// NewOptions builds run options for set from cfg.
func NewOptions(cfg *config.Config, set *fixtures.Set) Options {
	return Options{
		Cases:        set.Cases,
		SystemPrompt: set.SystemPrompt,
		Model:        cfg.Model,
		Temperature:  cfg.Temperature,
		Prices:       cfg.Pricing,
		MinPassRate:  cfg.MinPassRate,
		OutputDir:    cfg.OutputDir,
	}
}

// Outcome is what a run produced beyond the result itself.
type Outcome struct {
	Result        *runner.Result         `json:"-"`
	Summary       runner.Summary         `json:"summary"`
	ResultPath    string                 `json:"resultPath"`
	ReportPath    string                 `json:"reportPath,omitempty"`
	SavedBaseline *baseline.Record       `json:"savedBaseline,omitempty"`
	Comparison    *regression.Comparison `json:"comparison,omitempty"`
	Verdict       runner.Verdict         `json:"-"`
	VerdictLabel  string                 `json:"verdict"`
	ExitCode      int                    `json:"exitCode"`
}

// Run evaluates opts.Cases with client and handles the baseline in store.
// A missing baseline is not an error: Comparison is nil.
func Run(ctx context.Context, client llm.Client, store baseline.Store, opts Options) (*Outcome, error) {
	inv := agent.NewInvoker(client,
		agent.WithModel(opts.Model),
		agent.WithSystemPrompt(opts.SystemPrompt),
		agent.WithTemperature(opts.Temperature),
	)

	r := runner.NewRunner(inv, opts.Model, opts.Prices)
	r.SetProgressFunc(opts.OnProgress)
	r.SetCaseFunc(opts.OnCase)

	result, err := r.Run(ctx, opts.Cases)
	if err != nil {
		return nil, err
	}

	out := &Outcome{Result: result, Summary: result.Summary}

	out.ResultPath, err = runner.WriteResult(opts.OutputDir, result)
	if err != nil {
		return nil, err
	}
	slog.Info("wrote run result", "path", out.ResultPath)

	if !opts.SkipReport {
		out.ReportPath, err = report.WriteHTML(result, out.ResultPath)
		if err != nil {
			return nil, err
		}
		slog.Info("wrote report", "path", out.ReportPath)
	}

	if opts.SaveBaseline {
		out.SavedBaseline, err = baseline.SaveResult(ctx, store, result)
		if err != nil {
			return nil, fmt.Errorf("failed to save baseline: %w", err)
		}
	} else {
		out.Comparison, err = CompareResult(ctx, store, result)
		if err != nil {
			return nil, err
		}
	}

	if opts.Recorder != nil {
		opts.Recorder.Record(result)
		opts.Recorder.RecordComparison(out.Comparison)
	}
	if opts.MetricsFile != "" {
		if err := metrics.WriteTextfile(opts.MetricsFile, result, out.Comparison); err != nil {
			return nil, err
		}
	}

	out.Verdict = runner.Evaluate(result.Summary, opts.MinPassRate)
	out.VerdictLabel = out.Verdict.String()
	out.ExitCode = out.Verdict.ExitCode()
	return out, nil
}

// CompareResult compares result against the stored baseline. It returns a
// nil comparison when no baseline has been saved.
func CompareResult(ctx context.Context, store baseline.Store, result *runner.Result) (*regression.Comparison, error) {
	base, err := store.Load(ctx)
	if err != nil {
		if errors.Is(err, baseline.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load baseline: %w", err)
	}
	return regression.Compare(baseline.FromResult(result), base), nil
}
