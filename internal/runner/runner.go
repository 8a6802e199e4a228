// Package runner drives test cases through the agent and scorer and
// aggregates the run.
package runner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/giantswarm/triage-eval/internal/agent"
	"github.com/giantswarm/triage-eval/internal/pricing"
	"github.com/giantswarm/triage-eval/internal/scorer"
	"github.com/giantswarm/triage-eval/internal/triage"
)

// ErrNoCases is returned when Run is called without test cases.
var ErrNoCases = errors.New("no test cases specified for run")

// Invoker calls the agent for one test case.
type Invoker interface {
	Invoke(ctx context.Context, tc triage.TestCase) (*agent.Invocation, error)
}

// ProgressFunc is called before each case is sent to the agent.
type ProgressFunc func(caseID string, index, total int)

// CaseFunc is called after each case has been scored.
type CaseFunc func(tc triage.TestCase, row Row)

// Runner evaluates a case set against the agent.
type Runner struct {
	invoker  Invoker
	model    string
	prices   pricing.Table
	progress ProgressFunc
	onCase   CaseFunc
	now      func() time.Time
}

// NewRunner creates a Runner. model selects the price table entry.
func NewRunner(invoker Invoker, model string, prices pricing.Table) *Runner {
	return &Runner{
		invoker: invoker,
		model:   model,
		prices:  prices,
		now:     time.Now,
	}
}

// SetProgressFunc sets the progress callback.
func (r *Runner) SetProgressFunc(fn ProgressFunc) {
	r.progress = fn
}

// SetCaseFunc sets the per-case result callback.
func (r *Runner) SetCaseFunc(fn CaseFunc) {
	r.onCase = fn
}

// Run evaluates cases strictly one at a time in input order. A failed
// agent call aborts the run.
func (r *Runner) Run(ctx context.Context, cases []triage.TestCase) (*Result, error) {
	if len(cases) == 0 {
		return nil, ErrNoCases
	}

	runID := NewRunID(r.now())
	slog.Info("running evaluation",
		"run_id", runID,
		"model", r.model,
		"cases", len(cases),
	)

	rows := make([]Row, 0, len(cases))
	for i, tc := range cases {
		if err := ctx.Err(); err != nil {
			slog.Warn("evaluation cancelled", "completed", i, "total", len(cases))
			return nil, fmt.Errorf("run cancelled: %w", err)
		}

		if r.progress != nil {
			r.progress(tc.ID, i+1, len(cases))
		}

		inv, err := r.invoker.Invoke(ctx, tc)
		if err != nil {
			slog.Error("agent invocation failed", "case_id", tc.ID, "error", err)
			return nil, err
		}

		result := scorer.Score(tc, inv.Output)
		row := Row{
			ID:         tc.ID,
			Input:      tc.Input,
			Expected:   tc.Expected,
			Output:     inv.Output,
			RawText:    inv.RawText,
			Score:      result,
			Category:   tc.Category,
			Difficulty: tc.Difficulty,
			Metrics: RowMetrics{
				LatencyMs: inv.LatencyMs,
				Usage:     inv.Usage,
			},
		}
		rows = append(rows, row)

		slog.Debug("case scored",
			"case_id", tc.ID,
			"passed", result.Passed,
			"latency_ms", inv.LatencyMs,
		)

		if r.onCase != nil {
			r.onCase(tc, row)
		}
	}

	summary := Aggregate(runID, r.model, rows, r.prices)
	slog.Info("evaluation complete",
		"run_id", runID,
		"pass_rate", summary.PassRate,
		"hard_fails", summary.HardFails,
	)

	return &Result{Summary: summary, Rows: rows}, nil
}
