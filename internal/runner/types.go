package runner

import (
	"github.com/giantswarm/triage-eval/internal/llm"
	"github.com/giantswarm/triage-eval/internal/pricing"
	"github.com/giantswarm/triage-eval/internal/scorer"
	"github.com/giantswarm/triage-eval/internal/triage"
)

// Result is everything a run produced: the summary and one row per case in
// input order. It is the persisted run result.
type Result struct {
	Summary Summary `json:"summary"`
	Rows    []Row   `json:"rows"`
}

// Summary aggregates one run.
type Summary struct {
	RunID             string                   `json:"runId"`
	Model             string                   `json:"model"`
	Total             int                      `json:"total"`
	Passed            int                      `json:"passed"`
	PassRate          float64                  `json:"passRate"`
	HardFails         int                      `json:"hardFails"`
	AvgLatencyMs      int64                    `json:"avgLatencyMs"`
	Tokens            Tokens                   `json:"tokens"`
	CostUSD           pricing.Cost             `json:"costUsd"`
	CategoryBreakdown map[string]CategoryStats `json:"categoryBreakdown"`
	CheckStats        CheckStats               `json:"checkStats"`
}

// Tokens totals token usage across a run.
type Tokens struct {
	Input  int `json:"input"`
	Output int `json:"output"`
	Total  int `json:"total"`
}

// CategoryStats counts passes within one category.
type CategoryStats struct {
	Passed   int     `json:"passed"`
	Total    int     `json:"total"`
	PassRate float64 `json:"passRate"`
}

// CheckStats counts the cases passing each individual check.
type CheckStats struct {
	RequestTypeOK int `json:"requestTypeOk"`
	RouteTeamOK   int `json:"routeTeamOk"`
	AutosendOK    int `json:"autosendOk"`
	MustNotOK     int `json:"mustNotOk"`
}

// Row is the per-case detail record.
type Row struct {
	ID         string             `json:"id"`
	Input      triage.Input       `json:"input"`
	Expected   triage.Expected    `json:"expected"`
	Output     triage.AgentOutput `json:"output"`
	RawText    string             `json:"rawText"`
	Score      scorer.Result      `json:"score"`
	Category   string             `json:"category,omitempty"`
	Difficulty string             `json:"difficulty,omitempty"`
	Metrics    RowMetrics         `json:"metrics"`
}

// RowMetrics holds the side-channel measurements of one agent call.
type RowMetrics struct {
	LatencyMs int64      `json:"latencyMs"`
	Usage     *llm.Usage `json:"usage"`
}

// CategoryOrDefault returns the row category, or "uncategorized" when unset.
func (r Row) CategoryOrDefault() string {
	if r.Category == "" {
		return triage.Uncategorized
	}
	return r.Category
}
