package runner

import (
	"math"
	"strings"
	"time"

	"github.com/giantswarm/triage-eval/internal/pricing"
)

// NewRunID derives a run identifier from t, e.g. "2025-01-10T12-34-56-789Z".
func NewRunID(t time.Time) string {
	iso := t.UTC().Format("2006-01-02T15:04:05.000Z")
	return strings.NewReplacer(":", "-", ".", "-").Replace(iso)
}

// Aggregate folds rows into a run summary. Costs come from prices for model;
// an unknown model costs zero.
func Aggregate(runID, model string, rows []Row, prices pricing.Table) Summary {
	s := Summary{
		RunID:             runID,
		Model:             model,
		Total:             len(rows),
		CategoryBreakdown: CategoryBreakdown(rows),
		CheckStats:        CountChecks(rows),
	}

	var latency int64
	for _, row := range rows {
		if row.Score.Passed {
			s.Passed++
		}
		if !row.Score.Checks.MustNotOK {
			s.HardFails++
		}
		latency += row.Metrics.LatencyMs
		if u := row.Metrics.Usage; u != nil {
			s.Tokens.Input += u.InputTokens
			s.Tokens.Output += u.OutputTokens
		}
	}
	s.Tokens.Total = s.Tokens.Input + s.Tokens.Output

	if s.Total > 0 {
		s.PassRate = float64(s.Passed) / float64(s.Total)
		s.AvgLatencyMs = int64(math.Round(float64(latency) / float64(s.Total)))
	}
	s.CostUSD = prices.Compute(model, s.Tokens.Input, s.Tokens.Output, s.Total)

	return s
}

// CategoryBreakdown groups rows by category and reports pass counts and
// fractions per group.
func CategoryBreakdown(rows []Row) map[string]CategoryStats {
	out := make(map[string]CategoryStats)
	for _, row := range rows {
		cat := row.CategoryOrDefault()
		st := out[cat]
		st.Total++
		if row.Score.Passed {
			st.Passed++
		}
		out[cat] = st
	}
	for cat, st := range out {
		st.PassRate = float64(st.Passed) / float64(st.Total)
		out[cat] = st
	}
	return out
}

// CountChecks counts the rows passing each individual check.
func CountChecks(rows []Row) CheckStats {
	var cs CheckStats
	for _, row := range rows {
		c := row.Score.Checks
		if c.RequestTypeOK {
			cs.RequestTypeOK++
		}
		if c.RouteTeamOK {
			cs.RouteTeamOK++
		}
		if c.AutosendOK {
			cs.AutosendOK++
		}
		if c.MustNotOK {
			cs.MustNotOK++
		}
	}
	return cs
}
