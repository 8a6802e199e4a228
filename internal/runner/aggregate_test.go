package runner

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/giantswarm/triage-eval/internal/llm"
	"github.com/giantswarm/triage-eval/internal/pricing"
	"github.com/giantswarm/triage-eval/internal/scorer"
)

func matchingScore(passed bool) scorer.Result {
	return scorer.Result{
		Passed:      passed,
		Checks:      scorer.Checks{RequestTypeOK: passed, RouteTeamOK: true, AutosendOK: true, MustNotOK: true},
		MustNotHits: []string{},
	}
}

func TestNewRunID(t *testing.T) {
	tests := []struct {
		name string
		in   time.Time
		want string
	}{
		{"utc", time.Date(2025, 1, 10, 12, 34, 56, 789_000_000, time.UTC), "2025-01-10T12-34-56-789Z"},
		{"whole second", time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC), "2025-01-10T00-00-00-000Z"},
		{"converted to utc", time.Date(2025, 1, 10, 13, 0, 0, 0, time.FixedZone("CET", 3600)), "2025-01-10T12-00-00-000Z"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NewRunID(tt.in))
		})
	}
}

func TestAggregateInvariants(t *testing.T) {
	categories := []string{"a", "b", "", "a", "c", "b", "a"}
	var rows []Row
	for i, cat := range categories {
		passed := i%3 != 0
		score := matchingScore(passed)
		if i == 4 {
			score.Checks.MustNotOK = false
			score.Passed = false
			score.MustNotHits = []string{"x"}
		}
		rows = append(rows, Row{
			ID:       string(rune('a' + i)),
			Category: cat,
			Score:    score,
			Metrics:  RowMetrics{LatencyMs: int64(100 * (i + 1)), Usage: &llm.Usage{InputTokens: 1000 + i, OutputTokens: 37 * i}},
		})
	}

	s := Aggregate("run", "gpt-4.1-mini", rows, pricing.Default())

	passed := 0
	for _, r := range rows {
		if r.Score.Passed {
			passed++
		}
	}
	assert.Equal(t, passed, int(math.Round(s.PassRate*float64(s.Total))))
	assert.Equal(t, 1, s.HardFails)

	for cat, st := range s.CategoryBreakdown {
		want := 0
		total := 0
		for _, r := range rows {
			if r.CategoryOrDefault() == cat {
				total++
				if r.Score.Passed {
					want++
				}
			}
		}
		assert.Equal(t, want, st.Passed, cat)
		assert.Equal(t, total, st.Total, cat)
		assert.InDelta(t, float64(want)/float64(total), st.PassRate, 1e-12, cat)
	}
	assert.Contains(t, s.CategoryBreakdown, "uncategorized")

	assert.InDelta(t, s.CostUSD.Input+s.CostUSD.Output, s.CostUSD.Total, 2e-6)
	assert.InDelta(t, s.CostUSD.Total/float64(s.Total), s.CostUSD.PerCase, 1e-6)
	assert.Equal(t, s.Tokens.Input+s.Tokens.Output, s.Tokens.Total)
	assert.Equal(t, int64(400), s.AvgLatencyMs)
}

func TestAggregateRoundsLatency(t *testing.T) {
	rows := []Row{
		{Score: matchingScore(true), Metrics: RowMetrics{LatencyMs: 1}},
		{Score: matchingScore(true), Metrics: RowMetrics{LatencyMs: 2}},
	}
	assert.Equal(t, int64(2), Aggregate("r", "m", rows, nil).AvgLatencyMs)

	rows = append(rows, Row{Score: matchingScore(true), Metrics: RowMetrics{LatencyMs: 2}})
	assert.Equal(t, int64(2), Aggregate("r", "m", rows, nil).AvgLatencyMs)
}

func TestAggregateMissingUsage(t *testing.T) {
	rows := []Row{
		{Score: matchingScore(true), Metrics: RowMetrics{Usage: &llm.Usage{InputTokens: 10, OutputTokens: 2}}},
		{Score: matchingScore(true)},
	}
	s := Aggregate("r", "m", rows, nil)
	assert.Equal(t, Tokens{Input: 10, Output: 2, Total: 12}, s.Tokens)
}

func TestCountChecks(t *testing.T) {
	rows := []Row{
		{Score: scorer.Result{Checks: scorer.Checks{RequestTypeOK: true, MustNotOK: true}}},
		{Score: scorer.Result{Checks: scorer.Checks{RouteTeamOK: true, AutosendOK: true, MustNotOK: true}}},
		{Score: scorer.Result{Checks: scorer.Checks{}}},
	}
	assert.Equal(t, CheckStats{RequestTypeOK: 1, RouteTeamOK: 1, AutosendOK: 1, MustNotOK: 2}, CountChecks(rows))
}

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name      string
		summary   Summary
		min       float64
		want      Verdict
		wantCode  int
		wantLabel string
	}{
		{"pass", Summary{PassRate: 0.8}, 0.75, VerdictPass, 0, "pass"},
		{"exactly at minimum", Summary{PassRate: 0.75}, 0.75, VerdictPass, 0, "pass"},
		{"below minimum", Summary{PassRate: 0.5}, 0.75, VerdictBelowThreshold, 3, "below_threshold"},
		{"hard fail dominates", Summary{PassRate: 1, HardFails: 1}, 0.75, VerdictSafetyFailure, 2, "safety_failure"},
		{"hard fail and low pass rate", Summary{PassRate: 0, HardFails: 3}, 0.75, VerdictSafetyFailure, 2, "safety_failure"},
		{"zero minimum", Summary{PassRate: 0}, 0, VerdictPass, 0, "pass"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.summary, tt.min)
			assert.Equal(t, tt.want, v)
			assert.Equal(t, tt.wantCode, v.ExitCode())
			assert.Equal(t, tt.wantLabel, v.String())
		})
	}
}
