// Package regression compares a run's baseline record against the stored
// baseline and flags regressions using fixed thresholds.
package regression

import (
	"fmt"
	"math"
	"sort"

	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/runner"
)

// Kind identifies the metric that regressed.
type Kind int

const (
	KindPassRate Kind = iota
	KindLatency
	KindCost
)

// Kinds lists every regression kind.
var Kinds = []Kind{KindPassRate, KindLatency, KindCost}

// String returns the string representation.
func (k Kind) String() string {
	switch k {
	case KindPassRate:
		return "pass_rate"
	case KindLatency:
		return "latency"
	case KindCost:
		return "cost"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Thresholds configures regression detection.
type Thresholds struct {
	// PassRateDrop is the absolute pass rate drop tolerated.
	PassRateDrop float64

	// LatencyIncrease is the tolerated latency increase relative to the baseline.
	LatencyIncrease float64

	// CostIncrease is the tolerated per-case cost increase relative to the baseline.
	CostIncrease float64
}

// DefaultThresholds returns the fixed harness thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		PassRateDrop:    0.05,
		LatencyIncrease: 0.2,
		CostIncrease:    0.2,
	}
}

// Regression describes one triggered threshold.
type Regression struct {
	Kind      Kind    `json:"kind"`
	Baseline  float64 `json:"baseline"`
	Current   float64 `json:"current"`
	Delta     float64 `json:"delta"`
	Threshold float64 `json:"threshold"`
	Message   string  `json:"message"`
}

// Comparison holds the deltas between a run and the baseline.
type Comparison struct {
	Baseline *baseline.Record `json:"baseline"`
	Current  *baseline.Record `json:"current"`

	PassRateDelta float64 `json:"passRateDelta"`
	LatencyDelta  int64   `json:"latencyDelta"`
	CostDelta     float64 `json:"costDelta"`

	// CategoryDeltas covers categories present in both records. Display only.
	CategoryDeltas map[string]float64 `json:"categoryDeltas"`

	// CheckDeltas is current minus baseline per check. Display only.
	CheckDeltas runner.CheckStats `json:"checkDeltas"`

	Regressions []Regression `json:"regressions"`
}

// HasRegressions returns true if any threshold was exceeded.
func (c *Comparison) HasRegressions() bool {
	return c != nil && len(c.Regressions) > 0
}

// Categories returns the compared category names, sorted.
func (c *Comparison) Categories() []string {
	names := make([]string, 0, len(c.CategoryDeltas))
	for name := range c.CategoryDeltas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Compare compares current against base with the default thresholds. It
// returns nil when there is no baseline.
func Compare(current, base *baseline.Record) *Comparison {
	return CompareWith(current, base, DefaultThresholds())
}

// CompareWith compares current against base. All thresholds are strict and
// independent.
func CompareWith(current, base *baseline.Record, th Thresholds) *Comparison {
	if base == nil || current == nil {
		return nil
	}

	c := &Comparison{
		Baseline:       base,
		Current:        current,
		PassRateDelta:  roundDelta(current.PassRate - base.PassRate),
		LatencyDelta:   current.AvgLatencyMs - base.AvgLatencyMs,
		CostDelta:      current.CostPerCase - base.CostPerCase,
		CategoryDeltas: make(map[string]float64),
		CheckDeltas: runner.CheckStats{
			RequestTypeOK: current.CheckStats.RequestTypeOK - base.CheckStats.RequestTypeOK,
			RouteTeamOK:   current.CheckStats.RouteTeamOK - base.CheckStats.RouteTeamOK,
			AutosendOK:    current.CheckStats.AutosendOK - base.CheckStats.AutosendOK,
			MustNotOK:     current.CheckStats.MustNotOK - base.CheckStats.MustNotOK,
		},
		Regressions: []Regression{},
	}

	for cat, cur := range current.CategoryBreakdown {
		if prev, ok := base.CategoryBreakdown[cat]; ok {
			c.CategoryDeltas[cat] = roundDelta(cur.PassRate - prev.PassRate)
		}
	}

	if c.PassRateDelta < -th.PassRateDrop {
		c.Regressions = append(c.Regressions, Regression{
			Kind:      KindPassRate,
			Baseline:  base.PassRate,
			Current:   current.PassRate,
			Delta:     c.PassRateDelta,
			Threshold: -th.PassRateDrop,
			Message:   fmt.Sprintf("Pass rate dropped by %.1f%%", math.Abs(c.PassRateDelta)*100),
		})
	}

	latencyLimit := float64(base.AvgLatencyMs) * th.LatencyIncrease
	if float64(c.LatencyDelta) > latencyLimit {
		c.Regressions = append(c.Regressions, Regression{
			Kind:      KindLatency,
			Baseline:  float64(base.AvgLatencyMs),
			Current:   float64(current.AvgLatencyMs),
			Delta:     float64(c.LatencyDelta),
			Threshold: latencyLimit,
			Message:   fmt.Sprintf("Latency increased by >%.0f%%", th.LatencyIncrease*100),
		})
	}

	costLimit := base.CostPerCase * th.CostIncrease
	if c.CostDelta > costLimit {
		c.Regressions = append(c.Regressions, Regression{
			Kind:      KindCost,
			Baseline:  base.CostPerCase,
			Current:   current.CostPerCase,
			Delta:     c.CostDelta,
			Threshold: costLimit,
			Message:   fmt.Sprintf("Cost increased by >%.0f%%", th.CostIncrease*100),
		})
	}

	return c
}

// roundDelta drops floating point noise from differences of pass fractions
// so that a drop of exactly five points compares equal to the threshold.
func roundDelta(v float64) float64 {
	return math.Round(v*1e9) / 1e9
}
