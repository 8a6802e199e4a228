package cmd

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/regression"
	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/scorer"
	"github.com/giantswarm/triage-eval/internal/triage"
)

func printCase(w io.Writer, index, total int, tc triage.TestCase, row runner.Row) {
	status := "PASS"
	if !row.Score.Passed {
		status = "FAIL"
	}
	_, _ = fmt.Fprintf(w, "[%d/%d] %-4s %s (%dms)\n", index, total, status, tc.ID, row.Metrics.LatencyMs)

	if row.Score.Passed {
		return
	}
	for _, m := range scorer.Explain(tc, row.Output, row.Score) {
		_, _ = fmt.Fprintf(w, "       %s: expected %s, got %s\n", m.Field, m.Expected, m.Actual)
	}
	for _, hit := range row.Score.MustNotHits {
		_, _ = fmt.Fprintf(w, "       safety violation: output contains %q\n", hit)
	}
}

func printSummary(w io.Writer, s runner.Summary) {
	_, _ = fmt.Fprintf(w, "\nRun %s (model %s)\n", s.RunID, s.Model)
	_, _ = fmt.Fprintf(w, "  Pass rate:   %.1f%% (%d/%d)\n", s.PassRate*100, s.Passed, s.Total)
	_, _ = fmt.Fprintf(w, "  Hard fails:  %d\n", s.HardFails)
	_, _ = fmt.Fprintf(w, "  Avg latency: %dms\n", s.AvgLatencyMs)
	_, _ = fmt.Fprintf(w, "  Tokens:      %d in / %d out\n", s.Tokens.Input, s.Tokens.Output)
	_, _ = fmt.Fprintf(w, "  Cost:        $%.6f ($%.6f per case)\n", s.CostUSD.Total, s.CostUSD.PerCase)

	c := s.CheckStats
	_, _ = fmt.Fprintf(w, "  Checks:      request_type %d/%d, route_team %d/%d, autosend %d/%d, mustNot %d/%d\n",
		c.RequestTypeOK, s.Total, c.RouteTeamOK, s.Total, c.AutosendOK, s.Total, c.MustNotOK, s.Total)

	if len(s.CategoryBreakdown) == 0 {
		return
	}
	names := make([]string, 0, len(s.CategoryBreakdown))
	for name := range s.CategoryBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)

	_, _ = fmt.Fprintln(w, "  By category:")
	for _, name := range names {
		st := s.CategoryBreakdown[name]
		_, _ = fmt.Fprintf(w, "    %-28s %d/%d (%.1f%%)\n", name, st.Passed, st.Total, st.PassRate*100)
	}
}

func printComparison(w io.Writer, c *regression.Comparison) {
	if c == nil {
		_, _ = fmt.Fprintln(w, "\nNo baseline found. Run with --save-baseline to create one.")
		return
	}

	_, _ = fmt.Fprintf(w, "\nComparison with baseline %s:\n", c.Baseline.RunID)
	_, _ = fmt.Fprintf(w, "  Pass rate:     %.1f%% -> %.1f%% (%s)\n",
		c.Baseline.PassRate*100, c.Current.PassRate*100, signedPercent(c.PassRateDelta))
	_, _ = fmt.Fprintf(w, "  Avg latency:   %dms -> %dms (%+dms)\n",
		c.Baseline.AvgLatencyMs, c.Current.AvgLatencyMs, c.LatencyDelta)
	_, _ = fmt.Fprintf(w, "  Cost per case: $%.6f -> $%.6f (%+.6f)\n",
		c.Baseline.CostPerCase, c.Current.CostPerCase, c.CostDelta)

	if cats := c.Categories(); len(cats) > 0 {
		_, _ = fmt.Fprintln(w, "  By category:")
		for _, name := range cats {
			_, _ = fmt.Fprintf(w, "    %-28s %s\n", name, signedPercent(c.CategoryDeltas[name]))
		}
	}
	_, _ = fmt.Fprintf(w, "  Check deltas:  %s\n", checkDeltas(c.CheckDeltas))

	if !c.HasRegressions() {
		_, _ = fmt.Fprintln(w, "\nNo regressions detected")
		return
	}
	_, _ = fmt.Fprintln(w, "\nREGRESSIONS DETECTED:")
	for _, r := range c.Regressions {
		_, _ = fmt.Fprintf(w, "  - %s\n", r.Message)
	}
}

func printBaseline(w io.Writer, path string, rec *baseline.Record) {
	_, _ = fmt.Fprintf(w, "Baseline %s\n", path)
	_, _ = fmt.Fprintf(w, "  Run:           %s\n", rec.RunID)
	_, _ = fmt.Fprintf(w, "  Pass rate:     %.1f%%\n", rec.PassRate*100)
	_, _ = fmt.Fprintf(w, "  Avg latency:   %dms\n", rec.AvgLatencyMs)
	_, _ = fmt.Fprintf(w, "  Cost per case: $%.6f\n", rec.CostPerCase)
	_, _ = fmt.Fprintf(w, "  Checks:        %s\n", checkCounts(rec.CheckStats))
}

func signedPercent(v float64) string {
	return fmt.Sprintf("%+.1f%%", v*100)
}

func checkDeltas(c runner.CheckStats) string {
	return formatChecks(c, "%s %+d")
}

func checkCounts(c runner.CheckStats) string {
	return formatChecks(c, "%s %d")
}

func formatChecks(c runner.CheckStats, format string) string {
	parts := []string{
		fmt.Sprintf(format, "request_type", c.RequestTypeOK),
		fmt.Sprintf(format, "route_team", c.RouteTeamOK),
		fmt.Sprintf(format, "autosend", c.AutosendOK),
		fmt.Sprintf(format, "mustNot", c.MustNotOK),
	}
	return strings.Join(parts, ", ")
}
