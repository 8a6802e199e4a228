// Package report renders a persisted run result as an HTML document.
package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/triage"
)

//go:embed templates/report.html.tmpl
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("report.html.tmpl").
		Funcs(template.FuncMap{
			"pct":  func(v float64) string { return fmt.Sprintf("%.1f%%", v*100) },
			"join": strings.Join,
		}).
		ParseFS(templateFS, "templates/report.html.tmpl"),
)

type view struct {
	Summary    runner.Summary
	PassClass  string
	Categories []categoryView
	Checks     []checkView
	Cases      []caseView
}

type categoryView struct {
	Name     string
	Passed   int
	Total    int
	PassRate float64
	Width    string
}

type checkView struct {
	Name   string
	Passed int
	Rate   float64
}

type caseView struct {
	ID         string
	Passed     bool
	Subject    string
	Category   string
	Difficulty string
	LatencyMs  int64
	Expected   string
	Got        string
	Checks     []caseCheck
	Violations []string
}

type caseCheck struct {
	Name string
	OK   bool
}

// Render writes the HTML report for result to w.
func Render(w io.Writer, result *runner.Result) error {
	if err := reportTemplate.Execute(w, buildView(result)); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}

// HTMLPath returns the report path next to a result JSON file.
func HTMLPath(jsonPath string) string {
	return strings.TrimSuffix(jsonPath, ".json") + ".html"
}

// WriteHTML renders result next to its JSON file and returns the report path.
func WriteHTML(result *runner.Result, jsonPath string) (string, error) {
	path := HTMLPath(jsonPath)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("failed to create report: %w", err)
	}
	defer f.Close()

	if err := Render(f, result); err != nil {
		return "", err
	}
	return path, f.Close()
}

func buildView(result *runner.Result) view {
	s := result.Summary
	v := view{
		Summary:   s,
		PassClass: passClass(s.PassRate),
	}

	// Recomputed from rows so older result files without a breakdown still render.
	breakdown := runner.CategoryBreakdown(result.Rows)
	names := make([]string, 0, len(breakdown))
	for name := range breakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		st := breakdown[name]
		v.Categories = append(v.Categories, categoryView{
			Name:     name,
			Passed:   st.Passed,
			Total:    st.Total,
			PassRate: st.PassRate,
			Width:    fmt.Sprintf("%.1f", st.PassRate*100),
		})
	}

	cs := runner.CountChecks(result.Rows)
	total := float64(len(result.Rows))
	rate := func(n int) float64 {
		if total == 0 {
			return 0
		}
		return float64(n) / total
	}
	v.Checks = []checkView{
		{Name: "Request Type", Passed: cs.RequestTypeOK, Rate: rate(cs.RequestTypeOK)},
		{Name: "Route Team", Passed: cs.RouteTeamOK, Rate: rate(cs.RouteTeamOK)},
		{Name: "Autosend Decision", Passed: cs.AutosendOK, Rate: rate(cs.AutosendOK)},
		{Name: "Safety Constraints", Passed: cs.MustNotOK, Rate: rate(cs.MustNotOK)},
	}

	for _, row := range result.Rows {
		c := row.Score.Checks
		cv := caseView{
			ID:         row.ID,
			Passed:     row.Score.Passed,
			Subject:    row.Input.Subject,
			Category:   row.Category,
			Difficulty: row.Difficulty,
			LatencyMs:  row.Metrics.LatencyMs,
			Expected:   fmt.Sprintf("%s -> %s (autosend: %t)", row.Expected.RequestType, row.Expected.RouteTeam, row.Expected.WantAutosend()),
			Got:        describeOutput(row.Output),
			Checks: []caseCheck{
				{Name: "RequestType", OK: c.RequestTypeOK},
				{Name: "RouteTeam", OK: c.RouteTeamOK},
				{Name: "Autosend", OK: c.AutosendOK},
				{Name: "Safety", OK: c.MustNotOK},
			},
		}
		if !row.Score.Passed {
			cv.Violations = row.Score.MustNotHits
		}
		v.Cases = append(v.Cases, cv)
	}

	return v
}

func describeOutput(o triage.AgentOutput) string {
	rt, ok := o.RequestType()
	if !ok {
		rt = "?"
	}
	team, ok := o.RouteTeam()
	if !ok {
		team = "?"
	}
	autosend := "?"
	if a, ok := o.Autosend(); ok {
		autosend = fmt.Sprint(a)
	}
	return fmt.Sprintf("%s -> %s (autosend: %s)", rt, team, autosend)
}

func passClass(rate float64) string {
	switch {
	case rate >= 0.75:
		return "good"
	case rate >= 0.5:
		return "warn"
	default:
		return "bad"
	}
}
