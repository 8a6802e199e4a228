// Package scorer checks one agent output against a test case's expected labels.
//
// Scoring is pure: the same case and output always produce the same Result,
// and absent output fields fail their checks instead of erroring.
package scorer

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/giantswarm/triage-eval/internal/triage"
)

// Checks holds the outcome of each individual check.
type Checks struct {
	RequestTypeOK bool `json:"requestTypeOk"`
	RouteTeamOK   bool `json:"routeTeamOk"`
	AutosendOK    bool `json:"autosendOk"`
	MustNotOK     bool `json:"mustNotOk"`
}

// All reports whether every check passed.
func (c Checks) All() bool {
	return c.RequestTypeOK && c.RouteTeamOK && c.AutosendOK && c.MustNotOK
}

// Result is the verdict for one case.
type Result struct {
	ID          string   `json:"id"`
	Passed      bool     `json:"passed"`
	Checks      Checks   `json:"checks"`
	MustNotHits []string `json:"mustNotHits"`
}

// Score evaluates output against tc.
func Score(tc triage.TestCase, output triage.AgentOutput) Result {
	var checks Checks

	if v, ok := output.RequestType(); ok {
		checks.RequestTypeOK = v == tc.Expected.RequestType
	}
	if v, ok := output.RouteTeam(); ok {
		checks.RouteTeamOK = v == tc.Expected.RouteTeam
	}
	if v, ok := output.Autosend(); ok {
		checks.AutosendOK = v == tc.Expected.WantAutosend()
	}

	hits := ForbiddenHits(output, tc.Expected.MustNot)
	checks.MustNotOK = len(hits) == 0

	return Result{
		ID:          tc.ID,
		Passed:      checks.All(),
		Checks:      checks,
		MustNotHits: hits,
	}
}

// ForbiddenHits returns the phrases that occur, case-insensitively, anywhere
// in the serialized output. Hits keep the order of phrases and appear once
// per phrase. The returned slice is never nil.
func ForbiddenHits(output triage.AgentOutput, phrases []string) []string {
	hits := []string{}
	if len(phrases) == 0 {
		return hits
	}

	blob := strings.ToLower(Flatten(output))
	for _, phrase := range phrases {
		if strings.Contains(blob, strings.ToLower(phrase)) {
			hits = append(hits, phrase)
		}
	}
	return hits
}

// Flatten serializes the whole output into one text blob. When the output
// carries the decoded response, that document is flattened so content the
// typed view dropped is still scanned. HTML escaping is disabled so phrases
// containing '&', '<' or '>' still match.
func Flatten(output triage.AgentOutput) string {
	var v any = output
	if len(output.Raw) > 0 {
		dec := json.NewDecoder(bytes.NewReader(output.Raw))
		dec.UseNumber()
		var doc any
		if err := dec.Decode(&doc); err == nil {
			v = doc
		}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return ""
	}
	return strings.TrimSuffix(buf.String(), "\n")
}

// Mismatch describes one failed field check for diagnostics.
type Mismatch struct {
	Field    string
	Expected string
	Actual   string
}

// Explain lists the failed checks of r with expected and actual values.
func Explain(tc triage.TestCase, output triage.AgentOutput, r Result) []Mismatch {
	var out []Mismatch
	if !r.Checks.RequestTypeOK {
		v, ok := output.RequestType()
		out = append(out, Mismatch{Field: "request_type", Expected: tc.Expected.RequestType, Actual: describe(v, ok)})
	}
	if !r.Checks.RouteTeamOK {
		v, ok := output.RouteTeam()
		out = append(out, Mismatch{Field: "route_team", Expected: tc.Expected.RouteTeam, Actual: describe(v, ok)})
	}
	if !r.Checks.AutosendOK {
		v, ok := output.Autosend()
		actual := "<missing>"
		if ok {
			actual = fmt.Sprint(v)
		}
		out = append(out, Mismatch{Field: "autosend", Expected: fmt.Sprint(tc.Expected.WantAutosend()), Actual: actual})
	}
	return out
}

func describe(v string, ok bool) string {
	if !ok {
		return "<missing>"
	}
	return v
}
