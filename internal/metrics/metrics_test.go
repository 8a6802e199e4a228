package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/pricing"
	"github.com/giantswarm/triage-eval/internal/regression"
	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/scorer"
)

func sampleResult() *runner.Result {
	rows := []runner.Row{
		{ID: "a", Category: "legal", Score: scorer.Result{Passed: true, Checks: scorer.Checks{RequestTypeOK: true, RouteTeamOK: true, AutosendOK: true, MustNotOK: true}}, Metrics: runner.RowMetrics{LatencyMs: 500}},
		{ID: "b", Category: "spam", Score: scorer.Result{Checks: scorer.Checks{RouteTeamOK: true}}, Metrics: runner.RowMetrics{LatencyMs: 1500}},
	}
	return &runner.Result{
		Summary: runner.Aggregate("run-1", "gpt-4.1-mini", rows, pricing.Default()),
		Rows:    rows,
	}
}

func TestRecorder(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := NewRecorder(reg)
	require.NoError(t, err)

	rec.Record(sampleResult())

	assert.Equal(t, 0.5, testutil.ToFloat64(rec.passRate))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.hardFails))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.casesTotal))
	assert.Equal(t, 1000.0, testutil.ToFloat64(rec.avgLatency))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.categoryPassRate.WithLabelValues("legal")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.categoryPassRate.WithLabelValues("spam")))
	assert.Equal(t, 2.0, testutil.ToFloat64(rec.checkPassed.WithLabelValues("route_team")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.checkPassed.WithLabelValues("must_not")))
	assert.Equal(t, 1.0, testutil.ToFloat64(rec.runInfo.WithLabelValues("run-1", "gpt-4.1-mini")))
	assert.Equal(t, 1, testutil.CollectAndCount(rec.caseLatency))
}

func TestRecorderReplacesCategories(t *testing.T) {
	rec, err := NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	rec.Record(sampleResult())
	rec.Record(&runner.Result{Summary: runner.Summary{CategoryBreakdown: map[string]runner.CategoryStats{"only": {PassRate: 1}}}})

	assert.Equal(t, 1, testutil.CollectAndCount(rec.categoryPassRate))
}

func TestRecorderComparison(t *testing.T) {
	rec, err := NewRecorder(prometheus.NewRegistry())
	require.NoError(t, err)

	c := regression.Compare(
		&baseline.Record{PassRate: 0.5, AvgLatencyMs: 1000, CostPerCase: 0.001},
		&baseline.Record{PassRate: 0.9, AvgLatencyMs: 1000, CostPerCase: 0.001},
	)
	rec.RecordComparison(c)

	assert.Equal(t, 1.0, testutil.ToFloat64(rec.regressions.WithLabelValues("pass_rate")))
	assert.Equal(t, 0.0, testutil.ToFloat64(rec.regressions.WithLabelValues("latency")))

	rec.RecordComparison(nil)
	assert.Equal(t, 0, testutil.CollectAndCount(rec.regressions))
}

func TestNewRecorderDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	_, err := NewRecorder(reg)
	require.NoError(t, err)

	_, err = NewRecorder(reg)
	assert.ErrorIs(t, err, ErrRegistrationFailed)
}

func TestWriteTextfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "triage_eval.prom")
	require.NoError(t, WriteTextfile(path, sampleResult(), nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	content := string(data)

	assert.Contains(t, content, "triage_eval_pass_rate 0.5")
	assert.Contains(t, content, `triage_eval_check_passed{check="autosend"} 1`)
	assert.Contains(t, content, `triage_eval_cost_usd{kind="total"}`)
	assert.False(t, strings.Contains(content, "triage_eval_regressions{"), "no baseline means no regression series")
}
