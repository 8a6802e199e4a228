package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	promtestutil "github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/triage-eval/internal/baseline"
	"github.com/giantswarm/triage-eval/internal/config"
	"github.com/giantswarm/triage-eval/internal/fixtures"
	"github.com/giantswarm/triage-eval/internal/llm"
	"github.com/giantswarm/triage-eval/internal/metrics"
	"github.com/giantswarm/triage-eval/internal/pricing"
	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/testutil"
	"github.com/giantswarm/triage-eval/internal/triage"
)

const goodResponse = `{"TRIAGE_JSON":{"request_type":"payment_status","route_team":"AP","autosend":false},"DRAFT_REPLY":{"body":"We will check the payment run."}}`

const leakyResponse = `{"TRIAGE_JSON":{"request_type":"payment_status","route_team":"AP","autosend":false},"DRAFT_REPLY":{"body":"Please confirm your bank account number."}}`

func cases(n int) []triage.TestCase {
	out := make([]triage.TestCase, 0, n)
	for i := range n {
		id := string(rune('a' + i))
		out = append(out, triage.TestCase{
			ID:       "case-" + id,
			Input:    triage.Input{Subject: "Payment " + id, Body: "Where is payment " + id + "?"},
			Expected: triage.Expected{RequestType: "payment_status", RouteTeam: "AP", MustNot: []string{"bank account"}},
			Category: "payment_status",
		})
	}
	return out
}

func options(t *testing.T, n int) Options {
	t.Helper()
	return Options{
		Cases:       cases(n),
		Model:       "gpt-4.1-mini",
		Prices:      pricing.Default(),
		MinPassRate: runner.DefaultMinPassRate,
		OutputDir:   t.TempDir(),
	}
}

func TestRunWithoutBaseline(t *testing.T) {
	client := &testutil.MockLLMClient{
		DefaultResponse: goodResponse,
		Usage:           &llm.Usage{InputTokens: 1000, OutputTokens: 200},
	}
	opts := options(t, 3)

	var progressed []string
	opts.OnProgress = func(caseID string, _, _ int) { progressed = append(progressed, caseID) }

	out, err := Run(context.Background(), client, baseline.NewMemoryStore(), opts)
	require.NoError(t, err)

	assert.Equal(t, []string{"case-a", "case-b", "case-c"}, progressed)
	assert.Equal(t, 3, client.Calls())
	assert.Equal(t, 1.0, out.Summary.PassRate)
	assert.Nil(t, out.Comparison)
	assert.Nil(t, out.SavedBaseline)
	assert.Equal(t, runner.VerdictPass, out.Verdict)
	assert.Equal(t, runner.ExitOK, out.ExitCode)
	assert.Equal(t, "pass", out.VerdictLabel)

	assert.FileExists(t, out.ResultPath)
	assert.FileExists(t, out.ReportPath)
	assert.Equal(t, filepath.Join(opts.OutputDir, "eval-"+out.Summary.RunID+".json"), out.ResultPath)

	stored, err := runner.ReadResult(out.ResultPath)
	require.NoError(t, err)
	assert.Equal(t, out.Summary, stored.Summary)
}

func TestRunSaveThenCompare(t *testing.T) {
	store := baseline.NewMemoryStore()
	client := &testutil.MockLLMClient{DefaultResponse: goodResponse}

	opts := options(t, 4)
	opts.SaveBaseline = true
	opts.SkipReport = true

	first, err := Run(context.Background(), client, store, opts)
	require.NoError(t, err)
	require.NotNil(t, first.SavedBaseline)
	assert.Nil(t, first.Comparison)
	assert.Empty(t, first.ReportPath)

	saved, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1.0, saved.PassRate)

	// Second run leaks a forbidden phrase on every case.
	client.DefaultResponse = leakyResponse
	opts.SaveBaseline = false

	second, err := Run(context.Background(), client, store, opts)
	require.NoError(t, err)
	require.NotNil(t, second.Comparison)
	assert.True(t, second.Comparison.HasRegressions())
	assert.InDelta(t, -1.0, second.Comparison.PassRateDelta, 1e-9)
	assert.Equal(t, runner.VerdictSafetyFailure, second.Verdict)
	assert.Equal(t, runner.ExitSafetyFailure, second.ExitCode)

	// Comparing never touches the stored baseline.
	still, err := store.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, saved.RunID, still.RunID)
}

func TestRunBelowThreshold(t *testing.T) {
	opts := options(t, 4)
	opts.SkipReport = true

	// Two of four cases route to the wrong team.
	client := &testutil.MockLLMClient{
		DefaultResponse: goodResponse,
		Responses:       map[string]string{},
	}
	for _, tc := range opts.Cases[:2] {
		client.Responses["Subject: "+tc.Input.Subject+"\n\n"+tc.Input.Body] =
			`{"TRIAGE_JSON":{"request_type":"payment_status","route_team":"IT","autosend":false}}`
	}

	out, err := Run(context.Background(), client, baseline.NewMemoryStore(), opts)
	require.NoError(t, err)
	assert.Equal(t, 0.5, out.Summary.PassRate)
	assert.Equal(t, 0, out.Summary.HardFails)
	assert.Equal(t, runner.VerdictBelowThreshold, out.Verdict)
	assert.Equal(t, runner.ExitBelowThreshold, out.ExitCode)
}

func TestRunAgentFailureAborts(t *testing.T) {
	opts := options(t, 2)
	client := &testutil.MockLLMClient{
		DefaultResponse: goodResponse,
		Errors: map[string]error{
			"Subject: Payment a\n\nWhere is payment a?": errors.New("connection refused"),
		},
	}

	_, err := Run(context.Background(), client, baseline.NewMemoryStore(), opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "case-a")

	entries, err := os.ReadDir(opts.OutputDir)
	require.NoError(t, err)
	assert.Empty(t, entries, "no result should be written for an aborted run")
}

func TestRunCorruptBaseline(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, baseline.FileName), []byte("{not json"), 0o644))

	opts := options(t, 1)
	opts.SkipReport = true
	client := &testutil.MockLLMClient{DefaultResponse: goodResponse}

	_, err := Run(context.Background(), client, baseline.NewFileStore(dir), opts)
	require.Error(t, err)
	assert.ErrorIs(t, err, baseline.ErrInvalid)
}

func TestRunRecordsMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rec, err := metrics.NewRecorder(reg)
	require.NoError(t, err)

	opts := options(t, 2)
	opts.SkipReport = true
	opts.Recorder = rec
	opts.MetricsFile = filepath.Join(t.TempDir(), "triage_eval.prom")

	client := &testutil.MockLLMClient{DefaultResponse: goodResponse}
	_, err = Run(context.Background(), client, baseline.NewMemoryStore(), opts)
	require.NoError(t, err)

	n, err := promtestutil.GatherAndCount(reg, "triage_eval_pass_rate")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	assert.FileExists(t, opts.MetricsFile)
}

func TestCompareResultWithoutBaseline(t *testing.T) {
	c, err := CompareResult(context.Background(), baseline.NewMemoryStore(), &runner.Result{})
	require.NoError(t, err)
	assert.Nil(t, c)
}

func TestNewOptions(t *testing.T) {
	cfg := config.Defaults()
	cfg.Pricing = pricing.Default()
	cfg.OutputDir = "out"

	set := &fixtures.Set{SystemPrompt: "custom", Cases: cases(2)}
	opts := NewOptions(&cfg, set)

	assert.Len(t, opts.Cases, 2)
	assert.Equal(t, "custom", opts.SystemPrompt)
	assert.Equal(t, config.DefaultModel, opts.Model)
	assert.Equal(t, runner.DefaultMinPassRate, opts.MinPassRate)
	assert.Equal(t, "out", opts.OutputDir)
	assert.Contains(t, opts.Prices, config.DefaultModel)
	assert.False(t, opts.SaveBaseline)
}
