package baseline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/giantswarm/triage-eval/internal/pricing"
	"github.com/giantswarm/triage-eval/internal/runner"
	"github.com/giantswarm/triage-eval/internal/scorer"
)

func row(category string, passed, mustNotOK bool, latency int64) runner.Row {
	return runner.Row{
		Category: category,
		Score: scorer.Result{
			Passed: passed,
			Checks: scorer.Checks{RequestTypeOK: passed, RouteTeamOK: true, AutosendOK: passed, MustNotOK: mustNotOK},
		},
		Metrics: runner.RowMetrics{LatencyMs: latency},
	}
}

func sampleResult() *runner.Result {
	rows := []runner.Row{
		row("payment_status", true, true, 100),
		row("payment_status", false, true, 200),
		row("legal", false, false, 300),
		row("", true, true, 400),
	}
	summary := runner.Aggregate("2025-01-10T12-34-56-789Z", "gpt-4.1-mini", rows, pricing.Default())
	summary.CostUSD.PerCase = 0.000412
	return &runner.Result{Summary: summary, Rows: rows}
}

func TestFromResult(t *testing.T) {
	rec := FromResult(sampleResult())

	assert.Equal(t, "2025-01-10T12-34-56-789Z", rec.RunID)
	assert.Equal(t, 0.5, rec.PassRate)
	assert.Equal(t, int64(250), rec.AvgLatencyMs)
	assert.Equal(t, 0.000412, rec.CostPerCase)
	assert.Equal(t, map[string]CategoryRate{
		"payment_status": {PassRate: 0.5},
		"legal":          {PassRate: 0},
		"uncategorized":  {PassRate: 1},
	}, rec.CategoryBreakdown)
	assert.Equal(t, runner.CheckStats{RequestTypeOK: 2, RouteTeamOK: 4, AutosendOK: 2, MustNotOK: 3}, rec.CheckStats)
}

func TestFileStoreLoadMissing(t *testing.T) {
	store := NewFileStore(t.TempDir())
	_, err := store.Load(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestFileStoreSaveAndLoad(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "eval")
	store := NewFileStore(dir)
	ctx := context.Background()

	saved, err := SaveResult(ctx, store, sampleResult())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "baseline.json"), store.Path())

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, saved, loaded)
}

func TestFileStoreSaveOverwrites(t *testing.T) {
	store := NewFileStore(t.TempDir())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, &Record{RunID: "first", PassRate: 0.5}))
	require.NoError(t, store.Save(ctx, &Record{RunID: "second", PassRate: 0.9}))

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "second", loaded.RunID)
	assert.Equal(t, 0.9, loaded.PassRate)
}

func TestFileStoreFormat(t *testing.T) {
	store := NewFileStore(t.TempDir())
	require.NoError(t, store.Save(context.Background(), FromResult(sampleResult())))

	data, err := os.ReadFile(store.Path())
	require.NoError(t, err)

	content := string(data)
	for _, key := range []string{`"runId"`, `"passRate"`, `"avgLatencyMs"`, `"costPerCase"`, `"categoryBreakdown"`, `"checkStats"`, `"requestTypeOk"`, `"mustNotOk"`} {
		assert.Contains(t, content, key)
	}
}

func TestFileStoreLoadCorrupted(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte("{not json"), 0o644))

	_, err := NewFileStore(dir).Load(context.Background())
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestSaveNil(t *testing.T) {
	assert.Error(t, NewFileStore(t.TempDir()).Save(context.Background(), nil))
	assert.Error(t, NewMemoryStore().Save(context.Background(), nil))
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, err := store.Load(ctx)
	assert.ErrorIs(t, err, ErrNotFound)

	rec := &Record{RunID: "r1", PassRate: 0.8}
	require.NoError(t, store.Save(ctx, rec))
	rec.PassRate = 0.1

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0.8, loaded.PassRate, "store keeps its own copy")
}

func TestMemoryStoreCopiesCategoryBreakdown(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	rec := &Record{RunID: "r1", CategoryBreakdown: map[string]CategoryRate{"spam": {PassRate: 1}}}
	require.NoError(t, store.Save(ctx, rec))
	rec.CategoryBreakdown["spam"] = CategoryRate{PassRate: 0}
	rec.CategoryBreakdown["other"] = CategoryRate{PassRate: 0.5}

	loaded, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]CategoryRate{"spam": {PassRate: 1}}, loaded.CategoryBreakdown)

	loaded.CategoryBreakdown["spam"] = CategoryRate{PassRate: 0.25}
	again, err := store.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1.0, again.CategoryBreakdown["spam"].PassRate)
}
