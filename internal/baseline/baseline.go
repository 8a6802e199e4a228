// Package baseline persists the summary metrics of one reference run.
//
// There is at most one live baseline. Saving overwrites it; it never expires.
package baseline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"maps"
	"os"
	"path/filepath"
	"sync"

	"github.com/giantswarm/triage-eval/internal/runner"
)

// FileName is the baseline file inside the baseline directory.
const FileName = "baseline.json"

var (
	// ErrNotFound indicates no baseline has been saved yet.
	ErrNotFound = errors.New("baseline not found")

	// ErrInvalid indicates the stored baseline could not be decoded.
	ErrInvalid = errors.New("invalid baseline data")
)

// Record is the durable snapshot of a run's key metrics.
type Record struct {
	RunID             string                  `json:"runId"`
	PassRate          float64                 `json:"passRate"`
	AvgLatencyMs      int64                   `json:"avgLatencyMs"`
	CostPerCase       float64                 `json:"costPerCase"`
	CategoryBreakdown map[string]CategoryRate `json:"categoryBreakdown"`
	CheckStats        runner.CheckStats       `json:"checkStats"`
}

// CategoryRate is the pass fraction of one category.
type CategoryRate struct {
	PassRate float64 `json:"passRate"`
}

// FromResult derives a record from a run result. Category pass fractions and
// check counts are recomputed from the rows.
func FromResult(result *runner.Result) *Record {
	breakdown := make(map[string]CategoryRate)
	for cat, st := range runner.CategoryBreakdown(result.Rows) {
		breakdown[cat] = CategoryRate{PassRate: st.PassRate}
	}

	return &Record{
		RunID:             result.Summary.RunID,
		PassRate:          result.Summary.PassRate,
		AvgLatencyMs:      result.Summary.AvgLatencyMs,
		CostPerCase:       result.Summary.CostUSD.PerCase,
		CategoryBreakdown: breakdown,
		CheckStats:        runner.CountChecks(result.Rows),
	}
}

// Store loads and saves the single baseline record.
type Store interface {
	// Load returns ErrNotFound if no baseline has been saved.
	Load(ctx context.Context) (*Record, error)

	// Save replaces the stored baseline.
	Save(ctx context.Context, rec *Record) error
}

// SaveResult derives a record from result and stores it.
func SaveResult(ctx context.Context, store Store, result *runner.Result) (*Record, error) {
	rec := FromResult(result)
	if err := store.Save(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// FileStore keeps the baseline as indented JSON in a fixed file.
type FileStore struct {
	dir string
	mu  sync.RWMutex
}

// NewFileStore returns a store for <dir>/baseline.json. The directory is
// created on first save.
func NewFileStore(dir string) *FileStore {
	return &FileStore{dir: dir}
}

// Path returns the baseline file path.
func (f *FileStore) Path() string {
	return filepath.Join(f.dir, FileName)
}

// Load reads the baseline file.
func (f *FileStore) Load(_ context.Context) (*Record, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	data, err := os.ReadFile(f.Path())
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to read baseline: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	return &rec, nil
}

// Save overwrites the baseline file.
func (f *FileStore) Save(_ context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("baseline record must not be nil")
	}

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal baseline: %w", err)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.MkdirAll(f.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create baseline directory: %w", err)
	}
	if err := os.WriteFile(f.Path(), data, 0o644); err != nil {
		return fmt.Errorf("failed to write baseline: %w", err)
	}
	return nil
}

// MemoryStore keeps the baseline in memory.
type MemoryStore struct {
	mu  sync.RWMutex
	rec *Record
}

// NewMemoryStore returns an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load returns a copy of the stored record.
func (m *MemoryStore) Load(_ context.Context) (*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.rec == nil {
		return nil, ErrNotFound
	}
	return m.rec.clone(), nil
}

// Save stores a copy of rec.
func (m *MemoryStore) Save(_ context.Context, rec *Record) error {
	if rec == nil {
		return errors.New("baseline record must not be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.rec = rec.clone()
	return nil
}

func (r *Record) clone() *Record {
	cp := *r
	cp.CategoryBreakdown = maps.Clone(r.CategoryBreakdown)
	return &cp
}
