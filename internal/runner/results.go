package runner

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

const (
	resultPrefix = "eval-"
	resultSuffix = ".json"
)

// ResultPath returns the file a run result is stored in.
func ResultPath(dir, runID string) string {
	return filepath.Join(dir, resultPrefix+runID+resultSuffix)
}

// WriteResult writes result as indented JSON into dir and returns the path.
func WriteResult(dir string, result *Result) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal run result: %w", err)
	}

	path := ResultPath(dir, result.Summary.RunID)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write run result: %w", err)
	}
	return path, nil
}

// ReadResult loads a persisted run result.
func ReadResult(path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read run result: %w", err)
	}

	var result Result
	if err := json.Unmarshal(data, &result); err != nil {
		return nil, fmt.Errorf("failed to parse run result %s: %w", path, err)
	}
	return &result, nil
}

// ListRunIDs returns the ids of all run results in dir, oldest first.
// A missing directory yields no runs.
func ListRunIDs(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read output directory: %w", err)
	}

	var ids []string
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, resultPrefix) || !strings.HasSuffix(name, resultSuffix) {
			continue
		}
		ids = append(ids, strings.TrimSuffix(strings.TrimPrefix(name, resultPrefix), resultSuffix))
	}
	sort.Strings(ids)
	return ids, nil
}
