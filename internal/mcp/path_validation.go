package mcp

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/giantswarm/triage-eval/internal/runner"
)

func resolveResultPath(outputDir, runID string) (string, error) {
	if strings.TrimSpace(runID) == "" {
		return "", fmt.Errorf("run_id is required")
	}
	if strings.Contains(runID, string(filepath.Separator)) || strings.Contains(runID, "/") {
		return "", fmt.Errorf("path separators are not allowed")
	}
	if runID == "." || runID == ".." {
		return "", fmt.Errorf("path traversal is not allowed")
	}
	return resolvePathWithinBase(outputDir, filepath.Base(runner.ResultPath(outputDir, runID)))
}

func resolveCasesFilePath(fixturesDir, casesFile string) (string, error) {
	if strings.TrimSpace(casesFile) == "" {
		return "", fmt.Errorf("cases_file is required")
	}
	if fixturesDir == "" {
		fixturesDir = "."
	}
	return resolvePathWithinBase(fixturesDir, casesFile)
}

func resolvePathWithinBase(baseDir, pathValue string) (string, error) {
	baseAbs, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}
	target := pathValue
	if !filepath.IsAbs(target) {
		target = filepath.Join(baseAbs, target)
	}
	targetAbs, err := filepath.Abs(target)
	if err != nil {
		return "", fmt.Errorf("failed to resolve path: %w", err)
	}
	rel, err := filepath.Rel(baseAbs, targetAbs)
	if err != nil {
		return "", fmt.Errorf("failed to resolve relative path: %w", err)
	}
	if rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("path must be within %s", baseDir)
	}
	return targetAbs, nil
}
