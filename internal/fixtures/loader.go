// Package fixtures loads labeled triage test cases from JSONL fixture sources.
package fixtures

import (
	"bufio"
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/triage-eval/internal/triage"
)

//go:embed all:testdata
var embeddedSets embed.FS

// maxLineBytes bounds a single JSONL record; email bodies can be long.
const maxLineBytes = 4 * 1024 * 1024

// ErrNoCases is returned when a fixture source contains no cases.
var ErrNoCases = errors.New("fixture source contains no test cases")

// ValidationError reports a record that failed to decode or validate.
type ValidationError struct {
	Line int
	Err  error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("line %d: %v", e.Line, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

var validate = validator.New()

// ReadCases decodes newline-delimited test cases from r in input order.
// Blank lines are ignored and duplicate ids are rejected.
func ReadCases(r io.Reader) ([]triage.TestCase, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	var cases []triage.TestCase
	seen := make(map[string]int)

	for lineNum := 1; scanner.Scan(); lineNum++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var tc triage.TestCase
		if err := json.Unmarshal(line, &tc); err != nil {
			return nil, &ValidationError{Line: lineNum, Err: fmt.Errorf("failed to decode test case: %w", err)}
		}
		if err := validate.Struct(tc); err != nil {
			return nil, &ValidationError{Line: lineNum, Err: fmt.Errorf("invalid test case %q: %w", tc.ID, err)}
		}
		if prev, ok := seen[tc.ID]; ok {
			return nil, &ValidationError{Line: lineNum, Err: fmt.Errorf("duplicate test case id %q (first seen on line %d)", tc.ID, prev)}
		}
		seen[tc.ID] = lineNum

		if !triage.IsRequestType(tc.Expected.RequestType) || !triage.IsRouteTeam(tc.Expected.RouteTeam) {
			slog.Warn("expected labels are outside the agent schema, case cannot pass",
				"case_id", tc.ID,
				"request_type", tc.Expected.RequestType,
				"route_team", tc.Expected.RouteTeam)
		}

		cases = append(cases, tc)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read test cases: %w", err)
	}

	if len(cases) == 0 {
		return nil, ErrNoCases
	}
	return cases, nil
}

// LoadFile loads test cases from a bare JSONL file.
func LoadFile(filename string) ([]triage.TestCase, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}
	defer f.Close()

	cases, err := ReadCases(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	return cases, nil
}

// Load loads a fixture set by name, searching first in the external directory
// (if provided), then in the embedded fixture sets.
func Load(name string, externalDir string) (*Set, error) {
	// Try external directory first.
	if externalDir != "" {
		dir := filepath.Join(externalDir, name)
		if info, err := os.Stat(dir); err == nil && info.IsDir() {
			return loadFromFS(os.DirFS(dir), name)
		}
	}

	// embed.FS always uses forward slashes.
	subFS, err := fs.Sub(embeddedSets, path.Join("testdata", name))
	if err != nil {
		return nil, fmt.Errorf("fixture set %q not found: %w", name, err)
	}
	if _, err := fs.Stat(subFS, "suite.yaml"); err != nil {
		return nil, fmt.Errorf("fixture set %q not found: %w", name, err)
	}
	return loadFromFS(subFS, name)
}

// Resolve returns the cases to evaluate. A non-empty casesFile wins over the
// named fixture set.
func Resolve(casesFile, name, externalDir string) (*Set, error) {
	if casesFile == "" {
		return Load(name, externalDir)
	}

	cases, err := LoadFile(casesFile)
	if err != nil {
		return nil, err
	}
	return &Set{
		Name:      strings.TrimSuffix(filepath.Base(casesFile), filepath.Ext(casesFile)),
		CasesFile: casesFile,
		Cases:     cases,
	}, nil
}

// List returns the names of all available fixture sets, sorted.
func List(externalDir string) ([]string, error) {
	seen := make(map[string]bool)
	var names []string

	entries, err := fs.ReadDir(embeddedSets, "testdata")
	if err == nil {
		for _, e := range entries {
			if e.IsDir() {
				seen[e.Name()] = true
				names = append(names, e.Name())
			}
		}
	}

	if externalDir != "" {
		entries, err := os.ReadDir(externalDir)
		if err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read fixtures directory: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() && !seen[e.Name()] {
				names = append(names, e.Name())
			}
		}
	}

	sort.Strings(names)
	return names, nil
}

// Summaries loads every available fixture set and reports its size.
// Sets that fail to load are skipped.
func Summaries(externalDir string) ([]Summary, error) {
	names, err := List(externalDir)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(names))
	for _, name := range names {
		set, err := Load(name, externalDir)
		if err != nil {
			continue
		}
		out = append(out, Summary{Name: name, Description: set.Description, Cases: len(set.Cases)})
	}
	return out, nil
}

func loadFromFS(fsys fs.FS, name string) (*Set, error) {
	data, err := fs.ReadFile(fsys, "suite.yaml")
	if err != nil {
		return nil, fmt.Errorf("failed to read suite.yaml for fixture set %q: %w", name, err)
	}

	var set Set
	if err := yaml.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("failed to parse suite.yaml for fixture set %q: %w", name, err)
	}
	if set.Name == "" {
		set.Name = name
	}
	if set.CasesFile == "" {
		set.CasesFile = DefaultCasesFile
	}

	f, err := fsys.Open(set.CasesFile)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s for fixture set %q: %w", set.CasesFile, name, err)
	}
	defer f.Close()

	cases, err := ReadCases(f)
	if err != nil {
		return nil, fmt.Errorf("failed to load cases for fixture set %q: %w", name, err)
	}
	set.Cases = cases

	return &set, nil
}
