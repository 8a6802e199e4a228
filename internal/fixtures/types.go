package fixtures

import "github.com/giantswarm/triage-eval/internal/triage"

// DefaultCasesFile is the cases file name used when suite.yaml omits one.
const DefaultCasesFile = "cases.jsonl"

// Set is a loaded fixture set with its metadata and cases.
type Set struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Version     string `yaml:"version"`
	CasesFile   string `yaml:"cases_file"`

	// SystemPrompt overrides the agent's default instructions when set.
	SystemPrompt string `yaml:"system_prompt"`

	Cases []triage.TestCase `yaml:"-"` // loaded separately from JSONL
}

// Summary describes a fixture set without its cases.
type Summary struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Cases       int    `json:"cases"`
}
