// Package config loads harness configuration from defaults, an optional
// YAML file and the environment.
package config

import (
	"time"

	"github.com/giantswarm/triage-eval/internal/llm"
	"github.com/giantswarm/triage-eval/internal/pricing"
	"github.com/giantswarm/triage-eval/internal/runner"
)

// Config holds all harness settings.
type Config struct {
	Model       string        `yaml:"model"`
	MinPassRate float64       `yaml:"min_pass_rate"`
	APIKey      string        `yaml:"-"`
	BaseURL     string        `yaml:"base_url"`
	Temperature *float64      `yaml:"temperature"`
	Timeout     time.Duration `yaml:"timeout"`

	OutputDir   string `yaml:"output_dir"`
	BaselineDir string `yaml:"baseline_dir"`

	// CasesFile, when set, replaces the fixture set with a bare JSONL file.
	CasesFile   string `yaml:"cases_file"`
	FixtureSet  string `yaml:"fixture_set"`
	FixturesDir string `yaml:"fixtures_dir"`

	// Pricing extends or overrides the built-in price table.
	Pricing pricing.Table `yaml:"pricing"`
}

// DefaultModel is the model evaluated when none is configured.
const DefaultModel = "gpt-4.1-mini"

// DefaultFixtureSet is the embedded fixture set used when no cases file is configured.
const DefaultFixtureSet = "ap-triage"

// Defaults returns a Config with built-in defaults.
func Defaults() Config {
	return Config{
		Model:       DefaultModel,
		MinPassRate: runner.DefaultMinPassRate,
		BaseURL:     llm.DefaultBaseURL,
		OutputDir:   "eval/results",
		BaselineDir: "eval",
		FixtureSet:  DefaultFixtureSet,
	}
}
