package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/giantswarm/triage-eval/internal/pricing"
)

// DefaultConfigFile is the path checked for YAML configuration.
const DefaultConfigFile = "triage-eval.yaml"

// DefaultEnvFile is the dotenv file loaded before the environment is read.
const DefaultEnvFile = ".env.local"

// Load returns a Config using the hierarchy: defaults < YAML < ENV.
func Load() (*Config, error) {
	return LoadFrom(DefaultConfigFile)
}

// LoadFrom returns a Config loaded from the given YAML path using the
// hierarchy: defaults < YAML < ENV. The YAML file is optional.
func LoadFrom(yamlPath string) (*Config, error) {
	cfg := Defaults()

	if err := loadYAML(&cfg, yamlPath); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}

	if err := loadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("config env: %w", err)
	}

	cfg.Pricing = pricing.Default().Merge(cfg.Pricing)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validate: %w", err)
	}

	return &cfg, nil
}

// LoadDotEnv loads variables from a dotenv file without overriding
// variables that are already set. An empty path or missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loadYAML reads the YAML file and unmarshals it over cfg.
// Returns nil if the file does not exist.
func loadYAML(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read %s: %w", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}

	return nil
}

// loadEnv overlays environment variables onto cfg.
// Only non-empty env values override the current config.
func loadEnv(cfg *Config) error {
	setString(&cfg.Model, "EVAL_MODEL")
	setString(&cfg.APIKey, "OPENAI_API_KEY")
	setString(&cfg.BaseURL, "OPENAI_BASE_URL")
	setString(&cfg.OutputDir, "EVAL_OUTPUT_DIR")
	setString(&cfg.BaselineDir, "EVAL_BASELINE_DIR")
	setString(&cfg.CasesFile, "EVAL_CASES")
	setString(&cfg.FixtureSet, "EVAL_FIXTURE_SET")
	setString(&cfg.FixturesDir, "EVAL_FIXTURES_DIR")

	if err := setFloat64(&cfg.MinPassRate, "EVAL_MIN_PASSRATE"); err != nil {
		return err
	}
	if err := setFloat64Ptr(&cfg.Temperature, "EVAL_TEMPERATURE"); err != nil {
		return err
	}
	return setDuration(&cfg.Timeout, "EVAL_TIMEOUT")
}

// Validate checks value ranges.
func (c *Config) Validate() error {
	if c.Model == "" {
		return errors.New("model is required")
	}
	if c.MinPassRate < 0 || c.MinPassRate > 1 {
		return fmt.Errorf("min_pass_rate must be between 0 and 1, got %v", c.MinPassRate)
	}
	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("temperature must be between 0 and 2, got %v", *c.Temperature)
	}
	if c.Timeout < 0 {
		return errors.New("timeout must not be negative")
	}
	if c.OutputDir == "" {
		return errors.New("output_dir is required")
	}
	if c.BaselineDir == "" {
		return errors.New("baseline_dir is required")
	}
	return c.Pricing.Validate()
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setFloat64(dst *float64, key string) error {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = f
	}
	return nil
}

func setFloat64Ptr(dst **float64, key string) error {
	if v := os.Getenv(key); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = &f
	}
	return nil
}

func setDuration(dst *time.Duration, key string) error {
	if v := os.Getenv(key); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
