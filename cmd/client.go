package cmd

import (
	"github.com/spf13/cobra"

	"github.com/giantswarm/triage-eval/internal/config"
	"github.com/giantswarm/triage-eval/internal/llm"
)

// loadConfig loads the dotenv file and the config file named by the
// persistent flags.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := config.LoadDotEnv(envFile); err != nil {
		return nil, err
	}

	path, _ := cmd.Flags().GetString("config")
	return config.LoadFrom(path)
}

// clientFactory builds the agent client; tests replace it.
var clientFactory = newLLMClient

// newLLMClient creates the agent client from the resolved configuration.
func newLLMClient(cfg *config.Config) llm.Client {
	opts := []llm.Option{
		llm.WithBaseURL(cfg.BaseURL),
		llm.WithModel(cfg.Model),
	}
	if cfg.APIKey != "" {
		opts = append(opts, llm.WithAPIKey(cfg.APIKey))
	}
	return llm.NewOpenAIClient(opts...)
}
