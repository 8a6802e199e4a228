package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/giantswarm/triage-eval/internal/config"
	"github.com/giantswarm/triage-eval/internal/runner"
)

var rootCmd = newRootCmd()

var (
	buildCommit = "unknown"
	buildDate   = "unknown"
)

func newRootCmd() *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "triage-eval",
		Short: "Evaluation harness for the AP email triage agent",
		Long: `triage-eval runs a labeled set of supplier emails through the triage agent,
scores each structured response against the expected routing decision and
forbidden phrases, and compares the run against a stored baseline.

When run without subcommands, it runs the evaluation (equivalent to 'triage-eval run').

Exit codes:
  0  all checks within policy
  1  fatal error (configuration, fixtures, agent call)
  2  at least one case leaked a forbidden phrase
  3  pass rate below the configured minimum`,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			verbose, _ := cmd.Flags().GetBool("verbose")
			if verbose {
				slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
					Level: slog.LevelDebug,
				})))
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runEval(cmd, opts)
		},
	}
	addRunFlags(cmd, opts)

	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose output")
	cmd.PersistentFlags().String("config", config.DefaultConfigFile, "Path to the YAML config file (optional)")
	cmd.PersistentFlags().String("env-file", config.DefaultEnvFile, "Dotenv file loaded before reading the environment (optional)")

	cmd.AddCommand(newVersionCmd())
	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newReportCmd())
	cmd.AddCommand(newBaselineCmd())
	cmd.AddCommand(newListCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}

// ExitError carries a non-zero process exit status out of a command.
type ExitError struct {
	Code    int
	Message string
}

func (e *ExitError) Error() string {
	return e.Message
}

// SetVersion sets the version for the root command.
func SetVersion(v string) {
	rootCmd.Version = v
}

// SetBuildInfo sets the commit and build date for the version command.
func SetBuildInfo(commit, date string) {
	buildCommit = commit
	buildDate = date
}

// Execute is the main entry point for the CLI application.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "triage-eval version %s\n" .Version}}`)
	os.Exit(execute(rootCmd, os.Stderr))
}

// execute runs cmd and maps its outcome to a process exit status.
func execute(cmd *cobra.Command, stderr io.Writer) int {
	err := cmd.Execute()
	if err == nil {
		return runner.ExitOK
	}

	var exitErr *ExitError
	if errors.As(err, &exitErr) {
		if exitErr.Message != "" {
			_, _ = fmt.Fprintln(stderr, exitErr.Message)
		}
		return exitErr.Code
	}

	_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
	return runner.ExitFatal
}
