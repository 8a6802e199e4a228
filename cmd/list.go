package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/giantswarm/triage-eval/internal/fixtures"
)

func newListCmd() *cobra.Command {
	var fixturesDir string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List available fixture sets",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			names, err := fixtures.List(fixturesDir)
			if err != nil {
				return fmt.Errorf("failed to list fixture sets: %w", err)
			}

			if len(names) == 0 {
				_, _ = fmt.Fprintln(out, "No fixture sets found.")
				return nil
			}

			_, _ = fmt.Fprintf(out, "Available fixture sets:\n\n")
			for _, name := range names {
				set, err := fixtures.Load(name, fixturesDir)
				if err != nil {
					_, _ = fmt.Fprintf(out, "  - %s (error loading: %v)\n", name, err)
					continue
				}
				_, _ = fmt.Fprintf(out, "  - %s\n", name)
				_, _ = fmt.Fprintf(out, "    Name: %s\n", set.Name)
				if set.Description != "" {
					_, _ = fmt.Fprintf(out, "    Description: %s\n", set.Description)
				}
				_, _ = fmt.Fprintf(out, "    Version: %s\n", set.Version)
				_, _ = fmt.Fprintf(out, "    Cases: %d\n\n", len(set.Cases))
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&fixturesDir, "fixtures-dir", "", "External fixture sets directory")

	return cmd
}
