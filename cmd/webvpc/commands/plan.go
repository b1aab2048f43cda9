package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudshore/webvpc/cmd/webvpc/handlers"
)

// Plan returns the command that validates the declaration and prints the
// resolved resource graph without touching AWS.
func Plan() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Validate the declaration and show the creation order",
		Long: `Validate the stack declaration and print the resolved resource
graph in creation order. No AWS calls are made.

Examples:
  webvpc plan
  webvpc plan -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Plan(cmd.Context(), configPath)
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to configuration file (default: webvpc.yaml)")

	return cmd
}
