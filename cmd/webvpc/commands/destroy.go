package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudshore/webvpc/cmd/webvpc/handlers"
)

// Destroy returns the command that tears down the stack.
func Destroy() *cobra.Command {
	var opts handlers.DestroyOptions

	cmd := &cobra.Command{
		Use:   "destroy",
		Short: "Tear down the stack",
		Long: `Tear down the web environment stack.

Resources are deleted in reverse creation order: instances first, the VPC
last. The referenced key pair is left alone. Destroying an already absent
stack succeeds without error.

Examples:
  # Destroy the stack declared in webvpc.yaml
  webvpc destroy

  # Skip the confirmation prompt
  webvpc destroy --force`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Destroy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: webvpc.yaml)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "AWS shared config profile")
	cmd.Flags().BoolVar(&opts.Force, "force", false, "Skip the confirmation prompt")

	return cmd
}
