package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudshore/webvpc/cmd/webvpc/handlers"
)

// Outputs returns the command that prints the outputs of the last apply.
func Outputs() *cobra.Command {
	var opts handlers.OutputsOptions

	cmd := &cobra.Command{
		Use:   "outputs",
		Short: "Show the outputs of the last apply",
		Long: `Show the instance IDs and the public URL of the last apply.

Outputs are read from the local outputs file; with --remote they are
fetched from the configured state bucket instead.

Examples:
  webvpc outputs
  webvpc outputs --remote`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Outputs(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: webvpc.yaml)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "AWS shared config profile")
	cmd.Flags().BoolVar(&opts.Remote, "remote", false, "Read outputs from the configured state bucket")

	return cmd
}
