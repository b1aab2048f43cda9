package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudshore/webvpc/cmd/webvpc/handlers"
)

// Apply returns the command that provisions or updates the stack.
//
// Optional flags:
//
//	--config, -c: Path to stack configuration YAML file (default: webvpc.yaml)
//	--profile: AWS shared config profile
//	--metrics-addr: expose Prometheus metrics on this address during the run
//
// Credentials come from the usual AWS sources (environment, shared config,
// instance metadata).
func Apply() *cobra.Command {
	var opts handlers.ApplyOptions

	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Create or update the stack",
		Long: `Create or update your web environment stack.

This command evaluates the declared configuration against AWS, creating
everything that is missing: the VPC, subnets, gateways, routing, the
security group, the instance role and both instances. Re-running apply
over an unchanged, healthy stack performs no mutations.

Apply is all-or-nothing: when any resource fails, everything the run
created is rolled back in reverse order.

Examples:
  # Apply using webvpc.yaml in the current directory
  webvpc apply

  # Apply using a specific config file
  webvpc apply -c production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Apply(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: webvpc.yaml)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "AWS shared config profile")
	cmd.Flags().StringVar(&opts.MetricsAddr, "metrics-addr", "", "Expose Prometheus metrics on this address while applying")

	return cmd
}
