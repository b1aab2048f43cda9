package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudshore/webvpc/cmd/webvpc/handlers"
)

// Keygen returns the command that generates and registers an SSH key pair.
func Keygen() *cobra.Command {
	var opts handlers.KeygenOptions

	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate an SSH key pair and register it",
		Long: `Generate an ED25519 SSH key pair, write the private key locally
and register the public key as an EC2 key pair under the configured
key name.

Apply never creates key pairs; run this once before the first apply,
or register an existing key through the AWS console instead.

Examples:
  webvpc keygen
  webvpc keygen -o ~/.ssh/webvpc_ed25519`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Keygen(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", "", "Path to configuration file (default: webvpc.yaml)")
	cmd.Flags().StringVar(&opts.Profile, "profile", "", "AWS shared config profile")
	cmd.Flags().StringVarP(&opts.PrivateKeyPath, "output", "o", "", "Where to write the private key (default: <key_name>.pem)")

	return cmd
}
