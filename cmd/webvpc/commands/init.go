package commands

import (
	"github.com/spf13/cobra"

	"github.com/cloudshore/webvpc/cmd/webvpc/handlers"
	"github.com/cloudshore/webvpc/internal/config"
)

// Init returns the command that creates a stack configuration file.
func Init() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a stack configuration interactively",
		Long: `Create a stack configuration file.

On a terminal this runs an interactive wizard. The generated YAML is
fully expanded and explicit, including the derived subnet blocks.

Examples:
  webvpc init
  webvpc init -o production.yaml`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return handlers.Init(cmd.Context(), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", config.DefaultConfigFile, "Where to write the configuration")

	return cmd
}
