package handlers

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudshore/webvpc/internal/config"
)

// Wizard function variables - can be replaced in tests.
var (
	runWizard       = config.RunWizard
	writeConfigYAML = config.WriteYAML
)

// Init runs the interactive wizard and writes the stack declaration.
func Init(ctx context.Context, outputPath string) error {
	if outputPath == "" {
		outputPath = config.DefaultConfigFile
	}

	if _, err := os.Stat(outputPath); err == nil {
		return fmt.Errorf("%s already exists, remove it first or use --output", outputPath)
	}

	if !isTerminal() {
		return fmt.Errorf("init is interactive and needs a terminal; write %s by hand instead", config.DefaultConfigFile)
	}

	result, err := runWizard(ctx)
	if err != nil {
		return fmt.Errorf("wizard failed: %w", err)
	}

	cfg, err := result.ToConfig()
	if err != nil {
		return err
	}

	if err := writeConfigYAML(cfg, outputPath); err != nil {
		return err
	}

	fmt.Println()
	printTitle("Configuration written")
	printField("File:", outputPath)
	printField("Stack:", cfg.Name)
	printField("Region:", cfg.Region)
	fmt.Println()
	fmt.Println("Next steps:")
	fmt.Println("  webvpc keygen   register the SSH key pair")
	fmt.Println("  webvpc plan     review the resources")
	fmt.Println("  webvpc apply    provision the stack")
	return nil
}
