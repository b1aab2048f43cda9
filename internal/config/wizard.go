package config

import (
	"context"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"gopkg.in/yaml.v3"
)

// WizardResult holds the user's choices from the wizard.
type WizardResult struct {
	Name         string
	Region       string
	KeyName      string
	ImageID      string
	InstanceType string
	NetworkCIDR  string
}

// RunWizard runs the interactive configuration wizard.
func RunWizard(ctx context.Context) (*WizardResult, error) {
	result := &WizardResult{
		Region:       "us-east-1",
		InstanceType: DefaultInstanceType,
		NetworkCIDR:  DefaultNetworkCIDR,
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Stack name").
				Description("A unique name for your stack (DNS-safe, lowercase)").
				Placeholder("my-stack").
				Value(&result.Name).
				Validate(validateWizardName),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Region").
				Description("AWS region the stack is evaluated in").
				Options(
					huh.NewOption("N. Virginia (us-east-1)", "us-east-1"),
					huh.NewOption("Ohio (us-east-2)", "us-east-2"),
					huh.NewOption("Oregon (us-west-2)", "us-west-2"),
					huh.NewOption("Ireland (eu-west-1)", "eu-west-1"),
					huh.NewOption("Frankfurt (eu-central-1)", "eu-central-1"),
				).
				Value(&result.Region),
		),

		huh.NewGroup(
			huh.NewInput().
				Title("Key pair name").
				Description("An existing EC2 key pair; create one with `webvpc keygen`").
				Placeholder("deployer").
				Value(&result.KeyName).
				Validate(requireValue("key pair name")),

			huh.NewInput().
				Title("Machine image").
				Description("Region-specific AMI both instances boot from").
				Placeholder("ami-0c02fb55956c7d316").
				Value(&result.ImageID).
				Validate(validateWizardImage),
		),

		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Instance type").
				Description("Machine type for both instances").
				Options(
					huh.NewOption("t3.micro - 2 vCPU, 1GB RAM", "t3.micro"),
					huh.NewOption("t3.small - 2 vCPU, 2GB RAM", "t3.small"),
					huh.NewOption("t3.medium - 2 vCPU, 4GB RAM", "t3.medium"),
				).
				Value(&result.InstanceType),

			huh.NewInput().
				Title("Network block").
				Description("IPv4 CIDR of the VPC; subnets are derived from it").
				Value(&result.NetworkCIDR).
				Validate(validateWizardCIDR),
		),
	)

	if err := form.RunWithContext(ctx); err != nil {
		return nil, fmt.Errorf("wizard canceled: %w", err)
	}

	return result, nil
}

// ToConfig converts the wizard result into a defaulted, validated Config.
func (r *WizardResult) ToConfig() (*Config, error) {
	cfg := &Config{
		Name:         r.Name,
		Region:       r.Region,
		KeyName:      r.KeyName,
		ImageID:      r.ImageID,
		InstanceType: r.InstanceType,
		Network:      NetworkConfig{CIDR: r.NetworkCIDR},
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// WriteYAML writes the configuration to path.
func WriteYAML(cfg *Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	return nil
}

func validateWizardName(s string) error {
	if !stackNameRegex.MatchString(s) {
		return fmt.Errorf("must be lowercase alphanumeric with hyphens, starting with a letter")
	}
	return nil
}

func validateWizardImage(s string) error {
	if !imageIDRegex.MatchString(s) {
		return fmt.Errorf("expected an ami- identifier")
	}
	return nil
}

func validateWizardCIDR(s string) error {
	cfg := Config{Network: NetworkConfig{CIDR: s}}
	cfg.applyDefaults()
	return (&cfg).validateNetwork()
}

func requireValue(what string) func(string) error {
	return func(s string) error {
		if s == "" {
			return fmt.Errorf("%s is required", what)
		}
		return nil
	}
}
