// Package config loads and validates the webvpc stack declaration.
//
// A stack is declared in a single YAML file (webvpc.yaml by default). Only
// the stack name, region, key pair and machine image are required; the
// network layout defaults to a /16 with one public and one private /24.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// DefaultConfigFile is the config file looked up when none is given.
const DefaultConfigFile = "webvpc.yaml"

// Config is the declared desired state of a webvpc stack.
type Config struct {
	// Name is the stack name, used as the Name tag prefix and the
	// webvpc.io/stack tag on every resource. Must be DNS-safe.
	Name string `yaml:"name"`

	// Region is the AWS region the stack is evaluated in.
	Region string `yaml:"region"`

	// AvailabilityZone pins both subnets to one zone.
	// Defaults to the first zone of the region ("<region>a").
	AvailabilityZone string `yaml:"availability_zone,omitempty"`

	// KeyName references a pre-existing EC2 key pair. Apply verifies the
	// key exists before creating anything; it never creates one.
	KeyName string `yaml:"key_name"`

	// ImageID is the machine image both instances boot from. It is
	// region-specific; only its shape is validated locally, existence is
	// reported by the API at apply time.
	ImageID string `yaml:"image_id"`

	// InstanceType is the machine type for both instances.
	InstanceType string `yaml:"instance_type,omitempty"`

	Network NetworkConfig `yaml:"network,omitempty"`
	State   StateConfig   `yaml:"state,omitempty"`
}

// NetworkConfig declares the address layout of the stack.
type NetworkConfig struct {
	// CIDR is the address block of the network.
	CIDR string `yaml:"cidr,omitempty"`

	// PublicSubnetCIDR and PrivateSubnetCIDR must be strict subsets of
	// CIDR and disjoint from each other. Defaults are derived with
	// cidrsubnet(CIDR, 8, 1) and cidrsubnet(CIDR, 8, 2).
	PublicSubnetCIDR  string `yaml:"public_subnet_cidr,omitempty"`
	PrivateSubnetCIDR string `yaml:"private_subnet_cidr,omitempty"`
}

// StateConfig configures optional remote storage for the outputs document.
type StateConfig struct {
	// Bucket is an S3 bucket the outputs document is uploaded to after a
	// successful apply. Empty disables the upload.
	Bucket string `yaml:"bucket,omitempty"`

	// Prefix is prepended to the outputs object key.
	Prefix string `yaml:"prefix,omitempty"`
}

// DefaultInstanceType is used when instance_type is not declared.
const DefaultInstanceType = "t3.micro"

// DefaultNetworkCIDR is used when network.cidr is not declared.
const DefaultNetworkCIDR = "10.0.0.0/16"

// LoadFile reads, defaults and validates a stack declaration.
func LoadFile(path string) (*Config, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults fills unset optional fields.
func (c *Config) applyDefaults() {
	if c.InstanceType == "" {
		c.InstanceType = DefaultInstanceType
	}
	if c.Network.CIDR == "" {
		c.Network.CIDR = DefaultNetworkCIDR
	}
	if c.AvailabilityZone == "" && c.Region != "" {
		c.AvailabilityZone = c.Region + "a"
	}
	if c.Network.PublicSubnetCIDR == "" {
		if s, err := CIDRSubnet(c.Network.CIDR, 8, 1); err == nil {
			c.Network.PublicSubnetCIDR = s
		}
	}
	if c.Network.PrivateSubnetCIDR == "" {
		if s, err := CIDRSubnet(c.Network.CIDR, 8, 2); err == nil {
			c.Network.PrivateSubnetCIDR = s
		}
	}
}

// Tags returns the common resource tags for the stack.
func (c *Config) Tags() map[string]string {
	return map[string]string{
		"webvpc.io/stack":      c.Name,
		"webvpc.io/managed-by": "webvpc",
	}
}

// ResourceName builds the Name tag value for a stack resource.
func (c *Config) ResourceName(suffix string) string {
	return c.Name + "-" + suffix
}
