package config

import (
	"fmt"
	"net/netip"
	"regexp"
	"strings"
)

// stackNameRegex enforces DNS-safe stack names: lowercase alphanumeric and
// hyphens, starting with a letter.
var stackNameRegex = regexp.MustCompile(`^[a-z][a-z0-9-]{0,31}$`)

// regionRegex matches AWS region identifiers like us-east-1 or eu-central-1.
var regionRegex = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d$`)

// imageIDRegex matches machine image identifiers.
var imageIDRegex = regexp.MustCompile(`^ami-[0-9a-f]{8,17}$`)

// Validate checks the configuration and returns a detailed error if any
// declared value is inconsistent.
func (c *Config) Validate() error {
	if c.Name == "" {
		return fmt.Errorf("name is required")
	}
	if !stackNameRegex.MatchString(c.Name) {
		return fmt.Errorf("invalid name %q: must be lowercase alphanumeric with hyphens, starting with a letter", c.Name)
	}
	if c.Region == "" {
		return fmt.Errorf("region is required")
	}
	if !regionRegex.MatchString(c.Region) {
		return fmt.Errorf("invalid region %q", c.Region)
	}
	if c.AvailabilityZone != "" && !strings.HasPrefix(c.AvailabilityZone, c.Region) {
		return fmt.Errorf("availability zone %q is not in region %q", c.AvailabilityZone, c.Region)
	}
	if c.KeyName == "" {
		return fmt.Errorf("key_name is required: it must reference an existing key pair")
	}
	if c.ImageID == "" {
		return fmt.Errorf("image_id is required")
	}
	if !imageIDRegex.MatchString(c.ImageID) {
		return fmt.Errorf("invalid image_id %q: expected an ami- identifier", c.ImageID)
	}
	if c.InstanceType == "" {
		return fmt.Errorf("instance_type is required")
	}

	if err := c.validateNetwork(); err != nil {
		return fmt.Errorf("network validation failed: %w", err)
	}

	return nil
}

// validateNetwork checks the declared address layout: all blocks parse, both
// subnets are strict subsets of the network block, and the subnets do not
// overlap each other.
func (c *Config) validateNetwork() error {
	network, err := netip.ParsePrefix(c.Network.CIDR)
	if err != nil {
		return fmt.Errorf("invalid network.cidr: %w", err)
	}
	if !network.Addr().Is4() {
		return fmt.Errorf("network.cidr must be an IPv4 block, got %s", c.Network.CIDR)
	}

	public, err := netip.ParsePrefix(c.Network.PublicSubnetCIDR)
	if err != nil {
		return fmt.Errorf("invalid network.public_subnet_cidr: %w", err)
	}
	private, err := netip.ParsePrefix(c.Network.PrivateSubnetCIDR)
	if err != nil {
		return fmt.Errorf("invalid network.private_subnet_cidr: %w", err)
	}

	for name, subnet := range map[string]netip.Prefix{
		"public_subnet_cidr":  public,
		"private_subnet_cidr": private,
	} {
		if !PrefixInside(subnet, network) {
			return fmt.Errorf("%s %s is not inside network %s", name, subnet, network)
		}
		if subnet.Bits() <= network.Bits() {
			return fmt.Errorf("%s %s must be a strict subset of network %s", name, subnet, network)
		}
	}

	if public.Overlaps(private) {
		return fmt.Errorf("public subnet %s overlaps private subnet %s", public, private)
	}

	return nil
}
