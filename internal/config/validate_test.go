package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Name:             "demo",
		Region:           "us-east-1",
		AvailabilityZone: "us-east-1a",
		KeyName:          "deployer",
		ImageID:          "ami-0c02fb55956c7d316",
		InstanceType:     "t3.micro",
		Network: NetworkConfig{
			CIDR:              "10.0.0.0/16",
			PublicSubnetCIDR:  "10.0.1.0/24",
			PrivateSubnetCIDR: "10.0.2.0/24",
		},
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Config)
		errorContains string
	}{
		{
			name:   "valid",
			mutate: func(_ *Config) {},
		},
		{
			name:          "missing name",
			mutate:        func(c *Config) { c.Name = "" },
			errorContains: "name is required",
		},
		{
			name:          "uppercase name",
			mutate:        func(c *Config) { c.Name = "Demo" },
			errorContains: "invalid name",
		},
		{
			name:          "name starting with digit",
			mutate:        func(c *Config) { c.Name = "1demo" },
			errorContains: "invalid name",
		},
		{
			name:          "bad region",
			mutate:        func(c *Config) { c.Region = "mars" },
			errorContains: "invalid region",
		},
		{
			name:          "zone outside region",
			mutate:        func(c *Config) { c.AvailabilityZone = "eu-central-1a" },
			errorContains: "not in region",
		},
		{
			name:          "missing key",
			mutate:        func(c *Config) { c.KeyName = "" },
			errorContains: "key_name is required",
		},
		{
			name:          "bad image id",
			mutate:        func(c *Config) { c.ImageID = "img-123" },
			errorContains: "invalid image_id",
		},
		{
			name:          "subnet outside network",
			mutate:        func(c *Config) { c.Network.PublicSubnetCIDR = "192.168.1.0/24" },
			errorContains: "not inside network",
		},
		{
			name: "subnet equal to network",
			mutate: func(c *Config) {
				c.Network.PublicSubnetCIDR = "10.0.0.0/16"
			},
			errorContains: "strict subset",
		},
		{
			name: "overlapping subnets",
			mutate: func(c *Config) {
				c.Network.PublicSubnetCIDR = "10.0.2.0/23"
			},
			errorContains: "overlaps",
		},
		{
			name:          "ipv6 network",
			mutate:        func(c *Config) { c.Network.CIDR = "fd00::/64" },
			errorContains: "IPv4",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.errorContains == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errorContains)
		})
	}
}
