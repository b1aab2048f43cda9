package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "webvpc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeConfig(t, `
name: demo
region: us-east-1
key_name: deployer
image_id: ami-0c02fb55956c7d316
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Name)
	assert.Equal(t, "us-east-1a", cfg.AvailabilityZone)
	assert.Equal(t, DefaultInstanceType, cfg.InstanceType)
	assert.Equal(t, "10.0.0.0/16", cfg.Network.CIDR)
	assert.Equal(t, "10.0.1.0/24", cfg.Network.PublicSubnetCIDR)
	assert.Equal(t, "10.0.2.0/24", cfg.Network.PrivateSubnetCIDR)
}

func TestLoadFileExplicitNetwork(t *testing.T) {
	path := writeConfig(t, `
name: demo
region: eu-central-1
availability_zone: eu-central-1b
key_name: deployer
image_id: ami-0abcdef12
instance_type: t3.small
network:
  cidr: 172.16.0.0/16
  public_subnet_cidr: 172.16.10.0/24
  private_subnet_cidr: 172.16.20.0/24
state:
  bucket: demo-outputs
`)

	cfg, err := LoadFile(path)
	require.NoError(t, err)

	assert.Equal(t, "eu-central-1b", cfg.AvailabilityZone)
	assert.Equal(t, "t3.small", cfg.InstanceType)
	assert.Equal(t, "172.16.10.0/24", cfg.Network.PublicSubnetCIDR)
	assert.Equal(t, "demo-outputs", cfg.State.Bucket)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoadFileInvalidYAML(t *testing.T) {
	path := writeConfig(t, "name: [unclosed")
	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "unmarshal")
}

func TestLoadFileValidationFailure(t *testing.T) {
	path := writeConfig(t, `
name: demo
region: us-east-1
image_id: ami-0c02fb55956c7d316
`)
	_, err := LoadFile(path)
	assert.ErrorContains(t, err, "key_name is required")
}

func TestTags(t *testing.T) {
	cfg := &Config{Name: "demo"}
	tags := cfg.Tags()
	assert.Equal(t, "demo", tags["webvpc.io/stack"])
	assert.Equal(t, "webvpc", tags["webvpc.io/managed-by"])
	assert.Equal(t, "demo-web", cfg.ResourceName("web"))
}
