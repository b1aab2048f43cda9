package compute

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudshore/webvpc/internal/config"
	"github.com/cloudshore/webvpc/internal/platform/aws"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/stack"
)

func testContext(t *testing.T, infra aws.InfrastructureManager) *provisioning.Context {
	t.Helper()
	cfg := &config.Config{
		Name:             "demo",
		Region:           "us-east-1",
		AvailabilityZone: "us-east-1a",
		KeyName:          "deployer",
		ImageID:          "ami-0c02fb55956c7d316",
		InstanceType:     "t3.micro",
		Network: config.NetworkConfig{
			CIDR:              "10.0.0.0/16",
			PublicSubnetCIDR:  "10.0.1.0/24",
			PrivateSubnetCIDR: "10.0.2.0/24",
		},
	}
	st, err := stack.Build(cfg, "#!/bin/bash\ndnf install -y httpd\n")
	require.NoError(t, err)
	ctx := provisioning.NewContext(context.Background(), cfg, st, infra)
	ctx.State.PublicSubnetID = "subnet-public"
	ctx.State.PrivateSubnetID = "subnet-private"
	ctx.State.SecurityGroupID = "sg-1"
	return ctx
}

func TestProvisionSplitsInstancesAcrossSubnets(t *testing.T) {
	launched := map[string]aws.InstanceCreateOpts{}
	mock := &aws.MockClient{
		EnsureInstanceFunc: func(ctx context.Context, opts aws.InstanceCreateOpts) (*aws.Instance, error) {
			launched[opts.Name] = opts
			inst := &aws.Instance{ID: "i-" + opts.Name, Name: opts.Name, State: "running", PrivateIP: "10.0.2.5"}
			if opts.PublicIP {
				inst.PublicIP = "198.51.100.7"
			}
			return inst, nil
		},
	}

	ctx := testContext(t, mock)
	require.NoError(t, NewProvisioner().Provision(ctx))

	web := launched["demo-web"]
	assert.Equal(t, "subnet-public", web.SubnetID)
	assert.True(t, web.PublicIP)
	assert.NotEmpty(t, web.UserData)
	assert.Equal(t, "demo-profile", web.ProfileName)

	app := launched["demo-app"]
	assert.Equal(t, "subnet-private", app.SubnetID)
	assert.False(t, app.PublicIP)
	assert.Empty(t, app.UserData)

	assert.Equal(t, "i-demo-web", ctx.State.PublicInstanceID)
	assert.Equal(t, "i-demo-app", ctx.State.PrivateInstanceID)
	assert.Equal(t, "198.51.100.7", ctx.State.PublicInstanceIP)
	assert.Equal(t, "10.0.2.5", ctx.State.PrivateInstanceIP)
}

func TestProvisionRetriesProfilePropagation(t *testing.T) {
	attempts := 0
	mock := &aws.MockClient{
		EnsureInstanceFunc: func(ctx context.Context, opts aws.InstanceCreateOpts) (*aws.Instance, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("Invalid IAM Instance Profile name")
			}
			return &aws.Instance{ID: "i-" + opts.Name, Name: opts.Name, State: "running"}, nil
		},
	}

	ctx := testContext(t, mock)
	ctx.Timeouts.RetryInitialDelay = 0
	require.NoError(t, NewProvisioner().Provision(ctx))
	// First launch retried once, second launch clean.
	assert.Equal(t, 3, attempts)
}

func TestProvisionDoesNotRetryOtherErrors(t *testing.T) {
	attempts := 0
	boom := errors.New("InsufficientInstanceCapacity")
	mock := &aws.MockClient{
		EnsureInstanceFunc: func(ctx context.Context, opts aws.InstanceCreateOpts) (*aws.Instance, error) {
			attempts++
			return nil, boom
		},
	}

	ctx := testContext(t, mock)
	ctx.Timeouts.RetryInitialDelay = 0
	err := NewProvisioner().Provision(ctx)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, attempts)
}
