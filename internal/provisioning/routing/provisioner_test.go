package routing

import (
	"context"
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
	st, err := stack.Build(cfg, "#!/bin/bash\n")
	require.NoError(t, err)
	ctx := provisioning.NewContext(context.Background(), cfg, st, infra)
	// Results the network phase leaves behind.
	ctx.State.VPCID = "vpc-1"
	ctx.State.PublicSubnetID = "subnet-public"
	ctx.State.PrivateSubnetID = "subnet-private"
	ctx.State.GatewayID = "igw-1"
	return ctx
}

func TestProvisionPlacesNATInPublicSubnet(t *testing.T) {
	var natOpts aws.NATGatewayCreateOpts
	mock := &aws.MockClient{
		EnsureNATGatewayFunc: func(ctx context.Context, opts aws.NATGatewayCreateOpts) (*aws.NATGateway, error) {
			natOpts = opts
			return &aws.NATGateway{ID: "nat-1", Name: opts.Name, State: "available"}, nil
		},
	}

	ctx := testContext(t, mock)
	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, "subnet-public", natOpts.SubnetID)
	assert.Equal(t, "eipalloc-demo-nat-eip", natOpts.AllocationID)
	assert.Equal(t, "nat-1", ctx.State.NATID)
	assert.NotEmpty(t, ctx.State.NATPublicIP)
}

func TestProvisionRoutesTargetCorrectGateways(t *testing.T) {
	routes := map[string]aws.RouteTarget{}
	mock := &aws.MockClient{
		EnsureRouteFunc: func(ctx context.Context, routeTableID, destination string, target aws.RouteTarget) error {
			routes[routeTableID] = target
			return nil
		},
	}

	ctx := testContext(t, mock)
	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, "igw-1", routes[ctx.State.PublicRTID].InternetGatewayID)
	assert.Empty(t, routes[ctx.State.PublicRTID].NATGatewayID)
	assert.Equal(t, ctx.State.NATID, routes[ctx.State.PrivateRTID].NATGatewayID)
	assert.Empty(t, routes[ctx.State.PrivateRTID].InternetGatewayID)
}

func TestProvisionAssociatesEachSubnetOnce(t *testing.T) {
	assocs := map[string]string{}
	mock := &aws.MockClient{
		EnsureAssociationFunc: func(ctx context.Context, routeTableID, subnetID string) (string, error) {
			assocs[subnetID] = routeTableID
			return "rtbassoc-" + subnetID, nil
		},
	}

	ctx := testContext(t, mock)
	require.NoError(t, NewProvisioner().Provision(ctx))

	require.Len(t, assocs, 2)
	assert.Equal(t, ctx.State.PublicRTID, assocs["subnet-public"])
	assert.Equal(t, ctx.State.PrivateRTID, assocs["subnet-private"])
}
