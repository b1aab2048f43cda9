package access

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
	ctx.State.VPCID = "vpc-1"
	return ctx
}

func TestProvisionFailsWithoutKeyPair(t *testing.T) {
	mock := &aws.MockClient{
		GetKeyPairFunc: func(ctx context.Context, name string) (*aws.KeyPair, error) {
			return nil, nil
		},
	}

	err := NewProvisioner().Provision(testContext(t, mock))
	assert.ErrorContains(t, err, "not registered")
}

func TestProvisionPassesDeclaredIngressRules(t *testing.T) {
	var gotRules []aws.IngressRule
	mock := &aws.MockClient{
		EnsureSecurityGroupFunc: func(ctx context.Context, name, vpcID string, rules []aws.IngressRule, tags map[string]string) (*aws.SecurityGroup, error) {
			gotRules = rules
			return &aws.SecurityGroup{ID: "sg-1", Name: name, VPCID: vpcID}, nil
		},
	}

	ctx := testContext(t, mock)
	require.NoError(t, NewProvisioner().Provision(ctx))

	require.Len(t, gotRules, 2)
	assert.Equal(t, int32(22), gotRules[0].FromPort)
	assert.Equal(t, int32(80), gotRules[1].FromPort)
	for _, r := range gotRules {
		assert.Equal(t, "tcp", r.Protocol)
		assert.Equal(t, "0.0.0.0/0", r.Source.String())
	}
	assert.Equal(t, "sg-1", ctx.State.SecurityGroupID)
}

func TestProvisionWiresIdentityChain(t *testing.T) {
	var trust, attachedPolicy, profileRole string
	mock := &aws.MockClient{
		EnsureRoleFunc: func(ctx context.Context, name, trustPrincipal string, tags map[string]string) (*aws.Role, error) {
			trust = trustPrincipal
			return &aws.Role{Name: name, ARN: "arn:role/" + name}, nil
		},
		AttachRolePolicyFunc: func(ctx context.Context, roleName, policyARN string) error {
			attachedPolicy = policyARN
			return nil
		},
		EnsureInstanceProfileFunc: func(ctx context.Context, name, roleName string, tags map[string]string) (*aws.InstanceProfile, error) {
			profileRole = roleName
			return &aws.InstanceProfile{Name: name, ARN: "arn:profile/" + name}, nil
		},
	}

	ctx := testContext(t, mock)
	require.NoError(t, NewProvisioner().Provision(ctx))

	assert.Equal(t, stack.EC2TrustPrincipal, trust)
	assert.Equal(t, stack.SessionManagerPolicyARN, attachedPolicy)
	assert.Equal(t, "demo-role", profileRole)
	assert.Equal(t, "arn:role/demo-role", ctx.State.RoleARN)
	assert.Equal(t, "arn:profile/demo-profile", ctx.State.ProfileARN)
}
