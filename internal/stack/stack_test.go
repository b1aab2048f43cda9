package stack

import (
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudshore/webvpc/internal/config"
)

func testConfig() *config.Config {
	return &config.Config{
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
}

func testStack(t *testing.T) *Stack {
	t.Helper()
	s, err := Build(testConfig(), "#!/bin/bash\necho hi\n")
	require.NoError(t, err)
	return s
}

func TestBuild(t *testing.T) {
	s := testStack(t)

	assert.Equal(t, "demo-network", s.Network.Name)
	assert.Equal(t, "10.0.0.0/16", s.Network.CIDR.String())
	assert.True(t, s.PublicSubnet.Public)
	assert.False(t, s.PrivateSubnet.Public)
	assert.Equal(t, "us-east-1a", s.PublicSubnet.Zone)
	assert.Equal(t, s.PublicSubnet.Name, s.NAT.Subnet)
	assert.Equal(t, EC2TrustPrincipal, s.Role.TrustPrincipal)
	assert.Equal(t, SessionManagerPolicyARN, s.Role.PolicyARN)
	assert.NotEmpty(t, s.PublicInstance.UserData)
	assert.Empty(t, s.PrivateInstance.UserData)
	assert.Len(t, s.Resources(), 19)
}

func TestBuildRejectsBadCIDR(t *testing.T) {
	cfg := testConfig()
	cfg.Network.PublicSubnetCIDR = "bogus"
	_, err := Build(cfg, "#!/bin/bash\n")
	assert.ErrorContains(t, err, "invalid public subnet cidr")
}

// orderIndex maps resource name to its position in the given order.
func orderIndex(order []Resource) map[string]int {
	idx := make(map[string]int, len(order))
	for i, r := range order {
		idx[r.Name] = i
	}
	return idx
}

func TestCreationOrder(t *testing.T) {
	s := testStack(t)

	order, err := s.CreationOrder()
	require.NoError(t, err)
	require.Len(t, order, len(s.Resources()))

	idx := orderIndex(order)

	// Every node appears after each of its dependencies.
	for _, r := range s.Resources() {
		for _, dep := range r.DependsOn {
			assert.Less(t, idx[dep], idx[r.Name], "%s must follow %s", r.Name, dep)
		}
	}

	// The ordering constraints the routing setup depends on.
	assert.Less(t, idx["demo-network"], idx["demo-public"])
	assert.Less(t, idx["demo-igw-attachment"], idx["demo-public-default-route"])
	assert.Less(t, idx["demo-igw-attachment"], idx["demo-nat-eip"])
	assert.Less(t, idx["demo-nat-eip"], idx["demo-nat"])
	assert.Less(t, idx["demo-nat"], idx["demo-private-default-route"])
	assert.Less(t, idx["demo-profile"], idx["demo-web"])
	assert.Less(t, idx["demo-web-sg"], idx["demo-app"])
}

func TestCreationOrderDeterministic(t *testing.T) {
	s := testStack(t)

	first, err := s.CreationOrder()
	require.NoError(t, err)
	second, err := s.CreationOrder()
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDestroyOrderIsReverse(t *testing.T) {
	s := testStack(t)

	creation, err := s.CreationOrder()
	require.NoError(t, err)
	destroy, err := s.DestroyOrder()
	require.NoError(t, err)

	require.Len(t, destroy, len(creation))
	for i := range creation {
		assert.Equal(t, creation[i].Name, destroy[len(destroy)-1-i].Name)
	}

	// Instances are torn down before the network.
	idx := orderIndex(destroy)
	assert.Less(t, idx["demo-web"], idx["demo-network"])
	assert.Less(t, idx["demo-nat"], idx["demo-igw-attachment"])
}

func TestCreationOrderRejectsCycle(t *testing.T) {
	s := testStack(t)
	for i := range s.resources {
		if s.resources[i].Name == "demo-network" {
			s.resources[i].DependsOn = []string{"demo-web"}
		}
	}

	_, err := s.CreationOrder()
	assert.ErrorContains(t, err, "cycle")
}

func TestCreationOrderRejectsUnknownDependency(t *testing.T) {
	s := testStack(t)
	s.resources = append(s.resources, Resource{
		Name: "demo-extra", Kind: KindRoute, DependsOn: []string{"demo-missing"},
	})

	_, err := s.CreationOrder()
	assert.ErrorContains(t, err, "undeclared")
}

func TestValidateAttachmentEdgeIsLoadBearing(t *testing.T) {
	s := testStack(t)

	// Dropping the attachment dependency from the public route makes the
	// declaration invalid even though the graph stays acyclic.
	for i := range s.resources {
		if s.resources[i].Name == s.PublicRoute.Name {
			s.resources[i].DependsOn = []string{s.PublicTable}
		}
	}

	err := s.Validate()
	assert.ErrorContains(t, err, "must depend on gateway attachment")
}

func TestValidateRouting(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Stack)
		errorContains string
	}{
		{
			name:          "private route targets internet gateway",
			mutate:        func(s *Stack) { s.PrivateRoute.Target = s.InternetGateway; s.PrivateRoute.TargetKind = KindInternetGateway },
			errorContains: "must target the NAT gateway",
		},
		{
			name:          "public route targets NAT gateway",
			mutate:        func(s *Stack) { s.PublicRoute.Target = s.NAT.Name; s.PublicRoute.TargetKind = KindNATGateway },
			errorContains: "must target the internet gateway",
		},
		{
			name:          "NAT in private subnet",
			mutate:        func(s *Stack) { s.NAT.Subnet = s.PrivateSubnet.Name },
			errorContains: "must reside in the public subnet",
		},
		{
			name:          "NAT without allocation",
			mutate:        func(s *Stack) { s.NAT.Allocation = "" },
			errorContains: "allocated public address",
		},
		{
			name:          "subnet with two route tables",
			mutate:        func(s *Stack) { s.PrivateAssoc.Subnet = s.PublicSubnet.Name },
			errorContains: "associated with both",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStack(t)
			tt.mutate(s)
			assert.ErrorContains(t, s.Validate(), tt.errorContains)
		})
	}
}

func TestValidateRuleSet(t *testing.T) {
	anySource := netip.MustParsePrefix("0.0.0.0/0")

	tests := []struct {
		name          string
		mutate        func(*Stack)
		errorContains string
	}{
		{
			name: "extra port",
			mutate: func(s *Stack) {
				s.RuleSet.Ingress = append(s.RuleSet.Ingress, IngressRule{Protocol: "tcp", FromPort: 443, ToPort: 443, Source: anySource})
			},
			errorContains: "unexpected ingress port 443",
		},
		{
			name:          "missing port 80",
			mutate:        func(s *Stack) { s.RuleSet.Ingress = s.RuleSet.Ingress[:1] },
			errorContains: "missing ingress rule for port 80",
		},
		{
			name: "udp rule",
			mutate: func(s *Stack) {
				s.RuleSet.Ingress[0].Protocol = "udp"
			},
			errorContains: "unexpected ingress protocol",
		},
		{
			name: "restricted source",
			mutate: func(s *Stack) {
				s.RuleSet.Ingress[1].Source = netip.MustParsePrefix("10.0.0.0/8")
			},
			errorContains: "must allow any source",
		},
		{
			name: "duplicate rule",
			mutate: func(s *Stack) {
				s.RuleSet.Ingress = append(s.RuleSet.Ingress, s.RuleSet.Ingress[0])
			},
			errorContains: "duplicate ingress rule",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStack(t)
			tt.mutate(s)
			assert.ErrorContains(t, s.Validate(), tt.errorContains)
		})
	}
}

func TestValidateIdentityAndInstances(t *testing.T) {
	tests := []struct {
		name          string
		mutate        func(*Stack)
		errorContains string
	}{
		{
			name:          "wrong trust principal",
			mutate:        func(s *Stack) { s.Role.TrustPrincipal = "lambda.amazonaws.com" },
			errorContains: "trust principal",
		},
		{
			name:          "private instance with public address",
			mutate:        func(s *Stack) { s.PrivateInstance.PublicIP = true },
			errorContains: "must not get a public address",
		},
		{
			name:          "private instance with boot script",
			mutate:        func(s *Stack) { s.PrivateInstance.UserData = "#!/bin/bash\n" },
			errorContains: "must not declare a first-boot script",
		},
		{
			name:          "public instance without boot script",
			mutate:        func(s *Stack) { s.PublicInstance.UserData = "" },
			errorContains: "requires a first-boot script",
		},
		{
			name:          "instance without key reference",
			mutate:        func(s *Stack) { s.PublicInstance.KeyName = "" },
			errorContains: "requires a key pair reference",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := testStack(t)
			tt.mutate(s)
			assert.ErrorContains(t, s.Validate(), tt.errorContains)
		})
	}
}
