// Package stack declares the webvpc resource graph.
//
// A stack is a fixed set of typed resource nodes (network, subnets,
// gateways, routing, a security rule set, an identity role/profile and two
// compute instances) connected by depends-on edges. The graph carries the
// ordering contract the provisioning pipeline evaluates: creation follows a
// topological order of the edges and destruction follows its reverse.
package stack

import (
	"fmt"
	"net/netip"

	"github.com/cloudshore/webvpc/internal/config"
)

// Kind identifies the type of a resource node.
type Kind string

// Resource node kinds, in rough creation order.
const (
	KindNetwork               Kind = "network"
	KindSubnet                Kind = "subnet"
	KindInternetGateway       Kind = "internet-gateway"
	KindGatewayAttachment     Kind = "gateway-attachment"
	KindAddressAllocation     Kind = "address-allocation"
	KindNATGateway            Kind = "nat-gateway"
	KindRouteTable            Kind = "route-table"
	KindRoute                 Kind = "route"
	KindRouteTableAssociation Kind = "route-table-association"
	KindSecurityRuleSet       Kind = "security-rule-set"
	KindRole                  Kind = "role"
	KindRolePolicyAttachment  Kind = "role-policy-attachment"
	KindInstanceProfile       Kind = "instance-profile"
	KindInstance              Kind = "instance"
)

// EC2TrustPrincipal is the service principal the instance role must trust.
const EC2TrustPrincipal = "ec2.amazonaws.com"

// SessionManagerPolicyARN grants the role-based management channel for the
// private instance (no inbound network path required).
const SessionManagerPolicyARN = "arn:aws:iam::aws:policy/AmazonSSMManagedInstanceCore"

// DefaultRouteCIDR is the destination block of both default routes.
const DefaultRouteCIDR = "0.0.0.0/0"

// Resource is one node of the graph. Identity is the declared name.
type Resource struct {
	Name      string
	Kind      Kind
	DependsOn []string
}

// Network is the isolated virtual address space of the stack.
type Network struct {
	Name string
	CIDR netip.Prefix
}

// Subnet is a contiguous address range inside the network, bound to a zone.
type Subnet struct {
	Name   string
	CIDR   netip.Prefix
	Zone   string
	Public bool // assign public addresses to instances launched here
}

// GatewayAttachment binds the internet gateway to the network. It is a
// first-class node because routes through the gateway must order after it.
type GatewayAttachment struct {
	Name    string
	Gateway string
	Network string
}

// NATGateway lets the private subnet initiate outbound traffic. It consumes
// an allocated public address and must reside in the public subnet.
type NATGateway struct {
	Name       string
	Subnet     string
	Allocation string
}

// Route maps a destination block to a gateway target inside a route table.
type Route struct {
	Name        string
	Table       string
	Destination netip.Prefix
	Target      string // internet gateway or NAT gateway node name
	TargetKind  Kind
}

// Association binds a route table to a subnet.
type Association struct {
	Name   string
	Table  string
	Subnet string
}

// IngressRule permits traffic by protocol, port range and source block.
// Rules are explicit allow-list entries; there is no implicit deny override.
type IngressRule struct {
	Protocol string
	FromPort int
	ToPort   int
	Source   netip.Prefix
}

// SecurityRuleSet is the allow-list attached to the network and referenced
// by both instances.
type SecurityRuleSet struct {
	Name    string
	Ingress []IngressRule
}

// Role is the identity the compute service assumes on behalf of instances.
type Role struct {
	Name           string
	TrustPrincipal string
	PolicyARN      string
}

// Instance is one compute node of the stack.
type Instance struct {
	Name        string
	Subnet      string
	MachineType string
	ImageID     string
	KeyName     string
	RuleSet     string
	Profile     string
	PublicIP    bool
	UserData    string // first-boot script, empty for the private instance
}

// Stack is the fully resolved resource graph for one configuration.
type Stack struct {
	Config *config.Config

	Network         Network
	PublicSubnet    Subnet
	PrivateSubnet   Subnet
	InternetGateway string
	Attachment      GatewayAttachment
	Allocation      string
	NAT             NATGateway
	PublicTable     string
	PrivateTable    string
	PublicRoute     Route
	PrivateRoute    Route
	PublicAssoc     Association
	PrivateAssoc    Association
	RuleSet         SecurityRuleSet
	Role            Role
	Profile         string
	PublicInstance  Instance
	PrivateInstance Instance

	// resources holds every node in declaration order; the slice order is
	// only a tie-breaker, actual ordering comes from DependsOn edges.
	resources []Resource
}

// Build resolves a configuration into the stack graph. webUserData is the
// first-boot script for the public instance.
func Build(cfg *config.Config, webUserData string) (*Stack, error) {
	networkCIDR, err := netip.ParsePrefix(cfg.Network.CIDR)
	if err != nil {
		return nil, fmt.Errorf("invalid network cidr: %w", err)
	}
	publicCIDR, err := netip.ParsePrefix(cfg.Network.PublicSubnetCIDR)
	if err != nil {
		return nil, fmt.Errorf("invalid public subnet cidr: %w", err)
	}
	privateCIDR, err := netip.ParsePrefix(cfg.Network.PrivateSubnetCIDR)
	if err != nil {
		return nil, fmt.Errorf("invalid private subnet cidr: %w", err)
	}
	defaultRoute := netip.MustParsePrefix(DefaultRouteCIDR)
	anySource := netip.MustParsePrefix("0.0.0.0/0")

	n := cfg.ResourceName

	s := &Stack{
		Config:          cfg,
		Network:         Network{Name: n("network"), CIDR: networkCIDR},
		PublicSubnet:    Subnet{Name: n("public"), CIDR: publicCIDR, Zone: cfg.AvailabilityZone, Public: true},
		PrivateSubnet:   Subnet{Name: n("private"), CIDR: privateCIDR, Zone: cfg.AvailabilityZone},
		InternetGateway: n("igw"),
		Attachment:      GatewayAttachment{Name: n("igw-attachment"), Gateway: n("igw"), Network: n("network")},
		Allocation:      n("nat-eip"),
		NAT:             NATGateway{Name: n("nat"), Subnet: n("public"), Allocation: n("nat-eip")},
		PublicTable:     n("public-rt"),
		PrivateTable:    n("private-rt"),
		PublicRoute: Route{
			Name: n("public-default-route"), Table: n("public-rt"),
			Destination: defaultRoute, Target: n("igw"), TargetKind: KindInternetGateway,
		},
		PrivateRoute: Route{
			Name: n("private-default-route"), Table: n("private-rt"),
			Destination: defaultRoute, Target: n("nat"), TargetKind: KindNATGateway,
		},
		PublicAssoc:  Association{Name: n("public-rta"), Table: n("public-rt"), Subnet: n("public")},
		PrivateAssoc: Association{Name: n("private-rta"), Table: n("private-rt"), Subnet: n("private")},
		RuleSet: SecurityRuleSet{
			Name: n("web-sg"),
			Ingress: []IngressRule{
				{Protocol: "tcp", FromPort: 22, ToPort: 22, Source: anySource},
				{Protocol: "tcp", FromPort: 80, ToPort: 80, Source: anySource},
			},
		},
		Role:    Role{Name: n("role"), TrustPrincipal: EC2TrustPrincipal, PolicyARN: SessionManagerPolicyARN},
		Profile: n("profile"),
		PublicInstance: Instance{
			Name: n("web"), Subnet: n("public"),
			MachineType: cfg.InstanceType, ImageID: cfg.ImageID, KeyName: cfg.KeyName,
			RuleSet: n("web-sg"), Profile: n("profile"),
			PublicIP: true, UserData: webUserData,
		},
		PrivateInstance: Instance{
			Name: n("app"), Subnet: n("private"),
			MachineType: cfg.InstanceType, ImageID: cfg.ImageID, KeyName: cfg.KeyName,
			RuleSet: n("web-sg"), Profile: n("profile"),
		},
	}

	s.resources = []Resource{
		{Name: s.Network.Name, Kind: KindNetwork},
		{Name: s.PublicSubnet.Name, Kind: KindSubnet, DependsOn: []string{s.Network.Name}},
		{Name: s.PrivateSubnet.Name, Kind: KindSubnet, DependsOn: []string{s.Network.Name}},
		{Name: s.InternetGateway, Kind: KindInternetGateway},
		{Name: s.Attachment.Name, Kind: KindGatewayAttachment, DependsOn: []string{s.InternetGateway, s.Network.Name}},
		// The allocation models use of the attached gateway's egress path,
		// so it orders after the attachment, not just the gateway.
		{Name: s.Allocation, Kind: KindAddressAllocation, DependsOn: []string{s.Attachment.Name}},
		{Name: s.NAT.Name, Kind: KindNATGateway, DependsOn: []string{s.Allocation, s.PublicSubnet.Name, s.Attachment.Name}},
		{Name: s.PublicTable, Kind: KindRouteTable, DependsOn: []string{s.Network.Name}},
		{Name: s.PrivateTable, Kind: KindRouteTable, DependsOn: []string{s.Network.Name}},
		// Load-bearing edge: a route through the gateway before the
		// attachment completes would reference a gateway not yet bound
		// to the network.
		{Name: s.PublicRoute.Name, Kind: KindRoute, DependsOn: []string{s.PublicTable, s.Attachment.Name}},
		{Name: s.PrivateRoute.Name, Kind: KindRoute, DependsOn: []string{s.PrivateTable, s.NAT.Name}},
		{Name: s.PublicAssoc.Name, Kind: KindRouteTableAssociation, DependsOn: []string{s.PublicTable, s.PublicSubnet.Name}},
		{Name: s.PrivateAssoc.Name, Kind: KindRouteTableAssociation, DependsOn: []string{s.PrivateTable, s.PrivateSubnet.Name}},
		{Name: s.RuleSet.Name, Kind: KindSecurityRuleSet, DependsOn: []string{s.Network.Name}},
		{Name: s.Role.Name, Kind: KindRole},
		{Name: n("role-policy"), Kind: KindRolePolicyAttachment, DependsOn: []string{s.Role.Name}},
		{Name: s.Profile, Kind: KindInstanceProfile, DependsOn: []string{s.Role.Name, n("role-policy")}},
		{Name: s.PublicInstance.Name, Kind: KindInstance, DependsOn: []string{s.PublicSubnet.Name, s.RuleSet.Name, s.Profile, s.PublicAssoc.Name}},
		{Name: s.PrivateInstance.Name, Kind: KindInstance, DependsOn: []string{s.PrivateSubnet.Name, s.RuleSet.Name, s.Profile, s.PrivateAssoc.Name}},
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Resources returns every node in declaration order.
func (s *Stack) Resources() []Resource {
	out := make([]Resource, len(s.resources))
	copy(out, s.resources)
	return out
}

// Lookup returns the node with the given name.
func (s *Stack) Lookup(name string) (Resource, bool) {
	for _, r := range s.resources {
		if r.Name == name {
			return r, true
		}
	}
	return Resource{}, false
}
