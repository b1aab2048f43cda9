// Package aws wraps the EC2 and IAM APIs behind per-resource managers.
//
// Every Ensure operation is idempotent: it resolves the resource by its Name
// tag (or IAM name) first, validates the found resource against the declared
// shape, and only creates when nothing exists. Every Delete succeeds when
// the resource is already gone. Re-evaluating an unchanged declaration
// therefore performs no mutations.
package aws

import (
	"context"
	"net/netip"
)

// VPC is the provisioned network.
type VPC struct {
	ID   string
	Name string
	CIDR string
}

// SubnetCreateOpts holds all parameters for ensuring a subnet.
type SubnetCreateOpts struct {
	Name             string
	VPCID            string
	CIDR             string
	AvailabilityZone string
	MapPublicIP      bool
	Tags             map[string]string
}

// Subnet is a provisioned subnet.
type Subnet struct {
	ID               string
	Name             string
	VPCID            string
	CIDR             string
	AvailabilityZone string
	MapPublicIP      bool
}

// InternetGateway is a provisioned internet gateway.
type InternetGateway struct {
	ID            string
	Name          string
	AttachedVPCID string // empty when detached
}

// Address is an allocated elastic address.
type Address struct {
	AllocationID string
	Name         string
	PublicIP     string
}

// NATGatewayCreateOpts holds all parameters for ensuring a NAT gateway.
type NATGatewayCreateOpts struct {
	Name         string
	SubnetID     string
	AllocationID string
	Tags         map[string]string
}

// NATGateway is a provisioned NAT gateway.
type NATGateway struct {
	ID           string
	Name         string
	SubnetID     string
	AllocationID string
	State        string
}

// RouteTable is a provisioned route table.
type RouteTable struct {
	ID    string
	Name  string
	VPCID string
}

// RouteTarget names the gateway a route forwards to. Exactly one field is
// set.
type RouteTarget struct {
	InternetGatewayID string
	NATGatewayID      string
}

// IngressRule is one allow-list entry of a security group.
type IngressRule struct {
	Protocol string
	FromPort int32
	ToPort   int32
	Source   netip.Prefix
}

// SecurityGroup is a provisioned security group.
type SecurityGroup struct {
	ID    string
	Name  string
	VPCID string
}

// Role is a provisioned identity role.
type Role struct {
	Name string
	ARN  string
}

// InstanceProfile is a provisioned instance profile.
type InstanceProfile struct {
	Name string
	ARN  string
}

// KeyPair is a registered key pair.
type KeyPair struct {
	Name        string
	Fingerprint string
}

// InstanceCreateOpts holds all parameters for ensuring an instance.
type InstanceCreateOpts struct {
	Name            string
	ImageID         string
	InstanceType    string
	KeyName         string
	SubnetID        string
	SecurityGroupID string
	ProfileName     string
	PublicIP        bool
	UserData        string // plain text, encoded by the client
	Tags            map[string]string
}

// Instance is a provisioned compute instance.
type Instance struct {
	ID        string
	Name      string
	State     string
	SubnetID  string
	PublicIP  string
	PrivateIP string
}

// NetworkManager manages the network and its subnets.
type NetworkManager interface {
	// EnsureVPC ensures the network exists with the given address block
	// and DNS hostnames enabled.
	EnsureVPC(ctx context.Context, name, cidr string, tags map[string]string) (*VPC, error)
	GetVPC(ctx context.Context, name string) (*VPC, error)
	DeleteVPC(ctx context.Context, name string) error

	EnsureSubnet(ctx context.Context, opts SubnetCreateOpts) (*Subnet, error)
	DeleteSubnet(ctx context.Context, name string) error
}

// GatewayManager manages internet gateways, address allocations and NAT
// gateways.
type GatewayManager interface {
	EnsureInternetGateway(ctx context.Context, name string, tags map[string]string) (*InternetGateway, error)
	// EnsureGatewayAttachment binds the gateway to the network. Safe to
	// call when already attached to the same network.
	EnsureGatewayAttachment(ctx context.Context, gatewayID, vpcID string) error
	// DeleteInternetGateway detaches the gateway first when needed.
	DeleteInternetGateway(ctx context.Context, name string) error

	EnsureAddress(ctx context.Context, name string, tags map[string]string) (*Address, error)
	ReleaseAddress(ctx context.Context, name string) error

	// EnsureNATGateway blocks until the gateway reaches available.
	EnsureNATGateway(ctx context.Context, opts NATGatewayCreateOpts) (*NATGateway, error)
	// DeleteNATGateway blocks until the gateway is fully deleted, since
	// the subnet and allocation cannot be released before that.
	DeleteNATGateway(ctx context.Context, name string) error
}

// RouteManager manages route tables, routes and associations.
type RouteManager interface {
	EnsureRouteTable(ctx context.Context, name, vpcID string, tags map[string]string) (*RouteTable, error)
	DeleteRouteTable(ctx context.Context, name string) error

	// EnsureRoute ensures the destination routes to the given target.
	EnsureRoute(ctx context.Context, routeTableID, destination string, target RouteTarget) error

	// EnsureAssociation binds the route table to the subnet and returns
	// the association ID.
	EnsureAssociation(ctx context.Context, routeTableID, subnetID string) (string, error)
}

// SecurityGroupManager manages security rule sets.
type SecurityGroupManager interface {
	// EnsureSecurityGroup ensures the group exists with exactly the given
	// ingress rules.
	EnsureSecurityGroup(ctx context.Context, name, vpcID string, rules []IngressRule, tags map[string]string) (*SecurityGroup, error)
	DeleteSecurityGroup(ctx context.Context, name string) error
}

// IdentityManager manages the instance role and profile.
type IdentityManager interface {
	EnsureRole(ctx context.Context, name, trustPrincipal string, tags map[string]string) (*Role, error)
	AttachRolePolicy(ctx context.Context, roleName, policyARN string) error
	EnsureInstanceProfile(ctx context.Context, name, roleName string, tags map[string]string) (*InstanceProfile, error)
	// DeleteInstanceProfile removes the role from the profile first.
	DeleteInstanceProfile(ctx context.Context, name, roleName string) error
	// DeleteRole detaches the given managed policies first.
	DeleteRole(ctx context.Context, name string, policyARNs []string) error
}

// KeyPairManager manages key pairs. Apply only reads; the keygen command
// imports.
type KeyPairManager interface {
	GetKeyPair(ctx context.Context, name string) (*KeyPair, error)
	ImportKeyPair(ctx context.Context, name string, publicKey []byte, tags map[string]string) (*KeyPair, error)
	DeleteKeyPair(ctx context.Context, name string) error
}

// InstanceManager manages compute instances.
type InstanceManager interface {
	// EnsureInstance launches the instance and blocks until it reaches
	// running, returning its assigned addresses.
	EnsureInstance(ctx context.Context, opts InstanceCreateOpts) (*Instance, error)
	GetInstance(ctx context.Context, name string) (*Instance, error)
	// TerminateInstance blocks until the instance is terminated.
	TerminateInstance(ctx context.Context, name string) error
}

// InfrastructureManager combines all infrastructure interfaces.
type InfrastructureManager interface {
	NetworkManager
	GatewayManager
	RouteManager
	SecurityGroupManager
	IdentityManager
	KeyPairManager
	InstanceManager
}
