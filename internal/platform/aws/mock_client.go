package aws

import "context"

// MockClient implements InfrastructureManager with overridable func fields.
// Unset funcs return benign zero values, so tests only wire the calls they
// care about.
type MockClient struct {
	EnsureVPCFunc    func(ctx context.Context, name, cidr string, tags map[string]string) (*VPC, error)
	GetVPCFunc       func(ctx context.Context, name string) (*VPC, error)
	DeleteVPCFunc    func(ctx context.Context, name string) error
	EnsureSubnetFunc func(ctx context.Context, opts SubnetCreateOpts) (*Subnet, error)
	DeleteSubnetFunc func(ctx context.Context, name string) error

	EnsureInternetGatewayFunc   func(ctx context.Context, name string, tags map[string]string) (*InternetGateway, error)
	EnsureGatewayAttachmentFunc func(ctx context.Context, gatewayID, vpcID string) error
	DeleteInternetGatewayFunc   func(ctx context.Context, name string) error
	EnsureAddressFunc           func(ctx context.Context, name string, tags map[string]string) (*Address, error)
	ReleaseAddressFunc          func(ctx context.Context, name string) error
	EnsureNATGatewayFunc        func(ctx context.Context, opts NATGatewayCreateOpts) (*NATGateway, error)
	DeleteNATGatewayFunc        func(ctx context.Context, name string) error

	EnsureRouteTableFunc  func(ctx context.Context, name, vpcID string, tags map[string]string) (*RouteTable, error)
	DeleteRouteTableFunc  func(ctx context.Context, name string) error
	EnsureRouteFunc       func(ctx context.Context, routeTableID, destination string, target RouteTarget) error
	EnsureAssociationFunc func(ctx context.Context, routeTableID, subnetID string) (string, error)

	EnsureSecurityGroupFunc func(ctx context.Context, name, vpcID string, rules []IngressRule, tags map[string]string) (*SecurityGroup, error)
	DeleteSecurityGroupFunc func(ctx context.Context, name string) error

	EnsureRoleFunc            func(ctx context.Context, name, trustPrincipal string, tags map[string]string) (*Role, error)
	AttachRolePolicyFunc      func(ctx context.Context, roleName, policyARN string) error
	EnsureInstanceProfileFunc func(ctx context.Context, name, roleName string, tags map[string]string) (*InstanceProfile, error)
	DeleteInstanceProfileFunc func(ctx context.Context, name, roleName string) error
	DeleteRoleFunc            func(ctx context.Context, name string, policyARNs []string) error

	GetKeyPairFunc    func(ctx context.Context, name string) (*KeyPair, error)
	ImportKeyPairFunc func(ctx context.Context, name string, publicKey []byte, tags map[string]string) (*KeyPair, error)
	DeleteKeyPairFunc func(ctx context.Context, name string) error

	EnsureInstanceFunc    func(ctx context.Context, opts InstanceCreateOpts) (*Instance, error)
	GetInstanceFunc       func(ctx context.Context, name string) (*Instance, error)
	TerminateInstanceFunc func(ctx context.Context, name string) error
}

var _ InfrastructureManager = (*MockClient)(nil)

func (m *MockClient) EnsureVPC(ctx context.Context, name, cidr string, tags map[string]string) (*VPC, error) {
	if m.EnsureVPCFunc != nil {
		return m.EnsureVPCFunc(ctx, name, cidr, tags)
	}
	return &VPC{ID: "vpc-" + name, Name: name, CIDR: cidr}, nil
}

func (m *MockClient) GetVPC(ctx context.Context, name string) (*VPC, error) {
	if m.GetVPCFunc != nil {
		return m.GetVPCFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockClient) DeleteVPC(ctx context.Context, name string) error {
	if m.DeleteVPCFunc != nil {
		return m.DeleteVPCFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureSubnet(ctx context.Context, opts SubnetCreateOpts) (*Subnet, error) {
	if m.EnsureSubnetFunc != nil {
		return m.EnsureSubnetFunc(ctx, opts)
	}
	return &Subnet{
		ID:               "subnet-" + opts.Name,
		Name:             opts.Name,
		VPCID:            opts.VPCID,
		CIDR:             opts.CIDR,
		AvailabilityZone: opts.AvailabilityZone,
		MapPublicIP:      opts.MapPublicIP,
	}, nil
}

func (m *MockClient) DeleteSubnet(ctx context.Context, name string) error {
	if m.DeleteSubnetFunc != nil {
		return m.DeleteSubnetFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureInternetGateway(ctx context.Context, name string, tags map[string]string) (*InternetGateway, error) {
	if m.EnsureInternetGatewayFunc != nil {
		return m.EnsureInternetGatewayFunc(ctx, name, tags)
	}
	return &InternetGateway{ID: "igw-" + name, Name: name}, nil
}

func (m *MockClient) EnsureGatewayAttachment(ctx context.Context, gatewayID, vpcID string) error {
	if m.EnsureGatewayAttachmentFunc != nil {
		return m.EnsureGatewayAttachmentFunc(ctx, gatewayID, vpcID)
	}
	return nil
}

func (m *MockClient) DeleteInternetGateway(ctx context.Context, name string) error {
	if m.DeleteInternetGatewayFunc != nil {
		return m.DeleteInternetGatewayFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureAddress(ctx context.Context, name string, tags map[string]string) (*Address, error) {
	if m.EnsureAddressFunc != nil {
		return m.EnsureAddressFunc(ctx, name, tags)
	}
	return &Address{AllocationID: "eipalloc-" + name, Name: name, PublicIP: "203.0.113.10"}, nil
}

func (m *MockClient) ReleaseAddress(ctx context.Context, name string) error {
	if m.ReleaseAddressFunc != nil {
		return m.ReleaseAddressFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureNATGateway(ctx context.Context, opts NATGatewayCreateOpts) (*NATGateway, error) {
	if m.EnsureNATGatewayFunc != nil {
		return m.EnsureNATGatewayFunc(ctx, opts)
	}
	return &NATGateway{
		ID:           "nat-" + opts.Name,
		Name:         opts.Name,
		SubnetID:     opts.SubnetID,
		AllocationID: opts.AllocationID,
		State:        "available",
	}, nil
}

func (m *MockClient) DeleteNATGateway(ctx context.Context, name string) error {
	if m.DeleteNATGatewayFunc != nil {
		return m.DeleteNATGatewayFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureRouteTable(ctx context.Context, name, vpcID string, tags map[string]string) (*RouteTable, error) {
	if m.EnsureRouteTableFunc != nil {
		return m.EnsureRouteTableFunc(ctx, name, vpcID, tags)
	}
	return &RouteTable{ID: "rtb-" + name, Name: name, VPCID: vpcID}, nil
}

func (m *MockClient) DeleteRouteTable(ctx context.Context, name string) error {
	if m.DeleteRouteTableFunc != nil {
		return m.DeleteRouteTableFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureRoute(ctx context.Context, routeTableID, destination string, target RouteTarget) error {
	if m.EnsureRouteFunc != nil {
		return m.EnsureRouteFunc(ctx, routeTableID, destination, target)
	}
	return nil
}

func (m *MockClient) EnsureAssociation(ctx context.Context, routeTableID, subnetID string) (string, error) {
	if m.EnsureAssociationFunc != nil {
		return m.EnsureAssociationFunc(ctx, routeTableID, subnetID)
	}
	return "rtbassoc-" + subnetID, nil
}

func (m *MockClient) EnsureSecurityGroup(ctx context.Context, name, vpcID string, rules []IngressRule, tags map[string]string) (*SecurityGroup, error) {
	if m.EnsureSecurityGroupFunc != nil {
		return m.EnsureSecurityGroupFunc(ctx, name, vpcID, rules, tags)
	}
	return &SecurityGroup{ID: "sg-" + name, Name: name, VPCID: vpcID}, nil
}

func (m *MockClient) DeleteSecurityGroup(ctx context.Context, name string) error {
	if m.DeleteSecurityGroupFunc != nil {
		return m.DeleteSecurityGroupFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureRole(ctx context.Context, name, trustPrincipal string, tags map[string]string) (*Role, error) {
	if m.EnsureRoleFunc != nil {
		return m.EnsureRoleFunc(ctx, name, trustPrincipal, tags)
	}
	return &Role{Name: name, ARN: "arn:aws:iam::000000000000:role/" + name}, nil
}

func (m *MockClient) AttachRolePolicy(ctx context.Context, roleName, policyARN string) error {
	if m.AttachRolePolicyFunc != nil {
		return m.AttachRolePolicyFunc(ctx, roleName, policyARN)
	}
	return nil
}

func (m *MockClient) EnsureInstanceProfile(ctx context.Context, name, roleName string, tags map[string]string) (*InstanceProfile, error) {
	if m.EnsureInstanceProfileFunc != nil {
		return m.EnsureInstanceProfileFunc(ctx, name, roleName, tags)
	}
	return &InstanceProfile{Name: name, ARN: "arn:aws:iam::000000000000:instance-profile/" + name}, nil
}

func (m *MockClient) DeleteInstanceProfile(ctx context.Context, name, roleName string) error {
	if m.DeleteInstanceProfileFunc != nil {
		return m.DeleteInstanceProfileFunc(ctx, name, roleName)
	}
	return nil
}

func (m *MockClient) DeleteRole(ctx context.Context, name string, policyARNs []string) error {
	if m.DeleteRoleFunc != nil {
		return m.DeleteRoleFunc(ctx, name, policyARNs)
	}
	return nil
}

func (m *MockClient) GetKeyPair(ctx context.Context, name string) (*KeyPair, error) {
	if m.GetKeyPairFunc != nil {
		return m.GetKeyPairFunc(ctx, name)
	}
	return &KeyPair{Name: name, Fingerprint: "SHA256:mock"}, nil
}

func (m *MockClient) ImportKeyPair(ctx context.Context, name string, publicKey []byte, tags map[string]string) (*KeyPair, error) {
	if m.ImportKeyPairFunc != nil {
		return m.ImportKeyPairFunc(ctx, name, publicKey, tags)
	}
	return &KeyPair{Name: name, Fingerprint: "SHA256:mock"}, nil
}

func (m *MockClient) DeleteKeyPair(ctx context.Context, name string) error {
	if m.DeleteKeyPairFunc != nil {
		return m.DeleteKeyPairFunc(ctx, name)
	}
	return nil
}

func (m *MockClient) EnsureInstance(ctx context.Context, opts InstanceCreateOpts) (*Instance, error) {
	if m.EnsureInstanceFunc != nil {
		return m.EnsureInstanceFunc(ctx, opts)
	}
	inst := &Instance{
		ID:        "i-" + opts.Name,
		Name:      opts.Name,
		State:     "running",
		SubnetID:  opts.SubnetID,
		PrivateIP: "10.0.0.10",
	}
	if opts.PublicIP {
		inst.PublicIP = "198.51.100.20"
	}
	return inst, nil
}

func (m *MockClient) GetInstance(ctx context.Context, name string) (*Instance, error) {
	if m.GetInstanceFunc != nil {
		return m.GetInstanceFunc(ctx, name)
	}
	return nil, nil
}

func (m *MockClient) TerminateInstance(ctx context.Context, name string) error {
	if m.TerminateInstanceFunc != nil {
		return m.TerminateInstanceFunc(ctx, name)
	}
	return nil
}
