package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EnsureInternetGateway ensures an internet gateway with the given name
// exists. Attachment is a separate step.
func (c *RealClient) EnsureInternetGateway(ctx context.Context, name string, tags map[string]string) (*InternetGateway, error) {
	existing, err := c.getInternetGateway(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	out, err := c.ec2.CreateInternetGateway(ctx, &ec2.CreateInternetGatewayInput{
		TagSpecifications: tagSpecs(ec2types.ResourceTypeInternetGateway, name, tags),
	})
	if err != nil {
		return nil, fmt.Errorf("creating internet gateway %s: %w", name, err)
	}
	return &InternetGateway{
		ID:   aws.ToString(out.InternetGateway.InternetGatewayId),
		Name: name,
	}, nil
}

func (c *RealClient) getInternetGateway(ctx context.Context, name string) (*InternetGateway, error) {
	out, err := c.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		return nil, fmt.Errorf("describing internet gateway %s: %w", name, err)
	}
	if len(out.InternetGateways) == 0 {
		return nil, nil
	}
	igw := out.InternetGateways[0]
	result := &InternetGateway{
		ID:   aws.ToString(igw.InternetGatewayId),
		Name: name,
	}
	for _, att := range igw.Attachments {
		result.AttachedVPCID = aws.ToString(att.VpcId)
	}
	return result, nil
}

// EnsureGatewayAttachment binds the gateway to the VPC. Safe when already
// attached to the same VPC, rejected when attached elsewhere.
func (c *RealClient) EnsureGatewayAttachment(ctx context.Context, gatewayID, vpcID string) error {
	out, err := c.ec2.DescribeInternetGateways(ctx, &ec2.DescribeInternetGatewaysInput{
		InternetGatewayIds: []string{gatewayID},
	})
	if err != nil {
		return fmt.Errorf("describing internet gateway %s: %w", gatewayID, err)
	}
	for _, igw := range out.InternetGateways {
		for _, att := range igw.Attachments {
			attached := aws.ToString(att.VpcId)
			if attached == vpcID {
				return nil
			}
			return fmt.Errorf("internet gateway %s already attached to %s", gatewayID, attached)
		}
	}

	_, err = c.ec2.AttachInternetGateway(ctx, &ec2.AttachInternetGatewayInput{
		InternetGatewayId: aws.String(gatewayID),
		VpcId:             aws.String(vpcID),
	})
	if err != nil {
		return fmt.Errorf("attaching internet gateway %s to %s: %w", gatewayID, vpcID, err)
	}
	return nil
}

// DeleteInternetGateway detaches the gateway from its VPC when needed, then
// deletes it. Succeeds when it is already gone.
func (c *RealClient) DeleteInternetGateway(ctx context.Context, name string) error {
	igw, err := c.getInternetGateway(ctx, name)
	if err != nil {
		return err
	}
	if igw == nil {
		return nil
	}

	if igw.AttachedVPCID != "" {
		_, err = c.ec2.DetachInternetGateway(ctx, &ec2.DetachInternetGatewayInput{
			InternetGatewayId: aws.String(igw.ID),
			VpcId:             aws.String(igw.AttachedVPCID),
		})
		if err != nil && !IsNotFound(err) {
			return fmt.Errorf("detaching internet gateway %s: %w", name, err)
		}
	}

	_, err = c.ec2.DeleteInternetGateway(ctx, &ec2.DeleteInternetGatewayInput{
		InternetGatewayId: aws.String(igw.ID),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting internet gateway %s: %w", name, err)
	}
	return nil
}

// EnsureAddress ensures an elastic address with the given name is allocated.
func (c *RealClient) EnsureAddress(ctx context.Context, name string, tags map[string]string) (*Address, error) {
	existing, err := c.getAddress(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	out, err := c.ec2.AllocateAddress(ctx, &ec2.AllocateAddressInput{
		Domain:            ec2types.DomainTypeVpc,
		TagSpecifications: tagSpecs(ec2types.ResourceTypeElasticIp, name, tags),
	})
	if err != nil {
		return nil, fmt.Errorf("allocating address %s: %w", name, err)
	}
	return &Address{
		AllocationID: aws.ToString(out.AllocationId),
		Name:         name,
		PublicIP:     aws.ToString(out.PublicIp),
	}, nil
}

func (c *RealClient) getAddress(ctx context.Context, name string) (*Address, error) {
	out, err := c.ec2.DescribeAddresses(ctx, &ec2.DescribeAddressesInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		return nil, fmt.Errorf("describing address %s: %w", name, err)
	}
	if len(out.Addresses) == 0 {
		return nil, nil
	}
	addr := out.Addresses[0]
	return &Address{
		AllocationID: aws.ToString(addr.AllocationId),
		Name:         name,
		PublicIP:     aws.ToString(addr.PublicIp),
	}, nil
}

// ReleaseAddress releases the allocation with the given name. Succeeds when
// it is already gone.
func (c *RealClient) ReleaseAddress(ctx context.Context, name string) error {
	addr, err := c.getAddress(ctx, name)
	if err != nil {
		return err
	}
	if addr == nil {
		return nil
	}
	_, err = c.ec2.ReleaseAddress(ctx, &ec2.ReleaseAddressInput{
		AllocationId: aws.String(addr.AllocationID),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("releasing address %s: %w", name, err)
	}
	return nil
}

// EnsureNATGateway ensures the NAT gateway exists and blocks until it
// reaches available. Creation regularly takes minutes.
func (c *RealClient) EnsureNATGateway(ctx context.Context, opts NATGatewayCreateOpts) (*NATGateway, error) {
	existing, err := c.getNATGateway(ctx, opts.Name)
	if err != nil {
		return nil, err
	}

	var natID string
	switch {
	case existing != nil && existing.State == string(ec2types.NatGatewayStateAvailable):
		return existing, nil
	case existing != nil:
		natID = existing.ID
	default:
		out, err := c.ec2.CreateNatGateway(ctx, &ec2.CreateNatGatewayInput{
			SubnetId:          aws.String(opts.SubnetID),
			AllocationId:      aws.String(opts.AllocationID),
			TagSpecifications: tagSpecs(ec2types.ResourceTypeNatgateway, opts.Name, opts.Tags),
		})
		if err != nil {
			return nil, fmt.Errorf("creating nat gateway %s: %w", opts.Name, err)
		}
		natID = aws.ToString(out.NatGateway.NatGatewayId)
	}

	waiter := ec2.NewNatGatewayAvailableWaiter(c.ec2)
	err = waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{
		NatGatewayIds: []string{natID},
	}, c.timeouts.NATGatewayCreate)
	if err != nil {
		return nil, fmt.Errorf("waiting for nat gateway %s: %w", opts.Name, err)
	}

	return &NATGateway{
		ID:           natID,
		Name:         opts.Name,
		SubnetID:     opts.SubnetID,
		AllocationID: opts.AllocationID,
		State:        string(ec2types.NatGatewayStateAvailable),
	}, nil
}

func (c *RealClient) getNATGateway(ctx context.Context, name string) (*NATGateway, error) {
	out, err := c.ec2.DescribeNatGateways(ctx, &ec2.DescribeNatGatewaysInput{
		Filter: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		return nil, fmt.Errorf("describing nat gateway %s: %w", name, err)
	}
	for _, nat := range out.NatGateways {
		switch nat.State {
		case ec2types.NatGatewayStateDeleted, ec2types.NatGatewayStateDeleting, ec2types.NatGatewayStateFailed:
			continue
		}
		result := &NATGateway{
			ID:       aws.ToString(nat.NatGatewayId),
			Name:     name,
			SubnetID: aws.ToString(nat.SubnetId),
			State:    string(nat.State),
		}
		for _, addr := range nat.NatGatewayAddresses {
			result.AllocationID = aws.ToString(addr.AllocationId)
		}
		return result, nil
	}
	return nil, nil
}

// DeleteNATGateway deletes the NAT gateway and blocks until it is fully
// deleted. The subnet and allocation cannot be released while it lingers.
func (c *RealClient) DeleteNATGateway(ctx context.Context, name string) error {
	nat, err := c.getNATGateway(ctx, name)
	if err != nil {
		return err
	}
	if nat == nil {
		return nil
	}

	_, err = c.ec2.DeleteNatGateway(ctx, &ec2.DeleteNatGatewayInput{
		NatGatewayId: aws.String(nat.ID),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting nat gateway %s: %w", name, err)
	}

	waiter := ec2.NewNatGatewayDeletedWaiter(c.ec2)
	err = waiter.Wait(ctx, &ec2.DescribeNatGatewaysInput{
		NatGatewayIds: []string{nat.ID},
	}, c.timeouts.Delete)
	if err != nil {
		return fmt.Errorf("waiting for nat gateway %s deletion: %w", name, err)
	}
	return nil
}
