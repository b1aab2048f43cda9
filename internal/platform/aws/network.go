package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EnsureVPC ensures a VPC with the given name exists, has the declared
// address block and has DNS hostnames enabled.
func (c *RealClient) EnsureVPC(ctx context.Context, name, cidr string, tags map[string]string) (*VPC, error) {
	existing, err := c.GetVPC(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.CIDR != cidr {
			return nil, fmt.Errorf("vpc %s exists with block %s, declared %s", name, existing.CIDR, cidr)
		}
		return existing, nil
	}

	out, err := c.ec2.CreateVpc(ctx, &ec2.CreateVpcInput{
		CidrBlock:         aws.String(cidr),
		TagSpecifications: tagSpecs(ec2types.ResourceTypeVpc, name, tags),
	})
	if err != nil {
		return nil, fmt.Errorf("creating vpc %s: %w", name, err)
	}
	vpcID := aws.ToString(out.Vpc.VpcId)

	// Instances need resolvable hostnames for the session channel.
	_, err = c.ec2.ModifyVpcAttribute(ctx, &ec2.ModifyVpcAttributeInput{
		VpcId:              aws.String(vpcID),
		EnableDnsHostnames: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
	})
	if err != nil {
		return nil, fmt.Errorf("enabling dns hostnames on vpc %s: %w", name, err)
	}

	return &VPC{ID: vpcID, Name: name, CIDR: cidr}, nil
}

// GetVPC resolves a VPC by its Name tag. Returns nil when not found.
func (c *RealClient) GetVPC(ctx context.Context, name string) (*VPC, error) {
	out, err := c.ec2.DescribeVpcs(ctx, &ec2.DescribeVpcsInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		return nil, fmt.Errorf("describing vpc %s: %w", name, err)
	}
	for _, vpc := range out.Vpcs {
		if vpc.State == ec2types.VpcStateAvailable || vpc.State == ec2types.VpcStatePending {
			return &VPC{
				ID:   aws.ToString(vpc.VpcId),
				Name: name,
				CIDR: aws.ToString(vpc.CidrBlock),
			}, nil
		}
	}
	return nil, nil
}

// DeleteVPC deletes the VPC with the given name. Succeeds when it is
// already gone.
func (c *RealClient) DeleteVPC(ctx context.Context, name string) error {
	vpc, err := c.GetVPC(ctx, name)
	if err != nil {
		return err
	}
	if vpc == nil {
		return nil
	}
	_, err = c.ec2.DeleteVpc(ctx, &ec2.DeleteVpcInput{VpcId: aws.String(vpc.ID)})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting vpc %s: %w", name, err)
	}
	return nil
}

// EnsureSubnet ensures the subnet exists with the declared block, zone and
// public address mapping.
func (c *RealClient) EnsureSubnet(ctx context.Context, opts SubnetCreateOpts) (*Subnet, error) {
	existing, err := c.getSubnet(ctx, opts.Name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.CIDR != opts.CIDR || existing.VPCID != opts.VPCID {
			return nil, fmt.Errorf("subnet %s exists with block %s in %s, declared %s in %s",
				opts.Name, existing.CIDR, existing.VPCID, opts.CIDR, opts.VPCID)
		}
		return existing, nil
	}

	out, err := c.ec2.CreateSubnet(ctx, &ec2.CreateSubnetInput{
		VpcId:             aws.String(opts.VPCID),
		CidrBlock:         aws.String(opts.CIDR),
		AvailabilityZone:  aws.String(opts.AvailabilityZone),
		TagSpecifications: tagSpecs(ec2types.ResourceTypeSubnet, opts.Name, opts.Tags),
	})
	if err != nil {
		return nil, fmt.Errorf("creating subnet %s: %w", opts.Name, err)
	}
	subnetID := aws.ToString(out.Subnet.SubnetId)

	if opts.MapPublicIP {
		_, err = c.ec2.ModifySubnetAttribute(ctx, &ec2.ModifySubnetAttributeInput{
			SubnetId:            aws.String(subnetID),
			MapPublicIpOnLaunch: &ec2types.AttributeBooleanValue{Value: aws.Bool(true)},
		})
		if err != nil {
			return nil, fmt.Errorf("enabling public address mapping on subnet %s: %w", opts.Name, err)
		}
	}

	return &Subnet{
		ID:               subnetID,
		Name:             opts.Name,
		VPCID:            opts.VPCID,
		CIDR:             opts.CIDR,
		AvailabilityZone: opts.AvailabilityZone,
		MapPublicIP:      opts.MapPublicIP,
	}, nil
}

func (c *RealClient) getSubnet(ctx context.Context, name string) (*Subnet, error) {
	out, err := c.ec2.DescribeSubnets(ctx, &ec2.DescribeSubnetsInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		return nil, fmt.Errorf("describing subnet %s: %w", name, err)
	}
	if len(out.Subnets) == 0 {
		return nil, nil
	}
	subnet := out.Subnets[0]
	return &Subnet{
		ID:               aws.ToString(subnet.SubnetId),
		Name:             name,
		VPCID:            aws.ToString(subnet.VpcId),
		CIDR:             aws.ToString(subnet.CidrBlock),
		AvailabilityZone: aws.ToString(subnet.AvailabilityZone),
		MapPublicIP:      aws.ToBool(subnet.MapPublicIpOnLaunch),
	}, nil
}

// DeleteSubnet deletes the subnet with the given name. Succeeds when it is
// already gone.
func (c *RealClient) DeleteSubnet(ctx context.Context, name string) error {
	subnet, err := c.getSubnet(ctx, name)
	if err != nil {
		return err
	}
	if subnet == nil {
		return nil
	}
	_, err = c.ec2.DeleteSubnet(ctx, &ec2.DeleteSubnetInput{SubnetId: aws.String(subnet.ID)})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting subnet %s: %w", name, err)
	}
	return nil
}
