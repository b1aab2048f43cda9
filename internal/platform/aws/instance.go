package aws

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EnsureInstance launches the instance when it does not exist and blocks
// until it reaches running, returning its assigned addresses.
func (c *RealClient) EnsureInstance(ctx context.Context, opts InstanceCreateOpts) (*Instance, error) {
	existing, err := c.GetInstance(ctx, opts.Name)
	if err != nil {
		return nil, err
	}

	var instanceID string
	if existing != nil {
		if existing.State == string(ec2types.InstanceStateNameRunning) {
			return existing, nil
		}
		instanceID = existing.ID
	} else {
		input := &ec2.RunInstancesInput{
			ImageId:      aws.String(opts.ImageID),
			InstanceType: ec2types.InstanceType(opts.InstanceType),
			KeyName:      aws.String(opts.KeyName),
			MinCount:     aws.Int32(1),
			MaxCount:     aws.Int32(1),
			NetworkInterfaces: []ec2types.InstanceNetworkInterfaceSpecification{{
				DeviceIndex:              aws.Int32(0),
				SubnetId:                 aws.String(opts.SubnetID),
				AssociatePublicIpAddress: aws.Bool(opts.PublicIP),
				Groups:                   []string{opts.SecurityGroupID},
			}},
			IamInstanceProfile: &ec2types.IamInstanceProfileSpecification{
				Name: aws.String(opts.ProfileName),
			},
			TagSpecifications: tagSpecs(ec2types.ResourceTypeInstance, opts.Name, opts.Tags),
		}
		if opts.UserData != "" {
			input.UserData = aws.String(base64.StdEncoding.EncodeToString([]byte(opts.UserData)))
		}

		out, err := c.ec2.RunInstances(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("launching instance %s: %w", opts.Name, err)
		}
		if len(out.Instances) == 0 {
			return nil, fmt.Errorf("launching instance %s: empty reservation", opts.Name)
		}
		instanceID = aws.ToString(out.Instances[0].InstanceId)
	}

	waiter := ec2.NewInstanceRunningWaiter(c.ec2)
	err = waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{instanceID},
	}, c.timeouts.InstanceRunning)
	if err != nil {
		return nil, fmt.Errorf("waiting for instance %s: %w", opts.Name, err)
	}

	// Re-describe after the wait so the public address is populated.
	running, err := c.GetInstance(ctx, opts.Name)
	if err != nil {
		return nil, err
	}
	if running == nil {
		return nil, fmt.Errorf("instance %s vanished after launch", opts.Name)
	}
	return running, nil
}

// GetInstance resolves a non-terminated instance by its Name tag. Returns
// nil when not found.
func (c *RealClient) GetInstance(ctx context.Context, name string) (*Instance, error) {
	out, err := c.ec2.DescribeInstances(ctx, &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{
			nameFilter(name),
			{
				Name:   aws.String("instance-state-name"),
				Values: []string{"pending", "running", "stopping", "stopped"},
			},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("describing instance %s: %w", name, err)
	}
	for _, reservation := range out.Reservations {
		for _, inst := range reservation.Instances {
			return &Instance{
				ID:        aws.ToString(inst.InstanceId),
				Name:      name,
				State:     string(inst.State.Name),
				SubnetID:  aws.ToString(inst.SubnetId),
				PublicIP:  aws.ToString(inst.PublicIpAddress),
				PrivateIP: aws.ToString(inst.PrivateIpAddress),
			}, nil
		}
	}
	return nil, nil
}

// TerminateInstance terminates the instance and blocks until it is gone.
// Succeeds when it is already gone.
func (c *RealClient) TerminateInstance(ctx context.Context, name string) error {
	inst, err := c.GetInstance(ctx, name)
	if err != nil {
		return err
	}
	if inst == nil {
		return nil
	}

	_, err = c.ec2.TerminateInstances(ctx, &ec2.TerminateInstancesInput{
		InstanceIds: []string{inst.ID},
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("terminating instance %s: %w", name, err)
	}

	waiter := ec2.NewInstanceTerminatedWaiter(c.ec2)
	err = waiter.Wait(ctx, &ec2.DescribeInstancesInput{
		InstanceIds: []string{inst.ID},
	}, c.timeouts.Delete)
	if err != nil {
		return fmt.Errorf("waiting for instance %s termination: %w", name, err)
	}
	return nil
}
