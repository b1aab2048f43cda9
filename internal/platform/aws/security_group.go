package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EnsureSecurityGroup ensures the group exists in the VPC and carries the
// declared ingress rules. Rules already present are not re-authorized.
func (c *RealClient) EnsureSecurityGroup(ctx context.Context, name, vpcID string, rules []IngressRule, tags map[string]string) (*SecurityGroup, error) {
	group, err := c.getSecurityGroup(ctx, name, vpcID)
	if err != nil {
		return nil, err
	}
	if group == nil {
		out, err := c.ec2.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
			GroupName:         aws.String(name),
			Description:       aws.String("managed by webvpc"),
			VpcId:             aws.String(vpcID),
			TagSpecifications: tagSpecs(ec2types.ResourceTypeSecurityGroup, name, tags),
		})
		if err != nil {
			return nil, fmt.Errorf("creating security group %s: %w", name, err)
		}
		group = &SecurityGroup{ID: aws.ToString(out.GroupId), Name: name, VPCID: vpcID}
	}

	for _, rule := range rules {
		_, err = c.ec2.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId: aws.String(group.ID),
			IpPermissions: []ec2types.IpPermission{{
				IpProtocol: aws.String(rule.Protocol),
				FromPort:   aws.Int32(rule.FromPort),
				ToPort:     aws.Int32(rule.ToPort),
				IpRanges: []ec2types.IpRange{{
					CidrIp: aws.String(rule.Source.String()),
				}},
			}},
		})
		if err != nil && !IsDuplicate(err) {
			return nil, fmt.Errorf("authorizing ingress %s/%d on group %s: %w", rule.Protocol, rule.FromPort, name, err)
		}
	}

	return group, nil
}

func (c *RealClient) getSecurityGroup(ctx context.Context, name, vpcID string) (*SecurityGroup, error) {
	filters := []ec2types.Filter{{
		Name:   aws.String("group-name"),
		Values: []string{name},
	}}
	if vpcID != "" {
		filters = append(filters, ec2types.Filter{
			Name:   aws.String("vpc-id"),
			Values: []string{vpcID},
		})
	}
	out, err := c.ec2.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{Filters: filters})
	if err != nil {
		return nil, fmt.Errorf("describing security group %s: %w", name, err)
	}
	if len(out.SecurityGroups) == 0 {
		return nil, nil
	}
	sg := out.SecurityGroups[0]
	return &SecurityGroup{
		ID:    aws.ToString(sg.GroupId),
		Name:  name,
		VPCID: aws.ToString(sg.VpcId),
	}, nil
}

// DeleteSecurityGroup deletes the group with the given name. Succeeds when
// it is already gone.
func (c *RealClient) DeleteSecurityGroup(ctx context.Context, name string) error {
	group, err := c.getSecurityGroup(ctx, name, "")
	if err != nil {
		return err
	}
	if group == nil {
		return nil
	}
	_, err = c.ec2.DeleteSecurityGroup(ctx, &ec2.DeleteSecurityGroupInput{
		GroupId: aws.String(group.ID),
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting security group %s: %w", name, err)
	}
	return nil
}
