package aws

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"
)

// EnsureRouteTable ensures a route table with the given name exists in the
// VPC.
func (c *RealClient) EnsureRouteTable(ctx context.Context, name, vpcID string, tags map[string]string) (*RouteTable, error) {
	existing, err := c.getRouteTable(ctx, name)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	out, err := c.ec2.CreateRouteTable(ctx, &ec2.CreateRouteTableInput{
		VpcId:             aws.String(vpcID),
		TagSpecifications: tagSpecs(ec2types.ResourceTypeRouteTable, name, tags),
	})
	if err != nil {
		return nil, fmt.Errorf("creating route table %s: %w", name, err)
	}
	return &RouteTable{
		ID:    aws.ToString(out.RouteTable.RouteTableId),
		Name:  name,
		VPCID: vpcID,
	}, nil
}

func (c *RealClient) getRouteTable(ctx context.Context, name string) (*RouteTable, error) {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		return nil, fmt.Errorf("describing route table %s: %w", name, err)
	}
	if len(out.RouteTables) == 0 {
		return nil, nil
	}
	rt := out.RouteTables[0]
	return &RouteTable{
		ID:    aws.ToString(rt.RouteTableId),
		Name:  name,
		VPCID: aws.ToString(rt.VpcId),
	}, nil
}

// DeleteRouteTable disassociates the table from its subnets, then deletes
// it. Succeeds when it is already gone.
func (c *RealClient) DeleteRouteTable(ctx context.Context, name string) error {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		Filters: []ec2types.Filter{nameFilter(name)},
	})
	if err != nil {
		return fmt.Errorf("describing route table %s: %w", name, err)
	}
	if len(out.RouteTables) == 0 {
		return nil
	}
	rt := out.RouteTables[0]

	for _, assoc := range rt.Associations {
		if aws.ToBool(assoc.Main) {
			continue
		}
		_, err = c.ec2.DisassociateRouteTable(ctx, &ec2.DisassociateRouteTableInput{
			AssociationId: assoc.RouteTableAssociationId,
		})
		if err != nil && !IsNotFound(err) {
			return fmt.Errorf("disassociating route table %s: %w", name, err)
		}
	}

	_, err = c.ec2.DeleteRouteTable(ctx, &ec2.DeleteRouteTableInput{
		RouteTableId: rt.RouteTableId,
	})
	if err != nil && !IsNotFound(err) {
		return fmt.Errorf("deleting route table %s: %w", name, err)
	}
	return nil
}

// EnsureRoute ensures the destination block routes to the given target in
// the table. A route that already exists with the same target is left alone.
func (c *RealClient) EnsureRoute(ctx context.Context, routeTableID, destination string, target RouteTarget) error {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		RouteTableIds: []string{routeTableID},
	})
	if err != nil {
		return fmt.Errorf("describing route table %s: %w", routeTableID, err)
	}
	for _, rt := range out.RouteTables {
		for _, route := range rt.Routes {
			if aws.ToString(route.DestinationCidrBlock) != destination {
				continue
			}
			if target.InternetGatewayID != "" && aws.ToString(route.GatewayId) == target.InternetGatewayID {
				return nil
			}
			if target.NATGatewayID != "" && aws.ToString(route.NatGatewayId) == target.NATGatewayID {
				return nil
			}
			return fmt.Errorf("route table %s already routes %s elsewhere", routeTableID, destination)
		}
	}

	input := &ec2.CreateRouteInput{
		RouteTableId:         aws.String(routeTableID),
		DestinationCidrBlock: aws.String(destination),
	}
	if target.InternetGatewayID != "" {
		input.GatewayId = aws.String(target.InternetGatewayID)
	}
	if target.NATGatewayID != "" {
		input.NatGatewayId = aws.String(target.NATGatewayID)
	}

	_, err = c.ec2.CreateRoute(ctx, input)
	if err != nil {
		return fmt.Errorf("creating route %s in table %s: %w", destination, routeTableID, err)
	}
	return nil
}

// EnsureAssociation binds the route table to the subnet and returns the
// association ID. An existing association with the same table is reused.
func (c *RealClient) EnsureAssociation(ctx context.Context, routeTableID, subnetID string) (string, error) {
	out, err := c.ec2.DescribeRouteTables(ctx, &ec2.DescribeRouteTablesInput{
		RouteTableIds: []string{routeTableID},
	})
	if err != nil {
		return "", fmt.Errorf("describing route table %s: %w", routeTableID, err)
	}
	for _, rt := range out.RouteTables {
		for _, assoc := range rt.Associations {
			if aws.ToString(assoc.SubnetId) == subnetID {
				return aws.ToString(assoc.RouteTableAssociationId), nil
			}
		}
	}

	assoc, err := c.ec2.AssociateRouteTable(ctx, &ec2.AssociateRouteTableInput{
		RouteTableId: aws.String(routeTableID),
		SubnetId:     aws.String(subnetID),
	})
	if err != nil {
		return "", fmt.Errorf("associating route table %s with subnet %s: %w", routeTableID, subnetID, err)
	}
	return aws.ToString(assoc.AssociationId), nil
}
