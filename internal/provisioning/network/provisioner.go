// Package network provisions the VPC, its subnets and the internet gateway.
package network

import (
	"github.com/cloudshore/webvpc/internal/platform/aws"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/stack"
)

// Provisioner handles network provisioning (VPC, subnets, internet gateway).
type Provisioner struct{}

// NewProvisioner creates a new network provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "network"
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.provisionVPC(ctx); err != nil {
		return err
	}
	if err := p.provisionSubnets(ctx); err != nil {
		return err
	}
	return p.provisionInternetGateway(ctx)
}

func (p *Provisioner) provisionVPC(ctx *provisioning.Context) error {
	net := ctx.Stack.Network
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "vpc", net.Name)

	vpc, err := ctx.Infra.EnsureVPC(ctx, net.Name, net.CIDR.String(), ctx.Config.Tags())
	if err != nil {
		return err
	}

	ctx.State.VPCID = vpc.ID
	ctx.State.RecordCreated(net.Name, stack.KindNetwork, vpc.ID)
	ctx.Metrics.CountResourceOp(string(stack.KindNetwork), "ensured")
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "vpc", net.Name, vpc.ID)
	return nil
}

func (p *Provisioner) provisionSubnets(ctx *provisioning.Context) error {
	for _, declared := range []stack.Subnet{ctx.Stack.PublicSubnet, ctx.Stack.PrivateSubnet} {
		provisioning.LogResourceCreating(ctx.Observer, p.Name(), "subnet", declared.Name)

		subnet, err := ctx.Infra.EnsureSubnet(ctx, aws.SubnetCreateOpts{
			Name:             declared.Name,
			VPCID:            ctx.State.VPCID,
			CIDR:             declared.CIDR.String(),
			AvailabilityZone: declared.Zone,
			MapPublicIP:      declared.Public,
			Tags:             ctx.Config.Tags(),
		})
		if err != nil {
			return err
		}

		if declared.Public {
			ctx.State.PublicSubnetID = subnet.ID
		} else {
			ctx.State.PrivateSubnetID = subnet.ID
		}
		ctx.State.RecordCreated(declared.Name, stack.KindSubnet, subnet.ID)
		ctx.Metrics.CountResourceOp(string(stack.KindSubnet), "ensured")
		provisioning.LogResourceCreated(ctx.Observer, p.Name(), "subnet", declared.Name, subnet.ID)
	}
	return nil
}

func (p *Provisioner) provisionInternetGateway(ctx *provisioning.Context) error {
	name := ctx.Stack.InternetGateway
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "internet gateway", name)

	igw, err := ctx.Infra.EnsureInternetGateway(ctx, name, ctx.Config.Tags())
	if err != nil {
		return err
	}
	ctx.State.GatewayID = igw.ID
	ctx.State.RecordCreated(name, stack.KindInternetGateway, igw.ID)
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "internet gateway", name, igw.ID)

	if err := ctx.Infra.EnsureGatewayAttachment(ctx, igw.ID, ctx.State.VPCID); err != nil {
		return err
	}
	ctx.State.RecordCreated(ctx.Stack.Attachment.Name, stack.KindGatewayAttachment, igw.ID)
	ctx.Metrics.CountResourceOp(string(stack.KindInternetGateway), "ensured")
	return nil
}
