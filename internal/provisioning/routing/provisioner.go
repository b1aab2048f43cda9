// Package routing provisions the elastic address, the NAT gateway, both
// route tables, their default routes and the subnet associations.
package routing

import (
	"fmt"

	"github.com/cloudshore/webvpc/internal/platform/aws"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/stack"
)

// Provisioner handles routing provisioning.
type Provisioner struct{}

// NewProvisioner creates a new routing provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "routing"
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.provisionNATGateway(ctx); err != nil {
		return err
	}
	if err := p.provisionRouteTables(ctx); err != nil {
		return err
	}
	if err := p.provisionRoutes(ctx); err != nil {
		return err
	}
	return p.provisionAssociations(ctx)
}

func (p *Provisioner) provisionNATGateway(ctx *provisioning.Context) error {
	allocName := ctx.Stack.Allocation
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "elastic address", allocName)

	addr, err := ctx.Infra.EnsureAddress(ctx, allocName, ctx.Config.Tags())
	if err != nil {
		return err
	}
	ctx.State.AllocationID = addr.AllocationID
	ctx.State.NATPublicIP = addr.PublicIP
	ctx.State.RecordCreated(allocName, stack.KindAddressAllocation, addr.AllocationID)
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "elastic address", allocName, addr.AllocationID)

	natName := ctx.Stack.NAT.Name
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "nat gateway", natName)
	ctx.Observer.Printf("[%s] waiting for nat gateway %s to become available (up to %v)",
		p.Name(), natName, ctx.Timeouts.NATGatewayCreate)

	nat, err := ctx.Infra.EnsureNATGateway(ctx, aws.NATGatewayCreateOpts{
		Name:         natName,
		SubnetID:     ctx.State.PublicSubnetID,
		AllocationID: addr.AllocationID,
		Tags:         ctx.Config.Tags(),
	})
	if err != nil {
		return err
	}
	ctx.State.NATID = nat.ID
	ctx.State.RecordCreated(natName, stack.KindNATGateway, nat.ID)
	ctx.Metrics.CountResourceOp(string(stack.KindNATGateway), "ensured")
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "nat gateway", natName, nat.ID)
	return nil
}

func (p *Provisioner) provisionRouteTables(ctx *provisioning.Context) error {
	tables := []struct {
		name string
		dest *string
	}{
		{ctx.Stack.PublicTable, &ctx.State.PublicRTID},
		{ctx.Stack.PrivateTable, &ctx.State.PrivateRTID},
	}

	for _, table := range tables {
		provisioning.LogResourceCreating(ctx.Observer, p.Name(), "route table", table.name)
		rt, err := ctx.Infra.EnsureRouteTable(ctx, table.name, ctx.State.VPCID, ctx.Config.Tags())
		if err != nil {
			return err
		}
		*table.dest = rt.ID
		ctx.State.RecordCreated(table.name, stack.KindRouteTable, rt.ID)
		ctx.Metrics.CountResourceOp(string(stack.KindRouteTable), "ensured")
		provisioning.LogResourceCreated(ctx.Observer, p.Name(), "route table", table.name, rt.ID)
	}
	return nil
}

func (p *Provisioner) provisionRoutes(ctx *provisioning.Context) error {
	routes := []struct {
		declared stack.Route
		tableID  string
		target   aws.RouteTarget
	}{
		{ctx.Stack.PublicRoute, ctx.State.PublicRTID, aws.RouteTarget{InternetGatewayID: ctx.State.GatewayID}},
		{ctx.Stack.PrivateRoute, ctx.State.PrivateRTID, aws.RouteTarget{NATGatewayID: ctx.State.NATID}},
	}

	for _, route := range routes {
		err := ctx.Infra.EnsureRoute(ctx, route.tableID, route.declared.Destination.String(), route.target)
		if err != nil {
			return fmt.Errorf("ensuring route %s: %w", route.declared.Name, err)
		}
		ctx.State.RecordCreated(route.declared.Name, stack.KindRoute, route.tableID)
		ctx.Metrics.CountResourceOp(string(stack.KindRoute), "ensured")
	}
	return nil
}

func (p *Provisioner) provisionAssociations(ctx *provisioning.Context) error {
	assocs := []struct {
		declared stack.Association
		tableID  string
		subnetID string
	}{
		{ctx.Stack.PublicAssoc, ctx.State.PublicRTID, ctx.State.PublicSubnetID},
		{ctx.Stack.PrivateAssoc, ctx.State.PrivateRTID, ctx.State.PrivateSubnetID},
	}

	for _, assoc := range assocs {
		id, err := ctx.Infra.EnsureAssociation(ctx, assoc.tableID, assoc.subnetID)
		if err != nil {
			return fmt.Errorf("ensuring association %s: %w", assoc.declared.Name, err)
		}
		ctx.State.RecordCreated(assoc.declared.Name, stack.KindRouteTableAssociation, id)
		ctx.Metrics.CountResourceOp(string(stack.KindRouteTableAssociation), "ensured")
	}
	return nil
}
