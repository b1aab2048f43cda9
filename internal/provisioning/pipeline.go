package provisioning

import (
	"fmt"
	"time"

	"github.com/cloudshore/webvpc/internal/stack"
)

// RunPhases executes all provisioning phases sequentially.
func RunPhases(ctx *Context, phases []Phase) error {
	start := time.Now()
	ctx.Observer.Printf("Starting provisioning with %d phases...", len(phases))

	for i, phase := range phases {
		phaseStart := time.Now()
		name := fmt.Sprintf("%s (%d/%d)", phase.Name(), i+1, len(phases))

		ctx.Observer.Printf("[%s] starting", name)

		if err := phase.Provision(ctx); err != nil {
			ctx.Observer.Printf("[%s] failed: %v", name, err)
			ctx.Metrics.CountPhaseFailure(phase.Name())
			return fmt.Errorf("%s phase failed: %w", phase.Name(), err)
		}

		ctx.Observer.Printf("[%s] completed in %v", name, time.Since(phaseStart).Round(time.Millisecond))
		ctx.Metrics.ObservePhase(phase.Name(), time.Since(phaseStart))
	}

	ctx.Observer.Printf("Provisioning completed in %v", time.Since(start).Round(time.Millisecond))
	return nil
}

// Rollback tears down everything the run created, newest first, restoring
// the pre-run world. Errors are collected rather than aborting the walk so
// one stuck resource does not strand the rest.
func Rollback(ctx *Context) error {
	created := ctx.State.Created()
	if len(created) == 0 {
		return nil
	}

	ctx.Observer.Event(Event{
		Type:    EventRollbackStarted,
		Message: fmt.Sprintf("rolling back %d created resources", len(created)),
	})

	var errs []error
	for i := len(created) - 1; i >= 0; i-- {
		r := created[i]
		LogResourceDeleting(ctx.Observer, "rollback", string(r.Kind), r.Name)
		if err := DeleteResource(ctx, r.Name, r.Kind); err != nil {
			ctx.Metrics.CountResourceOp(string(r.Kind), "rollback-failed")
			errs = append(errs, fmt.Errorf("rolling back %s %s: %w", r.Kind, r.Name, err))
			continue
		}
		ctx.Metrics.CountResourceOp(string(r.Kind), "rolled-back")
		LogResourceDeleted(ctx.Observer, "rollback", string(r.Kind), r.Name)
	}

	ctx.Observer.Event(Event{
		Type:    EventRollbackCompleted,
		Message: fmt.Sprintf("rollback finished, %d errors", len(errs)),
	})

	if len(errs) > 0 {
		return fmt.Errorf("rollback left %d resources behind: %v", len(errs), errs)
	}
	return nil
}

// DeleteResource removes one resource by kind and declared name. Kinds that
// vanish with their parent (routes, associations, the gateway attachment and
// the role policy attachment) are no-ops here. Key pairs are never deleted:
// the stack references them but does not own them.
func DeleteResource(ctx *Context, name string, kind stack.Kind) error {
	switch kind {
	case stack.KindInstance:
		return ctx.Infra.TerminateInstance(ctx, name)
	case stack.KindNATGateway:
		return ctx.Infra.DeleteNATGateway(ctx, name)
	case stack.KindAddressAllocation:
		return ctx.Infra.ReleaseAddress(ctx, name)
	case stack.KindRouteTable:
		return ctx.Infra.DeleteRouteTable(ctx, name)
	case stack.KindSecurityRuleSet:
		return ctx.Infra.DeleteSecurityGroup(ctx, name)
	case stack.KindInstanceProfile:
		return ctx.Infra.DeleteInstanceProfile(ctx, name, ctx.Stack.Role.Name)
	case stack.KindRole:
		return ctx.Infra.DeleteRole(ctx, name, []string{ctx.Stack.Role.PolicyARN})
	case stack.KindInternetGateway:
		return ctx.Infra.DeleteInternetGateway(ctx, name)
	case stack.KindSubnet:
		return ctx.Infra.DeleteSubnet(ctx, name)
	case stack.KindNetwork:
		return ctx.Infra.DeleteVPC(ctx, name)
	case stack.KindRoute, stack.KindRouteTableAssociation,
		stack.KindGatewayAttachment, stack.KindRolePolicyAttachment:
		return nil
	default:
		return fmt.Errorf("unknown resource kind %q", kind)
	}
}
