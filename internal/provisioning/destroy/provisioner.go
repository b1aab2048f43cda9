// Package destroy tears down a stack in reverse creation order.
package destroy

import (
	"fmt"

	"github.com/cloudshore/webvpc/internal/provisioning"
)

// Provisioner walks the stack graph backwards and deletes every resource.
// Deletes are idempotent, so destroying an already absent stack succeeds.
type Provisioner struct{}

// NewProvisioner creates a new destroy provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "destroy"
}

// Provision implements the provisioning.Phase interface. The key pair is
// left alone: the stack references it but does not own it.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	order, err := ctx.Stack.DestroyOrder()
	if err != nil {
		return err
	}

	for i, r := range order {
		ctx.Observer.Progress(p.Name(), i+1, len(order))
		provisioning.LogResourceDeleting(ctx.Observer, p.Name(), string(r.Kind), r.Name)

		if err := provisioning.DeleteResource(ctx, r.Name, r.Kind); err != nil {
			ctx.Metrics.CountResourceOp(string(r.Kind), "delete-failed")
			return fmt.Errorf("deleting %s %s: %w", r.Kind, r.Name, err)
		}

		ctx.Metrics.CountResourceOp(string(r.Kind), "deleted")
		provisioning.LogResourceDeleted(ctx.Observer, p.Name(), string(r.Kind), r.Name)
	}
	return nil
}
