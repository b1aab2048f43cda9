// Package compute provisions the two stack instances.
package compute

import (
	"strings"

	"github.com/cloudshore/webvpc/internal/platform/aws"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/stack"
	"github.com/cloudshore/webvpc/internal/util/retry"
)

// Provisioner handles compute provisioning (the public web instance and the
// private app instance).
type Provisioner struct{}

// NewProvisioner creates a new compute provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "compute"
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.provisionInstance(ctx, ctx.Stack.PublicInstance); err != nil {
		return err
	}
	return p.provisionInstance(ctx, ctx.Stack.PrivateInstance)
}

func (p *Provisioner) provisionInstance(ctx *provisioning.Context, declared stack.Instance) error {
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "instance", declared.Name)

	subnetID := ctx.State.PrivateSubnetID
	if declared.PublicIP {
		subnetID = ctx.State.PublicSubnetID
	}

	opts := aws.InstanceCreateOpts{
		Name:            declared.Name,
		ImageID:         declared.ImageID,
		InstanceType:    declared.MachineType,
		KeyName:         declared.KeyName,
		SubnetID:        subnetID,
		SecurityGroupID: ctx.State.SecurityGroupID,
		ProfileName:     declared.Profile,
		PublicIP:        declared.PublicIP,
		UserData:        declared.UserData,
		Tags:            ctx.Config.Tags(),
	}

	// A freshly created instance profile takes a moment to propagate; the
	// launch call rejects it with an invalid-parameter error until then.
	var instance *aws.Instance
	err := retry.WithExponentialBackoff(ctx, func() error {
		var err error
		instance, err = ctx.Infra.EnsureInstance(ctx, opts)
		if err != nil && !isProfileNotReady(err) {
			return retry.Fatal(err)
		}
		return err
	},
		retry.WithMaxRetries(ctx.Timeouts.RetryMaxAttempts),
		retry.WithInitialDelay(ctx.Timeouts.RetryInitialDelay),
	)
	if err != nil {
		return err
	}

	if declared.PublicIP {
		ctx.State.PublicInstanceID = instance.ID
		ctx.State.PublicInstanceIP = instance.PublicIP
	} else {
		ctx.State.PrivateInstanceID = instance.ID
		ctx.State.PrivateInstanceIP = instance.PrivateIP
	}
	ctx.State.RecordCreated(declared.Name, stack.KindInstance, instance.ID)
	ctx.Metrics.CountResourceOp(string(stack.KindInstance), "ensured")
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "instance", declared.Name, instance.ID)
	return nil
}

func isProfileNotReady(err error) bool {
	return err != nil && strings.Contains(err.Error(), "Invalid IAM Instance Profile")
}
