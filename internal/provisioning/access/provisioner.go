// Package access provisions the security rule set and the instance
// identity, and verifies the referenced key pair exists.
package access

import (
	"fmt"

	"github.com/cloudshore/webvpc/internal/platform/aws"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/stack"
)

// Provisioner handles access provisioning (key pair check, security group,
// role and instance profile).
type Provisioner struct{}

// NewProvisioner creates a new access provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return "access"
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.verifyKeyPair(ctx); err != nil {
		return err
	}
	if err := p.provisionSecurityGroup(ctx); err != nil {
		return err
	}
	return p.provisionIdentity(ctx)
}

// verifyKeyPair checks the declared key pair is registered. Key pairs are
// referenced, never created, by apply; keygen handles registration.
func (p *Provisioner) verifyKeyPair(ctx *provisioning.Context) error {
	name := ctx.Config.KeyName
	kp, err := ctx.Infra.GetKeyPair(ctx, name)
	if err != nil {
		return err
	}
	if kp == nil {
		return fmt.Errorf("key pair %q is not registered, run `webvpc keygen` first", name)
	}
	ctx.Observer.Printf("[%s] key pair %s found (%s)", p.Name(), name, kp.Fingerprint)
	return nil
}

func (p *Provisioner) provisionSecurityGroup(ctx *provisioning.Context) error {
	declared := ctx.Stack.RuleSet
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "security group", declared.Name)

	rules := make([]aws.IngressRule, 0, len(declared.Ingress))
	for _, r := range declared.Ingress {
		rules = append(rules, aws.IngressRule{
			Protocol: r.Protocol,
			FromPort: int32(r.FromPort),
			ToPort:   int32(r.ToPort),
			Source:   r.Source,
		})
	}

	sg, err := ctx.Infra.EnsureSecurityGroup(ctx, declared.Name, ctx.State.VPCID, rules, ctx.Config.Tags())
	if err != nil {
		return err
	}
	ctx.State.SecurityGroupID = sg.ID
	ctx.State.RecordCreated(declared.Name, stack.KindSecurityRuleSet, sg.ID)
	ctx.Metrics.CountResourceOp(string(stack.KindSecurityRuleSet), "ensured")
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "security group", declared.Name, sg.ID)
	return nil
}

func (p *Provisioner) provisionIdentity(ctx *provisioning.Context) error {
	declared := ctx.Stack.Role
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "role", declared.Name)

	role, err := ctx.Infra.EnsureRole(ctx, declared.Name, declared.TrustPrincipal, ctx.Config.Tags())
	if err != nil {
		return err
	}
	ctx.State.RoleARN = role.ARN
	ctx.State.RecordCreated(declared.Name, stack.KindRole, role.ARN)
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "role", declared.Name, role.ARN)

	if err := ctx.Infra.AttachRolePolicy(ctx, declared.Name, declared.PolicyARN); err != nil {
		return err
	}
	ctx.State.RecordCreated(ctx.Config.ResourceName("role-policy"), stack.KindRolePolicyAttachment, declared.PolicyARN)

	profileName := ctx.Stack.Profile
	provisioning.LogResourceCreating(ctx.Observer, p.Name(), "instance profile", profileName)

	profile, err := ctx.Infra.EnsureInstanceProfile(ctx, profileName, declared.Name, ctx.Config.Tags())
	if err != nil {
		return err
	}
	ctx.State.ProfileARN = profile.ARN
	ctx.State.RecordCreated(profileName, stack.KindInstanceProfile, profile.ARN)
	ctx.Metrics.CountResourceOp(string(stack.KindInstanceProfile), "ensured")
	provisioning.LogResourceCreated(ctx.Observer, p.Name(), "instance profile", profileName, profile.ARN)
	return nil
}
