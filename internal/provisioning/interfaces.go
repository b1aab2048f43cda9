// Package provisioning provides shared types and interfaces for stack
// provisioning.
//
// The provisioning domain is organized into focused subpackages:
//   - network/: VPC, subnets, internet gateway and its attachment
//   - routing/: elastic address, NAT gateway, route tables and routes
//   - access/: key pair check, security rule set, role and profile
//   - compute/: the two instances
//   - destroy/: teardown in reverse creation order
//
// This root package contains the phase contract, the shared state and the
// observability types used across subpackages.
package provisioning

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}
