package provisioning

import "github.com/cloudshore/webvpc/internal/stack"

// CreatedResource records one resource the pipeline brought into existence,
// in creation order. Rollback walks the list backwards.
type CreatedResource struct {
	Name string
	Kind stack.Kind
	ID   string
}

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Network results (populated by the network phase)
	VPCID           string
	PublicSubnetID  string
	PrivateSubnetID string
	GatewayID       string

	// Routing results (populated by the routing phase)
	AllocationID string
	NATPublicIP  string
	NATID        string
	PublicRTID   string
	PrivateRTID  string

	// Access results (populated by the access phase)
	SecurityGroupID string
	RoleARN         string
	ProfileARN      string

	// Compute results (populated by the compute phase)
	PublicInstanceID  string
	PrivateInstanceID string
	PublicInstanceIP  string
	PrivateInstanceIP string

	// created tracks every resource the run brought into existence,
	// in creation order, for rollback on failure.
	created []CreatedResource
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}

// RecordCreated appends a resource to the rollback list.
func (s *State) RecordCreated(name string, kind stack.Kind, id string) {
	s.created = append(s.created, CreatedResource{Name: name, Kind: kind, ID: id})
}

// Created returns the resources created so far, in creation order.
func (s *State) Created() []CreatedResource {
	out := make([]CreatedResource, len(s.created))
	copy(out, s.created)
	return out
}
