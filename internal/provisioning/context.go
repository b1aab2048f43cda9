package provisioning

import (
	"context"

	"github.com/cloudshore/webvpc/internal/config"
	"github.com/cloudshore/webvpc/internal/platform/aws"
	"github.com/cloudshore/webvpc/internal/stack"
)

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Config   *config.Config
	Stack    *stack.Stack
	State    *State
	Infra    aws.InfrastructureManager
	Observer Observer
	Timeouts *config.Timeouts
	Metrics  *Metrics
}

// NewContext creates a new provisioning context.
func NewContext(
	ctx context.Context,
	cfg *config.Config,
	st *stack.Stack,
	infra aws.InfrastructureManager,
) *Context {
	return &Context{
		Context:  ctx,
		Config:   cfg,
		Stack:    st,
		State:    NewState(),
		Infra:    infra,
		Observer: NewConsoleObserver(),
		Timeouts: config.LoadTimeouts(),
	}
}
