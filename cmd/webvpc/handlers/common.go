// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"

	"github.com/cloudshore/webvpc/internal/config"
	"github.com/cloudshore/webvpc/internal/platform/aws"
	"github.com/cloudshore/webvpc/internal/platform/s3"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/stack"
	"github.com/cloudshore/webvpc/internal/userdata"
)

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadConfigFile loads config from file.
	loadConfigFile = config.LoadFile

	// loadAWSConfig loads the AWS SDK configuration.
	loadAWSConfig = aws.LoadAWSConfig

	// newInfraClient creates a new infrastructure client.
	newInfraClient = func(cfg awssdk.Config) aws.InfrastructureManager {
		return aws.NewRealClient(cfg)
	}

	// newOutputsStore creates the remote outputs store.
	newOutputsStore = func(cfg awssdk.Config, bucket, prefix string) outputsStore {
		return s3.NewStore(cfg, bucket, prefix)
	}

	// newProvisioningContext creates a new provisioning context.
	newProvisioningContext = provisioning.NewContext

	// renderUserData renders the public instance first-boot script.
	renderUserData = userdata.WebServer
)

// outputsStore is the remote storage surface handlers depend on.
type outputsStore interface {
	EnsureBucket(ctx context.Context) error
	Put(ctx context.Context, name string, data []byte) error
	Get(ctx context.Context, name string) ([]byte, error)
	Delete(ctx context.Context, name string) error
}

// loadConfig loads the stack declaration, falling back to the default file.
func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		path = config.DefaultConfigFile
	}
	cfg, err := loadConfigFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", path, err)
	}
	return cfg, nil
}

// buildStack resolves the declaration into the resource graph.
func buildStack(cfg *config.Config) (*stack.Stack, error) {
	script, err := renderUserData(cfg.Name)
	if err != nil {
		return nil, err
	}
	return stack.Build(cfg, script)
}
