package handlers

import (
	"context"
	"fmt"
	"log"
	"os"

	"github.com/charmbracelet/huh"

	"github.com/cloudshore/webvpc/internal/outputs"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/provisioning/destroy"
)

// DestroyOptions configure the destroy handler.
type DestroyOptions struct {
	ConfigPath string
	Profile    string
	Force      bool
}

// Provisioner interface for testing - matches provisioning.Phase.
type Provisioner interface {
	Provision(ctx *provisioning.Context) error
}

// newDestroyProvisioner creates the destroy provisioner. Overridable in tests.
var newDestroyProvisioner = func() Provisioner {
	return destroy.NewProvisioner()
}

// confirmDestroy asks for interactive confirmation. Overridable in tests.
var confirmDestroy = func(stackName string) (bool, error) {
	var confirmed bool
	form := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(fmt.Sprintf("Destroy stack %q and every resource it manages?", stackName)).
			Affirmative("Destroy").
			Negative("Cancel").
			Value(&confirmed),
	))
	if err := form.Run(); err != nil {
		return false, err
	}
	return confirmed, nil
}

// Destroy deletes every resource of the declared stack in reverse
// dependency order. The registered key pair is left in place.
func Destroy(ctx context.Context, opts DestroyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	if !opts.Force && isTerminal() {
		ok, err := confirmDestroy(cfg.Name)
		if err != nil {
			return err
		}
		if !ok {
			fmt.Println("Destroy cancelled.")
			return nil
		}
	}

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	log.Printf("Destroying stack: %s", cfg.Name)

	awsCfg, err := loadAWSConfig(ctx, opts.Profile, cfg.Region)
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	pCtx := newProvisioningContext(ctx, cfg, st, newInfraClient(awsCfg))

	if err := newDestroyProvisioner().Provision(pCtx); err != nil {
		return fmt.Errorf("destroy failed: %w", err)
	}

	if cfg.State.Bucket != "" {
		store := newOutputsStore(awsCfg, cfg.State.Bucket, cfg.State.Prefix)
		if err := store.Delete(ctx, outputs.DefaultFile); err != nil {
			// Resources are gone; a leftover outputs object is cosmetic.
			log.Printf("Warning: deleting outputs from s3://%s failed: %v", cfg.State.Bucket, err)
		}
	}

	if err := os.Remove(outputs.DefaultFile); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: removing %s failed: %v", outputs.DefaultFile, err)
	}

	log.Printf("Stack %s destroyed successfully", cfg.Name)
	return nil
}
