package handlers

import (
	"context"
	"fmt"

	"github.com/cloudshore/webvpc/internal/outputs"
)

// OutputsOptions configure the outputs handler.
type OutputsOptions struct {
	ConfigPath string
	Profile    string
	Remote     bool
}

// Outputs prints the outputs document of the last successful apply.
func Outputs(ctx context.Context, opts OutputsOptions) error {
	doc, err := loadOutputs(ctx, opts)
	if err != nil {
		return err
	}

	printTitle(fmt.Sprintf("Stack %s", doc.Stack))
	printField("Region:", doc.Region)
	printField("Web instance:", doc.PublicInstanceID)
	printField("App instance:", doc.PrivateInstanceID)
	printURL("URL:", doc.PublicURL)
	printField("Applied:", doc.GeneratedAt.Format("2006-01-02 15:04:05 MST"))
	return nil
}

func loadOutputs(ctx context.Context, opts OutputsOptions) (*outputs.Outputs, error) {
	if !opts.Remote {
		doc, err := outputs.LoadFile(outputs.DefaultFile)
		if err != nil {
			return nil, fmt.Errorf("reading %s (did apply succeed?): %w", outputs.DefaultFile, err)
		}
		return doc, nil
	}

	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return nil, err
	}
	if cfg.State.Bucket == "" {
		return nil, fmt.Errorf("no state bucket configured, cannot read remote outputs")
	}

	awsCfg, err := loadAWSConfig(ctx, opts.Profile, cfg.Region)
	if err != nil {
		return nil, fmt.Errorf("loading AWS configuration: %w", err)
	}

	store := newOutputsStore(awsCfg, cfg.State.Bucket, cfg.State.Prefix)
	data, err := store.Get(ctx, outputs.DefaultFile)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, fmt.Errorf("no outputs found in s3://%s", cfg.State.Bucket)
	}
	return outputs.Load(data)
}
