package handlers

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cloudshore/webvpc/internal/outputs"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/provisioning/access"
	"github.com/cloudshore/webvpc/internal/provisioning/compute"
	"github.com/cloudshore/webvpc/internal/provisioning/network"
	"github.com/cloudshore/webvpc/internal/provisioning/routing"
)

// ApplyOptions configure the apply handler.
type ApplyOptions struct {
	ConfigPath  string
	Profile     string
	MetricsAddr string
}

// applyPhases returns the creation pipeline. Overridable in tests.
var applyPhases = func() []provisioning.Phase {
	return []provisioning.Phase{
		network.NewProvisioner(),
		routing.NewProvisioner(),
		access.NewProvisioner(),
		compute.NewProvisioner(),
	}
}

// Apply provisions the stack declared in the configuration file.
//
// The run is all-or-nothing: when any phase fails, every resource the run
// created is torn down again in reverse order and the error is returned.
// On success the outputs document is written locally and, when a state
// bucket is configured, uploaded there too.
func Apply(ctx context.Context, opts ApplyOptions) error {
	cfg, err := loadConfig(opts.ConfigPath)
	if err != nil {
		return err
	}

	st, err := buildStack(cfg)
	if err != nil {
		return err
	}

	log.Printf("Applying stack: %s (%d resources)", cfg.Name, len(st.Resources()))

	awsCfg, err := loadAWSConfig(ctx, opts.Profile, cfg.Region)
	if err != nil {
		return fmt.Errorf("loading AWS configuration: %w", err)
	}

	pCtx := newProvisioningContext(ctx, cfg, st, newInfraClient(awsCfg))

	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		pCtx.Metrics = provisioning.NewMetrics(reg)
		go serveMetrics(opts.MetricsAddr, reg)
	}

	if err := provisioning.RunPhases(pCtx, applyPhases()); err != nil {
		log.Printf("Apply failed, rolling back: %v", err)
		if rbErr := provisioning.Rollback(pCtx); rbErr != nil {
			return fmt.Errorf("apply failed (%w), and rollback was incomplete: %v", err, rbErr)
		}
		return fmt.Errorf("apply failed, all created resources were rolled back: %w", err)
	}

	doc := outputs.New(cfg.Name, cfg.Region,
		pCtx.State.PublicInstanceID, pCtx.State.PrivateInstanceID, pCtx.State.PublicInstanceIP)

	if err := doc.WriteFile(outputs.DefaultFile); err != nil {
		return err
	}

	if cfg.State.Bucket != "" {
		if err := uploadOutputs(ctx, awsCfg, cfg.State.Bucket, cfg.State.Prefix, doc); err != nil {
			// The stack is up; a failed upload should not fail the apply.
			log.Printf("Warning: uploading outputs to s3://%s failed: %v", cfg.State.Bucket, err)
		}
	}

	printApplySummary(doc)
	return nil
}

func uploadOutputs(ctx context.Context, awsCfg awssdk.Config, bucket, prefix string, doc *outputs.Outputs) error {
	store := newOutputsStore(awsCfg, bucket, prefix)
	if err := store.EnsureBucket(ctx); err != nil {
		return err
	}
	data, err := doc.Marshal()
	if err != nil {
		return err
	}
	return store.Put(ctx, outputs.DefaultFile, data)
}

func serveMetrics(addr string, reg *prometheus.Registry) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	server := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Printf("metrics server: %v", err)
	}
}

func printApplySummary(doc *outputs.Outputs) {
	fmt.Println()
	printTitle("Stack is up")
	printField("Stack:", doc.Stack)
	printField("Region:", doc.Region)
	printField("Web instance:", doc.PublicInstanceID)
	printField("App instance:", doc.PrivateInstanceID)
	printURL("URL:", doc.PublicURL)
	fmt.Println()
	fmt.Printf("Outputs written to %s\n", outputs.DefaultFile)
}
