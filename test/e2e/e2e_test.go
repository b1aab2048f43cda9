// Package e2e provisions a real stack against AWS and tears it down again.
//
// The test is skipped unless WEBVPC_E2E=1 and AWS credentials are available
// in the environment. It creates billable resources; the NAT gateway alone
// takes a few minutes to come up and has an hourly price.
package e2e

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/cloudshore/webvpc/internal/config"
	"github.com/cloudshore/webvpc/internal/platform/aws"
	"github.com/cloudshore/webvpc/internal/provisioning"
	"github.com/cloudshore/webvpc/internal/provisioning/access"
	"github.com/cloudshore/webvpc/internal/provisioning/compute"
	"github.com/cloudshore/webvpc/internal/provisioning/destroy"
	"github.com/cloudshore/webvpc/internal/provisioning/network"
	"github.com/cloudshore/webvpc/internal/provisioning/routing"
	"github.com/cloudshore/webvpc/internal/stack"
	"github.com/cloudshore/webvpc/internal/userdata"
)

func TestE2E_FullLifecycle(t *testing.T) {
	if os.Getenv("WEBVPC_E2E") == "" {
		t.Skip("WEBVPC_E2E not set, skipping E2E test")
	}
	region := os.Getenv("WEBVPC_E2E_REGION")
	if region == "" {
		region = "us-east-1"
	}
	imageID := os.Getenv("WEBVPC_E2E_IMAGE_ID")
	if imageID == "" {
		t.Skip("WEBVPC_E2E_IMAGE_ID not set (region-specific AMI), skipping E2E test")
	}
	keyName := os.Getenv("WEBVPC_E2E_KEY_NAME")
	if keyName == "" {
		t.Skip("WEBVPC_E2E_KEY_NAME not set (pre-registered key pair), skipping E2E test")
	}

	cfg := &config.Config{
		Name:             fmt.Sprintf("e2e-%d", time.Now().Unix()),
		Region:           region,
		AvailabilityZone: region + "a",
		KeyName:          keyName,
		ImageID:          imageID,
		InstanceType:     "t3.micro",
		Network: config.NetworkConfig{
			CIDR:              "10.42.0.0/16",
			PublicSubnetCIDR:  "10.42.1.0/24",
			PrivateSubnetCIDR: "10.42.2.0/24",
		},
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("config: %v", err)
	}

	script, err := userdata.WebServer(cfg.Name)
	if err != nil {
		t.Fatalf("user data: %v", err)
	}
	st, err := stack.Build(cfg, script)
	if err != nil {
		t.Fatalf("stack: %v", err)
	}

	ctx := context.Background()
	awsCfg, err := aws.LoadAWSConfig(ctx, os.Getenv("WEBVPC_E2E_PROFILE"), region)
	if err != nil {
		t.Fatalf("AWS config: %v", err)
	}
	client := aws.NewRealClient(awsCfg)
	pCtx := provisioning.NewContext(ctx, cfg, st, client)

	// Whatever happens below, try to leave the account clean.
	t.Cleanup(func() {
		dCtx := provisioning.NewContext(context.Background(), cfg, st, client)
		if err := destroy.NewProvisioner().Provision(dCtx); err != nil {
			t.Errorf("cleanup destroy failed, resources may linger: %v", err)
		}
	})

	phases := []provisioning.Phase{
		network.NewProvisioner(),
		routing.NewProvisioner(),
		access.NewProvisioner(),
		compute.NewProvisioner(),
	}

	t.Logf("Applying stack %s in %s...", cfg.Name, region)
	if err := provisioning.RunPhases(pCtx, phases); err != nil {
		t.Fatalf("apply failed: %v", err)
	}

	t.Log("Verifying resources...")
	vpc, err := client.GetVPC(ctx, st.Network.Name)
	if err != nil || vpc == nil {
		t.Fatalf("VPC %s not found: %v", st.Network.Name, err)
	}
	if vpc.CIDR != cfg.Network.CIDR {
		t.Errorf("VPC block = %s, want %s", vpc.CIDR, cfg.Network.CIDR)
	}

	web, err := client.GetInstance(ctx, st.PublicInstance.Name)
	if err != nil || web == nil {
		t.Fatalf("web instance not found: %v", err)
	}
	if web.PublicIP == "" {
		t.Error("web instance has no public address")
	}

	app, err := client.GetInstance(ctx, st.PrivateInstance.Name)
	if err != nil || app == nil {
		t.Fatalf("app instance not found: %v", err)
	}
	if app.PublicIP != "" {
		t.Errorf("app instance has public address %s, want none", app.PublicIP)
	}

	if pCtx.State.PublicInstanceIP == "" {
		t.Error("state carries no public instance address")
	}

	t.Log("Destroying stack...")
	dCtx := provisioning.NewContext(ctx, cfg, st, client)
	if err := destroy.NewProvisioner().Provision(dCtx); err != nil {
		t.Fatalf("destroy failed: %v", err)
	}

	t.Log("Verifying destruction...")
	vpc, err = client.GetVPC(ctx, st.Network.Name)
	if err != nil {
		t.Fatalf("describing VPC after destroy: %v", err)
	}
	if vpc != nil {
		t.Errorf("VPC %s still exists", st.Network.Name)
	}
}
