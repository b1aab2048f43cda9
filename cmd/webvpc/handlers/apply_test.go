package handlers

import (
	"context"
	"errors"
	"os"
	"testing"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cloudshore/webvpc/internal/config"
	"github.com/cloudshore/webvpc/internal/outputs"
	"github.com/cloudshore/webvpc/internal/platform/aws"
)

func TestApply_WritesOutputs(t *testing.T) {
	saveAndRestoreFactories(t)
	t.Chdir(t.TempDir())

	stubCommonFactories(testHandlerConfig())

	err := Apply(context.Background(), ApplyOptions{ConfigPath: "webvpc.yaml"})
	require.NoError(t, err)

	doc, err := outputs.LoadFile(outputs.DefaultFile)
	require.NoError(t, err)
	assert.Equal(t, "demo", doc.Stack)
	assert.Equal(t, "us-east-1", doc.Region)
	assert.Equal(t, "i-demo-web", doc.PublicInstanceID)
	assert.Equal(t, "i-demo-app", doc.PrivateInstanceID)
	assert.Equal(t, "http://198.51.100.20", doc.PublicURL)
}

func TestApply_UploadsOutputsWhenBucketConfigured(t *testing.T) {
	saveAndRestoreFactories(t)
	t.Chdir(t.TempDir())

	cfg := testHandlerConfig()
	cfg.State = config.StateConfig{Bucket: "demo-state", Prefix: "stacks/demo"}
	stubCommonFactories(cfg)

	store := newFakeStore()
	newOutputsStore = func(_ awssdk.Config, bucket, prefix string) outputsStore {
		assert.Equal(t, "demo-state", bucket)
		assert.Equal(t, "stacks/demo", prefix)
		return store
	}

	err := Apply(context.Background(), ApplyOptions{})
	require.NoError(t, err)

	assert.True(t, store.ensured)
	uploaded, err := outputs.Load(store.objects[outputs.DefaultFile])
	require.NoError(t, err)
	assert.Equal(t, "http://198.51.100.20", uploaded.PublicURL)
}

func TestApply_UploadFailureDoesNotFailApply(t *testing.T) {
	saveAndRestoreFactories(t)
	t.Chdir(t.TempDir())

	cfg := testHandlerConfig()
	cfg.State.Bucket = "demo-state"
	stubCommonFactories(cfg)

	store := newFakeStore()
	store.putErr = errors.New("access denied")
	newOutputsStore = func(_ awssdk.Config, _, _ string) outputsStore { return store }

	err := Apply(context.Background(), ApplyOptions{})
	require.NoError(t, err)
}

func TestApply_RollsBackOnPhaseFailure(t *testing.T) {
	saveAndRestoreFactories(t)
	t.Chdir(t.TempDir())

	mock := stubCommonFactories(testHandlerConfig())
	mock.EnsureInstanceFunc = func(_ context.Context, _ aws.InstanceCreateOpts) (*aws.Instance, error) {
		return nil, errors.New("InsufficientInstanceCapacity")
	}

	var deleted []string
	mock.DeleteVPCFunc = func(_ context.Context, name string) error {
		deleted = append(deleted, name)
		return nil
	}
	mock.DeleteNATGatewayFunc = func(_ context.Context, name string) error {
		deleted = append(deleted, name)
		return nil
	}

	err := Apply(context.Background(), ApplyOptions{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rolled back")

	// Everything created before the failure is torn down again, NAT before VPC.
	assert.Equal(t, []string{"demo-nat", "demo-network"}, deleted)

	_, statErr := os.Stat(outputs.DefaultFile)
	assert.True(t, os.IsNotExist(statErr), "outputs file must not exist after a failed apply")
}

func TestApply_ConfigLoadError(t *testing.T) {
	saveAndRestoreFactories(t)

	loadConfigFile = func(_ string) (*config.Config, error) {
		return nil, errors.New("file not found")
	}

	err := Apply(context.Background(), ApplyOptions{ConfigPath: "missing.yaml"})
	require.Error(t, err)
}

func TestApply_AWSConfigError(t *testing.T) {
	saveAndRestoreFactories(t)

	stubCommonFactories(testHandlerConfig())
	loadAWSConfig = func(_ context.Context, _, _ string) (awssdk.Config, error) {
		return awssdk.Config{}, errors.New("no credentials")
	}

	err := Apply(context.Background(), ApplyOptions{Profile: "missing"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "AWS configuration")
}
