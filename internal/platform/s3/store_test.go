package s3

import (
	"context"
	"io"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubS3 struct {
	S3API

	createBucket func(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
	headBucket   func(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	putObject    func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	getObject    func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

func (s *stubS3) CreateBucket(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	return s.createBucket(ctx, params, optFns...)
}

func (s *stubS3) HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return s.headBucket(ctx, params, optFns...)
}

func (s *stubS3) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	return s.putObject(ctx, params, optFns...)
}

func (s *stubS3) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	return s.getObject(ctx, params, optFns...)
}

type apiError struct {
	code string
}

func (e *apiError) Error() string                 { return e.code }
func (e *apiError) ErrorCode() string             { return e.code }
func (e *apiError) ErrorMessage() string          { return e.code }
func (e *apiError) ErrorFault() smithy.ErrorFault { return smithy.FaultClient }

func TestEnsureBucketSkipsExisting(t *testing.T) {
	stub := &stubS3{
		headBucket: func(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
			return &s3.HeadBucketOutput{}, nil
		},
		createBucket: func(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
			t.Fatal("bucket should not be recreated")
			return nil, nil
		},
	}

	store := NewStoreWithAPI(stub, "demo-state", "stacks/demo")
	assert.NoError(t, store.EnsureBucket(context.Background()))
}

func TestEnsureBucketCreatesMissing(t *testing.T) {
	var created bool
	stub := &stubS3{
		headBucket: func(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
			return nil, &apiError{code: "NotFound"}
		},
		createBucket: func(ctx context.Context, params *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
			created = true
			assert.Equal(t, "demo-state", aws.ToString(params.Bucket))
			return &s3.CreateBucketOutput{}, nil
		},
	}

	store := NewStoreWithAPI(stub, "demo-state", "stacks/demo")
	require.NoError(t, store.EnsureBucket(context.Background()))
	assert.True(t, created)
}

func TestPutPrefixesKey(t *testing.T) {
	stub := &stubS3{
		putObject: func(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
			assert.Equal(t, "stacks/demo/outputs.yaml", aws.ToString(params.Key))
			return &s3.PutObjectOutput{}, nil
		},
	}

	store := NewStoreWithAPI(stub, "demo-state", "stacks/demo")
	assert.NoError(t, store.Put(context.Background(), "outputs.yaml", []byte("stack: demo\n")))
}

func TestGetMissingObjectReturnsNil(t *testing.T) {
	stub := &stubS3{
		getObject: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return nil, &apiError{code: "NoSuchKey"}
		},
	}

	store := NewStoreWithAPI(stub, "demo-state", "stacks/demo")
	data, err := store.Get(context.Background(), "outputs.yaml")
	require.NoError(t, err)
	assert.Nil(t, data)
}

func TestGetReadsBody(t *testing.T) {
	stub := &stubS3{
		getObject: func(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
			return &s3.GetObjectOutput{
				Body: io.NopCloser(strings.NewReader("stack: demo\n")),
			}, nil
		},
	}

	store := NewStoreWithAPI(stub, "demo-state", "stacks/demo")
	data, err := store.Get(context.Background(), "outputs.yaml")
	require.NoError(t, err)
	assert.Equal(t, "stack: demo\n", string(data))
}
