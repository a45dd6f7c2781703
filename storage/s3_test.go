package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/request"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/stretchr/testify/require"
)

// fakeS3 is an in-memory subset of the S3 API.
type fakeS3 struct {
	s3iface.S3API

	mu      sync.Mutex
	objects map[string][]byte
	down    bool
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string][]byte)}
}

func (f *fakeS3) GetObjectWithContext(_ aws.Context, in *s3.GetObjectInput, _ ...request.Option) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, awserr.New("RequestError", "connection refused", nil)
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, awserr.New(s3.ErrCodeNoSuchKey, "The specified key does not exist.", nil)
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (f *fakeS3) HeadObjectWithContext(_ aws.Context, in *s3.HeadObjectInput, _ ...request.Option) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, awserr.New("RequestError", "connection refused", nil)
	}
	data, ok := f.objects[*in.Bucket+"/"+*in.Key]
	if !ok {
		return nil, awserr.New("NotFound", "Not Found", nil)
	}
	return &s3.HeadObjectOutput{ContentLength: aws.Int64(int64(len(data)))}, nil
}

func (f *fakeS3) PutObjectWithContext(_ aws.Context, in *s3.PutObjectInput, _ ...request.Option) (*s3.PutObjectOutput, error) {
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, awserr.New("RequestError", "connection refused", nil)
	}
	f.objects[*in.Bucket+"/"+*in.Key] = data
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucketWithContext(_ aws.Context, _ *s3.HeadBucketInput, _ ...request.Option) (*s3.HeadBucketOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.down {
		return nil, awserr.New("RequestError", "connection refused", nil)
	}
	return &s3.HeadBucketOutput{}, nil
}

func TestS3Backend(t *testing.T) {
	client := newFakeS3()
	backend := newS3BackendWithClient(client, "docs", "/prod/", "s3://docs/prod/?region=us-east-1", discardLogger())

	testBackendSemantics(t, backend)

	// Object keys are {prefix}/{namespace}/{key}
	client.mu.Lock()
	_, ok := client.objects["docs/prod/identities/id-1"]
	client.mu.Unlock()
	require.True(t, ok)

	require.Equal(t, "s3-docs", backend.Name())
}

func TestS3BackendUnavailable(t *testing.T) {
	client := newFakeS3()
	client.down = true
	backend := newS3BackendWithClient(client, "docs", "", "s3://docs/", discardLogger())
	ctx := context.Background()

	require.False(t, backend.Available(ctx))

	_, err := backend.Fetch(ctx, interfaces.IdentityNamespace, "k")
	require.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
	require.False(t, errors.Is(err, interfaces.ErrContentNotFound))

	err = backend.Create(ctx, interfaces.IdentityNamespace, "k", []byte("v"))
	require.ErrorIs(t, err, interfaces.ErrBackendUnavailable)
}

func TestNewS3BackendRedactsSecret(t *testing.T) {
	backend, err := NewS3Backend("docs", "prefix", "eu-west-1", "http://localhost:9000", "AKIA", "topsecret", discardLogger())
	require.NoError(t, err)
	require.NotContains(t, backend.LocationURI(), "topsecret")
	require.Contains(t, backend.LocationURI(), "AKIA:***@docs")
}
