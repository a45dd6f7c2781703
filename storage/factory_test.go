package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustLocation(t *testing.T, uri string) interfaces.StorageBackendLocation {
	t.Helper()
	location, err := interfaces.NewStorageBackendLocation(uri)
	require.NoError(t, err)
	return location
}

func TestStorageBackendFor(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger())
	dir := t.TempDir()

	tests := []struct {
		name     string
		uri      string
		expected interface{}
		wantErr  bool
	}{
		{name: "memory", uri: "memory://", expected: &MemoryBackend{}},
		{name: "named memory", uri: "memory://tests", expected: &MemoryBackend{}},
		{name: "file", uri: "file://" + filepath.Join(dir, "records"), expected: &FileBackend{}},
		{name: "s3", uri: "s3://AKIA:secret@bucket/prefix?region=eu-west-1", expected: &S3Backend{}},
		{name: "vault", uri: "vault://127.0.0.1:8200/secret/docsign", expected: &VaultBackend{}},
		{name: "ipfs", uri: "ipfs://127.0.0.1:5001/docsign", expected: &IPFSBackend{}},
		{name: "ipfs without host", uri: "ipfs:///docsign", wantErr: true},
		{name: "s3 without bucket", uri: "s3:///prefix", wantErr: true},
		{name: "vault without mount", uri: "vault://127.0.0.1:8200/", wantErr: true},
		{name: "file without path", uri: "file://", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend, err := factory.StorageBackendFor(mustLocation(t, tt.uri))
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.IsType(t, tt.expected, backend)
		})
	}
}

func TestNewStorageBackendLocationRejectsUnknownScheme(t *testing.T) {
	for _, uri := range []string{"github://owner/repo", "ftp://host/path", "://bad"} {
		_, err := interfaces.NewStorageBackendLocation(uri)
		require.ErrorIs(t, err, interfaces.ErrInvalidLocationURI, uri)
	}
}

func TestBackendFromURIs(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger())

	_, err := factory.BackendFromURIs(nil)
	require.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)

	_, err = factory.BackendFromURIs([]string{"gopher://nope"})
	require.ErrorIs(t, err, interfaces.ErrInvalidLocationURI)

	single, err := factory.BackendFromURIs([]string{"memory://one"})
	require.NoError(t, err)
	require.IsType(t, &MemoryBackend{}, single)

	multi, err := factory.BackendFromURIs([]string{"memory://one", "file://" + t.TempDir()})
	require.NoError(t, err)
	require.IsType(t, &MultiStorageBackend{}, multi)

	// Writes reach every backend
	ctx := context.Background()
	require.NoError(t, multi.Create(ctx, interfaces.IdentityNamespace, "k", []byte("v")))
	data, err := multi.Fetch(ctx, interfaces.IdentityNamespace, "k")
	require.NoError(t, err)
	require.Equal(t, []byte("v"), data)
	require.ErrorIs(t, multi.Create(ctx, interfaces.IdentityNamespace, "k", []byte("w")), interfaces.ErrContentExists)
}

func TestCreateMultiBackendSkipsInvalid(t *testing.T) {
	factory := NewStorageBackendFactory(discardLogger())

	backend, err := factory.CreateMultiBackend([]interfaces.StorageBackendLocation{
		mustLocation(t, "s3:///missing-bucket"),
		mustLocation(t, "memory://ok"),
	})
	require.NoError(t, err)
	require.Equal(t, "multi:[memory://ok]", backend.LocationURI())

	_, err = factory.CreateMultiBackend([]interfaces.StorageBackendLocation{mustLocation(t, "s3:///missing-bucket")})
	require.Error(t, err)
}

func TestRedactLocation(t *testing.T) {
	location := mustLocation(t, "s3://AKIA:topsecret@bucket/prefix")
	require.Equal(t, "s3://AKIA:***@bucket/prefix", redactLocation(location))
}
