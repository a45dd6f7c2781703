package registry

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/ruteri/doc-signing-backend/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testIdentity(keyByte byte) *interfaces.Identity {
	var pub interfaces.PublicKey
	pub[0] = keyByte
	return &interfaces.Identity{
		DisplayName:       "Alice",
		PublicKey:         pub,
		WrappedPrivateKey: []byte("ciphertext-and-tag"),
		Nonce:             make([]byte, 12),
		KDFSalt:           make([]byte, 32),
	}
}

func TestIdentityStoreCreateGet(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityStore(storage.NewMemoryBackend("ids", testLogger()), testLogger())

	identity := testIdentity(1)
	id, err := store.Create(ctx, identity)
	require.NoError(t, err)
	require.NotEmpty(t, id)
	assert.Equal(t, id, identity.ID)
	assert.False(t, identity.CreatedAt.IsZero())

	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, identity.PublicKey, got.PublicKey)
	assert.Equal(t, identity.WrappedPrivateKey, got.WrappedPrivateKey)
	assert.Equal(t, identity.Nonce, got.Nonce)
	assert.Equal(t, identity.KDFSalt, got.KDFSalt)
	assert.Equal(t, "Alice", got.DisplayName)
	assert.True(t, identity.CreatedAt.Equal(got.CreatedAt))

	byKey, err := store.FindByPublicKey(ctx, identity.PublicKey)
	require.NoError(t, err)
	assert.Equal(t, id, byKey.ID)
}

func TestIdentityStoreNotFound(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityStore(storage.NewMemoryBackend("ids", testLogger()), testLogger())

	_, err := store.Get(ctx, "00000000-0000-0000-0000-000000000000")
	require.ErrorIs(t, err, interfaces.ErrIdentityNotFound)

	// Keys that can never be stored are simply unknown
	_, err = store.Get(ctx, "../etc/passwd")
	require.ErrorIs(t, err, interfaces.ErrIdentityNotFound)

	_, err = store.FindByPublicKey(ctx, interfaces.PublicKey{9})
	require.ErrorIs(t, err, interfaces.ErrIdentityNotFound)
}

func TestIdentityStoreConflicts(t *testing.T) {
	ctx := context.Background()
	store := NewIdentityStore(storage.NewMemoryBackend("ids", testLogger()), testLogger())

	first := testIdentity(1)
	id, err := store.Create(ctx, first)
	require.NoError(t, err)

	// Same public key, new identity
	_, err = store.Create(ctx, testIdentity(1))
	require.ErrorIs(t, err, interfaces.ErrConflict)

	// Same ID, new public key
	dup := testIdentity(2)
	dup.ID = id
	_, err = store.Create(ctx, dup)
	require.ErrorIs(t, err, interfaces.ErrConflict)

	// The dangling index entry does not resolve to the other identity
	_, err = store.FindByPublicKey(ctx, dup.PublicKey)
	require.ErrorIs(t, err, interfaces.ErrIdentityNotFound)

	// Original identity is unchanged
	got, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, first.PublicKey, got.PublicKey)
}

func TestIdentityStoreRejectsMissingKey(t *testing.T) {
	store := NewIdentityStore(storage.NewMemoryBackend("ids", testLogger()), testLogger())
	_, err := store.Create(context.Background(), &interfaces.Identity{DisplayName: "nobody"})
	require.Error(t, err)
}

func TestIdentityStoreBackendFailure(t *testing.T) {
	backendErr := errors.New("disk on fire")
	backend := &mockBackend{}
	backend.On("Fetch", mock.Anything, interfaces.IdentityNamespace, "id").Return(nil, backendErr)
	backend.On("Create", mock.Anything, interfaces.PublicKeyNamespace, mock.Anything, mock.Anything).Return(backendErr)

	store := NewIdentityStore(backend, testLogger())

	_, err := store.Get(context.Background(), "id")
	require.ErrorIs(t, err, backendErr)
	require.False(t, errors.Is(err, interfaces.ErrIdentityNotFound))

	_, err = store.Create(context.Background(), testIdentity(3))
	require.ErrorIs(t, err, backendErr)

	backend.AssertExpectations(t)
}

func TestSignatureRegistry(t *testing.T) {
	ctx := context.Background()
	reg := NewSignatureRegistry(storage.NewMemoryBackend("sigs", testLogger()), testLogger())

	entry := &interfaces.RegistryEntry{
		ContentDigest: interfaces.ComputeDigest([]byte("doc")),
		Signature:     interfaces.Signature{1, 2, 3},
		SignerID:      "signer",
		Filename:      "contract.docx",
		CreatedAt:     time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC),
	}
	require.NoError(t, reg.Insert(ctx, entry))

	got, err := reg.FindBySignature(ctx, entry.Signature)
	require.NoError(t, err)
	require.Equal(t, entry, got)

	// Signatures are unique
	err = reg.Insert(ctx, &interfaces.RegistryEntry{Signature: entry.Signature, SignerID: "other"})
	require.ErrorIs(t, err, interfaces.ErrConflict)

	got, err = reg.FindBySignature(ctx, entry.Signature)
	require.NoError(t, err)
	require.Equal(t, "signer", got.SignerID)

	_, err = reg.FindBySignature(ctx, interfaces.Signature{9})
	require.ErrorIs(t, err, interfaces.ErrEntryNotFound)
}

func TestDocumentArchive(t *testing.T) {
	ctx := context.Background()
	archive := NewDocumentArchive(storage.NewMemoryBackend("docs", testLogger()))

	data := []byte("signed document bytes")
	digest, err := archive.Store(ctx, data)
	require.NoError(t, err)
	require.Equal(t, interfaces.ComputeDigest(data), digest)

	// Idempotent
	again, err := archive.Store(ctx, data)
	require.NoError(t, err)
	require.Equal(t, digest, again)

	got, err := archive.Fetch(ctx, digest)
	require.NoError(t, err)
	require.Equal(t, data, got)

	_, err = archive.Fetch(ctx, interfaces.ContentDigest{})
	require.ErrorIs(t, err, ErrDocumentNotFound)
}

// mockBackend is a testify mock of interfaces.StorageBackend.
type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) Fetch(ctx context.Context, ns interfaces.Namespace, key string) ([]byte, error) {
	args := m.Called(ctx, ns, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockBackend) Create(ctx context.Context, ns interfaces.Namespace, key string, data []byte) error {
	return m.Called(ctx, ns, key, data).Error(0)
}

func (m *mockBackend) Available(ctx context.Context) bool { return true }
func (m *mockBackend) Name() string                       { return "mock" }
func (m *mockBackend) LocationURI() string                { return "mock:" }
