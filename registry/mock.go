package registry

import (
	"context"

	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/stretchr/testify/mock"
)

// MockIdentityStore mocks the interfaces.IdentityStore interface
type MockIdentityStore struct {
	mock.Mock
}

// Get mocks the Get method
func (m *MockIdentityStore) Get(ctx context.Context, id string) (*interfaces.Identity, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Identity), args.Error(1)
}

// Create mocks the Create method
func (m *MockIdentityStore) Create(ctx context.Context, identity *interfaces.Identity) (string, error) {
	args := m.Called(ctx, identity)
	return args.String(0), args.Error(1)
}

// FindByPublicKey mocks the FindByPublicKey method
func (m *MockIdentityStore) FindByPublicKey(ctx context.Context, publicKey interfaces.PublicKey) (*interfaces.Identity, error) {
	args := m.Called(ctx, publicKey)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.Identity), args.Error(1)
}

// MockRegistryStore mocks the interfaces.RegistryStore interface
type MockRegistryStore struct {
	mock.Mock
}

// Insert mocks the Insert method
func (m *MockRegistryStore) Insert(ctx context.Context, entry *interfaces.RegistryEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

// FindBySignature mocks the FindBySignature method
func (m *MockRegistryStore) FindBySignature(ctx context.Context, signature interfaces.Signature) (*interfaces.RegistryEntry, error) {
	args := m.Called(ctx, signature)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*interfaces.RegistryEntry), args.Error(1)
}

var (
	_ interfaces.IdentityStore = (*MockIdentityStore)(nil)
	_ interfaces.RegistryStore = (*MockRegistryStore)(nil)
	_ interfaces.IdentityStore = (*IdentityStore)(nil)
	_ interfaces.RegistryStore = (*SignatureRegistry)(nil)
)
