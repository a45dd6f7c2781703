package clients

import (
	"context"

	"github.com/ruteri/doc-signing-backend/api"
	"github.com/stretchr/testify/mock"
)

// MockSigningService implements api.SigningService for testing.
// The behavior is determined by how the mock is configured in tests.
type MockSigningService struct {
	mock.Mock
}

func (m *MockSigningService) CreateIdentity(ctx context.Context, displayName, password string) (*api.IdentityResponse, error) {
	args := m.Called(ctx, displayName, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.IdentityResponse), args.Error(1)
}

func (m *MockSigningService) GetIdentity(ctx context.Context, id string) (*api.IdentityResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.IdentityResponse), args.Error(1)
}

func (m *MockSigningService) Sign(ctx context.Context, doc []byte, identityID, password, filename string) (*api.SignResponse, error) {
	args := m.Called(ctx, doc, identityID, password, filename)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.SignResponse), args.Error(1)
}

func (m *MockSigningService) Verify(ctx context.Context, doc []byte) (*api.VerifyResponse, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.VerifyResponse), args.Error(1)
}

func (m *MockSigningService) Inspect(ctx context.Context, doc []byte) (*api.InspectResponse, error) {
	args := m.Called(ctx, doc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.InspectResponse), args.Error(1)
}

var _ api.SigningService = (*MockSigningService)(nil)
