package main

import (
	"context"
	"errors"
	"strings"

	"github.com/ruteri/doc-signing-backend/api"
	"github.com/ruteri/doc-signing-backend/cmd/flags"
	"github.com/ruteri/doc-signing-backend/document"
	"github.com/ruteri/doc-signing-backend/signing"
)

var errDisplayNameRequired = errors.New("display name is required")

// localService runs the signing operations in-process against the
// configured storage backends.
type localService struct {
	services *flags.Services
}

func newLocalService(services *flags.Services) *localService {
	return &localService{services: services}
}

func (l *localService) CreateIdentity(ctx context.Context, displayName, password string) (*api.IdentityResponse, error) {
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return nil, errDisplayNameRequired
	}

	identity, err := signing.Enroll(ctx, l.services.Identities, displayName, []byte(password))
	if err != nil {
		return nil, err
	}
	return api.NewIdentityResponse(identity), nil
}

func (l *localService) GetIdentity(ctx context.Context, id string) (*api.IdentityResponse, error) {
	identity, err := l.services.Identities.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return api.NewIdentityResponse(identity), nil
}

func (l *localService) Sign(ctx context.Context, doc []byte, identityID, password, filename string) (*api.SignResponse, error) {
	result, err := l.services.Signer.Sign(ctx, &signing.SignRequest{
		Document:   doc,
		IdentityID: identityID,
		Password:   []byte(password),
		Filename:   filename,
	})
	if err != nil {
		return nil, err
	}

	return &api.SignResponse{
		Signed:        result.Signed,
		Signature:     result.Signature,
		PublicKey:     result.PublicKey,
		ContentDigest: result.ContentDigest,
		Registered:    result.Registered,
	}, nil
}

func (l *localService) Verify(ctx context.Context, doc []byte) (*api.VerifyResponse, error) {
	return l.services.Verifier.Verify(ctx, doc)
}

func (l *localService) Inspect(_ context.Context, doc []byte) (*api.InspectResponse, error) {
	return &api.InspectResponse{Signed: document.HasEnvelope(doc)}, nil
}

var _ api.SigningService = (*localService)(nil)
