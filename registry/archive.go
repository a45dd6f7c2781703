package registry

import (
	"context"
	"errors"
	"fmt"

	"github.com/ruteri/doc-signing-backend/interfaces"
)

// ErrDocumentNotFound is returned when no archived document has the digest.
var ErrDocumentNotFound = errors.New("document not found")

// DocumentArchive stores signed documents addressed by their SHA-256 digest.
type DocumentArchive struct {
	backend interfaces.StorageBackend
}

// NewDocumentArchive creates an archive on top of backend.
func NewDocumentArchive(backend interfaces.StorageBackend) *DocumentArchive {
	return &DocumentArchive{backend: backend}
}

// Store archives data and returns its digest. Storing the same bytes twice is
// not an error.
func (a *DocumentArchive) Store(ctx context.Context, data []byte) (interfaces.ContentDigest, error) {
	digest := interfaces.ComputeDigest(data)
	err := a.backend.Create(ctx, interfaces.DocumentNamespace, digest.String(), data)
	if err != nil && !errors.Is(err, interfaces.ErrContentExists) {
		return digest, fmt.Errorf("failed to archive document: %w", err)
	}
	return digest, nil
}

// Fetch returns the archived document with the given digest.
func (a *DocumentArchive) Fetch(ctx context.Context, digest interfaces.ContentDigest) ([]byte, error) {
	data, err := a.backend.Fetch(ctx, interfaces.DocumentNamespace, digest.String())
	if errors.Is(err, interfaces.ErrContentNotFound) {
		return nil, ErrDocumentNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}
	if interfaces.ComputeDigest(data) != digest {
		return nil, fmt.Errorf("archived document does not match digest %s", digest)
	}
	return data, nil
}
