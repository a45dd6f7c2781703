package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/doc-signing-backend/interfaces"
)

// SignatureRegistry records signing events keyed by hex signature. The
// backend's create-only semantics make the signature a unique key.
type SignatureRegistry struct {
	backend interfaces.StorageBackend
	log     *slog.Logger
}

// NewSignatureRegistry creates a registry on top of backend.
func NewSignatureRegistry(backend interfaces.StorageBackend, log *slog.Logger) *SignatureRegistry {
	if log == nil {
		log = slog.Default()
	}
	return &SignatureRegistry{backend: backend, log: log}
}

// Insert records entry, failing with ErrConflict if its signature is known.
func (r *SignatureRegistry) Insert(ctx context.Context, entry *interfaces.RegistryEntry) error {
	record := *entry
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(&record)
	if err != nil {
		return fmt.Errorf("failed to encode registry entry: %w", err)
	}

	err = r.backend.Create(ctx, interfaces.SignatureNamespace, record.Signature.String(), data)
	if errors.Is(err, interfaces.ErrContentExists) {
		return fmt.Errorf("%w: signature %s", interfaces.ErrConflict, record.Signature)
	}
	if err != nil {
		return fmt.Errorf("failed to store registry entry: %w", err)
	}

	r.log.Debug("Registry entry recorded",
		slog.String("signer_id", record.SignerID),
		slog.String("content_digest", record.ContentDigest.String()))
	return nil
}

// FindBySignature returns the entry recorded for signature.
func (r *SignatureRegistry) FindBySignature(ctx context.Context, signature interfaces.Signature) (*interfaces.RegistryEntry, error) {
	data, err := r.backend.Fetch(ctx, interfaces.SignatureNamespace, signature.String())
	if errors.Is(err, interfaces.ErrContentNotFound) {
		return nil, interfaces.ErrEntryNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch registry entry: %w", err)
	}

	var entry interfaces.RegistryEntry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("failed to decode registry entry: %w", err)
	}
	return &entry, nil
}
