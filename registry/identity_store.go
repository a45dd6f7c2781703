package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/ruteri/doc-signing-backend/interfaces"
)

// IdentityStore persists identities as JSON records on a StorageBackend.
// A second namespace indexes identity IDs by public key.
type IdentityStore struct {
	backend interfaces.StorageBackend
	log     *slog.Logger
}

// NewIdentityStore creates an identity store on top of backend.
func NewIdentityStore(backend interfaces.StorageBackend, log *slog.Logger) *IdentityStore {
	if log == nil {
		log = slog.Default()
	}
	return &IdentityStore{backend: backend, log: log}
}

// Get returns the identity with the given ID.
func (s *IdentityStore) Get(ctx context.Context, id string) (*interfaces.Identity, error) {
	data, err := s.backend.Fetch(ctx, interfaces.IdentityNamespace, id)
	if errors.Is(err, interfaces.ErrContentNotFound) || errors.Is(err, interfaces.ErrInvalidKey) {
		return nil, interfaces.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch identity %s: %w", id, err)
	}

	var identity interfaces.Identity
	if err := json.Unmarshal(data, &identity); err != nil {
		return nil, fmt.Errorf("failed to decode identity %s: %w", id, err)
	}
	return &identity, nil
}

// Create persists identity. The public key index is claimed first so that a
// key can never be registered to two identities.
func (s *IdentityStore) Create(ctx context.Context, identity *interfaces.Identity) (string, error) {
	if identity == nil || identity.PublicKey.IsZero() {
		return "", fmt.Errorf("identity must carry a public key")
	}

	record := *identity
	if record.ID == "" {
		record.ID = uuid.NewString()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now().UTC()
	}

	data, err := json.Marshal(&record)
	if err != nil {
		return "", fmt.Errorf("failed to encode identity: %w", err)
	}

	err = s.backend.Create(ctx, interfaces.PublicKeyNamespace, record.PublicKey.String(), []byte(record.ID))
	if errors.Is(err, interfaces.ErrContentExists) {
		return "", fmt.Errorf("%w: public key %s", interfaces.ErrConflict, record.PublicKey)
	}
	if err != nil {
		return "", fmt.Errorf("failed to index public key: %w", err)
	}

	err = s.backend.Create(ctx, interfaces.IdentityNamespace, record.ID, data)
	if errors.Is(err, interfaces.ErrContentExists) {
		// The index entry now points at an identity with another key,
		// FindByPublicKey ignores such entries.
		s.log.Warn("Identity ID already taken, public key index left dangling",
			slog.String("id", record.ID),
			slog.String("public_key", record.PublicKey.String()))
		return "", fmt.Errorf("%w: identity %s", interfaces.ErrConflict, record.ID)
	}
	if err != nil {
		return "", fmt.Errorf("failed to store identity: %w", err)
	}

	s.log.Info("Identity created",
		slog.String("id", record.ID),
		slog.String("public_key", record.PublicKey.String()))

	identity.ID = record.ID
	identity.CreatedAt = record.CreatedAt
	return record.ID, nil
}

// FindByPublicKey resolves the identity owning publicKey.
func (s *IdentityStore) FindByPublicKey(ctx context.Context, publicKey interfaces.PublicKey) (*interfaces.Identity, error) {
	id, err := s.backend.Fetch(ctx, interfaces.PublicKeyNamespace, publicKey.String())
	if errors.Is(err, interfaces.ErrContentNotFound) {
		return nil, interfaces.ErrIdentityNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up public key: %w", err)
	}

	identity, err := s.Get(ctx, string(id))
	if err != nil {
		return nil, err
	}
	if identity.PublicKey != publicKey {
		return nil, interfaces.ErrIdentityNotFound
	}
	return identity, nil
}
