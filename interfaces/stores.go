package interfaces

import (
	"context"
	"errors"
)

var (
	// ErrIdentityNotFound is returned when no identity matches the lookup.
	ErrIdentityNotFound = errors.New("identity not found")

	// ErrEntryNotFound is returned when no registry entry matches the signature.
	ErrEntryNotFound = errors.New("registry entry not found")

	// ErrConflict is returned when inserting a record whose unique key
	// (identity ID, public key or signature) is already registered.
	// It is recoverable: the existing record is left untouched.
	ErrConflict = errors.New("conflict: record already registered")
)

// IdentityStore persists signing identities.
type IdentityStore interface {
	// Get returns the identity with the given ID or ErrIdentityNotFound.
	Get(ctx context.Context, id string) (*Identity, error)

	// Create persists a new identity and returns its ID. An empty ID is assigned
	// by the store. Returns ErrConflict if the ID or public key is already taken.
	Create(ctx context.Context, identity *Identity) (string, error)

	// FindByPublicKey returns the identity owning publicKey or ErrIdentityNotFound.
	FindByPublicKey(ctx context.Context, publicKey PublicKey) (*Identity, error)
}

// RegistryStore records signing events for later attribution.
type RegistryStore interface {
	// Insert records entry. Returns ErrConflict if the signature already exists.
	Insert(ctx context.Context, entry *RegistryEntry) error

	// FindBySignature returns the entry for signature or ErrEntryNotFound.
	FindBySignature(ctx context.Context, signature Signature) (*RegistryEntry, error)
}
