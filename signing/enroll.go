package signing

import (
	"context"
	"fmt"
	"time"

	"github.com/ruteri/doc-signing-backend/cryptoutils"
	"github.com/ruteri/doc-signing-backend/interfaces"
)

// Enroll creates a signing identity protected by password and persists it in
// store. The raw private key and the derived wrapping key are zeroized before
// Enroll returns, whatever the outcome.
func Enroll(ctx context.Context, store interfaces.IdentityStore, displayName string, password []byte) (*interfaces.Identity, error) {
	if len(password) == 0 {
		return nil, ErrEmptyPassword
	}

	identity, err := newIdentity(displayName, password)
	if err != nil {
		return nil, err
	}

	if _, err := store.Create(ctx, identity); err != nil {
		return nil, fmt.Errorf("failed to persist identity: %w", err)
	}
	return identity, nil
}

func newIdentity(displayName string, password []byte) (*interfaces.Identity, error) {
	publicKey, seed, err := cryptoutils.GenerateKeypair()
	if err != nil {
		return nil, fmt.Errorf("failed to generate keypair: %w", err)
	}
	defer zeroize(seed)

	derived, salt, err := cryptoutils.DeriveKey(password, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to derive wrapping key: %w", err)
	}
	defer zeroize(derived)

	wrapped, nonce, err := cryptoutils.WrapKey(seed, derived)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap private key: %w", err)
	}

	return &interfaces.Identity{
		DisplayName:       displayName,
		PublicKey:         publicKey,
		WrappedPrivateKey: wrapped,
		Nonce:             nonce,
		KDFSalt:           salt,
		CreatedAt:         time.Now().UTC(),
	}, nil
}
