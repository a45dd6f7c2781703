package cryptoutils

import (
	"crypto/ed25519"
	"crypto/rand"
	"fmt"
	"io"

	"github.com/ruteri/doc-signing-backend/interfaces"
)

// SeedSize is the size of the raw Ed25519 private key (the seed).
const SeedSize = ed25519.SeedSize

// GenerateKeypair draws a random 32-byte seed and derives its Ed25519 public key.
// The seed is the raw private key; the caller must wrap it and Zeroize it.
func GenerateKeypair() (interfaces.PublicKey, []byte, error) {
	seed := make([]byte, SeedSize)
	if _, err := io.ReadFull(rand.Reader, seed); err != nil {
		return interfaces.PublicKey{}, nil, fmt.Errorf("failed to generate seed: %w", err)
	}

	pub, err := PublicKeyFromSeed(seed)
	if err != nil {
		Zeroize(seed)
		return interfaces.PublicKey{}, nil, err
	}
	return pub, seed, nil
}

// PublicKeyFromSeed derives the public key for a raw private key.
func PublicKeyFromSeed(seed []byte) (interfaces.PublicKey, error) {
	if len(seed) != SeedSize {
		return interfaces.PublicKey{}, fmt.Errorf("%w: ed25519 seed must be %d bytes", ErrInvalidKeyMaterial, SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	defer Zeroize(priv)

	var pub interfaces.PublicKey
	copy(pub[:], priv[SeedSize:])
	return pub, nil
}

// Sign produces the deterministic Ed25519 signature of digest.
// The expanded private key only lives for the duration of the call.
func Sign(digest []byte, seed []byte) (interfaces.Signature, error) {
	if len(seed) != SeedSize {
		return interfaces.Signature{}, fmt.Errorf("%w: ed25519 seed must be %d bytes", ErrInvalidKeyMaterial, SeedSize)
	}

	priv := ed25519.NewKeyFromSeed(seed)
	defer Zeroize(priv)

	var sig interfaces.Signature
	copy(sig[:], ed25519.Sign(priv, digest))
	return sig, nil
}

// Verify reports whether signature is a valid Ed25519 signature of digest by
// publicKey. Malformed input of any kind yields false.
func Verify(signature, digest, publicKey []byte) (ok bool) {
	defer func() {
		if recover() != nil {
			ok = false
		}
	}()

	if len(publicKey) != ed25519.PublicKeySize || len(signature) != ed25519.SignatureSize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), digest, signature)
}
