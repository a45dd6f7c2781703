package cryptoutils

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/pbkdf2"
)

const (
	// KDFIterations is the PBKDF2 iteration count used for every wrapping key.
	// Changing it makes previously wrapped keys unrecoverable.
	KDFIterations = 100_000

	// WrappingKeySize is the size of the derived AES-256 key.
	WrappingKeySize = 32

	// SaltSize is the size of the random KDF salt.
	SaltSize = 32

	// NonceSize is the AES-GCM nonce size.
	NonceSize = 12
)

var (
	// ErrWrap is returned when the AEAD primitive fails while wrapping a key.
	// It is not expected in normal operation.
	ErrWrap = errors.New("cryptoutils: key wrap failed")

	// ErrAuthentication is returned when unwrapping fails tag verification,
	// which is what a wrong password looks like.
	ErrAuthentication = errors.New("cryptoutils: wrapped key authentication failed")

	// ErrInvalidKeyMaterial is returned for keys, salts or nonces of the wrong size.
	ErrInvalidKeyMaterial = errors.New("cryptoutils: invalid key material")
)

// DeriveKey derives a 32-byte wrapping key from password using PBKDF2-HMAC-SHA256.
// When salt is nil a fresh random salt is generated. The salt actually used is
// returned so that callers can persist it next to the wrapped key.
//
// The derivation is deterministic in (password, salt). Callers own the returned
// key and must Zeroize it once done.
func DeriveKey(password []byte, salt []byte) (key []byte, usedSalt []byte, err error) {
	if salt == nil {
		salt = make([]byte, SaltSize)
		if _, err := io.ReadFull(rand.Reader, salt); err != nil {
			return nil, nil, fmt.Errorf("failed to generate salt: %w", err)
		}
	} else if len(salt) != SaltSize {
		return nil, nil, fmt.Errorf("%w: salt must be %d bytes", ErrInvalidKeyMaterial, SaltSize)
	}

	key = pbkdf2.Key(password, salt, KDFIterations, WrappingKeySize, sha256.New)
	return key, salt, nil
}

// WrapKey encrypts rawKey with AES-256-GCM under derivedKey using a fresh random
// 12-byte nonce. The returned ciphertext carries the authentication tag.
func WrapKey(rawKey, derivedKey []byte) (ciphertext []byte, nonce []byte, err error) {
	aead, err := newGCM(derivedKey)
	if err != nil {
		return nil, nil, err
	}

	// Generate random nonce for AES-GCM
	nonce = make([]byte, NonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, nil, fmt.Errorf("%w: failed to generate nonce: %v", ErrWrap, err)
	}

	ciphertext = aead.Seal(nil, nonce, rawKey, nil)
	return ciphertext, nonce, nil
}

// UnwrapKey decrypts a key produced by WrapKey. A failed tag check returns
// ErrAuthentication. The caller owns the returned key and must Zeroize it.
func UnwrapKey(ciphertext, nonce, derivedKey []byte) ([]byte, error) {
	if len(nonce) != NonceSize {
		return nil, fmt.Errorf("%w: nonce must be %d bytes", ErrInvalidKeyMaterial, NonceSize)
	}

	aead, err := newGCM(derivedKey)
	if err != nil {
		return nil, err
	}

	rawKey, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, ErrAuthentication
	}
	return rawKey, nil
}

// Zeroize overwrites every byte of buf with zero.
func Zeroize(buf []byte) {
	for i := range buf {
		buf[i] = 0
	}
}

func newGCM(derivedKey []byte) (cipher.AEAD, error) {
	if len(derivedKey) != WrappingKeySize {
		return nil, fmt.Errorf("%w: wrapping key must be %d bytes", ErrInvalidKeyMaterial, WrappingKeySize)
	}

	block, err := aes.NewCipher(derivedKey)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create cipher: %v", ErrWrap, err)
	}

	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create GCM: %v", ErrWrap, err)
	}
	return aead, nil
}
