package interfaces

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	// PublicKeySize is the size of an Ed25519 public key.
	PublicKeySize = 32

	// SignatureSize is the size of an Ed25519 signature.
	SignatureSize = 64

	// DigestSize is the size of a SHA-256 content digest.
	DigestSize = 32
)

// ContentDigest is a 32-byte SHA-256 hash of a canonical document.
type ContentDigest [DigestSize]byte

// NewContentDigestFromBytes creates a content digest from a byte slice.
func NewContentDigestFromBytes(source []byte) (ContentDigest, error) {
	if len(source) != DigestSize {
		return ContentDigest{}, errors.New("invalid content digest conversion from bytes: incorrect length")
	}

	var digest ContentDigest
	copy(digest[:], source)
	return digest, nil
}

// NewContentDigestFromHex parses a 64-character hex string.
func NewContentDigestFromHex(source string) (ContentDigest, error) {
	raw, err := decodeFixedHex(source, DigestSize)
	if err != nil {
		return ContentDigest{}, fmt.Errorf("invalid content digest: %w", err)
	}
	return NewContentDigestFromBytes(raw)
}

// ComputeDigest calculates the content digest of data.
func ComputeDigest(data []byte) ContentDigest {
	return ContentDigest(sha256.Sum256(data))
}

// String returns hex representation.
func (d ContentDigest) String() string {
	return hex.EncodeToString(d[:])
}

// Bytes returns raw 32-byte hash.
func (d ContentDigest) Bytes() []byte {
	return d[:]
}

// MarshalText encodes the value as lowercase hex.
func (d ContentDigest) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText decodes a hex string.
func (d *ContentDigest) UnmarshalText(text []byte) error {
	parsed, err := NewContentDigestFromHex(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// PublicKey is a raw Ed25519 public key.
type PublicKey [PublicKeySize]byte

// NewPublicKeyFromBytes creates a public key from a byte slice.
func NewPublicKeyFromBytes(source []byte) (PublicKey, error) {
	if len(source) != PublicKeySize {
		return PublicKey{}, errors.New("invalid public key conversion from bytes: incorrect length")
	}

	var key PublicKey
	copy(key[:], source)
	return key, nil
}

// NewPublicKeyFromHex parses a 64-character hex string.
func NewPublicKeyFromHex(source string) (PublicKey, error) {
	raw, err := decodeFixedHex(source, PublicKeySize)
	if err != nil {
		return PublicKey{}, fmt.Errorf("invalid public key: %w", err)
	}
	return NewPublicKeyFromBytes(raw)
}

// String returns hex representation.
func (k PublicKey) String() string {
	return hex.EncodeToString(k[:])
}

// Bytes returns the raw key.
func (k PublicKey) Bytes() []byte {
	return k[:]
}

// IsZero reports whether the key is unset.
func (k PublicKey) IsZero() bool {
	return k == PublicKey{}
}

// MarshalText encodes the value as lowercase hex.
func (k PublicKey) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a hex string.
func (k *PublicKey) UnmarshalText(text []byte) error {
	parsed, err := NewPublicKeyFromHex(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Signature is a raw Ed25519 signature.
type Signature [SignatureSize]byte

// NewSignatureFromBytes creates a signature from a byte slice.
func NewSignatureFromBytes(source []byte) (Signature, error) {
	if len(source) != SignatureSize {
		return Signature{}, errors.New("invalid signature conversion from bytes: incorrect length")
	}

	var sig Signature
	copy(sig[:], source)
	return sig, nil
}

// NewSignatureFromHex parses a 128-character hex string.
func NewSignatureFromHex(source string) (Signature, error) {
	raw, err := decodeFixedHex(source, SignatureSize)
	if err != nil {
		return Signature{}, fmt.Errorf("invalid signature: %w", err)
	}
	return NewSignatureFromBytes(raw)
}

// String returns hex representation.
func (s Signature) String() string {
	return hex.EncodeToString(s[:])
}

// Bytes returns the raw signature.
func (s Signature) Bytes() []byte {
	return s[:]
}

// MarshalText encodes the value as lowercase hex.
func (s Signature) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a hex string.
func (s *Signature) UnmarshalText(text []byte) error {
	parsed, err := NewSignatureFromHex(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Identity is a persisted signing identity. Only the wrapped form of the
// private key ever exists at rest.
type Identity struct {
	ID          string    `json:"id"`
	DisplayName string    `json:"display_name"`
	PublicKey   PublicKey `json:"public_key"`

	// WrappedPrivateKey is the AES-GCM ciphertext of the Ed25519 seed with the tag appended.
	WrappedPrivateKey []byte `json:"wrapped_private_key"`
	Nonce             []byte `json:"nonce"`
	KDFSalt           []byte `json:"kdf_salt"`

	CreatedAt time.Time `json:"created_at"`
}

// RegistryEntry records a single signing event. The signature is unique
// across all entries.
type RegistryEntry struct {
	ContentDigest ContentDigest `json:"content_digest"`
	Signature     Signature     `json:"signature"`
	SignerID      string        `json:"signer_id"`
	Filename      string        `json:"filename"`
	CreatedAt     time.Time     `json:"created_at"`
}

func decodeFixedHex(source string, size int) ([]byte, error) {
	clean := strings.TrimPrefix(strings.TrimSpace(source), "0x")
	if len(clean) != 2*size {
		return nil, fmt.Errorf("hex string must be %d characters", 2*size)
	}

	raw, err := hex.DecodeString(clean)
	if err != nil {
		return nil, fmt.Errorf("invalid hex format: %w", err)
	}
	return raw, nil
}
