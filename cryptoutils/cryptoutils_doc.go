// Package cryptoutils provides the cryptographic primitives behind document
// signing: password-based key wrapping and Ed25519 signatures.
//
// # Key Wrapping
//
// A signing identity's private key is never stored in the clear. It is wrapped
// with a key derived from the owner's password:
//
//   - PBKDF2-HMAC-SHA256, 100 000 iterations, 32-byte random salt
//   - AES-256-GCM with a fresh 12-byte nonce, tag appended to the ciphertext
//
// UnwrapKey returns ErrAuthentication when the tag does not verify. This is how
// a wrong password surfaces and callers treat it as a recoverable error.
//
// # Signatures
//
// The raw private key is the 32-byte Ed25519 seed. Sign expands it only for the
// duration of the call. Verify never panics: keys or signatures of the wrong
// length simply fail verification.
//
// # Key Hygiene
//
// Every function returning raw or derived key material hands ownership to the
// caller, who must Zeroize it on every exit path:
//
//	seed, err := cryptoutils.UnwrapKey(wrapped, nonce, derived)
//	if err != nil {
//		return err
//	}
//	defer cryptoutils.Zeroize(seed)
package cryptoutils
