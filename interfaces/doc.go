// Package interfaces defines core interfaces and types for the document signing
// system, separating interface definitions from implementations.
//
// # Collaborator Interfaces
//
// IdentityStore: Persists signing identities (public key plus the password-wrapped
// private key) and resolves them by ID or public key.
//
// RegistryStore: Records signing events keyed by signature. Insertion is
// create-only, so a signature identifies exactly one signing event.
//
// # Storage Interfaces
//
// StorageBackend: Namespaced, create-only record storage shared by the identity
// store, the signature registry and the signed document archive
// (memory, file, S3, Vault).
//
// StorageBackendFactory: Creates storage backends from URI strings and manages
// multi-backend configurations for redundant storage.
//
// # Cryptographic Types
//
// - ContentDigest: 32-byte SHA-256 hash of a canonical document
// - PublicKey: 32-byte Ed25519 public key
// - Signature: 64-byte Ed25519 signature
//
// All three encode to lowercase hex in JSON and text form.
package interfaces
