// Package registry implements the persistent collaborators of the signing
// workflow on top of a storage backend.
//
// IdentityStore keeps signing identities (public key plus the password-wrapped
// private key) and an index from public key to identity ID.
//
// SignatureRegistry records who signed what. Entries are keyed by signature,
// and because storage backends are create-only a signature identifies exactly
// one signing event; re-inserting it fails with interfaces.ErrConflict.
//
// DocumentArchive optionally keeps signed documents addressed by their digest.
//
// MockIdentityStore and MockRegistryStore are testify mocks for code that
// depends on the collaborator interfaces.
package registry
