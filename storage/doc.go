// Package storage provides namespaced, create-only record storage with pluggable backends.
//
// Records are addressed by (namespace, key). A record is written once and never
// overwritten; a second Create for the same key returns ErrContentExists. The
// identity store and the signature registry rely on this to enforce uniqueness.
//
//   - Memory storage for tests and development
//   - File system storage, one file per record
//   - S3-compatible storage for cloud deployments
//   - Vault KV v2 storage using check-and-set writes
//   - IPFS storage in the node's mutable file system (MFS)
//
// # Storage URI Format
//
// Storage backends are specified using URI format:
//
//	[scheme]://[auth@]host[:port][/path][?params]
//
// Supported URI schemes:
//
//   - memory://name
//   - file:///var/lib/docsign/
//   - s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/prefix/?region=us-west-2&endpoint=http://minio:9000
//   - vault://vault.example.com:8200/secret/docsign?tls=true
//   - ipfs://127.0.0.1:5001/docsign
//
// # Namespaces
//
//   - identities: JSON identities keyed by identity ID
//   - publickeys: identity ID keyed by hex public key
//   - signatures: JSON registry entries keyed by hex signature
//   - documents: signed documents keyed by hex content digest
//
// Keys are restricted to [A-Za-z0-9._-] so that they map to file names, object
// keys and Vault paths without escaping.
//
// # Create-Only Guarantees
//
// The file backend links a fully written temporary file into place and Vault
// writes use cas=0, so both are atomic. The S3 and IPFS backends check for the
// record before writing and are not atomic under concurrent writers.
//
// # Multi-Backend Storage
//
// The MultiStorageBackend aggregates multiple backends for redundancy:
//
//   - Create: Writes to all available backends; the first backend decides uniqueness
//   - Fetch: Tries each backend until the record is found
//   - Available: Returns true if any backend is available
//
// # Usage Example
//
//	factory := storage.NewStorageBackendFactory(logger)
//
//	backend, err := factory.BackendFromURIs([]string{
//	    "file:///var/lib/docsign/",
//	    "s3://docsign-backup/prod/?region=us-west-2",
//	})
//	if err != nil {
//	    log.Fatalf("Failed to create storage: %v", err)
//	}
//
//	err = backend.Create(ctx, interfaces.IdentityNamespace, id, record)
//	if errors.Is(err, interfaces.ErrContentExists) {
//	    // already registered
//	}
package storage
