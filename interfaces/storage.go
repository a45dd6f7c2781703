package interfaces

import (
	"context"
	"errors"
	"fmt"
	"net/url"
)

// Namespace partitions records stored in a backend.
type Namespace int

const (
	// IdentityNamespace holds JSON-encoded identities keyed by identity ID.
	IdentityNamespace Namespace = iota
	// PublicKeyNamespace maps hex public keys to identity IDs.
	PublicKeyNamespace
	// SignatureNamespace holds JSON-encoded registry entries keyed by hex signature.
	SignatureNamespace
	// DocumentNamespace archives signed documents keyed by their hex content digest.
	DocumentNamespace
)

// Namespaces lists every namespace, in declaration order.
var Namespaces = []Namespace{IdentityNamespace, PublicKeyNamespace, SignatureNamespace, DocumentNamespace}

// String returns the namespace name. It is also used as the directory or key prefix.
func (ns Namespace) String() string {
	switch ns {
	case IdentityNamespace:
		return "identities"
	case PublicKeyNamespace:
		return "publickeys"
	case SignatureNamespace:
		return "signatures"
	case DocumentNamespace:
		return "documents"
	default:
		return "unknown"
	}
}

// StorageBackendLocation represents URI for storage backend.
type StorageBackendLocation struct {
	Raw    string     // Original URI
	Scheme string     // Protocol
	Host   string     // Hostname
	Path   string     // Resource path
	Query  url.Values // Query parameters
	Auth   string     // Authentication info
}

// NewStorageBackendLocation creates a new storage location from a URI string with validation.
func NewStorageBackendLocation(uri string) (StorageBackendLocation, error) {
	parsed, err := url.Parse(uri)
	if err != nil {
		return StorageBackendLocation{}, fmt.Errorf("%w: %v", ErrInvalidLocationURI, err)
	}

	// Validate scheme is supported
	scheme := parsed.Scheme
	switch scheme {
	case "memory", "file", "s3", "vault", "ipfs":
		// Valid scheme
	default:
		return StorageBackendLocation{}, fmt.Errorf("%w: unsupported storage scheme %q", ErrInvalidLocationURI, scheme)
	}

	// Parse authentication info if present
	var auth string
	if parsed.User != nil {
		auth = parsed.User.String()
	}

	return StorageBackendLocation{
		Raw:    uri,
		Scheme: scheme,
		Host:   parsed.Host,
		Path:   parsed.Path,
		Query:  parsed.Query(),
		Auth:   auth,
	}, nil
}

// String returns the original URI string.
func (loc StorageBackendLocation) String() string {
	return loc.Raw
}

// GetParam returns a query parameter value.
func (loc StorageBackendLocation) GetParam(name string) string {
	return loc.Query.Get(name)
}

// GetParamBool returns a boolean query parameter value.
func (loc StorageBackendLocation) GetParamBool(name string) bool {
	value := loc.Query.Get(name)
	return value == "true" || value == "1" || value == "yes"
}

var (
	// ErrContentNotFound is returned when requested content cannot be found in the storage backend.
	ErrContentNotFound = errors.New("content not found")

	// ErrContentExists is returned by Create when a record with the same key already exists.
	ErrContentExists = errors.New("content already exists")

	// ErrBackendUnavailable is returned when a storage backend is not accessible.
	// This could be due to network issues, authentication failures, or service outages.
	ErrBackendUnavailable = errors.New("storage backend unavailable")

	// ErrInvalidKey is returned for record keys that cannot be used as a single
	// path segment in every backend.
	ErrInvalidKey = errors.New("invalid record key")

	// ErrInvalidLocationURI is returned when a storage location URI is malformed or unsupported.
	// URIs must follow the format: [scheme]://[auth@]host[:port][/path][?params]
	ErrInvalidLocationURI = errors.New("invalid storage location URI")
)

// StorageBackend provides namespaced, create-only record storage.
// Records are never overwritten, which is what lets the registry enforce
// signature uniqueness at insertion.
type StorageBackend interface {
	// Fetch retrieves a record. Returns ErrContentNotFound if absent.
	Fetch(ctx context.Context, ns Namespace, key string) ([]byte, error)

	// Create stores a record. Returns ErrContentExists if the key is taken.
	Create(ctx context.Context, ns Namespace, key string, data []byte) error

	// Available checks if backend is accessible.
	Available(ctx context.Context) bool

	// Name returns identifier for logging.
	Name() string

	// LocationURI returns URI identifying this backend.
	LocationURI() string
}

// StorageBackendFactory creates storage backends.
type StorageBackendFactory interface {
	// StorageBackendFor creates backend from URI.
	// Supports memory://, file://, s3://, vault://
	StorageBackendFor(location StorageBackendLocation) (StorageBackend, error)

	// CreateMultiBackend creates aggregated storage backend.
	CreateMultiBackend(locations []StorageBackendLocation) (StorageBackend, error)
}
