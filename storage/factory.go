package storage

import (
	"fmt"
	"log/slog"
	"net/url"
	"os"
	"strings"

	"github.com/ruteri/doc-signing-backend/common"
	"github.com/ruteri/doc-signing-backend/interfaces"
)

// StorageBackendFactory creates storage backends from URI strings and manages
// multi-backend configurations for redundant storage.
type StorageBackendFactory struct {
	log *slog.Logger
}

// NewStorageBackendFactory creates a new factory instance that can create storage backends.
func NewStorageBackendFactory(logger *slog.Logger) *StorageBackendFactory {
	if logger == nil {
		logger = slog.Default()
	}
	return &StorageBackendFactory{
		log: logger,
	}
}

// StorageBackendFor creates a storage backend from a location URI.
// The URI format should be [scheme]://[auth@]host[:port][/path][?params]
//
// Supported schemes:
//   - memory:// - In-process storage, optionally named: memory://tests
//   - file:// - Local filesystem storage
//   - s3:// - Amazon S3 or compatible object storage
//   - vault:// - HashiCorp Vault KV v2
//   - ipfs:// - IPFS node mutable file system: ipfs://127.0.0.1:5001/docsign
//
// Returns an error if the URI is invalid or the scheme is unsupported.
func (sf *StorageBackendFactory) StorageBackendFor(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	switch strings.ToLower(location.Scheme) {
	case "memory":
		return NewMemoryBackend(location.Host, sf.log), nil
	case "file":
		return sf.createFileBackend(location)
	case "s3":
		return sf.createS3Backend(location)
	case "vault":
		return sf.createVaultBackend(location)
	case "ipfs":
		return sf.createIPFSBackend(location)
	default:
		return nil, fmt.Errorf("%w: unsupported backend scheme: %s", interfaces.ErrInvalidLocationURI, location.Scheme)
	}
}

// CreateMultiBackend creates a multi-storage backend from a list of location URIs.
// The multi-backend aggregates all valid backends, providing redundancy for storage operations.
// Returns an error if no valid backends could be created from the provided URIs.
func (sf *StorageBackendFactory) CreateMultiBackend(locations []interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	backends := make([]interfaces.StorageBackend, 0, len(locations))

	for _, location := range locations {
		backend, err := sf.StorageBackendFor(location)
		if err != nil {
			sf.log.Warn("Failed to create storage backend",
				"err", err,
				slog.String("locationURI", redactLocation(location)))
			continue
		}
		backends = append(backends, backend)
	}

	if len(backends) == 0 {
		return nil, fmt.Errorf("no valid storage backends created")
	}

	return NewMultiStorageBackend(backends, sf.log), nil
}

// BackendFromURIs parses uris and returns a single backend, or a
// multi-backend when more than one is given.
func (sf *StorageBackendFactory) BackendFromURIs(uris []string) (interfaces.StorageBackend, error) {
	locations := make([]interfaces.StorageBackendLocation, 0, len(uris))
	for _, uri := range uris {
		location, err := interfaces.NewStorageBackendLocation(uri)
		if err != nil {
			return nil, err
		}
		locations = append(locations, location)
	}

	switch len(locations) {
	case 0:
		return nil, fmt.Errorf("%w: no storage location configured", interfaces.ErrInvalidLocationURI)
	case 1:
		return sf.StorageBackendFor(locations[0])
	default:
		return sf.CreateMultiBackend(locations)
	}
}

// createS3Backend creates an S3 or S3-compatible storage backend.
// URI format: s3://[ACCESS_KEY:SECRET_KEY@]bucket-name/path/?region=us-west-2&endpoint=custom.s3.com
func (sf *StorageBackendFactory) createS3Backend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating S3 backend", slog.String("uri", redactLocation(location)))

	bucketName := location.Host
	if bucketName == "" {
		return nil, fmt.Errorf("%w: missing S3 bucket", interfaces.ErrInvalidLocationURI)
	}

	region := location.GetParam("region")
	if region == "" {
		region = "us-east-1"
	}

	var accessKey, secretKey string
	if location.Auth != "" {
		user, pass, _ := strings.Cut(location.Auth, ":")
		accessKey, _ = url.PathUnescape(user)
		secretKey, _ = url.PathUnescape(pass)
		sf.log.Debug("Using embedded credentials for write access")
	}

	return NewS3Backend(bucketName, strings.TrimPrefix(location.Path, "/"), region, location.GetParam("endpoint"), accessKey, secretKey, sf.log)
}

// createFileBackend creates a file system storage backend.
// URI format: file:///absolute/path/ or file://./relative/path/
func (sf *StorageBackendFactory) createFileBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating file backend", slog.String("uri", location.String()))

	path := location.Path
	if location.Host != "" {
		path = location.Host + "/" + strings.TrimPrefix(path, "/")
	}

	if path == "" {
		return nil, fmt.Errorf("%w: empty path in file URI: %s", interfaces.ErrInvalidLocationURI, location.String())
	}

	return NewFileBackend(path, sf.log)
}

// createVaultBackend creates a Vault KV v2 backend.
// URI format: vault://vault.example.com:8200/secret/docsign?tls=true
// The first path segment is the mount, the rest the data path. The token is
// read from VAULT_TOKEN.
func (sf *StorageBackendFactory) createVaultBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating Vault backend", slog.String("uri", location.String()))

	if location.Host == "" {
		return nil, fmt.Errorf("%w: missing Vault host", interfaces.ErrInvalidLocationURI)
	}

	scheme := "http"
	if location.GetParamBool("tls") {
		scheme = "https"
	}

	mountPath, dataPath, _ := strings.Cut(strings.Trim(location.Path, "/"), "/")

	return NewVaultBackend(fmt.Sprintf("%s://%s", scheme, location.Host), mountPath, dataPath, os.Getenv("VAULT_TOKEN"), sf.log)
}

// createIPFSBackend creates an IPFS MFS backend.
// URI format: ipfs://host:port/root/path
func (sf *StorageBackendFactory) createIPFSBackend(location interfaces.StorageBackendLocation) (interfaces.StorageBackend, error) {
	sf.log.Debug("Creating IPFS backend", slog.String("uri", location.String()))

	if location.Host == "" {
		return nil, fmt.Errorf("%w: missing IPFS API host", interfaces.ErrInvalidLocationURI)
	}

	root := location.Path
	if strings.Trim(root, "/") == "" {
		root = "/" + common.PackageName
	}
	return NewIPFSBackend(location.Host, root, sf.log), nil
}

// redactLocation hides the secret part of embedded credentials.
func redactLocation(location interfaces.StorageBackendLocation) string {
	if location.Auth == "" {
		return location.String()
	}
	user, _, _ := strings.Cut(location.Auth, ":")
	return strings.Replace(location.String(), location.Auth, user+":***", 1)
}
