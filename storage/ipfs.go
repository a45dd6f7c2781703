package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"
	"time"

	shell "github.com/ipfs/go-ipfs-api"
	"github.com/ruteri/doc-signing-backend/interfaces"
)

// ipfsFiles is the subset of the IPFS HTTP API used by IPFSBackend.
type ipfsFiles interface {
	IsUp() bool
	FilesStat(ctx context.Context, path string, options ...shell.FilesOpt) (*shell.FilesStatObject, error)
	FilesRead(ctx context.Context, path string, options ...shell.FilesOpt) (io.ReadCloser, error)
	FilesWrite(ctx context.Context, path string, data io.Reader, options ...shell.FilesOpt) error
}

// IPFSBackend stores records in the mutable file system (MFS) of an IPFS
// node, one file per record under root/<namespace>/<key>.
//
// Like S3, Create stats the path before writing, so racing writers on the
// same key are not detected.
type IPFSBackend struct {
	shell       ipfsFiles
	host        string
	root        string
	log         *slog.Logger
	locationURI string
}

// NewIPFSBackend creates a backend talking to the IPFS API at host
// (host:port). Records live under root in MFS.
func NewIPFSBackend(host, root string, log *slog.Logger) *IPFSBackend {
	if log == nil {
		log = slog.Default()
	}
	return newIPFSBackendWithShell(shell.NewShell(host), host, root, log)
}

func newIPFSBackendWithShell(files ipfsFiles, host, root string, log *slog.Logger) *IPFSBackend {
	root = "/" + strings.Trim(root, "/")
	return &IPFSBackend{
		shell:       files,
		host:        host,
		root:        root,
		log:         log,
		locationURI: fmt.Sprintf("ipfs://%s%s", host, root),
	}
}

// Fetch reads a record from MFS.
// Returns ErrContentNotFound if the file doesn't exist or ErrBackendUnavailable
// if the IPFS node is not accessible.
func (b *IPFSBackend) Fetch(ctx context.Context, ns interfaces.Namespace, key string) ([]byte, error) {
	if err := validateRecord(ns, key); err != nil {
		return nil, err
	}

	start := time.Now()
	filePath := b.getFilePath(ns, key)

	reader, err := b.shell.FilesRead(ctx, filePath)
	if err != nil {
		if isIPFSNotFound(err) {
			b.log.Debug("Record not found in IPFS",
				slog.String("path", filePath),
				slog.Duration("duration", time.Since(start)))
			return nil, interfaces.ErrContentNotFound
		}

		b.log.Error("Failed to read record from IPFS",
			slog.String("path", filePath),
			"err", err,
			slog.Duration("duration", time.Since(start)))
		return nil, fmt.Errorf("%w: failed to read from IPFS: %v", interfaces.ErrBackendUnavailable, err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read data from IPFS: %w", err)
	}

	b.log.Debug("Fetched record from IPFS",
		slog.String("path", filePath),
		slog.Int("size", len(data)),
		slog.Duration("duration", time.Since(start)))

	return data, nil
}

// Create writes a record unless a file already exists at its path.
func (b *IPFSBackend) Create(ctx context.Context, ns interfaces.Namespace, key string, data []byte) error {
	if err := validateRecord(ns, key); err != nil {
		return err
	}

	filePath := b.getFilePath(ns, key)

	_, err := b.shell.FilesStat(ctx, filePath)
	if err == nil {
		return interfaces.ErrContentExists
	}
	if !isIPFSNotFound(err) {
		return fmt.Errorf("%w: failed to stat IPFS path: %v", interfaces.ErrBackendUnavailable, err)
	}

	err = b.shell.FilesWrite(ctx, filePath, bytes.NewReader(data),
		shell.FilesWrite.Create(true),
		shell.FilesWrite.Parents(true))
	if err != nil {
		return fmt.Errorf("%w: failed to write to IPFS: %v", interfaces.ErrBackendUnavailable, err)
	}

	b.log.Debug("Stored record in IPFS",
		slog.String("path", filePath),
		slog.Int("size", len(data)))

	return nil
}

// Available checks if the IPFS node is accessible.
func (b *IPFSBackend) Available(ctx context.Context) bool {
	return b.shell.IsUp()
}

// Name returns a unique identifier for this storage backend.
func (b *IPFSBackend) Name() string {
	return fmt.Sprintf("ipfs-%s", b.host)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *IPFSBackend) LocationURI() string {
	return b.locationURI
}

func (b *IPFSBackend) getFilePath(ns interfaces.Namespace, key string) string {
	return path.Join(b.root, ns.String(), key)
}

func isIPFSNotFound(err error) bool {
	return strings.Contains(err.Error(), "does not exist")
}
