package storage

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ruteri/doc-signing-backend/interfaces"
)

// MemoryBackend keeps records in process memory. It is meant for tests and
// single-process development setups; records are lost on restart.
type MemoryBackend struct {
	mu      sync.RWMutex
	records map[interfaces.Namespace]map[string][]byte
	name    string
	log     *slog.Logger
}

// NewMemoryBackend creates an empty in-memory backend.
func NewMemoryBackend(name string, log *slog.Logger) *MemoryBackend {
	if log == nil {
		log = slog.Default()
	}
	if name == "" {
		name = "default"
	}

	records := make(map[interfaces.Namespace]map[string][]byte, len(interfaces.Namespaces))
	for _, ns := range interfaces.Namespaces {
		records[ns] = make(map[string][]byte)
	}

	return &MemoryBackend{
		records: records,
		name:    name,
		log:     log,
	}
}

// Fetch returns a copy of the stored record.
func (b *MemoryBackend) Fetch(ctx context.Context, ns interfaces.Namespace, key string) ([]byte, error) {
	if err := validateRecord(ns, key); err != nil {
		return nil, err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	data, ok := b.records[ns][key]
	if !ok {
		return nil, interfaces.ErrContentNotFound
	}
	return bytes.Clone(data), nil
}

// Create stores a copy of data unless the key is taken.
func (b *MemoryBackend) Create(ctx context.Context, ns interfaces.Namespace, key string, data []byte) error {
	if err := validateRecord(ns, key); err != nil {
		return err
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if _, exists := b.records[ns][key]; exists {
		return interfaces.ErrContentExists
	}
	b.records[ns][key] = bytes.Clone(data)

	b.log.Debug("Stored record in memory",
		slog.String("namespace", ns.String()),
		slog.String("key", key),
		slog.Int("size", len(data)))
	return nil
}

// Available always returns true.
func (b *MemoryBackend) Available(ctx context.Context) bool {
	return true
}

// Name returns a unique identifier for this storage backend.
func (b *MemoryBackend) Name() string {
	return fmt.Sprintf("memory-%s", b.name)
}

// LocationURI returns the URI that identifies this storage backend.
func (b *MemoryBackend) LocationURI() string {
	return fmt.Sprintf("memory://%s", b.name)
}
