package flags

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/doc-signing-backend/config"
	"github.com/ruteri/doc-signing-backend/httpserver"
	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/ruteri/doc-signing-backend/registry"
	"github.com/ruteri/doc-signing-backend/signing"
	"github.com/ruteri/doc-signing-backend/storage"
)

// probeTimeout bounds the backend availability check at startup.
const probeTimeout = 10 * time.Second

// Services is the signing stack built on the configured storage.
type Services struct {
	Backend    interfaces.StorageBackend
	Identities interfaces.IdentityStore
	Signer     *signing.Signer
	Verifier   *signing.Verifier

	// Archive is nil when archiving is disabled.
	Archive httpserver.DocumentFetcher
}

// BuildServices opens the storage backends named in cfg and wires the
// stores and orchestrators on top of them.
func BuildServices(cfg *config.Config, logger *slog.Logger) (*Services, error) {
	factory := storage.NewStorageBackendFactory(logger)
	backend, err := factory.BackendFromURIs(cfg.Storage.URIs)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	if !backend.Available(ctx) {
		logger.Warn("Storage backend is not available yet", slog.String("backend", backend.Name()))
	}

	identities := registry.NewIdentityStore(backend, logger)

	var signatures interfaces.RegistryStore
	if cfg.Storage.Registry {
		signatures = registry.NewSignatureRegistry(backend, logger)
	}

	services := &Services{
		Backend:    backend,
		Identities: identities,
		Verifier:   signing.NewVerifier(signatures, identities, logger),
	}

	var archive signing.DocumentArchive
	if cfg.Storage.Archive {
		documents := registry.NewDocumentArchive(backend)
		archive = documents
		services.Archive = documents
	}
	services.Signer = signing.NewSigner(identities, signatures, archive, logger)

	logger.Info("Storage configured",
		slog.String("backend", backend.Name()),
		slog.Bool("registry", cfg.Storage.Registry),
		slog.Bool("archive", cfg.Storage.Archive))

	return services, nil
}
