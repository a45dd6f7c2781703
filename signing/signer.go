package signing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/ruteri/doc-signing-backend/cryptoutils"
	"github.com/ruteri/doc-signing-backend/document"
	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/ruteri/doc-signing-backend/metrics"
)

// zeroize is swapped in tests to observe key hygiene.
var zeroize = cryptoutils.Zeroize

// DocumentArchive keeps copies of signed documents.
type DocumentArchive interface {
	Store(ctx context.Context, data []byte) (interfaces.ContentDigest, error)
}

// SignRequest is a single signing call.
type SignRequest struct {
	Document   []byte
	IdentityID string
	Password   []byte
	Filename   string
}

// SignResult carries the signed document and, for display, what was embedded.
type SignResult struct {
	Signed        []byte
	Signature     interfaces.Signature
	PublicKey     interfaces.PublicKey
	ContentDigest interfaces.ContentDigest
	IdentityID    string

	// Registered reports whether the registry recorded the signing event.
	Registered bool
	// Archived reports whether the signed document was archived.
	Archived bool
}

// Signer executes the sign workflow: canonicalize, digest, unwrap the
// identity key, sign, embed, then record the event.
type Signer struct {
	identities interfaces.IdentityStore
	registry   interfaces.RegistryStore
	archive    DocumentArchive
	log        *slog.Logger
}

// NewSigner creates a Signer. registry and archive are optional and may be nil.
//
// Parameters:
//   - identities: Identity store resolving the signing identity
//   - registry: Registry recording signing events for later attribution
//   - archive: Archive receiving a copy of every signed document
//   - log: Structured logger for operational insights
func NewSigner(identities interfaces.IdentityStore, registry interfaces.RegistryStore, archive DocumentArchive, log *slog.Logger) *Signer {
	if log == nil {
		log = slog.Default()
	}
	return &Signer{
		identities: identities,
		registry:   registry,
		archive:    archive,
		log:        log,
	}
}

// Sign signs req.Document with the identity's private key.
//
// Registry and archive failures are logged and reported in the result but do
// not fail the call: the signed document verifies on its own.
func (s *Signer) Sign(ctx context.Context, req *SignRequest) (result *SignResult, err error) {
	defer func() { metrics.RecordSign(signResultLabel(err)) }()

	if len(req.Password) == 0 {
		return nil, ErrEmptyPassword
	}

	canonical, err := document.Canonicalize(req.Document)
	if err != nil {
		return nil, err
	}
	if document.HasEnvelope(canonical) {
		return nil, ErrAlreadySigned
	}
	digest := document.Digest(canonical)

	identity, err := s.identities.Get(ctx, req.IdentityID)
	if err != nil {
		return nil, fmt.Errorf("failed to load identity %s: %w", req.IdentityID, err)
	}

	signature, err := signDigest(identity, req.Password, digest)
	if err != nil {
		s.log.Warn("Signing failed",
			slog.String("identity_id", identity.ID),
			"err", err)
		return nil, err
	}

	signed, err := document.Embed(canonical, signature, identity.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to embed signature: %w", err)
	}

	result = &SignResult{
		Signed:        signed,
		Signature:     signature,
		PublicKey:     identity.PublicKey,
		ContentDigest: digest,
		IdentityID:    identity.ID,
	}

	result.Registered = s.register(ctx, &interfaces.RegistryEntry{
		ContentDigest: digest,
		Signature:     signature,
		SignerID:      identity.ID,
		Filename:      req.Filename,
		CreatedAt:     time.Now().UTC(),
	})
	result.Archived = s.store(ctx, signed)

	s.log.Info("Document signed",
		slog.String("identity_id", identity.ID),
		slog.String("content_digest", digest.String()),
		slog.String("filename", req.Filename),
		slog.Bool("registered", result.Registered))

	return result, nil
}

// signDigest unwraps the identity key and signs digest. The derived key and
// the raw private key are zeroized on every return path.
func signDigest(identity *interfaces.Identity, password []byte, digest interfaces.ContentDigest) (interfaces.Signature, error) {
	derived, _, err := cryptoutils.DeriveKey(password, identity.KDFSalt)
	if err != nil {
		return interfaces.Signature{}, fmt.Errorf("failed to derive wrapping key: %w", err)
	}
	defer zeroize(derived)

	seed, err := cryptoutils.UnwrapKey(identity.WrappedPrivateKey, identity.Nonce, derived)
	if errors.Is(err, cryptoutils.ErrAuthentication) {
		return interfaces.Signature{}, ErrInvalidCredential
	}
	if err != nil {
		return interfaces.Signature{}, fmt.Errorf("failed to unwrap private key: %w", err)
	}
	defer zeroize(seed)

	publicKey, err := cryptoutils.PublicKeyFromSeed(seed)
	if err != nil {
		return interfaces.Signature{}, err
	}
	if publicKey != identity.PublicKey {
		return interfaces.Signature{}, ErrKeyMismatch
	}

	return cryptoutils.Sign(digest.Bytes(), seed)
}

func (s *Signer) register(ctx context.Context, entry *interfaces.RegistryEntry) bool {
	if s.registry == nil {
		return false
	}

	err := s.registry.Insert(ctx, entry)
	switch {
	case err == nil:
		return true
	case errors.Is(err, interfaces.ErrConflict):
		metrics.RecordRegistryWriteFailure("conflict")
		s.log.Warn("Signature already registered",
			slog.String("signature", entry.Signature.String()),
			slog.String("identity_id", entry.SignerID))
	default:
		metrics.RecordRegistryWriteFailure("error")
		s.log.Error("Failed to record registry entry",
			slog.String("signature", entry.Signature.String()),
			slog.String("identity_id", entry.SignerID),
			"err", err)
	}
	return false
}

func (s *Signer) store(ctx context.Context, signed []byte) bool {
	if s.archive == nil {
		return false
	}

	digest, err := s.archive.Store(ctx, signed)
	if err != nil {
		metrics.RecordArchiveWriteFailure()
		s.log.Error("Failed to archive signed document", "err", err)
		return false
	}

	s.log.Debug("Archived signed document", slog.String("document_digest", digest.String()))
	return true
}

func signResultLabel(err error) string {
	switch {
	case err == nil:
		return metrics.SignSuccess
	case errors.Is(err, ErrInvalidCredential):
		return metrics.SignInvalidCredential
	case errors.Is(err, ErrEmptyPassword),
		errors.Is(err, ErrAlreadySigned),
		errors.Is(err, document.ErrMalformedContainer),
		errors.Is(err, interfaces.ErrIdentityNotFound):
		return metrics.SignRejected
	default:
		return metrics.SignError
	}
}
