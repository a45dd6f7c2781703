package signing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ruteri/doc-signing-backend/cryptoutils"
	"github.com/ruteri/doc-signing-backend/document"
	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/ruteri/doc-signing-backend/metrics"
)

// Report describes a verification. Fields other than Outcome are populated
// as far as the state machine got: the envelope once extracted, the digest
// once rehashed, the signer once attributed.
type Report struct {
	Outcome Outcome `json:"outcome"`

	Signature     *interfaces.Signature     `json:"signature,omitempty"`
	PublicKey     *interfaces.PublicKey     `json:"public_key,omitempty"`
	ContentDigest *interfaces.ContentDigest `json:"content_digest,omitempty"`

	SignerID   string                    `json:"signer_id,omitempty"`
	SignerName string                    `json:"signer_name,omitempty"`
	Entry      *interfaces.RegistryEntry `json:"registry_entry,omitempty"`

	// Reason explains a Tampered outcome.
	Reason string `json:"reason,omitempty"`
}

// Verifier runs the verify workflow.
//
// Without a registry the verifier is purely cryptographic: a signature that
// verifies is Valid. With one, every valid signature must also be attributed
// through the registry and the identity store.
type Verifier struct {
	registry   interfaces.RegistryStore
	identities interfaces.IdentityStore
	log        *slog.Logger
}

// NewVerifier creates a Verifier. Attribution is enabled only when both
// registry and identities are non-nil.
func NewVerifier(registry interfaces.RegistryStore, identities interfaces.IdentityStore, log *slog.Logger) *Verifier {
	if log == nil {
		log = slog.Default()
	}
	v := &Verifier{log: log}
	if registry != nil && identities != nil {
		v.registry = registry
		v.identities = identities
	}
	return v
}

type verification struct {
	*Verifier

	state    State
	raw      []byte
	envelope *document.Envelope
	stripped []byte
	digest   interfaces.ContentDigest
	report   Report
}

// Verify reports the outcome of verifying a signed document.
//
// A document that cannot be parsed returns document.ErrMalformedContainer.
// Registry or identity store failures other than not-found are returned as
// errors rather than being folded into an outcome.
func (v *Verifier) Verify(ctx context.Context, raw []byte) (*Report, error) {
	run := &verification{Verifier: v, state: StateExtracting, raw: raw}

	for run.state != StateDone {
		var (
			next State
			err  error
		)

		switch run.state {
		case StateExtracting:
			next, err = run.extract()
		case StateRehashing:
			next, err = run.rehash()
		case StateVerifying:
			next, err = run.verify()
		case StateAttributing:
			next, err = run.attribute(ctx)
		default:
			return nil, fmt.Errorf("verification reached unexpected state %s", run.state)
		}
		if err != nil {
			return nil, err
		}

		v.log.Debug("Verification step",
			slog.String("from", run.state.String()),
			slog.String("to", next.String()))
		run.state = next
	}

	metrics.RecordVerify(run.report.Outcome.String())
	v.log.Info("Document verified",
		slog.String("outcome", run.report.Outcome.String()),
		slog.String("signer_id", run.report.SignerID))

	return &run.report, nil
}

func (r *verification) done(outcome Outcome) (State, error) {
	r.report.Outcome = outcome
	return StateDone, nil
}

func (r *verification) extract() (State, error) {
	envelope, stripped, err := document.ExtractAndStrip(r.raw)
	if errors.Is(err, document.ErrNotSigned) {
		return r.done(OutcomeNotSigned)
	}
	if err != nil {
		return StateDone, err
	}

	r.envelope = envelope
	r.stripped = stripped
	r.report.Signature = &envelope.Signature
	r.report.PublicKey = &envelope.PublicKey
	return StateRehashing, nil
}

func (r *verification) rehash() (State, error) {
	// Canonicalize is idempotent on stripped output.
	canonical, err := document.Canonicalize(r.stripped)
	if err != nil {
		return StateDone, err
	}

	r.digest = document.Digest(canonical)
	r.report.ContentDigest = &r.digest
	return StateVerifying, nil
}

func (r *verification) verify() (State, error) {
	if !cryptoutils.Verify(r.envelope.Signature.Bytes(), r.digest.Bytes(), r.envelope.PublicKey.Bytes()) {
		return r.done(OutcomeInvalid)
	}
	if r.registry == nil {
		return r.done(OutcomeValid)
	}
	return StateAttributing, nil
}

func (r *verification) attribute(ctx context.Context) (State, error) {
	entry, err := r.registry.FindBySignature(ctx, r.envelope.Signature)
	if errors.Is(err, interfaces.ErrEntryNotFound) {
		return r.done(OutcomeUnregistered)
	}
	if err != nil {
		return StateDone, fmt.Errorf("failed to look up registry entry: %w", err)
	}
	r.report.Entry = entry
	r.report.SignerID = entry.SignerID

	identity, err := r.identities.Get(ctx, entry.SignerID)
	if errors.Is(err, interfaces.ErrIdentityNotFound) {
		return r.tampered("registered signer identity does not exist")
	}
	if err != nil {
		return StateDone, fmt.Errorf("failed to load signer identity: %w", err)
	}
	r.report.SignerName = identity.DisplayName

	if identity.PublicKey != r.envelope.PublicKey {
		return r.tampered("embedded public key differs from the registered signer key")
	}
	if entry.ContentDigest != r.digest {
		return r.tampered("content digest differs from the registered digest")
	}
	return r.done(OutcomeValid)
}

func (r *verification) tampered(reason string) (State, error) {
	r.log.Warn("Registry attribution mismatch",
		slog.String("reason", reason),
		slog.String("signature", r.envelope.Signature.String()))
	r.report.Reason = reason
	return r.done(OutcomeTampered)
}
