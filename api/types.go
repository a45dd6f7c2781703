package api

import (
	"context"
	"time"

	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/ruteri/doc-signing-backend/signing"
)

// Header constants used in HTTP requests and responses.
const (
	// IdentityHeader selects the signing identity by ID.
	IdentityHeader = "X-Docsign-Identity"

	// PasswordHeader carries the identity password for a sign request.
	// It is never logged.
	PasswordHeader = "X-Docsign-Password"

	// FilenameHeader is the optional original file name recorded in the registry.
	FilenameHeader = "X-Docsign-Filename"

	// SignatureHeader is the hex signature embedded in a signed document.
	SignatureHeader = "X-Docsign-Signature"

	// PublicKeyHeader is the hex signer public key embedded in a signed document.
	PublicKeyHeader = "X-Docsign-Public-Key"

	// ContentDigestHeader is the hex digest of the canonical unsigned document.
	ContentDigestHeader = "X-Docsign-Content-Digest"

	// RegisteredHeader is "true" when the registry recorded the signing event.
	RegisteredHeader = "X-Docsign-Registered"
)

// DocumentContentType is the media type of signed documents.
const DocumentContentType = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"

// CreateIdentityRequest enrolls a new signing identity.
type CreateIdentityRequest struct {
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
}

// IdentityResponse is the public view of an identity. Wrapped key material
// never leaves the server.
type IdentityResponse struct {
	ID          string               `json:"id"`
	DisplayName string               `json:"display_name"`
	PublicKey   interfaces.PublicKey `json:"public_key"`
	CreatedAt   time.Time            `json:"created_at"`
}

// NewIdentityResponse strips an identity down to its public fields.
func NewIdentityResponse(identity *interfaces.Identity) *IdentityResponse {
	return &IdentityResponse{
		ID:          identity.ID,
		DisplayName: identity.DisplayName,
		PublicKey:   identity.PublicKey,
		CreatedAt:   identity.CreatedAt,
	}
}

// SignResponse is the client-side view of a sign call: the signed document
// body plus the metadata headers.
type SignResponse struct {
	Signed        []byte
	Signature     interfaces.Signature
	PublicKey     interfaces.PublicKey
	ContentDigest interfaces.ContentDigest
	Registered    bool
}

// VerifyResponse is the verification report returned by the verify endpoint.
type VerifyResponse = signing.Report

// InspectResponse reports whether a document carries a signature envelope.
type InspectResponse struct {
	Signed bool `json:"signed"`
}

// ErrorResponse is the JSON body of every non-2xx API response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// SigningService is the set of operations the service offers. It is
// implemented over HTTP by clients.DocsignClient and in-process by the
// docsign CLI.
type SigningService interface {
	CreateIdentity(ctx context.Context, displayName, password string) (*IdentityResponse, error)
	GetIdentity(ctx context.Context, id string) (*IdentityResponse, error)
	Sign(ctx context.Context, doc []byte, identityID, password, filename string) (*SignResponse, error)
	Verify(ctx context.Context, doc []byte) (*VerifyResponse, error)
	Inspect(ctx context.Context, doc []byte) (*InspectResponse, error)
}
