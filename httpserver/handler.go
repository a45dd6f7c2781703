package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/doc-signing-backend/api"
	"github.com/ruteri/doc-signing-backend/document"
	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/ruteri/doc-signing-backend/registry"
	"github.com/ruteri/doc-signing-backend/signing"
)

// DefaultMaxBodyBytes is the request body cap when none is configured (50 MB).
const DefaultMaxBodyBytes = 50 << 20

// RequestError provides structured error information for HTTP responses.
// It includes both an HTTP status code and the underlying error.
type RequestError struct {
	// StatusCode is the HTTP status code to return.
	StatusCode int

	// Err is the underlying error.
	Err error
}

// Error returns the error message from the underlying error.
func (e *RequestError) Error() string {
	return e.Err.Error()
}

func (e *RequestError) Unwrap() error {
	return e.Err
}

// DocumentFetcher reads archived signed documents.
type DocumentFetcher interface {
	Fetch(ctx context.Context, digest interfaces.ContentDigest) ([]byte, error)
}

// Handler processes HTTP requests for the document signing service.
// It translates requests into calls on the signing orchestrators and maps
// their errors onto HTTP status codes.
type Handler struct {
	identities   interfaces.IdentityStore
	signer       *signing.Signer
	verifier     *signing.Verifier
	archive      DocumentFetcher
	maxBodyBytes int64
	log          *slog.Logger
}

// NewHandler creates a new HTTP request handler with the specified dependencies.
//
// Parameters:
//   - identities: Identity store used for enrollment and lookups
//   - signer: Signing orchestrator
//   - verifier: Verification orchestrator
//   - archive: Archive of signed documents, or nil when archiving is disabled
//   - maxBodyBytes: Request body cap, DefaultMaxBodyBytes when not positive
//   - log: Structured logger for operational insights
//
// Returns a configured Handler instance.
func NewHandler(identities interfaces.IdentityStore, signer *signing.Signer, verifier *signing.Verifier, archive DocumentFetcher, maxBodyBytes int64, log *slog.Logger) *Handler {
	if maxBodyBytes <= 0 {
		maxBodyBytes = DefaultMaxBodyBytes
	}
	return &Handler{
		identities:   identities,
		signer:       signer,
		verifier:     verifier,
		archive:      archive,
		maxBodyBytes: maxBodyBytes,
		log:          log,
	}
}

// RegisterRoutes mounts the API on r.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/identities", h.HandleCreateIdentity)
	r.Get("/api/identities/{id}", h.HandleGetIdentity)
	r.Post("/api/documents/sign", h.HandleSign)
	r.Post("/api/documents/verify", h.HandleVerify)
	r.Post("/api/documents/inspect", h.HandleInspect)
	r.Get("/api/documents/{digest}", h.HandleGetDocument)
}

// HandleCreateIdentity enrolls a new signing identity.
//
// URL format: POST /api/identities
//
// Request body: JSON {"display_name": "...", "password": "..."}
//
// Response: 201 with the public identity view
func (h *Handler) HandleCreateIdentity(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	var req api.CreateIdentityRequest
	if err := json.Unmarshal(body, &req); err != nil {
		h.writeError(w, &RequestError{StatusCode: http.StatusBadRequest, Err: errors.New("invalid JSON request body")})
		return
	}

	req.DisplayName = strings.TrimSpace(req.DisplayName)
	if req.DisplayName == "" {
		h.writeError(w, &RequestError{StatusCode: http.StatusBadRequest, Err: errors.New("display_name is required")})
		return
	}

	identity, err := signing.Enroll(r.Context(), h.identities, req.DisplayName, []byte(req.Password))
	if err != nil {
		h.log.Error("Failed to enroll identity", "err", err)
		h.writeError(w, err)
		return
	}

	h.log.Info("Identity enrolled",
		slog.String("identity_id", identity.ID),
		slog.String("public_key", identity.PublicKey.String()))

	h.writeJSON(w, http.StatusCreated, api.NewIdentityResponse(identity))
}

// HandleGetIdentity returns the public view of an identity.
//
// URL format: GET /api/identities/{id}
func (h *Handler) HandleGetIdentity(w http.ResponseWriter, r *http.Request) {
	identity, err := h.identities.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, api.NewIdentityResponse(identity))
}

// HandleSign signs the document in the request body.
//
// URL format: POST /api/documents/sign
// Required headers:
//   - X-Docsign-Identity: ID of the signing identity
//   - X-Docsign-Password: Password unwrapping the identity's private key
//
// Optional headers:
//   - X-Docsign-Filename: Original file name recorded in the registry
//
// Request body: the document
//
// Response: the signed document, with X-Docsign-Signature, X-Docsign-Public-Key,
// X-Docsign-Content-Digest and X-Docsign-Registered headers.
func (h *Handler) HandleSign(w http.ResponseWriter, r *http.Request) {
	identityID := r.Header.Get(api.IdentityHeader)
	if identityID == "" {
		h.writeError(w, &RequestError{StatusCode: http.StatusBadRequest, Err: errors.New("missing identity header")})
		return
	}

	body, err := h.readBody(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	result, err := h.signer.Sign(r.Context(), &signing.SignRequest{
		Document:   body,
		IdentityID: identityID,
		Password:   []byte(r.Header.Get(api.PasswordHeader)),
		Filename:   r.Header.Get(api.FilenameHeader),
	})
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", api.DocumentContentType)
	w.Header().Set(api.SignatureHeader, result.Signature.String())
	w.Header().Set(api.PublicKeyHeader, result.PublicKey.String())
	w.Header().Set(api.ContentDigestHeader, result.ContentDigest.String())
	w.Header().Set(api.RegisteredHeader, strconv.FormatBool(result.Registered))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Signed)))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(result.Signed); err != nil {
		h.log.Error("Failed to write signed document", "err", err)
	}
}

// HandleVerify verifies the document in the request body.
//
// URL format: POST /api/documents/verify
//
// Request body: the document
//
// Response: JSON verification report. Every outcome, including not_signed
// and tampered, is a 200.
func (h *Handler) HandleVerify(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}

	report, err := h.verifier.Verify(r.Context(), body)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, report)
}

// HandleInspect reports whether the document in the request body carries a
// signature envelope, without verifying it.
//
// URL format: POST /api/documents/inspect
//
// Response: JSON {"signed": bool}
func (h *Handler) HandleInspect(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, &api.InspectResponse{Signed: document.HasEnvelope(body)})
}

// HandleGetDocument returns an archived signed document.
//
// URL format: GET /api/documents/{digest}
//
// The digest is the SHA-256 of the signed document bytes, hex encoded.
func (h *Handler) HandleGetDocument(w http.ResponseWriter, r *http.Request) {
	if h.archive == nil {
		h.writeError(w, &RequestError{StatusCode: http.StatusNotFound, Err: errors.New("document archive is disabled")})
		return
	}

	digest, err := interfaces.NewContentDigestFromHex(chi.URLParam(r, "digest"))
	if err != nil {
		h.writeError(w, &RequestError{StatusCode: http.StatusBadRequest, Err: err})
		return
	}

	data, err := h.archive.Fetch(r.Context(), digest)
	if err != nil {
		h.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", api.DocumentContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, &RequestError{StatusCode: http.StatusRequestEntityTooLarge, Err: errors.New("request body too large")}
		}
		return nil, &RequestError{StatusCode: http.StatusBadRequest, Err: errors.New("failed to read request body")}
	}
	if len(body) == 0 {
		return nil, &RequestError{StatusCode: http.StatusBadRequest, Err: errors.New("empty request body")}
	}
	return body, nil
}

// statusFor maps domain errors onto HTTP status codes.
func statusFor(err error) int {
	var reqErr *RequestError
	switch {
	case errors.As(err, &reqErr):
		return reqErr.StatusCode
	case errors.Is(err, signing.ErrInvalidCredential):
		return http.StatusUnauthorized
	case errors.Is(err, document.ErrMalformedContainer),
		errors.Is(err, signing.ErrAlreadySigned),
		errors.Is(err, signing.ErrEmptyPassword):
		return http.StatusBadRequest
	case errors.Is(err, interfaces.ErrIdentityNotFound),
		errors.Is(err, registry.ErrDocumentNotFound):
		return http.StatusNotFound
	case errors.Is(err, interfaces.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := statusFor(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		h.log.Error("Request failed", "err", err)
		message = "internal server error"
	}
	h.writeJSON(w, status, &api.ErrorResponse{Error: message})
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Error("Failed to encode response", "err", err)
	}
}
