package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/ruteri/doc-signing-backend/api"
	"github.com/ruteri/doc-signing-backend/interfaces"
)

// APIError is a non-2xx response from the service.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

// DocsignClient implements api.SigningService over HTTP.
type DocsignClient struct {
	baseURL    string
	httpClient *http.Client
}

// NewDocsignClient creates a client for the service at baseURL
// (e.g. "http://localhost:8080"). The optional timeout defaults to 60 seconds.
func NewDocsignClient(baseURL string, timeout ...time.Duration) *DocsignClient {
	clientTimeout := 60 * time.Second
	if len(timeout) > 0 {
		clientTimeout = timeout[0]
	}

	return &DocsignClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: clientTimeout,
		},
	}
}

// CreateIdentity enrolls a new identity.
func (c *DocsignClient) CreateIdentity(ctx context.Context, displayName, password string) (*api.IdentityResponse, error) {
	body, err := json.Marshal(&api.CreateIdentityRequest{DisplayName: displayName, Password: password})
	if err != nil {
		return nil, err
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/identities", "application/json", body, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var identity api.IdentityResponse
	if err := decodeJSON(resp, http.StatusCreated, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// GetIdentity fetches the public view of an identity.
func (c *DocsignClient) GetIdentity(ctx context.Context, id string) (*api.IdentityResponse, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/identities/"+url.PathEscape(id), "", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var identity api.IdentityResponse
	if err := decodeJSON(resp, http.StatusOK, &identity); err != nil {
		return nil, err
	}
	return &identity, nil
}

// Sign signs doc with the given identity.
func (c *DocsignClient) Sign(ctx context.Context, doc []byte, identityID, password, filename string) (*api.SignResponse, error) {
	headers := map[string]string{
		api.IdentityHeader: identityID,
		api.PasswordHeader: password,
	}
	if filename != "" {
		headers[api.FilenameHeader] = filename
	}

	resp, err := c.do(ctx, http.MethodPost, "/api/documents/sign", "application/octet-stream", doc, headers)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}

	signed, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read signed document: %w", err)
	}

	result := &api.SignResponse{Signed: signed}
	if result.Signature, err = interfaces.NewSignatureFromHex(resp.Header.Get(api.SignatureHeader)); err != nil {
		return nil, err
	}
	if result.PublicKey, err = interfaces.NewPublicKeyFromHex(resp.Header.Get(api.PublicKeyHeader)); err != nil {
		return nil, err
	}
	if result.ContentDigest, err = interfaces.NewContentDigestFromHex(resp.Header.Get(api.ContentDigestHeader)); err != nil {
		return nil, err
	}
	result.Registered, _ = strconv.ParseBool(resp.Header.Get(api.RegisteredHeader))
	return result, nil
}

// Verify verifies doc and returns the server's report.
func (c *DocsignClient) Verify(ctx context.Context, doc []byte) (*api.VerifyResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/documents/verify", "application/octet-stream", doc, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var report api.VerifyResponse
	if err := decodeJSON(resp, http.StatusOK, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// Inspect reports whether doc carries a signature envelope.
func (c *DocsignClient) Inspect(ctx context.Context, doc []byte) (*api.InspectResponse, error) {
	resp, err := c.do(ctx, http.MethodPost, "/api/documents/inspect", "application/octet-stream", doc, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var inspect api.InspectResponse
	if err := decodeJSON(resp, http.StatusOK, &inspect); err != nil {
		return nil, err
	}
	return &inspect, nil
}

// FetchDocument downloads an archived signed document by the digest of its bytes.
func (c *DocsignClient) FetchDocument(ctx context.Context, digest interfaces.ContentDigest) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, "/api/documents/"+digest.String(), "", nil, nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, readAPIError(resp)
	}
	return io.ReadAll(resp.Body)
}

func (c *DocsignClient) do(ctx context.Context, method, path, contentType string, body []byte, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	for name, value := range headers {
		req.Header.Set(name, value)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not request %s: %w", path, err)
	}
	return resp, nil
}

func decodeJSON(resp *http.Response, wantStatus int, v any) error {
	if resp.StatusCode != wantStatus {
		return readAPIError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("could not parse response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	bodyBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &APIError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	var parsed api.ErrorResponse
	if json.Unmarshal(bodyBytes, &parsed) == nil && parsed.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: parsed.Error}
	}
	return &APIError{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(bodyBytes))}
}

var _ api.SigningService = (*DocsignClient)(nil)
