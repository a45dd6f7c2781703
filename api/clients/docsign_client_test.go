package clients

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/ruteri/doc-signing-backend/document/documenttest"
	"github.com/ruteri/doc-signing-backend/httpserver"
	"github.com/ruteri/doc-signing-backend/interfaces"
	"github.com/ruteri/doc-signing-backend/registry"
	"github.com/ruteri/doc-signing-backend/signing"
	"github.com/ruteri/doc-signing-backend/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startService(t *testing.T) *DocsignClient {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	backend := storage.NewMemoryBackend("clients", logger)

	identities := registry.NewIdentityStore(backend, logger)
	signatures := registry.NewSignatureRegistry(backend, logger)
	archive := registry.NewDocumentArchive(backend)

	handler := httpserver.NewHandler(
		identities,
		signing.NewSigner(identities, signatures, archive, logger),
		signing.NewVerifier(signatures, identities, logger),
		archive,
		0,
		logger,
	)
	router := chi.NewRouter()
	handler.RegisterRoutes(router)

	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return NewDocsignClient(ts.URL + "/")
}

func TestDocsignClientRoundTrip(t *testing.T) {
	ctx := context.Background()
	client := startService(t)

	identity, err := client.CreateIdentity(ctx, "Alice", "passphrase")
	require.NoError(t, err)
	require.NotEmpty(t, identity.ID)

	fetched, err := client.GetIdentity(ctx, identity.ID)
	require.NoError(t, err)
	assert.Equal(t, identity.PublicKey, fetched.PublicKey)

	doc := documenttest.New().Build()
	signed, err := client.Sign(ctx, doc, identity.ID, "passphrase", "memo.docx")
	require.NoError(t, err)
	assert.Equal(t, identity.PublicKey, signed.PublicKey)
	assert.True(t, signed.Registered)

	report, err := client.Verify(ctx, signed.Signed)
	require.NoError(t, err)
	assert.Equal(t, signing.OutcomeValid, report.Outcome)
	assert.Equal(t, signed.Signature, *report.Signature)
	assert.Equal(t, signed.ContentDigest, *report.ContentDigest)
	require.NotNil(t, report.Entry)
	assert.Equal(t, "memo.docx", report.Entry.Filename)

	inspect, err := client.Inspect(ctx, signed.Signed)
	require.NoError(t, err)
	assert.True(t, inspect.Signed)

	archived, err := client.FetchDocument(ctx, interfaces.ComputeDigest(signed.Signed))
	require.NoError(t, err)
	assert.Equal(t, signed.Signed, archived)
}

func TestDocsignClientErrors(t *testing.T) {
	ctx := context.Background()
	client := startService(t)

	identity, err := client.CreateIdentity(ctx, "Alice", "passphrase")
	require.NoError(t, err)

	_, err = client.Sign(ctx, documenttest.New().Build(), identity.ID, "wrong", "")
	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	assert.Contains(t, apiErr.Message, "invalid credential")

	_, err = client.GetIdentity(ctx, "missing")
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)

	_, err = client.Verify(ctx, []byte("not a document"))
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)

	unreachable := NewDocsignClient("http://127.0.0.1:1")
	_, err = unreachable.Inspect(ctx, []byte("x"))
	require.Error(t, err)
	require.False(t, errors.As(err, &apiErr))
}
