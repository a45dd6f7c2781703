package httpserver

import (
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ruteri/doc-signing-backend/api"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	handler := NewHandler(nil, nil, nil, nil, 0, logger)

	srv, err := New(&api.HTTPServerConfig{
		ListenAddr:               "127.0.0.1:0",
		Log:                      logger,
		DrainDuration:            time.Millisecond,
		GracefulShutdownDuration: time.Second,
	}, handler)
	require.NoError(t, err)
	return srv
}

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t)
	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	get := func(path string) (int, string) {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		defer resp.Body.Close()
		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		return resp.StatusCode, string(body)
	}

	steps := []struct {
		path       string
		wantStatus int
		wantBody   string
	}{
		{path: "/livez", wantStatus: http.StatusOK, wantBody: `{"status":"alive"}`},
		{path: "/readyz", wantStatus: http.StatusOK, wantBody: `{"status":"ready"}`},
		{path: "/drain", wantStatus: http.StatusOK, wantBody: `{"status":"draining"}`},
		{path: "/drain", wantStatus: http.StatusOK, wantBody: `{"status":"already draining"}`},
		{path: "/readyz", wantStatus: http.StatusServiceUnavailable, wantBody: `{"status":"not ready"}`},
		{path: "/livez", wantStatus: http.StatusOK, wantBody: `{"status":"alive"}`},
		{path: "/undrain", wantStatus: http.StatusOK, wantBody: `{"status":"ready"}`},
		{path: "/undrain", wantStatus: http.StatusOK, wantBody: `{"status":"already ready"}`},
		{path: "/readyz", wantStatus: http.StatusOK, wantBody: `{"status":"ready"}`},
	}
	for _, step := range steps {
		status, body := get(step.path)
		require.Equal(t, step.wantStatus, status, step.path)
		require.Equal(t, step.wantBody, body, step.path)
	}
}

func TestPprofDisabledByDefault(t *testing.T) {
	srv := newTestServer(t)
	rr := httptest.NewRecorder()
	srv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/debug/pprof/", nil))
	require.Equal(t, http.StatusNotFound, rr.Code)
}
