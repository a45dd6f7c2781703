package storage

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeVault serves the subset of the KV v2 and sys/health APIs used by VaultBackend.
type fakeVault struct {
	mu      sync.Mutex
	secrets map[string]map[string]interface{}
	sealed  bool
	token   string
}

func (v *fakeVault) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	v.mu.Lock()
	defer v.mu.Unlock()

	if r.URL.Path == "/v1/sys/health" {
		status := http.StatusOK
		if v.sealed {
			status = http.StatusServiceUnavailable
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"initialized": true, "sealed": v.sealed})
		return
	}

	if r.Header.Get("X-Vault-Token") != v.token {
		writeVaultError(w, http.StatusForbidden, "permission denied")
		return
	}

	path := strings.TrimPrefix(r.URL.Path, "/v1/")
	switch r.Method {
	case http.MethodGet:
		data, ok := v.secrets[path]
		if !ok {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"data": map[string]interface{}{
				"data":     data,
				"metadata": map[string]interface{}{"version": 1},
			},
		})
	case http.MethodPut, http.MethodPost:
		var body struct {
			Options map[string]interface{} `json:"options"`
			Data    map[string]interface{} `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeVaultError(w, http.StatusBadRequest, err.Error())
			return
		}
		if cas, ok := body.Options["cas"]; ok && cas == float64(0) {
			if _, exists := v.secrets[path]; exists {
				writeVaultError(w, http.StatusBadRequest, "check-and-set parameter did not match the current version")
				return
			}
		}
		v.secrets[path] = body.Data
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"data": map[string]interface{}{"version": 1}})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func writeVaultError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{"errors": []string{msg}})
}

func TestVaultBackend(t *testing.T) {
	vault := &fakeVault{secrets: make(map[string]map[string]interface{}), token: "root-token"}
	server := httptest.NewServer(vault)
	defer server.Close()

	backend, err := NewVaultBackend(server.URL, "secret/", "/docsign", "root-token", discardLogger())
	require.NoError(t, err)

	testBackendSemantics(t, backend)

	// KV v2 data path layout
	vault.mu.Lock()
	_, ok := vault.secrets["secret/data/docsign/identities/id-1"]
	vault.mu.Unlock()
	require.True(t, ok)

	require.Equal(t, "vault-secret-docsign", backend.Name())
	require.True(t, strings.HasSuffix(backend.LocationURI(), "/secret/docsign"))
}

func TestVaultBackendSealed(t *testing.T) {
	vault := &fakeVault{secrets: make(map[string]map[string]interface{}), sealed: true}
	server := httptest.NewServer(vault)
	defer server.Close()

	backend, err := NewVaultBackend(server.URL, "secret", "", "", discardLogger())
	require.NoError(t, err)
	require.False(t, backend.Available(t.Context()))
}

func TestVaultBackendRequiresMount(t *testing.T) {
	_, err := NewVaultBackend("http://127.0.0.1:8200", "", "x", "", discardLogger())
	require.Error(t, err)
}
