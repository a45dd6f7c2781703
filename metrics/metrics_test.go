package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCounters(t *testing.T) {
	before := testutil.ToFloat64(signTotal.WithLabelValues(SignSuccess))
	RecordSign(SignSuccess)
	RecordSign(SignSuccess)
	assert.Equal(t, before+2, testutil.ToFloat64(signTotal.WithLabelValues(SignSuccess)))

	before = testutil.ToFloat64(verifyTotal.WithLabelValues("tampered"))
	RecordVerify("tampered")
	assert.Equal(t, before+1, testutil.ToFloat64(verifyTotal.WithLabelValues("tampered")))

	before = testutil.ToFloat64(registryWriteFailures.WithLabelValues("conflict"))
	RecordRegistryWriteFailure("conflict")
	assert.Equal(t, before+1, testutil.ToFloat64(registryWriteFailures.WithLabelValues("conflict")))

	before = testutil.ToFloat64(archiveWriteFailures)
	RecordArchiveWriteFailure()
	assert.Equal(t, before+1, testutil.ToFloat64(archiveWriteFailures))
}

func TestMetricsServerHandler(t *testing.T) {
	srv, err := New("docsign", "127.0.0.1:0")
	require.NoError(t, err)

	RecordVerify("valid")

	ts := httptest.NewServer(srv.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/metrics")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `docsign_signing_verify_total{outcome="valid"}`)
	assert.Contains(t, string(body), "go_build_info")
}
