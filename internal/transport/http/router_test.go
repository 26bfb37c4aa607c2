package httptransport

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"facesign/internal/platform/metrics"
)

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))
	return NewRouter(logger, metrics.NewWith(prometheus.NewRegistry()), Config{
		Host:               "https://facesign.example",
		SDKPublicKeyPEM:    []byte("-----BEGIN PUBLIC KEY-----\nsdk\n-----END PUBLIC KEY-----\n"),
		IssuerKeyMultibase: []byte("z6MkExampleMultibaseKey"),
	})
}

func TestHealthz(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestRootBanner(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "FaceSign Service is running")
}

func TestSDKPublicKey(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sdk/public-key", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "BEGIN PUBLIC KEY")
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/plain")
}

func TestIssuerDocument(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/idos/issuers/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var doc issuerDocument
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, "https://w3id.org/security/v2", doc.Context)
	assert.Equal(t, "https://facesign.example/idos/issuers/1", doc.ID)
	assert.Equal(t, []string{"https://facesign.example/idos/keys/1"}, doc.AssertionMethod)
	assert.Empty(t, doc.Authentication)
}

func TestIssuerKey(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/idos/keys/1", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "z6MkExampleMultibaseKey", rec.Body.String())
}

func TestRequestIDEchoed(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	req.Header.Set("X-Request-ID", "abc-123")
	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, "abc-123", rec.Header().Get("X-Request-ID"))
}

func TestRejectsNonJSONBodies(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/login", bytes.NewReader([]byte("<xml/>")))
	req.Header.Set("Content-Type", "application/xml")
	newTestRouter(t).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	newTestRouter(t).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
}
