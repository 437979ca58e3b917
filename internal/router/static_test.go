package router

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abdurahmanit/GroupProject/village-market/internal/platform/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticUploads(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "cars"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "cars", "front.png"), pngHeader, 0o644))

	s := newTestServer(t, func(o *Options) { o.UploadRoot = root })

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/cars/front.png", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, pngHeader, rec.Body.Bytes())
	assert.Contains(t, rec.Header().Get("Cache-Control"), "max-age=86400")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/cars/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStaticUploadsDisabledWithoutRoot(t *testing.T) {
	s := newTestServer(t)

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/uploads/cars/front.png", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	m := metrics.NewMetricsManager("village_router_test")
	s := newTestServer(t, func(o *Options) { o.Metrics = m })

	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	s.handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `village_router_test_http_requests_total{method="GET",route="/api/health",status="200"} 1`)
}
