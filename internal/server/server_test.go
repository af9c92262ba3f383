package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"wavvly/internal/config"
	"wavvly/internal/db"
	"wavvly/internal/repositories"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, cfg config.Config) *Server {
	t.Helper()
	database, err := db.OpenGorm(config.DriverSQLite, "file::memory:", false)
	require.NoError(t, err)
	require.NoError(t, db.Migrate(database))
	t.Cleanup(func() { _ = db.CloseGorm(database) })
	return NewServer(cfg, Deps{Store: repositories.NewGORMStore(database)})
}

func testConfig() config.Config {
	return config.Config{
		Env:             "test",
		JWTSecret:       "secret",
		TokenTTL:        time.Hour,
		CORSOrigins:     "*",
		AuthRateLimit:   100,
		APIRateLimit:    1000,
		RateLimitWindow: time.Minute,
	}
}

func TestHealthRoute(t *testing.T) {
	s := newTestServer(t, testConfig())

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetricsRoute(t *testing.T) {
	s := newTestServer(t, testConfig())

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestUnknownRouteIsJSON404(t *testing.T) {
	s := newTestServer(t, testConfig())

	resp, err := s.App.Test(httptest.NewRequest(http.MethodGet, "/api/nope", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "application/json")
}

func TestAuthRateLimit(t *testing.T) {
	cfg := testConfig()
	cfg.AuthRateLimit = 1
	s := newTestServer(t, cfg)

	login := func() int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login",
			strings.NewReader(`{"email":"nobody@example.com","password":"secret1"}`))
		req.Header.Set("Content-Type", "application/json")
		resp, err := s.App.Test(req, -1)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusUnauthorized, login())
	assert.Equal(t, http.StatusTooManyRequests, login())
}
