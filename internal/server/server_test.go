package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verdantlabs/esgboard/internal/events"
	"github.com/verdantlabs/esgboard/internal/modules/market"
	testhelpers "github.com/verdantlabs/esgboard/internal/testing"
)

func newTestServer(t *testing.T) (*Server, func()) {
	t.Helper()

	db, cleanup := testhelpers.NewTestDB(t)
	s := New(Config{
		Port:   0,
		Log:    zerolog.Nop(),
		DB:     db,
		Market: market.NewRepository(db.Conn()),
		Bus:    events.NewBus(zerolog.Nop()),
	})
	return s, cleanup
}

func TestHealthEndpoint(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body["status"])
	assert.NotEmpty(t, body["timestamp"])
}

func TestSystemStatusEndpoint(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/system/status", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "uptime_seconds")
	assert.Contains(t, body, "memory_percent")
	// No Alpha Vantage client wired in this test
	assert.NotContains(t, body, "alpha_vantage_requests_remaining")
}

func TestDatabaseStatsEndpoint(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	_, err := s.db.Conn().Exec(`INSERT INTO companies (symbol, name, sector) VALUES ('AAPL', 'Apple Inc', 'Technology')`)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/system/database/stats", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, 1.0, body["companies"])
	assert.Equal(t, 0.0, body["analyses"])
}

func TestMarketRoutesMounted(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/market/indices", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body, "data")
	assert.Contains(t, body, "metadata")
}

func TestUnknownRouteReturns404(t *testing.T) {
	s, cleanup := newTestServer(t)
	defer cleanup()

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}
