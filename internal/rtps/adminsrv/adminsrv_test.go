package adminsrv

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadyReportsServiceUnavailableUntilEnabled(t *testing.T) {
	var enabled atomic.Bool
	srv := NewServer(":0", false, func() Status { return Status{Enabled: enabled.Load()} })

	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	enabled.Store(true)
	rec = httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestPingAlwaysOK(t *testing.T) {
	srv := NewServer(":0", false, func() Status { return Status{} })
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "pong\n", rec.Body.String())
}

func TestPprofDisabledByDefaultFallsThroughToNotFound(t *testing.T) {
	srv := NewServer(":0", false, func() Status { return Status{} })
	req := httptest.NewRequest(http.MethodGet, "/debug/pprof/cmdline", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestMetricsServedWhenRequested(t *testing.T) {
	srv := NewServer(":0", false, func() Status { return Status{} })
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestParticipantStatusReportsLiveDiscoveryCounts(t *testing.T) {
	srv := NewServer(":0", false, func() Status {
		return Status{Enabled: true, DiscoveredParticipants: 3, MatchedEndpoints: 7}
	})
	req := httptest.NewRequest(http.MethodGet, "/debug/participant", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var got Status
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, Status{Enabled: true, DiscoveredParticipants: 3, MatchedEndpoints: 7}, got)
}

func TestNilStatusFuncTreatedAsNotReady(t *testing.T) {
	srv := NewServer(":0", false, nil)
	req := httptest.NewRequest(http.MethodGet, "/ready", nil)
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
