package health

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePinger struct {
	err error
}

func (f *fakePinger) Ping(ctx context.Context) error {
	return f.err
}

func readyResponse(t *testing.T, s *Server) (int, ReadyResponse) {
	t.Helper()
	rec := httptest.NewRecorder()
	s.handleReady(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))

	var body ReadyResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestHealthAlwaysOK(t *testing.T) {
	s := NewServer(Config{ServiceName: "tipster-test", Version: "v1"})

	rec := httptest.NewRecorder()
	s.handleHealth(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	var body StatusResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "v1", body.Version)
}

func TestReadyGatedOnPipelineAndModel(t *testing.T) {
	s := NewServer(Config{ServiceName: "tipster-test"})

	code, body := readyResponse(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body.Status)
	assert.Equal(t, "not_ready", body.Checks["pipeline"])
	assert.Equal(t, "not_loaded", body.Checks["model"])

	// A completed pass without a model artifact is still not ready.
	s.SetReady(true)
	code, body = readyResponse(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_loaded", body.Checks["model"])

	s.SetModelVersion("20240601T060000")
	code, body = readyResponse(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "20240601T060000", body.Checks["model"])
}

func TestReadyReportsDatabaseFailure(t *testing.T) {
	pinger := &fakePinger{}
	s := NewServer(Config{ServiceName: "tipster-test", DB: pinger})
	s.SetReady(true)
	s.SetModelVersion("v1")

	code, body := readyResponse(t, s)
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Checks["database"])

	pinger.err = fmt.Errorf("connection refused")
	code, body = readyResponse(t, s)
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Contains(t, body.Checks["database"], "connection refused")
}
