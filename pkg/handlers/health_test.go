package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/config"
)

func TestHealth(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(&config.Config{Version: "test", Env: "local"}, zap.NewNop()).RegisterRoutes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestPing(t *testing.T) {
	mux := http.NewServeMux()
	NewHealthHandler(&config.Config{Version: "1.2.3", Env: "local"}, zap.NewNop()).RegisterRoutes(mux)

	w := httptest.NewRecorder()
	mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp PingResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.Equal(t, "1.2.3", resp.Version)
	assert.Equal(t, "onbloom-engine", resp.Service)
	assert.Equal(t, "local", resp.Environment)
}
