package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/auth"
	"github.com/onbloom-hq/onbloom-engine/pkg/llm"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
	"github.com/onbloom-hq/onbloom-engine/pkg/services"
)

// stubThinker replays canned reasoning chunks.
type stubThinker struct {
	Chunks []string
	Err    error
}

func (s *stubThinker) StreamThinking(ctx context.Context, prompt string, chunks chan<- string) error {
	for _, c := range s.Chunks {
		chunks <- c
	}
	return s.Err
}

func newRelationshipTestMux(t *testing.T, thinker *stubThinker) *http.ServeMux {
	t.Helper()

	dir := &stubDirectory{Profiles: map[string]*models.EmployeeProfile{
		"emp-1": {ID: "emp-1", Name: "Priya Patel", Department: "Engineering", Role: "Software Engineer"},
	}}

	logger := zap.NewNop()
	svc := services.NewRelationshipService(dir, llm.NewMockGenerationClient(), thinker, logger)

	mux := http.NewServeMux()
	NewRelationshipHandler(svc, auth.NewMiddleware(passingAuthService{}, logger), logger).RegisterRoutes(mux)
	return mux
}

func TestRelationshipStream_WritesChunks(t *testing.T) {
	mux := newRelationshipTestMux(t, &stubThinker{Chunks: []string{"First, ", "the direct connections."}})

	w := postJSON(t, mux, "/api/relationships/stream", map[string]any{"employeeId": "emp-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "text/event-stream", w.Header().Get("Content-Type"))
	assert.Equal(t, "no", w.Header().Get("X-Accel-Buffering"))
	assert.Equal(t, "First, the direct connections.", w.Body.String())
}

func TestRelationshipAnalyze_WritesChunks(t *testing.T) {
	mux := newRelationshipTestMux(t, &stubThinker{Chunks: []string{"Thinking out loud."}})

	w := postJSON(t, mux, "/api/relationships/analyze", map[string]any{"employeeId": "emp-1"})

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "Thinking out loud.", w.Body.String())
}

func TestRelationshipStream_UnknownEmployee(t *testing.T) {
	mux := newRelationshipTestMux(t, &stubThinker{})

	w := postJSON(t, mux, "/api/relationships/stream", map[string]any{"employeeId": "missing"})

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error": "Employee not found"}`, w.Body.String())
}

func TestRelationshipStream_MissingEmployeeID(t *testing.T) {
	mux := newRelationshipTestMux(t, &stubThinker{})

	w := postJSON(t, mux, "/api/relationships/stream", map[string]any{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.JSONEq(t, `{"error": "Employee ID is required"}`, w.Body.String())
}

func TestRelationshipStream_InvalidBody(t *testing.T) {
	mux := newRelationshipTestMux(t, &stubThinker{})

	r := httptest.NewRequest(http.MethodPost, "/api/relationships/stream", strings.NewReader("not json"))
	w := httptest.NewRecorder()
	mux.ServeHTTP(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
