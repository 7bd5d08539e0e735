package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/apperrors"
	"github.com/onbloom-hq/onbloom-engine/pkg/auth"
	"github.com/onbloom-hq/onbloom-engine/pkg/services"
)

// RelationshipHandler serves the relationship analysis endpoints. Both
// endpoints stream free-text reasoning; the stream variant seeds the
// prompt with rule-based direct connections.
type RelationshipHandler struct {
	relationships *services.RelationshipService
	authMW        *auth.Middleware
	logger        *zap.Logger
}

// NewRelationshipHandler creates a relationship handler.
func NewRelationshipHandler(relationships *services.RelationshipService, authMW *auth.Middleware, logger *zap.Logger) *RelationshipHandler {
	return &RelationshipHandler{
		relationships: relationships,
		authMW:        authMW,
		logger:        logger,
	}
}

// RegisterRoutes registers the relationship routes on the given mux.
func (h *RelationshipHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/relationships/analyze", h.authMW.RequireAuth(h.Analyze))
	mux.HandleFunc("POST /api/relationships/stream", h.authMW.RequireAuth(h.Stream))
}

type analyzeRequest struct {
	EmployeeID string `json:"employeeId"`
}

// Analyze handles POST /api/relationships/analyze.
func (h *RelationshipHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, h.relationships.StreamAnalysis)
}

// Stream handles POST /api/relationships/stream.
func (h *RelationshipHandler) Stream(w http.ResponseWriter, r *http.Request) {
	h.stream(w, r, h.relationships.StreamWithConnections)
}

func (h *RelationshipHandler) stream(w http.ResponseWriter, r *http.Request, run func(context.Context, string, chan<- string) error) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.EmployeeID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Employee ID is required")
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		h.logger.Error("Streaming not supported")
		_ = ErrorResponse(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	chunks := make(chan string, 100)
	errCh := make(chan error, 1)
	go func() {
		defer close(chunks)
		errCh <- run(r.Context(), req.EmployeeID, chunks)
	}()

	headersSent := false
	for chunk := range chunks {
		if !headersSent {
			streamHeaders(w)
			headersSent = true
		}
		if _, err := w.Write([]byte(chunk)); err != nil {
			return
		}
		flusher.Flush()
	}

	if err := <-errCh; err != nil {
		if headersSent {
			h.logger.Error("Analysis stream aborted", zap.Error(err))
			return
		}
		if errors.Is(err, apperrors.ErrNotFound) {
			_ = ErrorResponse(w, http.StatusNotFound, "Employee not found")
			return
		}
		h.logger.Error("Analysis stream failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to analyze relationships")
		return
	}
	if !headersSent {
		streamHeaders(w)
	}
}

func streamHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
}
