package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/auth"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
	"github.com/onbloom-hq/onbloom-engine/pkg/services"
)

// OnboardingHandler serves the onboarding flow endpoints.
type OnboardingHandler struct {
	onboarding *services.OnboardingService
	authMW     *auth.Middleware
	logger     *zap.Logger
}

// NewOnboardingHandler creates an onboarding handler.
func NewOnboardingHandler(onboarding *services.OnboardingService, authMW *auth.Middleware, logger *zap.Logger) *OnboardingHandler {
	return &OnboardingHandler{
		onboarding: onboarding,
		authMW:     authMW,
		logger:     logger,
	}
}

// RegisterRoutes registers the onboarding routes on the given mux.
func (h *OnboardingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/onboarding/generate", h.authMW.RequireAuth(h.Generate))
	mux.HandleFunc("POST /api/onboarding/stream", h.authMW.RequireAuth(h.Stream))
}

type onboardingRequest struct {
	Employee *models.OnboardingEmployee `json:"employee"`
}

// Generate handles POST /api/onboarding/generate. Generation failure is
// served as the fallback plan with a 200, never an error response.
func (h *OnboardingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Employee == nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Employee is required")
		return
	}

	result := h.onboarding.GenerateFlow(r.Context(), req.Employee)
	_ = WriteJSON(w, http.StatusOK, result)
}

// Stream handles POST /api/onboarding/stream, streaming plain analysis
// text as it is generated.
func (h *OnboardingHandler) Stream(w http.ResponseWriter, r *http.Request) {
	var req onboardingRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Employee == nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Employee is required")
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
		errCh <- h.onboarding.StreamNeeds(r.Context(), req.Employee, chunks)
	}()

	headersSent := false
	for chunk := range chunks {
		if !headersSent {
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.Header().Set("Cache-Control", "no-cache")
			w.WriteHeader(http.StatusOK)
			headersSent = true
		}
		if _, err := w.Write([]byte(chunk)); err != nil {
			return
		}
		flusher.Flush()
	}

	if err := <-errCh; err != nil {
		if headersSent {
			h.logger.Error("Onboarding stream aborted", zap.Error(err))
			return
		}
		h.logger.Error("Onboarding stream failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to analyze onboarding needs")
	}
}
