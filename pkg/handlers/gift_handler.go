package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/apperrors"
	"github.com/onbloom-hq/onbloom-engine/pkg/auth"
	"github.com/onbloom-hq/onbloom-engine/pkg/models"
	"github.com/onbloom-hq/onbloom-engine/pkg/services"
)

// GiftHandler serves the gift selection, approval, listing,
// recommendation, and chat endpoints.
type GiftHandler struct {
	gifts           *services.GiftService
	recommendations *services.RecommendationService
	chat            *services.ChatService
	authMW          *auth.Middleware
	logger          *zap.Logger
}

// NewGiftHandler creates a gift handler.
func NewGiftHandler(gifts *services.GiftService, recommendations *services.RecommendationService, chat *services.ChatService, authMW *auth.Middleware, logger *zap.Logger) *GiftHandler {
	return &GiftHandler{
		gifts:           gifts,
		recommendations: recommendations,
		chat:            chat,
		authMW:          authMW,
		logger:          logger,
	}
}

// RegisterRoutes registers the gift routes on the given mux.
func (h *GiftHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/gift/select", h.authMW.RequireAuth(h.SelectGift))
	mux.HandleFunc("GET /api/gift/select", h.authMW.RequireAuth(h.GetSelections))
	mux.HandleFunc("POST /api/gift/approve", h.authMW.RequireAuth(h.SubmitForApproval))
	mux.HandleFunc("PUT /api/gift/approve", h.authMW.RequireAuth(h.DecideApproval))
	mux.HandleFunc("GET /api/gift/list", h.authMW.RequireAuth(h.ListGifts))
	mux.HandleFunc("POST /api/gift/recommendations", h.authMW.RequireAuth(h.Recommend))
	mux.HandleFunc("POST /api/gift/chat", h.authMW.RequireAuth(h.Chat))
}

type selectGiftRequest struct {
	Gift        models.GiftDescriptor  `json:"gift"`
	SelectedFor models.Identity        `json:"selectedFor"`
	Occasion    string                 `json:"occasion,omitempty"`
	Notes       string                 `json:"notes,omitempty"`
	Sources     *models.GiftProvenance `json:"qlooSources,omitempty"`
}

// SelectGift handles POST /api/gift/select.
func (h *GiftHandler) SelectGift(w http.ResponseWriter, r *http.Request) {
	var req selectGiftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Gift.ID == "" || req.Gift.Name == "" || req.SelectedFor.ID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Gift and recipient are required")
		return
	}

	giver := callerIdentity(r)
	record, err := h.gifts.Select(r.Context(), &models.GiftSelectionInput{
		Gift:        req.Gift,
		SelectedBy:  giver,
		SelectedFor: req.SelectedFor,
		Occasion:    req.Occasion,
		Notes:       req.Notes,
		Sources:     req.Sources,
	})
	if errors.Is(err, apperrors.ErrDuplicateSelection) {
		_ = ErrorResponse(w, http.StatusBadRequest, "This gift has already been selected for this recipient")
		return
	}
	if err != nil {
		h.logger.Error("Gift selection failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to select gift")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"gift":    record,
	})
}

// GetSelections handles GET /api/gift/select.
func (h *GiftHandler) GetSelections(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	filter := &services.SelectionFilter{
		Mine:        query.Get("filter") == "my-selections",
		RecipientID: query.Get("recipientId"),
		GiverID:     query.Get("giverId"),
	}

	list, err := h.gifts.ListSelections(r.Context(), callerIdentity(r).ID, filter)
	if err != nil {
		h.logger.Error("Gift listing failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to get gifts")
		return
	}

	_ = WriteJSON(w, http.StatusOK, list)
}

type approvalRequest struct {
	GiftID       string             `json:"giftId"`
	GiftName     string             `json:"giftName"`
	GiftCategory string             `json:"giftCategory"`
	GiftPrice    *float64           `json:"giftPrice,omitempty"`
	PriceRange   *models.PriceRange `json:"giftPriceRange,omitempty"`
	SelectedFor  models.Identity    `json:"selectedFor"`
	Occasion     string             `json:"occasion,omitempty"`
	Notes        string             `json:"notes,omitempty"`
}

// SubmitForApproval handles POST /api/gift/approve.
func (h *GiftHandler) SubmitForApproval(w http.ResponseWriter, r *http.Request) {
	var req approvalRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.GiftID == "" || req.GiftName == "" || req.SelectedFor.ID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Gift and recipient are required")
		return
	}

	record, err := h.gifts.SubmitForApproval(r.Context(), &models.GiftSelectionInput{
		Gift: models.GiftDescriptor{
			ID:         req.GiftID,
			Name:       req.GiftName,
			Category:   req.GiftCategory,
			Price:      req.GiftPrice,
			PriceRange: req.PriceRange,
		},
		SelectedBy:  callerIdentity(r),
		SelectedFor: req.SelectedFor,
		Occasion:    req.Occasion,
		Notes:       req.Notes,
	})
	if err != nil {
		h.logger.Error("Approval submission failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to send gift for approval")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"giftId":  record.ID,
		"status":  record.Status,
		"message": req.GiftName + " has been sent for approval",
	})
}

type decisionRequest struct {
	GiftID string            `json:"giftId"`
	Status models.GiftStatus `json:"status"`
}

// DecideApproval handles PUT /api/gift/approve.
func (h *GiftHandler) DecideApproval(w http.ResponseWriter, r *http.Request) {
	var req decisionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.GiftID == "" || req.Status == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Gift ID and status are required")
		return
	}

	record, err := h.gifts.Decide(r.Context(), req.GiftID, req.Status, callerIdentity(r).ID)
	if errors.Is(err, apperrors.ErrInvalidStatus) {
		_ = ErrorResponse(w, http.StatusBadRequest, "Status must be Accepted or Denied")
		return
	}
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "Gift not found")
		return
	}
	if err != nil {
		h.logger.Error("Approval decision failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to update gift status")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"gift":    record,
		"message": "Gift has been " + lowerStatus(req.Status),
	})
}

// ListGifts handles GET /api/gift/list.
func (h *GiftHandler) ListGifts(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := intQuery(query.Get("page"), 1)
	limit := intQuery(query.Get("limit"), 20)

	list, err := h.gifts.List(r.Context(), &models.GiftSearchCriteria{
		GiverID:     query.Get("giverId"),
		RecipientID: query.Get("recipientId"),
		StartDate:   query.Get("startDate"),
		EndDate:     query.Get("endDate"),
		Status:      models.GiftStatus(query.Get("status")),
	}, page, limit)
	if err != nil {
		h.logger.Error("Gift search failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to fetch gifts")
		return
	}

	_ = WriteJSON(w, http.StatusOK, list)
}

// Recommend handles POST /api/gift/recommendations.
func (h *GiftHandler) Recommend(w http.ResponseWriter, r *http.Request) {
	var req services.RecommendationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.RecipientID == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Recipient ID is required")
		return
	}

	result, err := h.recommendations.Recommend(r.Context(), &req)
	if errors.Is(err, apperrors.ErrNotFound) {
		_ = ErrorResponse(w, http.StatusNotFound, "Recipient not found")
		return
	}
	if err != nil {
		h.logger.Error("Recommendations failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to get recommendations")
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

// Chat handles POST /api/gift/chat.
func (h *GiftHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req services.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if req.Message == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Message is required")
		return
	}

	result, err := h.chat.Chat(r.Context(), &req)
	if err != nil {
		h.logger.Error("Chat request failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to process chat request")
		return
	}

	_ = WriteJSON(w, http.StatusOK, result)
}

// callerIdentity reads the authenticated identity from the request
// context. The display name falls back to the subject when the token
// carries no name claim.
func callerIdentity(r *http.Request) models.Identity {
	claims := auth.ClaimsFromContext(r.Context())
	if claims == nil {
		return models.Identity{}
	}
	name := claims.Name
	if name == "" {
		name = claims.Subject
	}
	return models.Identity{ID: claims.Subject, Name: name}
}

func intQuery(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}

func lowerStatus(status models.GiftStatus) string {
	switch status {
	case models.GiftStatusAccepted:
		return "accepted"
	case models.GiftStatusDenied:
		return "denied"
	default:
		return string(status)
	}
}
