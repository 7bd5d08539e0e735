package handlers

import (
	"encoding/json"
	"net/http"

	"go.uber.org/zap"

	"github.com/onbloom-hq/onbloom-engine/pkg/auth"
	"github.com/onbloom-hq/onbloom-engine/pkg/email"
	"github.com/onbloom-hq/onbloom-engine/pkg/jsonutil"
)

// EmailHandler serves the transactional email endpoint.
type EmailHandler struct {
	sender email.Sender
	authMW *auth.Middleware
	logger *zap.Logger
}

// NewEmailHandler creates an email handler.
func NewEmailHandler(sender email.Sender, authMW *auth.Middleware, logger *zap.Logger) *EmailHandler {
	return &EmailHandler{
		sender: sender,
		authMW: authMW,
		logger: logger,
	}
}

// RegisterRoutes registers the email routes on the given mux.
func (h *EmailHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/send-email", h.authMW.RequireAuth(h.Send))
}

// sendEmailRequest accepts "to" as a single address or a list.
type sendEmailRequest struct {
	To      json.RawMessage `json:"to"`
	Subject string          `json:"subject"`
	HTML    string          `json:"html,omitempty"`
	Text    string          `json:"text,omitempty"`
}

// Send handles POST /api/send-email.
func (h *EmailHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req sendEmailRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		_ = ErrorResponse(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	to := recipientList(req.To)
	if len(to) == 0 || req.Subject == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Recipient and subject are required")
		return
	}
	if req.HTML == "" && req.Text == "" {
		_ = ErrorResponse(w, http.StatusBadRequest, "Either html or text content is required")
		return
	}

	messageID, err := h.sender.Send(r.Context(), &email.Message{
		To:      to,
		Subject: req.Subject,
		HTML:    req.HTML,
		Text:    req.Text,
	})
	if err != nil {
		h.logger.Error("Email delivery failed", zap.Error(err))
		_ = ErrorResponse(w, http.StatusInternalServerError, "Failed to send email")
		return
	}

	_ = WriteJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    map[string]string{"id": messageID},
	})
}

// recipientList normalizes the "to" field, which clients send as either
// one address or an array of addresses.
func recipientList(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return nil
	}

	var single string
	if err := json.Unmarshal(raw, &single); err == nil {
		if single == "" {
			return nil
		}
		return []string{single}
	}

	items := jsonutil.FlexibleList(raw)
	out := make([]string, 0, len(items))
	for _, item := range items {
		var addr string
		if err := json.Unmarshal(item, &addr); err == nil && addr != "" {
			out = append(out, addr)
		}
	}
	return out
}
