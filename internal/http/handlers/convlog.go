package handlers

import (
	"context"
	"net/http"

	"github.com/247convo/convo-backend/internal/convlog"
	"github.com/247convo/convo-backend/pkg/logging"
)

type conversationStore interface {
	SaveSummary(ctx context.Context, sum convlog.Summary) error
	SaveRating(ctx context.Context, rating convlog.Rating) error
}

// ConvlogHandler serves POST /summary and POST /rating.
type ConvlogHandler struct {
	store    conversationStore
	apiToken string
	logger   *logging.Logger
}

func NewConvlogHandler(store conversationStore, apiToken string, logger *logging.Logger) *ConvlogHandler {
	if store == nil {
		panic("handlers: conversation log store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConvlogHandler{store: store, apiToken: apiToken, logger: logger}
}

type summaryRequest struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	ChatLog  string `json:"chat_log"`
}

// Summary persists a finished conversation transcript.
func (h *ConvlogHandler) Summary(w http.ResponseWriter, r *http.Request) {
	var req summaryRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token != h.apiToken {
		writeError(w, http.StatusUnauthorized, "Bad token")
		return
	}
	if req.ClientID == "" || req.Name == "" || req.Email == "" || req.ChatLog == "" {
		writeError(w, http.StatusBadRequest, "Missing fields")
		return
	}
	err := h.store.SaveSummary(r.Context(), convlog.Summary{
		ClientID: req.ClientID,
		Name:     req.Name,
		Email:    req.Email,
		ChatLog:  req.ChatLog,
	})
	if err != nil {
		h.logger.Error("summary save failed", "client_id", req.ClientID, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not save summary")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "saved"})
}

type ratingRequest struct {
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Score    *int   `json:"score"`
	Context  []any  `json:"context"`
}

// Rating persists end-of-chat feedback. The endpoint is deliberately
// unauthenticated: it fires after the widget session token is gone.
func (h *ConvlogHandler) Rating(w http.ResponseWriter, r *http.Request) {
	var req ratingRequest
	if !decodeBody(w, r, &req) {
		return
	}
	err := h.store.SaveRating(r.Context(), convlog.Rating{
		ClientID: req.ClientID,
		Name:     req.Name,
		Email:    req.Email,
		Score:    req.Score,
		Context:  req.Context,
	})
	if err != nil {
		h.logger.Error("rating save failed", "client_id", req.ClientID, "error", err)
		writeError(w, http.StatusInternalServerError, "Could not save rating")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
