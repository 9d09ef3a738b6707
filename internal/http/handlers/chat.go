package handlers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/247convo/convo-backend/internal/chat"
	"github.com/247convo/convo-backend/internal/observability/metrics"
	"github.com/247convo/convo-backend/internal/tenancy"
	"github.com/247convo/convo-backend/internal/tenants"
	"github.com/247convo/convo-backend/pkg/logging"
)

const (
	emptyQuestionAnswer = "Please ask a question 🙂"
	chatErrorAnswer     = "Error occurred"
)

type answerer interface {
	Answer(ctx context.Context, req chat.AnswerRequest) (chat.AnswerResult, error)
}

// ChatHandler serves POST /chat for the widget.
type ChatHandler struct {
	pipeline answerer
	store    tenants.Store
	apiToken string
	logger   *logging.Logger
	metrics  *metrics.ChatMetrics
}

// NewChatHandler wires the conversation pipeline behind the widget API.
func NewChatHandler(pipeline answerer, store tenants.Store, apiToken string, logger *logging.Logger, m *metrics.ChatMetrics) *ChatHandler {
	if pipeline == nil || store == nil {
		panic("handlers: chat pipeline and tenant store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ChatHandler{pipeline: pipeline, store: store, apiToken: apiToken, logger: logger, metrics: m}
}

type chatRequest struct {
	Token    string             `json:"token"`
	ClientID string             `json:"client_id"`
	Question string             `json:"question"`
	History  []chat.Turn        `json:"history"`
	Booking  *chat.BookingState `json:"booking"`
}

type chatResponse struct {
	Answer  string             `json:"answer"`
	Booking *chat.BookingState `json:"booking,omitempty"`
}

// Handle answers one widget question. Pipeline failures degrade to a fixed
// error answer with status 200 so the widget always renders something.
func (h *ChatHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token != h.apiToken {
		writeError(w, http.StatusUnauthorized, "Bad token")
		return
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "Missing client_id")
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusOK, chatResponse{Answer: emptyQuestionAnswer})
		return
	}

	ctx := tenancy.WithClientID(r.Context(), clientID)
	cfg, err := h.store.Get(ctx, clientID)
	if err != nil {
		h.logger.Warn("tenant config lookup failed", "client_id", clientID, "error", err)
		cfg = tenants.Config{}
	}

	start := time.Now()
	result, err := h.pipeline.Answer(ctx, chat.AnswerRequest{
		ClientID: clientID,
		Question: req.Question,
		Config:   cfg,
		History:  req.History,
		Booking:  req.Booking,
	})
	if err != nil {
		h.metrics.ObservePipelineError()
		h.logger.Error("chat pipeline failed", "client_id", clientID, "error", err)
		writeJSON(w, http.StatusOK, chatResponse{Answer: chatErrorAnswer})
		return
	}
	h.metrics.ObserveAnswer(result.Stage)
	h.metrics.ObserveAnswerLatency(result.Stage, time.Since(start).Seconds())

	resp := chatResponse{Answer: result.Answer}
	if result.BookingReset {
		resp.Booking = result.Booking
	}
	writeJSON(w, http.StatusOK, resp)
}
