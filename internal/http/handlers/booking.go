package handlers

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/247convo/convo-backend/internal/scheduling"
	"github.com/247convo/convo-backend/pkg/logging"
)

const defaultPurpose = "Appointment via 247Convo"

type booker interface {
	Book(ctx context.Context, req scheduling.BookingRequest) (scheduling.Confirmation, error)
	Availability(ctx context.Context, clientID, date string) ([]time.Time, error)
	Busy(ctx context.Context, clientID, date string) ([]scheduling.Interval, error)
}

// BookingHandler serves POST /book plus the availability endpoints.
type BookingHandler struct {
	orchestrator booker
	apiToken     string
	logger       *logging.Logger
}

func NewBookingHandler(orchestrator booker, apiToken string, logger *logging.Logger) *BookingHandler {
	if orchestrator == nil {
		panic("handlers: scheduling orchestrator required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &BookingHandler{orchestrator: orchestrator, apiToken: apiToken, logger: logger}
}

type bookRequest struct {
	Token    string `json:"token"`
	ClientID string `json:"client_id"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	Datetime string `json:"datetime"`
	Timezone string `json:"timezone"`
	Purpose  string `json:"purpose"`
	Provider string `json:"bookingProvider"`
}

// Book validates and creates one appointment. Conflicts come back as 409
// with the reason and, when found, a suggested alternative start.
func (h *BookingHandler) Book(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Token != h.apiToken {
		writeError(w, http.StatusUnauthorized, "Bad token")
		return
	}
	clientID := strings.TrimSpace(req.ClientID)
	if clientID == "" || req.Name == "" || req.Email == "" || req.Datetime == "" {
		writeError(w, http.StatusBadRequest, "Missing booking parameters")
		return
	}
	start, err := time.Parse(time.RFC3339, req.Datetime)
	if err != nil {
		writeError(w, http.StatusBadRequest, "datetime must be ISO 8601")
		return
	}
	if req.Timezone == "" {
		req.Timezone = "UTC"
	}
	purpose := req.Purpose
	if purpose == "" {
		purpose = defaultPurpose
	}

	conf, err := h.orchestrator.Book(r.Context(), scheduling.BookingRequest{
		ClientID: clientID,
		Name:     req.Name,
		Email:    req.Email,
		Purpose:  purpose,
		Start:    start,
		Timezone: req.Timezone,
		Provider: req.Provider,
	})
	if err != nil {
		var conflict *scheduling.Conflict
		if errors.As(err, &conflict) {
			writeJSON(w, http.StatusConflict, conflict)
			return
		}
		h.logger.Error("booking failed", "client_id", clientID, "error", err)
		writeError(w, http.StatusBadGateway, "Booking failed")
		return
	}
	writeJSON(w, http.StatusOK, conf)
}

// Availability lists open slots for ?date=YYYY-MM-DD as ISO 8601 strings.
func (h *BookingHandler) Availability(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("token") != h.apiToken {
		writeError(w, http.StatusUnauthorized, "Bad token")
		return
	}
	clientID := chi.URLParam(r, "clientID")
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Missing date")
		return
	}
	slots, err := h.orchestrator.Availability(r.Context(), clientID, date)
	if err != nil {
		h.logger.Error("availability lookup failed", "client_id", clientID, "error", err)
		writeError(w, http.StatusBadGateway, "Availability lookup failed")
		return
	}
	out := make([]string, len(slots))
	for i, s := range slots {
		out[i] = s.Format(time.RFC3339)
	}
	writeJSON(w, http.StatusOK, map[string][]string{"slots": out})
}

type busySpan struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Busy exposes the provider's raw busy intervals for a day.
func (h *BookingHandler) Busy(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	date := r.URL.Query().Get("date")
	if date == "" {
		writeError(w, http.StatusBadRequest, "Missing date")
		return
	}
	busy, err := h.orchestrator.Busy(r.Context(), clientID, date)
	if err != nil {
		h.logger.Error("busy lookup failed", "client_id", clientID, "error", err)
		writeError(w, http.StatusBadGateway, "Busy lookup failed")
		return
	}
	out := make([]busySpan, len(busy))
	for i, b := range busy {
		out[i] = busySpan{Start: b.Start.Format(time.RFC3339), End: b.End.Format(time.RFC3339)}
	}
	writeJSON(w, http.StatusOK, map[string][]busySpan{"busy": out})
}
