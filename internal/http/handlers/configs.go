package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/247convo/convo-backend/internal/tenants"
	"github.com/247convo/convo-backend/pkg/logging"
)

// ConfigHandler serves GET /configs/{clientID}.json, the widget's bootstrap
// document. The raw stored bytes are passed through untouched.
type ConfigHandler struct {
	store  tenants.Store
	logger *logging.Logger
}

func NewConfigHandler(store tenants.Store, logger *logging.Logger) *ConfigHandler {
	if store == nil {
		panic("handlers: tenant store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &ConfigHandler{store: store, logger: logger}
}

func (h *ConfigHandler) Get(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	raw, err := h.store.Raw(r.Context(), clientID)
	if err != nil {
		if errors.Is(err, tenants.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Not found")
			return
		}
		h.logger.Error("config read failed", "client_id", clientID, "error", err)
		writeError(w, http.StatusInternalServerError, "Config unavailable")
		return
	}
	// The widget is embedded on arbitrary customer sites.
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(raw)
}
