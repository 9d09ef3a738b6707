package handlers

import (
	"net/http"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/247convo/convo-backend/internal/tenants"
	"github.com/247convo/convo-backend/pkg/logging"
)

// AdminHandler exposes per-tenant provider diagnostics. Routes are mounted
// behind the admin JWT middleware.
type AdminHandler struct {
	store  tenants.Store
	logger *logging.Logger
}

func NewAdminHandler(store tenants.Store, logger *logging.Logger) *AdminHandler {
	if store == nil {
		panic("handlers: tenant store required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &AdminHandler{store: store, logger: logger}
}

type statusResponse struct {
	ClientID           string                   `json:"client_id"`
	ConfigProvider     string                   `json:"config_provider"`
	AvailableProviders tenants.ProviderPresence `json:"available_providers"`
}

// Status reports which providers a tenant can actually use: the configured
// default plus which credential sets are present.
func (h *AdminHandler) Status(w http.ResponseWriter, r *http.Request) {
	clientID := chi.URLParam(r, "clientID")
	cfg, err := h.store.Get(r.Context(), clientID)
	if err != nil {
		h.logger.Warn("status config lookup failed", "client_id", clientID, "error", err)
	}
	writeJSON(w, http.StatusOK, statusResponse{
		ClientID:           clientID,
		ConfigProvider:     cfg.BookingProvider,
		AvailableProviders: tenants.PresenceFor(clientID),
	})
}

// Env reports presence (never values) of each credential env var for a
// client, for support debugging of misnamed variables.
func (h *AdminHandler) Env(w http.ResponseWriter, r *http.Request) {
	clientID := r.URL.Query().Get("client_id")
	if clientID == "" {
		writeError(w, http.StatusBadRequest, "Missing client_id")
		return
	}
	keys := []string{
		tenants.EnvKey("GOOGLE_OAUTH_TOKEN", clientID),
		tenants.EnvKey("ACUITY_USER_ID", clientID),
		tenants.EnvKey("ACUITY_API_KEY", clientID),
		tenants.EnvKey("ACUITY_SERVICE_ID", clientID),
		tenants.EnvKey("OPENAI_API_KEY", clientID),
	}
	status := make(map[string]bool, len(keys))
	for _, k := range keys {
		status[k] = os.Getenv(k) != ""
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"client_id":  clientID,
		"env_status": status,
	})
}
