package tenants

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// Provider credentials follow the original environment convention:
// <BASE>_<CLIENT>, where <CLIENT> is the upper-cased client id with dashes
// replaced by underscores.

// EnvKey builds the per-client environment variable name.
func EnvKey(base, clientID string) string {
	return base + "_" + strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(clientID), "-", "_"))
}

// GoogleToken is the stored Google OAuth grant for one tenant.
type GoogleToken struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	CalendarID   string `json:"calendar_id"`
}

// GoogleTokenFor reads GOOGLE_OAUTH_TOKEN_<CLIENT> from the environment.
func GoogleTokenFor(clientID string) (GoogleToken, error) {
	raw := os.Getenv(EnvKey("GOOGLE_OAUTH_TOKEN", clientID))
	if raw == "" {
		return GoogleToken{}, fmt.Errorf("tenants: missing Google OAuth token for client %q", clientID)
	}
	var tok GoogleToken
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return GoogleToken{}, fmt.Errorf("tenants: invalid Google OAuth token for client %q: %w", clientID, err)
	}
	if tok.CalendarID == "" {
		tok.CalendarID = "primary"
	}
	return tok, nil
}

// AcuityCredentials identify one tenant's Acuity account and appointment type.
type AcuityCredentials struct {
	UserID    string
	APIKey    string
	ServiceID string
}

// AcuityFor reads the ACUITY_* variables for the client.
func AcuityFor(clientID string) (AcuityCredentials, error) {
	creds := AcuityCredentials{
		UserID:    os.Getenv(EnvKey("ACUITY_USER_ID", clientID)),
		APIKey:    os.Getenv(EnvKey("ACUITY_API_KEY", clientID)),
		ServiceID: os.Getenv(EnvKey("ACUITY_SERVICE_ID", clientID)),
	}
	if creds.UserID == "" || creds.APIKey == "" || creds.ServiceID == "" {
		return AcuityCredentials{}, fmt.Errorf("tenants: missing Acuity credentials for client %q", clientID)
	}
	return creds, nil
}

// OpenAIKeyFor returns the per-client OpenAI key when set, else the shared one.
func OpenAIKeyFor(clientID, shared string) string {
	if key := os.Getenv(EnvKey("OPENAI_API_KEY", clientID)); key != "" {
		return key
	}
	return shared
}

// ProviderPresence reports which scheduling providers have credentials
// configured for the client. Used by the admin status endpoint.
type ProviderPresence struct {
	Google bool `json:"google"`
	Acuity bool `json:"acuity"`
}

// PresenceFor checks credential env vars without exposing their values.
func PresenceFor(clientID string) ProviderPresence {
	_, googleErr := GoogleTokenFor(clientID)
	_, acuityErr := AcuityFor(clientID)
	return ProviderPresence{
		Google: googleErr == nil,
		Acuity: acuityErr == nil,
	}
}
