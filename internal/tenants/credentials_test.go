package tenants

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKey(t *testing.T) {
	assert.Equal(t, "ACUITY_API_KEY_THE_RICH_JOE", EnvKey("ACUITY_API_KEY", "the-rich-joe"))
	assert.Equal(t, "GOOGLE_OAUTH_TOKEN_ACME", EnvKey("GOOGLE_OAUTH_TOKEN", " acme "))
}

func TestGoogleTokenFor(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_TOKEN_ACME", `{"access_token":"at","refresh_token":"rt","calendar_id":"cal@example.com"}`)

	tok, err := GoogleTokenFor("acme")
	require.NoError(t, err)
	assert.Equal(t, "at", tok.AccessToken)
	assert.Equal(t, "cal@example.com", tok.CalendarID)
}

func TestGoogleTokenForDefaultsCalendar(t *testing.T) {
	t.Setenv("GOOGLE_OAUTH_TOKEN_ACME", `{"access_token":"at","refresh_token":"rt"}`)

	tok, err := GoogleTokenFor("acme")
	require.NoError(t, err)
	assert.Equal(t, "primary", tok.CalendarID)
}

func TestGoogleTokenForMissing(t *testing.T) {
	_, err := GoogleTokenFor("nobody-here")
	assert.Error(t, err)
}

func TestAcuityFor(t *testing.T) {
	t.Setenv("ACUITY_USER_ID_ACME", "u")
	t.Setenv("ACUITY_API_KEY_ACME", "k")
	t.Setenv("ACUITY_SERVICE_ID_ACME", "123")

	creds, err := AcuityFor("acme")
	require.NoError(t, err)
	assert.Equal(t, AcuityCredentials{UserID: "u", APIKey: "k", ServiceID: "123"}, creds)
}

func TestAcuityForIncomplete(t *testing.T) {
	t.Setenv("ACUITY_USER_ID_ACME", "u")
	_, err := AcuityFor("acme")
	assert.Error(t, err)
}

func TestOpenAIKeyFor(t *testing.T) {
	t.Setenv("OPENAI_API_KEY_ACME", "per-client")
	assert.Equal(t, "per-client", OpenAIKeyFor("acme", "shared"))
	assert.Equal(t, "shared", OpenAIKeyFor("other", "shared"))
}
