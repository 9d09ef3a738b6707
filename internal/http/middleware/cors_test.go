package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

const widgetOrigin = "https://widget.247convo.com"

func corsRequest(t *testing.T, mw func(http.Handler) http.Handler, method, origin string, preflight bool) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	req := httptest.NewRequest(method, "/chat", nil)
	if origin != "" {
		req.Header.Set("Origin", origin)
	}
	if preflight {
		req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	}
	rec := httptest.NewRecorder()

	reached := false
	mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reached = true
		w.WriteHeader(http.StatusOK)
	})).ServeHTTP(rec, req)
	return rec, reached
}

func TestCORSAllowsListedOrigin(t *testing.T) {
	mw := CORS([]string{widgetOrigin})

	rec, reached := corsRequest(t, mw, http.MethodPost, widgetOrigin, false)

	assert.True(t, reached)
	assert.Equal(t, widgetOrigin, rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Headers"), "Authorization")
	assert.Contains(t, rec.Header().Get("Access-Control-Allow-Methods"), http.MethodPost)
}

func TestCORSIgnoresUnknownOrigin(t *testing.T) {
	mw := CORS([]string{widgetOrigin})

	rec, reached := corsRequest(t, mw, http.MethodPost, "https://evil.example", false)

	assert.True(t, reached, "unknown origins still reach the handler, just without CORS headers")
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcardEchoesOrigin(t *testing.T) {
	mw := CORS([]string{"*"})

	rec, _ := corsRequest(t, mw, http.MethodPost, "https://customer-site.example", false)

	assert.Equal(t, "https://customer-site.example", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	mw := CORS([]string{widgetOrigin})

	rec, reached := corsRequest(t, mw, http.MethodOptions, widgetOrigin, true)

	assert.False(t, reached, "preflight must not reach the handler")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
