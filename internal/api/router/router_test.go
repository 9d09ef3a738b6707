package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/247convo/convo-backend/internal/chat"
	"github.com/247convo/convo-backend/internal/http/handlers"
	"github.com/247convo/convo-backend/internal/tenants"
)

type nopStore struct{}

func (nopStore) Get(context.Context, string) (tenants.Config, error) { return tenants.Config{}, nil }
func (nopStore) Raw(context.Context, string) ([]byte, error) {
	return nil, tenants.ErrNotFound
}

type cannedAnswerer struct{}

func (cannedAnswerer) Answer(context.Context, chat.AnswerRequest) (chat.AnswerResult, error) {
	return chat.AnswerResult{Answer: "hello there", Stage: "greeting"}, nil
}

func testRouter() http.Handler {
	return New(&Config{
		ChatHandler:     handlers.NewChatHandler(cannedAnswerer{}, nopStore{}, "secret", nil, nil),
		ConfigHandler:   handlers.NewConfigHandler(nopStore{}, nil),
		AdminHandler:    handlers.NewAdminHandler(nopStore{}, nil),
		AdminAuthSecret: "admin-secret",
		RateLimit:       30,
		RatePeriod:      time.Minute,
	})
}

func TestHealthEndpoint(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}

func TestChatRouteWired(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat",
		strings.NewReader(`{"token":"secret","client_id":"acme","question":"hi"}`))
	testRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "hello there")
}

func TestChatRateLimited(t *testing.T) {
	router := New(&Config{
		ChatHandler: handlers.NewChatHandler(cannedAnswerer{}, nopStore{}, "secret", nil, nil),
		RateLimit:   1,
		RatePeriod:  time.Minute,
	})
	body := `{"token":"secret","client_id":"acme","question":"hi"}`

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("X-Real-Ip", "5.5.5.5")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	req.Header.Set("X-Real-Ip", "5.5.5.5")
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}

func TestAdminRoutesRequireJWT(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/status/acme", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/debug/env?client_id=acme", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestUnknownConfig404(t *testing.T) {
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/configs/ghost.json", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminRoutesReachableWithJWT(t *testing.T) {
	claims := jwt.RegisteredClaims{
		Subject:   "ops",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("admin-secret"))
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/status/acme", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "acme")

	req = httptest.NewRequest(http.MethodGet, "/debug/env?client_id=acme", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	testRouter().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
