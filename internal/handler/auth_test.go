package handler

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/callplan/callplan/internal/security"
)

func newAuthHandler() *AuthHandler {
	credentials := security.NewCredentialStore("admin", "s3cret")
	tokens := security.NewTokenManager("test-secret", "callplan", time.Hour)
	return NewAuthHandler(credentials, tokens)
}

func postLogin(t *testing.T, h *AuthHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(body))
	req.RemoteAddr = "10.0.0.1:54321"
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	return rec
}

func TestLoginSuccess(t *testing.T) {
	h := newAuthHandler()
	rec := postLogin(t, h, `{"username":"admin","password":"s3cret"}`)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Equal(t, 3600, resp.ExpiresIn)

	// 签发的令牌应当能通过同一管理器的验证
	claims, err := security.NewTokenManager("test-secret", "callplan", time.Hour).Validate(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
}

func TestLoginWrongPassword(t *testing.T) {
	h := newAuthHandler()
	rec := postLogin(t, h, `{"username":"admin","password":"wrong"}`)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLoginMissingFields(t *testing.T) {
	h := newAuthHandler()
	rec := postLogin(t, h, `{"username":"","password":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "VALIDATION_FAILED")
}

func TestLoginMethodNotAllowed(t *testing.T) {
	h := newAuthHandler()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/login", nil)
	rec := httptest.NewRecorder()
	h.Login(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestLoginRateLimited(t *testing.T) {
	h := newAuthHandler()

	var last *httptest.ResponseRecorder
	for i := 0; i < 11; i++ {
		last = postLogin(t, h, `{"username":"admin","password":"wrong"}`)
	}
	assert.Equal(t, http.StatusTooManyRequests, last.Code)
}
