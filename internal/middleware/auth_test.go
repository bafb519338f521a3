package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/callplan/callplan/internal/security"
)

func newChain(t *testing.T) (http.Handler, *security.TokenManager) {
	t.Helper()
	tokens := security.NewTokenManager("test-secret", "callplan", time.Hour)

	var gotUser string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser, _ = UserFromContext(r.Context())
		w.Header().Set("X-User", gotUser)
		w.WriteHeader(http.StatusOK)
	})

	auth := AuthMiddleware(&AuthConfig{
		TokenManager: tokens,
		SkipPaths:    []string{"/health", "/api/v1/auth/login"},
	})
	return auth(inner), tokens
}

func TestAuthMiddlewareSkipPath(t *testing.T) {
	h, _ := newChain(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("skip path should bypass auth, got status %d", rec.Code)
	}
}

func TestAuthMiddlewareMissingToken(t *testing.T) {
	h, _ := newChain(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/zones", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without token, got %d", rec.Code)
	}
}

func TestAuthMiddlewareInvalidToken(t *testing.T) {
	h, _ := newChain(t)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/zones", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad token, got %d", rec.Code)
	}
}

func TestAuthMiddlewareValidToken(t *testing.T) {
	h, tokens := newChain(t)

	token, err := tokens.Issue("admin", "admin")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/zones", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 with valid token, got %d", rec.Code)
	}
	if got := rec.Header().Get("X-User"); got != "admin" {
		t.Errorf("context user = %q, want admin", got)
	}
}
