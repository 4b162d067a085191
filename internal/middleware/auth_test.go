package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/hitoshi/tocook/internal/model"
)

type mockTokenDecoder struct {
	decodeFn func(token string) (*model.Identity, error)
	tokens   []string
}

func (m *mockTokenDecoder) DecodeToken(token string) (*model.Identity, error) {
	m.tokens = append(m.tokens, token)
	return m.decodeFn(token)
}

func acceptToken(valid string, identity model.Identity) *mockTokenDecoder {
	return &mockTokenDecoder{
		decodeFn: func(token string) (*model.Identity, error) {
			if token != valid {
				return nil, model.NewUnauthorizedError()
			}
			id := identity
			return &id, nil
		},
	}
}

var testIdentity = model.Identity{Username: "alice", UserID: 7, Role: "user"}

func TestAuthMiddleware_HeaderAndCookieDecodeIdentically(t *testing.T) {
	tests := []struct {
		name       string
		setup      func(r *http.Request)
		fromCookie bool
	}{
		{
			name:  "authorization header",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "Bearer tok-123") },
		},
		{
			name:  "lowercase scheme",
			setup: func(r *http.Request) { r.Header.Set("Authorization", "bearer tok-123") },
		},
		{
			name:       "cookie",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: "tok-123"}) },
			fromCookie: true,
		},
		{
			name:       "cookie with bearer prefix",
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: "Bearer tok-123"}) },
			fromCookie: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decoder := acceptToken("tok-123", testIdentity)
			var got model.Identity
			var viaCookie bool
			handler := NewAuthMiddleware(decoder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got, _ = IdentityFromContext(r.Context())
				viaCookie = authenticatedByCookie(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/todo/", nil)
			tt.setup(req)
			w := httptest.NewRecorder()
			handler.ServeHTTP(w, req)

			if w.Code != http.StatusOK {
				t.Fatalf("status = %d, want 200", w.Code)
			}
			if got != testIdentity {
				t.Errorf("identity = %+v, want %+v", got, testIdentity)
			}
			if viaCookie != tt.fromCookie {
				t.Errorf("cookie auth = %v, want %v", viaCookie, tt.fromCookie)
			}
		})
	}
}

func TestAuthMiddleware_MissingToken_Returns401(t *testing.T) {
	decoder := acceptToken("tok", testIdentity)
	called := false
	handler := NewAuthMiddleware(decoder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/todo/", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
	if w.Header().Get("WWW-Authenticate") != "Bearer" {
		t.Errorf("WWW-Authenticate = %q, want Bearer", w.Header().Get("WWW-Authenticate"))
	}
	if called {
		t.Error("next handler must not be called")
	}
	if len(decoder.tokens) != 0 {
		t.Error("decoder must not be called without a token")
	}
}

func TestAuthMiddleware_NonBearerScheme_Returns401(t *testing.T) {
	decoder := acceptToken("tok", testIdentity)
	handler := NewAuthMiddleware(decoder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/todo/", nil)
	req.Header.Set("Authorization", "Basic dXNlcjpwYXNz")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestAuthMiddleware_ExpiredToken_ReturnsTokenExpiredCode(t *testing.T) {
	decoder := &mockTokenDecoder{decodeFn: func(string) (*model.Identity, error) {
		return nil, model.NewTokenExpiredError()
	}}
	handler := NewAuthMiddleware(decoder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/todo/", nil)
	req.Header.Set("Authorization", "Bearer old")
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", w.Code)
	}
	var body ErrorResponseBody
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body.Code != model.ErrCodeTokenExpired {
		t.Errorf("code = %q, want %q", body.Code, model.ErrCodeTokenExpired)
	}
}

func TestAuthMiddleware_HeaderTakesPrecedenceOverCookie(t *testing.T) {
	decoder := acceptToken("header-token", testIdentity)
	handler := NewAuthMiddleware(decoder)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/todo/", nil)
	req.Header.Set("Authorization", "Bearer header-token")
	req.AddCookie(&http.Cookie{Name: AccessTokenCookieName, Value: "cookie-token"})
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
	if len(decoder.tokens) != 1 || decoder.tokens[0] != "header-token" {
		t.Errorf("decoded tokens = %v", decoder.tokens)
	}
}

func TestIdentityFromContext_Missing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := IdentityFromContext(req.Context()); ok {
		t.Error("expected no identity in a fresh context")
	}
	ctx := ContextWithIdentity(req.Context(), model.Identity{Username: "ghost"})
	if _, ok := IdentityFromContext(ctx); ok {
		t.Error("identity without user id must not be accepted")
	}
}
