// Package handler はHTTPハンドラーを提供する。
package handler

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/tocook/internal/auth"
	"github.com/hitoshi/tocook/internal/middleware"
	"github.com/hitoshi/tocook/internal/model"
	"github.com/hitoshi/tocook/internal/user"
)

// AuthServiceInterface は認証ハンドラーが必要とするトークン発行インターフェース。
type AuthServiceInterface interface {
	Login(ctx context.Context, username, password string) (*auth.Token, error)
}

// UserServiceInterface はユーザー登録インターフェース。
type UserServiceInterface interface {
	CreateUser(ctx context.Context, req user.CreateUserRequest) error
}

// AuthHandlerConfig は認証ハンドラーの設定。
type AuthHandlerConfig struct {
	CookieDomain string
	CookieSecure bool
	TokenTTL     time.Duration // アクセストークンCookieの有効期間
}

// AuthHandler はユーザー登録とトークン発行のHTTPハンドラー。
type AuthHandler struct {
	auth   AuthServiceInterface
	users  UserServiceInterface
	config AuthHandlerConfig
}

// NewAuthHandler はAuthHandlerを生成する。
func NewAuthHandler(authService AuthServiceInterface, users UserServiceInterface, config AuthHandlerConfig) *AuthHandler {
	return &AuthHandler{
		auth:   authService,
		users:  users,
		config: config,
	}
}

// Register はユーザー登録を処理する。
// POST /auth/
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req user.CreateUserRequest
	if err := decodeJSON(w, r, &req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	if err := h.users.CreateUser(r.Context(), req); err != nil {
		handleServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusCreated)
}

// Token はフォーム送信された資格情報を検証し、アクセストークンを発行する。
// POST /auth/token
// レスポンスボディでトークンを返し、同じ値をHttpOnly Cookieにも設定する。
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)
	if err := r.ParseForm(); err != nil {
		handleServiceError(w, r, model.NewInvalidRequestError("body is not a valid form"))
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")

	var fields []model.FieldError
	if username == "" {
		fields = append(fields, model.FieldError{Field: "username", Message: "field required"})
	}
	if password == "" {
		fields = append(fields, model.FieldError{Field: "password", Message: "field required"})
	}
	if len(fields) > 0 {
		handleServiceError(w, r, model.NewValidationError(fields))
		return
	}

	token, err := h.auth.Login(r.Context(), username, password)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    token.AccessToken,
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   int(h.config.TokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})

	writeJSON(w, http.StatusOK, token)
}

// Logout はアクセストークンCookieを削除する。
// POST /auth/logout
// トークン自体はステートレスのため、有効期限まで失効しない。
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, &http.Cookie{
		Name:     middleware.AccessTokenCookieName,
		Value:    "",
		Path:     "/",
		Domain:   h.config.CookieDomain,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}
