// Package middleware はHTTPミドルウェアを提供する。
package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/hitoshi/tocook/internal/model"
)

// AccessTokenCookieName はアクセストークンを保持するCookieの名前。
const AccessTokenCookieName = "access_token"

// contextKey はコンテキストに値を格納するための型安全なキー。
type contextKey string

var (
	identityContextKey   = contextKey("identity")
	cookieAuthContextKey = contextKey("cookie_auth")
)

// TokenDecoder はアクセストークンの検証に必要なインターフェース。
type TokenDecoder interface {
	DecodeToken(token string) (*model.Identity, error)
}

// NewAuthMiddleware はAuthorizationヘッダーまたはCookieからアクセストークンを読み取り、
// 検証済みのIdentityをリクエストコンテキストに注入するミドルウェアを返す。
// トークンが無い・無効・期限切れの場合は401を返す。
func NewAuthMiddleware(decoder TokenDecoder) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, fromCookie := TokenFromRequest(r)
			if token == "" {
				WriteUnauthorized(w, model.NewUnauthorizedError())
				return
			}

			identity, err := decoder.DecodeToken(token)
			if err != nil {
				var apiErr *model.APIError
				if !errors.As(err, &apiErr) {
					apiErr = model.NewUnauthorizedError()
				}
				WriteUnauthorized(w, apiErr)
				return
			}

			setRequestUsername(r.Context(), identity.Username)

			ctx := ContextWithIdentity(r.Context(), *identity)
			ctx = context.WithValue(ctx, cookieAuthContextKey, fromCookie)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// TokenFromRequest はリクエストからアクセストークンを取り出す。
// Authorizationヘッダーを優先し、無ければCookieを参照する。
// Cookieの値は "Bearer " 接頭辞付きでもよい。
func TokenFromRequest(r *http.Request) (token string, fromCookie bool) {
	if h := r.Header.Get("Authorization"); h != "" {
		return stripBearer(h), false
	}
	if c, err := r.Cookie(AccessTokenCookieName); err == nil && c.Value != "" {
		return stripBearer(c.Value), true
	}
	return "", false
}

func stripBearer(v string) string {
	v = strings.TrimSpace(v)
	scheme, rest, found := strings.Cut(v, " ")
	if found && strings.EqualFold(scheme, "bearer") {
		return strings.TrimSpace(rest)
	}
	if found {
		// Bearer以外のスキームは受け付けない
		return ""
	}
	return v
}

// IdentityFromContext はリクエストコンテキストからIdentityを取得する。
// 認証ミドルウェアを通過したリクエストでのみ有効。
func IdentityFromContext(ctx context.Context) (model.Identity, bool) {
	identity, ok := ctx.Value(identityContextKey).(model.Identity)
	if !ok || identity.UserID <= 0 {
		return model.Identity{}, false
	}
	return identity, true
}

// ContextWithIdentity はコンテキストにIdentityを注入する。
// テストやミドルウェア以外のコンテキスト生成で使用する。
func ContextWithIdentity(ctx context.Context, identity model.Identity) context.Context {
	return context.WithValue(ctx, identityContextKey, identity)
}

// authenticatedByCookie はCookie経由で認証されたリクエストかどうかを返す。
func authenticatedByCookie(ctx context.Context) bool {
	v, _ := ctx.Value(cookieAuthContextKey).(bool)
	return v
}
