// Package auth はアクセストークンの発行・検証とログインフローを提供する。
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/hitoshi/tocook/internal/model"
)

// TokenType はトークンレスポンスに含めるトークン種別。
const TokenType = "bearer"

// Claims はアクセストークンのペイロード。
// subにユーザー名、idにユーザーIDを格納する。
type Claims struct {
	UserID int64  `json:"id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// TokenManager はHS256署名のアクセストークンを発行・検証する。
type TokenManager struct {
	secret []byte
	now    func() time.Time
}

// NewTokenManager はTokenManagerを生成する。
func NewTokenManager(secret string) *TokenManager {
	return &TokenManager{
		secret: []byte(secret),
		now:    time.Now,
	}
}

// Issue は有効期限付きのアクセストークンを発行する。
func (m *TokenManager) Issue(username string, userID int64, role string, ttl time.Duration) (string, error) {
	now := m.now().UTC()
	claims := Claims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			ID:        uuid.New().String(),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Decode はトークンの署名と有効期限を検証し、Identityを返す。
// 期限切れはTOKEN_EXPIRED、それ以外の不備はUNAUTHORIZEDになる。
func (m *TokenManager) Decode(tokenString string) (*model.Identity, error) {
	if tokenString == "" {
		return nil, model.NewUnauthorizedError()
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, model.NewTokenExpiredError()
		}
		return nil, model.NewUnauthorizedError()
	}

	if claims.Subject == "" || claims.UserID <= 0 {
		return nil, model.NewUnauthorizedError()
	}

	return &model.Identity{
		Username: claims.Subject,
		UserID:   claims.UserID,
		Role:     claims.Role,
	}, nil
}
