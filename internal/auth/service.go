package auth

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/hitoshi/tocook/internal/metrics"
	"github.com/hitoshi/tocook/internal/model"
)

// Authenticator はユーザー名とパスワードを検証するインターフェース。
type Authenticator interface {
	Authenticate(ctx context.Context, username, password string) (*model.User, error)
}

// Token はトークンエンドポイントのレスポンスを表す。
type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

// Service はログインとトークン検証のビジネスロジックを提供する。
type Service struct {
	authenticator Authenticator
	tokens        *TokenManager
	ttl           time.Duration
	metrics       metrics.MetricsCollector
}

// NewService はServiceを生成する。metricsはnilでもよい。
func NewService(authenticator Authenticator, tokens *TokenManager, ttl time.Duration, mc metrics.MetricsCollector) *Service {
	return &Service{
		authenticator: authenticator,
		tokens:        tokens,
		ttl:           ttl,
		metrics:       mc,
	}
}

// Login は資格情報を検証し、アクセストークンを発行する。
func (s *Service) Login(ctx context.Context, username, password string) (*Token, error) {
	u, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		var apiErr *model.APIError
		if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeInvalidCredentials {
			s.recordLogin(metrics.LoginFailed)
			slog.Info("login rejected", slog.String("username", username))
		} else {
			s.recordLogin(metrics.LoginError)
		}
		return nil, err
	}

	signed, err := s.tokens.Issue(u.Username, u.ID, u.Role, s.ttl)
	if err != nil {
		s.recordLogin(metrics.LoginError)
		return nil, err
	}

	s.recordLogin(metrics.LoginSucceeded)
	slog.Info("token issued",
		slog.Int64("user_id", u.ID),
		slog.String("username", u.Username),
	)
	return &Token{AccessToken: signed, TokenType: TokenType}, nil
}

// DecodeToken はアクセストークンを検証してIdentityを返す。
func (s *Service) DecodeToken(token string) (*model.Identity, error) {
	identity, err := s.tokens.Decode(token)
	if err != nil {
		if s.metrics != nil {
			reason := "invalid"
			var apiErr *model.APIError
			if errors.As(err, &apiErr) && apiErr.Code == model.ErrCodeTokenExpired {
				reason = "expired"
			}
			s.metrics.RecordTokenRejected(reason)
		}
		return nil, err
	}
	return identity, nil
}

func (s *Service) recordLogin(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordLoginAttempt(outcome)
	}
}
