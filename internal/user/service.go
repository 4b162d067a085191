// Package user はユーザー登録と資格情報の検証を提供する。
package user

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/hitoshi/tocook/internal/model"
	"github.com/hitoshi/tocook/internal/repository"
)

const (
	maxPhoneNumberLength = 15
	// users テーブルの VARCHAR(255) 列に合わせる
	maxFieldLength = 255
	// bcryptは72バイトを超える入力を扱えない
	maxPasswordBytes = 72
)

// CreateUserRequest はユーザー登録リクエストを表す。
type CreateUserRequest struct {
	Username    string  `json:"username"`
	Email       string  `json:"email"`
	FirstName   string  `json:"first_name"`
	LastName    string  `json:"last_name"`
	Password    string  `json:"password"`
	Role        string  `json:"role"`
	PhoneNumber *string `json:"phone_number,omitempty"`
}

// Validate は必須項目と長さ制約を検証する。
func (r *CreateUserRequest) Validate() []model.FieldError {
	var fields []model.FieldError
	required := []struct {
		name  string
		value string
	}{
		{"username", r.Username},
		{"email", r.Email},
		{"first_name", r.FirstName},
		{"last_name", r.LastName},
		{"password", r.Password},
		{"role", r.Role},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, model.FieldError{Field: f.name, Message: "field required"})
			continue
		}
		if f.name != "password" && utf8.RuneCountInString(f.value) > maxFieldLength {
			fields = append(fields, model.FieldError{
				Field:   f.name,
				Message: fmt.Sprintf("must be at most %d characters", maxFieldLength),
			})
		}
	}
	if len(r.Password) > maxPasswordBytes {
		fields = append(fields, model.FieldError{
			Field:   "password",
			Message: fmt.Sprintf("must be at most %d bytes", maxPasswordBytes),
		})
	}
	if r.PhoneNumber != nil && utf8.RuneCountInString(*r.PhoneNumber) > maxPhoneNumberLength {
		fields = append(fields, model.FieldError{
			Field:   "phone_number",
			Message: fmt.Sprintf("must be at most %d characters", maxPhoneNumberLength),
		})
	}
	return fields
}

// Service はユーザー登録と認証のサービス層。
type Service struct {
	userRepo  repository.UserRepository
	hasher    PasswordHasher
	dummyHash string
}

// NewService はServiceの新しいインスタンスを生成する。
// 存在しないユーザーの認証でも照合時間を揃えるため、ダミーハッシュを事前に生成する。
func NewService(userRepo repository.UserRepository, hasher PasswordHasher) (*Service, error) {
	dummy, err := hasher.Hash("tocook-dummy-password")
	if err != nil {
		return nil, fmt.Errorf("failed to prepare dummy hash: %w", err)
	}
	return &Service{
		userRepo:  userRepo,
		hasher:    hasher,
		dummyHash: dummy,
	}, nil
}

// CreateUser はパスワードをハッシュ化してユーザーを登録する。
// ユーザー名は前後の空白を除いて保存する。ログイン側も同じ正規化を行う。
func (s *Service) CreateUser(ctx context.Context, req CreateUserRequest) error {
	req.Username = normalizeUsername(req.Username)
	if fields := req.Validate(); len(fields) > 0 {
		return model.NewValidationError(fields)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	u := &model.User{
		Username:     req.Username,
		Email:        req.Email,
		FirstName:    req.FirstName,
		LastName:     req.LastName,
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: hash,
		Role:         req.Role,
	}
	if err := s.userRepo.Create(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicateUsername) {
			return model.NewUsernameTakenError(req.Username)
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("user registered",
		slog.Int64("user_id", u.ID),
		slog.String("username", u.Username),
	)
	return nil
}

// Authenticate はユーザー名とパスワードを検証し、一致したユーザーを返す。
// ユーザーが存在しない場合とパスワード不一致の場合は同じエラーになる。
func (s *Service) Authenticate(ctx context.Context, username, password string) (*model.User, error) {
	username = normalizeUsername(username)
	u, err := s.userRepo.FindByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to find user: %w", err)
	}
	if u == nil {
		_ = s.hasher.Compare(s.dummyHash, password)
		return nil, model.NewInvalidCredentialsError()
	}

	if err := s.hasher.Compare(u.PasswordHash, password); err != nil {
		if !errors.Is(err, ErrPasswordMismatch) {
			slog.Warn("password hash comparison failed",
				slog.Int64("user_id", u.ID),
				slog.String("error", err.Error()),
			)
		}
		return nil, model.NewInvalidCredentialsError()
	}
	return u, nil
}

func normalizeUsername(username string) string {
	return strings.TrimSpace(username)
}
