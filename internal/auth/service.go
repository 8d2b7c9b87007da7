// Package auth はメールアドレスとパスワードによるサインアップ・ログインを提供する。
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/hiretrack/internal/metrics"
	"github.com/hitoshi/hiretrack/internal/model"
	"github.com/hitoshi/hiretrack/internal/repository"
	"github.com/hitoshi/hiretrack/internal/security"
)

// DefaultBcryptCost は既定のbcryptコスト。
const DefaultBcryptCost = 8

// SignupInput はサインアップの入力。
type SignupInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int // 0の場合はDefaultBcryptCost
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	credRepo  repository.CredentialRepository
	sanitizer security.TextSanitizer
	metrics   metrics.MetricsCollector
	cost      int
	// dummyHash は未登録メールアドレスのログイン時に比較する固定ハッシュ。
	dummyHash []byte
	now       func() time.Time
}

// NewService はServiceを生成する。
func NewService(
	credRepo repository.CredentialRepository,
	sanitizer security.TextSanitizer,
	mc metrics.MetricsCollector,
	config ServiceConfig,
) (*Service, error) {
	cost := config.BcryptCost
	if cost == 0 {
		cost = DefaultBcryptCost
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		return nil, fmt.Errorf("bcrypt cost must be between %d and %d: %d", bcrypt.MinCost, bcrypt.MaxCost, cost)
	}

	dummy, err := bcrypt.GenerateFromPassword([]byte(uuid.NewString()), cost)
	if err != nil {
		return nil, fmt.Errorf("failed to generate dummy hash: %w", err)
	}

	return &Service{
		credRepo:  credRepo,
		sanitizer: sanitizer,
		metrics:   mc,
		cost:      cost,
		dummyHash: dummy,
		now:       time.Now,
	}, nil
}

// Signup は新しい資格情報を登録する。
// メールアドレスは正規化して保存し、大文字小文字違いの重複はConflictとなる。
func (s *Service) Signup(ctx context.Context, in SignupInput) (err error) {
	defer func() { s.metrics.RecordSignup(metrics.ResultOf(err)) }()

	email := model.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return model.NewInvalidInputError("Email and password are required")
	}
	if model.EmailTooLong(email) {
		return model.NewInvalidInputError(fmt.Sprintf("Email must be at most %d characters", model.MaxEmailLength))
	}
	firstName := s.sanitizer.Sanitize(in.FirstName)
	lastName := s.sanitizer.Sanitize(in.LastName)
	if utf8.RuneCountInString(firstName) > model.MaxNameLength || utf8.RuneCountInString(lastName) > model.MaxNameLength {
		return model.NewInvalidInputError(fmt.Sprintf("Names must be at most %d characters", model.MaxNameLength))
	}

	existing, err := s.credRepo.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("failed to find credential", slog.String("error", err.Error()))
		return model.NewStoreUnavailableError()
	}
	if existing != nil {
		return model.NewEmailExistsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return model.NewInvalidInputError("Password must be at most 72 bytes")
		}
		return fmt.Errorf("failed to hash password: %w", err)
	}

	cred := &model.Credential{
		ID:           uuid.New().String(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		PasswordHash: string(hash),
		CreatedAt:    s.now().UTC(),
	}

	if err := s.credRepo.Create(ctx, cred); err != nil {
		// 存在確認後に並行して作成された場合
		if errors.Is(err, repository.ErrConflict) {
			return model.NewEmailExistsError()
		}
		slog.Error("failed to create credential", slog.String("error", err.Error()))
		return model.NewStoreUnavailableError()
	}

	slog.Info("user signed up", slog.String("credential_id", cred.ID))
	return nil
}

// Login はメールアドレスとパスワードを検証し、パスワードを含まないユーザー情報を返す。
// 未登録とパスワード不一致は同一のエラーを返す。
func (s *Service) Login(ctx context.Context, email, password string) (user *model.User, err error) {
	defer func() { s.metrics.RecordLogin(metrics.ResultOf(err)) }()

	email = model.NormalizeEmail(email)
	if email == "" || password == "" {
		return nil, model.NewInvalidCredentialsError()
	}

	cred, err := s.credRepo.FindByEmail(ctx, email)
	if err != nil {
		slog.Error("failed to find credential", slog.String("error", err.Error()))
		return nil, model.NewStoreUnavailableError()
	}

	if cred == nil {
		// 応答時間で登録有無が判別できないよう、ダミーハッシュと比較する
		_ = bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		return nil, model.NewInvalidCredentialsError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(password)); err != nil {
		return nil, model.NewInvalidCredentialsError()
	}

	return cred.User(), nil
}
