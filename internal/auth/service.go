// Package auth はユーザー登録・ログイン・セッション管理と
// リクエストからの認証主体解決を提供する。
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/store"
)

// minPasswordLength はパスワードの最小文字数。
const minPasswordLength = 8

// UserStore はユーザー永続化のうち認証サービスが必要とするインターフェース。
type UserStore interface {
	Create(ctx context.Context, user *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
}

// SessionStore はセッション永続化のうち認証サービスが必要とするインターフェース。
type SessionStore interface {
	Create(ctx context.Context, session *model.Session) error
	FindByID(ctx context.Context, id string) (*model.Session, error)
	DeleteByID(ctx context.Context, id string) error
}

// TokenSigner はベアラートークンの発行インターフェース。
type TokenSigner interface {
	Sign(userID, email string, ttl time.Duration) (string, error)
}

// MetricsRecorder はログイン結果のメトリクス記録インターフェース。
type MetricsRecorder interface {
	RecordLoginSuccess()
	RecordLoginFailure()
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	SessionTTL time.Duration // セッション有効期間
	TokenTTL   time.Duration // ベアラートークン有効期間
}

// Service は認証に関するビジネスロジックを提供する。
type Service struct {
	users    UserStore
	sessions SessionStore
	signer   TokenSigner
	metrics  MetricsRecorder
	config   ServiceConfig
}

// NewService はServiceを生成する。metricsはnilを許容する（記録なし）。
func NewService(users UserStore, sessions SessionStore, signer TokenSigner, metrics MetricsRecorder, config ServiceConfig) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		signer:   signer,
		metrics:  metrics,
		config:   config,
	}
}

// Credentials はログイン・登録成功時に発行される資格情報のセット。
// ブラウザ向けのセッションとモバイル向けのベアラートークンを両方発行する。
type Credentials struct {
	User    *model.User
	Session *model.Session
	Token   string
}

// Register は新規ユーザーを登録し、資格情報を発行する。
// メール形式とパスワード長を検証し、重複メールはEMAIL_CONFLICTを返す。
func (s *Service) Register(ctx context.Context, email, password string) (*Credentials, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if len(password) < minPasswordLength {
		return nil, model.NewValidationFailedError(
			fmt.Sprintf("パスワードは%d文字以上で入力してください", minPasswordLength))
	}

	normalized := store.NormalizeEmail(email)

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.New().String(),
		Email:        normalized,
		PasswordHash: string(hash),
		CreatedAt:    time.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if err == store.ErrDuplicateEmail {
			return nil, model.NewEmailConflictError()
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	slog.Info("new user registered",
		slog.String("user_id", user.ID),
	)

	return s.issueCredentials(ctx, user)
}

// Login はメールアドレスとパスワードでログインし、資格情報を発行する。
// 未登録メールとパスワード不一致はどちらも同一のUNAUTHENTICATEDを返す。
func (s *Service) Login(ctx context.Context, email, password string) (*Credentials, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to find user by email: %w", err)
	}
	if user == nil {
		s.recordLoginFailure()
		return nil, model.NewUnauthenticatedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.recordLoginFailure()
		return nil, model.NewUnauthenticatedError()
	}

	creds, err := s.issueCredentials(ctx, user)
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordLoginSuccess()
	}
	slog.Info("user logged in",
		slog.String("user_id", user.ID),
	)

	return creds, nil
}

// Logout はセッションを破棄する。
// ベアラートークンはサーバー側で失効できず、自然な期限切れまで有効
// （短寿命トークンを前提とした受容済みの制約）。
func (s *Service) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("session ID is required")
	}

	if err := s.sessions.DeleteByID(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}

	slog.Info("user logged out", slog.String("session_id", sessionID))
	return nil
}

// issueCredentials はセッションとベアラートークンを発行する。
// ログインごとに新しいセッションを作成し、同時セッションを許容する。
func (s *Service) issueCredentials(ctx context.Context, user *model.User) (*Credentials, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return nil, fmt.Errorf("failed to generate session ID: %w", err)
	}

	session := &model.Session{
		ID:        sessionID,
		UserID:    user.ID,
		ExpiresAt: time.Now().Add(s.config.SessionTTL),
		CreatedAt: time.Now(),
	}

	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, fmt.Errorf("failed to save session: %w", err)
	}

	tok, err := s.signer.Sign(user.ID, user.Email, s.config.TokenTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to sign bearer token: %w", err)
	}

	return &Credentials{
		User:    user,
		Session: session,
		Token:   tok,
	}, nil
}

func (s *Service) recordLoginFailure() {
	if s.metrics != nil {
		s.metrics.RecordLoginFailure()
	}
}

// validateEmail はメールアドレスの形式を検証する。
// 条件: @がちょうど1つ、ローカル部とドメイン部が非空、ドメインにドットを含む。
func validateEmail(email string) *model.APIError {
	trimmed := strings.TrimSpace(email)
	if trimmed == "" {
		return model.NewValidationFailedError("メールアドレスを入力してください")
	}

	at := strings.Count(trimmed, "@")
	if at != 1 {
		return model.NewValidationFailedError("メールアドレスの形式が正しくありません")
	}

	parts := strings.SplitN(trimmed, "@", 2)
	local, domain := parts[0], parts[1]
	if local == "" || domain == "" || !strings.Contains(domain, ".") {
		return model.NewValidationFailedError("メールアドレスの形式が正しくありません")
	}

	return nil
}

// generateSessionID は暗号的に安全なセッションIDを生成する。
func generateSessionID() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
