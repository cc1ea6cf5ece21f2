package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/kakeibo/internal/kvstore"
	"github.com/hitoshi/kakeibo/internal/model"
	"github.com/hitoshi/kakeibo/internal/store"
)

// mockSigner はTokenSignerのモック実装。
type mockSigner struct {
	SignFn func(userID, email string, ttl time.Duration) (string, error)
}

func (m *mockSigner) Sign(userID, email string, ttl time.Duration) (string, error) {
	if m.SignFn != nil {
		return m.SignFn(userID, email, ttl)
	}
	return "signed-token", nil
}

// mockMetrics はMetricsRecorderのモック実装。
type mockMetrics struct {
	successCount int
	failureCount int
}

func (m *mockMetrics) RecordLoginSuccess() { m.successCount++ }
func (m *mockMetrics) RecordLoginFailure() { m.failureCount++ }

func newTestService(t *testing.T) (*Service, *store.UserStore, *mockMetrics) {
	t.Helper()
	kv := kvstore.NewMemoryKV()
	users := store.NewUserStore(kv)
	sessions := store.NewSessionStore(kv)
	metrics := &mockMetrics{}
	svc := NewService(users, sessions, &mockSigner{}, metrics, ServiceConfig{
		SessionTTL: time.Hour,
		TokenTTL:   time.Hour,
	})
	return svc, users, metrics
}

func TestService_Register_IssuesCredentials(t *testing.T) {
	svc, users, _ := newTestService(t)
	ctx := context.Background()

	creds, err := svc.Register(ctx, "a@b.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if creds.User == nil || creds.User.Email != "a@b.com" {
		t.Errorf("user = %+v", creds.User)
	}
	if creds.Session == nil || creds.Session.UserID != creds.User.ID {
		t.Errorf("session = %+v", creds.Session)
	}
	if creds.Token != "signed-token" {
		t.Errorf("token = %q", creds.Token)
	}

	// パスワードは平文で保存されないこと
	stored, _ := users.FindByEmail(ctx, "a@b.com")
	if stored.PasswordHash == "password123" {
		t.Error("password stored in plaintext")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("password123")); err != nil {
		t.Errorf("stored hash does not match password: %v", err)
	}
}

func TestService_Register_NormalizesEmail(t *testing.T) {
	svc, _, _ := newTestService(t)

	creds, err := svc.Register(context.Background(), "  A@B.Com  ", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if creds.User.Email != "a@b.com" {
		t.Errorf("email = %q, want %q", creds.User.Email, "a@b.com")
	}
}

func TestService_Register_DuplicateEmail_ReturnsEmailConflict(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.com", "password123"); err != nil {
		t.Fatalf("first Register failed: %v", err)
	}

	_, err := svc.Register(ctx, "A@b.com", "password456")
	var apiErr *model.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("err = %v, want *model.APIError", err)
	}
	if apiErr.Code != model.ErrCodeEmailConflict {
		t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeEmailConflict)
	}
}

func TestService_Register_InvalidInput_ReturnsValidationFailed(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "empty email", email: "", password: "password123"},
		{name: "no at sign", email: "ab.com", password: "password123"},
		{name: "double at sign", email: "a@@b.com", password: "password123"},
		{name: "empty local part", email: "@b.com", password: "password123"},
		{name: "domain without dot", email: "a@localhost", password: "password123"},
		{name: "short password", email: "a@b.com", password: "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(ctx, tt.email, tt.password)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *model.APIError", err)
			}
			if apiErr.Code != model.ErrCodeValidationFailed {
				t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeValidationFailed)
			}
		})
	}
}

func TestService_Login_Succeeds(t *testing.T) {
	svc, _, metrics := newTestService(t)
	ctx := context.Background()

	registered, err := svc.Register(ctx, "a@b.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	creds, err := svc.Login(ctx, "a@b.com", "password123")
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	if creds.User.ID != registered.User.ID {
		t.Errorf("user ID = %q, want %q", creds.User.ID, registered.User.ID)
	}
	// ログインごとに新しいセッションが発行されること
	if creds.Session.ID == registered.Session.ID {
		t.Error("login reused the registration session")
	}
	if metrics.successCount != 1 {
		t.Errorf("successCount = %d, want 1", metrics.successCount)
	}
}

// TestService_Login_WrongCredentials は未登録メールとパスワード不一致が
// 区別できない同一エラーになることを検証する。
func TestService_Login_WrongCredentials_ReturnsUnauthenticated(t *testing.T) {
	svc, _, metrics := newTestService(t)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "a@b.com", "password123"); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	tests := []struct {
		name     string
		email    string
		password string
	}{
		{name: "wrong password", email: "a@b.com", password: "wrongpassword"},
		{name: "unknown email", email: "unknown@b.com", password: "password123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Login(ctx, tt.email, tt.password)
			var apiErr *model.APIError
			if !errors.As(err, &apiErr) {
				t.Fatalf("err = %v, want *model.APIError", err)
			}
			if apiErr.Code != model.ErrCodeUnauthenticated {
				t.Errorf("code = %q, want %q", apiErr.Code, model.ErrCodeUnauthenticated)
			}
		})
	}

	if metrics.failureCount != 2 {
		t.Errorf("failureCount = %d, want 2", metrics.failureCount)
	}
}

func TestService_Logout_InvalidatesSession(t *testing.T) {
	kv := kvstore.NewMemoryKV()
	users := store.NewUserStore(kv)
	sessions := store.NewSessionStore(kv)
	svc := NewService(users, sessions, &mockSigner{}, nil, ServiceConfig{
		SessionTTL: time.Hour,
		TokenTTL:   time.Hour,
	})
	ctx := context.Background()

	creds, err := svc.Register(ctx, "a@b.com", "password123")
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	if err := svc.Logout(ctx, creds.Session.ID); err != nil {
		t.Fatalf("Logout failed: %v", err)
	}

	session, _ := sessions.FindByID(ctx, creds.Session.ID)
	if session != nil {
		t.Errorf("session still resolvable after logout: %+v", session)
	}
}

func TestService_Logout_EmptySessionID_ReturnsError(t *testing.T) {
	svc, _, _ := newTestService(t)

	if err := svc.Logout(context.Background(), ""); err == nil {
		t.Error("expected error for empty session ID")
	}
}
