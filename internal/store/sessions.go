package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/hitoshi/kakeibo/internal/kvstore"
	"github.com/hitoshi/kakeibo/internal/model"
)

// sessionRecord はKVに保存するセッションのシリアライズ形式。
type sessionRecord struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// SessionStore はセッションレコードの永続化層。
type SessionStore struct {
	kv  kvstore.KV
	now func() time.Time
}

// NewSessionStore はSessionStoreを生成する。
func NewSessionStore(kv kvstore.KV) *SessionStore {
	return &SessionStore{kv: kv, now: time.Now}
}

// Create はセッションを作成する。
func (s *SessionStore) Create(ctx context.Context, session *model.Session) error {
	data, err := json.Marshal(sessionRecord{
		ID:        session.ID,
		UserID:    session.UserID,
		ExpiresAt: session.ExpiresAt,
		CreatedAt: session.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := s.kv.Set(ctx, sessionKey(session.ID), data); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	return nil
}

// FindByID は指定IDのセッションを取得する。
// 存在しない場合と期限切れの場合はnilを返す。期限切れレコードは
// 物理削除の有無にかかわらず無効として扱う（読み取り時の論理削除）。
func (s *SessionStore) FindByID(ctx context.Context, id string) (*model.Session, error) {
	data, err := s.kv.Get(ctx, sessionKey(id))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find session: %w", err)
	}

	var rec sessionRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	session := &model.Session{
		ID:        rec.ID,
		UserID:    rec.UserID,
		ExpiresAt: rec.ExpiresAt,
		CreatedAt: rec.CreatedAt,
	}

	if session.Expired(s.now()) {
		return nil, nil
	}

	return session, nil
}

// DeleteByID は指定IDのセッションを削除する。
func (s *SessionStore) DeleteByID(ctx context.Context, id string) error {
	if err := s.kv.Delete(ctx, sessionKey(id)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}
