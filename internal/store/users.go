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

// ErrDuplicateEmail は同一メールアドレスのユーザーが既に存在することを示す。
var ErrDuplicateEmail = errors.New("store: email already registered")

// userRecord はKVに保存するユーザーのシリアライズ形式。
type userRecord struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserStore はユーザーレコードの永続化層。
// user:<id>を主レコード、user_email:<email>を二次索引として管理する。
type UserStore struct {
	kv kvstore.KV
}

// NewUserStore はUserStoreを生成する。
func NewUserStore(kv kvstore.KV) *UserStore {
	return &UserStore{kv: kv}
}

// Create はユーザーを作成する。
// メール索引キーへの条件付き書き込みで一意性を保証し、重複時は
// ErrDuplicateEmailを返す。索引と主レコードの2キー書き込みは
// トランザクションではないため、間でクラッシュすると索引だけが
// 残る可能性がある（既知のギャップとして受容）。
func (s *UserStore) Create(ctx context.Context, user *model.User) error {
	inserted, err := s.kv.SetIfAbsent(ctx, userEmailKey(user.Email), []byte(user.ID))
	if err != nil {
		return fmt.Errorf("failed to claim email index: %w", err)
	}
	if !inserted {
		return ErrDuplicateEmail
	}

	data, err := json.Marshal(userRecord{
		ID:           user.ID,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		CreatedAt:    user.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal user: %w", err)
	}

	if err := s.kv.Set(ctx, userKey(user.ID), data); err != nil {
		return fmt.Errorf("failed to save user: %w", err)
	}

	return nil
}

// FindByID は指定IDのユーザーを取得する。見つからない場合はnilを返す。
func (s *UserStore) FindByID(ctx context.Context, id string) (*model.User, error) {
	data, err := s.kv.Get(ctx, userKey(id))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find user by ID: %w", err)
	}

	return decodeUser(data)
}

// FindByEmail はメールアドレスでユーザーを検索する。見つからない場合はnilを返す。
// 二次索引からユーザーIDを引き、主レコードを解決する。
func (s *UserStore) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	id, err := s.kv.Get(ctx, userEmailKey(email))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to resolve email index: %w", err)
	}

	return s.FindByID(ctx, string(id))
}

func decodeUser(data []byte) (*model.User, error) {
	var rec userRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal user: %w", err)
	}
	return &model.User{
		ID:           rec.ID,
		Email:        rec.Email,
		PasswordHash: rec.PasswordHash,
		CreatedAt:    rec.CreatedAt,
	}, nil
}
