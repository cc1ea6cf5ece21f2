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

// enrollmentRecord はKVに保存する銀行連携のシリアライズ形式。
type enrollmentRecord struct {
	UserID          string    `json:"user_id"`
	AccessToken     string    `json:"access_token"`
	InstitutionName string    `json:"institution_name"`
	LinkedAt        time.Time `json:"linked_at"`
}

// EnrollmentStore は銀行連携レコードの永続化層。
// 1ユーザーにつき最大1件をenrollment:<userID>キーで管理する。
type EnrollmentStore struct {
	kv kvstore.KV
}

// NewEnrollmentStore はEnrollmentStoreを生成する。
func NewEnrollmentStore(kv kvstore.KV) *EnrollmentStore {
	return &EnrollmentStore{kv: kv}
}

// Save は銀行連携を保存する。既存の連携は上書きされる。
func (s *EnrollmentStore) Save(ctx context.Context, enrollment *model.Enrollment) error {
	data, err := json.Marshal(enrollmentRecord{
		UserID:          enrollment.UserID,
		AccessToken:     enrollment.AccessToken,
		InstitutionName: enrollment.InstitutionName,
		LinkedAt:        enrollment.LinkedAt,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal enrollment: %w", err)
	}

	if err := s.kv.Set(ctx, enrollmentKey(enrollment.UserID), data); err != nil {
		return fmt.Errorf("failed to save enrollment: %w", err)
	}

	return nil
}

// FindByUserID は指定ユーザーの銀行連携を取得する。見つからない場合はnilを返す。
func (s *EnrollmentStore) FindByUserID(ctx context.Context, userID string) (*model.Enrollment, error) {
	data, err := s.kv.Get(ctx, enrollmentKey(userID))
	if errors.Is(err, kvstore.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find enrollment: %w", err)
	}

	var rec enrollmentRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal enrollment: %w", err)
	}

	return &model.Enrollment{
		UserID:          rec.UserID,
		AccessToken:     rec.AccessToken,
		InstitutionName: rec.InstitutionName,
		LinkedAt:        rec.LinkedAt,
	}, nil
}

// DeleteByUserID は指定ユーザーの銀行連携を削除する。
func (s *EnrollmentStore) DeleteByUserID(ctx context.Context, userID string) error {
	if err := s.kv.Delete(ctx, enrollmentKey(userID)); err != nil {
		return fmt.Errorf("failed to delete enrollment: %w", err)
	}
	return nil
}
