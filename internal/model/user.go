// Package model はドメインモデルを定義する。
package model

import "time"

// User はサービス利用ユーザーを表す。
// PasswordHashはbcryptハッシュであり、APIレスポンスには決して含めない。
type User struct {
	ID           string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// PublicUser はAPIレスポンスに含めるユーザーの公開ビュー。
// パスワードハッシュを除外した安全な表現。
type PublicUser struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Public はユーザーの公開ビューを返す。
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Email:     u.Email,
		CreatedAt: u.CreatedAt,
	}
}

// Session はユーザーのログインセッションを表す。
// ログインごとに1レコード作成され、同一ユーザーの複数同時セッションを許容する。
type Session struct {
	ID        string
	UserID    string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// Expired はセッションが期限切れかどうかを判定する。
// expires_atを過ぎたセッションは物理削除の有無にかかわらず無効として扱う。
func (s *Session) Expired(now time.Time) bool {
	return !s.ExpiresAt.After(now)
}

// Enrollment はユーザーと外部銀行データプロバイダーの連携情報を表す。
// アクセストークンはサーバー側でのみ使用し、呼び出し元には公開しない。
// 1ユーザーにつき最大1件。
type Enrollment struct {
	UserID          string
	AccessToken     string
	InstitutionName string
	LinkedAt        time.Time
}
