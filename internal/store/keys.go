// Package store はKVストア上にユーザー・セッション・銀行連携の
// 型付き永続化層を提供する。
// キーは固定プレフィックスによる名前空間で決定的に導出する。
package store

import "strings"

// キー名前空間のプレフィックス
const (
	userKeyPrefix       = "user:"
	userEmailKeyPrefix  = "user_email:"
	sessionKeyPrefix    = "session:"
	enrollmentKeyPrefix = "enrollment:"
)

// NormalizeEmail はメールアドレスを正規化する。
// 前後の空白を除去し小文字に統一する。大文字小文字の違いによる
// 重複登録を防ぐため、メールのキー導出は必ずこの関数を経由する。
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func userKey(id string) string {
	return userKeyPrefix + id
}

func userEmailKey(email string) string {
	return userEmailKeyPrefix + NormalizeEmail(email)
}

func sessionKey(id string) string {
	return sessionKeyPrefix + id
}

func enrollmentKey(userID string) string {
	return enrollmentKeyPrefix + userID
}
