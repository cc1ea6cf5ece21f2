package model

import "fmt"

// APIError は統一エラーフォーマットを表す。
// UIに表示する原因カテゴリと対処方法を含む。
type APIError struct {
	Code     string // エラーコード
	Message  string // エラーメッセージ
	Category string // カテゴリ: auth, validation, bank, system
	Action   string // ユーザー向け対処方法
}

// Error はerrorインターフェースを実装する。
func (e *APIError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// 定義済みエラーコード
const (
	ErrCodeUnauthenticated     = "UNAUTHENTICATED"
	ErrCodeNotFound            = "NOT_FOUND"
	ErrCodeEmailConflict       = "EMAIL_CONFLICT"
	ErrCodeValidationFailed    = "VALIDATION_FAILED"
	ErrCodeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	ErrCodeUpstreamAuthExpired = "UPSTREAM_AUTH_EXPIRED"
	ErrCodeInternal            = "INTERNAL_ERROR"
)

// NewUnauthenticatedError は未認証エラーを生成する。
// 資格情報が無い・無効・期限切れのいずれの場合も同一のエラーを返す。
func NewUnauthenticatedError() *APIError {
	return &APIError{
		Code:     ErrCodeUnauthenticated,
		Message:  "認証されていません。",
		Category: "auth",
		Action:   "ログインし直してください。",
	}
}

// NewNotFoundError は参照先エンティティが存在しないエラーを生成する。
func NewNotFoundError(entity string) *APIError {
	return &APIError{
		Code:     ErrCodeNotFound,
		Message:  fmt.Sprintf("%sが見つかりません。", entity),
		Category: "system",
		Action:   "指定した対象を確認してください。",
	}
}

// NewEmailConflictError はメールアドレス重複エラーを生成する。
func NewEmailConflictError() *APIError {
	return &APIError{
		Code:     ErrCodeEmailConflict,
		Message:  "このメールアドレスは既に登録されています。",
		Category: "validation",
		Action:   "別のメールアドレスを使用するか、ログインしてください。",
	}
}

// NewValidationFailedError は入力検証エラーを生成する。
func NewValidationFailedError(reason string) *APIError {
	return &APIError{
		Code:     ErrCodeValidationFailed,
		Message:  fmt.Sprintf("入力内容が不正です: %s", reason),
		Category: "validation",
		Action:   "入力内容を確認して再度お試しください。",
	}
}

// NewUpstreamUnavailableError は外部プロバイダーの一時的な障害エラーを生成する。
// レート制限、5xx、ネットワーク障害、タイムアウト、不正なペイロードを含む。
func NewUpstreamUnavailableError() *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamUnavailable,
		Message:  "銀行データの取得に一時的に失敗しました。",
		Category: "bank",
		Action:   "しばらく待ってから再度お試しください。",
	}
}

// NewUpstreamAuthExpiredError は外部プロバイダーの資格情報失効エラーを生成する。
// 再連携というユーザー操作が必要なため、一時障害とは区別する。
func NewUpstreamAuthExpiredError() *APIError {
	return &APIError{
		Code:     ErrCodeUpstreamAuthExpired,
		Message:  "銀行連携の認証が失効しています。",
		Category: "bank",
		Action:   "銀行口座の再連携を行ってください。",
	}
}

// NewInternalError は想定外の内部エラーを生成する。
// 詳細はログのみに記録し、ユーザーには一般的なメッセージを返す。
func NewInternalError() *APIError {
	return &APIError{
		Code:     ErrCodeInternal,
		Message:  "内部エラーが発生しました。",
		Category: "system",
		Action:   "しばらく待ってから再度お試しください。",
	}
}
