// Package kvstore はキー・バリュー永続化の契約と実装を提供する。
// セッション・ユーザー・銀行連携レコードの保存に使用する。
package kvstore

import (
	"context"
	"errors"
)

// ErrNotFound はキーが存在しないことを示す。
// インフラ障害とは区別され、呼び出し元は「未認証」と「システム障害」を
// 区別できる。
var ErrNotFound = errors.New("kvstore: key not found")

// KV はキー・バリューストアのインターフェース。
// キー単位の読み書きはアトミックだが、複数キーにまたがるトランザクションは
// 提供しない。複数キーを更新する呼び出し元はクラッシュ時の部分適用リスクを
// 受容する。
type KV interface {
	// Get は指定キーの値を取得する。キーが存在しない場合はErrNotFoundを返す。
	Get(ctx context.Context, key string) ([]byte, error)

	// Set は指定キーに値を書き込む。既存の値は上書きされる。
	Set(ctx context.Context, key string, value []byte) error

	// SetIfAbsent はキーが存在しない場合のみ値を書き込む。
	// 書き込めた場合はtrueを返す。一意制約の実現に使用する。
	SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error)

	// Delete は指定キーを削除する。キーが存在しなくてもエラーにしない。
	Delete(ctx context.Context, key string) error
}
