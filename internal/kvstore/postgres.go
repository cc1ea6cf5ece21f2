package kvstore

import (
	"context"
	"database/sql"
	"fmt"
)

// PostgresKV はPostgreSQLを使用したKV実装。
// kv_entriesテーブル1枚に全レコードを格納する。
type PostgresKV struct {
	db *sql.DB
}

// NewPostgresKV はPostgresKVを生成する。
func NewPostgresKV(db *sql.DB) *PostgresKV {
	return &PostgresKV{db: db}
}

// Get は指定キーの値を取得する。キーが存在しない場合はErrNotFoundを返す。
func (s *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM kv_entries WHERE key = $1`,
		key,
	).Scan(&value)

	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get key: %w", err)
	}

	return value, nil
}

// Set は指定キーに値を書き込む。既存の値は上書きされる。
func (s *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, value,
	)
	if err != nil {
		return fmt.Errorf("failed to set key: %w", err)
	}
	return nil
}

// SetIfAbsent はキーが存在しない場合のみ値を書き込む。
// ON CONFLICT DO NOTHINGによりcheck-then-insertの競合を排除する。
func (s *PostgresKV) SetIfAbsent(ctx context.Context, key string, value []byte) (bool, error) {
	result, err := s.db.ExecContext(ctx,
		`INSERT INTO kv_entries (key, value, updated_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (key) DO NOTHING`,
		key, value,
	)
	if err != nil {
		return false, fmt.Errorf("failed to set key if absent: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return rowsAffected > 0, nil
}

// Delete は指定キーを削除する。キーが存在しなくてもエラーにしない。
func (s *PostgresKV) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx,
		`DELETE FROM kv_entries WHERE key = $1`,
		key,
	)
	if err != nil {
		return fmt.Errorf("failed to delete key: %w", err)
	}
	return nil
}

// compile-time interface check
var _ KV = (*PostgresKV)(nil)
