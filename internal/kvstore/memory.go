package kvstore

import (
	"context"
	"sync"
)

// MemoryKV はテスト用のインメモリKV実装。
// mutexで同期し、値はコピーして保持する。
type MemoryKV struct {
	mu      sync.RWMutex
	entries map[string][]byte
}

// NewMemoryKV はMemoryKVを生成する。
func NewMemoryKV() *MemoryKV {
	return &MemoryKV{
		entries: make(map[string][]byte),
	}
}

// Get は指定キーの値を取得する。キーが存在しない場合はErrNotFoundを返す。
func (s *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.entries[key]
	if !ok {
		return nil, ErrNotFound
	}

	out := make([]byte, len(value))
	copy(out, value)
	return out, nil
}

// Set は指定キーに値を書き込む。既存の値は上書きされる。
func (s *MemoryKV) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key] = clone(value)
	return nil
}

// SetIfAbsent はキーが存在しない場合のみ値を書き込む。
func (s *MemoryKV) SetIfAbsent(_ context.Context, key string, value []byte) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.entries[key]; ok {
		return false, nil
	}
	s.entries[key] = clone(value)
	return true, nil
}

// Delete は指定キーを削除する。キーが存在しなくてもエラーにしない。
func (s *MemoryKV) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
	return nil
}

func clone(b []byte) []byte {
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

// compile-time interface check
var _ KV = (*MemoryKV)(nil)
