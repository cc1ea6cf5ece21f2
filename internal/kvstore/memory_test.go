package kvstore

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryKV_GetAbsentKey_ReturnsErrNotFound(t *testing.T) {
	kv := NewMemoryKV()

	_, err := kv.Get(context.Background(), "session:missing")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryKV_SetAndGet_RoundTrips(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	if err := kv.Set(ctx, "user:1", []byte(`{"id":"1"}`)); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, err := kv.Get(ctx, "user:1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != `{"id":"1"}` {
		t.Errorf("value = %q, want %q", got, `{"id":"1"}`)
	}
}

func TestMemoryKV_Set_OverwritesExistingValue(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	kv.Set(ctx, "k", []byte("old"))
	kv.Set(ctx, "k", []byte("new"))

	got, err := kv.Get(ctx, "k")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(got) != "new" {
		t.Errorf("value = %q, want %q", got, "new")
	}
}

func TestMemoryKV_SetIfAbsent_OnlyFirstWriteWins(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	inserted, err := kv.SetIfAbsent(ctx, "user_email:a@b.com", []byte("user-1"))
	if err != nil {
		t.Fatalf("SetIfAbsent failed: %v", err)
	}
	if !inserted {
		t.Fatal("first SetIfAbsent should insert")
	}

	inserted, err = kv.SetIfAbsent(ctx, "user_email:a@b.com", []byte("user-2"))
	if err != nil {
		t.Fatalf("SetIfAbsent failed: %v", err)
	}
	if inserted {
		t.Error("second SetIfAbsent should not insert")
	}

	// 既存の値が保持されること
	got, _ := kv.Get(ctx, "user_email:a@b.com")
	if string(got) != "user-1" {
		t.Errorf("value = %q, want %q", got, "user-1")
	}
}

func TestMemoryKV_Delete_RemovesKey(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	kv.Set(ctx, "session:1", []byte("v"))
	if err := kv.Delete(ctx, "session:1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}

	_, err := kv.Get(ctx, "session:1")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestMemoryKV_Delete_AbsentKeyIsNoError(t *testing.T) {
	kv := NewMemoryKV()

	if err := kv.Delete(context.Background(), "missing"); err != nil {
		t.Errorf("Delete of absent key returned error: %v", err)
	}
}

func TestMemoryKV_Get_ReturnsCopy(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	kv.Set(ctx, "k", []byte("original"))

	got, _ := kv.Get(ctx, "k")
	got[0] = 'X'

	again, _ := kv.Get(ctx, "k")
	if string(again) != "original" {
		t.Errorf("stored value mutated: %q", again)
	}
}
