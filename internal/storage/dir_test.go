package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDirStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewDirStore(filepath.Join(dir, "artifacts"))
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	if err := store.Put(context.Background(), KeyRaw, []byte(`{"name":"x"}`)); err != nil {
		t.Fatalf("Put error: %v", err)
	}

	got, err := os.ReadFile(filepath.Join(dir, "artifacts", KeyRaw))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if string(got) != `{"name":"x"}` {
		t.Fatalf("artifact content: want %s, got %s", `{"name":"x"}`, got)
	}
}

func TestDirStore_PutOverwritesIdempotently(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := store.Put(context.Background(), KeyCleaned, []byte(`{"v":1}`)); err != nil {
			t.Fatalf("Put attempt %d: %v", i, err)
		}
	}
}

func TestDirStore_RejectsBadKeys(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	for _, key := range []string{"", "../escape.json", "nested/key.json"} {
		if err := store.Put(context.Background(), key, nil); !errors.Is(err, ErrStorage) {
			t.Fatalf("Put(%q): want ErrStorage, got %v", key, err)
		}
	}
}

func TestDirStore_CanceledContext(t *testing.T) {
	store, err := NewDirStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := store.Put(ctx, KeyRaw, []byte("{}")); !errors.Is(err, ErrStorage) {
		t.Fatalf("Put on canceled context: want ErrStorage, got %v", err)
	}
}

func TestNewDirStore_RequiresDir(t *testing.T) {
	if _, err := NewDirStore(""); err == nil {
		t.Fatalf("NewDirStore(\"\"): want error")
	}
}
