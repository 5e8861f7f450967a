package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"docaudit-backend/internal/shared/storage/object"
)

func TestSaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	store := New(t.TempDir())

	key, size, err := store.Save(ctx, "user-1", "notes.txt", "text/plain", bytes.NewReader([]byte("hello")))
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if size != 5 {
		t.Fatalf("expected size 5, got %d", size)
	}

	rc, err := store.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	data, _ := io.ReadAll(rc)
	_ = rc.Close()
	if string(data) != "hello" {
		t.Fatalf("unexpected content %q", data)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Open(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, key); !errors.Is(err, object.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestOpenRejectsTraversal(t *testing.T) {
	store := New(t.TempDir())
	if _, err := store.Open(context.Background(), "../secret"); err == nil {
		t.Fatalf("expected invalid key error")
	}
}
