package photo

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestDiskStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	store, err := NewDiskStore(dir)
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}
	ctx := context.Background()

	if err := store.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
	if err := store.Put(ctx, "a.png", []byte("pixels"), "image/png"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	reader, err := store.Open(ctx, "a.png")
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got, _ := io.ReadAll(reader)
	reader.Close()
	if string(got) != "pixels" {
		t.Fatalf("unexpected content %q", got)
	}

	entries, _ := os.ReadDir(store.Dir())
	if len(entries) != 1 {
		t.Fatalf("expected only the stored file, got %d entries", len(entries))
	}

	if err := store.Remove(ctx, "a.png"); err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if err := store.Remove(ctx, "a.png"); err != nil {
		t.Fatalf("second Remove: %v", err)
	}
	if _, err := store.Open(ctx, "a.png"); !errors.Is(err, ErrImageNotFound) {
		t.Fatalf("expected ErrImageNotFound, got %v", err)
	}
}

func TestDiskStoreRejectsPaths(t *testing.T) {
	store, err := NewDiskStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewDiskStore: %v", err)
	}

	for _, name := range []string{"", ".", "..", "../escape.png", "nested/a.png"} {
		if err := store.Put(context.Background(), name, []byte("x"), ""); !errors.Is(err, ErrInvalidStorageName) {
			t.Errorf("Put(%q): expected ErrInvalidStorageName, got %v", name, err)
		}
	}
}
