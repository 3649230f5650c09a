package local

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"docvault-backend/internal/shared/storage/object"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	payload := []byte("stored bytes")
	n, err := store.Save(ctx, "org-1/doc-1/report.pdf", bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if n != int64(len(payload)) {
		t.Fatalf("expected %d bytes written, got %d", len(payload), n)
	}

	rc, err := store.Open(ctx, "org-1/doc-1/report.pdf")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !bytes.Equal(got, payload) {
		t.Fatalf("round trip mismatch: got %q want %q", got, payload)
	}
}

func TestSaveRefusesOccupiedKey(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Save(ctx, "org-1/doc-1/file.txt", bytes.NewReader([]byte("first"))); err != nil {
		t.Fatalf("first save: %v", err)
	}
	_, err := store.Save(ctx, "org-1/doc-1/file.txt", bytes.NewReader([]byte("second")))
	if !errors.Is(err, object.ErrFileAlreadyExists) {
		t.Fatalf("expected ErrFileAlreadyExists, got %v", err)
	}

	// The original bytes must be untouched by the losing write.
	rc, err := store.Open(ctx, "org-1/doc-1/file.txt")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, _ := io.ReadAll(rc)
	if string(got) != "first" {
		t.Fatalf("expected original content, got %q", got)
	}
}

func TestOpenMissingKey(t *testing.T) {
	store := New(t.TempDir())
	_, err := store.Open(context.Background(), "org-1/missing/file.txt")
	if !errors.Is(err, object.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound, got %v", err)
	}
}

func TestDeleteIsIdempotent(t *testing.T) {
	store := New(t.TempDir())
	ctx := context.Background()

	if _, err := store.Save(ctx, "org-1/doc-1/file.txt", bytes.NewReader([]byte("data"))); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Delete(ctx, "org-1/doc-1/file.txt"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(ctx, "org-1/doc-1/file.txt"); err != nil {
		t.Fatalf("second delete should be a no-op, got %v", err)
	}
	if _, err := store.Open(ctx, "org-1/doc-1/file.txt"); !errors.Is(err, object.ErrFileNotFound) {
		t.Fatalf("expected ErrFileNotFound after delete, got %v", err)
	}
}

func TestRejectsTraversalKeys(t *testing.T) {
	t.Parallel()

	store := New(t.TempDir())
	ctx := context.Background()

	for _, key := range []string{"../escape.txt", "/abs/path.txt", "."} {
		if _, err := store.Save(ctx, key, bytes.NewReader([]byte("x"))); err == nil {
			t.Fatalf("expected save to reject key %q", key)
		}
		if _, err := store.Open(ctx, key); err == nil {
			t.Fatalf("expected open to reject key %q", key)
		}
	}
}
