package object

import (
	"context"
	"errors"
	"io"
)

var (
	// ErrFileAlreadyExists signals a write to an occupied storage key.
	ErrFileAlreadyExists = errors.New("file already exists at storage key")
	// ErrFileNotFound signals a read of a missing storage key.
	ErrFileNotFound = errors.New("file not found at storage key")
)

// ObjectStore defines the contract for storing document bytes behind an
// engine-assigned storage key. Save must refuse to overwrite an occupied key;
// Delete is idempotent so reaper-style cleanup can retry freely. Backends are
// swappable at startup (local filesystem, S3, in-memory).
type ObjectStore interface {
	Save(ctx context.Context, storageKey string, r io.Reader) (int64, error)
	Open(ctx context.Context, storageKey string) (io.ReadCloser, error)
	Delete(ctx context.Context, storageKey string) error
}
