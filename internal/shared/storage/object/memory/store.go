package memory

import (
	"bytes"
	"context"
	"io"
	"sync"

	"docvault-backend/internal/shared/storage/object"
)

// Store is an in-memory implementation of ObjectStore for tests and dev.
type Store struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New constructs an empty in-memory store.
func New() *Store {
	return &Store{data: make(map[string][]byte)}
}

// Save buffers the reader under the given storage key.
func (s *Store) Save(ctx context.Context, storageKey string, r io.Reader) (int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}

	payload, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[storageKey]; ok {
		return 0, object.ErrFileAlreadyExists
	}
	s.data[storageKey] = payload
	return int64(len(payload)), nil
}

// Open returns a reader over a stored object.
func (s *Store) Open(ctx context.Context, storageKey string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.RLock()
	payload, ok := s.data[storageKey]
	s.mu.RUnlock()
	if !ok {
		return nil, object.ErrFileNotFound
	}
	return io.NopCloser(bytes.NewReader(payload)), nil
}

// Delete removes a stored object. Missing keys are ignored.
func (s *Store) Delete(ctx context.Context, storageKey string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	delete(s.data, storageKey)
	s.mu.Unlock()
	return nil
}

// Len reports how many objects are stored, for test assertions.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// Has reports whether a storage key is occupied, for test assertions.
func (s *Store) Has(storageKey string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.data[storageKey]
	return ok
}

var _ object.ObjectStore = (*Store)(nil)
