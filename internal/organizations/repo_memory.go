package organizations

import (
	"context"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string]Organization
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{data: make(map[string]Organization)}
}

// Create stores an organization.
func (r *MemoryRepo) Create(ctx context.Context, org Organization) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data[org.ID] = org
	return nil
}

// GetByID returns an organization by ID.
func (r *MemoryRepo) GetByID(ctx context.Context, organizationID string) (Organization, error) {
	if err := ctx.Err(); err != nil {
		return Organization{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	org, ok := r.data[organizationID]
	if !ok {
		return Organization{}, ErrNotFound
	}
	return org, nil
}

var _ Repo = (*MemoryRepo)(nil)
