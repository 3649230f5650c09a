package intake

import (
	"context"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu     sync.RWMutex
	emails []IntakeEmail
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{}
}

// Create stores a new intake email.
func (r *MemoryRepo) Create(ctx context.Context, email IntakeEmail) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.emails = append(r.emails, email)
	return nil
}

// GetByAddress looks up an intake email by address, case-insensitively.
func (r *MemoryRepo) GetByAddress(ctx context.Context, address string) (IntakeEmail, error) {
	if err := ctx.Err(); err != nil {
		return IntakeEmail{}, err
	}
	address = NormalizeAddress(address)
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.emails {
		if NormalizeAddress(r.emails[i].EmailAddress) == address {
			return r.emails[i], nil
		}
	}
	return IntakeEmail{}, ErrIntakeEmailNotFound
}

// GetByID looks up an intake email by ID within an organization.
func (r *MemoryRepo) GetByID(ctx context.Context, organizationID, id string) (IntakeEmail, error) {
	if err := ctx.Err(); err != nil {
		return IntakeEmail{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for i := range r.emails {
		if r.emails[i].OrganizationID == organizationID && r.emails[i].ID == id {
			return r.emails[i], nil
		}
	}
	return IntakeEmail{}, ErrIntakeEmailNotFound
}

// ListByOrganization returns the organization's intake emails.
func (r *MemoryRepo) ListByOrganization(ctx context.Context, organizationID string) ([]IntakeEmail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []IntakeEmail
	for i := range r.emails {
		if r.emails[i].OrganizationID == organizationID {
			out = append(out, r.emails[i])
		}
	}
	return out, nil
}

// CountByOrganization counts the organization's intake emails.
func (r *MemoryRepo) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	count := 0
	for i := range r.emails {
		if r.emails[i].OrganizationID == organizationID {
			count++
		}
	}
	return count, nil
}

// SetEnabled toggles an intake email.
func (r *MemoryRepo) SetEnabled(ctx context.Context, organizationID, id string, enabled bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.emails {
		if r.emails[i].OrganizationID == organizationID && r.emails[i].ID == id {
			r.emails[i].IsEnabled = enabled
			r.emails[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrIntakeEmailNotFound
}

// SetAllowedOrigins replaces an intake email's sender allow-list.
func (r *MemoryRepo) SetAllowedOrigins(ctx context.Context, organizationID, id string, origins []string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.emails {
		if r.emails[i].OrganizationID == organizationID && r.emails[i].ID == id {
			r.emails[i].AllowedOrigins = append([]string(nil), origins...)
			r.emails[i].UpdatedAt = time.Now().UTC()
			return nil
		}
	}
	return ErrIntakeEmailNotFound
}

// Delete removes an intake email.
func (r *MemoryRepo) Delete(ctx context.Context, organizationID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.emails {
		if r.emails[i].OrganizationID == organizationID && r.emails[i].ID == id {
			r.emails = append(r.emails[:i:i], r.emails[i+1:]...)
			return nil
		}
	}
	return ErrIntakeEmailNotFound
}

var _ Repo = (*MemoryRepo)(nil)
