package organizations

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// UsageSource reports the document footprint of an organization. The
// documents repository implements it.
type UsageSource interface {
	GetOrganizationUsage(ctx context.Context, organizationID string) (documentsCount int64, totalSizeBytes int64, err error)
}

// Service manages tenants and answers capacity questions for document and
// intake email creation.
type Service struct {
	Repo  Repo
	Usage UsageSource

	// GenerateID and Now are overridable for tests.
	GenerateID func() string
	Now        func() time.Time
}

// EnsureCanCreateDocument checks the organization's plan limits against its
// current usage plus the incoming document size. It runs before any hashing
// or storage write to avoid wasted I/O on over-quota uploads.
func (s *Service) EnsureCanCreateDocument(ctx context.Context, organizationID string, incomingSize int64) error {
	org, err := s.Repo.GetByID(ctx, organizationID)
	if err != nil {
		return err
	}
	plan := PlanByID(org.PlanID)

	count, totalBytes, err := s.Usage.GetOrganizationUsage(ctx, organizationID)
	if err != nil {
		return fmt.Errorf("organization usage: %w", err)
	}

	if plan.MaxDocumentsCount > 0 && count+1 > plan.MaxDocumentsCount {
		return fmt.Errorf("%w: document count %d at plan limit %d", ErrQuotaExceeded, count, plan.MaxDocumentsCount)
	}
	if plan.MaxStorageBytes > 0 && totalBytes+incomingSize > plan.MaxStorageBytes {
		return fmt.Errorf("%w: storage %d+%d over plan limit %d", ErrQuotaExceeded, totalBytes, incomingSize, plan.MaxStorageBytes)
	}
	return nil
}

// MaxIntakeEmails returns the plan's intake email allowance for the organization.
func (s *Service) MaxIntakeEmails(ctx context.Context, organizationID string) (int, error) {
	org, err := s.Repo.GetByID(ctx, organizationID)
	if err != nil {
		return 0, err
	}
	return PlanByID(org.PlanID).MaxIntakeEmailsCount, nil
}

// CreateOrganization creates a tenant. Unknown plan IDs fall back to free.
func (s *Service) CreateOrganization(ctx context.Context, name, planID string) (Organization, error) {
	if name == "" {
		return Organization{}, fmt.Errorf("organization name required")
	}
	now := s.now()
	org := Organization{
		ID:        s.newID(),
		Name:      name,
		PlanID:    PlanByID(planID).ID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Repo.Create(ctx, org); err != nil {
		return Organization{}, err
	}
	return org, nil
}

// GetOrganization returns a tenant by ID.
func (s *Service) GetOrganization(ctx context.Context, organizationID string) (Organization, error) {
	return s.Repo.GetByID(ctx, organizationID)
}

// Usage reports an organization's document footprint next to its plan limits.
type Usage struct {
	DocumentsCount int64
	TotalSizeBytes int64
	Plan           Plan
}

// GetUsage returns current usage and the plan it counts against.
func (s *Service) GetUsage(ctx context.Context, organizationID string) (Usage, error) {
	org, err := s.Repo.GetByID(ctx, organizationID)
	if err != nil {
		return Usage{}, err
	}
	count, totalBytes, err := s.Usage.GetOrganizationUsage(ctx, organizationID)
	if err != nil {
		return Usage{}, fmt.Errorf("organization usage: %w", err)
	}
	return Usage{
		DocumentsCount: count,
		TotalSizeBytes: totalBytes,
		Plan:           PlanByID(org.PlanID),
	}, nil
}

func (s *Service) newID() string {
	if s.GenerateID != nil {
		return s.GenerateID()
	}
	return uuid.NewString()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
