package intake

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// PlanLimiter answers how many intake addresses an organization may hold.
// The organizations service implements it; zero means unlimited.
type PlanLimiter interface {
	MaxIntakeEmails(ctx context.Context, organizationID string) (int, error)
}

// Service contains business logic for managing intake email addresses.
type Service struct {
	Repo   Repo
	Limits PlanLimiter
	Domain string

	// GenerateID and Now are overridable for tests.
	GenerateID func() string
	Now        func() time.Time
}

// CreateIntakeEmail generates a new address for the organization, enforcing
// the plan's intake address allowance.
func (s *Service) CreateIntakeEmail(ctx context.Context, organizationID string, allowedOrigins []string) (IntakeEmail, error) {
	if s.Limits != nil {
		max, err := s.Limits.MaxIntakeEmails(ctx, organizationID)
		if err != nil {
			return IntakeEmail{}, err
		}
		if max > 0 {
			count, err := s.Repo.CountByOrganization(ctx, organizationID)
			if err != nil {
				return IntakeEmail{}, err
			}
			if count >= max {
				return IntakeEmail{}, fmt.Errorf("%w: plan allows %d", ErrIntakeLimitReached, max)
			}
		}
	}

	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if normalized := NormalizeAddress(origin); normalized != "" {
			origins = append(origins, normalized)
		}
	}

	now := s.now()
	email := IntakeEmail{
		ID:             s.newID(),
		OrganizationID: organizationID,
		EmailAddress:   GenerateEmailAddress(s.Domain),
		IsEnabled:      true,
		AllowedOrigins: origins,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := s.Repo.Create(ctx, email); err != nil {
		return IntakeEmail{}, err
	}
	return email, nil
}

// ListIntakeEmails returns the organization's intake addresses.
func (s *Service) ListIntakeEmails(ctx context.Context, organizationID string) ([]IntakeEmail, error) {
	return s.Repo.ListByOrganization(ctx, organizationID)
}

// SetEnabled toggles an intake address.
func (s *Service) SetEnabled(ctx context.Context, organizationID, id string, enabled bool) error {
	return s.Repo.SetEnabled(ctx, organizationID, id, enabled)
}

// SetAllowedOrigins replaces an intake address's sender allow-list. Origins
// are normalized; empties are dropped. An empty list closes the address to
// all senders.
func (s *Service) SetAllowedOrigins(ctx context.Context, organizationID, id string, allowedOrigins []string) error {
	origins := make([]string, 0, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		if normalized := NormalizeAddress(origin); normalized != "" {
			origins = append(origins, normalized)
		}
	}
	return s.Repo.SetAllowedOrigins(ctx, organizationID, id, origins)
}

// DeleteIntakeEmail removes an intake address. Mail sent to it afterwards is
// dropped by the router.
func (s *Service) DeleteIntakeEmail(ctx context.Context, organizationID, id string) error {
	return s.Repo.Delete(ctx, organizationID, id)
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
