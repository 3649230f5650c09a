package organizations

import "context"

// Repo defines persistence operations for organizations.
type Repo interface {
	Create(ctx context.Context, org Organization) error
	GetByID(ctx context.Context, organizationID string) (Organization, error)
}
