package intake

import "context"

// Repo defines persistence for intake email addresses.
type Repo interface {
	Create(ctx context.Context, email IntakeEmail) error
	GetByAddress(ctx context.Context, address string) (IntakeEmail, error)
	GetByID(ctx context.Context, organizationID, id string) (IntakeEmail, error)
	ListByOrganization(ctx context.Context, organizationID string) ([]IntakeEmail, error)
	CountByOrganization(ctx context.Context, organizationID string) (int, error)
	SetEnabled(ctx context.Context, organizationID, id string, enabled bool) error
	SetAllowedOrigins(ctx context.Context, organizationID, id string, origins []string) error
	Delete(ctx context.Context, organizationID, id string) error
}
