package organizations

import (
	"context"
	"database/sql"
	"errors"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts a new organization.
func (r *PGRepo) Create(ctx context.Context, org Organization) error {
	const query = `
INSERT INTO organizations (id, name, plan_id, created_at, updated_at)
VALUES ($1, $2, $3, $4, $4)`

	planID := org.PlanID
	if planID == "" {
		planID = PlanFree
	}

	_, err := r.DB.ExecContext(ctx, query, org.ID, org.Name, planID, org.CreatedAt)
	return err
}

// GetByID returns an organization by ID.
func (r *PGRepo) GetByID(ctx context.Context, organizationID string) (Organization, error) {
	const query = `
SELECT id, name, plan_id, created_at, updated_at
FROM organizations
WHERE id = $1`

	var org Organization
	err := r.DB.QueryRowContext(ctx, query, organizationID).Scan(
		&org.ID,
		&org.Name,
		&org.PlanID,
		&org.CreatedAt,
		&org.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Organization{}, ErrNotFound
		}
		return Organization{}, err
	}
	return org, nil
}

var _ Repo = (*PGRepo)(nil)
