package intake

import (
	"context"
	"database/sql"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

// Create inserts an intake email with its allowed origins in one transaction.
func (r *PGRepo) Create(ctx context.Context, email IntakeEmail) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const emailQuery = `
INSERT INTO intake_emails (id, organization_id, email_address, is_enabled, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6)`
	_, err = tx.ExecContext(ctx, emailQuery,
		email.ID,
		email.OrganizationID,
		NormalizeAddress(email.EmailAddress),
		email.IsEnabled,
		email.CreatedAt,
		email.UpdatedAt,
	)
	if err != nil {
		return err
	}

	const originQuery = `
INSERT INTO intake_email_allowed_origins (intake_email_id, origin)
VALUES ($1, $2)`
	for _, origin := range email.AllowedOrigins {
		if _, err := tx.ExecContext(ctx, originQuery, email.ID, NormalizeAddress(origin)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetByAddress looks up an intake email by address. Addresses are stored
// lowercased, so the lookup normalizes first.
func (r *PGRepo) GetByAddress(ctx context.Context, address string) (IntakeEmail, error) {
	const query = `
SELECT id, organization_id, email_address, is_enabled, created_at, updated_at
FROM intake_emails
WHERE email_address = $1
LIMIT 1`
	return r.queryOne(ctx, query, NormalizeAddress(address))
}

// GetByID looks up an intake email by ID within an organization.
func (r *PGRepo) GetByID(ctx context.Context, organizationID, id string) (IntakeEmail, error) {
	const query = `
SELECT id, organization_id, email_address, is_enabled, created_at, updated_at
FROM intake_emails
WHERE organization_id = $1 AND id = $2
LIMIT 1`
	return r.queryOne(ctx, query, organizationID, id)
}

// ListByOrganization returns the organization's intake emails.
func (r *PGRepo) ListByOrganization(ctx context.Context, organizationID string) ([]IntakeEmail, error) {
	const query = `
SELECT id, organization_id, email_address, is_enabled, created_at, updated_at
FROM intake_emails
WHERE organization_id = $1
ORDER BY created_at ASC`
	rows, err := r.DB.QueryContext(ctx, query, organizationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []IntakeEmail
	for rows.Next() {
		var email IntakeEmail
		if err := rows.Scan(&email.ID, &email.OrganizationID, &email.EmailAddress, &email.IsEnabled, &email.CreatedAt, &email.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, email)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range out {
		origins, err := r.loadOrigins(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].AllowedOrigins = origins
	}
	return out, nil
}

// CountByOrganization counts the organization's intake emails.
func (r *PGRepo) CountByOrganization(ctx context.Context, organizationID string) (int, error) {
	const query = `
SELECT COUNT(*)
FROM intake_emails
WHERE organization_id = $1`
	var count int
	if err := r.DB.QueryRowContext(ctx, query, organizationID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// SetEnabled toggles an intake email.
func (r *PGRepo) SetEnabled(ctx context.Context, organizationID, id string, enabled bool) error {
	const query = `
UPDATE intake_emails
SET is_enabled = $1, updated_at = $2
WHERE organization_id = $3 AND id = $4`
	res, err := r.DB.ExecContext(ctx, query, enabled, time.Now().UTC(), organizationID, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrIntakeEmailNotFound
	}
	return nil
}

// SetAllowedOrigins replaces an intake email's sender allow-list in one
// transaction.
func (r *PGRepo) SetAllowedOrigins(ctx context.Context, organizationID, id string, origins []string) error {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	const touchQuery = `
UPDATE intake_emails
SET updated_at = $1
WHERE organization_id = $2 AND id = $3`
	res, err := tx.ExecContext(ctx, touchQuery, time.Now().UTC(), organizationID, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrIntakeEmailNotFound
	}

	const clearQuery = `
DELETE FROM intake_email_allowed_origins
WHERE intake_email_id = $1`
	if _, err := tx.ExecContext(ctx, clearQuery, id); err != nil {
		return err
	}

	const originQuery = `
INSERT INTO intake_email_allowed_origins (intake_email_id, origin)
VALUES ($1, $2)`
	for _, origin := range origins {
		if _, err := tx.ExecContext(ctx, originQuery, id, NormalizeAddress(origin)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// Delete removes an intake email. Allowed origins go with it via the cascade.
func (r *PGRepo) Delete(ctx context.Context, organizationID, id string) error {
	const query = `
DELETE FROM intake_emails
WHERE organization_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, organizationID, id)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrIntakeEmailNotFound
	}
	return nil
}

func (r *PGRepo) queryOne(ctx context.Context, query string, args ...any) (IntakeEmail, error) {
	var email IntakeEmail
	err := r.DB.QueryRowContext(ctx, query, args...).Scan(
		&email.ID,
		&email.OrganizationID,
		&email.EmailAddress,
		&email.IsEnabled,
		&email.CreatedAt,
		&email.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return IntakeEmail{}, ErrIntakeEmailNotFound
		}
		return IntakeEmail{}, err
	}
	origins, err := r.loadOrigins(ctx, email.ID)
	if err != nil {
		return IntakeEmail{}, err
	}
	email.AllowedOrigins = origins
	return email, nil
}

func (r *PGRepo) loadOrigins(ctx context.Context, intakeEmailID string) ([]string, error) {
	const query = `
SELECT origin
FROM intake_email_allowed_origins
WHERE intake_email_id = $1
ORDER BY origin ASC`
	rows, err := r.DB.QueryContext(ctx, query, intakeEmailID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var origin string
		if err := rows.Scan(&origin); err != nil {
			return nil, err
		}
		out = append(out, origin)
	}
	return out, rows.Err()
}

var _ Repo = (*PGRepo)(nil)
