package documents

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const documentColumns = `id, organization_id, name, original_name, mime_type, size_bytes, content, content_hash, storage_key, created_by, is_deleted, deleted_at, created_at, updated_at`

// Create inserts a new document. A unique-violation on the live hash index
// maps to ErrDocumentAlreadyExists so concurrent duplicate uploads lose
// cleanly.
func (r *PGRepo) Create(ctx context.Context, doc Document) error {
	const query = `
INSERT INTO documents (
    id,
    organization_id,
    name,
    original_name,
    mime_type,
    size_bytes,
    content,
    content_hash,
    storage_key,
    created_by,
    is_deleted,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, FALSE, $11, $12)`

	originalName := doc.OriginalName
	if originalName == "" {
		originalName = doc.Name
	}

	var createdBy sql.NullString
	if doc.CreatedBy != "" {
		createdBy = sql.NullString{String: doc.CreatedBy, Valid: true}
	}

	_, err := r.DB.ExecContext(
		ctx,
		query,
		doc.ID,
		doc.OrganizationID,
		doc.Name,
		originalName,
		doc.MimeType,
		doc.SizeBytes,
		doc.Content,
		doc.ContentHash,
		doc.StorageKey,
		createdBy,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if isUniqueViolation(err) {
		return ErrDocumentAlreadyExists
	}
	return err
}

// GetByID fetches a document by ID, trashed or not.
func (r *PGRepo) GetByID(ctx context.Context, organizationID, documentID string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE organization_id = $1 AND id = $2
LIMIT 1`
	return r.queryOne(ctx, query, organizationID, documentID)
}

// GetByHash fetches the document with the given content hash. Live documents
// are preferred over trashed ones with the same hash.
func (r *PGRepo) GetByHash(ctx context.Context, organizationID, contentHash string) (Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE organization_id = $1 AND content_hash = $2
ORDER BY is_deleted ASC, created_at DESC
LIMIT 1`
	return r.queryOne(ctx, query, organizationID, contentHash)
}

// List returns live documents newest-first.
func (r *PGRepo) List(ctx context.Context, organizationID string, limit, offset int) ([]Document, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE organization_id = $1 AND NOT is_deleted
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`
	return r.queryMany(ctx, query, organizationID, limit, offset)
}

// ListTrash returns trashed documents for an organization, oldest deletion
// first.
func (r *PGRepo) ListTrash(ctx context.Context, organizationID string) ([]Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE organization_id = $1 AND is_deleted
ORDER BY deleted_at ASC`
	return r.queryMany(ctx, query, organizationID)
}

// ListExpiredTrash returns trashed documents deleted before olderThan, across
// all organizations.
func (r *PGRepo) ListExpiredTrash(ctx context.Context, olderThan time.Time) ([]Document, error) {
	const query = `
SELECT ` + documentColumns + `
FROM documents
WHERE is_deleted AND deleted_at < $1
ORDER BY deleted_at ASC`
	return r.queryMany(ctx, query, olderThan)
}

// SoftDelete moves a live document to the trash.
func (r *PGRepo) SoftDelete(ctx context.Context, organizationID, documentID string, deletedAt time.Time) error {
	const query = `
UPDATE documents
SET is_deleted = TRUE, deleted_at = $1, updated_at = $1
WHERE organization_id = $2 AND id = $3 AND NOT is_deleted`
	res, err := r.DB.ExecContext(ctx, query, deletedAt, organizationID, documentID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// Restore moves a trashed document back to the live set. A unique-violation
// means another live document with the same hash appeared since deletion.
func (r *PGRepo) Restore(ctx context.Context, organizationID, documentID, newName, createdBy string) error {
	const query = `
UPDATE documents
SET is_deleted = FALSE,
    deleted_at = NULL,
    name = COALESCE(NULLIF($3, ''), name),
    original_name = COALESCE(NULLIF($3, ''), original_name),
    created_by = COALESCE(NULLIF($4, ''), created_by),
    updated_at = now()
WHERE organization_id = $1 AND id = $2 AND is_deleted`
	res, err := r.DB.ExecContext(ctx, query, organizationID, documentID, newName, createdBy)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDocumentAlreadyExists
		}
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// HardDelete removes the document record entirely.
func (r *PGRepo) HardDelete(ctx context.Context, organizationID, documentID string) error {
	const query = `
DELETE FROM documents
WHERE organization_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, organizationID, documentID)
	if err != nil {
		return err
	}
	affected, _ := res.RowsAffected()
	if affected == 0 {
		return ErrDocumentNotFound
	}
	return nil
}

// GetOrganizationUsage counts live documents and their total size.
func (r *PGRepo) GetOrganizationUsage(ctx context.Context, organizationID string) (int64, int64, error) {
	const query = `
SELECT COUNT(*), COALESCE(SUM(size_bytes), 0)
FROM documents
WHERE organization_id = $1 AND NOT is_deleted`
	var count, total int64
	if err := r.DB.QueryRowContext(ctx, query, organizationID).Scan(&count, &total); err != nil {
		return 0, 0, err
	}
	return count, total, nil
}

func (r *PGRepo) queryOne(ctx context.Context, query string, args ...any) (Document, error) {
	doc, err := scanDocument(r.DB.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Document{}, ErrDocumentNotFound
		}
		return Document{}, err
	}
	return doc, nil
}

func (r *PGRepo) queryMany(ctx context.Context, query string, args ...any) ([]Document, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, doc)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (Document, error) {
	var doc Document
	var createdBy sql.NullString
	var deletedAt sql.NullTime
	err := row.Scan(
		&doc.ID,
		&doc.OrganizationID,
		&doc.Name,
		&doc.OriginalName,
		&doc.MimeType,
		&doc.SizeBytes,
		&doc.Content,
		&doc.ContentHash,
		&doc.StorageKey,
		&createdBy,
		&doc.IsDeleted,
		&deletedAt,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if err != nil {
		return Document{}, err
	}
	if createdBy.Valid {
		doc.CreatedBy = createdBy.String
	}
	if deletedAt.Valid {
		doc.DeletedAt = &deletedAt.Time
	}
	return doc, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

var _ Repo = (*PGRepo)(nil)
