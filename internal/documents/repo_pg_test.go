package documents

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
)

func newPGRepo(t *testing.T) (*PGRepo, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return &PGRepo{DB: db}, mock
}

func TestPGRepoCreate(t *testing.T) {
	repo, mock := newPGRepo(t)

	now := time.Now().UTC()
	doc := Document{
		ID:             "doc-1",
		OrganizationID: "org-1",
		Name:           "report.txt",
		OriginalName:   "report.txt",
		MimeType:       "text/plain",
		SizeBytes:      42,
		Content:        "report body",
		ContentHash:    "deadbeef",
		StorageKey:     "org-1/doc-1/report.txt",
		CreatedBy:      "user-1",
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	mock.ExpectExec("INSERT INTO documents").
		WithArgs(
			doc.ID,
			doc.OrganizationID,
			doc.Name,
			doc.OriginalName,
			doc.MimeType,
			doc.SizeBytes,
			doc.Content,
			doc.ContentHash,
			doc.StorageKey,
			doc.CreatedBy,
			doc.CreatedAt,
			doc.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), doc); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoCreateMapsUniqueViolation(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec("INSERT INTO documents").
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "documents_org_hash_live_idx"})

	err := repo.Create(context.Background(), Document{ID: "doc-1", OrganizationID: "org-1"})
	if !errors.Is(err, ErrDocumentAlreadyExists) {
		t.Fatalf("expected ErrDocumentAlreadyExists, got %v", err)
	}
}

func TestPGRepoGetByIDNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("org-1", "missing").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	if _, err := repo.GetByID(context.Background(), "org-1", "missing"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestPGRepoGetByHashScansDocument(t *testing.T) {
	repo, mock := newPGRepo(t)

	now := time.Now().UTC()
	deletedAt := now.Add(-time.Hour)
	rows := sqlmock.NewRows([]string{
		"id", "organization_id", "name", "original_name", "mime_type", "size_bytes",
		"content", "content_hash", "storage_key", "created_by", "is_deleted",
		"deleted_at", "created_at", "updated_at",
	}).AddRow(
		"doc-1", "org-1", "report.txt", "Report Final.txt", "text/plain", int64(42),
		"body", "deadbeef", "org-1/doc-1/report.txt", nil, true,
		deletedAt, now, now,
	)

	mock.ExpectQuery("SELECT (.+) FROM documents").
		WithArgs("org-1", "deadbeef").
		WillReturnRows(rows)

	doc, err := repo.GetByHash(context.Background(), "org-1", "deadbeef")
	if err != nil {
		t.Fatalf("GetByHash: %v", err)
	}
	if !doc.IsDeleted || doc.DeletedAt == nil {
		t.Fatal("trashed flags not scanned")
	}
	if doc.CreatedBy != "" {
		t.Fatalf("NULL created_by should scan empty, got %q", doc.CreatedBy)
	}
}

func TestPGRepoSoftDeleteNotFound(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec("UPDATE documents").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.SoftDelete(context.Background(), "org-1", "missing", time.Now().UTC())
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestPGRepoRestoreMapsUniqueViolation(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectExec("UPDATE documents").
		WillReturnError(&pgconn.PgError{Code: "23505"})

	err := repo.Restore(context.Background(), "org-1", "doc-1", "renamed.txt", "user-2")
	if !errors.Is(err, ErrDocumentAlreadyExists) {
		t.Fatalf("expected ErrDocumentAlreadyExists, got %v", err)
	}
}

func TestPGRepoGetOrganizationUsage(t *testing.T) {
	repo, mock := newPGRepo(t)

	mock.ExpectQuery("SELECT COUNT").
		WithArgs("org-1").
		WillReturnRows(sqlmock.NewRows([]string{"count", "sum"}).AddRow(int64(3), int64(1024)))

	count, total, err := repo.GetOrganizationUsage(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("GetOrganizationUsage: %v", err)
	}
	if count != 3 || total != 1024 {
		t.Fatalf("got count=%d total=%d", count, total)
	}
}
