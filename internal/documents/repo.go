package documents

import (
	"context"
	"time"
)

// Repo defines persistence operations for documents. Lookups are scoped to an
// organization and include trashed documents unless noted otherwise.
type Repo interface {
	Create(ctx context.Context, doc Document) error
	GetByID(ctx context.Context, organizationID, documentID string) (Document, error)
	GetByHash(ctx context.Context, organizationID, contentHash string) (Document, error)
	List(ctx context.Context, organizationID string, limit, offset int) ([]Document, error)
	ListTrash(ctx context.Context, organizationID string) ([]Document, error)
	ListExpiredTrash(ctx context.Context, olderThan time.Time) ([]Document, error)
	SoftDelete(ctx context.Context, organizationID, documentID string, deletedAt time.Time) error
	// Restore undeletes a trashed document. Non-empty newName and createdBy
	// replace the stored values; empty strings leave them unchanged.
	Restore(ctx context.Context, organizationID, documentID, newName, createdBy string) error
	HardDelete(ctx context.Context, organizationID, documentID string) error
	GetOrganizationUsage(ctx context.Context, organizationID string) (documentsCount int64, totalSizeBytes int64, err error)
}
