package documents

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu   sync.RWMutex
	data map[string][]Document // organizationID -> documents
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data: make(map[string][]Document),
	}
}

// Create stores a new document, enforcing the one-live-document-per-hash
// rule the way the Postgres partial unique index does.
func (r *MemoryRepo) Create(ctx context.Context, doc Document) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.data[doc.OrganizationID] {
		if !existing.IsDeleted && existing.ContentHash == doc.ContentHash {
			return ErrDocumentAlreadyExists
		}
	}
	r.data[doc.OrganizationID] = append(r.data[doc.OrganizationID], doc)
	return nil
}

// GetByID returns a document by ID, trashed or not.
func (r *MemoryRepo) GetByID(ctx context.Context, organizationID, documentID string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	docs := r.data[organizationID]
	for i := range docs {
		if docs[i].ID == documentID {
			return docs[i], nil
		}
	}
	return Document{}, ErrDocumentNotFound
}

// GetByHash returns the document with the given content hash, trashed or
// not. Live documents win over trashed ones when both exist.
func (r *MemoryRepo) GetByHash(ctx context.Context, organizationID, contentHash string) (Document, error) {
	if err := ctx.Err(); err != nil {
		return Document{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var trashed *Document
	docs := r.data[organizationID]
	for i := range docs {
		if docs[i].ContentHash != contentHash {
			continue
		}
		if !docs[i].IsDeleted {
			return docs[i], nil
		}
		if trashed == nil {
			trashed = &docs[i]
		}
	}
	if trashed != nil {
		return *trashed, nil
	}
	return Document{}, ErrDocumentNotFound
}

// List returns live documents newest-first, honoring limit/offset.
func (r *MemoryRepo) List(ctx context.Context, organizationID string, limit, offset int) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}
	if limit < 0 {
		limit = 0
	}

	r.mu.RLock()
	var docs []Document
	for _, doc := range r.data[organizationID] {
		if !doc.IsDeleted {
			docs = append(docs, doc)
		}
	}
	r.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].CreatedAt.After(docs[j].CreatedAt)
	})

	if offset >= len(docs) {
		return []Document{}, nil
	}
	end := len(docs)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return docs[offset:end], nil
}

// ListTrash returns trashed documents for an organization.
func (r *MemoryRepo) ListTrash(ctx context.Context, organizationID string) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, doc := range r.data[organizationID] {
		if doc.IsDeleted {
			out = append(out, doc)
		}
	}
	return out, nil
}

// ListExpiredTrash returns trashed documents deleted before olderThan, across
// all organizations.
func (r *MemoryRepo) ListExpiredTrash(ctx context.Context, olderThan time.Time) ([]Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []Document
	for _, docs := range r.data {
		for _, doc := range docs {
			if doc.IsDeleted && doc.DeletedAt != nil && doc.DeletedAt.Before(olderThan) {
				out = append(out, doc)
			}
		}
	}
	return out, nil
}

// SoftDelete moves a live document to the trash.
func (r *MemoryRepo) SoftDelete(ctx context.Context, organizationID, documentID string, deletedAt time.Time) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[organizationID]
	for i := range docs {
		if docs[i].ID == documentID && !docs[i].IsDeleted {
			docs[i].IsDeleted = true
			docs[i].DeletedAt = &deletedAt
			docs[i].UpdatedAt = deletedAt
			return nil
		}
	}
	return ErrDocumentNotFound
}

// Restore moves a trashed document back to the live set.
func (r *MemoryRepo) Restore(ctx context.Context, organizationID, documentID, newName, createdBy string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[organizationID]
	for i := range docs {
		if docs[i].ID != documentID || !docs[i].IsDeleted {
			continue
		}
		for j := range docs {
			if j != i && !docs[j].IsDeleted && docs[j].ContentHash == docs[i].ContentHash {
				return ErrDocumentAlreadyExists
			}
		}
		if newName != "" {
			docs[i].Name = newName
			docs[i].OriginalName = newName
		}
		if createdBy != "" {
			docs[i].CreatedBy = createdBy
		}
		docs[i].IsDeleted = false
		docs[i].DeletedAt = nil
		docs[i].UpdatedAt = time.Now().UTC()
		return nil
	}
	return ErrDocumentNotFound
}

// HardDelete removes the document record entirely.
func (r *MemoryRepo) HardDelete(ctx context.Context, organizationID, documentID string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	docs := r.data[organizationID]
	for i := range docs {
		if docs[i].ID == documentID {
			r.data[organizationID] = append(docs[:i:i], docs[i+1:]...)
			return nil
		}
	}
	return ErrDocumentNotFound
}

// GetOrganizationUsage counts live documents and their total size.
func (r *MemoryRepo) GetOrganizationUsage(ctx context.Context, organizationID string) (int64, int64, error) {
	if err := ctx.Err(); err != nil {
		return 0, 0, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var count, total int64
	for _, doc := range r.data[organizationID] {
		if !doc.IsDeleted {
			count++
			total += doc.SizeBytes
		}
	}
	return count, total, nil
}

var _ Repo = (*MemoryRepo)(nil)
