package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"docvault-backend/internal/shared/metrics"
	"docvault-backend/internal/shared/storage/object"
	"docvault-backend/internal/shared/telemetry"
	"docvault-backend/internal/shared/util"
	"docvault-backend/internal/tracking"
)

// trashDeleteConcurrency bounds the parallel hard deletes when emptying the
// trash, so one organization cannot flood object storage.
const trashDeleteConcurrency = 10

// CapacityChecker decides whether an organization may take on another
// document. The organizations service implements it.
type CapacityChecker interface {
	EnsureCanCreateDocument(ctx context.Context, organizationID string, incomingSize int64) error
}

// Tagger manages tag assignments for documents. The tagging package
// implements it.
type Tagger interface {
	ApplyRules(ctx context.Context, doc Document) error
	RemoveAllFromDocument(ctx context.Context, organizationID, documentID string) error
}

// ExtractFunc extracts searchable plain text from raw file bytes.
type ExtractFunc func(ctx context.Context, data []byte, mimeType, fileName string) (string, error)

// Service contains business logic for the document lifecycle.
type Service struct {
	Repo     Repo
	Store    object.ObjectStore
	Capacity CapacityChecker
	Tags     Tagger
	Tracking tracking.Sink
	Extract  ExtractFunc

	// GenerateID and Now are overridable for tests.
	GenerateID func() string
	Now        func() time.Time
}

// CreateDocumentInput carries everything needed to ingest a file. Size is the
// declared size used for the quota check before any bytes are read; the
// recorded size comes from the bytes actually ingested.
type CreateDocumentInput struct {
	OrganizationID string
	FileName       string
	MimeType       string
	Size           int64
	Body           io.Reader
	CreatedBy      string
}

// CreateDocument ingests a file. Uploads whose content hash matches a live
// document fail with ErrDocumentAlreadyExists; a match against a trashed
// document restores it instead of writing a second copy.
func (s *Service) CreateDocument(ctx context.Context, in CreateDocumentInput) (Document, error) {
	start := time.Now()

	if in.OrganizationID == "" {
		return Document{}, fmt.Errorf("%w: organization id required", ErrInvalidInput)
	}
	if in.FileName == "" {
		return Document{}, fmt.Errorf("%w: file name required", ErrInvalidInput)
	}
	if in.Body == nil {
		return Document{}, fmt.Errorf("%w: body required", ErrInvalidInput)
	}
	name, err := util.SanitizeFileName(in.FileName)
	if err != nil {
		return Document{}, fmt.Errorf("%w: %s", ErrInvalidInput, err)
	}

	// Quota runs on the declared size so over-limit uploads are refused
	// before any hashing or storage I/O.
	if err := s.Capacity.EnsureCanCreateDocument(ctx, in.OrganizationID, in.Size); err != nil {
		return Document{}, err
	}

	data, err := io.ReadAll(in.Body)
	if err != nil {
		return Document{}, fmt.Errorf("read document body: %w", err)
	}

	hash := util.HashBytes(data)

	existing, err := s.Repo.GetByHash(ctx, in.OrganizationID, hash)
	switch {
	case err == nil && !existing.IsDeleted:
		metrics.IncDocumentDeduplicated()
		return existing, ErrDocumentAlreadyExists
	case err == nil && existing.IsDeleted:
		return s.restoreDeduplicated(ctx, existing, name, in)
	case !errors.Is(err, ErrDocumentNotFound):
		return Document{}, fmt.Errorf("lookup by hash: %w", err)
	}

	content := s.extractText(ctx, data, in.MimeType, in.FileName)

	now := s.now()
	doc := Document{
		ID:             s.newID(),
		OrganizationID: in.OrganizationID,
		Name:           name,
		OriginalName:   in.FileName,
		MimeType:       in.MimeType,
		SizeBytes:      int64(len(data)),
		Content:        content,
		ContentHash:    hash,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	doc.StorageKey = BuildStorageKey(doc.OrganizationID, doc.ID, name)

	if _, err := s.Store.Save(ctx, doc.StorageKey, bytes.NewReader(data)); err != nil {
		return Document{}, fmt.Errorf("store document: %w", err)
	}

	if err := s.Repo.Create(ctx, doc); err != nil {
		// The blob was written before the record; remove it so a failed
		// create does not leak storage.
		if delErr := s.Store.Delete(ctx, doc.StorageKey); delErr != nil {
			telemetry.Warn("orphaned blob after failed create", map[string]any{
				"storage_key": doc.StorageKey,
				"error":       delErr.Error(),
			})
		}
		return Document{}, err
	}

	s.applyTags(ctx, doc)
	s.capture(ctx, in.CreatedBy, "document_created")
	metrics.IncDocumentCreated()
	metrics.ObserveDocumentCreateDurationMs(float64(time.Since(start).Milliseconds()))

	return doc, nil
}

// restoreDeduplicated brings a trashed document back when the same content is
// uploaded again. Stale tag assignments are cleared before the record goes
// live so the document never reappears with tags from its previous life. The
// record takes the new upload's name and actor; the stored bytes are reused.
func (s *Service) restoreDeduplicated(ctx context.Context, doc Document, name string, in CreateDocumentInput) (Document, error) {
	if s.Tags != nil {
		if err := s.Tags.RemoveAllFromDocument(ctx, doc.OrganizationID, doc.ID); err != nil {
			return Document{}, fmt.Errorf("clear tags before restore: %w", err)
		}
	}
	if err := s.Repo.Restore(ctx, doc.OrganizationID, doc.ID, name, in.CreatedBy); err != nil {
		return Document{}, err
	}

	doc.Name = name
	doc.OriginalName = in.FileName
	if in.CreatedBy != "" {
		doc.CreatedBy = in.CreatedBy
	}
	doc.IsDeleted = false
	doc.DeletedAt = nil
	doc.UpdatedAt = s.now()

	s.applyTags(ctx, doc)
	s.capture(ctx, in.CreatedBy, "document_restored")
	metrics.IncDocumentRestored()
	metrics.IncDocumentDeduplicated()

	return doc, nil
}

// GetDocument returns a document by ID, trashed or not.
func (s *Service) GetDocument(ctx context.Context, organizationID, documentID string) (Document, error) {
	return s.Repo.GetByID(ctx, organizationID, documentID)
}

// OpenDocumentContent returns the raw file bytes for a document.
func (s *Service) OpenDocumentContent(ctx context.Context, organizationID, documentID string) (Document, io.ReadCloser, error) {
	doc, err := s.Repo.GetByID(ctx, organizationID, documentID)
	if err != nil {
		return Document{}, nil, err
	}
	rc, err := s.Store.Open(ctx, doc.StorageKey)
	if err != nil {
		if errors.Is(err, object.ErrFileNotFound) {
			return Document{}, nil, ErrDocumentNotFound
		}
		return Document{}, nil, err
	}
	return doc, rc, nil
}

// ListDocuments returns live documents newest-first.
func (s *Service) ListDocuments(ctx context.Context, organizationID string, limit, offset int) ([]Document, error) {
	return s.Repo.List(ctx, organizationID, limit, offset)
}

// ListTrashDocuments returns the organization's trash.
func (s *Service) ListTrashDocuments(ctx context.Context, organizationID string) ([]Document, error) {
	return s.Repo.ListTrash(ctx, organizationID)
}

// SoftDeleteDocument moves a document to the trash. The blob stays in object
// storage so a restore or a re-upload of the same content stays cheap.
func (s *Service) SoftDeleteDocument(ctx context.Context, organizationID, documentID, deletedBy string) error {
	if err := s.Repo.SoftDelete(ctx, organizationID, documentID, s.now()); err != nil {
		return err
	}
	s.capture(ctx, deletedBy, "document_trashed")
	metrics.IncDocumentTrashed()
	return nil
}

// RestoreDocument brings a trashed document back to the live set.
func (s *Service) RestoreDocument(ctx context.Context, organizationID, documentID, restoredBy string) (Document, error) {
	doc, err := s.Repo.GetByID(ctx, organizationID, documentID)
	if err != nil {
		return Document{}, err
	}
	if !doc.IsDeleted {
		return Document{}, ErrDocumentNotDeleted
	}
	if err := s.Repo.Restore(ctx, organizationID, documentID, "", ""); err != nil {
		return Document{}, err
	}
	doc.IsDeleted = false
	doc.DeletedAt = nil
	doc.UpdatedAt = s.now()

	s.capture(ctx, restoredBy, "document_restored")
	metrics.IncDocumentRestored()
	return doc, nil
}

// DeleteTrashDocument permanently deletes a single trashed document. Only
// trashed documents are eligible.
func (s *Service) DeleteTrashDocument(ctx context.Context, organizationID, documentID string) error {
	doc, err := s.Repo.GetByID(ctx, organizationID, documentID)
	if err != nil {
		return err
	}
	if !doc.IsDeleted {
		return ErrDocumentNotDeleted
	}
	return s.hardDelete(ctx, doc)
}

// DeleteAllTrashDocuments empties the organization's trash with bounded
// concurrency. Failures are per-document; the rest of the trash still gets
// deleted. It returns the number of documents deleted.
func (s *Service) DeleteAllTrashDocuments(ctx context.Context, organizationID string) (int, error) {
	docs, err := s.Repo.ListTrash(ctx, organizationID)
	if err != nil {
		return 0, err
	}

	sem := make(chan struct{}, trashDeleteConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var errs []error
	deleted := 0

	for _, doc := range docs {
		doc := doc
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			if err := s.hardDelete(ctx, doc); err != nil {
				mu.Lock()
				errs = append(errs, fmt.Errorf("document %s: %w", doc.ID, err))
				mu.Unlock()
				return
			}
			mu.Lock()
			deleted++
			mu.Unlock()
		}()
	}
	wg.Wait()

	return deleted, errors.Join(errs...)
}

// hardDelete removes the record and the blob concurrently. Both deletes are
// attempted even when one fails; the caller gets the joined errors.
func (s *Service) hardDelete(ctx context.Context, doc Document) error {
	var wg sync.WaitGroup
	var recordErr, storageErr error

	wg.Add(2)
	go func() {
		defer wg.Done()
		recordErr = s.Repo.HardDelete(ctx, doc.OrganizationID, doc.ID)
	}()
	go func() {
		defer wg.Done()
		storageErr = s.Store.Delete(ctx, doc.StorageKey)
	}()
	wg.Wait()

	if err := errors.Join(recordErr, storageErr); err != nil {
		return err
	}
	metrics.IncDocumentHardDeleted()
	return nil
}

func (s *Service) extractText(ctx context.Context, data []byte, mimeType, fileName string) string {
	if s.Extract == nil {
		return ""
	}
	content, err := s.Extract(ctx, data, mimeType, fileName)
	if err != nil {
		// Extraction is best-effort; an unreadable file is still stored.
		telemetry.Warn("text extraction failed", map[string]any{
			"file_name": fileName,
			"mime_type": mimeType,
			"error":     err.Error(),
		})
		return ""
	}
	return content
}

func (s *Service) applyTags(ctx context.Context, doc Document) {
	if s.Tags == nil {
		return
	}
	if err := s.Tags.ApplyRules(ctx, doc); err != nil {
		telemetry.Warn("tagging rules failed", map[string]any{
			"document_id": doc.ID,
			"error":       err.Error(),
		})
	}
}

func (s *Service) capture(ctx context.Context, userID, event string) {
	if s.Tracking == nil {
		return
	}
	s.Tracking.CaptureEvent(ctx, userID, event)
}

func (s *Service) newID() string {
	if s.GenerateID != nil {
		return s.GenerateID()
	}
	return GenerateDocumentID()
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now().UTC()
}
