package documents

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"docvault-backend/internal/shared/storage/object"
	memorystore "docvault-backend/internal/shared/storage/object/memory"
)

type staticCapacity struct {
	err error
}

func (c staticCapacity) EnsureCanCreateDocument(ctx context.Context, organizationID string, incomingSize int64) error {
	return c.err
}

type recordingTagger struct {
	mu       sync.Mutex
	applied  []string
	cleared  []string
	applyErr error
	clearErr error
}

func (t *recordingTagger) ApplyRules(ctx context.Context, doc Document) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.applied = append(t.applied, doc.ID)
	return t.applyErr
}

func (t *recordingTagger) RemoveAllFromDocument(ctx context.Context, organizationID, documentID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.cleared = append(t.cleared, documentID)
	return t.clearErr
}

func setupService(t *testing.T) (*Service, *MemoryRepo, *memorystore.Store, *recordingTagger) {
	t.Helper()
	repo := NewMemoryRepo()
	store := memorystore.New()
	tagger := &recordingTagger{}

	seq := 0
	svc := &Service{
		Repo:     repo,
		Store:    store,
		Capacity: staticCapacity{},
		Tags:     tagger,
		Extract: func(ctx context.Context, data []byte, mimeType, fileName string) (string, error) {
			return string(data), nil
		},
		GenerateID: func() string {
			seq++
			return fmt.Sprintf("doc-%d", seq)
		},
		Now: func() time.Time {
			return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		},
	}
	return svc, repo, store, tagger
}

func createDoc(t *testing.T, svc *Service, org, name, content string) Document {
	t.Helper()
	doc, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		OrganizationID: org,
		FileName:       name,
		MimeType:       "text/plain",
		Size:           int64(len(content)),
		Body:           strings.NewReader(content),
	})
	if err != nil {
		t.Fatalf("CreateDocument: %v", err)
	}
	return doc
}

func TestCreateDocumentStoresAndRecords(t *testing.T) {
	svc, repo, store, tagger := setupService(t)

	doc := createDoc(t, svc, "org-1", "report.txt", "quarterly numbers")

	if doc.ID != "doc-1" {
		t.Fatalf("unexpected ID %q", doc.ID)
	}
	if doc.SizeBytes != int64(len("quarterly numbers")) {
		t.Fatalf("unexpected size %d", doc.SizeBytes)
	}
	if doc.Content != "quarterly numbers" {
		t.Fatalf("extracted content not recorded: %q", doc.Content)
	}
	if doc.ContentHash == "" {
		t.Fatal("content hash missing")
	}
	if doc.StorageKey != "org-1/doc-1/report.txt" {
		t.Fatalf("unexpected storage key %q", doc.StorageKey)
	}
	if !store.Has(doc.StorageKey) {
		t.Fatal("blob not written")
	}

	got, err := repo.GetByID(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.ContentHash != doc.ContentHash {
		t.Fatal("record mismatch")
	}

	if len(tagger.applied) != 1 || tagger.applied[0] != doc.ID {
		t.Fatalf("tagging rules not applied: %v", tagger.applied)
	}
}

func TestCreateDocumentQuotaRefusedBeforeStorage(t *testing.T) {
	svc, _, store, _ := setupService(t)
	quotaErr := errors.New("over quota")
	svc.Capacity = staticCapacity{err: quotaErr}

	_, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		OrganizationID: "org-1",
		FileName:       "big.bin",
		Size:           1 << 30,
		Body:           strings.NewReader("payload"),
	})
	if !errors.Is(err, quotaErr) {
		t.Fatalf("expected quota error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("storage written despite quota refusal")
	}
}

func TestCreateDocumentValidation(t *testing.T) {
	svc, _, _, _ := setupService(t)

	tests := []struct {
		name string
		in   CreateDocumentInput
	}{
		{"missing org", CreateDocumentInput{FileName: "a.txt", Body: strings.NewReader("x")}},
		{"missing file name", CreateDocumentInput{OrganizationID: "org-1", Body: strings.NewReader("x")}},
		{"missing body", CreateDocumentInput{OrganizationID: "org-1", FileName: "a.txt"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			if _, err := svc.CreateDocument(context.Background(), tt.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestCreateDocumentLiveDuplicateFails(t *testing.T) {
	svc, _, store, _ := setupService(t)

	first := createDoc(t, svc, "org-1", "report.txt", "same bytes")

	dup, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		OrganizationID: "org-1",
		FileName:       "renamed.txt",
		Size:           int64(len("same bytes")),
		Body:           strings.NewReader("same bytes"),
	})
	if !errors.Is(err, ErrDocumentAlreadyExists) {
		t.Fatalf("expected ErrDocumentAlreadyExists, got %v", err)
	}
	if dup.ID != first.ID {
		t.Fatalf("expected existing document back, got %q", dup.ID)
	}
	if store.Len() != 1 {
		t.Fatalf("duplicate wrote a second blob, store has %d", store.Len())
	}
}

func TestCreateDocumentSameContentDifferentOrgs(t *testing.T) {
	svc, _, store, _ := setupService(t)

	a := createDoc(t, svc, "org-1", "report.txt", "same bytes")
	b := createDoc(t, svc, "org-2", "report.txt", "same bytes")

	if a.ContentHash != b.ContentHash {
		t.Fatal("hash should not depend on organization")
	}
	if store.Len() != 2 {
		t.Fatalf("expected one blob per organization, got %d", store.Len())
	}
}

func TestCreateDocumentRestoresTrashedDuplicate(t *testing.T) {
	svc, repo, store, tagger := setupService(t)

	doc := createDoc(t, svc, "org-1", "report.txt", "same bytes")
	if err := svc.SoftDeleteDocument(context.Background(), "org-1", doc.ID, "user-1"); err != nil {
		t.Fatalf("SoftDeleteDocument: %v", err)
	}

	restored, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		OrganizationID: "org-1",
		FileName:       "report-v2.txt",
		Size:           int64(len("same bytes")),
		Body:           strings.NewReader("same bytes"),
		CreatedBy:      "user-2",
	})
	if err != nil {
		t.Fatalf("CreateDocument restore path: %v", err)
	}
	if restored.ID != doc.ID {
		t.Fatalf("expected restored document %q, got %q", doc.ID, restored.ID)
	}
	if restored.IsDeleted || restored.DeletedAt != nil {
		t.Fatal("restored document still marked deleted")
	}
	if restored.Name != "report-v2.txt" {
		t.Fatalf("restore kept old name: %q", restored.Name)
	}
	if restored.CreatedBy != "user-2" {
		t.Fatalf("restore kept old creator: %q", restored.CreatedBy)
	}

	got, err := repo.GetByID(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.IsDeleted {
		t.Fatal("record still trashed")
	}
	if store.Len() != 1 {
		t.Fatalf("restore wrote a second blob, store has %d", store.Len())
	}
	if len(tagger.cleared) != 1 || tagger.cleared[0] != doc.ID {
		t.Fatalf("stale tags not cleared before restore: %v", tagger.cleared)
	}
}

func TestCreateDocumentClearTagsFailureAbortsRestore(t *testing.T) {
	svc, repo, _, tagger := setupService(t)
	doc := createDoc(t, svc, "org-1", "report.txt", "same bytes")
	if err := svc.SoftDeleteDocument(context.Background(), "org-1", doc.ID, ""); err != nil {
		t.Fatalf("SoftDeleteDocument: %v", err)
	}
	tagger.clearErr = errors.New("tag store down")

	_, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		OrganizationID: "org-1",
		FileName:       "report.txt",
		Size:           int64(len("same bytes")),
		Body:           strings.NewReader("same bytes"),
	})
	if err == nil {
		t.Fatal("expected error")
	}

	got, err := repo.GetByID(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if !got.IsDeleted {
		t.Fatal("document restored despite tag clear failure")
	}
}

type failingCreateRepo struct {
	Repo
	err error
}

func (r failingCreateRepo) Create(ctx context.Context, doc Document) error {
	return r.err
}

func TestCreateDocumentCompensatesOnPersistFailure(t *testing.T) {
	svc, repo, store, _ := setupService(t)
	persistErr := errors.New("db down")
	svc.Repo = failingCreateRepo{Repo: repo, err: persistErr}

	_, err := svc.CreateDocument(context.Background(), CreateDocumentInput{
		OrganizationID: "org-1",
		FileName:       "report.txt",
		Size:           7,
		Body:           strings.NewReader("payload"),
	})
	if !errors.Is(err, persistErr) {
		t.Fatalf("expected persist error, got %v", err)
	}
	if store.Len() != 0 {
		t.Fatal("blob not cleaned up after failed create")
	}
}

func TestSoftDeleteMissingDocument(t *testing.T) {
	svc, _, _, _ := setupService(t)
	err := svc.SoftDeleteDocument(context.Background(), "org-1", "nope", "")
	if !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}

func TestRestoreDocumentNotDeleted(t *testing.T) {
	svc, _, _, _ := setupService(t)
	doc := createDoc(t, svc, "org-1", "report.txt", "bytes")

	if _, err := svc.RestoreDocument(context.Background(), "org-1", doc.ID, ""); !errors.Is(err, ErrDocumentNotDeleted) {
		t.Fatalf("expected ErrDocumentNotDeleted, got %v", err)
	}
}

func TestDeleteTrashDocument(t *testing.T) {
	svc, repo, store, _ := setupService(t)
	doc := createDoc(t, svc, "org-1", "report.txt", "bytes")

	if err := svc.DeleteTrashDocument(context.Background(), "org-1", doc.ID); !errors.Is(err, ErrDocumentNotDeleted) {
		t.Fatalf("expected ErrDocumentNotDeleted for live document, got %v", err)
	}
	if err := svc.DeleteTrashDocument(context.Background(), "org-1", "nope"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}

	if err := svc.SoftDeleteDocument(context.Background(), "org-1", doc.ID, ""); err != nil {
		t.Fatalf("SoftDeleteDocument: %v", err)
	}
	if err := svc.DeleteTrashDocument(context.Background(), "org-1", doc.ID); err != nil {
		t.Fatalf("DeleteTrashDocument: %v", err)
	}

	if _, err := repo.GetByID(context.Background(), "org-1", doc.ID); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatal("record survived hard delete")
	}
	if store.Len() != 0 {
		t.Fatal("blob survived hard delete")
	}
}

func TestDeleteAllTrashDocuments(t *testing.T) {
	svc, repo, store, _ := setupService(t)

	const total = 25
	for i := 0; i < total; i++ {
		doc := createDoc(t, svc, "org-1", fmt.Sprintf("file-%d.txt", i), fmt.Sprintf("content %d", i))
		if err := svc.SoftDeleteDocument(context.Background(), "org-1", doc.ID, ""); err != nil {
			t.Fatalf("SoftDeleteDocument: %v", err)
		}
	}
	keep := createDoc(t, svc, "org-1", "keep.txt", "still live")

	deleted, err := svc.DeleteAllTrashDocuments(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("DeleteAllTrashDocuments: %v", err)
	}
	if deleted != total {
		t.Fatalf("deleted %d, want %d", deleted, total)
	}

	trash, err := repo.ListTrash(context.Background(), "org-1")
	if err != nil {
		t.Fatalf("ListTrash: %v", err)
	}
	if len(trash) != 0 {
		t.Fatalf("trash not emptied, %d left", len(trash))
	}
	if !store.Has(keep.StorageKey) {
		t.Fatal("live document blob removed")
	}
	if store.Len() != 1 {
		t.Fatalf("expected only the live blob, store has %d", store.Len())
	}
}

type failingDeleteStore struct {
	object.ObjectStore
	failKey string
}

func (s failingDeleteStore) Delete(ctx context.Context, storageKey string) error {
	if storageKey == s.failKey {
		return errors.New("storage unavailable")
	}
	return s.ObjectStore.Delete(ctx, storageKey)
}

func TestHardDeleteAttemptsBothSides(t *testing.T) {
	svc, repo, store, _ := setupService(t)
	doc := createDoc(t, svc, "org-1", "report.txt", "bytes")
	if err := svc.SoftDeleteDocument(context.Background(), "org-1", doc.ID, ""); err != nil {
		t.Fatalf("SoftDeleteDocument: %v", err)
	}
	svc.Store = failingDeleteStore{ObjectStore: store, failKey: doc.StorageKey}

	err := svc.DeleteTrashDocument(context.Background(), "org-1", doc.ID)
	if err == nil {
		t.Fatal("expected storage error")
	}

	// The record delete still ran even though the blob delete failed.
	if _, getErr := repo.GetByID(context.Background(), "org-1", doc.ID); !errors.Is(getErr, ErrDocumentNotFound) {
		t.Fatal("record delete skipped when storage delete failed")
	}
}

func TestDeleteAllTrashDocumentsIsolatesFailures(t *testing.T) {
	svc, _, store, _ := setupService(t)

	bad := createDoc(t, svc, "org-1", "bad.txt", "bad bytes")
	good := createDoc(t, svc, "org-1", "good.txt", "good bytes")
	for _, id := range []string{bad.ID, good.ID} {
		if err := svc.SoftDeleteDocument(context.Background(), "org-1", id, ""); err != nil {
			t.Fatalf("SoftDeleteDocument: %v", err)
		}
	}
	svc.Store = failingDeleteStore{ObjectStore: store, failKey: bad.StorageKey}

	deleted, err := svc.DeleteAllTrashDocuments(context.Background(), "org-1")
	if err == nil {
		t.Fatal("expected joined error for the failing document")
	}
	if deleted != 1 {
		t.Fatalf("deleted %d, want 1", deleted)
	}
	if store.Has(good.StorageKey) {
		t.Fatal("healthy document not deleted")
	}
}

func TestOpenDocumentContent(t *testing.T) {
	svc, _, _, _ := setupService(t)
	doc := createDoc(t, svc, "org-1", "report.txt", "round trip")

	got, rc, err := svc.OpenDocumentContent(context.Background(), "org-1", doc.ID)
	if err != nil {
		t.Fatalf("OpenDocumentContent: %v", err)
	}
	defer rc.Close()

	payload, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read content: %v", err)
	}
	if !bytes.Equal(payload, []byte("round trip")) {
		t.Fatalf("content mismatch: %q", payload)
	}
	if got.ID != doc.ID {
		t.Fatal("wrong document returned")
	}

	if _, _, err := svc.OpenDocumentContent(context.Background(), "org-1", "nope"); !errors.Is(err, ErrDocumentNotFound) {
		t.Fatalf("expected ErrDocumentNotFound, got %v", err)
	}
}
