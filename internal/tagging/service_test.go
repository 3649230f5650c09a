package tagging

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"docvault-backend/internal/documents"
)

func setupService(t *testing.T) (*Service, *MemoryRepo) {
	t.Helper()
	repo := NewMemoryRepo()
	seq := 0
	svc := &Service{
		Repo: repo,
		GenerateID: func() string {
			seq++
			return fmt.Sprintf("tg-%d", seq)
		},
		Now: func() time.Time {
			return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		},
	}
	return svc, repo
}

func TestCreateTagDuplicateName(t *testing.T) {
	svc, _ := setupService(t)

	if _, err := svc.CreateTag(context.Background(), "org-1", "invoices", ""); err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := svc.CreateTag(context.Background(), "org-1", "invoices", "#ff0000"); !errors.Is(err, ErrTagAlreadyExists) {
		t.Fatalf("expected ErrTagAlreadyExists, got %v", err)
	}
	// Same name in another organization is fine.
	if _, err := svc.CreateTag(context.Background(), "org-2", "invoices", ""); err != nil {
		t.Fatalf("CreateTag other org: %v", err)
	}
}

func TestCreateRuleValidation(t *testing.T) {
	svc, _ := setupService(t)
	cond := Condition{FieldName, OperatorContains, "invoice"}

	tests := []struct {
		name       string
		conditions []Condition
		tagIDs     []string
	}{
		{"no conditions", nil, []string{"tag-1"}},
		{"no tags", []Condition{cond}, nil},
		{"bad field", []Condition{{"owner", OperatorEqual, "x"}}, []string{"tag-1"}},
		{"bad operator", []Condition{{FieldName, "regex", "x"}}, []string{"tag-1"}},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateRule(context.Background(), "org-1", "rule", true, tt.conditions, tt.tagIDs)
			if !errors.Is(err, ErrInvalidRule) {
				t.Fatalf("expected ErrInvalidRule, got %v", err)
			}
		})
	}
}

func TestApplyRulesAssignsMatchingTags(t *testing.T) {
	svc, repo := setupService(t)

	invoiceTag, err := svc.CreateTag(context.Background(), "org-1", "invoices", "")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	pdfTag, err := svc.CreateTag(context.Background(), "org-1", "pdfs", "")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}

	if _, err := svc.CreateRule(context.Background(), "org-1", "invoices", true,
		[]Condition{{FieldName, OperatorContains, "invoice"}}, []string{invoiceTag.ID}); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}
	if _, err := svc.CreateRule(context.Background(), "org-1", "pdfs", true,
		[]Condition{{FieldMimeType, OperatorEqual, "application/pdf"}}, []string{pdfTag.ID}); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	doc := documents.Document{
		ID:             "doc-1",
		OrganizationID: "org-1",
		Name:           "invoice-march.pdf",
		MimeType:       "application/pdf",
	}
	if err := svc.ApplyRules(context.Background(), doc); err != nil {
		t.Fatalf("ApplyRules: %v", err)
	}

	tagIDs, err := repo.ListDocumentTagIDs(context.Background(), doc.ID)
	if err != nil {
		t.Fatalf("ListDocumentTagIDs: %v", err)
	}
	if len(tagIDs) != 2 {
		t.Fatalf("expected both tags assigned, got %v", tagIDs)
	}

	// Re-applying is idempotent.
	if err := svc.ApplyRules(context.Background(), doc); err != nil {
		t.Fatalf("ApplyRules again: %v", err)
	}
	tagIDs, _ = repo.ListDocumentTagIDs(context.Background(), doc.ID)
	if len(tagIDs) != 2 {
		t.Fatalf("re-apply duplicated assignments: %v", tagIDs)
	}
}

func TestApplyRulesSkipsDisabledRules(t *testing.T) {
	svc, repo := setupService(t)

	tag, err := svc.CreateTag(context.Background(), "org-1", "invoices", "")
	if err != nil {
		t.Fatalf("CreateTag: %v", err)
	}
	if _, err := svc.CreateRule(context.Background(), "org-1", "disabled", false,
		[]Condition{{FieldName, OperatorContains, "invoice"}}, []string{tag.ID}); err != nil {
		t.Fatalf("CreateRule: %v", err)
	}

	doc := documents.Document{ID: "doc-1", OrganizationID: "org-1", Name: "invoice.pdf"}
	if err := svc.ApplyRules(context.Background(), doc); err != nil {
		t.Fatalf("ApplyRules: %v", err)
	}

	tagIDs, _ := repo.ListDocumentTagIDs(context.Background(), doc.ID)
	if len(tagIDs) != 0 {
		t.Fatalf("disabled rule assigned tags: %v", tagIDs)
	}
}

func TestRemoveAllFromDocument(t *testing.T) {
	svc, repo := setupService(t)

	if err := repo.AssignTag(context.Background(), "doc-1", "tag-1"); err != nil {
		t.Fatalf("AssignTag: %v", err)
	}
	if err := svc.RemoveAllFromDocument(context.Background(), "org-1", "doc-1"); err != nil {
		t.Fatalf("RemoveAllFromDocument: %v", err)
	}
	tagIDs, _ := repo.ListDocumentTagIDs(context.Background(), "doc-1")
	if len(tagIDs) != 0 {
		t.Fatalf("assignments survived: %v", tagIDs)
	}
}
