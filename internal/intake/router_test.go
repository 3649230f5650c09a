package intake

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"docvault-backend/internal/documents"
)

type fakeCreator struct {
	mu      sync.Mutex
	created []documents.CreateDocumentInput
	errFor  map[string]error // file name -> error
}

func (f *fakeCreator) CreateDocument(ctx context.Context, in documents.CreateDocumentInput) (documents.Document, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err := f.errFor[in.FileName]; err != nil {
		return documents.Document{}, err
	}
	// Drain the body the way the real service does.
	if in.Body != nil {
		_, _ = io.ReadAll(in.Body)
	}
	f.created = append(f.created, in)
	return documents.Document{ID: "doc-" + in.FileName, OrganizationID: in.OrganizationID}, nil
}

func (f *fakeCreator) createdOrgs() map[string]int {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[string]int)
	for _, in := range f.created {
		out[in.OrganizationID]++
	}
	return out
}

func setupRouter(t *testing.T) (*Router, *MemoryRepo, *fakeCreator) {
	t.Helper()
	repo := NewMemoryRepo()
	creator := &fakeCreator{errFor: make(map[string]error)}
	return &Router{Repo: repo, Docs: creator}, repo, creator
}

func addIntakeEmail(t *testing.T, repo *MemoryRepo, org, address string, enabled bool, origins ...string) {
	t.Helper()
	err := repo.Create(context.Background(), IntakeEmail{
		ID:             address,
		OrganizationID: org,
		EmailAddress:   address,
		IsEnabled:      enabled,
		AllowedOrigins: origins,
		CreatedAt:      time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("create intake email: %v", err)
	}
}

func TestRouteInboundEmailDeliversAttachments(t *testing.T) {
	router, repo, creator := setupRouter(t)
	addIntakeEmail(t, repo, "org-1", "a1b2c3@intake.example.com", true, "sender@example.com")

	result := router.RouteInboundEmail(context.Background(), InboundEmail{
		FromAddress: "sender@example.com",
		ToAddresses: []string{"a1b2c3@intake.example.com"},
		Attachments: []Attachment{
			{FileName: "invoice.pdf", MimeType: "application/pdf", Data: []byte("pdf bytes")},
			{FileName: "notes.txt", MimeType: "text/plain", Data: []byte("notes")},
		},
	})

	if result.Ingested != 2 || result.Rejected != 0 {
		t.Fatalf("unexpected result %+v", result)
	}
	if got := creator.createdOrgs()["org-1"]; got != 2 {
		t.Fatalf("expected 2 documents for org-1, got %d", got)
	}
}

func TestRouteInboundEmailFansOutPerRecipient(t *testing.T) {
	router, repo, creator := setupRouter(t)
	addIntakeEmail(t, repo, "org-1", "one@intake.example.com", true, "sender@example.com")
	addIntakeEmail(t, repo, "org-2", "two@intake.example.com", true, "sender@example.com")

	result := router.RouteInboundEmail(context.Background(), InboundEmail{
		FromAddress: "sender@example.com",
		ToAddresses: []string{
			"one@intake.example.com",
			"unknown@intake.example.com",
			"two@intake.example.com",
		},
		Attachments: []Attachment{{FileName: "doc.txt", MimeType: "text/plain", Data: []byte("x")}},
	})

	if result.Recipients != 3 {
		t.Fatalf("recipients %d, want 3", result.Recipients)
	}
	if result.Rejected != 1 {
		t.Fatalf("rejected %d, want 1", result.Rejected)
	}
	if result.Ingested != 2 {
		t.Fatalf("ingested %d, want 2", result.Ingested)
	}

	orgs := creator.createdOrgs()
	if orgs["org-1"] != 1 || orgs["org-2"] != 1 {
		t.Fatalf("fan-out incomplete: %v", orgs)
	}
}

func TestRouteInboundEmailRejections(t *testing.T) {
	tests := []struct {
		name  string
		setup func(t *testing.T, repo *MemoryRepo)
		from  string
	}{
		{
			name:  "unknown address",
			setup: func(t *testing.T, repo *MemoryRepo) {},
			from:  "sender@example.com",
		},
		{
			name: "disabled address",
			setup: func(t *testing.T, repo *MemoryRepo) {
				addIntakeEmail(t, repo, "org-1", "in@intake.example.com", false, "sender@example.com")
			},
			from: "sender@example.com",
		},
		{
			name: "sender not allowed",
			setup: func(t *testing.T, repo *MemoryRepo) {
				addIntakeEmail(t, repo, "org-1", "in@intake.example.com", true, "other@example.com")
			},
			from: "sender@example.com",
		},
		{
			name: "no allowed origins",
			setup: func(t *testing.T, repo *MemoryRepo) {
				addIntakeEmail(t, repo, "org-1", "in@intake.example.com", true)
			},
			from: "sender@example.com",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			router, repo, creator := setupRouter(t)
			tt.setup(t, repo)

			result := router.RouteInboundEmail(context.Background(), InboundEmail{
				FromAddress: tt.from,
				ToAddresses: []string{"in@intake.example.com"},
				Attachments: []Attachment{{FileName: "doc.txt", MimeType: "text/plain", Data: []byte("x")}},
			})

			if result.Rejected != 1 || result.Ingested != 0 {
				t.Fatalf("unexpected result %+v", result)
			}
			if len(creator.created) != 0 {
				t.Fatal("rejected recipient still ingested documents")
			}
		})
	}
}

func TestRouteInboundEmailOriginMatchIsCaseInsensitive(t *testing.T) {
	router, repo, _ := setupRouter(t)
	addIntakeEmail(t, repo, "org-1", "in@intake.example.com", true, "Sender@Example.COM")

	result := router.RouteInboundEmail(context.Background(), InboundEmail{
		FromAddress: "sender@example.com",
		ToAddresses: []string{"IN@intake.example.com"},
		Attachments: []Attachment{{FileName: "doc.txt", MimeType: "text/plain", Data: []byte("x")}},
	})
	if result.Ingested != 1 {
		t.Fatalf("case-insensitive match failed: %+v", result)
	}
}

func TestRouteInboundEmailIsolatesAttachmentFailures(t *testing.T) {
	router, repo, creator := setupRouter(t)
	addIntakeEmail(t, repo, "org-1", "in@intake.example.com", true, "sender@example.com")
	creator.errFor["bad.pdf"] = errors.New("storage down")
	creator.errFor["dupe.pdf"] = documents.ErrDocumentAlreadyExists

	result := router.RouteInboundEmail(context.Background(), InboundEmail{
		FromAddress: "sender@example.com",
		ToAddresses: []string{"in@intake.example.com"},
		Attachments: []Attachment{
			{FileName: "bad.pdf", MimeType: "application/pdf", Data: []byte("x")},
			{FileName: "good.pdf", MimeType: "application/pdf", Data: []byte("y")},
			{FileName: "dupe.pdf", MimeType: "application/pdf", Data: []byte("z")},
			{FileName: "", MimeType: "application/pdf", Data: []byte("nameless")},
		},
	})

	// good.pdf ingested, dupe.pdf already present (still a success), bad.pdf
	// failed, nameless skipped.
	if result.Ingested != 2 {
		t.Fatalf("ingested %d, want 2", result.Ingested)
	}
	if result.Rejected != 0 {
		t.Fatalf("rejected %d, want 0", result.Rejected)
	}
	if len(creator.created) != 1 {
		t.Fatalf("expected exactly one document created, got %d", len(creator.created))
	}
}
