package queue

import (
	"context"
	"testing"
	"time"

	"docvault-backend/internal/intake"
)

type captureClient struct {
	sent []Message
}

func (c *captureClient) Send(ctx context.Context, msg Message) error {
	c.sent = append(c.sent, msg)
	return nil
}

func TestEnqueueInboundEmail(t *testing.T) {
	client := &captureClient{}
	enq := &Enqueuer{
		Client: client,
		Now:    func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}

	err := enq.EnqueueInboundEmail(context.Background(), intake.InboundEmail{
		FromAddress: "sender@example.com",
		ToAddresses: []string{"abc@intake.test"},
		Subject:     "receipts",
		Attachments: []intake.Attachment{{FileName: "r.pdf", MimeType: "application/pdf", Data: []byte{0x25, 0x50}}},
	})
	if err != nil {
		t.Fatalf("EnqueueInboundEmail: %v", err)
	}

	if len(client.sent) != 1 {
		t.Fatalf("expected 1 message, got %d", len(client.sent))
	}
	msg := client.sent[0]
	if msg.Version != 1 {
		t.Fatalf("unexpected version %d", msg.Version)
	}
	if msg.EnqueuedAt != "2026-03-01T12:00:00Z" {
		t.Fatalf("unexpected enqueuedAt %q", msg.EnqueuedAt)
	}

	email, err := msg.ToInboundEmail()
	if err != nil {
		t.Fatalf("ToInboundEmail: %v", err)
	}
	if len(email.Attachments) != 1 || email.Attachments[0].FileName != "r.pdf" {
		t.Fatalf("attachment did not survive the round trip: %+v", email.Attachments)
	}
}
