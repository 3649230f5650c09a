package queue

import (
	"context"
	"time"

	"docvault-backend/internal/intake"
)

// Enqueuer publishes inbound emails for the intake worker to deliver.
type Enqueuer struct {
	Client Client

	// Now is overridable for tests.
	Now func() time.Time
}

// EnqueueInboundEmail encodes the email and hands it to the queue backend.
func (e *Enqueuer) EnqueueInboundEmail(ctx context.Context, email intake.InboundEmail) error {
	now := time.Now().UTC()
	if e.Now != nil {
		now = e.Now()
	}
	return e.Client.Send(ctx, FromInboundEmail(email, now.Format(time.RFC3339)))
}

var _ intake.Enqueuer = (*Enqueuer)(nil)
