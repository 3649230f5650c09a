package tracking

import (
	"context"

	"docvault-backend/internal/shared/telemetry"
)

// Sink receives product analytics events. Capture must never fail the
// calling operation, so it returns nothing.
type Sink interface {
	CaptureEvent(ctx context.Context, userID, event string)
}

// LogSink writes events to the structured log.
type LogSink struct{}

// CaptureEvent logs the event with the acting user.
func (LogSink) CaptureEvent(ctx context.Context, userID, event string) {
	telemetry.Info("tracking event", map[string]any{
		"event":   event,
		"user_id": userID,
	})
}

// NoopSink discards all events.
type NoopSink struct{}

// CaptureEvent discards the event.
func (NoopSink) CaptureEvent(ctx context.Context, userID, event string) {}

var (
	_ Sink = LogSink{}
	_ Sink = NoopSink{}
)
