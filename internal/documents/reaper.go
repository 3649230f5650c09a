package documents

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"docvault-backend/internal/shared/metrics"
	"docvault-backend/internal/shared/telemetry"
)

// Reaper permanently deletes trash documents whose retention window has
// passed.
type Reaper struct {
	Svc           *Service
	RetentionDays int

	// Now is overridable for tests.
	Now func() time.Time
}

// Sweep deletes every trashed document older than the retention window,
// concurrently with a bounded pool. One failing document does not stop the
// sweep. It returns the number of documents attempted.
func (r *Reaper) Sweep(ctx context.Context) (int, error) {
	cutoff := r.now().AddDate(0, 0, -r.RetentionDays)

	docs, err := r.Svc.Repo.ListExpiredTrash(ctx, cutoff)
	if err != nil {
		return 0, err
	}

	sem := make(chan struct{}, trashDeleteConcurrency)
	var wg sync.WaitGroup
	var reaped atomic.Int64
	for _, doc := range docs {
		sem <- struct{}{}
		wg.Add(1)
		go func(doc Document) {
			defer wg.Done()
			defer func() { <-sem }()
			if err := r.Svc.hardDelete(ctx, doc); err != nil {
				telemetry.Error("reaper delete failed", map[string]any{
					"document_id":     doc.ID,
					"organization_id": doc.OrganizationID,
					"error":           err.Error(),
				})
				return
			}
			reaped.Add(1)
		}(doc)
	}
	wg.Wait()
	if reaped.Load() > 0 {
		metrics.IncDocumentsReaped(uint64(reaped.Load()))
	}

	telemetry.Info("trash sweep complete", map[string]any{
		"attempted": len(docs),
		"reaped":    reaped.Load(),
		"cutoff":    cutoff.Format(time.RFC3339),
	})
	return len(docs), nil
}

// Run sweeps on the given interval until the context is cancelled.
func (r *Reaper) Run(ctx context.Context, interval time.Duration, runOnStartup bool) {
	if runOnStartup {
		if _, err := r.Sweep(ctx); err != nil {
			telemetry.Error("trash sweep failed", map[string]any{"error": err.Error()})
		}
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := r.Sweep(ctx); err != nil {
				telemetry.Error("trash sweep failed", map[string]any{"error": err.Error()})
			}
		}
	}
}

func (r *Reaper) now() time.Time {
	if r.Now != nil {
		return r.Now()
	}
	return time.Now().UTC()
}
