package intake

import (
	"bytes"
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"docvault-backend/internal/documents"
	"docvault-backend/internal/shared/metrics"
	"docvault-backend/internal/shared/telemetry"
)

// DocumentCreator ingests files into the vault. The documents service
// implements it.
type DocumentCreator interface {
	CreateDocument(ctx context.Context, in documents.CreateDocumentInput) (documents.Document, error)
}

// Router delivers inbound email attachments into organizations' documents.
type Router struct {
	Repo Repo
	Docs DocumentCreator
}

// RouteResult summarizes one inbound email delivery.
type RouteResult struct {
	Recipients int
	Ingested   int
	Rejected   int
}

// RouteInboundEmail fans the email out to every recipient address
// concurrently. A recipient that is unknown, disabled, or does not allow the
// sender is logged and skipped without affecting the others; within an
// accepted recipient, each attachment is ingested independently.
func (r *Router) RouteInboundEmail(ctx context.Context, email InboundEmail) RouteResult {
	metrics.IncIntakeEmailReceived()

	var wg sync.WaitGroup
	var mu sync.Mutex
	result := RouteResult{Recipients: len(email.ToAddresses)}

	for _, to := range email.ToAddresses {
		to := to
		wg.Add(1)
		go func() {
			defer wg.Done()
			ingested, ok := r.routeRecipient(ctx, email, to)
			mu.Lock()
			if ok {
				result.Ingested += ingested
			} else {
				result.Rejected++
			}
			mu.Unlock()
		}()
	}
	wg.Wait()

	return result
}

// routeRecipient delivers the email's attachments to one recipient address.
// It reports the number of attachments ingested and whether the recipient
// accepted the email at all.
func (r *Router) routeRecipient(ctx context.Context, email InboundEmail, to string) (int, bool) {
	intakeEmail, err := r.Repo.GetByAddress(ctx, to)
	if err != nil {
		if errors.Is(err, ErrIntakeEmailNotFound) {
			r.reject(to, email.FromAddress, "unknown intake address")
		} else {
			r.reject(to, email.FromAddress, "intake lookup failed: "+err.Error())
		}
		return 0, false
	}
	if !intakeEmail.IsEnabled {
		r.reject(to, email.FromAddress, "intake address disabled")
		return 0, false
	}
	if !isFromAllowedOrigin(intakeEmail, email.FromAddress) {
		r.reject(to, email.FromAddress, "sender not in allowed origins")
		return 0, false
	}

	var wg sync.WaitGroup
	var ingested atomic.Int64
	for _, att := range email.Attachments {
		if att.FileName == "" || len(att.Data) == 0 {
			continue
		}
		att := att
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := r.Docs.CreateDocument(ctx, documents.CreateDocumentInput{
				OrganizationID: intakeEmail.OrganizationID,
				FileName:       att.FileName,
				MimeType:       att.MimeType,
				Size:           int64(len(att.Data)),
				Body:           bytes.NewReader(att.Data),
			})
			switch {
			case err == nil:
				ingested.Add(1)
				metrics.IncIntakeAttachmentIngested()
			case errors.Is(err, documents.ErrDocumentAlreadyExists):
				// The content is already in the vault; delivery is idempotent.
				ingested.Add(1)
			default:
				telemetry.Error("intake attachment ingestion failed", map[string]any{
					"intake_email":    to,
					"organization_id": intakeEmail.OrganizationID,
					"file_name":       att.FileName,
					"error":           err.Error(),
				})
			}
		}()
	}
	wg.Wait()
	return int(ingested.Load()), true
}

func (r *Router) reject(to, from, reason string) {
	metrics.IncIntakeEmailRejected()
	telemetry.Warn("intake email rejected", map[string]any{
		"intake_email": to,
		"from":         from,
		"reason":       reason,
	})
}

// isFromAllowedOrigin reports whether the sender is in the address's allowed
// origins. Comparison is exact and case-insensitive; an empty origin list
// allows nobody.
func isFromAllowedOrigin(email IntakeEmail, from string) bool {
	from = NormalizeAddress(from)
	for _, origin := range email.AllowedOrigins {
		if NormalizeAddress(origin) == from {
			return true
		}
	}
	return false
}
