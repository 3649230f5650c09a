package metrics

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	documentsCreatedTotal     atomic.Uint64
	documentsDeduplicated     atomic.Uint64
	documentsRestoredTotal    atomic.Uint64
	documentsTrashedTotal     atomic.Uint64
	documentsHardDeletedTotal atomic.Uint64
	documentsReapedTotal      atomic.Uint64

	intakeEmailsReceivedTotal      atomic.Uint64
	intakeEmailsRejectedTotal      atomic.Uint64
	intakeAttachmentsIngestedTotal atomic.Uint64

	documentCreateDuration = newHistogram([]float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000})
)

// IncDocumentCreated increments the created counter.
func IncDocumentCreated() {
	documentsCreatedTotal.Add(1)
}

// IncDocumentDeduplicated increments the counter for uploads matched to an existing document.
func IncDocumentDeduplicated() {
	documentsDeduplicated.Add(1)
}

// IncDocumentRestored increments the restored-from-trash counter.
func IncDocumentRestored() {
	documentsRestoredTotal.Add(1)
}

// IncDocumentTrashed increments the soft-deleted counter.
func IncDocumentTrashed() {
	documentsTrashedTotal.Add(1)
}

// IncDocumentHardDeleted increments the permanently-deleted counter.
func IncDocumentHardDeleted() {
	documentsHardDeletedTotal.Add(1)
}

// IncDocumentsReaped adds the number of trash documents removed by a sweep.
func IncDocumentsReaped(n uint64) {
	documentsReapedTotal.Add(n)
}

// IncIntakeEmailReceived increments the inbound email counter.
func IncIntakeEmailReceived() {
	intakeEmailsReceivedTotal.Add(1)
}

// IncIntakeEmailRejected increments the rejected recipient counter.
func IncIntakeEmailRejected() {
	intakeEmailsRejectedTotal.Add(1)
}

// IncIntakeAttachmentIngested increments the ingested attachment counter.
func IncIntakeAttachmentIngested() {
	intakeAttachmentsIngestedTotal.Add(1)
}

// ObserveDocumentCreateDurationMs records a document creation duration in milliseconds.
func ObserveDocumentCreateDurationMs(value float64) {
	if value < 0 {
		value = 0
	}
	documentCreateDuration.Observe(value)
}

// Handler exposes metrics in Prometheus text format.
func Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Content-Type", "text/plain; version=0.0.4")
		c.String(http.StatusOK, Render())
	}
}

// Render renders metrics in Prometheus text format.
func Render() string {
	var buf bytes.Buffer
	writeCounter(&buf, "documents_created_total", "Total documents created", documentsCreatedTotal.Load())
	writeCounter(&buf, "documents_deduplicated_total", "Total uploads resolved to an existing document", documentsDeduplicated.Load())
	writeCounter(&buf, "documents_restored_total", "Total documents restored from trash", documentsRestoredTotal.Load())
	writeCounter(&buf, "documents_trashed_total", "Total documents moved to trash", documentsTrashedTotal.Load())
	writeCounter(&buf, "documents_hard_deleted_total", "Total documents permanently deleted", documentsHardDeletedTotal.Load())
	writeCounter(&buf, "documents_reaped_total", "Total expired trash documents removed by sweeps", documentsReapedTotal.Load())
	writeCounter(&buf, "intake_emails_received_total", "Total inbound intake emails received", intakeEmailsReceivedTotal.Load())
	writeCounter(&buf, "intake_emails_rejected_total", "Total intake recipients rejected", intakeEmailsRejectedTotal.Load())
	writeCounter(&buf, "intake_attachments_ingested_total", "Total intake attachments ingested as documents", intakeAttachmentsIngestedTotal.Load())
	writeHistogram(&buf, "document_create_duration_ms", "Document creation duration in milliseconds", documentCreateDuration.Snapshot())
	return buf.String()
}

type histogram struct {
	mu      sync.Mutex
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

type histogramSnapshot struct {
	buckets []float64
	counts  []uint64
	sum     float64
	count   uint64
}

func newHistogram(buckets []float64) *histogram {
	return &histogram{
		buckets: buckets,
		counts:  make([]uint64, len(buckets)),
	}
}

func (h *histogram) Observe(value float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count++
	h.sum += value
	for i, bound := range h.buckets {
		if value <= bound {
			h.counts[i]++
		}
	}
}

func (h *histogram) Snapshot() histogramSnapshot {
	h.mu.Lock()
	defer h.mu.Unlock()
	out := histogramSnapshot{
		buckets: append([]float64(nil), h.buckets...),
		counts:  append([]uint64(nil), h.counts...),
		sum:     h.sum,
		count:   h.count,
	}
	return out
}

func writeCounter(buf *bytes.Buffer, name, help string, value uint64) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s counter\n", name)
	fmt.Fprintf(buf, "%s %d\n", name, value)
}

func writeHistogram(buf *bytes.Buffer, name, help string, snap histogramSnapshot) {
	fmt.Fprintf(buf, "# HELP %s %s\n", name, help)
	fmt.Fprintf(buf, "# TYPE %s histogram\n", name)
	var cumulative uint64
	for i, bound := range snap.buckets {
		cumulative += snap.counts[i]
		fmt.Fprintf(buf, "%s_bucket{le=\"%s\"} %d\n", name, formatFloat(bound), cumulative)
	}
	fmt.Fprintf(buf, "%s_bucket{le=\"+Inf\"} %d\n", name, snap.count)
	fmt.Fprintf(buf, "%s_sum %s\n", name, formatFloat(snap.sum))
	fmt.Fprintf(buf, "%s_count %d\n", name, snap.count)
}

func formatFloat(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10)
	}
	return strconv.FormatFloat(value, 'f', -1, 64)
}

// NowMillis returns current time in milliseconds, useful for callers without time utilities.
func NowMillis() float64 {
	return float64(time.Now().UnixNano()) / float64(time.Millisecond)
}
