package leads

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/realestate-chatbot/internal/observability/metrics"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const defaultRecordTimeout = 10 * time.Second

// RecordStore persists lead records.
type RecordStore interface {
	Insert(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
}

// Recorder writes lead records off the request path. Failures are logged and
// counted but never reach the caller.
type Recorder struct {
	store   RecordStore
	logger  *logging.Logger
	metrics *metrics.LeadMetrics
	timeout time.Duration
	now     func() time.Time
	wg      sync.WaitGroup
}

// NewRecorder returns a recorder; a nil store turns Record into a no-op.
func NewRecorder(store RecordStore, logger *logging.Logger, m *metrics.LeadMetrics) *Recorder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{
		store:   store,
		logger:  logger.WithComponent("lead-recorder"),
		metrics: m,
		timeout: defaultRecordTimeout,
		now:     time.Now,
	}
}

// Record schedules an insert for a forwarded lead and returns immediately.
func (r *Recorder) Record(lead Lead, status SyncStatus, contactID string) {
	if r == nil || r.store == nil {
		return
	}
	rec := NewRecord(lead, status, contactID, r.now())
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
		defer cancel()
		if err := r.store.Insert(ctx, rec); err != nil {
			r.metrics.ObserveRecord(false)
			r.logger.Warn("lead record insert failed",
				"error", err,
				"session_id", lead.SessionID,
				"sync_status", string(status),
			)
			return
		}
		r.metrics.ObserveRecord(true)
	}()
}

// Wait blocks until every scheduled insert has finished.
func (r *Recorder) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}
