package events

import (
	"context"
	"sync"
	"time"

	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const writeTimeout = 5 * time.Second

// Recorder writes telemetry rows in the background. Write failures are logged
// and dropped.
type Recorder struct {
	writer Writer
	logger *logging.Logger
	now    func() time.Time
	wg     sync.WaitGroup
}

// NewRecorder returns a recorder; a nil writer disables telemetry.
func NewRecorder(writer Writer, logger *logging.Logger) *Recorder {
	if logger == nil {
		logger = logging.Default()
	}
	return &Recorder{
		writer: writer,
		logger: logger.WithComponent("events"),
		now:    time.Now,
	}
}

// SessionOpened records an open event for the session.
func (r *Recorder) SessionOpened(sessionID string) {
	if r == nil || r.writer == nil {
		return
	}
	ev := Event{SessionID: sessionID, Type: TypeOpen, CreatedAt: r.now().UTC()}
	r.async("open", func(ctx context.Context) error {
		return r.writer.InsertEvent(ctx, ev)
	})
}

// MessageLogged records one turn. Latency is stored for assistant turns only.
func (r *Recorder) MessageLogged(sessionID, role string, latency time.Duration) {
	if r == nil || r.writer == nil {
		return
	}
	msg := Message{SessionID: sessionID, Role: role, CreatedAt: r.now().UTC()}
	if role == RoleAssistant && latency > 0 {
		ms := float64(latency.Milliseconds())
		msg.LatencyMS = &ms
	}
	r.async("message", func(ctx context.Context) error {
		return r.writer.InsertMessage(ctx, msg)
	})
}

// Wait blocks until pending writes finish.
func (r *Recorder) Wait() {
	if r == nil {
		return
	}
	r.wg.Wait()
}

func (r *Recorder) async(kind string, fn func(ctx context.Context) error) {
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			r.logger.Warn("telemetry write failed", "kind", kind, "error", err)
		}
	}()
}
