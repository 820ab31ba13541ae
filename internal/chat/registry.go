package chat

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/realestate-chatbot/internal/observability/metrics"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

// ErrUnavailable is returned when no model is configured.
var ErrUnavailable = errors.New("chat: model unavailable")

const defaultSessionTTL = 30 * time.Minute

// Registry holds live sessions keyed by ID and evicts idle ones.
type Registry struct {
	model     Model
	telemetry Telemetry
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger
	ttl       time.Duration
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

// RegistryOption customizes a Registry.
type RegistryOption func(*Registry)

func WithTelemetry(t Telemetry) RegistryOption {
	return func(r *Registry) {
		r.telemetry = t
	}
}

func WithMetrics(m *metrics.ChatMetrics) RegistryOption {
	return func(r *Registry) {
		r.metrics = m
	}
}

func WithLogger(logger *logging.Logger) RegistryOption {
	return func(r *Registry) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithTTL sets how long an idle session is kept.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

// NewRegistry creates a registry. A nil model makes Open return ErrUnavailable.
func NewRegistry(model Model, opts ...RegistryOption) *Registry {
	r := &Registry{
		model:    model,
		logger:   logging.Default(),
		ttl:      defaultSessionTTL,
		now:      time.Now,
		sessions: make(map[string]*Session),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.logger = r.logger.WithComponent("chat")
	return r
}

// Available reports whether a model is configured.
func (r *Registry) Available() bool {
	return r.model != nil
}

// Open returns the live session for id, or starts a new one with a fresh ID
// when id is empty or unknown.
func (r *Registry) Open(id string) (*Session, error) {
	if r.model == nil {
		return nil, ErrUnavailable
	}
	if id != "" {
		if s, ok := r.Get(id); ok {
			return s, nil
		}
	}

	s := newSession(uuid.NewString(), r.model.NewSession(), r.model, r.telemetry, r.metrics, r.logger, r.now)
	r.mu.Lock()
	r.sessions[s.id] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(count)
	if r.telemetry != nil {
		r.telemetry.SessionOpened(s.id)
	}
	r.logger.Info("chat session opened", "session_id", s.id)
	return s, nil
}

func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Excerpt returns the transcript excerpt for a live session, or "".
func (r *Registry) Excerpt(id string) string {
	s, ok := r.Get(id)
	if !ok {
		return ""
	}
	return s.Excerpt()
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Sweep drops sessions idle longer than the TTL. Sessions with an exchange in
// flight are kept.
func (r *Registry) Sweep() int {
	cutoff := r.now().Add(-r.ttl)
	r.mu.Lock()
	removed := 0
	for id, s := range r.sessions {
		last, loading := s.idleSince()
		if loading || !last.Before(cutoff) {
			continue
		}
		delete(r.sessions, id)
		removed++
	}
	count := len(r.sessions)
	r.mu.Unlock()

	r.metrics.SetActiveSessions(count)
	if removed > 0 {
		r.logger.Debug("chat sessions evicted", "count", removed)
	}
	return removed
}

// Run sweeps on an interval until ctx is cancelled.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}
