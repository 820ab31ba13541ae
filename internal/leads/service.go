package leads

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/wolfman30/realestate-chatbot/internal/boldtrail"
	"github.com/wolfman30/realestate-chatbot/internal/observability/metrics"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Forwarder creates contacts in the CRM.
type Forwarder interface {
	Configured() bool
	CreateContact(ctx context.Context, payload boldtrail.ContactPayload) (*boldtrail.ContactResult, error)
}

// ExcerptSource supplies a transcript excerpt for a live chat session.
type ExcerptSource interface {
	Excerpt(sessionID string) string
}

// Service runs a submission through sanitize, map, forward and record.
type Service struct {
	forwarder Forwarder
	recorder  *Recorder
	excerpts  ExcerptSource
	metrics   *metrics.LeadMetrics
	logger    *logging.Logger
	tracer    trace.Tracer
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithExcerptSource fills an empty conversation field from the live chat session
// named by sessionId.
func WithExcerptSource(src ExcerptSource) ServiceOption {
	return func(s *Service) {
		s.excerpts = src
	}
}

// WithMetrics records submission outcomes.
func WithMetrics(m *metrics.LeadMetrics) ServiceOption {
	return func(s *Service) {
		s.metrics = m
	}
}

func NewService(forwarder Forwarder, recorder *Recorder, logger *logging.Logger, opts ...ServiceOption) *Service {
	if forwarder == nil {
		panic("leads: forwarder required")
	}
	if logger == nil {
		logger = logging.Default()
	}
	s := &Service{
		forwarder: forwarder,
		recorder:  recorder,
		logger:    logger.WithComponent("leads"),
		tracer:    otel.Tracer("realestate.internal.leads"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates the submission and forwards it. A lead record is scheduled
// for every submission that reaches the CRM, whatever the CRM answers.
func (s *Service) Submit(ctx context.Context, sub Submission) (*boldtrail.ContactResult, error) {
	ctx, span := s.tracer.Start(ctx, "leads.submit")
	defer span.End()

	if !s.forwarder.Configured() {
		s.metrics.ObserveSubmission("misconfigured")
		span.SetStatus(codes.Error, "missing token")
		return nil, boldtrail.ErrMissingToken
	}

	lead, err := Sanitize(sub)
	if err != nil {
		s.metrics.ObserveSubmission("rejected")
		span.SetAttributes(attribute.String("leads.rejection", err.Error()))
		return nil, err
	}
	if lead.Conversation == "" && lead.SessionID != "" && s.excerpts != nil {
		excerpt := strings.TrimSpace(s.excerpts.Excerpt(lead.SessionID))
		lead.Conversation = truncateRunes(excerpt, maxConversationLen)
	}

	start := time.Now()
	result, err := s.forwarder.CreateContact(ctx, ToContactPayload(lead))
	elapsed := time.Since(start).Seconds()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "forward failed")
		if errors.Is(err, boldtrail.ErrMissingToken) {
			s.metrics.ObserveSubmission("misconfigured")
			return nil, err
		}
		var upstream *boldtrail.UpstreamError
		switch {
		case errors.As(err, &upstream):
			s.metrics.ObserveForward(strconv.Itoa(upstream.StatusCode), elapsed)
			s.metrics.ObserveSubmission("upstream_error")
		case errors.Is(err, boldtrail.ErrUnreachable):
			s.metrics.ObserveForward("unreachable", elapsed)
			s.metrics.ObserveSubmission("unreachable")
		default:
			s.metrics.ObserveSubmission("error")
		}
		s.logger.Warn("lead forward failed", "error", err, "session_id", lead.SessionID)
		s.recorder.Record(lead, SyncStatusFailed, "")
		return nil, err
	}

	s.metrics.ObserveForward(strconv.Itoa(result.StatusCode), elapsed)
	s.metrics.ObserveSubmission("synced")
	s.recorder.Record(lead, SyncStatusSynced, result.ContactID)
	s.logger.Info("lead forwarded",
		"session_id", lead.SessionID,
		"source", lead.Source,
		"contact_id", result.ContactID,
	)
	return result, nil
}
