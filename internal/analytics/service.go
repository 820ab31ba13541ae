package analytics

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/wolfman30/realestate-chatbot/internal/events"
)

// Window is the trailing period covered by the dashboard.
const Window = 30 * 24 * time.Hour

// ErrUnavailable wraps any upstream read failure. The dashboard shows a
// configuration message instead of partial data.
var ErrUnavailable = errors.New("analytics: data source unavailable")

// Service fetches telemetry rows and summarizes them.
type Service struct {
	reader events.Reader
	now    func() time.Time
}

func NewService(reader events.Reader) *Service {
	return &Service{reader: reader, now: time.Now}
}

// Dashboard summarizes the trailing 30 days. Any failed read fails the whole
// summary.
func (s *Service) Dashboard(ctx context.Context) (Summary, error) {
	if s == nil || s.reader == nil {
		return Summary{}, ErrUnavailable
	}
	since := s.now().UTC().Add(-Window)

	opens, err := s.reader.OpenEvents(ctx, since)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: open events: %v", ErrUnavailable, err)
	}
	messages, err := s.reader.Messages(ctx, since)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: messages: %v", ErrUnavailable, err)
	}
	assists, err := s.reader.AssistantMessages(ctx, since)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: assistant messages: %v", ErrUnavailable, err)
	}
	return Summarize(opens, messages, assists), nil
}
