package chat

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/wolfman30/realestate-chatbot/internal/events"
	"github.com/wolfman30/realestate-chatbot/internal/observability/metrics"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

var (
	// ErrBusy is returned when a send arrives while an exchange is in flight.
	ErrBusy = errors.New("chat: a response is still in progress")
	// ErrEmptyMessage is returned for blank user input.
	ErrEmptyMessage = errors.New("chat: message is empty")
)

const (
	excerptTurns    = 8
	excerptMaxChars = 1500
)

// Role identifies who authored a turn.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a read-only view of one message.
type Turn struct {
	ID     string `json:"id"`
	Role   Role   `json:"role"`
	Text   string `json:"text"`
	Final  bool   `json:"final"`
	Failed bool   `json:"failed,omitempty"`
}

// Snapshot is the observable state of a session.
type Snapshot struct {
	SessionID   string   `json:"sessionId"`
	Turns       []Turn   `json:"turns"`
	Suggestions []string `json:"suggestions"`
	Loading     bool     `json:"loading"`
}

// EventType names a streaming update.
type EventType string

const (
	EventChunk       EventType = "chunk"
	EventDone        EventType = "done"
	EventError       EventType = "error"
	EventSuggestions EventType = "suggestions"
)

// Event is one streaming update emitted during Send.
type Event struct {
	Type        EventType
	TurnID      string
	Text        string
	Suggestions []string
}

type turn struct {
	id   string
	role Role
	buf  *StreamBuffer
}

// Telemetry receives per-session usage rows. *events.Recorder implements it.
type Telemetry interface {
	SessionOpened(sessionID string)
	MessageLogged(sessionID, role string, latency time.Duration)
}

// Session is one visitor's conversation. At most one exchange runs at a time.
type Session struct {
	id        string
	model     ModelSession
	suggester Suggester
	telemetry Telemetry
	metrics   *metrics.ChatMetrics
	logger    *logging.Logger
	now       func() time.Time

	mu          sync.Mutex
	turns       []*turn
	suggestions []string
	loading     bool
	lastActive  time.Time
}

func newSession(id string, model ModelSession, suggester Suggester, telemetry Telemetry, m *metrics.ChatMetrics, logger *logging.Logger, now func() time.Time) *Session {
	s := &Session{
		id:         id,
		model:      model,
		suggester:  suggester,
		telemetry:  telemetry,
		metrics:    m,
		logger:     logger,
		now:        now,
		lastActive: now(),
	}
	s.turns = append(s.turns, &turn{id: uuid.NewString(), role: RoleAssistant, buf: NewFinalBuffer(WelcomeMessage)})
	s.suggestions = append([]string(nil), StarterQuestions...)
	return s
}

func (s *Session) ID() string {
	return s.id
}

// Send runs one exchange: it appends the user turn and a placeholder, streams
// model output into the placeholder, then refreshes suggestions. Updates are
// delivered to emit in order. A failed stream leaves the apology in the
// placeholder and still returns nil.
func (s *Session) Send(ctx context.Context, text string, emit func(Event)) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return ErrEmptyMessage
	}
	if emit == nil {
		emit = func(Event) {}
	}

	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.metrics.ObserveTurn("busy")
		return ErrBusy
	}
	s.loading = true
	s.suggestions = nil
	s.turns = append(s.turns, &turn{id: uuid.NewString(), role: RoleUser, buf: NewFinalBuffer(text)})
	reply := &turn{id: uuid.NewString(), role: RoleAssistant, buf: NewStreamBuffer()}
	s.turns = append(s.turns, reply)
	s.lastActive = s.now()
	s.mu.Unlock()

	defer func() {
		s.mu.Lock()
		s.loading = false
		s.lastActive = s.now()
		s.mu.Unlock()
	}()

	s.logTelemetry(events.RoleUser, 0)

	start := s.now()
	answer, err := s.stream(ctx, text, reply, emit, start)
	if err != nil {
		reply.buf.Fail(Apology)
		s.metrics.ObserveTurn("failed")
		s.logger.Warn("chat exchange failed", "session_id", s.id, "error", err)
		emit(Event{Type: EventError, TurnID: reply.id, Text: Apology})
		return nil
	}
	reply.buf.Finalize()
	s.metrics.ObserveTurn("completed")
	s.logTelemetry(events.RoleAssistant, s.now().Sub(start))
	emit(Event{Type: EventDone, TurnID: reply.id, Text: answer})

	suggestions := s.fetchSuggestions(ctx, text, answer)
	s.mu.Lock()
	s.suggestions = suggestions
	s.mu.Unlock()
	emit(Event{Type: EventSuggestions, Suggestions: suggestions})
	return nil
}

func (s *Session) stream(ctx context.Context, text string, reply *turn, emit func(Event), start time.Time) (string, error) {
	stream := s.model.SendStream(ctx, text)
	first := true
	for {
		chunk, err := stream.Next()
		if errors.Is(err, io.EOF) {
			return reply.buf.String(), nil
		}
		if err != nil {
			return "", err
		}
		if chunk == "" {
			continue
		}
		if first {
			s.metrics.ObserveFirstChunk(s.now().Sub(start).Seconds())
			first = false
		}
		if err := reply.buf.Append(chunk); err != nil {
			return "", err
		}
		emit(Event{Type: EventChunk, TurnID: reply.id, Text: chunk})
	}
}

// fetchSuggestions never fails the turn; any problem yields no suggestions.
func (s *Session) fetchSuggestions(ctx context.Context, question, answer string) []string {
	if s.suggester == nil || strings.TrimSpace(answer) == "" {
		return nil
	}
	suggestions, err := s.suggester.Suggest(ctx, question, answer)
	if err != nil {
		s.metrics.ObserveSuggestions("error")
		s.logger.Debug("suggestions unavailable", "session_id", s.id, "error", err)
		return nil
	}
	if len(suggestions) == 0 {
		s.metrics.ObserveSuggestions("empty")
		return nil
	}
	s.metrics.ObserveSuggestions("ok")
	return suggestions
}

func (s *Session) logTelemetry(role string, latency time.Duration) {
	if s.telemetry == nil {
		return
	}
	s.telemetry.MessageLogged(s.id, role, latency)
}

// Snapshot copies the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		SessionID:   s.id,
		Turns:       make([]Turn, 0, len(s.turns)),
		Suggestions: append([]string{}, s.suggestions...),
		Loading:     s.loading,
	}
	for _, t := range s.turns {
		snap.Turns = append(snap.Turns, Turn{
			ID:     t.id,
			Role:   t.role,
			Text:   t.buf.String(),
			Final:  t.buf.Finalized(),
			Failed: t.buf.Failed(),
		})
	}
	return snap
}

// Excerpt renders the last eight turns as "User:"/"Assistant:" lines, capped
// at 1500 characters.
func (s *Session) Excerpt() string {
	s.mu.Lock()
	turns := s.turns
	if len(turns) > excerptTurns {
		turns = turns[len(turns)-excerptTurns:]
	}
	lines := make([]string, 0, len(turns))
	for _, t := range turns {
		label := "Assistant"
		if t.role == RoleUser {
			label = "User"
		}
		lines = append(lines, label+": "+t.buf.String())
	}
	s.mu.Unlock()

	out := strings.Join(lines, "\n")
	if r := []rune(out); len(r) > excerptMaxChars {
		out = string(r[:excerptMaxChars])
	}
	return out
}

func (s *Session) idleSince() (time.Time, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActive, s.loading
}
