package chat

import (
	"context"
	"errors"
	"io"
	"sync"
	"time"
)

// scriptedStream replays chunks, then returns err (io.EOF when nil).
type scriptedStream struct {
	chunks []string
	err    error
	gate   chan struct{}
	pos    int
}

func (s *scriptedStream) Next() (string, error) {
	if s.gate != nil {
		<-s.gate
		s.gate = nil
	}
	if s.pos < len(s.chunks) {
		c := s.chunks[s.pos]
		s.pos++
		return c, nil
	}
	if s.err != nil {
		return "", s.err
	}
	return "", io.EOF
}

type fakeModelSession struct {
	mu      sync.Mutex
	sent    []string
	streams []*scriptedStream
}

func (f *fakeModelSession) SendStream(ctx context.Context, text string) ChunkStream {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, text)
	if len(f.streams) == 0 {
		return &scriptedStream{err: errors.New("no scripted stream")}
	}
	s := f.streams[0]
	f.streams = f.streams[1:]
	return s
}

type fakeModel struct {
	mu          sync.Mutex
	session     *fakeModelSession
	suggestions []string
	suggestErr  error
	suggestArgs [][2]string
}

func (f *fakeModel) NewSession() ModelSession {
	if f.session == nil {
		f.session = &fakeModelSession{}
	}
	return f.session
}

func (f *fakeModel) Suggest(ctx context.Context, question, answer string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.suggestArgs = append(f.suggestArgs, [2]string{question, answer})
	return f.suggestions, f.suggestErr
}

func (f *fakeModel) suggestCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.suggestArgs)
}

type telemetryCall struct {
	kind    string
	session string
	role    string
	latency time.Duration
}

type fakeTelemetry struct {
	mu    sync.Mutex
	calls []telemetryCall
}

func (f *fakeTelemetry) SessionOpened(sessionID string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, telemetryCall{kind: "open", session: sessionID})
}

func (f *fakeTelemetry) MessageLogged(sessionID, role string, latency time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, telemetryCall{kind: "message", session: sessionID, role: role, latency: latency})
}
