package chat

import (
	"errors"
	"strings"
	"sync"
)

// ErrFinalized is returned when appending to a closed buffer.
var ErrFinalized = errors.New("chat: buffer finalized")

// StreamBuffer accumulates streamed model output for one assistant turn.
// Text only grows until Finalize or Fail closes it.
type StreamBuffer struct {
	mu        sync.RWMutex
	text      strings.Builder
	finalized bool
	failed    bool
}

// NewStreamBuffer returns an open, empty buffer.
func NewStreamBuffer() *StreamBuffer {
	return &StreamBuffer{}
}

// NewFinalBuffer returns a closed buffer holding text.
func NewFinalBuffer(text string) *StreamBuffer {
	b := &StreamBuffer{finalized: true}
	b.text.WriteString(text)
	return b
}

func (b *StreamBuffer) Append(chunk string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.finalized {
		return ErrFinalized
	}
	b.text.WriteString(chunk)
	return nil
}

func (b *StreamBuffer) Finalize() {
	b.mu.Lock()
	b.finalized = true
	b.mu.Unlock()
}

// Fail discards partial output, stores the replacement and closes the buffer.
func (b *StreamBuffer) Fail(replacement string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.text.Reset()
	b.text.WriteString(replacement)
	b.finalized = true
	b.failed = true
}

func (b *StreamBuffer) String() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.text.String()
}

func (b *StreamBuffer) Finalized() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.finalized
}

func (b *StreamBuffer) Failed() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.failed
}
