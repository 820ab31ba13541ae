package events

import (
	"context"
	"time"
)

// Read limits per row set.
const (
	OpenEventLimit = 5000
	MessageLimit   = 10000
)

// Writer persists telemetry rows.
type Writer interface {
	InsertEvent(ctx context.Context, ev Event) error
	InsertMessage(ctx context.Context, msg Message) error
}

// Reader fetches telemetry rows created at or after since.
type Reader interface {
	OpenEvents(ctx context.Context, since time.Time) ([]Event, error)
	Messages(ctx context.Context, since time.Time) ([]Message, error)
	AssistantMessages(ctx context.Context, since time.Time) ([]Message, error)
}

// Store reads and writes telemetry rows.
type Store interface {
	Writer
	Reader
}
