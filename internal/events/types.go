package events

import "time"

// TypeOpen marks the start of a chat session.
const TypeOpen = "open"

// Message roles as stored in conversation_messages.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Event is a row in the events table.
type Event struct {
	SessionID string    `json:"session_id"`
	Type      string    `json:"type,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Message is a row in conversation_messages. Message text is never stored.
type Message struct {
	SessionID string    `json:"session_id,omitempty"`
	Role      string    `json:"role,omitempty"`
	LatencyMS *float64  `json:"latency_ms,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Latency returns the recorded latency in milliseconds, zero when absent.
func (m Message) Latency() float64 {
	if m.LatencyMS == nil {
		return 0
	}
	return *m.LatencyMS
}
