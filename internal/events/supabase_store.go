package events

import (
	"context"
	"time"

	"github.com/wolfman30/realestate-chatbot/internal/supabase"
)

const (
	eventsTable   = "events"
	messagesTable = "conversation_messages"
)

// SupabaseStore keeps telemetry in Supabase tables.
type SupabaseStore struct {
	client *supabase.Client
}

func NewSupabaseStore(client *supabase.Client) *SupabaseStore {
	return &SupabaseStore{client: client}
}

func (s *SupabaseStore) InsertEvent(ctx context.Context, ev Event) error {
	return s.client.Insert(ctx, eventsTable, ev)
}

func (s *SupabaseStore) InsertMessage(ctx context.Context, msg Message) error {
	return s.client.Insert(ctx, messagesTable, msg)
}

func (s *SupabaseStore) OpenEvents(ctx context.Context, since time.Time) ([]Event, error) {
	q := supabase.NewQuery().
		Select("session_id,created_at").
		Eq("type", TypeOpen).
		Gte("created_at", formatSince(since)).
		Limit(OpenEventLimit)
	var out []Event
	if err := s.client.Select(ctx, eventsTable, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SupabaseStore) Messages(ctx context.Context, since time.Time) ([]Message, error) {
	q := supabase.NewQuery().
		Select("session_id,created_at,role").
		Gte("created_at", formatSince(since)).
		Limit(MessageLimit)
	var out []Message
	if err := s.client.Select(ctx, messagesTable, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *SupabaseStore) AssistantMessages(ctx context.Context, since time.Time) ([]Message, error) {
	q := supabase.NewQuery().
		Select("latency_ms,created_at,role").
		Eq("role", RoleAssistant).
		Gte("created_at", formatSince(since)).
		Limit(MessageLimit)
	var out []Message
	if err := s.client.Select(ctx, messagesTable, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func formatSince(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000Z")
}
