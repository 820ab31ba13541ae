package events

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore keeps telemetry in the relational database.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("events: db required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertEvent(ctx context.Context, ev Event) error {
	query := `INSERT INTO events (session_id, type, created_at) VALUES ($1, $2, $3)`
	if _, err := s.db.Exec(ctx, query, ev.SessionID, ev.Type, ev.CreatedAt); err != nil {
		return fmt.Errorf("events: insert event: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertMessage(ctx context.Context, msg Message) error {
	query := `INSERT INTO conversation_messages (session_id, role, latency_ms, created_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.Exec(ctx, query, msg.SessionID, msg.Role, msg.LatencyMS, msg.CreatedAt); err != nil {
		return fmt.Errorf("events: insert message: %w", err)
	}
	return nil
}

func (s *PostgresStore) OpenEvents(ctx context.Context, since time.Time) ([]Event, error) {
	query := `
		SELECT session_id, created_at
		FROM events
		WHERE type = $1 AND created_at >= $2
		LIMIT $3
	`
	rows, err := s.db.Query(ctx, query, TypeOpen, since, OpenEventLimit)
	if err != nil {
		return nil, fmt.Errorf("events: query open events: %w", err)
	}
	defer rows.Close()

	var out []Event
	for rows.Next() {
		ev := Event{Type: TypeOpen}
		if err := rows.Scan(&ev.SessionID, &ev.CreatedAt); err != nil {
			return nil, fmt.Errorf("events: scan event: %w", err)
		}
		out = append(out, ev)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Messages(ctx context.Context, since time.Time) ([]Message, error) {
	query := `
		SELECT session_id, role, latency_ms, created_at
		FROM conversation_messages
		WHERE created_at >= $1
		LIMIT $2
	`
	return s.queryMessages(ctx, query, since, MessageLimit)
}

func (s *PostgresStore) AssistantMessages(ctx context.Context, since time.Time) ([]Message, error) {
	query := `
		SELECT session_id, role, latency_ms, created_at
		FROM conversation_messages
		WHERE role = $1 AND created_at >= $2
		LIMIT $3
	`
	return s.queryMessages(ctx, query, RoleAssistant, since, MessageLimit)
}

func (s *PostgresStore) queryMessages(ctx context.Context, query string, args ...any) ([]Message, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("events: query messages: %w", err)
	}
	defer rows.Close()

	var out []Message
	for rows.Next() {
		var msg Message
		if err := rows.Scan(&msg.SessionID, &msg.Role, &msg.LatencyMS, &msg.CreatedAt); err != nil {
			return nil, fmt.Errorf("events: scan message: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}
