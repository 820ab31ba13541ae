package leads

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool used by PostgresStore.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// PostgresStore stores lead records in the relational database.
type PostgresStore struct {
	db DB
}

func NewPostgresStore(db DB) *PostgresStore {
	if db == nil {
		panic("leads: db required")
	}
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Insert(ctx context.Context, rec *Record) error {
	query := `
		INSERT INTO leads (session_id, first_name, last_name, email, phone, notes,
			conversation_snippet, source, boldtrail_sync_status, boldtrail_contact_id, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`
	if _, err := s.db.Exec(ctx, query,
		rec.SessionID,
		rec.FirstName,
		rec.LastName,
		rec.Email,
		rec.Phone,
		rec.Notes,
		rec.ConversationSnippet,
		rec.Source,
		string(rec.BoldTrailSyncStatus),
		rec.BoldTrailContactID,
		rec.SubmittedAt,
	); err != nil {
		return fmt.Errorf("leads: insert failed: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	query := `
		SELECT id, session_id, first_name, last_name, email, phone, notes, conversation_snippet,
			source, status, boldtrail_sync_status, boldtrail_contact_id, submitted_at, created_at
		FROM leads
		ORDER BY submitted_at DESC NULLS LAST
		LIMIT $1
	`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("leads: list failed: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var (
			rec       Record
			id        int64
			status    string
			createdAt time.Time
		)
		if err := rows.Scan(
			&id,
			&rec.SessionID,
			&rec.FirstName,
			&rec.LastName,
			&rec.Email,
			&rec.Phone,
			&rec.Notes,
			&rec.ConversationSnippet,
			&rec.Source,
			&rec.Status,
			&status,
			&rec.BoldTrailContactID,
			&rec.SubmittedAt,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("leads: scan failed: %w", err)
		}
		rec.ID = RecordID(strconv.FormatInt(id, 10))
		rec.BoldTrailSyncStatus = SyncStatus(status)
		rec.CreatedAt = &createdAt
		out = append(out, rec)
	}
	return out, rows.Err()
}
