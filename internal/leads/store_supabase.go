package leads

import (
	"context"

	"github.com/wolfman30/realestate-chatbot/internal/supabase"
)

const (
	leadsTable    = "leads"
	recordColumns = "id,first_name,last_name,email,phone,source,status,boldtrail_sync_status,submitted_at,created_at,conversation_snippet"
)

// SupabaseStore writes lead records through the Supabase REST API.
type SupabaseStore struct {
	client *supabase.Client
}

func NewSupabaseStore(client *supabase.Client) *SupabaseStore {
	return &SupabaseStore{client: client}
}

func (s *SupabaseStore) Insert(ctx context.Context, rec *Record) error {
	return s.client.Insert(ctx, leadsTable, rec)
}

func (s *SupabaseStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	q := supabase.NewQuery().
		Select(recordColumns).
		Order("submitted_at.desc.nullslast").
		Limit(limit)
	var out []Record
	if err := s.client.Select(ctx, leadsTable, q, &out); err != nil {
		return nil, err
	}
	return out, nil
}
