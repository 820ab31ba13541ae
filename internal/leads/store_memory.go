package leads

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryStore keeps lead records in process memory.
type MemoryStore struct {
	mu      sync.RWMutex
	records []Record
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Insert(ctx context.Context, rec *Record) error {
	if rec == nil {
		return nil
	}
	cp := *rec
	if cp.ID == "" {
		cp.ID = RecordID(uuid.NewString())
	}
	created := time.Now().UTC()
	cp.CreatedAt = &created

	s.mu.Lock()
	s.records = append(s.records, cp)
	s.mu.Unlock()
	return nil
}

// ListRecent returns records newest first by submission time.
func (s *MemoryStore) ListRecent(ctx context.Context, limit int) ([]Record, error) {
	s.mu.RLock()
	out := make([]Record, len(s.records))
	copy(out, s.records)
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}
