package bootstrap

import (
	"fmt"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wolfman30/realestate-chatbot/internal/analytics"
	appconfig "github.com/wolfman30/realestate-chatbot/internal/config"
	"github.com/wolfman30/realestate-chatbot/internal/events"
	"github.com/wolfman30/realestate-chatbot/internal/leads"
	"github.com/wolfman30/realestate-chatbot/internal/supabase"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

// Stores groups the persistence backends chosen by LEAD_STORE. Records and
// Events may be nil, which turns the matching writes into no-ops.
type Stores struct {
	Records leads.RecordStore
	Leads   analytics.LeadLister
	Events  events.Store
}

// BuildStores selects supabase (default), postgres or memory. pool is only
// consulted for postgres.
func BuildStores(cfg *appconfig.Config, pool *pgxpool.Pool, logger *logging.Logger) (Stores, error) {
	if logger == nil {
		logger = logging.Default()
	}
	switch cfg.LeadStore {
	case "", "supabase":
		client := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseServiceRoleKey, &http.Client{Timeout: 10 * time.Second})
		store := leads.NewSupabaseStore(client)
		eventStore := events.NewSupabaseStore(client)
		s := Stores{Leads: store, Events: eventStore}
		if client.Configured() {
			s.Records = store
		} else {
			logger.Warn("supabase not configured; lead records and chat telemetry are disabled")
			s.Events = nil
		}
		return s, nil
	case "postgres":
		if pool == nil {
			return Stores{}, fmt.Errorf("bootstrap: LEAD_STORE=postgres requires a reachable DATABASE_URL")
		}
		store := leads.NewPostgresStore(pool)
		return Stores{Records: store, Leads: store, Events: events.NewPostgresStore(pool)}, nil
	case "memory":
		store := leads.NewMemoryStore()
		return Stores{Records: store, Leads: store}, nil
	default:
		return Stores{}, fmt.Errorf("bootstrap: unknown LEAD_STORE %q", cfg.LeadStore)
	}
}
