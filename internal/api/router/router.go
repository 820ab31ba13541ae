package router

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wolfman30/realestate-chatbot/internal/analytics"
	"github.com/wolfman30/realestate-chatbot/internal/chat"
	httpmiddleware "github.com/wolfman30/realestate-chatbot/internal/http/middleware"
	"github.com/wolfman30/realestate-chatbot/internal/leads"
	"github.com/wolfman30/realestate-chatbot/internal/widget"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	LeadsHandler       *leads.Handler
	ChatHandler        *chat.Handler
	WidgetHandler      *widget.Handler
	AnalyticsHandler   *analytics.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string

	// LeadLimiter throttles lead submissions per client IP. Nil disables it.
	LeadLimiter httpmiddleware.Limiter
	// AdminAuthSecret signs admin tokens. Empty keeps /admin closed (503).
	AdminAuthSecret string
	// TrustProxyHeaders rewrites RemoteAddr from X-Real-IP / X-Forwarded-For.
	TrustProxyHeaders bool
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	if cfg.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	r.Get("/health", health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}

	if cfg.LeadsHandler != nil {
		lead := http.HandlerFunc(cfg.LeadsHandler.Submit)
		if cfg.LeadLimiter != nil {
			// Method checks stay in the handler so non-POST requests get the
			// JSON 405, which means every method is routed here.
			r.With(httpmiddleware.RateLimit(cfg.LeadLimiter, cfg.Logger)).Handle("/api/boldtrail-lead", lead)
		} else {
			r.Handle("/api/boldtrail-lead", lead)
		}
	}

	if cfg.ChatHandler != nil {
		r.Route("/chat", func(c chi.Router) {
			c.Get("/ws", cfg.ChatHandler.HandleWebSocket)
			c.Post("/message", cfg.ChatHandler.HandleMessage)
			c.Get("/session", cfg.ChatHandler.HandleSession)
		})
	}

	if cfg.WidgetHandler != nil {
		r.Get("/embed.js", cfg.WidgetHandler.EmbedJS)
		r.Get("/widget", cfg.WidgetHandler.Widget)
	}

	if cfg.AnalyticsHandler != nil {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			admin.Use(middleware.Compress(5))
			admin.Get("/", func(w http.ResponseWriter, r *http.Request) {
				http.Redirect(w, r, "/admin/dashboard", http.StatusFound)
			})
			admin.Get("/dashboard", cfg.AnalyticsHandler.Dashboard)
			admin.Get("/leads", cfg.AnalyticsHandler.Leads)
		})
	}

	return r
}

func health(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
