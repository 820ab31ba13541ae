package analytics

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/wolfman30/realestate-chatbot/internal/leads"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const leadPageSize = 100

// Messages shown when the backing store cannot be read.
const (
	DashboardConfigError = "Configure SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY to enable analytics."
	LeadsConfigError     = "Configure SUPABASE_URL and SUPABASE_SERVICE_ROLE_KEY to enable lead view."
)

//go:embed templates/*.html
var templateFS embed.FS

var pages = template.Must(template.New("pages").
	Funcs(template.FuncMap{"formatPhone": formatPhonePtr}).
	ParseFS(templateFS, "templates/*.html"))

func formatPhonePtr(p *string) string {
	if p == nil {
		return ""
	}
	return FormatPhone(*p)
}

// LeadLister returns the most recent lead records.
type LeadLister interface {
	ListRecent(ctx context.Context, limit int) ([]leads.Record, error)
}

// Handler serves the read-only admin views.
type Handler struct {
	service  *Service
	leads    LeadLister
	gatherer prometheus.Gatherer
	logger   *logging.Logger
}

func NewHandler(service *Service, leadLister LeadLister, gatherer prometheus.Gatherer, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service:  service,
		leads:    leadLister,
		gatherer: gatherer,
		logger:   logger,
	}
}

type dashboardView struct {
	Title   string      `json:"-"`
	Error   string      `json:"error,omitempty"`
	Summary Summary     `json:"summary"`
	Live    LiveLatency `json:"live_first_chunk"`
}

type leadsView struct {
	Title string         `json:"-"`
	Error string         `json:"error,omitempty"`
	Leads []leads.Record `json:"leads"`
}

// Dashboard handles GET /admin/dashboard
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	view := dashboardView{Title: "Analytics Dashboard"}
	summary, err := h.service.Dashboard(r.Context())
	if err != nil {
		h.logger.Warn("dashboard unavailable", "error", err)
		view.Error = DashboardConfigError
		h.render(w, r, http.StatusServiceUnavailable, "dashboard.html", view, map[string]string{"error": view.Error})
		return
	}
	view.Summary = summary
	view.Live = snapshotFirstChunk(h.gatherer)
	h.render(w, r, http.StatusOK, "dashboard.html", view, view)
}

// Leads handles GET /admin/leads
func (h *Handler) Leads(w http.ResponseWriter, r *http.Request) {
	view := leadsView{Title: "Leads"}
	if h.leads == nil {
		view.Error = LeadsConfigError
		h.render(w, r, http.StatusServiceUnavailable, "leads.html", view, map[string]string{"error": view.Error})
		return
	}
	records, err := h.leads.ListRecent(r.Context(), leadPageSize)
	if err != nil {
		h.logger.Warn("lead list unavailable", "error", err)
		view.Error = LeadsConfigError
		h.render(w, r, http.StatusServiceUnavailable, "leads.html", view, map[string]string{"error": view.Error})
		return
	}
	view.Leads = records
	if view.Leads == nil {
		view.Leads = []leads.Record{}
	}
	h.render(w, r, http.StatusOK, "leads.html", view, view)
}

// render writes JSON when the client asks for it and HTML otherwise. The HTML
// error page is served with 200 so browsers show the message.
func (h *Handler) render(w http.ResponseWriter, r *http.Request, status int, page string, view any, jsonBody any) {
	if wantsJSON(r) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(jsonBody)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	if err := pages.ExecuteTemplate(w, page, view); err != nil {
		h.logger.Error("failed to render page", "page", page, "error", err)
	}
}

func wantsJSON(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "json") {
		return true
	}
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}
