package widget

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	htmltemplate "html/template"
	"net/http"
	"strings"
	"text/template"

	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const (
	// Version is stamped on the host container as data-version.
	Version = "1.0"
	// ToggleMessage is the postMessage type the chat page sends when it opens or closes.
	ToggleMessage = "RECHATBOT:TOGGLE"

	DefaultPosition = "bottom-right"
	DefaultTheme    = "light"
)

// Positions lists the corner presets the embed script understands.
var Positions = []string{"bottom-right", "bottom-left", "top-right", "top-left"}

//go:embed assets/embed.js.tmpl assets/widget.html
var assets embed.FS

var (
	embedTmpl  = template.Must(template.ParseFS(assets, "assets/embed.js.tmpl"))
	widgetTmpl = htmltemplate.Must(htmltemplate.ParseFS(assets, "assets/widget.html"))
)

// Config controls what the served assets point at.
type Config struct {
	ChatbotURL string
	Position   string
	Theme      string
	WSPath     string
	LeadPath   string
	LeadSource string
}

func (c Config) withDefaults() Config {
	if strings.TrimSpace(c.ChatbotURL) == "" {
		c.ChatbotURL = "/widget"
	}
	if !ValidPosition(c.Position) {
		c.Position = DefaultPosition
	}
	if c.Theme == "" {
		c.Theme = DefaultTheme
	}
	if c.WSPath == "" {
		c.WSPath = "/chat/ws"
	}
	if c.LeadPath == "" {
		c.LeadPath = "/api/boldtrail-lead"
	}
	if c.LeadSource == "" {
		c.LeadSource = "Website Chatbot"
	}
	return c
}

// ValidPosition reports whether p is one of the corner presets.
func ValidPosition(p string) bool {
	for _, v := range Positions {
		if p == v {
			return true
		}
	}
	return false
}

type embedDefaults struct {
	ChatbotURL    string `json:"chatbotUrl"`
	Position      string `json:"position"`
	Theme         string `json:"theme"`
	Version       string `json:"version"`
	ToggleMessage string `json:"toggleMessage"`
}

type pageConfig struct {
	WSPath        string `json:"wsPath"`
	LeadPath      string `json:"leadPath"`
	LeadSource    string `json:"leadSource"`
	ToggleMessage string `json:"toggleMessage"`
}

// Handler serves the embed script and the chat page it frames.
type Handler struct {
	script []byte
	page   []byte
	logger *logging.Logger
}

// NewHandler renders both assets once; they only depend on cfg.
func NewHandler(cfg Config, logger *logging.Logger) (*Handler, error) {
	if logger == nil {
		logger = logging.Default()
	}
	cfg = cfg.withDefaults()

	script, err := RenderEmbed(cfg)
	if err != nil {
		return nil, err
	}

	var page bytes.Buffer
	if err := widgetTmpl.Execute(&page, pageConfig{
		WSPath:        cfg.WSPath,
		LeadPath:      cfg.LeadPath,
		LeadSource:    cfg.LeadSource,
		ToggleMessage: ToggleMessage,
	}); err != nil {
		return nil, fmt.Errorf("widget: render page: %w", err)
	}

	return &Handler{script: script, page: page.Bytes(), logger: logger}, nil
}

// RenderEmbed produces the embed script with cfg baked in as defaults.
func RenderEmbed(cfg Config) ([]byte, error) {
	cfg = cfg.withDefaults()
	defaults, err := json.Marshal(embedDefaults{
		ChatbotURL:    cfg.ChatbotURL,
		Position:      cfg.Position,
		Theme:         cfg.Theme,
		Version:       Version,
		ToggleMessage: ToggleMessage,
	})
	if err != nil {
		return nil, fmt.Errorf("widget: encode defaults: %w", err)
	}
	var buf bytes.Buffer
	// json.Marshal escapes <, > and & so the literal cannot close a script tag.
	if err := embedTmpl.Execute(&buf, struct{ DefaultsJSON string }{string(defaults)}); err != nil {
		return nil, fmt.Errorf("widget: render embed: %w", err)
	}
	return buf.Bytes(), nil
}

// EmbedJS handles GET /embed.js
func (h *Handler) EmbedJS(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/javascript; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=300")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	if _, err := w.Write(h.script); err != nil {
		h.logger.Debug("embed.js write failed", "error", err)
	}
}

// Widget handles GET /widget
func (h *Handler) Widget(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	if _, err := w.Write(h.page); err != nil {
		h.logger.Debug("widget page write failed", "error", err)
	}
}
