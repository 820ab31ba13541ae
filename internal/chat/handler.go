package chat

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const (
	maxFrameBytes = 16 << 10
	writeWait     = 10 * time.Second
)

// InboundFrame is what the widget sends over the socket.
type InboundFrame struct {
	Type string `json:"type"` // "message", "ping"
	Text string `json:"text,omitempty"`
}

// OutboundFrame is what we send to the widget.
type OutboundFrame struct {
	Type        string   `json:"type"` // "session", "chunk", "done", "suggestions", "error", "busy", "pong"
	SessionID   string   `json:"sessionId,omitempty"`
	TurnID      string   `json:"turnId,omitempty"`
	Text        string   `json:"text,omitempty"`
	Turns       []Turn   `json:"turns,omitempty"`
	Suggestions []string `json:"suggestions"`
}

// Handler exposes chat sessions over WebSocket with an HTTP fallback.
type Handler struct {
	registry *Registry
	upgrader websocket.Upgrader
	logger   *logging.Logger
}

// NewHandler creates a chat handler. allowedOrigins follows the CORS list;
// "*" accepts any origin.
func NewHandler(registry *Registry, allowedOrigins []string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		registry: registry,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     originChecker(allowedOrigins),
		},
		logger: logger,
	}
}

func originChecker(allowed []string) func(r *http.Request) bool {
	set := map[string]struct{}{}
	for _, o := range allowed {
		o = strings.TrimSpace(o)
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		if o != "" {
			set[o] = struct{}{}
		}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		if _, ok := set[origin]; ok {
			return true
		}
		return strings.EqualFold(origin, "http://"+r.Host) || strings.EqualFold(origin, "https://"+r.Host)
	}
}

// HandleWebSocket upgrades to WebSocket and streams exchanges.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Open(r.URL.Query().Get("session"))
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": UnavailableMessage})
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("chat: websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxFrameBytes)

	ws := &socket{conn: conn}
	snap := session.Snapshot()
	_ = ws.send(OutboundFrame{Type: "session", SessionID: snap.SessionID, Turns: snap.Turns, Suggestions: snap.Suggestions})

	ctx, cancel := context.WithCancel(context.Background())
	var inflight sync.WaitGroup
	defer func() {
		inflight.Wait()
		cancel()
	}()

	h.logger.Info("chat: connection opened", "session_id", session.ID())
	for {
		var frame InboundFrame
		if err := conn.ReadJSON(&frame); err != nil {
			h.logger.Debug("chat: connection closed", "session_id", session.ID(), "error", err)
			return
		}

		switch frame.Type {
		case "ping":
			_ = ws.send(OutboundFrame{Type: "pong"})
		case "message":
			if strings.TrimSpace(frame.Text) == "" {
				continue
			}
			if session.Snapshot().Loading {
				_ = ws.send(OutboundFrame{Type: "busy"})
				continue
			}
			inflight.Add(1)
			go func(text string) {
				defer inflight.Done()
				err := session.Send(ctx, text, func(ev Event) {
					_ = ws.send(frameFor(ev))
				})
				if errors.Is(err, ErrBusy) {
					_ = ws.send(OutboundFrame{Type: "busy"})
				}
			}(frame.Text)
		}
	}
}

func frameFor(ev Event) OutboundFrame {
	return OutboundFrame{
		Type:        string(ev.Type),
		TurnID:      ev.TurnID,
		Text:        ev.Text,
		Suggestions: ev.Suggestions,
	}
}

type socket struct {
	mu   sync.Mutex
	conn *websocket.Conn
}

func (s *socket) send(frame OutboundFrame) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_ = s.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return s.conn.WriteJSON(frame)
}

// HandleMessage is the HTTP fallback: it runs one exchange to completion and
// returns the resulting snapshot.
func (h *Handler) HandleMessage(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SessionID string `json:"sessionId"`
		Text      string `json:"text"`
	}
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxFrameBytes)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
		return
	}

	session, err := h.registry.Open(req.SessionID)
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": UnavailableMessage})
		return
	}

	switch err := session.Send(r.Context(), req.Text, nil); {
	case errors.Is(err, ErrEmptyMessage):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "text is required"})
		return
	case errors.Is(err, ErrBusy):
		writeJSON(w, http.StatusConflict, map[string]string{"error": "a response is still in progress"})
		return
	case err != nil:
		h.logger.Error("chat: send failed", "session_id", session.ID(), "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

// HandleSession returns the snapshot for ?session=, opening a new session
// when the ID is missing or unknown.
func (h *Handler) HandleSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.registry.Open(r.URL.Query().Get("session"))
	if err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": UnavailableMessage})
		return
	}
	writeJSON(w, http.StatusOK, session.Snapshot())
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
