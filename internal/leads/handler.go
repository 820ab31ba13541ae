package leads

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/wolfman30/realestate-chatbot/internal/boldtrail"
	"github.com/wolfman30/realestate-chatbot/pkg/logging"
)

const maxBodyBytes = 64 << 10

// Submitter accepts a raw submission.
type Submitter interface {
	Submit(ctx context.Context, sub Submission) (*boldtrail.ContactResult, error)
}

// Handler serves the lead intake endpoint.
type Handler struct {
	service Submitter
	logger  *logging.Logger
}

// NewHandler creates a new leads handler
func NewHandler(service Submitter, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Submit handles POST /api/boldtrail-lead requests
func (h *Handler) Submit(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		writeJSON(w, http.StatusMethodNotAllowed, Envelope{Error: "Method Not Allowed"})
		return
	}

	sub, err := decodeSubmission(w, r)
	if err != nil {
		h.logger.Warn("failed to decode lead submission", "error", err)
		writeJSON(w, http.StatusBadRequest, Envelope{Error: ErrInvalidBody.Error()})
		return
	}

	result, err := h.service.Submit(r.Context(), sub)
	status, body := Respond(result, err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("lead submission failed", "error", err, "status", status)
	}
	writeJSON(w, status, body)
}

// decodeSubmission reads the JSON body. An empty body decodes to the zero
// submission, which fails the consent check downstream.
func decodeSubmission(w http.ResponseWriter, r *http.Request) (Submission, error) {
	var sub Submission
	if r.Body == nil {
		return sub, nil
	}
	raw, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		return sub, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return sub, nil
	}
	if err := json.Unmarshal(raw, &sub); err != nil {
		return sub, err
	}
	return sub, nil
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
