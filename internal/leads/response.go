package leads

import (
	"errors"
	"net/http"

	"github.com/wolfman30/realestate-chatbot/internal/boldtrail"
)

// Envelope is the JSON body returned by the intake endpoint.
type Envelope struct {
	OK      bool   `json:"ok"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Respond maps a submission outcome onto a status code and body.
func Respond(result *boldtrail.ContactResult, err error) (int, Envelope) {
	if err == nil {
		var body any
		if result != nil {
			body = result.Body
		}
		return http.StatusOK, Envelope{OK: true, Result: body}
	}

	if IsValidationError(err) {
		return http.StatusBadRequest, Envelope{Error: err.Error()}
	}

	var upstream *boldtrail.UpstreamError
	switch {
	case errors.Is(err, boldtrail.ErrMissingToken):
		return http.StatusInternalServerError, Envelope{Error: "Missing BOLDTRAIL_API_TOKEN"}
	case errors.As(err, &upstream):
		return http.StatusBadGateway, Envelope{Error: "BoldTrail API error", Details: upstream.Body}
	case errors.Is(err, boldtrail.ErrUnreachable):
		return http.StatusBadGateway, Envelope{Error: "BoldTrail API unreachable"}
	default:
		return http.StatusInternalServerError, Envelope{Error: "Internal Server Error"}
	}
}
