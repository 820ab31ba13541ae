package boldtrail

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingToken is returned before any network call when no API token is configured.
	ErrMissingToken = errors.New("boldtrail: missing BOLDTRAIL_API_TOKEN")

	// ErrUnreachable wraps transport failures where no HTTP response was received.
	ErrUnreachable = errors.New("boldtrail: api unreachable")
)

// UpstreamError is returned when kvCORE answers with a non-2xx status.
type UpstreamError struct {
	StatusCode int
	Body       any
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("boldtrail: api returned %d", e.StatusCode)
}
