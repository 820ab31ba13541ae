package leads

import "errors"

// Rejection reasons, checked in this order.
var (
	ErrConsentRequired = errors.New("Consent is required.")
	ErrNameRequired    = errors.New("Name is required.")
	ErrContactRequired = errors.New("Provide at least an email or a phone.")
	ErrInvalidEmail    = errors.New("Invalid email format.")

	// ErrInvalidBody is returned when the request body is not a JSON object.
	ErrInvalidBody = errors.New("Invalid request body.")
)

var validationErrors = []error{
	ErrConsentRequired,
	ErrNameRequired,
	ErrContactRequired,
	ErrInvalidEmail,
	ErrInvalidBody,
}

// IsValidationError reports whether err is a client input rejection.
func IsValidationError(err error) bool {
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
