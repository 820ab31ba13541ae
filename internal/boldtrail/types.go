package boldtrail

// ContactPayload is the kvCORE Public API v2 "create contact" body.
type ContactPayload struct {
	FirstName string  `json:"first_name"`
	LastName  string  `json:"last_name"`
	Source    string  `json:"source"`
	Emails    []Email `json:"emails,omitempty"`
	Phones    []Phone `json:"phones,omitempty"`
	Note      string  `json:"note,omitempty"`
}

// Email is one entry of the contact's email list.
type Email struct {
	Email     string `json:"email"`
	IsPrimary bool   `json:"is_primary"`
}

// Phone is one entry of the contact's phone list.
type Phone struct {
	Number    string `json:"number"`
	Type      string `json:"type"`
	IsPrimary bool   `json:"is_primary"`
}

// PhoneTypeMobile is the only phone type the widget collects.
const PhoneTypeMobile = "mobile"

// ContactResult describes a successful create call.
type ContactResult struct {
	StatusCode int
	// Body is the decoded JSON document, or the raw text when the response
	// was not JSON.
	Body any
	// ContactID is empty when the response did not carry one.
	ContactID string
}
