package leads

import "github.com/wolfman30/realestate-chatbot/internal/boldtrail"

const conversationLabel = "Conversation snippet:\n"

// ToContactPayload maps a sanitized lead onto the kvCORE contact shape.
// It trusts Sanitize and performs no validation of its own.
func ToContactPayload(lead Lead) boldtrail.ContactPayload {
	payload := boldtrail.ContactPayload{
		FirstName: lead.FirstName,
		LastName:  lead.LastName,
		Source:    lead.Source,
	}
	if lead.Email != "" {
		payload.Emails = []boldtrail.Email{{Email: lead.Email, IsPrimary: true}}
	}
	if lead.Phone != "" {
		payload.Phones = []boldtrail.Phone{{Number: lead.Phone, Type: boldtrail.PhoneTypeMobile, IsPrimary: true}}
	}
	payload.Note = BuildNote(lead.Notes, lead.Conversation)
	return payload
}

// BuildNote joins free-text notes and the conversation excerpt, separated by a
// blank line, with the excerpt under a "Conversation snippet:" label.
func BuildNote(notes, conversation string) string {
	note := notes
	if conversation != "" {
		if note != "" {
			note += "\n\n"
		}
		note += conversationLabel + conversation
	}
	return note
}
