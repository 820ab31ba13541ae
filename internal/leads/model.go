package leads

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"
)

// DefaultSource labels leads that arrive without a source.
const DefaultSource = "Website Chatbot"

// Submission is the raw lead intake body.
type Submission struct {
	FullName     string  `json:"fullName"`
	FirstName    string  `json:"firstName"`
	LastName     string  `json:"lastName"`
	Email        string  `json:"email"`
	Phone        string  `json:"phone"`
	Notes        string  `json:"notes"`
	Conversation string  `json:"conversation"`
	Source       string  `json:"source"`
	SessionID    string  `json:"sessionId"`
	Consent      Consent `json:"consent"`
}

// Consent accepts the affirmative values browsers send: true, 1 and the
// strings "true", "on", "1" in any case. Everything else is false.
type Consent bool

func (c *Consent) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	switch t := v.(type) {
	case bool:
		*c = Consent(t)
	case string:
		switch strings.ToLower(strings.TrimSpace(t)) {
		case "true", "on", "1":
			*c = true
		default:
			*c = false
		}
	case float64:
		*c = Consent(t == 1)
	default:
		*c = false
	}
	return nil
}

// Lead is a sanitized submission that passed validation.
type Lead struct {
	FirstName    string
	LastName     string
	Email        string
	Phone        string
	Notes        string
	Conversation string
	Source       string
	SessionID    string
}

// SyncStatus is the CRM outcome stored with a lead record.
type SyncStatus string

const (
	SyncStatusSynced SyncStatus = "synced"
	SyncStatusFailed SyncStatus = "failed"
)

// RecordID accepts both numeric and string primary keys.
type RecordID string

func (id *RecordID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = RecordID(s)
		return nil
	}
	if string(data) == "null" {
		*id = ""
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return err
	}
	*id = RecordID(data)
	return nil
}

// Record is the persisted lead row. Optional columns are nil when empty.
type Record struct {
	ID                  RecordID   `json:"id,omitempty"`
	SessionID           *string    `json:"session_id"`
	FirstName           string     `json:"first_name"`
	LastName            string     `json:"last_name"`
	Email               *string    `json:"email"`
	Phone               *string    `json:"phone"`
	Notes               *string    `json:"notes"`
	ConversationSnippet *string    `json:"conversation_snippet"`
	Source              string     `json:"source"`
	Status              *string    `json:"status,omitempty"`
	BoldTrailSyncStatus SyncStatus `json:"boldtrail_sync_status"`
	BoldTrailContactID  *string    `json:"boldtrail_contact_id"`
	SubmittedAt         time.Time  `json:"submitted_at"`
	CreatedAt           *time.Time `json:"created_at,omitempty"`
}

// NewRecord builds the row for a forwarded lead.
func NewRecord(lead Lead, status SyncStatus, contactID string, submittedAt time.Time) *Record {
	return &Record{
		SessionID:           nullable(lead.SessionID),
		FirstName:           lead.FirstName,
		LastName:            lead.LastName,
		Email:               nullable(lead.Email),
		Phone:               nullable(lead.Phone),
		Notes:               nullable(lead.Notes),
		ConversationSnippet: nullable(lead.Conversation),
		Source:              lead.Source,
		BoldTrailSyncStatus: status,
		BoldTrailContactID:  nullable(contactID),
		SubmittedAt:         submittedAt.UTC(),
	}
}

func nullable(s string) *string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
