package leads

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const (
	maxNameLen         = 100
	maxPhoneLen        = 20
	maxNotesLen        = 1000
	maxConversationLen = 4000
)

var (
	nameDisallowed = regexp.MustCompile(`[^A-Za-z0-9 .,'\-]`)
	emailShape     = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
)

// Sanitize validates a raw submission and normalizes it into a Lead.
// Rejections are checked in order: consent, name, contact channel, email shape.
func Sanitize(sub Submission) (Lead, error) {
	if !bool(sub.Consent) {
		return Lead{}, ErrConsentRequired
	}

	first, last := ResolveName(sub.FullName, sub.FirstName, sub.LastName)
	first, last = SanitizeName(first), SanitizeName(last)
	if first == "" || last == "" {
		return Lead{}, ErrNameRequired
	}

	email := SanitizeEmail(sub.Email)
	phone := SanitizePhone(sub.Phone)
	if email == "" && phone == "" {
		return Lead{}, ErrContactRequired
	}
	if email != "" && !ValidEmail(email) {
		return Lead{}, ErrInvalidEmail
	}

	source := strings.TrimSpace(sub.Source)
	if source == "" {
		source = DefaultSource
	}

	return Lead{
		FirstName:    first,
		LastName:     last,
		Email:        email,
		Phone:        phone,
		Notes:        truncateRunes(strings.TrimSpace(sub.Notes), maxNotesLen),
		Conversation: truncateRunes(strings.TrimSpace(sub.Conversation), maxConversationLen),
		Source:       source,
		SessionID:    strings.TrimSpace(sub.SessionID),
	}, nil
}

// ResolveName prefers explicit first/last names and fills whichever half is
// missing from fullName: first token as first name, the rest as last name.
func ResolveName(fullName, firstName, lastName string) (string, string) {
	first := strings.TrimSpace(firstName)
	last := strings.TrimSpace(lastName)
	if first != "" && last != "" {
		return first, last
	}
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return first, last
	}
	if first == "" {
		first = parts[0]
	}
	if last == "" && len(parts) > 1 {
		last = strings.Join(parts[1:], " ")
	}
	return first, last
}

// SanitizeName keeps letters, digits, space and . , ' - then trims and caps
// the result at 100 characters.
func SanitizeName(s string) string {
	s = strings.TrimSpace(nameDisallowed.ReplaceAllString(s, ""))
	if len(s) > maxNameLen {
		s = strings.TrimSpace(s[:maxNameLen])
	}
	return s
}

// SanitizeEmail trims and lowercases.
func SanitizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// ValidEmail checks the local@domain.tld shape.
func ValidEmail(s string) bool {
	return emailShape.MatchString(s)
}

// SanitizePhone keeps digits and a leading plus sign, capped at 20 characters.
func SanitizePhone(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && b.Len() == 0:
			b.WriteRune(r)
		}
	}
	out := b.String()
	if out == "+" {
		return ""
	}
	if len(out) > maxPhoneLen {
		out = out[:maxPhoneLen]
	}
	return out
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	runes := []rune(s)
	return string(runes[:n])
}
