package analytics

import "strings"

// FormatPhone renders ten-digit numbers as (xxx) xxx-xxxx and returns anything
// else unchanged.
func FormatPhone(p string) string {
	var digits strings.Builder
	for _, r := range p {
		if r >= '0' && r <= '9' {
			digits.WriteRune(r)
		}
	}
	d := digits.String()
	if len(d) != 10 {
		return p
	}
	return "(" + d[:3] + ") " + d[3:6] + "-" + d[6:]
}
