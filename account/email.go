package account

import (
	"net/mail"
	"strings"
)

// ValidEmail reports whether s is a syntactically valid bare email address.
// Display names ("Jane <jane@x.com>") and surrounding whitespace are rejected:
// the datastore stores the exact address, and lookup is an exact match.
func ValidEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil {
		return false
	}
	if addr.Address != s {
		return false
	}
	// mail.ParseAddress accepts local-only addresses; customers always have
	// a dotted domain.
	domain := s[strings.LastIndex(s, "@")+1:]
	return strings.Contains(domain, ".")
}
