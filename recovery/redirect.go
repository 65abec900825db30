package recovery

import (
	"regexp"
	"strings"
)

// redirectCharset is the full set of characters a post-recovery destination
// may contain: enough for local paths with query strings, nothing that can
// smuggle a scheme, host, fragment or encoded payload.
var redirectCharset = regexp.MustCompile(`^[a-zA-Z0-9_\-/.?&=]+$`)

// SanitizeRedirect accepts a caller-supplied post-recovery destination and
// returns it unchanged only if it is safe to use in a later redirect;
// otherwise it returns "". This is a security boundary against open
// redirects, and the same rule applies everywhere a redirect parameter is
// accepted — no exceptions.
//
// Rejected: values empty after trimming, absolute http:// or https:// URLs
// (case-insensitive), and anything containing a character outside
// [a-zA-Z0-9_\-/.?&=].
func SanitizeRedirect(raw string) string {
	s := strings.TrimSpace(raw)
	if s == "" {
		return ""
	}
	lower := strings.ToLower(s)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return ""
	}
	if !redirectCharset.MatchString(s) {
		return ""
	}
	return s
}
