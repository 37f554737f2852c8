package goVerify

import (
	"net/http"
	"regexp"
)

// TokenLocator extracts a raw token from a request. The boolean reports
// whether a token was found; absence is a normal outcome decided by the
// RejectMissingToken policy, not an error. Locators must be pure functions
// of the request.
type TokenLocator func(r *http.Request) (string, bool)

// Literal "Bearer" (any casing), a single space, then the token.
var bearerPattern = regexp.MustCompile(`(?i)^bearer (.+)$`)

// BearerTokenLocator returns the default locator: a case-insensitive header
// name match (empty header falls back to "Authorization") followed by the
// bearer-scheme pattern. When the header carries multiple values, the first
// one in request order is used; callers needing strict uniqueness supply
// their own locator.
func BearerTokenLocator(header string) TokenLocator {
	if header == "" {
		header = "Authorization"
	}

	return func(r *http.Request) (string, bool) {
		if r == nil {
			return "", false
		}

		// Header.Values canonicalizes the name, which gives the
		// case-insensitive match.
		values := r.Header.Values(header)
		if len(values) == 0 {
			return "", false
		}

		m := bearerPattern.FindStringSubmatch(values[0])
		if m == nil {
			return "", false
		}
		return m[1], true
	}
}
