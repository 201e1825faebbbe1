package policy

import "strings"

// ParseReferrerPolicy returns the effective policy token. A comma-separated
// list is allowed; browsers apply the last token they understand, so the last
// non-empty token is returned.
func ParseReferrerPolicy(value string) (string, error) {
	var last string
	for _, tok := range strings.Split(value, ",") {
		if tok = strings.ToLower(strings.TrimSpace(tok)); tok != "" {
			last = tok
		}
	}
	if last == "" {
		return "", parseErr("Referrer-Policy", value, "empty policy")
	}
	return last, nil
}
