package policy

import "strings"

// Feature is one Permissions-Policy member, e.g. geolocation=(self).
type Feature struct {
	Name      string
	Allowlist []string
}

// ParsePermissionsPolicy checks the structured-field dictionary syntax of a
// Permissions-Policy value. Feature names are not validated against a
// registry.
func ParsePermissionsPolicy(value string) ([]Feature, error) {
	const header = "Permissions-Policy"
	if strings.TrimSpace(value) == "" {
		return nil, parseErr(header, value, "empty policy")
	}
	members, ok := splitTopLevel(value, ',')
	if !ok {
		return nil, parseErr(header, value, "unbalanced parentheses or quotes")
	}

	var out []Feature
	for _, m := range members {
		m = strings.TrimSpace(m)
		if m == "" {
			return nil, parseErr(header, value, "empty member")
		}
		// parameters (";report-to=x") are syntactically allowed and ignored
		if params, ok := splitTopLevel(m, ';'); ok && len(params) > 1 {
			m = strings.TrimSpace(params[0])
		}
		key, val, hasVal := strings.Cut(m, "=")
		key = strings.TrimSpace(key)
		if !isFeatureKey(key) {
			return nil, parseErr(header, value, "invalid feature name "+key)
		}
		f := Feature{Name: key}
		if hasVal {
			list, err := parseAllowlist(strings.TrimSpace(val))
			if err != "" {
				return nil, parseErr(header, value, err)
			}
			f.Allowlist = list
		}
		out = append(out, f)
	}
	return out, nil
}

func parseAllowlist(v string) ([]string, string) {
	switch {
	case v == "":
		return nil, "missing allowlist"
	case strings.HasPrefix(v, "("):
		if !strings.HasSuffix(v, ")") {
			return nil, "unterminated inner list"
		}
		var items []string
		for _, item := range strings.Fields(v[1 : len(v)-1]) {
			if !isItem(item) {
				return nil, "invalid allowlist item " + item
			}
			items = append(items, item)
		}
		return items, ""
	case isItem(v):
		return []string{v}, ""
	default:
		return nil, "invalid allowlist " + v
	}
}

func isItem(s string) bool {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return !strings.Contains(s[1:len(s)-1], `"`)
	}
	if s == "*" {
		return true
	}
	return isFeatureKey(s)
}

func isFeatureKey(s string) bool {
	if s == "" {
		return false
	}
	for i, r := range s {
		switch {
		case r >= 'a' && r <= 'z', r == '*':
		case i > 0 && (r >= '0' && r <= '9' || r == '-' || r == '_' || r == '.'):
		default:
			return false
		}
	}
	return true
}

// splitTopLevel splits on sep outside parentheses and quoted strings.
func splitTopLevel(s string, sep rune) ([]string, bool) {
	var (
		out     []string
		depth   int
		inQuote bool
		start   int
	)
	for i, r := range s {
		switch {
		case r == '"':
			inQuote = !inQuote
		case inQuote:
		case r == '(':
			depth++
		case r == ')':
			depth--
			if depth < 0 {
				return nil, false
			}
		case r == sep && depth == 0:
			out = append(out, s[start:i])
			start = i + 1
		}
	}
	if depth != 0 || inQuote {
		return nil, false
	}
	return append(out, s[start:]), true
}
