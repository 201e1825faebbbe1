package policy

import (
	"strconv"
	"strings"
)

// HSTS is a parsed Strict-Transport-Security value.
type HSTS struct {
	MaxAge            int64
	IncludeSubDomains bool
	Preload           bool
}

// ParseHSTS follows RFC 6797: max-age is required, and a value with any
// directive repeated is invalid.
func ParseHSTS(value string) (HSTS, error) {
	const header = "Strict-Transport-Security"
	var (
		out       HSTS
		seen      = make(map[string]bool)
		hasMaxAge bool
	)
	for _, part := range strings.Split(value, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, val, _ := strings.Cut(part, "=")
		name = strings.ToLower(strings.TrimSpace(name))
		if seen[name] {
			return HSTS{}, parseErr(header, value, "directive "+name+" repeated")
		}
		seen[name] = true

		switch name {
		case "max-age":
			val = strings.Trim(strings.TrimSpace(val), `"`)
			n, err := strconv.ParseInt(val, 10, 64)
			if err != nil || n < 0 {
				return HSTS{}, parseErr(header, value, "max-age is not a non-negative integer")
			}
			out.MaxAge = n
			hasMaxAge = true
		case "includesubdomains":
			out.IncludeSubDomains = true
		case "preload":
			out.Preload = true
		}
	}
	if !hasMaxAge {
		return HSTS{}, parseErr(header, value, "missing max-age")
	}
	return out, nil
}
