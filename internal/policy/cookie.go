package policy

import "strings"

// Cookie holds the attributes of one Set-Cookie line that matter for the
// audit.
type Cookie struct {
	Name     string
	Value    string
	Secure   bool
	HttpOnly bool
	// SameSite keeps the value as sent; HasSameSite distinguishes an absent
	// attribute from an empty one.
	SameSite    string
	HasSameSite bool
	Attrs       []string
}

// ParseSetCookie parses one Set-Cookie header line.
func ParseSetCookie(raw string) (Cookie, error) {
	parts := strings.Split(raw, ";")
	name, value, ok := strings.Cut(parts[0], "=")
	name = strings.TrimSpace(name)
	if !ok || name == "" {
		return Cookie{}, parseErr("Set-Cookie", raw, "missing cookie name")
	}

	c := Cookie{Name: name, Value: strings.TrimSpace(value)}
	for _, part := range parts[1:] {
		attr := strings.TrimSpace(part)
		if attr == "" {
			continue
		}
		c.Attrs = append(c.Attrs, attr)
		key, val, _ := strings.Cut(attr, "=")
		switch strings.ToLower(strings.TrimSpace(key)) {
		case "secure":
			c.Secure = true
		case "httponly":
			c.HttpOnly = true
		case "samesite":
			c.HasSameSite = true
			c.SameSite = strings.TrimSpace(val)
		}
	}
	return c, nil
}

// ValidSameSite reports whether SameSite is one of Strict, Lax or None.
func (c Cookie) ValidSameSite() bool {
	switch strings.ToLower(c.SameSite) {
	case "strict", "lax", "none":
		return c.HasSameSite
	}
	return false
}

// Redacted renders the cookie with its value hidden, for use as evidence.
func (c Cookie) Redacted() string {
	val := ""
	if c.Value != "" {
		val = "[redacted]"
	}
	parts := append([]string{c.Name + "=" + val}, c.Attrs...)
	return strings.Join(parts, "; ")
}
