package policy

import "strings"

// Directive is one CSP directive with its source expressions.
type Directive struct {
	Name   string
	Values []string
}

// CSP is a parsed Content-Security-Policy.
type CSP struct {
	Directives []Directive
	index      map[string]int
}

// ParseCSP parses a single serialized policy. Directive names are
// lower-cased; when a directive repeats, the first occurrence wins.
func ParseCSP(value string) (*CSP, error) {
	const header = "Content-Security-Policy"
	if strings.TrimSpace(value) == "" {
		return nil, parseErr(header, value, "empty policy")
	}
	p := &CSP{index: make(map[string]int)}
	for _, part := range strings.Split(value, ";") {
		fields := strings.Fields(part)
		if len(fields) == 0 {
			continue
		}
		name := strings.ToLower(fields[0])
		if !isDirectiveName(name) {
			return nil, parseErr(header, value, "invalid directive name "+fields[0])
		}
		if _, dup := p.index[name]; dup {
			continue
		}
		p.index[name] = len(p.Directives)
		p.Directives = append(p.Directives, Directive{Name: name, Values: fields[1:]})
	}
	if len(p.Directives) == 0 {
		return nil, parseErr(header, value, "no directives")
	}
	return p, nil
}

// Has reports whether the directive is present.
func (p *CSP) Has(name string) bool {
	_, ok := p.index[strings.ToLower(name)]
	return ok
}

// Sources returns the source list of a directive.
func (p *CSP) Sources(name string) ([]string, bool) {
	i, ok := p.index[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return p.Directives[i].Values, true
}

// Contains reports whether a directive lists the given keyword source,
// compared case-insensitively (e.g. "'unsafe-inline'").
func (p *CSP) Contains(name, keyword string) bool {
	vals, ok := p.Sources(name)
	if !ok {
		return false
	}
	for _, v := range vals {
		if strings.EqualFold(v, keyword) {
			return true
		}
	}
	return false
}

// HasNonceOrHash reports whether a directive carries a nonce or hash source,
// which makes CSP2+ browsers ignore 'unsafe-inline' in the same directive.
func (p *CSP) HasNonceOrHash(name string) bool {
	vals, _ := p.Sources(name)
	for _, v := range vals {
		lv := strings.ToLower(v)
		if strings.HasPrefix(lv, "'nonce-") || strings.HasPrefix(lv, "'sha256-") ||
			strings.HasPrefix(lv, "'sha384-") || strings.HasPrefix(lv, "'sha512-") {
			return true
		}
	}
	return false
}

func isDirectiveName(s string) bool {
	for _, r := range s {
		if (r < 'a' || r > 'z') && (r < '0' || r > '9') && r != '-' {
			return false
		}
	}
	return s != ""
}
