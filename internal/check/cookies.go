package check

import (
	"fmt"
	"strings"

	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/policy"
)

const (
	headerSetCookie = "Set-Cookie"

	fixCookie = "Set Secure, HttpOnly and SameSite=Lax (or Strict) on session cookies; SameSite=None requires Secure."
)

type cookieCheck struct {
	exempt map[string]bool
}

func newCookieCheck(nonSession []string) cookieCheck {
	exempt := make(map[string]bool, len(nonSession))
	for _, name := range nonSession {
		if name = strings.TrimSpace(name); name != "" {
			exempt[name] = true
		}
	}
	return cookieCheck{exempt: exempt}
}

func (cookieCheck) ID() string    { return IDCookieAttributes }
func (cookieCheck) Title() string { return "Cookie attributes" }

func (c cookieCheck) Evaluate(res *model.FetchResult) []model.Finding {
	var out []model.Finding
	for _, raw := range res.Values(headerSetCookie) {
		ck, err := policy.ParseSetCookie(raw)
		if err != nil {
			out = append(out, couldNotParse(err, fixCookie, nil))
			continue
		}
		if problems := c.problems(ck); len(problems) > 0 {
			msg := fmt.Sprintf("cookie %q: %s", ck.Name, strings.Join(problems, ", "))
			out = append(out, fail(msg, fixCookie, ck.Redacted()))
		}
	}
	return out
}

func (c cookieCheck) problems(ck policy.Cookie) []string {
	var p []string
	if !ck.Secure {
		p = append(p, "missing Secure")
	}
	if !ck.HttpOnly && !c.exempt[ck.Name] {
		p = append(p, "missing HttpOnly")
	}
	switch {
	case !ck.HasSameSite:
		p = append(p, "missing SameSite")
	case !ck.ValidSameSite():
		p = append(p, fmt.Sprintf("invalid SameSite value %q", ck.SameSite))
	case strings.EqualFold(ck.SameSite, "none") && !ck.Secure:
		p = append(p, "SameSite=None without Secure")
	}
	return p
}
