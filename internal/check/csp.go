package check

import (
	"fmt"

	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/policy"
)

const (
	headerCSP           = "Content-Security-Policy"
	headerCSPReportOnly = "Content-Security-Policy-Report-Only"

	fixCSPPresence   = "Send a Content-Security-Policy header, starting from \"default-src 'self'\" and widening per resource type."
	fixCSPStrictness = "Remove 'unsafe-inline' and 'unsafe-eval' from script-src/default-src; use nonces or hashes for inline scripts and set a default-src fallback."
)

func cspPresence(res *model.FetchResult) []model.Finding {
	if len(res.Values(headerCSP)) > 0 {
		return nil
	}
	if ro := headerEvidence(res, headerCSPReportOnly); len(ro) > 0 {
		return []model.Finding{fail(headerCSP+" header is missing; only the report-only variant is set, which enforces nothing", fixCSPPresence, ro...)}
	}
	return []model.Finding{fail(headerCSP+" header is missing", fixCSPPresence)}
}

// cspStrictness only speaks when a policy is present; absence belongs to
// cspPresence.
func cspStrictness(res *model.FetchResult) []model.Finding {
	v, ok := res.Effective(headerCSP)
	if !ok {
		return nil
	}
	evidence := headerEvidence(res, headerCSP)
	p, err := policy.ParseCSP(v)
	if err != nil {
		return []model.Finding{couldNotParse(err, fixCSPStrictness, evidence)}
	}

	var out []model.Finding
	for _, dir := range []string{"script-src", "default-src"} {
		if p.Contains(dir, "'unsafe-eval'") {
			out = append(out, warn(fmt.Sprintf("%s allows 'unsafe-eval'", dir), fixCSPStrictness, evidence...))
		}
		if p.Contains(dir, "'unsafe-inline'") && !p.HasNonceOrHash(dir) {
			out = append(out, warn(fmt.Sprintf("%s allows 'unsafe-inline'", dir), fixCSPStrictness, evidence...))
		}
	}
	if !p.Has("default-src") && !(p.Has("script-src") && p.Has("object-src")) {
		out = append(out, warn("policy has no default-src fallback", fixCSPStrictness, evidence...))
	}
	return out
}
