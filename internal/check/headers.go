package check

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/policy"
)

const (
	headerXFO         = "X-Frame-Options"
	headerXCTO        = "X-Content-Type-Options"
	headerReferrer    = "Referrer-Policy"
	headerPermissions = "Permissions-Policy"
	headerFeature     = "Feature-Policy"
	headerACAO        = "Access-Control-Allow-Origin"
	headerACAC        = "Access-Control-Allow-Credentials"

	fixFrame       = "Set \"X-Frame-Options: DENY\" (or SAMEORIGIN), or add a CSP frame-ancestors directive."
	fixXCTO        = "Set \"X-Content-Type-Options: nosniff\" on all responses."
	fixReferrer    = "Set \"Referrer-Policy: strict-origin-when-cross-origin\" or a stricter policy."
	fixPermissions = "Declare browser feature access explicitly, e.g. \"Permissions-Policy: geolocation=(), camera=(), microphone=()\"."
	fixCORS        = "Echo a specific trusted origin instead of \"*\" or \"null\" when credentials are allowed."
)

var allowedReferrerPolicies = map[string]bool{
	"no-referrer":                     true,
	"same-origin":                     true,
	"strict-origin":                   true,
	"strict-origin-when-cross-origin": true,
}

func frameOptions(res *model.FetchResult) []model.Finding {
	if v, ok := res.Effective(headerCSP); ok {
		if p, err := policy.ParseCSP(v); err == nil && p.Has("frame-ancestors") {
			return nil
		}
	}
	xfo, ok := trimmed(res, headerXFO)
	if !ok {
		return []model.Finding{warn("neither X-Frame-Options nor CSP frame-ancestors is set", fixFrame)}
	}
	evidence := headerEvidence(res, headerXFO)
	switch v := strings.ToUpper(xfo); {
	case v == "DENY", v == "SAMEORIGIN":
		return nil
	case strings.HasPrefix(v, "ALLOW-FROM"):
		return []model.Finding{warn("X-Frame-Options ALLOW-FROM is obsolete and ignored by current browsers", fixFrame, evidence...)}
	default:
		return []model.Finding{warn(fmt.Sprintf("X-Frame-Options has unrecognised value %q", xfo), fixFrame, evidence...)}
	}
}

func contentTypeOptions(res *model.FetchResult) []model.Finding {
	v, ok := trimmed(res, headerXCTO)
	if !ok {
		return []model.Finding{fail(headerXCTO+" header is missing", fixXCTO)}
	}
	if strings.EqualFold(v, "nosniff") {
		return nil
	}
	return []model.Finding{fail(fmt.Sprintf("%s is %q, expected nosniff", headerXCTO, v), fixXCTO, headerEvidence(res, headerXCTO)...)}
}

func referrerPolicy(res *model.FetchResult) []model.Finding {
	v, ok := res.Effective(headerReferrer)
	if !ok {
		return []model.Finding{warn(headerReferrer+" header is missing", fixReferrer)}
	}
	evidence := headerEvidence(res, headerReferrer)
	tok, err := policy.ParseReferrerPolicy(v)
	if err != nil {
		return []model.Finding{couldNotParse(err, fixReferrer, evidence)}
	}
	if !allowedReferrerPolicies[tok] {
		return []model.Finding{warn(fmt.Sprintf("%s %q may leak full URLs to other origins", headerReferrer, tok), fixReferrer, evidence...)}
	}
	return nil
}

func permissionsPolicy(res *model.FetchResult) []model.Finding {
	v, ok := res.Effective(headerPermissions)
	if !ok {
		if legacy := headerEvidence(res, headerFeature); len(legacy) > 0 {
			return []model.Finding{info(headerPermissions+" header is missing; only the deprecated Feature-Policy is set", legacy...)}
		}
		return []model.Finding{info(headerPermissions + " header is missing")}
	}
	if _, err := policy.ParsePermissionsPolicy(v); err != nil {
		return []model.Finding{couldNotParse(err, fixPermissions, headerEvidence(res, headerPermissions))}
	}
	return nil
}

func cors(res *model.FetchResult) []model.Finding {
	origin, ok := trimmed(res, headerACAO)
	if !ok {
		return nil
	}
	creds, _ := trimmed(res, headerACAC)
	if !strings.EqualFold(creds, "true") {
		return nil
	}
	evidence := append(headerEvidence(res, headerACAO), headerEvidence(res, headerACAC)...)
	switch strings.ToLower(origin) {
	case "*":
		return []model.Finding{fail("wildcard Access-Control-Allow-Origin combined with Access-Control-Allow-Credentials: true", fixCORS, evidence...)}
	case "null":
		return []model.Finding{warn("\"null\" origin is trusted with credentials; sandboxed documents and file: pages send it", fixCORS, evidence...)}
	}
	return nil
}

var versionPattern = regexp.MustCompile(`\d+(\.\d+)*`)

func serverDisclosure(res *model.FetchResult) []model.Finding {
	var out []model.Finding
	for _, name := range []string{"Server", "X-Powered-By", "X-AspNet-Version"} {
		v, ok := trimmed(res, name)
		if !ok {
			continue
		}
		if ver := versionPattern.FindString(v); ver != "" {
			out = append(out, info(fmt.Sprintf("%s header discloses version %s", name, ver), headerEvidence(res, name)...))
		}
	}
	return out
}
