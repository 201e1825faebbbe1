package check

import (
	"fmt"
	"time"

	"github.com/selimozcann/HeaderHunter/internal/detect"
	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/policy"
)

const (
	headerHSTS = "Strict-Transport-Security"

	// MinHSTSMaxAge is six months in seconds.
	MinHSTSMaxAge = 15768000

	fixHSTS      = "Serve the site over HTTPS and send \"Strict-Transport-Security: max-age=31536000; includeSubDomains\"."
	fixHSTSPlain = "Redirect all plain HTTP requests to HTTPS and send Strict-Transport-Security on the HTTPS response."
	fixMixed     = "Keep every redirect on HTTPS; never send users from an HTTPS URL back to plain HTTP."
	fixCertDate  = "Renew the certificate and automate renewal before the expiry date."
	fixTLSProto  = "Disable TLS 1.0 and 1.1 on the server; offer TLS 1.2 and 1.3 only."
)

func hsts(res *model.FetchResult) []model.Finding {
	if !detect.IsEncrypted(res.FinalURL) {
		if res.Upgraded {
			return []model.Finding{info("final response is plain HTTP after an earlier redirect to HTTPS; HSTS cannot apply")}
		}
		return []model.Finding{fail("site is served over plain HTTP with no redirect to HTTPS", fixHSTSPlain, "final URL: "+res.FinalURL)}
	}

	v, ok := res.Effective(headerHSTS)
	if !ok {
		return []model.Finding{fail(headerHSTS+" header is missing", fixHSTS)}
	}
	evidence := headerEvidence(res, headerHSTS)
	p, err := policy.ParseHSTS(v)
	if err != nil {
		return []model.Finding{couldNotParse(err, fixHSTS, evidence)}
	}
	if p.MaxAge < MinHSTSMaxAge {
		return []model.Finding{fail(fmt.Sprintf("max-age=%d is below the %d second minimum", p.MaxAge, MinHSTSMaxAge), fixHSTS, evidence...)}
	}
	return nil
}

func mixedContent(res *model.FetchResult) []model.Finding {
	downs := detect.Downgrades(res.Chain)
	if len(downs) == 0 {
		if res.Downgraded {
			return []model.Finding{fail("redirect chain moved from HTTPS to plain HTTP", fixMixed, "final URL: "+res.FinalURL)}
		}
		return nil
	}
	out := make([]model.Finding, 0, len(downs))
	for _, t := range downs {
		out = append(out, fail(fmt.Sprintf("redirect at hop %d downgrades HTTPS to plain HTTP", t.AtHop), fixMixed, t.String()))
	}
	return out
}

// tlsCheck compares the certificate validity window against the time the
// response was fetched, never the wall clock, so reruns stay identical.
type tlsCheck struct {
	warnWithin time.Duration
}

func (tlsCheck) ID() string    { return IDTLSCertificate }
func (tlsCheck) Title() string { return "TLS certificate and protocol" }

var weakTLSVersions = map[string]bool{
	"SSLv3":   true,
	"TLS 1.0": true,
	"TLS 1.1": true,
}

func (c tlsCheck) Evaluate(res *model.FetchResult) []model.Finding {
	t := res.TLS
	if t == nil {
		return nil
	}
	at := res.FetchedAt
	window := fmt.Sprintf("valid %s to %s", t.NotBefore.UTC().Format(time.RFC3339), t.NotAfter.UTC().Format(time.RFC3339))
	evidence := []string{window}
	if t.CertSubject != "" {
		evidence = append([]string{"subject: " + t.CertSubject}, evidence...)
	}

	var out []model.Finding
	switch {
	case t.NotAfter.IsZero() || at.IsZero():
	case at.After(t.NotAfter):
		out = append(out, fail("certificate has expired", fixCertDate, evidence...))
	case at.Before(t.NotBefore):
		out = append(out, fail("certificate is not yet valid", fixCertDate, evidence...))
	case t.NotAfter.Sub(at) < c.warnWithin:
		days := int(t.NotAfter.Sub(at).Hours() / 24)
		out = append(out, warn(fmt.Sprintf("certificate expires in %d days", days), fixCertDate, evidence...))
	}
	if weakTLSVersions[t.Version] {
		out = append(out, warn(fmt.Sprintf("negotiated %s", t.Version), fixTLSProto, "cipher: "+t.CipherSuite))
	}
	return out
}
