package check

import "time"

// Catalog IDs. The order of Catalog is the order findings are reported in.
const (
	IDCSPPresence        = "csp-presence"
	IDCSPStrictness      = "csp-strictness"
	IDFrameOptions       = "frame-options"
	IDContentTypeOptions = "content-type-options"
	IDReferrerPolicy     = "referrer-policy"
	IDPermissionsPolicy  = "permissions-policy"
	IDHSTS               = "hsts"
	IDMixedContent       = "mixed-content"
	IDCookieAttributes   = "cookie-attributes"
	IDSRI                = "sri"
	IDCORS               = "cors"
	IDTLSCertificate     = "tls-certificate"
	IDServerDisclosure   = "server-disclosure"
)

// DefaultCertExpiryWarning is how close to expiry a certificate gets flagged.
const DefaultCertExpiryWarning = 30 * 24 * time.Hour

// Options tunes the catalog.
type Options struct {
	// NonSessionCookies are exempt from the HttpOnly requirement.
	NonSessionCookies []string
	CertExpiryWarning time.Duration
}

// Catalog returns the fixed, ordered set of checks.
func Catalog(opts Options) []Check {
	if opts.CertExpiryWarning <= 0 {
		opts.CertExpiryWarning = DefaultCertExpiryWarning
	}
	return []Check{
		funcCheck{IDCSPPresence, "Content-Security-Policy present", cspPresence},
		funcCheck{IDCSPStrictness, "Content-Security-Policy strictness", cspStrictness},
		funcCheck{IDFrameOptions, "X-Frame-Options / frame-ancestors", frameOptions},
		funcCheck{IDContentTypeOptions, "X-Content-Type-Options", contentTypeOptions},
		funcCheck{IDReferrerPolicy, "Referrer-Policy", referrerPolicy},
		funcCheck{IDPermissionsPolicy, "Permissions-Policy", permissionsPolicy},
		funcCheck{IDHSTS, "Strict-Transport-Security", hsts},
		funcCheck{IDMixedContent, "Mixed-scheme redirects", mixedContent},
		newCookieCheck(opts.NonSessionCookies),
		funcCheck{IDSRI, "Subresource Integrity", sri},
		funcCheck{IDCORS, "CORS exposure", cors},
		tlsCheck{warnWithin: opts.CertExpiryWarning},
		funcCheck{IDServerDisclosure, "Server version disclosure", serverDisclosure},
	}
}

// IDs lists the IDs of checks in order.
func IDs(checks []Check) []string {
	out := make([]string, len(checks))
	for i, c := range checks {
		out[i] = c.ID()
	}
	return out
}
