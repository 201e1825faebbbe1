package check_test

import (
	"net/http"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/selimozcann/HeaderHunter/internal/check"
	"github.com/selimozcann/HeaderHunter/internal/model"
)

var fetchedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func newResult(finalURL string, kv ...string) *model.FetchResult {
	h := http.Header{}
	for i := 0; i+1 < len(kv); i += 2 {
		h.Add(kv[i], kv[i+1])
	}
	return &model.FetchResult{
		RequestURL: finalURL,
		FinalURL:   finalURL,
		StatusCode: 200,
		Chain:      []model.Hop{{Index: 0, URL: finalURL, Status: 200, Final: true}},
		Header:     h,
		FetchedAt:  fetchedAt,
	}
}

func withTLS(res *model.FetchResult) *model.FetchResult {
	res.TLS = &model.TLSInfo{
		Version:     "TLS 1.3",
		CipherSuite: "TLS_AES_128_GCM_SHA256",
		NotBefore:   fetchedAt.AddDate(-1, 0, 0),
		NotAfter:    fetchedAt.AddDate(1, 0, 0),
	}
	return res
}

func evaluate(res *model.FetchResult, opts check.Options) []model.Finding {
	return check.NewEngine(check.Catalog(opts)).Evaluate(res)
}

func byCheck(findings []model.Finding, id string) []model.Finding {
	var out []model.Finding
	for _, f := range findings {
		if f.Check == id {
			out = append(out, f)
		}
	}
	return out
}

func countSeverity(findings []model.Finding, sev model.Severity) int {
	n := 0
	for _, f := range findings {
		if f.Severity == sev {
			n++
		}
	}
	return n
}

func hardenedResult() *model.FetchResult {
	return withTLS(newResult("https://example.com/",
		"Content-Security-Policy", "default-src 'self'",
		"X-Content-Type-Options", "nosniff",
		"Strict-Transport-Security", "max-age=31536000; includeSubDomains",
	))
}

func TestHardenedHeadersHaveNoFailures(t *testing.T) {
	findings := evaluate(hardenedResult(), check.Options{})
	for _, f := range findings {
		if f.Severity == model.SeverityFail {
			t.Fatalf("unexpected fail finding: %+v", f)
		}
	}
}

func TestNoSecurityHeaders(t *testing.T) {
	findings := evaluate(withTLS(newResult("https://example.com/")), check.Options{})
	for _, id := range []string{check.IDCSPPresence, check.IDContentTypeOptions, check.IDHSTS} {
		got := byCheck(findings, id)
		if len(got) != 1 || got[0].Severity != model.SeverityFail {
			t.Fatalf("expected one fail for %s, got %+v", id, got)
		}
	}
}

func TestMissingCSPYieldsExactlyOneFailure(t *testing.T) {
	findings := evaluate(withTLS(newResult("https://example.com/", "X-Content-Type-Options", "nosniff")), check.Options{})
	var csp []model.Finding
	for _, f := range findings {
		if strings.HasPrefix(f.Check, "csp-") {
			csp = append(csp, f)
		}
	}
	if len(csp) != 1 || csp[0].Check != check.IDCSPPresence || csp[0].Severity != model.SeverityFail {
		t.Fatalf("expected a single csp-presence fail, got %+v", csp)
	}
}

func TestCookieAttributes(t *testing.T) {
	tests := []struct {
		name      string
		cookies   []string
		exempt    []string
		wantFails int
		wantName  string
		wantText  string
	}{
		{"missing httponly", []string{"session=abc; Secure; SameSite=Strict"}, nil, 1, `"session"`, "missing HttpOnly"},
		{"samesite none without secure", []string{"track=1; HttpOnly; SameSite=None"}, nil, 1, `"track"`, "SameSite=None without Secure"},
		{"hardened", []string{"session=abc; Secure; HttpOnly; SameSite=Lax"}, nil, 0, "", ""},
		{"exempt preference cookie", []string{"theme=dark; Secure; SameSite=Lax"}, []string{"theme"}, 0, "", ""},
		{"invalid samesite", []string{"id=1; Secure; HttpOnly; SameSite=Sometimes"}, nil, 1, `"id"`, "invalid SameSite"},
		{"one finding per cookie", []string{"a=1", "b=2; Secure; HttpOnly; SameSite=Strict", "c=3; Secure"}, nil, 2, `"a"`, "missing Secure"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := hardenedResult()
			for _, c := range tt.cookies {
				res.Header.Add("Set-Cookie", c)
			}
			got := byCheck(evaluate(res, check.Options{NonSessionCookies: tt.exempt}), check.IDCookieAttributes)
			if countSeverity(got, model.SeverityFail) != tt.wantFails || len(got) != tt.wantFails {
				t.Fatalf("expected %d fail findings, got %+v", tt.wantFails, got)
			}
			if tt.wantFails == 0 {
				return
			}
			if !strings.Contains(got[0].Message, tt.wantName) || !strings.Contains(got[0].Message, tt.wantText) {
				t.Fatalf("unexpected message %q", got[0].Message)
			}
			if len(got[0].Evidence) != 1 || strings.Contains(got[0].Evidence[0], "abc") {
				t.Fatalf("expected redacted evidence, got %v", got[0].Evidence)
			}
		})
	}
}

func TestMixedSchemeChain(t *testing.T) {
	res := newResult("http://a.example/",
		"Content-Security-Policy", "default-src 'self'",
		"X-Content-Type-Options", "nosniff",
	)
	res.Chain = []model.Hop{
		{Index: 0, URL: "http://a.example/", Status: 301},
		{Index: 1, URL: "https://a.example/", Status: 302},
		{Index: 2, URL: "http://a.example/", Status: 200, Final: true},
	}
	res.Upgraded, res.Downgraded = true, true

	findings := evaluate(res, check.Options{})
	mixed := byCheck(findings, check.IDMixedContent)
	if len(mixed) != 1 || mixed[0].Severity != model.SeverityFail {
		t.Fatalf("expected one mixed-content fail, got %+v", mixed)
	}
	if mixed[0].Evidence[0] != "https://a.example/ -> http://a.example/" {
		t.Fatalf("unexpected evidence %v", mixed[0].Evidence)
	}
	hsts := byCheck(findings, check.IDHSTS)
	if len(hsts) != 1 || hsts[0].Severity != model.SeverityInfo {
		t.Fatalf("expected informational hsts finding after an upgrade, got %+v", hsts)
	}
}

func TestHSTS(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		value   string
		want    model.Severity
		wantMsg string
	}{
		{"short max-age", "https://example.com/", "max-age=300", model.SeverityFail, "below"},
		{"zero max-age", "https://example.com/", "max-age=0", model.SeverityFail, "below"},
		{"unparseable", "https://example.com/", "includeSubDomains", model.SeverityWarn, "could not parse"},
		{"plain http", "http://example.com/", "", model.SeverityFail, "plain HTTP"},
		{"ok", "https://example.com/", "max-age=15768000", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newResult(tt.url)
			if tt.value != "" {
				res.Header.Add("Strict-Transport-Security", tt.value)
			}
			got := byCheck(evaluate(res, check.Options{}), check.IDHSTS)
			if tt.want == "" {
				if len(got) != 0 {
					t.Fatalf("expected no findings, got %+v", got)
				}
				return
			}
			if len(got) != 1 || got[0].Severity != tt.want || !strings.Contains(got[0].Message, tt.wantMsg) {
				t.Fatalf("unexpected findings %+v", got)
			}
		})
	}
}

func TestRepeatedHeaderUsesLastOccurrence(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		fails  int
	}{
		{"bad then good", []string{"sniff", "nosniff"}, 0},
		{"good then bad", []string{"nosniff", "sniff"}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newResult("https://example.com/")
			for _, v := range tt.values {
				res.Header.Add("X-Content-Type-Options", v)
			}
			got := byCheck(evaluate(res, check.Options{}), check.IDContentTypeOptions)
			if len(got) != tt.fails {
				t.Fatalf("expected %d findings, got %+v", tt.fails, got)
			}
			if tt.fails == 1 && len(got[0].Evidence) != 2 {
				t.Fatalf("expected every occurrence as evidence, got %v", got[0].Evidence)
			}
		})
	}
}

func TestCSPStrictness(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{"strict", "default-src 'self'", nil},
		{"unsafe inline", "default-src 'self'; script-src 'self' 'unsafe-inline'", []string{"script-src allows 'unsafe-inline'"}},
		{"inline with nonce", "default-src 'self'; script-src 'nonce-abc' 'unsafe-inline'", nil},
		{"unsafe eval", "default-src 'self' 'unsafe-eval'", []string{"default-src allows 'unsafe-eval'"}},
		{"no fallback", "img-src 'self'", []string{"no default-src fallback"}},
		{"script and object", "script-src 'self'; object-src 'none'", nil},
		{"unparseable", ";;", []string{"could not parse"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newResult("https://example.com/", "Content-Security-Policy", tt.value)
			got := byCheck(evaluate(res, check.Options{}), check.IDCSPStrictness)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d findings, got %+v", len(tt.want), got)
			}
			for i, f := range got {
				if f.Severity != model.SeverityWarn || !strings.Contains(f.Message, tt.want[i]) {
					t.Fatalf("unexpected finding %+v", f)
				}
			}
		})
	}
}

func TestFrameOptions(t *testing.T) {
	tests := []struct {
		name string
		kv   []string
		want int
	}{
		{"deny", []string{"X-Frame-Options", "DENY"}, 0},
		{"sameorigin lower", []string{"X-Frame-Options", "sameorigin"}, 0},
		{"frame-ancestors", []string{"Content-Security-Policy", "frame-ancestors 'none'"}, 0},
		{"allow-from", []string{"X-Frame-Options", "ALLOW-FROM https://x.example"}, 1},
		{"missing", nil, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := byCheck(evaluate(newResult("https://example.com/", tt.kv...), check.Options{}), check.IDFrameOptions)
			if len(got) != tt.want {
				t.Fatalf("expected %d findings, got %+v", tt.want, got)
			}
		})
	}
}

func TestReferrerAndPermissionsPolicy(t *testing.T) {
	res := newResult("https://example.com/", "Referrer-Policy", "unsafe-url")
	got := byCheck(evaluate(res, check.Options{}), check.IDReferrerPolicy)
	if len(got) != 1 || got[0].Severity != model.SeverityWarn {
		t.Fatalf("expected referrer warn, got %+v", got)
	}

	res = newResult("https://example.com/", "Referrer-Policy", "no-referrer, strict-origin-when-cross-origin")
	if got := byCheck(evaluate(res, check.Options{}), check.IDReferrerPolicy); len(got) != 0 {
		t.Fatalf("expected no referrer findings, got %+v", got)
	}

	perm := byCheck(evaluate(newResult("https://example.com/"), check.Options{}), check.IDPermissionsPolicy)
	if len(perm) != 1 || perm[0].Severity != model.SeverityInfo {
		t.Fatalf("expected permissions info, got %+v", perm)
	}
	res = newResult("https://example.com/", "Permissions-Policy", "geolocation=(), camera=(self)")
	if got := byCheck(evaluate(res, check.Options{}), check.IDPermissionsPolicy); len(got) != 0 {
		t.Fatalf("expected no permissions findings, got %+v", got)
	}
}

func TestCORS(t *testing.T) {
	tests := []struct {
		origin, creds string
		want          model.Severity
	}{
		{"*", "true", model.SeverityFail},
		{"null", "true", model.SeverityWarn},
		{"*", "", ""},
		{"https://app.example", "true", ""},
	}
	for _, tt := range tests {
		kv := []string{"Access-Control-Allow-Origin", tt.origin}
		if tt.creds != "" {
			kv = append(kv, "Access-Control-Allow-Credentials", tt.creds)
		}
		got := byCheck(evaluate(newResult("https://example.com/", kv...), check.Options{}), check.IDCORS)
		if tt.want == "" {
			if len(got) != 0 {
				t.Fatalf("%s/%s: expected no findings, got %+v", tt.origin, tt.creds, got)
			}
			continue
		}
		if len(got) != 1 || got[0].Severity != tt.want {
			t.Fatalf("%s/%s: unexpected findings %+v", tt.origin, tt.creds, got)
		}
	}
}

func TestSRI(t *testing.T) {
	body := `<!doctype html><html><head>
<script src="/app.js"></script>
<script src="https://cdn.other.example/lib.js"></script>
<script src="https://cdn.other.example/ok.js" integrity="sha384-abc"></script>
<link rel="stylesheet" href="https://static.example.com/site.css">
<link rel="icon" href="https://cdn.other.example/favicon.ico">
</head></html>`
	res := newResult("https://example.com/", "Content-Type", "text/html; charset=utf-8")
	res.Body = []byte(body)

	got := byCheck(evaluate(res, check.Options{}), check.IDSRI)
	if len(got) != 2 {
		t.Fatalf("expected 2 sri findings, got %+v", got)
	}
	if !strings.Contains(got[0].Message, "third-party script") || !strings.Contains(got[0].Message, "lib.js") {
		t.Fatalf("unexpected first finding %q", got[0].Message)
	}
	if !strings.Contains(got[1].Message, "cross-origin stylesheet") {
		t.Fatalf("unexpected second finding %q", got[1].Message)
	}
	for _, f := range got {
		if f.Severity != model.SeverityWarn || len(f.Evidence) != 1 {
			t.Fatalf("unexpected finding %+v", f)
		}
	}

	res.Header.Set("Content-Type", "application/json")
	if got := byCheck(evaluate(res, check.Options{}), check.IDSRI); len(got) != 0 {
		t.Fatalf("expected non-HTML body to be skipped, got %+v", got)
	}
}

func TestTLSCertificate(t *testing.T) {
	tests := []struct {
		name      string
		notBefore time.Time
		notAfter  time.Time
		version   string
		want      []model.Severity
	}{
		{"valid", fetchedAt.AddDate(-1, 0, 0), fetchedAt.AddDate(1, 0, 0), "TLS 1.3", nil},
		{"expired", fetchedAt.AddDate(-1, 0, 0), fetchedAt.Add(-time.Hour), "TLS 1.2", []model.Severity{model.SeverityFail}},
		{"not yet valid", fetchedAt.Add(time.Hour), fetchedAt.AddDate(1, 0, 0), "TLS 1.2", []model.Severity{model.SeverityFail}},
		{"expiring soon", fetchedAt.AddDate(-1, 0, 0), fetchedAt.AddDate(0, 0, 10), "TLS 1.2", []model.Severity{model.SeverityWarn}},
		{"legacy protocol", fetchedAt.AddDate(-1, 0, 0), fetchedAt.AddDate(1, 0, 0), "TLS 1.0", []model.Severity{model.SeverityWarn}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := newResult("https://example.com/")
			res.TLS = &model.TLSInfo{Version: tt.version, NotBefore: tt.notBefore, NotAfter: tt.notAfter}
			got := byCheck(evaluate(res, check.Options{}), check.IDTLSCertificate)
			if len(got) != len(tt.want) {
				t.Fatalf("expected %d findings, got %+v", len(tt.want), got)
			}
			for i, f := range got {
				if f.Severity != tt.want[i] {
					t.Fatalf("finding %d: expected %s, got %+v", i, tt.want[i], f)
				}
			}
		})
	}
}

func TestServerDisclosure(t *testing.T) {
	res := newResult("https://example.com/", "Server", "nginx/1.25.3", "X-Powered-By", "PHP")
	got := byCheck(evaluate(res, check.Options{}), check.IDServerDisclosure)
	if len(got) != 1 || got[0].Severity != model.SeverityInfo || !strings.Contains(got[0].Message, "1.25.3") {
		t.Fatalf("unexpected findings %+v", got)
	}
}

func TestEvaluateIsIdempotent(t *testing.T) {
	res := hardenedResult()
	res.Header.Add("Set-Cookie", "session=abc; SameSite=None")
	res.Header.Add("Content-Type", "text/html")
	res.Body = []byte(`<script src="https://cdn.other.example/x.js"></script>`)

	engine := check.NewEngine(check.Catalog(check.Options{}))
	first := engine.Evaluate(res)
	second := engine.Evaluate(res)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("evaluate is not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestCatalogOrder(t *testing.T) {
	ids := check.IDs(check.Catalog(check.Options{}))
	if len(ids) != 13 || ids[0] != check.IDCSPPresence || ids[len(ids)-1] != check.IDServerDisclosure {
		t.Fatalf("unexpected catalog %v", ids)
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Fatalf("duplicate id %s", id)
		}
		seen[id] = true
	}
}
