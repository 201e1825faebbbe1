package httpclient

import (
	"crypto/tls"
	"net"
	"net/http"
	"net/url"
	"time"
)

// DefaultUserAgent identifies audit requests.
const DefaultUserAgent = "HeaderHunter/1.0 (+https://github.com/selimozcann/HeaderHunter)"

// Config holds settings for the HTTP client.
type Config struct {
	Timeout   time.Duration
	Proxy     func(*http.Request) (*url.URL, error)
	Headers   http.Header
	Cookie    string
	UserAgent string
	Insecure  bool
}

// headerRoundTripper wraps a base RoundTripper to inject headers, cookies and
// the user agent into every outgoing request.
type headerRoundTripper struct {
	base      http.RoundTripper
	headers   http.Header
	cookie    string
	userAgent string
}

func (h *headerRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	base := h.base
	if base == nil {
		base = http.DefaultTransport
	}

	// RoundTrippers must not modify the caller's request.
	r := req.Clone(req.Context())
	for k, vs := range h.headers {
		r.Header.Del(k)
		for _, v := range vs {
			r.Header.Add(k, v)
		}
	}
	if h.cookie != "" {
		r.Header.Set("Cookie", h.cookie)
	}
	if r.Header.Get("User-Agent") == "" {
		r.Header.Set("User-Agent", h.userAgent)
	}
	return base.RoundTrip(r)
}

// New returns a configured HTTP client with manual redirect handling. The
// caller is responsible for following Location headers.
func New(cfg Config) *http.Client {
	ua := cfg.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	transport := &http.Transport{
		Proxy:           cfg.Proxy,
		TLSClientConfig: &tls.Config{InsecureSkipVerify: cfg.Insecure}, // #nosec G402 -- opt-in via -insecure
		DialContext: (&net.Dialer{
			Timeout:   cfg.Timeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: cfg.Timeout,
		ForceAttemptHTTP2:   true,
	}

	return &http.Client{
		Transport: &headerRoundTripper{
			base:      transport,
			headers:   cfg.Headers,
			cookie:    cfg.Cookie,
			userAgent: ua,
		},
		Timeout: cfg.Timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}
