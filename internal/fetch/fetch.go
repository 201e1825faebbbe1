package fetch

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/selimozcann/HeaderHunter/internal/detect"
	"github.com/selimozcann/HeaderHunter/internal/model"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxRedirects = 10
	DefaultMaxBodyBytes = 1 << 20

	// redirect bodies are drained, not stored
	maxDrainBytes = 64 << 10
)

// Options bounds a single fetch.
type Options struct {
	Timeout      time.Duration
	MaxRedirects int
	MaxBodyBytes int64
}

// Fetcher retrieves one target, following redirects manually so every hop
// is recorded.
type Fetcher struct {
	Client *http.Client
	opts   Options
	now    func() time.Time
}

// New creates a Fetcher. The client must not follow redirects itself; see
// httpclient.New.
func New(c *http.Client, opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = DefaultMaxBodyBytes
	}
	return &Fetcher{Client: c, opts: opts, now: time.Now}
}

// Options returns the effective options after defaults were applied.
func (f *Fetcher) Options() Options { return f.opts }

// ParseTarget validates that raw is an absolute http or https URL.
func ParseTarget(raw string) (*url.URL, error) {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTarget, err)
	}
	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, fmt.Errorf("%w: %q must use http or https", ErrInvalidTarget, raw)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: %q has no host", ErrInvalidTarget, raw)
	}
	u.Scheme = scheme
	return u, nil
}

// Fetch follows target's redirect chain and returns the final response. The
// timeout covers the whole chain. No retries are attempted.
func (f *Fetcher) Fetch(ctx context.Context, target string) (*model.FetchResult, error) {
	start, err := ParseTarget(target)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, f.opts.Timeout)
	defer cancel()

	res := &model.FetchResult{RequestURL: start.String(), FetchedAt: f.now().UTC()}
	current := start

	for i := 0; ; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, current.String(), nil)
		if err != nil {
			return nil, &NetworkError{URL: current.String(), Err: err}
		}
		began := time.Now()
		resp, err := f.Client.Do(req)
		if err != nil {
			return nil, f.classify(ctx, current.String(), err)
		}
		hop := model.Hop{Index: i, URL: current.String(), Status: resp.StatusCode, TimeMs: time.Since(began).Milliseconds()}

		if next, ok := nextLocation(current, resp); ok {
			_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrainBytes))
			_ = resp.Body.Close()
			res.Chain = append(res.Chain, hop)
			if i >= f.opts.MaxRedirects {
				return nil, &RedirectLoopError{URL: start.String(), Max: f.opts.MaxRedirects, Last: next.String()}
			}
			current = next
			continue
		}

		body, truncated, err := readBody(resp.Body, f.opts.MaxBodyBytes)
		_ = resp.Body.Close()
		if err != nil {
			return nil, f.classify(ctx, current.String(), err)
		}
		hop.TimeMs = time.Since(began).Milliseconds()
		hop.Final = true
		res.Chain = append(res.Chain, hop)

		res.FinalURL = current.String()
		res.StatusCode = resp.StatusCode
		res.Header = resp.Header.Clone()
		res.Body = body
		res.BodyTruncated = truncated
		res.TLS = tlsInfo(resp.TLS)
		break
	}

	res.Downgraded = len(detect.Downgrades(res.Chain)) > 0
	res.Upgraded = len(detect.Upgrades(res.Chain)) > 0
	return res, nil
}

// nextLocation returns the resolved redirect target for 3xx responses that
// carry a usable Location header.
func nextLocation(current *url.URL, resp *http.Response) (*url.URL, bool) {
	if resp.StatusCode < 300 || resp.StatusCode >= 400 {
		return nil, false
	}
	loc := resp.Header.Get("Location")
	if loc == "" {
		return nil, false
	}
	next, err := current.Parse(loc)
	if err != nil {
		return nil, false
	}
	scheme := strings.ToLower(next.Scheme)
	if scheme != "http" && scheme != "https" {
		return nil, false
	}
	next.Fragment = ""
	return next, true
}

func readBody(r io.Reader, limit int64) ([]byte, bool, error) {
	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return nil, false, err
	}
	if int64(len(data)) > limit {
		return data[:limit], true, nil
	}
	return data, false, nil
}

func tlsInfo(state *tls.ConnectionState) *model.TLSInfo {
	if state == nil {
		return nil
	}
	info := &model.TLSInfo{
		Version:     tls.VersionName(state.Version),
		CipherSuite: tls.CipherSuiteName(state.CipherSuite),
	}
	if len(state.PeerCertificates) > 0 {
		leaf := state.PeerCertificates[0]
		info.CertSubject = leaf.Subject.String()
		info.CertIssuer = leaf.Issuer.String()
		info.NotBefore = leaf.NotBefore.UTC()
		info.NotAfter = leaf.NotAfter.UTC()
	}
	return info
}

func (f *Fetcher) classify(ctx context.Context, target string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &TimeoutError{URL: target, Timeout: f.opts.Timeout, Err: err}
	}
	var nerr net.Error
	if errors.As(err, &nerr) && nerr.Timeout() {
		return &TimeoutError{URL: target, Timeout: f.opts.Timeout, Err: err}
	}
	return &NetworkError{URL: target, Err: err}
}
