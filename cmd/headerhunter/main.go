package main

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/selimozcann/HeaderHunter/internal/audit"
	"github.com/selimozcann/HeaderHunter/internal/banner"
	"github.com/selimozcann/HeaderHunter/internal/check"
	"github.com/selimozcann/HeaderHunter/internal/fetch"
	"github.com/selimozcann/HeaderHunter/internal/httpclient"
	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/report"
	"github.com/selimozcann/HeaderHunter/internal/runner"
	"github.com/selimozcann/HeaderHunter/internal/server"
	"github.com/selimozcann/HeaderHunter/internal/statuscolor"
)

// Exit codes.
const (
	exitOK    = 0
	exitFail  = 1
	exitError = 2
)

type headerList []string

type options struct {
	url               string
	list              string
	format            string
	output            string
	nonSessionCookies string
	cookie            string
	userAgent         string
	headers           headerList
	proxy             string
	serve             string
	timeout           time.Duration
	maxRedirects      int
	maxBody           int64
	threads           int
	rateLimit         int
	insecure          bool
	allowInternal     bool
	color             bool
	verbose           bool
	silent            bool
}

func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(exitOK)
		}
		os.Exit(exitError)
	}
	if !opts.silent {
		banner.Print(os.Stderr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	code, err := run(ctx, opts, os.Stdout)
	if err != nil {
		fmt.Fprintf(os.Stderr, "[-] Error: %v\n", err)
	}
	stop()
	os.Exit(code)
}

func parseFlags(args []string) (options, error) {
	var opts options
	fs := flag.NewFlagSet("headerhunter", flag.ContinueOnError)
	fs.StringVar(&opts.url, "u", "", "Target URL")
	fs.StringVar(&opts.list, "l", "", "File of target URLs, one per line (# comments)")
	fs.StringVar(&opts.format, "format", "human", "Output format: human, json or html")
	fs.StringVar(&opts.output, "o", "", "Write the report to this file instead of stdout")
	fs.StringVar(&opts.nonSessionCookies, "non-session-cookies", "", "Comma-separated cookie names exempt from HttpOnly")
	fs.StringVar(&opts.cookie, "cookie", "", "Cookie header")
	fs.StringVar(&opts.userAgent, "ua", httpclient.DefaultUserAgent, "User-Agent header")
	fs.Var(&opts.headers, "H", "Extra HTTP header (repeatable)")
	fs.StringVar(&opts.proxy, "proxy", "", "HTTP(S) proxy URL")
	fs.StringVar(&opts.serve, "serve", "", "Listen address for the HTTP API, e.g. :8080")
	fs.DurationVar(&opts.timeout, "timeout", fetch.DefaultTimeout, "Timeout for the whole redirect chain")
	fs.IntVar(&opts.maxRedirects, "max-redirects", fetch.DefaultMaxRedirects, "Maximum redirects to follow")
	fs.Int64Var(&opts.maxBody, "max-body", fetch.DefaultMaxBodyBytes, "Maximum body bytes to inspect")
	fs.IntVar(&opts.threads, "t", 10, "Threads for -l")
	fs.IntVar(&opts.rateLimit, "rl", 0, "Global rate limit (requests per second)")
	fs.BoolVar(&opts.insecure, "insecure", false, "Skip TLS verification")
	fs.BoolVar(&opts.allowInternal, "allow-internal", false, "Allow the API to audit loopback and private hosts")
	fs.BoolVar(&opts.color, "color", false, "Colourise human output")
	fs.BoolVar(&opts.verbose, "v", false, "Enable verbose output")
	fs.BoolVar(&opts.silent, "silent", false, "Suppress the banner")
	if err := fs.Parse(args); err != nil {
		return options{}, err
	}
	return opts, nil
}

func validate(opts options) error {
	switch {
	case opts.serve == "" && opts.url == "" && opts.list == "":
		return errors.New("-u (target URL), -l (target list) or -serve is required")
	case opts.url != "" && opts.list != "":
		return errors.New("-u and -l are mutually exclusive")
	case opts.threads <= 0:
		return fmt.Errorf("-t must be greater than zero (got %d)", opts.threads)
	case opts.rateLimit < 0:
		return fmt.Errorf("-rl must be >= 0 (got %d)", opts.rateLimit)
	case opts.timeout <= 0:
		return fmt.Errorf("-timeout must be > 0 (got %s)", opts.timeout)
	case opts.maxRedirects <= 0:
		return fmt.Errorf("-max-redirects must be > 0 (got %d)", opts.maxRedirects)
	case opts.maxBody <= 0:
		return fmt.Errorf("-max-body must be > 0 (got %d)", opts.maxBody)
	}
	return nil
}

func run(ctx context.Context, opts options, stdout io.Writer) (int, error) {
	if err := validate(opts); err != nil {
		return exitError, err
	}
	format, err := report.ParseFormat(opts.format)
	if err != nil {
		return exitError, err
	}
	auditor, err := newAuditor(opts)
	if err != nil {
		return exitError, err
	}

	if opts.verbose {
		fmt.Fprintf(os.Stderr, "[config] format=%s timeout=%s max-redirects=%d max-body=%d threads=%d rate-limit=%d insecure=%t\n",
			format, opts.timeout, opts.maxRedirects, opts.maxBody, opts.threads, opts.rateLimit, opts.insecure)
	}

	if opts.serve != "" {
		return serve(ctx, opts, auditor)
	}

	targets, err := buildTargets(opts.url, opts.list)
	if err != nil {
		return exitError, err
	}

	rendered, code, err := auditTargets(ctx, auditor, targets, format, opts)
	if err != nil {
		return exitError, err
	}
	if err := writeOutput(opts.output, rendered, stdout, opts.verbose); err != nil {
		return exitError, err
	}
	return code, nil
}

func newAuditor(opts options) (*audit.Auditor, error) {
	headerMap, err := toHeader(opts.headers)
	if err != nil {
		return nil, err
	}

	var proxyFunc func(*http.Request) (*url.URL, error)
	if opts.proxy != "" {
		proxyURL, perr := url.Parse(opts.proxy)
		if perr != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", perr)
		}
		proxyFunc = http.ProxyURL(proxyURL)
	}

	client := httpclient.New(httpclient.Config{
		Timeout:   opts.timeout,
		Proxy:     proxyFunc,
		Headers:   headerMap,
		Cookie:    opts.cookie,
		UserAgent: opts.userAgent,
		Insecure:  opts.insecure,
	})
	fetcher := fetch.New(client, fetch.Options{
		Timeout:      opts.timeout,
		MaxRedirects: opts.maxRedirects,
		MaxBodyBytes: opts.maxBody,
	})
	engine := check.NewEngine(check.Catalog(check.Options{
		NonSessionCookies: splitList(opts.nonSessionCookies),
	}))
	return audit.New(fetcher, engine), nil
}

// auditTargets audits every target and renders the combined output. A
// single -u target that cannot be fetched is fatal; in a batch the failed
// target is reported and the rest still render.
func auditTargets(ctx context.Context, a *audit.Auditor, targets []string, format report.Format, opts options) ([]byte, int, error) {
	renderOpts := report.Options{Color: opts.color}
	if len(targets) == 1 && opts.list == "" {
		res, err := a.Audit(ctx, targets[0])
		if err != nil {
			return nil, exitError, err
		}
		if opts.verbose {
			printChain(res.Fetch, opts.color)
		}
		out, err := report.Render(res.Report, format, renderOpts)
		if err != nil {
			return nil, exitError, err
		}
		return out, exitCode([]report.Report{res.Report}, false), nil
	}

	outcomes := runner.New(runner.Config{Threads: opts.threads, RateLimit: opts.rateLimit}, a).Run(ctx, targets)
	var (
		reports []report.Report
		errored bool
	)
	for _, o := range outcomes {
		if o.Err != nil {
			errored = true
			fmt.Fprintf(os.Stderr, "[-] Error: %s: %v\n", o.Target, o.Err)
			continue
		}
		if opts.verbose {
			printChain(o.Result.Fetch, opts.color)
		}
		reports = append(reports, o.Result.Report)
	}

	var buf bytes.Buffer
	switch format {
	case report.FormatJSON:
		if err := report.WriteJSONL(&buf, reports); err != nil {
			return nil, exitError, err
		}
	case report.FormatHTML:
		if err := report.RenderHTML(&buf, reports, renderOpts); err != nil {
			return nil, exitError, err
		}
	default:
		for i, r := range reports {
			out, err := report.Render(r, format, renderOpts)
			if err != nil {
				return nil, exitError, err
			}
			if i > 0 {
				buf.WriteByte('\n')
			}
			buf.Write(out)
		}
	}
	return buf.Bytes(), exitCode(reports, errored), nil
}

// exitCode is 2 when any target errored, 1 when any report has a fail
// finding and 0 otherwise.
func exitCode(reports []report.Report, errored bool) int {
	if errored {
		return exitError
	}
	for _, r := range reports {
		if r.HasFailures() {
			return exitFail
		}
	}
	return exitOK
}

func serve(ctx context.Context, opts options, a *audit.Auditor) (int, error) {
	srv := server.NewServer(opts.serve, a, server.Options{AllowInternal: opts.allowInternal}, opts.timeout)
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[serve] listening on %s", opts.serve)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return exitError, fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return exitError, fmt.Errorf("shutdown: %w", err)
	}
	return exitOK, nil
}

func printChain(res *model.FetchResult, color bool) {
	if res == nil {
		return
	}
	p := statuscolor.New(color)
	for _, h := range res.Chain {
		fmt.Fprintf(os.Stderr, "[%d] %s %s %s\n", h.Index, h.URL, p.Status(h.Status), p.Gray(fmt.Sprintf("(%dms)", h.TimeMs)))
	}
	if res.BodyTruncated {
		fmt.Fprintf(os.Stderr, "    body truncated at %d bytes\n", len(res.Body))
	}
}

func buildTargets(urlStr, list string) ([]string, error) {
	if list == "" {
		return []string{urlStr}, nil
	}
	targets, err := loadTargets(list)
	if err != nil {
		return nil, err
	}
	if len(targets) == 0 {
		return nil, fmt.Errorf("target list %q has no URLs", list)
	}
	return targets, nil
}

func loadTargets(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open target list %q: %w", path, err)
	}
	defer file.Close()
	return readTargets(file)
}

func readTargets(r io.Reader) ([]string, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)
	var entries []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		entries = append(entries, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("target list read error: %w", err)
	}
	return entries, nil
}

func toHeader(headers headerList) (http.Header, error) {
	hdr := make(http.Header)
	for _, h := range headers {
		parts := strings.SplitN(h, ":", 2)
		if len(parts) != 2 {
			return nil, fmt.Errorf("invalid header %q (expected Key: Value)", h)
		}
		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])
		if key == "" {
			return nil, fmt.Errorf("invalid header %q (empty key)", h)
		}
		hdr.Add(key, value)
	}
	return hdr, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func writeOutput(path string, data []byte, stdout io.Writer, verbose bool) error {
	if path == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := ensureDir(path); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "[write] report -> %s\n", path)
	}
	return nil
}

func ensureDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}

func (h *headerList) String() string {
	return strings.Join(*h, "; ")
}

func (h *headerList) Set(value string) error {
	*h = append(*h, value)
	return nil
}
