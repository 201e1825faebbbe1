package runner

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/selimozcann/HeaderHunter/internal/audit"
)

// Config holds settings for the runner.
type Config struct {
	Threads   int
	RateLimit int // requests per second, 0 = unlimited
}

// Auditor is the per-target pipeline the runner drives.
type Auditor interface {
	Audit(ctx context.Context, target string) (*audit.Result, error)
}

// Outcome is the result of one target. Exactly one of Result and Err is set.
type Outcome struct {
	Target string
	Result *audit.Result
	Err    error
}

// Runner coordinates concurrent audits.
type Runner struct {
	cfg     Config
	auditor Auditor
}

// New creates a new Runner.
func New(cfg Config, a Auditor) *Runner {
	if cfg.Threads <= 0 {
		cfg.Threads = 1
	}
	return &Runner{cfg: cfg, auditor: a}
}

// Run audits every target and returns outcomes in input order. A failing
// target never stops the others; targets not started before ctx is done are
// reported with ctx's error.
func (r *Runner) Run(ctx context.Context, targets []string) []Outcome {
	out := make([]Outcome, len(targets))
	var limiter *rate.Limiter
	if r.cfg.RateLimit > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.cfg.RateLimit), 1)
	}

	var g errgroup.Group
	g.SetLimit(r.cfg.Threads)
	for i, target := range targets {
		out[i].Target = target
		if err := ctx.Err(); err != nil {
			out[i].Err = err
			continue
		}
		g.Go(func() error {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					out[i].Err = err
					return nil
				}
			}
			out[i].Result, out[i].Err = r.auditor.Audit(ctx, target)
			return nil
		})
	}
	_ = g.Wait()
	return out
}
