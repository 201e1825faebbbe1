// Package audit runs the fetch, evaluate and build pipeline for one target.
package audit

import (
	"context"

	"github.com/selimozcann/HeaderHunter/internal/check"
	"github.com/selimozcann/HeaderHunter/internal/fetch"
	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/report"
)

// Result pairs a report with the exchange it was built from.
type Result struct {
	Report report.Report
	Fetch  *model.FetchResult
}

// Auditor is stateless between calls and safe for concurrent use.
type Auditor struct {
	fetcher *fetch.Fetcher
	engine  *check.Engine
}

// New creates an Auditor.
func New(f *fetch.Fetcher, e *check.Engine) *Auditor {
	return &Auditor{fetcher: f, engine: e}
}

// Checks exposes the catalog the auditor evaluates.
func (a *Auditor) Checks() []check.Check {
	return a.engine.Checks()
}

// Audit fetches target and evaluates the catalog against it. A fetch error
// is returned as is and no partial report is produced.
func (a *Auditor) Audit(ctx context.Context, target string) (*Result, error) {
	res, err := a.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	findings := a.engine.Evaluate(res)
	return &Result{
		Report: report.Build(res.RequestURL, res.FetchedAt, findings),
		Fetch:  res,
	}, nil
}
