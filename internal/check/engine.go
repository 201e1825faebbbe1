package check

import (
	"fmt"
	"sync"

	"github.com/selimozcann/HeaderHunter/internal/model"
)

// Engine runs a fixed list of checks.
type Engine struct {
	checks []Check
}

// NewEngine creates an engine over checks, kept in the given order.
func NewEngine(checks []Check) *Engine {
	return &Engine{checks: append([]Check(nil), checks...)}
}

// Checks returns the engine's catalog in evaluation order.
func (e *Engine) Checks() []Check {
	return append([]Check(nil), e.checks...)
}

// Evaluate runs every check concurrently and returns the findings in catalog
// order. Every finding is stamped with the ID of the check that produced it.
// A check that panics contributes a single warn finding instead.
func (e *Engine) Evaluate(res *model.FetchResult) []model.Finding {
	results := make([][]model.Finding, len(e.checks))
	var wg sync.WaitGroup
	for i, c := range e.checks {
		wg.Add(1)
		go func(i int, c Check) {
			defer wg.Done()
			results[i] = runCheck(c, res)
		}(i, c)
	}
	wg.Wait()

	var out []model.Finding
	for i, c := range e.checks {
		for _, f := range results[i] {
			f.Check = c.ID()
			out = append(out, f)
		}
	}
	return out
}

func runCheck(c Check, res *model.FetchResult) (findings []model.Finding) {
	defer func() {
		if r := recover(); r != nil {
			findings = []model.Finding{warn(fmt.Sprintf("check could not be evaluated: %v", r), "")}
		}
	}()
	return c.Evaluate(res)
}
