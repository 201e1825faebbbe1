// Package check holds the fixed catalog of security checks and the engine
// that runs them against a fetched response.
package check

import (
	"fmt"
	"strings"

	"github.com/selimozcann/HeaderHunter/internal/model"
)

// Check inspects one FetchResult and returns zero or more findings. A check
// must not modify the result and must not depend on other checks.
type Check interface {
	ID() string
	Title() string
	Evaluate(res *model.FetchResult) []model.Finding
}

type funcCheck struct {
	id    string
	title string
	fn    func(*model.FetchResult) []model.Finding
}

func (c funcCheck) ID() string    { return c.id }
func (c funcCheck) Title() string { return c.title }

func (c funcCheck) Evaluate(res *model.FetchResult) []model.Finding {
	return c.fn(res)
}

func newFinding(sev model.Severity, msg, fix string, evidence []string) model.Finding {
	return model.Finding{Severity: sev, Message: msg, Remediation: fix, Evidence: evidence}
}

func fail(msg, fix string, evidence ...string) model.Finding {
	return newFinding(model.SeverityFail, msg, fix, nilIfEmpty(evidence))
}

func warn(msg, fix string, evidence ...string) model.Finding {
	return newFinding(model.SeverityWarn, msg, fix, nilIfEmpty(evidence))
}

func info(msg string, evidence ...string) model.Finding {
	return newFinding(model.SeverityInfo, msg, "", nilIfEmpty(evidence))
}

// couldNotParse downgrades a check whose input is malformed.
func couldNotParse(err error, fix string, evidence []string) model.Finding {
	return warn(fmt.Sprintf("could not parse: %v", err), fix, evidence...)
}

// headerEvidence renders every occurrence of a header as "Name: value".
func headerEvidence(res *model.FetchResult, name string) []string {
	vals := res.Values(name)
	if len(vals) == 0 {
		return nil
	}
	out := make([]string, len(vals))
	for i, v := range vals {
		out[i] = name + ": " + v
	}
	return out
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

func trimmed(res *model.FetchResult, name string) (string, bool) {
	v, ok := res.Effective(name)
	return strings.TrimSpace(v), ok
}
