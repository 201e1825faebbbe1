// Package report builds the audit report from findings and renders it as
// JSON, plain text or HTML.
package report

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/selimozcann/HeaderHunter/internal/model"
)

// Format selects a renderer.
type Format string

const (
	FormatHuman Format = "human"
	FormatJSON  Format = "json"
	FormatHTML  Format = "html"
)

// ParseFormat validates a user supplied format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatHuman, FormatJSON, FormatHTML:
		return f, nil
	case "":
		return FormatHuman, nil
	}
	return "", fmt.Errorf("unknown format %q (want human, json or html)", s)
}

// Summary counts findings per severity.
type Summary struct {
	Fail int `json:"fail"`
	Warn int `json:"warn"`
	Info int `json:"info"`
}

// Report is the outcome of auditing one URL.
type Report struct {
	URL       string          `json:"url"`
	Timestamp time.Time       `json:"timestamp"`
	Findings  []model.Finding `json:"findings"`
	Summary   Summary         `json:"summary"`
}

// HasFailures reports whether any finding is fail severity.
func (r Report) HasFailures() bool {
	return r.Summary.Fail > 0
}

// Build assembles a report. The timestamp is normalised to UTC with second
// precision and findings keep their order.
func Build(url string, ts time.Time, findings []model.Finding) Report {
	r := Report{
		URL:       url,
		Timestamp: ts.UTC().Truncate(time.Second),
		Findings:  make([]model.Finding, 0, len(findings)),
	}
	for _, f := range findings {
		f.Evidence = append([]string(nil), f.Evidence...)
		if len(f.Evidence) == 0 {
			f.Evidence = nil
		}
		r.Findings = append(r.Findings, f)
		switch f.Severity {
		case model.SeverityFail:
			r.Summary.Fail++
		case model.SeverityWarn:
			r.Summary.Warn++
		case model.SeverityInfo:
			r.Summary.Info++
		}
	}
	return r
}

// Options tunes rendering.
type Options struct {
	Color bool
	Title string
}

// Render renders a single report.
func Render(r Report, format Format, opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		return json.MarshalIndent(r, "", "  ")
	case FormatHuman, "":
		return renderHuman(r, opts), nil
	case FormatHTML:
		var b strings.Builder
		if err := RenderHTML(&b, []Report{r}, opts); err != nil {
			return nil, err
		}
		return []byte(b.String()), nil
	}
	return nil, fmt.Errorf("unknown format %q", format)
}

// Parse decodes a report rendered as JSON.
func Parse(data []byte) (Report, error) {
	var r Report
	if err := json.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("parse report: %w", err)
	}
	if r.Findings == nil {
		r.Findings = []model.Finding{}
	}
	return r, nil
}

// bySeverity returns findings ordered fail, warn, info while keeping the
// catalog order inside each tier.
func bySeverity(findings []model.Finding) []model.Finding {
	out := append([]model.Finding(nil), findings...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Severity.Weight() > out[j].Severity.Weight()
	})
	return out
}
