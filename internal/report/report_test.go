package report_test

import (
	"bufio"
	"bytes"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/report"
)

var stamp = time.Date(2024, 5, 6, 7, 8, 9, 500, time.FixedZone("CET", 3600))

func sampleFindings() []model.Finding {
	return []model.Finding{
		{Check: "csp-presence", Severity: model.SeverityFail, Message: "Content-Security-Policy header is missing", Remediation: "add one"},
		{Check: "referrer-policy", Severity: model.SeverityWarn, Message: "Referrer-Policy header is missing", Remediation: "set it"},
		{Check: "permissions-policy", Severity: model.SeverityInfo, Message: "Permissions-Policy header is missing"},
		{Check: "cookie-attributes", Severity: model.SeverityFail, Message: `cookie "session": missing HttpOnly`, Evidence: []string{"session=[redacted]; Secure"}, Remediation: "set HttpOnly"},
	}
}

func TestBuild(t *testing.T) {
	r := report.Build("https://example.com", stamp, sampleFindings())
	if r.Summary != (report.Summary{Fail: 2, Warn: 1, Info: 1}) {
		t.Fatalf("unexpected summary %+v", r.Summary)
	}
	if !r.HasFailures() {
		t.Fatalf("expected failures")
	}
	if r.Timestamp.Location() != time.UTC || r.Timestamp.Nanosecond() != 0 {
		t.Fatalf("timestamp not normalised: %v", r.Timestamp)
	}

	empty := report.Build("https://example.com", stamp, nil)
	if empty.Findings == nil || len(empty.Findings) != 0 || empty.HasFailures() {
		t.Fatalf("expected empty non-nil findings, got %#v", empty.Findings)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	for _, findings := range [][]model.Finding{sampleFindings(), nil} {
		r := report.Build("https://example.com/path?q=1", stamp, findings)
		data, err := report.Render(r, report.FormatJSON, report.Options{})
		if err != nil {
			t.Fatalf("render: %v", err)
		}
		got, err := report.Parse(data)
		if err != nil {
			t.Fatalf("parse: %v", err)
		}
		if !reflect.DeepEqual(got, r) {
			t.Fatalf("round trip mismatch:\n got %#v\nwant %#v", got, r)
		}
	}
}

func TestJSONShape(t *testing.T) {
	r := report.Build("https://example.com", stamp, sampleFindings()[2:3])
	data, err := report.Render(r, report.FormatJSON, report.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	out := string(data)
	for _, want := range []string{`"url"`, `"timestamp": "2024-05-06T06:08:09Z"`, `"findings"`, `"summary"`, `"info": 1`} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %s in %s", want, out)
		}
	}
	for _, absent := range []string{`"evidence"`, `"remediation"`} {
		if strings.Contains(out, absent) {
			t.Fatalf("did not expect %s in %s", absent, out)
		}
	}
}

func TestHumanRender(t *testing.T) {
	r := report.Build("https://example.com", stamp, sampleFindings())
	first, err := report.Render(r, report.FormatHuman, report.Options{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	second, _ := report.Render(r, report.FormatHuman, report.Options{})
	if !bytes.Equal(first, second) {
		t.Fatalf("human render is not deterministic")
	}

	out := string(first)
	iFail, iWarn, iInfo := strings.Index(out, "FAIL (2)"), strings.Index(out, "WARN (1)"), strings.Index(out, "INFO (1)")
	if iFail < 0 || iWarn < iFail || iInfo < iWarn {
		t.Fatalf("unexpected tier order:\n%s", out)
	}
	if strings.Contains(out, "\x1b[") {
		t.Fatalf("unexpected escape codes without colour")
	}
	if strings.Index(out, "[csp-presence]") > strings.Index(out, "[cookie-attributes]") {
		t.Fatalf("catalog order lost inside tier:\n%s", out)
	}

	sc := bufio.NewScanner(strings.NewReader(out))
	for sc.Scan() {
		line := sc.Text()
		if strings.HasPrefix(line, "  [") && !strings.Contains(line, "permissions-policy") && !strings.Contains(line, "fix: ") {
			t.Fatalf("non-info line without fix: %q", line)
		}
	}

	colored, _ := report.Render(r, report.FormatHuman, report.Options{Color: true})
	if !strings.Contains(string(colored), "\x1b[") {
		t.Fatalf("expected escape codes with colour enabled")
	}
}

func TestHumanRenderNoFindings(t *testing.T) {
	out, _ := report.Render(report.Build("https://example.com", stamp, nil), report.FormatHuman, report.Options{})
	if !strings.Contains(string(out), "No findings") {
		t.Fatalf("unexpected output %s", out)
	}
}

func TestRenderHTML(t *testing.T) {
	a := report.Build("https://a.example", stamp, sampleFindings())
	b := report.Build("https://b.example/<x>", stamp, nil)
	var buf bytes.Buffer
	if err := report.RenderHTML(&buf, []report.Report{a, b}, report.Options{}); err != nil {
		t.Fatalf("render html: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"<!doctype html>", "https://a.example", "https://b.example/&lt;x&gt;", "sev-fail", "session=[redacted]; Secure", "No findings."} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in HTML output", want)
		}
	}
}

func TestWriteJSONL(t *testing.T) {
	reports := []report.Report{
		report.Build("https://a.example", stamp, sampleFindings()),
		report.Build("https://b.example", stamp, nil),
	}
	var buf bytes.Buffer
	if err := report.WriteJSONL(&buf, reports); err != nil {
		t.Fatalf("WriteJSONL error: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	for i, line := range lines {
		got, err := report.Parse([]byte(line))
		if err != nil {
			t.Fatalf("line %d: %v", i, err)
		}
		if !reflect.DeepEqual(got, reports[i]) {
			t.Fatalf("line %d mismatch", i)
		}
	}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    report.Format
		wantErr bool
	}{
		{"", report.FormatHuman, false},
		{"JSON", report.FormatJSON, false},
		{"html", report.FormatHTML, false},
		{"xml", "", true},
	}
	for _, tt := range tests {
		got, err := report.ParseFormat(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Fatalf("ParseFormat(%q) = %q, %v", tt.in, got, err)
		}
	}
}
