package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/selimozcann/HeaderHunter/internal/model"
	"github.com/selimozcann/HeaderHunter/internal/statuscolor"
)

var tiers = []struct {
	sev   model.Severity
	label string
}{
	{model.SeverityFail, "FAIL"},
	{model.SeverityWarn, "WARN"},
	{model.SeverityInfo, "INFO"},
}

func renderHuman(r Report, opts Options) []byte {
	p := statuscolor.New(opts.Color)
	var b strings.Builder

	fmt.Fprintf(&b, "[+] Target:    %s\n", r.URL)
	fmt.Fprintf(&b, "[+] Timestamp: %s\n", r.Timestamp.UTC().Format(time.RFC3339))
	fmt.Fprintf(&b, "[+] Summary:   %s, %s, %s\n",
		p.Severity(model.SeverityFail, fmt.Sprintf("%d fail", r.Summary.Fail)),
		p.Severity(model.SeverityWarn, fmt.Sprintf("%d warn", r.Summary.Warn)),
		p.Severity(model.SeverityInfo, fmt.Sprintf("%d info", r.Summary.Info)))

	if len(r.Findings) == 0 {
		b.WriteString("\n" + p.OK("  ✔ No findings") + "\n")
		return []byte(b.String())
	}

	ordered := bySeverity(r.Findings)
	for _, tier := range tiers {
		var lines []string
		for _, f := range ordered {
			if f.Severity != tier.sev {
				continue
			}
			line := fmt.Sprintf("  [%s] %s", f.Check, f.Message)
			if f.Severity != model.SeverityInfo && f.Remediation != "" {
				line += p.Gray(" | fix: " + f.Remediation)
			}
			lines = append(lines, line)
		}
		if len(lines) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n%s (%d)\n", p.Severity(tier.sev, tier.label), len(lines))
		b.WriteString(strings.Join(lines, "\n"))
		b.WriteByte('\n')
	}
	return []byte(b.String())
}
