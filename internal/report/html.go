package report

import (
	"html/template"
	"io"
	"strings"
	"time"

	"github.com/selimozcann/HeaderHunter/internal/model"
)

// pageTotals aggregates counts across every report on the page.
type pageTotals struct {
	Targets int
	Failing int
	Summary
}

type pageData struct {
	Title       string
	GeneratedAt time.Time
	Totals      pageTotals
	Reports     []reportView
}

type reportView struct {
	Report
	Ordered []model.Finding
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"formatTime": func(t time.Time) string { return t.UTC().Format(time.RFC3339) },
	"join":       strings.Join,
}).Parse(`<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
<style>
:root { color-scheme: light dark; }
body { font-family: system-ui, -apple-system, Segoe UI, Roboto, sans-serif; margin: 24px; background:#fafafa; color:#111; }
h1 { font-size: 26px; margin: 0 0 8px; }
h2 { font-size:18px; margin:0 0 12px; word-break:break-all; }
.section { border:1px solid #e5e7eb; border-radius:16px; padding:16px 20px; margin-bottom:18px; background:#fff; }
.summary-grid { display:grid; gap:12px; grid-template-columns: repeat(auto-fit,minmax(160px,1fr)); }
.summary-card { padding:12px; border-radius:12px; border:1px solid #cbd5f5; cursor:pointer; position:relative; }
.summary-card[data-active="true"] { border-color:#4f46e5; box-shadow:0 0 0 2px rgba(79,70,229,0.4); }
.summary-card .badge { position:absolute; top:12px; right:12px; padding:2px 10px; border-radius:999px; background:#4f46e5; color:#fff; font-size:12px; }
.meta { color:#6b7280; font-size:12px; }
.table { width:100%; border-collapse:collapse; font-size:14px; }
.table th, .table td { border-bottom:1px solid #e5e7eb; padding:6px 8px; text-align:left; vertical-align:top; }
.sev { display:inline-block; padding:2px 8px; border-radius:999px; font-size:12px; font-weight:600; text-transform:uppercase; }
.sev-fail { background:#fee2e2; color:#b91c1c; }
.sev-warn { background:#fef3c7; color:#92400e; }
.sev-info { background:#e0f2fe; color:#075985; }
.evidence { font-family: ui-monospace, SFMono-Regular, Menlo, Consolas, monospace; font-size:12px; white-space:pre-wrap; }
.footer { text-align:center; font-size:12px; color:#6b7280; margin-top:24px; }
@media (prefers-color-scheme: dark) {
  body { background:#0f172a; color:#e2e8f0; }
  .section { background:#1e293b; border-color:#334155; }
  .meta { color:#94a3b8; }
}
</style>
<script>
document.addEventListener('DOMContentLoaded', function() {
  const cards = document.querySelectorAll('[data-filter]');
  const rows = document.querySelectorAll('tr[data-severity]');
  function apply(filter) {
    cards.forEach(c => c.dataset.active = (c.dataset.filter === filter ? 'true' : 'false'));
    rows.forEach(row => {
      row.style.display = (filter === 'all' || row.dataset.severity === filter) ? '' : 'none';
    });
  }
  cards.forEach(card => card.addEventListener('click', () => apply(card.dataset.filter || 'all')));
  apply('all');
});
</script>
</head>
<body>
<header>
  <h1>{{.Title}}</h1>
  <p class="meta">Generated at {{formatTime .GeneratedAt}}</p>
</header>
<section id="summary" class="section">
  <div class="summary-grid">
    <div class="summary-card" data-filter="all"><strong>Targets</strong><span class="badge">{{.Totals.Targets}}</span></div>
    <div class="summary-card"><strong>Failing targets</strong><span class="badge">{{.Totals.Failing}}</span></div>
    <div class="summary-card" data-filter="fail"><strong>Fail</strong><span class="badge">{{.Totals.Fail}}</span></div>
    <div class="summary-card" data-filter="warn"><strong>Warn</strong><span class="badge">{{.Totals.Warn}}</span></div>
    <div class="summary-card" data-filter="info"><strong>Info</strong><span class="badge">{{.Totals.Info}}</span></div>
  </div>
</section>
{{range .Reports}}
<section class="section">
  <h2>{{.URL}}</h2>
  <p class="meta">Audited {{formatTime .Timestamp}} • {{.Summary.Fail}} fail • {{.Summary.Warn}} warn • {{.Summary.Info}} info</p>
  {{if .Ordered}}
  <table class="table">
    <thead><tr><th>Severity</th><th>Check</th><th>Message</th><th>Evidence</th><th>Remediation</th></tr></thead>
    <tbody>
    {{range .Ordered}}
      <tr data-severity="{{.Severity}}">
        <td><span class="sev sev-{{.Severity}}">{{.Severity}}</span></td>
        <td>{{.Check}}</td>
        <td>{{.Message}}</td>
        <td class="evidence">{{join .Evidence "\n"}}</td>
        <td>{{.Remediation}}</td>
      </tr>
    {{end}}
    </tbody>
  </table>
  {{else}}
  <p class="meta">No findings.</p>
  {{end}}
</section>
{{end}}
<footer class="footer">HeaderHunter report generated at {{formatTime .GeneratedAt}}</footer>
</body>
</html>
`))

// RenderHTML renders one page covering every report. The generation time is
// the newest report timestamp so identical input renders identically.
func RenderHTML(w io.Writer, reports []Report, opts Options) error {
	data := pageData{Title: opts.Title}
	if data.Title == "" {
		data.Title = "HeaderHunter Report"
	}
	data.Totals.Targets = len(reports)
	for _, r := range reports {
		if r.Timestamp.After(data.GeneratedAt) {
			data.GeneratedAt = r.Timestamp
		}
		if r.HasFailures() {
			data.Totals.Failing++
		}
		data.Totals.Fail += r.Summary.Fail
		data.Totals.Warn += r.Summary.Warn
		data.Totals.Info += r.Summary.Info
		data.Reports = append(data.Reports, reportView{Report: r, Ordered: bySeverity(r.Findings)})
	}
	return htmlTemplate.Execute(w, data)
}
