package report

import (
	"fmt"
	"html/template"
	"strings"

	"auditum-hq/callisto/pkg/audit"
)

// htmlData is the template input for the HTML report.
type htmlData struct {
	Result        *audit.Result
	RiskLevel     string
	SeverityOrder []audit.Severity
	Counts        map[audit.Severity]int
}

func newHTMLData(result *audit.Result) htmlData {
	return htmlData{
		Result:    result,
		RiskLevel: audit.RiskLevel(result.Analysis.RiskScore),
		SeverityOrder: []audit.Severity{
			audit.SeverityCritical,
			audit.SeverityHigh,
			audit.SeverityMedium,
			audit.SeverityLow,
			audit.SeverityInfo,
		},
		Counts: result.CountBySeverity(),
	}
}

// severityClass maps a severity (or risk level) to its CSS class suffix.
// Accepts any stringish value because the template passes both
// audit.Severity and plain strings.
func severityClass(v any) string {
	s := audit.Severity(fmt.Sprint(v))
	if !s.Known() {
		return "unknown"
	}
	return strings.ToLower(string(s))
}

var htmlTemplate = template.Must(template.New("report").Funcs(template.FuncMap{
	"severityClass": severityClass,
}).Parse(`<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>Audit Report {{.Result.AuditID}}</title>
<style>
body { font-family: system-ui, sans-serif; margin: 2rem auto; max-width: 960px; color: #1a1a2e; }
h1, h2 { border-bottom: 1px solid #ddd; padding-bottom: .3rem; }
table { border-collapse: collapse; width: 100%; margin: 1rem 0; }
th, td { border: 1px solid #ddd; padding: .5rem .7rem; text-align: left; vertical-align: top; }
th { background: #f4f4f8; }
.badge { display: inline-block; padding: .15rem .6rem; border-radius: .75rem; color: #fff; font-size: .85rem; }
.sev-critical { background: #c0392b; }
.sev-high { background: #e67e22; }
.sev-medium { background: #f1c40f; color: #1a1a2e; }
.sev-low { background: #3498db; }
.sev-info { background: #95a5a6; }
.sev-unknown { background: #7f8c8d; }
.risk { font-size: 2.5rem; font-weight: bold; }
.summary { background: #f9f9fb; border-left: 4px solid #3498db; padding: .8rem 1rem; }
</style>
</head>
<body>
<h1>Host Audit Report</h1>
<table>
<tr><th>Audit ID</th><td>{{.Result.AuditID}}</td></tr>
<tr><th>Host</th><td>{{.Result.Hostname}} ({{.Result.Platform}}{{with .Result.PlatformVersion}} {{.}}{{end}})</td></tr>
<tr><th>Started</th><td>{{.Result.Timestamp.UTC.Format "2006-01-02 15:04:05 UTC"}}</td></tr>
<tr><th>Duration</th><td>{{printf "%.1f" .Result.DurationSeconds}}s</td></tr>
{{if .Result.AIProvider}}<tr><th>Analysis</th><td>{{.Result.AIProvider}} / {{.Result.AIModel}}</td></tr>{{end}}
</table>

<h2>Risk Assessment</h2>
<p class="risk">{{.Result.Analysis.RiskScore}} / 100 <span class="badge sev-{{severityClass .RiskLevel}}">{{.RiskLevel}}</span></p>
<p class="summary">{{.Result.Analysis.ExecutiveSummary}}</p>

{{if .Result.Analysis.CriticalIssues}}
<h2>Critical Issues</h2>
<ul>
{{range .Result.Analysis.CriticalIssues}}<li>{{.}}</li>
{{end}}</ul>
{{end}}

<h2>Recommendations</h2>
<ul>
{{range .Result.Analysis.Recommendations}}<li>{{.}}</li>
{{end}}</ul>

<h2>Findings ({{len .Result.Findings}})</h2>
{{if .Result.Findings}}
<p>
{{range .SeverityOrder}}{{if index $.Counts .}}<span class="badge sev-{{severityClass .}}">{{.}}: {{index $.Counts .}}</span> {{end}}{{end}}
</p>
<table>
<tr><th>Severity</th><th>Check</th><th>Description</th><th>Current</th><th>Expected</th><th>Collector</th></tr>
{{range .Result.Findings}}
<tr>
<td><span class="badge sev-{{severityClass .Severity}}">{{.Severity}}</span></td>
<td>{{.CheckID}}</td>
<td>{{.Description}}{{with .RemediationHint}}<br><em>{{.}}</em>{{end}}</td>
<td>{{.CurrentValue}}</td>
<td>{{.ExpectedValue}}</td>
<td>{{.CollectorName}}</td>
</tr>
{{end}}
</table>
{{else}}
<p>No findings. The host passed every executed check.</p>
{{end}}

<h2>Collectors</h2>
<table>
<tr><th>Collector</th><th>Status</th><th>Findings</th><th>Time (ms)</th><th>Notes</th></tr>
{{range .Result.CollectorResults}}
<tr>
<td>{{.CollectorName}}</td>
<td>{{.Status}}</td>
<td>{{len .Findings}}</td>
<td>{{printf "%.1f" .ExecutionTimeMS}}</td>
<td>{{range .Errors}}{{.}}<br>{{end}}{{range .Warnings}}{{.}}<br>{{end}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))
