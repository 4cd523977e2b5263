package audit

import (
	"sort"
	"time"
)

// Severity classifies how serious a finding is.
// Severities are ordered: CRITICAL sorts first, INFO last. Values outside
// the known set are accepted but sort after INFO rather than being rejected.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// severityRank maps severities to their sort position. Unknown severities
// get unknownSeverityRank so they sort last.
var severityRank = map[Severity]int{
	SeverityCritical: 0,
	SeverityHigh:     1,
	SeverityMedium:   2,
	SeverityLow:      3,
	SeverityInfo:     4,
}

const unknownSeverityRank = 999

// Rank returns the sort position for the severity. Lower ranks sort first.
func (s Severity) Rank() int {
	if r, ok := severityRank[s]; ok {
		return r
	}
	return unknownSeverityRank
}

// Known reports whether the severity is one of the defined levels.
func (s Severity) Known() bool {
	_, ok := severityRank[s]
	return ok
}

// Finding is a single audit check result reported by a collector.
// It is immutable once created; CollectorName is stamped by the orchestrator
// during aggregation.
type Finding struct {
	// CheckID is a stable identifier for the check (e.g. "CIS-9.1-001").
	CheckID string `json:"check_id"`

	// Severity is the finding's severity level.
	Severity Severity `json:"severity"`

	// Description explains what the check found.
	Description string `json:"description"`

	// CurrentValue is the observed configuration value.
	CurrentValue string `json:"current_value"`

	// ExpectedValue is the value the check expected to observe.
	ExpectedValue string `json:"expected_value"`

	// RemediationHint is optional guidance for fixing the finding.
	RemediationHint string `json:"remediation_hint,omitempty"`

	// CollectorName identifies the collector that produced the finding.
	// Attached during aggregation, empty before that.
	CollectorName string `json:"collector_name,omitempty"`
}

// SortFindings sorts findings in place by severity, CRITICAL first.
// The sort is stable: findings of equal severity keep their insertion order.
func SortFindings(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		return findings[i].Severity.Rank() < findings[j].Severity.Rank()
	})
}

// CollectorStatus describes the outcome of a single collector execution.
type CollectorStatus string

const (
	// StatusSuccess means every check ran.
	StatusSuccess CollectorStatus = "success"
	// StatusPartial means some checks failed but others produced results.
	StatusPartial CollectorStatus = "partial"
	// StatusFailed means the collector could not produce results.
	StatusFailed CollectorStatus = "failed"
	// StatusSkipped means the collector was not run, typically because of
	// a missing platform or insufficient privileges.
	StatusSkipped CollectorStatus = "skipped"
)

// CollectorResult is the standardized output of one collector.
// The orchestrator treats this as a non-throwing contract: a collector that
// fails is converted to a CollectorResult with StatusFailed at the boundary.
type CollectorResult struct {
	CollectorName   string          `json:"collector_name"`
	Status          CollectorStatus `json:"status"`
	Data            map[string]any  `json:"data,omitempty"`
	Findings        []Finding       `json:"findings,omitempty"`
	Errors          []string        `json:"errors,omitempty"`
	Warnings        []string        `json:"warnings,omitempty"`
	ExecutionTimeMS float64         `json:"execution_time_ms"`
}

// AddFinding appends a finding to the result.
func (r *CollectorResult) AddFinding(f Finding) {
	r.Findings = append(r.Findings, f)
}

// AIAnalysis is the risk assessment for an audit run, produced either by an
// AI provider (validated) or by the deterministic fallback scorer.
type AIAnalysis struct {
	// RiskScore is the overall risk score, 0 (healthy) to 100 (critical).
	RiskScore int `json:"risk_score"`

	// ExecutiveSummary is a short prose summary of the audit outcome.
	ExecutiveSummary string `json:"executive_summary"`

	// CriticalIssues lists the most important issues found.
	CriticalIssues []string `json:"critical_issues"`

	// Recommendations lists actionable next steps. Always non-empty.
	Recommendations []string `json:"recommendations"`
}

// RiskLevel buckets a risk score into a coarse level.
// CRITICAL >= 75, HIGH >= 50, MEDIUM >= 25, otherwise LOW.
func RiskLevel(score int) string {
	switch {
	case score >= 75:
		return "CRITICAL"
	case score >= 50:
		return "HIGH"
	case score >= 25:
		return "MEDIUM"
	default:
		return "LOW"
	}
}

// RemediationScript is a generated (or fallback) remediation script for a
// single finding.
type RemediationScript struct {
	// Filename is the suggested file name (remediate_<check_id>.sh or .ps1).
	Filename string `json:"filename"`

	// Content is the script body.
	Content string `json:"content"`

	// Finding is the finding the script remediates.
	Finding Finding `json:"finding"`
}

// Result is the root aggregate for one audit run.
type Result struct {
	// AuditID uniquely identifies the run (UTC timestamp + random suffix).
	AuditID string `json:"audit_id"`

	// Timestamp is when the run started.
	Timestamp time.Time `json:"timestamp"`

	// Platform is the host OS (e.g. "linux", "windows", "darwin").
	Platform string `json:"platform"`

	// PlatformVersion is the OS version string, if known.
	PlatformVersion string `json:"platform_version,omitempty"`

	// Hostname is the audited host's name.
	Hostname string `json:"hostname"`

	// CollectorResults maps collector name to its raw result.
	CollectorResults map[string]CollectorResult `json:"collector_results"`

	// Findings is the aggregated, severity-sorted finding list.
	Findings []Finding `json:"all_findings"`

	// Analysis is the risk assessment for the run.
	Analysis AIAnalysis `json:"ai_analysis"`

	// Remediations maps check ID to its generated remediation script.
	Remediations map[string]RemediationScript `json:"remediation_scripts,omitempty"`

	// AIProvider and AIModel record which analysis backend was configured.
	AIProvider string `json:"ai_provider,omitempty"`
	AIModel    string `json:"ai_model,omitempty"`

	// DurationSeconds is the wall-clock duration of the full run.
	DurationSeconds float64 `json:"duration_seconds"`
}

// CountBySeverity returns the number of findings per known severity level.
func (r *Result) CountBySeverity() map[Severity]int {
	counts := make(map[Severity]int, len(severityRank))
	for _, f := range r.Findings {
		counts[f.Severity]++
	}
	return counts
}
