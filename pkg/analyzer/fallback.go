package analyzer

import (
	"fmt"

	"auditum-hq/callisto/pkg/audit"
)

// severityWeights are the deterministic fallback risk weights. Unknown
// severities contribute nothing.
var severityWeights = map[audit.Severity]int{
	audit.SeverityCritical: 50,
	audit.SeverityHigh:     25,
	audit.SeverityMedium:   10,
	audit.SeverityLow:      5,
	audit.SeverityInfo:     1,
}

// maxFallbackCriticalIssues caps the critical issue list in the fallback.
const maxFallbackCriticalIssues = 10

// fallbackRecommendations is the fixed guidance returned when AI analysis
// is unavailable.
var fallbackRecommendations = []string{
	"Review and address critical findings immediately",
	"Apply security patches and updates",
	"Implement recommended security controls",
	"Schedule regular security audits",
}

// FallbackAnalysis scores findings without the AI provider.
//
// The score is the capped sum of severity weights (CRITICAL=50, HIGH=25,
// MEDIUM=10, LOW=5, INFO=1), so the same finding list always yields the
// same result. The critical issue list carries up to the first ten
// CRITICAL/HIGH findings in their existing sort order.
func FallbackAnalysis(findings []audit.Finding) audit.AIAnalysis {
	score := 0
	var criticalIssues []string

	for _, f := range findings {
		score += severityWeights[f.Severity]
		if f.Severity == audit.SeverityCritical || f.Severity == audit.SeverityHigh {
			if len(criticalIssues) < maxFallbackCriticalIssues {
				criticalIssues = append(criticalIssues, fmt.Sprintf("%s: %s", f.CheckID, f.Description))
			}
		}
	}
	if score > 100 {
		score = 100
	}

	return audit.AIAnalysis{
		RiskScore: score,
		ExecutiveSummary: fmt.Sprintf(
			"Audit identified %d findings requiring attention. %d critical issues detected.",
			len(findings), len(criticalIssues)),
		CriticalIssues:  criticalIssues,
		Recommendations: append([]string(nil), fallbackRecommendations...),
	}
}

// HealthyAnalysis is the canned result for an audit with zero findings.
// The orchestrator uses it to skip the AI call entirely on a clean system.
func HealthyAnalysis() audit.AIAnalysis {
	return audit.AIAnalysis{
		RiskScore:        0,
		ExecutiveSummary: "No security or configuration issues detected.",
		CriticalIssues:   []string{},
		Recommendations:  []string{"Continue regular monitoring and updates"},
	}
}
