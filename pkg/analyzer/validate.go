package analyzer

import (
	"fmt"
	"strings"

	"auditum-hq/callisto/pkg/audit"
)

// Response validation limits. A provider response outside these bounds is
// rejected and the caller falls back to deterministic scoring; malformed AI
// output must never reach reports or storage.
const (
	minSummaryLen  = 10
	maxSummaryLen  = 2000
	maxListItems   = 50
	maxListItemLen = 500
)

// ValidateAnalysis checks an AI-produced analysis against the response
// contract and normalizes whitespace in place.
func ValidateAnalysis(a *audit.AIAnalysis) error {
	if a.RiskScore < 0 || a.RiskScore > 100 {
		return fmt.Errorf("risk_score %d out of range [0,100]", a.RiskScore)
	}

	a.ExecutiveSummary = strings.TrimSpace(a.ExecutiveSummary)
	if len(a.ExecutiveSummary) < minSummaryLen {
		return fmt.Errorf("executive_summary too short (%d chars, minimum %d)",
			len(a.ExecutiveSummary), minSummaryLen)
	}
	if len(a.ExecutiveSummary) > maxSummaryLen {
		return fmt.Errorf("executive_summary too long (%d chars, maximum %d)",
			len(a.ExecutiveSummary), maxSummaryLen)
	}
	if err := checkInjection(a.ExecutiveSummary); err != nil {
		return fmt.Errorf("executive_summary: %w", err)
	}

	if len(a.Recommendations) == 0 {
		return fmt.Errorf("recommendations must not be empty")
	}
	if len(a.Recommendations) > maxListItems {
		return fmt.Errorf("too many recommendations (%d, maximum %d)", len(a.Recommendations), maxListItems)
	}
	if len(a.CriticalIssues) > maxListItems {
		return fmt.Errorf("too many critical_issues (%d, maximum %d)", len(a.CriticalIssues), maxListItems)
	}

	for _, list := range [][]string{a.CriticalIssues, a.Recommendations} {
		for i, item := range list {
			item = strings.TrimSpace(item)
			if len(item) > maxListItemLen {
				return fmt.Errorf("list item too long (%d chars, maximum %d)", len(item), maxListItemLen)
			}
			if err := checkInjection(item); err != nil {
				return err
			}
			list[i] = item
		}
	}
	return nil
}

// checkInjection rejects script or HTML injection content in AI output.
func checkInjection(s string) error {
	lower := strings.ToLower(s)
	if strings.Contains(lower, "<script") || strings.Contains(lower, "</script") {
		return fmt.Errorf("script tags not allowed")
	}
	if strings.Contains(lower, "javascript:") {
		return fmt.Errorf("javascript URLs not allowed")
	}
	return nil
}
