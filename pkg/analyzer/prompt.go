package analyzer

import (
	"fmt"
	"strings"

	"auditum-hq/callisto/pkg/audit"
)

// maxPromptFindings caps how many findings are embedded in the analysis
// prompt. Findings arrive pre-sorted by severity, so truncation keeps the
// most severe ones.
const maxPromptFindings = 50

// buildAnalysisPrompt renders the analysis prompt for the provider.
// The response contract (strict JSON, fixed keys) is spelled out in the
// prompt; ValidateAnalysis enforces it on the way back.
func buildAnalysisPrompt(sys SystemInfo, findings []audit.Finding) string {
	capped := findings
	if len(capped) > maxPromptFindings {
		capped = capped[:maxPromptFindings]
	}

	var sb strings.Builder
	for _, f := range capped {
		fmt.Fprintf(&sb, "- [%s] %s: %s\n", f.Severity, f.CheckID, f.Description)
	}

	return fmt.Sprintf(`Analyze this system security audit and provide a JSON response with the following structure:
{
    "risk_score": <integer 0-100>,
    "executive_summary": "<concise 2-3 sentence summary>",
    "critical_issues": ["<critical issue 1>", "<critical issue 2>"],
    "recommendations": ["<actionable recommendation 1>", "<actionable recommendation 2>"]
}

System Information:
- Platform: %s
- Hostname: %s

Findings (%d total):
%s
Provide ONLY the JSON response, no additional text.`,
		orUnknown(sys.Platform), orUnknown(sys.Hostname), len(findings), sb.String())
}

func orUnknown(s string) string {
	if s == "" {
		return "Unknown"
	}
	return s
}
