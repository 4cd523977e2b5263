package analyzer

import (
	"context"
	"fmt"
	"strings"

	"auditum-hq/callisto/pkg/audit"
	"auditum-hq/callisto/pkg/providers"
	"auditum-hq/callisto/pkg/ratelimit"
)

// Remediation generation uses a tight token budget and low temperature:
// scripts should be short and repeatable, not creative.
const (
	remediationMaxTokens   = 2048
	remediationTemperature = 0.1
)

// GenerateRemediationScript produces a remediation script for one finding.
//
// With a live client it asks the provider and strips markdown fences from
// the reply. Without one, or on any failure, it returns an inert template
// that only describes the issue: a failed generation must never turn into
// a plausible-looking script that was never validated.
func (a *Analyzer) GenerateRemediationScript(ctx context.Context, f audit.Finding, platform string) string {
	if a.client == nil {
		return FallbackRemediationScript(f, platform)
	}

	prompt := buildRemediationPrompt(f, platform)
	req := &providers.CompletionRequest{
		Model:       a.config.Model,
		MaxTokens:   remediationMaxTokens,
		Temperature: remediationTemperature,
		Messages:    []providers.Message{{Role: "user", Content: prompt}},
	}

	script, err := ratelimit.ExecuteWithRetry(ctx, a.limiter, a.config.Retry,
		func(ctx context.Context) (string, error) {
			return a.client.Complete(ctx, req)
		})
	if err != nil {
		a.recordError()
		a.logger.Error("remediation script generation failed, using fallback template",
			"check_id", f.CheckID, "error", err)
		return FallbackRemediationScript(f, platform)
	}

	a.mu.Lock()
	a.totalCalls++
	a.mu.Unlock()

	return stripCodeFences(script)
}

func buildRemediationPrompt(f audit.Finding, platform string) string {
	return fmt.Sprintf(`Generate a safe remediation script for:
Platform: %s
Issue: %s
Current State: %s
Expected State: %s

Requirements:
1. Include error handling
2. Add rollback capability if possible
3. Include comments explaining each step
4. Ensure idempotent operation
5. Output ONLY the script code, no markdown formatting

Script:`, platform, f.Description, f.CurrentValue, f.ExpectedValue)
}

// stripCodeFences removes markdown code fences the model may wrap the
// script in despite instructions.
func stripCodeFences(script string) string {
	for _, fence := range []string{"```bash", "```powershell", "```sh", "```"} {
		script = strings.ReplaceAll(script, fence, "")
	}
	return strings.TrimSpace(script)
}

// FallbackRemediationScript is the inert template used when AI generation
// is unavailable or fails. It prints the issue and exits; it performs no
// remediation.
func FallbackRemediationScript(f audit.Finding, platform string) string {
	header := "#!/bin/bash"
	if platform == "windows" {
		header = "# PowerShell Remediation Script"
	}

	hint := f.RemediationHint
	if hint == "" {
		hint = "No hint available"
	}

	return fmt.Sprintf(`%s
# Remediation for: %s
# Issue: %s
#
# Current State: %s
# Expected State: %s
#
# MANUAL REMEDIATION REQUIRED
# This is a template script. Please review and customize before execution.
#
# Remediation hint: %s

echo "WARNING: This script requires manual customization"
echo "Issue: %s"
echo "Please refer to system documentation for proper remediation steps"
`, header, f.CheckID, f.Description, f.CurrentValue, f.ExpectedValue, hint, f.Description)
}
