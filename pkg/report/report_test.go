package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"auditum-hq/callisto/pkg/audit"
)

func sampleResult() *audit.Result {
	return &audit.Result{
		AuditID:   "20260830_120000_abcd1234",
		Timestamp: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC),
		Platform:  "linux",
		Hostname:  "web-01",
		CollectorResults: map[string]audit.CollectorResult{
			"security": {
				CollectorName:   "security",
				Status:          audit.StatusSuccess,
				ExecutionTimeMS: 8.2,
			},
		},
		Findings: []audit.Finding{
			{CheckID: "SEC-SSH-001", Severity: audit.SeverityHigh, Description: "root login enabled",
				CurrentValue: "yes", ExpectedValue: "no", CollectorName: "security"},
			{CheckID: "OS-UPTIME-001", Severity: audit.SeverityLow, Description: "long uptime", CollectorName: "os_config"},
		},
		Analysis: audit.AIAnalysis{
			RiskScore:        30,
			ExecutiveSummary: "One high severity finding detected.",
			CriticalIssues:   []string{"SEC-SSH-001: root login enabled"},
			Recommendations:  []string{"Disable root login"},
		},
		Remediations: map[string]audit.RemediationScript{
			"SEC-SSH-001": {Filename: "remediate_SEC-SSH-001.sh", Content: "#!/bin/bash\necho fix\n"},
		},
		DurationSeconds: 2.4,
	}
}

func TestWriteJSON(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteJSON(sampleResult())
	if err != nil {
		t.Fatalf("WriteJSON: %v", err)
	}
	if filepath.Base(path) != "audit_report_20260830_120000_abcd1234.json" {
		t.Errorf("unexpected file name %q", path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded audit.Result
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not valid JSON: %v", err)
	}
	if decoded.AuditID != "20260830_120000_abcd1234" || len(decoded.Findings) != 2 {
		t.Errorf("report content mismatch: %+v", decoded)
	}
}

func TestWriteHTML(t *testing.T) {
	w := NewWriter(t.TempDir())

	path, err := w.WriteHTML(sampleResult())
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	html := string(data)

	for _, want := range []string{
		"web-01",
		"SEC-SSH-001",
		"30 / 100",
		"MEDIUM",
		"Disable root login",
	} {
		if !strings.Contains(html, want) {
			t.Errorf("HTML report missing %q", want)
		}
	}
}

func TestWriteHTML_EscapesFindingContent(t *testing.T) {
	r := sampleResult()
	r.Findings[0].Description = `<script>alert("x")</script>`

	w := NewWriter(t.TempDir())
	path, err := w.WriteHTML(r)
	if err != nil {
		t.Fatalf("WriteHTML: %v", err)
	}
	data, _ := os.ReadFile(path)
	if strings.Contains(string(data), "<script>alert") {
		t.Error("finding content not escaped in HTML report")
	}
}

func TestWrite_MultipleFormats(t *testing.T) {
	w := NewWriter(t.TempDir())

	paths, err := w.Write(sampleResult(), []string{"json", "html"})
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if len(paths) != 2 {
		t.Fatalf("expected 2 reports, got %d", len(paths))
	}
	for _, p := range paths {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("report %s not written: %v", p, err)
		}
	}
}

func TestWrite_UnknownFormat(t *testing.T) {
	w := NewWriter(t.TempDir())
	if _, err := w.Write(sampleResult(), []string{"pdf"}); err == nil {
		t.Error("expected error for unknown format")
	}
}

func TestWriteRemediationScripts(t *testing.T) {
	w := NewWriter(t.TempDir())

	paths, err := w.WriteRemediationScripts(sampleResult())
	if err != nil {
		t.Fatalf("WriteRemediationScripts: %v", err)
	}
	if len(paths) != 1 {
		t.Fatalf("expected 1 script, got %d", len(paths))
	}
	data, err := os.ReadFile(paths[0])
	if err != nil {
		t.Fatalf("read script: %v", err)
	}
	if !strings.HasPrefix(string(data), "#!/bin/bash") {
		t.Errorf("script content wrong: %q", data)
	}

	info, _ := os.Stat(paths[0])
	if info.Mode().Perm()&0o111 != 0 {
		t.Error("scripts must not be written executable")
	}
}
