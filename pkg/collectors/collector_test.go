package collectors

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"auditum-hq/callisto/pkg/audit"
)

// stubCollector is a scriptable collector for Runner tests.
type stubCollector struct {
	name      string
	admin     bool
	platforms []string
	result    audit.CollectorResult
	err       error
	panicMsg  string
	ran       bool
}

func (s *stubCollector) Name() string                 { return s.name }
func (s *stubCollector) RequiresAdmin() bool          { return s.admin }
func (s *stubCollector) SupportedPlatforms() []string { return s.platforms }

func (s *stubCollector) Collect(ctx context.Context) (audit.CollectorResult, error) {
	s.ran = true
	if s.panicMsg != "" {
		panic(s.panicMsg)
	}
	return s.result, s.err
}

func currentPlatform() []string { return []string{runtime.GOOS} }

func newTestRunner(requireAdmin, isAdmin bool) *Runner {
	r := NewRunner(requireAdmin, nil)
	r.isAdmin = func() bool { return isAdmin }
	return r
}

// ============================================================================
// SafeCollect guarantees
// ============================================================================

func TestSafeCollect_Success(t *testing.T) {
	stub := &stubCollector{
		name:      "stub",
		platforms: currentPlatform(),
		result: audit.CollectorResult{
			Data:     map[string]any{"key": "value"},
			Findings: []audit.Finding{{CheckID: "CHK-001", Severity: audit.SeverityLow}},
		},
	}

	result := newTestRunner(false, false).SafeCollect(context.Background(), stub)
	if result.Status != audit.StatusSuccess {
		t.Errorf("expected success, got %s", result.Status)
	}
	if result.CollectorName != "stub" {
		t.Errorf("expected collector name stamped, got %q", result.CollectorName)
	}
	if len(result.Findings) != 1 {
		t.Errorf("expected findings preserved, got %d", len(result.Findings))
	}
	if result.ExecutionTimeMS < 0 {
		t.Errorf("expected non-negative execution time, got %f", result.ExecutionTimeMS)
	}
}

func TestSafeCollect_UnsupportedPlatformSkips(t *testing.T) {
	stub := &stubCollector{name: "stub", platforms: []string{"plan9"}}

	result := newTestRunner(false, true).SafeCollect(context.Background(), stub)
	if result.Status != audit.StatusSkipped {
		t.Errorf("expected skipped, got %s", result.Status)
	}
	if stub.ran {
		t.Error("collector must not run on unsupported platform")
	}
	if len(result.Warnings) == 0 {
		t.Error("expected a platform warning")
	}
}

func TestSafeCollect_MissingPrivilegesSkips(t *testing.T) {
	stub := &stubCollector{name: "stub", admin: true, platforms: currentPlatform()}

	result := newTestRunner(false, false).SafeCollect(context.Background(), stub)
	if result.Status != audit.StatusSkipped {
		t.Errorf("expected skipped, got %s", result.Status)
	}
	if stub.ran {
		t.Error("collector must not run without privileges")
	}
}

func TestSafeCollect_MissingPrivilegesFailsWhenRequired(t *testing.T) {
	stub := &stubCollector{name: "stub", admin: true, platforms: currentPlatform()}

	result := newTestRunner(true, false).SafeCollect(context.Background(), stub)
	if result.Status != audit.StatusFailed {
		t.Errorf("expected failed under RequireAdmin, got %s", result.Status)
	}
	if len(result.Errors) == 0 {
		t.Error("expected a privilege error")
	}
}

func TestSafeCollect_ErrorBecomesFailedResult(t *testing.T) {
	stub := &stubCollector{
		name:      "stub",
		platforms: currentPlatform(),
		err:       errors.New("probe exploded"),
	}

	result := newTestRunner(false, true).SafeCollect(context.Background(), stub)
	if result.Status != audit.StatusFailed {
		t.Errorf("expected failed, got %s", result.Status)
	}
	if len(result.Errors) != 1 || result.Errors[0] != "probe exploded" {
		t.Errorf("expected error captured, got %v", result.Errors)
	}
}

func TestSafeCollect_PanicBecomesFailedResult(t *testing.T) {
	stub := &stubCollector{
		name:      "stub",
		platforms: currentPlatform(),
		panicMsg:  "index out of range",
	}

	result := newTestRunner(false, true).SafeCollect(context.Background(), stub)
	if result.Status != audit.StatusFailed {
		t.Errorf("expected failed after panic, got %s", result.Status)
	}
	if len(result.Errors) != 1 {
		t.Fatalf("expected one error, got %v", result.Errors)
	}
}

func TestSafeCollect_PartialStatusPreserved(t *testing.T) {
	stub := &stubCollector{
		name:      "stub",
		platforms: currentPlatform(),
		result: audit.CollectorResult{
			Status:   audit.StatusPartial,
			Warnings: []string{"one probe failed"},
		},
	}

	result := newTestRunner(false, true).SafeCollect(context.Background(), stub)
	if result.Status != audit.StatusPartial {
		t.Errorf("expected partial preserved, got %s", result.Status)
	}
}

// ============================================================================
// Security collector file parsing
// ============================================================================

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestSecurityCollector_FlagsWeakSSHConfig(t *testing.T) {
	dir := t.TempDir()
	sshd := writeFile(t, dir, "sshd_config",
		"# comment PermitRootLogin yes\nPermitRootLogin yes\nPasswordAuthentication no\n")

	c := NewSecurityCollector()
	c.sshdConfig = sshd
	c.ipForwardPath = writeFile(t, dir, "ip_forward", "0\n")

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if len(result.Findings) != 1 {
		t.Fatalf("expected 1 finding, got %d: %+v", len(result.Findings), result.Findings)
	}
	if result.Findings[0].CheckID != "SEC-SSH-001" {
		t.Errorf("expected SEC-SSH-001, got %s", result.Findings[0].CheckID)
	}
}

func TestSecurityCollector_FlagsIPForwarding(t *testing.T) {
	dir := t.TempDir()

	c := NewSecurityCollector()
	c.sshdConfig = dir + "/missing_sshd_config"
	c.ipForwardPath = writeFile(t, dir, "ip_forward", "1\n")

	result, err := c.Collect(context.Background())
	if err != nil {
		t.Fatalf("Collect: %v", err)
	}
	if result.Data["sshd_present"] != false {
		t.Error("expected sshd_present false for missing config")
	}
	if len(result.Findings) != 1 || result.Findings[0].CheckID != "SEC-NET-001" {
		t.Errorf("expected SEC-NET-001 finding, got %+v", result.Findings)
	}
}
