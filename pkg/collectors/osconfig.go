package collectors

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/shirou/gopsutil/v4/host"

	"auditum-hq/callisto/pkg/audit"
)

// maxUptime is the point at which uninterrupted uptime suggests the host
// has not taken kernel or security updates.
const maxUptime = 90 * 24 * time.Hour

// OSConfigCollector reports operating system identity and configuration
// hygiene.
type OSConfigCollector struct{}

func NewOSConfigCollector() *OSConfigCollector { return &OSConfigCollector{} }

func (c *OSConfigCollector) Name() string        { return "os_config" }
func (c *OSConfigCollector) RequiresAdmin() bool { return false }

func (c *OSConfigCollector) SupportedPlatforms() []string {
	return []string{"linux", "darwin", "windows"}
}

func (c *OSConfigCollector) Collect(ctx context.Context) (audit.CollectorResult, error) {
	result := audit.CollectorResult{
		Status: audit.StatusSuccess,
		Data:   map[string]any{},
	}

	info, err := host.InfoWithContext(ctx)
	if err != nil {
		return result, fmt.Errorf("host info: %w", err)
	}

	result.Data["hostname"] = info.Hostname
	result.Data["platform"] = info.Platform
	result.Data["platform_version"] = info.PlatformVersion
	result.Data["kernel_version"] = info.KernelVersion
	result.Data["uptime_seconds"] = info.Uptime

	uptime := time.Duration(info.Uptime) * time.Second
	if uptime > maxUptime {
		result.AddFinding(audit.Finding{
			CheckID:         "OS-UPTIME-001",
			Severity:        audit.SeverityLow,
			Description:     "Host has not rebooted in over 90 days",
			CurrentValue:    fmt.Sprintf("up %d days", int(uptime.Hours()/24)),
			ExpectedValue:   "rebooted within 90 days",
			RemediationHint: "Apply pending kernel and security updates, then reboot",
		})
	}

	if info.OS == "linux" {
		c.checkTmpPermissions(&result)
	}

	return result, nil
}

// checkTmpPermissions verifies the sticky bit on the world-writable /tmp.
func (c *OSConfigCollector) checkTmpPermissions(result *audit.CollectorResult) {
	fi, err := os.Stat("/tmp")
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("stat /tmp: %v", err))
		return
	}
	mode := fi.Mode()
	result.Data["tmp_mode"] = mode.String()
	if mode.Perm()&0o002 != 0 && mode&os.ModeSticky == 0 {
		result.AddFinding(audit.Finding{
			CheckID:         "OS-TMP-001",
			Severity:        audit.SeverityMedium,
			Description:     "/tmp is world-writable without the sticky bit",
			CurrentValue:    mode.String(),
			ExpectedValue:   "sticky bit set (drwxrwxrwt)",
			RemediationHint: "chmod +t /tmp",
		})
	}
}
