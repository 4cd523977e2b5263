package collectors

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"auditum-hq/callisto/pkg/audit"
)

const sshdConfigPath = "/etc/ssh/sshd_config"

// SecurityCollector inspects privileged security configuration. Linux only;
// the sshd and sysctl files it reads usually need root.
type SecurityCollector struct {
	// sshdConfig and ipForwardPath are overridable for tests.
	sshdConfig    string
	ipForwardPath string
}

func NewSecurityCollector() *SecurityCollector {
	return &SecurityCollector{
		sshdConfig:    sshdConfigPath,
		ipForwardPath: "/proc/sys/net/ipv4/ip_forward",
	}
}

func (c *SecurityCollector) Name() string                 { return "security" }
func (c *SecurityCollector) RequiresAdmin() bool          { return true }
func (c *SecurityCollector) SupportedPlatforms() []string { return []string{"linux"} }

func (c *SecurityCollector) Collect(ctx context.Context) (audit.CollectorResult, error) {
	result := audit.CollectorResult{
		Status: audit.StatusSuccess,
		Data:   map[string]any{},
	}

	if err := c.checkSSHConfig(&result); err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("sshd config: %v", err))
		result.Status = audit.StatusPartial
	}
	c.checkIPForwarding(&result)

	return result, nil
}

// checkSSHConfig scans sshd_config for weak authentication settings.
// Only uncommented directives count; sshd takes the first occurrence.
func (c *SecurityCollector) checkSSHConfig(result *audit.CollectorResult) error {
	f, err := os.Open(c.sshdConfig)
	if os.IsNotExist(err) {
		result.Data["sshd_present"] = false
		return nil
	}
	if err != nil {
		return err
	}
	defer f.Close()
	result.Data["sshd_present"] = true

	settings := map[string]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) < 2 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		key := strings.ToLower(fields[0])
		if _, dup := settings[key]; !dup {
			settings[key] = strings.ToLower(fields[1])
		}
	}
	if err := scanner.Err(); err != nil {
		return err
	}

	if settings["permitrootlogin"] == "yes" {
		result.AddFinding(audit.Finding{
			CheckID:         "SEC-SSH-001",
			Severity:        audit.SeverityHigh,
			Description:     "SSH permits direct root login",
			CurrentValue:    "PermitRootLogin yes",
			ExpectedValue:   "PermitRootLogin no or prohibit-password",
			RemediationHint: "Set PermitRootLogin no in sshd_config and reload sshd",
		})
	}
	if settings["passwordauthentication"] == "yes" {
		result.AddFinding(audit.Finding{
			CheckID:         "SEC-SSH-002",
			Severity:        audit.SeverityMedium,
			Description:     "SSH allows password authentication",
			CurrentValue:    "PasswordAuthentication yes",
			ExpectedValue:   "PasswordAuthentication no",
			RemediationHint: "Switch to key-based authentication and disable passwords",
		})
	}
	return nil
}

// checkIPForwarding flags hosts routing traffic without being routers.
func (c *SecurityCollector) checkIPForwarding(result *audit.CollectorResult) {
	raw, err := os.ReadFile(c.ipForwardPath)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("ip_forward: %v", err))
		return
	}
	enabled := strings.TrimSpace(string(raw)) == "1"
	result.Data["ip_forwarding"] = enabled
	if enabled {
		result.AddFinding(audit.Finding{
			CheckID:         "SEC-NET-001",
			Severity:        audit.SeverityMedium,
			Description:     "IPv4 forwarding is enabled",
			CurrentValue:    "net.ipv4.ip_forward = 1",
			ExpectedValue:   "net.ipv4.ip_forward = 0 unless the host routes traffic",
			RemediationHint: "sysctl -w net.ipv4.ip_forward=0 if this host is not a router",
		})
	}
}
