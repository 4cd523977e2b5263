package collectors

import (
	"context"
	"fmt"

	gnet "github.com/shirou/gopsutil/v4/net"

	"auditum-hq/callisto/pkg/audit"
)

// riskyPorts maps well-known plaintext or remote-access ports to findings.
var riskyPorts = map[uint32]audit.Finding{
	23: {
		CheckID:         "NET-PORT-023",
		Severity:        audit.SeverityCritical,
		Description:     "Telnet service listening",
		ExpectedValue:   "port 23 closed",
		RemediationHint: "Disable telnet and use SSH instead",
	},
	21: {
		CheckID:         "NET-PORT-021",
		Severity:        audit.SeverityHigh,
		Description:     "FTP service listening",
		ExpectedValue:   "port 21 closed",
		RemediationHint: "Replace FTP with SFTP or FTPS",
	},
	3389: {
		CheckID:         "NET-PORT-3389",
		Severity:        audit.SeverityMedium,
		Description:     "RDP service listening",
		ExpectedValue:   "port 3389 closed or firewalled",
		RemediationHint: "Restrict RDP access to trusted networks",
	},
	5900: {
		CheckID:         "NET-PORT-5900",
		Severity:        audit.SeverityMedium,
		Description:     "VNC service listening",
		ExpectedValue:   "port 5900 closed or firewalled",
		RemediationHint: "Tunnel VNC over SSH or restrict access",
	},
}

// NetworkCollector reports interfaces and flags risky listening ports.
type NetworkCollector struct{}

func NewNetworkCollector() *NetworkCollector { return &NetworkCollector{} }

func (c *NetworkCollector) Name() string        { return "network" }
func (c *NetworkCollector) RequiresAdmin() bool { return false }

func (c *NetworkCollector) SupportedPlatforms() []string {
	return []string{"linux", "darwin", "windows"}
}

func (c *NetworkCollector) Collect(ctx context.Context) (audit.CollectorResult, error) {
	result := audit.CollectorResult{
		Status: audit.StatusSuccess,
		Data:   map[string]any{},
	}

	ifaces, err := gnet.InterfacesWithContext(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("interfaces: %v", err))
		result.Status = audit.StatusPartial
	} else {
		names := make([]string, 0, len(ifaces))
		for _, iface := range ifaces {
			names = append(names, iface.Name)
		}
		result.Data["interfaces"] = names
	}

	conns, err := gnet.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		// Connection enumeration often needs privileges on darwin.
		result.Warnings = append(result.Warnings, fmt.Sprintf("connections: %v", err))
		result.Status = audit.StatusPartial
		return result, nil
	}

	seen := map[uint32]bool{}
	var listening []uint32
	for _, conn := range conns {
		if conn.Status != "LISTEN" || seen[conn.Laddr.Port] {
			continue
		}
		seen[conn.Laddr.Port] = true
		listening = append(listening, conn.Laddr.Port)

		if f, ok := riskyPorts[conn.Laddr.Port]; ok {
			f.CurrentValue = fmt.Sprintf("listening on %s:%d", conn.Laddr.IP, conn.Laddr.Port)
			result.AddFinding(f)
		}
	}
	result.Data["listening_tcp_ports"] = listening

	return result, nil
}
