package collectors

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/mem"

	"auditum-hq/callisto/pkg/audit"
)

// Disk and memory pressure thresholds, percent used.
const (
	diskUsageHighPct   = 90.0
	diskUsageMediumPct = 80.0
	memUsageMediumPct  = 90.0
)

// HardwareCollector reports CPU, memory, and disk capacity plus findings
// for resource pressure.
type HardwareCollector struct{}

func NewHardwareCollector() *HardwareCollector { return &HardwareCollector{} }

func (c *HardwareCollector) Name() string        { return "hardware" }
func (c *HardwareCollector) RequiresAdmin() bool { return false }

func (c *HardwareCollector) SupportedPlatforms() []string {
	return []string{"linux", "darwin", "windows"}
}

func (c *HardwareCollector) Collect(ctx context.Context) (audit.CollectorResult, error) {
	result := audit.CollectorResult{
		Status: audit.StatusSuccess,
		Data:   map[string]any{},
	}

	if counts, err := cpu.CountsWithContext(ctx, true); err == nil {
		result.Data["cpu_logical_cores"] = counts
	} else {
		result.Warnings = append(result.Warnings, fmt.Sprintf("cpu counts: %v", err))
		result.Status = audit.StatusPartial
	}
	if info, err := cpu.InfoWithContext(ctx); err == nil && len(info) > 0 {
		result.Data["cpu_model"] = info[0].ModelName
	}

	vm, err := mem.VirtualMemoryWithContext(ctx)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("virtual memory: %v", err))
		result.Status = audit.StatusPartial
	} else {
		result.Data["memory_total_bytes"] = vm.Total
		result.Data["memory_used_percent"] = vm.UsedPercent
		if vm.UsedPercent > memUsageMediumPct {
			result.AddFinding(audit.Finding{
				CheckID:         "HW-MEM-001",
				Severity:        audit.SeverityMedium,
				Description:     "Memory usage is critically high",
				CurrentValue:    fmt.Sprintf("%.1f%% used", vm.UsedPercent),
				ExpectedValue:   fmt.Sprintf("below %.0f%% used", memUsageMediumPct),
				RemediationHint: "Identify memory-heavy processes or add capacity",
			})
		}
	}

	parts, err := disk.PartitionsWithContext(ctx, false)
	if err != nil {
		result.Warnings = append(result.Warnings, fmt.Sprintf("disk partitions: %v", err))
		result.Status = audit.StatusPartial
		return result, nil
	}

	disks := make([]map[string]any, 0, len(parts))
	for _, p := range parts {
		usage, err := disk.UsageWithContext(ctx, p.Mountpoint)
		if err != nil {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("disk usage %s: %v", p.Mountpoint, err))
			continue
		}
		disks = append(disks, map[string]any{
			"mountpoint":   p.Mountpoint,
			"fstype":       p.Fstype,
			"total_bytes":  usage.Total,
			"used_percent": usage.UsedPercent,
		})

		switch {
		case usage.UsedPercent > diskUsageHighPct:
			result.AddFinding(audit.Finding{
				CheckID:         "HW-DISK-001",
				Severity:        audit.SeverityHigh,
				Description:     fmt.Sprintf("Disk %s is nearly full", p.Mountpoint),
				CurrentValue:    fmt.Sprintf("%.1f%% used", usage.UsedPercent),
				ExpectedValue:   fmt.Sprintf("below %.0f%% used", diskUsageHighPct),
				RemediationHint: "Free disk space or expand the volume",
			})
		case usage.UsedPercent > diskUsageMediumPct:
			result.AddFinding(audit.Finding{
				CheckID:         "HW-DISK-002",
				Severity:        audit.SeverityMedium,
				Description:     fmt.Sprintf("Disk %s is filling up", p.Mountpoint),
				CurrentValue:    fmt.Sprintf("%.1f%% used", usage.UsedPercent),
				ExpectedValue:   fmt.Sprintf("below %.0f%% used", diskUsageMediumPct),
				RemediationHint: "Review disk consumption before it becomes critical",
			})
		}
	}
	result.Data["disks"] = disks

	return result, nil
}
