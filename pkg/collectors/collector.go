package collectors

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"time"

	"auditum-hq/callisto/pkg/audit"
)

// Collector is a single source of host audit data.
type Collector interface {
	// Name is the stable collector name used as the result map key.
	Name() string

	// RequiresAdmin reports whether the collector needs root/admin
	// privileges to run its checks.
	RequiresAdmin() bool

	// SupportedPlatforms lists the runtime.GOOS values the collector
	// supports.
	SupportedPlatforms() []string

	// Collect runs the checks. Partial results with errors are allowed;
	// a returned error marks the whole collector as failed.
	Collect(ctx context.Context) (audit.CollectorResult, error)
}

// Runner executes collectors with the orchestrator's safety guarantees.
type Runner struct {
	// RequireAdmin escalates missing privileges from a skip to a failure.
	RequireAdmin bool

	logger   *slog.Logger
	platform string
	isAdmin  func() bool
}

// NewRunner creates a Runner for the current platform.
func NewRunner(requireAdmin bool, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Runner{
		RequireAdmin: requireAdmin,
		logger:       logger,
		platform:     runtime.GOOS,
		isAdmin:      processIsAdmin,
	}
}

// SafeCollect runs one collector and always returns a usable result.
//
// Unsupported platform: skipped with a warning. Missing privileges:
// skipped (or failed under RequireAdmin). Collector error or panic:
// failed with the message in Errors. The batch contract is that this
// method never panics and never returns a zero result.
func (r *Runner) SafeCollect(ctx context.Context, c Collector) (result audit.CollectorResult) {
	start := time.Now()

	result = audit.CollectorResult{
		CollectorName: c.Name(),
		Status:        audit.StatusSkipped,
	}

	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("collector panicked", "collector", c.Name(), "panic", rec)
			result = audit.CollectorResult{
				CollectorName: c.Name(),
				Status:        audit.StatusFailed,
				Errors:        []string{fmt.Sprintf("collector panicked: %v", rec)},
			}
		}
		result.ExecutionTimeMS = float64(time.Since(start).Microseconds()) / 1000.0
	}()

	if !slices.Contains(c.SupportedPlatforms(), r.platform) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("platform %s not supported", r.platform))
		return result
	}

	if c.RequiresAdmin() && !r.isAdmin() {
		if r.RequireAdmin {
			result.Status = audit.StatusFailed
			result.Errors = append(result.Errors,
				"requires admin/root privileges (run with sudo/admin)")
			return result
		}
		result.Warnings = append(result.Warnings,
			"insufficient privileges; skipping checks for this collector")
		return result
	}

	collected, err := c.Collect(ctx)
	if err != nil {
		r.logger.Error("collection failed", "collector", c.Name(), "error", err)
		collected.CollectorName = c.Name()
		collected.Status = audit.StatusFailed
		collected.Errors = append(collected.Errors, err.Error())
		return collected
	}

	collected.CollectorName = c.Name()
	if collected.Status == "" {
		collected.Status = audit.StatusSuccess
	}
	return collected
}

// processIsAdmin reports whether the process runs with root privileges.
// Geteuid returns -1 on Windows, which reads as non-admin; Windows
// privilege checks are handled by the collectors that need them.
func processIsAdmin() bool {
	euid := os.Geteuid()
	return euid == 0
}
