package orchestrator

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v4/host"

	"auditum-hq/callisto/pkg/analyzer"
	"auditum-hq/callisto/pkg/audit"
	"auditum-hq/callisto/pkg/collectors"
	"auditum-hq/callisto/pkg/config"
	"auditum-hq/callisto/pkg/storage"
	"auditum-hq/callisto/pkg/telemetry/metrics"
)

// maxRemediations caps how many findings get a generated script per run.
const maxRemediations = 10

// auditIDTimeFormat is the timestamp half of an audit ID.
const auditIDTimeFormat = "20060102_150405"

// Options wires the orchestrator's dependencies. Collectors and Logger
// are required in practice; Analyzer, Store, and Metrics are optional
// and degrade to fallback analysis, no persistence, and no metrics.
type Options struct {
	Audit      config.AuditConfig
	Collectors []collectors.Collector
	Analyzer   *analyzer.Analyzer
	Store      storage.Store
	Metrics    *metrics.Collector
	Logger     *slog.Logger
}

// Orchestrator runs audits through their fixed phase sequence.
type Orchestrator struct {
	cfg      config.AuditConfig
	registry []collectors.Collector
	runner   *collectors.Runner
	analyzer *analyzer.Analyzer
	store    storage.Store
	metrics  *metrics.Collector
	logger   *slog.Logger

	now      func() time.Time
	hostInfo func(ctx context.Context) (hostname, platform, version string)

	// Analyzer counters already published to metrics. The analyzer reports
	// lifetime totals, so per-run deltas are computed against these.
	statsMu         sync.Mutex
	seenAPICalls    int64
	seenAPIErrors   int64
	seenRateLimited int64
}

// New creates an orchestrator from opts.
func New(opts Options) *Orchestrator {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Orchestrator{
		cfg:      opts.Audit,
		registry: opts.Collectors,
		runner:   collectors.NewRunner(opts.Audit.RequireAdmin, logger),
		analyzer: opts.Analyzer,
		store:    opts.Store,
		metrics:  opts.Metrics,
		logger:   logger,
		now:      time.Now,
		hostInfo: defaultHostInfo,
	}
}

// RunAudit executes one full audit and returns its result. The returned
// result is complete even when individual collectors failed; an error is
// returned only when the run as a whole could not proceed.
func (o *Orchestrator) RunAudit(ctx context.Context) (*audit.Result, error) {
	started := o.now()

	// Phase 1: initialization.
	hostname, platform, version := o.hostInfo(ctx)
	result := &audit.Result{
		AuditID:          newAuditID(started),
		Timestamp:        started.UTC(),
		Platform:         platform,
		PlatformVersion:  version,
		Hostname:         hostname,
		CollectorResults: make(map[string]audit.CollectorResult),
	}

	o.logger.Info("audit started",
		"audit_id", result.AuditID,
		"hostname", hostname,
		"platform", platform,
		"collectors", len(o.selected()),
		"parallel", o.cfg.Parallel)

	// Phase 2: collection.
	if err := o.collect(ctx, result); err != nil {
		return nil, fmt.Errorf("collection phase: %w", err)
	}

	// Phase 3: aggregation.
	o.aggregate(result)

	// Phase 4: analysis.
	o.analyze(ctx, result)

	// Phase 5: remediation.
	if o.cfg.Remediation {
		o.remediate(ctx, result)
	}

	// Phase 6: finalization. Never fails the run.
	result.DurationSeconds = o.now().Sub(started).Seconds()
	o.finalize(ctx, result)

	o.logger.Info("audit complete",
		"audit_id", result.AuditID,
		"findings", len(result.Findings),
		"risk_score", result.Analysis.RiskScore,
		"risk_level", audit.RiskLevel(result.Analysis.RiskScore),
		"duration_seconds", result.DurationSeconds)
	return result, nil
}

// selected returns the collectors to run, honoring the configured name
// filter in registration order.
func (o *Orchestrator) selected() []collectors.Collector {
	if len(o.cfg.Collectors) == 0 {
		return o.registry
	}
	var out []collectors.Collector
	for _, c := range o.registry {
		if slices.Contains(o.cfg.Collectors, c.Name()) {
			out = append(out, c)
		}
	}
	return out
}

// collect runs every selected collector, in parallel or sequentially.
// Individual collector failures land in the result map; only a cancelled
// context aborts the phase.
func (o *Orchestrator) collect(ctx context.Context, result *audit.Result) error {
	selected := o.selected()

	if !o.cfg.Parallel {
		for _, c := range selected {
			if err := ctx.Err(); err != nil {
				return err
			}
			result.CollectorResults[c.Name()] = o.runOne(ctx, c)
		}
		return ctx.Err()
	}

	var (
		wg sync.WaitGroup
		mu sync.Mutex
	)
	for _, c := range selected {
		c := c
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := o.runOne(ctx, c)
			mu.Lock()
			result.CollectorResults[c.Name()] = res
			mu.Unlock()
		}()
	}
	wg.Wait()
	return ctx.Err()
}

// runOne executes a single collector under the configured timeout.
func (o *Orchestrator) runOne(ctx context.Context, c collectors.Collector) audit.CollectorResult {
	runCtx := ctx
	if o.cfg.CollectorTimeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, o.cfg.CollectorTimeout)
		defer cancel()
	}

	res := o.runner.SafeCollect(runCtx, c)
	o.logger.Debug("collector finished",
		"collector", c.Name(),
		"status", res.Status,
		"findings", len(res.Findings),
		"execution_ms", res.ExecutionTimeMS)
	if o.metrics != nil {
		o.metrics.RecordCollector(c.Name(), string(res.Status),
			time.Duration(res.ExecutionTimeMS*float64(time.Millisecond)))
	}
	return res
}

// aggregate flattens collector findings into the result, stamping each
// finding with its collector and sorting by severity. Flattening walks the
// selected collectors in registration order and the sort is stable, so
// findings of equal severity come out in the same order on every run
// regardless of collection mode.
func (o *Orchestrator) aggregate(result *audit.Result) {
	for _, c := range o.selected() {
		name := c.Name()
		res, ok := result.CollectorResults[name]
		if !ok {
			continue
		}
		for _, f := range res.Findings {
			f.CollectorName = name
			result.Findings = append(result.Findings, f)
		}
	}
	audit.SortFindings(result.Findings)
}

// analyze attaches the risk assessment. A clean host skips the provider
// entirely; a missing analyzer degrades to deterministic scoring.
func (o *Orchestrator) analyze(ctx context.Context, result *audit.Result) {
	if len(result.Findings) == 0 {
		result.Analysis = analyzer.HealthyAnalysis()
		return
	}

	if o.analyzer == nil {
		result.Analysis = analyzer.FallbackAnalysis(result.Findings)
		return
	}

	result.Analysis = o.analyzer.AnalyzeFindings(ctx, analyzer.SystemInfo{
		Platform: result.Platform,
		Hostname: result.Hostname,
	}, result.Findings)

	if o.analyzer.Enabled() {
		result.AIProvider = o.analyzer.Provider()
		result.AIModel = o.analyzer.Model()
	}
}

// remediate generates scripts for the highest-severity findings. Findings
// are already severity-sorted, so the first maxRemediations CRITICAL/HIGH
// entries are the worst ones. Duplicate check IDs get one script. Without
// an analyzer every script is the inert manual-remediation template.
func (o *Orchestrator) remediate(ctx context.Context, result *audit.Result) {
	ext := ".sh"
	if result.Platform == "windows" {
		ext = ".ps1"
	}

	for _, f := range result.Findings {
		if len(result.Remediations) >= maxRemediations {
			break
		}
		if f.Severity != audit.SeverityCritical && f.Severity != audit.SeverityHigh {
			continue
		}
		if _, done := result.Remediations[f.CheckID]; done {
			continue
		}
		if err := ctx.Err(); err != nil {
			o.logger.Warn("remediation generation aborted", "error", err)
			return
		}

		var content string
		if o.analyzer != nil {
			content = o.analyzer.GenerateRemediationScript(ctx, f, result.Platform)
		} else {
			content = analyzer.FallbackRemediationScript(f, result.Platform)
		}
		if result.Remediations == nil {
			result.Remediations = make(map[string]audit.RemediationScript)
		}
		result.Remediations[f.CheckID] = audit.RemediationScript{
			Filename: fmt.Sprintf("remediate_%s%s", f.CheckID, ext),
			Content:  content,
			Finding:  f,
		}
	}
}

// finalize records metrics and persists the run. Both are best-effort.
func (o *Orchestrator) finalize(ctx context.Context, result *audit.Result) {
	if o.metrics != nil {
		outcome := "success"
		for _, res := range result.CollectorResults {
			if res.Status == audit.StatusFailed {
				outcome = "partial"
				break
			}
		}
		o.metrics.RecordAudit(outcome,
			time.Duration(result.DurationSeconds*float64(time.Second)),
			result.Analysis.RiskScore)
		for _, f := range result.Findings {
			o.metrics.RecordFinding(string(f.Severity))
		}
		if o.analyzer != nil {
			am := o.analyzer.Metrics()

			o.statsMu.Lock()
			calls := am.TotalAPICalls - o.seenAPICalls
			errs := am.TotalAPIErrors - o.seenAPIErrors
			limited := am.RateLimiter.TotalRateLimited - o.seenRateLimited
			o.seenAPICalls = am.TotalAPICalls
			o.seenAPIErrors = am.TotalAPIErrors
			o.seenRateLimited = am.RateLimiter.TotalRateLimited
			o.statsMu.Unlock()

			o.metrics.RecordAPICalls(calls, errs)
			o.metrics.RecordRateLimited(limited)
			o.metrics.SetCircuitState(string(am.RateLimiter.CircuitState))
		}
	}

	if o.store != nil {
		if err := o.store.SaveResult(ctx, result); err != nil {
			o.logger.Warn("failed to persist audit result",
				"audit_id", result.AuditID, "error", err)
		}
	}
}

// newAuditID builds the run identifier: UTC timestamp plus a short random
// suffix so concurrent runs in the same second stay distinct.
func newAuditID(t time.Time) string {
	return fmt.Sprintf("%s_%s",
		t.UTC().Format(auditIDTimeFormat),
		uuid.NewString()[:8])
}

// defaultHostInfo snapshots host identity, degrading to runtime values
// when the gopsutil probe fails.
func defaultHostInfo(ctx context.Context) (hostname, platform, version string) {
	platform = runtime.GOOS
	if name, err := os.Hostname(); err == nil {
		hostname = name
	} else {
		hostname = "unknown"
	}
	if info, err := host.InfoWithContext(ctx); err == nil {
		version = info.PlatformVersion
		if info.Hostname != "" {
			hostname = info.Hostname
		}
	}
	return hostname, platform, version
}
