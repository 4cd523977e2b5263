package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"auditum-hq/callisto/pkg/analyzer"
	"auditum-hq/callisto/pkg/audit"
	"auditum-hq/callisto/pkg/collectors"
	"auditum-hq/callisto/pkg/config"
	"auditum-hq/callisto/pkg/orchestrator"
	"auditum-hq/callisto/pkg/report"
	"auditum-hq/callisto/pkg/storage"
	"auditum-hq/callisto/pkg/telemetry/logging"
	"auditum-hq/callisto/pkg/telemetry/metrics"
)

var (
	runOutputDir   string
	runFormats     []string
	runRemediation bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one audit and write reports",
	Long: `Run a full audit of the local host: collect data, score findings,
optionally generate remediation scripts, and write reports.

The process exits 0 on a completed audit regardless of findings; use the
risk score in the report to gate automation.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runAudit(ctx)
	},
}

func init() {
	runCmd.Flags().StringVarP(&runOutputDir, "output", "o", "", "report output directory (overrides config)")
	runCmd.Flags().StringSliceVar(&runFormats, "formats", nil, "report formats: json, html (overrides config)")
	runCmd.Flags().BoolVar(&runRemediation, "remediation", false, "generate remediation scripts (overrides config)")
	rootCmd.AddCommand(runCmd)
}

// loadConfig reads the configuration file. A missing file at the default
// path falls back to defaults; a missing file at an explicit path is an
// error.
func loadConfig() (*config.Config, error) {
	if _, err := os.Stat(cfgFile); os.IsNotExist(err) && cfgFile == "callisto.yaml" {
		def := config.DefaultConfig()
		return &def, nil
	}
	return config.LoadConfigWithEnvOverrides(cfgFile)
}

// components holds the wired subsystems for one process.
type components struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    storage.Store
	metrics  *metrics.Collector
	orch     *orchestrator.Orchestrator
	reporter *report.Writer
}

// wire builds the audit pipeline from a loaded configuration.
func wire(cfg *config.Config) (*components, error) {
	if verbose {
		cfg.Logging.Level = "debug"
	}
	logger, err := logging.New(cfg.Logging, nil)
	if err != nil {
		return nil, err
	}

	ai, err := analyzer.New(cfg.AI, logger)
	if err != nil {
		return nil, fmt.Errorf("analyzer: %w", err)
	}

	var store storage.Store
	if cfg.Storage.Enabled {
		sqlite, err := storage.NewSQLiteStore(storage.DefaultSQLiteConfig(cfg.Storage.Path), logger)
		if err != nil {
			// History is best-effort; audit without it.
			logger.Warn("audit history unavailable", "error", err)
		} else {
			store = sqlite
		}
	}

	var collector *metrics.Collector
	if cfg.Metrics.Enabled {
		collector = metrics.NewCollector(nil)
	}

	orch := orchestrator.New(orchestrator.Options{
		Audit:      cfg.Audit,
		Collectors: defaultCollectors(),
		Analyzer:   ai,
		Store:      store,
		Metrics:    collector,
		Logger:     logger,
	})

	return &components{
		cfg:      cfg,
		logger:   logger,
		store:    store,
		metrics:  collector,
		orch:     orch,
		reporter: report.NewWriter(cfg.Report.OutputDir),
	}, nil
}

// defaultCollectors is the full collector registry in execution order.
func defaultCollectors() []collectors.Collector {
	return []collectors.Collector{
		collectors.NewHardwareCollector(),
		collectors.NewOSConfigCollector(),
		collectors.NewNetworkCollector(),
		collectors.NewSecurityCollector(),
	}
}

func (c *components) close() {
	if c.store != nil {
		c.store.Close()
	}
}

func runAudit(ctx context.Context) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runOutputDir != "" {
		cfg.Report.OutputDir = runOutputDir
	}
	if len(runFormats) > 0 {
		cfg.Report.Formats = runFormats
	}
	if runRemediation {
		cfg.Audit.Remediation = true
	}

	c, err := wire(cfg)
	if err != nil {
		return err
	}
	defer c.close()

	result, err := c.orch.RunAudit(ctx)
	if err != nil {
		return err
	}

	paths, err := c.reporter.Write(result, cfg.Report.Formats)
	if err != nil {
		return fmt.Errorf("write reports: %w", err)
	}
	if len(result.Remediations) > 0 {
		scriptPaths, err := c.reporter.WriteRemediationScripts(result)
		if err != nil {
			c.logger.Warn("failed to write remediation scripts", "error", err)
		} else {
			paths = append(paths, scriptPaths...)
		}
	}

	printSummary(result, paths)
	return nil
}

func printSummary(result *audit.Result, paths []string) {
	fmt.Printf("Audit %s complete\n", result.AuditID)
	fmt.Printf("  Host:       %s (%s)\n", result.Hostname, result.Platform)
	fmt.Printf("  Risk score: %d/100 (%s)\n",
		result.Analysis.RiskScore, audit.RiskLevel(result.Analysis.RiskScore))
	fmt.Printf("  Findings:   %d\n", len(result.Findings))

	counts := result.CountBySeverity()
	for _, sev := range []audit.Severity{
		audit.SeverityCritical, audit.SeverityHigh, audit.SeverityMedium,
		audit.SeverityLow, audit.SeverityInfo,
	} {
		if counts[sev] > 0 {
			fmt.Printf("    %-8s %d\n", sev, counts[sev])
		}
	}
	for _, p := range paths {
		fmt.Printf("  Wrote %s\n", p)
	}
}
