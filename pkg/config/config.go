package config

import (
	"fmt"
	"slices"
	"time"

	"auditum-hq/callisto/pkg/analyzer"
	"auditum-hq/callisto/pkg/ratelimit"
	"auditum-hq/callisto/pkg/telemetry/logging"
)

// Config is the root configuration for Callisto.
type Config struct {
	// Audit controls collector execution.
	Audit AuditConfig `yaml:"audit"`

	// AI configures the analyzer and its provider client.
	AI analyzer.Config `yaml:"ai"`

	// Storage configures audit history persistence.
	Storage StorageConfig `yaml:"storage"`

	// Report configures report generation.
	Report ReportConfig `yaml:"report"`

	// Schedule configures periodic audit runs.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Logging configures the structured logger.
	Logging logging.Config `yaml:"logging"`

	// Metrics configures the Prometheus endpoint.
	Metrics MetricsConfig `yaml:"metrics"`
}

// AuditConfig controls how collectors run.
type AuditConfig struct {
	// Parallel runs collectors concurrently instead of sequentially.
	Parallel bool `yaml:"parallel"`

	// CollectorTimeout bounds a single collector execution.
	CollectorTimeout time.Duration `yaml:"collector_timeout"`

	// RequireAdmin fails privileged collectors instead of skipping them
	// when the process lacks privileges.
	RequireAdmin bool `yaml:"require_admin"`

	// Collectors restricts the run to the named collectors. Empty means
	// all registered collectors.
	Collectors []string `yaml:"collectors"`

	// Remediation generates remediation scripts for CRITICAL and HIGH
	// findings after analysis.
	Remediation bool `yaml:"remediation"`
}

// StorageConfig controls audit history persistence.
type StorageConfig struct {
	// Enabled turns persistence on. Audits still run without it.
	Enabled bool `yaml:"enabled"`

	// Path is the SQLite database file path.
	Path string `yaml:"path"`
}

// ReportConfig controls report output.
type ReportConfig struct {
	// OutputDir is the directory reports are written to.
	OutputDir string `yaml:"output_dir"`

	// Formats lists the report formats to write ("json", "html").
	Formats []string `yaml:"formats"`
}

// ScheduleConfig controls periodic audits.
type ScheduleConfig struct {
	// Enabled turns the scheduler on.
	Enabled bool `yaml:"enabled"`

	// Cron is the schedule in cron syntax, e.g. "0 3 * * *".
	Cron string `yaml:"cron"`
}

// MetricsConfig controls the Prometheus exposition endpoint.
type MetricsConfig struct {
	// Enabled turns the /metrics HTTP listener on.
	Enabled bool `yaml:"enabled"`

	// ListenAddress is the host:port for the metrics listener.
	ListenAddress string `yaml:"listen_address"`
}

// DefaultConfig returns the full default configuration. Loading starts
// from these values so absent YAML keys keep their defaults.
func DefaultConfig() Config {
	return Config{
		Audit: AuditConfig{
			Parallel:         true,
			CollectorTimeout: 60 * time.Second,
		},
		AI: analyzer.DefaultConfig(),
		Storage: StorageConfig{
			Enabled: true,
			Path:    "callisto.db",
		},
		Report: ReportConfig{
			OutputDir: "reports",
			Formats:   []string{"json"},
		},
		Schedule: ScheduleConfig{
			Cron: "0 3 * * *",
		},
		Logging: logging.DefaultConfig(),
		Metrics: MetricsConfig{
			ListenAddress: "127.0.0.1:9464",
		},
	}
}

// ApplyDefaults fills zero values that have no meaningful zero semantics.
func ApplyDefaults(cfg *Config) {
	def := DefaultConfig()
	if cfg.Audit.CollectorTimeout <= 0 {
		cfg.Audit.CollectorTimeout = def.Audit.CollectorTimeout
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = def.Storage.Path
	}
	if cfg.Report.OutputDir == "" {
		cfg.Report.OutputDir = def.Report.OutputDir
	}
	if len(cfg.Report.Formats) == 0 {
		cfg.Report.Formats = slices.Clone(def.Report.Formats)
	}
	if cfg.Schedule.Cron == "" {
		cfg.Schedule.Cron = def.Schedule.Cron
	}
	if cfg.Metrics.ListenAddress == "" {
		cfg.Metrics.ListenAddress = def.Metrics.ListenAddress
	}
	if cfg.AI.Model == "" {
		cfg.AI.Model = def.AI.Model
	}
	if cfg.AI.MaxTokens <= 0 {
		cfg.AI.MaxTokens = def.AI.MaxTokens
	}
	if cfg.AI.Provider == "" {
		cfg.AI.Provider = def.AI.Provider
	}
	if cfg.AI.RateLimit == (ratelimit.Config{}) {
		cfg.AI.RateLimit = ratelimit.DefaultConfig()
	}
	if cfg.AI.Retry == (ratelimit.RetryOptions{}) {
		cfg.AI.Retry = ratelimit.DefaultRetryOptions()
	}
}

// supportedProviders are the values accepted for ai.provider.
var supportedProviders = []string{"none", "anthropic", "openai"}

// supportedFormats are the values accepted in report.formats.
var supportedFormats = []string{"json", "html"}

// Validate checks the configuration for contradictions and bad values.
func Validate(cfg *Config) error {
	if cfg.Audit.CollectorTimeout <= 0 {
		return fmt.Errorf("audit.collector_timeout must be positive, got %s", cfg.Audit.CollectorTimeout)
	}

	if !slices.Contains(supportedProviders, cfg.AI.Provider) {
		return fmt.Errorf("ai.provider %q not supported (expected one of %v)",
			cfg.AI.Provider, supportedProviders)
	}
	if err := cfg.AI.RateLimit.Validate(); err != nil {
		return fmt.Errorf("ai.rate_limit: %w", err)
	}
	if cfg.AI.Retry.MaxRetries < 0 {
		return fmt.Errorf("ai.retry.max_retries must be non-negative, got %d", cfg.AI.Retry.MaxRetries)
	}
	if cfg.AI.Retry.BackoffFactor < 1 {
		return fmt.Errorf("ai.retry.backoff_factor must be >= 1, got %g", cfg.AI.Retry.BackoffFactor)
	}

	for _, f := range cfg.Report.Formats {
		if !slices.Contains(supportedFormats, f) {
			return fmt.Errorf("report format %q not supported (expected one of %v)", f, supportedFormats)
		}
	}

	if cfg.Schedule.Enabled && cfg.Schedule.Cron == "" {
		return fmt.Errorf("schedule.cron must be set when the scheduler is enabled")
	}
	if cfg.Metrics.Enabled && cfg.Metrics.ListenAddress == "" {
		return fmt.Errorf("metrics.listen_address must be set when metrics are enabled")
	}
	return nil
}
