package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// LoadConfig loads configuration from a YAML file, applies defaults, and
// validates the result. Absent keys keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
	}

	ApplyDefaults(&cfg)
	if err := Validate(&cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &cfg, nil
}

// LoadConfigWithEnvOverrides loads configuration from a YAML file and then
// applies environment variable overrides. Variables use the format
// CALLISTO_SECTION_FIELD (e.g. CALLISTO_AI_API_KEY) and always take
// precedence over the file.
//
// The loading sequence is:
// 1. Load YAML from file
// 2. Apply default values
// 3. Apply environment variable overrides
// 4. Validate final configuration
func LoadConfigWithEnvOverrides(path string) (*Config, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed after environment overrides: %w", err)
	}
	return cfg, nil
}

// applyEnvOverrides applies CALLISTO_SECTION_FIELD environment overrides.
func applyEnvOverrides(cfg *Config) {
	// Audit overrides
	if val := os.Getenv("CALLISTO_AUDIT_PARALLEL"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Parallel = b
		}
	}
	if val := os.Getenv("CALLISTO_AUDIT_COLLECTOR_TIMEOUT"); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			cfg.Audit.CollectorTimeout = d
		}
	}
	if val := os.Getenv("CALLISTO_AUDIT_REQUIRE_ADMIN"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.RequireAdmin = b
		}
	}
	if val := os.Getenv("CALLISTO_AUDIT_COLLECTORS"); val != "" {
		cfg.Audit.Collectors = splitList(val)
	}
	if val := os.Getenv("CALLISTO_AUDIT_REMEDIATION"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Audit.Remediation = b
		}
	}

	// AI overrides
	if val := os.Getenv("CALLISTO_AI_PROVIDER"); val != "" {
		cfg.AI.Provider = val
	}
	if val := os.Getenv("CALLISTO_AI_MODEL"); val != "" {
		cfg.AI.Model = val
	}
	if val := os.Getenv("CALLISTO_AI_API_KEY"); val != "" {
		cfg.AI.APIKey = val
	}
	if val := os.Getenv("CALLISTO_AI_BASE_URL"); val != "" {
		cfg.AI.BaseURL = val
	}
	if val := os.Getenv("CALLISTO_AI_MAX_TOKENS"); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			cfg.AI.MaxTokens = i
		}
	}

	// Storage overrides
	if val := os.Getenv("CALLISTO_STORAGE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Storage.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_STORAGE_PATH"); val != "" {
		cfg.Storage.Path = val
	}

	// Report overrides
	if val := os.Getenv("CALLISTO_REPORT_OUTPUT_DIR"); val != "" {
		cfg.Report.OutputDir = val
	}
	if val := os.Getenv("CALLISTO_REPORT_FORMATS"); val != "" {
		cfg.Report.Formats = splitList(val)
	}

	// Schedule overrides
	if val := os.Getenv("CALLISTO_SCHEDULE_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Schedule.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_SCHEDULE_CRON"); val != "" {
		cfg.Schedule.Cron = val
	}

	// Logging overrides
	if val := os.Getenv("CALLISTO_LOGGING_LEVEL"); val != "" {
		cfg.Logging.Level = val
	}
	if val := os.Getenv("CALLISTO_LOGGING_FORMAT"); val != "" {
		cfg.Logging.Format = val
	}

	// Metrics overrides
	if val := os.Getenv("CALLISTO_METRICS_ENABLED"); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			cfg.Metrics.Enabled = b
		}
	}
	if val := os.Getenv("CALLISTO_METRICS_LISTEN_ADDRESS"); val != "" {
		cfg.Metrics.ListenAddress = val
	}
}

// splitList parses a comma-separated list, trimming whitespace.
func splitList(val string) []string {
	parts := strings.Split(val, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
