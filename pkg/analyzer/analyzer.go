package analyzer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"auditum-hq/callisto/pkg/audit"
	"auditum-hq/callisto/pkg/providers"
	"auditum-hq/callisto/pkg/ratelimit"
)

// Config controls the analyzer's provider selection and request shaping.
type Config struct {
	// Provider selects the AI backend: "anthropic", "openai", or "none".
	Provider string `yaml:"provider"`

	// Model is the model identifier passed to the provider.
	Model string `yaml:"model"`

	// APIKey authenticates against the provider. Empty disables AI
	// analysis entirely.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider endpoint (tests only).
	BaseURL string `yaml:"base_url"`

	// MaxTokens caps analysis response length.
	MaxTokens int `yaml:"max_tokens"`

	// Temperature for analysis requests. Remediation generation always
	// uses a lower fixed temperature.
	Temperature float64 `yaml:"temperature"`

	// RateLimit configures the limiter guarding every provider call.
	RateLimit ratelimit.Config `yaml:"rate_limit"`

	// Retry configures the retry loop around analysis calls.
	Retry ratelimit.RetryOptions `yaml:"retry"`
}

// DefaultConfig returns analyzer defaults mirroring a conservative
// production setup.
func DefaultConfig() Config {
	return Config{
		Provider:    "none",
		Model:       "claude-3-5-haiku-20241022",
		MaxTokens:   4096,
		Temperature: 0.3,
		RateLimit:   ratelimit.DefaultConfig(),
		Retry:       ratelimit.DefaultRetryOptions(),
	}
}

// SystemInfo is the host context included in analysis prompts.
type SystemInfo struct {
	Platform string
	Hostname string
}

// Metrics is a snapshot of the analyzer's lifetime counters.
type Metrics struct {
	TotalAPICalls  int64           `json:"total_api_calls"`
	TotalAPIErrors int64           `json:"total_api_errors"`
	AvgLatencyMS   float64         `json:"avg_latency_ms"`
	ErrorRate      float64         `json:"error_rate"`
	RateLimiter    ratelimit.Stats `json:"rate_limiter_stats"`
}

// Analyzer scores audit findings, with AI assistance when configured.
//
// Whether a live provider client exists is decided once at construction
// (provider + API key present) and never re-evaluated: an Analyzer built
// without a client operates permanently in fallback mode and makes no
// network calls.
type Analyzer struct {
	config  Config
	client  providers.Client
	limiter *ratelimit.Limiter
	logger  *slog.Logger

	mu             sync.Mutex
	totalCalls     int64
	totalErrors    int64
	totalLatencyMS float64
}

// New constructs an Analyzer from config. An unsupported provider name or
// a missing API key disables the AI path rather than failing: the audit
// must run even when AI analysis cannot.
func New(cfg Config, logger *slog.Logger) (*Analyzer, error) {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	limiter, err := ratelimit.New(cfg.RateLimit, logger)
	if err != nil {
		return nil, fmt.Errorf("invalid rate limit config: %w", err)
	}

	var client providers.Client
	switch {
	case cfg.APIKey == "" || cfg.Provider == "" || cfg.Provider == "none":
		logger.Info("AI analysis disabled", "reason", "no provider or API key configured")
	case cfg.Provider == "anthropic":
		client, err = providers.NewAnthropicClient(cfg.APIKey, cfg.BaseURL, cfg.RateLimit.RequestTimeout)
		if err != nil {
			return nil, err
		}
	case cfg.Provider == "openai":
		client, err = providers.NewOpenAIClient(cfg.APIKey, cfg.BaseURL, cfg.RateLimit.RequestTimeout)
		if err != nil {
			return nil, err
		}
	default:
		logger.Warn("AI analysis disabled", "reason", "unsupported provider", "provider", cfg.Provider)
	}

	return &Analyzer{
		config:  cfg,
		client:  client,
		limiter: limiter,
		logger:  logger,
	}, nil
}

// NewWithClient constructs an Analyzer around an injected provider client.
// Used by tests and by callers that manage their own client lifecycle.
func NewWithClient(cfg Config, client providers.Client, logger *slog.Logger) (*Analyzer, error) {
	a, err := New(cfg, logger)
	if err != nil {
		return nil, err
	}
	a.client = client
	return a, nil
}

// Enabled reports whether a live provider client is configured.
func (a *Analyzer) Enabled() bool {
	return a.client != nil
}

// Provider returns the configured provider name.
func (a *Analyzer) Provider() string { return a.config.Provider }

// Model returns the configured model name.
func (a *Analyzer) Model() string { return a.config.Model }

// AnalyzeFindings produces the risk assessment for the given findings.
//
// With no live client it returns the deterministic fallback immediately.
// Otherwise it prompts the provider through the rate-limited retry
// executor, parses and validates the response, and degrades to the
// fallback on any failure. This method never returns an error: degradation
// is the contract.
func (a *Analyzer) AnalyzeFindings(ctx context.Context, sys SystemInfo, findings []audit.Finding) audit.AIAnalysis {
	if a.client == nil {
		a.logger.Info("AI analysis disabled, using fallback scoring")
		return FallbackAnalysis(findings)
	}

	prompt := buildAnalysisPrompt(sys, findings)
	req := &providers.CompletionRequest{
		Model:       a.config.Model,
		MaxTokens:   a.config.MaxTokens,
		Temperature: a.config.Temperature,
		Messages:    []providers.Message{{Role: "user", Content: prompt}},
	}

	start := time.Now()
	content, err := ratelimit.ExecuteWithRetry(ctx, a.limiter, a.config.Retry,
		func(ctx context.Context) (string, error) {
			return a.client.Complete(ctx, req)
		})
	if err != nil {
		a.recordError()
		a.logger.Error("AI analysis failed, using fallback", "error", err)
		return FallbackAnalysis(findings)
	}
	a.recordCall(time.Since(start))

	var analysis audit.AIAnalysis
	if err := json.Unmarshal([]byte(content), &analysis); err != nil {
		a.recordError()
		a.logger.Error("AI response is not valid JSON, using fallback", "error", err)
		return FallbackAnalysis(findings)
	}
	if err := ValidateAnalysis(&analysis); err != nil {
		a.recordError()
		a.logger.Error("AI response failed validation, using fallback", "error", err)
		return FallbackAnalysis(findings)
	}
	return analysis
}

// Metrics returns the analyzer's lifetime call counters and the limiter's
// stats.
func (a *Analyzer) Metrics() Metrics {
	a.mu.Lock()
	defer a.mu.Unlock()

	m := Metrics{
		TotalAPICalls:  a.totalCalls,
		TotalAPIErrors: a.totalErrors,
		RateLimiter:    a.limiter.Stats(),
	}
	if a.totalCalls > 0 {
		m.AvgLatencyMS = a.totalLatencyMS / float64(a.totalCalls)
		m.ErrorRate = float64(a.totalErrors) / float64(a.totalCalls)
	}
	return m
}

func (a *Analyzer) recordCall(latency time.Duration) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalCalls++
	a.totalLatencyMS += float64(latency.Milliseconds())
}

func (a *Analyzer) recordError() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.totalErrors++
}
