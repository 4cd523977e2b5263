package ratelimit

import (
	"fmt"
	"time"
)

// Config contains the capacity ceilings and circuit breaker thresholds for
// a Limiter. All values must be positive; use DefaultConfig for sane
// defaults. The config is immutable once the Limiter is constructed.
type Config struct {
	// RequestsPerMinute is the ceiling on requests in any trailing minute.
	RequestsPerMinute int `yaml:"requests_per_minute"`

	// RequestsPerHour is the ceiling on requests in any trailing hour.
	RequestsPerHour int `yaml:"requests_per_hour"`

	// MaxConcurrent is the ceiling on simultaneous in-flight requests.
	MaxConcurrent int `yaml:"max_concurrent"`

	// FailureThreshold is the number of consecutive failures that trips
	// the circuit breaker from closed to open.
	FailureThreshold int `yaml:"failure_threshold"`

	// SuccessThreshold is the number of consecutive successes required to
	// close the circuit again from half-open.
	SuccessThreshold int `yaml:"success_threshold"`

	// OpenTimeout is how long the circuit stays open before a half-open
	// probe is permitted. This is a data timeout, not a cancellation
	// mechanism.
	OpenTimeout time.Duration `yaml:"open_timeout"`

	// RequestTimeout is the deadline applied to each individual operation
	// run through ExecuteWithRetry.
	RequestTimeout time.Duration `yaml:"request_timeout"`
}

// DefaultConfig returns the default limiter configuration.
func DefaultConfig() Config {
	return Config{
		RequestsPerMinute: 60,
		RequestsPerHour:   1000,
		MaxConcurrent:     5,
		FailureThreshold:  5,
		SuccessThreshold:  2,
		OpenTimeout:       60 * time.Second,
		RequestTimeout:    30 * time.Second,
	}
}

// Validate checks that every config value is positive.
func (c Config) Validate() error {
	if c.RequestsPerMinute <= 0 {
		return fmt.Errorf("requests_per_minute must be positive, got %d", c.RequestsPerMinute)
	}
	if c.RequestsPerHour <= 0 {
		return fmt.Errorf("requests_per_hour must be positive, got %d", c.RequestsPerHour)
	}
	if c.MaxConcurrent <= 0 {
		return fmt.Errorf("max_concurrent must be positive, got %d", c.MaxConcurrent)
	}
	if c.FailureThreshold <= 0 {
		return fmt.Errorf("failure_threshold must be positive, got %d", c.FailureThreshold)
	}
	if c.SuccessThreshold <= 0 {
		return fmt.Errorf("success_threshold must be positive, got %d", c.SuccessThreshold)
	}
	if c.OpenTimeout <= 0 {
		return fmt.Errorf("open_timeout must be positive, got %v", c.OpenTimeout)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %v", c.RequestTimeout)
	}
	return nil
}
