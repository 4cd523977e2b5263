package ratelimit

import (
	"log/slog"
	"time"
)

// CircuitState is the circuit breaker's admission state.
type CircuitState string

const (
	// StateClosed is normal operation: requests are admitted and
	// consecutive failures are counted.
	StateClosed CircuitState = "closed"

	// StateOpen rejects all requests until the open timeout elapses.
	StateOpen CircuitState = "open"

	// StateHalfOpen admits capacity-gated probe requests to test whether
	// the provider has recovered.
	StateHalfOpen CircuitState = "half_open"
)

// circuitBreaker is the Limiter's failure-tracking state machine.
//
// Transitions:
//
//	closed    --failureThreshold consecutive failures--> open
//	open      --openTimeout elapsed, next admission-----> half_open
//	half_open --any failure-----------------------------> open (timer reset)
//	half_open --successThreshold successes--------------> closed
//
// All methods require the owning Limiter's mutex to be held.
type circuitBreaker struct {
	failureThreshold int
	successThreshold int
	openTimeout      time.Duration

	state        CircuitState
	failureCount int
	successCount int
	openedAt     time.Time

	totalOpens int64
}

func newCircuitBreaker(cfg Config) circuitBreaker {
	return circuitBreaker{
		failureThreshold: cfg.FailureThreshold,
		successThreshold: cfg.SuccessThreshold,
		openTimeout:      cfg.OpenTimeout,
		state:            StateClosed,
	}
}

// allowLocked reports whether the breaker admits a request at time now.
// An open breaker whose timeout has elapsed transitions to half-open and
// admits the request as a probe.
func (cb *circuitBreaker) allowLocked(now time.Time, logger *slog.Logger) bool {
	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if now.Sub(cb.openedAt) >= cb.openTimeout {
			cb.state = StateHalfOpen
			cb.successCount = 0
			logger.Info("circuit breaker state change",
				"from", StateOpen, "to", StateHalfOpen)
			return true
		}
		return false
	default: // StateHalfOpen
		return true
	}
}

// recordSuccessLocked updates the breaker after a successful request.
func (cb *circuitBreaker) recordSuccessLocked(logger *slog.Logger) {
	if cb.state == StateHalfOpen {
		cb.successCount++
		if cb.successCount >= cb.successThreshold {
			cb.state = StateClosed
			cb.failureCount = 0
			cb.successCount = 0
			logger.Info("circuit breaker state change",
				"from", StateHalfOpen, "to", StateClosed)
		}
		return
	}

	// Any success in closed state resets the consecutive-failure streak.
	cb.failureCount = 0
}

// recordFailureLocked updates the breaker after a failed request, opening
// the circuit when the failure threshold is reached or a half-open probe
// fails.
func (cb *circuitBreaker) recordFailureLocked(now time.Time, logger *slog.Logger) {
	if cb.state == StateHalfOpen {
		cb.state = StateOpen
		cb.openedAt = now
		cb.totalOpens++
		logger.Warn("circuit breaker state change",
			"from", StateHalfOpen, "to", StateOpen)
		return
	}

	if cb.state == StateClosed {
		cb.failureCount++
		if cb.failureCount >= cb.failureThreshold {
			cb.state = StateOpen
			cb.openedAt = now
			cb.totalOpens++
			logger.Error("circuit breaker state change",
				"from", StateClosed, "to", StateOpen,
				"consecutive_failures", cb.failureCount)
		}
	}
}
