package ratelimit

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"time"
)

// Limiter combines capacity-based rate limiting with a circuit breaker for
// calls to an AI provider.
//
// # Admission
//
// Acquire admits a request only if the circuit permits it, the in-flight
// count is below MaxConcurrent, and both the trailing-minute and
// trailing-hour windows have room. The windows are FIFO timestamp sequences
// pruned lazily on every Acquire; insertion order is time order.
//
// # Failure accounting
//
// Release routes the request outcome into the circuit breaker. Capacity
// rejections (concurrency, per-minute, per-hour) never touch the breaker's
// failure count: the breaker tracks provider health, not load.
//
// # Thread safety
//
// All state mutations happen under a single mutex, so an Acquire or Release
// is one atomic unit.
type Limiter struct {
	config Config
	logger *slog.Logger

	mu           sync.Mutex
	minuteWindow []time.Time
	hourWindow   []time.Time
	inFlight     int
	breaker      circuitBreaker

	totalRequests    int64
	totalFailures    int64
	totalRateLimited int64

	// now and sleep are swappable for deterministic tests.
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

// Stats is a point-in-time snapshot of the limiter's counters and state.
type Stats struct {
	CircuitState       CircuitState `json:"circuit_state"`
	ConcurrentRequests int          `json:"concurrent_requests"`
	RequestsLastMinute int          `json:"requests_last_minute"`
	RequestsLastHour   int          `json:"requests_last_hour"`
	TotalRequests      int64        `json:"total_requests"`
	TotalFailures      int64        `json:"total_failures"`
	TotalRateLimited   int64        `json:"total_rate_limited"`
	TotalCircuitOpens  int64        `json:"total_circuit_opens"`
	FailureRate        float64      `json:"failure_rate"`
}

// New creates a Limiter with the given configuration.
// A nil logger discards limiter log output.
func New(cfg Config, logger *slog.Logger) (*Limiter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Limiter{
		config:  cfg,
		logger:  logger,
		breaker: newCircuitBreaker(cfg),
		now:     time.Now,
		sleep:   sleepContext,
	}, nil
}

// Acquire attempts to reserve a request slot.
//
// It returns true and records the request in both windows if the circuit
// admits it and every capacity ceiling has room. It returns false without
// side effects on the windows otherwise. Every rejection increments the
// rate-limited counter; only Release outcomes feed the circuit breaker.
func (l *Limiter) Acquire() bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	if !l.breaker.allowLocked(now, l.logger) {
		l.totalRateLimited++
		l.logger.Warn("request blocked: circuit breaker is open")
		return false
	}

	l.pruneLocked(now)

	if l.inFlight >= l.config.MaxConcurrent {
		l.totalRateLimited++
		l.logger.Warn("request blocked: concurrent limit reached",
			"limit", l.config.MaxConcurrent)
		return false
	}
	if len(l.minuteWindow) >= l.config.RequestsPerMinute {
		l.totalRateLimited++
		l.logger.Warn("request blocked: per-minute limit reached",
			"limit", l.config.RequestsPerMinute)
		return false
	}
	if len(l.hourWindow) >= l.config.RequestsPerHour {
		l.totalRateLimited++
		l.logger.Warn("request blocked: per-hour limit reached",
			"limit", l.config.RequestsPerHour)
		return false
	}

	l.minuteWindow = append(l.minuteWindow, now)
	l.hourWindow = append(l.hourWindow, now)
	l.inFlight++
	l.totalRequests++
	return true
}

// Release returns a slot acquired with Acquire and records the request
// outcome against the circuit breaker.
//
// The in-flight count is floored at zero: a Release without a matching
// Acquire is a no-op and does not reach the breaker.
func (l *Limiter) Release(success bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.inFlight == 0 {
		return
	}
	l.inFlight--

	if success {
		l.breaker.recordSuccessLocked(l.logger)
		return
	}
	l.totalFailures++
	l.breaker.recordFailureLocked(l.now(), l.logger)
}

// State returns the current circuit breaker state.
func (l *Limiter) State() CircuitState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.breaker.state
}

// Stats returns a snapshot of the limiter's state and counters.
// The windows are pruned first so the window sizes reflect the trailing
// minute and hour as of the call.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.pruneLocked(l.now())

	s := Stats{
		CircuitState:       l.breaker.state,
		ConcurrentRequests: l.inFlight,
		RequestsLastMinute: len(l.minuteWindow),
		RequestsLastHour:   len(l.hourWindow),
		TotalRequests:      l.totalRequests,
		TotalFailures:      l.totalFailures,
		TotalRateLimited:   l.totalRateLimited,
		TotalCircuitOpens:  l.breaker.totalOpens,
	}
	if s.TotalRequests > 0 {
		s.FailureRate = float64(s.TotalFailures) / float64(s.TotalRequests)
	}
	return s
}

// pruneLocked drops window entries older than their window duration.
// Entries are appended in time order, so pruning pops from the front.
func (l *Limiter) pruneLocked(now time.Time) {
	minuteCutoff := now.Add(-time.Minute)
	hourCutoff := now.Add(-time.Hour)

	i := 0
	for i < len(l.minuteWindow) && l.minuteWindow[i].Before(minuteCutoff) {
		i++
	}
	l.minuteWindow = l.minuteWindow[i:]

	i = 0
	for i < len(l.hourWindow) && l.hourWindow[i].Before(hourCutoff) {
		i++
	}
	l.hourWindow = l.hourWindow[i:]
}

// sleepContext sleeps for d or until the context is cancelled.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
