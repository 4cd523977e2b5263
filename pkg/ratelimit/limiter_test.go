package ratelimit

import (
	"context"
	"testing"
	"time"
)

// testClock is a manually advanced clock for deterministic window and
// circuit timeout tests.
type testClock struct {
	current time.Time
}

func newTestClock() *testClock {
	return &testClock{current: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	return c.current
}

func (c *testClock) Advance(d time.Duration) {
	c.current = c.current.Add(d)
}

// newTestLimiter builds a limiter on a fake clock with instant sleeps.
func newTestLimiter(t *testing.T, cfg Config) (*Limiter, *testClock) {
	t.Helper()

	l, err := New(cfg, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	clock := newTestClock()
	l.now = clock.Now
	l.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return l, clock
}

// ============================================================================
// Acquire / Release
// ============================================================================

func TestLimiter_AcquireRelease(t *testing.T) {
	l, _ := newTestLimiter(t, DefaultConfig())

	if !l.Acquire() {
		t.Fatal("expected first acquire to succeed")
	}

	stats := l.Stats()
	if stats.ConcurrentRequests != 1 {
		t.Errorf("expected 1 in-flight, got %d", stats.ConcurrentRequests)
	}
	if stats.RequestsLastMinute != 1 || stats.RequestsLastHour != 1 {
		t.Errorf("expected both windows to record the request, got minute=%d hour=%d",
			stats.RequestsLastMinute, stats.RequestsLastHour)
	}
	if stats.TotalRequests != 1 {
		t.Errorf("expected total_requests=1, got %d", stats.TotalRequests)
	}

	l.Release(true)
	if got := l.Stats().ConcurrentRequests; got != 0 {
		t.Errorf("expected 0 in-flight after release, got %d", got)
	}
}

func TestLimiter_ConcurrentCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrent = 2
	l, _ := newTestLimiter(t, cfg)

	if !l.Acquire() || !l.Acquire() {
		t.Fatal("expected acquires up to the concurrent limit to succeed")
	}
	if l.Acquire() {
		t.Error("expected acquire beyond the concurrent limit to fail")
	}

	stats := l.Stats()
	if stats.ConcurrentRequests != 2 {
		t.Errorf("in-flight count exceeded limit: %d", stats.ConcurrentRequests)
	}
	if stats.TotalRateLimited != 1 {
		t.Errorf("expected 1 rate-limited rejection, got %d", stats.TotalRateLimited)
	}

	// A released slot becomes available again.
	l.Release(true)
	if !l.Acquire() {
		t.Error("expected acquire to succeed after release")
	}
}

func TestLimiter_MinuteWindowCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestsPerMinute = 3
	cfg.MaxConcurrent = 10
	l, clock := newTestLimiter(t, cfg)

	for i := 0; i < 3; i++ {
		if !l.Acquire() {
			t.Fatalf("acquire %d should succeed", i)
		}
		l.Release(true)
	}
	if l.Acquire() {
		t.Error("expected acquire beyond the per-minute limit to fail")
	}

	// Entries older than a minute are purged lazily on the next acquire.
	clock.Advance(61 * time.Second)
	if !l.Acquire() {
		t.Error("expected acquire to succeed after the minute window expired")
	}
}

func TestLimiter_HourWindowCeiling(t *testing.T) {
	cfg := DefaultConfig()
	cfg.RequestsPerMinute = 100
	cfg.RequestsPerHour = 2
	cfg.MaxConcurrent = 10
	l, clock := newTestLimiter(t, cfg)

	for i := 0; i < 2; i++ {
		if !l.Acquire() {
			t.Fatalf("acquire %d should succeed", i)
		}
		l.Release(true)
	}
	if l.Acquire() {
		t.Error("expected acquire beyond the per-hour limit to fail")
	}

	// Advancing past the minute window is not enough for the hour ceiling.
	clock.Advance(2 * time.Minute)
	if l.Acquire() {
		t.Error("expected per-hour limit to still apply after two minutes")
	}

	clock.Advance(time.Hour)
	if !l.Acquire() {
		t.Error("expected acquire to succeed after the hour window expired")
	}
}

func TestLimiter_ReleaseWithoutAcquire(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 1
	l, _ := newTestLimiter(t, cfg)

	// Unmatched releases are no-ops: the in-flight count stays floored at
	// zero and the outcome never reaches the circuit breaker.
	l.Release(false)
	l.Release(false)

	stats := l.Stats()
	if stats.ConcurrentRequests != 0 {
		t.Errorf("expected in-flight floor at 0, got %d", stats.ConcurrentRequests)
	}
	if stats.CircuitState != StateClosed {
		t.Errorf("expected circuit to stay closed, got %s", stats.CircuitState)
	}
	if stats.TotalFailures != 0 {
		t.Errorf("expected no recorded failures, got %d", stats.TotalFailures)
	}
}

// ============================================================================
// Circuit breaker transitions
// ============================================================================

// tripBreaker drives the limiter through cfg.FailureThreshold consecutive
// failed requests.
func tripBreaker(t *testing.T, l *Limiter, failures int) {
	t.Helper()
	for i := 0; i < failures; i++ {
		if !l.Acquire() {
			t.Fatalf("acquire %d should succeed before the breaker trips", i)
		}
		l.Release(false)
	}
}

func TestCircuit_TripsAfterConsecutiveFailures(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 3
	l, _ := newTestLimiter(t, cfg)

	tripBreaker(t, l, 3)

	stats := l.Stats()
	if stats.CircuitState != StateOpen {
		t.Fatalf("expected open circuit after 3 failures, got %s", stats.CircuitState)
	}
	if stats.TotalCircuitOpens != 1 {
		t.Errorf("expected 1 circuit open, got %d", stats.TotalCircuitOpens)
	}
	if l.Acquire() {
		t.Error("expected acquire to fail while the circuit is open")
	}
}

func TestCircuit_SuccessResetsFailureStreak(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 3
	l, _ := newTestLimiter(t, cfg)

	// Two failures, then a success, then two more failures: the streak is
	// broken so the breaker must stay closed.
	tripBreaker(t, l, 2)
	if !l.Acquire() {
		t.Fatal("acquire should succeed")
	}
	l.Release(true)
	tripBreaker(t, l, 2)

	if got := l.State(); got != StateClosed {
		t.Errorf("expected closed circuit after broken failure streak, got %s", got)
	}
}

func TestCircuit_RecoversThroughHalfOpen(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 2
	cfg.SuccessThreshold = 2
	cfg.OpenTimeout = 30 * time.Second
	l, clock := newTestLimiter(t, cfg)

	tripBreaker(t, l, 2)
	if l.Acquire() {
		t.Fatal("expected open circuit to reject requests")
	}

	// Before the timeout the circuit stays open.
	clock.Advance(29 * time.Second)
	if l.Acquire() {
		t.Fatal("expected circuit to stay open before the timeout")
	}

	// After the timeout the next acquire transitions to half-open.
	clock.Advance(2 * time.Second)
	if !l.Acquire() {
		t.Fatal("expected half-open probe to be admitted")
	}
	if got := l.State(); got != StateHalfOpen {
		t.Fatalf("expected half-open state, got %s", got)
	}

	// One success is below the threshold.
	l.Release(true)
	if got := l.State(); got != StateHalfOpen {
		t.Fatalf("expected half-open after one success, got %s", got)
	}

	// The second success closes the circuit.
	if !l.Acquire() {
		t.Fatal("expected second probe to be admitted")
	}
	l.Release(true)
	if got := l.State(); got != StateClosed {
		t.Errorf("expected closed circuit after success threshold, got %s", got)
	}
}

func TestCircuit_HalfOpenFailureReopens(t *testing.T) {
	cfg := DefaultConfig()
	cfg.FailureThreshold = 2
	cfg.OpenTimeout = 30 * time.Second
	l, clock := newTestLimiter(t, cfg)

	tripBreaker(t, l, 2)
	clock.Advance(31 * time.Second)

	if !l.Acquire() {
		t.Fatal("expected half-open probe to be admitted")
	}
	l.Release(false)

	stats := l.Stats()
	if stats.CircuitState != StateOpen {
		t.Fatalf("expected failed probe to reopen the circuit, got %s", stats.CircuitState)
	}
	if stats.TotalCircuitOpens != 2 {
		t.Errorf("expected 2 circuit opens, got %d", stats.TotalCircuitOpens)
	}

	// The open timer restarts from the probe failure.
	clock.Advance(29 * time.Second)
	if l.Acquire() {
		t.Error("expected circuit to stay open on the restarted timer")
	}
	clock.Advance(2 * time.Second)
	if !l.Acquire() {
		t.Error("expected a new half-open probe after the restarted timeout")
	}
}

func TestCircuit_CapacityRejectionsDoNotTrip(t *testing.T) {
	cfg := DefaultConfig()
	cfg.MaxConcurrent = 1
	cfg.FailureThreshold = 2
	l, _ := newTestLimiter(t, cfg)

	if !l.Acquire() {
		t.Fatal("acquire should succeed")
	}

	// Capacity pressure is not a provider failure: any number of capacity
	// rejections leaves the breaker closed.
	for i := 0; i < 10; i++ {
		if l.Acquire() {
			t.Fatal("expected acquire beyond the concurrent limit to fail")
		}
	}

	stats := l.Stats()
	if stats.CircuitState != StateClosed {
		t.Errorf("expected closed circuit, got %s", stats.CircuitState)
	}
	if stats.TotalCircuitOpens != 0 {
		t.Errorf("expected 0 circuit opens, got %d", stats.TotalCircuitOpens)
	}
	if stats.TotalRateLimited != 10 {
		t.Errorf("expected 10 rate-limited rejections, got %d", stats.TotalRateLimited)
	}
}

// ============================================================================
// Config validation
// ============================================================================

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(c *Config) {}, false},
		{"zero requests per minute", func(c *Config) { c.RequestsPerMinute = 0 }, true},
		{"negative requests per hour", func(c *Config) { c.RequestsPerHour = -1 }, true},
		{"zero max concurrent", func(c *Config) { c.MaxConcurrent = 0 }, true},
		{"zero failure threshold", func(c *Config) { c.FailureThreshold = 0 }, true},
		{"zero success threshold", func(c *Config) { c.SuccessThreshold = 0 }, true},
		{"zero open timeout", func(c *Config) { c.OpenTimeout = 0 }, true},
		{"zero request timeout", func(c *Config) { c.RequestTimeout = 0 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
