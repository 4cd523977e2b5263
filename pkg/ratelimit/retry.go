package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned by ExecuteWithRetry when every attempt
// was consumed without an operation error to report (all attempts were
// rejected by the limiter).
var ErrRetriesExhausted = errors.New("request failed after all retries")

// Operation is the unit of work guarded by the limiter. The operation must
// honor the context it is given; ExecuteWithRetry additionally abandons
// operations that outlive the request timeout.
type Operation[T any] func(ctx context.Context) (T, error)

// RetryOptions controls the retry loop of ExecuteWithRetry.
type RetryOptions struct {
	// MaxRetries is the number of retries after the initial attempt, so
	// the loop makes at most MaxRetries+1 attempts.
	MaxRetries int `yaml:"max_retries"`

	// BackoffFactor multiplies the wait time after every backed-off
	// attempt. The initial wait is one second.
	BackoffFactor float64 `yaml:"backoff_factor"`
}

// DefaultRetryOptions returns the retry settings used by the analyzer.
func DefaultRetryOptions() RetryOptions {
	return RetryOptions{MaxRetries: 3, BackoffFactor: 1.5}
}

// initialBackoff is the wait before the first retry. It is per-call state,
// never shared between ExecuteWithRetry invocations.
const initialBackoff = time.Second

// ExecuteWithRetry runs op through the limiter with timeout enforcement and
// exponential backoff.
//
// Each attempt first calls Acquire. A rejected acquire (capacity or open
// circuit) backs off and consumes an attempt without reaching the provider.
// An admitted attempt runs op under the limiter's RequestTimeout deadline
// and releases the slot with the outcome; the first success wins. When all
// attempts are exhausted the last operation error is returned, or
// ErrRetriesExhausted if no attempt ever ran.
//
// Backoff sleeps honor ctx: cancellation aborts the loop with ctx's error.
func ExecuteWithRetry[T any](ctx context.Context, l *Limiter, opts RetryOptions, op Operation[T]) (T, error) {
	var zero T
	var lastErr error
	wait := initialBackoff

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if !l.Acquire() {
			if err := l.sleep(ctx, wait); err != nil {
				return zero, err
			}
			wait = time.Duration(float64(wait) * opts.BackoffFactor)
			continue
		}

		result, err := runWithTimeout(ctx, l.config.RequestTimeout, op)
		if err == nil {
			l.Release(true)
			return result, nil
		}

		lastErr = err
		l.Release(false)
		l.logger.Warn("request failed",
			"attempt", attempt+1,
			"max_attempts", opts.MaxRetries+1,
			"error", err)

		if attempt < opts.MaxRetries {
			if serr := l.sleep(ctx, wait); serr != nil {
				return zero, serr
			}
			wait = time.Duration(float64(wait) * opts.BackoffFactor)
		}
	}

	if lastErr == nil {
		lastErr = ErrRetriesExhausted
	}
	return zero, lastErr
}

// runWithTimeout runs op under a deadline. The operation runs in its own
// goroutine so a deadline overrun surfaces immediately even if op ignores
// its context; the abandoned goroutine finishes in the background.
func runWithTimeout[T any](ctx context.Context, timeout time.Duration, op Operation[T]) (T, error) {
	opCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type outcome struct {
		result T
		err    error
	}
	done := make(chan outcome, 1)

	go func() {
		result, err := op(opCtx)
		done <- outcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-opCtx.Done():
		var zero T
		return zero, fmt.Errorf("request timed out after %v: %w", timeout, opCtx.Err())
	}
}
