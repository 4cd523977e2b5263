// Package ratelimit gates every outbound AI provider call behind a
// combined rate limiter and circuit breaker.
//
// The Limiter enforces three capacity ceilings (concurrent, per-minute,
// per-hour) using FIFO timestamp windows, and trips a circuit breaker when
// the provider fails repeatedly so callers fail fast instead of piling up
// slow, doomed retries. Capacity rejections are deliberately kept out of the
// breaker's failure accounting: capacity pressure is not a provider failure.
//
// ExecuteWithRetry composes the two into the retry loop used by the
// analyzer: acquire a slot, run the operation under a deadline, release with
// the outcome, and back off exponentially between attempts.
//
// A Limiter instance is owned by exactly one analyzer and must not be shared.
package ratelimit
