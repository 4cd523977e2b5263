// Package analyzer produces the risk assessment for an audit run.
//
// The Analyzer asks a remote AI provider to score the aggregated findings
// when one is configured and healthy, and otherwise falls back to a
// deterministic severity-weighted score. The AI path never surfaces an
// error past AnalyzeFindings: provider failures, rate limiting, malformed
// responses, and validation failures all degrade to the fallback.
//
// Every provider call goes through a single ratelimit.Limiter owned by the
// Analyzer; the limiter's circuit breaker is what turns a flapping provider
// into fast, cheap fallbacks instead of a pile of slow retries.
package analyzer
