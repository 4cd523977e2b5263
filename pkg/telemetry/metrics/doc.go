// Package metrics exposes Prometheus metrics for audit runs, collectors,
// and provider API usage.
//
// A Collector owns its own registry so tests and embedded use never
// collide with the default global registry. Mount Handler() at /metrics
// to expose the standard exposition format.
package metrics
