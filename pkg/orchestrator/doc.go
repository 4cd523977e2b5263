// Package orchestrator drives the audit lifecycle end to end.
//
// A run moves through fixed phases: initialization, collection,
// aggregation, analysis, remediation, and finalization. Collection
// failures are isolated per collector; analysis always produces a
// result; persistence and metrics are best-effort and never fail the
// run.
package orchestrator
