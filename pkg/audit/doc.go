// Package audit defines the core data model shared by collectors, the
// analyzer, the orchestrator, storage, and reporters.
//
// The root aggregate is Result, produced once per audit run. Findings flow
// from collectors into the aggregated, severity-sorted finding list; the
// analyzer attaches an AIAnalysis; remediation scripts are keyed by the
// finding's check ID. A Result is mutated only by the orchestrator during a
// run and treated as immutable once the run returns.
package audit
