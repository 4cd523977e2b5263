// Package collectors gathers host hardware, OS, network, and security data
// for an audit run.
//
// Each collector implements the Collector interface; the Runner wraps
// execution with the guarantees the orchestrator depends on: unsupported
// platforms and missing privileges degrade to a skipped result, and a
// collector that fails or panics becomes a failed result instead of
// aborting the batch. Collectors are thin, best-effort probes.
package collectors
