// Package storage persists audit history.
//
// The Store interface has two implementations: SQLiteStore for durable
// history on disk and MemoryStore for tests and ephemeral runs. Audits
// never fail because persistence failed; the orchestrator treats storage
// errors as warnings.
package storage
