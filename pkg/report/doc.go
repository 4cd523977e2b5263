// Package report renders audit results to files.
//
// Two formats are supported: JSON (the canonical machine-readable result)
// and a standalone HTML page for humans. Reports are written under a
// configurable output directory with the audit ID in the file name.
package report
