package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"auditum-hq/callisto/pkg/audit"
)

// ErrNotFound is returned when no stored run matches the requested ID.
var ErrNotFound = errors.New("audit run not found")

// RunSummary is the lightweight history view of a stored audit run.
type RunSummary struct {
	AuditID         string    `json:"audit_id"`
	Timestamp       time.Time `json:"timestamp"`
	Hostname        string    `json:"hostname"`
	Platform        string    `json:"platform"`
	RiskScore       int       `json:"risk_score"`
	TotalFindings   int       `json:"total_findings"`
	DurationSeconds float64   `json:"duration_seconds"`
	ResultsHash     string    `json:"results_hash"`
}

// Store persists and retrieves audit results.
type Store interface {
	// SaveResult persists a completed audit run.
	SaveResult(ctx context.Context, result *audit.Result) error

	// GetResult loads a full result by audit ID. Returns ErrNotFound if
	// the ID is unknown.
	GetResult(ctx context.Context, auditID string) (*audit.Result, error)

	// ListRuns returns run summaries, newest first, at most limit entries.
	ListRuns(ctx context.Context, limit int) ([]RunSummary, error)

	// Close releases underlying resources.
	Close() error
}

// StorageError wraps a failed storage operation with backend context.
type StorageError struct {
	Backend string
	Op      string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s: %s: %v", e.Backend, e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func newStorageError(backend, op string, err error) *StorageError {
	return &StorageError{Backend: backend, Op: op, Err: err}
}

// hashResult computes the SHA-256 hash of the canonical JSON encoding of a
// result, used to detect tampering in stored history.
func hashResult(result *audit.Result) (string, []byte, error) {
	data, err := json.Marshal(result)
	if err != nil {
		return "", nil, fmt.Errorf("marshal result: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), data, nil
}
