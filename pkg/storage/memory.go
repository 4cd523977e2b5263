package storage

import (
	"context"
	"encoding/json"
	"sort"
	"sync"

	"auditum-hq/callisto/pkg/audit"
)

// MemoryStore is an in-memory Store for tests and ephemeral runs.
type MemoryStore struct {
	mu   sync.RWMutex
	runs map[string]memoryRun
}

type memoryRun struct {
	summary RunSummary
	raw     []byte
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{runs: make(map[string]memoryRun)}
}

// SaveResult stores a deep copy of the result.
func (m *MemoryStore) SaveResult(ctx context.Context, result *audit.Result) error {
	hash, data, err := hashResult(result)
	if err != nil {
		return newStorageError("memory", "hash", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs[result.AuditID] = memoryRun{
		summary: RunSummary{
			AuditID:         result.AuditID,
			Timestamp:       result.Timestamp,
			Hostname:        result.Hostname,
			Platform:        result.Platform,
			RiskScore:       result.Analysis.RiskScore,
			TotalFindings:   len(result.Findings),
			DurationSeconds: result.DurationSeconds,
			ResultsHash:     hash,
		},
		raw: data,
	}
	return nil
}

// GetResult loads a stored result by audit ID.
func (m *MemoryStore) GetResult(ctx context.Context, auditID string) (*audit.Result, error) {
	m.mu.RLock()
	run, ok := m.runs[auditID]
	m.mu.RUnlock()
	if !ok {
		return nil, ErrNotFound
	}

	var result audit.Result
	if err := json.Unmarshal(run.raw, &result); err != nil {
		return nil, newStorageError("memory", "decode_result", err)
	}
	return &result, nil
}

// ListRuns returns stored summaries, newest first.
func (m *MemoryStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}

	m.mu.RLock()
	summaries := make([]RunSummary, 0, len(m.runs))
	for _, run := range m.runs {
		summaries = append(summaries, run.summary)
	}
	m.mu.RUnlock()

	sort.Slice(summaries, func(i, j int) bool {
		return summaries[i].Timestamp.After(summaries[j].Timestamp)
	})
	if len(summaries) > limit {
		summaries = summaries[:limit]
	}
	return summaries, nil
}

// Close is a no-op for the in-memory store.
func (m *MemoryStore) Close() error { return nil }
