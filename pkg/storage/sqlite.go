package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"auditum-hq/callisto/pkg/audit"
)

// SQLiteConfig contains configuration for the SQLite history backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 4
	MaxOpenConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig(path string) *SQLiteConfig {
	return &SQLiteConfig{
		Path:         path,
		MaxOpenConns: 4,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements Store on a local SQLite database.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) the history database at config.Path
// and ensures the schema is current.
func NewSQLiteStore(config *SQLiteConfig, logger *slog.Logger) (*SQLiteStore, error) {
	if config == nil {
		return nil, newStorageError("sqlite", "open", fmt.Errorf("nil config"))
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	db, err := sql.Open("sqlite3", config.Path)
	if err != nil {
		return nil, newStorageError("sqlite", "open", err)
	}
	if config.MaxOpenConns > 0 {
		db.SetMaxOpenConns(config.MaxOpenConns)
	}

	s := &SQLiteStore{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("sqlite history store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode)
	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return newStorageError("sqlite", "enable_wal", err)
		}
	}
	busy := s.config.BusyTimeout
	if busy <= 0 {
		busy = 5 * time.Second
	}
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busy.Milliseconds())); err != nil {
		return newStorageError("sqlite", "set_busy_timeout", err)
	}
	if _, err := s.db.Exec("PRAGMA foreign_keys=ON;"); err != nil {
		return newStorageError("sqlite", "enable_foreign_keys", err)
	}

	if _, err := s.db.Exec(schema); err != nil {
		return newStorageError("sqlite", "create_schema", err)
	}
	if _, err := s.db.Exec(insertSchemaVersion, SchemaVersion); err != nil {
		return newStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	if err := s.db.QueryRow(getSchemaVersion).Scan(&version); err != nil {
		return newStorageError("sqlite", "get_schema_version", err)
	}
	if version != SchemaVersion {
		return newStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}
	return nil
}

// SaveResult stores the full result JSON plus denormalized rows for
// findings and remediation scripts, in one transaction.
func (s *SQLiteStore) SaveResult(ctx context.Context, result *audit.Result) error {
	hash, data, err := hashResult(result)
	if err != nil {
		return newStorageError("sqlite", "hash", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return newStorageError("sqlite", "begin", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO audit_runs (
			audit_id, timestamp, hostname, platform,
			risk_score, total_findings, duration_seconds,
			results_hash, result_json
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		result.AuditID,
		result.Timestamp.UTC().Format(time.RFC3339Nano),
		result.Hostname,
		result.Platform,
		result.Analysis.RiskScore,
		len(result.Findings),
		result.DurationSeconds,
		hash,
		string(data),
	)
	if err != nil {
		return newStorageError("sqlite", "insert_run", err)
	}

	findingStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO audit_findings (
			audit_id, check_id, severity, description,
			current_value, expected_value, remediation_hint, collector_name
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return newStorageError("sqlite", "prepare_finding", err)
	}
	defer findingStmt.Close()

	for _, f := range result.Findings {
		if _, err := findingStmt.ExecContext(ctx,
			result.AuditID, f.CheckID, string(f.Severity), f.Description,
			f.CurrentValue, f.ExpectedValue, f.RemediationHint, f.CollectorName,
		); err != nil {
			return newStorageError("sqlite", "insert_finding", err)
		}
	}

	scriptStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO remediation_scripts (audit_id, check_id, filename, content)
		VALUES (?, ?, ?, ?)`)
	if err != nil {
		return newStorageError("sqlite", "prepare_script", err)
	}
	defer scriptStmt.Close()

	for checkID, script := range result.Remediations {
		if _, err := scriptStmt.ExecContext(ctx,
			result.AuditID, checkID, script.Filename, script.Content,
		); err != nil {
			return newStorageError("sqlite", "insert_script", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return newStorageError("sqlite", "commit", err)
	}

	s.logger.Debug("audit run persisted",
		"audit_id", result.AuditID,
		"findings", len(result.Findings),
		"results_hash", hash)
	return nil
}

// GetResult loads the full result JSON for one run.
func (s *SQLiteStore) GetResult(ctx context.Context, auditID string) (*audit.Result, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT result_json FROM audit_runs WHERE audit_id = ?`, auditID).Scan(&raw)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, newStorageError("sqlite", "get_result", err)
	}

	var result audit.Result
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, newStorageError("sqlite", "decode_result", err)
	}
	return &result, nil
}

// ListRuns returns run summaries, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context, limit int) ([]RunSummary, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT audit_id, timestamp, hostname, platform,
		       risk_score, total_findings, duration_seconds, results_hash
		FROM audit_runs
		ORDER BY timestamp DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, newStorageError("sqlite", "list_runs", err)
	}
	defer rows.Close()

	summaries := []RunSummary{}
	for rows.Next() {
		var run RunSummary
		var ts string
		if err := rows.Scan(&run.AuditID, &ts, &run.Hostname, &run.Platform,
			&run.RiskScore, &run.TotalFindings, &run.DurationSeconds, &run.ResultsHash); err != nil {
			return nil, newStorageError("sqlite", "scan_run", err)
		}
		if run.Timestamp, err = time.Parse(time.RFC3339Nano, ts); err != nil {
			return nil, newStorageError("sqlite", "parse_timestamp", err)
		}
		summaries = append(summaries, run)
	}
	if err := rows.Err(); err != nil {
		return nil, newStorageError("sqlite", "list_runs", err)
	}
	return summaries, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
