package storage

// SchemaVersion is the current database schema version. Bump on any
// schema change and add a migration.
const SchemaVersion = 1

// schema creates the audit history tables. audit_runs carries the full
// result JSON plus denormalized summary columns for cheap history listing;
// audit_findings and remediation_scripts are denormalized for ad-hoc SQL.
const schema = `
CREATE TABLE IF NOT EXISTS schema_version (
	version INTEGER PRIMARY KEY
);

CREATE TABLE IF NOT EXISTS audit_runs (
	audit_id         TEXT PRIMARY KEY,
	timestamp        TEXT NOT NULL,
	hostname         TEXT NOT NULL,
	platform         TEXT NOT NULL,
	risk_score       INTEGER NOT NULL,
	total_findings   INTEGER NOT NULL,
	duration_seconds REAL NOT NULL,
	results_hash     TEXT NOT NULL,
	result_json      TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_audit_runs_timestamp ON audit_runs(timestamp DESC);

CREATE TABLE IF NOT EXISTS audit_findings (
	id               INTEGER PRIMARY KEY AUTOINCREMENT,
	audit_id         TEXT NOT NULL REFERENCES audit_runs(audit_id) ON DELETE CASCADE,
	check_id         TEXT NOT NULL,
	severity         TEXT NOT NULL,
	description      TEXT NOT NULL,
	current_value    TEXT,
	expected_value   TEXT,
	remediation_hint TEXT,
	collector_name   TEXT
);

CREATE INDEX IF NOT EXISTS idx_audit_findings_audit ON audit_findings(audit_id);
CREATE INDEX IF NOT EXISTS idx_audit_findings_severity ON audit_findings(severity);

CREATE TABLE IF NOT EXISTS remediation_scripts (
	id       INTEGER PRIMARY KEY AUTOINCREMENT,
	audit_id TEXT NOT NULL REFERENCES audit_runs(audit_id) ON DELETE CASCADE,
	check_id TEXT NOT NULL,
	filename TEXT NOT NULL,
	content  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_remediation_scripts_audit ON remediation_scripts(audit_id);
`

const insertSchemaVersion = `INSERT OR IGNORE INTO schema_version (version) VALUES (?)`

const getSchemaVersion = `SELECT version FROM schema_version ORDER BY version DESC LIMIT 1`
