package db

// SchemaSQL is the complete schema for fresh aide installs. This is the
// single source of truth: repository tests create their tables via
// GetSchemaSQL() instead of hardcoding CREATE TABLE statements, so any
// drift between repositories and schema fails immediately.
const SchemaSQL = `
-- Preferences (single-slot key/value state: last preview, auto-apply,
-- scoring-weight overrides)
CREATE TABLE IF NOT EXISTS preferences (
	key TEXT PRIMARY KEY,
	value TEXT NOT NULL,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

-- Offline queue (pending external-write intents, FIFO by seq)
CREATE TABLE IF NOT EXISTS queue (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	id TEXT NOT NULL UNIQUE,
	target TEXT NOT NULL,
	operation TEXT NOT NULL CHECK(operation IN ('create', 'update')),
	target_id TEXT,
	payload TEXT NOT NULL,
	enqueued_at DATETIME NOT NULL,
	retry_count INTEGER NOT NULL DEFAULT 0,
	state TEXT NOT NULL CHECK(state IN ('pending', 'failed')) DEFAULT 'pending',
	fail_reason TEXT
);

-- Audit trail (every apply attempt, appended before the network call)
CREATE TABLE IF NOT EXISTS audit (
	id TEXT PRIMARY KEY,
	invocation_id TEXT NOT NULL,
	action TEXT NOT NULL,
	target_id TEXT,
	payload TEXT NOT NULL,
	outcome TEXT NOT NULL CHECK(outcome IN ('pending', 'applied', 'queued', 'failed')),
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// GetSchemaSQL returns the schema for tests and fresh installs.
func GetSchemaSQL() string {
	return SchemaSQL
}

// InitSchema creates all tables if they do not exist.
func InitSchema() error {
	database, err := GetDB()
	if err != nil {
		return err
	}
	if _, err := database.Exec(SchemaSQL); err != nil {
		return err
	}
	return nil
}
