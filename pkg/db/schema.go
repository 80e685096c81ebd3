// Package db provides the SQLite persistence journal: a history of saves,
// recoveries and stored attachments kept beside the ledger file.
package db

// Schema defines the SQL statements to create database tables.
const Schema = `
-- Save history table
-- One row per ledger save attempt, successful or not
CREATE TABLE IF NOT EXISTS save_history (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    saved_at TIMESTAMP NOT NULL,
    transactions INTEGER NOT NULL,     -- ledger size at save time
    failed_step TEXT NOT NULL DEFAULT '', -- empty on success
    error TEXT NOT NULL DEFAULT '',
    backup_before TEXT NOT NULL DEFAULT '',
    backup_after TEXT NOT NULL DEFAULT '',
    pruned INTEGER NOT NULL DEFAULT 0  -- backups removed by retention
);

CREATE INDEX IF NOT EXISTS idx_save_history_saved_at
    ON save_history(saved_at);

-- Recovery events table
-- Records every load that fell back to a backup
CREATE TABLE IF NOT EXISTS recovery_events (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    recovered_at TIMESTAMP NOT NULL,
    backup_path TEXT NOT NULL,
    transactions INTEGER NOT NULL
);

-- Attachments table
-- Tracks files copied into attachment storage
CREATE TABLE IF NOT EXISTS attachments (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    stored_at TIMESTAMP NOT NULL,
    source_path TEXT NOT NULL,
    stored_path TEXT NOT NULL,
    size_bytes INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_attachments_stored_path
    ON attachments(stored_path);

-- Metadata table
-- Stores key-value metadata about the data directory
CREATE TABLE IF NOT EXISTS metadata (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

// InitializeSchema initializes the database schema.
// It creates all tables if they don't exist.
func InitializeSchema(conn *Connection) error {
	if _, err := conn.db.Exec(Schema); err != nil {
		return err
	}
	return nil
}
