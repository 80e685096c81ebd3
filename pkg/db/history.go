package db

import (
	"database/sql"
	"fmt"
	"time"
)

// MetadataLastSave is the metadata key holding the time of the last successful save.
const MetadataLastSave = "last_successful_save"

// SaveRecord represents a save history record.
type SaveRecord struct {
	ID           int64
	SavedAt      time.Time
	Transactions int
	FailedStep   string
	Error        string
	BackupBefore string
	BackupAfter  string
	Pruned       int
}

// Succeeded reports whether the save completed every step.
func (r SaveRecord) Succeeded() bool {
	return r.FailedStep == "" && r.Error == ""
}

// RecoveryRecord represents a restore from a backup.
type RecoveryRecord struct {
	ID           int64
	RecoveredAt  time.Time
	BackupPath   string
	Transactions int
}

// AttachmentRecord represents a stored attachment.
type AttachmentRecord struct {
	ID         int64
	StoredAt   time.Time
	SourcePath string
	StoredPath string
	SizeBytes  int64
}

// History manages persistence journal operations.
type History struct {
	conn *Connection
}

// NewHistory creates a new History instance.
func NewHistory(conn *Connection) *History {
	return &History{conn: conn}
}

// RecordSave records a save attempt. A successful save also updates the
// last-save metadata in the same database transaction.
func (h *History) RecordSave(record SaveRecord) error {
	return h.conn.Transaction(func(tx *sql.Tx) error {
		_, err := tx.Exec(`
			INSERT INTO save_history (saved_at, transactions, failed_step, error, backup_before, backup_after, pruned)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`,
			record.SavedAt,
			record.Transactions,
			record.FailedStep,
			record.Error,
			record.BackupBefore,
			record.BackupAfter,
			record.Pruned,
		)
		if err != nil {
			return fmt.Errorf("failed to record save: %w", err)
		}

		if !record.Succeeded() {
			return nil
		}
		if err := setMetadata(tx, MetadataLastSave, record.SavedAt.Format(time.RFC3339)); err != nil {
			return err
		}
		return nil
	})
}

// RecentSaves returns up to limit save records, newest first.
func (h *History) RecentSaves(limit int) ([]SaveRecord, error) {
	rows, err := h.conn.db.Query(`
		SELECT id, saved_at, transactions, failed_step, error, backup_before, backup_after, pruned
		FROM save_history
		ORDER BY id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get save history: %w", err)
	}
	defer rows.Close()

	var records []SaveRecord
	for rows.Next() {
		var record SaveRecord
		if err := rows.Scan(
			&record.ID,
			&record.SavedAt,
			&record.Transactions,
			&record.FailedStep,
			&record.Error,
			&record.BackupBefore,
			&record.BackupAfter,
			&record.Pruned,
		); err != nil {
			return nil, fmt.Errorf("failed to scan save record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}

// RecordRecovery records a restore from a backup.
func (h *History) RecordRecovery(record RecoveryRecord) error {
	_, err := h.conn.db.Exec(`
		INSERT INTO recovery_events (recovered_at, backup_path, transactions)
		VALUES (?, ?, ?)
	`, record.RecoveredAt, record.BackupPath, record.Transactions)
	if err != nil {
		return fmt.Errorf("failed to record recovery: %w", err)
	}
	return nil
}

// RecordAttachment records a stored attachment.
func (h *History) RecordAttachment(record AttachmentRecord) error {
	_, err := h.conn.db.Exec(`
		INSERT INTO attachments (stored_at, source_path, stored_path, size_bytes)
		VALUES (?, ?, ?, ?)
	`, record.StoredAt, record.SourcePath, record.StoredPath, record.SizeBytes)
	if err != nil {
		return fmt.Errorf("failed to record attachment: %w", err)
	}
	return nil
}

// IsAttachmentRecorded checks if a stored path has been recorded.
func (h *History) IsAttachmentRecorded(storedPath string) (bool, error) {
	var count int
	err := h.conn.db.QueryRow(`SELECT COUNT(*) FROM attachments WHERE stored_path = ?`, storedPath).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check attachment: %w", err)
	}
	return count > 0, nil
}

// Stats represents journal statistics.
type Stats struct {
	TotalSaves       int
	FailedSaves      int
	TotalRecoveries  int
	TotalAttachments int
	LastSave         sql.NullString
}

// GetStats retrieves journal statistics.
func (h *History) GetStats() (*Stats, error) {
	var stats Stats

	err := h.conn.db.QueryRow(`SELECT COUNT(*) FROM save_history`).Scan(&stats.TotalSaves)
	if err != nil {
		return nil, fmt.Errorf("failed to get save count: %w", err)
	}

	err = h.conn.db.QueryRow(`SELECT COUNT(*) FROM save_history WHERE failed_step != '' OR error != ''`).Scan(&stats.FailedSaves)
	if err != nil {
		return nil, fmt.Errorf("failed to get failed save count: %w", err)
	}

	err = h.conn.db.QueryRow(`SELECT COUNT(*) FROM recovery_events`).Scan(&stats.TotalRecoveries)
	if err != nil {
		return nil, fmt.Errorf("failed to get recovery count: %w", err)
	}

	err = h.conn.db.QueryRow(`SELECT COUNT(*) FROM attachments`).Scan(&stats.TotalAttachments)
	if err != nil {
		return nil, fmt.Errorf("failed to get attachment count: %w", err)
	}

	lastSave, err := h.GetMetadata(MetadataLastSave)
	if err != nil {
		return nil, err
	}
	stats.LastSave = sql.NullString{String: lastSave, Valid: lastSave != ""}

	return &stats, nil
}

// GetMetadata retrieves a metadata value. Missing keys yield an empty string.
func (h *History) GetMetadata(key string) (string, error) {
	var value string
	err := h.conn.db.QueryRow(`SELECT value FROM metadata WHERE key = ?`, key).Scan(&value)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get metadata: %w", err)
	}
	return value, nil
}

// SetMetadata sets a metadata value.
func (h *History) SetMetadata(key, value string) error {
	return h.conn.Transaction(func(tx *sql.Tx) error {
		return setMetadata(tx, key, value)
	})
}

func setMetadata(tx *sql.Tx, key, value string) error {
	_, err := tx.Exec(`
		INSERT INTO metadata (key, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = CURRENT_TIMESTAMP
	`, key, value)
	if err != nil {
		return fmt.Errorf("failed to set metadata: %w", err)
	}
	return nil
}
