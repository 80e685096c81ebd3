package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestHistory(t *testing.T) *History {
	t.Helper()
	conn, err := Open(filepath.Join(t.TempDir(), "state", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return NewHistory(conn)
}

func TestRecordSave(t *testing.T) {
	h := openTestHistory(t)
	savedAt := time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)

	require.NoError(t, h.RecordSave(SaveRecord{
		SavedAt:      savedAt,
		Transactions: 3,
		BackupAfter:  "backups/transactions_backup_20240115_103000.000000000.json",
	}))
	require.NoError(t, h.RecordSave(SaveRecord{
		SavedAt:      savedAt.Add(time.Minute),
		Transactions: 4,
		FailedStep:   "write-primary",
		Error:        "disk full",
	}))

	saves, err := h.RecentSaves(10)
	require.NoError(t, err)
	require.Len(t, saves, 2)
	assert.Equal(t, 4, saves[0].Transactions)
	assert.False(t, saves[0].Succeeded())
	assert.True(t, saves[1].Succeeded())
	assert.True(t, savedAt.Equal(saves[1].SavedAt))

	stats, err := h.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 2, stats.TotalSaves)
	assert.Equal(t, 1, stats.FailedSaves)
	require.True(t, stats.LastSave.Valid)
	assert.Equal(t, savedAt.Format(time.RFC3339), stats.LastSave.String)
}

func TestRecordRecoveryAndAttachment(t *testing.T) {
	h := openTestHistory(t)
	now := time.Now()

	require.NoError(t, h.RecordRecovery(RecoveryRecord{RecoveredAt: now, BackupPath: "b.json", Transactions: 2}))
	require.NoError(t, h.RecordAttachment(AttachmentRecord{
		StoredAt:   now,
		SourcePath: "/tmp/photo.png",
		StoredPath: "attachments/20240115_103000_photo.png.png",
		SizeBytes:  42,
	}))

	recorded, err := h.IsAttachmentRecorded("attachments/20240115_103000_photo.png.png")
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = h.IsAttachmentRecorded("attachments/other.png")
	require.NoError(t, err)
	assert.False(t, recorded)

	stats, err := h.GetStats()
	require.NoError(t, err)
	assert.Equal(t, 1, stats.TotalRecoveries)
	assert.Equal(t, 1, stats.TotalAttachments)
	assert.False(t, stats.LastSave.Valid)
}

func TestMetadata(t *testing.T) {
	h := openTestHistory(t)

	value, err := h.GetMetadata("missing")
	require.NoError(t, err)
	assert.Empty(t, value)

	require.NoError(t, h.SetMetadata("owner", "me"))
	require.NoError(t, h.SetMetadata("owner", "you"))

	value, err = h.GetMetadata("owner")
	require.NoError(t, err)
	assert.Equal(t, "you", value)
}
