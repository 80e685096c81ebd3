package db

import (
	"github.com/shunichi-ikebuchi/lendbook/pkg/attachment"
	"github.com/shunichi-ikebuchi/lendbook/pkg/store"
)

// Journal records store and attachment events in the history database.
// It satisfies store.Journal and attachment.Journal.
type Journal struct {
	history *History
}

// NewJournal creates a Journal backed by history.
func NewJournal(history *History) *Journal {
	return &Journal{history: history}
}

// RecordSave implements store.Journal.
func (j *Journal) RecordSave(o store.SaveOutcome) error {
	record := SaveRecord{
		SavedAt:      o.SavedAt,
		Transactions: o.Transactions,
		FailedStep:   string(o.FailedStep),
		BackupBefore: o.BackupBefore,
		BackupAfter:  o.BackupAfter,
		Pruned:       o.Pruned,
	}
	if o.Err != nil {
		record.Error = o.Err.Error()
	}
	return j.history.RecordSave(record)
}

// RecordRecovery implements store.Journal.
func (j *Journal) RecordRecovery(o store.RecoveryOutcome) error {
	return j.history.RecordRecovery(RecoveryRecord{
		RecoveredAt:  o.RecoveredAt,
		BackupPath:   o.BackupPath,
		Transactions: o.Transactions,
	})
}

// RecordAttachment implements attachment.Journal.
func (j *Journal) RecordAttachment(s attachment.Stored) error {
	return j.history.RecordAttachment(AttachmentRecord{
		StoredAt:   s.StoredAt,
		SourcePath: s.SourcePath,
		StoredPath: s.StoredPath,
		SizeBytes:  s.Size,
	})
}

var (
	_ store.Journal      = (*Journal)(nil)
	_ attachment.Journal = (*Journal)(nil)
)
