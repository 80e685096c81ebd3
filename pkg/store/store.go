// Package store persists the ledger to a primary JSON file with timestamped
// backup rotation and recovery from backups.
package store

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
	"github.com/shunichi-ikebuchi/lendbook/pkg/pathutil"
)

// Step names the stage of a save that failed.
type Step string

const (
	StepPrepare      Step = "prepare"
	StepBackupBefore Step = "backup-before"
	StepEncode       Step = "encode"
	StepWritePrimary Step = "write-primary"
	StepBackupAfter  Step = "backup-after"
	StepPrune        Step = "prune"
)

// SaveError reports which step of a save failed. The in-memory ledger is
// untouched by a failed save.
type SaveError struct {
	Step Step
	Path string
	Err  error
}

func (e *SaveError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("save ledger: %s %s: %v", e.Step, e.Path, e.Err)
	}
	return fmt.Sprintf("save ledger: %s: %v", e.Step, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// SaveOutcome describes a completed or failed save for the journal.
type SaveOutcome struct {
	SavedAt      time.Time
	Transactions int
	BackupBefore string
	BackupAfter  string
	Pruned       int
	// FailedStep is empty for a successful save.
	FailedStep Step
	Err        error
}

// RecoveryOutcome describes a ledger restored from a backup.
type RecoveryOutcome struct {
	RecoveredAt  time.Time
	BackupPath   string
	Transactions int
}

// Journal receives persistence events. Journal errors are logged and never
// change the result of a save or load.
type Journal interface {
	RecordSave(SaveOutcome) error
	RecordRecovery(RecoveryOutcome) error
}

// Config configures a Store.
type Config struct {
	// MaxBackups is the number of backups kept after each save (default 50).
	MaxBackups int
	Journal    Journal
	Logger     *slog.Logger
	// Now is the clock used for backup names and journal entries (default time.Now).
	Now func() time.Time
}

// Store loads and saves the ledger.
//
// A Store is not safe for concurrent use.
type Store struct {
	paths      *pathutil.PathResolver
	maxBackups int
	journal    Journal
	log        *slog.Logger
	now        func() time.Time
	stamps     *stamper
}

// New creates a Store over the paths of pathResolver.
func New(pathResolver *pathutil.PathResolver, cfg Config) *Store {
	if cfg.MaxBackups <= 0 {
		cfg.MaxBackups = DefaultMaxBackups
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Store{
		paths:      pathResolver,
		maxBackups: cfg.MaxBackups,
		journal:    cfg.Journal,
		log:        cfg.Logger,
		now:        cfg.Now,
		stamps:     &stamper{now: cfg.Now},
	}
}

// Load reads the primary file. When it is absent or unparsable the newest
// parsable backup is returned and written back over the primary file.
// Load never fails: without any usable data it returns an empty ledger.
func (s *Store) Load() *ledger.Ledger {
	if err := s.paths.EnsureDir(s.paths.GetAttachmentsDir()); err != nil {
		s.log.Warn("Failed to create attachments directory", "error", err)
	}

	primary := s.paths.GetLedgerPath()
	data, err := os.ReadFile(primary)
	switch {
	case errors.Is(err, os.ErrNotExist):
		s.log.Debug("Ledger file not found", "path", primary)
	case err != nil:
		s.log.Warn("Failed to read ledger file", "path", primary, "error", err)
	default:
		l, err := decodeLedger(data)
		if err == nil {
			s.log.Debug("Loaded ledger", "path", primary, "transactions", l.Len())
			return l
		}
		s.log.Warn("Ledger file is corrupted", "path", primary, "error", err)
	}

	if l, ok := s.recover(); ok {
		return l
	}

	s.log.Info("Starting with an empty ledger", "path", primary)
	return ledger.New()
}

// recover restores the newest parsable backup. Backups are tried from the
// greatest filename downward.
func (s *Store) recover() (*ledger.Ledger, bool) {
	backups, err := listBackups(s.paths.GetBackupDir())
	if err != nil {
		s.log.Warn("Failed to list backups", "error", err)
		return nil, false
	}
	newestByName(backups)

	for _, b := range backups {
		data, err := os.ReadFile(b.path)
		if err != nil {
			s.log.Warn("Failed to read backup", "path", b.path, "error", err)
			continue
		}
		l, err := decodeLedger(data)
		if err != nil {
			s.log.Warn("Backup is corrupted", "path", b.path, "error", err)
			continue
		}

		s.log.Info("Restored ledger from backup", "backup", b.path, "transactions", l.Len())
		recoveriesTotal.Inc()

		primary := s.paths.GetLedgerPath()
		if err := s.paths.EnsureParentDir(primary); err != nil {
			s.log.Warn("Failed to restore ledger file", "path", primary, "error", err)
		} else if _, err := pathutil.CopyFile(b.path, primary); err != nil {
			s.log.Warn("Failed to restore ledger file", "path", primary, "error", err)
		}

		if s.journal != nil {
			if err := s.journal.RecordRecovery(RecoveryOutcome{
				RecoveredAt:  s.now(),
				BackupPath:   b.path,
				Transactions: l.Len(),
			}); err != nil {
				s.log.Warn("Failed to record recovery", "error", err)
			}
		}
		return l, true
	}
	return nil, false
}

// Save writes the ledger to the primary file. It backs up the previous
// primary file first, writes a second backup of the new content afterwards
// and prunes the backup directory to the configured size.
func (s *Store) Save(l *ledger.Ledger) error {
	outcome := SaveOutcome{SavedAt: s.now(), Transactions: l.Len()}

	err := s.save(l, &outcome)
	if err != nil {
		var saveErr *SaveError
		if errors.As(err, &saveErr) {
			outcome.FailedStep = saveErr.Step
		}
		outcome.Err = err
		savesTotal.WithLabelValues("failure").Inc()
		s.log.Error("Failed to save ledger", "error", err)
	} else {
		savesTotal.WithLabelValues("success").Inc()
		backupsPrunedTotal.Add(float64(outcome.Pruned))
		s.log.Debug("Saved ledger",
			"path", s.paths.GetLedgerPath(),
			"transactions", outcome.Transactions,
			"pruned", outcome.Pruned,
		)
	}

	if s.journal != nil {
		if jerr := s.journal.RecordSave(outcome); jerr != nil {
			s.log.Warn("Failed to record save", "error", jerr)
		}
	}
	return err
}

func (s *Store) save(l *ledger.Ledger, outcome *SaveOutcome) error {
	primary := s.paths.GetLedgerPath()
	backupDir := s.paths.GetBackupDir()

	if err := s.paths.EnsureDir(backupDir); err != nil {
		return &SaveError{Step: StepPrepare, Path: backupDir, Err: err}
	}

	// Capture the pre-save state.
	if s.paths.FileExists(primary) {
		before := s.paths.GetBackupPath(backupName(s.stamps.next()))
		if _, err := pathutil.CopyFile(primary, before); err != nil {
			return &SaveError{Step: StepBackupBefore, Path: before, Err: err}
		}
		outcome.BackupBefore = before
	}

	data, err := encodeLedger(l)
	if err != nil {
		return &SaveError{Step: StepEncode, Err: err}
	}

	if err := s.paths.EnsureParentDir(primary); err != nil {
		return &SaveError{Step: StepWritePrimary, Path: primary, Err: err}
	}
	if err := os.WriteFile(primary, data, 0644); err != nil {
		return &SaveError{Step: StepWritePrimary, Path: primary, Err: err}
	}

	after := s.paths.GetBackupPath(backupName(s.stamps.next()))
	if err := os.WriteFile(after, data, 0644); err != nil {
		return &SaveError{Step: StepBackupAfter, Path: after, Err: err}
	}
	outcome.BackupAfter = after

	pruned, err := pruneBackups(backupDir, s.maxBackups)
	outcome.Pruned = pruned
	if err != nil {
		return &SaveError{Step: StepPrune, Path: backupDir, Err: err}
	}

	return nil
}
