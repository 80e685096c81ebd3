package store

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// Backup files are named transactions_backup_<stamp>.json. The stamp sorts
// lexicographically in creation order.
const (
	BackupPrefix = "transactions_backup_"
	BackupSuffix = ".json"

	backupStampLayout = "20060102_150405.000000000"
)

// DefaultMaxBackups is the number of backup files kept after pruning.
const DefaultMaxBackups = 50

// IsBackupName reports whether name follows the backup naming pattern.
func IsBackupName(name string) bool {
	if !strings.HasPrefix(name, BackupPrefix) || !strings.HasSuffix(name, BackupSuffix) {
		return false
	}
	return len(name) > len(BackupPrefix)+len(BackupSuffix)
}

// stamper hands out backup timestamps that never repeat or go backward
// within one process. A wall clock moving backward across restarts still
// breaks ordering.
type stamper struct {
	now  func() time.Time
	last time.Time
}

func (s *stamper) next() time.Time {
	t := s.now()
	if !t.After(s.last) {
		t = s.last.Add(time.Nanosecond)
	}
	s.last = t
	return t
}

func backupName(t time.Time) string {
	return BackupPrefix + t.Format(backupStampLayout) + BackupSuffix
}

// backupFile is a backup directory entry matching the naming pattern.
type backupFile struct {
	name    string
	path    string
	modTime time.Time
}

// listBackups returns the backups in dir. A missing directory has no backups.
func listBackups(dir string) ([]backupFile, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	var backups []backupFile
	for _, entry := range entries {
		if entry.IsDir() || !IsBackupName(entry.Name()) {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Removed between ReadDir and Info.
			continue
		}
		backups = append(backups, backupFile{
			name:    entry.Name(),
			path:    filepath.Join(dir, entry.Name()),
			modTime: info.ModTime(),
		})
	}
	return backups, nil
}

// newestByName orders backups by filename, greatest first.
func newestByName(backups []backupFile) {
	sort.Slice(backups, func(i, j int) bool { return backups[i].name > backups[j].name })
}

// newestByModTime orders backups by modification time, newest first.
// Files with equal times fall back to filename order.
func newestByModTime(backups []backupFile) {
	sort.Slice(backups, func(i, j int) bool {
		if !backups[i].modTime.Equal(backups[j].modTime) {
			return backups[i].modTime.After(backups[j].modTime)
		}
		return backups[i].name > backups[j].name
	})
}

// pruneBackups deletes all but the keep most recently modified backups in dir.
// It returns the number of files removed.
func pruneBackups(dir string, keep int) (int, error) {
	backups, err := listBackups(dir)
	if err != nil {
		return 0, err
	}
	if len(backups) <= keep {
		return 0, nil
	}

	newestByModTime(backups)

	removed := 0
	var errs []error
	for _, b := range backups[keep:] {
		if err := os.Remove(b.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, fmt.Errorf("failed to remove backup %s: %w", b.name, err))
			continue
		}
		removed++
	}
	return removed, errors.Join(errs...)
}
