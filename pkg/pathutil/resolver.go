// Package pathutil provides centralized path management for the ledger file,
// its backups, attachments and the history database.
package pathutil

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// Default file and directory names below the data root.
const (
	DefaultLedgerFile     = "transactions.json"
	DefaultBackupDir      = "backups"
	DefaultAttachmentsDir = "attachments"
	DefaultStateDir       = ".lendbook"
	DefaultHistoryDB      = "history.db"
)

// PathResolver manages paths for the ledger, backups, attachments and database.
type PathResolver struct {
	dataRoot       string
	ledgerPath     string
	backupDir      string
	attachmentsDir string
	databasePath   string
}

// Config represents the configuration for PathResolver.
type Config struct {
	// DataRoot is the directory all defaults are relative to (e.g., ~/lendbook)
	DataRoot string
	// LedgerPath is the primary storage file
	LedgerPath string
	// BackupDir holds timestamped ledger backups
	BackupDir string
	// AttachmentsDir holds copies of attached files
	AttachmentsDir string
	// DatabasePath is the SQLite history database
	DatabasePath string
}

// New creates a new PathResolver with the given configuration.
// Empty paths default to well-known names below DataRoot:
//
//	{DataRoot}/transactions.json
//	{DataRoot}/backups
//	{DataRoot}/attachments
//	{DataRoot}/.lendbook/history.db
func New(config Config) *PathResolver {
	root := config.DataRoot
	if root == "" {
		root = "."
	}

	return &PathResolver{
		dataRoot:       root,
		ledgerPath:     orDefault(config.LedgerPath, filepath.Join(root, DefaultLedgerFile)),
		backupDir:      orDefault(config.BackupDir, filepath.Join(root, DefaultBackupDir)),
		attachmentsDir: orDefault(config.AttachmentsDir, filepath.Join(root, DefaultAttachmentsDir)),
		databasePath:   orDefault(config.DatabasePath, filepath.Join(root, DefaultStateDir, DefaultHistoryDB)),
	}
}

func orDefault(value, fallback string) string {
	if value != "" {
		return value
	}
	return fallback
}

// GetDataRoot returns the data root directory.
func (p *PathResolver) GetDataRoot() string {
	return p.dataRoot
}

// GetLedgerPath returns the primary ledger file path.
func (p *PathResolver) GetLedgerPath() string {
	return p.ledgerPath
}

// GetBackupDir returns the backup directory.
func (p *PathResolver) GetBackupDir() string {
	return p.backupDir
}

// GetAttachmentsDir returns the attachments directory.
func (p *PathResolver) GetAttachmentsDir() string {
	return p.attachmentsDir
}

// GetDatabasePath returns the history database file path.
func (p *PathResolver) GetDatabasePath() string {
	return p.databasePath
}

// GetBackupPath returns the path of a backup file with the given name.
func (p *PathResolver) GetBackupPath(name string) string {
	return filepath.Join(p.backupDir, name)
}

// GetAttachmentPath returns the path of a stored attachment with the given name.
func (p *PathResolver) GetAttachmentPath(name string) string {
	return filepath.Join(p.attachmentsDir, name)
}

// EnsureDir creates a directory if it doesn't exist.
// It creates all parent directories as needed (like mkdir -p).
func (p *PathResolver) EnsureDir(dirPath string) error {
	if err := os.MkdirAll(dirPath, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dirPath, err)
	}
	return nil
}

// EnsureParentDir ensures the parent directory of a file exists.
func (p *PathResolver) EnsureParentDir(filePath string) error {
	return p.EnsureDir(filepath.Dir(filePath))
}

// FileExists checks if a file exists.
func (p *PathResolver) FileExists(filePath string) bool {
	_, err := os.Stat(filePath)
	return err == nil
}

// CopyFile copies src to dst byte for byte, replacing dst if it exists.
// It returns the number of bytes copied.
func CopyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, fmt.Errorf("failed to open %s: %w", src, err)
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0644)
	if err != nil {
		return 0, fmt.Errorf("failed to create %s: %w", dst, err)
	}

	n, err := io.Copy(out, in)
	if err != nil {
		out.Close()
		return n, fmt.Errorf("failed to copy %s to %s: %w", src, dst, err)
	}
	if err := out.Close(); err != nil {
		return n, fmt.Errorf("failed to close %s: %w", dst, err)
	}
	return n, nil
}
