// Package attachment copies user-selected files into managed attachment storage.
package attachment

import (
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/shunichi-ikebuchi/lendbook/pkg/pathutil"
)

// ErrInvalidSource is returned when the source path has no usable file name.
var ErrInvalidSource = errors.New("invalid attachment source")

const (
	stampLayout      = "20060102_150405"
	defaultExtension = "png"
)

// Stored describes an attachment copied into storage.
type Stored struct {
	SourcePath string
	StoredPath string
	Size       int64
	StoredAt   time.Time
}

// Journal receives stored attachments. Journal errors are logged only.
type Journal interface {
	RecordAttachment(Stored) error
}

// Config configures a Store.
type Config struct {
	Journal Journal
	Logger  *slog.Logger
	Now     func() time.Time
}

// Store copies files into the attachments directory.
type Store struct {
	paths   *pathutil.PathResolver
	journal Journal
	log     *slog.Logger
	now     func() time.Time
}

// New creates an attachment Store.
func New(pathResolver *pathutil.PathResolver, cfg Config) *Store {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Store{
		paths:   pathResolver,
		journal: cfg.Journal,
		log:     cfg.Logger,
		now:     cfg.Now,
	}
}

// StoredName returns the storage file name for source at time t:
// <YYYYMMDD_HHMMSS>_<file name>.<extension>. The file name keeps its own
// extension, so "photo.png" becomes "<stamp>_photo.png.png". Sources without
// an extension get ".png".
func StoredName(source string, t time.Time) (string, error) {
	base := filepath.Base(source)
	if base == "." || base == ".." || base == string(filepath.Separator) || strings.TrimSpace(base) == "" {
		return "", fmt.Errorf("%w: %q", ErrInvalidSource, source)
	}

	ext := strings.TrimPrefix(filepath.Ext(base), ".")
	if ext == "" {
		ext = defaultExtension
	}
	return fmt.Sprintf("%s_%s.%s", t.Format(stampLayout), base, ext), nil
}

// Store copies the file at source into attachment storage and returns the
// stored path to reference from a transaction. Content is neither
// deduplicated nor inspected.
func (s *Store) Store(source string) (string, error) {
	stored, err := s.store(source)
	if err != nil {
		return "", err
	}

	if s.journal != nil {
		if err := s.journal.RecordAttachment(stored); err != nil {
			s.log.Warn("Failed to record attachment", "path", stored.StoredPath, "error", err)
		}
	}
	s.log.Debug("Stored attachment", "source", source, "path", stored.StoredPath, "size", stored.Size)
	return stored.StoredPath, nil
}

func (s *Store) store(source string) (Stored, error) {
	now := s.now()
	name, err := StoredName(source, now)
	if err != nil {
		return Stored{}, err
	}

	dir := s.paths.GetAttachmentsDir()
	if err := s.paths.EnsureDir(dir); err != nil {
		return Stored{}, fmt.Errorf("failed to prepare attachments directory: %w", err)
	}

	dest := s.paths.GetAttachmentPath(name)
	n, err := pathutil.CopyFile(source, dest)
	if err != nil {
		return Stored{}, fmt.Errorf("failed to store attachment: %w", err)
	}

	return Stored{
		SourcePath: source,
		StoredPath: dest,
		Size:       n,
		StoredAt:   now,
	}, nil
}
