package attachment

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/lendbook/pkg/pathutil"
)

type recordingJournal struct {
	stored []Stored
}

func (j *recordingJournal) RecordAttachment(s Stored) error {
	j.stored = append(j.stored, s)
	return nil
}

var fixedTime = time.Date(2024, time.January, 15, 10, 30, 0, 0, time.Local)

func TestStoredName(t *testing.T) {
	tests := []struct {
		source   string
		expected string
		wantErr  bool
	}{
		{"/home/me/photo.png", "20240115_103000_photo.png.png", false},
		{"scan.JPG", "20240115_103000_scan.JPG.JPG", false},
		{"/tmp/receipt", "20240115_103000_receipt.png", false},
		{"archive.tar.gz", "20240115_103000_archive.tar.gz.gz", false},
		{"/", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			name, err := StoredName(tt.source, fixedTime)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidSource)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, name)
		})
	}
}

func TestStoreCopiesFile(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(t.TempDir(), "photo.png")
	require.NoError(t, os.WriteFile(src, []byte("image bytes"), 0644))

	paths := pathutil.New(pathutil.Config{DataRoot: root})
	journal := &recordingJournal{}
	s := New(paths, Config{Journal: journal, Now: func() time.Time { return fixedTime }})

	stored, err := s.Store(src)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(root, "attachments", "20240115_103000_photo.png.png"), stored)

	data, err := os.ReadFile(stored)
	require.NoError(t, err)
	assert.Equal(t, "image bytes", string(data))

	require.Len(t, journal.stored, 1)
	assert.Equal(t, int64(len("image bytes")), journal.stored[0].Size)
	assert.Equal(t, src, journal.stored[0].SourcePath)
}

func TestStoreMissingSource(t *testing.T) {
	paths := pathutil.New(pathutil.Config{DataRoot: t.TempDir()})
	journal := &recordingJournal{}
	s := New(paths, Config{Journal: journal})

	_, err := s.Store(filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)
	assert.Empty(t, journal.stored)
}
