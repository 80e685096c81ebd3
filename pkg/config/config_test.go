package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"LENDBOOK_DATA_ROOT",
		"LENDBOOK_LEDGER_PATH",
		"LENDBOOK_BACKUP_DIR",
		"LENDBOOK_ATTACHMENTS_DIR",
		"LENDBOOK_HISTORY_DB",
		"LENDBOOK_MAX_BACKUPS",
		"LENDBOOK_HTTP_ADDR",
		"LENDBOOK_SETTINGS",
		"DEBUG",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ".", cfg.Storage.DataRoot)
	assert.Equal(t, DefaultMaxBackups, cfg.Storage.MaxBackups)
	assert.Equal(t, DefaultHTTPAddr, cfg.HTTP.Addr)
	assert.False(t, cfg.Debug)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("LENDBOOK_DATA_ROOT", "/data")
	t.Setenv("LENDBOOK_LEDGER_PATH", "/data/ledger.json")
	t.Setenv("LENDBOOK_MAX_BACKUPS", "7")
	t.Setenv("DEBUG", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/data", cfg.Storage.DataRoot)
	assert.Equal(t, 7, cfg.Storage.MaxBackups)
	assert.True(t, cfg.Debug)

	paths := cfg.PathConfig()
	assert.Equal(t, "/data", paths.DataRoot)
	assert.Equal(t, "/data/ledger.json", paths.LedgerPath)
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("LENDBOOK_HTTP_ADDR")

	envFile := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(envFile, []byte("LENDBOOK_HTTP_ADDR=127.0.0.1:9999\n"), 0644))

	cfg, err := Load(envFile)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9999", cfg.HTTP.Addr)
}

func TestLoadMissingEnvFile(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.Error(t, err)
}

func TestLoadInvalidMaxBackups(t *testing.T) {
	clearEnv(t)
	t.Setenv("LENDBOOK_MAX_BACKUPS", "many")

	_, err := Load()
	assert.ErrorContains(t, err, "LENDBOOK_MAX_BACKUPS")
}

func TestSettingsOverlay(t *testing.T) {
	clearEnv(t)

	settings := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte(`
storage:
  data_root: /srv/lendbook
  max_backups: 10
http:
  addr: 0.0.0.0:8080
`), 0644))
	t.Setenv("LENDBOOK_SETTINGS", settings)
	t.Setenv("LENDBOOK_ATTACHMENTS_DIR", "/srv/files")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/srv/lendbook", cfg.Storage.DataRoot)
	assert.Equal(t, 10, cfg.Storage.MaxBackups)
	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Addr)
	// Keys missing from the file keep their environment values.
	assert.Equal(t, "/srv/files", cfg.Storage.AttachmentsDir)
}

func TestSettingsInvalidYAML(t *testing.T) {
	cfg := &Config{}
	settings := filepath.Join(t.TempDir(), "settings.yaml")
	require.NoError(t, os.WriteFile(settings, []byte("storage: [unclosed"), 0644))

	assert.Error(t, cfg.ApplySettings(settings))
}

func TestValidateReportsEveryProblem(t *testing.T) {
	cfg := &Config{
		Storage: StorageConfig{DataRoot: " ", MaxBackups: 0},
		HTTP:    HTTPConfig{Addr: ""},
	}

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage.data_root")
	assert.Contains(t, err.Error(), "storage.max_backups")
	assert.Contains(t, err.Error(), "http.addr")
}
