package cmd

import (
	"log/slog"

	"github.com/shunichi-ikebuchi/lendbook/pkg/attachment"
	"github.com/shunichi-ikebuchi/lendbook/pkg/book"
	"github.com/shunichi-ikebuchi/lendbook/pkg/config"
	"github.com/shunichi-ikebuchi/lendbook/pkg/db"
	"github.com/shunichi-ikebuchi/lendbook/pkg/pathutil"
	"github.com/shunichi-ikebuchi/lendbook/pkg/store"
)

// app holds the components shared by every command.
type app struct {
	cfg     *config.Config
	paths   *pathutil.PathResolver
	conn    *db.Connection
	history *db.History
	book    *book.Book
}

// loadConfig loads and validates the configuration, applying --settings.
func loadConfig() *config.Config {
	slog.Debug("Loading configuration")

	cfg, err := config.Load(getConfigFile())
	exitOnError(err, "failed to load configuration")

	if settingsFile != "" {
		exitOnError(cfg.ApplySettings(settingsFile), "failed to apply settings")
	}
	exitOnError(cfg.Validate(), "invalid configuration")

	return cfg
}

// openApp wires configuration, the history journal and the book, then loads
// the ledger. A history database that cannot be opened is logged and skipped.
func openApp() *app {
	cfg := loadConfig()
	pathResolver := pathutil.New(cfg.PathConfig())

	a := &app{cfg: cfg, paths: pathResolver}

	storeCfg := store.Config{MaxBackups: cfg.Storage.MaxBackups}
	attachmentCfg := attachment.Config{}

	dbPath := pathResolver.GetDatabasePath()
	slog.Debug("Opening database", "path", dbPath)
	conn, err := db.Open(dbPath)
	if err != nil {
		slog.Warn("History database unavailable, continuing without it", "path", dbPath, "error", err)
	} else {
		a.conn = conn
		a.history = db.NewHistory(conn)
		journal := db.NewJournal(a.history)
		storeCfg.Journal = journal
		attachmentCfg.Journal = journal
	}

	a.book = book.New(book.Config{
		Store:       store.New(pathResolver, storeCfg),
		Attachments: attachment.New(pathResolver, attachmentCfg),
	})

	n := a.book.Load()
	slog.Debug("Ledger loaded", "path", pathResolver.GetLedgerPath(), "transactions", n)

	return a
}

func (a *app) Close() {
	if a.conn == nil {
		return
	}
	if err := a.conn.Close(); err != nil {
		slog.Warn("Failed to close database", "error", err)
	}
}
