package store

import (
	"errors"
	"os"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
	"github.com/shunichi-ikebuchi/lendbook/pkg/pathutil"
)

type fakeJournal struct {
	saves      []SaveOutcome
	recoveries []RecoveryOutcome
	err        error
}

func (j *fakeJournal) RecordSave(o SaveOutcome) error {
	j.saves = append(j.saves, o)
	return j.err
}

func (j *fakeJournal) RecordRecovery(o RecoveryOutcome) error {
	j.recoveries = append(j.recoveries, o)
	return j.err
}

// tickingClock returns a clock that advances one second per call.
func tickingClock() func() time.Time {
	t := time.Date(2024, time.January, 15, 10, 0, 0, 0, time.Local)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T, maxBackups int) (*Store, *pathutil.PathResolver, *fakeJournal) {
	t.Helper()
	paths := pathutil.New(pathutil.Config{DataRoot: t.TempDir()})
	journal := &fakeJournal{}
	s := New(paths, Config{MaxBackups: maxBackups, Journal: journal, Now: tickingClock()})
	return s, paths, journal
}

func sampleLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	due := ledger.NewDate(2024, time.February, 1)
	l := ledger.New()

	mk := func(name, amount string, cur ledger.Currency, dir ledger.Direction, when time.Time, due *ledger.Date) {
		tx, err := ledger.NewTransaction(ledger.Draft{
			Counterparty:   name,
			Amount:         decimal.RequireFromString(amount),
			Currency:       cur,
			Direction:      dir,
			OccurredAt:     when,
			ExpectedReturn: due,
		})
		require.NoError(t, err)
		l.Append(tx)
	}

	mk("Alice", "100", ledger.CurrencyUSD, ledger.Lent, time.Date(2024, 1, 10, 9, 30, 0, 0, time.Local), &due)
	mk("Bob", "12.50", ledger.CurrencyGEL, ledger.Borrowed, time.Date(2024, 1, 11, 18, 5, 7, 123456789, time.Local), nil)
	mk("Alice", "40", ledger.CurrencyUSD, ledger.Returned, time.Date(2024, 1, 20, 12, 0, 0, 0, time.Local), nil)

	first, _ := l.At(0)
	_, err := l.EditExpectedReturnDate(first.ID, ledger.NewDate(2024, time.March, 1), time.Date(2024, 1, 25, 8, 0, 0, 0, time.Local))
	require.NoError(t, err)
	require.NoError(t, l.SetAttachment(first.ID, "attachments/20240110_093000_receipt.png.png"))
	return l
}

func assertSameLedger(t *testing.T, want, got *ledger.Ledger) {
	t.Helper()
	require.Equal(t, want.Len(), got.Len())
	for i, w := range want.Transactions() {
		g, _ := got.At(i)
		assert.Equal(t, w.ID, g.ID)
		assert.Equal(t, w.Counterparty, g.Counterparty)
		assert.True(t, w.Amount.Equal(g.Amount), "amount %s != %s", w.Amount, g.Amount)
		assert.Equal(t, w.Currency, g.Currency)
		assert.Equal(t, w.Direction, g.Direction)
		assert.True(t, w.OccurredAt.Equal(g.OccurredAt), "time %s != %s", w.OccurredAt, g.OccurredAt)
		assert.Equal(t, w.ExpectedReturn, g.ExpectedReturn)
		assert.Equal(t, w.AttachmentPath, g.AttachmentPath)
		require.Len(t, g.DeadlineHistory, len(w.DeadlineHistory))
		for j, c := range w.DeadlineHistory {
			assert.Equal(t, c.OldDate, g.DeadlineHistory[j].OldDate)
			assert.Equal(t, c.NewDate, g.DeadlineHistory[j].NewDate)
			assert.True(t, c.ChangedAt.Equal(g.DeadlineHistory[j].ChangedAt))
		}
	}
}

func backupNames(t *testing.T, dir string) []string {
	t.Helper()
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	var names []string
	for _, e := range entries {
		if IsBackupName(e.Name()) {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names
}

func TestSaveLoadRoundTrip(t *testing.T) {
	s, _, _ := newTestStore(t, 0)
	want := sampleLedger(t)

	require.NoError(t, s.Save(want))
	got := s.Load()

	assertSameLedger(t, want, got)
}

func TestLoadMissingFileReturnsEmptyLedger(t *testing.T) {
	s, paths, _ := newTestStore(t, 0)

	l := s.Load()
	assert.Equal(t, 0, l.Len())
	assert.True(t, paths.FileExists(paths.GetAttachmentsDir()))
}

func TestSaveWritesTwoBackupsPerSave(t *testing.T) {
	s, paths, journal := newTestStore(t, 0)
	l := sampleLedger(t)

	require.NoError(t, s.Save(l))
	assert.Len(t, backupNames(t, paths.GetBackupDir()), 1, "first save has no previous primary file")

	require.NoError(t, s.Save(l))
	assert.Len(t, backupNames(t, paths.GetBackupDir()), 3)

	require.Len(t, journal.saves, 2)
	assert.Empty(t, journal.saves[0].BackupBefore)
	assert.NotEmpty(t, journal.saves[1].BackupBefore)
	assert.NotEmpty(t, journal.saves[1].BackupAfter)
	assert.Less(t, filepath.Base(journal.saves[1].BackupBefore), filepath.Base(journal.saves[1].BackupAfter))
}

func TestSaveBackupBeforeCapturesPreviousState(t *testing.T) {
	s, paths, journal := newTestStore(t, 0)
	l := sampleLedger(t)
	require.NoError(t, s.Save(l))

	previous, err := os.ReadFile(paths.GetLedgerPath())
	require.NoError(t, err)

	more, err := ledger.NewTransaction(ledger.Draft{
		Counterparty: "Carol",
		Amount:       decimal.NewFromInt(5),
		Currency:     ledger.CurrencyEUR,
		Direction:    ledger.Repaid,
		OccurredAt:   time.Date(2024, 2, 1, 10, 0, 0, 0, time.Local),
	})
	require.NoError(t, err)
	l.Append(more)
	require.NoError(t, s.Save(l))

	last := journal.saves[len(journal.saves)-1]
	before, err := os.ReadFile(last.BackupBefore)
	require.NoError(t, err)
	assert.Equal(t, previous, before)

	after, err := os.ReadFile(last.BackupAfter)
	require.NoError(t, err)
	current, err := os.ReadFile(paths.GetLedgerPath())
	require.NoError(t, err)
	assert.Equal(t, current, after)
}

func TestLoadRecoversFromNewestBackup(t *testing.T) {
	s, paths, journal := newTestStore(t, 0)
	want := sampleLedger(t)
	require.NoError(t, s.Save(want))

	require.NoError(t, os.WriteFile(paths.GetLedgerPath(), []byte("{not json"), 0644))

	got := s.Load()
	assertSameLedger(t, want, got)

	names := backupNames(t, paths.GetBackupDir())
	newest, err := os.ReadFile(paths.GetBackupPath(names[len(names)-1]))
	require.NoError(t, err)
	primary, err := os.ReadFile(paths.GetLedgerPath())
	require.NoError(t, err)
	assert.Equal(t, newest, primary)

	require.Len(t, journal.recoveries, 1)
	assert.Equal(t, want.Len(), journal.recoveries[0].Transactions)
}

func TestLoadSkipsCorruptedBackups(t *testing.T) {
	s, paths, _ := newTestStore(t, 0)
	want := sampleLedger(t)
	require.NoError(t, s.Save(want))
	require.NoError(t, os.Remove(paths.GetLedgerPath()))

	// A newer but unparsable backup, and a file outside the naming pattern.
	require.NoError(t, os.WriteFile(paths.GetBackupPath(BackupPrefix+"99991231_235959.000000000"+BackupSuffix), []byte("garbage"), 0644))
	require.NoError(t, os.WriteFile(paths.GetBackupPath("zzz.json"), []byte(`{"transactions": []}`), 0644))

	got := s.Load()
	assertSameLedger(t, want, got)
}

func TestLoadWithoutUsableBackupReturnsEmpty(t *testing.T) {
	s, paths, _ := newTestStore(t, 0)
	require.NoError(t, paths.EnsureDir(paths.GetBackupDir()))
	require.NoError(t, os.WriteFile(paths.GetLedgerPath(), []byte("broken"), 0644))
	require.NoError(t, os.WriteFile(paths.GetBackupPath(BackupPrefix+"20240101_000000.000000000"+BackupSuffix), []byte("broken"), 0644))

	l := s.Load()
	assert.Equal(t, 0, l.Len())
}

func TestLoadRejectsInvalidRecords(t *testing.T) {
	s, paths, _ := newTestStore(t, 0)
	doc := `{"transactions":[{"person":{"name":"Alice"},"amount":-5,"money_type":"USD","direction":"Lent","datetime":"2024-01-15T10:30:00"}]}`
	require.NoError(t, os.WriteFile(paths.GetLedgerPath(), []byte(doc), 0644))

	l := s.Load()
	assert.Equal(t, 0, l.Len())
}

func TestLoadLegacyDocument(t *testing.T) {
	s, paths, _ := newTestStore(t, 0)
	doc := `{
  "transactions": [
    {
      "person": {"name": "Nino"},
      "amount": 250.75,
      "money_type": "GEL",
      "direction": "Lent",
      "datetime": "2024-03-01T14:20:00",
      "expected_return_date": "2024-04-01",
      "attachment_path": null
    }
  ]
}`
	require.NoError(t, os.WriteFile(paths.GetLedgerPath(), []byte(doc), 0644))

	l := s.Load()
	require.Equal(t, 1, l.Len())
	tx, _ := l.At(0)
	assert.NotEqual(t, ledger.ID{}, tx.ID)
	assert.Equal(t, "Nino", tx.Counterparty)
	assert.True(t, tx.Amount.Equal(decimal.RequireFromString("250.75")))
	assert.Equal(t, ledger.CurrencyGEL, tx.Currency)
	assert.Equal(t, ledger.NewDate(2024, time.April, 1), *tx.ExpectedReturn)
	assert.Empty(t, tx.AttachmentPath)
	assert.Empty(t, tx.DeadlineHistory)
}

func TestSavePrunesToMaxBackups(t *testing.T) {
	const keep = 50
	s, paths, journal := newTestStore(t, keep)
	l := sampleLedger(t)

	for i := 0; i < keep+5; i++ {
		require.NoError(t, s.Save(l))
	}

	var created []string
	for _, o := range journal.saves {
		if o.BackupBefore != "" {
			created = append(created, filepath.Base(o.BackupBefore))
		}
		created = append(created, filepath.Base(o.BackupAfter))
	}
	sort.Strings(created)

	remaining := backupNames(t, paths.GetBackupDir())
	require.Len(t, remaining, keep)
	assert.Equal(t, created[len(created)-keep:], remaining)
}

func TestPruneIgnoresForeignFiles(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 4; i++ {
		name := backupName(time.Date(2024, 1, 1, 0, 0, i, 0, time.Local))
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("{}"), 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("keep me"), 0644))

	removed, err := pruneBackups(dir, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	assert.FileExists(t, filepath.Join(dir, "notes.txt"))
}

func TestSaveFailureReportsStep(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	paths := pathutil.New(pathutil.Config{
		DataRoot:   root,
		LedgerPath: filepath.Join(blocker, "transactions.json"),
	})
	journal := &fakeJournal{}
	s := New(paths, Config{Journal: journal, Now: tickingClock()})

	l := sampleLedger(t)
	err := s.Save(l)
	require.Error(t, err)

	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Equal(t, StepWritePrimary, saveErr.Step)
	assert.Equal(t, 3, l.Len())

	require.Len(t, journal.saves, 1)
	assert.Equal(t, StepWritePrimary, journal.saves[0].FailedStep)
}

func TestSaveWithBlockedBackupDir(t *testing.T) {
	root := t.TempDir()
	blocker := filepath.Join(root, "backups")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	s := New(pathutil.New(pathutil.Config{DataRoot: root}), Config{Now: tickingClock()})
	err := s.Save(sampleLedger(t))

	var saveErr *SaveError
	require.True(t, errors.As(err, &saveErr))
	assert.Equal(t, StepPrepare, saveErr.Step)
}

func TestJournalErrorsDoNotFailSave(t *testing.T) {
	s, _, journal := newTestStore(t, 0)
	journal.err = errors.New("journal unavailable")

	assert.NoError(t, s.Save(sampleLedger(t)))
}

func TestStamperNeverRepeats(t *testing.T) {
	fixed := time.Date(2024, 1, 1, 0, 0, 0, 0, time.Local)
	st := &stamper{now: func() time.Time { return fixed }}

	a := backupName(st.next())
	b := backupName(st.next())
	assert.Less(t, a, b)
}

func TestIsBackupName(t *testing.T) {
	assert.True(t, IsBackupName("transactions_backup_20240115_103000.000000000.json"))
	assert.False(t, IsBackupName("transactions_backup_.json"))
	assert.False(t, IsBackupName("other.json"))
	assert.False(t, IsBackupName("transactions_backup_20240115.txt"))
}
