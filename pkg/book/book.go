// Package book is the entry point used by the CLI and the HTTP surface.
// It owns the in-memory ledger and persists every change through the store.
package book

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/shunichi-ikebuchi/lendbook/pkg/analytics"
	"github.com/shunichi-ikebuchi/lendbook/pkg/attachment"
	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
	"github.com/shunichi-ikebuchi/lendbook/pkg/store"
)

// AttachmentError reports a failed attachment copy. The transaction it
// belonged to is kept without the attachment.
type AttachmentError struct {
	Source string
	Err    error
}

func (e *AttachmentError) Error() string {
	return fmt.Sprintf("attachment %s: %v", e.Source, e.Err)
}

func (e *AttachmentError) Unwrap() error {
	return e.Err
}

// Config configures a Book.
type Config struct {
	Store       *store.Store
	Attachments *attachment.Store
	Logger      *slog.Logger
	Now         func() time.Time
}

// Book is safe for concurrent use.
type Book struct {
	mu          sync.RWMutex
	ledger      *ledger.Ledger
	store       *store.Store
	attachments *attachment.Store
	log         *slog.Logger
	now         func() time.Time
}

// New creates a Book with an empty ledger. Call Load to read stored data.
func New(cfg Config) *Book {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Book{
		ledger:      ledger.New(),
		store:       cfg.Store,
		attachments: cfg.Attachments,
		log:         cfg.Logger,
		now:         cfg.Now,
	}
}

// Load replaces the in-memory ledger with the stored one and returns the
// number of transactions loaded.
func (b *Book) Load() int {
	l := b.store.Load()

	b.mu.Lock()
	defer b.mu.Unlock()
	b.ledger = l
	return l.Len()
}

// Save writes the current ledger.
func (b *Book) Save() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.store.Save(b.ledger)
}

// Add validates d, stores its attachment if any, appends the transaction and
// saves. An *AttachmentError means the transaction was added without its
// attachment. A save error leaves the transaction in memory.
func (b *Book) Add(d ledger.Draft) (ledger.Transaction, error) {
	t, err := ledger.NewTransaction(d)
	if err != nil {
		return ledger.Transaction{}, err
	}

	var attachErr error
	if d.AttachmentSource != "" {
		stored, err := b.attachments.Store(d.AttachmentSource)
		if err != nil {
			b.log.Warn("Adding transaction without attachment", "source", d.AttachmentSource, "error", err)
			attachErr = &AttachmentError{Source: d.AttachmentSource, Err: err}
		} else {
			t.AttachmentPath = stored
		}
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.ledger.Append(t)
	added, _ := b.ledger.Get(id)
	b.log.Info("Added transaction",
		"id", id,
		"person", added.Counterparty,
		"direction", added.Direction,
		"amount", added.Amount.String(),
		"currency", added.Currency,
	)

	return added, errors.Join(attachErr, b.store.Save(b.ledger))
}

// EditExpectedReturnDate moves the expected return date of a transaction and
// saves. ledger.ErrDeadlineUnchanged is returned without saving when the date
// is the same.
func (b *Book) EditExpectedReturnDate(id ledger.ID, newDate ledger.Date) (ledger.DeadlineChange, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	change, err := b.ledger.EditExpectedReturnDate(id, newDate, b.now())
	if err != nil {
		return ledger.DeadlineChange{}, err
	}
	b.log.Info("Changed expected return date", "id", id, "old", change.OldDate, "new", change.NewDate)

	return change, b.store.Save(b.ledger)
}

// SetAttachment stores source and references it from the transaction.
func (b *Book) SetAttachment(id ledger.ID, source string) (string, error) {
	if _, ok := b.Get(id); !ok {
		return "", fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
	}

	stored, err := b.StoreAttachment(source)
	if err != nil {
		return "", err
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ledger.SetAttachment(id, stored); err != nil {
		return "", err
	}
	return stored, b.store.Save(b.ledger)
}

// ClearAttachment removes the attachment reference of a transaction. The
// stored file stays on disk.
func (b *Book) ClearAttachment(id ledger.ID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := b.ledger.SetAttachment(id, ""); err != nil {
		return err
	}
	return b.store.Save(b.ledger)
}

// StoreAttachment copies path into attachment storage without touching the ledger.
func (b *Book) StoreAttachment(path string) (string, error) {
	stored, err := b.attachments.Store(path)
	if err != nil {
		return "", &AttachmentError{Source: path, Err: err}
	}
	return stored, nil
}

// Get returns a copy of one transaction.
func (b *Book) Get(id ledger.ID) (ledger.Transaction, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.Get(id)
}

// Resolve turns a user reference into a transaction ID. A reference is
// either a full ID or a 1-based position in ledger order.
func (b *Book) Resolve(ref string) (ledger.ID, error) {
	ref = strings.TrimSpace(ref)

	b.mu.RLock()
	defer b.mu.RUnlock()

	if id, err := uuid.Parse(ref); err == nil {
		if _, ok := b.ledger.Get(id); !ok {
			return ledger.ID{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, ref)
		}
		return id, nil
	}

	n, err := strconv.Atoi(ref)
	if err != nil {
		return ledger.ID{}, fmt.Errorf("%w: %q is neither an ID nor a position", ledger.ErrInvalidInput, ref)
	}
	t, ok := b.ledger.At(n - 1)
	if !ok {
		return ledger.ID{}, fmt.Errorf("%w: position %d", ledger.ErrNotFound, n)
	}
	return t.ID, nil
}

// Snapshot returns a copy of every transaction in ledger order.
func (b *Book) Snapshot() []ledger.Transaction {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ledger.Transactions()
}

// Query filters the ledger by a free-text query and sorts the result.
func (b *Book) Query(query string, by ledger.SortBy) []ledger.Transaction {
	txs := ledger.Filter(b.Snapshot(), query)
	ledger.Sort(txs, by)
	return txs
}

func (b *Book) Balances() []analytics.CurrencyBalance {
	return analytics.SortedBalances(b.Snapshot())
}

func (b *Book) Totals() analytics.Totals {
	return analytics.ComputeTotals(b.Snapshot())
}

func (b *Book) People() []analytics.PersonReport {
	return analytics.Report(b.Snapshot())
}

func (b *Book) Outstanding() []analytics.PersonValue {
	return analytics.OutstandingByPerson(b.Snapshot())
}

func (b *Book) ReturnRates() []analytics.PersonRate {
	return analytics.ReturnRates(b.Snapshot())
}

func (b *Book) PaidBack() map[ledger.ID]bool {
	return analytics.PaidBack(b.Snapshot())
}

func (b *Book) Timeline() map[ledger.Currency][]analytics.Sample {
	return analytics.Timeline(b.Snapshot())
}
