package ledger

import (
	"fmt"
	"time"
)

// Ledger is the ordered collection of all recorded transactions.
// Insertion order is entry order, which is not necessarily chronological.
//
// A Ledger is not safe for concurrent use.
type Ledger struct {
	txs   []Transaction
	index map[ID]int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{index: make(map[ID]int)}
}

// FromTransactions builds a ledger from transactions in the given order.
// Transactions without an ID, or with an ID already used, get a new one.
func FromTransactions(txs []Transaction) *Ledger {
	l := New()
	for _, t := range txs {
		l.Append(t)
	}
	return l
}

// Append adds t to the end of the ledger and returns its ID.
func (l *Ledger) Append(t Transaction) ID {
	t = t.clone()
	if _, taken := l.index[t.ID]; taken || t.ID == (ID{}) {
		t.ID = NewID()
	}
	l.index[t.ID] = len(l.txs)
	l.txs = append(l.txs, t)
	return t.ID
}

// Len returns the number of transactions.
func (l *Ledger) Len() int {
	return len(l.txs)
}

// Get returns a copy of the transaction with the given ID.
func (l *Ledger) Get(id ID) (Transaction, bool) {
	i, ok := l.index[id]
	if !ok {
		return Transaction{}, false
	}
	return l.txs[i].clone(), true
}

// At returns a copy of the transaction at position i.
func (l *Ledger) At(i int) (Transaction, bool) {
	if i < 0 || i >= len(l.txs) {
		return Transaction{}, false
	}
	return l.txs[i].clone(), true
}

// IndexOf returns the display position of the transaction with the given ID.
func (l *Ledger) IndexOf(id ID) (int, bool) {
	i, ok := l.index[id]
	return i, ok
}

// Transactions returns a copy of all transactions in insertion order.
// Changes to the result do not affect the ledger.
func (l *Ledger) Transactions() []Transaction {
	out := make([]Transaction, len(l.txs))
	for i, t := range l.txs {
		out[i] = t.clone()
	}
	return out
}

// EditExpectedReturnDate moves the expected return date of a Lent or Borrowed
// transaction and appends the resulting audit entry to its history.
func (l *Ledger) EditExpectedReturnDate(id ID, newDate Date, now time.Time) (DeadlineChange, error) {
	i, ok := l.index[id]
	if !ok {
		return DeadlineChange{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	t := &l.txs[i]
	if !t.Direction.IsDebt() || t.ExpectedReturn == nil {
		return DeadlineChange{}, fmt.Errorf("%w: %s", ErrNoDeadline, id)
	}
	if *t.ExpectedReturn == newDate {
		return DeadlineChange{}, ErrDeadlineUnchanged
	}

	change := DeadlineChange{
		OldDate:   *t.ExpectedReturn,
		NewDate:   newDate,
		ChangedAt: now,
	}
	t.DeadlineHistory = append(t.DeadlineHistory, change)
	due := newDate
	t.ExpectedReturn = &due

	return change, nil
}

// SetAttachment replaces the attachment reference of a transaction.
// An empty path removes the attachment.
func (l *Ledger) SetAttachment(id ID, storedPath string) error {
	i, ok := l.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	l.txs[i].AttachmentPath = storedPath
	return nil
}
