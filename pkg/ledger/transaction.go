package ledger

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidInput is returned when user input cannot form a transaction.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotFound is returned when no transaction has the requested ID.
	ErrNotFound = errors.New("transaction not found")

	// ErrNoDeadline is returned when a deadline edit targets a transaction
	// without an expected return date.
	ErrNoDeadline = errors.New("transaction has no expected return date")

	// ErrDeadlineUnchanged is returned when the new deadline equals the current one.
	ErrDeadlineUnchanged = errors.New("expected return date unchanged")
)

// ID identifies a transaction for the lifetime of the ledger.
type ID = uuid.UUID

// NewID returns a fresh random ID.
func NewID() ID {
	return uuid.New()
}

// DeadlineChange is an audit entry for an edit of the expected return date.
type DeadlineChange struct {
	OldDate   Date
	NewDate   Date
	ChangedAt time.Time
}

// Transaction is a single lending event between the user and a counterparty.
type Transaction struct {
	ID             ID
	Counterparty   string
	Amount         decimal.Decimal
	Currency       Currency
	Direction      Direction
	OccurredAt     time.Time
	ExpectedReturn *Date
	// AttachmentPath is the stored path returned by the attachment store, empty if none.
	AttachmentPath  string
	DeadlineHistory []DeadlineChange
}

// HasAttachment reports whether a file is attached.
func (t Transaction) HasAttachment() bool {
	return t.AttachmentPath != ""
}

// clone returns a copy that shares no mutable state with t.
func (t Transaction) clone() Transaction {
	c := t
	if t.ExpectedReturn != nil {
		d := *t.ExpectedReturn
		c.ExpectedReturn = &d
	}
	if t.DeadlineHistory != nil {
		c.DeadlineHistory = append([]DeadlineChange(nil), t.DeadlineHistory...)
	}
	return c
}

// Draft is unvalidated input for a new transaction.
type Draft struct {
	Counterparty   string
	Amount         decimal.Decimal
	Currency       Currency
	Direction      Direction
	OccurredAt     time.Time
	ExpectedReturn *Date
	// AttachmentSource is a file to copy into attachment storage; empty for none.
	AttachmentSource string
}

// NewTransaction validates a draft and builds a transaction from it.
// The returned transaction has no ID and no attachment; Ledger.Append assigns the ID.
func NewTransaction(d Draft) (Transaction, error) {
	name := strings.TrimSpace(d.Counterparty)
	if name == "" {
		return Transaction{}, fmt.Errorf("%w: counterparty name is required", ErrInvalidInput)
	}
	if !d.Amount.IsPositive() {
		return Transaction{}, fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidInput, d.Amount)
	}
	if !d.Currency.Valid() {
		return Transaction{}, fmt.Errorf("%w: unknown currency %q", ErrInvalidInput, d.Currency)
	}
	if !d.Direction.Valid() {
		return Transaction{}, fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, d.Direction)
	}
	if d.ExpectedReturn != nil && !d.Direction.IsDebt() {
		return Transaction{}, fmt.Errorf("%w: expected return date is only allowed for %s and %s", ErrInvalidInput, Lent, Borrowed)
	}
	if d.OccurredAt.IsZero() {
		return Transaction{}, fmt.Errorf("%w: transaction time is required", ErrInvalidInput)
	}

	t := Transaction{
		Counterparty: name,
		Amount:       d.Amount,
		Currency:     d.Currency,
		Direction:    d.Direction,
		OccurredAt:   d.OccurredAt,
	}
	if d.ExpectedReturn != nil {
		due := *d.ExpectedReturn
		t.ExpectedReturn = &due
	}
	return t, nil
}

// Validate checks the invariants of an already constructed transaction,
// such as one decoded from storage.
func (t Transaction) Validate() error {
	if strings.TrimSpace(t.Counterparty) == "" {
		return fmt.Errorf("%w: counterparty name is required", ErrInvalidInput)
	}
	if !t.Amount.IsPositive() {
		return fmt.Errorf("%w: amount must be positive, got %s", ErrInvalidInput, t.Amount)
	}
	if !t.Currency.Valid() {
		return fmt.Errorf("%w: unknown currency %q", ErrInvalidInput, t.Currency)
	}
	if !t.Direction.Valid() {
		return fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, t.Direction)
	}
	if t.ExpectedReturn != nil && !t.Direction.IsDebt() {
		return fmt.Errorf("%w: expected return date set on %s transaction", ErrInvalidInput, t.Direction)
	}
	return nil
}

// ParseAmount parses user-entered amount text.
func ParseAmount(s string) (decimal.Decimal, error) {
	amount, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: invalid amount %q", ErrInvalidInput, s)
	}
	return amount, nil
}
