package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

// DateTimeLayout is the on-disk form of transaction and audit timestamps.
// Times are written in local wall-clock time without a zone; fractional
// seconds are written only when present.
const DateTimeLayout = "2006-01-02T15:04:05.999999999"

// document is the top-level structure of the primary file and every backup.
type document struct {
	Transactions []transactionRecord `json:"transactions"`
}

type personRecord struct {
	Name string `json:"name"`
}

type deadlineChangeRecord struct {
	OldDate   string `json:"old_date"`
	NewDate   string `json:"new_date"`
	ChangedAt string `json:"changed_at"`
}

type transactionRecord struct {
	ID                 string                 `json:"id,omitempty"`
	Person             personRecord           `json:"person"`
	Amount             amountValue            `json:"amount"`
	MoneyType          string                 `json:"money_type"`
	Direction          string                 `json:"direction"`
	DateTime           string                 `json:"datetime"`
	ExpectedReturnDate *string                `json:"expected_return_date"`
	AttachmentPath     *string                `json:"attachment_path"`
	DeadlineChanges    []deadlineChangeRecord `json:"deadline_changes"`
}

// amountValue writes a decimal as a bare JSON number and reads either a
// number or a quoted string.
type amountValue struct {
	decimal.Decimal
}

func (a amountValue) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

func (a *amountValue) UnmarshalJSON(data []byte) error {
	return a.Decimal.UnmarshalJSON(data)
}

// encodeLedger serializes the ledger as an indented JSON document.
func encodeLedger(l *ledger.Ledger) ([]byte, error) {
	txs := l.Transactions()
	doc := document{Transactions: make([]transactionRecord, 0, len(txs))}
	for _, t := range txs {
		doc.Transactions = append(doc.Transactions, toRecord(t))
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode ledger: %w", err)
	}
	return data, nil
}

// decodeLedger parses a document and validates every transaction in it.
// Any invalid record makes the whole document unusable.
func decodeLedger(data []byte) (*ledger.Ledger, error) {
	var doc document
	dec := json.NewDecoder(bytes.NewReader(data))
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to parse ledger document: %w", err)
	}

	txs := make([]ledger.Transaction, 0, len(doc.Transactions))
	for i, rec := range doc.Transactions {
		t, err := fromRecord(rec)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i, err)
		}
		txs = append(txs, t)
	}
	return ledger.FromTransactions(txs), nil
}

func toRecord(t ledger.Transaction) transactionRecord {
	rec := transactionRecord{
		ID:              t.ID.String(),
		Person:          personRecord{Name: t.Counterparty},
		Amount:          amountValue{t.Amount},
		MoneyType:       string(t.Currency),
		Direction:       string(t.Direction),
		DateTime:        formatDateTime(t.OccurredAt),
		DeadlineChanges: make([]deadlineChangeRecord, 0, len(t.DeadlineHistory)),
	}
	if t.ExpectedReturn != nil {
		s := t.ExpectedReturn.String()
		rec.ExpectedReturnDate = &s
	}
	if t.AttachmentPath != "" {
		p := t.AttachmentPath
		rec.AttachmentPath = &p
	}
	for _, c := range t.DeadlineHistory {
		rec.DeadlineChanges = append(rec.DeadlineChanges, deadlineChangeRecord{
			OldDate:   c.OldDate.String(),
			NewDate:   c.NewDate.String(),
			ChangedAt: formatDateTime(c.ChangedAt),
		})
	}
	return rec
}

func fromRecord(rec transactionRecord) (ledger.Transaction, error) {
	occurred, err := parseDateTime(rec.DateTime)
	if err != nil {
		return ledger.Transaction{}, err
	}

	t := ledger.Transaction{
		Counterparty: rec.Person.Name,
		Amount:       rec.Amount.Decimal,
		Currency:     ledger.Currency(rec.MoneyType),
		Direction:    ledger.Direction(rec.Direction),
		OccurredAt:   occurred,
	}

	// Documents written before IDs existed carry none; the ledger assigns one.
	if rec.ID != "" {
		id, err := uuid.Parse(rec.ID)
		if err != nil {
			return ledger.Transaction{}, fmt.Errorf("invalid id %q: %w", rec.ID, err)
		}
		t.ID = id
	}

	if rec.ExpectedReturnDate != nil {
		due, err := ledger.ParseDate(*rec.ExpectedReturnDate)
		if err != nil {
			return ledger.Transaction{}, err
		}
		t.ExpectedReturn = &due
	}
	if rec.AttachmentPath != nil {
		t.AttachmentPath = *rec.AttachmentPath
	}

	for _, c := range rec.DeadlineChanges {
		oldDate, err := ledger.ParseDate(c.OldDate)
		if err != nil {
			return ledger.Transaction{}, err
		}
		newDate, err := ledger.ParseDate(c.NewDate)
		if err != nil {
			return ledger.Transaction{}, err
		}
		changedAt, err := parseDateTime(c.ChangedAt)
		if err != nil {
			return ledger.Transaction{}, err
		}
		t.DeadlineHistory = append(t.DeadlineHistory, ledger.DeadlineChange{
			OldDate:   oldDate,
			NewDate:   newDate,
			ChangedAt: changedAt,
		})
	}

	if err := t.Validate(); err != nil {
		return ledger.Transaction{}, err
	}
	return t, nil
}

func formatDateTime(t time.Time) string {
	return t.In(time.Local).Format(DateTimeLayout)
}

func parseDateTime(s string) (time.Time, error) {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", s, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid datetime %q: %w", s, err)
	}
	return t, nil
}
