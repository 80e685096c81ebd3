package ledger

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func at(s string) time.Time {
	t, err := time.ParseInLocation("2006-01-02 15:04", s, time.Local)
	if err != nil {
		panic(err)
	}
	return t
}

func draft(name string, amount string, dir Direction) Draft {
	return Draft{
		Counterparty: name,
		Amount:       decimal.RequireFromString(amount),
		Currency:     CurrencyUSD,
		Direction:    dir,
		OccurredAt:   at("2024-01-15 10:30"),
	}
}

func TestNewTransaction(t *testing.T) {
	due := NewDate(2024, time.February, 1)

	tests := []struct {
		name    string
		mutate  func(d *Draft)
		wantErr bool
	}{
		{"valid lent", func(d *Draft) {}, false},
		{"valid lent with deadline", func(d *Draft) { d.ExpectedReturn = &due }, false},
		{"borrowed with deadline", func(d *Draft) { d.Direction = Borrowed; d.ExpectedReturn = &due }, false},
		{"returned with deadline", func(d *Draft) { d.Direction = Returned; d.ExpectedReturn = &due }, true},
		{"repaid with deadline", func(d *Draft) { d.Direction = Repaid; d.ExpectedReturn = &due }, true},
		{"blank name", func(d *Draft) { d.Counterparty = "   " }, true},
		{"zero amount", func(d *Draft) { d.Amount = decimal.Zero }, true},
		{"negative amount", func(d *Draft) { d.Amount = decimal.NewFromInt(-5) }, true},
		{"unknown currency", func(d *Draft) { d.Currency = "XYZ" }, true},
		{"unknown direction", func(d *Draft) { d.Direction = "Gifted" }, true},
		{"missing time", func(d *Draft) { d.OccurredAt = time.Time{} }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := draft("Alice", "100", Lent)
			tt.mutate(&d)

			tx, err := NewTransaction(d)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "Alice", tx.Counterparty)
			assert.NoError(t, tx.Validate())
		})
	}
}

func TestNewTransactionTrimsName(t *testing.T) {
	tx, err := NewTransaction(draft("  Bob ", "12.50", Borrowed))
	require.NoError(t, err)
	assert.Equal(t, "Bob", tx.Counterparty)
}

func TestParseAmount(t *testing.T) {
	amount, err := ParseAmount(" 12.345 ")
	require.NoError(t, err)
	assert.True(t, amount.Equal(decimal.RequireFromString("12.345")))

	_, err = ParseAmount("twelve")
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestParseCurrencyAndDirection(t *testing.T) {
	c, err := ParseCurrency("eur")
	require.NoError(t, err)
	assert.Equal(t, CurrencyEUR, c)
	assert.Equal(t, "€", c.Symbol())

	_, err = ParseCurrency("JPY")
	assert.ErrorIs(t, err, ErrInvalidInput)

	d, err := ParseDirection("returned")
	require.NoError(t, err)
	assert.Equal(t, Returned, d)
	assert.Equal(t, 1, d.Sign())
	assert.Equal(t, -1, Lent.Sign())
	assert.Equal(t, -1, Repaid.Sign())
	assert.Equal(t, 1, Borrowed.Sign())
}

func TestLedgerAppendAssignsStableIDs(t *testing.T) {
	l := New()

	first, err := NewTransaction(draft("Alice", "100", Lent))
	require.NoError(t, err)
	second, err := NewTransaction(draft("Bob", "50", Borrowed))
	require.NoError(t, err)

	id1 := l.Append(first)
	id2 := l.Append(second)

	assert.NotEqual(t, id1, id2)
	assert.Equal(t, 2, l.Len())

	idx, ok := l.IndexOf(id2)
	require.True(t, ok)
	assert.Equal(t, 1, idx)

	got, ok := l.Get(id1)
	require.True(t, ok)
	assert.Equal(t, "Alice", got.Counterparty)
}

func TestFromTransactionsReplacesDuplicateIDs(t *testing.T) {
	tx, err := NewTransaction(draft("Alice", "100", Lent))
	require.NoError(t, err)
	tx.ID = NewID()

	l := FromTransactions([]Transaction{tx, tx})
	require.Equal(t, 2, l.Len())

	a, _ := l.At(0)
	b, _ := l.At(1)
	assert.Equal(t, tx.ID, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestTransactionsReturnsCopies(t *testing.T) {
	due := NewDate(2024, time.March, 1)
	d := draft("Alice", "100", Lent)
	d.ExpectedReturn = &due
	tx, err := NewTransaction(d)
	require.NoError(t, err)

	l := New()
	id := l.Append(tx)

	view := l.Transactions()
	view[0].Counterparty = "Mallory"
	*view[0].ExpectedReturn = NewDate(1999, time.January, 1)

	got, _ := l.Get(id)
	assert.Equal(t, "Alice", got.Counterparty)
	assert.Equal(t, due, *got.ExpectedReturn)
}

func TestEditExpectedReturnDate(t *testing.T) {
	due := NewDate(2024, time.February, 1)
	d := draft("Alice", "100", Lent)
	d.ExpectedReturn = &due
	tx, err := NewTransaction(d)
	require.NoError(t, err)

	l := New()
	id := l.Append(tx)

	now := at("2024-01-20 09:00")
	moved := NewDate(2024, time.February, 15)
	change, err := l.EditExpectedReturnDate(id, moved, now)
	require.NoError(t, err)
	assert.Equal(t, DeadlineChange{OldDate: due, NewDate: moved, ChangedAt: now}, change)

	again := NewDate(2024, time.March, 1)
	_, err = l.EditExpectedReturnDate(id, again, now.Add(time.Hour))
	require.NoError(t, err)

	got, _ := l.Get(id)
	require.Len(t, got.DeadlineHistory, 2)
	assert.Equal(t, moved, got.DeadlineHistory[1].OldDate)
	assert.Equal(t, again, *got.ExpectedReturn)

	_, err = l.EditExpectedReturnDate(id, again, now)
	assert.ErrorIs(t, err, ErrDeadlineUnchanged)
	got, _ = l.Get(id)
	assert.Len(t, got.DeadlineHistory, 2)
}

func TestEditExpectedReturnDateErrors(t *testing.T) {
	l := New()
	tx, err := NewTransaction(draft("Alice", "100", Returned))
	require.NoError(t, err)
	id := l.Append(tx)

	_, err = l.EditExpectedReturnDate(id, NewDate(2024, time.May, 1), time.Now())
	assert.ErrorIs(t, err, ErrNoDeadline)

	_, err = l.EditExpectedReturnDate(NewID(), NewDate(2024, time.May, 1), time.Now())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSetAttachment(t *testing.T) {
	l := New()
	tx, err := NewTransaction(draft("Alice", "100", Lent))
	require.NoError(t, err)
	id := l.Append(tx)

	require.NoError(t, l.SetAttachment(id, "attachments/receipt.png.png"))
	got, _ := l.Get(id)
	assert.True(t, got.HasAttachment())

	require.NoError(t, l.SetAttachment(id, ""))
	got, _ = l.Get(id)
	assert.False(t, got.HasAttachment())

	assert.ErrorIs(t, l.SetAttachment(NewID(), "x"), ErrNotFound)
}

func TestDate(t *testing.T) {
	d, err := ParseDate("2024-02-28")
	require.NoError(t, err)
	assert.Equal(t, "2024-02-28", d.String())

	next := NewDate(2024, time.March, 1)
	assert.Equal(t, 2, d.DaysUntil(next))
	assert.Equal(t, -2, next.DaysUntil(d))
	assert.True(t, d.Before(next))
	assert.True(t, next.After(d))

	_, err = ParseDate("28/02/2024")
	assert.ErrorIs(t, err, ErrInvalidInput)
}
