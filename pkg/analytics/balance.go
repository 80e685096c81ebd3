// Package analytics derives balances, per-person statistics, reconciliation
// and reliability figures from a ledger.
//
// Every function is a pure function of the transactions it is given;
// nothing is cached between calls.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

// signed returns the amount of t with the cash-balance sign of its direction.
func signed(t ledger.Transaction) decimal.Decimal {
	if t.Direction.Sign() < 0 {
		return t.Amount.Neg()
	}
	return t.Amount
}

// Balances returns the signed running total per currency over all transactions.
// Lent and Repaid subtract, Borrowed and Returned add; a negative balance
// means the user is net owed money in that currency. Only currencies that
// appear in txs are present.
func Balances(txs []ledger.Transaction) map[ledger.Currency]decimal.Decimal {
	balances := make(map[ledger.Currency]decimal.Decimal)
	for _, t := range txs {
		balances[t.Currency] = balances[t.Currency].Add(signed(t))
	}
	return balances
}

// CurrencyBalance is the balance of one currency.
type CurrencyBalance struct {
	Currency ledger.Currency `json:"currency"`
	Symbol   string          `json:"symbol"`
	Balance  decimal.Decimal `json:"balance"`
}

// SortedBalances returns Balances ordered by absolute balance, largest first,
// then by currency code.
func SortedBalances(txs []ledger.Transaction) []CurrencyBalance {
	balances := Balances(txs)
	out := make([]CurrencyBalance, 0, len(balances))
	for c, b := range balances {
		out = append(out, CurrencyBalance{Currency: c, Symbol: c.Symbol(), Balance: b})
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Balance.Abs(), out[j].Balance.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].Currency < out[j].Currency
	})
	return out
}

// Totals are the grand sums per direction across all people and currencies.
type Totals struct {
	Lent     decimal.Decimal `json:"lent"`
	Borrowed decimal.Decimal `json:"borrowed"`
	Returned decimal.Decimal `json:"returned"`
	Repaid   decimal.Decimal `json:"repaid"`
}

// ComputeTotals sums amounts per direction. Currencies are mixed, so the
// figures are only meaningful for single-currency ledgers or as a rough scale.
func ComputeTotals(txs []ledger.Transaction) Totals {
	var totals Totals
	for _, t := range txs {
		switch t.Direction {
		case ledger.Lent:
			totals.Lent = totals.Lent.Add(t.Amount)
		case ledger.Borrowed:
			totals.Borrowed = totals.Borrowed.Add(t.Amount)
		case ledger.Returned:
			totals.Returned = totals.Returned.Add(t.Amount)
		case ledger.Repaid:
			totals.Repaid = totals.Repaid.Add(t.Amount)
		}
	}
	return totals
}

// Sample is one point of a balance timeline.
type Sample struct {
	// Index is the position of the transaction in the chronologically
	// sorted ledger, shared across currencies.
	Index   int             `json:"index"`
	Balance decimal.Decimal `json:"balance"`
}

// Timeline replays the ledger in order of occurrence and returns, per
// currency, the running balance after each transaction in that currency.
// Transactions with equal times keep their ledger order.
func Timeline(txs []ledger.Transaction) map[ledger.Currency][]Sample {
	sorted := append([]ledger.Transaction(nil), txs...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccurredAt.Before(sorted[j].OccurredAt)
	})

	result := make(map[ledger.Currency][]Sample)
	running := make(map[ledger.Currency]decimal.Decimal)
	for i, t := range sorted {
		running[t.Currency] = running[t.Currency].Add(signed(t))
		result[t.Currency] = append(result[t.Currency], Sample{Index: i, Balance: running[t.Currency]})
	}
	return result
}
