package ledger

import (
	"sort"
	"strings"
)

// SortBy selects the ordering of a transaction listing.
type SortBy string

const (
	SortDateNewest    SortBy = "date-newest"
	SortDateOldest    SortBy = "date-oldest"
	SortAmountHighest SortBy = "amount-highest"
	SortAmountLowest  SortBy = "amount-lowest"
	SortPerson        SortBy = "person"
)

// ParseSortBy parses a sort key; the empty string selects SortDateNewest.
func ParseSortBy(s string) (SortBy, bool) {
	switch SortBy(s) {
	case "":
		return SortDateNewest, true
	case SortDateNewest, SortDateOldest, SortAmountHighest, SortAmountLowest, SortPerson:
		return SortBy(s), true
	}
	return "", false
}

// Filter returns the transactions matching query, keeping their order.
// The query is matched case-insensitively against the counterparty name,
// the amount with two decimals and the direction name.
func Filter(txs []Transaction, query string) []Transaction {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]Transaction(nil), txs...)
	}

	var out []Transaction
	for _, t := range txs {
		if strings.Contains(strings.ToLower(t.Counterparty), q) ||
			strings.Contains(t.Amount.StringFixed(2), q) ||
			strings.Contains(strings.ToLower(string(t.Direction)), q) {
			out = append(out, t)
		}
	}
	return out
}

// Sort orders txs in place. Equal keys keep their relative order.
func Sort(txs []Transaction, by SortBy) {
	var less func(a, b Transaction) bool
	switch by {
	case SortDateOldest:
		less = func(a, b Transaction) bool { return a.OccurredAt.Before(b.OccurredAt) }
	case SortAmountHighest:
		less = func(a, b Transaction) bool { return a.Amount.GreaterThan(b.Amount) }
	case SortAmountLowest:
		less = func(a, b Transaction) bool { return a.Amount.LessThan(b.Amount) }
	case SortPerson:
		less = func(a, b Transaction) bool { return a.Counterparty < b.Counterparty }
	default:
		less = func(a, b Transaction) bool { return a.OccurredAt.After(b.OccurredAt) }
	}
	sort.SliceStable(txs, func(i, j int) bool { return less(txs[i], txs[j]) })
}
