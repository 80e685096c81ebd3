package analytics

import (
	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

type debtKey struct {
	name     string
	currency ledger.Currency
}

// PaidBack returns the IDs of Lent and Borrowed transactions considered
// settled.
//
// For each (counterparty, currency) pair all Returned and Repaid amounts are
// pooled. The pair's debts are then walked in ledger order, each one that
// fits in the remaining pool is marked and deducted, and the first debt that
// does not fit ends the walk for that pair. Later, smaller debts are never
// marked past that point.
func PaidBack(txs []ledger.Transaction) map[ledger.ID]bool {
	var order []debtKey
	debts := make(map[debtKey][]ledger.Transaction)
	pool := make(map[debtKey]decimal.Decimal)

	for _, t := range txs {
		key := debtKey{name: t.Counterparty, currency: t.Currency}
		if _, seen := pool[key]; !seen {
			pool[key] = decimal.Zero
			order = append(order, key)
		}
		switch {
		case t.Direction.IsDebt():
			debts[key] = append(debts[key], t)
		case t.Direction.IsSettlement():
			pool[key] = pool[key].Add(t.Amount)
		}
	}

	paid := make(map[ledger.ID]bool)
	for _, key := range order {
		available := pool[key]
		for _, d := range debts[key] {
			if available.LessThan(d.Amount) {
				break
			}
			paid[d.ID] = true
			available = available.Sub(d.Amount)
		}
	}
	return paid
}
