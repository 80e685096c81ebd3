package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

// outstandingThreshold hides balances that are effectively settled.
var outstandingThreshold = decimal.RequireFromString("0.01")

// PersonStats are the accumulated figures for one counterparty.
type PersonStats struct {
	Name     string
	Lent     decimal.Decimal
	Borrowed decimal.Decimal
	Returned decimal.Decimal
	Repaid   decimal.Decimal
	// Outstanding is (lent - returned) - (borrowed - repaid). Positive means
	// the counterparty owes the user.
	Outstanding decimal.Decimal
	// LentTransactions and ReturnTransactions keep ledger order.
	LentTransactions   []ledger.Transaction
	ReturnTransactions []ledger.Transaction
	Currencies         map[ledger.Currency]struct{}
	// DeadlineChanges counts edits of expected return dates across the person's transactions.
	DeadlineChanges int
}

// CurrencyList returns the person's currencies in declaration order.
func (p *PersonStats) CurrencyList() []ledger.Currency {
	var out []ledger.Currency
	for _, c := range ledger.Currencies() {
		if _, ok := p.Currencies[c]; ok {
			out = append(out, c)
		}
	}
	return out
}

// ReturnRate returns returned/lent as a percentage. It is not computable
// when nothing was lent.
func (p *PersonStats) ReturnRate() (float64, bool) {
	if !p.Lent.IsPositive() {
		return 0, false
	}
	rate, _ := p.Returned.Div(p.Lent).Mul(decimal.NewFromInt(100)).Float64()
	return rate, true
}

// People groups transactions by counterparty name.
func People(txs []ledger.Transaction) map[string]*PersonStats {
	people := make(map[string]*PersonStats)
	for _, t := range txs {
		p, ok := people[t.Counterparty]
		if !ok {
			p = &PersonStats{Name: t.Counterparty, Currencies: make(map[ledger.Currency]struct{})}
			people[t.Counterparty] = p
		}

		p.Currencies[t.Currency] = struct{}{}
		p.DeadlineChanges += len(t.DeadlineHistory)

		switch t.Direction {
		case ledger.Lent:
			p.Lent = p.Lent.Add(t.Amount)
			p.Outstanding = p.Outstanding.Add(t.Amount)
			p.LentTransactions = append(p.LentTransactions, t)
		case ledger.Borrowed:
			p.Borrowed = p.Borrowed.Add(t.Amount)
			p.Outstanding = p.Outstanding.Sub(t.Amount)
		case ledger.Returned:
			p.Returned = p.Returned.Add(t.Amount)
			p.Outstanding = p.Outstanding.Sub(t.Amount)
			p.ReturnTransactions = append(p.ReturnTransactions, t)
		case ledger.Repaid:
			p.Repaid = p.Repaid.Add(t.Amount)
			p.Outstanding = p.Outstanding.Add(t.Amount)
		}
	}
	return people
}

// PersonValue pairs a counterparty with a figure for charting.
type PersonValue struct {
	Name  string          `json:"name"`
	Value decimal.Decimal `json:"value"`
}

// OutstandingByPerson returns people with a non-negligible outstanding
// balance, largest absolute balance first.
func OutstandingByPerson(txs []ledger.Transaction) []PersonValue {
	var out []PersonValue
	for name, p := range People(txs) {
		if p.Outstanding.Abs().GreaterThan(outstandingThreshold) {
			out = append(out, PersonValue{Name: name, Value: p.Outstanding})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		ai, aj := out[i].Value.Abs(), out[j].Value.Abs()
		if !ai.Equal(aj) {
			return ai.GreaterThan(aj)
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PersonRate pairs a counterparty with a percentage.
type PersonRate struct {
	Name string  `json:"name"`
	Rate float64 `json:"rate"`
}

// ReturnRates returns the return rate of everyone the user lent to,
// highest first.
func ReturnRates(txs []ledger.Transaction) []PersonRate {
	var out []PersonRate
	for name, p := range People(txs) {
		if rate, ok := p.ReturnRate(); ok {
			out = append(out, PersonRate{Name: name, Rate: rate})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Rate != out[j].Rate {
			return out[i].Rate > out[j].Rate
		}
		return out[i].Name < out[j].Name
	})
	return out
}

// PersonReport is the presentation-ready summary of one counterparty.
// Pointer fields are nil when the figure is not computable.
type PersonReport struct {
	Name            string            `json:"name"`
	Currencies      []ledger.Currency `json:"currencies"`
	Lent            decimal.Decimal   `json:"lent"`
	Borrowed        decimal.Decimal   `json:"borrowed"`
	Returned        decimal.Decimal   `json:"returned"`
	Repaid          decimal.Decimal   `json:"repaid"`
	Outstanding     decimal.Decimal   `json:"outstanding"`
	ReturnRate      *float64          `json:"return_rate"`
	AvgReturnDays   *float64          `json:"avg_return_days"`
	Promises        *PromiseRate      `json:"promises"`
	DeadlineChanges int               `json:"deadline_changes"`
}

// Report summarises every counterparty, ordered by name.
func Report(txs []ledger.Transaction) []PersonReport {
	people := People(txs)

	names := make([]string, 0, len(people))
	for name := range people {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]PersonReport, 0, len(names))
	for _, name := range names {
		p := people[name]
		r := PersonReport{
			Name:            name,
			Currencies:      p.CurrencyList(),
			Lent:            p.Lent,
			Borrowed:        p.Borrowed,
			Returned:        p.Returned,
			Repaid:          p.Repaid,
			Outstanding:     p.Outstanding,
			DeadlineChanges: p.DeadlineChanges,
		}
		if rate, ok := p.ReturnRate(); ok {
			r.ReturnRate = &rate
		}
		if days, ok := AverageReturnDays(p.LentTransactions, p.ReturnTransactions); ok {
			r.AvgReturnDays = &days
		}
		if promises, ok := PromiseKeeping(p.LentTransactions, p.ReturnTransactions); ok {
			r.Promises = &promises
		}
		out = append(out, r)
	}
	return out
}
