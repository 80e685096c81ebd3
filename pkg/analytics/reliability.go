package analytics

import (
	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

// AverageReturnDays returns the mean number of days between each return and
// the most recent loan made at or before it. Returns without an earlier loan
// are skipped. It is not computable when either list is empty or no return
// has an eligible loan.
func AverageReturnDays(lent, returned []ledger.Transaction) (float64, bool) {
	if len(lent) == 0 || len(returned) == 0 {
		return 0, false
	}

	total, count := 0, 0
	for _, ret := range returned {
		var match *ledger.Transaction
		for i := range lent {
			l := &lent[i]
			if l.OccurredAt.After(ret.OccurredAt) {
				continue
			}
			// On equal times the later ledger entry wins.
			if match == nil || !l.OccurredAt.Before(match.OccurredAt) {
				match = l
			}
		}
		if match == nil {
			continue
		}
		total += ledger.DateOf(match.OccurredAt).DaysUntil(ledger.DateOf(ret.OccurredAt))
		count++
	}

	if count == 0 {
		return 0, false
	}
	return float64(total) / float64(count), true
}

// PromiseRate counts loans whose first return arrived by the expected date.
type PromiseRate struct {
	Kept  int `json:"kept"`
	Total int `json:"total"`
}

// Percent returns Kept/Total as a percentage.
func (p PromiseRate) Percent() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Kept) / float64(p.Total) * 100
}

// PromiseKeeping evaluates every loan with an expected return date against
// the earliest return made at or after the loan. The promise is kept when
// that return's date is on or before the expected date.
//
// Returns are not consumed: one return can count as the first return after
// several loans. It is not computable when no loan has an expected date.
func PromiseKeeping(lent, returned []ledger.Transaction) (PromiseRate, bool) {
	var rate PromiseRate
	for _, loan := range lent {
		if loan.ExpectedReturn == nil {
			continue
		}
		rate.Total++

		var first *ledger.Transaction
		for i := range returned {
			r := &returned[i]
			if r.OccurredAt.Before(loan.OccurredAt) {
				continue
			}
			// On equal times the earlier ledger entry wins.
			if first == nil || r.OccurredAt.Before(first.OccurredAt) {
				first = r
			}
		}
		if first != nil && !ledger.DateOf(first.OccurredAt).After(*loan.ExpectedReturn) {
			rate.Kept++
		}
	}

	if rate.Total == 0 {
		return PromiseRate{}, false
	}
	return rate, true
}
