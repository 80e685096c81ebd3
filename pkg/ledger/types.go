// Package ledger provides the transaction model of the lending ledger.
package ledger

import (
	"fmt"
	"strings"
)

// Currency is the denomination of a transaction.
type Currency string

const (
	CurrencyGEL   Currency = "GEL"
	CurrencyUSD   Currency = "USD"
	CurrencyEUR   Currency = "EUR"
	CurrencyGBP   Currency = "GBP"
	CurrencyRUB   Currency = "RUB"
	CurrencyOther Currency = "Other"
)

var currencySymbols = map[Currency]string{
	CurrencyGEL:   "₾",
	CurrencyUSD:   "$",
	CurrencyEUR:   "€",
	CurrencyGBP:   "£",
	CurrencyRUB:   "₽",
	CurrencyOther: "¤",
}

// Currencies returns every supported currency in declaration order.
func Currencies() []Currency {
	return []Currency{CurrencyGEL, CurrencyUSD, CurrencyEUR, CurrencyGBP, CurrencyRUB, CurrencyOther}
}

// Symbol returns the display symbol of the currency.
func (c Currency) Symbol() string {
	if s, ok := currencySymbols[c]; ok {
		return s
	}
	return currencySymbols[CurrencyOther]
}

// Valid reports whether c is one of the supported currencies.
func (c Currency) Valid() bool {
	_, ok := currencySymbols[c]
	return ok
}

// ParseCurrency parses a currency code case-insensitively.
func ParseCurrency(s string) (Currency, error) {
	for _, c := range Currencies() {
		if strings.EqualFold(string(c), strings.TrimSpace(s)) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: unknown currency %q", ErrInvalidInput, s)
}

// Direction describes which way money moved relative to the user.
type Direction string

const (
	// Lent means the user gave money to the counterparty.
	Lent Direction = "Lent"
	// Borrowed means the user took money from the counterparty.
	Borrowed Direction = "Borrowed"
	// Returned means the counterparty paid back money the user lent.
	Returned Direction = "Returned"
	// Repaid means the user paid back money they borrowed.
	Repaid Direction = "Repaid"
)

// Directions returns every direction in declaration order.
func Directions() []Direction {
	return []Direction{Lent, Borrowed, Returned, Repaid}
}

// Valid reports whether d is a known direction.
func (d Direction) Valid() bool {
	switch d {
	case Lent, Borrowed, Returned, Repaid:
		return true
	}
	return false
}

// Sign returns the effect of the direction on the user's cash balance:
// -1 for money leaving the user, +1 for money arriving.
func (d Direction) Sign() int {
	switch d {
	case Borrowed, Returned:
		return 1
	case Lent, Repaid:
		return -1
	}
	return 0
}

// IsDebt reports whether the direction opens a debt (Lent or Borrowed).
func (d Direction) IsDebt() bool {
	return d == Lent || d == Borrowed
}

// IsSettlement reports whether the direction settles a debt (Returned or Repaid).
func (d Direction) IsSettlement() bool {
	return d == Returned || d == Repaid
}

// ParseDirection parses a direction name case-insensitively.
func ParseDirection(s string) (Direction, error) {
	for _, d := range Directions() {
		if strings.EqualFold(string(d), strings.TrimSpace(s)) {
			return d, nil
		}
	}
	return "", fmt.Errorf("%w: unknown direction %q", ErrInvalidInput, s)
}
