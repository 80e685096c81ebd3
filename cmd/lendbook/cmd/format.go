package cmd

import (
	"errors"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
	"github.com/shunichi-ikebuchi/lendbook/pkg/store"
)

func formatAmount(amount decimal.Decimal, currency ledger.Currency) string {
	return currency.Symbol() + amount.StringFixed(2)
}

func formatDue(t ledger.Transaction) string {
	if t.ExpectedReturn == nil {
		return "-"
	}
	return t.ExpectedReturn.String()
}

func formatOptional(v *float64, suffix string) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%s", *v, suffix)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func hasSaveError(err error) bool {
	var saveErr *store.SaveError
	return errors.As(err, &saveErr)
}
