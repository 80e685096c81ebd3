package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/lendbook/pkg/book"
	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

var (
	addPerson     string
	addAmount     string
	addCurrency   string
	addDirection  string
	addWhen       string
	addDue        string
	addAttachment string
)

// addCmd represents the add command.
var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Record a new transaction",
	Long: `Record money lent, borrowed, returned or repaid.

Directions:
  Lent      you gave money to the person
  Borrowed  the person gave money to you
  Returned  the person paid back money you lent
  Repaid    you paid back money you borrowed

Example:
  lendbook add --person Nino --amount 100 --currency USD --direction Lent --due 2024-02-01
  lendbook add --person Nino --amount 40 --direction Returned --date "2024-01-20 18:30"
  lendbook add --person Giorgi --amount 15.50 --direction Borrowed --attach receipt.jpg`,
	Run: runAdd,
}

func init() {
	addCmd.Flags().StringVar(&addPerson, "person", "", "Counterparty name (required)")
	addCmd.Flags().StringVar(&addAmount, "amount", "", "Positive amount (required)")
	addCmd.Flags().StringVar(&addCurrency, "currency", string(ledger.CurrencyGEL), "Currency code (GEL, USD, EUR, GBP, RUB, Other)")
	addCmd.Flags().StringVar(&addDirection, "direction", string(ledger.Lent), "Lent, Borrowed, Returned or Repaid")
	addCmd.Flags().StringVar(&addWhen, "date", "", "When it happened (YYYY-MM-DD or \"YYYY-MM-DD HH:MM\", default now)")
	addCmd.Flags().StringVar(&addDue, "due", "", "Expected return date (YYYY-MM-DD), Lent and Borrowed only")
	addCmd.Flags().StringVar(&addAttachment, "attach", "", "File to attach")

	addCmd.MarkFlagRequired("person")
	addCmd.MarkFlagRequired("amount")
}

func runAdd(cmd *cobra.Command, args []string) {
	draft, err := parseDraft()
	exitOnError(err, "invalid transaction")

	a := openApp()
	defer a.Close()

	t, err := a.book.Add(draft)
	if errors.Is(err, ledger.ErrInvalidInput) {
		exitOnError(err, "invalid transaction")
	}
	fmt.Printf("Added %s %s %s (%s)\n", t.Direction, formatAmount(t.Amount, t.Currency), t.Counterparty, t.ID)

	var attachErr *book.AttachmentError
	if errors.As(err, &attachErr) {
		fmt.Printf("Warning: saved without attachment: %v\n", attachErr.Err)
	}
	if hasSaveError(err) {
		exitOnError(err, "transaction added but the ledger could not be saved")
	}

	slog.Debug("Transaction added", "id", t.ID)
}

func parseDraft() (ledger.Draft, error) {
	amount, err := ledger.ParseAmount(addAmount)
	if err != nil {
		return ledger.Draft{}, err
	}
	currency, err := ledger.ParseCurrency(addCurrency)
	if err != nil {
		return ledger.Draft{}, err
	}
	direction, err := ledger.ParseDirection(addDirection)
	if err != nil {
		return ledger.Draft{}, err
	}
	when, err := parseWhen(addWhen, time.Now())
	if err != nil {
		return ledger.Draft{}, err
	}

	d := ledger.Draft{
		Counterparty:     addPerson,
		Amount:           amount,
		Currency:         currency,
		Direction:        direction,
		OccurredAt:       when,
		AttachmentSource: addAttachment,
	}
	if addDue != "" {
		due, err := ledger.ParseDate(addDue)
		if err != nil {
			return ledger.Draft{}, err
		}
		d.ExpectedReturn = &due
	}
	return d, nil
}

// parseWhen parses a local date or date and time. An empty value yields now.
func parseWhen(s string, now time.Time) (time.Time, error) {
	if s == "" {
		return now, nil
	}
	for _, layout := range []string{"2006-01-02 15:04", "2006-01-02T15:04", ledger.DateLayout} {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: invalid date %q", ledger.ErrInvalidInput, s)
}
