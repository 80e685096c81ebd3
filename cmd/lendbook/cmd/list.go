package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

var (
	listQuery string
	listSort  string
)

// listCmd represents the list command.
var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List transactions",
	Long: `List transactions, optionally filtered and sorted.

The query matches person names, amounts and directions case-insensitively.
The # column is the position used by the deadline and attach commands.

Sort orders: date-newest, date-oldest, amount-highest, amount-lowest, person.

Example:
  lendbook list
  lendbook list --query nino --sort amount-highest`,
	Run: runList,
}

func init() {
	listCmd.Flags().StringVarP(&listQuery, "query", "q", "", "Free-text filter")
	listCmd.Flags().StringVar(&listSort, "sort", string(ledger.SortDateNewest), "Sort order")
}

func runList(cmd *cobra.Command, args []string) {
	by, ok := ledger.ParseSortBy(listSort)
	if !ok {
		exitOnError(fmt.Errorf("%w: unknown sort %q", ledger.ErrInvalidInput, listSort), "invalid sort")
	}

	a := openApp()
	defer a.Close()

	positions := make(map[ledger.ID]int)
	for i, t := range a.book.Snapshot() {
		positions[t.ID] = i + 1
	}
	paid := a.book.PaidBack()
	txs := a.book.Query(listQuery, by)

	if len(txs) == 0 {
		fmt.Println("No transactions")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "#\tDATE\tPERSON\tDIRECTION\tAMOUNT\tDUE\tPAID\tATTACHMENT")
	for _, t := range txs {
		status := ""
		if paid[t.ID] {
			status = "yes"
		}
		attached := ""
		if t.HasAttachment() {
			attached = t.AttachmentPath
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			positions[t.ID],
			t.OccurredAt.Format("2006-01-02 15:04"),
			t.Counterparty,
			t.Direction,
			formatAmount(t.Amount, t.Currency),
			formatDue(t),
			status,
			attached,
		)
	}
	w.Flush()
}
