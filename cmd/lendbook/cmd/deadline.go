package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

// deadlineCmd represents the deadline command.
var deadlineCmd = &cobra.Command{
	Use:   "deadline <transaction> <YYYY-MM-DD>",
	Short: "Change the expected return date of a loan",
	Long: `Change the expected return date of a Lent or Borrowed transaction.
Every change is kept in the transaction's deadline history.

The transaction is a full ID or the # position shown by list.

Example:
  lendbook deadline 3 2024-03-01`,
	Args: cobra.ExactArgs(2),
	Run:  runDeadline,
}

func runDeadline(cmd *cobra.Command, args []string) {
	due, err := ledger.ParseDate(args[1])
	exitOnError(err, "invalid date")

	a := openApp()
	defer a.Close()

	id, err := a.book.Resolve(args[0])
	exitOnError(err, "unknown transaction")

	change, err := a.book.EditExpectedReturnDate(id, due)
	if errors.Is(err, ledger.ErrDeadlineUnchanged) {
		fmt.Println("Expected return date unchanged")
		return
	}
	if hasSaveError(err) {
		fmt.Printf("Expected return date changed from %s to %s\n", change.OldDate, change.NewDate)
	}
	exitOnError(err, "failed to change expected return date")

	fmt.Printf("Expected return date changed from %s to %s\n", change.OldDate, change.NewDate)
}
