package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/lendbook/pkg/ledger"
)

// balancesCmd represents the balances command.
var balancesCmd = &cobra.Command{
	Use:   "balances",
	Short: "Show the balance per currency",
	Long: `Show the net balance per currency and the totals per direction.

A positive balance means you hold other people's money; a negative balance
means money is owed to you.

Example:
  lendbook balances`,
	Run: runBalances,
}

// peopleCmd represents the people command.
var peopleCmd = &cobra.Command{
	Use:   "people",
	Short: "Show statistics per person",
	Long: `Show per-person sums, outstanding balance, return rate, average days to
return and how often promised return dates were kept.

Example:
  lendbook people`,
	Run: runPeople,
}

// timelineCmd represents the timeline command.
var timelineCmd = &cobra.Command{
	Use:   "timeline",
	Short: "Show the running balance per currency",
	Long: `Replay the ledger in order of occurrence and show the running balance
of each currency after every transaction.

Example:
  lendbook timeline`,
	Run: runTimeline,
}

func runBalances(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	balances := a.book.Balances()
	if len(balances) == 0 {
		fmt.Println("No transactions")
		return
	}

	fmt.Println("\n=== Balances ===")
	w := newTable()
	for _, b := range balances {
		fmt.Fprintf(w, "%s\t%s\n", b.Currency, formatAmount(b.Balance, b.Currency))
	}
	w.Flush()

	totals := a.book.Totals()
	fmt.Println("\n=== Totals (all currencies) ===")
	w = newTable()
	fmt.Fprintf(w, "Lent:\t%s\n", totals.Lent.StringFixed(2))
	fmt.Fprintf(w, "Borrowed:\t%s\n", totals.Borrowed.StringFixed(2))
	fmt.Fprintf(w, "Returned:\t%s\n", totals.Returned.StringFixed(2))
	fmt.Fprintf(w, "Repaid:\t%s\n", totals.Repaid.StringFixed(2))
	w.Flush()

	if outstanding := a.book.Outstanding(); len(outstanding) > 0 {
		fmt.Println("\n=== Outstanding ===")
		w = newTable()
		for _, p := range outstanding {
			fmt.Fprintf(w, "%s\t%s\n", p.Name, p.Value.StringFixed(2))
		}
		w.Flush()
	}
	fmt.Println()
}

func runPeople(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	people := a.book.People()
	if len(people) == 0 {
		fmt.Println("No transactions")
		return
	}

	w := newTable()
	fmt.Fprintln(w, "PERSON\tCURRENCIES\tLENT\tBORROWED\tRETURNED\tREPAID\tOUTSTANDING\tRETURN RATE\tAVG DAYS\tPROMISES\tDEADLINE CHANGES")
	for _, p := range people {
		currencies := make([]string, len(p.Currencies))
		for i, c := range p.Currencies {
			currencies[i] = string(c)
		}
		promises := "n/a"
		if p.Promises != nil {
			promises = fmt.Sprintf("%d/%d (%.0f%%)", p.Promises.Kept, p.Promises.Total, p.Promises.Percent())
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d\n",
			p.Name,
			strings.Join(currencies, ","),
			p.Lent.StringFixed(2),
			p.Borrowed.StringFixed(2),
			p.Returned.StringFixed(2),
			p.Repaid.StringFixed(2),
			p.Outstanding.StringFixed(2),
			formatOptional(p.ReturnRate, "%"),
			formatOptional(p.AvgReturnDays, ""),
			promises,
			p.DeadlineChanges,
		)
	}
	w.Flush()
}

func runTimeline(cmd *cobra.Command, args []string) {
	a := openApp()
	defer a.Close()

	timeline := a.book.Timeline()
	if len(timeline) == 0 {
		fmt.Println("No transactions")
		return
	}

	currencies := make([]ledger.Currency, 0, len(timeline))
	for c := range timeline {
		currencies = append(currencies, c)
	}
	sort.Slice(currencies, func(i, j int) bool { return currencies[i] < currencies[j] })

	for _, c := range currencies {
		fmt.Printf("\n=== %s ===\n", c)
		w := newTable()
		for _, s := range timeline[c] {
			fmt.Fprintf(w, "%d\t%s\n", s.Index+1, formatAmount(s.Balance, c))
		}
		w.Flush()
	}
	fmt.Println()
}
