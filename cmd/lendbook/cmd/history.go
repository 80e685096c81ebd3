package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shunichi-ikebuchi/lendbook/pkg/db"
	"github.com/shunichi-ikebuchi/lendbook/pkg/pathutil"
)

var historyLimit int

// historyCmd represents the history command.
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Display persistence statistics",
	Long: `Display statistics about saves, recoveries and attachments recorded in
the history database, followed by the most recent saves.

Example:
  lendbook history
  lendbook history --limit 20`,
	Run: runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 10, "Number of recent saves to show")
}

func runHistory(cmd *cobra.Command, args []string) {
	cfg := loadConfig()
	pathResolver := pathutil.New(cfg.PathConfig())

	conn, err := db.Open(pathResolver.GetDatabasePath())
	exitOnError(err, "failed to open database")
	defer conn.Close()

	history := db.NewHistory(conn)

	stats, err := history.GetStats()
	exitOnError(err, "failed to get statistics")

	fmt.Println("\n=== Persistence Statistics ===")
	fmt.Printf("Database:          %s\n", conn.GetPath())
	fmt.Printf("Total saves:       %d\n", stats.TotalSaves)
	fmt.Printf("Failed saves:      %d\n", stats.FailedSaves)
	fmt.Printf("Recoveries:        %d\n", stats.TotalRecoveries)
	fmt.Printf("Attachments:       %d\n", stats.TotalAttachments)
	if stats.LastSave.Valid {
		fmt.Printf("Last save:         %s\n", stats.LastSave.String)
	} else {
		fmt.Printf("Last save:         (never)\n")
	}

	saves, err := history.RecentSaves(historyLimit)
	exitOnError(err, "failed to get save history")
	if len(saves) > 0 {
		fmt.Println("\n=== Recent Saves ===")
		w := newTable()
		for _, s := range saves {
			result := "ok"
			if !s.Succeeded() {
				result = fmt.Sprintf("failed at %s: %s", s.FailedStep, s.Error)
			}
			fmt.Fprintf(w, "%s\t%d transactions\tpruned %d\t%s\n",
				s.SavedAt.Local().Format("2006-01-02 15:04:05"), s.Transactions, s.Pruned, result)
		}
		w.Flush()
	}
	fmt.Println()
}
