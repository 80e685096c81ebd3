// Package cmd provides CLI commands for lendbook.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

var (
	cfgFile      string
	settingsFile string
	debug        bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "lendbook",
	Short: "Track money lent to and borrowed from people",
	Long: `lendbook is a personal ledger of money lent to and borrowed from
other people, with balances per currency and per person.

It supports:
- Recording loans, borrowings, returns and repayments
- Expected return dates with an audit trail of changes
- Attachments copied into managed storage
- Automatic backups and recovery of the ledger file
- A local HTTP API

Example:
  lendbook add --person Nino --amount 100 --currency USD --direction Lent --due 2024-02-01
  lendbook balances
  lendbook serve`,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logLevel := slog.LevelInfo
		if debug {
			logLevel = slog.LevelDebug
		}

		logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: logLevel,
		}))
		slog.SetDefault(logger)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .env)")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "YAML settings file overlaid on the environment")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "enable debug logging")

	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(deadlineCmd)
	rootCmd.AddCommand(attachCmd)
	rootCmd.AddCommand(balancesCmd)
	rootCmd.AddCommand(peopleCmd)
	rootCmd.AddCommand(timelineCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(serveCmd)
}

// Helper function to get config file path.
func getConfigFile() string {
	return cfgFile
}

// Helper function to handle errors and exit.
func exitOnError(err error, msg string) {
	if err != nil {
		slog.Error(msg, "error", err)
		fmt.Fprintf(os.Stderr, "Error: %s: %v\n", msg, err)
		os.Exit(1)
	}
}
