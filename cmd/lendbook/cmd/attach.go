package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var attachClear bool

// attachCmd represents the attach command.
var attachCmd = &cobra.Command{
	Use:   "attach <transaction> [file]",
	Short: "Attach a file to a transaction",
	Long: `Copy a file into attachment storage and reference it from a transaction.
With --clear the reference is removed; the stored copy stays on disk.

The transaction is a full ID or the # position shown by list.

Example:
  lendbook attach 3 receipt.jpg
  lendbook attach 3 --clear`,
	Args: cobra.RangeArgs(1, 2),
	Run:  runAttach,
}

func init() {
	attachCmd.Flags().BoolVar(&attachClear, "clear", false, "Remove the attachment reference")
}

func runAttach(cmd *cobra.Command, args []string) {
	if !attachClear && len(args) != 2 {
		exitOnError(fmt.Errorf("a file is required unless --clear is set"), "invalid arguments")
	}

	a := openApp()
	defer a.Close()

	id, err := a.book.Resolve(args[0])
	exitOnError(err, "unknown transaction")

	if attachClear {
		exitOnError(a.book.ClearAttachment(id), "failed to clear attachment")
		fmt.Println("Attachment removed")
		return
	}

	stored, err := a.book.SetAttachment(id, args[1])
	exitOnError(err, "failed to attach file")
	fmt.Printf("Attached %s\n", stored)
}
