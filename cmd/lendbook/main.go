// Package main is the entry point for the lendbook CLI.
package main

import (
	"os"

	"github.com/shunichi-ikebuchi/lendbook/cmd/lendbook/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
