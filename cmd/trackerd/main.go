// Package main provides the entry point for trackerd, the local job
// tracking daemon the browser extension talks to.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

const version = "1.0.0"

var rootCmd = &cobra.Command{
	Use:   "trackerd",
	Short: "Local job tracking daemon",
	Long:  "trackerd records job postings captured in the browser, keeps them in a local ledger and pushes them to the application backend when sync is enabled.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
