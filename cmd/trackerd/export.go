package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ayushKhandelwal07/JobhubHq/internal/config"
	"github.com/ayushKhandelwal07/JobhubHq/internal/db"
	"github.com/ayushKhandelwal07/JobhubHq/internal/export"
	"github.com/ayushKhandelwal07/JobhubHq/internal/ledger"
)

var exportOutFile string

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the tracked-jobs ledger as CSV",
	Long:  "Write every tracked job as CSV, newest first, to stdout or to the file given with --out.",
	RunE:  runExport,
}

func init() {
	exportCmd.Flags().StringVarP(&exportOutFile, "out", "o", "", "Path to output CSV file (default: stdout)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx := context.Background()
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()

	led, err := ledger.NewPostgres(ctx, pool)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	records, err := led.List(ctx)
	if err != nil {
		return fmt.Errorf("list: %w", err)
	}

	out := cmd.OutOrStdout()
	if exportOutFile != "" {
		f, err := os.Create(exportOutFile)
		if err != nil {
			return fmt.Errorf("create %s: %w", exportOutFile, err)
		}
		defer f.Close()
		out = f
	}

	if err := export.WriteCSV(out, records); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}
	if exportOutFile != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Wrote %d record(s) to %s\n", len(records), exportOutFile)
	}
	return nil
}
