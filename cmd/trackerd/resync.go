package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ayushKhandelwal07/JobhubHq/internal/config"
	"github.com/ayushKhandelwal07/JobhubHq/internal/db"
	"github.com/ayushKhandelwal07/JobhubHq/internal/ledger"
	"github.com/ayushKhandelwal07/JobhubHq/internal/settings"
	"github.com/ayushKhandelwal07/JobhubHq/internal/syncer"
)

var resyncCmd = &cobra.Command{
	Use:   "resync",
	Short: "Push every record that is not synced yet",
	Long:  "Re-run the sync push for every tracked job whose sync status is not synced, including past auth and validation failures.",
	RunE:  runResync,
}

func init() {
	rootCmd.AddCommand(resyncCmd)
}

func runResync(cmd *cobra.Command, _ []string) error {
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
	store, err := settings.NewStore(ctx, pool)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	engine := syncer.NewEngine(syncer.NewClient(cfg.SyncBaseURL), led, store)
	report, err := engine.Resync(ctx, true)
	if err != nil {
		return fmt.Errorf("resync: %w", err)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "attempted:          %d\n", report.Attempted)
	fmt.Fprintf(out, "synced:             %d\n", report.Synced)
	fmt.Fprintf(out, "skipped:            %d\n", report.Skipped)
	fmt.Fprintf(out, "auth failed:        %d\n", report.AuthFailed)
	fmt.Fprintf(out, "invalid data:       %d\n", report.InvalidData)
	fmt.Fprintf(out, "transient failures: %d\n", report.TransientFailures)
	return nil
}
