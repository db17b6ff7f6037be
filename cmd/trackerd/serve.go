package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ayushKhandelwal07/JobhubHq/internal/config"
	"github.com/ayushKhandelwal07/JobhubHq/internal/db"
	"github.com/ayushKhandelwal07/JobhubHq/internal/extract"
	"github.com/ayushKhandelwal07/JobhubHq/internal/ledger"
	"github.com/ayushKhandelwal07/JobhubHq/internal/notify"
	"github.com/ayushKhandelwal07/JobhubHq/internal/platform"
	"github.com/ayushKhandelwal07/JobhubHq/internal/scheduler"
	"github.com/ayushKhandelwal07/JobhubHq/internal/settings"
	"github.com/ayushKhandelwal07/JobhubHq/internal/syncer"
	"github.com/ayushKhandelwal07/JobhubHq/internal/tracker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the tracker daemon",
	Long:  "Start the local HTTP API, the badge/notification publisher and the periodic sync sweep.",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(_ *cobra.Command, _ []string) error {
	// ── Config ──────────────────────────────────────────────────────────────
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ── PostgreSQL ───────────────────────────────────────────────────────────
	log.Println("[trackerd] Connecting to PostgreSQL…")
	pool, err := db.NewPostgresPool(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("postgres: %w", err)
	}
	defer pool.Close()
	log.Println("[trackerd] PostgreSQL connected ✓")

	// ── Redis ────────────────────────────────────────────────────────────────
	log.Println("[trackerd] Connecting to Redis…")
	rdb, err := db.NewRedisClient(ctx, cfg.RedisURL)
	if err != nil {
		return fmt.Errorf("redis: %w", err)
	}
	defer rdb.Close()
	log.Println("[trackerd] Redis connected ✓")

	// ── Stores ───────────────────────────────────────────────────────────────
	led, err := ledger.NewPostgres(ctx, pool)
	if err != nil {
		return fmt.Errorf("ledger: %w", err)
	}
	store, err := settings.NewStore(ctx, pool)
	if err != nil {
		return fmt.Errorf("settings: %w", err)
	}

	rules := platform.Default()
	if cfg.PlatformRulesPath != "" {
		rules, err = platform.Load(cfg.PlatformRulesPath)
		if err != nil {
			return fmt.Errorf("platform rules: %w", err)
		}
		log.Printf("[trackerd] Platform rules loaded from %s", cfg.PlatformRulesPath)
	}

	// ── Tracking core ────────────────────────────────────────────────────────
	engine := syncer.NewEngine(syncer.NewClient(cfg.SyncBaseURL), led, store)
	notifier := notify.NewRedis(rdb)
	svc := tracker.NewService(rules, led, store, engine, notifier, extract.NewPage(), extract.NewFetcher())

	// ── HTTP server ──────────────────────────────────────────────────────────
	mux := http.NewServeMux()
	mux.HandleFunc("/health", healthHandler)

	h := tracker.NewHandler(svc, store, engine)
	h.RegisterRoutes(mux)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	go func() {
		log.Printf("[trackerd] v%s listening on :%s", version, cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("[trackerd] HTTP server error: %v", err)
		}
	}()

	// ── Sync sweep ───────────────────────────────────────────────────────────
	sched := scheduler.New(engine, scheduler.Policy{
		Interval: time.Duration(cfg.ResyncIntervalMinutes) * time.Minute,
		Jitter:   time.Duration(cfg.ResyncJitterSeconds) * time.Second,
	})
	if err := sched.Start(ctx); err != nil {
		return fmt.Errorf("scheduler: %w", err)
	}

	// ── Graceful shutdown ────────────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[trackerd] Shutting down…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[trackerd] Shutdown error: %v", err)
	}
	sched.Stop()
	svc.Drain()
	log.Println("[trackerd] Stopped.")
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{
		"status":  "ok",
		"service": "trackerd",
		"version": version,
	})
}
