// Package scheduler wires up the cron job that periodically re-pushes
// unsynced records to the application backend.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ayushKhandelwal07/JobhubHq/internal/syncer"
)

const sweepTimeout = 2 * time.Minute

// Policy controls the sweep cadence. Jitter spreads the actual run inside
// each tick so a laptop waking many daemons does not hammer the backend at
// the same instant.
type Policy struct {
	Interval time.Duration
	Jitter   time.Duration
}

// Spec renders the policy as a cron spec, e.g. "@every 30m".
func (p Policy) Spec() string {
	return fmt.Sprintf("@every %s", p.Interval)
}

// Scheduler wraps robfig/cron and manages the sync sweep loop.
type Scheduler struct {
	cron   *cron.Cron
	engine *syncer.Engine
	policy Policy
}

// New creates a Scheduler that sweeps on the given policy.
func New(engine *syncer.Engine, policy Policy) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithLogger(cron.DefaultLogger)),
		engine: engine,
		policy: policy,
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so records tracked while the daemon was down don't wait for
// the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.policy.Spec(), func() {
		s.runSweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Printf("[scheduler] Cron started — spec: %s", s.policy.Spec())

	// Run immediately on startup (non-blocking)
	go s.runSweep(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Scheduler) Stop() {
	s.cron.Stop()
	log.Println("[scheduler] Cron stopped")
}

// runSweep pushes unsynced records once. Permanent failures (bad
// credential, rejected payload) are left for an explicit user retry.
func (s *Scheduler) runSweep(ctx context.Context) {
	if s.policy.Jitter > 0 {
		delay := time.Duration(rand.Int63n(int64(s.policy.Jitter)))
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return
		}
	}

	log.Println("[scheduler] Sync sweep started")

	sctx, cancel := context.WithTimeout(ctx, sweepTimeout)
	defer cancel()

	report, err := s.engine.Resync(sctx, false)
	if err != nil {
		log.Printf("[scheduler] Sweep error: %v", err)
		return
	}

	if report.Attempted == 0 {
		log.Println("[scheduler] Nothing to sweep")
		return
	}
	log.Printf("[scheduler] Sweep complete — attempted: %d, synced: %d, transient: %d",
		report.Attempted, report.Synced, report.TransientFailures)
}
