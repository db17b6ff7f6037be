package syncer

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
	"github.com/ayushKhandelwal07/JobhubHq/internal/ledger"
	"github.com/ayushKhandelwal07/JobhubHq/internal/settings"
)

// Outcome classifies one sync attempt.
type Outcome string

const (
	OutcomeSynced           Outcome = "synced"
	OutcomeSkipped          Outcome = "skipped"
	OutcomeAuthFailed       Outcome = "auth_failed"
	OutcomeInvalidData      Outcome = "invalid_data"
	OutcomeTransientFailure Outcome = "transient_failure"
)

// Sync error reasons stored on the record. The two permanent reasons are
// fixed strings so the sweep can tell permanent failures from transient
// ones without a separate column.
const (
	ReasonAuthFailed  = "authentication failed"
	ReasonInvalidData = "invalid job data"
)

const resyncConcurrency = 4

// Engine performs single-attempt pushes of ledger records to the remote
// service. It never deletes or rolls back a local record: a failed push
// only flips the record's sync fields.
type Engine struct {
	client   *Client
	ledger   ledger.Ledger
	settings settings.Source
}

func NewEngine(client *Client, led ledger.Ledger, src settings.Source) *Engine {
	return &Engine{client: client, ledger: led, settings: src}
}

// Sync pushes one record. Settings are read at call time: sync disabled or
// a missing credential yields OutcomeSkipped without touching the network.
// The returned error reports ledger trouble only; remote failures are
// expressed through the outcome and the record's sync fields.
func (e *Engine) Sync(ctx context.Context, rec *job.Record) (Outcome, error) {
	cfg := e.settings.Current()
	if !cfg.SyncEnabled || cfg.Credential == "" {
		return OutcomeSkipped, nil
	}
	if rec.SyncStatus == job.SyncSynced {
		return OutcomeSkipped, nil
	}

	remoteID, err := e.client.Upsert(ctx, cfg.Credential, rec)
	if err == nil {
		rec.MarkSynced(remoteID)
		if uerr := e.ledger.UpdateSync(ctx, rec.ID, job.SyncSynced, &remoteID, ""); uerr != nil {
			return OutcomeSynced, uerr
		}
		return OutcomeSynced, nil
	}

	var outcome Outcome
	var reason string
	switch {
	case errors.Is(err, ErrUnauthorized):
		outcome, reason = OutcomeAuthFailed, ReasonAuthFailed
	case errors.Is(err, ErrInvalidData):
		outcome, reason = OutcomeInvalidData, ReasonInvalidData
	default:
		outcome, reason = OutcomeTransientFailure, err.Error()
	}

	rec.MarkSyncFailed(reason)
	if uerr := e.ledger.UpdateSync(ctx, rec.ID, job.SyncFailed, nil, reason); uerr != nil {
		slog.Warn("failed to record sync failure", "id", rec.ID, "error", uerr)
		return outcome, uerr
	}
	return outcome, nil
}

// Report tallies one re-sync pass.
type Report struct {
	Attempted         int `json:"attempted"`
	Synced            int `json:"synced"`
	Skipped           int `json:"skipped"`
	AuthFailed        int `json:"authFailed"`
	InvalidData       int `json:"invalidData"`
	TransientFailures int `json:"transientFailures"`
}

// Resync re-applies Sync to records that never reached the remote. It
// reloads settings first so a freshly pasted credential is picked up
// without a restart.
//
// The periodic sweep (force=false) retries only records worth retrying:
// unsynced ones and transient failures. A forced pass (the resync command,
// POST /resync) also re-attempts permanent failures, since the user
// triggering it has presumably fixed the cause.
func (e *Engine) Resync(ctx context.Context, force bool) (Report, error) {
	cfg, err := e.settings.Reload(ctx)
	if err != nil {
		return Report{}, err
	}
	if !cfg.SyncEnabled || cfg.Credential == "" {
		log.Println("[resync] sync disabled or no credential — nothing to do")
		return Report{}, nil
	}

	records, err := e.ledger.List(ctx)
	if err != nil {
		return Report{}, err
	}

	var pending []job.Record
	for _, rec := range records {
		if rec.SyncStatus == job.SyncSynced {
			continue
		}
		if !force && !retryEligible(rec) {
			continue
		}
		pending = append(pending, rec)
	}
	if len(pending) == 0 {
		return Report{}, nil
	}

	log.Printf("[resync] pushing %d record(s) (force=%v)", len(pending), force)

	var mu sync.Mutex
	report := Report{Attempted: len(pending)}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resyncConcurrency)
	for i := range pending {
		rec := pending[i]
		g.Go(func() error {
			outcome, err := e.Sync(gctx, &rec)
			if err != nil {
				slog.Warn("resync ledger update failed", "id", rec.ID, "error", err)
			}
			mu.Lock()
			defer mu.Unlock()
			switch outcome {
			case OutcomeSynced:
				report.Synced++
			case OutcomeSkipped:
				report.Skipped++
			case OutcomeAuthFailed:
				report.AuthFailed++
			case OutcomeInvalidData:
				report.InvalidData++
			case OutcomeTransientFailure:
				report.TransientFailures++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	log.Printf("[resync] done — synced=%d authFailed=%d invalidData=%d transient=%d",
		report.Synced, report.AuthFailed, report.InvalidData, report.TransientFailures)
	return report, nil
}

// retryEligible reports whether the periodic sweep should touch a record.
// Permanent failures (bad credential, rejected payload) wait for the user.
func retryEligible(rec job.Record) bool {
	if rec.SyncStatus == job.SyncUnsynced {
		return true
	}
	return rec.SyncStatus == job.SyncFailed &&
		rec.SyncError != ReasonAuthFailed &&
		rec.SyncError != ReasonInvalidData
}
