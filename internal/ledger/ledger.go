// Package ledger persists tracked job records. The ledger is the system of
// record for "is this job tracked": a record exists here as soon as tracking
// succeeds locally, whether or not it ever reaches the remote service.
package ledger

import (
	"context"
	"errors"

	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
)

var (
	// ErrDuplicateURL means the job URL is already tracked. Tracking treats
	// this as a benign outcome, not a failure.
	ErrDuplicateURL = errors.New("job url already tracked")

	// ErrNotFound means no record exists for the given id.
	ErrNotFound = errors.New("job record not found")
)

// Counts aggregates records by sync status for the stats endpoint and the
// re-sync sweep report.
type Counts struct {
	Total    int `json:"total"`
	Unsynced int `json:"unsynced"`
	Synced   int `json:"synced"`
	Failed   int `json:"failed"`
}

// Ledger is the durable store of tracked job records.
//
// List returns records in no particular order; display paths sort by
// TrackedAt themselves. Implementations must keep the remoteId/syncStatus
// pairing consistent: UpdateSync stores a remote id only for SyncSynced and
// a sync error only for SyncFailed.
type Ledger interface {
	// Exists reports whether any record already tracks the given job URL.
	Exists(ctx context.Context, jobURL string) (bool, error)

	// Insert stores a new record, returning ErrDuplicateURL when another
	// record with the same job URL snuck in first.
	Insert(ctx context.Context, rec *job.Record) error

	// Get returns the record with the given id, or ErrNotFound.
	Get(ctx context.Context, id string) (*job.Record, error)

	// UpdateSync records the outcome of one sync attempt. remoteID is
	// required for SyncSynced and ignored otherwise; syncErr is stored only
	// for SyncFailed. Returns ErrNotFound for unknown ids.
	UpdateSync(ctx context.Context, id string, status job.SyncStatus, remoteID *int64, syncErr string) error

	// List returns every tracked record.
	List(ctx context.Context) ([]job.Record, error)

	// CountBySyncStatus tallies records per sync status.
	CountBySyncStatus(ctx context.Context) (Counts, error)
}

// normalizeSyncFields enforces the remoteId/syncError pairing for a given
// status before anything is stored.
func normalizeSyncFields(status job.SyncStatus, remoteID *int64, syncErr string) (*int64, string, error) {
	switch status {
	case job.SyncSynced:
		if remoteID == nil {
			return nil, "", errors.New("remote id required for synced status")
		}
		return remoteID, "", nil
	case job.SyncFailed:
		return nil, syncErr, nil
	case job.SyncUnsynced:
		return nil, "", nil
	}
	return nil, "", errors.New("unknown sync status " + string(status))
}
