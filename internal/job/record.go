// Package job defines the canonical tracked-job record and the normalizer
// that produces it from raw extracted fields.
package job

import (
	"fmt"
	"time"

	"github.com/ayushKhandelwal07/JobhubHq/internal/platform"
)

// Status is the lifecycle status of a tracked record. Tracking only ever
// creates records, so there is a single value today; the column exists so
// later stages (applied, archived) can be added without a migration.
type Status string

const StatusTracked Status = "tracked"

// SyncStatus values mirror the sync_status column in PostgreSQL.
type SyncStatus string

const (
	SyncUnsynced SyncStatus = "unsynced"
	SyncSynced   SyncStatus = "synced"
	SyncFailed   SyncStatus = "failed"
)

// ParseSyncStatus converts a raw string to a SyncStatus, returning an error
// for unknown values.
func ParseSyncStatus(s string) (SyncStatus, error) {
	st := SyncStatus(s)
	switch st {
	case SyncUnsynced, SyncSynced, SyncFailed:
		return st, nil
	}
	return "", fmt.Errorf("unknown sync status %q", s)
}

// Record is one tracked job posting, keyed by the locally generated ID.
// RemoteID is non-nil exactly when SyncStatus is SyncSynced.
type Record struct {
	ID          string            `json:"id"`
	Platform    platform.Platform `json:"platform"`
	JobTitle    string            `json:"jobTitle"`
	Company     string            `json:"company"`
	Location    string            `json:"location,omitempty"`
	Description string            `json:"description,omitempty"`
	SalaryRange string            `json:"salaryRange,omitempty"`
	JobURL      string            `json:"jobUrl"`
	TrackedAt   time.Time         `json:"trackedAt"`
	Status      Status            `json:"status"`
	SyncStatus  SyncStatus        `json:"syncStatus"`
	RemoteID    *int64            `json:"remoteId,omitempty"`
	SyncError   string            `json:"syncError,omitempty"`
}

// MarkSynced records a successful upsert against the remote service.
func (r *Record) MarkSynced(remoteID int64) {
	r.SyncStatus = SyncSynced
	r.RemoteID = &remoteID
	r.SyncError = ""
}

// MarkSyncFailed records a failed upsert. The remote id is cleared so the
// remoteId/syncStatus pairing stays consistent.
func (r *Record) MarkSyncFailed(reason string) {
	r.SyncStatus = SyncFailed
	r.RemoteID = nil
	r.SyncError = reason
}
