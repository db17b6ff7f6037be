package ledger

import (
	"context"
	"sync"

	"github.com/ayushKhandelwal07/JobhubHq/internal/job"
)

// Memory is an in-process Ledger with the same dedup and sync-update
// semantics as Postgres. Tests use it directly; it also backs ad-hoc runs
// against a scratch database-free environment.
type Memory struct {
	mu      sync.RWMutex
	records map[string]*job.Record
}

func NewMemory() *Memory {
	return &Memory{records: make(map[string]*job.Record)}
}

func (m *Memory) Exists(_ context.Context, jobURL string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.findByURL(jobURL) != nil, nil
}

func (m *Memory) Insert(_ context.Context, rec *job.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findByURL(rec.JobURL) != nil {
		return ErrDuplicateURL
	}
	cp := *rec
	m.records[rec.ID] = &cp
	return nil
}

func (m *Memory) Get(_ context.Context, id string) (*job.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	rec, ok := m.records[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (m *Memory) UpdateSync(_ context.Context, id string, status job.SyncStatus, remoteID *int64, syncErr string) error {
	remoteID, syncErr, err := normalizeSyncFields(status, remoteID, syncErr)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	rec, ok := m.records[id]
	if !ok {
		return ErrNotFound
	}
	rec.SyncStatus = status
	rec.RemoteID = remoteID
	rec.SyncError = syncErr
	return nil
}

func (m *Memory) List(_ context.Context) ([]job.Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	records := make([]job.Record, 0, len(m.records))
	for _, rec := range m.records {
		records = append(records, *rec)
	}
	return records, nil
}

func (m *Memory) CountBySyncStatus(_ context.Context) (Counts, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var counts Counts
	for _, rec := range m.records {
		counts.Total++
		switch rec.SyncStatus {
		case job.SyncUnsynced:
			counts.Unsynced++
		case job.SyncSynced:
			counts.Synced++
		case job.SyncFailed:
			counts.Failed++
		}
	}
	return counts, nil
}

// callers hold m.mu
func (m *Memory) findByURL(jobURL string) *job.Record {
	for _, rec := range m.records {
		if rec.JobURL == jobURL {
			return rec
		}
	}
	return nil
}
