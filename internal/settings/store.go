package settings

import (
	"context"
	"fmt"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Store persists settings in PostgreSQL as a single row and serves cached
// snapshots between reloads.
type Store struct {
	mu      sync.RWMutex
	pool    *pgxpool.Pool
	current Settings
}

const schema = `
CREATE TABLE IF NOT EXISTS user_settings (
    id                    SMALLINT PRIMARY KEY CHECK (id = 1),
    credential            TEXT NOT NULL DEFAULT '',
    auto_track_enabled    BOOLEAN NOT NULL DEFAULT TRUE,
    sync_enabled          BOOLEAN NOT NULL DEFAULT FALSE,
    notifications_enabled BOOLEAN NOT NULL DEFAULT TRUE,
    updated_at            TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// NewStore ensures the schema, seeds the defaults row on first run, and
// loads the initial snapshot.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("init user_settings schema: %w", err)
	}

	d := Defaults()
	_, err := pool.Exec(ctx,
		`INSERT INTO user_settings (id, credential, auto_track_enabled, sync_enabled, notifications_enabled)
		 VALUES (1, $1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		d.Credential, d.AutoTrackEnabled, d.SyncEnabled, d.NotificationsEnabled,
	)
	if err != nil {
		return nil, fmt.Errorf("seed user_settings: %w", err)
	}

	s := &Store{pool: pool}
	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Current returns the last loaded snapshot.
func (s *Store) Current() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Reload re-reads the row and returns the fresh snapshot.
func (s *Store) Reload(ctx context.Context) (Settings, error) {
	var cfg Settings
	err := s.pool.QueryRow(ctx,
		`SELECT credential, auto_track_enabled, sync_enabled, notifications_enabled
		 FROM user_settings WHERE id = 1`,
	).Scan(&cfg.Credential, &cfg.AutoTrackEnabled, &cfg.SyncEnabled, &cfg.NotificationsEnabled)
	if err != nil {
		return Settings{}, fmt.Errorf("load user_settings: %w", err)
	}

	s.mu.Lock()
	s.current = cfg
	s.mu.Unlock()
	return cfg, nil
}

// Update applies a partial patch, persists it, and returns the new snapshot.
func (s *Store) Update(ctx context.Context, p Patch) (Settings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := p.apply(s.current)
	_, err := s.pool.Exec(ctx,
		`UPDATE user_settings
		 SET credential = $1, auto_track_enabled = $2, sync_enabled = $3,
		     notifications_enabled = $4, updated_at = NOW()
		 WHERE id = 1`,
		next.Credential, next.AutoTrackEnabled, next.SyncEnabled, next.NotificationsEnabled,
	)
	if err != nil {
		return Settings{}, fmt.Errorf("update user_settings: %w", err)
	}

	s.current = next
	return next, nil
}
