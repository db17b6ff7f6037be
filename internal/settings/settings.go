// Package settings holds the user preferences that gate tracking side
// effects. The tracking core only ever reads them; writes come from the
// settings API. There is no module-level cache: components hold a Source
// and read a fresh snapshot per operation.
package settings

import "context"

// Settings is one user's preference snapshot.
type Settings struct {
	Credential           string `json:"credential"`
	AutoTrackEnabled     bool   `json:"autoTrackEnabled"`
	SyncEnabled          bool   `json:"syncEnabled"`
	NotificationsEnabled bool   `json:"notificationsEnabled"`
}

// Patch carries a partial settings update; nil fields are left unchanged.
type Patch struct {
	Credential           *string `json:"credential"`
	AutoTrackEnabled     *bool   `json:"autoTrackEnabled"`
	SyncEnabled          *bool   `json:"syncEnabled"`
	NotificationsEnabled *bool   `json:"notificationsEnabled"`
}

// Defaults are applied on first run: tracking works out of the box, sync
// stays off until the user pastes a credential.
func Defaults() Settings {
	return Settings{
		AutoTrackEnabled:     true,
		SyncEnabled:          false,
		NotificationsEnabled: true,
	}
}

// Source yields settings snapshots to the tracking core.
//
// Current returns the last loaded snapshot without I/O; Reload re-reads the
// backing store first. Long-lived loops (the re-sync sweep) call Reload so
// credential changes take effect without a restart.
type Source interface {
	Current() Settings
	Reload(ctx context.Context) (Settings, error)
}

func (p Patch) apply(s Settings) Settings {
	if p.Credential != nil {
		s.Credential = *p.Credential
	}
	if p.AutoTrackEnabled != nil {
		s.AutoTrackEnabled = *p.AutoTrackEnabled
	}
	if p.SyncEnabled != nil {
		s.SyncEnabled = *p.SyncEnabled
	}
	if p.NotificationsEnabled != nil {
		s.NotificationsEnabled = *p.NotificationsEnabled
	}
	return s
}
