// Package notify delivers the user-facing side effects of tracking: the
// running badge count and {title, body} notification events. Delivery is
// best-effort; tracking never fails because a side effect did.
package notify

import "context"

// Kind styles a notification.
type Kind string

const (
	KindSuccess Kind = "success"
	KindError   Kind = "error"
)

// Event is one notification, consumed by the extension popup.
type Event struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Body      string `json:"body"`
	Kind      Kind   `json:"kind"`
	RequestID string `json:"requestId,omitempty"`
}

// Notifier receives tracking outcomes.
//
// JobTracked bumps the badge count and returns the new total. Publish
// pushes one notification event; callers decide whether the user wants it
// (the notificationsEnabled preference is theirs to honor, the badge count
// is maintained regardless).
type Notifier interface {
	JobTracked(ctx context.Context) (int64, error)
	TrackedCount(ctx context.Context) (int64, error)
	Publish(ctx context.Context, ev Event) error
}
