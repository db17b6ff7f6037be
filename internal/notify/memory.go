package notify

import (
	"context"
	"sync"
)

// Memory records side effects in process so tests can assert on exactly
// what the user would have seen.
type Memory struct {
	mu     sync.Mutex
	count  int64
	events []Event
}

func NewMemory() *Memory {
	return &Memory{}
}

func (m *Memory) JobTracked(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.count++
	return m.count, nil
}

func (m *Memory) TrackedCount(context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.count, nil
}

func (m *Memory) Publish(_ context.Context, ev Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, ev)
	return nil
}

// Events returns a copy of everything published so far.
func (m *Memory) Events() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.events))
	copy(out, m.events)
	return out
}
