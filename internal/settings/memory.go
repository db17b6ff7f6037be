package settings

import (
	"context"
	"sync"
)

// Memory is an in-process settings store with the same snapshot semantics
// as Store. Tests use it to flip preferences mid-scenario.
type Memory struct {
	mu      sync.RWMutex
	current Settings
	reloads int
}

func NewMemory(initial Settings) *Memory {
	return &Memory{current: initial}
}

func (m *Memory) Current() Settings {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Memory) Reload(context.Context) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reloads++
	return m.current, nil
}

func (m *Memory) Update(_ context.Context, p Patch) (Settings, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = p.apply(m.current)
	return m.current, nil
}

// Set replaces the whole snapshot.
func (m *Memory) Set(s Settings) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
}

// Reloads reports how many times Reload ran.
func (m *Memory) Reloads() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.reloads
}
