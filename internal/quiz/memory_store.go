package quiz

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	state     GameState
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory. It is the default store for
// the terminal shell and for tests.
type MemoryStore struct {
	sessions sync.Map
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore returns a store whose sessions expire ttl after their last
// save. A non-positive ttl disables expiry.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl: ttl,
		now: time.Now,
	}
}

func (m *MemoryStore) Load(_ context.Context, sessionID string) (GameState, error) {
	stored, ok := m.sessions.Load(sessionID)
	if !ok {
		return GameState{}, ErrSessionNotFound
	}

	entry, ok := stored.(memoryEntry)
	if !ok || m.expired(entry, m.now()) {
		m.sessions.Delete(sessionID)
		return GameState{}, ErrSessionNotFound
	}
	return entry.state, nil
}

func (m *MemoryStore) Save(_ context.Context, sessionID string, state GameState) error {
	entry := memoryEntry{state: state}
	if m.ttl > 0 {
		entry.expiresAt = m.now().Add(m.ttl)
	}
	m.sessions.Store(sessionID, entry)
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, sessionID string) error {
	m.sessions.Delete(sessionID)
	return nil
}

func (m *MemoryStore) EvictExpired(_ context.Context, now time.Time) (int, error) {
	evicted := 0
	m.sessions.Range(func(key, value any) bool {
		entry, ok := value.(memoryEntry)
		if !ok || m.expired(entry, now) {
			m.sessions.Delete(key)
			evicted++
		}
		return true
	})
	return evicted, nil
}

func (m *MemoryStore) expired(entry memoryEntry, now time.Time) bool {
	return !entry.expiresAt.IsZero() && !now.Before(entry.expiresAt)
}
