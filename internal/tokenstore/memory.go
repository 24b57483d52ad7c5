// ABOUTME: In-memory token store with optional TTL-based expiration
// ABOUTME: Used for tests and for sessions that must not outlive the process

package tokenstore

import (
	"context"
	"sync"
	"time"
)

type entry struct {
	token     string
	expiresAt time.Time
}

// MemoryStore holds the token in process memory.
// A zero ttl keeps the token until Clear.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	entry *entry
	now   func() time.Time
}

// NewMemoryStore creates an empty MemoryStore
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{ttl: ttl, now: time.Now}
}

// Load returns the token unless it has expired
func (m *MemoryStore) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.entry == nil {
		return "", nil
	}
	if !m.entry.expiresAt.IsZero() && m.now().After(m.entry.expiresAt) {
		m.entry = nil
		return "", nil
	}
	return m.entry.token, nil
}

// Save stores the token, restarting its TTL
func (m *MemoryStore) Save(ctx context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	e := &entry{token: token}
	if m.ttl > 0 {
		e.expiresAt = m.now().Add(m.ttl)
	}
	m.entry = e
	return nil
}

// Clear forgets the token
func (m *MemoryStore) Clear(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entry = nil
	return nil
}

func (m *MemoryStore) Close() error {
	return nil
}
