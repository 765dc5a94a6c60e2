package session

import (
	"errors"
	"sync"
	"time"

	"needleshop/internal/models"
)

// ErrNotFound reports a missing or already-destroyed session.
var ErrNotFound = errors.New("session not found")

// Session snapshots the authenticated user's profile and order history at
// login time. The snapshot is not refreshed when new orders are placed;
// logout destroys it.
type Session struct {
	User      models.User      `json:"user"`
	Orders    models.OrderList `json:"orders"`
	CreatedAt time.Time        `json:"created_at"`
}

// Store holds sessions keyed by the bearer token that created them.
type Store interface {
	Put(token string, s *Session) error
	Get(token string) (*Session, error)
	Delete(token string) error
}

// MemoryStore is an in-process Store. It is the default when no Redis
// address is configured, and what the tests use.
type MemoryStore struct {
	sessions map[string]Session
	mu       sync.RWMutex
}

// NewMemoryStore creates a new instance of MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]Session),
	}
}

// Put stores a session under the given token.
func (m *MemoryStore) Put(token string, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.sessions[token] = *s
	return nil
}

// Get returns the session stored under the given token.
func (m *MemoryStore) Get(token string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil, ErrNotFound
	}
	return &s, nil
}

// Delete removes the session stored under the given token.
func (m *MemoryStore) Delete(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.sessions, token)
	return nil
}
