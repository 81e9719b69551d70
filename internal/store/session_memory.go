package store

import (
	"sync"

	"reviewshelf/internal/util"
)

// MemorySessionStore keeps session tokens in-process; used by tests.
type MemorySessionStore struct {
	mu   sync.RWMutex
	sess map[string]int64
}

// NewMemorySessionStore initializes an empty session store.
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{sess: make(map[string]int64)}
}

// NewSession creates a session token for a user.
func (m *MemorySessionStore) NewSession(userID int64) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token := util.NewID()
	m.sess[token] = userID
	return token, nil
}

// GetUserIDByToken resolves a token to its user ID.
func (m *MemorySessionStore) GetUserIDByToken(token string) (int64, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	userID, ok := m.sess[token]
	return userID, ok, nil
}

// DeleteSession removes a token.
func (m *MemorySessionStore) DeleteSession(token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sess, token)
	return nil
}
