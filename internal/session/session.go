// Package session tracks logged-in users by opaque token. State is held
// per manager instance and passed to handlers explicitly.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Session is the authentication state attached to one token.
type Session struct {
	Token     string
	Username  string
	LoggedIn  bool
	CreatedAt time.Time
}

// Manager is an in-memory session registry.
type Manager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	clock    func() time.Time
	newToken func() string
}

// NewManager creates an empty Manager.
func NewManager() *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		clock:    func() time.Time { return time.Now().UTC() },
		newToken: uuid.NewString,
	}
}

// WithClock sets a custom clock function for deterministic output.
func (m *Manager) WithClock(clock func() time.Time) *Manager {
	m.clock = clock
	return m
}

// WithTokenSource sets a custom token generator, for tests.
func (m *Manager) WithTokenSource(fn func() string) *Manager {
	m.newToken = fn
	return m
}

// Create opens a logged-in session for a username and returns it.
func (m *Manager) Create(username string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := &Session{
		Token:     m.newToken(),
		Username:  username,
		LoggedIn:  true,
		CreatedAt: m.clock(),
	}
	m.sessions[s.Token] = s
	copied := *s
	return &copied
}

// Get returns the session for a token, or nil when unknown.
func (m *Manager) Get(token string) *Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s, ok := m.sessions[token]
	if !ok {
		return nil
	}
	copied := *s
	return &copied
}

// Delete ends the session for a token. Unknown tokens are a no-op.
func (m *Manager) Delete(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, token)
}

// Count returns the number of live sessions.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
