// Package session tracks per-conversation state.
//
// Each session owns its own conversation memory, so concurrent
// conversations never see each other's history.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"

	domerrors "github.com/edufuture/edubot/internal/errors"
	"github.com/edufuture/edubot/internal/memory"
)

// Session is a single conversation with its own memory
type Session struct {
	ID         string
	Memory     *memory.Memory
	CreatedAt  time.Time
	LastActive time.Time

	// mu serializes requests within the session; memory is not
	// goroutine-safe and turn order must match arrival order.
	mu sync.Mutex
}

// Lock acquires the session for one request
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session
func (s *Session) Unlock() { s.mu.Unlock() }

// Manager owns all active sessions.
// All methods are safe for concurrent use.
type Manager struct {
	mu       sync.Mutex
	sessions map[string]*Session
	maxTurns int

	// now is overridable in tests
	now func() time.Time
}

// NewManager creates a session manager.
// maxTurns bounds each session's memory; non-positive means unbounded.
func NewManager(maxTurns int) *Manager {
	return &Manager{
		sessions: make(map[string]*Session),
		maxTurns: maxTurns,
		now:      time.Now,
	}
}

// Create starts a new session with a generated ID
func (m *Manager) Create() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.createLocked(uuid.NewString())
}

// Get returns an existing session.
// Returns ErrSessionNotFound for unknown IDs.
func (m *Manager) Get(id string) (*Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[id]
	if !ok {
		return nil, domerrors.ErrSessionNotFound
	}
	s.LastActive = m.now()
	return s, nil
}

// GetOrCreate returns the session for id, creating it when unknown.
// The second return value reports whether a new session was created.
func (m *Manager) GetOrCreate(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if s, ok := m.sessions[id]; ok {
		s.LastActive = m.now()
		return s, false
	}
	return m.createLocked(id), true
}

func (m *Manager) createLocked(id string) *Session {
	var mem *memory.Memory
	if m.maxTurns > 0 {
		mem = memory.WithMaxTurns(m.maxTurns)
	} else {
		mem = memory.New()
	}

	now := m.now()
	s := &Session{
		ID:         id,
		Memory:     mem,
		CreatedAt:  now,
		LastActive: now,
	}
	m.sessions[id] = s
	return s
}

// Len returns the number of active sessions
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sessions)
}

// PruneIdle removes sessions inactive for longer than maxIdle.
// Returns the number of removed sessions.
func (m *Manager) PruneIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := m.now().Add(-maxIdle)
	removed := 0
	for id, s := range m.sessions {
		if s.LastActive.Before(cutoff) {
			delete(m.sessions, id)
			removed++
		}
	}
	return removed
}
