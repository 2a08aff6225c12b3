// internal/store/memory.go
//
// In-memory implementation of the session Store interface.
// This is a lightweight persistence layer for live quiz sessions; engines are
// transient by design and only their finished results go to the database.
//
// Characteristics:
//   - Stores *Session objects keyed by ID in a map.
//   - Concurrency-safe via RWMutex (concurrent reads allowed, writes exclusive).
//   - State is lost when the process restarts.
//   - Errors are returned for missing session IDs on Get().

package store

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mapquiz/go-server/internal/quiz"
)

// ErrNotFound is returned when a session ID has no live session.
var ErrNotFound = errors.New("session not found")

// Session wraps one live quiz engine with its ownership metadata.
type Session struct {
	ID        string
	Owner     string // user ID or anonymous ID
	Authed    bool   // Owner is a user ID rather than an anonymous ID
	Mode      string // territory | flag | capital
	Date      string // set for daily challenge runs, empty for free play
	CreatedAt time.Time
	Engine    *quiz.Engine

	recorded atomic.Bool
}

// MarkRecorded reports whether the caller is the first to record this
// session's finished result. Every later call returns false, so a result can
// be persisted exactly once no matter how many handlers observe the end.
func (s *Session) MarkRecorded() bool {
	return s.recorded.CompareAndSwap(false, true)
}

// Store defines the persistence interface for live sessions.
// Implementations may be backed by memory (this package), Redis, SQL, etc.
type Store interface {
	// Save persists or updates a session.
	Save(ctx context.Context, s *Session) error

	// Get retrieves a session by ID.
	// Returns ErrNotFound if the session does not exist.
	Get(ctx context.Context, id string) (*Session, error)

	// Delete removes a session, closing its engine.
	Delete(ctx context.Context, id string) error
}

// memory is an in-memory map-based Store implementation.
type memory struct {
	mu       sync.RWMutex        // guards sessions map
	sessions map[string]*Session // keyed by Session.ID
}

// NewMemoryStore constructs a new in-memory Store.
func NewMemoryStore() Store {
	return &memory{sessions: make(map[string]*Session)}
}

// Save adds or updates the session in the map.
func (m *memory) Save(ctx context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sessions[s.ID] = s
	return nil
}

// Get looks up a session by ID.
func (m *memory) Get(ctx context.Context, id string) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.sessions[id]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

// Delete removes the session and stops its engine's timers.
func (m *memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		s.Engine.Close()
		delete(m.sessions, id)
	}
	return nil
}
