package session

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds at most one active session per user. Content generation
// is asynchronous from the user's point of view, so sessions attach
// through a begin/commit token: Begin invalidates whatever was active
// and hands out a token, and Commit applies the generated session only
// if no newer Begin or Reset happened in between. A response that
// lands after the user navigated away is discarded instead of being
// applied to stale state.
type Store struct {
	mu      sync.Mutex
	engines map[uuid.UUID]*Engine
	gens    map[uuid.UUID]uint64
}

func NewStore() *Store {
	return &Store{
		engines: make(map[uuid.UUID]*Engine),
		gens:    make(map[uuid.UUID]uint64),
	}
}

// Begin destroys the user's current session, if any, and returns the
// token an eventual Commit must present.
func (s *Store) Begin(userID uuid.UUID) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.engines, userID)
	s.gens[userID]++
	return s.gens[userID]
}

// Commit installs a freshly built engine. Returns false, leaving state
// untouched, when the token has been superseded.
func (s *Store) Commit(userID uuid.UUID, token uint64, e *Engine) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.gens[userID] != token {
		return false
	}
	s.engines[userID] = e
	return true
}

// Get returns the user's active session.
func (s *Store) Get(userID uuid.UUID) (*Engine, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.engines[userID]
	return e, ok
}

// End discards the user's session and invalidates in-flight commits.
func (s *Store) End(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.engines, userID)
	s.gens[userID]++
}
