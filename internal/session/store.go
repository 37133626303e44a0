package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// Store keeps each session's State together with a per-session workspace
// (the retrieval engine built from that session's documents).
type Store[W any] struct {
	mu      sync.Mutex
	entries map[uuid.UUID]*entry[W]
	now     func() time.Time
}

type entry[W any] struct {
	state     State
	workspace W
	hasWS     bool
	touched   time.Time
}

// NewStore returns an empty store.
func NewStore[W any]() *Store[W] {
	return &Store[W]{entries: make(map[uuid.UUID]*entry[W]), now: time.Now}
}

// Get returns the session's state, creating a fresh one for unknown IDs.
func (s *Store[W]) Get(id uuid.UUID) State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entry(id).state
}

// Update applies fn to the session's state and stores the result when fn
// succeeds. The session is locked for the duration of fn, so fn must not
// block on slow calls.
func (s *Store[W]) Update(id uuid.UUID, fn func(State) (State, error)) (State, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(id)
	next, err := fn(e.state)
	if err != nil {
		return e.state, err
	}
	e.state = next
	return next, nil
}

// Workspace returns the session's workspace, if one was set.
func (s *Store[W]) Workspace(id uuid.UUID) (W, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(id)
	return e.workspace, e.hasWS
}

// SetWorkspace replaces the session's workspace.
func (s *Store[W]) SetWorkspace(id uuid.UUID, w W) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := s.entry(id)
	e.workspace = w
	e.hasWS = true
}

// Delete forgets a session.
func (s *Store[W]) Delete(id uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.entries, id)
}

// Len reports the number of live sessions.
func (s *Store[W]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions idle for longer than maxIdle and returns how many
// were removed.
func (s *Store[W]) Sweep(maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-maxIdle)
	n := 0
	for id, e := range s.entries {
		if e.touched.Before(cutoff) {
			delete(s.entries, id)
			n++
		}
	}
	return n
}

// entry must be called with mu held.
func (s *Store[W]) entry(id uuid.UUID) *entry[W] {
	e, ok := s.entries[id]
	if !ok {
		e = &entry[W]{state: New()}
		s.entries[id] = e
	}
	e.touched = s.now()
	return e
}
