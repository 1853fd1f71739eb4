package session

import "sync"

// Store owns the State of one session. All mutations go through Apply so
// multi-field updates land as one atomic step; readers never observe a
// half-written state.
type Store struct {
	mu    sync.Mutex
	state State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{}
}

// Get returns a snapshot of the current state. The RunResult pointer inside
// the snapshot is shared but immutable once installed.
func (s *Store) Get() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Apply runs one atomic mutation against the state.
func (s *Store) Apply(fn func(*State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// Reset restores the empty state. Idempotent.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = State{}
}
