package delineate

import (
	"sync"

	"github.com/mbetancur/basinview/internal/session"
)

// Deps bundles the collaborators shared by every session.
type Deps struct {
	Delineator Delineator
	Opener     ContainerOpener
	Emitter    UpdateEmitter
	Recorder   RunRecorder
}

// Session bundles the per-session state container, click selector and run
// invoker.
type Session struct {
	ID       string
	Store    *session.Store
	Selector *session.Selector
	Invoker  *Invoker
}

// Status derives the user-facing session status.
func (s *Session) Status() session.Status {
	rs := s.Invoker.Status()
	return session.DeriveStatus(s.Store.Get(), rs.Running, rs.LastError)
}

// Manager owns one Session per session id.
type Manager struct {
	deps Deps

	mu       sync.Mutex
	sessions map[string]*Session
}

// NewManager creates a session manager.
func NewManager(deps Deps) *Manager {
	return &Manager{
		deps:     deps,
		sessions: make(map[string]*Session),
	}
}

// GetOrCreate returns the session for id, creating it on first use.
func (m *Manager) GetOrCreate(id string) *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.sessions[id]; ok {
		return s
	}
	store := session.NewStore()
	s := &Session{
		ID:       id,
		Store:    store,
		Selector: session.NewSelector(store),
		Invoker:  NewInvoker(id, m.deps.Delineator, NewLoader(m.deps.Opener), store, m.deps.Emitter, m.deps.Recorder),
	}
	m.sessions[id] = s
	return s
}

// Get returns the session for id if it exists.
func (m *Manager) Get(id string) (*Session, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[id]
	return s, ok
}
