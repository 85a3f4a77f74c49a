package session

import (
	"sync"
)

// Registry is the thread-safe owner of the session id -> session mapping.
// At most one live session exists per identifier; Remove is idempotent so
// close callbacks and explicit termination can both fire without error.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	// onChange, when set, is called with the new session count after every
	// insert or remove. Used to keep the active-sessions gauge current.
	onChange func(count int)
}

// NewRegistry creates an empty registry. onChange may be nil.
func NewRegistry(onChange func(count int)) *Registry {
	return &Registry{
		sessions: make(map[string]*Session),
		onChange: onChange,
	}
}

// Insert registers a session under its identifier.
func (r *Registry) Insert(s *Session) {
	r.mu.Lock()
	r.sessions[s.ID] = s
	count := len(r.sessions)
	r.mu.Unlock()

	r.notify(count)
}

// Lookup returns the session for the given id.
// Returns ErrSessionNotFound if no live session has that id.
func (r *Registry) Lookup(id string) (*Session, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Remove deletes the session entry for id. Removing an unknown or
// already-removed id is not an error; the return value reports whether an
// entry was actually deleted.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	_, ok := r.sessions[id]
	if ok {
		delete(r.sessions, id)
	}
	count := len(r.sessions)
	r.mu.Unlock()

	if ok {
		r.notify(count)
	}
	return ok
}

// Len returns the number of live sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Clear drops all sessions. Used during shutdown, after the HTTP server has
// stopped accepting requests.
func (r *Registry) Clear() {
	r.mu.Lock()
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	r.notify(0)
}

func (r *Registry) notify(count int) {
	if r.onChange != nil {
		r.onChange(count)
	}
}
