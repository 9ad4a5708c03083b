package quiz

import "sync"

// SessionStore holds the live sessions owned by this process, keyed by
// quizID:memberID. Each session owns its own answer map and countdown, so no
// two keys ever share state.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewSessionStore creates an empty live-session store.
func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]*Session)}
}

// GetOrCreate returns the live session for key, building one via factory if
// none exists yet.
func (s *SessionStore) GetOrCreate(key string, factory func() *Session) *Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	if session, ok := s.sessions[key]; ok {
		return session
	}
	session := factory()
	s.sessions[key] = session
	return session
}

// Get returns the live session for key, if present.
func (s *SessionStore) Get(key string) (*Session, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	session, ok := s.sessions[key]
	return session, ok
}

// Delete drops a session from the store. Abandoning a session this way never
// produces a partial submission; the session is simply discarded.
func (s *SessionStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, key)
}
