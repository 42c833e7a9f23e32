package trivia

// Store is the process-wide session registry. It is not safe for concurrent
// use on its own; the engine serializes every access under its mutex.
type Store struct {
	sessions map[string]*Session
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*Session),
	}
}

// Get returns the session for an id.
func (s *Store) Get(id string) (*Session, bool) {
	sess, ok := s.sessions[id]
	return sess, ok
}

// Put registers a session under its id.
func (s *Store) Put(sess *Session) {
	s.sessions[sess.ID] = sess
}

// Delete removes a session from the registry.
func (s *Store) Delete(id string) {
	delete(s.sessions, id)
}

// Len returns the number of live sessions.
func (s *Store) Len() int {
	return len(s.sessions)
}

// All returns every live session in no particular order.
func (s *Store) All() []*Session {
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	return out
}
