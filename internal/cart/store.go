package cart

import (
	"sync"

	"github.com/google/uuid"
)

// Store holds one cart per session. Reduce is a total-order transition
// function, so mutations for a session are serialized here; carts for
// different sessions are independent.
type Store struct {
	mu       sync.Mutex
	sessions map[string]*session
}

type session struct {
	mu    sync.Mutex
	state State
}

// NewStore creates an empty session store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]*session)}
}

// NewSession creates an empty cart and returns its session ID.
func (s *Store) NewSession() string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &session{}
	s.mu.Unlock()
	return id
}

func (s *Store) session(id string) *session {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[id]
	if !ok {
		sess = &session{}
		s.sessions[id] = sess
	}
	return sess
}

// Get returns the current cart state for a session.
func (s *Store) Get(id string) State {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()
	return sess.state
}

// Dispatch applies an action to a session's cart and returns the next
// state.
func (s *Store) Dispatch(id string, action Action) State {
	sess := s.session(id)
	sess.mu.Lock()
	defer sess.mu.Unlock()

	sess.state = Reduce(sess.state, action)
	return sess.state
}

// Drop discards a session's cart.
func (s *Store) Drop(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}
