// Package memory provides an in-process session store.
package memory

import (
	"context"
	"sync"

	"github.com/matzehuels/scenedsl/pkg/session"
)

// Store keeps sessions in a map. Sessions are copied on the way in and out so
// callers never share state with the store.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]session.Session
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{sessions: make(map[string]session.Session)}
}

func (s *Store) Get(ctx context.Context, id string) (*session.Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if sess.IsExpired() {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, session.ErrExpired
	}
	sess.Training = sess.Training.Clone()
	return &sess, nil
}

func (s *Store) Set(ctx context.Context, sess *session.Session) error {
	cp := *sess
	cp.Training = sess.Training.Clone()

	s.mu.Lock()
	s.sessions[sess.ID] = cp
	s.mu.Unlock()
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *Store) Cleanup(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.IsExpired() {
			delete(s.sessions, id)
		}
	}
	return nil
}

// Len returns the number of stored sessions, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

func (s *Store) Close() error { return nil }

var _ session.Store = (*Store)(nil)
