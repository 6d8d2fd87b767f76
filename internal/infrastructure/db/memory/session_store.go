// Package memory holds process-local fallbacks used when Redis is not
// configured. State is lost on restart and is not shared between replicas.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/tripwise/travel-guide/internal/core/domain"
)

const sweepInterval = time.Minute

// SessionStore implements ports.SessionStore with a mutex-guarded map.
// Expired entries are dropped on read, and Save sweeps the whole map at most
// once per sweepInterval.
type SessionStore struct {
	mu        sync.RWMutex
	sessions  map[string]domain.Session
	lastSweep time.Time
	now       func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session), now: time.Now}
}

func (s *SessionStore) Save(_ context.Context, session *domain.Session) error {
	now := s.now()
	if session.Expired(now) {
		return domain.ErrSessionNotFound
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if now.Sub(s.lastSweep) >= sweepInterval {
		for id, existing := range s.sessions {
			if existing.Expired(now) {
				delete(s.sessions, id)
			}
		}
		s.lastSweep = now
	}
	s.sessions[session.ID] = *session
	return nil
}

func (s *SessionStore) Get(_ context.Context, id string) (*domain.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		s.mu.Lock()
		delete(s.sessions, id)
		s.mu.Unlock()
		return nil, domain.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}
