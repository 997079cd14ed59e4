package memory

import (
	"context"
	"sync"
	"time"

	"trivia-contest-service/internal/domain"
)

// SessionStore is an in-memory implementation of app.SessionStore.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]domain.Session // keyed by session ID
}

func NewSessionStore() *SessionStore {
	return &SessionStore{sessions: make(map[string]domain.Session)}
}

func (s *SessionStore) CountLive(_ context.Context, identity string, cutoff time.Time, excludeSessionID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	count := 0
	for _, sess := range s.sessions {
		if sess.Identity != identity || sess.SessionID == excludeSessionID {
			continue
		}
		// Strictly after: a session last seen exactly one window ago is dead.
		if sess.LastSeen.After(cutoff) {
			count++
		}
	}
	return count, nil
}

func (s *SessionStore) DeleteBefore(_ context.Context, identity string, cutoff time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, sess := range s.sessions {
		if sess.Identity == identity && !sess.LastSeen.After(cutoff) {
			delete(s.sessions, id)
		}
	}
	return nil
}

func (s *SessionStore) Insert(_ context.Context, sess domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[sess.SessionID] = sess
	return nil
}

func (s *SessionStore) Touch(_ context.Context, sessionID string, now time.Time) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		return false, nil
	}
	sess.LastSeen = now
	s.sessions[sessionID] = sess
	return true, nil
}

func (s *SessionStore) Delete(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
