package cache

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/medisync/backend/internal/domain/dispensing"
)

type sessionEntry struct {
	session   *dispensing.Session
	expiresAt time.Time
}

// InMemorySessionStore keeps dispensing sessions in process memory. Suitable
// for a single-instance deployment and for tests; state is lost on restart.
type InMemorySessionStore struct {
	mu        sync.RWMutex
	entries   map[uuid.UUID]sessionEntry
	ttl       time.Duration
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemorySessionStore creates the store and starts a cleanup goroutine
// that evicts expired sessions
func NewInMemorySessionStore(ttl time.Duration) *InMemorySessionStore {
	store := &InMemorySessionStore{
		entries:  make(map[uuid.UUID]sessionEntry),
		ttl:      ttl,
		stopChan: make(chan struct{}),
	}
	store.wg.Add(1)
	go store.cleanupLoop()
	return store
}

// Get returns the operator's session, or (nil, nil) when none exists
func (s *InMemorySessionStore) Get(_ context.Context, operatorID uuid.UUID) (*dispensing.Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.entries[operatorID]
	if !ok || time.Now().After(e.expiresAt) {
		return nil, nil
	}
	return e.session, nil
}

// Put stores the session, refreshing its TTL
func (s *InMemorySessionStore) Put(_ context.Context, session *dispensing.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[session.OperatorID] = sessionEntry{
		session:   session,
		expiresAt: time.Now().Add(s.ttl),
	}
	return nil
}

// Delete removes the operator's session
func (s *InMemorySessionStore) Delete(_ context.Context, operatorID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, operatorID)
	return nil
}

// Close stops the cleanup goroutine
func (s *InMemorySessionStore) Close() {
	s.closeOnce.Do(func() {
		close(s.stopChan)
		s.wg.Wait()
	})
}

func (s *InMemorySessionStore) cleanupLoop() {
	defer s.wg.Done()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.evictExpired()
		case <-s.stopChan:
			return
		}
	}
}

func (s *InMemorySessionStore) evictExpired() {
	now := time.Now()
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, e := range s.entries {
		if now.After(e.expiresAt) {
			delete(s.entries, id)
		}
	}
}
