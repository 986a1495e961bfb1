package session

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process Store for single-replica setups and tests.
type MemoryStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	now      func() time.Time
	sessions map[string]*memorySession
}

type memorySession struct {
	records   map[string]int
	expiresAt time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = TTLSessionData
	}
	return &MemoryStore{
		ttl:      ttl,
		now:      time.Now,
		sessions: make(map[string]*memorySession),
	}
}

// live returns the session if present and unexpired. Caller holds mu.
func (s *MemoryStore) live(sessionID string) *memorySession {
	sess, ok := s.sessions[sessionID]
	if !ok {
		return nil
	}
	if !s.now().Before(sess.expiresAt) {
		delete(s.sessions, sessionID)
		return nil
	}
	return sess
}

// touch returns the live session, creating it if needed, with a fresh TTL.
func (s *MemoryStore) touch(sessionID string) *memorySession {
	sess := s.live(sessionID)
	if sess == nil {
		sess = &memorySession{records: make(map[string]int)}
		s.sessions[sessionID] = sess
	}
	sess.expiresAt = s.now().Add(s.ttl)
	return sess
}

func (s *MemoryStore) Get(_ context.Context, sessionID, exerciseType string) (int, bool, error) {
	if sessionID == "" {
		return 0, false, ErrSessionKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.live(sessionID)
	if sess == nil {
		return 0, false, nil
	}
	value, ok := sess.records[exerciseType]
	return value, ok, nil
}

func (s *MemoryStore) Set(_ context.Context, sessionID, exerciseType string, value int) error {
	if sessionID == "" {
		return ErrSessionKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.touch(sessionID).records[exerciseType] = value
	return nil
}

func (s *MemoryStore) Raise(_ context.Context, sessionID, exerciseType string, value int) (int, error) {
	if sessionID == "" {
		return 0, ErrSessionKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	sess := s.touch(sessionID)
	if value > sess.records[exerciseType] {
		sess.records[exerciseType] = value
	}
	return sess.records[exerciseType], nil
}

func (s *MemoryStore) Forget(_ context.Context, sessionID string) error {
	if sessionID == "" {
		return ErrSessionKeyEmpty
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, sessionID)
	return nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

func (s *MemoryStore) Close() error {
	return nil
}
