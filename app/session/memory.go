package session

import (
	"context"
	"sync"
	"time"

	"github.com/mytheresa/storefront/app/log"
)

// DefaultCheckPeriod is how often the memory store prunes expired sessions.
const DefaultCheckPeriod = 24 * time.Hour

// MemoryStore keeps sessions in a map. Sessions do not survive a restart.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]Session
	now      func() time.Time

	stop     chan struct{}
	stopOnce sync.Once
}

// NewMemoryStore starts a store whose janitor prunes every checkPeriod.
// A non-positive checkPeriod uses DefaultCheckPeriod. Call Close to stop the janitor.
func NewMemoryStore(checkPeriod time.Duration) *MemoryStore {
	if checkPeriod <= 0 {
		checkPeriod = DefaultCheckPeriod
	}
	s := &MemoryStore{
		sessions: make(map[string]Session),
		now:      time.Now,
		stop:     make(chan struct{}),
	}
	go s.janitor(checkPeriod)
	return s
}

func (s *MemoryStore) Get(_ context.Context, id string) (*Session, error) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()

	if !ok || !s.now().Before(sess.ExpiresAt) {
		return nil, ErrNotFound
	}
	return &sess, nil
}

func (s *MemoryStore) Set(_ context.Context, id string, sess *Session, ttl time.Duration) error {
	sess.ExpiresAt = s.now().Add(ttl)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[id] = *sess
	return nil
}

func (s *MemoryStore) Touch(_ context.Context, id string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	sess, ok := s.sessions[id]
	if !ok || !now.Before(sess.ExpiresAt) {
		return ErrNotFound
	}
	sess.ExpiresAt = now.Add(ttl)
	s.sessions[id] = sess
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, id)
	return nil
}

func (s *MemoryStore) DeleteExpired(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var n int64
	for id, sess := range s.sessions {
		if !now.Before(sess.ExpiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Len reports how many records are held, expired ones included.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Close stops the janitor. It is safe to call more than once.
func (s *MemoryStore) Close() error {
	s.stopOnce.Do(func() { close(s.stop) })
	return nil
}

func (s *MemoryStore) janitor(period time.Duration) {
	ticker := time.NewTicker(period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if n, _ := s.DeleteExpired(context.Background()); n > 0 {
				log.Debug("pruned expired sessions", "count", n)
			}
		case <-s.stop:
			return
		}
	}
}
