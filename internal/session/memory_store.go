package session

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

type entry[T any] struct {
	value     T
	expiresAt time.Time
}

// MemoryStore is an in-process Store. Expired entries are invisible to lookups and
// are removed by Sweep, which Run calls on a ticker.
type MemoryStore struct {
	mu       sync.Mutex
	sessions map[string]entry[Session]
	staged   map[string]entry[StagedUpload]
	now      func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]entry[Session]),
		staged:   make(map[string]entry[StagedUpload]),
		now:      time.Now,
	}
}

var _ Store = (*MemoryStore)(nil)

func (s *MemoryStore) SaveSession(ctx context.Context, sess Session, ttl time.Duration) error {
	s.mu.Lock()
	s.sessions[sess.ID] = entry[Session]{value: sess, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LookupSession(ctx context.Context, id string) (Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return Session{}, ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) DeleteSession(ctx context.Context, id string) error {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) SaveStaged(ctx context.Context, u StagedUpload, ttl time.Duration) error {
	s.mu.Lock()
	s.staged[u.ID] = entry[StagedUpload]{value: u, expiresAt: s.now().Add(ttl)}
	s.mu.Unlock()
	return nil
}

func (s *MemoryStore) LookupStaged(ctx context.Context, id string) (StagedUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.staged[id]
	if !ok || !s.now().Before(e.expiresAt) {
		return StagedUpload{}, ErrNotFound
	}
	return e.value, nil
}

func (s *MemoryStore) TakeStaged(ctx context.Context, id string) (StagedUpload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.staged[id]
	if !ok {
		return StagedUpload{}, ErrNotFound
	}
	delete(s.staged, id)
	if !s.now().Before(e.expiresAt) {
		return StagedUpload{}, ErrNotFound
	}
	return e.value, nil
}

// Sweep drops expired entries and returns how many were removed.
func (s *MemoryStore) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	n := 0
	for id, e := range s.sessions {
		if !now.Before(e.expiresAt) {
			delete(s.sessions, id)
			n++
		}
	}
	for id, e := range s.staged {
		if !now.Before(e.expiresAt) {
			delete(s.staged, id)
			n++
		}
	}
	return n
}

// Run sweeps every interval until ctx is done.
func (s *MemoryStore) Run(ctx context.Context, interval time.Duration, log zerolog.Logger) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				log.Debug().Int("removed", n).Msg("session sweep")
			}
		}
	}
}
