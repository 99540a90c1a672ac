package session

import (
	"context"
	"sync"
	"time"

	"github.com/kvitka-shop/flower-bot/models"
)

type memoryEntry struct {
	state     *models.SessionState
	expiresAt time.Time
}

// MemoryStore implements Store with an in-process map. It honors the
// same idle-TTL contract as the Redis driver and is used in tests and
// single-node development setups.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration

	now func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get implements Store. An expired entry is dropped and reported as
// missing, so a stale session reads as brand new.
func (s *MemoryStore) Get(ctx context.Context, id string) (*models.SessionState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, exists := s.sessions[id]
	if !exists {
		return nil, nil
	}
	if s.now().After(entry.expiresAt) {
		delete(s.sessions, id)
		return nil, nil
	}

	// Refresh TTL on read
	entry.expiresAt = s.now().Add(s.ttl)
	s.sessions[id] = entry

	copied := *entry.state
	return &copied, nil
}

// Put implements Store. Last writer wins.
func (s *MemoryStore) Put(ctx context.Context, state *models.SessionState) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	state.UpdatedAt = s.now()
	copied := *state
	s.sessions[state.ID] = memoryEntry{
		state:     &copied,
		expiresAt: s.now().Add(s.ttl),
	}
	return nil
}

// Delete implements Store.
func (s *MemoryStore) Delete(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, id)
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.sessions = nil
	return nil
}
