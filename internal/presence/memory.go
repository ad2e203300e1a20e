package presence

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is the single-instance fallback used when the shared store is
// unreachable at startup. Entries expire lazily after the TTL, matching the
// shared store's crash-recovery behavior.
type MemoryStore struct {
	mu    sync.Mutex
	ttl   time.Duration
	rooms map[string]map[string]time.Time // room -> user -> expiry
	now   func() time.Time
}

func NewMemoryStore(ttl time.Duration) *MemoryStore {
	return &MemoryStore{
		ttl:   ttl,
		rooms: make(map[string]map[string]time.Time),
		now:   time.Now,
	}
}

func (s *MemoryStore) Add(_ context.Context, room, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.rooms[room] == nil {
		s.rooms[room] = make(map[string]time.Time)
	}
	s.rooms[room][user] = s.now().Add(s.ttl)
	return nil
}

func (s *MemoryStore) Remove(_ context.Context, room, user string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if members, ok := s.rooms[room]; ok {
		delete(members, user)
		if len(members) == 0 {
			delete(s.rooms, room)
		}
	}
	return nil
}

func (s *MemoryStore) Members(_ context.Context, room string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	members := s.rooms[room]
	if len(members) == 0 {
		return nil, nil
	}
	now := s.now()
	result := make([]string, 0, len(members))
	for user, expiry := range members {
		if expiry.Before(now) {
			delete(members, user)
			continue
		}
		result = append(result, user)
	}
	if len(members) == 0 {
		delete(s.rooms, room)
	}
	return result, nil
}
