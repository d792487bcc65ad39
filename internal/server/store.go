package server

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spigell/interview-prep/internal/analysis"
)

const defaultSessionTTL = 2 * time.Hour

// entry serializes requests of one browser session.
type entry struct {
	mu       sync.Mutex
	state    *analysis.State
	lastSeen time.Time
}

// store keeps per-cookie analysis state in memory. Idle entries expire after ttl.
type store struct {
	mu      sync.Mutex
	entries map[string]*entry
	ttl     time.Duration
	now     func() time.Time
}

func newStore(ttl time.Duration) *store {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}

	return &store{
		entries: make(map[string]*entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// get returns the entry for id, creating a fresh one when id is unknown or
// expired. The returned id is the one the caller should keep in the cookie.
func (s *store) get(id string) (string, *entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	s.evict(now)

	if e, ok := s.entries[id]; ok && id != "" {
		e.lastSeen = now
		return id, e
	}

	id = uuid.NewString()
	e := &entry{state: analysis.NewState(), lastSeen: now}
	s.entries[id] = e

	return id, e
}

func (s *store) evict(now time.Time) {
	for id, e := range s.entries {
		if now.Sub(e.lastSeen) > s.ttl {
			delete(s.entries, id)
		}
	}
}

func (s *store) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
