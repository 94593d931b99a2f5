package state

import (
	"context"
	"sync"
	"time"

	"rift-rewind/internal/constants"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type entry struct {
	store    *Store
	lastSeen time.Time
}

// Sessions maps session ids to stores and forgets sessions left idle.
type Sessions struct {
	mu      sync.Mutex
	entries map[string]*entry
	idleTTL time.Duration
	now     func() time.Time
	logger  zerolog.Logger
}

func NewSessions(logger zerolog.Logger) *Sessions {
	return &Sessions{
		entries: make(map[string]*entry),
		idleTTL: constants.SessionIdleTTL,
		now:     time.Now,
		logger:  logger,
	}
}

// Open returns the store for id, creating a new session when id is empty or
// unknown. The returned id is the one callers must use from now on.
func (s *Sessions) Open(id string) (string, *Store, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[id]; ok && id != "" {
		e.lastSeen = s.now()
		return id, e.store, nil
	}

	newID, err := gonanoid.New()
	if err != nil {
		return "", nil, err
	}
	store := NewStore()
	s.entries[newID] = &entry{store: store, lastSeen: s.now()}
	return newID, store, nil
}

// Get returns an existing session's store.
func (s *Sessions) Get(id string) (*Store, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.entries[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = s.now()
	return e.store, true
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Sweep drops sessions idle for longer than the idle TTL.
func (s *Sessions) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := s.now().Add(-s.idleTTL)
	removed := 0
	for id, e := range s.entries {
		if e.lastSeen.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed
}

// Run sweeps periodically until ctx is done.
func (s *Sessions) Run(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.Sweep(); n > 0 {
				s.logger.Debug().Int("removed", n).Msg("evicted idle sessions")
			}
		}
	}
}
