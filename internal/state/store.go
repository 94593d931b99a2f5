// Package state holds the canonical profile for each client session.
package state

import (
	"errors"
	"sync"

	"rift-rewind/internal/domain"
)

var (
	ErrStale     = errors.New("result belongs to a superseded request")
	ErrBusy      = errors.New("a request is already in flight")
	ErrNoProfile = errors.New("no profile loaded")
)

// Generation identifies one fetch action. Only the latest generation may
// write to the store.
type Generation uint64

// Snapshot is the held profile as of the start of a duo fetch. Gen is the
// generation that produced Profile.
type Snapshot struct {
	Gen      Generation
	Profile  *domain.PlayerProfile
	Identity domain.Identity
}

type Store struct {
	mu        sync.RWMutex
	gen       Generation
	held      Generation
	profile   *domain.PlayerProfile
	identity  domain.Identity
	inFlight  bool
	duoFlight bool
}

func NewStore() *Store {
	return &Store{}
}

// Begin starts a profile fetch. It fails with ErrBusy while another profile
// fetch is outstanding; callers must call End when done.
func (s *Store) Begin() (Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.inFlight {
		return 0, ErrBusy
	}
	s.inFlight = true
	s.gen++
	return s.gen, nil
}

func (s *Store) End(gen Generation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen == s.gen {
		s.inFlight = false
	}
}

// BeginDuo starts a duo details fetch against the held profile and returns
// a snapshot of it. A profile fetch still in flight does not move the
// snapshot; its Replace does, and makes the pending merge stale.
func (s *Store) BeginDuo() (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil {
		return Snapshot{}, ErrNoProfile
	}
	if s.duoFlight {
		return Snapshot{}, ErrBusy
	}
	s.duoFlight = true
	return Snapshot{Gen: s.held, Profile: s.profile.Clone(), Identity: s.identity}, nil
}

func (s *Store) EndDuo() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.duoFlight = false
}

// Replace swaps in a freshly normalized profile wholesale.
func (s *Store) Replace(gen Generation, id domain.Identity, profile *domain.PlayerProfile) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.gen {
		return ErrStale
	}
	s.profile = profile.Clone()
	s.identity = id
	s.held = gen
	return nil
}

// MergeDuo fills in the duo card and stats of the profile gen produced and
// returns a copy of the result. The rest of the profile is left untouched.
func (s *Store) MergeDuo(gen Generation, details *domain.DuoDetails) (*domain.PlayerProfile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.profile == nil || gen != s.held {
		return nil, ErrStale
	}
	p := s.profile.Clone()
	p.BestDuo = details.Duo
	p.BestDuo.PerformanceMetrics = append([]domain.Metric{}, details.Duo.PerformanceMetrics...)
	p.BestDuo.Insights = append([]domain.Insight(nil), details.Duo.Insights...)
	p.DuoStats = details.Stats
	s.profile = p
	return p.Clone(), nil
}

// Current returns a copy of the held profile and the identity it was
// fetched for.
func (s *Store) Current() (*domain.PlayerProfile, domain.Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.profile == nil {
		return nil, domain.Identity{}, false
	}
	return s.profile.Clone(), s.identity, true
}
