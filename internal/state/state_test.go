package state

import (
	"sync"
	"testing"
	"time"

	"rift-rewind/internal/domain"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var foo = domain.Identity{GameName: "Foo", TagLine: "NA1", Region: "americas"}

func profile(name string) *domain.PlayerProfile {
	return &domain.PlayerProfile{
		Summoner:           domain.Summoner{Name: name},
		PerformanceMetrics: []domain.Metric{{Metric: "Farming", Value: 50}},
		BestDuo:            domain.Duo{Summoner: domain.Summoner{Name: "Bar"}, PerformanceMetrics: []domain.Metric{}},
	}
}

func TestStore_ReplaceAndCurrent(t *testing.T) {
	s := NewStore()
	_, _, ok := s.Current()
	assert.False(t, ok)

	gen, err := s.Begin()
	require.NoError(t, err)
	require.NoError(t, s.Replace(gen, foo, profile("Foo")))
	s.End(gen)

	p, id, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "Foo", p.Summoner.Name)
	assert.Equal(t, foo, id)

	p.PerformanceMetrics[0].Value = 99
	again, _, _ := s.Current()
	assert.Equal(t, 50.0, again.PerformanceMetrics[0].Value)
}

func TestStore_Busy(t *testing.T) {
	s := NewStore()
	gen, err := s.Begin()
	require.NoError(t, err)

	_, err = s.Begin()
	assert.ErrorIs(t, err, ErrBusy)

	s.End(gen)
	_, err = s.Begin()
	assert.NoError(t, err)
}

func TestStore_StaleReplaceIsDiscarded(t *testing.T) {
	s := NewStore()
	first, _ := s.Begin()
	s.End(first)
	second, _ := s.Begin()

	assert.ErrorIs(t, s.Replace(first, foo, profile("Old")), ErrStale)
	require.NoError(t, s.Replace(second, foo, profile("New")))

	p, _, _ := s.Current()
	assert.Equal(t, "New", p.Summoner.Name)
}

func TestStore_MergeDuo(t *testing.T) {
	s := NewStore()
	gen, _ := s.Begin()
	require.NoError(t, s.Replace(gen, foo, profile("Foo")))
	s.End(gen)

	snap, err := s.BeginDuo()
	require.NoError(t, err)
	assert.Equal(t, gen, snap.Gen)
	assert.Equal(t, "Foo", snap.Profile.Summoner.Name)
	assert.Equal(t, foo, snap.Identity)
	_, err = s.BeginDuo()
	assert.ErrorIs(t, err, ErrBusy)

	details := &domain.DuoDetails{
		Duo: domain.Duo{
			Summoner:           domain.Summoner{Name: "Bar", MainChampion: "Thresh"},
			PerformanceMetrics: []domain.Metric{{Metric: "Vision", Value: 90}},
		},
		Stats: domain.DuoStats{Synergy: 94, BestCombo: "Peel and carry"},
	}
	merged, err := s.MergeDuo(snap.Gen, details)
	require.NoError(t, err)
	s.EndDuo()
	assert.Equal(t, "Thresh", merged.BestDuo.MainChampion)

	p, _, _ := s.Current()
	assert.Equal(t, "Foo", p.Summoner.Name)
	assert.Equal(t, "Thresh", p.BestDuo.MainChampion)
	assert.Len(t, p.BestDuo.PerformanceMetrics, 1)
	assert.Equal(t, 94, p.DuoStats.Synergy)
	assert.Equal(t, 50.0, p.PerformanceMetrics[0].Value)

	details.Duo.PerformanceMetrics[0].Value = 1
	p, _, _ = s.Current()
	assert.Equal(t, 90.0, p.BestDuo.PerformanceMetrics[0].Value)
}

func TestStore_MergeDuoAfterNewProfileIsStale(t *testing.T) {
	s := NewStore()
	gen, _ := s.Begin()
	require.NoError(t, s.Replace(gen, foo, profile("Foo")))
	s.End(gen)

	snap, _ := s.BeginDuo()
	next, _ := s.Begin()
	require.NoError(t, s.Replace(next, foo, profile("Baz")))

	_, err := s.MergeDuo(snap.Gen, &domain.DuoDetails{})
	assert.ErrorIs(t, err, ErrStale)
	p, _, _ := s.Current()
	assert.Equal(t, "Bar", p.BestDuo.Name)
}

func TestStore_DuoDuringProfileFetch(t *testing.T) {
	s := NewStore()
	first, _ := s.Begin()
	require.NoError(t, s.Replace(first, foo, profile("Foo")))
	s.End(first)

	// a second lookup starts before the duo fetch and lands before it merges
	second, err := s.Begin()
	require.NoError(t, err)
	snap, err := s.BeginDuo()
	require.NoError(t, err)
	assert.Equal(t, first, snap.Gen)
	assert.Equal(t, "Foo", snap.Profile.Summoner.Name)

	baz := profile("Baz")
	baz.BestDuo.Name = "Qux"
	require.NoError(t, s.Replace(second, foo, baz))
	s.End(second)

	details := &domain.DuoDetails{Duo: snap.Profile.BestDuo, Stats: domain.DuoStats{Synergy: 94}}
	details.Duo.MainChampion = "Thresh"
	_, err = s.MergeDuo(snap.Gen, details)
	assert.ErrorIs(t, err, ErrStale)
	s.EndDuo()

	p, _, _ := s.Current()
	assert.Equal(t, "Baz", p.Summoner.Name)
	assert.Equal(t, "Qux", p.BestDuo.Name)
	assert.Empty(t, p.BestDuo.MainChampion)
	assert.Zero(t, p.DuoStats.Synergy)
}

func TestStore_DuoMergesWhileProfileFetchIsPending(t *testing.T) {
	s := NewStore()
	first, _ := s.Begin()
	require.NoError(t, s.Replace(first, foo, profile("Foo")))
	s.End(first)

	second, _ := s.Begin()
	snap, _ := s.BeginDuo()
	_, err := s.MergeDuo(snap.Gen, &domain.DuoDetails{Duo: snap.Profile.BestDuo, Stats: domain.DuoStats{Synergy: 70}})
	require.NoError(t, err)
	s.EndDuo()

	require.NoError(t, s.Replace(second, foo, profile("Baz")))
	p, _, _ := s.Current()
	assert.Equal(t, "Baz", p.Summoner.Name)
	assert.Zero(t, p.DuoStats.Synergy)
}

func TestStore_BeginDuoWithoutProfile(t *testing.T) {
	s := NewStore()
	_, err := s.BeginDuo()
	assert.ErrorIs(t, err, ErrNoProfile)

	_, err = s.MergeDuo(0, &domain.DuoDetails{})
	assert.ErrorIs(t, err, ErrStale)
}

func TestStore_ConcurrentReaders(t *testing.T) {
	s := NewStore()
	gen, _ := s.Begin()
	require.NoError(t, s.Replace(gen, foo, profile("Foo")))
	s.End(gen)

	var wg sync.WaitGroup
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			p, _, ok := s.Current()
			assert.True(t, ok)
			p.PerformanceMetrics[0].Value = 0
		}()
	}
	wg.Wait()

	p, _, _ := s.Current()
	assert.Equal(t, 50.0, p.PerformanceMetrics[0].Value)
}

func TestSessions(t *testing.T) {
	sessions := NewSessions(zerolog.Nop())
	now := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	sessions.now = func() time.Time { return now }

	id, store, err := sessions.Open("")
	require.NoError(t, err)
	assert.Len(t, id, 21)

	sameID, same, err := sessions.Open(id)
	require.NoError(t, err)
	assert.Equal(t, id, sameID)
	assert.Same(t, store, same)

	otherID, other, err := sessions.Open("unknown")
	require.NoError(t, err)
	assert.NotEqual(t, "unknown", otherID)
	assert.NotSame(t, store, other)

	got, ok := sessions.Get(id)
	assert.True(t, ok)
	assert.Same(t, store, got)
	_, ok = sessions.Get("missing")
	assert.False(t, ok)

	assert.Equal(t, 2, sessions.Len())
	now = now.Add(sessions.idleTTL / 2)
	sessions.Get(id)
	now = now.Add(sessions.idleTTL/2 + time.Second)

	assert.Equal(t, 1, sessions.Sweep())
	_, ok = sessions.Get(id)
	assert.True(t, ok)
	_, ok = sessions.Get(otherID)
	assert.False(t, ok)
}
