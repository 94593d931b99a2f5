package service

import (
	"rift-rewind/internal/domain"
	"rift-rewind/internal/normalize"
	"rift-rewind/internal/radar"
	"rift-rewind/internal/state"
)

type RadarService struct {
	sessions *state.Sessions
	geometry radar.Geometry
}

func NewRadarService(sessions *state.Sessions) *RadarService {
	return &RadarService{sessions: sessions, geometry: radar.DefaultGeometry()}
}

// Chart builds the radar for the session's profile. The duo series is only
// added when overlay is set and the duo's metrics have been fetched.
func (s *RadarService) Chart(sessionID string, overlay bool) (radar.Chart, *domain.PlayerProfile, error) {
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return radar.Chart{}, nil, ErrUnknownSession
	}
	profile, _, ok := store.Current()
	if !ok {
		return radar.Chart{}, nil, ErrNoProfile
	}
	return BuildChart(s.geometry, profile, overlay), profile, nil
}

func BuildChart(g radar.Geometry, profile *domain.PlayerProfile, overlay bool) radar.Chart {
	chart := radar.Chart{Geometry: g}
	for i, m := range normalize.Metrics(nil, nil) {
		chart.Labels[i] = m.Metric
	}

	if len(profile.PerformanceMetrics) > 0 {
		chart.Series = append(chart.Series, radar.Series{
			Name:    profile.Summoner.Name,
			Values:  normalize.Values(profile.PerformanceMetrics),
			Palette: radar.PlayerPalette,
		})
	}
	if overlay && len(profile.BestDuo.PerformanceMetrics) > 0 {
		chart.Series = append(chart.Series, radar.Series{
			Name:    profile.BestDuo.Name,
			Values:  normalize.Values(profile.BestDuo.PerformanceMetrics),
			Palette: radar.DuoPalette,
		})
	}
	return chart
}
