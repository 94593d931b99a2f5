package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rift-rewind/internal/constants"
	"rift-rewind/internal/domain"
	"rift-rewind/internal/normalize"
	"rift-rewind/internal/payload"
	"rift-rewind/internal/state"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type DuoService struct {
	upstream   Upstream
	sessions   *state.Sessions
	normalizer *normalize.Normalizer
	logger     zerolog.Logger
}

func NewDuoService(upstream Upstream, sessions *state.Sessions, normalizer *normalize.Normalizer, logger zerolog.Logger) *DuoService {
	return &DuoService{upstream: upstream, sessions: sessions, normalizer: normalizer, logger: logger}
}

// FetchDuoDetails enriches the session's best duo with the partner's own
// metrics and the pair comparison, and merges the result into the held
// profile. duo overrides the partner identity; nil uses the held best duo.
func (s *DuoService) FetchDuoDetails(ctx context.Context, sessionID string, duo *domain.Identity) (*domain.PlayerProfile, error) {
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, ErrUnknownSession
	}
	snap, err := store.BeginDuo()
	if errors.Is(err, state.ErrNoProfile) {
		return nil, ErrNoProfile
	}
	if err != nil {
		return nil, err
	}
	defer store.EndDuo()
	profile, player := snap.Profile, snap.Identity

	duoID, err := s.duoIdentity(profile, player, duo)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	log := s.logger.With().Str("session", sessionID).Str("player", player.String()).Str("duo", duoID.String()).Logger()
	log.Info().Msg("fetching duo details")

	var (
		summary   *domain.SummaryPayload
		strengths *domain.StrengthsEnvelope
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.upstream.GetSummary(gctx, duoID)
		return err
	})
	g.Go(func() error {
		env, err := s.upstream.AnalyzeStrengths(gctx, duoID)
		if err != nil {
			log.Warn().Err(err).Msg("duo strengths analysis unavailable")
			return nil
		}
		strengths = env
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to fetch duo summary")
		return nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	// the comparison prompt needs both identities resolved
	in := normalize.Inputs{Summary: summary}
	if p, err := payload.Strengths(strengths); err == nil {
		in.Strengths = p
	} else if strengths != nil {
		log.Warn().Err(err).Msg("duo strengths payload degraded")
	}

	comparison, err := s.upstream.Compare(ctx, player, duoID)
	if err != nil {
		log.Warn().Err(err).Msg("comparison unavailable")
	} else if p, err := payload.Comparison(comparison); err == nil {
		in.Comparison = p
	} else {
		log.Warn().Err(err).Msg("comparison payload degraded")
	}

	current := profile.BestDuo
	if duo != nil {
		// the held card describes a different partner
		current = domain.Duo{
			Summoner: domain.Summoner{
				Name:         duoID.GameName,
				TagLine:      duoID.TagLine,
				MainChampion: constants.FallbackDuoChampion,
				Rank:         "Unknown",
				KDA:          "0.00:1",
				Region:       duoID.Region,
			},
		}
	}
	details := s.normalizer.NormalizeDuo(current, in)
	if details.Stats.Similarity == 0 && len(profile.PerformanceMetrics) > 0 && len(details.Duo.PerformanceMetrics) > 0 {
		details.Stats.Similarity = normalize.Similarity(profile.PerformanceMetrics, details.Duo.PerformanceMetrics)
	}

	merged, err := store.MergeDuo(snap.Gen, details)
	if err != nil {
		log.Debug().Err(err).Msg("discarding duo details")
		return nil, err
	}

	log.Info().Int("synergy", merged.DuoStats.Synergy).Msg("duo details merged")
	return merged, nil
}

func (s *DuoService) duoIdentity(profile *domain.PlayerProfile, player domain.Identity, override *domain.Identity) (domain.Identity, error) {
	if override != nil {
		id := *override
		if strings.TrimSpace(id.Region) == "" {
			id.Region = player.Region
		}
		return ValidateIdentity(id)
	}

	d := profile.BestDuo
	if d.Name == "" || d.Name == "Unknown Player" {
		return domain.Identity{}, ErrNoDuo
	}
	return ValidateIdentity(domain.Identity{GameName: d.Name, TagLine: d.TagLine, Region: player.Region})
}
