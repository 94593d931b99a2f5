package service

import (
	"context"
	"fmt"

	"rift-rewind/internal/constants"
	"rift-rewind/internal/domain"
	"rift-rewind/internal/normalize"
	"rift-rewind/internal/payload"
	"rift-rewind/internal/state"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

type ProfileService struct {
	upstream   Upstream
	lookups    LookupStore
	sessions   *state.Sessions
	normalizer *normalize.Normalizer
	logger     zerolog.Logger
}

func NewProfileService(upstream Upstream, lookups LookupStore, sessions *state.Sessions, normalizer *normalize.Normalizer, logger zerolog.Logger) *ProfileService {
	return &ProfileService{upstream: upstream, lookups: lookups, sessions: sessions, normalizer: normalizer, logger: logger}
}

// FetchProfile runs a lookup for id and makes the result the session's
// profile. An empty or unknown sessionID opens a new session; the id in use
// is returned alongside the profile.
func (s *ProfileService) FetchProfile(ctx context.Context, sessionID string, id domain.Identity) (string, *domain.PlayerProfile, error) {
	id, err := ValidateIdentity(id)
	if err != nil {
		return "", nil, err
	}

	sessionID, store, err := s.sessions.Open(sessionID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to open session: %w", err)
	}

	gen, err := store.Begin()
	if err != nil {
		return sessionID, nil, err
	}
	defer store.End(gen)

	ctx, cancel := context.WithTimeout(ctx, constants.RequestTimeout)
	defer cancel()

	log := s.logger.With().Str("session", sessionID).Str("game_name", id.GameName).Str("tag_line", id.TagLine).Str("region", id.Region).Logger()
	log.Info().Msg("fetching profile")

	var (
		summary   *domain.SummaryPayload
		strengths *domain.StrengthsEnvelope
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		summary, err = s.upstream.GetSummary(gctx, id)
		return err
	})
	g.Go(func() error {
		env, err := s.upstream.AnalyzeStrengths(gctx, id)
		if err != nil {
			log.Warn().Err(err).Msg("strengths analysis unavailable")
			return nil
		}
		strengths = env
		return nil
	})
	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("failed to fetch summary")
		return sessionID, nil, fmt.Errorf("%w: %w", ErrUpstream, err)
	}

	if strengths != nil {
		if _, err := payload.Strengths(strengths); err != nil {
			log.Warn().Err(err).Msg("strengths payload degraded")
		}
	}

	profile, err := s.normalizer.Normalize(summary, strengths, nil)
	if err != nil {
		return sessionID, nil, fmt.Errorf("failed to normalize profile: %w", err)
	}

	if err := store.Replace(gen, id, profile); err != nil {
		log.Debug().Err(err).Msg("discarding profile")
		return sessionID, nil, err
	}

	dbCtx, dbCancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer dbCancel()
	if err := s.lookups.Record(dbCtx, domain.Lookup{GameName: id.GameName, TagLine: id.TagLine, Region: id.Region, Rank: profile.Summoner.Rank}); err != nil {
		log.Warn().Err(err).Msg("failed to record lookup")
	}

	log.Info().Str("archetype", profile.Archetype).Int("metrics", len(profile.PerformanceMetrics)).Msg("profile fetched successfully")
	return sessionID, profile, nil
}

// Current returns the session's profile.
func (s *ProfileService) Current(sessionID string) (*domain.PlayerProfile, domain.Identity, error) {
	store, ok := s.sessions.Get(sessionID)
	if !ok {
		return nil, domain.Identity{}, ErrUnknownSession
	}
	profile, id, ok := store.Current()
	if !ok {
		return nil, domain.Identity{}, ErrNoProfile
	}
	return profile, id, nil
}

func (s *ProfileService) SearchSuggestions(ctx context.Context, query string) ([]domain.Lookup, error) {
	ctx, cancel := context.WithTimeout(ctx, constants.DatabaseTimeout)
	defer cancel()

	s.logger.Debug().Str("query", query).Msg("searching lookups")

	lookups, err := s.lookups.Search(ctx, query, constants.SearchSuggestionLimit)
	if err != nil {
		s.logger.Error().Err(err).Str("query", query).Msg("failed to search lookups")
		return nil, err
	}
	return lookups, nil
}
