// Package normalize turns the three upstream payloads into the canonical
// PlayerProfile. Everything here is a pure function of its inputs.
package normalize

import (
	"errors"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"

	"rift-rewind/internal/config"
	"rift-rewind/internal/constants"
	"rift-rewind/internal/domain"
	"rift-rewind/internal/payload"
)

var ErrNoSummary = errors.New("summary payload is required")

const (
	synergyLoading     = "Loading synergy data..."
	synergyUnavailable = "Synergy data unavailable"
)

type Variant int

const (
	Splash Variant = iota
	Icon
)

type Normalizer struct {
	ddragonVersion string
}

func New(cfg *config.Config) *Normalizer {
	v := constants.DefaultDDragonVer
	if cfg != nil && cfg.DDragonVersion != "" {
		v = cfg.DDragonVersion
	}
	return &Normalizer{ddragonVersion: v}
}

// Inputs are decoded payloads; nil optional sections mean "no data".
type Inputs struct {
	Summary    *domain.SummaryPayload
	Strengths  *domain.StrengthsPayload
	Comparison *domain.ComparisonPayload
}

// ChampionImage builds a Data Dragon URL. An empty name uses the global
// fallback champion so the URL is always complete.
func (n *Normalizer) ChampionImage(name string, v Variant) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = constants.FallbackChampion
	}
	name = url.PathEscape(name)
	if v == Icon {
		return fmt.Sprintf("https://ddragon.leagueoflegends.com/cdn/%s/img/champion/%s.png", n.ddragonVersion, name)
	}
	return fmt.Sprintf("https://ddragon.leagueoflegends.com/cdn/img/champion/splash/%s_0.jpg", name)
}

// KDA is (kills + assists) / max(deaths, 1) with two decimals.
func KDA(kills, deaths, assists int) string {
	d := max(deaths, 1)
	return strconv.FormatFloat(float64(kills+assists)/float64(d), 'f', 2, 64)
}

// Normalize decodes the optional envelopes, dropping any that fail to parse,
// and builds the profile.
func (n *Normalizer) Normalize(summary *domain.SummaryPayload, saw *domain.StrengthsEnvelope, comp *domain.ComparisonEnvelope) (*domain.PlayerProfile, error) {
	in := Inputs{Summary: summary}
	if p, err := payload.Strengths(saw); err == nil {
		in.Strengths = p
	}
	if p, err := payload.Comparison(comp); err == nil {
		in.Comparison = p
	}
	return n.Build(in)
}

func (n *Normalizer) Build(in Inputs) (*domain.PlayerProfile, error) {
	s := in.Summary
	if s == nil {
		return nil, ErrNoSummary
	}

	profile := &domain.PlayerProfile{
		YearStats:          s.YearStats,
		Insights:           []domain.Insight{},
		PerformanceMetrics: []domain.Metric{},
		MonthlyProgress:    s.MonthlyProgress,
		TopChampions:       n.champions(s.TopChampions),
		RoleDistribution:   roles(s.RoleDistribution),
		RecentAchievements: achievements(s.RecentAchievements),
	}
	if profile.MonthlyProgress == nil {
		profile.MonthlyProgress = []domain.MonthlyProgress{}
	}

	top := ""
	if len(s.TopChampions) > 0 {
		top = strings.TrimSpace(s.TopChampions[0].Name)
	}
	profile.Summoner = domain.Summoner{
		Name:         s.Summoner.Name,
		TagLine:      s.Summoner.TagLine,
		Avatar:       n.ChampionImage(top, Splash),
		MainChampion: orDefault(top, "Unknown"),
		ChampionIcon: n.ChampionImage(top, Icon),
		Level:        s.Summoner.Level,
		Rank:         s.Summoner.Rank,
		LP:           s.Summoner.LP,
		KDA:          KDA(s.YearStats.TotalKills, s.YearStats.TotalDeaths, s.YearStats.TotalAssists),
		WinRate:      s.Summoner.WinRate,
		Region:       s.Summoner.Region,
	}

	if sw := in.Strengths; sw != nil {
		profile.Insights = Insights(sw.Insights)
		profile.PerformanceMetrics = Metrics(sw.Scores, sw.Insights)
		profile.Summary = sw.Summary
		profile.Archetype = scoredArchetype(sw.Scores, profile.PerformanceMetrics)
	}

	profile.BestDuo = n.duoCard(s.BestDuo, s.Summoner.Region)
	profile.DuoStats = duoStats(profile.BestDuo.GamesPlayed, in.Comparison)

	return profile, nil
}

// NormalizeDuo is the second pass run when the duo's details are requested.
// in.Summary may be nil, in which case the card keeps what the primary
// summary already knew and only the metrics and synergy are filled in.
func (n *Normalizer) NormalizeDuo(current domain.Duo, in Inputs) *domain.DuoDetails {
	duo := current
	duo.PerformanceMetrics = []domain.Metric{}
	duo.Insights = nil

	if s := in.Summary; s != nil {
		top := duo.MainChampion
		if len(s.TopChampions) > 0 && strings.TrimSpace(s.TopChampions[0].Name) != "" {
			top = strings.TrimSpace(s.TopChampions[0].Name)
		}
		duo.MainChampion = orDefault(top, constants.FallbackDuoChampion)
		duo.Avatar = n.ChampionImage(duo.MainChampion, Splash)
		duo.ChampionIcon = n.ChampionImage(duo.MainChampion, Icon)
		duo.Level = s.Summoner.Level
		duo.LP = s.Summoner.LP
		duo.Rank = orDefault(s.Summoner.Rank, duo.Rank)
		duo.WinRate = s.Summoner.WinRate
		duo.KDA = KDA(s.YearStats.TotalKills, s.YearStats.TotalDeaths, s.YearStats.TotalAssists)
		duo.Region = orDefault(s.Summoner.Region, duo.Region)
	}

	if sw := in.Strengths; sw != nil {
		duo.PerformanceMetrics = Metrics(sw.Scores, sw.Insights)
		duo.Insights = Insights(sw.Insights)
		duo.Archetype = scoredArchetype(sw.Scores, duo.PerformanceMetrics)
	}

	stats := duoStats(duo.GamesPlayed, in.Comparison)
	if in.Comparison == nil {
		// the fetch has finished, so there is nothing left to load
		stats.BestCombo = synergyUnavailable
	}
	return &domain.DuoDetails{
		Duo:   duo,
		Stats: stats,
	}
}

func (n *Normalizer) duoCard(d *domain.RawDuo, region string) domain.Duo {
	if d == nil {
		d = &domain.RawDuo{}
	}
	champ := orDefault(strings.TrimSpace(d.TopChampion), constants.FallbackDuoChampion)
	return domain.Duo{
		Summoner: domain.Summoner{
			Name:         orDefault(d.Name, "Unknown Player"),
			TagLine:      orDefault(d.Tagline, "NA1"),
			Avatar:       n.ChampionImage(champ, Splash),
			MainChampion: champ,
			ChampionIcon: n.ChampionImage(champ, Icon),
			Rank:         orDefault(d.Rank, "Unknown"),
			WinRate:      d.WinRate,
			KDA:          orDefault(d.KDA, "0.00:1"),
			Region:       region,
		},
		GamesPlayed:        d.GamesTogether,
		PerformanceMetrics: []domain.Metric{},
	}
}

func duoStats(games int, comp *domain.ComparisonPayload) domain.DuoStats {
	if comp == nil {
		return domain.DuoStats{
			GamesPlayed: games,
			WinRate:     constants.DefaultDuoWinRate,
			Synergy:     constants.SynergySimilar,
			BestCombo:   synergyLoading,
		}
	}

	stats := domain.DuoStats{
		GamesPlayed: games,
		Synergy:     SynergyScore(Classification(comp)),
		BestCombo:   "Strong synergy detected!",
	}
	if comp.DuoWinRate != nil {
		stats.WinRate = *comp.DuoWinRate
	}
	if comp.SimilarityPct != nil {
		stats.Similarity = *comp.SimilarityPct
	}
	if ps := comp.PlaystyleSynergy; ps != nil && ps.SynergyInsight != "" {
		stats.BestCombo = ps.SynergyInsight
	} else if comp.Synergy != "" {
		stats.BestCombo = comp.Synergy
	}
	return stats
}

// Classification reduces a comparison to the text SynergyScore inspects: an
// explicit classification wins, then the complementary flag, then the
// free-text narrative.
func Classification(comp *domain.ComparisonPayload) string {
	if comp == nil {
		return ""
	}
	if ps := comp.PlaystyleSynergy; ps != nil {
		if ps.Classification != "" {
			return ps.Classification
		}
		if ps.IsComplementary != nil {
			if *ps.IsComplementary {
				return "complementary"
			}
			return "similar"
		}
		if ps.SynergyInsight != "" {
			return ps.SynergyInsight
		}
	}
	return comp.Synergy
}

func (n *Normalizer) champions(raw []domain.RawChampion) []domain.Champion {
	out := make([]domain.Champion, 0, len(raw))
	for _, c := range raw {
		champ := domain.Champion{
			Name:    c.Name,
			Games:   c.Games,
			Wins:    c.Wins,
			Losses:  c.Losses,
			WinRate: c.WinRate,
			KDA:     c.KDA,
			Mastery: 6,
			Points:  "Unknown",
			Role:    "Unknown",
			Image:   n.ChampionImage(c.Name, Splash),
		}
		if c.MasteryLevel != nil {
			champ.Mastery = *c.MasteryLevel
		}
		if c.MasteryPoints != nil {
			champ.Points = strconv.Itoa(*c.MasteryPoints)
		}
		if c.Role != nil && *c.Role != "" {
			champ.Role = *c.Role
		}
		out = append(out, champ)
	}
	return out
}

func roles(raw []domain.RawRole) []domain.RoleShare {
	out := make([]domain.RoleShare, 0, len(raw))
	for _, r := range raw {
		var v float64
		switch {
		case r.Percentage != nil:
			v = *r.Percentage
		case r.Value != nil:
			v = *r.Value
		}
		if math.IsNaN(v) {
			v = 0
		}
		out = append(out, domain.RoleShare{Role: r.Role, Value: v})
	}
	return out
}

func achievements(raw []domain.RawAchievement) []domain.Achievement {
	out := make([]domain.Achievement, 0, len(raw))
	for _, a := range raw {
		out = append(out, domain.Achievement{
			Title:       a.Name,
			Description: a.Description,
			Level:       a.Level,
			Icon:        achievementIcon,
		})
	}
	return out
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}
