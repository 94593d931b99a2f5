package domain

import (
	"time"
)

// PlayerProfile is the canonical view model every display surface reads.
type PlayerProfile struct {
	Summoner           Summoner          `json:"summoner"`
	YearStats          YearStats         `json:"yearStats"`
	Insights           []Insight         `json:"insights"`
	PerformanceMetrics []Metric          `json:"performanceMetrics"`
	Summary            string            `json:"summary,omitempty"`
	Archetype          string            `json:"archetype,omitempty"`
	MonthlyProgress    []MonthlyProgress `json:"monthlyProgress"`
	TopChampions       []Champion        `json:"topChampions"`
	RoleDistribution   []RoleShare       `json:"roleDistribution"`
	RecentAchievements []Achievement     `json:"recentAchievements"`
	BestDuo            Duo               `json:"bestDuo"`
	DuoStats           DuoStats          `json:"duoStats"`
}

type Summoner struct {
	Name         string  `json:"name"`
	TagLine      string  `json:"tagLine,omitempty"`
	Avatar       string  `json:"avatar"`
	MainChampion string  `json:"mainChampion"`
	ChampionIcon string  `json:"championIcon"`
	Level        int     `json:"level"`
	Rank         string  `json:"rank"`
	LP           int     `json:"lp"`
	KDA          string  `json:"kda"`
	WinRate      float64 `json:"winRate"`
	Region       string  `json:"region"`
}

type YearStats struct {
	GamesPlayed  int     `json:"gamesPlayed"`
	Wins         int     `json:"wins"`
	Losses       int     `json:"losses"`
	HoursPlayed  float64 `json:"hoursPlayed"`
	TotalKills   int     `json:"totalKills"`
	TotalDeaths  int     `json:"totalDeaths"`
	TotalAssists int     `json:"totalAssists"`
	Pentakills   int     `json:"pentakills"`
	Quadrakills  int     `json:"quadrakills"`
	Triplekills  int     `json:"triplekills"`
}

type Insight struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

// Metric is one radar axis; lists of metrics are positional and always use
// the canonical metric order.
type Metric struct {
	Metric      string  `json:"metric"`
	Value       float64 `json:"value"`
	Description string  `json:"description"`
}

type MonthlyProgress struct {
	Month  string  `json:"month"`
	Wins   int     `json:"wins"`
	Losses int     `json:"losses"`
	KDA    float64 `json:"kda"`
}

type Champion struct {
	Name    string  `json:"name"`
	Games   int     `json:"games"`
	Wins    int     `json:"wins"`
	Losses  int     `json:"losses"`
	WinRate float64 `json:"winRate"`
	KDA     float64 `json:"kda"`
	Mastery int     `json:"mastery"`
	Points  string  `json:"points"`
	Role    string  `json:"role"`
	Image   string  `json:"image"`
}

type RoleShare struct {
	Role  string  `json:"role"`
	Value float64 `json:"value"`
}

type Achievement struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Level       string `json:"level,omitempty"`
	Icon        string `json:"icon"`
}

// Duo is the best-duo card. PerformanceMetrics stays empty until the duo's
// details are fetched; readers must check its length.
type Duo struct {
	Summoner
	GamesPlayed        int       `json:"gamesPlayed"`
	PerformanceMetrics []Metric  `json:"performanceMetrics"`
	Insights           []Insight `json:"insights,omitempty"`
	Archetype          string    `json:"archetype,omitempty"`
}

type DuoStats struct {
	GamesPlayed int     `json:"gamesPlayed"`
	WinRate     float64 `json:"winRate"`
	Synergy     int     `json:"synergy"`
	BestCombo   string  `json:"bestCombo"`
	Similarity  float64 `json:"similarity,omitempty"`
}

// DuoDetails is the result of the second normalization pass, merged into a
// held profile.
type DuoDetails struct {
	Duo   Duo
	Stats DuoStats
}

// Lookup records one submitted identity; it backs search suggestions.
type Lookup struct {
	ID        string
	GameName  string
	TagLine   string
	Region    string
	Rank      string
	CreatedAt time.Time
}

// Identity is what the upstream services accept to identify a player.
type Identity struct {
	GameName string `json:"gameName"`
	TagLine  string `json:"tagLine"`
	Region   string `json:"region"`
}

func (i Identity) String() string {
	return i.GameName + "#" + i.TagLine
}

// Clone returns a deep copy so readers never share slices with the store.
func (p *PlayerProfile) Clone() *PlayerProfile {
	if p == nil {
		return nil
	}
	c := *p
	c.Insights = cloneSlice(p.Insights)
	c.PerformanceMetrics = cloneSlice(p.PerformanceMetrics)
	c.MonthlyProgress = cloneSlice(p.MonthlyProgress)
	c.TopChampions = cloneSlice(p.TopChampions)
	c.RoleDistribution = cloneSlice(p.RoleDistribution)
	c.RecentAchievements = cloneSlice(p.RecentAchievements)
	c.BestDuo.PerformanceMetrics = cloneSlice(p.BestDuo.PerformanceMetrics)
	c.BestDuo.Insights = cloneSlice(p.BestDuo.Insights)
	return &c
}

func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}
