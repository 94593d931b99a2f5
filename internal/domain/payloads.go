package domain

import jsoniter "github.com/json-iterator/go"

// Raw shapes returned by the upstream analysis services. Decoding is lenient
// (see package payload): numbers may arrive as strings and most fields are
// optional, so pointer fields mark values whose absence matters.

type SummaryPayload struct {
	Summoner           RawSummoner       `json:"summoner"`
	YearStats          YearStats         `json:"yearStats"`
	TopChampions       []RawChampion     `json:"topChampions"`
	RoleDistribution   []RawRole         `json:"roleDistribution"`
	RecentAchievements []RawAchievement  `json:"recentAchievements"`
	MonthlyProgress    []MonthlyProgress `json:"monthlyProgress"`
	BestDuo            *RawDuo           `json:"bestDuo"`
}

type RawSummoner struct {
	Name    string  `json:"name"`
	TagLine string  `json:"tagLine"`
	Level   int     `json:"level"`
	Rank    string  `json:"rank"`
	LP      int     `json:"lp"`
	WinRate float64 `json:"winRate"`
	Region  string  `json:"region"`
}

type RawChampion struct {
	Name          string  `json:"name"`
	Games         int     `json:"games"`
	Wins          int     `json:"wins"`
	Losses        int     `json:"losses"`
	WinRate       float64 `json:"winRate"`
	KDA           float64 `json:"kda"`
	MasteryLevel  *int    `json:"masteryLevel"`
	MasteryPoints *int    `json:"masteryPoints"`
	Role          *string `json:"role"`
}

type RawRole struct {
	Role       string   `json:"role"`
	Percentage *float64 `json:"percentage"`
	Value      *float64 `json:"value"`
}

type RawAchievement struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Level       string `json:"level"`
}

type RawDuo struct {
	Puuid         string  `json:"puuid"`
	Name          string  `json:"name"`
	Tagline       string  `json:"tagline"`
	Rank          string  `json:"rank"`
	WinRate       float64 `json:"winRate"`
	KDA           string  `json:"kda"`
	GamesTogether int     `json:"gamesTogether"`
	TopChampion   string  `json:"topChampion"`
}

// StrengthsEnvelope wraps the strengths/weaknesses analysis. Response is
// usually a JSON document encoded as a string; it is kept raw so the payload
// adapter can accept either encoding.
type StrengthsEnvelope struct {
	Response jsoniter.RawMessage `json:"response"`
}

type ComparisonEnvelope struct {
	Response jsoniter.RawMessage `json:"response"`
}

type StrengthsPayload struct {
	Scores   map[string]float64 `json:"scores"`
	Insights map[string]string  `json:"insights"`
	Summary  string             `json:"summary"`
}

type ComparisonPayload struct {
	PlaystyleSynergy *PlaystyleSynergy `json:"playstyle_synergy"`
	DuoWinRate       *float64          `json:"duo_winrate"`
	SimilarityPct    *float64          `json:"playstyle_similarity_percent"`
	Synergy          string            `json:"synergy"`
}

type PlaystyleSynergy struct {
	Classification   string            `json:"classification"`
	IsComplementary  *bool             `json:"is_complementary"`
	SynergyInsight   string            `json:"synergy_insight"`
	PlayerArchetypes map[string]string `json:"player_archetypes"`
}
