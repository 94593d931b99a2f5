package payload

import (
	"testing"

	"rift-rewind/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeSummary_Lenient(t *testing.T) {
	body := []byte(`{
		"summoner": {"name": "Foo", "level": "312", "lp": 45.0, "winRate": "52.5", "region": "NA"},
		"yearStats": {"totalKills": 10, "totalDeaths": "2", "totalAssists": 8, "hoursPlayed": 120.5},
		"topChampions": [{"name": "Ahri", "games": 40, "kda": "3.1", "masteryLevel": 7}],
		"recentAchievements": [{"name": "Penta", "description": "5 kills", "level": 3}],
		"bestDuo": null
	}`)

	s, err := DecodeSummary(body)
	require.NoError(t, err)
	assert.Equal(t, "Foo", s.Summoner.Name)
	assert.Equal(t, 312, s.Summoner.Level)
	assert.Equal(t, 45, s.Summoner.LP)
	assert.Equal(t, 52.5, s.Summoner.WinRate)
	assert.Equal(t, 2, s.YearStats.TotalDeaths)
	assert.Equal(t, 3.1, s.TopChampions[0].KDA)
	require.NotNil(t, s.TopChampions[0].MasteryLevel)
	assert.Equal(t, 7, *s.TopChampions[0].MasteryLevel)
	assert.Nil(t, s.TopChampions[0].Role)
	assert.Equal(t, "3", s.RecentAchievements[0].Level)
	assert.Nil(t, s.BestDuo)
}

func TestDecodeSummary_Unusable(t *testing.T) {
	for name, body := range map[string]string{
		"empty":  "",
		"null":   "null",
		"array":  "[1,2,3]",
		"string": `"hello"`,
		"broken": `{"summoner": `,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := DecodeSummary([]byte(body))
			assert.Error(t, err)
		})
	}
}

func TestStrengths_DoubleEncoded(t *testing.T) {
	env, err := DecodeStrengthsEnvelope([]byte(`{"response": "{\"scores\": {\"vision\": 40, \"farming\": \"72.5\"}, \"insights\": {\"vision\": \"ward more\"}, \"summary\": \"ok\"}"}`))
	require.NoError(t, err)

	p, err := Strengths(env)
	require.NoError(t, err)
	assert.Equal(t, 40.0, p.Scores["vision"])
	assert.Equal(t, 72.5, p.Scores["farming"])
	assert.Equal(t, "ward more", p.Insights["vision"])
	assert.Equal(t, "ok", p.Summary)
}

func TestStrengths_EmbeddedObject(t *testing.T) {
	env, err := DecodeStrengthsEnvelope([]byte(`{"response": {"scores": {"aggression": 90}}}`))
	require.NoError(t, err)

	p, err := Strengths(env)
	require.NoError(t, err)
	assert.Equal(t, 90.0, p.Scores["aggression"])
}

func TestStrengths_ProseAroundDocument(t *testing.T) {
	env := &domain.StrengthsEnvelope{Response: []byte(`"Here is the analysis: {\"scores\": {\"teamplay\": 61}} Hope it helps."`)}

	p, err := Strengths(env)
	require.NoError(t, err)
	assert.Equal(t, 61.0, p.Scores["teamplay"])
}

func TestStrengths_Failures(t *testing.T) {
	tests := []struct {
		name string
		env  *domain.StrengthsEnvelope
		want error
	}{
		{"nil envelope", nil, ErrEmpty},
		{"missing response", &domain.StrengthsEnvelope{}, ErrEmpty},
		{"null response", &domain.StrengthsEnvelope{Response: []byte("null")}, ErrEmpty},
		{"blank string", &domain.StrengthsEnvelope{Response: []byte(`"  "`)}, ErrEmpty},
		{"invalid inner", &domain.StrengthsEnvelope{Response: []byte(`"{not valid json"`)}, ErrMalformed},
		{"no scores", &domain.StrengthsEnvelope{Response: []byte(`"{\"summary\": \"x\"}"`)}, ErrPartial},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Strengths(tt.env)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)
			assert.True(t, Recoverable(err))
		})
	}
}

func TestComparison(t *testing.T) {
	env, err := DecodeComparisonEnvelope([]byte(`{"response": "{\"playstyle_synergy\": {\"is_complementary\": true, \"synergy_insight\": \"Carry and support\"}, \"duo_winrate\": 61.2}"}`))
	require.NoError(t, err)

	p, err := Comparison(env)
	require.NoError(t, err)
	require.NotNil(t, p.PlaystyleSynergy)
	require.NotNil(t, p.PlaystyleSynergy.IsComplementary)
	assert.True(t, *p.PlaystyleSynergy.IsComplementary)
	assert.Equal(t, "Carry and support", p.PlaystyleSynergy.SynergyInsight)
	require.NotNil(t, p.DuoWinRate)
	assert.Equal(t, 61.2, *p.DuoWinRate)
}

func TestComparison_Partial(t *testing.T) {
	_, err := Comparison(&domain.ComparisonEnvelope{Response: []byte(`"{\"duo_winrate\": 50}"`)})
	assert.ErrorIs(t, err, ErrPartial)
}
