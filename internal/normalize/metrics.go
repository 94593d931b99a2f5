package normalize

import (
	"math"
	"strings"

	"rift-rewind/internal/constants"
	"rift-rewind/internal/domain"
)

// MetricKeys is the canonical radar axis order. Every metric list produced by
// this package follows it so two lists can be overlaid position by position.
var MetricKeys = [6]string{"farming", "vision", "aggression", "teamplay", "consistency", "versatility"}

// archetypePriority breaks ties between equal top scores.
var archetypePriority = []string{"aggression", "farming", "teamplay", "vision", "versatility", "consistency"}

var archetypeNames = map[string]string{
	"farming":     "Carry/Farmer",
	"aggression":  "Aggressor/Slayer",
	"teamplay":    "Support/Team Player",
	"vision":      "Vision Setter/Support",
	"consistency": "Consistent Rock",
	"versatility": "Flexible/Jack-of-all-Trades",
}

const (
	insightIcon     = "⭐"
	achievementIcon = "🏆"
)

func capitalize(key string) string {
	if key == "" {
		return ""
	}
	return strings.ToUpper(key[:1]) + key[1:]
}

func clampScore(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(0, math.Min(100, v))
}

// Metrics builds the six radar metrics. Missing scores are zero-filled and
// keys outside MetricKeys are ignored.
func Metrics(scores map[string]float64, insights map[string]string) []domain.Metric {
	out := make([]domain.Metric, 0, len(MetricKeys))
	for _, key := range MetricKeys {
		out = append(out, domain.Metric{
			Metric:      capitalize(key),
			Value:       clampScore(scores[key]),
			Description: insights[key],
		})
	}
	return out
}

// Insights returns one card per known metric that has insight text, in
// canonical order.
func Insights(insights map[string]string) []domain.Insight {
	out := make([]domain.Insight, 0, len(MetricKeys))
	for _, key := range MetricKeys {
		desc, ok := insights[key]
		if !ok {
			continue
		}
		out = append(out, domain.Insight{
			Title:       capitalize(key),
			Description: desc,
			Icon:        insightIcon,
		})
	}
	return out
}

// Values extracts metric values in canonical order, matching on the
// capitalized metric name rather than list position.
func Values(metrics []domain.Metric) []float64 {
	byName := make(map[string]float64, len(metrics))
	for _, m := range metrics {
		byName[strings.ToLower(m.Metric)] = m.Value
	}
	out := make([]float64, len(MetricKeys))
	for i, key := range MetricKeys {
		out[i] = byName[key]
	}
	return out
}

// Archetype names the playstyle of the highest metric; ties, including an
// all-zero list, go to the first key in archetypePriority. Empty input yields
// "Unknown".
func Archetype(metrics []domain.Metric) string {
	if len(metrics) == 0 {
		return "Unknown"
	}
	values := Values(metrics)
	best := math.Inf(-1)
	for _, v := range values {
		best = math.Max(best, v)
	}
	for _, key := range archetypePriority {
		for i, k := range MetricKeys {
			if k == key && values[i] == best {
				return archetypeNames[key]
			}
		}
	}
	return "Unknown"
}

// Similarity is the cosine similarity of two metric vectors as a percentage
// rounded to one decimal. Either vector being all zero gives 0.
func Similarity(a, b []domain.Metric) float64 {
	va, vb := Values(a), Values(b)
	var dot, na, nb float64
	for i := range va {
		dot += va[i] * vb[i]
		na += va[i] * va[i]
		nb += vb[i] * vb[i]
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return math.Round(dot/(math.Sqrt(na)*math.Sqrt(nb))*1000) / 10
}

// scoredArchetype is Archetype for an analysis payload: a payload with no
// scores at all has no archetype.
func scoredArchetype(scores map[string]float64, metrics []domain.Metric) string {
	if len(scores) == 0 {
		return "Unknown"
	}
	return Archetype(metrics)
}

// SynergyScore maps a comparison classification to a 0-100 score. It is a
// coarse two-bucket heuristic: "similar" styles score lower than anything
// else.
func SynergyScore(classification string) int {
	if strings.Contains(strings.ToLower(classification), "similar") {
		return constants.SynergySimilar
	}
	return constants.SynergyComplementary
}
