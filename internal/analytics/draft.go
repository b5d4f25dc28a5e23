package analytics

import (
	"fmt"
	"sort"
	"strings"
)

const (
	maxRecommendations  = 3
	synergyBonusPerAlly = 0.2
	counterRiskPerEnemy = 0.3
	winRateWeight       = 0.4
)

// Dominant factors behind a recommendation.
const (
	FactorSynergy = "synergy"
	FactorCounter = "counter"
	FactorWinRate = "win_rate"
)

// InsufficientDataMessage accompanies an empty champion-profile table.
const InsufficientDataMessage = "Insufficient data: no champion profiles have been computed yet"

var headlineTemplates = map[string]string{
	FactorSynergy: "Fits the current composition",
	FactorCounter: "Playable, but exposed to enemy counters",
	FactorWinRate: "Strong standalone pick",
}

// DraftState is the live pick/ban state. Blue is the side being advised.
type DraftState struct {
	BluePicks []string `json:"bluePicks"`
	RedPicks  []string `json:"redPicks"`
	Bans      []string `json:"bans"`
}

// Recommendation is one ranked champion.
type Recommendation struct {
	Champion       string   `json:"champion"`
	Score          float64  `json:"score"`
	Confidence     float64  `json:"confidence"`
	DominantFactor string   `json:"dominantFactor"`
	Headline       string   `json:"headline"`
	Reasons        []string `json:"reasons"`
}

// DraftRecommendations holds the top picks. InsufficientData is set, with no
// recommendations, when no champion profiles exist at all.
type DraftRecommendations struct {
	Recommendations  []Recommendation `json:"recommendations"`
	InsufficientData bool             `json:"insufficientData"`
	Message          string           `json:"message,omitempty"`
}

// RecommendPicks ranks every champion not yet picked or banned and returns
// the top three by score.
func RecommendPicks(state DraftState, profiles []ChampionProfile) DraftRecommendations {
	if len(profiles) == 0 {
		return DraftRecommendations{InsufficientData: true, Message: InsufficientDataMessage}
	}

	taken := make(map[string]bool)
	for _, list := range [][]string{state.BluePicks, state.RedPicks, state.Bans} {
		for _, name := range list {
			taken[normalizeChampion(name)] = true
		}
	}

	ordered := make([]ChampionProfile, len(profiles))
	copy(ordered, profiles)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Champion < ordered[j].Champion })

	candidates := make([]Recommendation, 0, len(ordered))
	for _, p := range ordered {
		if taken[normalizeChampion(p.Champion)] {
			continue
		}
		candidates = append(candidates, scoreChampion(p, state))
	}

	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].Score > candidates[j].Score })
	if len(candidates) > maxRecommendations {
		candidates = candidates[:maxRecommendations]
	}
	return DraftRecommendations{Recommendations: candidates}
}

func scoreChampion(p ChampionProfile, state DraftState) Recommendation {
	synergyPartners := make(map[string]bool)
	for _, champs := range p.RoleSynergy {
		for _, c := range champs {
			synergyPartners[normalizeChampion(c)] = true
		}
	}
	counteredBy := make(map[string]bool)
	for _, c := range p.CounterStats.CounteredBy {
		counteredBy[normalizeChampion(c)] = true
	}

	var synergy, risk float64
	var reasons []string
	for _, ally := range state.BluePicks {
		if synergyPartners[normalizeChampion(ally)] {
			synergy += synergyBonusPerAlly
			reasons = append(reasons, fmt.Sprintf("Synergizes with %s", ally))
		}
	}
	for _, enemy := range state.RedPicks {
		if counteredBy[normalizeChampion(enemy)] {
			risk += counterRiskPerEnemy
			reasons = append(reasons, fmt.Sprintf("Countered by enemy %s", enemy))
		}
	}

	score := p.WinRate*winRateWeight + synergy - risk

	factor := FactorWinRate
	switch {
	case synergy == 0 && risk == 0:
	case synergy >= risk:
		factor = FactorSynergy
	default:
		factor = FactorCounter
	}
	if len(reasons) == 0 {
		reasons = []string{fmt.Sprintf("High win rate (%.0f%%) and role comfort", p.WinRate*100)}
	}

	return Recommendation{
		Champion:       p.Champion,
		Score:          score,
		Confidence:     clamp(score+0.5, 0.1, 0.99),
		DominantFactor: factor,
		Headline:       headlineTemplates[factor],
		Reasons:        reasons,
	}
}

func normalizeChampion(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
