package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func profile(name string, winRate float64, synergy map[string][]string, counteredBy ...string) ChampionProfile {
	return ChampionProfile{
		Champion:      name,
		PickFrequency: 10,
		WinRate:       winRate,
		RoleSynergy:   synergy,
		CounterStats:  CounterStats{CounteredBy: counteredBy},
	}
}

func TestRecommendPicks_EmptyProfiles(t *testing.T) {
	got := RecommendPicks(DraftState{BluePicks: []string{"Ahri"}}, nil)
	assert.True(t, got.InsufficientData)
	assert.Empty(t, got.Recommendations)
	assert.Equal(t, InsufficientDataMessage, got.Message)
}

func TestRecommendPicks_ExcludesTakenChampions(t *testing.T) {
	profiles := []ChampionProfile{
		profile("Ahri", 0.6, nil),
		profile("Jinx", 0.5, nil),
		profile("Thresh", 0.5, nil),
		profile("Vi", 0.4, nil),
	}
	got := RecommendPicks(DraftState{BluePicks: []string{"ahri"}, RedPicks: []string{"Jinx"}, Bans: []string{"Thresh"}}, profiles)

	require.False(t, got.InsufficientData)
	require.Len(t, got.Recommendations, 1)
	assert.Equal(t, "Vi", got.Recommendations[0].Champion)
}

func TestRecommendPicks_NoCandidatesIsNotInsufficientData(t *testing.T) {
	got := RecommendPicks(DraftState{Bans: []string{"Ahri"}}, []ChampionProfile{profile("Ahri", 0.5, nil)})
	assert.False(t, got.InsufficientData)
	assert.Empty(t, got.Recommendations)
}

func TestRecommendPicks_Scoring(t *testing.T) {
	profiles := []ChampionProfile{
		profile("Orianna", 0.5, map[string][]string{RoleJungle: {"Vi"}, RoleTop: {"Malphite"}}),
		profile("Azir", 0.5, nil, "Fizz"),
		profile("Syndra", 0.5, nil),
		profile("Kassadin", 0.3, nil),
	}
	state := DraftState{BluePicks: []string{"Vi", "Malphite"}, RedPicks: []string{"Fizz"}}

	got := RecommendPicks(state, profiles)
	require.Len(t, got.Recommendations, 3)

	top := got.Recommendations[0]
	assert.Equal(t, "Orianna", top.Champion)
	assert.InDelta(t, 0.2+0.4, top.Score, 1e-9)
	assert.InDelta(t, 0.99, top.Confidence, 1e-9)
	assert.Equal(t, FactorSynergy, top.DominantFactor)
	assert.Equal(t, []string{"Synergizes with Vi", "Synergizes with Malphite"}, top.Reasons)

	assert.Equal(t, "Syndra", got.Recommendations[1].Champion)
	assert.Equal(t, FactorWinRate, got.Recommendations[1].DominantFactor)
	assert.Equal(t, []string{"High win rate (50%) and role comfort"}, got.Recommendations[1].Reasons)

	assert.Equal(t, "Kassadin", got.Recommendations[2].Champion)

	// Azir: 0.2 - 0.3 falls to last and is cut.
	for _, r := range got.Recommendations {
		assert.NotEqual(t, "Azir", r.Champion)
	}
}

func TestRecommendPicks_CounterReasonAndConfidenceFloor(t *testing.T) {
	profiles := []ChampionProfile{profile("Azir", 0.1, nil, "Fizz", "Ahri", "Syndra")}
	got := RecommendPicks(DraftState{RedPicks: []string{"Fizz", "Ahri", "Syndra"}}, profiles)

	require.Len(t, got.Recommendations, 1)
	r := got.Recommendations[0]
	assert.InDelta(t, 0.04-0.9, r.Score, 1e-9)
	assert.Equal(t, 0.1, r.Confidence)
	assert.Equal(t, FactorCounter, r.DominantFactor)
	assert.Equal(t, headlineTemplates[FactorCounter], r.Headline)
	assert.Len(t, r.Reasons, 3)
}

func TestRecommendPicks_Idempotent(t *testing.T) {
	profiles, err := StaticProfiles{}.Profiles(context.Background(), baseDate)
	require.NoError(t, err)

	state := DraftState{BluePicks: []string{"Thresh"}, RedPicks: []string{"Poppy"}, Bans: []string{"Azir"}}
	first := RecommendPicks(state, profiles)
	second := RecommendPicks(state, profiles)

	require.Len(t, first.Recommendations, 3)
	assert.Equal(t, first, second)

	// Reversing the input order must not change the ranking.
	reversed := make([]ChampionProfile, len(profiles))
	for i, p := range profiles {
		reversed[len(profiles)-1-i] = p
	}
	assert.Equal(t, first, RecommendPicks(state, reversed))
}

func TestRecommendPicks_NoChampionSpecificOverrides(t *testing.T) {
	profiles := []ChampionProfile{profile("Orianna", 0.55, nil), profile("Lee Sin", 0.55, nil)}
	got := RecommendPicks(DraftState{}, profiles)

	require.Len(t, got.Recommendations, 2)
	for _, r := range got.Recommendations {
		assert.Equal(t, headlineTemplates[FactorWinRate], r.Headline)
		assert.Equal(t, []string{"High win rate (55%) and role comfort"}, r.Reasons)
	}
}
