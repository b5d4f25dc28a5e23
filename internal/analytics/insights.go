package analytics

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Insight windows and thresholds.
const (
	DeviationLossWindow  = 10
	TendencyMatchWindow  = 5
	DragonFocusThreshold = 3.0
	ComfortPickMinimum   = 5 // strictly greater than this counts
)

const (
	TendencyObjectiveFocus  = "Heavy Objective Focus"
	TendencyEarlyAggression = "Early Game Aggression"
)

func newInsight(matchID uuid.UUID, category, content string, evidence map[string]any, now time.Time) AIInsight {
	return AIInsight{
		ID:         uuid.New(),
		MatchID:    matchID,
		Category:   category,
		Content:    content,
		Confidence: InsightConfidence,
		Evidence:   evidence,
		CreatedAt:  now,
	}
}

// PlayerDeviationInsight flags a player who died more than their average in
// recent losses. lossDeaths must exclude the current match. Returns nil when
// there is no loss sample or no deviation.
func PlayerDeviationInsight(current PlayerStats, lossDeaths []int, now time.Time) *AIInsight {
	if len(lossDeaths) == 0 {
		return nil
	}
	total := 0
	for _, d := range lossDeaths {
		total += d
	}
	avg := float64(total) / float64(len(lossDeaths))
	if float64(current.Deaths) <= avg {
		return nil
	}

	content := fmt.Sprintf("%s died %d times, above their average of %.1f deaths across the last %d losses",
		current.PlayerName, current.Deaths, avg, len(lossDeaths))
	in := newInsight(current.MatchID, CategoryCoaching, content, map[string]any{
		"playerId":          current.PlayerID.String(),
		"deaths":            current.Deaths,
		"historicalAverage": avg,
		"sampleSize":        len(lossDeaths),
	}, now)
	return &in
}

// TeamTendencyInsight labels a team's objective habits from the dragons it
// took in prior matches. Returns nil when there is no prior history.
func TeamTendencyInsight(matchID uuid.UUID, team Team, prior []TeamStats, now time.Time) *AIInsight {
	if len(prior) == 0 {
		return nil
	}
	dragons := 0
	for _, ts := range prior {
		dragons += ts.Dragons
	}
	avg := float64(dragons) / float64(len(prior))

	label := TendencyEarlyAggression
	if avg > DragonFocusThreshold {
		label = TendencyObjectiveFocus
	}

	content := fmt.Sprintf("%s shows %s, averaging %.1f dragons over the last %d matches",
		team.Name, label, avg, len(prior))
	in := newInsight(matchID, CategoryTendency, content, map[string]any{
		"teamId":     team.ID.String(),
		"tendency":   label,
		"avgDragons": avg,
		"sampleSize": len(prior),
	}, now)
	return &in
}

// ComfortPicks returns the picks found in the team's champion pools with a
// frequency above ComfortPickMinimum, in pick order.
func ComfortPicks(picks []string, pool []ChampionPoolEntry) []string {
	comfortable := make(map[string]bool)
	for _, entry := range pool {
		if entry.Frequency > ComfortPickMinimum {
			comfortable[strings.ToLower(entry.Champion)] = true
		}
	}

	out := []string{}
	seen := make(map[string]bool)
	for _, pick := range picks {
		key := strings.ToLower(pick)
		if comfortable[key] && !seen[key] {
			out = append(out, pick)
			seen[key] = true
		}
	}
	return out
}

// DraftComfortInsight cites the draft's win probability and comfort picks.
// Returns nil when the draft contains no comfort pick.
func DraftComfortInsight(draft Draft, teamName string, pool []ChampionPoolEntry, now time.Time) *AIInsight {
	picks := ComfortPicks(draft.Picks, pool)
	if len(picks) == 0 {
		return nil
	}

	content := fmt.Sprintf("%s drafted comfort picks %s with an estimated win probability of %.0f%%",
		teamName, strings.Join(picks, ", "), draft.WinProbability*100)
	in := newInsight(draft.MatchID, CategoryDraft, content, map[string]any{
		"teamId":         draft.TeamID.String(),
		"side":           draft.Side,
		"comfortPicks":   picks,
		"winProbability": draft.WinProbability,
	}, now)
	return &in
}

// TemplateScoutingExplanation restates the structured scouting data without
// external text generation.
func TemplateScoutingExplanation(teamName string, in ScoutingInput) string {
	weak := "no single role"
	if len(in.WeakRoles) > 0 {
		weak = strings.Join(in.WeakRoles, ", ")
	}
	return fmt.Sprintf("%s won %d of its last %d matches with an average gold difference of %+.0f at 15 minutes. "+
		"Early game is %s, mid game is %s and late game is %s. Most deaths come from %s; preferred side: %s.",
		teamName, in.Wins, in.MatchCount, in.AvgGold15,
		strings.ToLower(in.EarlyGame), strings.ToLower(in.MidGame), strings.ToLower(in.LateGame),
		weak, in.SidePreference)
}
