package analytics

import (
	"time"

	"github.com/google/uuid"
)

// SideNeutral is reported when neither side shows a better win rate.
const SideNeutral = "Neutral"

// LateGameClassifier labels a team's late game from its recent matches.
type LateGameClassifier interface {
	ClassifyLateGame(teamID uuid.UUID, sample []MatchRecord) string
}

// FixedLateGame always returns Label. It is the default classifier until a
// derived late-game model exists.
type FixedLateGame struct {
	Label string
}

func (f FixedLateGame) ClassifyLateGame(uuid.UUID, []MatchRecord) string {
	if f.Label == "" {
		return "Disciplined"
	}
	return f.Label
}

// ScoutingInput is the structured data a report explanation may restate.
type ScoutingInput struct {
	MatchCount      int      `json:"matchCount"`
	Wins            int      `json:"wins"`
	AvgGold15       float64  `json:"avgGoldDiff15"`
	AggressionScore float64  `json:"aggressionScore"`
	EarlyGame       string   `json:"earlyGame"`
	MidGame         string   `json:"midGame"`
	LateGame        string   `json:"lateGame"`
	WeakRoles       []string `json:"weakRoles"`
	SidePreference  string   `json:"sidePreference"`
}

// BuildScoutingProfile computes the tendencies of a scouting report over the
// team's most recent window of matches. The explanation is left empty.
// Returns nil when the team has no matches.
func BuildScoutingProfile(teamID uuid.UUID, records []MatchRecord, window int, late LateGameClassifier, now time.Time) (*ScoutingReport, *ScoutingInput) {
	sample := RecentWindow(records, window)
	if len(sample) == 0 {
		return nil, nil
	}
	if late == nil {
		late = FixedLateGame{}
	}

	wins := 0
	var goldSum float64
	goldRows := 0
	for _, rec := range sample {
		if rec.Match.WonBy(teamID) {
			wins++
		}
		for _, ts := range rec.TeamStats {
			if ts.TeamID == teamID {
				goldSum += float64(ts.GoldDiff15)
				goldRows++
			}
		}
	}

	var avgGold15 float64
	if goldRows > 0 {
		avgGold15 = goldSum / float64(goldRows)
	}

	aggression := 0.3
	switch {
	case avgGold15 > 1000:
		aggression = 0.9
	case avgGold15 > 0:
		aggression = 0.6
	}

	earlyGame := "Controlled"
	if aggression > 0.7 {
		earlyGame = "Aggressive"
	}

	midGame := "Stable"
	if avgGold15 > 1000 && float64(wins) < 0.5*float64(len(sample)) {
		midGame = "Unstable"
	}

	input := &ScoutingInput{
		MatchCount:      len(sample),
		Wins:            wins,
		AvgGold15:       avgGold15,
		AggressionScore: aggression,
		EarlyGame:       earlyGame,
		MidGame:         midGame,
		LateGame:        late.ClassifyLateGame(teamID, sample),
		WeakRoles:       WeakestRoles(teamID, sample),
		SidePreference:  SidePreference(teamID, sample),
	}

	report := &ScoutingReport{
		ID:              uuid.New(),
		TeamID:          teamID,
		Timestamp:       now,
		EarlyGame:       input.EarlyGame,
		MidGame:         input.MidGame,
		LateGame:        input.LateGame,
		WeakRoles:       input.WeakRoles,
		AggressionScore: input.AggressionScore,
		SidePreference:  input.SidePreference,
	}
	return report, input
}

// WeakestRoles returns the role with the highest average deaths per stat line
// across the sample. Ties keep the earlier role in Roles order.
func WeakestRoles(teamID uuid.UUID, sample []MatchRecord) []string {
	deaths := make(map[string]int, len(Roles))
	lines := make(map[string]int, len(Roles))
	for _, rec := range sample {
		for _, ps := range rec.PlayerStats {
			if ps.TeamID != teamID {
				continue
			}
			deaths[ps.Role] += ps.Deaths
			lines[ps.Role]++
		}
	}

	weakest := ""
	worst := -1.0
	for _, role := range Roles {
		if lines[role] == 0 {
			continue
		}
		avg := float64(deaths[role]) / float64(lines[role])
		if avg > worst {
			worst = avg
			weakest = role
		}
	}
	if weakest == "" {
		return []string{}
	}
	return []string{weakest}
}

// SidePreference returns the draft side with the better win rate for the
// team, or SideNeutral when they are equal or unknown.
func SidePreference(teamID uuid.UUID, sample []MatchRecord) string {
	played := map[string]int{}
	won := map[string]int{}
	for _, rec := range sample {
		for _, d := range rec.Drafts {
			if d.TeamID != teamID || (d.Side != SideBlue && d.Side != SideRed) {
				continue
			}
			played[d.Side]++
			if rec.Match.WonBy(teamID) {
				won[d.Side]++
			}
		}
	}

	rate := func(side string) float64 {
		if played[side] == 0 {
			return -1
		}
		return float64(won[side]) / float64(played[side])
	}
	blue, red := rate(SideBlue), rate(SideRed)
	switch {
	case blue < 0 && red < 0:
		return SideNeutral
	case blue > red:
		return SideBlue
	case red > blue:
		return SideRed
	default:
		return SideNeutral
	}
}
