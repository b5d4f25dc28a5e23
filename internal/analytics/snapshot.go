package analytics

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

// DefaultSnapshotWindow is the number of most recent matches a snapshot covers.
const DefaultSnapshotWindow = 20

// RecentWindow returns at most window records ordered by match date, newest
// first. The input slice is not modified.
func RecentWindow(records []MatchRecord, window int) []MatchRecord {
	sorted := make([]MatchRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Match.Date.After(sorted[j].Match.Date)
	})
	if window > 0 && len(sorted) > window {
		sorted = sorted[:window]
	}
	return sorted
}

// BuildTeamSnapshot rolls the team's most recent matches into a snapshot.
// Returns nil when the team has no matches.
func BuildTeamSnapshot(teamID uuid.UUID, records []MatchRecord, window int, now time.Time) *TeamFeatureSnapshot {
	sample := RecentWindow(records, window)
	if len(sample) == 0 {
		return nil
	}

	var wins, teamObjectives, allObjectives, deaths int
	var goldSum float64
	goldRows := 0

	for _, rec := range sample {
		if rec.Match.WonBy(teamID) {
			wins++
		}
		for _, ts := range rec.TeamStats {
			allObjectives += ts.ObjectiveEvents()
			if ts.TeamID != teamID {
				continue
			}
			teamObjectives += ts.ObjectiveEvents()
			goldSum += float64(ts.GoldDiff15)
			goldRows++
		}
		for _, ps := range rec.PlayerStats {
			if ps.TeamID == teamID {
				deaths += ps.Deaths
			}
		}
	}

	matchCount := len(sample)

	var objectiveControl, goldAdvantage float64
	if allObjectives > 0 {
		objectiveControl = float64(teamObjectives) / float64(allObjectives)
	}
	if goldRows > 0 {
		goldAdvantage = goldSum / float64(goldRows)
	}

	return &TeamFeatureSnapshot{
		ID:               uuid.New(),
		TeamID:           teamID,
		Timestamp:        now,
		WinRate:          float64(wins) / float64(matchCount),
		ObjectiveControl: objectiveControl,
		AvgDeaths:        float64(deaths) / float64(matchCount),
		GoldAdvantage:    goldAdvantage,
		MatchCount:       matchCount,
	}
}
