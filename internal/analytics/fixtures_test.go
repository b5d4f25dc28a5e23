package analytics

import (
	"time"

	"github.com/google/uuid"
)

var baseDate = time.Date(2025, 3, 1, 18, 0, 0, 0, time.UTC)

// matchBetween builds a decided match between a and b on day offset, with
// objective and gold lines for both sides and one stat line per role.
func matchBetween(a, b uuid.UUID, day int, aWins bool, aObj, bObj, aGold15 int, deathsPerPlayer int) MatchRecord {
	id := uuid.New()
	winner := b
	if aWins {
		winner = a
	}
	rec := MatchRecord{
		Match: Match{
			ID:       id,
			Date:     baseDate.AddDate(0, 0, day),
			WinnerID: &winner,
		},
		TeamStats: []TeamStats{
			{ID: uuid.New(), MatchID: id, TeamID: a, Dragons: aObj, GoldDiff15: aGold15},
			{ID: uuid.New(), MatchID: id, TeamID: b, Dragons: bObj, GoldDiff15: -aGold15},
		},
	}
	for _, role := range Roles {
		rec.PlayerStats = append(rec.PlayerStats,
			PlayerStats{ID: uuid.New(), MatchID: id, PlayerID: uuid.New(), TeamID: a, Role: role, Deaths: deathsPerPlayer},
			PlayerStats{ID: uuid.New(), MatchID: id, PlayerID: uuid.New(), TeamID: b, Role: role, Deaths: 1},
		)
	}
	return rec
}
