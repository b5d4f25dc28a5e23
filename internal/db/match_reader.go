package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scoutiq/internal/analytics"
)

// MatchReader provides read-only access to match, team and derived tables.
type MatchReader struct {
	pool *pgxpool.Pool
}

// NewMatchReader creates a new match data reader.
func NewMatchReader(pool *pgxpool.Pool) *MatchReader {
	return &MatchReader{pool: pool}
}

const matchColumns = `m.id, m.series_id, m.date, m.duration, m.patch, m.winner_id, m.tournament, m.game_title`

const playerStatsColumns = `ps.id, ps.match_id, ps.player_id, COALESCE(p.team_id, '00000000-0000-0000-0000-000000000000'::uuid),
	p.name, p.role, ps.champion, ps.kills, ps.deaths, ps.assists, ps.cs, ps.gold_earned,
	ps.positioning_score, m.date`

func scanMatch(row pgx.Row) (analytics.Match, error) {
	var m analytics.Match
	err := row.Scan(&m.ID, &m.SeriesID, &m.Date, &m.DurationSec, &m.Patch, &m.WinnerID, &m.Tournament, &m.GameTitle)
	return m, err
}

func scanPlayerStats(rows pgx.Rows) (analytics.PlayerStats, error) {
	var ps analytics.PlayerStats
	err := rows.Scan(&ps.ID, &ps.MatchID, &ps.PlayerID, &ps.TeamID, &ps.PlayerName, &ps.Role, &ps.Champion,
		&ps.Kills, &ps.Deaths, &ps.Assists, &ps.CreepScore, &ps.GoldEarned, &ps.PositioningScore, &ps.MatchDate)
	return ps, err
}

// GetMatch returns the match, or nil when it does not exist.
func (r *MatchReader) GetMatch(ctx context.Context, matchID uuid.UUID) (*analytics.Match, error) {
	m, err := scanMatch(r.pool.QueryRow(ctx, `SELECT `+matchColumns+` FROM matches m WHERE m.id = $1`, matchID))
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get match: %w", err)
	}
	return &m, nil
}

// GetTeam returns the team, or nil when it does not exist.
func (r *MatchReader) GetTeam(ctx context.Context, teamID uuid.UUID) (*analytics.Team, error) {
	var t analytics.Team
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, region, league
		FROM teams
		WHERE id = $1
	`, teamID).Scan(&t.ID, &t.Name, &t.Region, &t.League)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get team: %w", err)
	}
	return &t, nil
}

// MatchTeams returns every team with a stat line in the match.
func (r *MatchReader) MatchTeams(ctx context.Context, matchID uuid.UUID) ([]analytics.Team, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT t.id, t.name, t.region, t.league
		FROM teams t
		WHERE t.id IN (
			SELECT ts.team_id FROM team_stats ts WHERE ts.match_id = $1
			UNION
			SELECT p.team_id FROM player_stats ps JOIN players p ON p.id = ps.player_id
			WHERE ps.match_id = $1 AND p.team_id IS NOT NULL
		)
		ORDER BY t.name
	`, matchID)
	if err != nil {
		return nil, fmt.Errorf("match teams: %w", err)
	}
	defer rows.Close()

	var teams []analytics.Team
	for rows.Next() {
		var t analytics.Team
		if err := rows.Scan(&t.ID, &t.Name, &t.Region, &t.League); err != nil {
			return nil, err
		}
		teams = append(teams, t)
	}
	return teams, rows.Err()
}

// MatchPlayerStats returns the player lines of a match.
func (r *MatchReader) MatchPlayerStats(ctx context.Context, matchID uuid.UUID) ([]analytics.PlayerStats, error) {
	return r.queryPlayerStats(ctx, `
		SELECT `+playerStatsColumns+`
		FROM player_stats ps
		JOIN players p ON p.id = ps.player_id
		JOIN matches m ON m.id = ps.match_id
		WHERE ps.match_id = $1
		ORDER BY p.name
	`, matchID)
}

// MatchDrafts returns the drafts of a match with picks and bans decoded.
func (r *MatchReader) MatchDrafts(ctx context.Context, matchID uuid.UUID) ([]analytics.Draft, error) {
	return r.queryDrafts(ctx, `
		SELECT d.id, d.match_id, d.team_id, d.side, d.picks, d.bans, d.win_probability
		FROM drafts d
		WHERE d.match_id = $1
		ORDER BY d.side
	`, matchID)
}

// RecentTeamMatches returns the team's last limit matches, newest first,
// with every stat line and draft recorded for them.
func (r *MatchReader) RecentTeamMatches(ctx context.Context, teamID uuid.UUID, limit int) ([]analytics.MatchRecord, error) {
	matches, err := r.queryMatches(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		WHERE EXISTS (SELECT 1 FROM team_stats ts WHERE ts.match_id = m.id AND ts.team_id = $1)
		   OR EXISTS (
				SELECT 1 FROM player_stats ps JOIN players p ON p.id = ps.player_id
				WHERE ps.match_id = m.id AND p.team_id = $1
		   )
		ORDER BY m.date DESC
		LIMIT $2
	`, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("recent team matches: %w", err)
	}
	return r.loadRecords(ctx, matches)
}

// DraftHistory returns every decided match with a draft dated at or before
// asOf, with drafts and player lines attached.
func (r *MatchReader) DraftHistory(ctx context.Context, asOf time.Time) ([]analytics.MatchRecord, error) {
	matches, err := r.queryMatches(ctx, `
		SELECT `+matchColumns+`
		FROM matches m
		WHERE m.winner_id IS NOT NULL
		  AND m.date <= $1
		  AND EXISTS (SELECT 1 FROM drafts d WHERE d.match_id = m.id)
		ORDER BY m.date DESC
	`, asOf)
	if err != nil {
		return nil, fmt.Errorf("draft history: %w", err)
	}
	return r.loadRecords(ctx, matches)
}

// RecentPlayerStats returns the team's last limit player lines by match date.
func (r *MatchReader) RecentPlayerStats(ctx context.Context, teamID uuid.UUID, limit int) ([]analytics.PlayerStats, error) {
	return r.queryPlayerStats(ctx, `
		SELECT `+playerStatsColumns+`
		FROM player_stats ps
		JOIN players p ON p.id = ps.player_id
		JOIN matches m ON m.id = ps.match_id
		WHERE p.team_id = $1
		ORDER BY m.date DESC, ps.id
		LIMIT $2
	`, teamID, limit)
}

// PlayerLossDeaths returns the player's deaths in their last limit losses,
// excluding the given match.
func (r *MatchReader) PlayerLossDeaths(ctx context.Context, playerID, excludeMatchID uuid.UUID, limit int) ([]int, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT ps.deaths
		FROM player_stats ps
		JOIN players p ON p.id = ps.player_id
		JOIN matches m ON m.id = ps.match_id
		WHERE ps.player_id = $1
		  AND ps.match_id <> $2
		  AND m.winner_id IS NOT NULL
		  AND m.winner_id IS DISTINCT FROM p.team_id
		ORDER BY m.date DESC
		LIMIT $3
	`, playerID, excludeMatchID, limit)
	if err != nil {
		return nil, fmt.Errorf("player loss deaths: %w", err)
	}
	defer rows.Close()

	var deaths []int
	for rows.Next() {
		var d int
		if err := rows.Scan(&d); err != nil {
			return nil, err
		}
		deaths = append(deaths, d)
	}
	return deaths, rows.Err()
}

// PriorTeamStats returns the team's last limit objective lines, excluding
// the given match.
func (r *MatchReader) PriorTeamStats(ctx context.Context, teamID, excludeMatchID uuid.UUID, limit int) ([]analytics.TeamStats, error) {
	return r.queryTeamStats(ctx, `
		SELECT ts.id, ts.match_id, ts.team_id, ts.barons, ts.dragons, ts.towers, ts.gold_diff_15
		FROM team_stats ts
		JOIN matches m ON m.id = ts.match_id
		WHERE ts.team_id = $1 AND ts.match_id <> $2
		ORDER BY m.date DESC
		LIMIT $3
	`, teamID, excludeMatchID, limit)
}

// TeamChampionPool returns the champion-pool entries of the team's players.
func (r *MatchReader) TeamChampionPool(ctx context.Context, teamID uuid.UUID) ([]analytics.ChampionPoolEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT cp.player_id, cp.champion, cp.frequency
		FROM champion_pools cp
		JOIN players p ON p.id = cp.player_id
		WHERE p.team_id = $1
	`, teamID)
	if err != nil {
		return nil, fmt.Errorf("team champion pool: %w", err)
	}
	defer rows.Close()

	var pool []analytics.ChampionPoolEntry
	for rows.Next() {
		var e analytics.ChampionPoolEntry
		if err := rows.Scan(&e.PlayerID, &e.Champion, &e.Frequency); err != nil {
			return nil, err
		}
		pool = append(pool, e)
	}
	return pool, rows.Err()
}

// LatestSnapshots returns up to limit snapshots for the team, newest first.
func (r *MatchReader) LatestSnapshots(ctx context.Context, teamID uuid.UUID, limit int) ([]analytics.TeamFeatureSnapshot, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, team_id, timestamp, win_rate, objective_control, avg_deaths, gold_advantage, match_count
		FROM team_feature_snapshots
		WHERE team_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, teamID, limit)
	if err != nil {
		return nil, fmt.Errorf("latest snapshots: %w", err)
	}
	defer rows.Close()

	var snaps []analytics.TeamFeatureSnapshot
	for rows.Next() {
		var s analytics.TeamFeatureSnapshot
		if err := rows.Scan(&s.ID, &s.TeamID, &s.Timestamp, &s.WinRate, &s.ObjectiveControl,
			&s.AvgDeaths, &s.GoldAdvantage, &s.MatchCount); err != nil {
			return nil, err
		}
		snaps = append(snaps, s)
	}
	return snaps, rows.Err()
}

// LatestScoutingReport returns the team's current report, or nil.
func (r *MatchReader) LatestScoutingReport(ctx context.Context, teamID uuid.UUID) (*analytics.ScoutingReport, error) {
	var (
		rep  analytics.ScoutingReport
		weak string
	)
	err := r.pool.QueryRow(ctx, `
		SELECT id, team_id, timestamp, early_game, mid_game, late_game, weak_roles,
		       aggression_score, side_preference, explanation
		FROM scouting_reports
		WHERE team_id = $1
		ORDER BY timestamp DESC
		LIMIT 1
	`, teamID).Scan(&rep.ID, &rep.TeamID, &rep.Timestamp, &rep.EarlyGame, &rep.MidGame, &rep.LateGame,
		&weak, &rep.AggressionScore, &rep.SidePreference, &rep.Explanation)
	if errors.Is(err, ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("latest scouting report: %w", err)
	}
	if rep.WeakRoles, err = decodeNameList(weak); err != nil {
		return nil, err
	}
	return &rep, nil
}

// ChampionProfiles returns the whole profile table ordered by champion.
func (r *MatchReader) ChampionProfiles(ctx context.Context) ([]analytics.ChampionProfile, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT champion, pick_frequency, win_rate, role_synergy, counter_stats, updated_at
		FROM champion_profiles
		ORDER BY champion
	`)
	if err != nil {
		return nil, fmt.Errorf("champion profiles: %w", err)
	}
	defer rows.Close()

	var profiles []analytics.ChampionProfile
	for rows.Next() {
		var p analytics.ChampionProfile
		if err := rows.Scan(&p.Champion, &p.PickFrequency, &p.WinRate, &p.RoleSynergy,
			&p.CounterStats, &p.UpdatedAt); err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

// loadRecords attaches team lines, player lines and drafts to matches,
// preserving the order of matches.
func (r *MatchReader) loadRecords(ctx context.Context, matches []analytics.Match) ([]analytics.MatchRecord, error) {
	if len(matches) == 0 {
		return nil, nil
	}

	ids := make([]uuid.UUID, len(matches))
	index := make(map[uuid.UUID]int, len(matches))
	records := make([]analytics.MatchRecord, len(matches))
	for i, m := range matches {
		ids[i] = m.ID
		index[m.ID] = i
		records[i].Match = m
	}

	teamStats, err := r.queryTeamStats(ctx, `
		SELECT ts.id, ts.match_id, ts.team_id, ts.barons, ts.dragons, ts.towers, ts.gold_diff_15
		FROM team_stats ts
		WHERE ts.match_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("load team stats: %w", err)
	}
	for _, ts := range teamStats {
		i := index[ts.MatchID]
		records[i].TeamStats = append(records[i].TeamStats, ts)
	}

	playerStats, err := r.queryPlayerStats(ctx, `
		SELECT `+playerStatsColumns+`
		FROM player_stats ps
		JOIN players p ON p.id = ps.player_id
		JOIN matches m ON m.id = ps.match_id
		WHERE ps.match_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("load player stats: %w", err)
	}
	for _, ps := range playerStats {
		i := index[ps.MatchID]
		records[i].PlayerStats = append(records[i].PlayerStats, ps)
	}

	drafts, err := r.queryDrafts(ctx, `
		SELECT d.id, d.match_id, d.team_id, d.side, d.picks, d.bans, d.win_probability
		FROM drafts d
		WHERE d.match_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("load drafts: %w", err)
	}
	for _, d := range drafts {
		i := index[d.MatchID]
		records[i].Drafts = append(records[i].Drafts, d)
	}

	return records, nil
}

func (r *MatchReader) queryMatches(ctx context.Context, sql string, args ...any) ([]analytics.Match, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var matches []analytics.Match
	for rows.Next() {
		m, err := scanMatch(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, m)
	}
	return matches, rows.Err()
}

func (r *MatchReader) queryPlayerStats(ctx context.Context, sql string, args ...any) ([]analytics.PlayerStats, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []analytics.PlayerStats
	for rows.Next() {
		ps, err := scanPlayerStats(rows)
		if err != nil {
			return nil, err
		}
		stats = append(stats, ps)
	}
	return stats, rows.Err()
}

func (r *MatchReader) queryTeamStats(ctx context.Context, sql string, args ...any) ([]analytics.TeamStats, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []analytics.TeamStats
	for rows.Next() {
		var ts analytics.TeamStats
		if err := rows.Scan(&ts.ID, &ts.MatchID, &ts.TeamID, &ts.Barons, &ts.Dragons, &ts.Towers, &ts.GoldDiff15); err != nil {
			return nil, err
		}
		stats = append(stats, ts)
	}
	return stats, rows.Err()
}

func (r *MatchReader) queryDrafts(ctx context.Context, sql string, args ...any) ([]analytics.Draft, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var drafts []analytics.Draft
	for rows.Next() {
		var (
			d           analytics.Draft
			picks, bans string
		)
		if err := rows.Scan(&d.ID, &d.MatchID, &d.TeamID, &d.Side, &picks, &bans, &d.WinProbability); err != nil {
			return nil, err
		}
		if d.Picks, err = decodeNameList(picks); err != nil {
			return nil, fmt.Errorf("draft %s picks: %w", d.ID, err)
		}
		if d.Bans, err = decodeNameList(bans); err != nil {
			return nil, fmt.Errorf("draft %s bans: %w", d.ID, err)
		}
		drafts = append(drafts, d)
	}
	return drafts, rows.Err()
}
