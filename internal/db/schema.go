package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// schemaStatements creates the tables the analytics layer reads and writes.
// Ingestion owns teams through drafts; the rest is written here.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS teams (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL UNIQUE,
		region TEXT NOT NULL DEFAULT '',
		league TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS players (
		id UUID PRIMARY KEY,
		team_id UUID REFERENCES teams(id),
		name TEXT NOT NULL,
		role TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS series (
		id UUID PRIMARY KEY,
		external_id TEXT UNIQUE
	)`,
	`CREATE TABLE IF NOT EXISTS matches (
		id UUID PRIMARY KEY,
		series_id UUID REFERENCES series(id),
		date TIMESTAMPTZ NOT NULL,
		duration INTEGER NOT NULL DEFAULT 0,
		patch TEXT NOT NULL DEFAULT '',
		winner_id UUID REFERENCES teams(id),
		tournament TEXT NOT NULL DEFAULT '',
		game_title TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS player_stats (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES matches(id),
		player_id UUID NOT NULL REFERENCES players(id),
		champion TEXT NOT NULL DEFAULT '',
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		assists INTEGER NOT NULL DEFAULT 0,
		cs INTEGER NOT NULL DEFAULT 0,
		gold_earned INTEGER NOT NULL DEFAULT 0,
		positioning_score DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS team_stats (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES matches(id),
		team_id UUID NOT NULL REFERENCES teams(id),
		barons INTEGER NOT NULL DEFAULT 0,
		dragons INTEGER NOT NULL DEFAULT 0,
		towers INTEGER NOT NULL DEFAULT 0,
		gold_diff_15 INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS drafts (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES matches(id),
		team_id UUID NOT NULL REFERENCES teams(id),
		side TEXT NOT NULL DEFAULT '',
		picks TEXT NOT NULL DEFAULT '[]',
		bans TEXT NOT NULL DEFAULT '[]',
		win_probability DOUBLE PRECISION NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS champion_pools (
		player_id UUID NOT NULL REFERENCES players(id),
		champion TEXT NOT NULL,
		frequency INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (player_id, champion)
	)`,
	`CREATE TABLE IF NOT EXISTS team_feature_snapshots (
		id UUID PRIMARY KEY,
		team_id UUID NOT NULL REFERENCES teams(id),
		timestamp TIMESTAMPTZ NOT NULL,
		win_rate DOUBLE PRECISION NOT NULL,
		objective_control DOUBLE PRECISION NOT NULL,
		avg_deaths DOUBLE PRECISION NOT NULL,
		gold_advantage DOUBLE PRECISION NOT NULL,
		match_count INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE TABLE IF NOT EXISTS scouting_reports (
		id UUID PRIMARY KEY,
		team_id UUID NOT NULL REFERENCES teams(id),
		timestamp TIMESTAMPTZ NOT NULL,
		early_game TEXT NOT NULL,
		mid_game TEXT NOT NULL,
		late_game TEXT NOT NULL,
		weak_roles TEXT NOT NULL DEFAULT '[]',
		aggression_score DOUBLE PRECISION NOT NULL,
		side_preference TEXT NOT NULL DEFAULT '',
		explanation TEXT NOT NULL DEFAULT ''
	)`,
	`CREATE TABLE IF NOT EXISTS champion_profiles (
		champion TEXT PRIMARY KEY,
		pick_frequency INTEGER NOT NULL DEFAULT 0,
		win_rate DOUBLE PRECISION NOT NULL DEFAULT 0,
		role_synergy JSONB NOT NULL DEFAULT '{}',
		counter_stats JSONB NOT NULL DEFAULT '{}',
		updated_at TIMESTAMPTZ NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS extracted_features (
		id UUID PRIMARY KEY,
		entity_id UUID NOT NULL,
		entity_type TEXT NOT NULL,
		feature_name TEXT NOT NULL,
		value DOUBLE PRECISION NOT NULL,
		source_match_id UUID NOT NULL REFERENCES matches(id),
		created_at TIMESTAMPTZ NOT NULL,
		UNIQUE (entity_id, feature_name, source_match_id)
	)`,
	`CREATE TABLE IF NOT EXISTS ai_insights (
		id UUID PRIMARY KEY,
		match_id UUID NOT NULL REFERENCES matches(id),
		category TEXT NOT NULL,
		content TEXT NOT NULL,
		confidence DOUBLE PRECISION NOT NULL,
		evidence JSONB,
		created_at TIMESTAMPTZ NOT NULL
	)`,
	// Indexes
	`CREATE INDEX IF NOT EXISTS idx_matches_date ON matches(date DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_match ON player_stats(match_id)`,
	`CREATE INDEX IF NOT EXISTS idx_player_stats_player ON player_stats(player_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_stats_team ON team_stats(team_id)`,
	`CREATE INDEX IF NOT EXISTS idx_team_stats_match ON team_stats(match_id)`,
	`CREATE INDEX IF NOT EXISTS idx_drafts_match ON drafts(match_id)`,
	`CREATE INDEX IF NOT EXISTS idx_snapshots_team_ts ON team_feature_snapshots(team_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_scouting_team_ts ON scouting_reports(team_id, timestamp DESC)`,
	`CREATE INDEX IF NOT EXISTS idx_ai_insights_match ON ai_insights(match_id)`,
}

// EnsureSchema creates any missing tables and indexes.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	for _, stmt := range schemaStatements {
		if _, err := pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}
