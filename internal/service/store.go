package service

import (
	"context"
	"time"

	"github.com/google/uuid"

	"scoutiq/internal/analytics"
	"scoutiq/internal/textgen"
)

// Reader is the read side of the match store. Not-found single rows are
// returned as nil with a nil error.
type Reader interface {
	GetMatch(ctx context.Context, matchID uuid.UUID) (*analytics.Match, error)
	GetTeam(ctx context.Context, teamID uuid.UUID) (*analytics.Team, error)
	MatchTeams(ctx context.Context, matchID uuid.UUID) ([]analytics.Team, error)
	MatchPlayerStats(ctx context.Context, matchID uuid.UUID) ([]analytics.PlayerStats, error)
	MatchDrafts(ctx context.Context, matchID uuid.UUID) ([]analytics.Draft, error)
	RecentTeamMatches(ctx context.Context, teamID uuid.UUID, limit int) ([]analytics.MatchRecord, error)
	RecentPlayerStats(ctx context.Context, teamID uuid.UUID, limit int) ([]analytics.PlayerStats, error)
	PlayerLossDeaths(ctx context.Context, playerID, excludeMatchID uuid.UUID, limit int) ([]int, error)
	PriorTeamStats(ctx context.Context, teamID, excludeMatchID uuid.UUID, limit int) ([]analytics.TeamStats, error)
	TeamChampionPool(ctx context.Context, teamID uuid.UUID) ([]analytics.ChampionPoolEntry, error)
	LatestSnapshots(ctx context.Context, teamID uuid.UUID, limit int) ([]analytics.TeamFeatureSnapshot, error)
	LatestScoutingReport(ctx context.Context, teamID uuid.UUID) (*analytics.ScoutingReport, error)
	ChampionProfiles(ctx context.Context) ([]analytics.ChampionProfile, error)
	DraftHistory(ctx context.Context, asOf time.Time) ([]analytics.MatchRecord, error)
}

// Writer is the write side of the match store.
type Writer interface {
	UpsertFeatures(ctx context.Context, matchID uuid.UUID, features []analytics.ExtractedFeature) error
	InsertSnapshot(ctx context.Context, s *analytics.TeamFeatureSnapshot) error
	InsertScoutingReport(ctx context.Context, r *analytics.ScoutingReport) error
	InsertInsights(ctx context.Context, insights []analytics.AIInsight) error
	UpsertChampionProfiles(ctx context.Context, profiles []analytics.ChampionProfile) error
}

// PoolRefresher recounts champion pools from recorded player lines.
type PoolRefresher interface {
	RefreshForMatch(ctx context.Context, matchID uuid.UUID) error
	RefreshAll(ctx context.Context) error
}

// TextGenerator produces JSON completions. Errors wrap textgen.ErrUnavailable
// or textgen.ErrMalformed.
type TextGenerator interface {
	GenerateJSON(ctx context.Context, req textgen.Request, dest any) error
}
