package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"scoutiq/internal/logging"
)

// PoolRefresher rebuilds champion_pools frequencies from recorded player
// lines after match processing. Counts never go down, so pools seeded by
// ingestion from other sources are preserved.
type PoolRefresher struct {
	pool *pgxpool.Pool
}

// NewPoolRefresher creates a new champion-pool refresher.
func NewPoolRefresher(pool *pgxpool.Pool) *PoolRefresher {
	return &PoolRefresher{pool: pool}
}

const refreshPoolsSQL = `
	INSERT INTO champion_pools (player_id, champion, frequency)
	SELECT ps.player_id, ps.champion, COUNT(*)
	FROM player_stats ps
	WHERE ps.champion <> '' %s
	GROUP BY ps.player_id, ps.champion
	ON CONFLICT (player_id, champion) DO UPDATE SET
		frequency = GREATEST(champion_pools.frequency, excluded.frequency)
`

// RefreshForMatch recounts pools for the players who appear in the match.
func (r *PoolRefresher) RefreshForMatch(ctx context.Context, matchID uuid.UUID) error {
	logger := logging.Logger()
	startTime := time.Now()

	query := fmt.Sprintf(refreshPoolsSQL,
		`AND ps.player_id IN (SELECT player_id FROM player_stats WHERE match_id = $1)`)
	tag, err := r.pool.Exec(ctx, query, matchID)
	if err != nil {
		return fmt.Errorf("refresh champion pools for match %s: %w", matchID, err)
	}

	logger.Debugf("champion pools refreshed for match %s: %d rows in %v", matchID, tag.RowsAffected(), time.Since(startTime))
	return nil
}

// RefreshAll recounts every player's pool. Use this for backfill.
func (r *PoolRefresher) RefreshAll(ctx context.Context) error {
	logger := logging.Logger()
	startTime := time.Now()

	tag, err := r.pool.Exec(ctx, fmt.Sprintf(refreshPoolsSQL, ""))
	if err != nil {
		return fmt.Errorf("full champion pool refresh: %w", err)
	}

	logger.Infof("full champion pool refresh completed: %d rows in %v", tag.RowsAffected(), time.Since(startTime))
	return nil
}
