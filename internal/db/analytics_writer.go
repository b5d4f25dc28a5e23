package db

import (
	"context"
	"encoding/binary"
	"fmt"
	"hash/fnv"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"scoutiq/internal/analytics"
)

// AnalyticsWriter handles writing derived analytics rows to the database.
type AnalyticsWriter struct {
	pool *pgxpool.Pool
}

// NewAnalyticsWriter creates a new analytics writer.
func NewAnalyticsWriter(pool *pgxpool.Pool) *AnalyticsWriter {
	return &AnalyticsWriter{pool: pool}
}

// advisoryLockKey generates a stable int64 key from a UUID for pg_advisory_lock.
func advisoryLockKey(id uuid.UUID) int64 {
	h := fnv.New64a()
	h.Write(id[:])
	return int64(binary.BigEndian.Uint64(h.Sum(nil)[:8]))
}

// UpsertFeatures writes one feature per (entity, name, source match) in a
// single transaction locked on the match, so re-analysis refreshes values
// instead of appending duplicates.
func (w *AnalyticsWriter) UpsertFeatures(ctx context.Context, matchID uuid.UUID, features []analytics.ExtractedFeature) error {
	if len(features) == 0 {
		return nil
	}

	tx, err := w.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, advisoryLockKey(matchID)); err != nil {
		return fmt.Errorf("acquire match lock: %w", err)
	}

	batch := &pgx.Batch{}
	for _, f := range features {
		batch.Queue(`
			INSERT INTO extracted_features (id, entity_id, entity_type, feature_name, value, source_match_id, created_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			ON CONFLICT (entity_id, feature_name, source_match_id) DO UPDATE SET
				value = excluded.value,
				entity_type = excluded.entity_type,
				created_at = excluded.created_at
		`, f.ID, f.EntityID, f.EntityType, f.FeatureName, f.Value, f.SourceMatchID, f.CreatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert features: %w", err)
	}

	return tx.Commit(ctx)
}

// InsertSnapshot appends a team feature snapshot.
func (w *AnalyticsWriter) InsertSnapshot(ctx context.Context, s *analytics.TeamFeatureSnapshot) error {
	_, err := w.pool.Exec(ctx, `
		INSERT INTO team_feature_snapshots
			(id, team_id, timestamp, win_rate, objective_control, avg_deaths, gold_advantage, match_count)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, s.ID, s.TeamID, s.Timestamp, s.WinRate, s.ObjectiveControl, s.AvgDeaths, s.GoldAdvantage, s.MatchCount)
	if err != nil {
		return fmt.Errorf("insert snapshot: %w", err)
	}
	return nil
}

// InsertScoutingReport appends a scouting report.
func (w *AnalyticsWriter) InsertScoutingReport(ctx context.Context, r *analytics.ScoutingReport) error {
	weak, err := encodeNameList(r.WeakRoles)
	if err != nil {
		return err
	}
	_, err = w.pool.Exec(ctx, `
		INSERT INTO scouting_reports
			(id, team_id, timestamp, early_game, mid_game, late_game, weak_roles,
			 aggression_score, side_preference, explanation)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.ID, r.TeamID, r.Timestamp, r.EarlyGame, r.MidGame, r.LateGame, weak,
		r.AggressionScore, r.SidePreference, r.Explanation)
	if err != nil {
		return fmt.Errorf("insert scouting report: %w", err)
	}
	return nil
}

// InsertInsights appends insight rows using COPY protocol.
func (w *AnalyticsWriter) InsertInsights(ctx context.Context, insights []analytics.AIInsight) error {
	if len(insights) == 0 {
		return nil
	}

	columns := []string{"id", "match_id", "category", "content", "confidence", "evidence", "created_at"}

	_, err := w.pool.CopyFrom(
		ctx,
		pgx.Identifier{"ai_insights"},
		columns,
		pgx.CopyFromSlice(len(insights), func(i int) ([]any, error) {
			in := insights[i]
			return []any{in.ID, in.MatchID, in.Category, in.Content, in.Confidence, in.Evidence, in.CreatedAt}, nil
		}),
	)
	if err != nil {
		return fmt.Errorf("copy insights: %w", err)
	}
	return nil
}
