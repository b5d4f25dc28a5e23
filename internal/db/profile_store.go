package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"scoutiq/internal/analytics"
)

// profileWriteLockKey serializes concurrent profile refreshes ("scoutiqp").
const profileWriteLockKey int64 = 0x73636f7574697170

// UpsertChampionProfiles creates or overwrites one row per champion name in
// a single transaction. Champions missing from profiles are left untouched.
func (w *AnalyticsWriter) UpsertChampionProfiles(ctx context.Context, profiles []analytics.ChampionProfile) error {
	if len(profiles) == 0 {
		return nil
	}

	tx, err := w.pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock($1)`, profileWriteLockKey); err != nil {
		return fmt.Errorf("acquire profile lock: %w", err)
	}

	batch := &pgx.Batch{}
	for _, p := range profiles {
		synergy := p.RoleSynergy
		if synergy == nil {
			synergy = map[string][]string{}
		}
		counters := p.CounterStats
		if counters.Counters == nil {
			counters.Counters = []string{}
		}
		if counters.CounteredBy == nil {
			counters.CounteredBy = []string{}
		}
		batch.Queue(`
			INSERT INTO champion_profiles (champion, pick_frequency, win_rate, role_synergy, counter_stats, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6)
			ON CONFLICT (champion) DO UPDATE SET
				pick_frequency = excluded.pick_frequency,
				win_rate = excluded.win_rate,
				role_synergy = excluded.role_synergy,
				counter_stats = excluded.counter_stats,
				updated_at = excluded.updated_at
		`, p.Champion, p.PickFrequency, p.WinRate, synergy, counters, p.UpdatedAt)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("upsert champion profiles: %w", err)
	}

	return tx.Commit(ctx)
}
