package database

import (
	"context"
	"time"
)

// Prune deletes runs older than retentionDays together with their target
// statistics. Zero keeps everything.
func (db *DB) Prune(ctx context.Context, retentionDays int) error {
	if retentionDays <= 0 {
		return nil
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)

	if _, err := db.ExecContext(ctx, `DELETE FROM target_stats WHERE captured_at < ?`, cutoff); err != nil {
		return err
	}
	if _, err := db.ExecContext(ctx, `DELETE FROM runs WHERE started_at < ?`, cutoff); err != nil {
		return err
	}

	// Vacuum to reclaim space (run occasionally)
	if time.Now().Day() == 1 { // Run on first day of month
		_, err := db.ExecContext(ctx, "VACUUM")
		return err
	}

	return nil
}
