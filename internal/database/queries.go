package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"fping-influx/internal/models"
)

// SaveRun stores the run and every target of its report in one transaction
func (db *DB) SaveRun(ctx context.Context, run models.Run, capturedAt time.Time, report models.Report) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
        INSERT INTO runs (id, started_at, finished_at, host, range_start, range_end,
            packet_size, interval_ms, packet_count, target_count, status, stage, error)
        VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		run.ID,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
		run.Host,
		run.Params.RangeStart,
		run.Params.RangeEnd,
		run.Params.PacketSize,
		run.Params.IntervalMs,
		run.Params.Count,
		run.TargetCount,
		run.Status,
		run.Stage,
		run.Error,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}

	if len(report) > 0 {
		stmt, err := tx.PrepareContext(ctx, `
            INSERT INTO target_stats (run_id, captured_at, target, transmitted, received,
                loss_percent, min_ms, avg_ms, max_ms)
            VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
        `)
		if err != nil {
			return fmt.Errorf("prepare target insert: %w", err)
		}
		defer stmt.Close()

		for target, s := range report {
			if _, err := stmt.ExecContext(ctx,
				run.ID, capturedAt.UTC(), target,
				s.Transmitted, s.Received, s.LossPercent,
				s.MinMs, s.AvgMs, s.MaxMs,
			); err != nil {
				return fmt.Errorf("insert target %s: %w", target, err)
			}
		}
	}

	return tx.Commit()
}

// RecentRuns returns the latest runs, newest first
func (db *DB) RecentRuns(ctx context.Context, limit int) ([]models.Run, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT id, started_at, finished_at, host, range_start, range_end,
            packet_size, interval_ms, packet_count, target_count, status, stage, error
        FROM runs
        ORDER BY started_at DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var r models.Run
		err := rows.Scan(&r.ID, &r.StartedAt, &r.FinishedAt, &r.Host,
			&r.Params.RangeStart, &r.Params.RangeEnd,
			&r.Params.PacketSize, &r.Params.IntervalMs, &r.Params.Count,
			&r.TargetCount, &r.Status, &r.Stage, &r.Error)
		if err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// TargetSummaries aggregates every target archived since the cutoff.
// Timing aggregates only consider runs where the target answered.
func (db *DB) TargetSummaries(ctx context.Context, since time.Time) ([]models.TargetSummary, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT
            target,
            COUNT(*) as runs,
            SUM(transmitted) as transmitted,
            SUM(received) as received,
            AVG(loss_percent) as avg_loss,
            MIN(CASE WHEN received > 0 THEN min_ms ELSE NULL END) as min_ms,
            AVG(CASE WHEN received > 0 THEN avg_ms ELSE NULL END) as avg_ms,
            MAX(CASE WHEN received > 0 THEN max_ms ELSE NULL END) as max_ms
        FROM target_stats
        WHERE captured_at > ?
        GROUP BY target
        ORDER BY target
    `, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []models.TargetSummary
	for rows.Next() {
		var s models.TargetSummary
		var minMs, avgMs, maxMs sql.NullFloat64
		err := rows.Scan(&s.Target, &s.Runs, &s.Transmitted, &s.Received,
			&s.AvgLossPercent, &minMs, &avgMs, &maxMs)
		if err != nil {
			return nil, fmt.Errorf("scan summary: %w", err)
		}
		if minMs.Valid {
			s.MinMs = minMs.Float64
		}
		if avgMs.Valid {
			s.AvgMs = avgMs.Float64
		}
		if maxMs.Valid {
			s.MaxMs = maxMs.Float64
		}
		summaries = append(summaries, s)
	}

	return summaries, rows.Err()
}

// TargetHistory returns archived samples since the cutoff, oldest first
func (db *DB) TargetHistory(ctx context.Context, since time.Time) ([]models.TargetSample, error) {
	rows, err := db.QueryContext(ctx, `
        SELECT run_id, captured_at, target, transmitted, received, loss_percent, min_ms, avg_ms, max_ms
        FROM target_stats
        WHERE captured_at > ?
        ORDER BY captured_at, target
    `, since.UTC())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var samples []models.TargetSample
	for rows.Next() {
		var s models.TargetSample
		err := rows.Scan(&s.RunID, &s.CapturedAt, &s.Target,
			&s.Transmitted, &s.Received, &s.LossPercent,
			&s.MinMs, &s.AvgMs, &s.MaxMs)
		if err != nil {
			return nil, fmt.Errorf("scan sample: %w", err)
		}
		samples = append(samples, s)
	}

	return samples, rows.Err()
}
