package store

import (
	"context"
	"fmt"
	"time"
)

// VerificationStats aggregates verdict counts for the reporting views. When
// from and to are both non-nil the range count is populated as well.
func (s *Store) VerificationStats(ctx context.Context, from, to *time.Time) (Stats, error) {
	var stats Stats
	weekAgo := timestamp(time.Now().AddDate(0, 0, -7))

	row := s.db.QueryRowContext(
		ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(CASE WHEN is_secondary = 0 THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN is_secondary = 1 THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN volume_is_low = 0 AND volume_is_high = 0
                                   AND recording_has_wrong_wording = 0
                                   AND recording_has_glitch = 0 THEN 1 ELSE 0 END), 0),
                COALESCE(SUM(CASE WHEN volume_is_low = 1 OR volume_is_high = 1
                                   OR recording_has_wrong_wording = 1
                                   OR recording_has_glitch = 1 THEN 1 ELSE 0 END), 0)
         FROM verifications`,
		weekAgo,
	)
	if err := row.Scan(
		&stats.Total,
		&stats.SingleVerified,
		&stats.DoubleVerified,
		&stats.PastWeek,
		&stats.Good,
		&stats.Bad,
	); err != nil {
		return Stats{}, fmt.Errorf("verification stats: %w", err)
	}

	if from != nil && to != nil {
		row := s.db.QueryRowContext(
			ctx,
			`SELECT COUNT(1) FROM verifications WHERE created_at >= ? AND created_at < ?`,
			timestamp(*from),
			timestamp(to.AddDate(0, 0, 1)),
		)
		if err := row.Scan(&stats.RangeCount); err != nil {
			return Stats{}, fmt.Errorf("range stats: %w", err)
		}
		stats.RangeApplied = true
	}

	return stats, nil
}
