package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const verificationColumns = "id, recording_id, verified_by, is_secondary, volume_is_low, volume_is_high, recording_has_wrong_wording, recording_has_glitch, glitch_outside_trim, is_ok, comment, trim_start, trim_end, created_at"

// InsertVerification persists a verdict row and returns its identifier.
func (t *Tx) InsertVerification(v *Verification) (int64, error) {
	if v == nil {
		return 0, errors.New("verification is nil")
	}
	now := time.Now().UTC()
	v.CreatedAt = now
	res, err := t.tx.ExecContext(
		t.ctx,
		`INSERT INTO verifications (
            recording_id, verified_by, is_secondary,
            volume_is_low, volume_is_high, recording_has_wrong_wording,
            recording_has_glitch, glitch_outside_trim, is_ok,
            comment, trim_start, trim_end, created_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		v.RecordingID,
		v.ReviewerID,
		boolToInt(v.IsSecondary),
		boolToInt(v.VolumeIsLow),
		boolToInt(v.VolumeIsHigh),
		boolToInt(v.WrongWording),
		boolToInt(v.HasGlitch),
		boolToInt(v.GlitchOutsideTrim),
		boolToInt(v.IsOK),
		v.Comment,
		nullableFloat(v.TrimStart),
		nullableFloat(v.TrimEnd),
		timestamp(now),
	)
	if err != nil {
		return 0, fmt.Errorf("insert verification: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("last insert id: %w", err)
	}
	v.ID = id
	return id, nil
}

// VerificationByID fetches a verdict inside the transaction. Returns nil when absent.
func (t *Tx) VerificationByID(id int64) (*Verification, error) {
	row := t.tx.QueryRowContext(t.ctx, `SELECT `+verificationColumns+` FROM verifications WHERE id = ?`, id)
	verification, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("verification by id: %w", err)
	}
	return verification, nil
}

// DeleteVerification removes a verdict row.
func (t *Tx) DeleteVerification(id int64) (bool, error) {
	res, err := t.tx.ExecContext(t.ctx, `DELETE FROM verifications WHERE id = ?`, id)
	if err != nil {
		return false, fmt.Errorf("delete verification: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// CountVerifications returns how many verdicts a recording carries. The
// recorder derives the pass kind from this: zero means the next verdict is
// the primary pass.
func (t *Tx) CountVerifications(recordingID int64) (int, error) {
	var count int
	row := t.tx.QueryRowContext(t.ctx, `SELECT COUNT(1) FROM verifications WHERE recording_id = ?`, recordingID)
	if err := row.Scan(&count); err != nil {
		return 0, fmt.Errorf("count verifications: %w", err)
	}
	return count, nil
}

// GetVerification fetches a verdict by identifier. Returns nil when absent.
func (s *Store) GetVerification(ctx context.Context, id int64) (*Verification, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+verificationColumns+` FROM verifications WHERE id = ?`, id)
	verification, err := scanVerification(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get verification: %w", err)
	}
	return verification, nil
}

// ListVerifications returns verdicts ordered newest first.
func (s *Store) ListVerifications(ctx context.Context, limit, offset int) ([]*Verification, error) {
	query := `SELECT ` + verificationColumns + ` FROM verifications ORDER BY created_at DESC, id DESC`
	args := []any{}
	if limit > 0 {
		query += ` LIMIT ? OFFSET ?`
		args = append(args, limit, offset)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list verifications: %w", err)
	}
	defer rows.Close()

	var verifications []*Verification
	for rows.Next() {
		verification, err := scanVerification(rows)
		if err != nil {
			return nil, err
		}
		verifications = append(verifications, verification)
	}
	return verifications, rows.Err()
}

func scanVerification(scanner interface{ Scan(dest ...any) error }) (*Verification, error) {
	var (
		v           Verification
		isSecondary int
		low         int
		high        int
		wrong       int
		glitch      int
		outside     int
		ok          int
		trimStart   sql.NullFloat64
		trimEnd     sql.NullFloat64
		createdRaw  string
	)
	if err := scanner.Scan(
		&v.ID,
		&v.RecordingID,
		&v.ReviewerID,
		&isSecondary,
		&low,
		&high,
		&wrong,
		&glitch,
		&outside,
		&ok,
		&v.Comment,
		&trimStart,
		&trimEnd,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	v.IsSecondary = isSecondary != 0
	v.VolumeIsLow = low != 0
	v.VolumeIsHigh = high != 0
	v.WrongWording = wrong != 0
	v.HasGlitch = glitch != 0
	v.GlitchOutsideTrim = outside != 0
	v.IsOK = ok != 0
	if trimStart.Valid {
		v.TrimStart = &trimStart.Float64
	}
	if trimEnd.Valid {
		v.TrimEnd = &trimEnd.Float64
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		v.CreatedAt = created
	}
	return &v, nil
}
