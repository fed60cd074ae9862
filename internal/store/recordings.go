package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const recordingColumns = "id, session_id, token_id, fname, audio_path, is_verified, is_secondarily_verified, created_at"

// AddRecording inserts one audio take bound to a token and a session.
func (s *Store) AddRecording(ctx context.Context, sessionID, tokenID int64, fname, audioPath string) (*Recording, error) {
	now := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO recordings (session_id, token_id, fname, audio_path, created_at)
         VALUES (?, ?, ?, ?, ?)`,
		sessionID,
		tokenID,
		fname,
		audioPath,
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert recording: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetRecording(ctx, id)
}

// GetRecording fetches a recording by identifier. Returns nil when absent.
func (s *Store) GetRecording(ctx context.Context, id int64) (*Recording, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+recordingColumns+` FROM recordings WHERE id = ?`, id)
	recording, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get recording: %w", err)
	}
	return recording, nil
}

// RecordingByID fetches a recording inside the transaction. Returns nil when absent.
func (t *Tx) RecordingByID(id int64) (*Recording, error) {
	row := t.tx.QueryRowContext(t.ctx, `SELECT `+recordingColumns+` FROM recordings WHERE id = ?`, id)
	recording, err := scanRecording(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("recording by id: %w", err)
	}
	return recording, nil
}

// PendingRecordings returns the session's recordings still awaiting review at
// the given pass, joined with their prompt and prior verification count,
// ordered by id.
func (t *Tx) PendingRecordings(sessionID int64, secondary bool) ([]*PendingRecording, error) {
	passColumn := "r.is_verified"
	if secondary {
		passColumn = "r.is_secondarily_verified"
	}
	rows, err := t.tx.QueryContext(
		t.ctx,
		`SELECT r.id, r.session_id, r.token_id, r.fname, r.audio_path,
                r.is_verified, r.is_secondarily_verified, r.created_at,
                COALESCE(tok.text, ''), COALESCE(tok.fname, ''),
                (SELECT COUNT(1) FROM verifications v WHERE v.recording_id = r.id)
         FROM recordings r
         LEFT JOIN tokens tok ON tok.id = r.token_id
         WHERE r.session_id = ? AND `+passColumn+` = 0
         ORDER BY r.id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("pending recordings: %w", err)
	}
	defer rows.Close()

	var pending []*PendingRecording
	for rows.Next() {
		var (
			entry                 PendingRecording
			sessionRef            sql.NullInt64
			tokenRef              sql.NullInt64
			isVerified            int
			isSecondarilyVerified int
			createdRaw            string
		)
		if err := rows.Scan(
			&entry.ID,
			&sessionRef,
			&tokenRef,
			&entry.Fname,
			&entry.AudioPath,
			&isVerified,
			&isSecondarilyVerified,
			&createdRaw,
			&entry.PromptText,
			&entry.PromptFname,
			&entry.NumVerified,
		); err != nil {
			return nil, fmt.Errorf("scan pending recording: %w", err)
		}
		if sessionRef.Valid {
			entry.SessionID = &sessionRef.Int64
		}
		if tokenRef.Valid {
			entry.TokenID = &tokenRef.Int64
		}
		entry.IsVerified = isVerified != 0
		entry.IsSecondarilyVerified = isSecondarilyVerified != 0
		if created, err := parseTimeString(createdRaw); err == nil {
			entry.CreatedAt = created
		}
		pending = append(pending, &entry)
	}
	return pending, rows.Err()
}

// SetRecordingVerified writes the per-recording flag for one pass.
func (t *Tx) SetRecordingVerified(recordingID int64, secondary, value bool) error {
	column := "is_verified"
	if secondary {
		column = "is_secondarily_verified"
	}
	if _, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE recordings SET `+column+` = ? WHERE id = ?`,
		boolToInt(value),
		recordingID,
	); err != nil {
		return fmt.Errorf("set recording %s: %w", column, err)
	}
	return nil
}

// MoveRecordingToSession reattaches a recording to another session and resets
// its pass flags so review starts clean. Used when flagging a recording for
// priority re-review.
func (t *Tx) MoveRecordingToSession(recordingID, sessionID int64) error {
	res, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE recordings SET session_id = ?, is_verified = 0, is_secondarily_verified = 0 WHERE id = ?`,
		sessionID,
		recordingID,
	)
	if err != nil {
		return fmt.Errorf("move recording: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func scanRecording(scanner interface{ Scan(dest ...any) error }) (*Recording, error) {
	var (
		recording             Recording
		sessionRef            sql.NullInt64
		tokenRef              sql.NullInt64
		isVerified            int
		isSecondarilyVerified int
		createdRaw            string
	)
	if err := scanner.Scan(
		&recording.ID,
		&sessionRef,
		&tokenRef,
		&recording.Fname,
		&recording.AudioPath,
		&isVerified,
		&isSecondarilyVerified,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	if sessionRef.Valid {
		recording.SessionID = &sessionRef.Int64
	}
	if tokenRef.Valid {
		recording.TokenID = &tokenRef.Int64
	}
	recording.IsVerified = isVerified != 0
	recording.IsSecondarilyVerified = isSecondarilyVerified != 0
	if created, err := parseTimeString(createdRaw); err == nil {
		recording.CreatedAt = created
	}
	return &recording, nil
}
