package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

const sessionColumns = "id, collection_id, is_priority, has_priority, is_dev, is_verified, is_secondarily_verified, verified_by, secondarily_verified_by, created_at"

// CreateSession inserts a session belonging to a collection. Dev-ness is
// materialized from the collection so priority and normal sessions share one
// filter surface.
func (s *Store) CreateSession(ctx context.Context, collectionID int64, hasPriority bool) (*Session, error) {
	collection, err := s.GetCollection(ctx, collectionID)
	if err != nil {
		return nil, err
	}
	if collection == nil {
		return nil, fmt.Errorf("collection %d does not exist", collectionID)
	}
	now := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO sessions (collection_id, is_priority, has_priority, is_dev, created_at)
         VALUES (?, 0, ?, ?, ?)`,
		collectionID,
		boolToInt(hasPriority),
		boolToInt(collection.IsDev),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetSession(ctx, id)
}

// CreatePrioritySession inserts a standalone fast-track session outside any
// collection.
func (s *Store) CreatePrioritySession(ctx context.Context, isDev bool) (*Session, error) {
	now := timestamp(time.Now())
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO sessions (collection_id, is_priority, has_priority, is_dev, created_at)
         VALUES (NULL, 1, 0, ?, ?)`,
		boolToInt(isDev),
		now,
	)
	if err != nil {
		return nil, fmt.Errorf("insert priority session: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetSession(ctx, id)
}

// GetSession fetches a session by identifier. Returns nil when absent.
func (s *Store) GetSession(ctx context.Context, id int64) (*Session, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return session, nil
}

// DeleteSession removes a session after detaching its recordings; the audio
// and any verification rows survive the session itself.
func (s *Store) DeleteSession(ctx context.Context, id int64) (bool, error) {
	var deleted bool
	err := s.InTx(ctx, func(tx *Tx) error {
		if _, err := tx.tx.ExecContext(tx.ctx, `UPDATE recordings SET session_id = NULL WHERE session_id = ?`, id); err != nil {
			return fmt.Errorf("detach recordings: %w", err)
		}
		res, err := tx.tx.ExecContext(tx.ctx, `DELETE FROM sessions WHERE id = ?`, id)
		if err != nil {
			return fmt.Errorf("delete session: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return fmt.Errorf("rows affected: %w", err)
		}
		deleted = affected > 0
		return nil
	})
	return deleted, err
}

// ReleaseLocks clears assignment locks for passes that have not completed,
// returning the session to the open pool (administrative reset).
func (s *Store) ReleaseLocks(ctx context.Context, id int64) error {
	_, err := s.execWithRetry(
		ctx,
		`UPDATE sessions
         SET verified_by = CASE WHEN is_verified = 0 THEN NULL ELSE verified_by END,
             secondarily_verified_by = CASE WHEN is_secondarily_verified = 0 THEN NULL ELSE secondarily_verified_by END
         WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("release locks: %w", err)
	}
	return nil
}

// SessionByID fetches a session inside the transaction. Returns nil when absent.
func (t *Tx) SessionByID(id int64) (*Session, error) {
	row := t.tx.QueryRowContext(t.ctx, `SELECT `+sessionColumns+` FROM sessions WHERE id = ?`, id)
	session, err := scanSession(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session by id: %w", err)
	}
	return session, nil
}

// EligiblePriority returns standalone priority sessions open to the reviewer:
// unverified, non-dev, unlocked or locked to the reviewer. Ordered by lock
// then id so a self-locked session surfaces deterministically.
func (t *Tx) EligiblePriority(reviewerID int64) ([]*Session, error) {
	return t.querySessions(
		`SELECT `+sessionColumns+` FROM sessions
         WHERE is_priority = 1 AND is_verified = 0 AND is_dev = 0
           AND (verified_by IS NULL OR verified_by = ?)
         ORDER BY verified_by, id`,
		reviewerID,
	)
}

// EligibleFastTrack returns normal sessions flagged has_priority, ahead of the
// regular primary pool.
func (t *Tx) EligibleFastTrack(reviewerID int64) ([]*Session, error) {
	return t.querySessions(
		`SELECT `+sessionColumns+` FROM sessions
         WHERE is_priority = 0 AND has_priority = 1 AND is_verified = 0 AND is_dev = 0
           AND (verified_by IS NULL OR verified_by = ?)
         ORDER BY verified_by, id`,
		reviewerID,
	)
}

// EligiblePrimary returns sessions awaiting a first pass in verifying,
// non-dev collections, unlocked or locked to the reviewer.
func (t *Tx) EligiblePrimary(reviewerID int64) ([]*Session, error) {
	return t.querySessions(
		`SELECT `+sessionColumnsPrefixed("s")+` FROM sessions s
         JOIN collections c ON c.id = s.collection_id
         WHERE s.is_priority = 0 AND s.is_verified = 0
           AND c.is_dev = 0 AND c.verify = 1
           AND (s.verified_by IS NULL OR s.verified_by = ?)
         ORDER BY s.verified_by, s.id`,
		reviewerID,
	)
}

// EligibleSecondary returns sessions awaiting a second pass that the reviewer
// did not primary-verify. Sessions never primary-verified stay in the primary
// pool, so NULL verified_by is excluded here.
func (t *Tx) EligibleSecondary(reviewerID int64) ([]*Session, error) {
	return t.querySessions(
		`SELECT `+sessionColumnsPrefixed("s")+` FROM sessions s
         JOIN collections c ON c.id = s.collection_id
         WHERE s.is_priority = 0 AND s.is_secondarily_verified = 0
           AND s.verified_by IS NOT NULL AND s.verified_by != ?
           AND c.is_dev = 0 AND c.verify = 1
           AND (s.secondarily_verified_by IS NULL OR s.secondarily_verified_by = ?)
         ORDER BY s.secondarily_verified_by, s.id`,
		reviewerID,
		reviewerID,
	)
}

// LockPrimary claims the primary pass for a reviewer. The condition repeats
// the eligibility check so a concurrent claim that committed first makes this
// a no-op, reported as ok=false.
func (t *Tx) LockPrimary(sessionID, reviewerID int64) (bool, error) {
	res, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE sessions SET verified_by = ?
         WHERE id = ? AND is_verified = 0 AND (verified_by IS NULL OR verified_by = ?)`,
		reviewerID,
		sessionID,
		reviewerID,
	)
	if err != nil {
		return false, fmt.Errorf("lock primary: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// LockSecondary claims the secondary pass for a reviewer.
func (t *Tx) LockSecondary(sessionID, reviewerID int64) (bool, error) {
	res, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE sessions SET secondarily_verified_by = ?
         WHERE id = ? AND is_secondarily_verified = 0
           AND verified_by IS NOT NULL AND verified_by != ?
           AND (secondarily_verified_by IS NULL OR secondarily_verified_by = ?)`,
		reviewerID,
		sessionID,
		reviewerID,
		reviewerID,
	)
	if err != nil {
		return false, fmt.Errorf("lock secondary: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return affected > 0, nil
}

// SetSessionVerified writes the aggregate flag for one pass.
func (t *Tx) SetSessionVerified(sessionID int64, secondary, value bool) error {
	column := "is_verified"
	if secondary {
		column = "is_secondarily_verified"
	}
	if _, err := t.tx.ExecContext(
		t.ctx,
		`UPDATE sessions SET `+column+` = ? WHERE id = ?`,
		boolToInt(value),
		sessionID,
	); err != nil {
		return fmt.Errorf("set session %s: %w", column, err)
	}
	return nil
}

// RecordingCounts returns the total recordings in a session and how many have
// completed each pass.
func (t *Tx) RecordingCounts(sessionID int64) (total, primary, secondary int, err error) {
	row := t.tx.QueryRowContext(
		t.ctx,
		`SELECT COUNT(1),
                COALESCE(SUM(is_verified), 0),
                COALESCE(SUM(is_secondarily_verified), 0)
         FROM recordings WHERE session_id = ?`,
		sessionID,
	)
	if scanErr := row.Scan(&total, &primary, &secondary); scanErr != nil {
		return 0, 0, 0, fmt.Errorf("recording counts: %w", scanErr)
	}
	return total, primary, secondary, nil
}

func (t *Tx) querySessions(query string, args ...any) ([]*Session, error) {
	rows, err := t.tx.QueryContext(t.ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []*Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	return sessions, rows.Err()
}

func sessionColumnsPrefixed(alias string) string {
	// sessionColumns with every column qualified by the alias.
	return alias + ".id, " + alias + ".collection_id, " + alias + ".is_priority, " + alias + ".has_priority, " + alias + ".is_dev, " + alias + ".is_verified, " + alias + ".is_secondarily_verified, " + alias + ".verified_by, " + alias + ".secondarily_verified_by, " + alias + ".created_at"
}

func scanSession(scanner interface{ Scan(dest ...any) error }) (*Session, error) {
	var (
		session               Session
		collectionID          sql.NullInt64
		isPriority            int
		hasPriority           int
		isDev                 int
		isVerified            int
		isSecondarilyVerified int
		verifiedBy            sql.NullInt64
		secondarilyVerifiedBy sql.NullInt64
		createdRaw            string
	)
	if err := scanner.Scan(
		&session.ID,
		&collectionID,
		&isPriority,
		&hasPriority,
		&isDev,
		&isVerified,
		&isSecondarilyVerified,
		&verifiedBy,
		&secondarilyVerifiedBy,
		&createdRaw,
	); err != nil {
		return nil, err
	}
	if collectionID.Valid {
		session.CollectionID = &collectionID.Int64
	}
	session.IsPriority = isPriority != 0
	session.HasPriority = hasPriority != 0
	session.IsDev = isDev != 0
	session.IsVerified = isVerified != 0
	session.IsSecondarilyVerified = isSecondarilyVerified != 0
	if verifiedBy.Valid {
		session.VerifiedBy = &verifiedBy.Int64
	}
	if secondarilyVerifiedBy.Valid {
		session.SecondarilyVerifiedBy = &secondarilyVerifiedBy.Int64
	}
	if created, err := parseTimeString(createdRaw); err == nil {
		session.CreatedAt = created
	}
	return &session, nil
}
