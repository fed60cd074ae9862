package verify

import (
	"context"
	"fmt"
	"time"

	"eyra/internal/logging"
	"eyra/internal/services"
	"eyra/internal/store"
)

// Session returns a session with its outstanding recordings at both passes.
func (s *Service) Session(ctx context.Context, sessionID int64) (*SessionDetail, error) {
	var detail SessionDetail
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		session, err := tx.SessionByID(sessionID)
		if err != nil {
			return err
		}
		if session == nil {
			return services.Wrap(services.ErrNotFound, "verify", "session",
				fmt.Sprintf("session %d", sessionID), nil)
		}
		detail.Session = session
		if detail.PendingPrimary, err = tx.PendingRecordings(sessionID, false); err != nil {
			return err
		}
		detail.PendingSecondary, err = tx.PendingRecordings(sessionID, true)
		return err
	})
	if err != nil {
		return nil, classify("session", err)
	}
	return &detail, nil
}

// Stats aggregates verdict counts, optionally bounded to a date range. Both
// bounds must be given together, with from not after to.
func (s *Service) Stats(ctx context.Context, from, to *time.Time) (store.Stats, error) {
	if (from == nil) != (to == nil) {
		return store.Stats{}, services.Wrap(services.ErrValidation, "verify", "stats",
			"from and to must be given together", nil)
	}
	if from != nil && from.After(*to) {
		return store.Stats{}, services.Wrap(services.ErrValidation, "verify", "stats",
			"from must not be after to", nil)
	}
	stats, err := s.store.VerificationStats(ctx, from, to)
	if err != nil {
		return store.Stats{}, classify("stats", err)
	}
	return stats, nil
}

// FlagRecordingPriority pulls a recording out of its session and into a fresh
// standalone priority session for re-review. Its pass flags are reset so both
// passes run again.
func (s *Service) FlagRecordingPriority(ctx context.Context, recordingID int64) (*store.Session, error) {
	recording, err := s.store.GetRecording(ctx, recordingID)
	if err != nil {
		return nil, classify("flag_priority", err)
	}
	if recording == nil {
		return nil, services.Wrap(services.ErrNotFound, "verify", "flag_priority",
			fmt.Sprintf("recording %d", recordingID), nil)
	}

	session, err := s.store.CreatePrioritySession(ctx, false)
	if err != nil {
		return nil, classify("flag_priority", err)
	}
	err = s.store.InTx(ctx, func(tx *store.Tx) error {
		return tx.MoveRecordingToSession(recordingID, session.ID)
	})
	if err != nil {
		// Best effort: do not leave an empty priority session behind.
		_, _ = s.store.DeleteSession(ctx, session.ID)
		return nil, classify("flag_priority", err)
	}

	s.logger.Info("recording flagged for re-review",
		logging.String(logging.FieldEventType, "recording_flagged"),
		logging.Int64(logging.FieldRecording, recordingID),
		logging.Int64(logging.FieldSession, session.ID),
	)
	return session, nil
}

// RemoveSession deletes a session, detaching its recordings first so the
// audio and any verdicts survive.
func (s *Service) RemoveSession(ctx context.Context, sessionID int64) error {
	deleted, err := s.store.DeleteSession(ctx, sessionID)
	if err != nil {
		return classify("remove_session", err)
	}
	if !deleted {
		return services.Wrap(services.ErrNotFound, "verify", "remove_session",
			fmt.Sprintf("session %d", sessionID), nil)
	}
	s.logger.Info("session removed",
		logging.String(logging.FieldEventType, "session_removed"),
		logging.Int64(logging.FieldSession, sessionID),
	)
	return nil
}

// ReleaseSession clears the session's assignment locks for passes that have
// not completed, returning it to the open pool.
func (s *Service) ReleaseSession(ctx context.Context, sessionID int64) error {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return classify("release_session", err)
	}
	if session == nil {
		return services.Wrap(services.ErrNotFound, "verify", "release_session",
			fmt.Sprintf("session %d", sessionID), nil)
	}
	if err := s.store.ReleaseLocks(ctx, sessionID); err != nil {
		return classify("release_session", err)
	}
	s.logger.Info("session locks released",
		logging.String(logging.FieldEventType, "session_released"),
		logging.Int64(logging.FieldSession, sessionID),
	)
	return nil
}
