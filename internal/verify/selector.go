package verify

import (
	"context"

	"github.com/google/uuid"

	"eyra/internal/logging"
	"eyra/internal/store"
)

// NextSession assigns the reviewer a session to verify, claiming it inside the
// same transaction that selected it. Pools are consulted in order: standalone
// priority sessions, fast-tracked normal sessions, the primary pool, then the
// secondary pool. A session already locked to the reviewer is returned again
// before any random pick, so re-entry after an interrupted review is
// idempotent. Returns nil when every pool is empty.
func (s *Service) NextSession(ctx context.Context, reviewerID int64) (*SessionHandle, error) {
	requestID := uuid.NewString()
	var handle *SessionHandle

	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		pools := []struct {
			name      string
			secondary bool
			load      func() ([]*store.Session, error)
		}{
			{"priority", false, func() ([]*store.Session, error) { return tx.EligiblePriority(reviewerID) }},
			{"fast-track", false, func() ([]*store.Session, error) { return tx.EligibleFastTrack(reviewerID) }},
			{"primary", false, func() ([]*store.Session, error) { return tx.EligiblePrimary(reviewerID) }},
			{"secondary", true, func() ([]*store.Session, error) { return tx.EligibleSecondary(reviewerID) }},
		}

		for _, pool := range pools {
			candidates, err := pool.load()
			if err != nil {
				return err
			}
			session, err := s.claim(tx, candidates, reviewerID, pool.secondary)
			if err != nil {
				return err
			}
			if session == nil {
				continue
			}
			pending, err := tx.PendingRecordings(session.ID, pool.secondary)
			if err != nil {
				return err
			}
			handle = &SessionHandle{
				SessionID:    session.ID,
				CollectionID: session.CollectionID,
				IsPriority:   session.IsPriority,
				IsSecondary:  pool.secondary,
				Pending:      pending,
			}
			s.logger.Info("session assigned",
				logging.String(logging.FieldEventType, "session_assigned"),
				logging.String(logging.FieldRequestID, requestID),
				logging.Int64(logging.FieldReviewer, reviewerID),
				logging.Int64(logging.FieldSession, session.ID),
				logging.String("pool", pool.name),
				logging.Int("pending", len(pending)),
			)
			return nil
		}
		return nil
	})
	if err != nil {
		return nil, classify("next_session", err)
	}
	if handle == nil {
		s.logger.Debug("queue empty",
			logging.String(logging.FieldRequestID, requestID),
			logging.Int64(logging.FieldReviewer, reviewerID),
		)
	}
	return handle, nil
}

// claim locks one candidate for the reviewer. A session already locked to the
// reviewer wins outright; otherwise one is drawn uniformly at random.
// Candidates whose lock write fails (claimed by a competing transaction) are
// dropped and the draw repeats.
func (s *Service) claim(tx *store.Tx, candidates []*store.Session, reviewerID int64, secondary bool) (*store.Session, error) {
	for i, candidate := range candidates {
		lockedBy := candidate.VerifiedBy
		if secondary {
			lockedBy = candidate.SecondarilyVerifiedBy
		}
		if lockedBy != nil && *lockedBy == reviewerID {
			ok, err := s.lock(tx, candidate.ID, reviewerID, secondary)
			if err != nil {
				return nil, err
			}
			if ok {
				return candidate, nil
			}
			candidates = append(candidates[:i], candidates[i+1:]...)
			break
		}
	}

	for len(candidates) > 0 {
		idx := s.pick(len(candidates))
		candidate := candidates[idx]
		ok, err := s.lock(tx, candidate.ID, reviewerID, secondary)
		if err != nil {
			return nil, err
		}
		if ok {
			return candidate, nil
		}
		candidates = append(candidates[:idx], candidates[idx+1:]...)
	}
	return nil, nil
}

func (s *Service) lock(tx *store.Tx, sessionID, reviewerID int64, secondary bool) (bool, error) {
	if secondary {
		return tx.LockSecondary(sessionID, reviewerID)
	}
	return tx.LockPrimary(sessionID, reviewerID)
}
