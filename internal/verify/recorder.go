package verify

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"eyra/internal/logging"
	"eyra/internal/services"
	"eyra/internal/services/audiotrim"
	"eyra/internal/store"
)

// RecordVerdict validates and persists one verdict, marking the recording
// verified for the derived pass and rolling the session flags up in the same
// transaction. Trim points, when present, are applied to the stored waveform
// after the verdict commits; a failed cut does not revoke the verdict.
func (s *Service) RecordVerdict(ctx context.Context, verdict Verdict) (*VerdictResult, error) {
	requestID := uuid.NewString()
	if err := validateVerdict(verdict); err != nil {
		return nil, err
	}

	var (
		result    VerdictResult
		audioPath string
	)
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		recording, err := tx.RecordingByID(verdict.RecordingID)
		if err != nil {
			return err
		}
		if recording == nil {
			return services.Wrap(services.ErrNotFound, "verify", "record_verdict",
				fmt.Sprintf("recording %d", verdict.RecordingID), nil)
		}
		audioPath = recording.AudioPath

		count, err := tx.CountVerifications(recording.ID)
		if err != nil {
			return err
		}
		secondary := count > 0

		id, err := tx.InsertVerification(&store.Verification{
			RecordingID:       recording.ID,
			ReviewerID:        verdict.ReviewerID,
			IsSecondary:       secondary,
			VolumeIsLow:       verdict.VolumeIsLow,
			VolumeIsHigh:      verdict.VolumeIsHigh,
			WrongWording:      verdict.WrongWording,
			HasGlitch:         verdict.HasGlitch,
			GlitchOutsideTrim: verdict.GlitchOutsideTrim,
			IsOK:              verdict.IsOK,
			Comment:           verdict.Comment,
			TrimStart:         verdict.TrimStart,
			TrimEnd:           verdict.TrimEnd,
		})
		if err != nil {
			return err
		}
		if err := tx.SetRecordingVerified(recording.ID, secondary, true); err != nil {
			return err
		}

		result = VerdictResult{VerificationID: id, IsSecondary: secondary}
		if recording.SessionID == nil {
			return nil
		}
		completed, err := rollUpSession(tx, *recording.SessionID)
		if err != nil {
			return err
		}
		if secondary {
			result.SessionCompleted = completed.secondary
		} else {
			result.SessionCompleted = completed.primary
		}
		return nil
	})
	if err != nil {
		return nil, classify("record_verdict", err)
	}

	s.logger.Info("verdict recorded",
		logging.String(logging.FieldEventType, "verdict_recorded"),
		logging.String(logging.FieldRequestID, requestID),
		logging.Int64(logging.FieldReviewer, verdict.ReviewerID),
		logging.Int64(logging.FieldRecording, verdict.RecordingID),
		logging.Int64("verification_id", result.VerificationID),
		logging.Bool("secondary", result.IsSecondary),
		logging.Bool("session_completed", result.SessionCompleted),
	)

	if s.trimmer != nil && verdict.TrimStart != nil && verdict.TrimEnd != nil {
		trimErr := s.trimmer.Apply(ctx, audiotrim.Request{
			AudioPath: audioPath,
			Start:     *verdict.TrimStart,
			End:       *verdict.TrimEnd,
		})
		if trimErr != nil {
			s.logger.Warn("trim not applied",
				logging.String(logging.FieldRequestID, requestID),
				logging.Int64(logging.FieldRecording, verdict.RecordingID),
				logging.Error(trimErr),
			)
		}
	}
	return &result, nil
}

// UndoVerdict deletes a verdict and rolls back the flags it set: the
// recording's flag for that pass, and the owning session's flag for that pass
// regardless of the other recordings' state.
func (s *Service) UndoVerdict(ctx context.Context, verificationID int64) error {
	requestID := uuid.NewString()
	err := s.store.InTx(ctx, func(tx *store.Tx) error {
		verification, err := tx.VerificationByID(verificationID)
		if err != nil {
			return err
		}
		if verification == nil {
			return services.Wrap(services.ErrNotFound, "verify", "undo_verdict",
				fmt.Sprintf("verification %d", verificationID), nil)
		}
		if _, err := tx.DeleteVerification(verificationID); err != nil {
			return err
		}
		if err := tx.SetRecordingVerified(verification.RecordingID, verification.IsSecondary, false); err != nil {
			return err
		}
		recording, err := tx.RecordingByID(verification.RecordingID)
		if err != nil {
			return err
		}
		if recording == nil || recording.SessionID == nil {
			return nil
		}
		return tx.SetSessionVerified(*recording.SessionID, verification.IsSecondary, false)
	})
	if err != nil {
		return classify("undo_verdict", err)
	}

	s.logger.Info("verdict undone",
		logging.String(logging.FieldEventType, "verdict_undone"),
		logging.String(logging.FieldRequestID, requestID),
		logging.Int64("verification_id", verificationID),
	)
	return nil
}

type passFlags struct {
	primary   bool
	secondary bool
}

// rollUpSession recomputes both session flags from the recording counts. A
// session with no recordings never reads as complete.
func rollUpSession(tx *store.Tx, sessionID int64) (passFlags, error) {
	total, primary, secondary, err := tx.RecordingCounts(sessionID)
	if err != nil {
		return passFlags{}, err
	}
	flags := passFlags{
		primary:   total > 0 && primary == total,
		secondary: total > 0 && secondary == total,
	}
	if err := tx.SetSessionVerified(sessionID, false, flags.primary); err != nil {
		return passFlags{}, err
	}
	if err := tx.SetSessionVerified(sessionID, true, flags.secondary); err != nil {
		return passFlags{}, err
	}
	return flags, nil
}

// validateVerdict enforces the quality-flag rules: at least one flag must be
// set, ok stands alone, and low and high volume contradict each other.
func validateVerdict(verdict Verdict) error {
	anyProblem := verdict.VolumeIsLow || verdict.VolumeIsHigh || verdict.WrongWording ||
		verdict.HasGlitch || verdict.GlitchOutsideTrim
	switch {
	case !anyProblem && !verdict.IsOK:
		return services.Wrap(services.ErrValidation, "verify", "record_verdict",
			"at least one quality flag is required", nil)
	case verdict.IsOK && anyProblem:
		return services.Wrap(services.ErrValidation, "verify", "record_verdict",
			"ok excludes every other flag", nil)
	case verdict.VolumeIsLow && verdict.VolumeIsHigh:
		return services.Wrap(services.ErrValidation, "verify", "record_verdict",
			"volume cannot be both low and high", nil)
	}
	if (verdict.TrimStart == nil) != (verdict.TrimEnd == nil) {
		return services.Wrap(services.ErrValidation, "verify", "record_verdict",
			"trim start and end must be given together", nil)
	}
	if verdict.TrimStart != nil && (*verdict.TrimStart < 0 || *verdict.TrimEnd <= *verdict.TrimStart) {
		return services.Wrap(services.ErrValidation, "verify", "record_verdict",
			fmt.Sprintf("invalid trim range %.3f-%.3f", *verdict.TrimStart, *verdict.TrimEnd), nil)
	}
	return nil
}
