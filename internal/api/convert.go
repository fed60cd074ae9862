package api

import (
	"time"

	"eyra/internal/preflight"
	"eyra/internal/store"
	"eyra/internal/verify"
)

// FromSessionHandle converts a queue assignment to its API representation.
func FromSessionHandle(handle *verify.SessionHandle) SessionAssignment {
	if handle == nil {
		return SessionAssignment{}
	}
	return SessionAssignment{
		SessionID:    handle.SessionID,
		CollectionID: handle.CollectionID,
		IsPriority:   handle.IsPriority,
		IsSecondary:  handle.IsSecondary,
		Pending:      FromPendingRecordings(handle.Pending),
	}
}

// FromSession converts a session record to its API representation.
func FromSession(session *store.Session) Session {
	if session == nil {
		return Session{}
	}
	dto := Session{
		ID:                    session.ID,
		CollectionID:          session.CollectionID,
		IsPriority:            session.IsPriority,
		HasPriority:           session.HasPriority,
		IsDev:                 session.IsDev,
		IsVerified:            session.IsVerified,
		IsSecondarilyVerified: session.IsSecondarilyVerified,
		VerifiedBy:            session.VerifiedBy,
		SecondarilyVerifiedBy: session.SecondarilyVerifiedBy,
	}
	dto.CreatedAt = FormatTime(session.CreatedAt)
	return dto
}

// FromSessionDetail converts a session with its pending work.
func FromSessionDetail(detail *verify.SessionDetail) SessionDetail {
	if detail == nil {
		return SessionDetail{}
	}
	return SessionDetail{
		Session:          FromSession(detail.Session),
		PendingPrimary:   FromPendingRecordings(detail.PendingPrimary),
		PendingSecondary: FromPendingRecordings(detail.PendingSecondary),
	}
}

// FromPendingRecordings converts pending recordings into API DTOs.
func FromPendingRecordings(pending []*store.PendingRecording) []PendingRecording {
	if len(pending) == 0 {
		return nil
	}
	out := make([]PendingRecording, 0, len(pending))
	for _, entry := range pending {
		out = append(out, PendingRecording{
			RecordingID: entry.ID,
			Fname:       entry.Fname,
			AudioPath:   entry.AudioPath,
			PromptText:  entry.PromptText,
			PromptFname: entry.PromptFname,
			NumVerified: entry.NumVerified,
		})
	}
	return out
}

// ToVerdict converts a request payload into the service input.
func (r VerdictRequest) ToVerdict() verify.Verdict {
	return verify.Verdict{
		RecordingID:       r.RecordingID,
		ReviewerID:        r.ReviewerID,
		VolumeIsLow:       r.VolumeIsLow,
		VolumeIsHigh:      r.VolumeIsHigh,
		WrongWording:      r.WrongWording,
		HasGlitch:         r.HasGlitch,
		GlitchOutsideTrim: r.GlitchOutsideTrim,
		IsOK:              r.IsOK,
		Comment:           r.Comment,
		TrimStart:         r.TrimStart,
		TrimEnd:           r.TrimEnd,
	}
}

// FromVerdictResult converts a verdict outcome to its API representation.
func FromVerdictResult(result *verify.VerdictResult) VerdictResponse {
	if result == nil {
		return VerdictResponse{}
	}
	return VerdictResponse{
		VerificationID:   result.VerificationID,
		IsSecondary:      result.IsSecondary,
		SessionCompleted: result.SessionCompleted,
	}
}

// FromStats converts aggregate counts to their API representation.
func FromStats(stats store.Stats) Stats {
	return Stats{
		Total:          stats.Total,
		SingleVerified: stats.SingleVerified,
		DoubleVerified: stats.DoubleVerified,
		PastWeek:       stats.PastWeek,
		Good:           stats.Good,
		Bad:            stats.Bad,
		RangeCount:     stats.RangeCount,
		RangeApplied:   stats.RangeApplied,
	}
}

// FromCheckResults converts preflight results into API DTOs.
func FromCheckResults(results []preflight.Result) []CheckResult {
	if len(results) == 0 {
		return nil
	}
	out := make([]CheckResult, 0, len(results))
	for _, result := range results {
		out = append(out, CheckResult{
			Name:   result.Name,
			Passed: result.Passed,
			Detail: result.Detail,
		})
	}
	return out
}

// FormatTime converts a time to RFC3339 or returns empty string.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(dateTimeFormat)
}
