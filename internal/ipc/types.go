package ipc

import "eyra/internal/api"

// SessionAssignment mirrors the HTTP API assignment DTO for IPC callers.
type SessionAssignment = api.SessionAssignment

// SessionDetail mirrors the HTTP API session detail DTO.
type SessionDetail = api.SessionDetail

// PendingRecording mirrors the HTTP API pending recording DTO.
type PendingRecording = api.PendingRecording

// VerdictRequest mirrors the HTTP API verdict payload.
type VerdictRequest = api.VerdictRequest

// VerdictResponse mirrors the HTTP API verdict outcome.
type VerdictResponse = api.VerdictResponse

// Stats mirrors the HTTP API stats payload.
type Stats = api.Stats

// CheckResult mirrors the HTTP API preflight check DTO.
type CheckResult = api.CheckResult

// StatusRequest fetches daemon status.
type StatusRequest struct{}

// StatusResponse represents daemon runtime information.
type StatusResponse struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	DatabasePath string        `json:"database_path"`
	LockPath     string        `json:"lock_path"`
	Checks       []CheckResult `json:"checks"`
}

// StopRequest stops the daemon.
type StopRequest struct{}

// StopResponse indicates stop result.
type StopResponse struct {
	Stopped bool `json:"stopped"`
}

// NextSessionRequest asks for the reviewer's next assignment.
type NextSessionRequest struct {
	ReviewerID int64 `json:"reviewer_id"`
}

// NextSessionResponse carries the assignment. Assigned is false when every
// pool is empty.
type NextSessionResponse struct {
	Assigned   bool              `json:"assigned"`
	Assignment SessionAssignment `json:"assignment"`
}

// SessionDescribeRequest fetches a single session by id.
type SessionDescribeRequest struct {
	ID int64 `json:"id"`
}

// SessionDescribeResponse contains the session with its pending work.
type SessionDescribeResponse struct {
	Detail SessionDetail `json:"detail"`
}

// SessionRemoveRequest deletes a session.
type SessionRemoveRequest struct {
	ID int64 `json:"id"`
}

// SessionRemoveResponse reports deletion.
type SessionRemoveResponse struct {
	Deleted bool `json:"deleted"`
}

// SessionReleaseRequest clears a session's assignment locks.
type SessionReleaseRequest struct {
	ID int64 `json:"id"`
}

// SessionReleaseResponse reports release.
type SessionReleaseResponse struct {
	Released bool `json:"released"`
}

// RecordVerdictRequest records a verdict.
type RecordVerdictRequest struct {
	Verdict VerdictRequest `json:"verdict"`
}

// RecordVerdictResponse reports the verdict outcome.
type RecordVerdictResponse struct {
	Result VerdictResponse `json:"result"`
}

// UndoVerdictRequest removes a verdict and rolls back its flags.
type UndoVerdictRequest struct {
	VerificationID int64 `json:"verification_id"`
}

// UndoVerdictResponse reports undo.
type UndoVerdictResponse struct {
	Undone bool `json:"undone"`
}

// FlagPriorityRequest moves a recording into a fresh priority session.
type FlagPriorityRequest struct {
	RecordingID int64 `json:"recording_id"`
}

// FlagPriorityResponse reports the created priority session.
type FlagPriorityResponse struct {
	SessionID int64 `json:"session_id"`
}

// StatsRequest fetches verification statistics. Dates use YYYY-MM-DD; both
// empty means no range count.
type StatsRequest struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// StatsResponse carries aggregate counts.
type StatsResponse struct {
	Stats Stats `json:"stats"`
}

// ExportRequest fetches the TSV export of all verdicts.
type ExportRequest struct{}

// ExportResponse carries the rendered TSV document.
type ExportResponse struct {
	TSV string `json:"tsv"`
}

// LogTailRequest reads daemon log lines. A negative offset requests the last
// Limit lines; Follow with WaitMillis blocks until new lines arrive or the
// wait expires.
type LogTailRequest struct {
	Offset     int64 `json:"offset"`
	Limit      int   `json:"limit"`
	Follow     bool  `json:"follow"`
	WaitMillis int   `json:"wait_millis"`
}

// LogTailResponse carries log lines and the offset to resume from.
type LogTailResponse struct {
	Lines  []string `json:"lines"`
	Offset int64    `json:"offset"`
}
