package api

// dateTimeFormat is used for RFC3339 timestamps in API payloads.
const dateTimeFormat = "2006-01-02T15:04:05.000Z07:00"

// SessionAssignment describes a queue assignment handed to a reviewer.
type SessionAssignment struct {
	SessionID    int64              `json:"sessionId"`
	CollectionID *int64             `json:"collectionId,omitempty"`
	IsPriority   bool               `json:"isPriority"`
	IsSecondary  bool               `json:"isSecondary"`
	Pending      []PendingRecording `json:"pending"`
}

// PendingRecording is a recording awaiting a verdict, with its prompt.
type PendingRecording struct {
	RecordingID int64  `json:"recordingId"`
	Fname       string `json:"fname"`
	AudioPath   string `json:"audioPath"`
	PromptText  string `json:"promptText"`
	PromptFname string `json:"promptFname,omitempty"`
	NumVerified int    `json:"numVerified"`
}

// Session describes a session row in a transport-friendly format.
type Session struct {
	ID                    int64  `json:"id"`
	CollectionID          *int64 `json:"collectionId,omitempty"`
	IsPriority            bool   `json:"isPriority"`
	HasPriority           bool   `json:"hasPriority"`
	IsDev                 bool   `json:"isDev"`
	IsVerified            bool   `json:"isVerified"`
	IsSecondarilyVerified bool   `json:"isSecondarilyVerified"`
	VerifiedBy            *int64 `json:"verifiedBy,omitempty"`
	SecondarilyVerifiedBy *int64 `json:"secondarilyVerifiedBy,omitempty"`
	CreatedAt             string `json:"createdAt,omitempty"`
}

// SessionDetail wraps a session with its outstanding work at both passes.
type SessionDetail struct {
	Session          Session            `json:"session"`
	PendingPrimary   []PendingRecording `json:"pendingPrimary"`
	PendingSecondary []PendingRecording `json:"pendingSecondary"`
}

// VerdictRequest is the payload for recording a verdict.
type VerdictRequest struct {
	RecordingID       int64    `json:"recordingId"`
	ReviewerID        int64    `json:"reviewerId"`
	VolumeIsLow       bool     `json:"volumeIsLow"`
	VolumeIsHigh      bool     `json:"volumeIsHigh"`
	WrongWording      bool     `json:"wrongWording"`
	HasGlitch         bool     `json:"hasGlitch"`
	GlitchOutsideTrim bool     `json:"glitchOutsideTrim"`
	IsOK              bool     `json:"isOk"`
	Comment           string   `json:"comment,omitempty"`
	TrimStart         *float64 `json:"trimStart,omitempty"`
	TrimEnd           *float64 `json:"trimEnd,omitempty"`
}

// VerdictResponse reports the outcome of recording a verdict.
type VerdictResponse struct {
	VerificationID   int64 `json:"verificationId"`
	IsSecondary      bool  `json:"isSecondary"`
	SessionCompleted bool  `json:"sessionCompleted"`
}

// Stats aggregates verification counts for reporting.
type Stats struct {
	Total          int  `json:"total"`
	SingleVerified int  `json:"singleVerified"`
	DoubleVerified int  `json:"doubleVerified"`
	PastWeek       int  `json:"pastWeek"`
	Good           int  `json:"good"`
	Bad            int  `json:"bad"`
	RangeCount     int  `json:"rangeCount,omitempty"`
	RangeApplied   bool `json:"rangeApplied"`
}

// CheckResult reports one preflight check outcome.
type CheckResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail,omitempty"`
}

// DaemonStatus aggregates daemon runtime information for API consumers.
type DaemonStatus struct {
	Running      bool          `json:"running"`
	PID          int           `json:"pid"`
	DatabasePath string        `json:"databasePath"`
	LockFilePath string        `json:"lockFilePath"`
	Checks       []CheckResult `json:"checks"`
}
