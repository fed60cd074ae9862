package store

import "time"

// Collection groups sessions and prompt tokens under shared configuration.
// IsDev excludes its sessions from the reviewable pool; Verify opts the
// collection into verification at all.
type Collection struct {
	ID        int64
	Name      string
	Language  string
	IsDev     bool
	Verify    bool
	CreatedAt time.Time
}

// Token is a text prompt a contributor reads aloud.
type Token struct {
	ID           int64
	CollectionID *int64
	Text         string
	Fname        string
	CreatedAt    time.Time
}

// Session is a batch of recordings produced together and verified together.
// A priority session (IsPriority) stands outside any collection and carries
// its own IsDev flag; for normal sessions dev-ness comes from the collection.
//
// VerifiedBy and SecondarilyVerifiedBy double as assignment locks: a non-NULL
// value means the corresponding review pass is claimed by that reviewer.
type Session struct {
	ID                    int64
	CollectionID          *int64
	IsPriority            bool
	HasPriority           bool
	IsDev                 bool
	IsVerified            bool
	IsSecondarilyVerified bool
	VerifiedBy            *int64
	SecondarilyVerifiedBy *int64
	CreatedAt             time.Time
}

// Recording is one audio take bound to a token and a session.
type Recording struct {
	ID                    int64
	SessionID             *int64
	TokenID               *int64
	Fname                 string
	AudioPath             string
	IsVerified            bool
	IsSecondarilyVerified bool
	CreatedAt             time.Time
}

// Verification is one reviewer's verdict on one recording.
type Verification struct {
	ID                int64
	RecordingID       int64
	ReviewerID        int64
	IsSecondary       bool
	VolumeIsLow       bool
	VolumeIsHigh      bool
	WrongWording      bool
	HasGlitch         bool
	GlitchOutsideTrim bool
	IsOK              bool
	Comment           string
	TrimStart         *float64
	TrimEnd           *float64
	CreatedAt         time.Time
}

// IsGood reports whether the verdict carries no quality complaints.
func (v Verification) IsGood() bool {
	return !v.VolumeIsLow && !v.VolumeIsHigh && !v.WrongWording && !v.HasGlitch
}

// PendingRecording is a recording awaiting review at a given pass, joined with
// its prompt for rendering.
type PendingRecording struct {
	Recording
	PromptText  string
	PromptFname string
	NumVerified int
}

// Stats aggregates verification counts for reporting.
type Stats struct {
	Total          int
	SingleVerified int
	DoubleVerified int
	PastWeek       int
	Good           int
	Bad            int
	RangeCount     int
	RangeApplied   bool
}
