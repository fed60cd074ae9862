// Package verify implements the review workflow: assigning sessions to
// reviewers, recording verdicts with roll-up, undoing verdicts, and reporting.
//
// All queue decisions run inside a single store transaction so the
// read-decide-write sequence is atomic. Randomness for the candidate pick is
// injectable; the default draws from a source seeded per call.
package verify

import (
	"errors"
	"log/slog"
	"math/rand"
	"time"

	"eyra/internal/logging"
	"eyra/internal/services"
	"eyra/internal/services/audiotrim"
	"eyra/internal/store"
)

// Service coordinates the verification queue against the store.
type Service struct {
	store   *store.Store
	logger  *slog.Logger
	trimmer *audiotrim.Trimmer
	pick    func(n int) int
}

// Option customizes a Service.
type Option func(*Service)

// WithTrimmer attaches an audio trimmer so accepted trim points are applied to
// the stored waveform after a verdict commits.
func WithTrimmer(trimmer *audiotrim.Trimmer) Option {
	return func(s *Service) {
		s.trimmer = trimmer
	}
}

// WithPick injects the candidate pick function. Used in tests to make the
// random draw deterministic.
func WithPick(pick func(n int) int) Option {
	return func(s *Service) {
		if pick != nil {
			s.pick = pick
		}
	}
}

// NewService constructs the verification service.
func NewService(st *store.Store, logger *slog.Logger, opts ...Option) *Service {
	svc := &Service{
		store:  st,
		logger: logging.NewComponentLogger(logger, "verify"),
		pick:   defaultPick,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

func defaultPick(n int) int {
	if n <= 1 {
		return 0
	}
	return rand.New(rand.NewSource(time.Now().UnixNano())).Intn(n)
}

// SessionHandle is an assignment handed to a reviewer: the claimed session and
// the recordings still awaiting their verdict at the assigned pass.
type SessionHandle struct {
	SessionID    int64
	CollectionID *int64
	IsPriority   bool
	IsSecondary  bool
	Pending      []*store.PendingRecording
}

// SessionDetail is a session with its outstanding work at both passes.
type SessionDetail struct {
	Session          *store.Session
	PendingPrimary   []*store.PendingRecording
	PendingSecondary []*store.PendingRecording
}

// Verdict is one reviewer's judgement of one recording. The pass kind is not
// part of the input; it is derived from the recording's verification history.
type Verdict struct {
	RecordingID       int64
	ReviewerID        int64
	VolumeIsLow       bool
	VolumeIsHigh      bool
	WrongWording      bool
	HasGlitch         bool
	GlitchOutsideTrim bool
	IsOK              bool
	Comment           string
	TrimStart         *float64
	TrimEnd           *float64
}

// VerdictResult reports what recording a verdict produced.
type VerdictResult struct {
	VerificationID   int64
	IsSecondary      bool
	SessionCompleted bool
}

// classify maps store-level failures onto the service error taxonomy.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, services.ErrValidation) ||
		errors.Is(err, services.ErrNotFound) ||
		errors.Is(err, services.ErrConflict) {
		return err
	}
	if store.IsBusy(err) {
		return services.Wrap(services.ErrConflict, "verify", op, "database contention", err)
	}
	return services.Wrap(services.ErrTransient, "verify", op, "", err)
}
