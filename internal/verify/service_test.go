package verify_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"eyra/internal/logging"
	"eyra/internal/services"
	"eyra/internal/store"
	"eyra/internal/testsupport"
	"eyra/internal/verify"
)

func newService(t *testing.T, opts ...verify.Option) (*verify.Service, *store.Store) {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	return verify.NewService(st, logging.NewNop(), opts...), st
}

func TestNextSessionEmptyQueue(t *testing.T) {
	svc, _ := newService(t)

	handle, err := svc.NextSession(context.Background(), 1)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if handle != nil {
		t.Fatalf("empty queue should yield nil handle, got %+v", handle)
	}
}

func TestNextSessionAssignsAndLocks(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	session, recordings := testsupport.MustSeedSession(t, st, 2)

	handle, err := svc.NextSession(ctx, 1)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if handle == nil || handle.SessionID != session.ID {
		t.Fatalf("expected session %d, got %+v", session.ID, handle)
	}
	if handle.IsSecondary || handle.IsPriority {
		t.Fatalf("fresh session should be a primary, non-priority assignment: %+v", handle)
	}
	if len(handle.Pending) != len(recordings) {
		t.Fatalf("expected %d pending recordings, got %d", len(recordings), len(handle.Pending))
	}

	locked, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if locked.VerifiedBy == nil || *locked.VerifiedBy != 1 {
		t.Fatal("assignment should lock the session to the reviewer")
	}
}

func TestNextSessionReentryIsIdempotent(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	testsupport.MustSeedSession(t, st, 1)
	collection := testsupport.MustCreateCollection(t, st, "other")
	for i := 0; i < 3; i++ {
		testsupport.MustCreateSession(t, st, collection.ID)
	}

	handle, err := svc.NextSession(ctx, 1)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	for i := 0; i < 5; i++ {
		again, err := svc.NextSession(ctx, 1)
		if err != nil {
			t.Fatalf("re-entry: %v", err)
		}
		if again == nil || again.SessionID != handle.SessionID {
			t.Fatalf("re-entry should return the held session %d, got %+v", handle.SessionID, again)
		}
	}
}

func TestNextSessionPoolOrder(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	testsupport.MustSeedSession(t, st, 1)

	collection := testsupport.MustCreateCollection(t, st, "fast")
	fastTrack, err := st.CreateSession(ctx, collection.ID, true)
	if err != nil {
		t.Fatalf("create fast-track session: %v", err)
	}
	priority, err := st.CreatePrioritySession(ctx, false)
	if err != nil {
		t.Fatalf("create priority session: %v", err)
	}

	handle, err := svc.NextSession(ctx, 1)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if handle == nil || handle.SessionID != priority.ID {
		t.Fatalf("standalone priority session %d should win, got %+v", priority.ID, handle)
	}
	if !handle.IsPriority {
		t.Fatal("handle should be flagged priority")
	}

	// With the priority session claimed by reviewer 1, reviewer 2 gets the
	// fast-tracked session ahead of the regular pool.
	handle, err = svc.NextSession(ctx, 2)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if handle == nil || handle.SessionID != fastTrack.ID {
		t.Fatalf("fast-track session %d should win for reviewer 2, got %+v", fastTrack.ID, handle)
	}
}

func TestNextSessionSecondaryExcludesPrimaryReviewer(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	session, recordings := testsupport.MustSeedSession(t, st, 1)

	handle, err := svc.NextSession(ctx, 7)
	if err != nil || handle == nil {
		t.Fatalf("primary assignment: %v, %+v", err, handle)
	}
	if _, err := svc.RecordVerdict(ctx, verify.Verdict{
		RecordingID: recordings[0].ID,
		ReviewerID:  7,
		IsOK:        true,
	}); err != nil {
		t.Fatalf("record primary verdict: %v", err)
	}

	// The primary reviewer never sees their own session again.
	handle, err = svc.NextSession(ctx, 7)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if handle != nil {
		t.Fatalf("primary reviewer should not receive a secondary pass, got %+v", handle)
	}

	handle, err = svc.NextSession(ctx, 8)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if handle == nil || handle.SessionID != session.ID || !handle.IsSecondary {
		t.Fatalf("reviewer 8 should get session %d as secondary, got %+v", session.ID, handle)
	}
}

func TestNextSessionUsesInjectedPick(t *testing.T) {
	picked := -1
	svc, st := newService(t, verify.WithPick(func(n int) int {
		picked = n
		return n - 1
	}))
	ctx := context.Background()

	collection := testsupport.MustCreateCollection(t, st, "live")
	var last *store.Session
	for i := 0; i < 4; i++ {
		last = testsupport.MustCreateSession(t, st, collection.ID)
	}

	handle, err := svc.NextSession(ctx, 1)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if picked != 4 {
		t.Fatalf("pick should see 4 candidates, saw %d", picked)
	}
	if handle == nil || handle.SessionID != last.ID {
		t.Fatalf("expected last session %d, got %+v", last.ID, handle)
	}
}

func TestRecordVerdictValidation(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()
	_, recordings := testsupport.MustSeedSession(t, st, 1)

	start := 1.0
	end := 0.5
	cases := []struct {
		name    string
		verdict verify.Verdict
	}{
		{"no flags", verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1}},
		{"ok with problem", verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1, IsOK: true, HasGlitch: true}},
		{"low and high", verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1, VolumeIsLow: true, VolumeIsHigh: true}},
		{"trim start only", verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1, IsOK: true, TrimStart: &start}},
		{"inverted trim", verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1, IsOK: true, TrimStart: &start, TrimEnd: &end}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.RecordVerdict(ctx, tc.verdict); !errors.Is(err, services.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
		})
	}

	// Nothing was persisted for the rejected verdicts.
	stats, err := svc.Stats(ctx, nil, nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 0 {
		t.Fatalf("rejected verdicts must not persist, found %d", stats.Total)
	}
}

func TestRecordVerdictUnknownRecording(t *testing.T) {
	svc, _ := newService(t)

	_, err := svc.RecordVerdict(context.Background(), verify.Verdict{RecordingID: 99, ReviewerID: 1, IsOK: true})
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestRecordVerdictRollUp(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	session, recordings := testsupport.MustSeedSession(t, st, 2)

	result, err := svc.RecordVerdict(ctx, verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1, IsOK: true})
	if err != nil {
		t.Fatalf("first verdict: %v", err)
	}
	if result.IsSecondary {
		t.Fatal("first verdict on a recording is the primary pass")
	}
	if result.SessionCompleted {
		t.Fatal("session must not complete with one of two recordings verified")
	}

	result, err = svc.RecordVerdict(ctx, verify.Verdict{RecordingID: recordings[1].ID, ReviewerID: 1, HasGlitch: true})
	if err != nil {
		t.Fatalf("second verdict: %v", err)
	}
	if !result.SessionCompleted {
		t.Fatal("session should complete once every recording is verified")
	}

	got, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !got.IsVerified || got.IsSecondarilyVerified {
		t.Fatalf("expected primary-only completion, got %+v", got)
	}
}

func TestRecordVerdictDerivesSecondaryPass(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	session, recordings := testsupport.MustSeedSession(t, st, 1)

	first, err := svc.RecordVerdict(ctx, verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1, IsOK: true})
	if err != nil {
		t.Fatalf("first verdict: %v", err)
	}
	second, err := svc.RecordVerdict(ctx, verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 2, IsOK: true})
	if err != nil {
		t.Fatalf("second verdict: %v", err)
	}
	if first.IsSecondary || !second.IsSecondary {
		t.Fatalf("pass derivation wrong: first=%v second=%v", first.IsSecondary, second.IsSecondary)
	}

	got, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if !got.IsVerified || !got.IsSecondarilyVerified {
		t.Fatalf("both passes should be complete, got %+v", got)
	}
}

func TestUndoVerdictClearsSessionFlagUnconditionally(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	session, recordings := testsupport.MustSeedSession(t, st, 2)

	var lastID int64
	for _, recording := range recordings {
		result, err := svc.RecordVerdict(ctx, verify.Verdict{RecordingID: recording.ID, ReviewerID: 1, IsOK: true})
		if err != nil {
			t.Fatalf("record verdict: %v", err)
		}
		lastID = result.VerificationID
	}

	if err := svc.UndoVerdict(ctx, lastID); err != nil {
		t.Fatalf("undo: %v", err)
	}

	got, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.IsVerified {
		t.Fatal("undo must clear the session's primary flag")
	}
	recording, err := st.GetRecording(ctx, recordings[1].ID)
	if err != nil {
		t.Fatalf("get recording: %v", err)
	}
	if recording.IsVerified {
		t.Fatal("undo must clear the recording's primary flag")
	}
	other, err := st.GetRecording(ctx, recordings[0].ID)
	if err != nil {
		t.Fatalf("get recording: %v", err)
	}
	if !other.IsVerified {
		t.Fatal("undo must not touch sibling recordings")
	}
}

func TestUndoVerdictUnknown(t *testing.T) {
	svc, _ := newService(t)

	err := svc.UndoVerdict(context.Background(), 404)
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUndoThenRecordAgain(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, recordings := testsupport.MustSeedSession(t, st, 1)

	first, err := svc.RecordVerdict(ctx, verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1, IsOK: true})
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if err := svc.UndoVerdict(ctx, first.VerificationID); err != nil {
		t.Fatalf("undo: %v", err)
	}

	// With the verdict gone the next one is a primary pass again.
	redo, err := svc.RecordVerdict(ctx, verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 2, IsOK: true})
	if err != nil {
		t.Fatalf("record again: %v", err)
	}
	if redo.IsSecondary {
		t.Fatal("after undo the verification history is empty; pass must be primary")
	}
}

func TestFlagRecordingPriority(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, recordings := testsupport.MustSeedSession(t, st, 1)
	if _, err := svc.RecordVerdict(ctx, verify.Verdict{RecordingID: recordings[0].ID, ReviewerID: 1, IsOK: true}); err != nil {
		t.Fatalf("record: %v", err)
	}

	session, err := svc.FlagRecordingPriority(ctx, recordings[0].ID)
	if err != nil {
		t.Fatalf("flag priority: %v", err)
	}
	if !session.IsPriority || session.CollectionID != nil {
		t.Fatalf("expected standalone priority session, got %+v", session)
	}

	moved, err := st.GetRecording(ctx, recordings[0].ID)
	if err != nil {
		t.Fatalf("get recording: %v", err)
	}
	if moved.SessionID == nil || *moved.SessionID != session.ID {
		t.Fatal("recording should move into the priority session")
	}
	if moved.IsVerified {
		t.Fatal("flagging must reset the verified flags for a fresh review")
	}

	// The priority session now heads the queue.
	handle, err := svc.NextSession(ctx, 2)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if handle == nil || handle.SessionID != session.ID || !handle.IsPriority {
		t.Fatalf("priority session %d should be assigned first, got %+v", session.ID, handle)
	}
}

func TestStatsRangeValidation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	from := time.Now()
	if _, err := svc.Stats(ctx, &from, nil); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("lone bound should fail validation, got %v", err)
	}
	to := from.AddDate(0, 0, -1)
	if _, err := svc.Stats(ctx, &from, &to); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("inverted range should fail validation, got %v", err)
	}
}

func TestExportTSV(t *testing.T) {
	svc, st := newService(t)
	ctx := context.Background()

	_, recordings := testsupport.MustSeedSession(t, st, 1)
	if _, err := svc.RecordVerdict(ctx, verify.Verdict{
		RecordingID: recordings[0].ID,
		ReviewerID:  3,
		HasGlitch:   true,
		Comment:     "click\tat the end",
	}); err != nil {
		t.Fatalf("record: %v", err)
	}

	var buf strings.Builder
	if err := svc.ExportTSV(ctx, &buf); err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "id\trecording_id\t") {
		t.Fatalf("unexpected header: %q", lines[0])
	}
	row := strings.Split(lines[1], "\t")
	if len(row) != 14 {
		t.Fatalf("expected 14 columns, got %d: %q", len(row), lines[1])
	}
	if row[10] != "click at the end" {
		t.Fatalf("tabs in comments must be escaped, got %q", row[10])
	}
}
