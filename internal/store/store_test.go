package store_test

import (
	"context"
	"testing"
	"time"

	"eyra/internal/store"
	"eyra/internal/testsupport"
)

func TestOpenAppliesMigrations(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	collection, err := st.CreateCollection(context.Background(), "  alpha  queries ", "is-IS", false, true)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if collection.ID == 0 {
		t.Fatal("expected collection id to be assigned")
	}
	if collection.Name != "Alpha Queries" {
		t.Fatalf("expected normalized name, got %q", collection.Name)
	}
	if !collection.Verify {
		t.Fatal("expected verify flag to persist")
	}
}

func TestCreateCollectionNormalizesLanguage(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	collection, err := st.CreateCollection(ctx, "icelandic prompts", "Icelandic", false, true)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	if collection.Language != "is-IS" {
		t.Fatalf("expected canonical language tag, got %q", collection.Language)
	}

	if _, err := st.CreateCollection(ctx, "broken", "!!", false, true); err == nil {
		t.Fatal("expected error for unparseable language tag")
	}
}

func TestSessionMaterializesDevFlag(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	dev, err := st.CreateCollection(ctx, "dev", "is-IS", true, true)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	session, err := st.CreateSession(ctx, dev.ID, false)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	if !session.IsDev {
		t.Fatal("session in dev collection should carry is_dev")
	}
}

func TestEligiblePrimaryFiltersDevAndNonVerifying(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	live := testsupport.MustCreateCollection(t, st, "live")
	wanted := testsupport.MustCreateSession(t, st, live.ID)

	dev, err := st.CreateCollection(ctx, "dev", "is-IS", true, true)
	if err != nil {
		t.Fatalf("create dev collection: %v", err)
	}
	if _, err := st.CreateSession(ctx, dev.ID, false); err != nil {
		t.Fatalf("create dev session: %v", err)
	}

	silent, err := st.CreateCollection(ctx, "silent", "is-IS", false, false)
	if err != nil {
		t.Fatalf("create non-verifying collection: %v", err)
	}
	if _, err := st.CreateSession(ctx, silent.ID, false); err != nil {
		t.Fatalf("create non-verifying session: %v", err)
	}

	var eligible []*store.Session
	err = st.InTx(ctx, func(tx *store.Tx) error {
		var txErr error
		eligible, txErr = tx.EligiblePrimary(1)
		return txErr
	})
	if err != nil {
		t.Fatalf("eligible primary: %v", err)
	}
	if len(eligible) != 1 || eligible[0].ID != wanted.ID {
		t.Fatalf("expected only session %d eligible, got %v", wanted.ID, ids(eligible))
	}
}

func TestEligibleSecondaryExcludesPrimaryReviewer(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	collection := testsupport.MustCreateCollection(t, st, "live")
	session := testsupport.MustCreateSession(t, st, collection.ID)

	err := st.InTx(ctx, func(tx *store.Tx) error {
		ok, txErr := tx.LockPrimary(session.ID, 7)
		if txErr != nil {
			return txErr
		}
		if !ok {
			t.Fatal("expected primary lock to succeed")
		}
		return tx.SetSessionVerified(session.ID, false, true)
	})
	if err != nil {
		t.Fatalf("complete primary pass: %v", err)
	}

	check := func(reviewerID int64, want int) {
		t.Helper()
		var eligible []*store.Session
		err := st.InTx(ctx, func(tx *store.Tx) error {
			var txErr error
			eligible, txErr = tx.EligibleSecondary(reviewerID)
			return txErr
		})
		if err != nil {
			t.Fatalf("eligible secondary: %v", err)
		}
		if len(eligible) != want {
			t.Fatalf("reviewer %d: expected %d eligible sessions, got %v", reviewerID, want, ids(eligible))
		}
	}

	check(7, 0) // primary reviewer may not second-review their own work
	check(8, 1)
}

func TestLockPrimaryIsExclusive(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	collection := testsupport.MustCreateCollection(t, st, "live")
	session := testsupport.MustCreateSession(t, st, collection.ID)

	lock := func(reviewerID int64) bool {
		var ok bool
		err := st.InTx(ctx, func(tx *store.Tx) error {
			var txErr error
			ok, txErr = tx.LockPrimary(session.ID, reviewerID)
			return txErr
		})
		if err != nil {
			t.Fatalf("lock primary: %v", err)
		}
		return ok
	}

	if !lock(1) {
		t.Fatal("first lock should succeed")
	}
	if lock(2) {
		t.Fatal("second reviewer should not steal the lock")
	}
	if !lock(1) {
		t.Fatal("re-locking by the holder should be a no-op success")
	}
}

func TestReleaseLocksKeepsCompletedPass(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	collection := testsupport.MustCreateCollection(t, st, "live")
	session := testsupport.MustCreateSession(t, st, collection.ID)

	err := st.InTx(ctx, func(tx *store.Tx) error {
		if _, txErr := tx.LockPrimary(session.ID, 3); txErr != nil {
			return txErr
		}
		if txErr := tx.SetSessionVerified(session.ID, false, true); txErr != nil {
			return txErr
		}
		_, txErr := tx.LockSecondary(session.ID, 4)
		return txErr
	})
	if err != nil {
		t.Fatalf("seed locks: %v", err)
	}

	if err := st.ReleaseLocks(ctx, session.ID); err != nil {
		t.Fatalf("release locks: %v", err)
	}

	got, err := st.GetSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("get session: %v", err)
	}
	if got.VerifiedBy == nil || *got.VerifiedBy != 3 {
		t.Fatal("completed primary pass should keep its reviewer")
	}
	if got.SecondarilyVerifiedBy != nil {
		t.Fatal("incomplete secondary lock should be cleared")
	}
}

func TestRecordingCountsAndPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session, recordings := testsupport.MustSeedSession(t, st, 3)

	err := st.InTx(ctx, func(tx *store.Tx) error {
		return tx.SetRecordingVerified(recordings[0].ID, false, true)
	})
	if err != nil {
		t.Fatalf("mark recording: %v", err)
	}

	err = st.InTx(ctx, func(tx *store.Tx) error {
		total, primary, secondary, txErr := tx.RecordingCounts(session.ID)
		if txErr != nil {
			return txErr
		}
		if total != 3 || primary != 1 || secondary != 0 {
			t.Fatalf("counts = (%d, %d, %d), want (3, 1, 0)", total, primary, secondary)
		}

		pending, txErr := tx.PendingRecordings(session.ID, false)
		if txErr != nil {
			return txErr
		}
		if len(pending) != 2 {
			t.Fatalf("expected 2 pending primary recordings, got %d", len(pending))
		}
		if pending[0].PromptText == "" {
			t.Fatal("pending recordings should join their prompt text")
		}
		return nil
	})
	if err != nil {
		t.Fatalf("counts tx: %v", err)
	}
}

func TestDeleteSessionDetachesRecordings(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	session, recordings := testsupport.MustSeedSession(t, st, 1)

	deleted, err := st.DeleteSession(ctx, session.ID)
	if err != nil {
		t.Fatalf("delete session: %v", err)
	}
	if !deleted {
		t.Fatal("expected session to be deleted")
	}

	recording, err := st.GetRecording(ctx, recordings[0].ID)
	if err != nil {
		t.Fatalf("get recording: %v", err)
	}
	if recording == nil {
		t.Fatal("recording should survive session deletion")
	}
	if recording.SessionID != nil {
		t.Fatal("recording should be detached from the deleted session")
	}
}

func TestVerificationRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	_, recordings := testsupport.MustSeedSession(t, st, 1)

	trimStart := 0.25
	trimEnd := 2.5
	var id int64
	err := st.InTx(ctx, func(tx *store.Tx) error {
		var txErr error
		id, txErr = tx.InsertVerification(&store.Verification{
			RecordingID: recordings[0].ID,
			ReviewerID:  5,
			VolumeIsLow: true,
			Comment:     "quiet take",
			TrimStart:   &trimStart,
			TrimEnd:     &trimEnd,
		})
		return txErr
	})
	if err != nil {
		t.Fatalf("insert verification: %v", err)
	}

	got, err := st.GetVerification(ctx, id)
	if err != nil {
		t.Fatalf("get verification: %v", err)
	}
	if got == nil {
		t.Fatal("verification should exist")
	}
	if !got.VolumeIsLow || got.Comment != "quiet take" {
		t.Fatalf("unexpected verdict round trip: %+v", got)
	}
	if got.TrimStart == nil || *got.TrimStart != trimStart || got.TrimEnd == nil || *got.TrimEnd != trimEnd {
		t.Fatal("trim points should persist")
	}
	if got.IsGood() {
		t.Fatal("low volume verdict should not count as good")
	}
}

func TestVerificationStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	_, recordings := testsupport.MustSeedSession(t, st, 2)

	err := st.InTx(ctx, func(tx *store.Tx) error {
		if _, txErr := tx.InsertVerification(&store.Verification{
			RecordingID: recordings[0].ID,
			ReviewerID:  1,
			IsOK:        true,
		}); txErr != nil {
			return txErr
		}
		_, txErr := tx.InsertVerification(&store.Verification{
			RecordingID: recordings[1].ID,
			ReviewerID:  2,
			IsSecondary: true,
			HasGlitch:   true,
		})
		return txErr
	})
	if err != nil {
		t.Fatalf("seed verifications: %v", err)
	}

	stats, err := st.VerificationStats(ctx, nil, nil)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Total != 2 || stats.SingleVerified != 1 || stats.DoubleVerified != 1 {
		t.Fatalf("unexpected pass split: %+v", stats)
	}
	if stats.Good != 1 || stats.Bad != 1 {
		t.Fatalf("unexpected quality split: %+v", stats)
	}
	if stats.PastWeek != 2 {
		t.Fatalf("expected both verdicts in past week, got %d", stats.PastWeek)
	}
	if stats.RangeApplied {
		t.Fatal("range should not apply without bounds")
	}

	from := time.Now().AddDate(0, 0, -1)
	to := time.Now()
	ranged, err := st.VerificationStats(ctx, &from, &to)
	if err != nil {
		t.Fatalf("ranged stats: %v", err)
	}
	if !ranged.RangeApplied || ranged.RangeCount != 2 {
		t.Fatalf("expected range count 2, got %+v", ranged)
	}
}

func TestMoveRecordingResetsFlags(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	_, recordings := testsupport.MustSeedSession(t, st, 1)
	target, err := st.CreatePrioritySession(ctx, false)
	if err != nil {
		t.Fatalf("create priority session: %v", err)
	}

	err = st.InTx(ctx, func(tx *store.Tx) error {
		if txErr := tx.SetRecordingVerified(recordings[0].ID, false, true); txErr != nil {
			return txErr
		}
		return tx.MoveRecordingToSession(recordings[0].ID, target.ID)
	})
	if err != nil {
		t.Fatalf("move recording: %v", err)
	}

	moved, err := st.GetRecording(ctx, recordings[0].ID)
	if err != nil {
		t.Fatalf("get recording: %v", err)
	}
	if moved.SessionID == nil || *moved.SessionID != target.ID {
		t.Fatal("recording should belong to the priority session")
	}
	if moved.IsVerified || moved.IsSecondarilyVerified {
		t.Fatal("pass flags should reset on move")
	}
}

func ids(sessions []*store.Session) []int64 {
	out := make([]int64, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, s.ID)
	}
	return out
}
