package ipc_test

import (
	"context"
	"strings"
	"testing"

	"eyra/internal/daemon"
	"eyra/internal/ipc"
	"eyra/internal/logging"
	"eyra/internal/store"
	"eyra/internal/testsupport"
	"eyra/internal/verify"
)

func startIPC(t *testing.T) (*ipc.Client, *store.Store) {
	t.Helper()

	cfg := testsupport.NewConfig(t)
	cfg.Paths.APIBind = "" // IPC only
	st := testsupport.MustOpenStore(t, cfg)
	svc := verify.NewService(st, logging.NewNop())
	d, err := daemon.New(cfg, st, svc, logging.NewNop())
	if err != nil {
		t.Fatalf("new daemon: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("start daemon: %v", err)
	}
	t.Cleanup(d.Stop)

	srv, err := ipc.NewServer(context.Background(), cfg.SocketPath(), d, logging.NewNop())
	if err != nil {
		t.Fatalf("new ipc server: %v", err)
	}
	srv.Serve()
	t.Cleanup(srv.Close)

	client, err := ipc.Dial(cfg.SocketPath())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })
	return client, st
}

func TestStatusOverIPC(t *testing.T) {
	client, _ := startIPC(t)

	status, err := client.Status()
	if err != nil {
		t.Fatalf("status: %v", err)
	}
	if !status.Running {
		t.Fatal("daemon should report running")
	}
	if len(status.Checks) == 0 {
		t.Fatal("status should include preflight checks")
	}
}

func TestVerificationFlowOverIPC(t *testing.T) {
	client, st := startIPC(t)

	session, recordings := testsupport.MustSeedSession(t, st, 1)

	next, err := client.NextSession(3)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if !next.Assigned || next.Assignment.SessionID != session.ID {
		t.Fatalf("unexpected assignment: %+v", next)
	}

	verdict, err := client.RecordVerdict(ipc.VerdictRequest{
		RecordingID: recordings[0].ID,
		ReviewerID:  3,
		IsOK:        true,
	})
	if err != nil {
		t.Fatalf("record verdict: %v", err)
	}
	if !verdict.Result.SessionCompleted {
		t.Fatal("single-recording session should complete")
	}

	stats, err := client.Stats("", "")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.Stats.Total != 1 {
		t.Fatalf("expected one verdict, got %+v", stats.Stats)
	}

	undo, err := client.UndoVerdict(verdict.Result.VerificationID)
	if err != nil {
		t.Fatalf("undo: %v", err)
	}
	if !undo.Undone {
		t.Fatal("undo should report success")
	}

	detail, err := client.SessionDescribe(session.ID)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if detail.Detail.Session.IsVerified {
		t.Fatal("undo should clear the session flag")
	}
}

func TestNextSessionEmptyOverIPC(t *testing.T) {
	client, _ := startIPC(t)

	next, err := client.NextSession(1)
	if err != nil {
		t.Fatalf("next session: %v", err)
	}
	if next.Assigned {
		t.Fatalf("empty queue should not assign, got %+v", next)
	}

	if _, err := client.NextSession(0); err == nil {
		t.Fatal("invalid reviewer id should error")
	}
}

func TestExportOverIPC(t *testing.T) {
	client, st := startIPC(t)
	_, recordings := testsupport.MustSeedSession(t, st, 1)

	if _, err := client.RecordVerdict(ipc.VerdictRequest{
		RecordingID: recordings[0].ID,
		ReviewerID:  1,
		HasGlitch:   true,
	}); err != nil {
		t.Fatalf("record verdict: %v", err)
	}

	export, err := client.Export()
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	lines := strings.Split(strings.TrimRight(export.TSV, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header plus one row, got %d lines", len(lines))
	}
}

func TestSessionAdminOverIPC(t *testing.T) {
	client, st := startIPC(t)
	session, recordings := testsupport.MustSeedSession(t, st, 1)

	flagged, err := client.FlagPriority(recordings[0].ID)
	if err != nil {
		t.Fatalf("flag priority: %v", err)
	}
	if flagged.SessionID == session.ID {
		t.Fatal("flagging should create a new session")
	}

	released, err := client.SessionRelease(session.ID)
	if err != nil {
		t.Fatalf("release: %v", err)
	}
	if !released.Released {
		t.Fatal("release should report success")
	}

	removed, err := client.SessionRemove(session.ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if !removed.Deleted {
		t.Fatal("remove should report success")
	}
}
