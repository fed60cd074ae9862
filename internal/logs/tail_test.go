package logs

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeLog(t *testing.T, lines string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "eyra.log")
	if err := os.WriteFile(path, []byte(lines), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestTailLastLines(t *testing.T) {
	path := writeLog(t, "one\ntwo\nthree\nfour\n")

	result, err := Tail(context.Background(), path, TailOptions{Offset: -1, Limit: 2})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 2 || result.Lines[0] != "three" || result.Lines[1] != "four" {
		t.Fatalf("unexpected lines: %v", result.Lines)
	}
	if result.Offset == 0 {
		t.Fatal("expected non-zero offset at end of file")
	}
}

func TestTailFromOffsetPicksUpNewLines(t *testing.T) {
	path := writeLog(t, "first\n")

	result, err := Tail(context.Background(), path, TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial Tail: %v", err)
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		t.Fatalf("open for append: %v", err)
	}
	if _, err := f.WriteString("second\n"); err != nil {
		t.Fatalf("append: %v", err)
	}
	f.Close()

	next, err := Tail(context.Background(), path, TailOptions{Offset: result.Offset})
	if err != nil {
		t.Fatalf("Tail from offset: %v", err)
	}
	if len(next.Lines) != 1 || next.Lines[0] != "second" {
		t.Fatalf("unexpected lines: %v", next.Lines)
	}
}

func TestTailMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "absent.log")

	result, err := Tail(context.Background(), path, TailOptions{Offset: -1, Limit: 10})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if len(result.Lines) != 0 || result.Offset != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestTailFollowWaitsForLines(t *testing.T) {
	path := writeLog(t, "seed\n")

	result, err := Tail(context.Background(), path, TailOptions{Offset: -1, Limit: 1})
	if err != nil {
		t.Fatalf("initial Tail: %v", err)
	}

	go func() {
		time.Sleep(300 * time.Millisecond)
		f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return
		}
		defer f.Close()
		_, _ = f.WriteString("late\n")
	}()

	next, err := Tail(context.Background(), path, TailOptions{
		Offset: result.Offset,
		Follow: true,
		Wait:   2 * time.Second,
	})
	if err != nil {
		t.Fatalf("Tail follow: %v", err)
	}
	if len(next.Lines) != 1 || next.Lines[0] != "late" {
		t.Fatalf("unexpected lines: %v", next.Lines)
	}
}
