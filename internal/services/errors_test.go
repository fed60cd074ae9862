package services

import (
	"errors"
	"testing"
)

func TestWrapTagsMarker(t *testing.T) {
	base := errors.New("boom")
	err := Wrap(ErrValidation, "recorder", "submit", "bad flags", base)
	if !errors.Is(err, ErrValidation) {
		t.Fatalf("expected validation marker, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped cause, got %v", err)
	}
	want := "validation error: recorder: submit: bad flags: boom"
	if err.Error() != want {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestWrapDefaultsToTransient(t *testing.T) {
	err := Wrap(nil, "", "", "", nil)
	if !errors.Is(err, ErrTransient) {
		t.Fatalf("expected transient marker, got %v", err)
	}
	if err.Error() != "transient failure: service failure" {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestIsRetryable(t *testing.T) {
	if !IsRetryable(Wrap(ErrConflict, "selector", "claim", "busy", nil)) {
		t.Fatal("conflict should be retryable")
	}
	if IsRetryable(Wrap(ErrNotFound, "selector", "claim", "", nil)) {
		t.Fatal("not-found should not be retryable")
	}
}
