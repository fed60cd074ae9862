package testsupport

import (
	"context"
	"testing"

	"eyra/internal/config"
	"eyra/internal/store"
)

// MustOpenStore opens a store against the test config and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if closeErr := st.Close(); closeErr != nil {
			t.Errorf("close store: %v", closeErr)
		}
	})
	return st
}

// MustCreateCollection inserts a verifying, non-dev collection.
func MustCreateCollection(t testing.TB, st *store.Store, name string) *store.Collection {
	t.Helper()

	collection, err := st.CreateCollection(context.Background(), name, "is-IS", false, true)
	if err != nil {
		t.Fatalf("create collection: %v", err)
	}
	return collection
}

// MustCreateSession inserts a session in the given collection.
func MustCreateSession(t testing.TB, st *store.Store, collectionID int64) *store.Session {
	t.Helper()

	session, err := st.CreateSession(context.Background(), collectionID, false)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	return session
}

// MustAddRecording inserts a token plus a recording of it in the session.
func MustAddRecording(t testing.TB, st *store.Store, collectionID, sessionID int64, text string) *store.Recording {
	t.Helper()

	ctx := context.Background()
	token, err := st.CreateToken(ctx, &collectionID, text, text+".token")
	if err != nil {
		t.Fatalf("create token: %v", err)
	}
	recording, err := st.AddRecording(ctx, sessionID, token.ID, text+".wav", "/audio/"+text+".wav")
	if err != nil {
		t.Fatalf("add recording: %v", err)
	}
	return recording
}

// MustSeedSession builds a collection, one session, and n recordings, returning
// the session and its recordings. Convenient for roll-up tests.
func MustSeedSession(t testing.TB, st *store.Store, n int) (*store.Session, []*store.Recording) {
	t.Helper()

	collection := MustCreateCollection(t, st, "seeded")
	session := MustCreateSession(t, st, collection.ID)
	recordings := make([]*store.Recording, 0, n)
	for i := 0; i < n; i++ {
		recordings = append(recordings, MustAddRecording(t, st, collection.ID, session.ID, prompt(i)))
	}
	return session, recordings
}

func prompt(i int) string {
	return "prompt-" + string(rune('a'+i))
}
