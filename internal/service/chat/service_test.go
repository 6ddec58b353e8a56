package chat_test

import (
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"

	model "github.com/salt-byte/cinematic-mirror/backend/internal/model/chat"
	chat "github.com/salt-byte/cinematic-mirror/backend/internal/service/chat"
)

func TestStoreGetSession(t *testing.T) {
	store := chat.NewStore()

	id := store.Create(model.Session{Kind: model.KindInterview, OwnerID: "user-1"})
	if id == "" {
		t.Fatal("expected generated id")
	}

	got, err := store.Get(id)
	if err != nil {
		t.Fatalf("Get err: %v", err)
	}
	if got.ID != id {
		t.Fatalf("unexpected session ID: got %s want %s", got.ID, id)
	}
	if got.OwnerID != "user-1" {
		t.Fatalf("unexpected owner: got %s", got.OwnerID)
	}
	if got.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be stamped")
	}
}

func TestStoreGetSessionNotFound(t *testing.T) {
	store := chat.NewStore()

	if _, err := store.Get("missing"); !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
}

func TestStoreMutateAppliesChanges(t *testing.T) {
	store := chat.NewStore()
	id := store.Create(model.Session{})

	updated, err := store.Mutate(id, func(s *model.Session) error {
		s.TurnCount++
		s.Transcript = append(s.Transcript, schema.UserMessage("hello"))
		return nil
	})
	if err != nil {
		t.Fatalf("Mutate err: %v", err)
	}
	if updated.TurnCount != 1 || len(updated.Transcript) != 1 {
		t.Fatalf("unexpected snapshot: %+v", updated)
	}

	got, _ := store.Get(id)
	if got.TurnCount != 1 {
		t.Fatalf("mutation not stored, turnCount=%d", got.TurnCount)
	}
}

func TestStoreMutateFailureLeavesSessionUntouched(t *testing.T) {
	store := chat.NewStore()
	id := store.Create(model.Session{})
	boom := errors.New("boom")

	_, err := store.Mutate(id, func(s *model.Session) error {
		s.TurnCount = 99
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("expected boom, got %v", err)
	}

	got, _ := store.Get(id)
	if got.TurnCount != 0 {
		t.Fatalf("failed mutation leaked, turnCount=%d", got.TurnCount)
	}
}

func TestStoreMutateUnknownSession(t *testing.T) {
	store := chat.NewStore()
	called := false

	_, err := store.Mutate("missing", func(*model.Session) error {
		called = true
		return nil
	})
	if !errors.Is(err, chat.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}
	if called {
		t.Fatal("mutator must not run for unknown session")
	}
}

func TestStoreDeleteIsIdempotent(t *testing.T) {
	store := chat.NewStore()
	id := store.Create(model.Session{})

	store.Delete(id)
	store.Delete(id)
	store.Delete("never-existed")

	if store.Len() != 0 {
		t.Fatalf("expected empty store, got %d", store.Len())
	}
}

func TestStoreSnapshotsAreIsolated(t *testing.T) {
	store := chat.NewStore()
	id := store.Create(model.Session{Messages: []model.Message{{Role: model.RoleModel, Text: "hi"}}})

	got, _ := store.Get(id)
	got.Messages[0].Text = "changed"

	again, _ := store.Get(id)
	if again.Messages[0].Text != "hi" {
		t.Fatalf("snapshot aliases stored state: %q", again.Messages[0].Text)
	}
}
