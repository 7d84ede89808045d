package sqlite

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/velichkin/parley-server/internal/store"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()

	st, err := New(":memory:")
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	return st
}

func mustCreateUser(t *testing.T, st *SQLiteStore, username string) *store.User {
	t.Helper()

	user, err := st.CreateUser(context.Background(), username, "hash")
	if err != nil {
		t.Fatalf("create user %s: %v", username, err)
	}
	return user
}

func TestCreateAndGetUser(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	alice := mustCreateUser(t, st, "alice")
	if alice.ID == 0 || alice.Username != "alice" {
		t.Fatalf("unexpected user: %+v", alice)
	}

	byName, err := st.GetUserByUsername(ctx, "alice")
	if err != nil {
		t.Fatalf("get by username: %v", err)
	}
	if byName.ID != alice.ID {
		t.Fatalf("id mismatch: %d != %d", byName.ID, alice.ID)
	}

	if _, err := st.GetUserByUsername(ctx, "nobody"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateUserDuplicateUsernameFails(t *testing.T) {
	st := newTestStore(t)

	mustCreateUser(t, st, "alice")
	if _, err := st.CreateUser(context.Background(), "alice", "hash"); err == nil {
		t.Fatal("expected unique constraint violation")
	}
}

func TestListUsers(t *testing.T) {
	st := newTestStore(t)

	mustCreateUser(t, st, "bob")
	mustCreateUser(t, st, "alice")

	users, err := st.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(users) != 2 || users[0].Username != "alice" || users[1].Username != "bob" {
		t.Fatalf("unexpected users: %+v", users)
	}
}

func TestAppendMessageAssignsIDAndTimestamp(t *testing.T) {
	st := newTestStore(t)
	alice := mustCreateUser(t, st, "alice")

	msg := &store.Message{
		SenderID: alice.ID,
		Room:     "general",
		Kind:     store.MessageKindText,
		Body:     "hello",
	}
	if err := st.AppendMessage(context.Background(), msg); err != nil {
		t.Fatalf("append: %v", err)
	}
	if msg.ID == 0 {
		t.Fatal("expected assigned ID")
	}
	if msg.CreatedAt.IsZero() {
		t.Fatal("expected assigned timestamp")
	}
}

func TestRecentMessagesOldestFirstWithLimit(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice")

	for i := 0; i < 5; i++ {
		msg := &store.Message{
			SenderID: alice.ID,
			Room:     "general",
			Kind:     store.MessageKindText,
			Body:     fmt.Sprintf("msg-%d", i),
		}
		if err := st.AppendMessage(ctx, msg); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
	}

	msgs, err := st.RecentMessages(ctx, "general", 3)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(msgs))
	}
	// Newest three, oldest-first.
	for i, want := range []string{"msg-2", "msg-3", "msg-4"} {
		if msgs[i].Body != want {
			t.Fatalf("position %d: got %q want %q", i, msgs[i].Body, want)
		}
	}
	if msgs[0].SenderName != "alice" {
		t.Fatalf("sender name not resolved: %+v", msgs[0])
	}
}

func TestRecentMessagesPrivateRoomAndFileRef(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()
	alice := mustCreateUser(t, st, "alice")
	bob := mustCreateUser(t, st, "bob")

	ref := "/uploads/abc-doc.pdf"
	msg := &store.Message{
		SenderID:    alice.ID,
		RecipientID: &bob.ID,
		Room:        fmt.Sprintf("private_%d_%d", alice.ID, bob.ID),
		Kind:        store.MessageKindFile,
		Body:        "doc.pdf",
		FileRef:     &ref,
	}
	if err := st.AppendMessage(ctx, msg); err != nil {
		t.Fatalf("append: %v", err)
	}

	msgs, err := st.RecentMessages(ctx, msg.Room, 50)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("expected 1 message, got %d", len(msgs))
	}
	got := msgs[0]
	if got.RecipientName != "bob" || got.Kind != store.MessageKindFile {
		t.Fatalf("unexpected message: %+v", got)
	}
	if got.FileRef == nil || *got.FileRef != ref {
		t.Fatalf("file ref not round-tripped: %+v", got.FileRef)
	}

	// Other rooms see nothing.
	other, err := st.RecentMessages(ctx, "general", 50)
	if err != nil {
		t.Fatalf("recent general: %v", err)
	}
	if len(other) != 0 {
		t.Fatalf("expected no messages in general, got %d", len(other))
	}
}
